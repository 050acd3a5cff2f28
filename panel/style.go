package panel

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ColorChoices are the preset names offered by the setup and edit commands.
var ColorChoices = []string{"Default", "Red", "Green", "Blue", "Yellow", "Purple", "White", "Black", "Pink", "Orange"}

var colors = map[string]int{
	"Default": 0x000000,
	"Red":     0xe74c3c,
	"Green":   0x2ecc71,
	"Blue":    0x3498db,
	"Yellow":  0xf1c40f,
	"Purple":  0x9b59b6,
	"White":   0xffffff,
	"Black":   0x000000,
	"Pink":    0xff69b4,
	"Orange":  0xe67e22,
}

// ResolveColor prefers a valid hex override ("#ff0000" or "ff0000") and
// otherwise falls back to the named preset, then to Default.
func ResolveColor(preset, hex string) int {
	if hex != "" {
		clean := strings.TrimPrefix(strings.TrimSpace(hex), "#")
		if v, err := strconv.ParseUint(clean, 16, 32); err == nil && v <= 0xffffff {
			return int(v)
		}
	}

	if c, ok := colors[preset]; ok {
		return c
	}
	return colors["Default"]
}

var styles = map[string]discordgo.ButtonStyle{
	"1": discordgo.PrimaryButton,
	"2": discordgo.SecondaryButton,
	"3": discordgo.SuccessButton,
	"4": discordgo.DangerButton,
}

// ParseStyle maps the add_button style choice to a button style. Unknown
// values give a green button.
func ParseStyle(choice string) discordgo.ButtonStyle {
	if s, ok := styles[choice]; ok {
		return s
	}
	return discordgo.SuccessButton
}

// ParseEmoji accepts a unicode emoji or a custom emoji mention such as
// <:name:id> or <a:name:id>.
func ParseEmoji(s string) *discordgo.ComponentEmoji {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		parts := strings.Split(strings.Trim(s, "<>"), ":")
		if len(parts) == 3 && parts[1] != "" && parts[2] != "" {
			return &discordgo.ComponentEmoji{
				Name:     parts[1],
				ID:       parts[2],
				Animated: parts[0] == "a",
			}
		}
	}

	return &discordgo.ComponentEmoji{Name: s}
}
