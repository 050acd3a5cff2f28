package panel

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	// RowSize is the number of buttons Discord allows in one action row.
	RowSize = 5
	// MaxControls is the number of buttons a single message can carry.
	MaxControls = 5 * RowSize
)

var (
	ErrTargetNotEditable    = errors.New("message was not sent by this bot")
	ErrTooManyControls      = errors.New("message already has the maximum number of buttons")
	ErrUnsupportedComponent = errors.New("message has components other than buttons")
)

// Reconcile returns the component rows for msg with add appended after the
// existing buttons. Messages from other authors are refused.
func Reconcile(msg *discordgo.Message, botID string, add discordgo.Button) ([]discordgo.MessageComponent, error) {
	if msg.Author == nil || msg.Author.ID != botID {
		return nil, ErrTargetNotEditable
	}

	return Merge(msg.Components, add)
}

// Merge flattens the buttons of existing, appends add and re-chunks the
// result into action rows. Order is preserved and identifiers are not
// deduplicated.
func Merge(existing []discordgo.MessageComponent, add discordgo.Button) ([]discordgo.MessageComponent, error) {
	buttons, err := Buttons(existing)
	if err != nil {
		return nil, err
	}

	merged, err := Append(buttons, add)
	if err != nil {
		return nil, err
	}

	return Rows(merged), nil
}

// Append copies controls and adds the new ones at the end.
func Append(controls []discordgo.Button, add ...discordgo.Button) ([]discordgo.Button, error) {
	if len(controls)+len(add) > MaxControls {
		return nil, fmt.Errorf("%w (%d)", ErrTooManyControls, MaxControls)
	}

	out := make([]discordgo.Button, 0, len(controls)+len(add))
	for _, b := range controls {
		out = append(out, copyButton(b))
	}
	for _, b := range add {
		out = append(out, copyButton(b))
	}

	return out, nil
}

// Buttons extracts every button of the given top-level components in
// display order.
func Buttons(components []discordgo.MessageComponent) ([]discordgo.Button, error) {
	var out []discordgo.Button

	for _, c := range components {
		var children []discordgo.MessageComponent
		switch row := c.(type) {
		case discordgo.ActionsRow:
			children = row.Components
		case *discordgo.ActionsRow:
			children = row.Components
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedComponent, c)
		}

		for _, child := range children {
			switch b := child.(type) {
			case discordgo.Button:
				out = append(out, copyButton(b))
			case *discordgo.Button:
				out = append(out, copyButton(*b))
			default:
				return nil, fmt.Errorf("%w: %T", ErrUnsupportedComponent, child)
			}
		}
	}

	return out, nil
}

// Rows packs buttons into action rows of RowSize.
func Rows(buttons []discordgo.Button) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, (len(buttons)+RowSize-1)/RowSize)

	for start := 0; start < len(buttons); start += RowSize {
		end := min(start+RowSize, len(buttons))

		row := discordgo.ActionsRow{Components: make([]discordgo.MessageComponent, 0, end-start)}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, b)
		}
		rows = append(rows, row)
	}

	return rows
}

// copyButton keeps every attribute a button can be recreated with. The
// numeric component ID is assigned by Discord and is dropped so that
// re-chunked rows never collide.
func copyButton(b discordgo.Button) discordgo.Button {
	c := discordgo.Button{
		Label:    b.Label,
		Style:    b.Style,
		Disabled: b.Disabled,
		URL:      b.URL,
		CustomID: b.CustomID,
		SKUID:    b.SKUID,
	}
	if b.Emoji != nil {
		e := *b.Emoji
		c.Emoji = &e
	}
	return c
}
