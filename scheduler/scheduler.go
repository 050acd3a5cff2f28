package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"verifybot/stats"
)

// Presence is the part of the gateway session the rotation needs.
type Presence interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Snapshotter is satisfied by *stats.StatsManager.
type Snapshotter interface {
	Collect() stats.Snapshot
}

// StartStatusRotation updates the bot presence every interval, cycling through
// the member count, memory usage and a help hint. It returns when ctx is done.
func StartStatusRotation(ctx context.Context, s Presence, sm Snapshotter, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		step := 0
		rotate(s, sm, step)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				step++
				rotate(s, sm, step)
			}
		}
	}()
}

func rotate(s Presence, sm Snapshotter, step int) {
	activity := Activity(step, sm.Collect())

	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{activity},
		Status:     string(discordgo.StatusOnline),
	})
	if err != nil {
		zap.L().Warn("status update failed", zap.Error(err))
	}
}

// Activity returns the presence shown at the given rotation step.
func Activity(step int, snap stats.Snapshot) *discordgo.Activity {
	switch step % 3 {
	case 0:
		return &discordgo.Activity{
			Name: fmt.Sprintf("👥 %d Users | 🏠 %d Servers", snap.Members, snap.Guilds),
			Type: discordgo.ActivityTypeWatching,
		}
	case 1:
		return &discordgo.Activity{
			Name: fmt.Sprintf("💻 Memory: %.1f MB", snap.HeapMB),
			Type: discordgo.ActivityTypeGame,
		}
	default:
		return &discordgo.Activity{
			Name: "/help | /setup_embed",
			Type: discordgo.ActivityTypeListening,
		}
	}
}
