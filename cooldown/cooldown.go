// Package cooldown throttles repeated button clicks per user.
package cooldown

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultWindow = 5 * time.Second

// Result of a CheckAndRecord call. RetryAfter is zero when Allowed.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds is the remaining wait rounded to one decimal place.
func (r Result) RetryAfterSeconds() float64 {
	return math.Round(r.RetryAfter.Seconds()*10) / 10
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Tracker keeps one single-token limiter per user, refilled once per window.
type Tracker struct {
	window time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

func New(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Tracker{
		window:   window,
		visitors: make(map[string]*visitor),
	}
}

// CheckAndRecord accepts the action when the user's token is available and
// spends it. A throttled call hands its reservation back, so rapid clicking
// cannot keep extending the window.
func (t *Tracker) CheckAndRecord(userID string, now time.Time) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(t.window), 1)}
		t.visitors[userID] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{RetryAfter: delay}
	}

	return Result{Allowed: true}
}

// Prune drops users idle for a full window. Their limiter would be full
// again, so forgetting them changes nothing.
func (t *Tracker) Prune(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, v := range t.visitors {
		if now.Sub(v.lastSeen) >= t.window {
			delete(t.visitors, id)
			removed++
		}
	}
	return removed
}

// StartCleanup prunes idle users every interval until ctx is done.
func (t *Tracker) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := t.Prune(now); n > 0 {
					zap.L().Debug("Pruned idle cooldowns", zap.Int("count", n))
				}
			}
		}
	}()
}
