package stats

import (
	"runtime"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Snapshot is what the status rotation and the keep-alive endpoint report.
type Snapshot struct {
	Guilds  int     `json:"guilds"`
	Members int     `json:"members"`
	HeapMB  float64 `json:"heap_mb"`
	SysMB   float64 `json:"sys_mb"`
	// HeapOfSys is the live heap as a share of memory obtained from the OS.
	HeapOfSys float64   `json:"heap_of_sys_percent"`
	Uptime    string    `json:"uptime"`
	TakenAt   time.Time `json:"taken_at"`
}

// GuildSource lists the guilds the bot is in.
type GuildSource func() []*discordgo.Guild

// StateGuilds reads the guild list from the gateway state cache.
func StateGuilds(s *discordgo.Session) GuildSource {
	return func() []*discordgo.Guild {
		if s.State == nil {
			return nil
		}
		s.State.RLock()
		defer s.State.RUnlock()

		guilds := make([]*discordgo.Guild, len(s.State.Guilds))
		copy(guilds, s.State.Guilds)
		return guilds
	}
}

type StatsManager struct {
	guilds  GuildSource
	started time.Time

	mutex sync.Mutex
	last  Snapshot
}

func NewStatsManager(guilds GuildSource) *StatsManager {
	return &StatsManager{
		guilds:  guilds,
		started: time.Now(),
	}
}

// Collect takes a fresh snapshot and remembers it as the latest one.
func (sm *StatsManager) Collect() Snapshot {
	var members int
	guilds := sm.guilds()
	for _, g := range guilds {
		members += g.MemberCount
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := Snapshot{
		Guilds:  len(guilds),
		Members: members,
		HeapMB:  toMB(mem.HeapAlloc),
		SysMB:   toMB(mem.Sys),
		Uptime:  time.Since(sm.started).Truncate(time.Second).String(),
		TakenAt: time.Now().UTC(),
	}
	if mem.Sys > 0 {
		snap.HeapOfSys = float64(int(float64(mem.HeapAlloc)/float64(mem.Sys)*1000)) / 10
	}

	sm.mutex.Lock()
	sm.last = snap
	sm.mutex.Unlock()

	return snap
}

// Last returns the most recent snapshot, collecting one if none exists.
func (sm *StatsManager) Last() Snapshot {
	sm.mutex.Lock()
	last := sm.last
	sm.mutex.Unlock()

	if last.TakenAt.IsZero() {
		return sm.Collect()
	}
	return last
}

func toMB(b uint64) float64 {
	return float64(b*10/(1024*1024)) / 10
}
