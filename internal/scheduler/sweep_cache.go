package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"
)

// MemorySweeper removes expired entries from the in-memory cache.
// Implemented by the cache layer.
type MemorySweeper interface {
	Sweep() int
}

// WarmSweeper removes expired rows from the persistent warm cache.
// Implemented by the clientdata repository.
type WarmSweeper interface {
	DeleteAllExpired() (map[string]int64, error)
}

// SweepCacheJob evicts expired entries from both cache tiers. TTL expiry
// is lazy at read time; this job exists for memory and disk hygiene, not
// correctness.
type SweepCacheJob struct {
	memory MemorySweeper
	warm   WarmSweeper
	log    zerolog.Logger
}

// NewSweepCacheJob creates a cache sweep job
func NewSweepCacheJob(memory MemorySweeper, warm WarmSweeper, log zerolog.Logger) *SweepCacheJob {
	return &SweepCacheJob{
		memory: memory,
		warm:   warm,
		log:    log.With().Str("job", "sweep_cache").Logger(),
	}
}

// Name returns the job name
func (j *SweepCacheJob) Name() string {
	return "sweep_cache"
}

// Run sweeps both cache tiers
func (j *SweepCacheJob) Run() error {
	removed := j.memory.Sweep()

	counts, err := j.warm.DeleteAllExpired()
	if err != nil {
		return fmt.Errorf("failed to sweep warm cache: %w", err)
	}

	var warmRemoved int64
	for _, n := range counts {
		warmRemoved += n
	}

	j.log.Info().
		Int("memory_removed", removed).
		Int64("warm_removed", warmRemoved).
		Msg("Cache sweep complete")

	return nil
}
