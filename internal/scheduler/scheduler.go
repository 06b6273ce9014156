package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// Prewarmer refreshes cached analyses for tracked symbols.
type Prewarmer interface {
	PrewarmWatchlist(ctx context.Context) (int, error)
}

// Sweeper evicts expired in-process cache entries. Redis expires keys
// itself, so the sweep job only runs with the memory cache.
type Sweeper interface {
	Sweep() int
}

// Scheduler runs the background jobs on cron schedules. Schedules use
// six fields with seconds first.
type Scheduler struct {
	cron      *cron.Cron
	prewarmer Prewarmer
	sweeper   Sweeper
}

// New creates a Scheduler. Either dependency may be nil to disable
// the corresponding job.
func New(prewarmer Prewarmer, sweeper Sweeper) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		prewarmer: prewarmer,
		sweeper:   sweeper,
	}
}

// Register adds the jobs with the given cron expressions.
func (s *Scheduler) Register(prewarmCron, sweepCron string) error {
	if s.prewarmer != nil && prewarmCron != "" {
		if _, err := s.cron.AddFunc(prewarmCron, s.runPrewarm); err != nil {
			return fmt.Errorf("failed to register prewarm job: %w", err)
		}
	}
	if s.sweeper != nil && sweepCron != "" {
		if _, err := s.cron.AddFunc(sweepCron, s.runSweep); err != nil {
			return fmt.Errorf("failed to register sweep job: %w", err)
		}
	}
	return nil
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	log.Info().Msg("starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runPrewarm() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	warmed, err := s.prewarmer.PrewarmWatchlist(ctx)
	if err != nil {
		log.Error().Err(err).Msg("watchlist prewarm failed")
		return
	}
	log.Info().
		Int("symbols", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("watchlist prewarm completed")
}

func (s *Scheduler) runSweep() {
	evicted := s.sweeper.Sweep()
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("cache sweep completed")
	}
}
