// Package sweeper runs periodic eviction of expired parse cache and
// mirror entries. Both stores also evict lazily on access; the sweep
// keeps memory bounded for entries nobody touches again.
package sweeper

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/adboard/internal/logger"
)

// Prunable is any store that can drop its expired entries.
type Prunable interface {
	Prune() int
	Len() int
}

// Sweeper schedules periodic pruning of registered stores.
type Sweeper struct {
	cron     *cron.Cron
	interval time.Duration
	log      logger.Interface
	targets  map[string]Prunable
}

// New creates a sweeper that prunes every interval once started.
func New(interval time.Duration, log logger.Interface) *Sweeper {
	return &Sweeper{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		interval: interval,
		log:      log,
		targets:  make(map[string]Prunable),
	}
}

// Register adds a named store to the sweep rotation. Must be called
// before Start.
func (s *Sweeper) Register(name string, target Prunable) {
	s.targets[name] = target
}

// Start begins the sweep schedule.
func (s *Sweeper) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.log.Info("Sweeper started", "interval", s.interval.String())
	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep prunes every registered store once.
func (s *Sweeper) Sweep() {
	for name, target := range s.targets {
		evicted := target.Prune()
		if evicted > 0 {
			s.log.Info("Swept expired entries",
				"store", name,
				"evicted", evicted,
				"remaining", target.Len(),
			)
		}
	}
}
