// Package lifecycle advances reservation statuses as their time slots pass:
// Approved reservations become Ongoing once a slot starts and Completed once
// every slot has ended.
package lifecycle

import (
	"context"
	"log"
	"time"

	"fablab-reservation-backend/config"
	"fablab-reservation-backend/internal/notification"
	"fablab-reservation-backend/internal/store"
)

// Service runs the periodic status sweep.
type Service struct {
	cfg        *config.Config
	store      store.Store
	loc        *time.Location
	workerPool *notification.WorkerPool
}

// NewService creates and initializes a new sweeper service. The worker pool
// is shared with the API layer and started by the caller.
func NewService(cfg *config.Config, s store.Store, pool *notification.WorkerPool) *Service {
	loc := time.UTC
	if cfg.Sweeper.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Sweeper.Timezone)
		if err != nil {
			log.Printf("Warning: invalid sweeper timezone %q: %v. Falling back to UTC.", cfg.Sweeper.Timezone, err)
		} else {
			loc = parsed
		}
	}

	return &Service{
		cfg:        cfg,
		store:      s,
		loc:        loc,
		workerPool: pool,
	}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweeper.Enabled {
		log.Println("Lifecycle sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting lifecycle sweeper...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Sweeper.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Lifecycle sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Sweeper.Interval)
		}
	}
}

// SweepOnce performs a single sweep cycle and notifies subscribers of the
// machines whose reservations moved.
func (s *Service) SweepOnce(ctx context.Context) {
	now := time.Now().In(s.loc)

	machineIDs, err := s.store.SweepStatuses(ctx, now)
	if err != nil {
		log.Printf("Sweep cycle failed: %v", err)
		return
	}
	if len(machineIDs) == 0 {
		return
	}

	log.Printf("Sweep advanced reservations touching %d machines", len(machineIDs))
	for _, id := range machineIDs {
		s.workerPool.Dispatch(id, "reservation schedule updated")
	}
}
