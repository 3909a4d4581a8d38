package overdue

import (
	"context"
	"log"
	"time"

	"dorm-manager-backend/config"
	"dorm-manager-backend/internal/store"
)

// Service periodically flips pending invoices past their due date to
// overdue. All writes go through the store; the sweep is idempotent, so
// overlapping runs after a restart are harmless.
type Service struct {
	cfg   *config.Config
	store store.Store
}

// NewService creates a new overdue sweeper.
func NewService(cfg *config.Config, store store.Store) *Service {
	return &Service{cfg: cfg, store: store}
}

// Run starts the sweep loop. It returns when the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Overdue.Enabled {
		log.Println("Overdue sweep is disabled. Not starting.")
		return
	}
	log.Println("Starting overdue sweep service...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Overdue.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Overdue sweep service shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Overdue.Interval)
		}
	}
}

// SweepOnce performs a single sweep.
func (s *Service) SweepOnce(ctx context.Context) {
	n, err := s.store.MarkOverdueInvoices(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Error marking overdue invoices: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Marked %d invoices overdue", n)
	}
}
