package export

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler re-runs the export fan-out on a fixed interval, so the
// snapshot files track the table between alert ingestions.
type Scheduler struct {
	exporter *Exporter
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that re-exports at the given interval.
func NewScheduler(e *Exporter, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{exporter: e, interval: interval, logger: logger}
}

// Start begins periodic exporting. It runs an initial export
// immediately, then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any)
// to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.exportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

// exportOnce runs one export pass. A failed pass aborts that run and
// is logged; the next tick starts over.
func (s *Scheduler) exportOnce(ctx context.Context) {
	if err := s.exporter.Run(ctx); err != nil {
		s.logger.Error("export failed", "err", err)
		return
	}
	s.logger.Info("export completed")
}
