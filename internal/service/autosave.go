package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultAutosaveInterval = 1 * time.Minute

// Saver persists in-memory state.
type Saver interface {
	Save(ctx context.Context) error
}

// AutosaveService periodically flushes the informant datasets.
type AutosaveService struct {
	saver  Saver
	logger *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewAutosaveService(saver Saver, logger *zap.Logger) *AutosaveService {
	return &AutosaveService{
		saver:    saver,
		logger:   logger,
		interval: defaultAutosaveInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *AutosaveService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Start runs the saver on a periodic schedule in a background goroutine.
func (s *AutosaveService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("autosave started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.stopCh:
				s.logger.Info("autosave stopped")
				return
			}
		}
	}()
}

// Stop halts the schedule and performs one final save.
func (s *AutosaveService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.run()
}

func (s *AutosaveService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.saver.Save(ctx); err != nil {
		s.logger.Error("autosave failed", zap.Error(err))
	}
}
