package service

import (
	"context"
	"sync"
	"time"

	"oyna-console/internal/logging"
)

// Expirer removes entries that expired at or before now.
type Expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpirerFunc adapts a function to Expirer.
type ExpirerFunc func(ctx context.Context, now time.Time) (int64, error)

func (f ExpirerFunc) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f(ctx, now)
}

// CleanupConfig holds configuration for the cleanup scheduler.
type CleanupConfig struct {
	// Interval is how often expired state is swept. Default: 10 minutes.
	Interval time.Duration
	// Timeout bounds one sweep. Default: 1 minute.
	Timeout time.Duration
}

// CleanupScheduler periodically drops expired per-browser state.
type CleanupScheduler struct {
	store  Expirer
	config CleanupConfig
	log    logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	isRunning bool
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(store Expirer, config CleanupConfig, log logging.Logger) *CleanupScheduler {
	if config.Interval <= 0 {
		config.Interval = 10 * time.Minute
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if log == nil {
		log = logging.Nop()
	}

	return &CleanupScheduler{
		store:  store,
		config: config,
		log:    log.With("component", "cleanup"),
		now:    time.Now,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the cleanup loop. Calling it twice is a no-op.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	s.log.Info(context.Background(), "cleanup scheduler started", "interval", s.config.Interval)

	go s.run()
}

func (s *CleanupScheduler) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ticker.C:
			_, _ = s.RunNow(context.Background())
		case <-s.stopCh:
			s.log.Info(context.Background(), "cleanup scheduler stopped")
			return
		}
	}
}

// RunNow sweeps immediately and returns how many entries were removed.
func (s *CleanupScheduler) RunNow(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	deleted, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error(ctx, "cleanup failed", "error", err)
		return 0, err
	}
	if deleted > 0 {
		s.log.Info(ctx, "expired state swept", "deleted", deleted)
	}
	return deleted, nil
}

// Stop stops the cleanup loop and waits for it to exit.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
		s.mu.Unlock()

		if running {
			<-s.done
		}
	})
}
