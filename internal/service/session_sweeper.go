package service

import (
	"sync"
	"time"
)

// SessionSweeper periodically expires idle viewer sessions.
type SessionSweeper struct {
	service  *IssueService
	interval time.Duration
	maxIdle  time.Duration
	logger   Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewSessionSweeper creates a sweeper removing sessions idle for longer
// than maxIdle, checking every interval.
func NewSessionSweeper(service *IssueService, interval, maxIdle time.Duration, logger Logger) *SessionSweeper {
	return &SessionSweeper{
		service:  service,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop. It is a no-op when already running.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Printf("Session sweeper: starting (interval %v, max idle %v)", s.interval, s.maxIdle)

	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop stops the sweep loop and waits for it to exit.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.logger.Printf("Session sweeper: stopped")
}

func (s *SessionSweeper) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopChan:
			return
		}
	}
}

// Sweep expires idle sessions once.
func (s *SessionSweeper) Sweep() int {
	removed := s.service.ExpireIdle(s.maxIdle)
	if removed > 0 {
		s.logger.Printf("Session sweeper: expired %d idle session(s), %d remaining", removed, s.service.SessionCount())
	}
	return removed
}
