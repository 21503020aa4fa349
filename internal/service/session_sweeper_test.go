package service

import (
	"testing"
	"time"
)

func TestSessionSweeper_Sweep(t *testing.T) {
	svc := NewIssueService(&mockClient{}, "", &mockLogger{})
	now := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.EnsureSession("")
	now = now.Add(3 * time.Hour)
	logger := &mockLogger{}
	sweeper := NewSessionSweeper(svc, time.Minute, time.Hour, logger)

	removed := sweeper.Sweep()

	if removed != 1 || svc.SessionCount() != 0 {
		t.Errorf("expected the idle session to be removed, removed %d remaining %d", removed, svc.SessionCount())
	}
	if len(logger.messages) != 1 {
		t.Errorf("expected one log line, got %v", logger.messages)
	}
}

func TestSessionSweeper_StartStop(t *testing.T) {
	svc := NewIssueService(&mockClient{}, "", &mockLogger{})
	sweeper := NewSessionSweeper(svc, time.Hour, time.Hour, &mockLogger{})

	sweeper.Start()
	sweeper.Start()
	sweeper.Stop()
	sweeper.Stop()
}
