package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	mu        sync.Mutex
	due       bool
	dueChecks int
	resets    int
}

func (s *stubLedger) Decrement(ctx context.Context, userID uuid.UUID) (int, error) { return 0, nil }
func (s *stubLedger) Restore(ctx context.Context, userID uuid.UUID) (int, error)   { return 0, nil }
func (s *stubLedger) ManualReset(ctx context.Context, adminID uuid.UUID) error     { return nil }
func (s *stubLedger) Stats(ctx context.Context) (model.BarrelStatsResponse, error) {
	return model.BarrelStatsResponse{}, nil
}

func (s *stubLedger) IsResetDue(ctx context.Context, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dueChecks++
	return s.due, nil
}

func (s *stubLedger) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	s.due = false // mirrors the log-based idempotency of the real ledger
	return nil
}

func (s *stubLedger) snapshot() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dueChecks, s.resets
}

func TestResetWorkerRunsWhenDue(t *testing.T) {
	ledger := &stubLedger{due: true}
	worker := NewResetWorker(ledger, 10*time.Millisecond)

	worker.Start()
	require.Eventually(t, func() bool {
		_, resets := ledger.snapshot()
		return resets == 1
	}, time.Second, 5*time.Millisecond)
	worker.Stop()

	// The due flag cleared after the reset, so later ticks only check.
	checks, resets := ledger.snapshot()
	require.Equal(t, 1, resets)
	require.GreaterOrEqual(t, checks, 1)
}

func TestResetWorkerSkipsWhenNotDue(t *testing.T) {
	ledger := &stubLedger{due: false}
	worker := NewResetWorker(ledger, 5*time.Millisecond)

	worker.Start()
	require.Eventually(t, func() bool {
		checks, _ := ledger.snapshot()
		return checks >= 3
	}, time.Second, time.Millisecond)
	worker.Stop()

	_, resets := ledger.snapshot()
	require.Zero(t, resets)
}

func TestResetWorkerStopWaitsForStartupCheck(t *testing.T) {
	ledger := &stubLedger{}
	worker := NewResetWorker(ledger, 0) // falls back to the default interval

	worker.Start()
	worker.Stop()

	checks, _ := ledger.snapshot()
	require.Equal(t, 1, checks) // the immediate startup check ran
}
