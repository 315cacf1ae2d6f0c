package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/service"
)

// ResetWorker polls the ledger on an interval and fires the annual
// barrel reset when it is due. The due check is idempotent at the
// ledger level, so overlapping or restarted workers cannot double-reset
// a year.
type ResetWorker struct {
	ledger   service.LedgerService
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

const defaultInterval = time.Hour

func NewResetWorker(ledger service.LedgerService, interval time.Duration) *ResetWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &ResetWorker{
		ledger:   ledger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling loop. One check runs immediately so a
// process restarted on January 1st does not wait a full interval.
func (w *ResetWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.check()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.check()
			case <-w.stopCh:
				return
			}
		}
	}()
	log.Printf("scheduler: annual reset worker started (interval %s)", w.interval)
}

// Stop signals the loop and waits for the in-flight check to finish.
func (w *ResetWorker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	log.Println("scheduler: annual reset worker stopped")
}

func (w *ResetWorker) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	due, err := w.ledger.IsResetDue(ctx, time.Now())
	if err != nil {
		log.Printf("scheduler: reset due check failed: %v", err)
		return
	}
	if !due {
		return
	}

	log.Println("scheduler: annual barrel reset is due, running")
	if err := w.ledger.ResetAll(ctx); err != nil {
		log.Printf("scheduler: annual reset failed: %v", err)
	}
}
