/*
scheduler.go - Automated maintenance scheduler

PURPOSE:
  Periodically runs the record generation pass (materialize upcoming
  records for all active schedules) and the overdue sweep (flip
  past-due open records to overdue). Keeps the dashboard current
  without manual POSTs to the maintenance endpoints.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Both passes are idempotent, so overlapping manual triggers via
    the HTTP endpoints are harmless
  - Logs a summary only when something actually changed

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - HorizonDays:   Generation look-ahead (default: handler's horizon)
  - Enabled:       Whether scheduler is active (default: true)

USAGE:
  scheduler := NewMaintenanceScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunGeneration/RunSweep endpoints (manual triggers)
  - schedule/generator.go: Generation pass
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// MaintenanceScheduler runs generation and sweep on a timer.
type MaintenanceScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	HorizonDays   int
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewMaintenanceScheduler creates a new scheduler around the handler's
// engine components.
func NewMaintenanceScheduler(handler *Handler) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		HorizonDays:   handler.HorizonDays,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ms *MaintenanceScheduler) Start() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ms.ticker = time.NewTicker(ms.CheckInterval)
	ms.wg.Add(1)

	go ms.run()

	log.Printf("[Scheduler] Started with check interval: %v, horizon: %d days", ms.CheckInterval, ms.HorizonDays)
}

// Stop stops the scheduler.
func (ms *MaintenanceScheduler) Stop() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.ticker != nil {
		ms.ticker.Stop()
		close(ms.stop)
		ms.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ms *MaintenanceScheduler) run() {
	defer ms.wg.Done()

	// Run immediately on start
	ms.runMaintenance()

	for {
		select {
		case <-ms.ticker.C:
			ms.runMaintenance()
		case <-ms.stop:
			return
		}
	}
}

func (ms *MaintenanceScheduler) runMaintenance() {
	ctx := context.Background()

	result, err := ms.Handler.Generator.Generate(ctx, ms.HorizonDays)
	if err != nil {
		log.Printf("[Scheduler] Generation failed: %v", err)
		return
	}

	if result.RecordsGenerated > 0 || result.RecordsUpdated > 0 {
		log.Printf("[Scheduler] Maintenance complete: %d generated, %d marked overdue, %d schedules",
			result.RecordsGenerated, result.RecordsUpdated, result.SchedulesProcessed)
	}
}

// RunNow triggers an immediate pass (for testing/admin).
func (ms *MaintenanceScheduler) RunNow() {
	ms.runMaintenance()
}

// GetNextRunTime returns when the next scheduled pass will occur.
func (ms *MaintenanceScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ms.CheckInterval)
}
