// Package poller keeps the panel's view of instance connections current. Each
// watched instance gets a fixed-interval gocron job that fetches the status
// endpoint and pushes the observation through an edge detector, so parents
// hear about transitions only, never repetitions.
package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/disparabot/admin/internal/models"
)

// Step is the edge detector: given the freshly observed connection and the
// last reported one, it decides whether to report. The first observation is
// always a change because last starts empty.
func Step(observed, last string) (report bool, next string) {
	if observed != last {
		return true, observed
	}
	return false, last
}

// StatusFunc fetches one status observation for an instance.
type StatusFunc func(ctx context.Context, instanceID int64) (*models.InstanceStatus, error)

// ChangeFunc is invoked on every connection transition with the new logical
// status and the QR image (when the upstream sent one).
type ChangeFunc func(instanceID int64, connection, qrCode string)

// Watcher schedules the polling jobs and owns the per-instance last-reported
// state.
type Watcher struct {
	scheduler gocron.Scheduler
	statusFn  StatusFunc
	onChange  ChangeFunc
	interval  time.Duration

	mu   sync.Mutex
	last map[int64]string
	jobs map[int64]gocron.Job
}

func NewWatcher(statusFn StatusFunc, onChange ChangeFunc, interval time.Duration) (*Watcher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		scheduler: scheduler,
		statusFn:  statusFn,
		onChange:  onChange,
		interval:  interval,
		last:      make(map[int64]string),
		jobs:      make(map[int64]gocron.Job),
	}, nil
}

func (w *Watcher) Start() {
	log.Printf("Starting instance status watcher (interval %s)", w.interval)
	w.scheduler.Start()
}

func (w *Watcher) Stop() error {
	log.Printf("Stopping instance status watcher")
	return w.scheduler.Shutdown()
}

// Watch adds a polling job for one instance. Watching an instance twice is a
// no-op.
func (w *Watcher) Watch(instanceID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.jobs[instanceID]; exists {
		return nil
	}

	job, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.poll, instanceID),
		gocron.WithName(fmt.Sprintf("instance-status-%d", instanceID)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	w.jobs[instanceID] = job
	return nil
}

// Unwatch drops the polling job and forgets the last reported status.
func (w *Watcher) Unwatch(instanceID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if job, exists := w.jobs[instanceID]; exists {
		if err := w.scheduler.RemoveJob(job.ID()); err != nil {
			log.Printf("WARN: failed to remove status job for instance %d: %v", instanceID, err)
		}
		delete(w.jobs, instanceID)
	}
	delete(w.last, instanceID)
}

// Sync reconciles the watched set against the current instance listing.
func (w *Watcher) Sync(instanceIDs []int64) {
	wanted := make(map[int64]bool, len(instanceIDs))
	for _, id := range instanceIDs {
		wanted[id] = true
		if err := w.Watch(id); err != nil {
			log.Printf("WARN: failed to watch instance %d: %v", id, err)
		}
	}

	w.mu.Lock()
	var stale []int64
	for id := range w.jobs {
		if !wanted[id] {
			stale = append(stale, id)
		}
	}
	w.mu.Unlock()

	for _, id := range stale {
		w.Unwatch(id)
	}
}

// Observe feeds one status observation through the edge detector, firing the
// change callback only when the logical connection flipped.
func (w *Watcher) Observe(instanceID int64, status *models.InstanceStatus) {
	observed := status.Connection()

	w.mu.Lock()
	report, next := Step(observed, w.last[instanceID])
	w.last[instanceID] = next
	w.mu.Unlock()

	if report && w.onChange != nil {
		w.onChange(instanceID, observed, status.QRCodeBase64)
	}
}

// Snapshot returns the last reported connection per watched instance.
func (w *Watcher) Snapshot() map[int64]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := make(map[int64]string, len(w.last))
	for id, connection := range w.last {
		snapshot[id] = connection
	}
	return snapshot
}

func (w *Watcher) poll(instanceID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	status, err := w.statusFn(ctx, instanceID)
	if err != nil {
		log.Printf("WARN: status poll for instance %d failed: %v", instanceID, err)
		return
	}
	w.Observe(instanceID, status)
}
