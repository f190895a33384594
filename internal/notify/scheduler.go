package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/quenchapp/quench/internal/models"
	"github.com/quenchapp/quench/internal/status"
)

// Scheduler keeps one pending reminder per plant, firing when the plant's
// next watering comes due. Reschedules replace rather than diff: callers
// cancel everything and schedule the current list again.
type Scheduler struct {
	mu       sync.Mutex
	notifier Notifier
	pending  map[string]*reminder
	now      func() time.Time
}

type reminder struct {
	timer  *time.Timer
	fireAt time.Time
}

func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		pending:  make(map[string]*reminder),
		now:      time.Now,
	}
}

// RequestPermission reports whether reminders can be delivered at all.
func (scheduler *Scheduler) RequestPermission() bool {
	return scheduler.notifier.Enabled()
}

// ScheduleFor arms a one-shot reminder at the plant's next watering time
// and returns the plant id as its handle. A plant already past due gets no
// reminder and an empty handle.
func (scheduler *Scheduler) ScheduleFor(plant models.Plant) string {
	if !scheduler.notifier.Enabled() {
		return ""
	}

	fireAt := status.NextWatering(plant)
	now := scheduler.now()
	if !fireAt.After(now) {
		return ""
	}

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if existing, ok := scheduler.pending[plant.ID]; ok {
		existing.timer.Stop()
	}

	plantID := plant.ID
	plantName := plant.Name
	timer := time.AfterFunc(fireAt.Sub(now), func() {
		scheduler.fire(plantID, plantName)
	})
	scheduler.pending[plant.ID] = &reminder{timer: timer, fireAt: fireAt}

	return plant.ID
}

// CancelFor drops any pending reminder for the plant. Unknown ids are a
// no-op.
func (scheduler *Scheduler) CancelFor(plantID string) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if pending, ok := scheduler.pending[plantID]; ok {
		pending.timer.Stop()
		delete(scheduler.pending, plantID)
	}
}

// CancelAll drops every pending reminder.
func (scheduler *Scheduler) CancelAll() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	for id, pending := range scheduler.pending {
		pending.timer.Stop()
		delete(scheduler.pending, id)
	}
}

// RescheduleAll cancels everything and schedules the given list afresh, so
// pending reminders exactly match current due times.
func (scheduler *Scheduler) RescheduleAll(plants []models.Plant) {
	scheduler.CancelAll()
	for _, plant := range plants {
		scheduler.ScheduleFor(plant)
	}
}

// Pending returns the ids of plants with an armed reminder, sorted.
func (scheduler *Scheduler) Pending() []string {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	ids := make([]string, 0, len(scheduler.pending))
	for id := range scheduler.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (scheduler *Scheduler) fire(plantID, plantName string) {
	scheduler.mu.Lock()
	delete(scheduler.pending, plantID)
	scheduler.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title := "Time to water " + plantName + "!"
	message := "Your " + plantName + " is due for watering."
	if err := scheduler.notifier.Send(ctx, title, message); err != nil {
		slog.Warn("delivering watering reminder", "plant", plantName, "error", err)
	}
}
