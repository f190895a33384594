// Package plantlist holds the in-memory source of truth for the plant list
// and mediates every mutation: apply locally, persist through the store,
// and on a failed reorder fall back to reloading authoritative state.
package plantlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/quenchapp/quench/internal/models"
	"github.com/quenchapp/quench/internal/store"
)

var (
	ErrLoad    = errors.New("failed to load plants")
	ErrCreate  = errors.New("failed to add plant")
	ErrUpdate  = errors.New("failed to update plant")
	ErrDelete  = errors.New("failed to delete plant")
	ErrWater   = errors.New("failed to water plant")
	ErrReorder = errors.New("failed to save plant order")

	ErrPositionOutOfRange = errors.New("reorder position out of range")
)

// Reminders is the slice of the notification scheduler the manager needs.
// Both calls are best effort and must never fail the list operation.
type Reminders interface {
	CancelFor(plantID string)
	RescheduleAll(plants []models.Plant)
}

type Manager struct {
	mu        sync.Mutex
	store     store.Store
	reminders Reminders
	plants    []models.Plant
	loaded    bool
}

func NewManager(plantStore store.Store, reminders Reminders) *Manager {
	return &Manager{store: plantStore, reminders: reminders}
}

// Load replaces the in-memory list with the store's, sorted by display
// order. On failure the previous in-memory state is kept.
func (manager *Manager) Load(ctx context.Context) error {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.loadLocked(ctx)
}

func (manager *Manager) loadLocked(ctx context.Context) error {
	plants, err := manager.store.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	sort.SliceStable(plants, func(i, j int) bool {
		return plants[i].Order < plants[j].Order
	})
	manager.plants = plants
	manager.loaded = true
	manager.rescheduleLocked()
	return nil
}

// Plants returns a copy of the current list in display order.
func (manager *Manager) Plants() []models.Plant {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	plants := make([]models.Plant, len(manager.plants))
	copy(plants, manager.plants)
	return plants
}

// Add appends a new plant at the end of the list. Invalid input leaves
// state untouched.
func (manager *Manager) Add(ctx context.Context, name string, intervalDays int) (models.Plant, error) {
	if err := models.ValidatePlantName(name); err != nil {
		return models.Plant{}, err
	}
	if err := models.ValidateIntervalDays(intervalDays); err != nil {
		return models.Plant{}, err
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	plant, err := manager.store.Create(ctx, name, intervalDays, len(manager.plants))
	if err != nil {
		return models.Plant{}, fmt.Errorf("%w: %v", ErrCreate, err)
	}

	manager.plants = append(manager.plants, plant)
	manager.rescheduleLocked()
	return plant, nil
}

// Update applies a partial name/interval change. An id the store does not
// know is a no-op under the file variant and an error under the API variant.
func (manager *Manager) Update(ctx context.Context, id string, updates models.PlantUpdate) error {
	if updates.Name != nil {
		if err := models.ValidatePlantName(*updates.Name); err != nil {
			return err
		}
	}
	if updates.IntervalDays != nil {
		if err := models.ValidateIntervalDays(*updates.IntervalDays); err != nil {
			return err
		}
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	updated, err := manager.store.Update(ctx, id, updates)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdate, err)
	}

	manager.replaceLocked(updated)
	return nil
}

// Water stamps the plant's last watering to now.
func (manager *Manager) Water(ctx context.Context, id string) (models.Plant, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	watered, err := manager.store.Water(ctx, id)
	if err != nil {
		return models.Plant{}, fmt.Errorf("%w: %v", ErrWater, err)
	}

	manager.replaceLocked(watered)
	return watered, nil
}

// Delete cancels any pending reminder for the plant, then removes it from
// the store and the in-memory list.
func (manager *Manager) Delete(ctx context.Context, id string) error {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	manager.reminders.CancelFor(id)

	if err := manager.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrDelete, err)
	}

	remaining := manager.plants[:0]
	for _, plant := range manager.plants {
		if plant.ID != id {
			remaining = append(remaining, plant)
		}
	}
	manager.plants = remaining
	manager.rescheduleLocked()
	return nil
}

// Reorder moves the plant at position from to position to, with the target
// interpreted against the list with the element already removed, then
// renumbers every plant's order to its index. Changed orders are persisted
// concurrently; if any write fails the optimistic list is discarded and the
// store's list reloaded.
func (manager *Manager) Reorder(ctx context.Context, from, to int) error {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if from < 0 || from >= len(manager.plants) || to < 0 || to >= len(manager.plants) {
		return ErrPositionOutOfRange
	}

	reordered := make([]models.Plant, 0, len(manager.plants))
	reordered = append(reordered, manager.plants[:from]...)
	reordered = append(reordered, manager.plants[from+1:]...)
	moved := manager.plants[from]
	reordered = append(reordered[:to], append([]models.Plant{moved}, reordered[to:]...)...)

	var changed []models.Plant
	for index := range reordered {
		if reordered[index].Order != index {
			reordered[index].Order = index
			changed = append(changed, reordered[index])
		}
	}

	manager.plants = reordered
	manager.rescheduleLocked()

	if len(changed) == 0 {
		return nil
	}

	if err := manager.persistOrders(ctx, changed); err != nil {
		if reloadErr := manager.loadLocked(ctx); reloadErr != nil {
			return fmt.Errorf("%w: %v (reload also failed: %v)", ErrReorder, err, reloadErr)
		}
		return fmt.Errorf("%w: %v", ErrReorder, err)
	}
	return nil
}

// persistOrders writes every changed order concurrently and reports the
// first failure.
func (manager *Manager) persistOrders(ctx context.Context, changed []models.Plant) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, plant := range changed {
		wg.Add(1)
		go func(plant models.Plant) {
			defer wg.Done()
			order := plant.Order
			if _, err := manager.store.Update(ctx, plant.ID, models.PlantUpdate{Order: &order}); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(plant)
	}

	wg.Wait()
	return firstErr
}

// replaceLocked swaps in the store's version of a plant. The file store
// returns the zero Plant for unknown ids, which leaves the list untouched.
func (manager *Manager) replaceLocked(updated models.Plant) {
	if updated.ID == "" {
		return
	}
	for index := range manager.plants {
		if manager.plants[index].ID == updated.ID {
			manager.plants[index] = updated
			manager.rescheduleLocked()
			return
		}
	}
}

func (manager *Manager) rescheduleLocked() {
	if !manager.loaded {
		return
	}
	plants := make([]models.Plant, len(manager.plants))
	copy(plants, manager.plants)
	manager.reminders.RescheduleAll(plants)
}
