package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quenchapp/quench/internal/models"
)

// FileStore keeps the whole plant list as one JSON blob in a single file,
// rewritten wholesale on every mutation.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (store *FileStore) List(ctx context.Context) ([]models.Plant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	plants, err := store.load()
	if err != nil {
		return nil, &OpError{Op: OpList, Err: err}
	}
	return plants, nil
}

func (store *FileStore) Create(ctx context.Context, name string, intervalDays, order int) (models.Plant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	plants, err := store.load()
	if err != nil {
		return models.Plant{}, &OpError{Op: OpCreate, Err: err}
	}

	plant := models.Plant{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		IntervalDays: intervalDays,
		LastWatered:  store.now().UnixMilli(),
		Order:        order,
	}
	plants = append(plants, plant)

	if err := store.save(plants); err != nil {
		return models.Plant{}, &OpError{Op: OpCreate, Err: err}
	}
	return plant, nil
}

// Update applies the change set to the matching plant. An unknown id is a
// silent no-op: the zero Plant comes back with no error.
func (store *FileStore) Update(ctx context.Context, id string, updates models.PlantUpdate) (models.Plant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	plants, err := store.load()
	if err != nil {
		return models.Plant{}, &OpError{Op: OpUpdate, Err: err}
	}

	var updated models.Plant
	for i := range plants {
		if plants[i].ID != id {
			continue
		}
		applyUpdate(&plants[i], updates)
		updated = plants[i]
	}

	if err := store.save(plants); err != nil {
		return models.Plant{}, &OpError{Op: OpUpdate, Err: err}
	}
	return updated, nil
}

func (store *FileStore) Delete(ctx context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	plants, err := store.load()
	if err != nil {
		return &OpError{Op: OpDelete, Err: err}
	}

	remaining := plants[:0]
	for _, plant := range plants {
		if plant.ID != id {
			remaining = append(remaining, plant)
		}
	}

	if err := store.save(remaining); err != nil {
		return &OpError{Op: OpDelete, Err: err}
	}
	return nil
}

func (store *FileStore) Water(ctx context.Context, id string) (models.Plant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	plants, err := store.load()
	if err != nil {
		return models.Plant{}, &OpError{Op: OpWater, Err: err}
	}

	var watered models.Plant
	wateredAt := store.now().UnixMilli()
	for i := range plants {
		if plants[i].ID != id {
			continue
		}
		plants[i].LastWatered = wateredAt
		watered = plants[i]
	}

	if err := store.save(plants); err != nil {
		return models.Plant{}, &OpError{Op: OpWater, Err: err}
	}
	return watered, nil
}

func (store *FileStore) load() ([]models.Plant, error) {
	content, err := os.ReadFile(store.path)
	if os.IsNotExist(err) {
		return []models.Plant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading plants file: %w", err)
	}

	var plants []models.Plant
	if err := json.Unmarshal(content, &plants); err != nil {
		return nil, fmt.Errorf("decoding plants file: %w", err)
	}
	return plants, nil
}

func (store *FileStore) save(plants []models.Plant) error {
	if plants == nil {
		plants = []models.Plant{}
	}
	content, err := json.Marshal(plants)
	if err != nil {
		return fmt.Errorf("encoding plants: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(store.path, content, 0644); err != nil {
		return fmt.Errorf("writing plants file: %w", err)
	}
	return nil
}

func applyUpdate(plant *models.Plant, updates models.PlantUpdate) {
	if updates.Name != nil {
		plant.Name = strings.TrimSpace(*updates.Name)
	}
	if updates.IntervalDays != nil {
		plant.IntervalDays = *updates.IntervalDays
	}
	if updates.LastWatered != nil {
		plant.LastWatered = *updates.LastWatered
	}
	if updates.Order != nil {
		plant.Order = *updates.Order
	}
}
