package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quenchapp/quench/internal/models"
)

// APIStore talks to the remote plants API, translating between the client
// field names and the wire field names.
type APIStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPIStore(baseURL, token string) *APIStore {
	return &APIStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type wirePlant struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	WateringIntervalDays int     `json:"watering_interval_days"`
	LastWateredAt        *string `json:"last_watered_at"`
	Order                int     `json:"order"`
}

type wireEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (store *APIStore) List(ctx context.Context) ([]models.Plant, error) {
	var wirePlants []wirePlant
	if err := store.do(ctx, http.MethodGet, "/plants", nil, &wirePlants); err != nil {
		return nil, &OpError{Op: OpList, Err: err}
	}

	plants := make([]models.Plant, 0, len(wirePlants))
	for _, wp := range wirePlants {
		plants = append(plants, toClientPlant(wp))
	}
	return plants, nil
}

func (store *APIStore) Create(ctx context.Context, name string, intervalDays, order int) (models.Plant, error) {
	body := map[string]interface{}{
		"plant": map[string]interface{}{
			"name":                   strings.TrimSpace(name),
			"watering_interval_days": intervalDays,
			"order":                  order,
		},
	}

	var created wirePlant
	if err := store.do(ctx, http.MethodPost, "/plants", body, &created); err != nil {
		return models.Plant{}, &OpError{Op: OpCreate, Err: err}
	}
	return toClientPlant(created), nil
}

// Update sends only the fields that changed.
func (store *APIStore) Update(ctx context.Context, id string, updates models.PlantUpdate) (models.Plant, error) {
	body := map[string]interface{}{"plant": toWireFields(updates)}

	var updated wirePlant
	if err := store.do(ctx, http.MethodPut, "/plants/"+id, body, &updated); err != nil {
		return models.Plant{}, &OpError{Op: OpUpdate, Err: err}
	}
	return toClientPlant(updated), nil
}

func (store *APIStore) Delete(ctx context.Context, id string) error {
	if err := store.do(ctx, http.MethodDelete, "/plants/"+id, nil, nil); err != nil {
		return &OpError{Op: OpDelete, Err: err}
	}
	return nil
}

func (store *APIStore) Water(ctx context.Context, id string) (models.Plant, error) {
	var watered wirePlant
	if err := store.do(ctx, http.MethodPost, "/plants/"+id+"/water", nil, &watered); err != nil {
		return models.Plant{}, &OpError{Op: OpWater, Err: err}
	}
	return toClientPlant(watered), nil
}

func (store *APIStore) do(ctx context.Context, method, path string, body, result interface{}) error {
	var requestBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		requestBody = bytes.NewBuffer(encoded)
	} else {
		requestBody = &bytes.Buffer{}
	}

	request, err := http.NewRequestWithContext(ctx, method, store.baseURL+path, requestBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if store.token != "" {
		request.Header.Set("Authorization", "Bearer "+store.token)
	}

	response, err := store.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", response.StatusCode)
	}

	if result == nil {
		return nil
	}

	var envelope wireEnvelope
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func toClientPlant(wp wirePlant) models.Plant {
	lastWatered := time.Now().UnixMilli()
	if wp.LastWateredAt != nil {
		if parsed, err := time.Parse(time.RFC3339, *wp.LastWateredAt); err == nil {
			lastWatered = parsed.UnixMilli()
		}
	}
	return models.Plant{
		ID:           wp.ID,
		Name:         wp.Name,
		IntervalDays: wp.WateringIntervalDays,
		LastWatered:  lastWatered,
		Order:        wp.Order,
	}
}

func toWireFields(updates models.PlantUpdate) map[string]interface{} {
	fields := make(map[string]interface{})
	if updates.Name != nil {
		fields["name"] = strings.TrimSpace(*updates.Name)
	}
	if updates.IntervalDays != nil {
		fields["watering_interval_days"] = *updates.IntervalDays
	}
	if updates.LastWatered != nil {
		fields["last_watered_at"] = time.UnixMilli(*updates.LastWatered).UTC().Format(time.RFC3339)
	}
	if updates.Order != nil {
		fields["order"] = *updates.Order
	}
	return fields
}
