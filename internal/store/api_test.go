package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/quenchapp/quench/internal/models"
	"github.com/quenchapp/quench/internal/store"
)

const testBaseURL = "http://plants.test/api"

func TestAPIStore_List(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/plants",
		httpmock.NewStringResponder(http.StatusOK, `{
			"data": [
				{
					"id": "abc",
					"name": "Monstera",
					"watering_interval_days": 7,
					"last_watered_at": "2025-06-01T08:00:00Z",
					"order": 0,
					"inserted_at": "2025-05-01T08:00:00Z",
					"updated_at": "2025-06-01T08:00:00Z"
				},
				{
					"id": "def",
					"name": "Fern",
					"watering_interval_days": 3,
					"last_watered_at": null,
					"order": 1,
					"inserted_at": "2025-05-01T08:00:00Z",
					"updated_at": "2025-05-01T08:00:00Z"
				}
			]
		}`))

	apiStore := store.NewAPIStore(testBaseURL, "")
	plants, err := apiStore.List(context.Background())
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(plants) != 2 {
		t.Fatalf("expected 2 plants, got %d", len(plants))
	}

	first := plants[0]
	if first.ID != "abc" || first.Name != "Monstera" || first.IntervalDays != 7 || first.Order != 0 {
		t.Errorf("unexpected field mapping: %+v", first)
	}
	wantWatered := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).UnixMilli()
	if first.LastWatered != wantWatered {
		t.Errorf("expected lastWatered %d, got %d", wantWatered, first.LastWatered)
	}

	// A null last_watered_at falls back to roughly now.
	second := plants[1]
	age := time.Since(time.UnixMilli(second.LastWatered))
	if age < 0 || age > time.Minute {
		t.Errorf("expected null last_watered_at to default to now, got %v ago", age)
	}
}

func TestAPIStore_CreateSendsEnvelope(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/plants",
		func(request *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(request.Body)
			var payload map[string]map[string]interface{}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("decoding request body: %v", err)
			}
			plant := payload["plant"]
			if plant["name"] != "Monstera" {
				t.Errorf("expected name 'Monstera', got %v", plant["name"])
			}
			if plant["watering_interval_days"] != float64(7) {
				t.Errorf("expected watering_interval_days 7, got %v", plant["watering_interval_days"])
			}
			if plant["order"] != float64(2) {
				t.Errorf("expected order 2, got %v", plant["order"])
			}

			return httpmock.NewStringResponse(http.StatusCreated, `{
				"data": {
					"id": "new-id",
					"name": "Monstera",
					"watering_interval_days": 7,
					"last_watered_at": "2025-06-01T08:00:00Z",
					"order": 2,
					"inserted_at": "2025-06-01T08:00:00Z",
					"updated_at": "2025-06-01T08:00:00Z"
				}
			}`), nil
		})

	apiStore := store.NewAPIStore(testBaseURL, "")
	created, err := apiStore.Create(context.Background(), "Monstera", 7, 2)
	if err != nil {
		t.Fatalf("creating: %v", err)
	}
	if created.ID != "new-id" || created.Order != 2 {
		t.Errorf("unexpected created plant: %+v", created)
	}
}

func TestAPIStore_UpdateSendsOnlyChangedFields(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPut, testBaseURL+"/plants/abc",
		func(request *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(request.Body)
			var payload map[string]map[string]interface{}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("decoding request body: %v", err)
			}
			plant := payload["plant"]
			if len(plant) != 1 {
				t.Errorf("expected exactly one changed field, got %v", plant)
			}
			if plant["order"] != float64(3) {
				t.Errorf("expected order 3, got %v", plant["order"])
			}

			return httpmock.NewStringResponse(http.StatusOK, `{
				"data": {
					"id": "abc",
					"name": "Monstera",
					"watering_interval_days": 7,
					"last_watered_at": "2025-06-01T08:00:00Z",
					"order": 3,
					"inserted_at": "2025-05-01T08:00:00Z",
					"updated_at": "2025-06-02T08:00:00Z"
				}
			}`), nil
		})

	apiStore := store.NewAPIStore(testBaseURL, "")
	order := 3
	updated, err := apiStore.Update(context.Background(), "abc", models.PlantUpdate{Order: &order})
	if err != nil {
		t.Fatalf("updating: %v", err)
	}
	if updated.Order != 3 {
		t.Errorf("expected order 3, got %d", updated.Order)
	}
}

func TestAPIStore_Water(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/plants/abc/water",
		httpmock.NewStringResponder(http.StatusOK, `{
			"data": {
				"id": "abc",
				"name": "Monstera",
				"watering_interval_days": 7,
				"last_watered_at": "2025-06-15T12:00:00Z",
				"order": 0,
				"inserted_at": "2025-05-01T08:00:00Z",
				"updated_at": "2025-06-15T12:00:00Z"
			}
		}`))

	apiStore := store.NewAPIStore(testBaseURL, "")
	watered, err := apiStore.Water(context.Background(), "abc")
	if err != nil {
		t.Fatalf("watering: %v", err)
	}
	want := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	if watered.LastWatered != want {
		t.Errorf("expected lastWatered %d, got %d", want, watered.LastWatered)
	}
}

func TestAPIStore_Delete(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodDelete, testBaseURL+"/plants/abc",
		httpmock.NewStringResponder(http.StatusNoContent, ""))

	apiStore := store.NewAPIStore(testBaseURL, "")
	if err := apiStore.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("deleting: %v", err)
	}
}

func TestAPIStore_NonSuccessStatusTagsOperation(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/plants",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":"boom"}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/plants/abc/water",
		httpmock.NewStringResponder(http.StatusNotFound, `{"error":"plant not found"}`))

	apiStore := store.NewAPIStore(testBaseURL, "")

	_, err := apiStore.List(context.Background())
	var opErr *store.OpError
	if !errors.As(err, &opErr) || opErr.Op != store.OpList {
		t.Errorf("expected list-tagged OpError, got %v", err)
	}

	_, err = apiStore.Water(context.Background(), "abc")
	if !errors.As(err, &opErr) || opErr.Op != store.OpWater {
		t.Errorf("expected water-tagged OpError, got %v", err)
	}
}

func TestAPIStore_SendsBearerToken(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/plants",
		func(request *http.Request) (*http.Response, error) {
			if request.Header.Get("Authorization") != "Bearer sekrit" {
				t.Errorf("expected bearer token header, got %q", request.Header.Get("Authorization"))
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"data": []}`), nil
		})

	apiStore := store.NewAPIStore(testBaseURL, "sekrit")
	if _, err := apiStore.List(context.Background()); err != nil {
		t.Fatalf("listing: %v", err)
	}
}
