package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/quenchapp/quench/internal/config"
	"github.com/quenchapp/quench/internal/server"
	"github.com/quenchapp/quench/internal/testutil"
)

type plantPayload struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	WateringIntervalDays int     `json:"watering_interval_days"`
	LastWateredAt        *string `json:"last_watered_at"`
	Order                int     `json:"order"`
	InsertedAt           string  `json:"inserted_at"`
	UpdatedAt            string  `json:"updated_at"`
}

func newTestServer(t *testing.T, apiToken string) http.Handler {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	return server.New(db, config.Config{Port: "0", APIToken: apiToken}).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body != "" {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	} else {
		request = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder) plantPayload {
	t.Helper()
	var envelope struct {
		Data plantPayload `json:"data"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return envelope.Data
}

func createPlant(t *testing.T, handler http.Handler, name string, intervalDays, order int) plantPayload {
	t.Helper()
	recorder := doJSON(t, handler, http.MethodPost, "/api/plants",
		`{"plant": {"name": "`+name+`", "watering_interval_days": `+strconv.Itoa(intervalDays)+`, "order": `+strconv.Itoa(order)+`}}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating plant: status %d, body %s", recorder.Code, recorder.Body.String())
	}
	return decodeData(t, recorder)
}

func TestPlantsAPI_ListEmpty(t *testing.T) {
	handler := newTestServer(t, "")

	recorder := doJSON(t, handler, http.MethodGet, "/api/plants", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var envelope struct {
		Data []plantPayload `json:"data"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data == nil || len(envelope.Data) != 0 {
		t.Errorf("expected empty data array, got %v", envelope.Data)
	}
}

func TestPlantsAPI_CreateAndList(t *testing.T) {
	handler := newTestServer(t, "")

	created := createPlant(t, handler, "Monstera", 7, 0)
	if created.ID == "" {
		t.Error("expected non-empty id")
	}
	if created.LastWateredAt == nil {
		t.Error("expected last_watered_at defaulted on create")
	}

	recorder := doJSON(t, handler, http.MethodGet, "/api/plants", "")
	var envelope struct {
		Data []plantPayload `json:"data"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Monstera" {
		t.Errorf("expected the created plant back, got %v", envelope.Data)
	}
}

func TestPlantsAPI_CreateValidation(t *testing.T) {
	handler := newTestServer(t, "")

	cases := []struct {
		name string
		body string
	}{
		{"empty name", `{"plant": {"name": "   ", "watering_interval_days": 7}}`},
		{"missing name", `{"plant": {"watering_interval_days": 7}}`},
		{"interval zero", `{"plant": {"name": "Fern", "watering_interval_days": 0}}`},
		{"interval too large", `{"plant": {"name": "Fern", "watering_interval_days": 400}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doJSON(t, handler, http.MethodPost, "/api/plants", tc.body)
			if recorder.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", recorder.Code)
			}
		})
	}

	recorder := doJSON(t, handler, http.MethodGet, "/api/plants", "")
	var envelope struct {
		Data []plantPayload `json:"data"`
	}
	json.NewDecoder(recorder.Body).Decode(&envelope)
	if len(envelope.Data) != 0 {
		t.Errorf("rejected creates must not persist anything, got %v", envelope.Data)
	}
}

func TestPlantsAPI_UpdatePartial(t *testing.T) {
	handler := newTestServer(t, "")
	created := createPlant(t, handler, "Fern", 3, 0)

	recorder := doJSON(t, handler, http.MethodPut, "/api/plants/"+created.ID,
		`{"plant": {"order": 4}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	updated := decodeData(t, recorder)
	if updated.Order != 4 {
		t.Errorf("expected order 4, got %d", updated.Order)
	}
	if updated.Name != "Fern" || updated.WateringIntervalDays != 3 {
		t.Errorf("partial update touched other fields: %+v", updated)
	}
}

func TestPlantsAPI_UpdateMissingPlant(t *testing.T) {
	handler := newTestServer(t, "")

	recorder := doJSON(t, handler, http.MethodPut, "/api/plants/no-such-id",
		`{"plant": {"name": "Ghost"}}`)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", recorder.Code)
	}
}

func TestPlantsAPI_Water(t *testing.T) {
	handler := newTestServer(t, "")
	created := createPlant(t, handler, "Pothos", 7, 0)

	recorder := doJSON(t, handler, http.MethodPost, "/api/plants/"+created.ID+"/water", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	watered := decodeData(t, recorder)
	if watered.LastWateredAt == nil {
		t.Error("expected last_watered_at set after watering")
	}
}

func TestPlantsAPI_DeleteThenGone(t *testing.T) {
	handler := newTestServer(t, "")
	created := createPlant(t, handler, "Doomed", 7, 0)

	recorder := doJSON(t, handler, http.MethodDelete, "/api/plants/"+created.ID, "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}

	// A second delete and a water on the dead id both 404; nothing resurrects.
	if recorder := doJSON(t, handler, http.MethodDelete, "/api/plants/"+created.ID, ""); recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 on repeated delete, got %d", recorder.Code)
	}
	if recorder := doJSON(t, handler, http.MethodPost, "/api/plants/"+created.ID+"/water", ""); recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 watering a deleted plant, got %d", recorder.Code)
	}

	listRecorder := doJSON(t, handler, http.MethodGet, "/api/plants", "")
	var envelope struct {
		Data []plantPayload `json:"data"`
	}
	json.NewDecoder(listRecorder.Body).Decode(&envelope)
	if len(envelope.Data) != 0 {
		t.Errorf("expected empty list after delete, got %v", envelope.Data)
	}
}

func TestPlantsAPI_TokenAuth(t *testing.T) {
	handler := newTestServer(t, "sekrit")

	recorder := doJSON(t, handler, http.MethodGet, "/api/plants", "")
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", recorder.Code)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
	request.Header.Set("Authorization", "Bearer sekrit")
	authed := httptest.NewRecorder()
	handler.ServeHTTP(authed, request)
	if authed.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", authed.Code)
	}
}

func TestICalFeed(t *testing.T) {
	handler := newTestServer(t, "")
	createPlant(t, handler, "Monstera", 7, 0)

	recorder := doJSON(t, handler, http.MethodGet, "/ical", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	feed := recorder.Body.String()
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("expected a VCALENDAR document")
	}
	if !strings.Contains(feed, "SUMMARY:Water Monstera") {
		t.Errorf("expected a watering todo for Monstera, got:\n%s", feed)
	}
	if !strings.Contains(feed, "DUE:") {
		t.Error("expected a DUE property")
	}
}
