package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/quenchapp/quench/internal/models"
	"github.com/quenchapp/quench/internal/repository"
)

type PlantHandler struct {
	plantRepo repository.PlantRepository
}

func NewPlantHandler(plantRepo repository.PlantRepository) *PlantHandler {
	return &PlantHandler{plantRepo: plantRepo}
}

// serverPlant is the wire shape of a plant record.
type serverPlant struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	WateringIntervalDays int     `json:"watering_interval_days"`
	LastWateredAt        *string `json:"last_watered_at"`
	Order                int     `json:"order"`
	InsertedAt           string  `json:"inserted_at"`
	UpdatedAt            string  `json:"updated_at"`
}

// plantParams carries request fields; nil means the field was not sent.
type plantParams struct {
	Name                 *string `json:"name"`
	WateringIntervalDays *int    `json:"watering_interval_days"`
	LastWateredAt        *string `json:"last_watered_at"`
	Order                *int    `json:"order"`
}

type plantRequest struct {
	Plant plantParams `json:"plant"`
}

func (handler *PlantHandler) List(w http.ResponseWriter, r *http.Request) {
	plants, err := handler.plantRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("listing plants", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load plants"})
		return
	}

	payload := make([]serverPlant, 0, len(plants))
	for _, plant := range plants {
		payload = append(payload, toServerPlant(plant))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": payload})
}

func (handler *PlantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request plantRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	params := request.Plant

	if params.Name == nil || models.ValidatePlantName(*params.Name) != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "name must not be empty"})
		return
	}
	if params.WateringIntervalDays == nil || models.ValidateIntervalDays(*params.WateringIntervalDays) != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "watering_interval_days must be between 1 and 365"})
		return
	}

	record := models.PlantRecord{
		Name:                 strings.TrimSpace(*params.Name),
		WateringIntervalDays: *params.WateringIntervalDays,
	}
	if params.Order != nil {
		record.Position = *params.Order
	}
	if params.LastWateredAt != nil {
		wateredAt, err := time.Parse(time.RFC3339, *params.LastWateredAt)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "last_watered_at must be an ISO-8601 timestamp"})
			return
		}
		record.LastWateredAt = &wateredAt
	}

	created, err := handler.plantRepo.Create(r.Context(), record)
	if err != nil {
		slog.Error("creating plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create plant"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": toServerPlant(created)})
}

func (handler *PlantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request plantRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	params := request.Plant

	var changes models.PlantChanges
	if params.Name != nil {
		if models.ValidatePlantName(*params.Name) != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "name must not be empty"})
			return
		}
		trimmed := strings.TrimSpace(*params.Name)
		changes.Name = &trimmed
	}
	if params.WateringIntervalDays != nil {
		if models.ValidateIntervalDays(*params.WateringIntervalDays) != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "watering_interval_days must be between 1 and 365"})
			return
		}
		changes.WateringIntervalDays = params.WateringIntervalDays
	}
	if params.LastWateredAt != nil {
		wateredAt, err := time.Parse(time.RFC3339, *params.LastWateredAt)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "last_watered_at must be an ISO-8601 timestamp"})
			return
		}
		changes.LastWateredAt = &wateredAt
	}
	if params.Order != nil {
		changes.Position = params.Order
	}

	updated, err := handler.plantRepo.Update(r.Context(), chi.URLParam(r, "id"), changes)
	if errors.Is(err, repository.ErrPlantNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plant not found"})
		return
	}
	if err != nil {
		slog.Error("updating plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update plant"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toServerPlant(updated)})
}

func (handler *PlantHandler) Water(w http.ResponseWriter, r *http.Request) {
	watered, err := handler.plantRepo.Water(r.Context(), chi.URLParam(r, "id"), time.Now())
	if errors.Is(err, repository.ErrPlantNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plant not found"})
		return
	}
	if err != nil {
		slog.Error("watering plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to water plant"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": toServerPlant(watered)})
}

func (handler *PlantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := handler.plantRepo.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrPlantNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plant not found"})
		return
	}
	if err != nil {
		slog.Error("deleting plant", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete plant"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toServerPlant(record models.PlantRecord) serverPlant {
	plant := serverPlant{
		ID:                   record.ID,
		Name:                 record.Name,
		WateringIntervalDays: record.WateringIntervalDays,
		Order:                record.Position,
		InsertedAt:           record.InsertedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            record.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if record.LastWateredAt != nil {
		formatted := record.LastWateredAt.UTC().Format(time.RFC3339)
		plant.LastWateredAt = &formatted
	}
	return plant
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
