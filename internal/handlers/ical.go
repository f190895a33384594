package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quenchapp/quench/internal/models"
	"github.com/quenchapp/quench/internal/repository"
	"github.com/quenchapp/quench/internal/status"
)

type ICalHandler struct {
	plantRepo repository.PlantRepository
	feedToken string
}

func NewICalHandler(plantRepo repository.PlantRepository, feedToken string) *ICalHandler {
	return &ICalHandler{plantRepo: plantRepo, feedToken: feedToken}
}

// Feed renders every plant's next watering as a VTODO so calendar apps can
// subscribe to the watering schedule.
func (handler *ICalHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if handler.feedToken != "" && r.URL.Query().Get("token") != handler.feedToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plants, err := handler.plantRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("finding plants for ical", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=quench.ics")

	now := time.Now()

	var builder strings.Builder
	builder.WriteString("BEGIN:VCALENDAR\r\n")
	builder.WriteString("VERSION:2.0\r\n")
	builder.WriteString("PRODID:-//Quench//Quench//EN\r\n")
	builder.WriteString("CALSCALE:GREGORIAN\r\n")
	builder.WriteString("METHOD:PUBLISH\r\n")
	builder.WriteString("X-WR-CALNAME:Watering Schedule\r\n")

	for _, record := range plants {
		plant := toClientPlant(record)
		info := status.ForPlant(plant, now)
		due := status.NextWatering(plant)

		builder.WriteString("BEGIN:VTODO\r\n")
		builder.WriteString(fmt.Sprintf("UID:%s@quench\r\n", record.ID))
		builder.WriteString(fmt.Sprintf("SUMMARY:Water %s\r\n", escapeICalText(record.Name)))
		builder.WriteString(fmt.Sprintf("DESCRIPTION:%s (%s)\r\n", escapeICalText(info.StatusLabel), escapeICalText(info.CountdownLabel)))
		builder.WriteString(fmt.Sprintf("DUE:%s\r\n", due.UTC().Format("20060102T150405Z")))
		builder.WriteString("STATUS:NEEDS-ACTION\r\n")
		if info.Type == models.StatusOverdue {
			builder.WriteString("PRIORITY:1\r\n")
		}
		builder.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", record.InsertedAt.UTC().Format("20060102T150405Z")))
		builder.WriteString("END:VTODO\r\n")
	}

	builder.WriteString("END:VCALENDAR\r\n")

	w.Write([]byte(builder.String()))
}

func toClientPlant(record models.PlantRecord) models.Plant {
	lastWatered := record.InsertedAt
	if record.LastWateredAt != nil {
		lastWatered = *record.LastWateredAt
	}
	return models.Plant{
		ID:           record.ID,
		Name:         record.Name,
		IntervalDays: record.WateringIntervalDays,
		LastWatered:  lastWatered.UnixMilli(),
		Order:        record.Position,
	}
}

func escapeICalText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ";", "\\;")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, "\n", "\\n")
	return text
}
