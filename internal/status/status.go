package status

import (
	"fmt"
	"time"

	"github.com/quenchapp/quench/internal/models"
)

const (
	millisecondsPerHour = int64(time.Hour / time.Millisecond)
	millisecondsPerDay  = 24 * millisecondsPerHour
)

// NextWatering returns the instant a plant is next due, derived from its
// last watering and cadence.
func NextWatering(plant models.Plant) time.Time {
	return time.UnixMilli(plant.LastWatered + int64(plant.IntervalDays)*millisecondsPerDay)
}

// ForPlant classifies a plant's watering state at the given instant. The
// result depends on wall-clock time and must be recomputed on every display
// refresh, never stored.
func ForPlant(plant models.Plant, now time.Time) models.PlantStatusInfo {
	nextWateringTime := NextWatering(plant)
	timeUntilWatering := nextWateringTime.UnixMilli() - now.UnixMilli()

	if timeUntilWatering < 0 {
		return models.PlantStatusInfo{
			Type:           models.StatusOverdue,
			StatusLabel:    "Overdue",
			CountdownLabel: FormatTimeRemaining(-timeUntilWatering),
		}
	}

	if timeUntilWatering <= millisecondsPerDay {
		return models.PlantStatusInfo{
			Type:           models.StatusDueSoon,
			StatusLabel:    "Due Soon",
			CountdownLabel: FormatTimeRemaining(timeUntilWatering),
		}
	}

	return models.PlantStatusInfo{
		Type:           models.StatusHealthy,
		StatusLabel:    "Healthy",
		CountdownLabel: FormatTimeRemaining(timeUntilWatering),
	}
}

// FormatTimeRemaining renders a non-negative millisecond duration as a
// human countdown, pluralizing days and hours independently.
func FormatTimeRemaining(milliseconds int64) string {
	totalHours := milliseconds / millisecondsPerHour
	days := totalHours / 24
	hours := totalHours % 24

	if days > 0 {
		return fmt.Sprintf("%d %s, %d %s", days, pluralize(days, "day"), hours, pluralize(hours, "hour"))
	}
	if hours > 0 {
		return fmt.Sprintf("%d %s", hours, pluralize(hours, "hour"))
	}
	return "Less than 1 hour"
}

func pluralize(count int64, unit string) string {
	if count == 1 {
		return unit
	}
	return unit + "s"
}
