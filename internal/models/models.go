package models

import (
	"errors"
	"strings"
	"time"
)

const (
	MinIntervalDays = 1
	MaxIntervalDays = 365
)

var (
	ErrEmptyName          = errors.New("plant name must not be empty")
	ErrIntervalOutOfRange = errors.New("watering interval must be between 1 and 365 days")
)

type PlantStatus string

const (
	StatusHealthy PlantStatus = "healthy"
	StatusDueSoon PlantStatus = "due-soon"
	StatusOverdue PlantStatus = "overdue"
)

// Plant is the client-side record the agent works with. LastWatered is
// milliseconds since the Unix epoch, matching the on-disk blob format.
type Plant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IntervalDays int    `json:"intervalDays"`
	LastWatered  int64  `json:"lastWatered"`
	Order        int    `json:"order"`
}

// PlantUpdate carries a partial change set. Nil fields are left untouched.
type PlantUpdate struct {
	Name         *string
	IntervalDays *int
	LastWatered  *int64
	Order        *int
}

// PlantStatusInfo is derived from a Plant and the current time. It is never
// persisted.
type PlantStatusInfo struct {
	Type           PlantStatus
	StatusLabel    string
	CountdownLabel string
}

// PlantRecord is the server-side row backing the REST API.
type PlantRecord struct {
	ID                   string
	Name                 string
	WateringIntervalDays int
	LastWateredAt        *time.Time
	Position             int
	InsertedAt           time.Time
	UpdatedAt            time.Time
}

// PlantChanges is the server-side partial update. Nil fields are not written.
type PlantChanges struct {
	Name                 *string
	WateringIntervalDays *int
	LastWateredAt        *time.Time
	Position             *int
}

func ValidatePlantName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

func ValidateIntervalDays(intervalDays int) error {
	if intervalDays < MinIntervalDays || intervalDays > MaxIntervalDays {
		return ErrIntervalOutOfRange
	}
	return nil
}
