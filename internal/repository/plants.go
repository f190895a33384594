package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quenchapp/quench/internal/models"
)

var ErrPlantNotFound = errors.New("plant not found")

type PlantRepository interface {
	FindAll(ctx context.Context) ([]models.PlantRecord, error)
	FindByID(ctx context.Context, id string) (models.PlantRecord, error)
	Create(ctx context.Context, plant models.PlantRecord) (models.PlantRecord, error)
	Update(ctx context.Context, id string, changes models.PlantChanges) (models.PlantRecord, error)
	Water(ctx context.Context, id string, wateredAt time.Time) (models.PlantRecord, error)
	Delete(ctx context.Context, id string) error
}

type SQLitePlantRepository struct {
	database *sql.DB
}

func NewPlantRepository(database *sql.DB) *SQLitePlantRepository {
	return &SQLitePlantRepository{database: database}
}

func (repository *SQLitePlantRepository) FindAll(ctx context.Context) ([]models.PlantRecord, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, name, watering_interval_days, last_watered_at, position, inserted_at, updated_at
		FROM plants ORDER BY position ASC, inserted_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("finding plants: %w", err)
	}
	defer rows.Close()

	return scanPlants(rows)
}

func (repository *SQLitePlantRepository) FindByID(ctx context.Context, id string) (models.PlantRecord, error) {
	var plant models.PlantRecord
	err := repository.database.QueryRowContext(ctx,
		`SELECT id, name, watering_interval_days, last_watered_at, position, inserted_at, updated_at
		FROM plants WHERE id = ?`, id,
	).Scan(
		&plant.ID, &plant.Name, &plant.WateringIntervalDays,
		&plant.LastWateredAt, &plant.Position, &plant.InsertedAt, &plant.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlantRecord{}, ErrPlantNotFound
	}
	if err != nil {
		return models.PlantRecord{}, fmt.Errorf("finding plant by id: %w", err)
	}
	return plant, nil
}

func (repository *SQLitePlantRepository) Create(ctx context.Context, plant models.PlantRecord) (models.PlantRecord, error) {
	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	plant.InsertedAt = now
	plant.UpdatedAt = now
	if plant.LastWateredAt == nil {
		plant.LastWateredAt = &now
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO plants (id, name, watering_interval_days, last_watered_at, position, inserted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plant.ID, plant.Name, plant.WateringIntervalDays,
		plant.LastWateredAt, plant.Position, plant.InsertedAt, plant.UpdatedAt,
	)
	if err != nil {
		return models.PlantRecord{}, fmt.Errorf("creating plant: %w", err)
	}
	return plant, nil
}

func (repository *SQLitePlantRepository) Update(ctx context.Context, id string, changes models.PlantChanges) (models.PlantRecord, error) {
	query := "UPDATE plants SET updated_at = ?"
	args := []interface{}{time.Now().UTC()}

	if changes.Name != nil {
		query += ", name = ?"
		args = append(args, *changes.Name)
	}
	if changes.WateringIntervalDays != nil {
		query += ", watering_interval_days = ?"
		args = append(args, *changes.WateringIntervalDays)
	}
	if changes.LastWateredAt != nil {
		query += ", last_watered_at = ?"
		args = append(args, *changes.LastWateredAt)
	}
	if changes.Position != nil {
		query += ", position = ?"
		args = append(args, *changes.Position)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := repository.database.ExecContext(ctx, query, args...)
	if err != nil {
		return models.PlantRecord{}, fmt.Errorf("updating plant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.PlantRecord{}, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return models.PlantRecord{}, ErrPlantNotFound
	}

	return repository.FindByID(ctx, id)
}

func (repository *SQLitePlantRepository) Water(ctx context.Context, id string, wateredAt time.Time) (models.PlantRecord, error) {
	wateredAt = wateredAt.UTC()
	return repository.Update(ctx, id, models.PlantChanges{LastWateredAt: &wateredAt})
}

func (repository *SQLitePlantRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM plants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting plant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrPlantNotFound
	}
	return nil
}

func scanPlants(rows *sql.Rows) ([]models.PlantRecord, error) {
	var plants []models.PlantRecord
	for rows.Next() {
		var plant models.PlantRecord
		if err := rows.Scan(
			&plant.ID, &plant.Name, &plant.WateringIntervalDays,
			&plant.LastWateredAt, &plant.Position, &plant.InsertedAt, &plant.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning plant: %w", err)
		}
		plants = append(plants, plant)
	}
	return plants, rows.Err()
}
