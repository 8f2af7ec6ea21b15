package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// TrainerRepository persists the trainer directory as one unit.
type TrainerRepository struct {
	units UnitStore
}

// NewTrainerRepository creates a new instance of TrainerRepository.
func NewTrainerRepository(units UnitStore) *TrainerRepository {
	return &TrainerRepository{units: units}
}

// Load returns the directory, or an empty one when nothing was saved yet.
func (r *TrainerRepository) Load(ctx context.Context) (*models.TrainerDirectory, error) {
	data, err := r.units.Read(ctx, TrainersUnit)
	if err != nil {
		if errors.Is(err, appErrors.ErrUnitNotFound) {
			return models.NewTrainerDirectory(), nil
		}
		return nil, err
	}
	dir := models.NewTrainerDirectory()
	if err := json.Unmarshal(data, dir); err != nil {
		return nil, fmt.Errorf("decode trainer directory: %w", err)
	}
	return dir, nil
}

// Save overwrites the whole directory.
func (r *TrainerRepository) Save(ctx context.Context, dir *models.TrainerDirectory) error {
	data, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("encode trainer directory: %w", err)
	}
	return r.units.Write(ctx, TrainersUnit, data)
}
