package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// LedgerRepository persists one ledger unit per trainer.
type LedgerRepository struct {
	units UnitStore
}

// NewLedgerRepository creates a new instance of LedgerRepository.
func NewLedgerRepository(units UnitStore) *LedgerRepository {
	return &LedgerRepository{units: units}
}

// Load returns the trainer's ledger upgraded to the current schema, or a
// fresh ledger when the trainer has none yet.
func (r *LedgerRepository) Load(ctx context.Context, trainerLogin string) (*models.Ledger, error) {
	data, err := r.units.Read(ctx, StudentsUnit(trainerLogin))
	if err != nil {
		if errors.Is(err, appErrors.ErrUnitNotFound) {
			return models.NewLedger(), nil
		}
		return nil, err
	}
	return models.DecodeLedger(data)
}

// Save overwrites the trainer's whole ledger.
func (r *LedgerRepository) Save(ctx context.Context, trainerLogin string, ledger *models.Ledger) error {
	data, err := models.EncodeLedger(ledger)
	if err != nil {
		return err
	}
	return r.units.Write(ctx, StudentsUnit(trainerLogin), data)
}
