package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/noah-isme/plano-treino/internal/models"
)

// memoryLedgerRepo keeps encoded units so every Load returns a fresh copy,
// the way a whole-unit store does.
type memoryLedgerRepo struct {
	mu      sync.Mutex
	units   map[string][]byte
	saves   int
	saveErr error
	loadErr error
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{units: map[string][]byte{}}
}

func (m *memoryLedgerRepo) Load(ctx context.Context, trainerLogin string) (*models.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.units[trainerLogin]
	if !ok {
		return models.NewLedger(), nil
	}
	return models.DecodeLedger(data)
}

func (m *memoryLedgerRepo) Save(ctx context.Context, trainerLogin string, ledger *models.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := models.EncodeLedger(ledger)
	if err != nil {
		return err
	}
	m.units[trainerLogin] = data
	m.saves++
	return nil
}

func (m *memoryLedgerRepo) put(trainerLogin string, raw string) {
	m.units[trainerLogin] = []byte(raw)
}

type memoryTrainerRepo struct {
	mu      sync.Mutex
	data    []byte
	saveErr error
}

func (m *memoryTrainerRepo) Load(ctx context.Context) (*models.TrainerDirectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := models.NewTrainerDirectory()
	if m.data == nil {
		return dir, nil
	}
	if err := json.Unmarshal(m.data, dir); err != nil {
		return nil, err
	}
	return dir, nil
}

func (m *memoryTrainerRepo) Save(ctx context.Context, dir *models.TrainerDirectory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(dir)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

type recordingNotifier struct {
	email    string
	password string
	err      error
}

func (n *recordingNotifier) SendTemporaryPassword(ctx context.Context, email, password string) error {
	n.email = email
	n.password = password
	return n.err
}

var errBoom = errors.New("disk full")
