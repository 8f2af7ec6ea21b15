package service

import (
	"context"
	"sync"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

type ledgerRepository interface {
	Load(ctx context.Context, trainerLogin string) (*models.Ledger, error)
	Save(ctx context.Context, trainerLogin string, ledger *models.Ledger) error
}

type trainerDirectoryRepository interface {
	Load(ctx context.Context) (*models.TrainerDirectory, error)
	Save(ctx context.Context, dir *models.TrainerDirectory) error
}

type unitLocker interface {
	Lock(key string) func()
}

// globalLocker is the fallback when no per-unit locker is injected: every
// unit shares one mutex.
type globalLocker struct {
	mu sync.Mutex
}

func (l *globalLocker) Lock(string) func() {
	l.mu.Lock()
	return l.mu.Unlock
}

func lockerOrDefault(l unitLocker) unitLocker {
	if l == nil {
		return &globalLocker{}
	}
	return l
}

const trainerDirectoryLock = "trainers"

func ledgerLock(trainerLogin string) string {
	return "ledger:" + trainerLogin
}

// ledgerUnitOfWork runs one load-mutate-save cycle on a trainer's ledger
// while holding that ledger's lock. Nothing is written when fn fails.
type ledgerUnitOfWork struct {
	repo   ledgerRepository
	locker unitLocker
}

func (u ledgerUnitOfWork) update(ctx context.Context, trainerLogin string, fn func(*models.Ledger) error) error {
	release := u.locker.Lock(ledgerLock(trainerLogin))
	defer release()

	ledger, err := u.repo.Load(ctx, trainerLogin)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load ledger")
	}
	if err := fn(ledger); err != nil {
		return err
	}
	if err := u.repo.Save(ctx, trainerLogin, ledger); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to save ledger")
	}
	return nil
}

func (u ledgerUnitOfWork) read(ctx context.Context, trainerLogin string) (*models.Ledger, error) {
	ledger, err := u.repo.Load(ctx, trainerLogin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load ledger")
	}
	return ledger, nil
}

func findStudent(ledger *models.Ledger, id string) (*models.StudentRecord, error) {
	student, ok := ledger.Students[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "student "+id+" not found")
	}
	return student, nil
}
