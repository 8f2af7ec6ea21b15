package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
	"github.com/noah-isme/plano-treino/pkg/storage"
)

// Unit keys. Each key names one whole-structure storage unit.
const (
	TrainersUnit       = "trainers"
	studentsUnitSuffix = "_students"
)

// StudentsUnit returns the unit key holding a trainer's ledger.
func StudentsUnit(trainerLogin string) string {
	return trainerLogin + studentsUnitSuffix
}

// UnitStore reads and writes whole storage units. Read returns
// appErrors.ErrUnitNotFound when the unit was never written.
type UnitStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// FileUnitStore keeps each unit in <key>.json under a data directory, the
// same layout the original JSON files used.
type FileUnitStore struct {
	files *storage.LocalStorage
}

// NewFileUnitStore wraps a local storage directory.
func NewFileUnitStore(files *storage.LocalStorage) *FileUnitStore {
	return &FileUnitStore{files: files}
}

// Read loads the unit file.
func (s *FileUnitStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.files.Read(key + ".json")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.ErrUnitNotFound
		}
		return nil, fmt.Errorf("read unit %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the unit file atomically.
func (s *FileUnitStore) Write(ctx context.Context, key string, data []byte) error {
	if err := s.files.Save(key+".json", data); err != nil {
		return fmt.Errorf("write unit %s: %w", key, err)
	}
	return nil
}

// UnitObserver receives timing for every unit operation.
type UnitObserver interface {
	ObserveUnitOperation(op, key string, duration time.Duration, err error)
}

type instrumentedStore struct {
	next     UnitStore
	observer UnitObserver
}

// Instrument reports every read and write of store to observer.
func Instrument(store UnitStore, observer UnitObserver) UnitStore {
	if observer == nil {
		return store
	}
	return &instrumentedStore{next: store, observer: observer}
}

func (s *instrumentedStore) Read(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Read(ctx, key)
	s.observer.ObserveUnitOperation("read", key, time.Since(start), err)
	return data, err
}

func (s *instrumentedStore) Write(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.next.Write(ctx, key, data)
	s.observer.ObserveUnitOperation("write", key, time.Since(start), err)
	return err
}

// UnitLocker serialises read-modify-write cycles per unit key within this
// process. Writers in other processes are not coordinated; across processes
// the last whole-unit write wins.
type UnitLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewUnitLocker returns an empty locker.
func NewUnitLocker() *UnitLocker {
	return &UnitLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key and returns its release function.
func (l *UnitLocker) Lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
