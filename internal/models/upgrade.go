package models

import (
	"encoding/json"
	"fmt"
)

// CurrentSchemaVersion is the ledger layout written by this module.
// Version 0 is any ledger written before schema_version existed.
const CurrentSchemaVersion = 1

// storedLedger mirrors the persisted layout with every optional field
// nullable, so an upgrade step can tell a missing field from a zero value.
type storedLedger struct {
	SchemaVersion int                       `json:"schema_version"`
	LastID        *int                      `json:"last_id"`
	Students      map[string]*storedStudent `json:"students"`
}

type storedStudent struct {
	Name              string          `json:"name"`
	Weight            float64         `json:"weight"`
	Height            float64         `json:"height"`
	Email             *string         `json:"email"`
	Login             *string         `json:"login"`
	Password          *string         `json:"password"`
	CompletedWorkouts *int            `json:"completed_workouts"`
	WeightHistory     []WeightEntry   `json:"weight_history"`
	Workouts          []WorkoutRecord `json:"workouts"`
}

type upgradeStep func(l *storedLedger)

// upgradeSteps[v] upgrades a ledger from version v to v+1.
var upgradeSteps = []upgradeStep{
	backfillStudentDefaults,
}

// DecodeLedger parses a persisted ledger and upgrades it in memory to
// CurrentSchemaVersion. The result is written back on the next save.
func DecodeLedger(data []byte) (*Ledger, error) {
	var stored storedLedger
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	if stored.SchemaVersion > CurrentSchemaVersion {
		return nil, fmt.Errorf("decode ledger: schema version %d is newer than supported %d", stored.SchemaVersion, CurrentSchemaVersion)
	}
	upgradeLedger(&stored)
	return stored.toLedger(), nil
}

// upgradeLedger applies every pending upgrade step in order.
func upgradeLedger(l *storedLedger) {
	for v := l.SchemaVersion; v < CurrentSchemaVersion; v++ {
		upgradeSteps[v](l)
	}
	l.SchemaVersion = CurrentSchemaVersion
}

// backfillStudentDefaults fills fields that early ledgers did not carry.
func backfillStudentDefaults(l *storedLedger) {
	if l.LastID == nil {
		zero := 0
		l.LastID = &zero
	}
	if l.Students == nil {
		l.Students = make(map[string]*storedStudent)
	}
	for id, s := range l.Students {
		if s == nil {
			delete(l.Students, id)
			continue
		}
		if s.CompletedWorkouts == nil {
			zero := 0
			s.CompletedWorkouts = &zero
		}
		if s.WeightHistory == nil {
			s.WeightHistory = []WeightEntry{}
		}
		if s.Login == nil {
			login := DeriveLogin(s.Name, id)
			s.Login = &login
		}
		if s.Email == nil {
			empty := ""
			s.Email = &empty
		}
		for i := range s.Workouts {
			if s.Workouts[i].Completed == nil {
				s.Workouts[i].Completed = make([]bool, len(s.Workouts[i].Exercises))
			}
		}
	}
}

func (l *storedLedger) toLedger() *Ledger {
	out := &Ledger{
		SchemaVersion: l.SchemaVersion,
		Students:      make(map[string]*StudentRecord, len(l.Students)),
	}
	if l.LastID != nil {
		out.LastID = *l.LastID
	}
	for id, s := range l.Students {
		if s == nil {
			continue
		}
		rec := &StudentRecord{
			ID:            id,
			Name:          s.Name,
			Weight:        s.Weight,
			Height:        s.Height,
			Password:      s.Password,
			WeightHistory: s.WeightHistory,
			Workouts:      s.Workouts,
		}
		if s.Email != nil {
			rec.Email = *s.Email
		}
		if s.Login != nil {
			rec.Login = *s.Login
		} else {
			rec.Login = DeriveLogin(s.Name, id)
		}
		if s.CompletedWorkouts != nil {
			rec.CompletedWorkouts = *s.CompletedWorkouts
		}
		if rec.WeightHistory == nil {
			rec.WeightHistory = []WeightEntry{}
		}
		if rec.Workouts == nil {
			rec.Workouts = []WorkoutRecord{}
		}
		for i := range rec.Workouts {
			rec.Workouts[i].normalizeCompletion()
		}
		out.Students[id] = rec
	}
	return out
}

// EncodeLedger serializes the whole ledger.
func EncodeLedger(l *Ledger) ([]byte, error) {
	if l.Students == nil {
		l.Students = make(map[string]*StudentRecord)
	}
	l.SchemaVersion = CurrentSchemaVersion
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}
