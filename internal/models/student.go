package models

import (
	"fmt"
	"sort"
	"strings"
)

// DateLayout is the day format stored in weight history entries.
const DateLayout = "2006-01-02"

// WeightEntry is one point of a student's weight history.
type WeightEntry struct {
	Weight float64 `json:"weight"`
	Date   string  `json:"date"`
}

// StudentRecord is a student owned by exactly one trainer ledger.
// A nil Password means the student has not completed first access.
type StudentRecord struct {
	ID                string          `json:"-"`
	Name              string          `json:"name"`
	Weight            float64         `json:"weight"`
	Height            float64         `json:"height"`
	Email             string          `json:"email"`
	Login             string          `json:"login"`
	Password          *string         `json:"password"`
	CompletedWorkouts int             `json:"completed_workouts"`
	WeightHistory     []WeightEntry   `json:"weight_history"`
	Workouts          []WorkoutRecord `json:"workouts"`
}

// FirstAccessPending reports whether the student still has to choose a password.
func (s *StudentRecord) FirstAccessPending() bool {
	return s.Password == nil
}

// RecordWeight sets the current weight and appends it to the history.
func (s *StudentRecord) RecordWeight(weight float64, date string) {
	s.Weight = weight
	s.WeightHistory = append(s.WeightHistory, WeightEntry{Weight: weight, Date: date})
}

// Ledger is the per-trainer aggregate persisted as a single unit.
type Ledger struct {
	SchemaVersion int                       `json:"schema_version"`
	LastID        int                       `json:"last_id"`
	Students      map[string]*StudentRecord `json:"students"`
}

// NewLedger returns an empty ledger at the current schema version.
func NewLedger() *Ledger {
	return &Ledger{SchemaVersion: CurrentSchemaVersion, Students: make(map[string]*StudentRecord)}
}

// NextID advances the counter and returns the formatted ID. IDs are never
// reused, even after the student holding one is deleted.
func (l *Ledger) NextID() string {
	l.LastID++
	return FormatStudentID(l.LastID)
}

// IDs returns student IDs in insertion order. IDs are allocated
// monotonically, so numeric order is insertion order.
func (l *Ledger) IDs() []string {
	ids := make([]string, 0, len(l.Students))
	for id := range l.Students {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// FormatStudentID zero-pads the counter to three digits.
func FormatStudentID(n int) string {
	return fmt.Sprintf("%03d", n)
}

// DeriveLogin builds the student login from the first word of the name.
func DeriveLogin(name, id string) string {
	first := ""
	if fields := strings.Fields(name); len(fields) > 0 {
		first = strings.ToLower(fields[0])
	}
	return first + "_" + id
}
