package models

import "strings"

// WorkoutRecord is a workout assigned to a single student. Completed always
// has one entry per exercise.
type WorkoutRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Exercises   []string `json:"exercises"`
	Completed   []bool   `json:"completed"`
}

// NewWorkoutRecord splits raw exercise text into one exercise per line.
// Lines are kept verbatim, empty ones included.
func NewWorkoutRecord(name, description, exerciseLines string) WorkoutRecord {
	exercises := strings.Split(exerciseLines, "\n")
	return WorkoutRecord{
		Name:        name,
		Description: description,
		Exercises:   exercises,
		Completed:   make([]bool, len(exercises)),
	}
}

// ResetCompletion clears every checkbox.
func (w *WorkoutRecord) ResetCompletion() {
	w.Completed = make([]bool, len(w.Exercises))
}

// HasExercise reports whether index addresses an exercise.
func (w *WorkoutRecord) HasExercise(index int) bool {
	return index >= 0 && index < len(w.Exercises)
}

// normalizeCompletion restores the completion parity, keeping existing marks.
func (w *WorkoutRecord) normalizeCompletion() {
	if w.Exercises == nil {
		w.Exercises = []string{}
	}
	if len(w.Completed) == len(w.Exercises) {
		return
	}
	completed := make([]bool, len(w.Exercises))
	copy(completed, w.Completed)
	w.Completed = completed
}
