package service

import (
	"fmt"

	"github.com/noah-isme/plano-treino/internal/models"
)

// DefaultAdvisoryThreshold is the completed-workout count that raises an advisory.
const DefaultAdvisoryThreshold = 5

// advisoryFor returns nil while the student is below threshold.
func advisoryFor(student *models.StudentRecord, threshold int) *models.Advisory {
	if threshold <= 0 {
		threshold = DefaultAdvisoryThreshold
	}
	if student.CompletedWorkouts < threshold {
		return nil
	}
	return &models.Advisory{
		StudentID:         student.ID,
		StudentName:       student.Name,
		CompletedWorkouts: student.CompletedWorkouts,
		Message:           fmt.Sprintf("%s completed %d workouts; consider editing the training plan", student.Name, student.CompletedWorkouts),
	}
}
