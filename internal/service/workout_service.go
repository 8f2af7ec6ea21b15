package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// FinishResult reports the state after a workout is finished.
type FinishResult struct {
	Workout           models.WorkoutRecord `json:"workout"`
	CompletedWorkouts int                  `json:"completed_workouts"`
	Advisory          *models.Advisory     `json:"advisory,omitempty"`
}

// WorkoutService drives exercise checkboxes and workout completion.
type WorkoutService struct {
	uow       ledgerUnitOfWork
	logger    *zap.Logger
	metrics   *MetricsService
	threshold int
}

// NewWorkoutService constructs the workout service. A non-positive threshold
// falls back to DefaultAdvisoryThreshold.
func NewWorkoutService(repo ledgerRepository, locker unitLocker, logger *zap.Logger, metrics *MetricsService, threshold int) *WorkoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultAdvisoryThreshold
	}
	return &WorkoutService{
		uow:       ledgerUnitOfWork{repo: repo, locker: lockerOrDefault(locker)},
		logger:    logger,
		metrics:   metrics,
		threshold: threshold,
	}
}

func workoutAt(student *models.StudentRecord, index int) (*models.WorkoutRecord, error) {
	if index < 0 || index >= len(student.Workouts) {
		return nil, appErrors.Clone(appErrors.ErrIndexOutOfRange, fmt.Sprintf("workout %d does not exist", index))
	}
	return &student.Workouts[index], nil
}

// ToggleExercise sets one exercise checkbox and persists it.
func (s *WorkoutService) ToggleExercise(ctx context.Context, trainerLogin, id string, workoutIndex, exerciseIndex int, value bool) (*models.WorkoutRecord, error) {
	var result models.WorkoutRecord
	err := s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		student, err := findStudent(ledger, id)
		if err != nil {
			return err
		}
		workout, err := workoutAt(student, workoutIndex)
		if err != nil {
			return err
		}
		if !workout.HasExercise(exerciseIndex) {
			return appErrors.Clone(appErrors.ErrIndexOutOfRange, fmt.Sprintf("exercise %d does not exist", exerciseIndex))
		}
		workout.Completed[exerciseIndex] = value
		result = *workout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Finish clears every checkbox of the workout and counts one completion.
// Each call counts, so finishing twice counts twice.
func (s *WorkoutService) Finish(ctx context.Context, trainerLogin, id string, workoutIndex int) (*FinishResult, error) {
	var result FinishResult
	err := s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		student, err := findStudent(ledger, id)
		if err != nil {
			return err
		}
		workout, err := workoutAt(student, workoutIndex)
		if err != nil {
			return err
		}
		workout.ResetCompletion()
		student.CompletedWorkouts++
		result = FinishResult{
			Workout:           *workout,
			CompletedWorkouts: student.CompletedWorkouts,
			Advisory:          advisoryFor(student, s.threshold),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordWorkoutFinished()
	s.logger.Info("workout finished",
		zap.String("trainer", trainerLogin),
		zap.String("student_id", id),
		zap.Int("workout", workoutIndex),
		zap.Int("completed_workouts", result.CompletedWorkouts))
	return &result, nil
}

// Advisories lists every student at or over the threshold, in ID order.
func (s *WorkoutService) Advisories(ctx context.Context, trainerLogin string) ([]models.Advisory, error) {
	ledger, err := s.uow.read(ctx, trainerLogin)
	if err != nil {
		return nil, err
	}
	out := make([]models.Advisory, 0)
	for _, id := range ledger.IDs() {
		if adv := advisoryFor(ledger.Students[id], s.threshold); adv != nil {
			out = append(out, *adv)
		}
	}
	return out, nil
}
