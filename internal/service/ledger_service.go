package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Email  string  `json:"email"`
}

// UpdateStudentRequest holds payload for updating students. Nil fields are
// left untouched.
type UpdateStudentRequest struct {
	Name   *string  `json:"name"`
	Weight *float64 `json:"weight" validate:"omitempty,gte=0"`
	Height *float64 `json:"height" validate:"omitempty,gte=0"`
	Email  *string  `json:"email"`
}

// AddWorkoutRequest holds a workout with its exercises typed one per line.
type AddWorkoutRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Exercises   string `json:"exercises"`
}

// StudentSummary is one row of the trainer's student list.
type StudentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentView is a student as shown to the trainer.
type StudentView struct {
	Student  *models.StudentRecord `json:"student"`
	Advisory *models.Advisory      `json:"advisory,omitempty"`
}

// LedgerConfig tunes the ledger service.
type LedgerConfig struct {
	AdvisoryThreshold int
	Now               func() time.Time
}

// LedgerService handles the per-trainer student ledger.
type LedgerService struct {
	uow       ledgerUnitOfWork
	validator *validator.Validate
	logger    *zap.Logger
	config    LedgerConfig
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(repo ledgerRepository, locker unitLocker, validate *validator.Validate, logger *zap.Logger, config LedgerConfig) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.AdvisoryThreshold <= 0 {
		config.AdvisoryThreshold = DefaultAdvisoryThreshold
	}
	return &LedgerService{
		uow:       ledgerUnitOfWork{repo: repo, locker: lockerOrDefault(locker)},
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

func (s *LedgerService) today() string {
	return s.config.Now().Format(models.DateLayout)
}

// Load returns the trainer's whole ledger.
func (s *LedgerService) Load(ctx context.Context, trainerLogin string) (*models.Ledger, error) {
	return s.uow.read(ctx, trainerLogin)
}

// CreateStudent allocates the next ID and derives the student's login.
func (s *LedgerService) CreateStudent(ctx context.Context, trainerLogin string, req CreateStudentRequest) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student payload")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name is required")
	}

	var created *models.StudentRecord
	err := s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		id := ledger.NextID()
		created = &models.StudentRecord{
			ID:                id,
			Name:              req.Name,
			Weight:            req.Weight,
			Height:            req.Height,
			Email:             req.Email,
			Login:             models.DeriveLogin(req.Name, id),
			Password:          nil,
			CompletedWorkouts: 0,
			WeightHistory:     []models.WeightEntry{{Weight: req.Weight, Date: s.today()}},
			Workouts:          []models.WorkoutRecord{},
		}
		ledger.Students[id] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student created",
		zap.String("trainer", trainerLogin),
		zap.String("student_id", created.ID),
		zap.String("login", created.Login))
	return created, nil
}

// UpdateStudent overwrites the provided fields. A changed weight is appended
// to the weight history; earlier entries are never rewritten. The login
// stays as derived at creation even when the name changes.
func (s *LedgerService) UpdateStudent(ctx context.Context, trainerLogin, id string, req UpdateStudentRequest) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student payload")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name cannot be blank")
	}

	var updated *models.StudentRecord
	err := s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		student, err := findStudent(ledger, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			student.Name = *req.Name
		}
		if req.Height != nil {
			student.Height = *req.Height
		}
		if req.Email != nil {
			student.Email = *req.Email
		}
		if req.Weight != nil && *req.Weight != student.Weight {
			student.RecordWeight(*req.Weight, s.today())
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteStudent removes a student. The ID counter is left as is, so the ID
// is never handed out again.
func (s *LedgerService) DeleteStudent(ctx context.Context, trainerLogin, id string) error {
	err := s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		if _, err := findStudent(ledger, id); err != nil {
			return err
		}
		delete(ledger.Students, id)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student deleted", zap.String("trainer", trainerLogin), zap.String("student_id", id))
	return nil
}

// AddWorkout appends a workout with every exercise unchecked.
func (s *LedgerService) AddWorkout(ctx context.Context, trainerLogin, id string, req AddWorkoutRequest) (*models.WorkoutRecord, error) {
	var added models.WorkoutRecord
	err := s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		student, err := findStudent(ledger, id)
		if err != nil {
			return err
		}
		added = models.NewWorkoutRecord(req.Name, req.Description, req.Exercises)
		student.Workouts = append(student.Workouts, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// GetStudent returns the student with its workout advisory, if any.
func (s *LedgerService) GetStudent(ctx context.Context, trainerLogin, id string) (*StudentView, error) {
	ledger, err := s.uow.read(ctx, trainerLogin)
	if err != nil {
		return nil, err
	}
	student, err := findStudent(ledger, id)
	if err != nil {
		return nil, err
	}
	return &StudentView{Student: student, Advisory: advisoryFor(student, s.config.AdvisoryThreshold)}, nil
}

// ListStudents returns students whose ID or name contains search, ignoring
// case, in ID order. An empty search lists everyone.
func (s *LedgerService) ListStudents(ctx context.Context, trainerLogin, search string) ([]StudentSummary, error) {
	ledger, err := s.uow.read(ctx, trainerLogin)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(search)
	out := make([]StudentSummary, 0, len(ledger.Students))
	for _, id := range ledger.IDs() {
		student := ledger.Students[id]
		if needle != "" &&
			!strings.Contains(strings.ToLower(id), needle) &&
			!strings.Contains(strings.ToLower(student.Name), needle) {
			continue
		}
		out = append(out, StudentSummary{ID: id, Name: student.Name})
	}
	return out, nil
}

// Migrate loads the trainer's ledger through the upgrade path and writes it
// back in the current schema.
func (s *LedgerService) Migrate(ctx context.Context, trainerLogin string) error {
	err := s.uow.update(ctx, trainerLogin, func(*models.Ledger) error { return nil })
	if err != nil {
		return err
	}
	s.logger.Debug("ledger rewritten", zap.String("trainer", trainerLogin))
	return nil
}
