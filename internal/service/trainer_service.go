package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// RegisterTrainerRequest holds payload for registering a trainer. The login
// names the trainer's storage unit, so it may not contain path separators.
// Email and password are stored as submitted.
type RegisterTrainerRequest struct {
	Login           string `json:"login" validate:"required,excludesall=/\\"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// TrainerService owns the trainer directory.
type TrainerService struct {
	repo      trainerDirectoryRepository
	locker    unitLocker
	hasher    PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewTrainerService constructs the trainer service.
func NewTrainerService(repo trainerDirectoryRepository, locker unitLocker, hasher PasswordHasher, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *TrainerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = PlaintextHasher{}
	}
	return &TrainerService{repo: repo, locker: lockerOrDefault(locker), hasher: hasher, validator: validate, logger: logger, metrics: metrics}
}

// Register adds a trainer account. Existing logins are never overwritten.
func (s *TrainerService) Register(ctx context.Context, req RegisterTrainerRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid trainer payload")
	}
	if req.Password != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrPasswordMismatch, "")
	}

	release := s.locker.Lock(trainerDirectoryLock)
	defer release()

	dir, err := s.repo.Load(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load trainers")
	}
	if _, exists := dir.Get(req.Login); exists {
		return appErrors.Clone(appErrors.ErrDuplicateLogin, "login already exists, choose another")
	}

	stored, err := s.hasher.Hash(req.Password)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}
	dir.Put(models.TrainerAccount{Login: req.Login, Email: req.Email, Password: stored})

	if err := s.repo.Save(ctx, dir); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to save trainers")
	}
	s.logger.Info("trainer registered", zap.String("trainer", req.Login))
	return nil
}

// Authenticate checks a trainer login/password pair.
func (s *TrainerService) Authenticate(ctx context.Context, login, password string) (*models.TrainerAccount, error) {
	dir, err := s.repo.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load trainers")
	}
	acc, ok := dir.Get(login)
	if !ok || !s.hasher.Verify(acc.Password, password) {
		s.metrics.RecordAuthAttempt("trainer", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	s.metrics.RecordAuthAttempt("trainer", true)
	return &acc, nil
}

// Get returns a single trainer account.
func (s *TrainerService) Get(ctx context.Context, login string) (*models.TrainerAccount, error) {
	dir, err := s.repo.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load trainers")
	}
	acc, ok := dir.Get(login)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrTrainerNotFound, "")
	}
	return &acc, nil
}

// List returns every trainer in registration order.
func (s *TrainerService) List(ctx context.Context) ([]models.TrainerAccount, error) {
	dir, err := s.repo.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load trainers")
	}
	return dir.Accounts(), nil
}
