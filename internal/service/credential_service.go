package service

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

const tempPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultTempPasswordLength is the length of recovery passwords.
const DefaultTempPasswordLength = 8

// RecoveryNotifier delivers a freshly issued temporary password.
type RecoveryNotifier interface {
	SendTemporaryPassword(ctx context.Context, email, password string) error
}

// StudentMatch locates a student inside a trainer's ledger.
type StudentMatch struct {
	TrainerLogin string
	StudentID    string
	Student      *models.StudentRecord
}

// CredentialConfig tunes credential issuance.
type CredentialConfig struct {
	TempPasswordLength int
}

// CredentialService resolves student identities across trainers and manages
// their passwords.
type CredentialService struct {
	trainers trainerDirectoryRepository
	uow      ledgerUnitOfWork
	hasher   PasswordHasher
	notifier RecoveryNotifier

	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    CredentialConfig
}

// NewCredentialService constructs the credential service. notifier may be nil.
func NewCredentialService(
	trainers trainerDirectoryRepository,
	ledgers ledgerRepository,
	locker unitLocker,
	hasher PasswordHasher,
	notifier RecoveryNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	config CredentialConfig,
) *CredentialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = PlaintextHasher{}
	}
	if config.TempPasswordLength <= 0 {
		config.TempPasswordLength = DefaultTempPasswordLength
	}
	return &CredentialService{
		trainers:  trainers,
		uow:       ledgerUnitOfWork{repo: ledgers, locker: lockerOrDefault(locker)},
		hasher:    hasher,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
	}
}

// GenerateTempPassword returns a random password drawn uniformly from
// letters and digits.
func (s *CredentialService) GenerateTempPassword() (string, error) {
	limit := big.NewInt(int64(len(tempPasswordAlphabet)))
	out := make([]byte, s.config.TempPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to generate password")
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// scan walks trainers in directory order and their students in ID order,
// stopping at the first student accepted by match.
func (s *CredentialService) scan(ctx context.Context, match func(*models.StudentRecord) bool) (*StudentMatch, error) {
	dir, err := s.trainers.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load trainers")
	}
	for _, trainerLogin := range dir.Logins() {
		ledger, err := s.uow.read(ctx, trainerLogin)
		if err != nil {
			return nil, err
		}
		for _, id := range ledger.IDs() {
			student := ledger.Students[id]
			if match(student) {
				return &StudentMatch{TrainerLogin: trainerLogin, StudentID: id, Student: student}, nil
			}
		}
	}
	return nil, nil
}

// FindStudentByLogin returns the first student with this login, or nil.
func (s *CredentialService) FindStudentByLogin(ctx context.Context, login string) (*StudentMatch, error) {
	return s.scan(ctx, func(st *models.StudentRecord) bool { return st.Login == login })
}

// FindStudentByEmail returns the first student with this email, or nil.
func (s *CredentialService) FindStudentByEmail(ctx context.Context, email string) (*StudentMatch, error) {
	return s.scan(ctx, func(st *models.StudentRecord) bool { return st.Email == email })
}

// BeginFirstAccess checks that the student still has to choose a password.
func (s *CredentialService) BeginFirstAccess(ctx context.Context, trainerLogin, id string) error {
	ledger, err := s.uow.read(ctx, trainerLogin)
	if err != nil {
		return err
	}
	student, err := findStudent(ledger, id)
	if err != nil {
		return err
	}
	if !student.FirstAccessPending() {
		return appErrors.Clone(appErrors.ErrFirstAccessCompleted, "")
	}
	return nil
}

// SetPassword overwrites the student's password unconditionally.
func (s *CredentialService) SetPassword(ctx context.Context, trainerLogin, id, password string) error {
	if password == "" {
		return appErrors.Clone(appErrors.ErrValidation, "password is required")
	}
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}
	err = s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		student, err := findStudent(ledger, id)
		if err != nil {
			return err
		}
		student.Password = &stored
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student password set", zap.String("trainer", trainerLogin), zap.String("student_id", id))
	return nil
}

// VerifyPassword reports whether candidate matches the stored password. A
// student without a password never verifies.
func (s *CredentialService) VerifyPassword(student *models.StudentRecord, candidate string) bool {
	if student == nil || student.Password == nil {
		return false
	}
	return s.hasher.Verify(*student.Password, candidate)
}

// SetFirstPassword stores the first password of a student who has none yet.
// The pending check and the write share one ledger lock, so only one of
// several concurrent submissions wins.
func (s *CredentialService) SetFirstPassword(ctx context.Context, trainerLogin, id, password string) error {
	if password == "" {
		return appErrors.Clone(appErrors.ErrValidation, "password is required")
	}
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}
	err = s.uow.update(ctx, trainerLogin, func(ledger *models.Ledger) error {
		student, err := findStudent(ledger, id)
		if err != nil {
			return err
		}
		if !student.FirstAccessPending() {
			return appErrors.Clone(appErrors.ErrFirstAccessCompleted, "")
		}
		student.Password = &stored
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student first password set", zap.String("trainer", trainerLogin), zap.String("student_id", id))
	return nil
}

func (s *CredentialService) checkPassword(student *models.StudentRecord, password string) error {
	if student.FirstAccessPending() {
		return appErrors.Clone(appErrors.ErrFirstAccessRequired, "")
	}
	if !s.VerifyPassword(student, password) {
		s.metrics.RecordAuthAttempt("student", false)
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	s.metrics.RecordAuthAttempt("student", true)
	return nil
}

// LoginStudent resolves a login and checks its password.
func (s *CredentialService) LoginStudent(ctx context.Context, login, password string) (*StudentMatch, error) {
	match, err := s.FindStudentByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if match == nil {
		s.metrics.RecordAuthAttempt("student", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if err := s.checkPassword(match.Student, password); err != nil {
		return nil, err
	}
	return match, nil
}

// AuthenticateStudent checks a password against the student stored at
// trainerLogin/id. A student that no longer exists fails as bad credentials.
func (s *CredentialService) AuthenticateStudent(ctx context.Context, trainerLogin, id, password string) (*StudentMatch, error) {
	ledger, err := s.uow.read(ctx, trainerLogin)
	if err != nil {
		return nil, err
	}
	student, ok := ledger.Students[id]
	if !ok {
		s.metrics.RecordAuthAttempt("student", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if err := s.checkPassword(student, password); err != nil {
		return nil, err
	}
	return &StudentMatch{TrainerLogin: trainerLogin, StudentID: id, Student: student}, nil
}

// RecoverByEmail replaces the password of the first student with this email
// by a temporary one and returns it. A configured notifier also receives the
// password; delivery failures are logged and leave the new password in place.
func (s *CredentialService) RecoverByEmail(ctx context.Context, email string) (string, error) {
	if err := s.validator.Var(email, "required"); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid recovery payload")
	}
	match, err := s.FindStudentByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if match == nil {
		return "", appErrors.Clone(appErrors.ErrEmailNotFound, "")
	}

	temp, err := s.GenerateTempPassword()
	if err != nil {
		return "", err
	}
	stored, err := s.hasher.Hash(temp)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to hash password")
	}

	err = s.uow.update(ctx, match.TrainerLogin, func(ledger *models.Ledger) error {
		student, ok := ledger.Students[match.StudentID]
		if !ok || student.Email != email {
			return appErrors.Clone(appErrors.ErrEmailNotFound, "")
		}
		student.Password = &stored
		return nil
	})
	if err != nil {
		return "", err
	}
	s.metrics.RecordRecovery()
	s.logger.Info("temporary password issued",
		zap.String("trainer", match.TrainerLogin),
		zap.String("student_id", match.StudentID))

	if s.notifier != nil {
		if err := s.notifier.SendTemporaryPassword(ctx, email, temp); err != nil {
			s.logger.Warn("failed to deliver temporary password",
				zap.String("student_id", match.StudentID),
				zap.Error(err))
		}
	}
	return temp, nil
}
