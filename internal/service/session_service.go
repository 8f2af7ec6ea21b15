package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

type studentCredentials interface {
	FindStudentByLogin(ctx context.Context, login string) (*StudentMatch, error)
	SetFirstPassword(ctx context.Context, trainerLogin, id, password string) error
	AuthenticateStudent(ctx context.Context, trainerLogin, id, password string) (*StudentMatch, error)
}

type trainerAuthenticator interface {
	Authenticate(ctx context.Context, login, password string) (*models.TrainerAccount, error)
}

// SessionService moves a caller-held session through the login flow.
type SessionService struct {
	students studentCredentials
	trainers trainerAuthenticator
	logger   *zap.Logger
	metrics  *MetricsService
}

// NewSessionService constructs the session service.
func NewSessionService(students studentCredentials, trainers trainerAuthenticator, logger *zap.Logger, metrics *MetricsService) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{students: students, trainers: trainers, logger: logger, metrics: metrics}
}

// NewSession returns an anonymous session with a fresh ID.
func (s *SessionService) NewSession() *models.Session {
	return &models.Session{ID: uuid.NewString(), Role: models.RoleNone, State: models.StateAnonymous}
}

func invalidTransition(sess *models.Session, op string) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("%s not allowed in state %s", op, sess.State))
}

func clearIdentity(sess *models.Session) {
	sess.Role = models.RoleNone
	sess.TrainerLogin = ""
	sess.StudentID = ""
	sess.StudentLogin = ""
}

// SubmitStudentLogin resolves the login and routes the session either to
// first access or to the password prompt. Any session that is not yet
// authenticated may restart here.
func (s *SessionService) SubmitStudentLogin(ctx context.Context, sess *models.Session, login string) error {
	if sess.Authenticated() {
		return invalidTransition(sess, "student login")
	}
	match, err := s.students.FindStudentByLogin(ctx, login)
	if err != nil {
		return err
	}
	if match == nil {
		s.metrics.RecordAuthAttempt("student", false)
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "login not found")
	}

	sess.Role = models.RoleStudent
	sess.TrainerLogin = match.TrainerLogin
	sess.StudentID = match.StudentID
	sess.StudentLogin = match.Student.Login
	if match.Student.FirstAccessPending() {
		sess.State = models.StateFirstAccessPending
	} else {
		sess.State = models.StatePasswordPrompt
	}
	return nil
}

// CompleteFirstAccess stores the student's first password and authenticates
// the session.
func (s *SessionService) CompleteFirstAccess(ctx context.Context, sess *models.Session, password, confirm string) error {
	if sess.State != models.StateFirstAccessPending {
		return invalidTransition(sess, "first access")
	}
	if password != confirm {
		return appErrors.Clone(appErrors.ErrPasswordMismatch, "")
	}
	if err := s.students.SetFirstPassword(ctx, sess.TrainerLogin, sess.StudentID, password); err != nil {
		return err
	}
	sess.State = models.StateAuthenticated
	s.logger.Info("student first access completed",
		zap.String("session_id", sess.ID),
		zap.String("student_login", sess.StudentLogin))
	return nil
}

// SubmitStudentPassword authenticates a session waiting at the password
// prompt against the student it resolved at login. A wrong password leaves
// the session where it was.
func (s *SessionService) SubmitStudentPassword(ctx context.Context, sess *models.Session, password string) error {
	if sess.State != models.StatePasswordPrompt {
		return invalidTransition(sess, "student password")
	}
	if _, err := s.students.AuthenticateStudent(ctx, sess.TrainerLogin, sess.StudentID, password); err != nil {
		return err
	}
	sess.State = models.StateAuthenticated
	s.logger.Info("student logged in",
		zap.String("session_id", sess.ID),
		zap.String("student_login", sess.StudentLogin))
	return nil
}

// LoginTrainer authenticates the session as a trainer, abandoning any
// unfinished student flow.
func (s *SessionService) LoginTrainer(ctx context.Context, sess *models.Session, login, password string) error {
	if sess.Authenticated() {
		return invalidTransition(sess, "trainer login")
	}
	account, err := s.trainers.Authenticate(ctx, login, password)
	if err != nil {
		return err
	}
	clearIdentity(sess)
	sess.Role = models.RoleTrainer
	sess.TrainerLogin = account.Login
	sess.State = models.StateAuthenticated
	s.logger.Info("trainer logged in", zap.String("session_id", sess.ID), zap.String("trainer", account.Login))
	return nil
}

// Logout returns the session to anonymous. Stored passwords are untouched.
func (s *SessionService) Logout(sess *models.Session) {
	clearIdentity(sess)
	sess.State = models.StateAnonymous
}

// SessionCodec signs sessions into HS256 tokens and reads them back.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec builds a codec. The secret must not be empty.
func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	if secret == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs the session.
func (c *SessionCodec) Issue(sess *models.Session) (string, error) {
	issuedAt := c.now()
	subject := sess.TrainerLogin
	if sess.Role == models.RoleStudent {
		subject = sess.StudentLogin
	}
	claims := models.SessionClaims{
		Session: *sess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to sign session")
	}
	return signed, nil
}

// Parse verifies a token and returns the session it carries.
func (c *SessionCodec) Parse(tokenString string) (*models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSession.Code, "invalid session token")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidSession, "invalid session claims")
	}
	sess := claims.Session
	return &sess, nil
}
