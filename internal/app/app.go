package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	"github.com/noah-isme/plano-treino/internal/repository"
	"github.com/noah-isme/plano-treino/internal/service"
	"github.com/noah-isme/plano-treino/pkg/cache"
	"github.com/noah-isme/plano-treino/pkg/config"
	"github.com/noah-isme/plano-treino/pkg/database"
	"github.com/noah-isme/plano-treino/pkg/jobs"
	"github.com/noah-isme/plano-treino/pkg/logger"
	"github.com/noah-isme/plano-treino/pkg/mailer"
	"github.com/noah-isme/plano-treino/pkg/storage"
)

// App holds the wired services for one process.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService

	Trainers    *service.TrainerService
	Ledgers     *service.LedgerService
	Credentials *service.CredentialService
	Workouts    *service.WorkoutService
	Sessions    *service.SessionService
	Exports     *service.ExportService
	// Codec is nil when no session secret is configured.
	Codec *service.SessionCodec

	closers []func() error
}

// TrainerAdvisories groups advisories under the trainer that owns them.
type TrainerAdvisories struct {
	Trainer    string
	Advisories []models.Advisory
}

// New opens the configured store and wires every service on top of it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	metrics := service.NewMetricsService()

	units, closeStore, err := OpenUnitStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	units = repository.Instrument(units, metrics)

	hasher, err := service.NewPasswordHasher(cfg.Credentials.Mode)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	closers := []func() error{closeStore}
	var notifier service.RecoveryNotifier
	if cfg.Recovery.ResendAPIKey != "" {
		resend := mailer.NewResendMailer(cfg.Recovery.ResendAPIKey, cfg.Recovery.FromEmail, logger.Named(log, "mailer"))
		async := mailer.NewAsyncNotifier(resend, jobs.QueueConfig{
			Workers:    1,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Logger:     logger.Named(log, "jobs"),
		})
		async.Start(context.Background())
		closers = append(closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return async.Close(ctx)
		})
		notifier = async
	}

	trainerRepo := repository.NewTrainerRepository(units)
	ledgerRepo := repository.NewLedgerRepository(units)
	locker := repository.NewUnitLocker()
	validate := validator.New()

	a := &App{Config: cfg, Logger: log, Metrics: metrics, closers: closers}
	a.Trainers = service.NewTrainerService(trainerRepo, locker, hasher, validate, logger.Named(log, "trainers"), metrics)
	a.Ledgers = service.NewLedgerService(ledgerRepo, locker, validate, logger.Named(log, "ledger"), service.LedgerConfig{
		AdvisoryThreshold: cfg.Workouts.AdvisoryThreshold,
	})
	a.Credentials = service.NewCredentialService(trainerRepo, ledgerRepo, locker, hasher, notifier, validate,
		logger.Named(log, "credentials"), metrics, service.CredentialConfig{
			TempPasswordLength: cfg.Credentials.TempPasswordLength,
		})
	a.Workouts = service.NewWorkoutService(ledgerRepo, locker, logger.Named(log, "workouts"), metrics, cfg.Workouts.AdvisoryThreshold)
	a.Sessions = service.NewSessionService(a.Credentials, a.Trainers, logger.Named(log, "sessions"), metrics)
	a.Exports = service.NewExportService(ledgerRepo, logger.Named(log, "exports"), nil, nil)

	if cfg.Session.Secret != "" {
		codec, err := service.NewSessionCodec(cfg.Session.Secret, cfg.Session.TTL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Codec = codec
	}

	log.Info("store ready", zap.String("driver", cfg.Store.Driver), zap.String("credential_mode", cfg.Credentials.Mode))
	return a, nil
}

// OpenUnitStore returns the store selected by STORE_DRIVER and a function
// releasing its connections.
func OpenUnitStore(ctx context.Context, cfg *config.Config) (repository.UnitStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Driver {
	case "", config.DriverFile:
		files, err := storage.NewLocalStorage(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open data dir: %w", err)
		}
		return repository.NewFileUnitStore(files), noop, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewSQLUnitStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	case config.DriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return repository.NewRedisUnitStore(client, cfg.Redis.KeyPrefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Store.Driver == config.DriverSQLite {
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Close releases store connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Migrate rewrites every trainer's ledger in the current schema and returns
// how many ledgers were written.
func (a *App) Migrate(ctx context.Context) (int, error) {
	trainers, err := a.Trainers.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, acc := range trainers {
		if err := a.Ledgers.Migrate(ctx, acc.Login); err != nil {
			return i, fmt.Errorf("migrate ledger %s: %w", acc.Login, err)
		}
	}
	a.Logger.Info("ledgers migrated", zap.Int("count", len(trainers)))
	return len(trainers), nil
}

// LoadLedgers reads every trainer's ledger without writing anything back and
// returns how many were read.
func (a *App) LoadLedgers(ctx context.Context) (int, error) {
	trainers, err := a.Trainers.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, acc := range trainers {
		if _, err := a.Ledgers.Load(ctx, acc.Login); err != nil {
			return i, fmt.Errorf("load ledger %s: %w", acc.Login, err)
		}
	}
	return len(trainers), nil
}

// Advisories collects advisories for every trainer, in directory order.
// Trainers without advisories are left out.
func (a *App) Advisories(ctx context.Context) ([]TrainerAdvisories, error) {
	trainers, err := a.Trainers.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []TrainerAdvisories
	for _, acc := range trainers {
		advisories, err := a.Workouts.Advisories(ctx, acc.Login)
		if err != nil {
			return nil, err
		}
		if len(advisories) > 0 {
			out = append(out, TrainerAdvisories{Trainer: acc.Login, Advisories: advisories})
		}
	}
	return out, nil
}
