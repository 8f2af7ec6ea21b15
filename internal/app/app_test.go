package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plano-treino/internal/service"
	"github.com/noah-isme/plano-treino/pkg/config"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:         config.EnvDevelopment,
		Store:       config.StoreConfig{Driver: driver, DataDir: dir, SQLitePath: filepath.Join(dir, "plano.db")},
		Credentials: config.CredentialsConfig{Mode: config.CredentialPlaintext, TempPasswordLength: 8},
		Workouts:    config.WorkoutsConfig{AdvisoryThreshold: 2},
		Session:     config.SessionConfig{Secret: "s3cret"},
	}
}

func runTrainerAndStudentFlow(t *testing.T, a *App) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, a.Trainers.Register(ctx, service.RegisterTrainerRequest{
		Login: "ana", Email: "ana@gym.com", Password: "pw", ConfirmPassword: "pw",
	}))
	student, err := a.Ledgers.CreateStudent(ctx, "ana", service.CreateStudentRequest{
		Name: "Bruno Silva", Weight: 80, Height: 180, Email: "b@x.com",
	})
	require.NoError(t, err)
	_, err = a.Ledgers.AddWorkout(ctx, "ana", student.ID, service.AddWorkoutRequest{Name: "A", Exercises: "squat\npress"})
	require.NoError(t, err)

	sess := a.Sessions.NewSession()
	require.NoError(t, a.Sessions.SubmitStudentLogin(ctx, sess, "bruno_001"))
	require.NoError(t, a.Sessions.CompleteFirstAccess(ctx, sess, "abc123", "abc123"))

	token, err := a.Codec.Issue(sess)
	require.NoError(t, err)
	restored, err := a.Codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "001", restored.StudentID)

	_, err = a.Workouts.ToggleExercise(ctx, restored.TrainerLogin, restored.StudentID, 0, 0, true)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = a.Workouts.Finish(ctx, restored.TrainerLogin, restored.StudentID, 0)
		require.NoError(t, err)
	}

	advisories, err := a.Advisories(ctx)
	require.NoError(t, err)
	require.Len(t, advisories, 1)
	assert.Equal(t, "ana", advisories[0].Trainer)
	assert.Equal(t, 2, advisories[0].Advisories[0].CompletedWorkouts)

	n, err := a.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppFileDriver(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	runTrainerAndStudentFlow(t, a)

	for _, name := range []string{"trainers.json", "ana_students.json"} {
		_, err := os.Stat(filepath.Join(cfg.Store.DataDir, name))
		assert.NoError(t, err, name)
	}
	assert.Zero(t, a.Metrics.UnitErrors())
}

func TestAppSQLiteDriver(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	runTrainerAndStudentFlow(t, a)
	_, err = os.Stat(cfg.Store.SQLitePath)
	assert.NoError(t, err)
}

func TestAppMigratesLegacyFiles(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Store.DataDir, "trainers.json"),
		[]byte(`{"ana":{"email":"ana@gym.com","password":"pw"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Store.DataDir, "ana_students.json"),
		[]byte(`{"last_id":1,"students":{"001":{"name":"Bruno Silva","weight":80,"height":180,
		"workouts":[{"name":"A","description":"","exercises":["squat","press"]}]}}}`), 0o644))

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	n, err := a.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err := os.ReadFile(filepath.Join(cfg.Store.DataDir, "ana_students.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_version":1,"last_id":1,"students":{"001":{
		"name":"Bruno Silva","weight":80,"height":180,"email":"","login":"bruno_001","password":null,
		"completed_workouts":0,"weight_history":[],
		"workouts":[{"name":"A","description":"","exercises":["squat","press"],"completed":[false,false]}]}}}`,
		string(raw))
}

func TestAppRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t, "cassandra")
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown store driver")

	cfg = testConfig(t, config.DriverFile)
	cfg.Credentials.Mode = "rot13"
	_, err = New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown credential mode")
}

func TestAppWithoutSessionSecret(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	cfg.Session.Secret = ""
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Codec)

	_, err = a.Credentials.RecoverByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, appErrors.ErrEmailNotFound)
}
