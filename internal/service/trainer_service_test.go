package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

func registerTrainer(t *testing.T, svc *TrainerService, login string) {
	t.Helper()
	require.NoError(t, svc.Register(context.Background(), RegisterTrainerRequest{
		Login: login, Email: login + "@gym.com", Password: "pw-" + login, ConfirmPassword: "pw-" + login,
	}))
}

func TestTrainerServiceRegisterAndAuthenticate(t *testing.T) {
	repo := &memoryTrainerRepo{}
	metrics := NewMetricsService()
	svc := NewTrainerService(repo, nil, nil, nil, nil, metrics)
	ctx := context.Background()

	registerTrainer(t, svc, "ana")
	registerTrainer(t, svc, "carla")

	acc, err := svc.Authenticate(ctx, "ana", "pw-ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@gym.com", acc.Email)

	_, err = svc.Authenticate(ctx, "ana", "nope")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "pw")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ana", list[0].Login)
	assert.Equal(t, "carla", list[1].Login)

	assert.JSONEq(t,
		`{"ana":{"email":"ana@gym.com","password":"pw-ana"},"carla":{"email":"carla@gym.com","password":"pw-carla"}}`,
		string(repo.data))
}

func TestTrainerServiceRegisterRejections(t *testing.T) {
	svc := NewTrainerService(&memoryTrainerRepo{}, nil, nil, nil, nil, nil)
	ctx := context.Background()
	registerTrainer(t, svc, "ana")

	err := svc.Register(ctx, RegisterTrainerRequest{Login: "ana", Password: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateLogin)

	acc, err := svc.Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "pw-ana", acc.Password, "existing account must not be overwritten")

	err = svc.Register(ctx, RegisterTrainerRequest{Login: "bia", Password: "x", ConfirmPassword: "y"})
	assert.ErrorIs(t, err, appErrors.ErrPasswordMismatch)

	err = svc.Register(ctx, RegisterTrainerRequest{Login: "../etc", Password: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = svc.Register(ctx, RegisterTrainerRequest{Login: "", Password: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Get(ctx, "bia")
	assert.ErrorIs(t, err, appErrors.ErrTrainerNotFound)
}

func TestTrainerServiceStoresFieldsAsSubmitted(t *testing.T) {
	svc := NewTrainerService(&memoryTrainerRepo{}, nil, nil, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, RegisterTrainerRequest{Login: "bia", Email: "bia at gym"}))

	acc, err := svc.Authenticate(ctx, "bia", "")
	require.NoError(t, err)
	assert.Equal(t, "bia at gym", acc.Email)
	assert.Equal(t, "", acc.Password)
}

func TestTrainerServiceSaveFailure(t *testing.T) {
	svc := NewTrainerService(&memoryTrainerRepo{saveErr: errBoom}, nil, nil, nil, nil, nil)
	err := svc.Register(context.Background(), RegisterTrainerRequest{Login: "ana", Password: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.ErrorIs(t, err, errBoom)
}

func TestTrainerServiceBcrypt(t *testing.T) {
	repo := &memoryTrainerRepo{}
	svc := NewTrainerService(repo, nil, BcryptHasher{Cost: 4}, nil, nil, nil)
	ctx := context.Background()
	registerTrainer(t, svc, "ana")

	dir, err := repo.Load(ctx)
	require.NoError(t, err)
	stored, _ := dir.Get("ana")
	assert.NotEqual(t, "pw-ana", stored.Password)

	acc, err := svc.Authenticate(ctx, "ana", "pw-ana")
	require.NoError(t, err)
	assert.IsType(t, &models.TrainerAccount{}, acc)
}
