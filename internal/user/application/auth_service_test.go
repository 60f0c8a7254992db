package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmarben/usergraph/internal/auth"
	sharedEvents "github.com/rmarben/usergraph/internal/shared/events"
	"github.com/rmarben/usergraph/internal/user/domain"
	"github.com/rmarben/usergraph/tests/mocks"
)

func newAuthService(repo domain.UserRepository, audit domain.AuthAudit, events *mocks.DummyPublisher) *AuthService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(repo, tokens, audit, events, zap.NewNop())
}

func TestRegister_Success(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	events := &mocks.DummyPublisher{}
	service := newAuthService(repo, nil, events)

	token, user, err := service.Register(context.Background(), "ady", "ady@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ady", user.Username)
	assert.Equal(t, domain.StatusActive, user.Status)
	assert.Equal(t, []string{domain.RoleUser}, user.Roles)
	// la contraseña nunca se guarda en claro
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	assert.Equal(t, []string{sharedEvents.UserRegistered}, events.Types())
}

func TestRegister_WeakPassword(t *testing.T) {
	service := newAuthService(mocks.NewInMemoryUserRepo(), nil, &mocks.DummyPublisher{})

	_, _, err := service.Register(context.Background(), "ady", "ady@example.com", "corta")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newAuthService(repo, nil, &mocks.DummyPublisher{})

	_, _, err := service.Register(context.Background(), "ady", "dup@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = service.Register(context.Background(), "otro", "dup@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	audit := &mocks.RecordingAudit{}
	service := newAuthService(repo, audit, &mocks.DummyPublisher{})

	_, user, err := service.Register(context.Background(), "ady", "ady@example.com", "s3cret-pass")
	require.NoError(t, err)

	token, logged, err := service.Login(context.Background(), "ady@example.com", "s3cret-pass", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	// el intento correcto queda auditado
	last := audit.Last()
	require.NotNil(t, last)
	assert.True(t, last.Success)
	assert.Equal(t, user.ID, last.UserID)
	assert.Equal(t, "10.0.0.1", last.RemoteAddr)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	audit := &mocks.RecordingAudit{}
	service := newAuthService(repo, audit, &mocks.DummyPublisher{})

	_, _, err := service.Register(context.Background(), "ady", "ady@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), "ady@example.com", "wrong-pass", "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	last := audit.Last()
	require.NotNil(t, last)
	assert.False(t, last.Success)
}

func TestLogin_UnknownEmail(t *testing.T) {
	audit := &mocks.RecordingAudit{}
	service := newAuthService(mocks.NewInMemoryUserRepo(), audit, &mocks.DummyPublisher{})

	// el error no distingue "no existe" de "contraseña incorrecta"
	_, _, err := service.Login(context.Background(), "ghost@example.com", "whatever", "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	require.NotNil(t, audit.Last())
	assert.False(t, audit.Last().Success)
}

func TestLogin_SuspendedUser(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newAuthService(repo, &mocks.RecordingAudit{}, &mocks.DummyPublisher{})

	_, user, err := service.Register(context.Background(), "ady", "ady@example.com", "s3cret-pass")
	require.NoError(t, err)

	user.Status = domain.StatusSuspended
	require.NoError(t, repo.Update(context.Background(), user))

	_, _, err = service.Login(context.Background(), "ady@example.com", "s3cret-pass", "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrUserSuspended)
}

func TestChangePassword(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := newAuthService(repo, nil, &mocks.DummyPublisher{})

	_, user, err := service.Register(context.Background(), "ady", "ady@example.com", "s3cret-pass")
	require.NoError(t, err)

	err = service.ChangePassword(context.Background(), user.ID, "mala", "nueva-pass-larga")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, service.ChangePassword(context.Background(), user.ID, "s3cret-pass", "nueva-pass-larga"))

	_, _, err = service.Login(context.Background(), "ady@example.com", "nueva-pass-larga", "10.0.0.1")
	assert.NoError(t, err)
}
