package service_test

import (
	"context"
	"crypto/rand"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksapp/stacks-server/internal/auth"
	"github.com/stacksapp/stacks-server/internal/broker"
	domainerrors "github.com/stacksapp/stacks-server/internal/errors"
	"github.com/stacksapp/stacks-server/internal/service"
	"github.com/stacksapp/stacks-server/internal/store"
	"github.com/stacksapp/stacks-server/internal/validation"
)

const testLoginPassword = "secret"

type testServices struct {
	store   *store.Store
	broker  *broker.Broker
	auth    *service.AuthService
	catalog *service.CatalogService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	b := broker.New(logger)
	t.Cleanup(b.Close)

	v := validation.New()

	return &testServices{
		store:   s,
		broker:  b,
		auth:    service.NewAuthService(s, tokens, v, testLoginPassword, logger),
		catalog: service.NewCatalogService(s, b, v, logger),
	}
}

func TestAuthService_CreateUser(t *testing.T) {
	ts := newTestServices(t)

	user, err := ts.auth.CreateUser(context.Background(), service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "refactoring",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "mluukkai", user.Username)
	assert.Equal(t, "refactoring", user.FavoriteGenre)
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.auth.CreateUser(context.Background(), service.CreateUserRequest{
		Username: "ab",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestAuthService_CreateUser_DuplicateUsername(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.auth.CreateUser(ctx, service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "refactoring",
	})
	require.NoError(t, err)

	_, err = ts.auth.CreateUser(ctx, service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "agile",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	// The store's conflict message survives into the client-facing error.
	assert.Contains(t, err.Error(), "index username conflict")
}

func TestAuthService_Login(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.auth.CreateUser(ctx, service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "refactoring",
	})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, service.LoginRequest{
		Username: "mluukkai",
		Password: testLoginPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.auth.CreateUser(ctx, service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "refactoring",
	})
	require.NoError(t, err)

	_, err = ts.auth.Login(ctx, service.LoginRequest{
		Username: "mluukkai",
		Password: "hunter2",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "wrong credentials")
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.auth.Login(context.Background(), service.LoginRequest{
		Username: "nobody",
		Password: testLoginPassword,
	})
	require.Error(t, err)
	// Unknown username reads exactly like a wrong password.
	assert.Contains(t, err.Error(), "wrong credentials")
}

func TestAuthService_Resolve_RoundTrip(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	created, err := ts.auth.CreateUser(ctx, service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "refactoring",
	})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, service.LoginRequest{
		Username: "mluukkai",
		Password: testLoginPassword,
	})
	require.NoError(t, err)

	user, err := ts.auth.Resolve(ctx, resp.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "mluukkai", user.Username)
}

func TestAuthService_Resolve_InvalidToken(t *testing.T) {
	ts := newTestServices(t)

	user, err := ts.auth.Resolve(context.Background(), "garbage-token")
	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrToken))
}

func TestAuthService_Resolve_StaleTokenIsAnonymous(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	created, err := ts.auth.CreateUser(ctx, service.CreateUserRequest{
		Username:      "mluukkai",
		FavoriteGenre: "refactoring",
	})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, service.LoginRequest{
		Username: "mluukkai",
		Password: testLoginPassword,
	})
	require.NoError(t, err)

	// Remove the account; the token still decrypts but references nothing.
	require.NoError(t, ts.store.Users.Delete(ctx, created.ID))

	user, err := ts.auth.Resolve(ctx, resp.Token)
	require.NoError(t, err)
	assert.Nil(t, user)
}
