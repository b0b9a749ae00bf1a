package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/session"
)

type fakeAuthClient struct {
	resp *models.AuthResponse
	err  error
}

func (f *fakeAuthClient) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	return f.resp, f.err
}

func citizenUser() models.User {
	return models.User{
		ID:           "c1",
		Name:         "Asha",
		Email:        "asha@example.in",
		Role:         models.RoleCitizen,
		MobileNumber: "9000000001",
	}
}

func TestLoadRestoresSession(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, nil)
	require.NoError(t, store.SetAuth("tok-1", citizenUser()))

	// Fresh store over the same storage, as after a reload.
	reloaded := session.NewStore(storage, nil)
	assert.True(t, reloaded.IsLoading(), "loading until Load runs")
	reloaded.Load()

	assert.False(t, reloaded.IsLoading())
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "tok-1", reloaded.Token())
	user, ok := reloaded.User()
	require.True(t, ok)
	assert.Equal(t, "c1", user.ID)
	assert.Equal(t, models.RoleCitizen, reloaded.Role())
}

func TestLoadFailsOpenToLoggedOut(t *testing.T) {
	t.Run("token without user", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		require.NoError(t, storage.Set(session.KeyToken, "tok-1"))

		store := session.NewStore(storage, nil)
		store.Load()

		assert.False(t, store.IsAuthenticated())
		assert.Empty(t, store.Token())
		_, present := storage.Get(session.KeyToken)
		assert.False(t, present, "leftover half is cleared")
	})

	t.Run("corrupt user record", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		require.NoError(t, storage.Set(session.KeyToken, "tok-1"))
		require.NoError(t, storage.Set(session.KeyUser, "{not json"))

		store := session.NewStore(storage, nil)
		store.Load()

		assert.False(t, store.IsAuthenticated())
		_, present := storage.Get(session.KeyUser)
		assert.False(t, present)
	})
}

func TestAuthInvariant(t *testing.T) {
	// isAuthenticated == token present && user present, never from one half.
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, nil)
	store.Load()
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.SetAuth("tok-1", citizenUser()))
	assert.True(t, store.IsAuthenticated())

	store.Logout()
	assert.False(t, store.IsAuthenticated())
}

func TestLogoutIsIdempotent(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, nil)
	store.Load()

	store.Logout()
	store.Logout()

	assert.False(t, store.IsAuthenticated())
	_, hasToken := storage.Get(session.KeyToken)
	_, hasUser := storage.Get(session.KeyUser)
	assert.False(t, hasToken)
	assert.False(t, hasUser)
}

func TestUpdateUser(t *testing.T) {
	t.Run("merges and re-persists", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		store := session.NewStore(storage, nil)
		require.NoError(t, store.SetAuth("tok-1", citizenUser()))

		name := "Asha Devi"
		require.NoError(t, store.UpdateUser(models.UserUpdate{Name: &name}))

		user, _ := store.User()
		assert.Equal(t, "Asha Devi", user.Name)
		assert.Equal(t, "asha@example.in", user.Email, "unset fields untouched")
		assert.Equal(t, "tok-1", store.Token(), "token unchanged")

		reloaded := session.NewStore(storage, nil)
		reloaded.Load()
		persisted, _ := reloaded.User()
		assert.Equal(t, "Asha Devi", persisted.Name)
	})

	t.Run("no-op without a session", func(t *testing.T) {
		store := session.NewStore(session.NewMemoryStorage(), nil)
		store.Load()
		name := "Nobody"
		require.NoError(t, store.UpdateUser(models.UserUpdate{Name: &name}))
		_, ok := store.User()
		assert.False(t, ok)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success establishes session", func(t *testing.T) {
		auth := &fakeAuthClient{resp: &models.AuthResponse{Token: "tok-2", User: citizenUser()}}
		store := session.NewStore(session.NewMemoryStorage(), auth)
		store.Load()

		require.NoError(t, store.Login(context.Background(), models.LoginCredentials{Email: "a@b.c", Password: "pw"}))
		assert.True(t, store.IsAuthenticated())
		assert.Equal(t, "tok-2", store.Token())
	})

	t.Run("error propagates unchanged", func(t *testing.T) {
		wantErr := errors.New("Invalid credentials")
		store := session.NewStore(session.NewMemoryStorage(), &fakeAuthClient{err: wantErr})
		store.Load()

		err := store.Login(context.Background(), models.LoginCredentials{Email: "a@b.c", Password: "pw"})
		assert.ErrorIs(t, err, wantErr)
		assert.False(t, store.IsAuthenticated())
	})

	t.Run("no auth client", func(t *testing.T) {
		store := session.NewStore(session.NewMemoryStorage(), nil)
		store.Load()
		err := store.Login(context.Background(), models.LoginCredentials{})
		assert.ErrorIs(t, err, session.ErrNoAuthClient)
	})
}

func TestSubscribeSignalsMutations(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), nil)
	store.Load()
	ch := store.Subscribe()

	require.NoError(t, store.SetAuth("tok-1", citizenUser()))
	select {
	case <-ch:
	default:
		t.Fatal("expected a notification after SetAuth")
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store := session.NewStore(session.NewFileStorage(path), nil)
	require.NoError(t, store.SetAuth("tok-1", citizenUser()))

	reloaded := session.NewStore(session.NewFileStorage(path), nil)
	reloaded.Load()
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "tok-1", reloaded.Token())
}

func TestFileStorageCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0o600))

	store := session.NewStore(session.NewFileStorage(path), nil)
	store.Load()
	assert.False(t, store.IsAuthenticated())
}
