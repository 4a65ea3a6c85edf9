package services

import (
	"database/sql"
	"testing"

	"github.com/isdelr/inkwell-be/internal/apperr"
	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthStack(t *testing.T) (*AuthService, *auth.Registry, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	registry, err := auth.NewRegistry(db, 0)
	require.NoError(t, err)
	users := NewUserService(db)
	events := NewEventService(db)
	return NewAuthService(users, registry, events), registry, db
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, registry, _ := newAuthStack(t)

	user, token, err := svc.Register("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Registration implies login: the token resolves to the new account.
	userID, ok := registry.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterDuplicateEmailIssuesNothing(t *testing.T) {
	svc, registry, db := newAuthStack(t)

	first, _, err := svc.Register("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)

	_, token, err := svc.Register("Ann Again", "ann@x.com", "pw123456")
	require.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.Empty(t, token)
	assert.Equal(t, 1, registry.SessionCount(first.ID))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "second record must not be created")
}

func TestLoginPerDeviceSessions(t *testing.T) {
	svc, registry, _ := newAuthStack(t)

	user, registerToken, err := svc.Register("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)

	// Two more logins model two devices; all three sessions live at once.
	_, device1, err := svc.Login("ann@x.com", "pw123456")
	require.NoError(t, err)
	_, device2, err := svc.Login("ann@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, 3, registry.SessionCount(user.ID))

	// Logging out one device leaves the others untouched.
	require.NoError(t, svc.Logout(device1))
	_, ok := registry.Resolve(device1)
	assert.False(t, ok)
	_, ok = registry.Resolve(device2)
	assert.True(t, ok)
	_, ok = registry.Resolve(registerToken)
	assert.True(t, ok)

	// Logout-all ends every remaining session.
	require.NoError(t, svc.LogoutAll(user.ID))
	_, ok = registry.Resolve(device2)
	assert.False(t, ok)
	_, ok = registry.Resolve(registerToken)
	assert.False(t, ok)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _, _ := newAuthStack(t)

	_, _, err := svc.Register("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login("ann@x.com", "wrong")
	_, _, unknownEmail := svc.Login("noone@x.com", "pw123456")
	require.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _, _ := newAuthStack(t)

	_, token, err := svc.Register("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))
	require.NoError(t, svc.Logout(token), "second logout must be a no-op")
	require.NoError(t, svc.Logout("never-issued"))
}
