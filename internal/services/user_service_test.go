package services

import (
	"database/sql"
	"testing"

	"github.com/isdelr/inkwell-be/internal/apperr"
	"github.com/isdelr/inkwell-be/internal/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive for the
	// whole test.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.CreateUser("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	authed, err := svc.AuthenticateUser("ann@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	first, err := svc.CreateUser("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.CreateUser("Ann Again", "ann@x.com", "different-pw")
	require.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	// The original account is untouched and still the only one.
	authed, err := svc.AuthenticateUser("ann@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, first.ID, authed.ID)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.CreateUser("Ann", "  Ann@X.com ", "pw123456")
	require.NoError(t, err)

	_, err = svc.CreateUser("Impostor", "ann@x.com", "pw123456")
	require.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	_, err = svc.AuthenticateUser("ANN@X.COM", "pw123456")
	require.NoError(t, err)
}

func TestAuthenticateUserFailuresAreUniform(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.CreateUser("Ann", "ann@x.com", "pw123456")
	require.NoError(t, err)

	_, wrongPassword := svc.AuthenticateUser("ann@x.com", "wrong")
	_, unknownEmail := svc.AuthenticateUser("noone@x.com", "pw123456")

	// A wrong password and an unknown email must be indistinguishable,
	// otherwise the endpoint can be used to enumerate accounts.
	require.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.GetUserByID("missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
