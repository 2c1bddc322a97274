package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowcast/glowcast/internal/domain/repository"
)

func TestMapErrorNoRows(t *testing.T) {
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), repository.ErrNotFound)
}

func TestMapErrorUniqueViolation(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	var dup *repository.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
}

func TestMapErrorOtherErrorsWrapStoreUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := mapError(cause)

	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestMapErrorNil(t *testing.T) {
	assert.NoError(t, mapError(nil))
}

// username_lower must win over the plain username constraint; both contain
// the substring "username".
func TestFieldForConstraint(t *testing.T) {
	cases := map[string]string{
		"users_username_lower_key": "username_lower",
		"users_username_key":       "username",
		"users_email_key":          "email",
		"users_stream_key_key":     "stream_key",
		"some_other_constraint":    "some_other_constraint",
	}
	for constraint, want := range cases {
		assert.Equal(t, want, fieldForConstraint(constraint), constraint)
	}
}
