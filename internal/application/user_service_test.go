package application

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowcast/glowcast/internal/domain/entity"
	repo "github.com/glowcast/glowcast/internal/domain/repository"
	"github.com/glowcast/glowcast/pkg/helpers"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	f := newFakeUserRepo()
	jwt := &helpers.JWTManager{Secret: []byte("test-secret"), TTL: time.Hour, Now: time.Now}
	return NewService(f, jwt, quietLogger()), f
}

func mustRegister(t *testing.T, s *Service, username, email, password string) *entity.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterDefaults(t *testing.T) {
	s, _ := newTestService(t)

	u := mustRegister(t, s, "Ninja", "Ninja@Example.com", "hunter22")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ninja", u.Username)
	assert.Equal(t, "ninja", u.UsernameLower)
	assert.Equal(t, "ninja@example.com", u.Email, "email stored lowercased")
	assert.Equal(t, entity.DefaultPic, u.Pic)
	assert.Equal(t, entity.DefaultStatus, u.Status)
	assert.Empty(t, u.StreamKey, "no key until first issued")
	assert.Zero(t, u.Points)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEmpty(t, u.PasswordSalt)
	assert.NotEqual(t, "hunter22", u.PasswordHash)
}

func TestRegisterCaseCollision(t *testing.T) {
	s, _ := newTestService(t)

	mustRegister(t, s, "Ninja", "one@example.com", "hunter22")

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "NINJA",
		Email:    "two@example.com",
		Password: "hunter22",
	})
	field, dup := repo.IsDuplicate(err)
	require.True(t, dup)
	assert.Equal(t, "username_lower", field)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _ := newTestService(t)

	mustRegister(t, s, "alice", "shared@example.com", "hunter22")

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "Shared@Example.com",
		Password: "hunter22",
	})
	field, dup := repo.IsDuplicate(err)
	require.True(t, dup)
	assert.Equal(t, "email", field)
}

func TestAuthenticateByUsernameAndEmail(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "alice", "alice@example.com", "hunter22")

	u, err := s.Authenticate(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	u, err = s.Authenticate(context.Background(), "Alice@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

// Unknown identifier and wrong password must be indistinguishable to callers.
func TestAuthenticateFailuresAreUniform(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "alice", "alice@example.com", "hunter22")

	_, errUnknown := s.Authenticate(context.Background(), "nobody", "hunter22")
	_, errBadPass := s.Authenticate(context.Background(), "alice", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errBadPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errBadPass.Error())
}

func TestLoginIssuesToken(t *testing.T) {
	s, f := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")

	res, err := s.Login(context.Background(), "alice", "hunter22", "10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	claims, err := s.JWT.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	stored, err := f.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", stored.ClientIP)
}

func TestUpdateProfilePartial(t *testing.T) {
	s, _ := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")

	title := "Speedrun night"
	live := true
	updated, err := s.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{
		Title: &title,
		Live:  &live,
	})
	require.NoError(t, err)
	assert.Equal(t, "Speedrun night", updated.Stream.Title)
	assert.True(t, updated.Stream.Live)

	game := "chess"
	updated, err = s.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Game: &game})
	require.NoError(t, err)
	assert.Equal(t, "chess", updated.Stream.Game)
	assert.Equal(t, "Speedrun night", updated.Stream.Title, "untouched fields survive")
	assert.True(t, updated.Stream.Live)
}

func TestUpdateProfileRejectsNegativeGoal(t *testing.T) {
	s, _ := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")

	goal := int64(-5)
	_, err := s.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Goal: &goal})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBanUnbanViewer(t *testing.T) {
	s, _ := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	require.NoError(t, s.BanViewer(ctx, u.ID, "troll"))
	require.NoError(t, s.BanViewer(ctx, u.ID, "troll")) // idempotent

	got, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"troll"}, got.Stream.BannedUsers)
	assert.True(t, got.Stream.IsBanned("troll"))

	require.NoError(t, s.UnbanViewer(ctx, u.ID, "troll"))
	got, err = s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Stream.IsBanned("troll"))
}

func TestChangePasswordRotatesSalt(t *testing.T) {
	s, f := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	require.NoError(t, s.ChangePassword(ctx, u.ID, "new-password-1"))

	stored, err := f.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordSalt, stored.PasswordSalt)
	assert.NotEqual(t, u.PasswordHash, stored.PasswordHash)

	_, err = s.Authenticate(ctx, "alice", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "alice", "new-password-1")
	assert.NoError(t, err)
}

func TestRequestPasswordResetUnknownEmailSucceeds(t *testing.T) {
	s, _ := newTestService(t)
	// always OK, so the endpoint cannot probe for accounts
	assert.NoError(t, s.RequestPasswordReset(context.Background(), "nobody@example.com"))
}

func TestPasswordResetFlow(t *testing.T) {
	s, f := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	require.NoError(t, s.RequestPasswordReset(ctx, "Alice@Example.com"))

	stored, err := f.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	require.NoError(t, s.ConfirmPasswordReset(ctx, stored.ResetToken, "fresh-password"))

	_, err = s.Authenticate(ctx, "alice", "fresh-password")
	assert.NoError(t, err)

	// token is single-use
	err = s.ConfirmPasswordReset(ctx, stored.ResetToken, "another-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestConfirmPasswordResetExpiredToken(t *testing.T) {
	s, f := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }
	require.NoError(t, s.RequestPasswordReset(ctx, "alice@example.com"))

	stored, err := f.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	s.Now = func() time.Time { return base.Add(s.ResetTokenTTL + time.Minute) }
	err = s.ConfirmPasswordReset(ctx, stored.ResetToken, "fresh-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	// old password still works, and the stale token was cleared
	_, err = s.Authenticate(ctx, "alice", "hunter22")
	assert.NoError(t, err)
	stored, err = f.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetToken)
}

func TestConfirmPasswordResetBadToken(t *testing.T) {
	s, _ := newTestService(t)
	assert.ErrorIs(t, s.ConfirmPasswordReset(context.Background(), "", "pw"), ErrInvalidResetToken)
	assert.ErrorIs(t, s.ConfirmPasswordReset(context.Background(), "no-such-token", "pw"), ErrInvalidResetToken)
}

func TestDeleteAccountIdempotent(t *testing.T) {
	s, _ := newTestService(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	require.NoError(t, s.DeleteAccount(ctx, u.ID))
	_, err := s.GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, s.DeleteAccount(ctx, u.ID))
}
