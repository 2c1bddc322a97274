package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowcast/glowcast/internal/domain/entity"
	"github.com/glowcast/glowcast/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, username_lower, email, password_hash, password_salt,
	pic, status, COALESCE(stream_key, ''),
	stream_title, stream_game, with_game, live, stream_image, banned_users,
	with_goal, goal, received, goal_reward, twitter, first_site, bio,
	points, COALESCE(reset_token, ''), COALESCE(reset_expires, 'epoch'::timestamptz),
	client_ip, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Username, &u.UsernameLower, &u.Email, &u.PasswordHash, &u.PasswordSalt,
		&u.Pic, &u.Status, &u.StreamKey,
		&u.Stream.Title, &u.Stream.Game, &u.Stream.WithGame, &u.Stream.Live, &u.Stream.StreamImage, &u.Stream.BannedUsers,
		&u.Stream.WithGoal, &u.Stream.Goal, &u.Stream.Received, &u.Stream.GoalReward, &u.Stream.Twitter, &u.Stream.FirstSite, &u.Stream.Bio,
		&u.Points, &u.ResetToken, &u.ResetExpires,
		&u.ClientIP, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// mapError translates pgx errors into the repository taxonomy. A unique-index
// violation at write time is authoritative; we never pre-check uniqueness.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &repository.DuplicateError{Field: fieldForConstraint(pgErr.ConstraintName)}
	}
	return errors.Join(repository.ErrStoreUnavailable, err)
}

func fieldForConstraint(constraint string) string {
	switch {
	case strings.Contains(constraint, "username_lower"):
		return "username_lower"
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	case strings.Contains(constraint, "stream_key"):
		return "stream_key"
	}
	return constraint
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, username_lower, email, password_hash, password_salt, pic, status, client_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, points, created_at, updated_at
	`, u.Username, u.UsernameLower, u.Email, u.PasswordHash, u.PasswordSalt, u.Pic, u.Status, u.ClientIP)

	if err := row.Scan(&u.ID, &u.Points, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByStreamKey(ctx context.Context, key string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE stream_key = $1`, key))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = $1`, token))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p entity.StreamProfile) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET stream_title = $1, stream_game = $2, with_game = $3, live = $4, stream_image = $5,
		    banned_users = $6, with_goal = $7, goal = $8, goal_reward = $9,
		    twitter = $10, first_site = $11, bio = $12, updated_at = now()
		WHERE id = $13
	`, p.Title, p.Game, p.WithGame, p.Live, p.StreamImage,
		p.BannedUsers, p.WithGoal, p.Goal, p.GoalReward,
		p.Twitter, p.FirstSite, p.Bio, id)
	return affected(res, err)
}

func (r *UserRepository) UpdatePic(ctx context.Context, id string, pic string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET pic = $1, updated_at = now() WHERE id = $2`, pic, id)
	return affected(res, err)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, hash, salt string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, password_salt = $2, updated_at = now() WHERE id = $3
	`, hash, salt, id)
	return affected(res, err)
}

func (r *UserRepository) UpdateClientIP(ctx context.Context, id string, ip string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET client_ip = $1 WHERE id = $2`, ip, id)
	return affected(res, err)
}

func (r *UserRepository) SetStreamKey(ctx context.Context, id string, key string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET stream_key = $1, updated_at = now() WHERE id = $2`, key, id)
	return affected(res, err)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id string, token string, expires int64) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token = $1, reset_expires = $2, updated_at = now() WHERE id = $3
	`, token, time.Unix(expires, 0).UTC(), id)
	return affected(res, err)
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token = NULL, reset_expires = NULL, updated_at = now() WHERE id = $1
	`, id)
	return affected(res, err)
}

// CreditPoints is a single atomic read-modify-write at the store; concurrent
// credits for the same user serialize on the row and lose no updates.
func (r *UserRepository) CreditPoints(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET points = points + $1, received = received + $1, updated_at = now()
		WHERE id = $2
		RETURNING points
	`, amount, id).Scan(&balance)
	if err != nil {
		return 0, mapError(err)
	}
	return balance, nil
}

// DebitPoints conditions the update on the current balance so the guard and
// the subtraction are one statement. Zero rows means either the user is gone
// or the balance is short; a follow-up read tells them apart.
func (r *UserRepository) DebitPoints(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET points = points - $1, updated_at = now()
		WHERE id = $2 AND points >= $1
		RETURNING points
	`, amount, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError(err)
	}
	if _, gerr := r.GetByID(ctx, id); gerr != nil {
		return 0, gerr
	}
	return 0, repository.ErrInsufficientPoints
}

func (r *UserRepository) RefundPoints(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET points = points + $1, updated_at = now()
		WHERE id = $2
		RETURNING points
	`, amount, id).Scan(&balance)
	if err != nil {
		return 0, mapError(err)
	}
	return balance, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	// idempotent: deleting an absent user is not an error
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return mapError(err)
}

func affected(res pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
