package repository

import (
	"context"

	"github.com/glowcast/glowcast/internal/domain/entity"
)

// UserRepository defines the store operations the identity core needs.
//
// Uniqueness of username, username_lower, email, and stream_key is enforced by
// the store's unique indexes; implementations map violations to DuplicateError
// rather than pre-checking, so the check-then-insert race window stays closed.
//
// CreditPoints and DebitPoints must be atomic read-modify-writes against the
// stored balance (no lost updates under concurrent callers for one user).
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByStreamKey(ctx context.Context, key string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)

	UpdateProfile(ctx context.Context, id string, p entity.StreamProfile) error
	UpdatePic(ctx context.Context, id string, pic string) error
	UpdatePassword(ctx context.Context, id string, hash, salt string) error
	UpdateClientIP(ctx context.Context, id string, ip string) error
	SetStreamKey(ctx context.Context, id string, key string) error
	SetResetToken(ctx context.Context, id string, token string, expires int64) error
	ClearResetToken(ctx context.Context, id string) error

	// CreditPoints adds amount to points and to the cumulative received counter.
	CreditPoints(ctx context.Context, id string, amount int64) (balance int64, err error)
	// DebitPoints subtracts amount, guarded so the balance never goes negative;
	// an existing user with too few points yields ErrInsufficientPoints.
	DebitPoints(ctx context.Context, id string, amount int64) (balance int64, err error)
	// RefundPoints restores a previously debited amount without touching the
	// received counter. Used for transfer compensation only.
	RefundPoints(ctx context.Context, id string, amount int64) (balance int64, err error)

	Delete(ctx context.Context, id string) error
}
