package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	repo "github.com/glowcast/glowcast/internal/domain/repository"
)

// PointsService applies bounded mutations to the points balance. All
// arithmetic happens in the store as a single guarded statement, so concurrent
// operations on the same identity are linearizable and never lose updates.
//
// Mutations are never auto-retried here: a store timeout on a credit or debit
// is surfaced as-is to avoid double application.
type PointsService struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewPointsService(r repo.UserRepository, logger *logrus.Logger) *PointsService {
	return &PointsService{Repo: r, Logger: logger}
}

// Credit adds amount to the balance and the streamer's cumulative received
// counter. amount must be positive.
func (s *PointsService) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.Repo.CreditPoints(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Debit subtracts amount from the balance; the store-side guard rejects the
// operation with ErrInsufficientPoints rather than driving points negative,
// leaving the balance untouched.
func (s *PointsService) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.Repo.DebitPoints(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Transfer moves points between two identities as a saga: the debit must
// succeed before the credit is attempted, and a failed credit compensates the
// debit. The two rows are mutated independently; there is no single
// transaction spanning both sides.
func (s *PointsService) Transfer(ctx context.Context, fromID, toID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrInvalidAmount
	}
	if _, err := s.Debit(ctx, fromID, amount); err != nil {
		return err
	}
	if _, err := s.Credit(ctx, toID, amount); err != nil {
		// compensate the debit; a failure here is logged loudly since it
		// leaves the source short until reconciled
		if _, cErr := s.Repo.RefundPoints(ctx, fromID, amount); cErr != nil && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"from": fromID, "to": toID, "amount": amount, "error": cErr.Error(),
			}).Error("transfer compensation failed")
		}
		return err
	}
	return nil
}

// Balance reads the current points for an identity.
func (s *PointsService) Balance(ctx context.Context, userID string) (int64, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return u.Points, nil
}
