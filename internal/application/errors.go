package application

import "errors"

var (
	// ErrInvalidCredentials is the single failure every login attempt gets,
	// whether the identity was missing or the password was wrong. Collapsing
	// the two keeps account enumeration out of the login endpoint; the real
	// cause is debug-logged only.
	ErrInvalidCredentials = errors.New("incorrect username/email or password")

	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidResetToken covers unknown, consumed, and expired reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrInvalidAmount rejects non-positive ledger amounts before any store call.
	ErrInvalidAmount = errors.New("amount must be positive")
)
