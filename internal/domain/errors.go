package domain

import "errors"

var (
	// Session errors
	ErrInvalidCredentials = errors.New("invalid username or pin")
	ErrNoActiveSession    = errors.New("no active session")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrExpiredToken       = errors.New("session token has expired")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrSeedMismatch      = errors.New("movements and movement dates differ in length")

	// Transaction errors
	ErrInvalidAmount     = errors.New("amount must be a positive finite number")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer to own account")
	ErrLoanRejected      = errors.New("no movement qualifies for the requested loan")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrNoActiveSession, "no_active_session"},
	{ErrInvalidToken, "invalid_token"},
	{ErrExpiredToken, "expired_token"},
	{ErrAccountNotFound, "account_not_found"},
	{ErrDuplicateUsername, "duplicate_username"},
	{ErrSeedMismatch, "seed_mismatch"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrSelfTransfer, "self_transfer"},
	{ErrLoanRejected, "loan_rejected"},
}

// ErrorCode returns a stable code for a domain error, "internal" for
// anything else and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
