package usecase

import "time"

const (
	// DefaultSessionTimeout is the idle time before a forced logout.
	DefaultSessionTimeout = 300 * time.Second

	// DefaultTickInterval is how often the countdown decrements.
	DefaultTickInterval = time.Second

	// DefaultLoanReviewDelay is how long a loan waits before it is credited.
	DefaultLoanReviewDelay = 3 * time.Second

	// DefaultTransactionTimeout bounds waiting for the registry lock.
	DefaultTransactionTimeout = 10 * time.Second
)
