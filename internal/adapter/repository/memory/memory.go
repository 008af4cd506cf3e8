// Package memory holds the process-local registry, transaction manager and
// outbox. State does not survive a restart.
package memory

import (
	"github.com/iho/bankist/internal/usecase"
)

var (
	_ usecase.AccountRepository  = (*AccountRepository)(nil)
	_ usecase.OutboxRepository   = (*OutboxRepository)(nil)
	_ usecase.TransactionManager = (*TxManager)(nil)
	_ usecase.IDGenerator        = (*ULIDGenerator)(nil)
)
