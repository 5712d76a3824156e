package memory

import (
	"context"
	"sync"
)

// TxManager implements port.TransactionManager for the in-memory
// repositories by serializing whole units of work under one mutex.
// There is no rollback: the decision sequence reads the request's
// status under the same lock it later writes under, so a unit of work
// that reaches its writes can no longer lose the race, and partial
// state is never observable.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a new in-memory transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// WithTransaction runs fn while holding the serialization lock.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
