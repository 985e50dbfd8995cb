package memory

import (
	"context"
	"sync"

	"onehotel/pkg/db"
)

type txKey struct{}

// TransactionManager serializes transactions of an in-process store. All
// repositories sharing one store must share one manager.
type TransactionManager struct {
	mu sync.Mutex
}

func NewTransactionManager() *TransactionManager {
	return &TransactionManager{}
}

func (m *TransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	if ctx.Value(txKey{}) == m {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, m))
}

var _ db.TransactionManager = (*TransactionManager)(nil)
