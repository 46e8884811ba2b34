package memory

import "context"

// TxManager for the in-memory store: every repo call already serializes
// on the store mutex, so there is nothing to coordinate.
type TxManager struct{}

func NewTxManager() TxManager {
	return TxManager{}
}

func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
