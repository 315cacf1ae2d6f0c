package repository

import (
	"context"

	"gorm.io/gorm"
)

// txKeyType is unexported so no other package can collide with the
// transaction entry in a context.
type txKeyType struct{}

var txKey txKeyType

// TransactionManager runs a unit of work inside a single database
// transaction. Repositories called with the context it hands to fn
// share the same transaction handle, so a booking status change and
// its barrel decrement commit or roll back together.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	// A nested RunInTx joins the caller's transaction instead of
	// opening a second one.
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(context.WithValue(ctx, txKey, tx))
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// GetDB returns the transaction carried by ctx when there is one, and
// the root handle otherwise. Every repository method goes through this,
// which is what lets services compose repository calls transactionally
// without the repositories knowing.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
