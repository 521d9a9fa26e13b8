package mongo

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/notes/internal/notes/store"
)

var errNestedTx = errors.New("mongo: nested transactions are not supported")

type txStore struct {
	scope
	done bool
}

func (t *txStore) Commit() error {
	if t.sess == nil || t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(context.Background())
	return t.sess.CommitTransaction(context.Background())
}

func (t *txStore) Rollback() error {
	if t.sess == nil || t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(context.Background())
	return t.sess.AbortTransaction(context.Background())
}

func (t *txStore) Close() error                   { return nil } // client stays connected
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errNestedTx
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}
