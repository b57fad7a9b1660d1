package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTx struct {
	pgx.Tx
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (t *stubTx) Commit(context.Context) error { t.committed = true; return nil }

func (t *stubTx) Rollback(context.Context) error {
	t.rolledBack = true
	return t.rollbackErr
}

type stubRunner struct {
	tx *stubTx
}

func (r *stubRunner) Begin(context.Context) (pgx.Tx, error) {
	return r.tx, nil
}

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	runner := &stubRunner{tx: &stubTx{}}

	err := WithTransaction(context.Background(), runner, func(context.Context, pgx.Tx) error {
		return nil
	})
	require.NoError(t, err)
	assert.True(t, runner.tx.committed)
	assert.False(t, runner.tx.rolledBack)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	runner := &stubRunner{tx: &stubTx{}}
	boom := errors.New("insert failed")

	err := WithTransaction(context.Background(), runner, func(context.Context, pgx.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, runner.tx.rolledBack)
	assert.False(t, runner.tx.committed)
}

// A failed rollback must not mask the original error; callers classify it
// with errors.Is to pick the HTTP status.
func TestWithTransactionKeepsOriginalErrorWhenRollbackFails(t *testing.T) {
	sentinel := errors.New("email already exists")
	rollbackErr := errors.New("connection lost")
	runner := &stubRunner{tx: &stubTx{rollbackErr: rollbackErr}}

	err := WithTransaction(context.Background(), runner, func(context.Context, pgx.Tx) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, rollbackErr)
}

func TestWithTransactionIgnoresClosedTxOnRollback(t *testing.T) {
	sentinel := errors.New("conditional update lost")
	runner := &stubRunner{tx: &stubTx{rollbackErr: pgx.ErrTxClosed}}

	err := WithTransaction(context.Background(), runner, func(context.Context, pgx.Tx) error {
		return sentinel
	})
	// ErrTxClosed only means the tx already ended; the original error
	// passes through untouched.
	assert.Equal(t, sentinel, err)
}
