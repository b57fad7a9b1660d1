package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/pkg/apperrors"
)

// fakeQuerier records the statement and arguments it is handed and
// serves a canned row, so column lists and bound values can be checked
// without a database.
type fakeQuerier struct {
	sql  string
	args []any
	row  fakeRow
	tag  pgconn.CommandTag
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql = sql
	q.args = args
	return q.tag, nil
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	q.args = args
	return nil, pgx.ErrNoRows
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql = sql
	q.args = args
	return q.row
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan expected %d targets, got %d", len(r.values), len(dest))
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		default:
			return fmt.Errorf("unsupported scan target %T", dest[i])
		}
	}
	return nil
}

func TestDepartmentGetByIDScanMatchesSelectedColumns(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{values: []any{int64(7), "Computer Engineering", "CENG"}}}
	repo := &DepartmentRepository{db: q, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}

	dept, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), dept.ID)
	assert.Equal(t, "Computer Engineering", dept.Name)
	assert.Equal(t, "CENG", dept.Code)
	assert.Equal(t, "SELECT id, name, code FROM departments WHERE id = $1", q.sql)
}

func TestDepartmentGetByIDNotFound(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	repo := &DepartmentRepository{db: q, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)
}

// The sweep cutoff is the start of now's day so a subscription stays
// ACTIVE through the whole of its final day, in agreement with
// Subscription.ActiveAt.
func TestExpireOverdueSparesFinalDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	repo := &SubscriptionRepository{db: q}

	count, err := repo.ExpireOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.Len(t, q.args, 3)
	cutoff, ok := q.args[2].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), cutoff)

	// A subscription approved mid-morning of its final day must not match
	// the predicate while the model still grants access.
	sub := &models.Subscription{
		Status:  models.SubscriptionStatusActive,
		EndDate: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	assert.True(t, sub.ActiveAt(now))
	assert.False(t, sub.EndDate.Before(cutoff))

	// The day after, the predicate catches it.
	nextDay := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
	repo.ExpireOverdue(context.Background(), nextDay)
	cutoff = q.args[2].(time.Time)
	assert.False(t, sub.ActiveAt(nextDay))
	assert.True(t, sub.EndDate.Before(cutoff))
}

func TestCountActiveUsesDayGranularity(t *testing.T) {
	now := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{values: []any{int64(3)}}}
	repo := &SubscriptionRepository{db: q}

	count, err := repo.CountActive(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.Len(t, q.args, 2)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), q.args[1])
}
