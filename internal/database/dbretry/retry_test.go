package dbretry_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/robalyx/presencerelay/internal/database/dbretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "no rows", err: sql.ErrNoRows, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "wrapped context canceled", err: fmt.Errorf("query: %w", context.Canceled), want: false},
		{name: "sqlite locked", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: true},
		{name: "sqlite busy", err: errors.New("SQLITE_BUSY: cannot commit"), want: true},
		{name: "connection reset", err: errors.New("read tcp: connection reset by peer"), want: true},
		{name: "broken pipe", err: errors.New("write: broken pipe"), want: true},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connection refused"), want: true},
		{name: "timeout", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "constraint violation", err: errors.New("UNIQUE constraint failed: link_records.external_account_id"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dbretry.IsRetryableError(tt.err))
		})
	}
}

func TestOperationRetriesRetryableErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := dbretry.Operation(t.Context(), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("database is locked")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, calls)
}

func TestOperationStopsOnPermanentErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := dbretry.NoResult(t.Context(), func(context.Context) error {
		calls++
		return sql.ErrNoRows
	})

	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, 1, calls)
}
