package storage

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradenet/utils"
)

func TestBuildInsertPlaceholders(t *testing.T) {
	table := productTable()
	query, args := buildInsert("run-1", table, table.Links)

	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7),($8,$9,$10,$11,$12,$13,$14)")
	require.Len(t, args, 14)
	assert.Equal(t, "run-1", args[0])
	assert.Equal(t, sql.NullInt64{Int64: 2000, Valid: true}, args[1])
	assert.Equal(t, "AFG", args[2])
	assert.Equal(t, sql.NullString{String: "090920", Valid: true}, args[4])
	assert.Equal(t, 2.823, args[5])
}

func TestBuildInsertPanelNulls(t *testing.T) {
	table := panelTable()
	query, args := buildInsert("run-2", table, table.Links[:1])

	assert.Equal(t, 1, strings.Count(query, "($"))
	assert.False(t, args[1].(sql.NullInt64).Valid)
	assert.False(t, args[4].(sql.NullString).Valid)
	assert.False(t, args[6].(sql.NullFloat64).Valid)
}

func TestPingErrorStopsRetryOnAuthFailure(t *testing.T) {
	retry := &utils.RetryConfig{MaxAttempts: 3}

	calls := 0
	err := retry.Do("postgres ping", func() error {
		calls++
		return pingError(&pq.Error{Code: "28P01", Message: "password authentication failed"})
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("28P01"), pqErr.Code)
}

func TestPingErrorRetriesTransientFailures(t *testing.T) {
	retry := &utils.RetryConfig{MaxAttempts: 3}

	calls := 0
	err := retry.Do("postgres ping", func() error {
		calls++
		return pingError(errors.New("dial tcp: connection refused"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retry.Do("postgres ping", func() error {
		calls++
		return pingError(&pq.Error{Code: "57P03", Message: "the database system is starting up"})
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
