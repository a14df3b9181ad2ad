package testresults

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/server/models"
)

const (
	insertQ = `(?s)^INSERT\s+INTO\s+test_results\s*\(timestamp,\s*pubkey,\s*name,\s*result\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`
	latestQ = `(?s)^SELECT\s+result\s+FROM\s+test_results\s+WHERE\s+pubkey\s*=\s*\$1\s+AND\s+name\s*=\s*\$2\s+ORDER\s+BY\s+timestamp\s+DESC,\s*id\s+DESC\s+LIMIT\s+1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestInsert_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQ).
		WithArgs(at, "GPUB", "basic", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	r := &models.TestResult{Pubkey: "GPUB", Name: "basic", Result: 1, Timestamp: at}
	require.NoError(t, repo.Insert(context.Background(), r))
	assert.Equal(t, int64(17), r.ID)
}

func TestInsert_UnknownUserIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "test_results_pubkey_fkey"})

	err := repo.Insert(context.Background(), &models.TestResult{Pubkey: "GNOPE", Name: "basic", Result: 1})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "no user with pubkey GNOPE")
}

func TestInsert_ValueTooLongIsInvalidArgument(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "22001", Message: "value too long for type character varying(64)"})

	err := repo.Insert(context.Background(), &models.TestResult{Pubkey: "GPUB", Name: "basic", Result: 1})
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Equal(t, "test_results", common.MetadataOf(err)["table"])
}

func TestLatest(t *testing.T) {
	t.Run("most recent row wins", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(latestQ).
			WithArgs("GPUB", "basic").
			WillReturnRows(sqlmock.NewRows([]string{"result"}).AddRow(int64(-1)))

		got, err := repo.Latest(context.Background(), "GPUB", "basic")
		require.NoError(t, err)
		assert.Equal(t, int64(-1), got)
	})

	t.Run("untested is zero", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(latestQ).
			WithArgs("GPUB", "basic").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.Latest(context.Background(), "GPUB", "basic")
		require.NoError(t, err)
		assert.Zero(t, got)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(latestQ).
			WithArgs("GPUB", "basic").
			WillReturnError(errors.New("db err"))

		_, err := repo.Latest(context.Background(), "GPUB", "basic")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error: db err")
	})
}
