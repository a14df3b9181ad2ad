// Package testresults stores KYC test outcomes in PostgreSQL.
package testresults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, result *models.TestResult) error {
	query :=
		`INSERT INTO test_results (timestamp, pubkey, name, result)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		result.Timestamp, result.Pubkey, result.Name, result.Result).Scan(&result.ID)
	if err != nil {
		if _, ok := dbx.IsForeignKeyViolation(err); ok {
			return common.WithMetadata(common.KindNotFound,
				fmt.Sprintf("no user with pubkey %s", result.Pubkey),
				map[string]string{"pubkey": result.Pubkey})
		}
		if msg, ok := dbx.IsValueTooLong(err); ok {
			return common.WithMetadata(common.KindInvalidArgument, "test result "+msg,
				map[string]string{"table": "test_results"})
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, pubkey, name string) (int64, error) {
	query :=
		`SELECT result FROM test_results
		 WHERE pubkey = $1 AND name = $2
		 ORDER BY timestamp DESC, id DESC
		 LIMIT 1
		 `

	var result int64
	if err := r.db.QueryRowContext(ctx, query, pubkey, name).Scan(&result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
