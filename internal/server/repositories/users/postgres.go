// Package users provides the PostgreSQL-backed user repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/server/models"
)

// constraint name -> field reported in DuplicateKey errors.
var uniqueFields = map[string]string{
	"users_pkey":          "pubkey",
	"users_call_sign_key": "call_sign",
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (pubkey, call_sign)
		 VALUES ($1, $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, user.Pubkey, user.CallSign); err != nil {
		if constraint, ok := dbx.IsUniqueViolation(err); ok {
			field := uniqueFields[constraint]
			value := user.Pubkey
			if field == "call_sign" {
				value = user.CallSign
			}
			return common.WithMetadata(common.KindDuplicateKey,
				fmt.Sprintf("%s %s is non unique", field, value),
				map[string]string{"field": field, "value": value})
		}
		if msg, ok := dbx.IsValueTooLong(err); ok {
			return common.WithMetadata(common.KindInvalidArgument, "user "+msg,
				map[string]string{"table": "users"})
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByPubkey(ctx context.Context, pubkey string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT pubkey, call_sign FROM users
		 WHERE pubkey = $1
		 `, "pubkey", pubkey)
}

func (r *PostgresRepository) GetByCallSign(ctx context.Context, callSign string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT pubkey, call_sign FROM users
		 WHERE call_sign = $1
		 `, "call_sign", callSign)
}

// getOne reads every matching row so that a duplicate is reported instead
// of silently picking the first one.
func (r *PostgresRepository) getOne(ctx context.Context, query, field, value string) (*models.User, error) {
	users, err := r.query(ctx, query, value)
	if err != nil {
		return nil, err
	}

	switch len(users) {
	case 0:
		return nil, common.WithMetadata(common.KindNotFound,
			fmt.Sprintf("user with %s %s does not exist", field, value),
			map[string]string{field: value})
	case 1:
		return users[0], nil
	default:
		return nil, common.WithMetadata(common.KindDataIntegrityViolation,
			fmt.Sprintf("%d users with %s %s", len(users), field, value),
			map[string]string{field: value})
	}
}

func (r *PostgresRepository) LockForUpdate(ctx context.Context, pubkey string) error {
	query :=
		`SELECT pubkey FROM users
		 WHERE pubkey = $1
		 FOR UPDATE
		 `

	var locked string
	if err := r.db.QueryRowContext(ctx, query, pubkey).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.WithMetadata(common.KindNotFound,
				fmt.Sprintf("user with pubkey %s does not exist", pubkey),
				map[string]string{"pubkey": pubkey})
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.query(ctx,
		`SELECT pubkey, call_sign FROM users
		 ORDER BY call_sign
		 `)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Pubkey, &u.CallSign); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
