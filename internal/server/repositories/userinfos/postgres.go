// Package userinfos stores timestamped user profile snapshots in PostgreSQL.
package userinfos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

func (r *PostgresRepository) Insert(ctx context.Context, pubkey string, update models.UserInfoUpdate, at time.Time) error {
	query :=
		`INSERT INTO internal_user_infos (timestamp, pubkey, full_name, phone_number, address)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query, at, pubkey,
		nullString(update.FullName), nullString(update.PhoneNumber), nullString(update.Address))
	if err != nil {
		if _, ok := dbx.IsForeignKeyViolation(err); ok {
			return userNotFound(pubkey)
		}
		if msg, ok := dbx.IsValueTooLong(err); ok {
			return common.WithMetadata(common.KindInvalidArgument, "user info "+msg,
				map[string]string{"table": "internal_user_infos"})
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Ties on timestamp are broken by insertion order (id).
func (r *PostgresRepository) Current(ctx context.Context, pubkey string) (*models.UserInfo, error) {
	query :=
		`SELECT MAX(i.timestamp),
		   (SELECT full_name FROM internal_user_infos
		     WHERE pubkey = $1 AND full_name IS NOT NULL
		     ORDER BY timestamp DESC, id DESC LIMIT 1),
		   (SELECT phone_number FROM internal_user_infos
		     WHERE pubkey = $1 AND phone_number IS NOT NULL
		     ORDER BY timestamp DESC, id DESC LIMIT 1),
		   (SELECT address FROM internal_user_infos
		     WHERE pubkey = $1 AND address IS NOT NULL
		     ORDER BY timestamp DESC, id DESC LIMIT 1)
		 FROM internal_user_infos i
		 WHERE i.pubkey = $1
		 `

	var (
		updatedAt                 sql.NullTime
		fullName, phone, homeAddr sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, query, pubkey).Scan(&updatedAt, &fullName, &phone, &homeAddr); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !updatedAt.Valid {
		return nil, userNotFound(pubkey)
	}

	return &models.UserInfo{
		Pubkey:      pubkey,
		FullName:    stringPtr(fullName),
		PhoneNumber: stringPtr(phone),
		Address:     stringPtr(homeAddr),
		UpdatedAt:   updatedAt.Time,
	}, nil
}

func userNotFound(pubkey string) error {
	return common.WithMetadata(common.KindNotFound,
		fmt.Sprintf("user with pubkey %s does not exist", pubkey),
		map[string]string{"pubkey": pubkey})
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
