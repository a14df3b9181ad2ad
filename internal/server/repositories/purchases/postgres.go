// Package purchases provides the PostgreSQL-backed purchase ledger storage.
package purchases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/server/models"
)

const selectColumns = `SELECT id, timestamp, user_pubkey, payment_pubkey, payment_currency, requested_currency, euro_cents, paid
		 FROM purchases`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Purchase) error {
	query :=
		`INSERT INTO purchases (timestamp, user_pubkey, payment_pubkey, payment_currency, requested_currency, euro_cents, paid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.Timestamp, p.UserPubkey, p.PaymentAddress, string(p.PaymentCurrency),
		string(p.RequestedCurrency), p.EuroCents, int(p.Paid)).Scan(&p.ID)
	if err == nil {
		return nil
	}

	if _, ok := dbx.IsUniqueViolation(err); ok {
		return common.WithMetadata(common.KindDuplicateKey,
			fmt.Sprintf("payment address %s is already used", p.PaymentAddress),
			map[string]string{"field": "payment_address", "value": p.PaymentAddress})
	}
	if _, ok := dbx.IsForeignKeyViolation(err); ok {
		return common.WithMetadata(common.KindNotFound,
			fmt.Sprintf("no user with pubkey %s", p.UserPubkey),
			map[string]string{"pubkey": p.UserPubkey})
	}
	if constraint, ok := dbx.IsCheckViolation(err); ok {
		return common.Wrap(common.KindInvalidArgument, "purchase violates "+constraint, err)
	}
	if msg, ok := dbx.IsValueTooLong(err); ok {
		return common.WithMetadata(common.KindInvalidArgument, "purchase "+msg,
			map[string]string{"table": "purchases"})
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) GetByAddress(ctx context.Context, address string) (*models.Purchase, error) {
	query := selectColumns + `
		 WHERE payment_pubkey = $1
		 `

	p, err := scanPurchase(r.db.QueryRowContext(ctx, query, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.WithMetadata(common.KindNotFound,
				fmt.Sprintf("no purchase with payment address %s", address),
				map[string]string{"payment_address": address})
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) SumEuroCents(ctx context.Context, pubkey string, status models.PaymentStatus, since time.Time) (int64, error) {
	query :=
		`SELECT COALESCE(SUM(euro_cents), 0) FROM purchases
		 WHERE user_pubkey = $1 AND paid = $2 AND timestamp > $3
		 `

	var total int64
	if err := r.db.QueryRowContext(ctx, query, pubkey, int(status), since).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Purchase, error) {
	query := selectColumns + `
		 WHERE paid = $1
		 ORDER BY timestamp, id
		 `

	rows, err := r.db.QueryContext(ctx, query, int(status))
	if err != nil {
		return nil, fmt.Errorf("failed to select purchases: %w", err)
	}
	defer rows.Close()

	var result []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, address string, from, to models.PaymentStatus) (bool, error) {
	query :=
		`UPDATE purchases SET paid = $1
		 WHERE payment_pubkey = $2 AND paid = $3
		 `

	res, err := r.db.ExecContext(ctx, query, int(to), address, int(from))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, common.WithMetadata(common.KindDataIntegrityViolation,
			fmt.Sprintf("%d purchases share payment address %s", n, address),
			map[string]string{"payment_address": address})
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPurchase(s scanner) (*models.Purchase, error) {
	var (
		p                  models.Purchase
		payment, requested string
		paid               int
	)
	if err := s.Scan(&p.ID, &p.Timestamp, &p.UserPubkey, &p.PaymentAddress,
		&payment, &requested, &p.EuroCents, &paid); err != nil {
		return nil, err
	}
	p.PaymentCurrency = models.PaymentCurrency(payment)
	p.RequestedCurrency = models.RequestedCurrency(requested)
	p.Paid = models.PaymentStatus(paid)
	return &p, nil
}
