// Package transactions persists purchase intents.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

const transactionColumns = `id, property_id, buyer_id, amount, currency, transaction_hash, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*models.Transaction, error) {
	var t models.Transaction
	var currency, status string
	if err := s.Scan(
		&t.ID, &t.PropertyID, &t.BuyerID, &t.Amount, &currency, &t.TransactionHash, &status, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Currency = models.Currency(currency)
	t.Status = models.TransactionStatus(status)
	return &t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query :=
		`INSERT INTO transactions (property_id, buyer_id, amount, currency, transaction_hash, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + transactionColumns

	created, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		t.PropertyID, t.BuyerID, t.Amount, string(t.Currency), t.TransactionHash, string(t.Status)))
	if err != nil {
		return nil, dbx.WrapWriteError(err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*models.Transaction, error) {
	return r.many(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE buyer_id = $1 ORDER BY id ASC`, buyerID)
}

func (r *PostgresRepository) ListByProperty(ctx context.Context, propertyID int64) ([]*models.Transaction, error) {
	return r.many(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE property_id = $1 ORDER BY id ASC`, propertyID)
}

func (r *PostgresRepository) many(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpdateStatus moves a transaction from one status to another, recording
// hash when given. A transaction that is no longer in from yields
// common.ErrorInvalidState.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, from, to models.TransactionStatus, hash *string) (*models.Transaction, error) {
	query :=
		`UPDATE transactions SET
			status = $3,
			transaction_hash = COALESCE($4, transaction_hash),
			updated_at = now()
		 WHERE id = $1 AND status = $2
		 RETURNING ` + transactionColumns

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, string(from), string(to), hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %d is not %s", common.ErrorInvalidState, id, from)
		}
		return nil, dbx.WrapWriteError(err)
	}
	return t, nil
}
