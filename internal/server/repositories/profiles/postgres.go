// Package profiles persists buyer and seller profiles, at most one of each
// per user.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

const (
	buyerColumns  = `id, user_id, preferred_location, max_budget`
	sellerColumns = `id, user_id, verification_status, rating, total_listings`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanBuyer(row *sql.Row) (*models.BuyerProfile, error) {
	var p models.BuyerProfile
	if err := row.Scan(&p.ID, &p.UserID, &p.PreferredLocation, &p.MaxBudget); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanSeller(row *sql.Row) (*models.SellerProfile, error) {
	var p models.SellerProfile
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &status, &p.Rating, &p.TotalListings); err != nil {
		return nil, err
	}
	p.VerificationStatus = models.VerificationStatus(status)
	return &p, nil
}

// readError maps no rows to common.ErrorNotFound.
func readError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

// writeError maps no rows to common.ErrorNotFound and unique violations
// to common.ErrorConflict.
func writeError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return dbx.WrapWriteError(err)
}

func (r *PostgresRepository) GetBuyer(ctx context.Context, userID int64) (*models.BuyerProfile, error) {
	p, err := scanBuyer(r.db.QueryRowContext(ctx,
		`SELECT `+buyerColumns+` FROM buyer_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, readError(err)
	}
	return p, nil
}

func (r *PostgresRepository) CreateBuyer(ctx context.Context, in *models.BuyerProfile) (*models.BuyerProfile, error) {
	p, err := scanBuyer(r.db.QueryRowContext(ctx,
		`INSERT INTO buyer_profiles (user_id, preferred_location, max_budget)
		 VALUES ($1, $2, $3)
		 RETURNING `+buyerColumns,
		in.UserID, in.PreferredLocation, in.MaxBudget))
	if err != nil {
		return nil, writeError(err)
	}
	return p, nil
}

func (r *PostgresRepository) UpdateBuyer(ctx context.Context, userID int64, patch models.BuyerProfilePatch) (*models.BuyerProfile, error) {
	p, err := scanBuyer(r.db.QueryRowContext(ctx,
		`UPDATE buyer_profiles SET
			preferred_location = COALESCE($2, preferred_location),
			max_budget = COALESCE($3, max_budget)
		 WHERE user_id = $1
		 RETURNING `+buyerColumns,
		userID, patch.PreferredLocation, patch.MaxBudget))
	if err != nil {
		return nil, writeError(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetSeller(ctx context.Context, userID int64) (*models.SellerProfile, error) {
	p, err := scanSeller(r.db.QueryRowContext(ctx,
		`SELECT `+sellerColumns+` FROM seller_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, readError(err)
	}
	return p, nil
}

func (r *PostgresRepository) CreateSeller(ctx context.Context, in *models.SellerProfile) (*models.SellerProfile, error) {
	p, err := scanSeller(r.db.QueryRowContext(ctx,
		`INSERT INTO seller_profiles (user_id, verification_status, rating, total_listings)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+sellerColumns,
		in.UserID, string(in.VerificationStatus), in.Rating, in.TotalListings))
	if err != nil {
		return nil, writeError(err)
	}
	return p, nil
}

func (r *PostgresRepository) UpdateSeller(ctx context.Context, userID int64, patch models.SellerProfilePatch) (*models.SellerProfile, error) {
	var status *string
	if patch.VerificationStatus != nil {
		s := string(*patch.VerificationStatus)
		status = &s
	}

	p, err := scanSeller(r.db.QueryRowContext(ctx,
		`UPDATE seller_profiles SET
			verification_status = COALESCE($2, verification_status),
			rating = COALESCE($3, rating),
			total_listings = COALESCE($4, total_listings)
		 WHERE user_id = $1
		 RETURNING `+sellerColumns,
		userID, status, patch.Rating, patch.TotalListings))
	if err != nil {
		return nil, writeError(err)
	}
	return p, nil
}
