// Package properties persists listings, including the payment status
// compare-and-set used by the transaction lifecycle.
package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

const propertyColumns = `id, title, description, price, currency, location, bedrooms, bathrooms, area,
	owner_id, photos, main_photo, payment_status, payment_address, last_updated`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner) (*models.Property, error) {
	var p models.Property
	var currency, status string
	if err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &currency, &p.Location, &p.Bedrooms, &p.Bathrooms, &p.Area,
		&p.OwnerID, &p.Photos, &p.MainPhoto, &status, &p.PaymentAddress, &p.LastUpdated,
	); err != nil {
		return nil, err
	}
	p.Currency = models.Currency(currency)
	p.PaymentStatus = models.PaymentStatus(status)
	return &p, nil
}

// one runs a single-row query. No rows maps to notFound.
func (r *PostgresRepository) one(ctx context.Context, notFound error, query string, args ...any) (*models.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) many(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	query :=
		`INSERT INTO properties (title, description, price, currency, location, bedrooms, bathrooms, area,
			owner_id, photos, payment_status, payment_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING ` + propertyColumns

	created, err := scanProperty(r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Price, string(p.Currency), p.Location, p.Bedrooms, p.Bathrooms, p.Area,
		p.OwnerID, p.Photos, string(p.PaymentStatus), p.PaymentAddress,
	))
	if err != nil {
		return nil, dbx.WrapWriteError(err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	return r.one(ctx, common.ErrorNotFound, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
}

func (r *PostgresRepository) List(ctx context.Context, page models.Page) ([]*models.Property, error) {
	return r.many(ctx,
		`SELECT `+propertyColumns+` FROM properties ORDER BY id ASC OFFSET $1 LIMIT $2`,
		page.Skip, page.Limit)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Property, error) {
	return r.many(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE owner_id = $1 ORDER BY id ASC OFFSET $2 LIMIT $3`,
		ownerID, page.Skip, page.Limit)
}

// Search applies every present filter conjunctively. Text filters are
// case-insensitive substring matches with LIKE wildcards taken literally.
func (r *PostgresRepository) Search(ctx context.Context, f models.SearchFilter, page models.Page) ([]*models.Property, error) {
	query, args := buildSearch(f, page)
	return r.many(ctx, query, args...)
}

func buildSearch(f models.SearchFilter, page models.Page) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if f.Query != "" {
		add(`(title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\')`, containsPattern(f.Query))
	}
	if f.MinPrice != nil {
		add(`price >= ?`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(`price <= ?`, *f.MaxPrice)
	}
	if f.Bedrooms != nil {
		add(`bedrooms = ?`, *f.Bedrooms)
	}
	if f.Location != "" {
		add(`location ILIKE ? ESCAPE '\'`, containsPattern(f.Location))
	}
	if f.Currency != nil {
		add(`currency = ?`, string(*f.Currency))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + propertyColumns + ` FROM properties`)
	if len(conds) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(conds, ` AND `))
	}
	args = append(args, page.Skip, page.Limit)
	fmt.Fprintf(&b, ` ORDER BY id ASC OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Update applies the non-nil fields of patch. Payment status is not
// touched here.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.PropertyPatch) (*models.Property, error) {
	var currency *string
	if patch.Currency != nil {
		c := string(*patch.Currency)
		currency = &c
	}

	query :=
		`UPDATE properties SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			currency = COALESCE($5, currency),
			location = COALESCE($6, location),
			bedrooms = COALESCE($7, bedrooms),
			bathrooms = COALESCE($8, bathrooms),
			area = COALESCE($9, area),
			payment_address = COALESCE($10, payment_address),
			last_updated = now()
		 WHERE id = $1
		 RETURNING ` + propertyColumns

	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id,
		patch.Title, patch.Description, patch.Price, currency, patch.Location,
		patch.Bedrooms, patch.Bathrooms, patch.Area, patch.PaymentAddress,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.WrapWriteError(err)
	}
	return p, nil
}

// AppendPhotos appends urls in one statement that also enforces the
// maxTotal cap, so concurrent uploads cannot overshoot it. The first url
// becomes the main photo if none is set.
func (r *PostgresRepository) AppendPhotos(ctx context.Context, id int64, urls []string, maxTotal int) (*models.Property, error) {
	if len(urls) == 0 {
		return r.GetByID(ctx, id)
	}

	query :=
		`UPDATE properties SET
			photos = photos || $2::jsonb,
			main_photo = COALESCE(main_photo, $3),
			last_updated = now()
		 WHERE id = $1 AND jsonb_array_length(photos) + $4 <= $5
		 RETURNING ` + propertyColumns

	return r.one(ctx,
		fmt.Errorf("%w: a property can have at most %d photos", common.ErrorInvalidInput, maxTotal),
		query, id, models.PhotoList(urls), urls[0], len(urls), maxTotal)
}

// SetMainPhoto sets main_photo to url only if url is one of the photos.
func (r *PostgresRepository) SetMainPhoto(ctx context.Context, id int64, url string) (*models.Property, error) {
	query :=
		`UPDATE properties SET main_photo = $2, last_updated = now()
		 WHERE id = $1 AND photos @> jsonb_build_array($2::text)
		 RETURNING ` + propertyColumns

	return r.one(ctx,
		fmt.Errorf("%w: main photo must be one of the property photos", common.ErrorInvalidInput),
		query, id, url)
}

// TransitionPaymentStatus moves the property from one payment status to
// another. It returns common.ErrorInvalidState when the property is not in
// the from status (including when another caller got there first).
func (r *PostgresRepository) TransitionPaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) error {
	query :=
		`UPDATE properties SET payment_status = $3, last_updated = now()
		 WHERE id = $1 AND payment_status = $2`

	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: property %d is not %s", common.ErrorInvalidState, id, from)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
