package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var (
	buyerCols  = []string{"id", "user_id", "preferred_location", "max_budget"}
	sellerCols = []string{"id", "user_id", "verification_status", "rating", "total_listings"}
)

func TestGetBuyer(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^SELECT\s+id,\s*user_id,\s*preferred_location,\s*max_budget\s+FROM\s+buyer_profiles\s+WHERE\s+user_id\s*=\s*\$1$`

	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(buyerCols).AddRow(int64(5), int64(1), "Riga", "250000"))
	got, err := repo.GetBuyer(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got.PreferredLocation)
	assert.Equal(t, "Riga", *got.PreferredLocation)
	require.NotNil(t, got.MaxBudget)
	assert.True(t, decimal.NewFromInt(250000).Equal(*got.MaxBudget))

	mock.ExpectQuery(q).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(buyerCols).AddRow(int64(6), int64(2), nil, nil))
	got, err = repo.GetBuyer(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, got.PreferredLocation)
	assert.Nil(t, got.MaxBudget)

	mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetBuyer(context.Background(), 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(q).WithArgs(int64(4)).WillReturnError(errors.New("boom"))
	_, err = repo.GetBuyer(context.Background(), 4)
	assert.Regexp(t, `db error: .*boom`, err.Error())
}

func TestCreateBuyer_DuplicateIsConflict(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^INSERT\s+INTO\s+buyer_profiles\s*\(user_id,\s*preferred_location,\s*max_budget\)`

	mock.ExpectQuery(q).WithArgs(int64(1), nil, nil).
		WillReturnRows(sqlmock.NewRows(buyerCols).AddRow(int64(5), int64(1), nil, nil))
	got, err := repo.CreateBuyer(context.Background(), &models.BuyerProfile{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)

	mock.ExpectQuery(q).WithArgs(int64(1), nil, nil).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "buyer_profiles_user_id_key"})
	_, err = repo.CreateBuyer(context.Background(), &models.BuyerProfile{UserID: 1})
	assert.ErrorIs(t, err, common.ErrorConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBuyer_PartialPatch(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^UPDATE\s+buyer_profiles\s+SET\s+preferred_location\s*=\s*COALESCE\(\$2,\s*preferred_location\),\s*max_budget\s*=\s*COALESCE\(\$3,\s*max_budget\)\s+WHERE\s+user_id\s*=\s*\$1`

	loc := "Jurmala"
	mock.ExpectQuery(q).WithArgs(int64(1), "Jurmala", nil).
		WillReturnRows(sqlmock.NewRows(buyerCols).AddRow(int64(5), int64(1), "Jurmala", "100"))
	got, err := repo.UpdateBuyer(context.Background(), 1, models.BuyerProfilePatch{PreferredLocation: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Jurmala", *got.PreferredLocation)
	assert.True(t, decimal.NewFromInt(100).Equal(*got.MaxBudget))

	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateBuyer(context.Background(), 9, models.BuyerProfilePatch{PreferredLocation: &loc})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerProfile(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+seller_profiles`).
		WithArgs(int64(2), "PENDING", 0.0, 0).
		WillReturnRows(sqlmock.NewRows(sellerCols).AddRow(int64(1), int64(2), "PENDING", 0.0, 0))
	got, err := repo.CreateSeller(context.Background(), &models.SellerProfile{UserID: 2, VerificationStatus: models.VerificationPending})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, got.VerificationStatus)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*user_id,\s*verification_status,\s*rating,\s*total_listings\s+FROM\s+seller_profiles\s+WHERE\s+user_id\s*=\s*\$1$`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(sellerCols).AddRow(int64(1), int64(2), "VERIFIED", 4.5, 3))
	got, err = repo.GetSeller(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, got.VerificationStatus)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 3, got.TotalListings)

	rating := 4.8
	mock.ExpectQuery(`(?s)^UPDATE\s+seller_profiles\s+SET`).
		WithArgs(int64(2), nil, 4.8, nil).
		WillReturnRows(sqlmock.NewRows(sellerCols).AddRow(int64(1), int64(2), "VERIFIED", 4.8, 3))
	got, err = repo.UpdateSeller(context.Background(), 2, models.SellerProfilePatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4.8, got.Rating)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+seller_profiles`).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetSeller(context.Background(), 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
