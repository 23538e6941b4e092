package transactions

import (
	"context"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]*models.Transaction, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]*models.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.TransactionStatus, hash *string) (*models.Transaction, error)
}
