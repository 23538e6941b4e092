package properties

import (
	"context"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Property) (*models.Property, error)
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	List(ctx context.Context, page models.Page) ([]*models.Property, error)
	ListByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Property, error)
	Search(ctx context.Context, filter models.SearchFilter, page models.Page) ([]*models.Property, error)
	Update(ctx context.Context, id int64, patch models.PropertyPatch) (*models.Property, error)
	AppendPhotos(ctx context.Context, id int64, urls []string, maxTotal int) (*models.Property, error)
	SetMainPhoto(ctx context.Context, id int64, url string) (*models.Property, error)
	TransitionPaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) error
}
