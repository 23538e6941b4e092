package profiles

import (
	"context"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

type Repository interface {
	GetBuyer(ctx context.Context, userID int64) (*models.BuyerProfile, error)
	CreateBuyer(ctx context.Context, p *models.BuyerProfile) (*models.BuyerProfile, error)
	UpdateBuyer(ctx context.Context, userID int64, patch models.BuyerProfilePatch) (*models.BuyerProfile, error)

	GetSeller(ctx context.Context, userID int64) (*models.SellerProfile, error)
	CreateSeller(ctx context.Context, p *models.SellerProfile) (*models.SellerProfile, error)
	UpdateSeller(ctx context.Context, userID int64, patch models.SellerProfilePatch) (*models.SellerProfile, error)
}
