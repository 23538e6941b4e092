package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/policy"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cryptoestate/internal/server/validation"
)

// ProfileService manages the buyer and seller profiles, one of each per
// user at most.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// exists turns a lookup result into a presence flag.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, domainError(err)
}

func (s *ProfileService) CreateBuyerProfile(ctx context.Context, user *models.User, in models.BuyerProfilePatch) (*models.BuyerProfile, error) {
	if err := policy.CanManageBuyerProfile(user); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Profiles(s.db)
	_, err := repo.GetBuyer(ctx, user.ID)
	found, err := exists(err)
	if err != nil {
		return nil, err
	}
	if err := policy.CanCreateProfile(found); err != nil {
		return nil, err
	}

	p, err := repo.CreateBuyer(ctx, &models.BuyerProfile{
		UserID:            user.ID,
		PreferredLocation: in.PreferredLocation,
		MaxBudget:         in.MaxBudget,
	})
	return p, domainError(err)
}

func (s *ProfileService) GetBuyerProfile(ctx context.Context, user *models.User) (*models.BuyerProfile, error) {
	if err := policy.CanManageBuyerProfile(user); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Profiles(s.db).GetBuyer(ctx, user.ID)
	return p, domainError(err)
}

// UpdateBuyerProfile overwrites only the fields present in patch.
func (s *ProfileService) UpdateBuyerProfile(ctx context.Context, user *models.User, patch models.BuyerProfilePatch) (*models.BuyerProfile, error) {
	if err := policy.CanManageBuyerProfile(user); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	repo := s.repomanager.Profiles(s.db)
	_, err := repo.GetBuyer(ctx, user.ID)
	found, err := exists(err)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdateProfile(found); err != nil {
		return nil, err
	}

	p, err := repo.UpdateBuyer(ctx, user.ID, patch)
	return p, domainError(err)
}

// CreateSellerProfile starts the profile as PENDING verification with no
// rating or listings unless the input says otherwise.
func (s *ProfileService) CreateSellerProfile(ctx context.Context, user *models.User, in models.SellerProfilePatch) (*models.SellerProfile, error) {
	if err := policy.CanManageSellerProfile(user); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Profiles(s.db)
	_, err := repo.GetSeller(ctx, user.ID)
	found, err := exists(err)
	if err != nil {
		return nil, err
	}
	if err := policy.CanCreateProfile(found); err != nil {
		return nil, err
	}

	profile := &models.SellerProfile{UserID: user.ID, VerificationStatus: models.VerificationPending}
	if in.VerificationStatus != nil {
		profile.VerificationStatus = *in.VerificationStatus
	}
	if in.Rating != nil {
		profile.Rating = *in.Rating
	}
	if in.TotalListings != nil {
		profile.TotalListings = *in.TotalListings
	}

	p, err := repo.CreateSeller(ctx, profile)
	return p, domainError(err)
}

func (s *ProfileService) GetSellerProfile(ctx context.Context, user *models.User) (*models.SellerProfile, error) {
	if err := policy.CanManageSellerProfile(user); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Profiles(s.db).GetSeller(ctx, user.ID)
	return p, domainError(err)
}

func (s *ProfileService) UpdateSellerProfile(ctx context.Context, user *models.User, patch models.SellerProfilePatch) (*models.SellerProfile, error) {
	if err := policy.CanManageSellerProfile(user); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	repo := s.repomanager.Profiles(s.db)
	_, err := repo.GetSeller(ctx, user.ID)
	found, err := exists(err)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdateProfile(found); err != nil {
		return nil, err
	}

	p, err := repo.UpdateSeller(ctx, user.ID, patch)
	return p, domainError(err)
}
