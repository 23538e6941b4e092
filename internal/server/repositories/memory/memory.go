// Package memory is an in-memory RepositoryManager for service and HTTP
// tests. It ignores the DBTX it is handed; all repositories share one
// store guarded by a mutex, and status transitions are compare-and-set
// like their SQL counterparts.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/properties"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/users"
)

type store struct {
	mu sync.Mutex

	nextID int64

	users        map[int64]models.User
	buyers       map[int64]models.BuyerProfile
	sellers      map[int64]models.SellerProfile
	properties   map[int64]models.Property
	transactions map[int64]models.Transaction
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

type RepositoryManager struct {
	s *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{s: &store{
		users:        map[int64]models.User{},
		buyers:       map[int64]models.BuyerProfile{},
		sellers:      map[int64]models.SellerProfile{},
		properties:   map[int64]models.Property{},
		transactions: map[int64]models.Transaction{},
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository               { return (*userRepo)(m.s) }
func (m *RepositoryManager) Profiles(dbx.DBTX) profiles.Repository         { return (*profileRepo)(m.s) }
func (m *RepositoryManager) Properties(dbx.DBTX) properties.Repository     { return (*propertyRepo)(m.s) }
func (m *RepositoryManager) Transactions(dbx.DBTX) transactions.Repository { return (*transactionRepo)(m.s) }

// --- users ---

type userRepo store

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.users {
		if v.Email == u.Email {
			return nil, fmt.Errorf("%w: users_email_key", common.ErrorConflict)
		}
		if v.WalletAddress == u.WalletAddress {
			return nil, fmt.Errorf("%w: users_wallet_address_key", common.ErrorConflict)
		}
	}
	out := *u
	out.ID = s.id()
	out.CreatedAt = time.Now()
	s.users[out.ID] = out
	return &out, nil
}

func (r *userRepo) find(match func(models.User) bool) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.users {
		if match(v) {
			return &v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) GetByWallet(_ context.Context, wallet string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.WalletAddress == wallet })
}

// --- profiles ---

type profileRepo store

func (r *profileRepo) GetBuyer(_ context.Context, userID int64) (*models.BuyerProfile, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.buyers[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *profileRepo) CreateBuyer(_ context.Context, p *models.BuyerProfile) (*models.BuyerProfile, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buyers[p.UserID]; ok {
		return nil, fmt.Errorf("%w: buyer_profiles_user_id_key", common.ErrorConflict)
	}
	out := *p
	out.ID = s.id()
	s.buyers[p.UserID] = out
	return &out, nil
}

func (r *profileRepo) UpdateBuyer(_ context.Context, userID int64, patch models.BuyerProfilePatch) (*models.BuyerProfile, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.buyers[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.PreferredLocation != nil {
		p.PreferredLocation = patch.PreferredLocation
	}
	if patch.MaxBudget != nil {
		p.MaxBudget = patch.MaxBudget
	}
	s.buyers[userID] = p
	return &p, nil
}

func (r *profileRepo) GetSeller(_ context.Context, userID int64) (*models.SellerProfile, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.sellers[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *profileRepo) CreateSeller(_ context.Context, p *models.SellerProfile) (*models.SellerProfile, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sellers[p.UserID]; ok {
		return nil, fmt.Errorf("%w: seller_profiles_user_id_key", common.ErrorConflict)
	}
	out := *p
	out.ID = s.id()
	s.sellers[p.UserID] = out
	return &out, nil
}

func (r *profileRepo) UpdateSeller(_ context.Context, userID int64, patch models.SellerProfilePatch) (*models.SellerProfile, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.sellers[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.VerificationStatus != nil {
		p.VerificationStatus = *patch.VerificationStatus
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.TotalListings != nil {
		p.TotalListings = *patch.TotalListings
	}
	s.sellers[userID] = p
	return &p, nil
}

// --- properties ---

type propertyRepo store

func clonePhotos(p models.Property) models.Property {
	p.Photos = append(models.PhotoList{}, p.Photos...)
	return p
}

func (r *propertyRepo) Create(_ context.Context, p *models.Property) (*models.Property, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := clonePhotos(*p)
	out.ID = s.id()
	out.LastUpdated = time.Now()
	s.properties[out.ID] = out
	out = clonePhotos(out)
	return &out, nil
}

func (r *propertyRepo) GetByID(_ context.Context, id int64) (*models.Property, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p = clonePhotos(p)
	return &p, nil
}

func (r *propertyRepo) filter(page models.Page, match func(models.Property) bool) []*models.Property {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.properties))
	for id, p := range s.properties {
		if match(p) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*models.Property{}
	for i, id := range ids {
		if i < page.Skip || len(out) >= page.Limit {
			continue
		}
		p := clonePhotos(s.properties[id])
		out = append(out, &p)
	}
	return out
}

func (r *propertyRepo) List(_ context.Context, page models.Page) ([]*models.Property, error) {
	return r.filter(page, func(models.Property) bool { return true }), nil
}

func (r *propertyRepo) ListByOwner(_ context.Context, ownerID int64, page models.Page) ([]*models.Property, error) {
	return r.filter(page, func(p models.Property) bool { return p.OwnerID == ownerID }), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *propertyRepo) Search(_ context.Context, f models.SearchFilter, page models.Page) ([]*models.Property, error) {
	return r.filter(page, func(p models.Property) bool {
		switch {
		case f.Query != "" && !containsFold(p.Title, f.Query) && !containsFold(p.Description, f.Query):
			return false
		case f.MinPrice != nil && p.Price.LessThan(*f.MinPrice):
			return false
		case f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice):
			return false
		case f.Bedrooms != nil && p.Bedrooms != *f.Bedrooms:
			return false
		case f.Location != "" && !containsFold(p.Location, f.Location):
			return false
		case f.Currency != nil && p.Currency != *f.Currency:
			return false
		}
		return true
	}), nil
}

func (r *propertyRepo) update(id int64, fn func(p *models.Property) error) (*models.Property, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p = clonePhotos(p)
	if err := fn(&p); err != nil {
		return nil, err
	}
	p.LastUpdated = time.Now()
	s.properties[id] = p
	p = clonePhotos(p)
	return &p, nil
}

func (r *propertyRepo) Update(_ context.Context, id int64, patch models.PropertyPatch) (*models.Property, error) {
	return r.update(id, func(p *models.Property) error {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Currency != nil {
			p.Currency = *patch.Currency
		}
		if patch.Location != nil {
			p.Location = *patch.Location
		}
		if patch.Bedrooms != nil {
			p.Bedrooms = *patch.Bedrooms
		}
		if patch.Bathrooms != nil {
			p.Bathrooms = *patch.Bathrooms
		}
		if patch.Area != nil {
			p.Area = *patch.Area
		}
		if patch.PaymentAddress != nil {
			p.PaymentAddress = patch.PaymentAddress
		}
		return nil
	})
}

func (r *propertyRepo) AppendPhotos(_ context.Context, id int64, urls []string, maxTotal int) (*models.Property, error) {
	return r.update(id, func(p *models.Property) error {
		if len(p.Photos)+len(urls) > maxTotal {
			return fmt.Errorf("%w: a property can have at most %d photos", common.ErrorInvalidInput, maxTotal)
		}
		p.Photos = append(p.Photos, urls...)
		if p.MainPhoto == nil && len(urls) > 0 {
			first := urls[0]
			p.MainPhoto = &first
		}
		return nil
	})
}

func (r *propertyRepo) SetMainPhoto(_ context.Context, id int64, url string) (*models.Property, error) {
	return r.update(id, func(p *models.Property) error {
		if !p.Photos.Contains(url) {
			return fmt.Errorf("%w: main photo must be one of the property photos", common.ErrorInvalidInput)
		}
		p.MainPhoto = &url
		return nil
	})
}

func (r *propertyRepo) TransitionPaymentStatus(_ context.Context, id int64, from, to models.PaymentStatus) error {
	_, err := r.update(id, func(p *models.Property) error {
		if p.PaymentStatus != from {
			return fmt.Errorf("%w: property %d is not %s", common.ErrorInvalidState, id, from)
		}
		p.PaymentStatus = to
		return nil
	})
	return err
}

// --- transactions ---

type transactionRepo store

func (r *transactionRepo) Create(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *t
	out.ID = s.id()
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	s.transactions[out.ID] = out
	return &out, nil
}

func (r *transactionRepo) GetByID(_ context.Context, id int64) (*models.Transaction, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *transactionRepo) list(match func(models.Transaction) bool) []*models.Transaction {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Transaction{}
	for _, t := range s.transactions {
		if match(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *transactionRepo) ListByBuyer(_ context.Context, buyerID int64) ([]*models.Transaction, error) {
	return r.list(func(t models.Transaction) bool { return t.BuyerID == buyerID }), nil
}

func (r *transactionRepo) ListByProperty(_ context.Context, propertyID int64) ([]*models.Transaction, error) {
	return r.list(func(t models.Transaction) bool { return t.PropertyID == propertyID }), nil
}

func (r *transactionRepo) UpdateStatus(_ context.Context, id int64, from, to models.TransactionStatus, hash *string) (*models.Transaction, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.Status != from {
		return nil, fmt.Errorf("%w: transaction %d is not %s", common.ErrorInvalidState, id, from)
	}
	t.Status = to
	if hash != nil {
		t.TransactionHash = hash
	}
	t.UpdatedAt = time.Now()
	s.transactions[id] = t
	return &t, nil
}
