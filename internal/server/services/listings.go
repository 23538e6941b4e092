package services

import (
	"context"
	"database/sql"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/policy"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cryptoestate/internal/server/storage"
	"github.com/dmitrijs2005/cryptoestate/internal/server/validation"
)

// MaxPhotoSize is the largest accepted photo, in bytes.
const MaxPhotoSize = 5 << 20

var allowedPhotoExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ListingService owns properties: creation, queries, edits and photos.
// It never changes a property's payment status.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.FileStorage
}

func NewListingService(db *sql.DB, m repomanager.RepositoryManager, fs storage.FileStorage) *ListingService {
	return &ListingService{db: db, repomanager: m, storage: fs}
}

func (s *ListingService) Create(ctx context.Context, seller *models.User, in models.PropertyInput) (*models.Property, error) {
	if err := policy.CanCreateProperty(seller); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Properties(s.db).Create(ctx, &models.Property{
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
		Currency:       in.Currency,
		Location:       in.Location,
		Bedrooms:       in.Bedrooms,
		Bathrooms:      in.Bathrooms,
		Area:           in.Area,
		OwnerID:        seller.ID,
		Photos:         models.PhotoList{},
		PaymentStatus:  models.PaymentAvailable,
		PaymentAddress: in.PaymentAddress,
	})
	if err != nil {
		return nil, domainError(err)
	}
	return p, nil
}

func (s *ListingService) Get(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.repomanager.Properties(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, domainError(err)
	}
	return p, nil
}

// List returns properties in insertion order.
func (s *ListingService) List(ctx context.Context, page models.Page) ([]*models.Property, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	items, err := s.repomanager.Properties(s.db).List(ctx, page)
	return items, domainError(err)
}

func (s *ListingService) ListForOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Property, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	items, err := s.repomanager.Properties(s.db).ListByOwner(ctx, ownerID, page)
	return items, domainError(err)
}

// Search applies every present filter (AND).
func (s *ListingService) Search(ctx context.Context, filter models.SearchFilter, page models.Page) ([]*models.Property, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Location = strings.TrimSpace(filter.Location)

	items, err := s.repomanager.Properties(s.db).Search(ctx, filter, page)
	return items, domainError(err)
}

// Update edits the listing's descriptive fields. Only the owner may edit.
func (s *ListingService) Update(ctx context.Context, user *models.User, id int64, patch models.PropertyPatch) (*models.Property, error) {
	p, err := s.ownedProperty(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return p, nil
	}

	updated, err := s.repomanager.Properties(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, domainError(err)
	}
	return updated, nil
}

// AttachPhotos stores the uploads and appends their URLs to the listing.
// Each file must be a jpg, jpeg, png or webp of at most MaxPhotoSize, and a
// listing holds at most models.MaxPhotos photos in total. When the listing
// has no main photo yet, the first new photo becomes the main one.
func (s *ListingService) AttachPhotos(ctx context.Context, user *models.User, id int64, uploads []models.PhotoUpload) (*models.Property, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", common.ErrorInvalidInput)
	}

	p, err := s.ownedProperty(ctx, user, id)
	if err != nil {
		return nil, err
	}

	exts := make([]string, len(uploads))
	for i, u := range uploads {
		ext := strings.ToLower(filepath.Ext(u.Filename))
		if _, ok := allowedPhotoExtensions[ext]; !ok {
			return nil, fmt.Errorf("%w: %q is not an allowed image type", common.ErrorInvalidInput, u.Filename)
		}
		if len(u.Data) > MaxPhotoSize {
			return nil, fmt.Errorf("%w: %q is larger than 5 MiB", common.ErrorInvalidInput, u.Filename)
		}
		exts[i] = ext
	}
	if len(p.Photos)+len(uploads) > models.MaxPhotos {
		return nil, fmt.Errorf("%w: a property can have at most %d photos", common.ErrorInvalidInput, models.MaxPhotos)
	}

	keys := make([]string, 0, len(uploads))
	urls := make([]string, 0, len(uploads))
	for i, u := range uploads {
		contentType := u.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(exts[i])
		}
		key := storage.PhotoKey(p.ID, exts[i])
		url, err := s.storage.Save(ctx, key, u.Data, contentType)
		if err != nil {
			s.discardPhotos(ctx, keys)
			return nil, fmt.Errorf("%w: saving photo: %v", common.ErrorInternal, err)
		}
		keys = append(keys, key)
		urls = append(urls, url)
	}

	// the cap is checked again here; a concurrent upload may have used it up
	updated, err := s.repomanager.Properties(s.db).AppendPhotos(ctx, id, urls, models.MaxPhotos)
	if err != nil {
		s.discardPhotos(ctx, keys)
		return nil, domainError(err)
	}
	return updated, nil
}

// discardPhotos removes stored objects that never made it onto a listing.
func (s *ListingService) discardPhotos(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, k := range keys {
		_ = s.storage.Delete(ctx, k)
	}
}

// SetMainPhoto selects one of the listing's existing photos as main.
func (s *ListingService) SetMainPhoto(ctx context.Context, user *models.User, id int64, url string) (*models.Property, error) {
	p, err := s.ownedProperty(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !p.Photos.Contains(url) {
		return nil, fmt.Errorf("%w: main photo must be one of the property photos", common.ErrorInvalidInput)
	}

	updated, err := s.repomanager.Properties(s.db).SetMainPhoto(ctx, id, url)
	if err != nil {
		return nil, domainError(err)
	}
	return updated, nil
}

func (s *ListingService) ownedProperty(ctx context.Context, user *models.User, id int64) (*models.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutateProperty(user, p); err != nil {
		return nil, err
	}
	return p, nil
}
