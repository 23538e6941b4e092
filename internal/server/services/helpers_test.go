package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/config"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rm           *memory.RepositoryManager
	users        *UserService
	listings     *ListingService
	transactions *TransactionService
	profiles     *ProfileService
	files        *fakeStorage
}

// direct runs the unit of work without a database; the memory repositories
// ignore the handle they get.
func direct(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rm := memory.NewRepositoryManager()
	cfg := &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}
	fs := &fakeStorage{}

	tx := NewTransactionService(nil, rm)
	tx.inTx = direct

	return &fixture{
		rm:           rm,
		users:        NewUserService(nil, rm, cfg, nil),
		listings:     NewListingService(nil, rm, fs),
		transactions: tx,
		profiles:     NewProfileService(nil, rm),
		files:        fs,
	}
}

func (f *fixture) register(t *testing.T, email, wallet string, c models.Capability) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), models.RegisterInput{
		Email:         email,
		WalletAddress: wallet,
		FullName:      strings.Split(email, "@")[0],
		Password:      "longpass1",
		Capability:    c,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) listing(t *testing.T, seller *models.User) *models.Property {
	t.Helper()
	p, err := f.listings.Create(context.Background(), seller, models.PropertyInput{
		Title:       "Seaside villa",
		Description: "Four rooms and a view",
		Price:       decimal.RequireFromString("2.5"),
		Currency:    models.CurrencyETH,
		Location:    "Lisbon",
		Bedrooms:    4,
		Bathrooms:   2,
		Area:        decimal.RequireFromString("180.5"),
	})
	require.NoError(t, err)
	return p
}

type fakeStorage struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	err     error
	// onSave runs before each save; a non-nil result fails that save.
	onSave func(n int) error
}

func (s *fakeStorage) Save(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.onSave != nil {
		if err := s.onSave(len(s.keys)); err != nil {
			return "", err
		}
	}
	s.keys = append(s.keys, key)
	return "/uploads/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}
