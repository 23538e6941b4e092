package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/dbx"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/policy"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cryptoestate/internal/server/validation"
)

// TransactionService drives the purchase lifecycle and the property
// payment status coupled to it.
//
//	property:    AVAILABLE -> PENDING -> COMPLETED
//	transaction: INITIATED -> PENDING -> CONFIRMED | FAILED
//
// A failed transaction leaves the property PENDING; re-listing is an
// operator decision.
type TransactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	// inTx runs fn as one unit of work.
	inTx func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
}

func NewTransactionService(db *sql.DB, m repomanager.RepositoryManager) *TransactionService {
	s := &TransactionService{db: db, repomanager: m}
	s.inTx = func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithTx(ctx, s.db, nil, fn)
	}
	return s
}

// Initiate records the buyer's intent to purchase and marks the property
// PENDING in the same transaction. Of two concurrent callers for one
// AVAILABLE property exactly one succeeds; the other gets ErrorInvalidState.
func (s *TransactionService) Initiate(ctx context.Context, buyer *models.User, in models.InitiateInput) (*models.Transaction, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var out *models.Transaction
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		props := s.repomanager.Properties(tx)

		p, err := props.GetByID(ctx, in.PropertyID)
		if err != nil {
			return err
		}
		if p.PaymentStatus != models.PaymentAvailable {
			return fmt.Errorf("%w: property %d is %s", common.ErrorInvalidState, p.ID, p.PaymentStatus)
		}

		if err := props.TransitionPaymentStatus(ctx, p.ID, models.PaymentAvailable, models.PaymentPending); err != nil {
			return err
		}

		out, err = s.repomanager.Transactions(tx).Create(ctx, &models.Transaction{
			PropertyID: p.ID,
			BuyerID:    buyer.ID,
			Amount:     in.Amount,
			Currency:   in.Currency,
			Status:     models.TransactionInitiated,
		})
		return err
	})
	if err != nil {
		return nil, domainError(err)
	}
	return out, nil
}

// ListForBuyer returns the buyer's transactions oldest first.
func (s *TransactionService) ListForBuyer(ctx context.Context, buyer *models.User) ([]*models.Transaction, error) {
	items, err := s.repomanager.Transactions(s.db).ListByBuyer(ctx, buyer.ID)
	return items, domainError(err)
}

// ListForProperty returns every transaction against a property. Only the
// property owner may see them.
func (s *TransactionService) ListForProperty(ctx context.Context, requester *models.User, propertyID int64) ([]*models.Transaction, error) {
	p, err := s.repomanager.Properties(s.db).GetByID(ctx, propertyID)
	if err != nil {
		return nil, domainError(err)
	}
	if err := policy.CanViewPropertyTransactions(requester, p); err != nil {
		return nil, err
	}

	items, err := s.repomanager.Transactions(s.db).ListByProperty(ctx, propertyID)
	return items, domainError(err)
}

// ApplySettlement is the entry point for the external settlement process.
// It advances a transaction one step and, on CONFIRMED, completes the
// property in the same database transaction.
func (s *TransactionService) ApplySettlement(ctx context.Context, upd models.SettlementUpdate) (*models.Transaction, error) {
	if err := validation.Struct(upd); err != nil {
		return nil, err
	}

	var out *models.Transaction
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		txs := s.repomanager.Transactions(tx)

		cur, err := txs.GetByID(ctx, upd.TransactionID)
		if err != nil {
			return err
		}
		if !cur.Status.CanMoveTo(upd.Status) {
			return fmt.Errorf("%w: transaction %d cannot move from %s to %s", common.ErrorInvalidState, cur.ID, cur.Status, upd.Status)
		}

		out, err = txs.UpdateStatus(ctx, cur.ID, cur.Status, upd.Status, upd.Hash)
		if err != nil {
			return err
		}

		if upd.Status == models.TransactionConfirmed {
			return s.repomanager.Properties(tx).TransitionPaymentStatus(ctx, out.PropertyID, models.PaymentPending, models.PaymentCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, domainError(err)
	}
	return out, nil
}
