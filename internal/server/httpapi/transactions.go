package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

func (s *HTTPServer) initiateTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.InitiateInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	buyer := currentUser(r.Context())
	tx, err := s.transactions.Initiate(r.Context(), buyer, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Transaction initiated", "transaction_id", tx.ID, "property_id", tx.PropertyID, "buyer_id", buyer.ID)
	respond(w, http.StatusCreated, "transaction initiated", tx)
}

func (s *HTTPServer) userTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := s.transactions.ListForBuyer(r.Context(), currentUser(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", items)
}

func (s *HTTPServer) propertyTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items, err := s.transactions.ListForProperty(r.Context(), currentUser(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", items)
}
