package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

func (s *HTTPServer) createBuyerProfile(w http.ResponseWriter, r *http.Request) {
	var in models.BuyerProfilePatch
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.profiles.CreateBuyerProfile(r.Context(), currentUser(r.Context()), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "buyer profile created", p)
}

func (s *HTTPServer) getBuyerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.GetBuyerProfile(r.Context(), currentUser(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", p)
}

func (s *HTTPServer) updateBuyerProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.BuyerProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.profiles.UpdateBuyerProfile(r.Context(), currentUser(r.Context()), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "buyer profile updated", p)
}

func (s *HTTPServer) createSellerProfile(w http.ResponseWriter, r *http.Request) {
	var in models.SellerProfilePatch
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.profiles.CreateSellerProfile(r.Context(), currentUser(r.Context()), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "seller profile created", p)
}

func (s *HTTPServer) getSellerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.GetSellerProfile(r.Context(), currentUser(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", p)
}

func (s *HTTPServer) updateSellerProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.SellerProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.profiles.UpdateSellerProfile(r.Context(), currentUser(r.Context()), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "seller profile updated", p)
}
