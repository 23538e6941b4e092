package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registration request", "email", in.Email)

	user, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", user.ID, "profile_type", user.Capability)
	respond(w, http.StatusCreated, "registered", user)
}

// token accepts either a JSON body or an OAuth2-style password form where
// the email goes in "username".
func (s *HTTPServer) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		req.Email = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "", tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "", currentUser(r.Context()))
}
