// Package httpapi exposes the estate services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/logging"
	"github.com/dmitrijs2005/cryptoestate/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type Services struct {
	Users        *services.UserService
	Listings     *services.ListingService
	Transactions *services.TransactionService
	Profiles     *services.ProfileService
}

type Options struct {
	Address        string
	AllowedOrigins []string

	// UploadDir is served under UploadBaseURL when the base URL is a local
	// path. Leave empty when photos live in object storage.
	UploadDir     string
	UploadBaseURL string
}

type HTTPServer struct {
	address string
	opts    Options
	logger  logging.Logger

	users        *services.UserService
	listings     *services.ListingService
	transactions *services.TransactionService
	profiles     *services.ProfileService

	registry *prometheus.Registry
	metrics  *httpMetrics
}

func NewHTTPServer(l logging.Logger, svc Services, opts Options) *HTTPServer {
	reg := prometheus.NewRegistry()
	return &HTTPServer{
		address:      opts.Address,
		opts:         opts,
		logger:       l.With("module", "http_server"),
		users:        svc.Users,
		listings:     svc.Listings,
		transactions: svc.Transactions,
		profiles:     svc.Profiles,
		registry:     reg,
		metrics:      newHTTPMetrics(reg),
	}
}

// Router builds the full route tree.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	if s.opts.UploadDir != "" && strings.HasPrefix(s.opts.UploadBaseURL, "/") {
		prefix := strings.TrimSuffix(s.opts.UploadBaseURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(s.opts.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/token", s.token)

		r.Get("/properties", s.listProperties)
		r.Get("/properties/search", s.searchProperties)
		r.Get("/properties/{id}", s.getProperty)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/users/me", s.me)

			r.Post("/properties", s.createProperty)
			r.Get("/properties/mine", s.myProperties)
			r.Patch("/properties/{id}", s.updateProperty)
			r.Post("/properties/{id}/photos", s.uploadPhotos)
			r.Put("/properties/{id}/main-photo", s.setMainPhoto)

			r.Post("/transactions", s.initiateTransaction)
			r.Get("/transactions/user", s.userTransactions)
			r.Get("/transactions/property/{id}", s.propertyTransactions)

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/buyer", s.createBuyerProfile)
				r.Get("/buyer", s.getBuyerProfile)
				r.Patch("/buyer", s.updateBuyerProfile)
				r.Post("/seller", s.createSellerProfile)
				r.Get("/seller", s.getSellerProfile)
				r.Patch("/seller", s.updateSellerProfile)
			})
		})
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "ok", nil)
}
