package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/dmitrijs2005/cryptoestate/internal/server/services"
)

const (
	photosField = "files"

	// one request may carry a full set of photos plus form overhead
	maxUploadBody = models.MaxPhotos*services.MaxPhotoSize + 1<<20
)

func (s *HTTPServer) createProperty(w http.ResponseWriter, r *http.Request) {
	var in models.PropertyInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	user := currentUser(r.Context())
	p, err := s.listings.Create(r.Context(), user, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Property listed", "property_id", p.ID, "owner_id", user.ID)
	respond(w, http.StatusCreated, "property created", p)
}

func (s *HTTPServer) listProperties(w http.ResponseWriter, r *http.Request) {
	qp := &queryParser{q: r.URL.Query()}
	page := qp.page()
	if qp.err != nil {
		s.respondError(w, r, qp.err)
		return
	}

	items, err := s.listings.List(r.Context(), page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", items)
}

func (s *HTTPServer) myProperties(w http.ResponseWriter, r *http.Request) {
	qp := &queryParser{q: r.URL.Query()}
	page := qp.page()
	if qp.err != nil {
		s.respondError(w, r, qp.err)
		return
	}

	items, err := s.listings.ListForOwner(r.Context(), currentUser(r.Context()).ID, page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", items)
}

func (s *HTTPServer) searchProperties(w http.ResponseWriter, r *http.Request) {
	qp := &queryParser{q: r.URL.Query()}
	filter := models.SearchFilter{
		Query:    qp.q.Get("query"),
		MinPrice: qp.decimal("min_price"),
		MaxPrice: qp.decimal("max_price"),
		Bedrooms: qp.int("bedrooms"),
		Location: qp.q.Get("location"),
		Currency: qp.currency("currency"),
	}
	page := qp.page()
	if qp.err != nil {
		s.respondError(w, r, qp.err)
		return
	}

	items, err := s.listings.Search(r.Context(), filter, page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", items)
}

func (s *HTTPServer) getProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.listings.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", p)
}

func (s *HTTPServer) updateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var patch models.PropertyPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.listings.Update(r.Context(), currentUser(r.Context()), id, patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "property updated", p)
}

func (s *HTTPServer) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: bad multipart form: %v", common.ErrorInvalidInput, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads, err := readUploads(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.listings.AttachPhotos(r.Context(), currentUser(r.Context()), id, uploads)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Photos attached", "property_id", id, "count", len(uploads))
	respond(w, http.StatusOK, "photos uploaded", p)
}

// readUploads reads at most one byte past the photo size limit per file so
// the listing service can reject oversized files.
func readUploads(r *http.Request) ([]models.PhotoUpload, error) {
	headers := r.MultipartForm.File[photosField]
	uploads := make([]models.PhotoUpload, 0, len(headers))

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %q: %v", common.ErrorInvalidInput, fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, services.MaxPhotoSize+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %q: %v", common.ErrorInvalidInput, fh.Filename, err)
		}
		uploads = append(uploads, models.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

type mainPhotoRequest struct {
	URL string `json:"url"`
}

func (s *HTTPServer) setMainPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req mainPhotoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.listings.SetMainPhoto(r.Context(), currentUser(r.Context()), id, req.URL)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "main photo set", p)
}
