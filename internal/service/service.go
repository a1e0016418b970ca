// Package service exposes the back-office over HTTP/JSON: client
// roster, per-client trader inventory, the expense ledger, tax
// figures, spreadsheet import and document ingestion.
package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/extraction"
	"github.com/atomtax/backoffice/internal/numbering"
	"github.com/atomtax/backoffice/internal/store"
	"github.com/atomtax/backoffice/internal/tax"
)

// Service binds the engines to the HTTP surface. All state lives in
// the store; handlers are stateless and safe for concurrent use.
type Service struct {
	store     store.Store
	extractor *extraction.Extractor
	archive   DocumentArchive
	log       *zap.SugaredLogger
}

func New(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{
		store:     st,
		extractor: extraction.New(log),
		log:       log,
	}
}

// SetDocumentArchive enables persistence of uploaded document
// originals. Without an archive, uploads are extracted and discarded.
func (s *Service) SetDocumentArchive(a DocumentArchive) {
	s.archive = a
}

// Routes mounts every endpoint on a fresh chi router. Auth and CORS
// wrap this router in the server binary.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/clients", s.handleListClients)
		r.Post("/clients", s.handleCreateClient)
		r.Get("/clients/{clientID}", s.handleGetClient)
		r.Put("/clients/{clientID}", s.handleUpdateClient)
		r.Delete("/clients/{clientID}", s.handleDeleteClient)

		r.Get("/clients/{clientID}/inventory", s.handleListInventory)
		r.Post("/clients/{clientID}/inventory", s.handleAddInventoryItem)
		r.Post("/clients/{clientID}/inventory/import", s.handleImportInventory)

		r.Get("/inventory/template", s.handleTemplate)
		r.Get("/inventory/{itemID}", s.handleGetInventoryItem)
		r.Patch("/inventory/{itemID}", s.handlePatchInventoryItem)
		r.Delete("/inventory/{itemID}", s.handleDeleteInventoryItem)
		r.Put("/inventory/{itemID}/expenses", s.handleSaveExpenses)
		r.Post("/inventory/{itemID}/tax", s.handleComputeTax)
		r.Post("/inventory/{itemID}/documents", s.handleUploadDocuments)
	})

	return r
}

// requestLogger logs one structured line per request.
func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Errorw("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto status codes: duplicate client
// number → 409, rejected input → 422, missing record → 404, anything
// else → 500 with the store's message intact.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, numbering.ErrDuplicateNumber):
		status = http.StatusConflict
	case errors.Is(err, dateutil.ErrInvalidDate),
		errors.Is(err, tax.ErrNonPositiveIncome):
		status = http.StatusUnprocessableEntity
	case store.IsNotFound(err):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		s.log.Errorw("request failed", "error", err)
	}
	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Service) badRequest(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Service) unprocessable(w http.ResponseWriter, err error) {
	s.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
}
