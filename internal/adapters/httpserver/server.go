package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/adapters/export/xlsx"
	"github.com/phenrril/catalogseed/internal/domain"
	"github.com/phenrril/catalogseed/internal/usecase"
)

const maxBodyBytes = 64 << 10

type Seeder interface {
	Seed(ctx context.Context, req usecase.SeedRequest) (*usecase.SeedReport, error)
	GeneratePropertyGroups(ctx context.Context, category string, groupCount int) []domain.PropertyGroup
}

type Server struct {
	mux            *http.ServeMux
	seeder         Seeder
	requestTimeout time.Duration
	validate       *validator.Validate
}

func New(seeder Seeder, requestTimeout time.Duration) http.Handler {
	s := &Server{
		mux:            http.NewServeMux(),
		seeder:         seeder,
		requestTimeout: requestTimeout,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
	s.routes()
	return Chain(s.mux,
		Recovery,
		RequestID,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/generate", s.apiGenerate)
	s.mux.HandleFunc("/api/property-groups", s.apiPropertyGroups)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateRequest struct {
	domain.GenerateOptions
	PropertyGroupCount int  `json:"propertyGroupCount" validate:"gte=0,lte=5"`
	Upload             bool `json:"upload"`
}

// apiGenerate runs a seeding job. With ?format=xlsx the products come back
// as a spreadsheet instead of JSON.
func (s *Server) apiGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	report, err := s.seeder.Seed(ctx, usecase.SeedRequest{
		GenerateOptions:    req.GenerateOptions,
		PropertyGroupCount: req.PropertyGroupCount,
		Upload:             req.Upload,
	})
	switch {
	case errors.Is(err, domain.ErrNoProducts):
		writeError(w, http.StatusBadGateway, "no products generated")
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "generation timed out")
		return
	case err != nil && report == nil:
		log.Error().Err(err).Str("category", req.Category).Msg("seed failed")
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	case err != nil:
		// Generation worked but the upload did not; the caller still gets the
		// products.
		log.Error().Err(err).Str("category", req.Category).Msg("upload failed")
		w.Header().Set("X-Upload-Error", err.Error())
	}

	// export a planilla si lo piden por query
	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
		if err := xlsx.Export(w, report.Category, report.Products); err != nil {
			log.Error().Err(err).Msg("xlsx export")
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) apiPropertyGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Category string `json:"category" validate:"required"`
		Count    int    `json:"count" validate:"gte=0,lte=5"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	groups := s.seeder.GeneratePropertyGroups(ctx, req.Category, req.Count)
	if groups == nil {
		groups = []domain.PropertyGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"propertyGroups": groups})
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
