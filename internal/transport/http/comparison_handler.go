package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"finpulse/internal/compare"
	apierrors "finpulse/internal/errors"
)

// Comparer is the slice of the comparison service the handler consumes.
type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (*compare.ComparisonResult, error)
	Export(ctx context.Context, w io.Writer, req compare.Request) error
}

// ComparisonHandler serves the comparison engine.
type ComparisonHandler struct {
	service      Comparer
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewComparisonHandler creates a comparison handler.
func NewComparisonHandler(service Comparer, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ComparisonHandler {
	return &ComparisonHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "comparison_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the comparison routes.
func (h *ComparisonHandler) Routes() chi.Router {
	r := chi.NewRouter()

	jsonOut := render.SetContentType(render.ContentTypeJSON)
	r.With(jsonOut).Post("/", h.RunComparison)
	r.With(jsonOut).Get("/", h.RunComparison)
	r.Post("/export", h.ExportComparison)
	r.Get("/export", h.ExportComparison)

	return r
}

// decodeRequest accepts the comparison request as a JSON body (POST) or as
// query parameters (GET), so dashboard links and exports stay bookmarkable.
func decodeRequest(r *http.Request) (compare.Request, error) {
	if r.Method == http.MethodPost {
		var req compare.Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return compare.Request{}, err
		}
		return req, nil
	}

	q := r.URL.Query()
	req := compare.Request{
		Kind:                compare.Kind(q.Get("kind")),
		IDs:                 splitList(q.Get("ids")),
		IncludeCorrelations: q.Get("correlations") == "true",
		Filter: compare.FilterState{
			Currency:      q.Get("currency"),
			MultiYear:     q.Get("multiYear") == "true",
			ForecastYears: intParam(q.Get("forecastYears")),
		},
	}
	for _, y := range splitList(q.Get("years")) {
		year, err := strconv.Atoi(y)
		if err != nil {
			return compare.Request{}, fmt.Errorf("years: %q is not a year", y)
		}
		req.Filter.Years = append(req.Filter.Years, year)
	}
	return req, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// RunComparison handles GET/POST /api/comparison.
func (h *ComparisonHandler) RunComparison(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.Compare(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// A comparison where some or all entities failed is still a 200; the
	// payload carries the per-entity errors and the frontend renders what
	// settled.
	render.JSON(w, r, result)
}

// ExportComparison handles GET/POST /api/comparison/export, streaming the
// aligned table as a CSV download.
func (h *ComparisonHandler) ExportComparison(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=comparison_%s.csv", req.Kind))

	if err := h.service.Export(r.Context(), w, req); err != nil {
		// The service validates before streaming, so no CSV bytes have
		// been written when an error surfaces here.
		h.errorHandler.HandleError(w, r, err)
		return
	}
}
