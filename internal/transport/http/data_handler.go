package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "finpulse/internal/errors"
	"finpulse/internal/ingest"
	"finpulse/internal/services"
)

// DataReader is the slice of the data service the handler consumes.
type DataReader interface {
	Overview(ctx context.Context) (*services.Overview, error)
	Metric(ctx context.Context, metric string) (*services.MetricDetail, error)
	Ownership(ctx context.Context, year int) (*services.OwnershipView, error)
	Concentration(ctx context.Context, year int, thresholds []int) (*services.OwnershipView, error)
	Industries(ctx context.Context, year int) (int, []ingest.IndustrySegment, error)
}

// DataHandler serves the dashboard read models.
type DataHandler struct {
	service      DataReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a data handler.
func NewDataHandler(service DataReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/metrics/{metric}", h.GetMetric)
	r.Get("/shareholders", h.GetShareholders)
	r.Get("/concentration", h.GetConcentration)
	r.Get("/industries", h.GetIndustries)

	return r
}

// GetOverview handles GET /api/overview.
func (h *DataHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, overview)
}

// GetMetric handles GET /api/metrics/{metric}.
func (h *DataHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")
	if metric == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", "Metric identifier is required"))
		return
	}

	detail, err := h.service.Metric(r.Context(), metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, detail)
}

// GetShareholders handles GET /api/shareholders?year=YYYY.
func (h *DataHandler) GetShareholders(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	view, err := h.service.Ownership(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetConcentration handles GET /api/concentration?year=YYYY&thresholds=1,5,10.
func (h *DataHandler) GetConcentration(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	var thresholds []int
	if raw := r.URL.Query().Get("thresholds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			k, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || k < 1 {
				h.errorHandler.HandleError(w, r, apierrors.ErrValidation("thresholds", "Thresholds must be positive integers"))
				return
			}
			thresholds = append(thresholds, k)
		}
	}

	view, err := h.service.Concentration(r.Context(), year, thresholds)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetIndustries handles GET /api/industries?year=YYYY.
func (h *DataHandler) GetIndustries(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	served, segments, err := h.service.Industries(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"year":       served,
		"industries": segments,
	})
}

// yearParam parses the optional year query parameter; zero means "latest".
func (h *DataHandler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "Year must be a non-negative integer"))
		return 0, false
	}
	return year, true
}
