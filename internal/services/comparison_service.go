package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"finpulse/internal/compare"
	apierrors "finpulse/internal/errors"
	"finpulse/internal/exporter"
)

// EventBroadcaster pushes comparison lifecycle events to dashboard clients.
// Satisfied by the websocket hub; nil-checked so tests can run without one.
type EventBroadcaster interface {
	ComparisonComplete(token uint64, kind string, failed int)
}

// ComparisonService validates comparison requests, runs them through the
// aggregator and announces settled results over the event channel.
type ComparisonService struct {
	aggregator *compare.Aggregator
	exporter   *exporter.CSVExporter
	broadcast  EventBroadcaster
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewComparisonService wires the comparison flow. broadcast may be nil.
func NewComparisonService(agg *compare.Aggregator, exp *exporter.CSVExporter, broadcast EventBroadcaster, logger *slog.Logger) *ComparisonService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComparisonService{
		aggregator: agg,
		exporter:   exp,
		broadcast:  broadcast,
		validate:   validator.New(),
		logger:     logger.With(slog.String("service", "comparison")),
	}
}

// Compare validates and runs one comparison. Per-entity failures surface in
// the result's Errors map; the returned error covers only invalid requests
// and cancellation.
func (s *ComparisonService) Compare(ctx context.Context, req compare.Request) (*compare.ComparisonResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apierrors.InvalidRequestWithError(err)
	}

	result, err := s.aggregator.Compare(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("run comparison: %w", err)
	}

	if s.broadcast != nil {
		s.broadcast.ComparisonComplete(result.Token, string(result.Kind), len(result.Errors))
	}
	return result, nil
}

// Export runs a comparison and streams it as CSV to w.
func (s *ComparisonService) Export(ctx context.Context, w io.Writer, req compare.Request) error {
	result, err := s.Compare(ctx, req)
	if err != nil {
		return err
	}
	if result.Empty() {
		return apierrors.ErrExportFailed
	}
	if err := s.exporter.WriteComparison(w, result); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// IsStale reports whether a result token has been superseded by a newer
// comparison request.
func (s *ComparisonService) IsStale(token uint64) bool {
	return s.aggregator.Tokens().IsStale(token)
}
