package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"finpulse/internal/analytics"
	"finpulse/internal/series"
)

// Client talks to the forecast/data collaborator (the REST backend that
// owns the raw records and the server-side forecasting models). The engine
// does not define the wire format; this client tolerates the collaborator's
// shapes and converts them into the engine's types.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a collaborator client. The timeout is the collaborator
// boundary's own budget; the engine adds no further timeout layer beyond
// its retry policy.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "backend_client")),
	}
}

// yearValueDTO is the collaborator's {year, value} shape.
type yearValueDTO struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

func toYearValues(dtos []yearValueDTO) []series.YearValue {
	out := make([]series.YearValue, len(dtos))
	for i, d := range dtos {
		out[i] = series.YearValue{Year: d.Year, Value: d.Value}
	}
	return out
}

// ForecastResponse mirrors the collaborator's forecast payload. Confidence
// interval, accuracy and factors are optional.
type ForecastResponse struct {
	ActualData         []yearValueDTO `json:"actualData"`
	ForecastData       []yearValueDTO `json:"forecastData"`
	ConfidenceInterval *struct {
		Upper []yearValueDTO `json:"upper"`
		Lower []yearValueDTO `json:"lower"`
	} `json:"confidenceInterval"`
	Accuracy *float64 `json:"accuracy"`
	Factors  []string `json:"factors"`
}

// Historical fetches a metric's historical series: an ordered sequence of
// {year, value}.
func (c *Client) Historical(ctx context.Context, metric string) ([]series.YearValue, error) {
	var dtos []yearValueDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/api/metrics/%s", metric), &dtos); err != nil {
		return nil, err
	}
	return toYearValues(dtos), nil
}

// Forecast requests a server-side forecast for one entity. The response
// carries both the actual (historical) points and the forecast
// continuation.
func (c *Client) Forecast(ctx context.Context, kind, id string, forecastYears int) (*ForecastResponse, error) {
	body, err := json.Marshal(map[string]any{
		"kind":          kind,
		"metric":        id,
		"forecastYears": forecastYears,
	})
	if err != nil {
		return nil, fmt.Errorf("encode forecast request: %w", err)
	}

	var resp ForecastResponse
	if err := c.postJSON(ctx, "/api/forecast", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Band converts the optional confidence interval into the engine's band
// type, or nil when the collaborator sent none. Both bounds share the
// forecast series' years.
func (r *ForecastResponse) Band(id string) *series.ConfidenceBand {
	if r.ConfidenceInterval == nil {
		return nil
	}
	return &series.ConfidenceBand{
		Lower: series.NamedSeries{ID: id, Points: toYearValues(r.ConfidenceInterval.Lower)},
		Upper: series.NamedSeries{ID: id, Points: toYearValues(r.ConfidenceInterval.Upper)},
	}
}

// Shareholders fetches the ranked holder list for a year.
func (c *Client) Shareholders(ctx context.Context, year int) ([]analytics.Holding, error) {
	var holders []analytics.Holding
	if err := c.getJSON(ctx, fmt.Sprintf("/api/shareholders?year=%d", year), &holders); err != nil {
		return nil, err
	}
	return holders, nil
}

// Industry is one segment of the industry breakdown for a year.
type Industry struct {
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// Industries fetches the industry group breakdown for a year.
func (c *Client) Industries(ctx context.Context, year int) ([]Industry, error) {
	var industries []Industry
	if err := c.getJSON(ctx, fmt.Sprintf("/api/industry-breakdown?year=%d", year), &industries); err != nil {
		return nil, err
	}
	return industries, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error implements Timeout(); the retry policy classifies it.
		return fmt.Errorf("fetch %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(req.Context(), "collaborator response",
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a bounded amount so the connection can be reused.
		io.CopyN(io.Discard, resp.Body, 4096)
		return &StatusError{Path: req.URL.Path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Malformed payloads are permanent per-entity failures.
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// StatusError is a non-2xx collaborator response. Gateway and request
// timeouts self-classify as timeouts so the retry policy treats them as
// transient.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Path, e.StatusCode)
}

// Timeout reports whether the status encodes an upstream timeout.
func (e *StatusError) Timeout() bool {
	return e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusGatewayTimeout
}
