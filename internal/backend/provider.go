package backend

import (
	"context"

	"finpulse/internal/compare"
)

// Provider adapts the collaborator client to the aggregator's fan-out
// contract: one independent fetch per entity.
type Provider struct {
	client *Client
}

// NewProvider wraps a collaborator client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// FetchEntity fetches one entity's data. When the filter asks for forecast
// years the forecast endpoint is used, which returns history and forecast
// in one settle; otherwise only the historical series is fetched.
func (p *Provider) FetchEntity(ctx context.Context, kind compare.Kind, id string, filter compare.FilterState) (compare.EntityData, error) {
	if filter.ForecastYears <= 0 {
		hist, err := p.client.Historical(ctx, id)
		if err != nil {
			return compare.EntityData{}, err
		}
		return compare.EntityData{Historical: hist}, nil
	}

	resp, err := p.client.Forecast(ctx, string(kind), id, filter.ForecastYears)
	if err != nil {
		return compare.EntityData{}, err
	}
	return compare.EntityData{
		Historical: toYearValues(resp.ActualData),
		Forecast:   toYearValues(resp.ForecastData),
		Band:       resp.Band(id),
		Accuracy:   resp.Accuracy,
	}, nil
}
