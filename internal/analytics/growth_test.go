package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpulse/internal/series"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"simple increase", 110, 100, 10},
		{"simple decrease", 90, 100, -10},
		{"negative base improving", -50, -100, 50},
		{"negative base worsening", -150, -100, -50},
		{"loss turning to profit", 50, -100, 150},
		{"zero previous reports zero", 123.45, 0, 0},
		{"zero previous with negative current", -10, 0, 0},
		{"no change", 100, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GrowthRate(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestSeriesGrowth(t *testing.T) {
	t.Run("first point has nil rate", func(t *testing.T) {
		s := series.NewNamedSeries("rev", map[int]float64{2021: 100, 2022: 110, 2023: 121})
		growth := SeriesGrowth(s)

		require.Len(t, growth, 3)
		assert.Nil(t, growth[0].GrowthRate)
		require.NotNil(t, growth[1].GrowthRate)
		assert.InDelta(t, 10.0, *growth[1].GrowthRate, 1e-9)
		require.NotNil(t, growth[2].GrowthRate)
		assert.InDelta(t, 10.0, *growth[2].GrowthRate, 1e-9)
	})

	t.Run("gaps use nearest prior non-nil value", func(t *testing.T) {
		s := series.NamedSeries{ID: "rev", Points: []series.YearValue{
			{Year: 2020, Value: series.F(100)},
			{Year: 2021, Value: nil},
			{Year: 2022, Value: series.F(150)},
		}}
		growth := SeriesGrowth(s)

		require.Len(t, growth, 2)
		assert.Equal(t, 2020, growth[0].Year)
		assert.Equal(t, 2022, growth[1].Year)
		require.NotNil(t, growth[1].GrowthRate)
		// 2022 is compared against 2020, not against a zero for 2021.
		assert.InDelta(t, 50.0, *growth[1].GrowthRate, 1e-9)
	})

	t.Run("zero base inside series", func(t *testing.T) {
		s := series.NewNamedSeries("np", map[int]float64{2020: 0, 2021: 40})
		growth := SeriesGrowth(s)

		require.Len(t, growth, 2)
		require.NotNil(t, growth[1].GrowthRate)
		assert.Equal(t, 0.0, *growth[1].GrowthRate)
	})

	t.Run("empty series", func(t *testing.T) {
		assert.Empty(t, SeriesGrowth(series.NamedSeries{ID: "none"}))
	})
}

func TestDescribe(t *testing.T) {
	t.Run("basic statistics", func(t *testing.T) {
		s := series.NewNamedSeries("rev", map[int]float64{
			2019: 80, 2020: 120, 2021: 90, 2022: 150,
		})
		stats, ok := Describe(s)
		require.True(t, ok)

		assert.Equal(t, 80.0, stats.Min)
		assert.Equal(t, 2019, stats.MinYear)
		assert.Equal(t, 150.0, stats.Max)
		assert.Equal(t, 2022, stats.MaxYear)
		assert.InDelta(t, 110.0, stats.Avg, 1e-9)
		assert.Equal(t, 150.0, stats.LatestValue)
		require.NotNil(t, stats.RecentGrowth)
		assert.InDelta(t, 66.67, *stats.RecentGrowth, 1e-9)
	})

	t.Run("duplicate extremum reports first year", func(t *testing.T) {
		s := series.NewNamedSeries("m", map[int]float64{2018: 5, 2019: 5, 2020: 9, 2021: 9})
		stats, ok := Describe(s)
		require.True(t, ok)
		assert.Equal(t, 2018, stats.MinYear)
		assert.Equal(t, 2020, stats.MaxYear)
	})

	t.Run("single point", func(t *testing.T) {
		s := series.NewNamedSeries("m", map[int]float64{2020: 7})
		stats, ok := Describe(s)
		require.True(t, ok)
		assert.Equal(t, 7.0, stats.Min)
		assert.Equal(t, 7.0, stats.Max)
		assert.Equal(t, 7.0, stats.LatestValue)
		assert.Nil(t, stats.RecentGrowth)
	})

	t.Run("no data", func(t *testing.T) {
		_, ok := Describe(series.NamedSeries{ID: "empty"})
		assert.False(t, ok)
	})
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 10.0, Round2(10.004), 1e-9)
	assert.InDelta(t, 66.67, Round2(200.0/3.0), 1e-9)
	assert.InDelta(t, -3.33, Round2(-10.0/3.0), 1e-9)
}
