package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpulse/internal/analytics"
	"finpulse/internal/compare"
	"finpulse/internal/series"
)

func sampleResult() *compare.ComparisonResult {
	table := series.Align([]series.NamedSeries{
		series.NewNamedSeries("eps", map[int]float64{2021: 10, 2022: 12}),
		series.NewNamedSeries("revenue", map[int]float64{2022: 200, 2023: 250}),
	})
	return &compare.ComparisonResult{
		Kind:         compare.KindMetrics,
		AlignedTable: table,
		Growth: map[string][]analytics.GrowthPoint{
			"eps": {
				{Year: 2021, Value: 10},
				{Year: 2022, Value: 12, GrowthRate: series.F(20)},
			},
			"revenue": {
				{Year: 2022, Value: 200},
				{Year: 2023, Value: 250, GrowthRate: series.F(25)},
			},
		},
	}
}

func TestWriteComparison(t *testing.T) {
	var buf bytes.Buffer
	exp := NewCSVExporter(t.TempDir(), nil)
	require.NoError(t, exp.WriteComparison(&buf, sampleResult()))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM prefix")

	records, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus one row per axis year")

	assert.Equal(t, []string{"Year", "eps", "eps Growth %", "revenue", "revenue Growth %"}, records[0])
	assert.Equal(t, []string{"2021", "10", "", "", ""}, records[1])
	assert.Equal(t, []string{"2022", "12", "20", "200", ""}, records[2])
	assert.Equal(t, []string{"2023", "", "", "250", "25"}, records[3])
}

func TestSaveComparison(t *testing.T) {
	dir := t.TempDir()
	exp := NewCSVExporter(dir, nil)

	path, err := exp.SaveComparison(sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))
	assert.Contains(t, path, "comparison_metrics_")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}
