package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpulse/internal/series"
)

func yv(year int, value float64) series.YearValue {
	return series.YearValue{Year: year, Value: series.F(value)}
}

func TestMergeEntitySeries(t *testing.T) {
	t.Run("forecast follows historical", func(t *testing.T) {
		merged := MergeEntitySeries("revenue",
			[]series.YearValue{yv(2022, 100), yv(2023, 110)},
			[]series.YearValue{yv(2024, 121)},
		)

		assert.Equal(t, "revenue", merged.ID)
		require.Equal(t, []int{2022, 2023, 2024}, merged.Years())
		assert.Equal(t, 100.0, *merged.Points[0].Value)
		assert.Equal(t, 110.0, *merged.Points[1].Value)
		assert.Equal(t, 121.0, *merged.Points[2].Value)
	})

	t.Run("forecast wins on overlapping year", func(t *testing.T) {
		merged := MergeEntitySeries("revenue",
			[]series.YearValue{yv(2022, 100), yv(2023, 110)},
			[]series.YearValue{yv(2023, 115), yv(2024, 121)},
		)

		// No duplicated axis entry, forecast value replaces historical.
		require.Equal(t, []int{2022, 2023, 2024}, merged.Years())
		assert.Equal(t, 115.0, *merged.Points[1].Value)
	})

	t.Run("nil-valued points are dropped", func(t *testing.T) {
		merged := MergeEntitySeries("eps",
			[]series.YearValue{yv(2021, 1), {Year: 2022, Value: nil}},
			nil,
		)
		assert.Equal(t, []int{2021}, merged.Years())
	})

	t.Run("empty inputs", func(t *testing.T) {
		merged := MergeEntitySeries("m", nil, nil)
		assert.Empty(t, merged.Points)
	})
}

func TestRestrictYears(t *testing.T) {
	s := series.NewNamedSeries("rev", map[int]float64{2020: 1, 2021: 2, 2022: 3})

	t.Run("keeps only selected years", func(t *testing.T) {
		got := restrictYears(s, []int{2021, 2022})
		assert.Equal(t, []int{2021, 2022}, got.Years())
	})

	t.Run("empty selection keeps everything", func(t *testing.T) {
		got := restrictYears(s, nil)
		assert.Equal(t, []int{2020, 2021, 2022}, got.Years())
	})
}
