package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRates() RateTable {
	return RateTable{
		2022: {"USD": 0.0031, "EUR": 0.0029},
		2023: {"USD": 0.0033},
	}
}

func TestConvert(t *testing.T) {
	rates := testRates()

	t.Run("base to foreign", func(t *testing.T) {
		got := Convert(1000, "LKR", "USD", 2022, rates)
		assert.InDelta(t, 3.1, got, 1e-9)
	})

	t.Run("foreign to base", func(t *testing.T) {
		got := Convert(3.1, "USD", "LKR", 2022, rates)
		assert.InDelta(t, 1000, got, 1e-9)
	})

	t.Run("cross conversion through base", func(t *testing.T) {
		got := Convert(100, "USD", "EUR", 2022, rates)
		assert.InDelta(t, 100/0.0031*0.0029, got, 1e-9)
	})

	t.Run("same currency is identity", func(t *testing.T) {
		assert.Equal(t, 42.5, Convert(42.5, "USD", "USD", 2022, rates))
	})

	t.Run("sign is preserved", func(t *testing.T) {
		got := Convert(-1000, "LKR", "USD", 2022, rates)
		assert.InDelta(t, -3.1, got, 1e-9)
		assert.Less(t, got, 0.0)
	})

	t.Run("missing year falls back to default rate", func(t *testing.T) {
		got := Convert(1000, "LKR", "USD", 1995, rates)
		assert.Equal(t, 1000.0, got)
	})

	t.Run("missing currency falls back to default rate", func(t *testing.T) {
		got := Convert(1000, "LKR", "JPY", 2022, rates)
		assert.Equal(t, 1000.0, got)
	})

	t.Run("zero value stays zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Convert(0, "LKR", "USD", 2022, rates))
	})
}
