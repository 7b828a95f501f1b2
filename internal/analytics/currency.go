package analytics

// RateTable maps year -> currency code -> units of that currency per one
// unit of the base currency. The base currency itself needs no entry; its
// rate is always 1.
type RateTable map[int]map[string]float64

// DefaultRate is used when the table has no entry for the requested year or
// currency. Falling back to parity keeps charts rendering with unconverted
// magnitudes instead of blanking out, which is the degradation financial
// dashboards need.
const DefaultRate = 1.0

// Convert translates value from one currency to another using the rates
// recorded for the given year.
//
// Rates are expressed against the table's base currency, so a cross
// conversion divides out the source rate and applies the target rate. The
// sign of value is preserved throughout (losses stay losses). Pure function:
// the table is never modified.
func Convert(value float64, from, to string, year int, rates RateTable) float64 {
	if from == to {
		return value
	}
	return value / rateFor(from, year, rates) * rateFor(to, year, rates)
}

func rateFor(currency string, year int, rates RateTable) float64 {
	yearRates, ok := rates[year]
	if !ok {
		return DefaultRate
	}
	rate, ok := yearRates[currency]
	if !ok || rate <= 0 {
		return DefaultRate
	}
	return rate
}
