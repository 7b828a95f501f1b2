package analytics

// Holding is one entry of a ranked ownership list.
type Holding struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Shares     int64   `json:"shares,omitempty"`
}

// ConcentrationSummary reports the cumulative percentage held by the top K
// ranked holders.
type ConcentrationSummary struct {
	TopK                 int     `json:"topK"`
	CumulativePercentage float64 `json:"cumulativePercentage"`
}

// Concentration computes the cumulative ownership percentage for each of the
// given top-K thresholds.
//
// The input must already be sorted descending by percentage; rank stability
// under ties is a presentation decision, so this function deliberately does
// not re-sort. Cumulative percentages are non-decreasing in K and capped at
// 100 to absorb rounding drift in reported holdings.
func Concentration(ranked []Holding, thresholds []int) []ConcentrationSummary {
	out := make([]ConcentrationSummary, 0, len(thresholds))
	for _, k := range thresholds {
		n := k
		if n > len(ranked) {
			n = len(ranked)
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += ranked[i].Percentage
		}
		if sum > 100 {
			sum = 100
		}
		out = append(out, ConcentrationSummary{TopK: k, CumulativePercentage: Round2(sum)})
	}
	return out
}

// TopNWithOthers prepares a ranked list for a bounded-slice pie chart: the
// first n entries pass through unchanged and everything below rank n
// collapses into a single synthetic "Others" entry. When the input fits
// within n, no synthetic entry is added.
func TopNWithOthers(ranked []Holding, n int) []Holding {
	if len(ranked) <= n {
		return ranked
	}

	out := make([]Holding, 0, n+1)
	out = append(out, ranked[:n]...)

	var rest Holding
	rest.Name = "Others"
	for _, h := range ranked[n:] {
		rest.Percentage += h.Percentage
		rest.Shares += h.Shares
	}
	rest.Percentage = Round2(rest.Percentage)
	return append(out, rest)
}
