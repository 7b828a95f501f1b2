package series

import (
	"sort"
)

// AlignedTable is the result of projecting several sparse series onto one
// common year axis. Years is the ascending, deduplicated union of all input
// years; every entry in Series has exactly len(Years) positions, with nil
// at positions the source series does not cover.
type AlignedTable struct {
	Years  []int                 `json:"years"`
	Series map[string][]*float64 `json:"series"`
}

// Align projects the given series onto a shared year axis.
//
// The axis is the sorted union of every input series' years. For each series
// and axis position the source value is looked up by year, or nil inserted
// when absent. A series' own values are never reordered relative to each
// other, only repositioned, and the inputs are never mutated.
func Align(list []NamedSeries) AlignedTable {
	seen := make(map[int]struct{})
	var years []int
	for _, s := range list {
		for _, p := range s.Points {
			if _, ok := seen[p.Year]; ok {
				continue
			}
			seen[p.Year] = struct{}{}
			years = append(years, p.Year)
		}
	}
	sort.Ints(years)

	table := AlignedTable{
		Years:  years,
		Series: make(map[string][]*float64, len(list)),
	}
	for _, s := range list {
		values := make([]*float64, len(years))
		for i, y := range years {
			values[i] = s.ValueAt(y)
		}
		table.Series[s.ID] = values
	}
	return table
}

// Row returns the aligned values for one series ID, or false when the table
// does not contain it.
func (t AlignedTable) Row(id string) ([]*float64, bool) {
	row, ok := t.Series[id]
	return row, ok
}

// IDs returns the table's series identifiers in sorted order for stable
// iteration in rendering and export.
func (t AlignedTable) IDs() []string {
	ids := make([]string, 0, len(t.Series))
	for id := range t.Series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
