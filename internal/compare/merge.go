package compare

import (
	"sort"

	"finpulse/internal/series"
)

// MergeEntitySeries combines an entity's historical and forecast points into
// one NamedSeries for alignment.
//
// Forecast years normally follow strictly after the historical range. When
// the collaborator nevertheless returns an overlapping year, the forecast
// value wins: the year appears once on the axis with the forecast's value,
// never as a duplicated entry. Points with nil values are dropped; a gap is
// represented by the year's absence, and alignment reintroduces the nil.
func MergeEntitySeries(id string, historical, forecast []series.YearValue) series.NamedSeries {
	byYear := make(map[int]float64, len(historical)+len(forecast))
	for _, p := range historical {
		if p.Value == nil {
			continue
		}
		byYear[p.Year] = *p.Value
	}
	for _, p := range forecast {
		if p.Value == nil {
			continue
		}
		byYear[p.Year] = *p.Value
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	points := make([]series.YearValue, 0, len(years))
	for _, y := range years {
		v := byYear[y]
		points = append(points, series.YearValue{Year: y, Value: &v})
	}
	return series.NamedSeries{ID: id, Points: points}
}

// restrictYears drops points outside the selected years. An empty selection
// keeps everything.
func restrictYears(s series.NamedSeries, years []int) series.NamedSeries {
	if len(years) == 0 {
		return s
	}
	keep := make(map[int]struct{}, len(years))
	for _, y := range years {
		keep[y] = struct{}{}
	}
	points := make([]series.YearValue, 0, len(s.Points))
	for _, p := range s.Points {
		if _, ok := keep[p.Year]; ok {
			points = append(points, p)
		}
	}
	return series.NamedSeries{ID: s.ID, Points: points}
}
