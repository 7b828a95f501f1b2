package ingest

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"finpulse/internal/analytics"
)

// Sheet names the loader expects in the financials workbook.
const (
	SheetFinancials   = "Financials"
	SheetShareholders = "Shareholders"
	SheetIndustries   = "Industries"
)

// LoadWorkbook reads a yearly-financials workbook into a Store.
//
// The Financials sheet is metric rows by year columns: the header row holds
// years, the first column holds metric identifiers, and an empty cell means
// the metric was not reported that year (kept absent, never zero). The
// Shareholders and Industries sheets are optional row-per-record tables
// keyed by year.
func LoadWorkbook(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	store := NewStore()

	if err := loadFinancials(f, store); err != nil {
		return nil, err
	}
	if err := loadShareholders(f, store); err != nil {
		return nil, err
	}
	if err := loadIndustries(f, store); err != nil {
		return nil, err
	}

	logger.Info("workbook loaded",
		slog.String("path", path),
		slog.Int("metrics", len(store.Metrics())),
		slog.Int("years", len(store.Years())))
	return store, nil
}

func loadFinancials(f *excelize.File, store *Store) error {
	rows, err := f.GetRows(SheetFinancials)
	if err != nil {
		return fmt.Errorf("read %s sheet: %w", SheetFinancials, err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("%s sheet has no data rows", SheetFinancials)
	}

	header := rows[0]
	years := make(map[int]int, len(header)) // column index -> year
	for col := 1; col < len(header); col++ {
		year, err := strconv.Atoi(strings.TrimSpace(header[col]))
		if err != nil {
			return fmt.Errorf("%s header column %d: %q is not a year", SheetFinancials, col+1, header[col])
		}
		years[col] = year
	}

	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		metric := strings.TrimSpace(row[0])
		for col := 1; col < len(row); col++ {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue // missing, not zero
			}
			year, ok := years[col]
			if !ok {
				return fmt.Errorf("%s!%s column %d: value %q has no header year", SheetFinancials, metric, col+1, cell)
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return fmt.Errorf("%s!%s %d: %q is not numeric", SheetFinancials, metric, year, cell)
			}
			store.SetMetric(metric, year, value)
		}
	}
	return nil
}

func loadShareholders(f *excelize.File, store *Store) error {
	rows, err := f.GetRows(SheetShareholders)
	if err != nil {
		// Optional sheet.
		return nil
	}

	byYear := make(map[int][]analytics.Holding)
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return fmt.Errorf("%s row %d: bad year %q", SheetShareholders, i+1, row[0])
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad percentage %q", SheetShareholders, i+1, row[2])
		}
		holding := analytics.Holding{Name: strings.TrimSpace(row[1]), Percentage: pct}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			shares, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
			if err != nil {
				return fmt.Errorf("%s row %d: bad share count %q", SheetShareholders, i+1, row[3])
			}
			holding.Shares = shares
		}
		byYear[year] = append(byYear[year], holding)
	}

	for year, holders := range byYear {
		// Concentration analytics require descending rank order.
		sort.SliceStable(holders, func(i, j int) bool {
			return holders[i].Percentage > holders[j].Percentage
		})
		store.SetHolders(year, holders)
	}
	return nil
}

func loadIndustries(f *excelize.File, store *Store) error {
	rows, err := f.GetRows(SheetIndustries)
	if err != nil {
		// Optional sheet.
		return nil
	}

	byYear := make(map[int][]IndustrySegment)
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return fmt.Errorf("%s row %d: bad year %q", SheetIndustries, i+1, row[0])
		}
		revenue, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad revenue %q", SheetIndustries, i+1, row[2])
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad percentage %q", SheetIndustries, i+1, row[3])
		}
		byYear[year] = append(byYear[year], IndustrySegment{
			Name:       strings.TrimSpace(row[1]),
			Revenue:    revenue,
			Percentage: pct,
		})
	}

	for year, segments := range byYear {
		store.SetIndustries(year, segments)
	}
	return nil
}
