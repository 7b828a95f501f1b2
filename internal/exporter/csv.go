package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"finpulse/internal/compare"
)

// utf8BOM helps spreadsheet tools recognize the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter renders comparison results as CSV downloads.
type CSVExporter struct {
	exportDir string
	logger    *slog.Logger
}

// NewCSVExporter creates an exporter writing files under exportDir.
func NewCSVExporter(exportDir string, logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{
		exportDir: exportDir,
		logger:    logger.With(slog.String("component", "csv_exporter")),
	}
}

// WriteComparison streams a comparison result as CSV: one row per axis
// year, one value column and one growth column per series. Missing values
// render as empty cells, preserving the null/zero distinction in the
// output.
func (e *CSVExporter) WriteComparison(w io.Writer, result *compare.ComparisonResult) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	ids := result.AlignedTable.IDs()

	header := []string{"Year"}
	for _, id := range ids {
		header = append(header, id, id+" Growth %")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	growthByYear := make(map[string]map[int]*float64, len(ids))
	for id, points := range result.Growth {
		byYear := make(map[int]*float64, len(points))
		for _, p := range points {
			byYear[p.Year] = p.GrowthRate
		}
		growthByYear[id] = byYear
	}

	for i, year := range result.AlignedTable.Years {
		row := []string{strconv.Itoa(year)}
		for _, id := range ids {
			values := result.AlignedTable.Series[id]
			row = append(row, formatOptional(values[i]))
			row = append(row, formatOptional(growthByYear[id][year]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", year, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveComparison writes the CSV to a timestamped file in the export
// directory and returns its path.
func (e *CSVExporter) SaveComparison(result *compare.ComparisonResult) (string, error) {
	if err := os.MkdirAll(e.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("comparison_%s_%s.csv", result.Kind, time.Now().Format("20060102_150405"))
	path := filepath.Join(e.exportDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := e.WriteComparison(f, result); err != nil {
		return "", err
	}

	e.logger.Info("comparison exported",
		slog.String("path", path),
		slog.Int("series", len(result.AlignedTable.Series)))
	return path, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
