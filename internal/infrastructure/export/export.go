package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

// ForFormat returns the exporter for a named format
func ForFormat(format string) (domain.Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSONExporter{}, nil
	case "csv":
		return CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// GuessFormat infers the output format from the output path extension,
// defaulting to JSON
func GuessFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	default:
		return "json"
	}
}

// JSONExporter writes the full outcome sequence as indented JSON
type JSONExporter struct{}

// Export writes outcomes to a JSON file, one entry per input row
func (JSONExporter) Export(outcomes []domain.Outcome, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(outcomes, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Int("rows", len(outcomes)).Str("path", path).Msg("wrote JSON output")
	return nil
}

// CSVExporter writes a flat row per outcome; price history is embedded as a
// JSON string since CSV has no nesting
type CSVExporter struct{}

var csvHeader = []string{
	"input", "status", "failureKind", "address", "zpid", "url",
	"zestimate", "bedrooms", "bathrooms", "livingArea", "lotSize",
	"yearBuilt", "propertyType", "priceHistory", "droppedPriceEvents",
}

// Export writes outcomes to a CSV file, one row per input row
func (CSVExporter) Export(outcomes []domain.Outcome, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, outcome := range outcomes {
		if err := w.Write(csvRow(outcome)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.Info().Int("rows", len(outcomes)).Str("path", path).Msg("wrote CSV output")
	return nil
}

func csvRow(outcome domain.Outcome) []string {
	if outcome.Record == nil {
		kind := ""
		if outcome.Failure != nil {
			kind = outcome.Failure.Kind
		}
		return []string{
			outcome.Input, "failed", kind,
			"", "", "", "", "", "", "", "", "", "", "", "",
		}
	}

	r := outcome.Record
	history, _ := json.Marshal(r.PriceHistory)

	return []string{
		outcome.Input, "ok", "",
		r.Address, r.ZPID, r.URL,
		intField(r.Zestimate),
		floatField(r.Bedrooms),
		floatField(r.Bathrooms),
		floatField(r.LivingArea),
		floatField(r.LotSize),
		intField(r.YearBuilt),
		r.PropertyType,
		string(history),
		strconv.Itoa(outcome.DroppedPriceEvents),
	}
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
