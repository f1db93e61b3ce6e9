// # Naming Conventions
//
// Functions in this package follow consistent naming patterns:
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a formatted string without performing I/O.
//   - Write* functions write data to files or encoders.

package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/store"
	"github.com/agbru/hedgesweep/internal/ui"
)

// csvHeader is the column order of CSV output files.
var csvHeader = []string{
	"run_id", "strategy", "dataset", "portfolio_size", "schedule", "days", "rebalances",
	"mean_error", "mse", "max_abs_error", "pnl", "duration_ms", "error",
}

// jsonDocument is the layout of JSON output files.
type jsonDocument struct {
	RunID       uuid.UUID      `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Results     []store.Record `json:"results"`
}

// WriteResultsToFile writes the results to path, choosing JSON or CSV from
// its extension. Missing parent directories are created.
func WriteResultsToFile(path string, runID uuid.UUID, results orchestration.ResultSet) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	records := store.NewRecords(runID, results)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = WriteJSON(file, runID, records, time.Now().UTC())
	case ".csv":
		err = WriteCSV(file, records)
	default:
		err = fmt.Errorf("unsupported output extension %q (use .json or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// WriteJSON encodes the records as an indented JSON document.
func WriteJSON(w io.Writer, runID uuid.UUID, records []store.Record, generatedAt time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonDocument{RunID: runID, GeneratedAt: generatedAt, Results: records}); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []store.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.RunID.String(),
			rec.Strategy,
			rec.Dataset,
			strconv.Itoa(rec.PortfolioSize),
			strconv.Itoa(rec.Schedule),
			strconv.Itoa(rec.Days),
			strconv.Itoa(rec.Rebalances),
			strconv.FormatFloat(rec.MeanError, 'g', -1, 64),
			strconv.FormatFloat(rec.MSE, 'g', -1, 64),
			strconv.FormatFloat(rec.MaxAbsError, 'g', -1, 64),
			rec.PnL.String(),
			strconv.FormatFloat(rec.DurationMS, 'f', 3, 64),
			rec.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DisplaySavedFile confirms where the results were written.
func DisplaySavedFile(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s✓ Results saved to: %s%s%s\n",
		ui.ColorGreen(), ui.ColorBlue(), path, ui.ColorReset())
}
