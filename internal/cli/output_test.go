package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/hedgesweep/internal/store"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	runID := uuid.New()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, store.NewRecords(runID, sampleResults())); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != runID.String() || rows[1][1] != "delta" || rows[1][10] != "-3.456" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][12] != "missing quote" {
		t.Errorf("error column = %q", rows[2][12])
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	runID := uuid.New()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, runID, store.NewRecords(runID, sampleResults()), at); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.RunID != runID || !doc.GeneratedAt.Equal(at) || len(doc.Results) != 2 {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.Results[0].Rebalances != 4 || doc.Results[1].Error != "missing quote" {
		t.Errorf("unexpected records %+v", doc.Results)
	}
}

func TestWriteResultsToFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
		prefix  string
	}{
		{"json", filepath.Join(dir, "out", "results.json"), false, "{"},
		{"csv", filepath.Join(dir, "results.CSV"), false, "run_id,"},
		{"unsupported", filepath.Join(dir, "results.txt"), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WriteResultsToFile(tt.path, uuid.New(), sampleResults())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteResultsToFile: %v", err)
			}
			data, err := os.ReadFile(tt.path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !strings.HasPrefix(string(data), tt.prefix) {
				t.Errorf("unexpected content %q", data)
			}
		})
	}
}

func TestWriteResultsToFile_EmptyPath(t *testing.T) {
	t.Parallel()
	if err := WriteResultsToFile("", uuid.New(), sampleResults()); err != nil {
		t.Errorf("an empty path should be a no-op, got %v", err)
	}
}
