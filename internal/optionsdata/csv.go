package optionsdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// csvHeader is the column layout of one sheet file.
var csvHeader = []string{"date", "spot", "rate", "strike", "days_to_expiry", "price", "iv"}

// DateLayout is the date format of the date column.
const DateLayout = "2006-01-02"

// LoadDir reads every *.csv file in dir as one sheet named after the file
// stem. All sheets are loaded eagerly so the returned source is read-only.
func LoadDir(dir string) (*MemorySource, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .csv sheets found in %s", dir)
	}

	sheets := make([]*Sheet, 0, len(paths))
	for _, path := range paths {
		sheet, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return NewMemorySource(sheets), nil
}

func loadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sheet: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sheet, err := ReadSheet(name, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sheet, nil
}

// ReadSheet parses one sheet in CSV form. Rows sharing a date form one day;
// days are returned oldest first.
func ReadSheet(name string, r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("unexpected column %d %q, want %q", i+1, header[i], col)
		}
	}

	byDate := map[time.Time]*Day{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		date, spot, rate, quote, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		day, ok := byDate[date]
		if !ok {
			day = &Day{Date: date, Spot: spot, Rate: rate}
			byDate[date] = day
		}
		day.Chain = append(day.Chain, quote)
	}
	if len(byDate) == 0 {
		return nil, errors.New("sheet has no rows")
	}

	sheet := &Sheet{Name: name, Days: make([]Day, 0, len(byDate))}
	for _, day := range byDate {
		sheet.Days = append(sheet.Days, *day)
	}
	slices.SortFunc(sheet.Days, func(a, b Day) int { return a.Date.Compare(b.Date) })
	return sheet, nil
}

func parseRecord(record []string) (time.Time, float64, float64, Quote, error) {
	date, err := time.Parse(DateLayout, record[0])
	if err != nil {
		return time.Time{}, 0, 0, Quote{}, fmt.Errorf("date: %w", err)
	}
	var nums [4]float64
	for i, idx := range []int{1, 2, 3, 5} {
		if nums[i], err = parseFinite(record[idx]); err != nil {
			return time.Time{}, 0, 0, Quote{}, fmt.Errorf("%s: %w", csvHeader[idx], err)
		}
	}
	dte, err := strconv.Atoi(record[4])
	if err != nil {
		return time.Time{}, 0, 0, Quote{}, fmt.Errorf("days_to_expiry: %w", err)
	}
	iv, err := parseFinite(record[6])
	if err != nil {
		return time.Time{}, 0, 0, Quote{}, fmt.Errorf("iv: %w", err)
	}
	return date, nums[0], nums[1], Quote{Strike: nums[2], DaysToExpiry: dte, Price: nums[3], ImpliedVol: iv}, nil
}

// parseFinite rejects the NaN and Inf spellings strconv accepts.
func parseFinite(field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", field)
	}
	return v, nil
}

// WriteSheet writes a sheet in the layout ReadSheet accepts.
func WriteSheet(w io.Writer, sheet *Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, day := range sheet.Days {
		for _, q := range day.Chain {
			if err := cw.Write([]string{
				day.Date.Format(DateLayout),
				strconv.FormatFloat(day.Spot, 'f', -1, 64),
				strconv.FormatFloat(day.Rate, 'f', -1, 64),
				strconv.FormatFloat(q.Strike, 'f', -1, 64),
				strconv.Itoa(q.DaysToExpiry),
				strconv.FormatFloat(q.Price, 'f', -1, 64),
				strconv.FormatFloat(q.ImpliedVol, 'f', -1, 64),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
