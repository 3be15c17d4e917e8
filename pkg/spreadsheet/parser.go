// Package spreadsheet parses guest roster files (xlsx or csv) into flat
// records. The first row is treated as a header; recognized columns are
// matched case-insensitively and everything else is ignored.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one parsed roster row
type Record struct {
	Name      string
	Phone     string
	Email     string
	GuestType string
}

// ErrUnsupportedFormat is returned for file extensions the parser cannot read
var ErrUnsupportedFormat = fmt.Errorf("unsupported roster format")

// Parse reads a roster from r, dispatching on the filename extension.
// Supported extensions are .xlsx and .csv.
func Parse(r io.Reader, filename string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func parseXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return recordsFromRows(rows), nil
}

func parseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return recordsFromRows(rows), nil
}

// columnIndexes maps recognized header names to their column positions
func columnIndexes(header []string) map[string]int {
	idx := map[string]int{}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "name", "guest name", "guest_name":
			idx["name"] = i
		case "phone", "phone number", "phone_number", "mobile":
			idx["phone"] = i
		case "email", "e-mail", "email address":
			idx["email"] = i
		case "guest_type", "guest type", "type", "category":
			idx["guest_type"] = i
		}
	}
	return idx
}

func recordsFromRows(rows [][]string) []Record {
	if len(rows) < 2 {
		return []Record{}
	}

	idx := columnIndexes(rows[0])
	records := make([]Record, 0, len(rows)-1)

	cell := func(row []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, row := range rows[1:] {
		record := Record{
			Name:      cell(row, "name"),
			Phone:     cell(row, "phone"),
			Email:     cell(row, "email"),
			GuestType: cell(row, "guest_type"),
		}
		// Skip entirely blank rows but keep nameless ones so ingestion
		// can report them as failures
		if record.Name == "" && record.Phone == "" && record.Email == "" && record.GuestType == "" {
			continue
		}
		records = append(records, record)
	}

	return records
}
