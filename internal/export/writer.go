package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// Format is an output format.
type Format string

const (
	FormatTable   Format = "table"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCSV, FormatJSON, FormatParquet:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported format %q", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// WriteCSV writes records with a header row. Undefined oscillator cells are empty.
func WriteCSV(w io.Writer, records []Record) error {
	if err := gocsv.Marshal(records, w); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "write csv", err)
	}

	return nil
}

// WriteJSON writes records as an indented JSON array. Undefined oscillator values are null.
func WriteJSON(w io.Writer, records []Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if records == nil {
		records = []Record{}
	}

	if err := encoder.Encode(records); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "write json", err)
	}

	return nil
}

// WriteFile writes records to path in the given format. The table format is
// written as plain text.
func WriteFile(path string, format Format, records []Record, compact bool) error {
	if format == FormatParquet {
		return NewParquetExporter(path, compact).Export(records)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "create %s", path)
	}
	defer file.Close()

	return Write(file, format, records)
}

// Write renders records to w. Parquet needs a file and is rejected here.
func Write(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatTable:
		return WriteTable(w, records)
	default:
		return errors.Newf(errors.ErrCodeUnsupportedFormat, "format %s cannot be streamed", format)
	}
}
