// Package tableio converts between ccf.Table and external table formats:
// CSV and Parquet on the way in; CSV, JSON and text on the way out.
package tableio

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eunmann/ccf/pkg/ccf"
)

// Format identifies an external table format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
	FormatText    Format = "text"
)

// ErrUnknownFormat indicates a path or name that maps to no known format.
var ErrUnknownFormat = errors.New("unknown table format")

// DetectFormat determines the input format from a file name:
// .parquet, .csv or .csv.gz.
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".parquet"):
		return FormatParquet, nil
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".csv.gz"):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
}

// ReadFile loads a table from a CSV (optionally gzipped) or Parquet file.
func ReadFile(path string) (*ccf.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatParquet:
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		return ReadParquet(f, info.Size())
	default:
		var r io.Reader = f
		if strings.HasSuffix(strings.ToLower(path), ".gz") {
			gzr, err := gzip.NewReader(f)
			if err != nil {
				return nil, fmt.Errorf("create gzip reader: %w", err)
			}
			defer gzr.Close()
			r = gzr
		}
		return ReadCSV(r)
	}
}

// newTable creates an empty table with the given column specs.
func newTable(specs []ccf.ColumnSpec) *ccf.Table {
	t := &ccf.Table{Columns: make([]ccf.Column, len(specs))}
	for i, s := range specs {
		t.Columns[i] = ccf.Column{Name: s.Name, Type: s.Type, Values: []int32{}}
	}
	return t
}
