package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eunmann/ccf/pkg/ccf"
)

// ReadCSV reads a table from CSV. The first record names the columns; a
// header may carry a type suffix such as "age:int32". Every following
// record holds one value per column.
func ReadCSV(r io.Reader) (*ccf.Table, error) {
	csvr := csv.NewReader(r)
	csvr.ReuseRecord = true
	csvr.TrimLeadingSpace = true

	header, err := csvr.Read()
	if errors.Is(err, io.EOF) {
		return &ccf.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	specs := make([]ccf.ColumnSpec, len(header))
	for i, field := range header {
		spec, err := parseHeaderField(field)
		if err != nil {
			return nil, fmt.Errorf("csv header column %d: %w", i, err)
		}
		specs[i] = spec
	}
	t := newTable(specs)

	for row := 0; ; row++ {
		record, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		for i, field := range record {
			v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("csv row %d column %q: %w", row, specs[i].Name, err)
			}
			t.Columns[i].Values = append(t.Columns[i].Values, int32(v))
		}
	}

	return t, nil
}

// parseHeaderField splits "name" or "name:type" into a column spec. The type
// follows the last colon, so a name may itself contain colons as long as the
// header carries an explicit type.
func parseHeaderField(field string) (ccf.ColumnSpec, error) {
	field = strings.TrimSpace(field)
	i := strings.LastIndex(field, ":")
	if i < 0 {
		return ccf.ColumnSpec{Name: field, Type: ccf.TypeInt32}, nil
	}
	tag, err := ccf.ParseTypeTag(field[i+1:])
	if err != nil {
		return ccf.ColumnSpec{}, err
	}
	return ccf.ColumnSpec{Name: field[:i], Type: tag}, nil
}

// headerField is the inverse of parseHeaderField. Names containing a colon
// get an explicit type suffix so they read back unchanged.
func headerField(c ccf.Column) string {
	if strings.Contains(c.Name, ":") {
		return c.Name + ":" + c.Type.String()
	}
	return c.Name
}

// WriteCSV writes t as CSV with a header record of column names.
func WriteCSV(w io.Writer, t *ccf.Table) error {
	csvw := csv.NewWriter(w)

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = headerField(c)
	}
	if err := csvw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for row := 0; row < t.NumRows(); row++ {
		for i, c := range t.Columns {
			record[i] = strconv.FormatInt(int64(c.Values[row]), 10)
		}
		if err := csvw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row, err)
		}
	}

	csvw.Flush()
	if err := csvw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
