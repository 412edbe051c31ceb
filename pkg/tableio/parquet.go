package tableio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/parquet-go/parquet-go"
)

// ErrUnsupportedParquetColumn indicates a Parquet column that cannot be
// stored as an int32 CCF column.
var ErrUnsupportedParquetColumn = errors.New("unsupported parquet column")

// ReadParquet reads a flat Parquet file whose columns are all INT32 or
// INT64. INT64 values must fit in int32; null values are rejected.
func ReadParquet(r io.ReaderAt, size int64) (*ccf.Table, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	specs, err := parquetSpecs(file.Schema())
	if err != nil {
		return nil, err
	}
	t := newTable(specs)
	for i := range t.Columns {
		t.Columns[i].Values = make([]int32, 0, file.NumRows())
	}

	rowBuf := make([]parquet.Row, 1024)
	for _, rg := range file.RowGroups() {
		if err := readRowGroup(rg, rowBuf, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parquetSpecs maps a flat Parquet schema to column specs.
func parquetSpecs(schema *parquet.Schema) ([]ccf.ColumnSpec, error) {
	fields := schema.Fields()
	specs := make([]ccf.ColumnSpec, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return nil, fmt.Errorf("%w: %q is a group", ErrUnsupportedParquetColumn, field.Name())
		}
		switch kind := field.Type().Kind(); kind {
		case parquet.Int32, parquet.Int64:
		default:
			return nil, fmt.Errorf("%w: %q has physical type %s", ErrUnsupportedParquetColumn, field.Name(), kind)
		}
		specs[i] = ccf.ColumnSpec{Name: field.Name(), Type: ccf.TypeInt32}
	}
	return specs, nil
}

func readRowGroup(rg parquet.RowGroup, rowBuf []parquet.Row, t *ccf.Table) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(rowBuf)
		for _, row := range rowBuf[:n] {
			if err := appendRow(row, t); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

// appendRow appends one value per column from a parquet row.
func appendRow(row parquet.Row, t *ccf.Table) error {
	for _, val := range row {
		col := val.Column()
		if col < 0 || col >= len(t.Columns) {
			return fmt.Errorf("%w: value for column %d", ErrUnsupportedParquetColumn, col)
		}
		name := t.Columns[col].Name
		if val.IsNull() {
			return fmt.Errorf("%w: %q contains null values", ErrUnsupportedParquetColumn, name)
		}

		var v int64
		switch val.Kind() {
		case parquet.Int32:
			v = int64(val.Int32())
		case parquet.Int64:
			v = val.Int64()
		default:
			return fmt.Errorf("%w: %q value of kind %s", ErrUnsupportedParquetColumn, name, val.Kind())
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("%w: %q value %d out of int32 range", ErrUnsupportedParquetColumn, name, v)
		}
		t.Columns[col].Values = append(t.Columns[col].Values, int32(v))
	}
	return nil
}
