package ccf

import "fmt"

// Column is one named, typed column of a table.
type Column struct {
	Name   string
	Type   TypeTag
	Values []int32
}

// Table is an ordered set of columns sharing one row count.
type Table struct {
	Columns []Column
}

// ColumnSpec is the part of a column stored in its descriptor.
type ColumnSpec struct {
	Name string
	Type TypeTag
}

// NumRows returns the row count shared by all columns, or 0 for a table
// without columns.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column returns the first column named name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns the column specs in table order.
func (t *Table) Schema() []ColumnSpec {
	specs := make([]ColumnSpec, len(t.Columns))
	for i, c := range t.Columns {
		specs[i] = ColumnSpec{Name: c.Name, Type: c.Type}
	}
	return specs
}

// Validate checks that t can be encoded: every column has the same length,
// a storable name and a registered type, and the counts fit the header.
func (t *Table) Validate() error {
	if err := validateSchema(t.Schema(), t.NumRows()); err != nil {
		return err
	}
	want := t.NumRows()
	for i, c := range t.Columns {
		if len(c.Values) != want {
			return &ColumnError{
				Index: i,
				Name:  c.Name,
				Err:   fmt.Errorf("%w: %d values, want %d", ErrRowCountMismatch, len(c.Values), want),
			}
		}
	}
	return nil
}

// validateSchema checks the parts of a table that go into the header and
// metadata table.
func validateSchema(specs []ColumnSpec, numRows int) error {
	if len(specs) > MaxColumns {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyColumns, len(specs), MaxColumns)
	}
	if numRows < 0 || uint64(numRows) > MaxRows {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyRows, numRows, uint64(MaxRows))
	}
	for i, s := range specs {
		if err := validateName(s.Name); err != nil {
			return &ColumnError{Index: i, Name: s.Name, Err: err}
		}
		if _, err := LookupType(s.Type); err != nil {
			return &ColumnError{Index: i, Name: s.Name, Err: err}
		}
	}
	return nil
}
