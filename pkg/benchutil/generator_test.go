package benchutil

import (
	"testing"

	"github.com/eunmann/ccf/pkg/ccf"
)

func TestGeneratorTableIsValid(t *testing.T) {
	for _, shape := range []Shape{{0, 0}, {1, 0}, {3, 5}, {200, 2}} {
		t.Run(shape.String(), func(t *testing.T) {
			table := NewGenerator(GeneratorConfig{Shape: shape, Seed: BenchmarkSeed}).Table()
			if err := table.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if len(table.Columns) != shape.Columns {
				t.Errorf("len(Columns) = %d, want %d", len(table.Columns), shape.Columns)
			}
			if shape.Columns > 0 && table.NumRows() != shape.Rows {
				t.Errorf("NumRows = %d, want %d", table.NumRows(), shape.Rows)
			}
		})
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	cfg := GeneratorConfig{Shape: Shape{Columns: 4, Rows: 8}, Seed: 7}
	a := NewGenerator(cfg).Table()
	b := NewGenerator(cfg).Table()

	for i := range a.Columns {
		if a.Columns[i].Name != b.Columns[i].Name {
			t.Errorf("column %d name differs: %q vs %q", i, a.Columns[i].Name, b.Columns[i].Name)
		}
		for j := range a.Columns[i].Values {
			if a.Columns[i].Values[j] != b.Columns[i].Values[j] {
				t.Fatalf("column %d row %d differs", i, j)
			}
		}
	}
}

func TestGeneratorNameLength(t *testing.T) {
	table := NewGenerator(GeneratorConfig{Shape: Shape{Columns: 50, Rows: 1}, Seed: 1, MaxNameLen: 3}).Table()
	for _, c := range table.Columns {
		if len(c.Name) == 0 || len(c.Name) > 3 {
			t.Errorf("name %q length %d, want 1..3", c.Name, len(c.Name))
		}
	}

	table = NewGenerator(GeneratorConfig{Shape: Shape{Columns: 20, Rows: 1}, Seed: 1}).Table()
	for _, c := range table.Columns {
		if len(c.Name) > ccf.MaxNameLen {
			t.Errorf("name length %d exceeds %d", len(c.Name), ccf.MaxNameLen)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names(3)
	if names[0] != "column_00000" || names[2] != "column_00002" {
		t.Errorf("Names(3) = %v", names)
	}
}
