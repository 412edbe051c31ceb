package tableio

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eunmann/ccf/pkg/ccf"
)

func TestReadCSV(t *testing.T) {
	input := "age,salary:int32\n10,5000\n20, 6000\n30,7000\n"

	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	want := map[string][]int32{
		"age":    {10, 20, 30},
		"salary": {5000, 6000, 7000},
	}
	if len(table.Columns) != 2 {
		t.Fatalf("len(Columns) = %d, want 2", len(table.Columns))
	}
	for _, c := range table.Columns {
		if c.Type != ccf.TypeInt32 {
			t.Errorf("column %q type = %s, want int32", c.Name, c.Type)
		}
		if !equal(c.Values, want[c.Name]) {
			t.Errorf("column %q = %v, want %v", c.Name, c.Values, want[c.Name])
		}
	}
}

func TestReadCSVEmpty(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(table.Columns) != 0 {
		t.Errorf("len(Columns) = %d, want 0", len(table.Columns))
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(table.Columns) != 2 || table.NumRows() != 0 {
		t.Fatalf("got %d columns, %d rows, want 2 columns, 0 rows", len(table.Columns), table.NumRows())
	}
	if err := table.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a number", "a\nten\n"},
		{"out of range", "a\n3000000000\n"},
		{"short row", "a,b\n1\n"},
		{"long row", "a\n1,2\n"},
		{"unknown type", "a:float64\n1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadCSVUnknownTypeIsUnsupported(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a:float64\n1\n"))
	if !errors.Is(err, ccf.ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	table := &ccf.Table{Columns: []ccf.Column{
		{Name: "x", Type: ccf.TypeInt32, Values: []int32{-2147483648, 0, 2147483647}},
		{Name: "y", Type: ccf.TypeInt32, Values: []int32{1, 2, 3}},
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "x,y\n-2147483648,1\n0,2\n2147483647,3\n"
	if buf.String() != want {
		t.Errorf("WriteCSV = %q, want %q", buf.String(), want)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	for i := range table.Columns {
		if !equal(got.Columns[i].Values, table.Columns[i].Values) {
			t.Errorf("column %d = %v, want %v", i, got.Columns[i].Values, table.Columns[i].Values)
		}
	}
}

func TestWriteCSVColonInName(t *testing.T) {
	table := &ccf.Table{Columns: []ccf.Column{
		{Name: "t:x", Type: ccf.TypeInt32, Values: []int32{7, 8}},
		{Name: "plain", Type: ccf.TypeInt32, Values: []int32{1, 2}},
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "t:x:int32,plain\n7,1\n8,2\n"
	if buf.String() != want {
		t.Errorf("WriteCSV = %q, want %q", buf.String(), want)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(got.Columns) != 2 {
		t.Fatalf("len(Columns) = %d, want 2", len(got.Columns))
	}
	for i, c := range table.Columns {
		if got.Columns[i].Name != c.Name {
			t.Errorf("column %d name = %q, want %q", i, got.Columns[i].Name, c.Name)
		}
		if !equal(got.Columns[i].Values, c.Values) {
			t.Errorf("column %q = %v, want %v", c.Name, got.Columns[i].Values, c.Values)
		}
	}
}

func TestReadFileGzipCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv.gz")

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	if _, err := gzw.Write([]byte("n\n1\n2\n")); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	table, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !equal(table.Columns[0].Values, []int32{1, 2}) {
		t.Errorf("values = %v, want [1 2]", table.Columns[0].Values)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.csv", FormatCSV, false},
		{"dir/A.CSV.GZ", FormatCSV, false},
		{"x.parquet", FormatParquet, false},
		{"x.json", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("err = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func equal(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
