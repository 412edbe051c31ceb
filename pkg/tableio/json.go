package tableio

import (
	"fmt"
	"io"

	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/goccy/go-json"
)

type jsonTable struct {
	Version uint16       `json:"version"`
	NumRows int          `json:"num_rows"`
	Columns []jsonColumn `json:"columns"`
}

type jsonColumn struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Values []int32 `json:"values"`
}

// WriteJSON writes t as a single JSON document: the format version, the
// row count, and each column's name, type and values in table order.
func WriteJSON(w io.Writer, version uint16, t *ccf.Table) error {
	doc := jsonTable{
		Version: version,
		NumRows: t.NumRows(),
		Columns: make([]jsonColumn, len(t.Columns)),
	}
	for i, c := range t.Columns {
		values := c.Values
		if values == nil {
			values = []int32{}
		}
		doc.Columns[i] = jsonColumn{Name: c.Name, Type: c.Type.String(), Values: values}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteText writes one line per column.
func WriteText(w io.Writer, t *ccf.Table) error {
	for _, c := range t.Columns {
		if _, err := fmt.Fprintf(w, "%s (%s): %v\n", c.Name, c.Type, c.Values); err != nil {
			return err
		}
	}
	return nil
}
