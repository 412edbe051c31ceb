package ccf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Layout computes the data block offset of every column of t, assuming the
// container starts at position 0, and the total encoded size. Blocks follow
// the metadata table in column order.
func Layout(t *Table) (offsets []uint64, size int64, err error) {
	if err := t.Validate(); err != nil {
		return nil, 0, err
	}
	return layout(t.Schema(), t.NumRows())
}

func layout(specs []ColumnSpec, numRows int) ([]uint64, int64, error) {
	pos := int64(HeaderSize)
	for _, s := range specs {
		pos += int64(DescriptorSize(s.Name))
	}

	offsets := make([]uint64, len(specs))
	for i, s := range specs {
		offsets[i] = uint64(pos)
		n, err := BlockSize(s.Type, numRows)
		if err != nil {
			return nil, 0, &ColumnError{Index: i, Name: s.Name, Err: err}
		}
		pos += n
	}
	return offsets, pos, nil
}

// Encode writes t to w without seeking. Offsets are computed up front by
// Layout, so the metadata table is emitted fully resolved and w may be an
// append-only stream. The bytes match WriteTable on a fresh file.
func Encode(w io.Writer, t *Table) error {
	offsets, _, err := Layout(t)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(EncodeHeader(Version, uint16(len(t.Columns)), uint32(t.NumRows()))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var desc []byte
	for i, c := range t.Columns {
		desc = appendDescriptor(desc[:0], c.Type, c.Name, offsets[i])
		if _, err := bw.Write(desc); err != nil {
			return &ColumnError{Index: i, Name: c.Name, Err: fmt.Errorf("write descriptor: %w", err)}
		}
	}

	for i, c := range t.Columns {
		if err := WriteColumn(bw, c.Type, c.Values); err != nil {
			return &ColumnError{Index: i, Name: c.Name, Err: err}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Marshal returns the encoded container for t.
func Marshal(t *Table) ([]byte, error) {
	_, size, err := Layout(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(int(size))
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
