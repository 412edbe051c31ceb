package ccf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/rs/zerolog"
)

// Reader decodes a container from a seekable source.
//
// NewReader decodes the header and the whole metadata table up front; data
// blocks are read on demand by seeking to their offsets. A Reader is not
// safe for concurrent use because reads move the source position.
type Reader struct {
	rs      io.ReadSeeker
	log     zerolog.Logger
	header  Header
	columns []ColumnDescriptor
	metaEnd int64
	index   *NameIndex
}

// NewReader decodes the header and metadata table of the container in rs.
// Any error here means the file cannot be trusted and nothing is returned.
func NewReader(ctx context.Context, rs io.ReadSeeker) (*Reader, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	header, err := DecodeHeader(rs)
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	columns, err := decodeMetadata(rs, header.NumCols)
	if err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	metaEnd := int64(HeaderSize)
	for _, c := range columns {
		metaEnd += int64(DescriptorSize(c.Name))
	}
	for i, c := range columns {
		if c.Offset < uint64(metaEnd) {
			return nil, &ColumnError{
				Index: i,
				Name:  c.Name,
				Err:   fmt.Errorf("%w: %d is inside metadata ending at %d", ErrInvalidOffset, c.Offset, metaEnd),
			}
		}
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	index, err := NewNameIndex(names)
	if err != nil {
		return nil, fmt.Errorf("build name index: %w", err)
	}

	r := &Reader{
		rs:      rs,
		log:     logctx.FromContext(ctx),
		header:  header,
		columns: columns,
		metaEnd: metaEnd,
		index:   index,
	}

	r.log.Debug().
		Uint16("version", header.Version).
		Uint16("columns_count", header.NumCols).
		Uint32("rows_count", header.NumRows).
		Int64("metadata_end", metaEnd).
		Msg("metadata decoded")
	return r, nil
}

// Header returns the decoded header.
func (r *Reader) Header() Header {
	return r.header
}

// Columns returns the decoded metadata table in file order.
func (r *Reader) Columns() []ColumnDescriptor {
	return r.columns
}

// MetadataEnd returns the position of the first byte after the metadata table.
func (r *Reader) MetadataEnd() int64 {
	return r.metaEnd
}

// Lookup returns the index of the first column named name.
func (r *Reader) Lookup(name string) (int, bool) {
	return r.index.Lookup(name)
}

// ReadColumn reads the data block of column i.
func (r *Reader) ReadColumn(i int) ([]int32, error) {
	if i < 0 || i >= len(r.columns) {
		return nil, fmt.Errorf("%w: index %d", ErrColumnNotFound, i)
	}
	c := r.columns[i]
	values, err := ReadColumn(r.rs, c.Type, r.header.NumRows, c.Offset)
	if err != nil {
		return nil, &ColumnError{Index: i, Name: c.Name, Err: err}
	}
	r.log.Debug().Int("column", i).Str("name", c.Name).Uint64("offset", c.Offset).Msg("data block read")
	return values, nil
}

// ReadColumnByName reads the data block of the first column named name.
func (r *Reader) ReadColumnByName(name string) ([]int32, error) {
	i, ok := r.index.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return r.ReadColumn(i)
}

// ReadTable reads every column. Any column error fails the whole read.
func (r *Reader) ReadTable() (*Table, error) {
	t := &Table{Columns: make([]Column, 0, len(r.columns))}
	for i, c := range r.columns {
		values, err := r.ReadColumn(i)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, Column{Name: c.Name, Type: c.Type, Values: values})
	}
	return t, nil
}

// ReadAvailable reads every column whose type is registered. Columns with an
// unsupported type are left out of the table and reported individually;
// any other error, such as ErrTruncated, fails the whole read.
func (r *Reader) ReadAvailable() (*Table, []*ColumnError, error) {
	t := &Table{Columns: make([]Column, 0, len(r.columns))}
	var skipped []*ColumnError
	for i, c := range r.columns {
		values, err := r.ReadColumn(i)
		if err != nil {
			var colErr *ColumnError
			if errors.Is(err, ErrUnsupportedType) && errors.As(err, &colErr) {
				r.log.Debug().Int("column", i).Str("name", c.Name).Stringer("type", c.Type).Msg("skipping unsupported column")
				skipped = append(skipped, colErr)
				continue
			}
			return nil, skipped, err
		}
		t.Columns = append(t.Columns, Column{Name: c.Name, Type: c.Type, Values: values})
	}
	return t, skipped, nil
}

// Decode strictly decodes an in-memory container.
func Decode(b []byte) (*Table, error) {
	r, err := NewReader(context.Background(), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return r.ReadTable()
}
