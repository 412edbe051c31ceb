package ccf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/fileutil"
	"github.com/rs/zerolog"
)

// writeState tracks the progress of a Writer through a single pass.
type writeState int

const (
	stateHeaderWritten writeState = iota
	stateMetadataReserved
	stateDataWritten
	stateOffsetsPatched
	stateDone
	stateFailed
)

func (s writeState) String() string {
	switch s {
	case stateHeaderWritten:
		return "header_written"
	case stateMetadataReserved:
		return "metadata_reserved"
	case stateDataWritten:
		return "data_written"
	case stateOffsetsPatched:
		return "offsets_patched"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// Writer writes a container to a seekable sink in one pass.
//
// NewWriter emits the header and every descriptor with a zero offset
// placeholder. WriteBlock appends data blocks, in any column order, and
// records where each one starts. Close back-patches the recorded offsets
// into the reserved descriptor fields. The sink holds a valid container
// only after Close returns nil; on any error it must be discarded.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	ws      io.WriteSeeker
	log     zerolog.Logger
	specs   []ColumnSpec
	numRows uint32

	fieldPos []int64 // Absolute position of each descriptor's offset field
	blockPos []int64 // Absolute start of each data block, -1 until written
	written  int
	state    writeState
}

// NewWriter validates the schema, then writes the header and the metadata
// table with placeholder offsets.
func NewWriter(ctx context.Context, ws io.WriteSeeker, specs []ColumnSpec, numRows int) (*Writer, error) {
	if err := validateSchema(specs, numRows); err != nil {
		return nil, err
	}

	w := &Writer{
		ws:       ws,
		log:      logctx.FromContext(ctx),
		specs:    specs,
		numRows:  uint32(numRows),
		fieldPos: make([]int64, len(specs)),
		blockPos: make([]int64, len(specs)),
	}
	for i := range w.blockPos {
		w.blockPos[i] = -1
	}

	if _, err := ws.Write(EncodeHeader(Version, uint16(len(specs)), uint32(numRows))); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.state = stateHeaderWritten

	for i, s := range specs {
		pos, err := w.reserve(s)
		if err != nil {
			w.state = stateFailed
			return nil, &ColumnError{Index: i, Name: s.Name, Err: err}
		}
		w.fieldPos[i] = pos
	}
	w.state = stateMetadataReserved

	w.log.Debug().
		Int("columns_count", len(specs)).
		Int("rows_count", numRows).
		Stringer("state", w.state).
		Msg("metadata reserved")
	return w, nil
}

// reserve writes a descriptor with a zero offset and returns the absolute
// position of its offset field.
func (w *Writer) reserve(s ColumnSpec) (int64, error) {
	start, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("get descriptor position: %w", err)
	}
	buf, fieldPos, err := EncodeDescriptor(s.Type, s.Name)
	if err != nil {
		return 0, err
	}
	if _, err := w.ws.Write(buf); err != nil {
		return 0, fmt.Errorf("write descriptor: %w", err)
	}
	return start + int64(fieldPos), nil
}

// WriteBlock appends the data block for column i at the current end of the
// sink. Each column is written exactly once.
func (w *Writer) WriteBlock(i int, values []int32) error {
	if w.state != stateMetadataReserved && w.state != stateDataWritten {
		return fmt.Errorf("%w: write block in state %s", ErrWriterState, w.state)
	}
	if i < 0 || i >= len(w.specs) {
		return fmt.Errorf("%w: column index %d out of range", ErrWriterState, i)
	}
	s := w.specs[i]
	if w.blockPos[i] >= 0 {
		return &ColumnError{Index: i, Name: s.Name, Err: fmt.Errorf("%w: block already written", ErrWriterState)}
	}
	if len(values) != int(w.numRows) {
		return &ColumnError{
			Index: i,
			Name:  s.Name,
			Err:   fmt.Errorf("%w: %d values, want %d", ErrRowCountMismatch, len(values), w.numRows),
		}
	}

	start, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		w.state = stateFailed
		return fmt.Errorf("get block position: %w", err)
	}
	if err := WriteColumn(w.ws, s.Type, values); err != nil {
		w.state = stateFailed
		return &ColumnError{Index: i, Name: s.Name, Err: err}
	}

	w.blockPos[i] = start
	w.written++
	w.state = stateDataWritten

	w.log.Debug().
		Int("column", i).
		Str("name", s.Name).
		Int64("offset", start).
		Msg("data block written")
	return nil
}

// Close back-patches every recorded block offset. The sink is left
// positioned at the end of the last data block.
func (w *Writer) Close() error {
	if w.state == stateDone {
		return nil
	}
	if w.state == stateFailed {
		return fmt.Errorf("%w: writer failed earlier", ErrWriterState)
	}
	if w.written != len(w.specs) {
		w.state = stateFailed
		return fmt.Errorf("%w: %d of %d blocks written", ErrIncompleteWrite, w.written, len(w.specs))
	}

	for i, pos := range w.blockPos {
		if err := PatchOffset(w.ws, w.fieldPos[i], uint64(pos)); err != nil {
			w.state = stateFailed
			return &ColumnError{Index: i, Name: w.specs[i].Name, Err: err}
		}
	}
	w.state = stateOffsetsPatched

	w.log.Debug().
		Int("columns_count", len(w.specs)).
		Stringer("state", w.state).
		Msg("offsets patched")

	w.state = stateDone
	return nil
}

// Offsets returns the data block offsets recorded so far, in column order.
// Unwritten blocks report 0.
func (w *Writer) Offsets() []uint64 {
	offsets := make([]uint64, len(w.blockPos))
	for i, pos := range w.blockPos {
		if pos >= 0 {
			offsets[i] = uint64(pos)
		}
	}
	return offsets
}

// WriteTable writes t to ws: header, metadata, data blocks in column order,
// then the offset patches.
func WriteTable(ctx context.Context, ws io.WriteSeeker, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	w, err := NewWriter(ctx, ws, t.Schema(), t.NumRows())
	if err != nil {
		return err
	}

	for i, c := range t.Columns {
		select {
		case <-ctx.Done():
			return fmt.Errorf("write cancelled: %w", ctx.Err())
		default:
		}
		if err := w.WriteBlock(i, c.Values); err != nil {
			return err
		}
	}

	return w.Close()
}

// WriteFile writes t to path through a temporary file in the same
// directory, so an interrupted write never leaves a partial container at
// path.
func WriteFile(ctx context.Context, path string, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	return fileutil.WriteTmpThenMove(filepath.Dir(path), path, func(tmpPath string) error {
		f, err := os.Create(tmpPath)
		if err != nil {
			return fmt.Errorf("create container: %w", err)
		}
		if err := WriteTable(ctx, f, t); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close container: %w", err)
		}
		return nil
	})
}
