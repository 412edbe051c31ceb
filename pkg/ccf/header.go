// Package ccf implements the CCF columnar container format.
//
// A container holds a rectangular table: a fixed 12-byte header, a metadata
// table with one descriptor per column, and one fixed-width data block per
// column located by the absolute offset stored in its descriptor. All
// integers are little-endian.
package ccf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic identifies CCF containers.
	Magic = "CCF1"
	// Version is the current format version.
	Version uint16 = 1
)

// HeaderSize is the size of the header in bytes.
const HeaderSize = 4 + 2 + 2 + 4 // 12 bytes

// Limits imposed by the header field widths.
const (
	MaxColumns = 1<<16 - 1
	MaxRows    = 1<<32 - 1
)

// Header is the fixed preamble of a container.
type Header struct {
	Magic   [4]byte
	Version uint16
	NumCols uint16
	NumRows uint32 // Shared by every column
}

// EncodeHeader returns the 12-byte header for a container.
// Callers validate numCols and numRows against the field widths.
func EncodeHeader(version, numCols uint16, numRows uint32) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], version)
	binary.LittleEndian.PutUint16(buf[6:8], numCols)
	binary.LittleEndian.PutUint32(buf[8:12], numRows)
	return buf
}

// DecodeHeader reads a header from r.
//
// The magic is read and checked on its own first: on a mismatch no further
// bytes are consumed from r.
func DecodeHeader(r io.Reader) (Header, error) {
	var h Header
	if err := readFull(r, h.Magic[:]); err != nil {
		return Header{}, fmt.Errorf("read magic: %w", err)
	}
	if !bytes.Equal(h.Magic[:], []byte(Magic)) {
		return Header{}, fmt.Errorf("%w: got %q", ErrMagicMismatch, h.Magic[:])
	}

	var buf [HeaderSize - 4]byte
	if err := readFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("read header fields: %w", err)
	}
	h.Version = binary.LittleEndian.Uint16(buf[0:2])
	h.NumCols = binary.LittleEndian.Uint16(buf[2:4])
	h.NumRows = binary.LittleEndian.Uint32(buf[4:8])
	return h, nil
}

// readFull is io.ReadFull with end-of-input mapped to ErrTruncated.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}
