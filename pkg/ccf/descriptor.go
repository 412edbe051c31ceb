package ccf

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxNameLen is the longest column name, in encoded bytes.
const MaxNameLen = 255

// offsetFieldSize is the width of the descriptor offset field.
const offsetFieldSize = 8

// ColumnDescriptor is the metadata record for one column.
type ColumnDescriptor struct {
	Type   TypeTag
	Name   string
	Offset uint64 // Absolute start of the column's data block
}

// DescriptorSize returns the encoded size of a descriptor for name.
func DescriptorSize(name string) int {
	return 1 + 1 + len(name) + offsetFieldSize
}

// offsetFieldDelta returns the position of the offset field relative to the
// start of the descriptor.
func offsetFieldDelta(name string) int {
	return 1 + 1 + len(name)
}

// validateName checks that name can be stored in a descriptor.
func validateName(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrNameTooLong, len(name), MaxNameLen)
	}
	if !utf8.ValidString(name) {
		return ErrInvalidUTF8
	}
	return nil
}

// EncodeDescriptor returns the descriptor bytes for a column with a zero
// offset placeholder, and the position of the offset field within those
// bytes. Add fieldPos to the descriptor's start in the sink to get the
// position PatchOffset expects.
func EncodeDescriptor(typ TypeTag, name string) (buf []byte, fieldPos int, err error) {
	if err := validateName(name); err != nil {
		return nil, 0, err
	}
	return appendDescriptor(make([]byte, 0, DescriptorSize(name)), typ, name, 0), offsetFieldDelta(name), nil
}

// appendDescriptor appends an encoded descriptor to dst. The name must
// already be validated.
func appendDescriptor(dst []byte, typ TypeTag, name string, offset uint64) []byte {
	dst = append(dst, byte(typ), byte(len(name)))
	dst = append(dst, name...)
	return binary.LittleEndian.AppendUint64(dst, offset)
}

// PatchOffset writes offset into the 8-byte field at fieldPos and restores
// the sink's write position.
func PatchOffset(ws io.WriteSeeker, fieldPos int64, offset uint64) error {
	cur, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}
	if _, err := ws.Seek(fieldPos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to offset field %d: %w", fieldPos, err)
	}

	var buf [offsetFieldSize]byte
	binary.LittleEndian.PutUint64(buf[:], offset)
	if _, err := ws.Write(buf[:]); err != nil {
		return fmt.Errorf("write offset: %w", err)
	}

	if _, err := ws.Seek(cur, io.SeekStart); err != nil {
		return fmt.Errorf("restore position %d: %w", cur, err)
	}
	return nil
}

// DecodeDescriptor reads one descriptor from r.
func DecodeDescriptor(r io.Reader) (ColumnDescriptor, error) {
	var prefix [2]byte
	if err := readFull(r, prefix[:]); err != nil {
		return ColumnDescriptor{}, fmt.Errorf("read type and name length: %w", err)
	}

	name := make([]byte, prefix[1])
	if err := readFull(r, name); err != nil {
		return ColumnDescriptor{}, fmt.Errorf("read name: %w", err)
	}
	if !utf8.Valid(name) {
		return ColumnDescriptor{}, ErrInvalidUTF8
	}

	var off [offsetFieldSize]byte
	if err := readFull(r, off[:]); err != nil {
		return ColumnDescriptor{}, fmt.Errorf("read offset: %w", err)
	}

	return ColumnDescriptor{
		Type:   TypeTag(prefix[0]),
		Name:   string(name),
		Offset: binary.LittleEndian.Uint64(off[:]),
	}, nil
}

// decodeMetadata reads numCols descriptors in file order.
func decodeMetadata(r io.Reader, numCols uint16) ([]ColumnDescriptor, error) {
	cols := make([]ColumnDescriptor, 0, numCols)
	for i := 0; i < int(numCols); i++ {
		d, err := DecodeDescriptor(r)
		if err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
		cols = append(cols, d)
	}
	return cols, nil
}
