package ccf

import (
	"fmt"
	"io"
)

// WriteColumn writes values as the data block for a column of type typ.
// The sink must already be positioned at the block's start.
func WriteColumn(w io.Writer, typ TypeTag, values []int32) error {
	info, err := LookupType(typ)
	if err != nil {
		return err
	}

	buf := make([]byte, len(values)*info.Width)
	info.encode(buf, values)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write %s block: %w", info.Name, err)
	}
	return nil
}

// ReadColumn seeks to offset and reads numRows values of type typ.
// Each call seeks again, so a column can be re-read at any time. The block
// must lie entirely within the source; nothing is allocated for a block
// that runs past its end.
func ReadColumn(rs io.ReadSeeker, typ TypeTag, numRows uint32, offset uint64) ([]int32, error) {
	info, err := LookupType(typ)
	if err != nil {
		return nil, err
	}

	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("find source end: %w", err)
	}
	need := uint64(numRows) * uint64(info.Width)
	if offset > uint64(end) || need > uint64(end)-offset {
		return nil, fmt.Errorf("read %s block of %d rows: %w: need %d bytes at %d, source has %d",
			info.Name, numRows, ErrTruncated, need, offset, end)
	}
	if _, err := rs.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to block %d: %w", offset, err)
	}

	buf := make([]byte, need)
	if err := readFull(rs, buf); err != nil {
		return nil, fmt.Errorf("read %s block of %d rows: %w", info.Name, numRows, err)
	}

	values := make([]int32, numRows)
	info.decode(values, buf)
	return values, nil
}

// BlockSize returns the encoded size of a data block.
func BlockSize(typ TypeTag, numRows int) (int64, error) {
	info, err := LookupType(typ)
	if err != nil {
		return 0, err
	}
	return int64(numRows) * int64(info.Width), nil
}
