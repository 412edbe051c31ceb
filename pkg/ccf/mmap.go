package ccf

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a container opened from disk through a read-only memory mapping.
type File struct {
	*Reader

	path string
	data []byte
	size int64
}

// Open maps the container at path and decodes its header and metadata.
func Open(ctx context.Context, path string) (*File, error) {
	data, size, err := mapFile(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(ctx, bytes.NewReader(data))
	if err != nil {
		unmap(data)
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &File{
		Reader: r,
		path:   path,
		data:   data,
		size:   size,
	}, nil
}

// mapFile maps the whole file read-only. Empty files map to nil.
func mapFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat file: %w", err)
	}

	size := info.Size()
	if size == 0 {
		return nil, 0, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, 0, fmt.Errorf("mmap: %w", err)
	}
	return data, size, nil
}

func unmap(data []byte) error {
	if data == nil {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

// Close releases the memory mapping. The File must not be used afterwards.
func (f *File) Close() error {
	err := unmap(f.data)
	f.data = nil
	return err
}

// Path returns the path the container was opened from.
func (f *File) Path() string {
	return f.path
}

// Size returns the container size in bytes.
func (f *File) Size() int64 {
	return f.size
}
