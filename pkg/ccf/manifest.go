package ccf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// ManifestSuffix is appended to a container path to name its manifest.
const ManifestSuffix = ".manifest.json"

// Manifest is a sidecar record of a finished container. The container format
// carries no completion marker of its own; a matching manifest shows that
// the file was written through to the end and has not changed since.
type Manifest struct {
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	File          string           `json:"file"`
	Size          int64            `json:"size"`
	Checksum      string           `json:"checksum"` // SHA-256 hex
	FormatVersion uint16           `json:"format_version"`
	NumCols       uint16           `json:"num_cols"`
	NumRows       uint32           `json:"num_rows"`
	Columns       []ManifestColumn `json:"columns"`
}

// ManifestColumn describes one column in a manifest.
type ManifestColumn struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Offset uint64 `json:"offset"`
}

// ManifestPath returns the manifest path for the container at path.
func ManifestPath(path string) string {
	return path + ManifestSuffix
}

// WriteManifest decodes the container metadata at path, checksums the file,
// and writes the manifest next to it.
func WriteManifest(ctx context.Context, path string) (*Manifest, error) {
	m, err := buildManifest(ctx, path)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFileSync(ManifestPath(path), data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

func buildManifest(ctx context.Context, path string) (*Manifest, error) {
	f, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	checksum, err := checksumFile(path)
	if err != nil {
		return nil, fmt.Errorf("checksum %s: %w", path, err)
	}

	h := f.Header()
	m := &Manifest{
		Version:       ManifestVersion,
		CreatedAt:     time.Now().UTC(),
		File:          filepath.Base(path),
		Size:          f.Size(),
		Checksum:      checksum,
		FormatVersion: h.Version,
		NumCols:       h.NumCols,
		NumRows:       h.NumRows,
		Columns:       make([]ManifestColumn, 0, len(f.Columns())),
	}
	for _, c := range f.Columns() {
		m.Columns = append(m.Columns, ManifestColumn{Name: c.Name, Type: c.Type.String(), Offset: c.Offset})
	}
	return m, nil
}

// ReadManifest reads the manifest of the container at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(ManifestPath(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// VerifyManifest checks the container at path against m.
func VerifyManifest(ctx context.Context, path string, m *Manifest) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file %s: %w", path, err)
	}
	if stat.Size() != m.Size {
		return fmt.Errorf("file %s: size mismatch (got %d, want %d)", path, stat.Size(), m.Size)
	}

	checksum, err := checksumFile(path)
	if err != nil {
		return fmt.Errorf("checksum %s: %w", path, err)
	}
	if checksum != m.Checksum {
		return fmt.Errorf("file %s: checksum mismatch", path)
	}

	f, err := Open(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := f.Header()
	if h.Version != m.FormatVersion || h.NumCols != m.NumCols || h.NumRows != m.NumRows {
		return fmt.Errorf("file %s: header mismatch (got v%d %dx%d, want v%d %dx%d)",
			path, h.Version, h.NumCols, h.NumRows, m.FormatVersion, m.NumCols, m.NumRows)
	}
	return nil
}

// checksumFile computes the SHA-256 checksum of a file.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeFileSync writes data to a file and fsyncs it.
func writeFileSync(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
