package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/eunmann/ccf/pkg/fileutil"
	"github.com/eunmann/ccf/pkg/humanfmt"
	"github.com/urfave/cli/v3"
)

func (a *app) inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header and column descriptors of a container",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, _ = a.begin(ctx, cmd)
			pos, err := args(cmd, 1)
			if err != nil {
				return err
			}

			f, err := ccf.Open(ctx, pos[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a.printMetadata(f)
			return nil
		},
	}
}

func (a *app) printMetadata(f *ccf.File) {
	h := f.Header()
	fmt.Fprintf(a.out, "file:      %s (%s)\n", f.Path(), humanfmt.Bytes(f.Size()))
	fmt.Fprintf(a.out, "magic:     %s\n", h.Magic[:])
	fmt.Fprintf(a.out, "version:   %d\n", h.Version)
	fmt.Fprintf(a.out, "columns:   %d\n", h.NumCols)
	fmt.Fprintf(a.out, "rows:      %d\n", h.NumRows)
	fmt.Fprintf(a.out, "metadata:  %d-%d\n", ccf.HeaderSize, f.MetadataEnd())

	cols := f.Columns()
	if len(cols) == 0 {
		return
	}

	nameWidth := len("name")
	for _, c := range cols {
		nameWidth = max(nameWidth, len(c.Name))
	}
	fmt.Fprintf(a.out, "\n%-5s %-*s %-12s %10s %12s\n", "#", nameWidth, "name", "type", "offset", "size")
	for i, c := range cols {
		size := "-"
		if n, err := ccf.BlockSize(c.Type, int(h.NumRows)); err == nil {
			size = humanfmt.Bytes(n)
		}
		fmt.Fprintf(a.out, "%-5d %-*s %-12s %10d %12s\n", i, nameWidth, c.Name, c.Type, c.Offset, size)
	}
}

func (a *app) verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Decode every column and check the sidecar manifest if present",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "format-version",
				Usage: "expected format version",
				Value: uint(ccf.Version),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, s := a.begin(ctx, cmd)
			pos, err := args(cmd, 1)
			if err != nil {
				return err
			}
			return a.verify(ctx, pos[0], s.FormatVersion)
		},
	}
}

// errVersionMismatch indicates a container whose header version differs from
// the expected one.
var errVersionMismatch = errors.New("format version mismatch")

func (a *app) verify(ctx context.Context, path string, wantVersion uint16) error {
	log := logctx.FromContext(ctx)

	f, err := ccf.Open(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := f.Header()
	if h.Version != wantVersion {
		return fmt.Errorf("%w: %s has version %d, want %d", errVersionMismatch, path, h.Version, wantVersion)
	}
	if _, err := f.ReadTable(); err != nil {
		return err
	}

	status := "no manifest"
	if manifestPath := ccf.ManifestPath(path); fileutil.Exists(manifestPath) {
		m, err := ccf.ReadManifest(path)
		if err != nil {
			return err
		}
		if err := ccf.VerifyManifest(ctx, path, m); err != nil {
			return err
		}
		status = "manifest ok"
	}

	log.Info().Str("path", path).Str("status", status).Msg("container verified")
	fmt.Fprintf(a.out, "ok: %s (%d columns, %d rows, %s)\n", path, h.NumCols, h.NumRows, status)
	return nil
}
