package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/eunmann/ccf/pkg/s3store"
	"github.com/eunmann/ccf/pkg/tableio"
	"github.com/urfave/cli/v3"
)

func regionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "region",
		Usage: "AWS region for s3:// locations",
	}
}

func (a *app) readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Decode a container and print its columns",
		ArgsUsage: "<file|s3://bucket/key>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (text, csv, json)",
				Value:   string(tableio.FormatText),
			},
			&cli.StringSliceFlag{
				Name:    "column",
				Aliases: []string{"c"},
				Usage:   "read only the named column (repeatable)",
			},
			regionFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, s := a.begin(ctx, cmd)
			pos, err := args(cmd, 1)
			if err != nil {
				return err
			}

			format := tableio.Format(cmd.String("format"))
			switch format {
			case tableio.FormatText, tableio.FormatCSV, tableio.FormatJSON:
			default:
				return fmt.Errorf("%w: %s", tableio.ErrUnknownFormat, format)
			}

			path, cleanup, err := a.localPath(ctx, pos[0], s.S3Region)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := ccf.Open(ctx, path)
			if err != nil {
				return err
			}
			defer f.Close()

			t, err := a.readColumns(ctx, f, cmd.StringSlice("column"))
			if err != nil {
				return err
			}

			switch format {
			case tableio.FormatCSV:
				return tableio.WriteCSV(a.out, t)
			case tableio.FormatJSON:
				return tableio.WriteJSON(a.out, f.Header().Version, t)
			default:
				return tableio.WriteText(a.out, t)
			}
		},
	}
}

// readColumns reads the named columns, or every readable column when names
// is empty. Columns of an unsupported type are reported and skipped.
func (a *app) readColumns(ctx context.Context, f *ccf.File, names []string) (*ccf.Table, error) {
	if len(names) > 0 {
		t := &ccf.Table{Columns: make([]ccf.Column, 0, len(names))}
		for _, name := range names {
			i, ok := f.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ccf.ErrColumnNotFound, name)
			}
			values, err := f.ReadColumn(i)
			if err != nil {
				return nil, err
			}
			desc := f.Columns()[i]
			t.Columns = append(t.Columns, ccf.Column{Name: desc.Name, Type: desc.Type, Values: values})
		}
		return t, nil
	}

	t, skipped, err := f.ReadAvailable()
	if err != nil {
		return nil, err
	}
	log := logctx.FromContext(ctx)
	for _, colErr := range skipped {
		log.Warn().Int("column", colErr.Index).Str("name", colErr.Name).Err(colErr.Err).Msg("column skipped")
		fmt.Fprintf(a.errOut, "warning: %v\n", colErr)
	}
	return t, nil
}

// localPath resolves loc to a local file. s3:// locations are downloaded to
// a temporary file that cleanup removes.
func (a *app) localPath(ctx context.Context, loc, region string) (path string, cleanup func(), err error) {
	if !s3store.IsS3URI(loc) {
		return loc, func() {}, nil
	}

	bucket, key, err := s3store.ParseObjectURI(loc)
	if err != nil {
		return "", nil, err
	}
	store, err := a.newS3(ctx, region)
	if err != nil {
		return "", nil, err
	}
	path, err = store.DownloadTemp(ctx, bucket, key)
	if err != nil {
		return "", nil, err
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log := logctx.FromContext(ctx)
			log.Warn().Err(err).Str("path", path).Msg("remove temp file")
		}
	}, nil
}
