package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/eunmann/ccf/pkg/humanfmt"
	"github.com/eunmann/ccf/pkg/logging"
	"github.com/eunmann/ccf/pkg/tableio"
	"github.com/urfave/cli/v3"
)

func manifestFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "manifest",
		Usage: "write a .manifest.json sidecar with size and checksum",
	}
}

func (a *app) writeCmd() *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Convert a CSV or Parquet file into a container",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Usage:    "input table (.csv, .csv.gz or .parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "output container path",
				Required: true,
			},
			manifestFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, s := a.begin(ctx, cmd)

			t, err := tableio.ReadFile(cmd.String("in"))
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return a.writeContainer(ctx, cmd.String("out"), t, s)
		},
	}
}

func (a *app) exampleCmd() *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "Write the two-column age/salary example container",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output container path",
				Value:   "example.ccf",
			},
			manifestFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, s := a.begin(ctx, cmd)
			return a.writeContainer(ctx, cmd.String("out"), exampleTable(), s)
		},
	}
}

// writeContainer writes t to path, optionally followed by its manifest.
func (a *app) writeContainer(ctx context.Context, path string, t *ccf.Table, s settings) error {
	log := logctx.FromContext(ctx)
	start := time.Now()

	if err := ccf.WriteFile(ctx, path, t); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	logging.FileWritten(log, time.Since(start), s.LogHuman).
		Str("path", path).
		Int("columns", len(t.Columns)).
		Count("rows", int64(t.NumRows())).
		Bytes("bytes", size).
		Throughput(size).
		Log("container written")

	if s.WriteManifest {
		m, err := ccf.WriteManifest(ctx, path)
		if err != nil {
			return err
		}
		log.Info().Str("path", ccf.ManifestPath(path)).Str("checksum", m.Checksum).Msg("manifest written")
	}

	fmt.Fprintf(a.out, "wrote %s: %d columns, %s rows, %s\n",
		path, len(t.Columns), humanfmt.Count(int64(t.NumRows())), humanfmt.Bytes(size))
	return nil
}
