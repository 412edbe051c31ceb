package cli

import (
	"context"
	"fmt"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/eunmann/ccf/pkg/fileutil"
	"github.com/eunmann/ccf/pkg/humanfmt"
	"github.com/eunmann/ccf/pkg/logging"
	"github.com/eunmann/ccf/pkg/s3store"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func (a *app) pushCmd() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Upload a container (and its manifest, if present) to S3",
		ArgsUsage: "<file> <s3://bucket/key>",
		Flags:     []cli.Flag{regionFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, s := a.begin(ctx, cmd)
			pos, err := args(cmd, 2)
			if err != nil {
				return err
			}
			path := pos[0]
			bucket, key, err := s3store.ParseObjectURI(pos[1])
			if err != nil {
				return err
			}

			// Refuse to upload anything that does not decode as a container.
			f, err := ccf.Open(ctx, path)
			if err != nil {
				return err
			}
			f.Close()

			store, err := a.newS3(ctx, s.S3Region)
			if err != nil {
				return err
			}

			uploads := [][2]string{{path, key}}
			if manifestPath := ccf.ManifestPath(path); fileutil.Exists(manifestPath) {
				uploads = append(uploads, [2]string{manifestPath, key + ccf.ManifestSuffix})
			}

			results := make([]*s3store.TransferResult, len(uploads))
			g, gctx := errgroup.WithContext(ctx)
			for i, u := range uploads {
				g.Go(func() error {
					res, err := store.Upload(gctx, u[0], bucket, u[1])
					results[i] = res
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, u := range uploads {
				a.printTransfer(ctx, s, "pushed", u[0], s3store.FormatS3URI(bucket, u[1]), results[i])
			}
			return nil
		},
	}
}

func (a *app) pullCmd() *cli.Command {
	return &cli.Command{
		Name:      "pull",
		Usage:     "Download a container from S3",
		ArgsUsage: "<s3://bucket/key> <file>",
		Flags: []cli.Flag{
			regionFlag(),
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "also download the manifest and verify the container against it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, s := a.begin(ctx, cmd)
			pos, err := args(cmd, 2)
			if err != nil {
				return err
			}
			bucket, key, err := s3store.ParseObjectURI(pos[0])
			if err != nil {
				return err
			}
			path := pos[1]

			store, err := a.newS3(ctx, s.S3Region)
			if err != nil {
				return err
			}
			res, err := store.Download(ctx, bucket, key, path)
			if err != nil {
				return err
			}
			a.printTransfer(ctx, s, "pulled", s3store.FormatS3URI(bucket, key), path, res)

			f, err := ccf.Open(ctx, path)
			if err != nil {
				return fmt.Errorf("downloaded object is not a container: %w", err)
			}
			f.Close()

			if !cmd.Bool("manifest") {
				return nil
			}
			manifestPath := ccf.ManifestPath(path)
			if _, err := store.Download(ctx, bucket, key+ccf.ManifestSuffix, manifestPath); err != nil {
				return err
			}
			m, err := ccf.ReadManifest(path)
			if err != nil {
				return err
			}
			if err := ccf.VerifyManifest(ctx, path, m); err != nil {
				return err
			}
			log := logctx.FromContext(ctx)
			log.Info().Str("path", path).Msg("manifest verified")
			fmt.Fprintf(a.out, "verified %s against %s\n", path, manifestPath)
			return nil
		},
	}
}

func (a *app) printTransfer(ctx context.Context, s settings, verb, src, dst string, res *s3store.TransferResult) {
	logging.TransferComplete(logctx.FromContext(ctx), res.Duration, s.LogHuman).
		Str("direction", verb).
		Str("src", src).
		Str("dst", dst).
		Bytes("bytes", res.Bytes).
		Throughput(res.Bytes).
		Log("transfer completed")

	fmt.Fprintf(a.out, "%s %s -> %s (%s in %s, %s)\n",
		verb, src, dst,
		humanfmt.Bytes(res.Bytes), humanfmt.Duration(res.Duration),
		humanfmt.Throughput(res.Bytes, res.Duration))
}
