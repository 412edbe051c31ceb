// Package cli implements the ccf command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/ccf"
	"github.com/eunmann/ccf/pkg/fileutil"
	"github.com/eunmann/ccf/pkg/s3store"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// objectStore is the subset of s3store.Client used by the CLI.
type objectStore interface {
	Upload(ctx context.Context, path, bucket, key string) (*s3store.TransferResult, error)
	Download(ctx context.Context, bucket, key, destPath string) (*s3store.TransferResult, error)
	DownloadTemp(ctx context.Context, bucket, key string) (string, error)
}

type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    Config
	newS3  func(ctx context.Context, region string) (objectStore, error)
}

// Run executes the CLI with the given arguments, excluding the program name.
func Run(ctx context.Context, args []string) error {
	a := &app{out: os.Stdout, errOut: os.Stderr, newS3: newS3Client}
	return a.command().Run(ctx, append([]string{"ccf"}, args...))
}

func newS3Client(ctx context.Context, region string) (objectStore, error) {
	return s3store.NewClient(ctx, region, s3store.TransferConfig{})
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "ccf",
		Usage:     "write, read and inspect CCF columnar container files",
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to YAML config file",
				Value: DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "log-human",
				Usage: "human-readable console logs instead of JSON",
			},
		},
		Before: a.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 {
				return fmt.Errorf("unknown command: %s", cmd.Args().First())
			}
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			a.writeCmd(),
			a.exampleCmd(),
			a.readCmd(),
			a.inspectCmd(),
			a.verifyCmd(),
			a.pushCmd(),
			a.pullCmd(),
		},
	}
}

// before loads the config file and installs the run logger.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if cmd.IsSet("config") && !fileutil.Exists(path) {
		return ctx, fmt.Errorf("config file %s does not exist", path)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg

	s := resolve(cmd, cfg)
	level, err := logctx.ParseLevel(s.LogLevel)
	if err != nil {
		return ctx, err
	}
	logger := logctx.NewConfiguredLogger(a.errOut, level, s.LogHuman).
		With().
		Str("run_id", uuid.NewString()).
		Logger()
	return logctx.WithLogger(ctx, logger), nil
}

// begin tags the context logger with the command name and resolves settings.
func (a *app) begin(ctx context.Context, cmd *cli.Command) (context.Context, settings) {
	ctx = logctx.WithStr(ctx, "command", cmd.Name)
	return ctx, resolve(cmd, a.cfg)
}

// args returns the positional arguments, which must number exactly n.
func args(cmd *cli.Command, n int) ([]string, error) {
	if cmd.NArg() != n {
		return nil, fmt.Errorf("usage: ccf %s %s", cmd.Name, cmd.ArgsUsage)
	}
	return cmd.Args().Slice(), nil
}

// exampleTable is the two-column age/salary table written by "ccf example".
func exampleTable() *ccf.Table {
	return &ccf.Table{Columns: []ccf.Column{
		{Name: "age", Type: ccf.TypeInt32, Values: []int32{10, 20, 30}},
		{Name: "salary", Type: ccf.TypeInt32, Values: []int32{5000, 6000, 7000}},
	}}
}
