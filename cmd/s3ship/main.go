// Package main provides the s3ship CLI entrypoint.
//
// s3ship uploads a bounded snapshot of a local directory tree to an S3
// bucket, attaching each file's SHA-256 digest and original path as
// object metadata.
//
// Usage:
//
//	s3ship -d /var/exports -b backup-bucket [-l N] [-s BYTES] [-t SECONDS]
//
// Exit codes:
//   - 0: run completed (per-file failures are reported, not fatal)
//   - 1: fatal error before any upload (bad configuration, missing root,
//     bucket check failed)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/treelineops/s3ship"
	"github.com/treelineops/s3ship/shiptypes"
)

// version and commit are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	app := &cli.App{
		Name:           "s3ship",
		Usage:          "upload a bounded snapshot of a directory tree to S3",
		Version:        fmt.Sprintf("%s (commit: %s)", version, commit),
		ExitErrHandler: exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "directory", Aliases: []string{"d"}, Usage: "upload root directory"},
			&cli.StringFlag{Name: "bucket", Aliases: []string{"b"}, Usage: "destination bucket"},
			&cli.StringFlag{Name: "prefix", Usage: "key prefix for every uploaded object"},
			&cli.Int64Flag{Name: "max-files", Aliases: []string{"l"}, Usage: "stop after uploading N files"},
			&cli.Int64Flag{Name: "max-bytes", Aliases: []string{"s"}, Usage: "stop before exceeding N cumulative bytes"},
			&cli.Int64Flag{Name: "max-duration", Aliases: []string{"t"}, Usage: "stop admitting files after N seconds"},
			&cli.BoolFlag{
				Name:    "hierarchical",
				Aliases: []string{"f"},
				Usage:   "mirror the directory layout in object keys (default: flat base names)",
			},
			&cli.BoolFlag{Name: "shuffle", Aliases: []string{"r"}, Usage: "upload files in random order"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "skip files matching the pattern (repeatable)"},
			&cli.IntFlag{Name: "parallelism", Usage: "concurrent transfers", Value: 1},
			&cli.StringFlag{Name: "region", Usage: "AWS region"},
			&cli.StringFlag{Name: "endpoint", Usage: "custom S3 endpoint (S3-compatible stores, LocalStack)"},
			&cli.StringFlag{Name: "config", Usage: "YAML configuration file (flags take precedence)"},
			&cli.BoolFlag{Name: "verbose", Usage: "log per-file debug output"},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit() wrapped errors.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// settings is the merged CLI configuration: YAML file values overridden
// by command-line flags.
type settings struct {
	directory   string
	bucket      string
	prefix      string
	maxFiles    *int64
	maxBytes    *int64
	maxSeconds  *int64
	hierarchy   bool
	shuffle     bool
	exclude     []string
	parallelism int
	region      string
	endpoint    string
}

func runAction(cCtx *cli.Context) error {
	cfg, err := mergeSettings(cCtx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if cfg.directory == "" {
		return cli.Exit("a directory is required (-d)", 1)
	}
	if cfg.bucket == "" {
		return cli.Exit("a bucket is required (-b)", 1)
	}

	logger := newLogger(cCtx.Bool("verbose"))
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unactionable

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var clientOpts []shiptypes.Option
	if cfg.region != "" {
		clientOpts = append(clientOpts, s3ship.WithRegion(cfg.region))
	}
	if cfg.endpoint != "" {
		clientOpts = append(clientOpts,
			s3ship.WithEndpoint(cfg.endpoint),
			s3ship.WithForcePathStyle(true))
	}

	client, err := s3ship.New(clientOpts...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	runOpts := []shiptypes.RunOption{
		s3ship.WithRunLogger(logger),
		s3ship.WithParallelism(cfg.parallelism),
		s3ship.WithBucketCheck(),
		s3ship.WithExclude(cfg.exclude...),
	}
	if cfg.prefix != "" {
		runOpts = append(runOpts, s3ship.WithPrefix(cfg.prefix))
	}
	if cfg.hierarchy {
		runOpts = append(runOpts, s3ship.WithKeyMode(shiptypes.KeyModeHierarchical))
	}
	if cfg.shuffle {
		runOpts = append(runOpts, s3ship.WithOrder(shiptypes.OrderShuffled))
	}
	if cfg.maxFiles != nil {
		runOpts = append(runOpts, s3ship.WithMaxFiles(*cfg.maxFiles))
	}
	if cfg.maxBytes != nil {
		runOpts = append(runOpts, s3ship.WithMaxBytes(*cfg.maxBytes))
	}
	if cfg.maxSeconds != nil {
		runOpts = append(runOpts, s3ship.WithMaxDuration(time.Duration(*cfg.maxSeconds)*time.Second))
	}

	result, err := client.Run(ctx, cfg.directory, cfg.bucket, runOpts...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	printSummary(result)
	return nil
}

// mergeSettings resolves the YAML config file and command-line flags,
// flags winning per field.
func mergeSettings(cCtx *cli.Context) (*settings, error) {
	cfg := &settings{parallelism: 1}

	if path := cCtx.String("config"); path != "" {
		file, err := loadFileConfig(path)
		if err != nil {
			return nil, err
		}
		if file.Directory != nil {
			cfg.directory = *file.Directory
		}
		if file.Bucket != nil {
			cfg.bucket = *file.Bucket
		}
		if file.Prefix != nil {
			cfg.prefix = *file.Prefix
		}
		cfg.maxFiles = file.MaxFiles
		cfg.maxBytes = file.MaxBytes
		cfg.maxSeconds = file.MaxSeconds
		if file.Hierarchy != nil {
			cfg.hierarchy = *file.Hierarchy
		}
		if file.Shuffle != nil {
			cfg.shuffle = *file.Shuffle
		}
		cfg.exclude = append(cfg.exclude, file.Exclude...)
		if file.Parallelism != nil {
			cfg.parallelism = *file.Parallelism
		}
		if file.Region != nil {
			cfg.region = *file.Region
		}
		if file.Endpoint != nil {
			cfg.endpoint = *file.Endpoint
		}
	}

	if cCtx.IsSet("directory") {
		cfg.directory = cCtx.String("directory")
	}
	if cCtx.IsSet("bucket") {
		cfg.bucket = cCtx.String("bucket")
	}
	if cCtx.IsSet("prefix") {
		cfg.prefix = cCtx.String("prefix")
	}
	if cCtx.IsSet("max-files") {
		n := cCtx.Int64("max-files")
		cfg.maxFiles = &n
	}
	if cCtx.IsSet("max-bytes") {
		n := cCtx.Int64("max-bytes")
		cfg.maxBytes = &n
	}
	if cCtx.IsSet("max-duration") {
		n := cCtx.Int64("max-duration")
		cfg.maxSeconds = &n
	}
	if cCtx.IsSet("hierarchical") {
		cfg.hierarchy = cCtx.Bool("hierarchical")
	}
	if cCtx.IsSet("shuffle") {
		cfg.shuffle = cCtx.Bool("shuffle")
	}
	if cCtx.IsSet("exclude") {
		cfg.exclude = cCtx.StringSlice("exclude")
	}
	if cCtx.IsSet("parallelism") {
		cfg.parallelism = cCtx.Int("parallelism")
	}
	if cCtx.IsSet("region") {
		cfg.region = cCtx.String("region")
	}
	if cCtx.IsSet("endpoint") {
		cfg.endpoint = cCtx.String("endpoint")
	}

	return cfg, nil
}

// newLogger builds the JSON stderr logger for the run.
func newLogger(verbose bool) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core)
}

// printSummary writes the human-readable run summary to stdout.
func printSummary(result *shiptypes.RunResult) {
	fmt.Printf("run %s: %s\n", result.RunID, result.StopReason)
	fmt.Printf("  uploaded: %d files, %d bytes\n", result.FilesUploaded, result.BytesUploaded)
	if result.FilesFailed > 0 {
		fmt.Printf("  failed:   %d files\n", result.FilesFailed)
		for _, o := range result.Outcomes {
			if o.Status == shiptypes.OutcomeFailed {
				fmt.Printf("    %s: %s\n", o.Path, o.Reason)
			}
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("  warnings: %d unreadable paths skipped\n", len(result.Warnings))
	}
	fmt.Printf("  duration: %s\n", result.Duration.Round(time.Millisecond))
}
