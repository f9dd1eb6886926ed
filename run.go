package s3ship

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/treelineops/s3ship/internal/digest"
	"github.com/treelineops/s3ship/internal/discover"
	"github.com/treelineops/s3ship/internal/keys"
	"github.com/treelineops/s3ship/internal/limit"
	"github.com/treelineops/s3ship/internal/run"
	"github.com/treelineops/s3ship/internal/sequence"
	"github.com/treelineops/s3ship/internal/store"
	"github.com/treelineops/s3ship/internal/validation"
	"github.com/treelineops/s3ship/shiptypes"
)

// Run uploads files discovered under root to bucket.
//
// The run walks root, filters and orders the candidates, then admits
// each one against the configured budgets before hashing and
// transferring it. Per-file read and transfer failures are recorded in
// the result and do not abort the run; only invalid configuration, a
// missing root or a failed bucket check return an error before any
// upload.
//
// Example:
//
//	result, err := client.Run(ctx, "/var/exports", "backup-bucket",
//	    s3ship.WithKeyMode(s3ship.KeyModeHierarchical),
//	    s3ship.WithMaxBytes(1<<30),
//	    s3ship.WithParallelism(4),
//	)
func (c *Client) Run(
	ctx context.Context,
	root, bucket string,
	opts ...shiptypes.RunOption,
) (*shiptypes.RunResult, error) {
	start := time.Now()

	cfg := &shiptypes.RunOptionConfig{
		KeyMode:     shiptypes.KeyModeFlat,
		Order:       shiptypes.OrderSequential,
		Parallelism: 1,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateRunConfig(cfg); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	filesystem := c.filesystem()
	putter := store.New(c.s3Client, filesystem)

	if cfg.CheckBucket {
		if err := putter.BucketExists(ctx, bucket); err != nil {
			return nil, err
		}
	}

	// The wall-clock budget is measured from here, before discovery.
	gate := limit.NewGate(cfg.MaxFiles, cfg.MaxBytes, cfg.MaxDuration, nil)

	discoverer := discover.New(filesystem, cfg.IncludePatterns, cfg.ExcludePatterns)
	files, warnings, err := discoverer.Discover(ctx, root)
	if err != nil {
		return nil, err
	}

	logger.Info("run starting",
		zap.String("root", root),
		zap.String("bucket", bucket),
		zap.Int("candidates", len(files)),
		zap.Int("warnings", len(warnings)))

	ordered := sequence.Order(files, cfg.Order, cfg.Seed)

	builder := keys.Builder{Mode: cfg.KeyMode, Prefix: cfg.Prefix}
	engine := run.NewEngine(run.Config{
		Hasher:      digest.New(filesystem),
		Putter:      putter,
		Gate:        gate,
		KeyFor:      builder.Key,
		Parallelism: cfg.Parallelism,
		Progress:    cfg.Progress,
		Logger:      logger,
	})

	outcomes, stop := engine.Execute(ctx, bucket, ordered)

	failed := 0
	for _, o := range outcomes {
		if o.Status == shiptypes.OutcomeFailed {
			failed++
		}
	}

	result := &shiptypes.RunResult{
		RunID:         runID,
		FilesUploaded: int(gate.FilesCommitted()),
		BytesUploaded: gate.BytesCommitted(),
		FilesFailed:   failed,
		Outcomes:      outcomes,
		Warnings:      warnings,
		StopReason:    stop,
		Duration:      time.Since(start),
	}

	logger.Info("run finished",
		zap.Int("files_uploaded", result.FilesUploaded),
		zap.Int64("bytes_uploaded", result.BytesUploaded),
		zap.Int("files_failed", result.FilesFailed),
		zap.String("stop_reason", string(result.StopReason)),
		zap.Duration("duration", result.Duration))

	return result, nil
}
