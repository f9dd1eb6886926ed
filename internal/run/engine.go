// Package run drives a single upload run.
//
// A run takes the ordered candidate list and pushes each file through
// admission, hashing and transfer. Admission is serialized in the
// dispatcher while hashing and transfer fan out across a bounded worker
// pool, so budgets are enforced exactly even with concurrent uploads.
package run

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/treelineops/s3ship/internal/limit"
	"github.com/treelineops/s3ship/shiptypes"
)

// Hasher computes the integrity digest of a candidate file.
type Hasher interface {
	Sum(f shiptypes.FileInfo) (shiptypes.Digest, error)
}

// Putter transfers a single file to the destination bucket.
type Putter interface {
	Put(
		ctx context.Context,
		bucket, key string,
		f shiptypes.FileInfo,
		digest shiptypes.Digest,
		tracker shiptypes.ProgressTracker,
	) error
}

// KeyFunc derives the object key for a candidate file.
type KeyFunc func(f shiptypes.FileInfo) string

// Engine executes one upload run over an ordered candidate list.
type Engine struct {
	hasher Hasher
	putter Putter
	gate   *limit.Gate
	keyFor KeyFunc

	// Concurrency control
	parallelism int
	semaphore   chan struct{}

	progress shiptypes.ProgressTracker
	logger   *zap.Logger
}

// Config holds the collaborators for one run.
type Config struct {
	Hasher      Hasher
	Putter      Putter
	Gate        *limit.Gate
	KeyFor      KeyFunc
	Parallelism int
	Progress    shiptypes.ProgressTracker
	Logger      *zap.Logger
}

// NewEngine creates an engine for one run.
func NewEngine(cfg Config) *Engine {
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		hasher:      cfg.Hasher,
		putter:      cfg.Putter,
		gate:        cfg.Gate,
		keyFor:      cfg.KeyFor,
		parallelism: parallelism,
		semaphore:   make(chan struct{}, parallelism),
		progress:    cfg.Progress,
		logger:      logger,
	}
}

// Execute processes the candidate list in order. The dispatcher takes a
// worker slot before consulting the gate, so a candidate is admitted
// only when fewer than parallelism files are in flight; at parallelism 1
// every earlier file has settled (committed or released) before the next
// admission decision. Once the gate refuses a candidate, that file and
// every later one is recorded as skipped and no further admissions
// happen.
//
// A file that fails to hash or transfer is recorded as failed, its
// reserved budget is returned, and the run continues with the next
// candidate. Cancellation stops new admissions; in-flight transfers are
// abandoned by the store call observing the context.
func (e *Engine) Execute(
	ctx context.Context,
	bucket string,
	files []shiptypes.FileInfo,
) ([]shiptypes.FileOutcome, shiptypes.StopReason) {
	outcomes := make([]shiptypes.FileOutcome, len(files))
	stop := shiptypes.StopReasonExhausted

	var wg sync.WaitGroup

dispatch:
	for i, f := range files {
		select {
		case <-ctx.Done():
			stop = shiptypes.StopReasonCancelled
			e.markSkipped(outcomes, files, i, "run cancelled")
			break dispatch
		default:
		}

		select {
		case e.semaphore <- struct{}{}:
		case <-ctx.Done():
			stop = shiptypes.StopReasonCancelled
			e.markSkipped(outcomes, files, i, "run cancelled")
			break dispatch
		}

		admitted, dim := e.gate.Admit(f.Size)
		if !admitted {
			<-e.semaphore
			stop = stopReasonFor(dim)
			e.markSkipped(outcomes, files, i, "budget limit reached: "+string(dim))
			break dispatch
		}

		wg.Add(1)
		go func(i int, f shiptypes.FileInfo) {
			defer func() {
				<-e.semaphore
				wg.Done()
			}()
			outcomes[i] = e.transfer(ctx, bucket, f)
		}(i, f)
	}

	wg.Wait()
	return outcomes, stop
}

// transfer hashes and uploads one admitted file, settling its budget
// reservation.
func (e *Engine) transfer(ctx context.Context, bucket string, f shiptypes.FileInfo) shiptypes.FileOutcome {
	start := time.Now()
	key := e.keyFor(f)

	digest, err := e.hasher.Sum(f)
	if err != nil {
		e.gate.Release(f.Size)
		e.logger.Warn("hash failed",
			zap.String("path", f.Path),
			zap.Error(err))
		return shiptypes.FileOutcome{
			Path:     f.Path,
			Key:      key,
			Status:   shiptypes.OutcomeFailed,
			Reason:   err.Error(),
			Duration: time.Since(start),
		}
	}

	if err := e.putter.Put(ctx, bucket, key, f, digest, e.progress); err != nil {
		e.gate.Release(f.Size)
		e.logger.Warn("upload failed",
			zap.String("path", f.Path),
			zap.String("key", key),
			zap.Error(err))
		return shiptypes.FileOutcome{
			Path:     f.Path,
			Key:      key,
			Status:   shiptypes.OutcomeFailed,
			Digest:   digest.Hex,
			Reason:   err.Error(),
			Duration: time.Since(start),
		}
	}

	e.gate.Commit(f.Size)
	e.logger.Debug("uploaded",
		zap.String("path", f.Path),
		zap.String("key", key),
		zap.Int64("size", f.Size),
		zap.String("sha256", digest.Hex))
	return shiptypes.FileOutcome{
		Path:     f.Path,
		Key:      key,
		Status:   shiptypes.OutcomeUploaded,
		Digest:   digest.Hex,
		Duration: time.Since(start),
	}
}

// markSkipped records skipped outcomes for files[from:].
func (e *Engine) markSkipped(
	outcomes []shiptypes.FileOutcome,
	files []shiptypes.FileInfo,
	from int,
	reason string,
) {
	for i := from; i < len(files); i++ {
		outcomes[i] = shiptypes.FileOutcome{
			Path:   files[i].Path,
			Key:    e.keyFor(files[i]),
			Status: shiptypes.OutcomeSkipped,
			Reason: reason,
		}
	}
}

func stopReasonFor(d limit.Dimension) shiptypes.StopReason {
	switch d {
	case limit.DimensionFiles:
		return shiptypes.StopReasonMaxFiles
	case limit.DimensionBytes:
		return shiptypes.StopReasonMaxBytes
	case limit.DimensionTime:
		return shiptypes.StopReasonMaxDuration
	default:
		return shiptypes.StopReasonExhausted
	}
}
