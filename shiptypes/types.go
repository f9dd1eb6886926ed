// Package shiptypes provides shared type definitions for the s3ship module.
package shiptypes

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"
)

// KeyMode controls how object keys are derived from local file paths.
type KeyMode string

// Predefined key derivation modes
const (
	// KeyModeFlat uses only the base filename as the object key.
	// Two source files sharing a base name map to the same key; collisions
	// are not detected and the last write wins at the store.
	KeyModeFlat KeyMode = "flat"

	// KeyModeHierarchical mirrors the local directory layout: the key is the
	// path relative to the upload root with '/' separators.
	KeyModeHierarchical KeyMode = "hierarchical"
)

// OrderMode controls the order in which discovered files are uploaded.
type OrderMode string

// Predefined upload orders
const (
	// OrderSequential preserves discovery order (deterministic runs).
	OrderSequential OrderMode = "sequential"

	// OrderShuffled uploads files in a uniformly random permutation.
	OrderShuffled OrderMode = "shuffled"
)

// FileInfo describes a regular file discovered under the upload root.
// It is immutable once produced by discovery.
type FileInfo struct {
	// Path is the file path as seen by the filesystem abstraction
	Path string

	// RelPath is the path relative to the upload root, slash-separated
	RelPath string

	// Size is the file size in bytes
	Size int64
}

// Digest is the integrity fingerprint of a file's content. It is attached
// as object metadata at the destination and is never consulted to skip or
// deduplicate uploads.
type Digest struct {
	// Algorithm names the digest function ("sha256")
	Algorithm string

	// Hex is the lowercase hexadecimal digest of the file content
	Hex string
}

// Limit is an optional upper bound on a count dimension. The zero value is
// unbounded; a bound of zero is a genuine empty budget, not "no limit".
type Limit struct {
	bounded bool
	n       int64
}

// Unbounded returns a Limit that never trips.
func Unbounded() Limit { return Limit{} }

// BoundedAt returns a Limit capped at n.
func BoundedAt(n int64) Limit { return Limit{bounded: true, n: n} }

// Bounded reports whether the limit is set.
func (l Limit) Bounded() bool { return l.bounded }

// Value returns the bound. Only meaningful when Bounded is true.
func (l Limit) Value() int64 { return l.n }

// DurationLimit is an optional upper bound on elapsed wall-clock time.
// The zero value is unbounded.
//
// Elapsed time is evaluated when a file is admitted, not while it
// transfers, so a slow in-flight upload can overrun the deadline by its
// own duration. This coarseness is a documented boundary behavior.
type DurationLimit struct {
	bounded bool
	d       time.Duration
}

// UnboundedDuration returns a DurationLimit that never trips.
func UnboundedDuration() DurationLimit { return DurationLimit{} }

// DurationBoundedAt returns a DurationLimit capped at d.
func DurationBoundedAt(d time.Duration) DurationLimit {
	return DurationLimit{bounded: true, d: d}
}

// Bounded reports whether the limit is set.
func (l DurationLimit) Bounded() bool { return l.bounded }

// Value returns the bound. Only meaningful when Bounded is true.
func (l DurationLimit) Value() time.Duration { return l.d }

// OutcomeStatus classifies the result of processing a single file.
type OutcomeStatus string

// Predefined per-file outcomes
const (
	// OutcomeUploaded indicates the file was transferred successfully
	OutcomeUploaded OutcomeStatus = "uploaded"

	// OutcomeFailed indicates the file was skipped after a read or
	// transfer error; the run continued
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeSkipped indicates the file was refused by the limit gate
	OutcomeSkipped OutcomeStatus = "skipped"
)

// FileOutcome is one entry of the per-file audit log produced by a run.
type FileOutcome struct {
	// Path is the local file path
	Path string

	// Key is the derived object key (empty when the file never reached
	// key derivation)
	Key string

	// Status classifies the outcome
	Status OutcomeStatus

	// Digest is the hex content digest (uploaded files only)
	Digest string

	// Reason explains failed and skipped outcomes
	Reason string

	// Duration is how long hashing and transfer took for this file
	Duration time.Duration
}

// DiscoveryWarning records a subtree that could not be read during
// discovery. Warnings are non-fatal; the affected subtree is skipped.
type DiscoveryWarning struct {
	// Path is the directory or file that could not be read
	Path string

	// Message is the underlying error text
	Message string
}

// StopReason explains why a run stopped admitting files.
type StopReason string

// Predefined stop reasons
const (
	// StopReasonExhausted means every discovered file was considered
	StopReasonExhausted StopReason = "exhausted"

	// StopReasonMaxFiles means the file-count budget tripped
	StopReasonMaxFiles StopReason = "max-files"

	// StopReasonMaxBytes means the byte budget tripped
	StopReasonMaxBytes StopReason = "max-bytes"

	// StopReasonMaxDuration means the wall-clock budget tripped
	StopReasonMaxDuration StopReason = "max-duration"

	// StopReasonCancelled means the run context was cancelled
	StopReasonCancelled StopReason = "cancelled"
)

// RunResult summarizes one upload run. A run always produces a result
// unless configuration validation fails; per-file errors are aggregated
// here rather than aborting the run.
type RunResult struct {
	// RunID uniquely identifies this run in logs and audit trails
	RunID string

	// FilesUploaded is the number of files transferred successfully
	FilesUploaded int

	// BytesUploaded is the total bytes transferred successfully
	BytesUploaded int64

	// FilesFailed is the number of files that errored and were skipped
	FilesFailed int

	// Outcomes is the per-file audit log, in admission order
	Outcomes []FileOutcome

	// Warnings lists unreadable subtrees skipped during discovery
	Warnings []DiscoveryWarning

	// StopReason explains why the run stopped admitting files
	StopReason StopReason

	// Duration is the wall-clock length of the run
	Duration time.Duration
}

// ProgressTracker receives transfer progress callbacks.
// Implementations must be safe for concurrent use when the run is
// configured with parallelism greater than one.
type ProgressTracker interface {
	// Update is called periodically while a file transfers
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when a file finishes transferring
	Complete()

	// Error is called when a transfer fails
	Error(err error)
}

// Configuration types for functional options

// ClientConfig holds configuration for the upload client.
type ClientConfig struct {
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	HTTPTimeout     time.Duration
	CustomAWSConfig *aws.Config
	Filesystem      fs.Filesystem // Filesystem abstraction for file operations
}

// RunOptionConfig holds configuration for a single upload run via
// functional options.
type RunOptionConfig struct {
	KeyMode         KeyMode
	Prefix          string
	Order           OrderMode
	Seed            *int64
	MaxFiles        Limit
	MaxBytes        Limit
	MaxDuration     DurationLimit
	IncludePatterns []string
	ExcludePatterns []string
	Parallelism     int
	CheckBucket     bool
	Progress        ProgressTracker
	Logger          *zap.Logger
}

// Option is a functional option for configuring the upload client.
type (
	Option func(*ClientConfig)
	// RunOption is a functional option for configuring a single run.
	RunOption func(*RunOptionConfig)
)
