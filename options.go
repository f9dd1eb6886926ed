// Functional options for client construction and per-run configuration.
package s3ship

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"

	"github.com/treelineops/s3ship/shiptypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithStaticCredentials sets static AWS credentials, bypassing the
// default credential chain. The session token may be empty.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
		c.SessionToken = sessionToken
	}
}

// WithHTTPTimeout sets the timeout for individual S3 requests.
// Default is no timeout.
func WithHTTPTimeout(timeout time.Duration) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.HTTPTimeout = timeout
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets a custom filesystem implementation for file operations.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) shiptypes.Option {
	return func(c *shiptypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithKeyMode selects flat or hierarchical object key derivation.
// Default is flat.
func WithKeyMode(mode shiptypes.KeyMode) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.KeyMode = mode
	}
}

// WithPrefix prepends a key prefix to every uploaded object.
func WithPrefix(prefix string) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.Prefix = prefix
	}
}

// WithOrder selects the upload order. Default is sequential.
func WithOrder(order shiptypes.OrderMode) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.Order = order
	}
}

// WithShuffleSeed fixes the shuffle permutation for reproducible runs.
// Only meaningful together with OrderShuffled.
func WithShuffleSeed(seed int64) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.Seed = &seed
	}
}

// WithMaxFiles bounds the number of files uploaded in one run.
// A bound of zero uploads nothing.
func WithMaxFiles(n int64) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.MaxFiles = shiptypes.BoundedAt(n)
	}
}

// WithMaxBytes bounds the cumulative bytes uploaded in one run.
// A file whose size would push the total past the bound is refused and
// the run stops admitting.
func WithMaxBytes(n int64) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.MaxBytes = shiptypes.BoundedAt(n)
	}
}

// WithMaxDuration bounds the wall-clock length of one run. The bound is
// checked when a file is admitted, so an in-flight upload can overrun
// the deadline by its own duration.
func WithMaxDuration(d time.Duration) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.MaxDuration = shiptypes.DurationBoundedAt(d)
	}
}

// WithInclude restricts the run to files matching at least one pattern.
func WithInclude(patterns ...string) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
	}
}

// WithExclude skips files matching any pattern. Excludes take
// precedence over includes. A bare pattern such as ".DS_Store" matches
// the filename at any depth.
func WithExclude(patterns ...string) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	}
}

// WithParallelism sets the number of concurrent transfers. Default is 1.
func WithParallelism(n int) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		if n > 0 {
			c.Parallelism = n
		}
	}
}

// WithBucketCheck verifies that the destination bucket exists before
// any file is uploaded.
func WithBucketCheck() shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.CheckBucket = true
	}
}

// WithProgress sets a progress tracker that receives per-file transfer
// callbacks.
func WithProgress(tracker shiptypes.ProgressTracker) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.Progress = tracker
	}
}

// WithRunLogger sets the structured logger for the run. Default is a
// no-op logger.
func WithRunLogger(logger *zap.Logger) shiptypes.RunOption {
	return func(c *shiptypes.RunOptionConfig) {
		c.Logger = logger
	}
}
