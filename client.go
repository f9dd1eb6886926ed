// Package s3ship uploads bounded snapshots of local directory trees to
// Amazon S3.
//
// The Client wraps an AWS S3 client, a filesystem abstraction and the
// run machinery. A single Run walks an upload root, orders the
// discovered files, admits them against optional file, byte and time
// budgets, and transfers each admitted file with its SHA-256 digest
// attached as object metadata.
package s3ship

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/internal/s3api"
	"github.com/treelineops/s3ship/shiptypes"
)

// Client is the entry point for upload runs. It is safe for concurrent
// use; each Run carries its own budgets and state.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.API

	// config holds the AWS configuration
	config aws.Config

	// mu protects concurrent access to client configuration
	mu sync.RWMutex

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem
}

// New creates a new upload client with the provided options.
// It loads AWS credentials using the default credential chain unless
// static credentials or a custom AWS config are supplied.
//
// Example:
//
//	client, err := s3ship.New(
//	    s3ship.WithRegion("us-west-2"),
//	    s3ship.WithEndpoint("http://localhost:4566"),
//	)
func New(opts ...shiptypes.Option) (*Client, error) {
	clientCfg := &shiptypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(
			clientCfg.AccessKeyID,
			clientCfg.SecretAccessKey,
			clientCfg.SessionToken,
		)
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.HTTPTimeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.HTTPTimeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		// Default to OS filesystem rooted at /
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
		fs:       filesystem,
	}, nil
}

// NewWithAPI creates a client backed by a custom S3 API implementation.
// This is primarily used for testing with mocked clients.
func NewWithAPI(s3Client s3api.API) *Client {
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		fs:       billy.NewOSFS("/"),
	}
}

// SetFilesystem sets the filesystem implementation for the client.
// This is useful for testing or when the filesystem needs to be changed after creation.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// filesystem returns the current filesystem abstraction.
func (c *Client) filesystem() fs.Filesystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fs
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	return nil
}
