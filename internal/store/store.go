// Package store performs the per-file transfer to the object store.
//
// Each transfer carries the file's integrity digest and original path as
// object metadata, so the destination object is self-describing without
// any side channel.
package store

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	serrors "github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/internal/s3api"
	"github.com/treelineops/s3ship/shiptypes"
)

// Metadata keys attached to every uploaded object.
const (
	// MetadataDigest holds the lowercase hex SHA-256 of the content
	MetadataDigest = "sha256"

	// MetadataOriginalPath holds the source path relative to the upload root
	MetadataOriginalPath = "original-path"
)

// sniffSize is how many leading bytes are read for content-type detection.
const sniffSize = 512

// Putter writes files to a bucket through the S3 API.
type Putter struct {
	s3Client s3api.API
	fs       fs.Filesystem
}

// New creates a Putter reading file content through the provided
// filesystem.
func New(s3Client s3api.API, filesystem fs.Filesystem) *Putter {
	return &Putter{
		s3Client: s3Client,
		fs:       filesystem,
	}
}

// Put uploads a single file to bucket under key, attaching the digest and
// the root-relative source path as object metadata. Read failures yield ErrFileRead and
// store failures yield ErrTransfer; the caller decides how a failed file
// affects the rest of the run.
func (p *Putter) Put(
	ctx context.Context,
	bucket, key string,
	f shiptypes.FileInfo,
	digest shiptypes.Digest,
	tracker shiptypes.ProgressTracker,
) error {
	file, err := p.fs.Open(f.Path)
	if err != nil {
		return serrors.NewError("put", serrors.ErrFileRead).
			WithPath(f.Path).
			WithMessage(err.Error())
	}
	defer file.Close()

	contentType, err := p.detectContentType(f.Path)
	if err != nil {
		return serrors.NewError("put", serrors.ErrFileRead).
			WithPath(f.Path).
			WithMessage(err.Error())
	}

	var body io.Reader = file
	if tracker != nil {
		body = &progressReader{
			reader:  file,
			total:   f.Size,
			tracker: tracker,
		}
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(f.Size),
		Metadata: map[string]string{
			MetadataDigest:       digest.Hex,
			MetadataOriginalPath: f.RelPath,
		},
	}

	if _, err := p.s3Client.PutObject(ctx, input); err != nil {
		if tracker != nil {
			tracker.Error(err)
		}
		return serrors.NewError("put", serrors.ErrTransfer).
			WithPath(f.Path).
			WithKey(key).
			WithMessage(err.Error())
	}

	if tracker != nil {
		tracker.Update(f.Size, f.Size)
		tracker.Complete()
	}
	return nil
}

// BucketExists checks that the destination bucket exists and is
// accessible with the configured credentials.
func (p *Putter) BucketExists(ctx context.Context, bucket string) error {
	_, err := p.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return serrors.NewError("headBucket", serrors.ErrBucketNotFound).
			WithMessage(err.Error())
	}
	return nil
}

// detectContentType sniffs the file's leading bytes and falls back to the
// extension when the content is ambiguous. mimetype never fails to
// classify; unrecognized content comes back as octet-stream.
func (p *Putter) detectContentType(path string) (string, error) {
	file, err := p.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, sniffSize)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	return mimetype.Detect(buf[:n]).String(), nil
}

// progressReader reports transfer progress as the store consumes the
// body.
type progressReader struct {
	reader  io.Reader
	total   int64
	read    int64
	tracker shiptypes.ProgressTracker
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.read += int64(n)
		r.tracker.Update(r.read, r.total)
	}
	return n, err
}
