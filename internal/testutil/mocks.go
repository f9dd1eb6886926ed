// Package testutil provides test utilities and mocks for upload runs.
// This package is internal and should only be used for testing within this module.
package testutil

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/treelineops/s3ship/internal/s3api"
)

// MockS3Client is a mock implementation of the s3api.API interface for
// testing. Each operation can be customized through function fields.
type MockS3Client struct {
	PutObjectFunc  func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObjectFunc func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucketFunc func(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// HeadObject mocks the S3 HeadObject operation.
func (m *MockS3Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.HeadObjectFunc != nil {
		return m.HeadObjectFunc(ctx, params, optFns...)
	}
	return &s3.HeadObjectOutput{}, nil
}

// HeadBucket mocks the S3 HeadBucket operation.
func (m *MockS3Client) HeadBucket(
	ctx context.Context,
	params *s3.HeadBucketInput,
	optFns ...func(*s3.Options),
) (*s3.HeadBucketOutput, error) {
	if m.HeadBucketFunc != nil {
		return m.HeadBucketFunc(ctx, params, optFns...)
	}
	return &s3.HeadBucketOutput{}, nil
}

// Verify that the mock implements the interface
var _ s3api.API = (*MockS3Client)(nil)

// RecordingS3Client wraps a MockS3Client and records every PutObject
// input it receives, safe for concurrent use.
type RecordingS3Client struct {
	MockS3Client

	mu   sync.Mutex
	puts []*s3.PutObjectInput
}

// PutObject records the input before delegating to the mock.
func (r *RecordingS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	r.mu.Lock()
	r.puts = append(r.puts, params)
	r.mu.Unlock()
	return r.MockS3Client.PutObject(ctx, params, optFns...)
}

// Puts returns a snapshot of the recorded PutObject inputs.
func (r *RecordingS3Client) Puts() []*s3.PutObjectInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*s3.PutObjectInput, len(r.puts))
	copy(out, r.puts)
	return out
}
