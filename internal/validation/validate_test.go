package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	serrors "github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/shiptypes"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{"valid simple", "my-bucket", false},
		{"valid with dots", "my.bucket.backups", false},
		{"valid with numbers", "bucket123", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", "a123456789012345678901234567890123456789012345678901234567890123", true},
		{"uppercase", "MyBucket", true},
		{"underscore", "my_bucket", true},
		{"leading hyphen", "-bucket", true},
		{"trailing dot", "bucket.", true},
		{"adjacent dots", "my..bucket", true},
		{"adjacent hyphens", "my--bucket", true},
		{"ip address", "192.168.1.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.ErrorIs(t, err, serrors.ErrInvalidBucketName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func validRunConfig() *shiptypes.RunOptionConfig {
	return &shiptypes.RunOptionConfig{
		KeyMode:     shiptypes.KeyModeFlat,
		Order:       shiptypes.OrderSequential,
		Parallelism: 1,
	}
}

func TestValidateRunConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*shiptypes.RunOptionConfig)
		wantErr bool
	}{
		{"valid defaults", func(*shiptypes.RunOptionConfig) {}, false},
		{"hierarchical shuffled", func(c *shiptypes.RunOptionConfig) {
			c.KeyMode = shiptypes.KeyModeHierarchical
			c.Order = shiptypes.OrderShuffled
			c.Parallelism = 8
		}, false},
		{"zero parallelism", func(c *shiptypes.RunOptionConfig) { c.Parallelism = 0 }, true},
		{"negative parallelism", func(c *shiptypes.RunOptionConfig) { c.Parallelism = -1 }, true},
		{"unknown key mode", func(c *shiptypes.RunOptionConfig) { c.KeyMode = "nested" }, true},
		{"unknown order", func(c *shiptypes.RunOptionConfig) { c.Order = "alphabetical" }, true},
		{"control char in prefix", func(c *shiptypes.RunOptionConfig) { c.Prefix = "bad\x00prefix" }, true},
		{"negative max files", func(c *shiptypes.RunOptionConfig) { c.MaxFiles = shiptypes.BoundedAt(-1) }, true},
		{"negative max bytes", func(c *shiptypes.RunOptionConfig) { c.MaxBytes = shiptypes.BoundedAt(-1) }, true},
		{"zero bound is valid", func(c *shiptypes.RunOptionConfig) { c.MaxFiles = shiptypes.BoundedAt(0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRunConfig()
			tt.mutate(cfg)
			err := ValidateRunConfig(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, serrors.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	long := make([]byte, 1025)
	for i := range long {
		long[i] = 'k'
	}

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", "backups/2024/report.json", false},
		{"valid with spaces", "my dir/my file.txt", false},
		{"empty", "", true},
		{"too long", string(long), true},
		{"control character", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
