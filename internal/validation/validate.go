// Package validation provides centralized input validation logic.
//
// All user inputs are validated before any file is touched or any request
// is sent to the store, so a misconfigured run fails before it uploads
// anything.
package validation

import (
	"strings"
	"unicode"

	serrors "github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/shiptypes"
)

// ValidateBucketName validates that a bucket name is DNS-compliant
// according to AWS S3 rules. Returns ErrInvalidBucketName if the bucket
// name is invalid.
func ValidateBucketName(bucket string) error {
	if err := validateBucketNameBasics(bucket); err != nil {
		return err
	}

	if err := validateBucketNameCharacters(bucket); err != nil {
		return err
	}

	return validateBucketNameStructure(bucket)
}

// ValidateRunConfig validates the per-run options before any file is
// discovered.
func ValidateRunConfig(cfg *shiptypes.RunOptionConfig) error {
	if cfg.Parallelism < 1 {
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("parallelism must be at least 1")
	}

	switch cfg.KeyMode {
	case shiptypes.KeyModeFlat, shiptypes.KeyModeHierarchical:
	default:
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("unknown key mode: " + string(cfg.KeyMode))
	}

	switch cfg.Order {
	case shiptypes.OrderSequential, shiptypes.OrderShuffled:
	default:
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("unknown order mode: " + string(cfg.Order))
	}

	if hasControlCharacters(cfg.Prefix) {
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("key prefix cannot contain control characters")
	}

	if cfg.MaxFiles.Bounded() && cfg.MaxFiles.Value() < 0 {
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("max files cannot be negative")
	}
	if cfg.MaxBytes.Bounded() && cfg.MaxBytes.Value() < 0 {
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("max bytes cannot be negative")
	}
	if cfg.MaxDuration.Bounded() && cfg.MaxDuration.Value() < 0 {
		return serrors.NewError("validateRunConfig", serrors.ErrInvalidConfig).
			WithMessage("max duration cannot be negative")
	}

	return nil
}

// ValidateObjectKey validates a derived object key according to S3 rules.
func ValidateObjectKey(key string) error {
	if key == "" {
		return serrors.NewError("validateObjectKey", serrors.ErrInvalidConfig).
			WithKey(key).
			WithMessage("object key cannot be empty")
	}

	// S3 supports keys up to 1024 bytes
	if len(key) > 1024 {
		return serrors.NewError("validateObjectKey", serrors.ErrInvalidConfig).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return serrors.NewError("validateObjectKey", serrors.ErrInvalidConfig).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// validateBucketNameBasics validates basic bucket name requirements
func validateBucketNameBasics(bucket string) error {
	if bucket == "" {
		return serrors.NewError("validateBucketName", serrors.ErrInvalidBucketName).
			WithMessage("bucket name cannot be empty")
	}

	// Bucket names must be between 3 and 63 characters long
	if len(bucket) < 3 || len(bucket) > 63 {
		return serrors.NewError("validateBucketName", serrors.ErrInvalidBucketName).
			WithMessage("bucket name must be between 3 and 63 characters long")
	}

	return nil
}

// validateBucketNameCharacters validates allowed characters in bucket names
func validateBucketNameCharacters(bucket string) error {
	// Only lowercase letters, numbers, dots (.), and hyphens (-)
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return serrors.NewError("validateBucketName", serrors.ErrInvalidBucketName).
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	return nil
}

// validateBucketNameStructure validates bucket name structural requirements
func validateBucketNameStructure(bucket string) error {
	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return serrors.NewError("validateBucketName", serrors.ErrInvalidBucketName).
			WithMessage("bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return serrors.NewError("validateBucketName", serrors.ErrInvalidBucketName).
			WithMessage("bucket name cannot be formatted as an IP address")
	}

	if hasAdjacentSpecialChars(bucket) {
		return serrors.NewError("validateBucketName", serrors.ErrInvalidBucketName).
			WithMessage("bucket name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(bucket string) bool {
	for i := 0; i < len(bucket)-1; i++ {
		if (bucket[i] == '.' && bucket[i+1] == '.') || (bucket[i] == '-' && bucket[i+1] == '-') {
			return true
		}
	}
	return false
}

// isIPAddress checks if a string is formatted as an IP address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

// hasControlCharacters checks for control characters in a string
func hasControlCharacters(s string) bool {
	for _, char := range s {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
