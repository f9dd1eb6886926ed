package discover

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// PatternMatcher handles pattern matching for file filtering.
type PatternMatcher struct{}

// NewPatternMatcher creates a new pattern matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{}
}

// ShouldIncludeFile determines if a file should be included based on patterns.
// Excludes take precedence; when include patterns are present the file must
// match at least one.
func (pm *PatternMatcher) ShouldIncludeFile(
	relPath string,
	includePatterns []string,
	excludePatterns []string,
) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range excludePatterns {
		if pm.matchesPattern(relPath, pattern) {
			return false
		}
	}

	if len(includePatterns) > 0 {
		included := false
		for _, pattern := range includePatterns {
			if pm.matchesPattern(relPath, pattern) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	return true
}

// matchesPattern checks if a path matches a glob pattern.
// It supports basic glob patterns like *, **, and ?.
func (pm *PatternMatcher) matchesPattern(relPath, pattern string) bool {
	// Directory patterns (ending with /) match everything under the directory
	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		return strings.HasPrefix(relPath+"/", pattern+"/") || relPath == pattern
	}

	if strings.Contains(pattern, "**") {
		return pm.matchesGlobPattern(relPath, pattern)
	}

	match, err := filepath.Match(pattern, relPath)
	if err != nil {
		return false
	}
	if match {
		return true
	}

	// A bare pattern with no separator also matches the final path element,
	// so ".DS_Store" excludes the file at any depth
	if !strings.Contains(pattern, "/") {
		match, err = filepath.Match(pattern, path.Base(relPath))
		if err != nil {
			return false
		}
		return match
	}

	return false
}

// matchesGlobPattern handles patterns with ** (recursive wildcard).
func (pm *PatternMatcher) matchesGlobPattern(relPath, pattern string) bool {
	parts := strings.Split(pattern, "**")

	if len(parts) == 1 {
		match, _ := filepath.Match(pattern, relPath)
		return match
	}

	if len(parts) == 2 {
		// Pattern like "prefix**suffix"
		prefix := parts[0]
		suffix := parts[1]

		if !strings.HasPrefix(relPath, prefix) {
			return false
		}
		if suffix == "" {
			return true
		}
		return strings.HasSuffix(relPath, suffix)
	}

	// Multiple ** segments are not supported
	return false
}

// ValidatePatterns validates that the given patterns are syntactically correct.
func (pm *PatternMatcher) ValidatePatterns(patterns []string) []error {
	var errors []error

	for i, pattern := range patterns {
		if strings.Count(pattern, "**") > 1 {
			continue
		}

		_, err := filepath.Match(pattern, "dummy")
		if err != nil {
			errors = append(errors, &PatternError{
				Pattern: pattern,
				Index:   i,
				Err:     err,
			})
		}
	}

	return errors
}

// PatternError represents an error with a pattern.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern at index %d '%s': %v", e.Index, e.Pattern, e.Err)
}
