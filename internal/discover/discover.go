// Package discover enumerates regular files under an upload root.
//
// Discovery recurses through the filesystem abstraction, skipping
// directories, symlinks and special files. An unreadable subtree is
// recorded as a warning and skipped rather than failing the run.
package discover

import (
	"context"
	"os"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	serrors "github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/shiptypes"
)

// Discoverer walks an upload root and produces file descriptors.
type Discoverer struct {
	fs      fs.Filesystem
	matcher *PatternMatcher
	include []string
	exclude []string
}

// DefaultExcludes are always filtered out, in addition to any
// caller-supplied exclude patterns.
var DefaultExcludes = []string{".DS_Store"}

// New creates a Discoverer. Include and exclude patterns are matched
// against slash-separated paths relative to the root; excludes win.
func New(filesystem fs.Filesystem, includePatterns, excludePatterns []string) *Discoverer {
	exclude := make([]string, 0, len(DefaultExcludes)+len(excludePatterns))
	exclude = append(exclude, DefaultExcludes...)
	exclude = append(exclude, excludePatterns...)
	return &Discoverer{
		fs:      filesystem,
		matcher: NewPatternMatcher(),
		include: includePatterns,
		exclude: exclude,
	}
}

// Discover walks root and returns descriptors for every regular file that
// passes the pattern filter, in walk order, together with warnings for
// subtrees that could not be read.
//
// A missing root or a root that is not a directory is fatal and returns
// ErrRootNotFound. Unreadable subtrees are not fatal: they are skipped
// with a recorded warning (partial-failure semantics).
func (d *Discoverer) Discover(
	ctx context.Context,
	root string,
) ([]shiptypes.FileInfo, []shiptypes.DiscoveryWarning, error) {
	info, err := d.fs.Stat(root)
	if err != nil {
		return nil, nil, serrors.NewError("discover", serrors.ErrRootNotFound).
			WithPath(root).
			WithMessage(err.Error())
	}
	if !info.IsDir() {
		return nil, nil, serrors.NewError("discover", serrors.ErrRootNotFound).
			WithPath(root).
			WithMessage("not a directory")
	}

	var files []shiptypes.FileInfo
	var warnings []shiptypes.DiscoveryWarning

	err = d.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			warning := serrors.NewError("discover", serrors.ErrSubtreeUnreadable).
				WithPath(path).
				WithMessage(err.Error())
			warnings = append(warnings, shiptypes.DiscoveryWarning{
				Path:    path,
				Message: warning.Error(),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Check if context is cancelled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			return nil
		}

		// Regular files only; symlinks and special files are skipped,
		// not errored
		if !info.Mode().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			warnings = append(warnings, shiptypes.DiscoveryWarning{
				Path:    path,
				Message: err.Error(),
			})
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !d.matcher.ShouldIncludeFile(relPath, d.include, d.exclude) {
			return nil
		}

		files = append(files, shiptypes.FileInfo{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, warnings, serrors.NewError("discover", err).WithPath(root)
	}

	return files, warnings, nil
}
