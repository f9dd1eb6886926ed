package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// NewMemFS returns an in-memory filesystem for tests.
func NewMemFS() fs.Filesystem {
	return billy.NewInMemoryFS()
}

// SeedTree writes the given path-to-content map into the filesystem,
// creating parent directories as needed. Paths are interpreted relative
// to root.
func SeedTree(t *testing.T, filesystem fs.Filesystem, root string, files map[string]string) {
	t.Helper()

	if err := filesystem.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if dir := filepath.Dir(path); dir != "." {
			if err := filesystem.MkdirAll(dir, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
		if err := filesystem.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// FaultyWalkFS wraps a filesystem and injects walk errors for the
// configured paths, mimicking unreadable files and directories. A
// directory error keeps its FileInfo so callers can skip the subtree; a
// file error arrives with a nil FileInfo, matching a failed stat during
// a real walk.
type FaultyWalkFS struct {
	fs.Filesystem
	FailPaths map[string]error
}

// Walk implements fs.Filesystem, delegating to the wrapped filesystem
// and substituting errors for the configured paths.
func (f *FaultyWalkFS) Walk(root string, walkFn filepath.WalkFunc) error {
	return f.Filesystem.Walk(root, func(path string, info os.FileInfo, err error) error {
		if inject, ok := f.FailPaths[path]; ok {
			if info != nil && info.IsDir() {
				return walkFn(path, info, inject)
			}
			return walkFn(path, nil, inject)
		}
		return walkFn(path, info, err)
	})
}

// RecordingTracker is a ProgressTracker that records every callback,
// safe for concurrent use.
type RecordingTracker struct {
	mu        sync.Mutex
	Updates   [][2]int64
	Completes int
	Errors    []error
}

// Update records a progress update.
func (r *RecordingTracker) Update(bytesTransferred, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updates = append(r.Updates, [2]int64{bytesTransferred, totalBytes})
}

// Complete records a completion.
func (r *RecordingTracker) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Completes++
}

// Error records a transfer failure.
func (r *RecordingTracker) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

// CompleteCount returns the number of Complete callbacks recorded.
func (r *RecordingTracker) CompleteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Completes
}
