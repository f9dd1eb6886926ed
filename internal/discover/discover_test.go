package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/treelineops/s3ship/errors"
	"github.com/treelineops/s3ship/internal/testutil"
)

func TestDiscoverFindsRegularFiles(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{
		"a.txt":       "aaa",
		"sub/b.txt":   "bb",
		"sub/c/d.bin": "dddd",
	})

	d := New(memfs, nil, nil)
	files, warnings, err := d.Discover(context.Background(), "/data")

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, files, 3)

	byRel := map[string]int64{}
	for _, f := range files {
		byRel[f.RelPath] = f.Size
	}
	assert.Equal(t, int64(3), byRel["a.txt"])
	assert.Equal(t, int64(2), byRel["sub/b.txt"])
	assert.Equal(t, int64(4), byRel["sub/c/d.bin"])
}

func TestDiscoverMissingRoot(t *testing.T) {
	d := New(testutil.NewMemFS(), nil, nil)

	_, _, err := d.Discover(context.Background(), "/nope")

	require.Error(t, err)
	assert.True(t, serrors.IsRootNotFound(err))
}

func TestDiscoverRootIsFile(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{"a.txt": "x"})

	d := New(memfs, nil, nil)
	_, _, err := d.Discover(context.Background(), "/data/a.txt")

	require.Error(t, err)
	assert.True(t, serrors.IsRootNotFound(err))
}

func TestDiscoverEmptyRoot(t *testing.T) {
	memfs := testutil.NewMemFS()
	require.NoError(t, memfs.MkdirAll("/empty", 0o755))

	d := New(memfs, nil, nil)
	files, warnings, err := d.Discover(context.Background(), "/empty")

	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, warnings)
}

func TestDiscoverAppliesExcludes(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{
		"a.txt":          "a",
		"sub/.DS_Store":  "junk",
		".DS_Store":      "junk",
		"sub/keep.txt":   "k",
		"logs/app.log":   "l",
		"logs/extra.txt": "e",
	})

	d := New(memfs, nil, []string{".DS_Store", "*.log"})
	files, _, err := d.Discover(context.Background(), "/data")

	require.NoError(t, err)
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/keep.txt", "logs/extra.txt"}, rels)
}

func TestDiscoverAppliesIncludes(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{
		"a.txt": "a",
		"b.csv": "b",
	})

	d := New(memfs, []string{"*.csv"}, nil)
	files, _, err := d.Discover(context.Background(), "/data")

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.csv", files[0].RelPath)
}

func TestDiscoverUnreadableSubtreeSkipped(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{
		"ok.txt":            "ok",
		"locked/secret.txt": "s",
		"locked/deep/x.txt": "x",
	})
	faulty := &testutil.FaultyWalkFS{
		Filesystem: memfs,
		FailPaths:  map[string]error{"/data/locked": errors.New("permission denied")},
	}

	d := New(faulty, nil, nil)
	files, warnings, err := d.Discover(context.Background(), "/data")

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ok.txt", files[0].RelPath)
	require.Len(t, warnings, 1)
	assert.Equal(t, "/data/locked", warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "permission denied")
}

func TestDiscoverUnreadableFileRecorded(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{
		"ok.txt":  "ok",
		"bad.txt": "b",
	})
	faulty := &testutil.FaultyWalkFS{
		Filesystem: memfs,
		FailPaths:  map[string]error{"/data/bad.txt": errors.New("input/output error")},
	}

	d := New(faulty, nil, nil)
	files, warnings, err := d.Discover(context.Background(), "/data")

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ok.txt", files[0].RelPath)
	require.Len(t, warnings, 1)
	assert.Equal(t, "/data/bad.txt", warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "input/output error")
}

func TestDiscoverCancelled(t *testing.T) {
	memfs := testutil.NewMemFS()
	testutil.SeedTree(t, memfs, "/data", map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(memfs, nil, nil)
	_, _, err := d.Discover(ctx, "/data")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
