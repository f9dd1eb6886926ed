package run

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treelineops/s3ship/internal/limit"
	"github.com/treelineops/s3ship/shiptypes"
)

type fakeHasher struct {
	failPaths map[string]bool
}

func (h *fakeHasher) Sum(f shiptypes.FileInfo) (shiptypes.Digest, error) {
	if h.failPaths[f.Path] {
		return shiptypes.Digest{}, errors.New("file unreadable")
	}
	return shiptypes.Digest{Algorithm: "sha256", Hex: "deadbeef"}, nil
}

type fakePutter struct {
	mu        sync.Mutex
	puts      []string
	failPaths map[string]bool
	failDelay time.Duration
}

func (p *fakePutter) Put(
	_ context.Context,
	_, key string,
	f shiptypes.FileInfo,
	_ shiptypes.Digest,
	_ shiptypes.ProgressTracker,
) error {
	if p.failPaths[f.Path] {
		time.Sleep(p.failDelay)
		return errors.New("transfer failed")
	}
	p.mu.Lock()
	p.puts = append(p.puts, key)
	p.mu.Unlock()
	return nil
}

func (p *fakePutter) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.puts))
	copy(out, p.puts)
	return out
}

func relKey(f shiptypes.FileInfo) string { return f.RelPath }

func candidates(n int, size int64) []shiptypes.FileInfo {
	files := make([]shiptypes.FileInfo, n)
	for i := range files {
		files[i] = shiptypes.FileInfo{
			Path:    fmt.Sprintf("/data/f%d.txt", i),
			RelPath: fmt.Sprintf("f%d.txt", i),
			Size:    size,
		}
	}
	return files
}

func newEngine(gate *limit.Gate, hasher Hasher, putter Putter, parallelism int) *Engine {
	return NewEngine(Config{
		Hasher:      hasher,
		Putter:      putter,
		Gate:        gate,
		KeyFor:      relKey,
		Parallelism: parallelism,
	})
}

func unboundedGate() *limit.Gate {
	return limit.NewGate(shiptypes.Unbounded(), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)
}

func TestExecuteUploadsEverything(t *testing.T) {
	putter := &fakePutter{}
	e := newEngine(unboundedGate(), &fakeHasher{}, putter, 4)

	outcomes, stop := e.Execute(context.Background(), "bucket", candidates(10, 5))

	assert.Equal(t, shiptypes.StopReasonExhausted, stop)
	require.Len(t, outcomes, 10)
	for _, o := range outcomes {
		assert.Equal(t, shiptypes.OutcomeUploaded, o.Status)
		assert.Equal(t, "deadbeef", o.Digest)
	}
	assert.Len(t, putter.keys(), 10)
}

func TestExecuteStopsAtFileLimit(t *testing.T) {
	gate := limit.NewGate(shiptypes.BoundedAt(2), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)
	putter := &fakePutter{}
	e := newEngine(gate, &fakeHasher{}, putter, 1)

	outcomes, stop := e.Execute(context.Background(), "bucket", candidates(5, 5))

	assert.Equal(t, shiptypes.StopReasonMaxFiles, stop)
	require.Len(t, outcomes, 5)
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[0].Status)
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[1].Status)
	for _, o := range outcomes[2:] {
		assert.Equal(t, shiptypes.OutcomeSkipped, o.Status)
		assert.Contains(t, o.Reason, "files")
	}
	assert.Len(t, putter.keys(), 2)
	assert.Equal(t, int64(2), gate.FilesCommitted())
}

func TestExecuteStopsAtByteLimit(t *testing.T) {
	gate := limit.NewGate(shiptypes.Unbounded(), shiptypes.BoundedAt(25), shiptypes.UnboundedDuration(), nil)
	putter := &fakePutter{}
	e := newEngine(gate, &fakeHasher{}, putter, 1)

	files := []shiptypes.FileInfo{
		{Path: "/d/a", RelPath: "a", Size: 10},
		{Path: "/d/b", RelPath: "b", Size: 20},
		{Path: "/d/c", RelPath: "c", Size: 30},
	}
	outcomes, stop := e.Execute(context.Background(), "bucket", files)

	assert.Equal(t, shiptypes.StopReasonMaxBytes, stop)
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[0].Status)
	assert.Equal(t, shiptypes.OutcomeSkipped, outcomes[1].Status)
	assert.Equal(t, shiptypes.OutcomeSkipped, outcomes[2].Status)
	assert.Equal(t, int64(10), gate.BytesCommitted())
}

func TestFirstFileTooBigUploadsNothing(t *testing.T) {
	gate := limit.NewGate(shiptypes.Unbounded(), shiptypes.BoundedAt(5), shiptypes.UnboundedDuration(), nil)
	putter := &fakePutter{}
	e := newEngine(gate, &fakeHasher{}, putter, 1)

	outcomes, stop := e.Execute(context.Background(), "bucket",
		[]shiptypes.FileInfo{{Path: "/d/big", RelPath: "big", Size: 100}})

	assert.Equal(t, shiptypes.StopReasonMaxBytes, stop)
	assert.Equal(t, shiptypes.OutcomeSkipped, outcomes[0].Status)
	assert.Empty(t, putter.keys())
}

func TestFailedUploadDoesNotConsumeBudget(t *testing.T) {
	gate := limit.NewGate(shiptypes.BoundedAt(1), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)
	putter := &fakePutter{failPaths: map[string]bool{"/data/f0.txt": true}}
	e := newEngine(gate, &fakeHasher{}, putter, 1)

	outcomes, stop := e.Execute(context.Background(), "bucket", candidates(2, 5))

	// f0 fails and returns its slot; f1 then fits the single-file budget.
	assert.Equal(t, shiptypes.StopReasonExhausted, stop)
	assert.Equal(t, shiptypes.OutcomeFailed, outcomes[0].Status)
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[1].Status)
	assert.Equal(t, int64(1), gate.FilesCommitted())
}

func TestSlowFailureSettlesBeforeNextAdmission(t *testing.T) {
	// With a single worker, the next admission decision must wait for the
	// in-flight file to commit or release, however long it takes. A slow
	// failing upload therefore never trips a budget on behalf of its
	// successor.
	gate := limit.NewGate(shiptypes.BoundedAt(1), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)
	putter := &fakePutter{
		failPaths: map[string]bool{"/data/f0.txt": true},
		failDelay: 100 * time.Millisecond,
	}
	e := newEngine(gate, &fakeHasher{}, putter, 1)

	outcomes, stop := e.Execute(context.Background(), "bucket", candidates(2, 5))

	assert.Equal(t, shiptypes.StopReasonExhausted, stop)
	assert.Equal(t, shiptypes.OutcomeFailed, outcomes[0].Status)
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[1].Status)
	assert.Equal(t, []string{"f1.txt"}, putter.keys())
	assert.Equal(t, int64(1), gate.FilesCommitted())
}

func TestHashFailureContinuesRun(t *testing.T) {
	hasher := &fakeHasher{failPaths: map[string]bool{"/data/f1.txt": true}}
	putter := &fakePutter{}
	e := newEngine(unboundedGate(), hasher, putter, 2)

	outcomes, stop := e.Execute(context.Background(), "bucket", candidates(3, 5))

	assert.Equal(t, shiptypes.StopReasonExhausted, stop)
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[0].Status)
	assert.Equal(t, shiptypes.OutcomeFailed, outcomes[1].Status)
	assert.Contains(t, outcomes[1].Reason, "unreadable")
	assert.Equal(t, shiptypes.OutcomeUploaded, outcomes[2].Status)
	assert.Len(t, putter.keys(), 2)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	putter := &fakePutter{}
	e := newEngine(unboundedGate(), &fakeHasher{}, putter, 1)

	outcomes, stop := e.Execute(ctx, "bucket", candidates(3, 5))

	assert.Equal(t, shiptypes.StopReasonCancelled, stop)
	for _, o := range outcomes {
		assert.Equal(t, shiptypes.OutcomeSkipped, o.Status)
	}
	assert.Empty(t, putter.keys())
}

func TestExecuteEmptyCandidateList(t *testing.T) {
	e := newEngine(unboundedGate(), &fakeHasher{}, &fakePutter{}, 1)

	outcomes, stop := e.Execute(context.Background(), "bucket", nil)

	assert.Equal(t, shiptypes.StopReasonExhausted, stop)
	assert.Empty(t, outcomes)
}
