// Package limit implements the admission gate that bounds an upload run.
//
// The gate owns the running totals for all three budget dimensions (file
// count, cumulative bytes, elapsed wall-clock time) and serializes every
// admission decision through a single mutex, so concurrent workers can
// never jointly overshoot a budget.
package limit

import (
	"sync"
	"time"

	"github.com/treelineops/s3ship/shiptypes"
)

// Dimension identifies which budget tripped the gate.
type Dimension string

// Budget dimensions
const (
	// DimensionNone means no budget has tripped
	DimensionNone Dimension = ""

	// DimensionFiles is the file-count budget
	DimensionFiles Dimension = "files"

	// DimensionBytes is the cumulative-byte budget
	DimensionBytes Dimension = "bytes"

	// DimensionTime is the wall-clock budget
	DimensionTime Dimension = "time"
)

// Gate decides, per candidate file, whether continuing the run would
// violate a configured budget. Once closed it stays closed.
//
// Budget is reserved at admission, committed after a successful upload
// and released after a failed one, so a failed upload never consumes
// budget while concurrent admissions still account for in-flight files.
type Gate struct {
	mu sync.Mutex

	maxFiles    shiptypes.Limit
	maxBytes    shiptypes.Limit
	maxDuration shiptypes.DurationLimit

	start time.Time
	now   func() time.Time

	committedFiles int64
	committedBytes int64
	reservedFiles  int64
	reservedBytes  int64

	closed  bool
	tripped Dimension
}

// NewGate creates a gate for one run. The wall-clock budget is measured
// from this call. A nil now func defaults to time.Now (tests inject a
// fake clock).
func NewGate(
	maxFiles, maxBytes shiptypes.Limit,
	maxDuration shiptypes.DurationLimit,
	now func() time.Time,
) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{
		maxFiles:    maxFiles,
		maxBytes:    maxBytes,
		maxDuration: maxDuration,
		start:       now(),
		now:         now,
	}
}

// Admit decides whether a file of the given size may proceed. On
// admission the file's budget is reserved and must later be settled with
// Commit or Release. On refusal the gate closes permanently and the
// tripped dimension is returned.
func (g *Gate) Admit(size int64) (bool, Dimension) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false, g.tripped
	}

	files := g.committedFiles + g.reservedFiles + 1
	bytes := g.committedBytes + g.reservedBytes + size

	switch {
	case g.maxFiles.Bounded() && files > g.maxFiles.Value():
		g.close(DimensionFiles)
	case g.maxBytes.Bounded() && bytes > g.maxBytes.Value():
		g.close(DimensionBytes)
	case g.maxDuration.Bounded() && g.now().Sub(g.start) > g.maxDuration.Value():
		g.close(DimensionTime)
	default:
		g.reservedFiles++
		g.reservedBytes += size
		return true, DimensionNone
	}

	return false, g.tripped
}

// Commit settles an admitted file's reservation after a successful
// upload. Totals only ever increase.
func (g *Gate) Commit(size int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reservedFiles--
	g.reservedBytes -= size
	g.committedFiles++
	g.committedBytes += size
}

// Release returns an admitted file's reservation after a failed upload.
// A failed upload does not consume budget; the freed budget is available
// to later candidates.
func (g *Gate) Release(size int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reservedFiles--
	g.reservedBytes -= size
}

// Closed reports whether the gate has stopped admitting files.
func (g *Gate) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Tripped returns the dimension that closed the gate, or DimensionNone.
func (g *Gate) Tripped() Dimension {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tripped
}

// FilesCommitted returns the number of fully-succeeded uploads.
func (g *Gate) FilesCommitted() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.committedFiles
}

// BytesCommitted returns the bytes of fully-succeeded uploads.
func (g *Gate) BytesCommitted() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.committedBytes
}

// close must be called with the mutex held.
func (g *Gate) close(d Dimension) {
	g.closed = true
	g.tripped = d
}
