package limit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treelineops/s3ship/shiptypes"
)

func unboundedGate() *Gate {
	return NewGate(shiptypes.Unbounded(), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)
}

func TestUnboundedGateAdmitsEverything(t *testing.T) {
	g := unboundedGate()

	for i := 0; i < 100; i++ {
		admitted, dim := g.Admit(1 << 30)
		require.True(t, admitted)
		require.Equal(t, DimensionNone, dim)
		g.Commit(1 << 30)
	}
	assert.False(t, g.Closed())
	assert.Equal(t, int64(100), g.FilesCommitted())
}

func TestFileLimitTripsAndStaysClosed(t *testing.T) {
	g := NewGate(shiptypes.BoundedAt(2), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)

	admitted, _ := g.Admit(10)
	require.True(t, admitted)
	g.Commit(10)

	admitted, _ = g.Admit(10)
	require.True(t, admitted)
	g.Commit(10)

	admitted, dim := g.Admit(10)
	require.False(t, admitted)
	assert.Equal(t, DimensionFiles, dim)
	assert.True(t, g.Closed())
	assert.Equal(t, DimensionFiles, g.Tripped())

	// Closed gates refuse even files that would otherwise fit
	admitted, _ = g.Admit(0)
	assert.False(t, admitted)
}

func TestByteLimitRefusesOversizedCandidate(t *testing.T) {
	// Sizes 10, 20, 30 against a 25-byte budget: only the first fits.
	g := NewGate(shiptypes.Unbounded(), shiptypes.BoundedAt(25), shiptypes.UnboundedDuration(), nil)

	admitted, _ := g.Admit(10)
	require.True(t, admitted)
	g.Commit(10)

	admitted, dim := g.Admit(20)
	require.False(t, admitted)
	assert.Equal(t, DimensionBytes, dim)

	admitted, _ = g.Admit(30)
	assert.False(t, admitted)

	assert.Equal(t, int64(1), g.FilesCommitted())
	assert.Equal(t, int64(10), g.BytesCommitted())
}

func TestFirstFileAloneCanTripByteLimit(t *testing.T) {
	g := NewGate(shiptypes.Unbounded(), shiptypes.BoundedAt(5), shiptypes.UnboundedDuration(), nil)

	admitted, dim := g.Admit(6)
	require.False(t, admitted)
	assert.Equal(t, DimensionBytes, dim)
	assert.Zero(t, g.FilesCommitted())
	assert.Zero(t, g.BytesCommitted())
}

func TestZeroBoundIsGenuineEmptyBudget(t *testing.T) {
	g := NewGate(shiptypes.BoundedAt(0), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)

	admitted, dim := g.Admit(1)
	require.False(t, admitted)
	assert.Equal(t, DimensionFiles, dim)
}

func TestExactFitIsAdmitted(t *testing.T) {
	g := NewGate(shiptypes.Unbounded(), shiptypes.BoundedAt(30), shiptypes.UnboundedDuration(), nil)

	admitted, _ := g.Admit(30)
	require.True(t, admitted)
	g.Commit(30)

	admitted, _ = g.Admit(1)
	assert.False(t, admitted)
}

func TestReleaseReturnsBudgetToLaterCandidates(t *testing.T) {
	g := NewGate(shiptypes.BoundedAt(1), shiptypes.Unbounded(), shiptypes.UnboundedDuration(), nil)

	admitted, _ := g.Admit(10)
	require.True(t, admitted)

	// The upload failed; its slot is returned and the next candidate fits.
	g.Release(10)

	admitted, _ = g.Admit(10)
	require.True(t, admitted)
	g.Commit(10)

	assert.Equal(t, int64(1), g.FilesCommitted())
}

func TestReservationsCountAgainstBudget(t *testing.T) {
	g := NewGate(shiptypes.Unbounded(), shiptypes.BoundedAt(20), shiptypes.UnboundedDuration(), nil)

	// Two in-flight reservations fill the budget before either commits.
	admitted, _ := g.Admit(10)
	require.True(t, admitted)
	admitted, _ = g.Admit(10)
	require.True(t, admitted)

	admitted, dim := g.Admit(1)
	require.False(t, admitted)
	assert.Equal(t, DimensionBytes, dim)
}

func TestTimeLimitCheckedAtAdmission(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	g := NewGate(shiptypes.Unbounded(), shiptypes.Unbounded(),
		shiptypes.DurationBoundedAt(time.Minute), clock)

	admitted, _ := g.Admit(1)
	require.True(t, admitted)
	g.Commit(1)

	now = now.Add(2 * time.Minute)
	admitted, dim := g.Admit(1)
	require.False(t, admitted)
	assert.Equal(t, DimensionTime, dim)
	assert.Equal(t, DimensionTime, g.Tripped())
}
