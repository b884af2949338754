package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memscan/internal/memory"
)

func int32Buf(vals ...int32) []byte {
	var b []byte
	for _, v := range vals {
		b = memory.Encode(b, v)
	}
	return b
}

func put(buf []byte, index int, v int32) {
	copy(buf[index*4:], memory.Encode(nil, v))
}

func newRegion(t *testing.T, buf []byte) *memory.Region {
	t.Helper()
	r, err := memory.NewRegion(buf)
	require.NoError(t, err)
	return r
}

func offsets[T any](cands []Candidate[T]) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.Offset
	}
	return out
}

func TestInitialScanFindsExactOffsets(t *testing.T) {
	buf := int32Buf(10, 20, 10, 30)
	r := newRegion(t, buf)

	s, err := New(r, int32(10))
	require.NoError(t, err)
	assert.Equal(t, []Candidate[int32]{{Offset: 0, Value: 10}, {Offset: 8, Value: 10}}, s.Results())

	var rd memory.Reader[int32]
	hits := map[int]bool{}
	for _, c := range s.Results() {
		v, err := rd.ValueAt(r, c.Offset/rd.Stride())
		require.NoError(t, err)
		assert.Equal(t, int32(10), v)
		hits[c.Offset] = true
	}
	for i := range rd.Count(r) {
		v, err := rd.ValueAt(r, i)
		require.NoError(t, err)
		assert.Equal(t, v == 10, hits[i*4], "offset %d", i*4)
	}
}

func TestNextValue(t *testing.T) {
	buf := int32Buf(10, 20, 10, 30)
	s, err := New(newRegion(t, buf), int32(10))
	require.NoError(t, err)

	put(buf, 2, 99)
	require.NoError(t, s.NextValue(99))
	assert.Equal(t, []Candidate[int32]{{Offset: 8, Value: 99}}, s.Results())
}

func TestNextValueIgnoresRecordedValue(t *testing.T) {
	buf := int32Buf(5, 5)
	s, err := New(newRegion(t, buf), int32(5))
	require.NoError(t, err)

	put(buf, 0, 7)
	put(buf, 1, 7)
	require.NoError(t, s.NextValue(7))
	assert.Equal(t, 2, s.Len())
}

func TestNextValueIsIdempotent(t *testing.T) {
	buf := int32Buf(1, 2, 1, 1, 3)
	s, err := New(newRegion(t, buf), int32(1))
	require.NoError(t, err)

	put(buf, 3, 4)
	require.NoError(t, s.NextValue(1))
	first := s.Results()
	require.NoError(t, s.NextValue(1))
	assert.Equal(t, first, s.Results())
	assert.Equal(t, []int{0, 8}, offsets(first))
}

func TestNextRelationIncreased(t *testing.T) {
	buf := int32Buf(10, 20, 10, 30)
	s, err := New(newRegion(t, buf), int32(10))
	require.NoError(t, err)

	put(buf, 0, 11)
	put(buf, 2, 12)
	require.NoError(t, s.NextRelation(Increased[int32]))
	assert.Equal(t, []Candidate[int32]{{Offset: 0, Value: 11}, {Offset: 8, Value: 12}}, s.Results())
}

func TestNextRelationUsesRecordedValue(t *testing.T) {
	buf := int32Buf(10, 10)
	s, err := New(newRegion(t, buf), int32(10))
	require.NoError(t, err)

	put(buf, 0, 15)
	put(buf, 1, 15)
	require.NoError(t, s.NextRelation(Increased[int32]))
	require.Equal(t, 2, s.Len())

	// Recorded values are now 15; only index 1 moves up again.
	put(buf, 1, 16)
	require.NoError(t, s.NextRelation(Increased[int32]))
	assert.Equal(t, []Candidate[int32]{{Offset: 4, Value: 16}}, s.Results())
}

func TestAlwaysTrueRefreshesValues(t *testing.T) {
	buf := int32Buf(3, 3, 9, 3)
	s, err := New(newRegion(t, buf), int32(3))
	require.NoError(t, err)
	before := offsets(s.Results())

	put(buf, 0, 100)
	put(buf, 3, -4)
	require.NoError(t, s.NextRelation(Always[int32]))
	assert.Equal(t, before, offsets(s.Results()))
	assert.Equal(t, []Candidate[int32]{{0, 100}, {4, 3}, {12, -4}}, s.Results())
}

func TestAlwaysFalseEmpties(t *testing.T) {
	s, err := New(newRegion(t, int32Buf(3, 3, 3)), int32(3))
	require.NoError(t, err)

	require.NoError(t, s.NextRelation(Never[int32]))
	assert.True(t, s.Empty())
	assert.Empty(t, s.Results())

	// Refining an empty session stays empty.
	require.NoError(t, s.NextValue(3))
	require.NoError(t, s.NextRelation(Always[int32]))
	assert.True(t, s.Empty())
}

func TestRefinementOnlyShrinks(t *testing.T) {
	buf := int32Buf(0, 1, 0, 2, 0, 3, 0, 4)
	s, err := NewUnknown[int32](newRegion(t, buf))
	require.NoError(t, err)
	require.Equal(t, 8, s.Len())

	steps := []func(){
		func() { put(buf, 1, 5) },
		func() {
			put(buf, 0, -1)
			put(buf, 7, 9)
		},
		func() {},
	}
	rels := []Relation[int32]{Changed[int32], Unchanged[int32], Within[int32](0, 10)}

	prev := map[int]bool{}
	for _, c := range s.Results() {
		prev[c.Offset] = true
	}
	for i, mutate := range steps {
		mutate()
		require.NoError(t, s.NextRelation(rels[i]))
		cur := map[int]bool{}
		for _, c := range s.Results() {
			assert.True(t, prev[c.Offset], "offset %d appeared after refinement", c.Offset)
			cur[c.Offset] = true
		}
		prev = cur
	}
}

func TestTrailingBytesNeverScanned(t *testing.T) {
	buf := append(int32Buf(7, 7), 7, 0)
	s, err := New(newRegion(t, buf), int32(7))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, offsets(s.Results()))

	unknown, err := NewUnknown[int32](newRegion(t, buf))
	require.NoError(t, err)
	assert.Equal(t, 2, unknown.Len())
}

func TestInitialScanOnTooSmallRegionIsEmpty(t *testing.T) {
	s, err := New(newRegion(t, []byte{1, 2, 3}), int32(0))
	require.NoError(t, err)
	assert.True(t, s.Empty())
	require.NoError(t, s.NextValue(1))
}

func TestNewFunc(t *testing.T) {
	s, err := NewFunc(newRegion(t, int32Buf(-5, 3, 8, -1)), func(v int32) bool { return v < 0 })
	require.NoError(t, err)
	assert.Equal(t, []int{0, 12}, offsets(s.Results()))
}

func TestResultsIsSnapshot(t *testing.T) {
	buf := int32Buf(1, 1)
	s, err := New(newRegion(t, buf), int32(1))
	require.NoError(t, err)

	res := s.Results()
	res[0].Value = 42
	put(buf, 0, 9)
	assert.Equal(t, int32(1), s.Results()[0].Value)
	assert.Equal(t, 4, s.Results()[1].OffsetFromBase())
}

func TestRelations(t *testing.T) {
	assert.True(t, IncreasedBy[int32](2)(3, 5))
	assert.False(t, IncreasedBy[int32](2)(3, 6))
	assert.True(t, DecreasedBy[uint8](1)(3, 2))
	assert.False(t, DecreasedBy[uint8](1)(2, 3))
	assert.True(t, Within[float64](1, 2)(100, 1.5))
	assert.False(t, Within[float64](1, 2)(1.5, 2.5))
	assert.True(t, Changed[int8](1, 2))
	assert.True(t, Unchanged[int8](2, 2))
	assert.True(t, Decreased[float32](2, 1))
}

func TestObserver(t *testing.T) {
	buf := int32Buf(1, 2, 1)
	var got []Stats
	obs := ObserverFunc(func(s Stats) { got = append(got, s) })

	s, err := New(newRegion(t, buf), int32(1), WithObserver(obs))
	require.NoError(t, err)
	put(buf, 2, 4)
	require.NoError(t, s.NextRelation(Changed[int32]))

	require.Len(t, got, 2)
	assert.Equal(t, OpExact, got[0].Op)
	assert.Equal(t, 3, got[0].Before)
	assert.Equal(t, 2, got[0].After)
	assert.Equal(t, OpRelation, got[1].Op)
	assert.Equal(t, 2, got[1].Before)
	assert.Equal(t, 1, got[1].After)
	assert.GreaterOrEqual(t, got[1].Elapsed, time.Duration(0))
}

func TestRefineOutOfBoundsLeavesSessionUnchanged(t *testing.T) {
	s, err := New(newRegion(t, int32Buf(1, 1, 1)), int32(1))
	require.NoError(t, err)
	before := s.Results()

	// Swap in a shorter region underneath the existing candidates.
	s.region = newRegion(t, int32Buf(1))
	require.ErrorIs(t, s.NextValue(1), memory.ErrOutOfBounds)
	require.ErrorIs(t, s.NextRelation(Always[int32]), memory.ErrOutOfBounds)
	assert.Equal(t, before, s.Results())
}
