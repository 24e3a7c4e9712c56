package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdweb-dev/portal-client/internal/rangeset"
)

func TestBuilder_LowercasesHexAtAddTime(t *testing.T) {
	b := NewBuilder()
	b.AddLog(LogFilter{Address: []string{"0xABCDEF"}}, rangeset.Bounded(0, 10))
	q := b.Build()
	require.Len(t, q.PerRange, 1)
	require.Len(t, q.PerRange[0].Logs, 1)
	assert.Equal(t, []string{"0xabcdef"}, q.PerRange[0].Logs[0].Address)
}

func TestBuilder_NonOverlappingRangesOrderIndependent(t *testing.T) {
	build := func(order []int) Query {
		b := NewBuilder()
		ranges := []rangeset.Range{rangeset.Bounded(0, 9), rangeset.Bounded(10, 19)}
		filters := []LogFilter{{Address: []string{"0x1"}}, {Address: []string{"0x2"}}}
		for _, i := range order {
			b.AddLog(filters[i], ranges[i])
		}
		return b.Build()
	}

	q1 := build([]int{0, 1})
	q2 := build([]int{1, 0})
	assert.Equal(t, q1, q2)
}

func TestBuilder_OverlappingRangesSegmentAndFold(t *testing.T) {
	b := NewBuilder()
	b.AddLog(LogFilter{Address: []string{"0xaaa"}}, rangeset.Bounded(0, 10))
	b.AddLog(LogFilter{Address: []string{"0xbbb"}}, rangeset.Bounded(5, 15))
	q := b.Build()

	require.Len(t, q.PerRange, 3)
	assert.Equal(t, rangeset.Bounded(0, 4), q.PerRange[0].Range)
	assert.Len(t, q.PerRange[0].Logs, 1)
	assert.Equal(t, rangeset.Bounded(5, 10), q.PerRange[1].Range)
	assert.Len(t, q.PerRange[1].Logs, 2)
	assert.Equal(t, rangeset.Bounded(11, 15), q.PerRange[2].Range)
	assert.Len(t, q.PerRange[2].Logs, 1)
}

func TestBuilder_IncludeAllBlocksIsOred(t *testing.T) {
	b := NewBuilder()
	b.AddLog(LogFilter{}, rangeset.Bounded(0, 10))
	b.IncludeAllBlocks(rangeset.Bounded(5, 15))
	q := b.Build()

	var found bool
	for _, rr := range q.PerRange {
		if rr.Range.Contains(7) {
			assert.True(t, rr.IncludeAllBlocks)
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuilder_SetRangeClipsOutput(t *testing.T) {
	b := NewBuilder()
	b.AddLog(LogFilter{}, rangeset.Bounded(0, 100))
	b.SetRange(rangeset.Bounded(10, 20))
	q := b.Build()

	require.Len(t, q.PerRange, 1)
	assert.Equal(t, rangeset.Bounded(10, 20), q.PerRange[0].Range)
	assert.Equal(t, rangeset.Bounded(10, 20), q.Range)
}

func TestFieldSelection_WithAlwaysSelectedUnions(t *testing.T) {
	fs := FieldSelection{Block: map[string]bool{"timestamp": true}}
	eff := fs.WithAlwaysSelected()
	assert.True(t, eff.Block["timestamp"])
	assert.True(t, eff.Block["number"])
	assert.True(t, eff.Block["hash"])
	assert.True(t, eff.Block["parentHash"])
	assert.True(t, eff.Log["logIndex"])
}
