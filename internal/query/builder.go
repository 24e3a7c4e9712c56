package query

import (
	"github.com/thirdweb-dev/portal-client/internal/rangeset"
)

// payload is the builder's internal per-range accumulator: the
// concatenation of every filter of each kind added for ranges covering a
// given block, plus the logical OR of includeAllBlocks.
type payload struct {
	Logs             []LogFilter
	Transactions     []TransactionFilter
	Traces           []TraceFilter
	StateDiffs       []StateDiffFilter
	IncludeAllBlocks *bool
}

func mergePayload(a, b payload) payload {
	return payload{
		Logs:             append(append([]LogFilter{}, a.Logs...), b.Logs...),
		Transactions:     append(append([]TransactionFilter{}, a.Transactions...), b.Transactions...),
		Traces:           append(append([]TraceFilter{}, a.Traces...), b.Traces...),
		StateDiffs:       append(append([]StateDiffFilter{}, a.StateDiffs...), b.StateDiffs...),
		IncludeAllBlocks: orBool(a.IncludeAllBlocks, b.IncludeAllBlocks),
	}
}

// RangeRequest is one segment of a built Query: a disjoint block range and
// the filters that apply to it.
type RangeRequest struct {
	Range   rangeset.Range
	Logs    []LogFilter
	Transactions []TransactionFilter
	Traces       []TraceFilter
	StateDiffs   []StateDiffFilter
	IncludeAllBlocks bool
}

// Query is the builder's output: an outer range plus the disjoint,
// ascending-sorted per-range filter segments covering it.
type Query struct {
	Range    rangeset.Range
	PerRange []RangeRequest
}

// Builder accumulates per-range filters and emits a canonical Query. Each
// mutator returns the builder so calls can be chained; this is purely
// cosmetic, any equivalent API works.
type Builder struct {
	entries []rangeset.Entry[payload]
	outer   rangeset.Range
	hasOuter bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetRange sets the outer range that Build() clips its output to.
func (b *Builder) SetRange(r rangeset.Range) *Builder {
	b.outer = r
	b.hasOuter = true
	return b
}

func truePtr() *bool {
	v := true
	return &v
}

// AddLog normalizes filter's hex fields to lowercase and accumulates it
// for r.
func (b *Builder) AddLog(filter LogFilter, r rangeset.Range) *Builder {
	b.entries = append(b.entries, rangeset.Entry[payload]{
		Range:   r,
		Payload: payload{Logs: []LogFilter{filter.normalized()}},
	})
	return b
}

// AddTransaction normalizes filter's hex fields to lowercase and
// accumulates it for r.
func (b *Builder) AddTransaction(filter TransactionFilter, r rangeset.Range) *Builder {
	b.entries = append(b.entries, rangeset.Entry[payload]{
		Range:   r,
		Payload: payload{Transactions: []TransactionFilter{filter.normalized()}},
	})
	return b
}

// AddTrace normalizes filter's hex fields to lowercase and accumulates it
// for r.
func (b *Builder) AddTrace(filter TraceFilter, r rangeset.Range) *Builder {
	b.entries = append(b.entries, rangeset.Entry[payload]{
		Range:   r,
		Payload: payload{Traces: []TraceFilter{filter.normalized()}},
	})
	return b
}

// AddStateDiff normalizes filter's hex fields to lowercase and accumulates
// it for r.
func (b *Builder) AddStateDiff(filter StateDiffFilter, r rangeset.Range) *Builder {
	b.entries = append(b.entries, rangeset.Entry[payload]{
		Range:   r,
		Payload: payload{StateDiffs: []StateDiffFilter{filter.normalized()}},
	})
	return b
}

// IncludeAllBlocks marks r as requiring every block in range to be
// returned even if nothing else matched it.
func (b *Builder) IncludeAllBlocks(r rangeset.Range) *Builder {
	b.entries = append(b.entries, rangeset.Entry[payload]{
		Range:   r,
		Payload: payload{IncludeAllBlocks: truePtr()},
	})
	return b
}

// Build runs the merge described in spec §4.2/§4.3 over the accumulated
// entries and clips the result by the outer range, if one was set.
func (b *Builder) Build() Query {
	merged := rangeset.Merge(b.entries, mergePayload)
	if b.hasOuter {
		merged = rangeset.Clip(merged, b.outer)
	}

	q := Query{Range: b.outer}
	if !b.hasOuter && len(merged) > 0 {
		q.Range = outerBoundOf(merged)
	}
	for _, e := range merged {
		q.PerRange = append(q.PerRange, RangeRequest{
			Range:            e.Range,
			Logs:             e.Payload.Logs,
			Transactions:     e.Payload.Transactions,
			Traces:           e.Payload.Traces,
			StateDiffs:       e.Payload.StateDiffs,
			IncludeAllBlocks: e.Payload.IncludeAllBlocks != nil && *e.Payload.IncludeAllBlocks,
		})
	}
	return q
}

func outerBoundOf(entries []rangeset.Entry[payload]) rangeset.Range {
	out := entries[0].Range
	for _, e := range entries[1:] {
		if e.Range.From < out.From {
			out.From = e.Range.From
		}
		if out.To == nil {
			continue
		}
		if e.Range.To == nil {
			out.To = nil
			continue
		}
		if *e.Range.To > *out.To {
			out.To = e.Range.To
		}
	}
	return out
}
