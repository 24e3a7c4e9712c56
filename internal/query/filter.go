// Package query implements the portal client's query builder: accumulate
// per-range filters and field projections, merge and normalize them, and
// emit the canonical wire request the portal's finalized-stream endpoint
// expects.
package query

import "strings"

// LogFilter constrains which logs (and their co-returned records) the
// portal must include for a block. All string-array fields are matched
// case-insensitively on the wire; AddLog lowercases them up front so later
// merges compare equal strings as equal.
type LogFilter struct {
	Address []string
	Topic0  []string
	Topic1  []string
	Topic2  []string
	Topic3  []string

	Transaction           *bool
	TransactionTraces      *bool
	TransactionLogs        *bool
	TransactionStateDiffs  *bool
}

// TransactionFilter constrains which transactions the portal must include.
type TransactionFilter struct {
	To      []string
	From    []string
	Sighash []string
	Type    []int

	Logs       *bool
	Traces     *bool
	StateDiffs *bool
}

// TraceFilter constrains which call/create/suicide/reward traces the
// portal must include.
type TraceFilter struct {
	Type                 []string
	CreateFrom           []string
	CallTo               []string
	CallFrom             []string
	CallSighash          []string
	SuicideRefundAddress []string
	RewardAuthor         []string

	Transaction      *bool
	TransactionLogs  *bool
	Subtraces        *bool
	Parents          *bool
}

// StateDiffFilter constrains which state diffs the portal must include.
type StateDiffFilter struct {
	Address []string
	Key     []string
	Kind    []string

	Transaction *bool
}

func lowercaseAll(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func (f LogFilter) normalized() LogFilter {
	f.Address = lowercaseAll(f.Address)
	f.Topic0 = lowercaseAll(f.Topic0)
	f.Topic1 = lowercaseAll(f.Topic1)
	f.Topic2 = lowercaseAll(f.Topic2)
	f.Topic3 = lowercaseAll(f.Topic3)
	return f
}

func (f TransactionFilter) normalized() TransactionFilter {
	f.To = lowercaseAll(f.To)
	f.From = lowercaseAll(f.From)
	f.Sighash = lowercaseAll(f.Sighash)
	return f
}

func (f TraceFilter) normalized() TraceFilter {
	f.CreateFrom = lowercaseAll(f.CreateFrom)
	f.CallTo = lowercaseAll(f.CallTo)
	f.CallFrom = lowercaseAll(f.CallFrom)
	f.CallSighash = lowercaseAll(f.CallSighash)
	f.SuicideRefundAddress = lowercaseAll(f.SuicideRefundAddress)
	f.RewardAuthor = lowercaseAll(f.RewardAuthor)
	return f
}

func (f StateDiffFilter) normalized() StateDiffFilter {
	f.Address = lowercaseAll(f.Address)
	f.Key = lowercaseAll(f.Key)
	return f
}

func orBool(a, b *bool) *bool {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	v := *a || *b
	return &v
}
