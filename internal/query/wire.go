package query

// WireRequest is the JSON body POSTed to the portal's finalized-stream
// endpoint, one per contiguous range segment.
type WireRequest struct {
	Type     string `json:"type"`
	FromBlock uint64 `json:"fromBlock"`
	ToBlock   *uint64 `json:"toBlock,omitempty"`

	Fields FieldSelection `json:"fields"`

	Logs             []LogFilter         `json:"logs,omitempty"`
	Transactions     []TransactionFilter `json:"transactions,omitempty"`
	Traces           []TraceFilter       `json:"traces,omitempty"`
	StateDiffs       []StateDiffFilter   `json:"stateDiffs,omitempty"`
	IncludeAllBlocks bool                `json:"includeAllBlocks,omitempty"`
}

// ToWireRequest builds the wire request for a single range segment, given
// the effective (already always-selected-unioned) field selection and an
// overriding fromBlock — the streaming client advances fromBlock on
// resumption past r.Range.From.
func (r RangeRequest) ToWireRequest(fields FieldSelection, fromBlock uint64) WireRequest {
	return WireRequest{
		Type:             "evm",
		FromBlock:        fromBlock,
		ToBlock:          r.Range.To,
		Fields:           fields,
		Logs:             r.Logs,
		Transactions:     r.Transactions,
		Traces:           r.Traces,
		StateDiffs:       r.StateDiffs,
		IncludeAllBlocks: r.IncludeAllBlocks,
	}
}
