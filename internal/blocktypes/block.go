// Package blocktypes is the minimal block-line decoder the streaming
// client needs: enough of the wire shape to read header.number (to
// advance fromBlock) and to carry whatever optional fields the caller's
// field selection asked the portal to include. It intentionally does not
// build the richer block-entity object graph a consumer might want —
// that mapping belongs to the caller, per the data-source façade's
// contract.
package blocktypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Header carries the block-header fields the portal can return. Number,
// Hash and ParentHash are always present — the portal includes them
// regardless of field selection — every other field is populated only
// when selected.
type Header struct {
	Number           Number        `json:"number"`
	Hash             common.Hash   `json:"hash"`
	ParentHash       common.Hash   `json:"parentHash"`
	Timestamp        *Number       `json:"timestamp,omitempty"`
	Nonce            *string       `json:"nonce,omitempty"`
	Sha3Uncles       *common.Hash  `json:"sha3Uncles,omitempty"`
	MixHash          *common.Hash  `json:"mixHash,omitempty"`
	Miner            *common.Address `json:"miner,omitempty"`
	StateRoot        *common.Hash  `json:"stateRoot,omitempty"`
	TransactionsRoot *common.Hash  `json:"transactionsRoot,omitempty"`
	ReceiptsRoot     *common.Hash  `json:"receiptsRoot,omitempty"`
	LogsBloom        *string       `json:"logsBloom,omitempty"`
	Size             *Number       `json:"size,omitempty"`
	ExtraData        *string       `json:"extraData,omitempty"`
	Difficulty       *uint256.Int  `json:"difficulty,omitempty"`
	GasLimit         *uint256.Int  `json:"gasLimit,omitempty"`
	GasUsed          *uint256.Int  `json:"gasUsed,omitempty"`
	BaseFeePerGas    *uint256.Int  `json:"baseFeePerGas,omitempty"`
	WithdrawalsRoot  *common.Hash  `json:"withdrawalsRoot,omitempty"`
}

// Transaction fields. TransactionIndex is always selected; everything
// else depends on the caller's field selection.
type Transaction struct {
	TransactionIndex     Number          `json:"transactionIndex"`
	Hash                 *common.Hash    `json:"hash,omitempty"`
	Nonce                *Number         `json:"nonce,omitempty"`
	From                 *common.Address `json:"from,omitempty"`
	To                   *common.Address `json:"to,omitempty"`
	Value                *uint256.Int    `json:"value,omitempty"`
	Gas                  *Number         `json:"gas,omitempty"`
	GasPrice             *uint256.Int    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *uint256.Int    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *uint256.Int    `json:"maxPriorityFeePerGas,omitempty"`
	Input                *string         `json:"input,omitempty"`
	Type                 *Number         `json:"type,omitempty"`
	ChainID              *uint256.Int    `json:"chainId,omitempty"`
	V                    *uint256.Int    `json:"v,omitempty"`
	R                    *uint256.Int    `json:"r,omitempty"`
	S                    *uint256.Int    `json:"s,omitempty"`
	Sighash              *string         `json:"sighash,omitempty"`
}

// Log fields. LogIndex and TransactionIndex are always selected.
type Log struct {
	LogIndex         Number        `json:"logIndex"`
	TransactionIndex Number        `json:"transactionIndex"`
	Address          *common.Address `json:"address,omitempty"`
	Topics           []common.Hash `json:"topics,omitempty"`
	Data             *string       `json:"data,omitempty"`
	TransactionHash  *common.Hash  `json:"transactionHash,omitempty"`
	Removed          *bool         `json:"removed,omitempty"`
}

// Trace fields. TransactionIndex, TraceAddress and Type are always
// selected.
type Trace struct {
	TransactionIndex Number          `json:"transactionIndex"`
	TraceAddress     []int           `json:"traceAddress"`
	Type             string          `json:"type"`
	CallType         *string         `json:"callType,omitempty"`
	From             *common.Address `json:"from,omitempty"`
	To               *common.Address `json:"to,omitempty"`
	Value            *uint256.Int    `json:"value,omitempty"`
	Gas              *Number         `json:"gas,omitempty"`
	GasUsed          *Number         `json:"gasUsed,omitempty"`
	Input            *string         `json:"input,omitempty"`
	Output           *string         `json:"output,omitempty"`
	Error            *string         `json:"error,omitempty"`
	RefundAddress    *common.Address `json:"refundAddress,omitempty"`
	RewardAuthor     *common.Address `json:"rewardAuthor,omitempty"`
	RewardType       *string         `json:"rewardType,omitempty"`
	Subtraces        *int            `json:"subtraces,omitempty"`
}

// StateDiff fields. TransactionIndex, Address, Key and Kind are always
// selected.
type StateDiff struct {
	TransactionIndex Number         `json:"transactionIndex"`
	Address          common.Address `json:"address"`
	Key              string         `json:"key"`
	Kind             string         `json:"kind"`
	Prev             *string        `json:"prev,omitempty"`
	Next             *string        `json:"next,omitempty"`
}

// Block is one line of the portal's newline-delimited stream body.
type Block struct {
	Header       Header      `json:"header"`
	Transactions []Transaction `json:"transactions,omitempty"`
	Logs         []Log         `json:"logs,omitempty"`
	Traces       []Trace       `json:"traces,omitempty"`
	StateDiffs   []StateDiff   `json:"stateDiffs,omitempty"`
}
