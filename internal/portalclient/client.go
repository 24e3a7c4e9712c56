// Package portalclient implements the finalized streaming client of
// spec §4.5: a producer/consumer pipeline turning a sequence of HTTP
// chunked responses into one logically continuous, backpressure-aware
// block stream, resuming across server-side truncations and polling at
// the head. HTTP access is abstracted behind the Transport interface so
// this package never imports a concrete HTTP stack.
package portalclient

import (
	"context"
	"time"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
	"github.com/thirdweb-dev/portal-client/internal/buffer"
	"github.com/thirdweb-dev/portal-client/internal/query"
)

// headPollThrottle is the minimum interval between finalized-height
// polls, per spec §4.5 ("minimum interval ≈ 10-20s").
const headPollThrottle = 15 * time.Second

// Config holds the client-construction-time defaults for buffer
// thresholds and head polling. Per-stream Options may override any of
// these for an individual GetFinalizedStream call.
type Config struct {
	MinBytes         int
	MaxBytes         int
	MaxIdleTime      time.Duration
	MaxWaitTime      time.Duration
	HeadPollInterval time.Duration
	StopOnHead       bool
}

const defaultHeadPollInterval = 5000 * time.Millisecond

func (c Config) withDefaults() Config {
	if c.HeadPollInterval <= 0 {
		c.HeadPollInterval = defaultHeadPollInterval
	}
	return c
}

func (c Config) bufferParams() buffer.Params {
	return buffer.Params{
		MinBytes:    c.MinBytes,
		MaxBytes:    c.MaxBytes,
		MaxIdleTime: c.MaxIdleTime,
		MaxWaitTime: c.MaxWaitTime,
	}
}

// Options overrides Config for a single stream.
type Options struct {
	MinBytes         *int
	MaxBytes         *int
	MaxIdleTime      *time.Duration
	MaxWaitTime      *time.Duration
	HeadPollInterval *time.Duration
	StopOnHead       *bool
	// Label identifies the stream in metrics; defaults to "default".
	Label string
}

func (o Options) apply(base Config) Config {
	if o.MinBytes != nil {
		base.MinBytes = *o.MinBytes
	}
	if o.MaxBytes != nil {
		base.MaxBytes = *o.MaxBytes
	}
	if o.MaxIdleTime != nil {
		base.MaxIdleTime = *o.MaxIdleTime
	}
	if o.MaxWaitTime != nil {
		base.MaxWaitTime = *o.MaxWaitTime
	}
	if o.HeadPollInterval != nil {
		base.HeadPollInterval = *o.HeadPollInterval
	}
	if o.StopOnHead != nil {
		base.StopOnHead = *o.StopOnHead
	}
	return base.withDefaults()
}

// Client is the finalized streaming client.
type Client struct {
	transport Transport
	cfg       Config
}

// New returns a Client backed by transport, with cfg's zero fields
// defaulted per spec §4.4/§4.5.
func New(transport Transport, cfg Config) *Client {
	return &Client{transport: transport, cfg: cfg.withDefaults()}
}

// GetFinalizedHeight returns the portal's current finalized height.
func (c *Client) GetFinalizedHeight(ctx context.Context) (uint64, error) {
	return c.transport.Height(ctx)
}

// Batch is one handoff delivered to a stream consumer.
type Batch struct {
	FinalizedHead uint64
	Blocks        []blocktypes.Block
}

// GetFinalizedBatch issues req as a single, non-streaming request: it
// drives a stream to completion internally (stopping on head regardless
// of the caller's options) and concatenates every delivered batch.
func (c *Client) GetFinalizedBatch(ctx context.Context, req query.WireRequest) ([]blocktypes.Block, error) {
	stopOnHead := true
	stream := c.GetFinalizedStream(ctx, req, Options{StopOnHead: &stopOnHead, Label: "batch"})
	defer stream.Cancel()

	var blocks []blocktypes.Block
	for {
		batch, ok, err := stream.Pull(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return blocks, nil
		}
		blocks = append(blocks, batch.Blocks...)
	}
}

// GetFinalizedStream spawns the ingest task and returns a Stream whose
// Pull takes handoffs from its buffer. The ingest task and the caller's
// consumer loop communicate only through the buffer and ctx.
func (c *Client) GetFinalizedStream(ctx context.Context, req query.WireRequest, opts Options) *Stream {
	cfg := opts.apply(c.cfg)
	label := opts.Label
	if label == "" {
		label = "default"
	}

	streamCtx, cancel := context.WithCancel(ctx)
	buf := buffer.New(cfg.bufferParams())

	s := &Stream{
		buf:    buf,
		cancel: cancel,
		label:  label,
	}

	go c.ingest(streamCtx, buf, req, cfg, &s.finalizedHead, label)
	return s
}
