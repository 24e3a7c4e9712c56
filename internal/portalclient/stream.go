package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
	"github.com/thirdweb-dev/portal-client/internal/buffer"
	"github.com/thirdweb-dev/portal-client/internal/lineutil"
	"github.com/thirdweb-dev/portal-client/internal/metrics"
	"github.com/thirdweb-dev/portal-client/internal/query"
)

// Stream is the consumer-facing handle returned by GetFinalizedStream.
type Stream struct {
	buf           *buffer.Buffer
	cancel        context.CancelFunc
	finalizedHead atomic.Uint64
	label         string
}

// Pull blocks until the next batch is ready, the stream ends, or ctx is
// cancelled. ok is false once the stream has ended cleanly (query
// exhausted, stopOnHead reached, or cancel); a non-nil error means the
// ingest task failed, or ctx itself was cancelled (ctx.Err() is returned).
func (s *Stream) Pull(ctx context.Context) (Batch, bool, error) {
	b, ok, err := s.buf.Take(ctx)
	if err != nil || !ok {
		return Batch{}, ok, err
	}
	batch := Batch{FinalizedHead: s.finalizedHead.Load(), Blocks: b.Blocks}
	metrics.DeliveredBlocks.WithLabelValues(s.label).Add(float64(len(batch.Blocks)))
	return batch, true, nil
}

// Cancel flips the stream's cancellation token. Idempotent; the next
// Pull (at most one batch already in flight, then) returns end-of-stream
// with no error.
func (s *Stream) Cancel() {
	s.cancel()
}

// BufferStats reports the streaming buffer's current occupancy, for
// operator-facing snapshots (internal/debugserver).
func (s *Stream) BufferStats() (bytes, blocks int) {
	return s.buf.Bytes(), s.buf.BlockCount()
}

// ingest is the producer loop of spec §4.5. It runs until ctx is
// cancelled, the query is exhausted, or a fatal error occurs, and closes
// buf exactly once on every exit path.
func (c *Client) ingest(ctx context.Context, buf *buffer.Buffer, req query.WireRequest, cfg Config, finalizedHead *atomic.Uint64, label string) {
	defer buf.Close()

	fromBlock := req.FromBlock
	toBlock := req.ToBlock
	var lastHeadPoll time.Time
	lastDelivered := int64(-1)

	for ctx.Err() == nil && (toBlock == nil || fromBlock <= *toBlock) {
		wireReq := req
		wireReq.FromBlock = fromBlock

		body, status, err := c.transport.OpenStream(ctx, wireReq)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.FatalErrors.WithLabelValues("transport").Inc()
			buf.Fail(fmt.Errorf("portalclient: open stream: %w", err))
			return
		}

		switch status {
		case http.StatusNoContent:
			body.Close()
			if cfg.StopOnHead {
				return
			}
			if !sleepRespectingCancel(ctx, cfg.HeadPollInterval) {
				return
			}
			continue

		case http.StatusOK:
			next, err := c.drain(ctx, body, buf, cfg, fromBlock, &lastDelivered)
			body.Close()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				cause := "decode"
				if errors.Is(err, errOutOfOrder) {
					cause = "order"
				}
				metrics.FatalErrors.WithLabelValues(cause).Inc()
				buf.Fail(err)
				return
			}
			if next > fromBlock {
				fromBlock = next
			}
			if toBlock == nil || fromBlock <= *toBlock {
				metrics.TruncationResumes.Inc()
			}

		default:
			body.Close()
			metrics.FatalErrors.WithLabelValues("status").Inc()
			buf.Fail(fmt.Errorf("portalclient: unexpected status %d from finalized-stream", status))
			return
		}

		if time.Since(lastHeadPoll) >= headPollThrottle {
			metrics.HeadPolls.Inc()
			if h, err := c.transport.Height(ctx); err == nil {
				finalizedHead.Store(h)
				metrics.FinalizedHead.Set(float64(h))
			}
			lastHeadPoll = time.Now()
		}
	}
}

// errOutOfOrder is the sentinel spec.md §7/§9 requires: a non-increasing
// block number from the portal is a fatal invariant violation, never a
// recoverable condition.
var errOutOfOrder = errors.New("portalclient: out-of-order block number")

// drain reads one HTTP response body to completion (or until a
// recoverable timeout/cancellation), appending decoded blocks to buf and
// enforcing backpressure. It returns the fromBlock to resume at.
// lastDelivered tracks the highest block number handed to buf across the
// whole stream (not just this response), starting at -1; every decoded
// block's number must be strictly greater than it.
func (c *Client) drain(ctx context.Context, body io.Reader, buf *buffer.Buffer, cfg Config, fromBlock uint64, lastDelivered *int64) (uint64, error) {
	splitter := lineutil.NewDefault()

	resetIdle := make(chan struct{}, 1)
	stopTimers := make(chan struct{})
	defer close(stopTimers)
	go runTimers(ctx, buf, cfg, resetIdle, stopTimers)

	chunk := make([]byte, 64*1024)
	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			lines := splitter.Feed(chunk[:n])
			if len(lines) > 0 {
				select {
				case resetIdle <- struct{}{}:
				default:
				}
			}
			for _, line := range lines {
				if len(bytes.TrimSpace(line)) == 0 {
					continue
				}
				var blk blocktypes.Block
				if err := json.Unmarshal(line, &blk); err != nil {
					return fromBlock, fmt.Errorf("portalclient: decode block line: %w", err)
				}

				num := int64(blk.Header.Number.Uint64())
				if *lastDelivered >= 0 && num <= *lastDelivered {
					return fromBlock, fmt.Errorf("%w: got %d after %d", errOutOfOrder, num, *lastDelivered)
				}
				*lastDelivered = num

				waitStart := time.Now()
				if err := buf.Reserve(ctx, len(line)); err != nil {
					return fromBlock, nil
				}
				if waited := time.Since(waitStart); waited > time.Millisecond {
					metrics.BufferBackpressureWaitSeconds.Observe(waited.Seconds())
				}

				if buf.Append(blk, len(line)) {
					buf.MarkReady()
					metrics.BufferHandoffsByTrigger.WithLabelValues("size").Inc()
				}
				fromBlock = uint64(blk.Header.Number) + 1
			}
			metrics.BufferBytes.Set(float64(buf.Bytes()))
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				buf.MarkReady()
				metrics.BufferHandoffsByTrigger.WithLabelValues("stream_end").Inc()
				return fromBlock, nil
			}
			if isRecoverableTimeout(readErr) {
				return fromBlock, nil
			}
			return fromBlock, fmt.Errorf("portalclient: read stream body: %w", readErr)
		}

		if ctx.Err() != nil {
			return fromBlock, nil
		}
	}
}

// runTimers arms the idle and wait timers of spec §4.4/§5 for the
// duration of one drain call, marking the buffer ready when either
// fires. It exits when stop closes or ctx is cancelled.
func runTimers(ctx context.Context, buf *buffer.Buffer, cfg Config, resetIdle <-chan struct{}, stop <-chan struct{}) {
	idle := time.NewTimer(cfg.MaxIdleTime)
	defer idle.Stop()
	wait := time.NewTimer(cfg.MaxWaitTime)
	defer wait.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-resetIdle:
			idle.Reset(cfg.MaxIdleTime)
		case <-idle.C:
			if !buf.Empty() {
				buf.MarkReady()
				metrics.BufferHandoffsByTrigger.WithLabelValues("idle").Inc()
			}
			idle.Reset(cfg.MaxIdleTime)
		case <-wait.C:
			if buf.TimeSinceLastPull() >= cfg.MaxWaitTime && !buf.Empty() {
				buf.MarkReady()
				metrics.BufferHandoffsByTrigger.WithLabelValues("wait").Inc()
			}
			wait.Reset(cfg.MaxWaitTime)
		}
	}
}

func sleepRespectingCancel(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func isRecoverableTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
