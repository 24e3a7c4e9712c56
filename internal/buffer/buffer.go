// Package buffer implements the bounded single-producer/single-consumer
// rendezvous the streaming client hands decoded blocks through: a small
// state machine with three readiness triggers (size, idle time, wait
// time), per spec.md §9, plus a backpressure threshold enforced with a
// weighted semaphore sized to maxBytes, the teacher's own
// golang.org/x/sync/semaphore pattern for bounding concurrent work.
package buffer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
)

type state int

const (
	stateFilling state = iota
	stateReady
	stateClosed
	stateFailed
)

// Batch is one handoff's worth of blocks plus the raw on-wire byte count
// that produced them.
type Batch struct {
	Blocks []blocktypes.Block
	Bytes  int
}

// Params are the buffer's tunable thresholds, defaulted the way spec §4.4
// prescribes.
type Params struct {
	MinBytes    int
	MaxBytes    int
	MaxIdleTime time.Duration
	MaxWaitTime time.Duration
}

const (
	defaultMinBytes    = 40 * 1024 * 1024
	defaultMaxIdleTime = 300 * time.Millisecond
	defaultMaxWaitTime = 5000 * time.Millisecond
)

// WithDefaults fills unset (zero) fields with spec §4.4's defaults.
// MaxBytes defaults to MinBytes when left unset.
func (p Params) WithDefaults() Params {
	if p.MinBytes <= 0 {
		p.MinBytes = defaultMinBytes
	}
	if p.MaxBytes <= 0 {
		p.MaxBytes = p.MinBytes
	}
	if p.MaxIdleTime <= 0 {
		p.MaxIdleTime = defaultMaxIdleTime
	}
	if p.MaxWaitTime <= 0 {
		p.MaxWaitTime = defaultMaxWaitTime
	}
	return p
}

// Buffer is the block buffer of spec §4.4. The zero value is not usable;
// construct with New.
type Buffer struct {
	params Params

	mu   sync.Mutex
	cond *sync.Cond

	st state
	err error

	blocks []blocktypes.Block
	bytes  int

	lastPull time.Time

	sem      *semaphore.Weighted
	reserved int
}

// New returns an empty, filling buffer.
func New(params Params) *Buffer {
	params = params.WithDefaults()
	b := &Buffer{
		params:   params,
		st:       stateFilling,
		lastPull: time.Now(),
		sem:      semaphore.NewWeighted(int64(params.MaxBytes)),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Reserve blocks the producer until n bytes fit under maxBytes (spec
// §4.4 backpressure), or ctx is cancelled. The caller must follow a
// successful Reserve with an Append of the same n. A single line larger
// than the whole backpressure budget is clamped to the budget rather
// than left to deadlock forever waiting for room that can never exist.
func (b *Buffer) Reserve(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	w := int64(n)
	if cap := int64(b.params.MaxBytes); w > cap {
		w = cap
	}
	if err := b.sem.Acquire(ctx, w); err != nil {
		return err
	}
	b.mu.Lock()
	b.reserved += int(w)
	b.mu.Unlock()
	return nil
}

// Append adds a decoded block and its raw line length to the buffer. It
// returns true if the buffer has crossed minBytes and is now ready for
// handoff (trigger 1 of §4.4); the caller is still responsible for
// calling MarkReady to actually flip the readiness flag and wake the
// consumer, since idle/wait timers may also decide to do so concurrently.
func (b *Buffer) Append(block blocktypes.Block, lineLen int) (readyBySize bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.blocks = append(b.blocks, block)
	b.bytes += lineLen

	return b.bytes >= b.params.MinBytes
}

// Bytes returns the buffer's current byte count.
func (b *Buffer) Bytes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bytes
}

// BlockCount returns the number of blocks currently buffered, for
// operator-facing snapshots.
func (b *Buffer) BlockCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blocks)
}

// Empty reports whether the buffer currently holds no blocks.
func (b *Buffer) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blocks) == 0
}

// MarkReady flips the buffer's readiness flag and wakes a pending Take,
// regardless of which trigger fired. A no-op on an already-ready, empty,
// closed or failed buffer.
func (b *Buffer) MarkReady() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.st != stateFilling || len(b.blocks) == 0 {
		return
	}
	b.st = stateReady
	b.cond.Broadcast()
}

// Take blocks until the buffer is ready, closed or failed, then returns
// the accumulated batch and resets the buffer to empty/filling. A Take
// against a closed buffer with nothing pending returns ok=false. A Take
// against a failed buffer returns the producer's error. Take also
// releases any bytes reserved via Reserve, unblocking a producer parked
// there.
func (b *Buffer) Take(ctx context.Context) (Batch, bool, error) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.cond.Broadcast()
			b.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	b.mu.Lock()

	for b.st == stateFilling && ctx.Err() == nil {
		b.cond.Wait()
	}

	if ctx.Err() != nil {
		b.mu.Unlock()
		return Batch{}, false, ctx.Err()
	}

	switch b.st {
	case stateFailed:
		err := b.err
		b.st = stateClosed
		b.blocks = nil
		b.bytes = 0
		b.mu.Unlock()
		return Batch{}, false, err
	case stateClosed:
		if len(b.blocks) == 0 {
			b.mu.Unlock()
			return Batch{}, false, nil
		}
	case stateReady:
	}

	batch := Batch{Blocks: b.blocks, Bytes: b.bytes}
	b.blocks = nil
	b.bytes = 0
	b.lastPull = time.Now()
	if b.st != stateClosed {
		b.st = stateFilling
	}
	reserved := b.reserved
	b.reserved = 0
	b.cond.Broadcast()
	b.mu.Unlock()

	if reserved > 0 {
		b.sem.Release(int64(reserved))
	}
	return batch, true, nil
}

// Close forces a handoff of any remaining tail (trigger 4 of §4.4) and
// marks the buffer closed: any subsequent Take on an empty buffer returns
// end-of-stream. Idempotent.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.st == stateClosed || b.st == stateFailed {
		return
	}
	b.st = stateClosed
	b.cond.Broadcast()
}

// Fail records a producer error and closes the buffer; the error is
// surfaced to the next Take, after which the buffer behaves as closed.
func (b *Buffer) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.st == stateClosed || b.st == stateFailed {
		return
	}
	b.st = stateFailed
	b.err = err
	b.cond.Broadcast()
}

// TimeSinceLastPull reports how long it has been since the last
// successful Take, for the ingest loop's wait-timer trigger.
func (b *Buffer) TimeSinceLastPull() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Since(b.lastPull)
}
