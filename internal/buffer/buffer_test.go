package buffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
)

func blockNum(n uint64) blocktypes.Block {
	return blocktypes.Block{Header: blocktypes.Header{Number: blocktypes.Number(n)}}
}

// S1-style: 10-byte lines, minBytes=20 — readiness fires after the
// second line without waiting for additional chunks.
func TestBuffer_ReadyWithoutWaitingForMoreChunksOnceMinBytesCrossed(t *testing.T) {
	b := New(Params{MinBytes: 20, MaxBytes: 100})

	ready := b.Append(blockNum(1), 10)
	assert.False(t, ready)
	ready = b.Append(blockNum(2), 10)
	assert.True(t, ready) // readiness fires on the second line, no third chunk needed

	b.MarkReady()
	b.Close() // server stream ends; trigger 4 forces handoff of the tail

	ctx := context.Background()
	batch, ok, err := b.Take(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, batch.Bytes)
	assert.Len(t, batch.Blocks, 2)

	_, ok2, err2 := b.Take(ctx)
	require.NoError(t, err2)
	assert.False(t, ok2)
}

// S4: maxBytes=50, five 10-byte lines fully reserve the budget — a sixth
// Reserve must park until a Take drains and releases the buffer.
func TestBuffer_BackpressureSuspendsProducerUntilTake(t *testing.T) {
	b := New(Params{MinBytes: 1000, MaxBytes: 50})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Reserve(ctx, 10))
		b.Append(blockNum(uint64(i)), 10)
	}
	b.MarkReady()

	waitErrCh := make(chan error, 1)
	go func() {
		waitErrCh <- b.Reserve(ctx, 10)
	}()

	select {
	case <-waitErrCh:
		t.Fatal("producer should still be parked on backpressure before any Take")
	case <-time.After(30 * time.Millisecond):
	}

	_, ok, err := b.Take(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	select {
	case err := <-waitErrCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer was not unblocked after Take drained and released the buffer")
	}
}

// S5-style: idle-timer driven handoff below minBytes — MarkReady can
// fire purely from an external idle timer without bytes ever crossing
// minBytes.
func TestBuffer_MarkReadyHandsOffBelowMinBytesWhenIdleTimerFires(t *testing.T) {
	b := New(Params{MinBytes: 1_000_000, MaxBytes: 1_000_000, MaxIdleTime: 100 * time.Millisecond})

	ready := b.Append(blockNum(1), 100)
	ready = ready || b.Append(blockNum(2), 100) || b.Append(blockNum(3), 100)
	assert.False(t, ready)

	b.MarkReady() // simulates the ingest loop's idle timer firing

	batch, ok, err := b.Take(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 300, batch.Bytes)
	assert.Len(t, batch.Blocks, 3)
}

func TestBuffer_TakeOnEmptyClosedBufferReturnsEndOfStream(t *testing.T) {
	b := New(Params{})
	b.Close()
	_, ok, err := b.Take(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuffer_FailSurfacesErrorOnNextTakeThenActsClosed(t *testing.T) {
	b := New(Params{})
	boom := errors.New("boom")
	b.Append(blockNum(1), 10)
	b.Fail(boom)

	_, ok, err := b.Take(context.Background())
	assert.False(t, ok)
	assert.Equal(t, boom, err)

	_, ok2, err2 := b.Take(context.Background())
	require.NoError(t, err2)
	assert.False(t, ok2)
}

func TestBuffer_TakeUnblocksOnContextCancel(t *testing.T) {
	b := New(Params{})
	ctx, cancel := context.WithCancel(context.Background())

	doneCh := make(chan error, 1)
	go func() {
		_, _, err := b.Take(ctx)
		doneCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-doneCh:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Take did not unblock on context cancellation")
	}
}

func TestParams_WithDefaults(t *testing.T) {
	p := Params{}.WithDefaults()
	assert.Equal(t, defaultMinBytes, p.MinBytes)
	assert.Equal(t, p.MinBytes, p.MaxBytes)
	assert.Equal(t, defaultMaxIdleTime, p.MaxIdleTime)
	assert.Equal(t, defaultMaxWaitTime, p.MaxWaitTime)
}
