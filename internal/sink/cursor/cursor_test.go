package cursor

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
)

// Redis is an external service this module doesn't embed, so this test
// only runs against one a developer or CI has actually started — unlike
// sink/checkpoint's Badger test, which needs nothing but a temp dir.
func testAddr(t *testing.T) string {
	addr := os.Getenv("PORTAL_CLIENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTAL_CLIENT_TEST_REDIS_ADDR not set, skipping sink/cursor integration test")
	}
	return addr
}

func TestCache_ConsumerForPersistsLastBlockAndFinalizedHead(t *testing.T) {
	addr := testAddr(t)
	ctx := context.Background()

	cache, err := New(ctx, Config{Addr: addr, KeyPrefix: "portal-client-test:"})
	require.NoError(t, err)
	defer cache.Close()

	streamName := "cursor-test-round-trip"
	consume := cache.ConsumerFor(streamName)
	batch := portalclient.Batch{
		FinalizedHead: 7,
		Blocks: []blocktypes.Block{
			{Header: blocktypes.Header{Number: blocktypes.Number(100)}},
			{Header: blocktypes.Header{Number: blocktypes.Number(101)}},
		},
	}
	require.NoError(t, consume(batch))

	got, found, err := cache.Load(ctx, streamName)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(101), got.LastBlock)
	assert.Equal(t, uint64(7), got.FinalizedHead)
}

func TestCache_LoadReturnsNotFoundForUnknownStream(t *testing.T) {
	addr := testAddr(t)
	ctx := context.Background()

	cache, err := New(ctx, Config{Addr: addr, KeyPrefix: "portal-client-test:"})
	require.NoError(t, err)
	defer cache.Close()

	_, found, err := cache.Load(ctx, "cursor-test-never-written")
	require.NoError(t, err)
	assert.False(t, found)
}
