package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
)

// Badger is embedded, so this test needs no external service — unlike
// sink/kafka and sink/cursor, which talk to a real broker/Redis.
func TestStore_ConsumerForPersistsLastBlockAndFinalizedHead(t *testing.T) {
	store, err := Open(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Load("evm-mainnet")
	require.NoError(t, err)
	assert.False(t, found)

	consume := store.ConsumerFor("evm-mainnet")
	batch := portalclient.Batch{
		FinalizedHead: 42,
		Blocks: []blocktypes.Block{
			{Header: blocktypes.Header{Number: blocktypes.Number(10)}},
			{Header: blocktypes.Header{Number: blocktypes.Number(11)}},
		},
	}
	require.NoError(t, consume(batch))

	got, found, err := store.Load("evm-mainnet")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(11), got.LastBlock)
	assert.Equal(t, uint64(42), got.FinalizedHead)
}

// An empty batch (e.g. a zero-block handoff) is a no-op, not an error,
// and must not clobber a previously stored checkpoint.
func TestStore_ConsumerForIgnoresEmptyBatches(t *testing.T) {
	store, err := Open(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	consume := store.ConsumerFor("evm-mainnet")
	require.NoError(t, consume(portalclient.Batch{
		Blocks: []blocktypes.Block{{Header: blocktypes.Header{Number: blocktypes.Number(5)}}},
	}))
	require.NoError(t, consume(portalclient.Batch{FinalizedHead: 99}))

	got, found, err := store.Load("evm-mainnet")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(5), got.LastBlock)
}

// Separate stream names key independent checkpoints in the same store.
func TestStore_ConsumerForKeysByStreamName(t *testing.T) {
	store, err := Open(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.ConsumerFor("a")(portalclient.Batch{
		Blocks: []blocktypes.Block{{Header: blocktypes.Header{Number: blocktypes.Number(1)}}},
	}))
	require.NoError(t, store.ConsumerFor("b")(portalclient.Batch{
		Blocks: []blocktypes.Block{{Header: blocktypes.Header{Number: blocktypes.Number(2)}}},
	}))

	a, _, err := store.Load("a")
	require.NoError(t, err)
	b, _, err := store.Load("b")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a.LastBlock)
	assert.Equal(t, uint64(2), b.LastBlock)
}
