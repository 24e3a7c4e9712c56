package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdweb-dev/portal-client/internal/blocktypes"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
)

func TestFanout_CallsEveryConsumerInOrder(t *testing.T) {
	var calls []string
	mark := func(name string) Consumer {
		return func(portalclient.Batch) error {
			calls = append(calls, name)
			return nil
		}
	}

	consume := Fanout(mark("a"), nil, mark("b"), mark("c"))
	batch := portalclient.Batch{Blocks: []blocktypes.Block{{Header: blocktypes.Header{Number: blocktypes.Number(1)}}}}
	require.NoError(t, consume(batch))
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestFanout_ReturnsFirstErrorAndSkipsRest(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	consume := Fanout(
		func(portalclient.Batch) error { calls = append(calls, "a"); return nil },
		func(portalclient.Batch) error { calls = append(calls, "b"); return boom },
		func(portalclient.Batch) error { calls = append(calls, "c"); return nil },
	)

	err := consume(portalclient.Batch{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestFanout_EmptyConsumersIsNoOp(t *testing.T) {
	consume := Fanout()
	assert.NoError(t, consume(portalclient.Batch{}))
}
