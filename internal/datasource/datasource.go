// Package datasource is the thin composition layer of spec §4.6: it
// wires a query.Builder's per-range output into repeated
// portalclient.Client stream calls, unioning the caller's field
// selection with the always-selected set exactly once.
package datasource

import (
	"context"

	"github.com/thirdweb-dev/portal-client/internal/portalclient"
	"github.com/thirdweb-dev/portal-client/internal/query"
)

// DataSource is the façade a consumer of this module is expected to
// hold. It owns no buffering or HTTP state of its own — both live in the
// wrapped Client.
type DataSource struct {
	client *portalclient.Client
	fields query.FieldSelection
}

// New returns a DataSource delegating to client, with fields as the
// base (pre-always-selected) field projection applied to every stream.
func New(client *portalclient.Client, fields query.FieldSelection) *DataSource {
	return &DataSource{client: client, fields: fields.WithAlwaysSelected()}
}

// GetHeight and GetFinalizedHeight both delegate to the client's height
// poll; the façade draws no distinction between them because the
// streaming client itself only tracks the finalized head.
func (d *DataSource) GetHeight(ctx context.Context) (uint64, error) {
	return d.client.GetFinalizedHeight(ctx)
}

// GetFinalizedHeight delegates to the client's height poll.
func (d *DataSource) GetFinalizedHeight(ctx context.Context) (uint64, error) {
	return d.client.GetFinalizedHeight(ctx)
}

// BatchConsumer receives each delivered batch, in order, across every
// range segment of a GetBlockStream call.
type BatchConsumer func(portalclient.Batch) error

// GetBlockStream iterates q's per-range segments in order and for each
// opens a finalized stream with the façade's effective field selection,
// forwarding every batch to consume until the segment is exhausted, an
// error occurs, or ctx is cancelled. It takes no outer range and clips
// nothing itself: the segments are used exactly as q holds them (an outer
// range set with Builder.SetRange is already applied by Build).
func (d *DataSource) GetBlockStream(ctx context.Context, q query.Query, opts portalclient.Options, consume BatchConsumer) error {
	for _, rr := range q.PerRange {
		if err := ctx.Err(); err != nil {
			return err
		}

		wireReq := rr.ToWireRequest(d.fields, rr.Range.From)
		stream := d.client.GetFinalizedStream(ctx, wireReq, opts)

		if err := drainSegment(ctx, stream, consume); err != nil {
			stream.Cancel()
			return err
		}
	}
	return nil
}

func drainSegment(ctx context.Context, stream *portalclient.Stream, consume BatchConsumer) error {
	defer stream.Cancel()
	for {
		batch, ok, err := stream.Pull(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := consume(batch); err != nil {
			return err
		}
	}
}
