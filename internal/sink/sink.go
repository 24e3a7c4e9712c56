// Package sink holds the optional, façade-downstream batch consumers
// (sink/kafka, sink/cursor, sink/checkpoint) plus the combinator that
// lets a caller attach any number of them to one stream without the
// streaming client or the data-source façade knowing they exist.
package sink

import "github.com/thirdweb-dev/portal-client/internal/portalclient"

// Consumer matches datasource.BatchConsumer's signature without this
// package depending on datasource, so a Consumer built here works
// equally against the façade's GetBlockStream or directly against a
// portalclient.Stream.Pull loop.
type Consumer func(portalclient.Batch) error

// Fanout returns a Consumer that calls each non-nil consumer in
// consumers, in order, for every batch, stopping at and returning the
// first error. An empty or all-nil consumers list yields a no-op
// Consumer.
func Fanout(consumers ...Consumer) Consumer {
	return func(batch portalclient.Batch) error {
		for _, c := range consumers {
			if c == nil {
				continue
			}
			if err := c(batch); err != nil {
				return err
			}
		}
		return nil
	}
}
