// Package checkpoint is an embedded-KV alternative to the Redis cursor
// cache for single-process deployments, storing (streamName -> lastBlock,
// finalizedHead) in a small Badger database.
//
// Grounded on the teacher's internal/storage/badger.go: badger.DefaultOptions
// plus periodic value-log GC, generalized from a staging-data store to a
// tiny checkpoint record store.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/thirdweb-dev/portal-client/internal/metrics"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
)

// Config configures the Badger checkpoint store.
type Config struct {
	Dir string
}

// Checkpoint is the last block number and finalized head observed for a
// stream.
type Checkpoint struct {
	LastBlock     uint64 `json:"lastBlock"`
	FinalizedHead uint64 `json:"finalizedHead"`
}

// Store is a Badger-backed checkpoint store.
type Store struct {
	db       *badger.DB
	gcTicker *time.Ticker
	stopGC   chan struct{}
	stopOnce sync.Once
}

// Open opens (or creates) the checkpoint database at cfg.Dir and starts
// its background value-log GC loop.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("checkpoint store: open badger at %s: %w", cfg.Dir, err)
	}

	s := &Store{
		db:       db,
		gcTicker: time.NewTicker(5 * time.Minute),
		stopGC:   make(chan struct{}),
	}
	go s.runGC()
	return s, nil
}

func (s *Store) runGC() {
	for {
		select {
		case <-s.stopGC:
			return
		case <-s.gcTicker.C:
		again:
			if err := s.db.RunValueLogGC(0.5); err == nil {
				goto again
			}
		}
	}
}

func key(streamName string) []byte {
	return []byte("checkpoint:" + streamName)
}

// Load returns the last stored checkpoint for streamName, or ok=false if
// none is stored yet.
func (s *Store) Load(streamName string) (Checkpoint, bool, error) {
	var cur Checkpoint
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(streamName))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cur)
		})
	})
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint store: load %s: %w", streamName, err)
	}
	return cur, found, nil
}

// ConsumerFor returns a datasource.BatchConsumer that stores the
// trailing block number and finalized head of every batch it observes,
// under streamName.
func (s *Store) ConsumerFor(streamName string) func(portalclient.Batch) error {
	return func(batch portalclient.Batch) error {
		if len(batch.Blocks) == 0 {
			return nil
		}
		last := batch.Blocks[len(batch.Blocks)-1]
		cur := Checkpoint{
			LastBlock:     uint64(last.Header.Number),
			FinalizedHead: batch.FinalizedHead,
		}
		payload, err := json.Marshal(cur)
		if err != nil {
			metrics.SinkErrors.WithLabelValues("checkpoint").Inc()
			return fmt.Errorf("checkpoint store: encode %s: %w", streamName, err)
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key(streamName), payload)
		})
		if err != nil {
			metrics.SinkErrors.WithLabelValues("checkpoint").Inc()
			return fmt.Errorf("checkpoint store: store %s: %w", streamName, err)
		}
		metrics.SinkPublishedRecords.WithLabelValues("checkpoint").Add(float64(len(batch.Blocks)))
		return nil
	}
}

// Close stops the GC loop and closes the database.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stopGC) })
	s.gcTicker.Stop()
	return s.db.Close()
}
