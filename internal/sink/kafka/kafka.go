// Package kafka publishes delivered stream batches to a Kafka topic. It
// sits downstream of the data-source façade, never inside the core
// streaming client — the core's "does not persist progress, does not
// decode into a domain object model" contract stays intact regardless of
// which sinks a caller attaches.
//
// Grounded on the teacher's internal/publisher/newkafka publisher:
// singleton-free client construction, optional SASL/TLS, per-batch
// metrics, generalized from chain-indexed block data to arbitrary
// stream batches keyed by stream label and finalized head.
package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	"github.com/thirdweb-dev/portal-client/internal/metrics"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
)

// Config configures the Kafka sink.
type Config struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// Sink publishes every non-empty batch it is given to a Kafka topic,
// keyed by stream label and the batch's finalized head.
type Sink struct {
	client *kgo.Client
	topic  string
	label  string
}

// New dials Kafka and returns a Sink for topic cfg.Topic. label
// identifies this sink's stream in metrics.
func New(ctx context.Context, cfg Config, label string) (*Sink, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID(fmt.Sprintf("portal-client-%s", label)),
		kgo.MaxBufferedRecords(1_000_000),
		kgo.ProducerBatchMaxBytes(16_000_000),
		kgo.MetadataMaxAge(60 * time.Second),
		kgo.DialTimeout(10 * time.Second),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.Username,
			Pass: cfg.Password,
		}.AsMechanism()))
		dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(dialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka sink: create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka sink: ping: %w", err)
	}

	return &Sink{client: client, topic: cfg.Topic, label: label}, nil
}

// Consume implements datasource.BatchConsumer: publish batch as a single
// record keyed by stream label and the batch's finalized head.
func (s *Sink) Consume(batch portalclient.Batch) error {
	if len(batch.Blocks) == 0 {
		return nil
	}

	payload, err := json.Marshal(batch.Blocks)
	if err != nil {
		metrics.SinkErrors.WithLabelValues("kafka").Inc()
		return fmt.Errorf("kafka sink: marshal batch: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(fmt.Sprintf("%s-%d", s.label, batch.FinalizedHead)),
		Value: payload,
	}

	done := make(chan error, 1)
	s.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
		done <- err
	})
	if err := <-done; err != nil {
		metrics.SinkErrors.WithLabelValues("kafka").Inc()
		log.Error().Err(err).Str("sink", "kafka").Msg("failed to publish batch")
		return fmt.Errorf("kafka sink: publish: %w", err)
	}

	metrics.SinkPublishedRecords.WithLabelValues("kafka").Add(float64(len(batch.Blocks)))
	return nil
}

// Close releases the underlying Kafka client.
func (s *Sink) Close() {
	s.client.Close()
}
