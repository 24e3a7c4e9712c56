package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	configs "github.com/thirdweb-dev/portal-client/configs"
	"github.com/thirdweb-dev/portal-client/internal/debugserver"
	customLogger "github.com/thirdweb-dev/portal-client/internal/log"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
	"github.com/thirdweb-dev/portal-client/internal/portalclient/httptransport"
	"github.com/thirdweb-dev/portal-client/internal/query"
	"github.com/thirdweb-dev/portal-client/internal/sink"
	"github.com/thirdweb-dev/portal-client/internal/sink/checkpoint"
	"github.com/thirdweb-dev/portal-client/internal/sink/cursor"
	"github.com/thirdweb-dev/portal-client/internal/sink/kafka"
)

var (
	streamFrom       uint64
	streamTo         uint64
	streamStopOnHead bool
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream finalized blocks as newline-delimited JSON to stdout",
	Run:   runStream,
}

func init() {
	streamCmd.Flags().Uint64Var(&streamFrom, "from", 0, "First block number to request")
	streamCmd.Flags().Uint64Var(&streamTo, "to", 0, "Last block number to request (0 = unbounded)")
	streamCmd.Flags().BoolVar(&streamStopOnHead, "stop-on-head", false, "Terminate the stream once the portal reports no more data, instead of polling")
}

const streamLabel = "stream"

func runStream(cmd *cobra.Command, args []string) {
	log := customLogger.ForStream(streamLabel)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	transport := httptransport.New(configs.Cfg.Portal.URL)
	client := portalclient.New(transport, clientConfigFromCfg())

	req := query.WireRequest{
		Type:             "evm",
		FromBlock:        streamFrom,
		Fields:           query.FieldSelection{}.WithAlwaysSelected(),
		IncludeAllBlocks: true,
	}
	if streamTo > 0 {
		req.ToBlock = &streamTo
	}

	stopOnHead := streamStopOnHead
	stream := client.GetFinalizedStream(ctx, req, portalclient.Options{StopOnHead: &stopOnHead, Label: streamLabel})
	defer stream.Cancel()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	stdoutConsumer := func(batch portalclient.Batch) error {
		for _, blk := range batch.Blocks {
			line, err := json.Marshal(blk)
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal block")
				continue
			}
			fmt.Fprintln(out, string(line))
		}
		return out.Flush()
	}

	sinks, closeSinks := attachSinksFromConfig(ctx, log)
	defer closeSinks()

	registry := startDebugServerIfEnabled(log)
	debugConsumer := func(batch portalclient.Batch) error {
		if registry == nil {
			return nil
		}
		snap := debugserver.StreamSnapshot{Label: streamLabel, FinalizedHead: batch.FinalizedHead}
		snap.BufferBytes, snap.BufferBlocks = stream.BufferStats()
		if n := len(batch.Blocks); n > 0 {
			snap.LastBlock = uint64(batch.Blocks[n-1].Header.Number)
		}
		registry.Update(snap)
		return nil
	}

	consume := sink.Fanout(append([]sink.Consumer{stdoutConsumer, debugConsumer}, sinks...)...)

	for {
		batch, ok, err := stream.Pull(ctx)
		if err != nil {
			log.Error().Err(err).Msg("stream ended with error")
			os.Exit(1)
		}
		if !ok {
			return
		}
		if err := consume(batch); err != nil {
			log.Error().Err(err).Msg("sink consumer failed")
			os.Exit(1)
		}
	}
}

// attachSinksFromConfig builds every sink enabled in configs.Cfg.Sinks
// and returns them alongside a cleanup func that closes whichever of
// them actually opened successfully.
func attachSinksFromConfig(ctx context.Context, log zerolog.Logger) ([]sink.Consumer, func()) {
	var consumers []sink.Consumer
	var closers []func()

	if cfg := configs.Cfg.Sinks.Kafka; cfg.Enabled {
		s, err := kafka.New(ctx, kafka.Config{Brokers: cfg.Brokers, Topic: cfg.Topic}, streamLabel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start kafka sink")
		}
		consumers = append(consumers, s.Consume)
		closers = append(closers, s.Close)
	}

	if cfg := configs.Cfg.Sinks.Cursor; cfg.Enabled {
		c, err := cursor.New(ctx, cursor.Config{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB, KeyPrefix: cfg.KeyPrefix})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start cursor sink")
		}
		consumers = append(consumers, c.ConsumerFor(streamLabel))
		closers = append(closers, func() { _ = c.Close() })
	}

	if cfg := configs.Cfg.Sinks.Checkpoint; cfg.Enabled {
		store, err := checkpoint.Open(checkpoint.Config{Dir: cfg.Dir})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start checkpoint sink")
		}
		consumers = append(consumers, store.ConsumerFor(streamLabel))
		closers = append(closers, func() { _ = store.Close() })
	}

	return consumers, func() {
		for _, c := range closers {
			c()
		}
	}
}

// startDebugServerIfEnabled runs the debug/metrics HTTP server for the
// lifetime of this stream process when configured, returning the
// Registry the consume loop should report snapshots to. Returns nil if
// the debug server is disabled.
func startDebugServerIfEnabled(log zerolog.Logger) *debugserver.Registry {
	if !configs.Cfg.DebugServer.Enabled {
		return nil
	}

	addr := configs.Cfg.DebugServer.Addr
	if addr == "" {
		addr = ":8090"
	}

	registry := debugserver.NewRegistry()
	engine := debugserver.New(registry)
	go func() {
		log.Info().Str("addr", addr).Msg("debug server listening")
		if err := engine.Run(addr); err != nil {
			log.Error().Err(err).Msg("debug server exited")
		}
	}()
	return registry
}
