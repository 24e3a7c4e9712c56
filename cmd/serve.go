package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configs "github.com/thirdweb-dev/portal-client/configs"
	"github.com/thirdweb-dev/portal-client/internal/debugserver"
)

// serveCmd runs the debug/metrics server on its own, with no stream
// attached — /debug/stream always reports zero snapshots in this mode,
// since nothing ever calls Registry.Update. Use this for a process that
// only needs /health and /metrics; `portalctl stream` runs the same
// server wired to its own consume loop when configs.Cfg.DebugServer is
// enabled, which is the only way /debug/stream reports anything.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the debug/metrics HTTP server standalone (no stream attached)",
	Run: func(cmd *cobra.Command, args []string) {
		addr := configs.Cfg.DebugServer.Addr
		if addr == "" {
			addr = ":8090"
		}

		registry := debugserver.NewRegistry()
		engine := debugserver.New(registry)

		log.Info().Str("addr", addr).Msg("debug server listening")
		if err := engine.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("debug server exited")
		}
	},
}
