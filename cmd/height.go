package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configs "github.com/thirdweb-dev/portal-client/configs"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
	"github.com/thirdweb-dev/portal-client/internal/portalclient/httptransport"
)

var heightCmd = &cobra.Command{
	Use:   "height",
	Short: "Print the portal's current finalized height",
	Run: func(cmd *cobra.Command, args []string) {
		transport := httptransport.New(configs.Cfg.Portal.URL)
		client := portalclient.New(transport, clientConfigFromCfg())

		h, err := client.GetFinalizedHeight(cmd.Context())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch finalized height")
		}
		fmt.Println(h)
	},
}
