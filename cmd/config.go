package cmd

import (
	configs "github.com/thirdweb-dev/portal-client/configs"
	"github.com/thirdweb-dev/portal-client/internal/portalclient"
)

func clientConfigFromCfg() portalclient.Config {
	pc := configs.Cfg.Portal
	return portalclient.Config{
		MinBytes:         pc.MinBytes,
		MaxBytes:         pc.MaxBytes,
		MaxIdleTime:      pc.MaxIdleTime,
		MaxWaitTime:      pc.MaxWaitTime,
		HeadPollInterval: pc.HeadPollInterval,
		StopOnHead:       pc.StopOnHead,
	}
}
