package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// PortalConfig configures the streaming client's connection to the
// portal and the block buffer's readiness/backpressure thresholds. Zero
// values fall back to the buffer and client package defaults.
type PortalConfig struct {
	URL              string        `mapstructure:"url"`
	MinBytes         int           `mapstructure:"minBytes"`
	MaxBytes         int           `mapstructure:"maxBytes"`
	MaxIdleTime      time.Duration `mapstructure:"maxIdleTime"`
	MaxWaitTime      time.Duration `mapstructure:"maxWaitTime"`
	HeadPollInterval time.Duration `mapstructure:"headPollInterval"`
	StopOnHead       bool          `mapstructure:"stopOnHead"`
	RequestTimeout   time.Duration `mapstructure:"requestTimeout"`
	RetryMax         int           `mapstructure:"retryMax"`
}

type KafkaSinkConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RedisCursorConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

type BadgerCheckpointConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

type SinksConfig struct {
	Kafka      KafkaSinkConfig        `mapstructure:"kafka"`
	Cursor     RedisCursorConfig      `mapstructure:"cursor"`
	Checkpoint BadgerCheckpointConfig `mapstructure:"checkpoint"`
}

type DebugServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type Config struct {
	Portal      PortalConfig      `mapstructure:"portal"`
	Log         LogConfig         `mapstructure:"log"`
	Sinks       SinksConfig       `mapstructure:"sinks"`
	DebugServer DebugServerConfig `mapstructure:"debugServer"`
}

var Cfg Config

func LoadConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file, %s", err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")

		if err := viper.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return fmt.Errorf("error reading config file, %s", err)
			}
		}

		viper.SetConfigName("secrets")
		if err := viper.MergeInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return fmt.Errorf("error loading secrets file: %v", err)
			}
		}
	}

	// sets e.g. PORTAL_URL to portal.url
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&Cfg); err != nil {
		return fmt.Errorf("error unmarshalling config: %v", err)
	}

	return nil
}
