// Package config loads livebookd's runtime configuration via viper, reading
// an optional config file plus LIVEBOOK_-prefixed environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for one livebookd process.
type Config struct {
	// ListenAddr is the HTTP API's bind address, e.g. ":8080".
	ListenAddr string

	// Pairs are the trading pair symbols to track, e.g. "BTCUSDT".
	Pairs []string

	// RESTBaseURL and WSBaseURL point at the upstream exchange.
	RESTBaseURL string
	WSBaseURL   string

	// ReconnectBase and ReconnectMax bound the websocket reconnect backoff.
	ReconnectBase time.Duration
	ReconnectMax  time.Duration

	// Verbose enables debug logging of dropped stale diffs.
	Verbose bool
}

// Load builds a Config from defaults, an optional file at path (skipped if
// empty or not found), and LIVEBOOK_-prefixed environment variables, which
// take precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LIVEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
				return Config{}, errors.Wrap(err, "read config file")
			}
		}
	}

	cfg := Config{
		ListenAddr:    v.GetString("listen_addr"),
		Pairs:         v.GetStringSlice("pairs"),
		RESTBaseURL:   v.GetString("rest_base_url"),
		WSBaseURL:     v.GetString("ws_base_url"),
		ReconnectBase: v.GetDuration("reconnect_base"),
		ReconnectMax:  v.GetDuration("reconnect_max"),
		Verbose:       v.GetBool("verbose"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("pairs", []string{"BTCUSDT", "ETHUSDT"})
	v.SetDefault("rest_base_url", "https://api.binance.com")
	v.SetDefault("ws_base_url", "wss://stream.binance.com:9443")
	v.SetDefault("reconnect_base", 1*time.Second)
	v.SetDefault("reconnect_max", 30*time.Second)
	v.SetDefault("verbose", false)
}

func (c Config) validate() error {
	if len(c.Pairs) == 0 {
		return fmt.Errorf("config: at least one pair must be configured")
	}
	if c.RESTBaseURL == "" || c.WSBaseURL == "" {
		return fmt.Errorf("config: rest_base_url and ws_base_url are required")
	}
	return nil
}
