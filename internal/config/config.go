package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Addr string `mapstructure:"addr"`
}

// GatewayConfig carries the external payment-gateway credentials. KeySecret
// is the shared secret used for callback signature verification.
type GatewayConfig struct {
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
	Currency  string `mapstructure:"currency"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the optional yaml config file and applies FULFILLMENT_* env
// overrides on top of the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.name", "fulfillment")
	v.SetDefault("server.env", "dev")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("gateway.key_id", "rzp_test_dummy")
	v.SetDefault("gateway.key_secret", "dummy_secret")
	v.SetDefault("gateway.currency", "INR")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("FULFILLMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
