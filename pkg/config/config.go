package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/G-studio-design/aplikasi-notify/pkg/utils"
	"github.com/G-studio-design/aplikasi-notify/pkg/webpush"
)

type Config struct {
	Push PushConfig `yaml:"push"`
	Log  LogConfig  `yaml:"log"`
}

type PushConfig struct {
	Subject    string `yaml:"subject"`
	PublicKey  string `yaml:"public_key"`
	PrivateKey string `yaml:"private_key"`
	TTL        int    `yaml:"ttl"`
}

type LogConfig struct {
	// Limit bounds the whole in-app notification log.
	Limit int `yaml:"limit"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a config from environment variables, for deployments
// without a config file.
func FromEnv() *Config {
	return &Config{
		Push: PushConfig{
			Subject:    utils.GetEnv("VAPID_SUBJECT"),
			PublicKey:  utils.GetEnv("VAPID_PUBLIC_KEY"),
			PrivateKey: utils.GetEnv("VAPID_PRIVATE_KEY"),
		},
	}
}

// BuildTransport constructs the push transport from the configured VAPID
// credentials. Missing keys mean the transport is unconfigured: the caller
// gets nil and must skip the push step while in-app delivery keeps working.
func BuildTransport(cfg *Config) webpush.Transport {
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		return nil
	}
	return webpush.NewVAPID(cfg.Push.Subject, cfg.Push.PublicKey, cfg.Push.PrivateKey, cfg.Push.TTL)
}
