package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration, loaded from a YAML file with
// defaults filled in for anything omitted.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig tunes the room timers and deck composition.
type GameConfig struct {
	TurnTimeoutSec int  `yaml:"turn_timeout"` // seconds before an idle turn is auto-played
	AIDelayMs      int  `yaml:"ai_delay"`     // milliseconds before a scheduled AI turn fires
	PeekSeconds    int  `yaml:"peek_seconds"` // how long a peeked card stays revealed
	IncludeJokers  bool `yaml:"include_jokers"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func (c *GameConfig) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSec) * time.Second
}

func (c *GameConfig) AIDelay() time.Duration {
	return time.Duration(c.AIDelayMs) * time.Millisecond
}

func (c *GameConfig) PeekDuration() time.Duration {
	return time.Duration(c.PeekSeconds) * time.Second
}

// Load reads the config file at path and fills defaults for missing fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.TurnTimeoutSec == 0 {
		c.Game.TurnTimeoutSec = 30
	}
	if c.Game.AIDelayMs == 0 {
		c.Game.AIDelayMs = 1200
	}
	if c.Game.PeekSeconds == 0 {
		c.Game.PeekSeconds = 3
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
