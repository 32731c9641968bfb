// Package config loads meetmind settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider        = "gemini"
	DefaultGeminiEndpoint  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultBridgeAddr      = "127.0.0.1:17865"
	DefaultShrinkThreshold = 250
	DefaultMinContent      = 50
	DefaultMaxContent      = 10000
	DefaultPacing          = time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultLogLevel        = "info"
)

type Config struct {
	DBPath       string             `yaml:"dbPath"`
	SocketPath   string             `yaml:"socketPath"`
	Bridge       BridgeConfig       `yaml:"bridge"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Summarize    SummarizeConfig    `yaml:"summarize"`
	Log          LogConfig          `yaml:"log"`
}

type BridgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// AllowedOrigins lists the browser origins (for example
	// "chrome-extension://<id>") that may call the bridge cross-origin.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	// Token is the shared secret every bridge request must present.
	Token string `yaml:"token,omitempty"`
}

type SegmentationConfig struct {
	// ShrinkThreshold is how far the same speaker's caption text may shrink
	// before it counts as a reset of the caption region.
	ShrinkThreshold int `yaml:"shrinkThreshold"`
}

type SummarizeConfig struct {
	Provider   string        `yaml:"provider"` // "gemini" (default) or "openai"
	APIKey     string        `yaml:"apiKey"`
	Endpoint   string        `yaml:"endpoint,omitempty"`
	Model      string        `yaml:"model,omitempty"`
	MinContent int           `yaml:"minContent"`
	MaxContent int           `yaml:"maxContent"`
	Pacing     time.Duration `yaml:"pacing"`
	Timeout    time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:     filepath.Join(ConfigDir(), "meetmind.sqlite"),
		SocketPath: filepath.Join(ConfigDir(), "meetmind.sock"),
		Bridge: BridgeConfig{
			Enabled: true,
			Addr:    DefaultBridgeAddr,
		},
		Segmentation: SegmentationConfig{
			ShrinkThreshold: DefaultShrinkThreshold,
		},
		Summarize: SummarizeConfig{
			Provider:   DefaultProvider,
			Endpoint:   DefaultGeminiEndpoint,
			MinContent: DefaultMinContent,
			MaxContent: DefaultMaxContent,
			Pacing:     DefaultPacing,
			Timeout:    DefaultRequestTimeout,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

func ConfigDir() string {
	if dir := os.Getenv("MEETMIND_HOME"); dir != "" {
		return dir
	}
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".meetmind")
}

// BridgeTokenPath is where the daemon keeps a generated bridge token when
// none is configured.
func BridgeTokenPath() string {
	return filepath.Join(ConfigDir(), "bridge.token")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadConfig reads the config file if present, then applies env overrides.
func LoadConfig() (*Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	fillDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("MEETMIND_API_KEY"); key != "" {
		cfg.Summarize.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.Summarize.APIKey == "" {
		cfg.Summarize.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Summarize.APIKey == "" {
		cfg.Summarize.APIKey = key
		if os.Getenv("MEETMIND_PROVIDER") == "" {
			cfg.Summarize.Provider = "openai"
		}
	}
	if p := os.Getenv("MEETMIND_PROVIDER"); p != "" {
		cfg.Summarize.Provider = p
	}
	if m := os.Getenv("MEETMIND_MODEL"); m != "" {
		cfg.Summarize.Model = m
	}
	if e := os.Getenv("MEETMIND_ENDPOINT"); e != "" {
		cfg.Summarize.Endpoint = e
	}
	if p := os.Getenv("MEETMIND_DB_PATH"); p != "" {
		cfg.DBPath = p
	}
	if p := os.Getenv("MEETMIND_SOCKET"); p != "" {
		cfg.SocketPath = p
	}
	if a := os.Getenv("MEETMIND_BRIDGE_ADDR"); a != "" {
		cfg.Bridge.Addr = a
	}
	if o := os.Getenv("MEETMIND_BRIDGE_ORIGINS"); o != "" {
		cfg.Bridge.AllowedOrigins = nil
		for _, origin := range strings.Split(o, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Bridge.AllowedOrigins = append(cfg.Bridge.AllowedOrigins, origin)
			}
		}
	}
	if tok := os.Getenv("MEETMIND_BRIDGE_TOKEN"); tok != "" {
		cfg.Bridge.Token = tok
	}
	if v := os.Getenv("MEETMIND_SHRINK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Segmentation.ShrinkThreshold = n
		}
	}
	if v := os.Getenv("MEETMIND_MAX_CONTENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Summarize.MaxContent = n
		}
	}
	if v := os.Getenv("MEETMIND_PACING"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Summarize.Pacing = d
		}
	}
	if v := os.Getenv("MEETMIND_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func fillDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = def.SocketPath
	}
	if cfg.Bridge.Addr == "" {
		cfg.Bridge.Addr = def.Bridge.Addr
	}
	if cfg.Segmentation.ShrinkThreshold <= 0 {
		cfg.Segmentation.ShrinkThreshold = DefaultShrinkThreshold
	}
	if cfg.Summarize.Provider == "" {
		cfg.Summarize.Provider = DefaultProvider
	}
	if cfg.Summarize.Provider == "openai" && cfg.Summarize.Model == "" {
		cfg.Summarize.Model = DefaultOpenAIModel
	}
	if cfg.Summarize.Provider == DefaultProvider && cfg.Summarize.Endpoint == "" {
		cfg.Summarize.Endpoint = DefaultGeminiEndpoint
	}
	if cfg.Summarize.MinContent <= 0 {
		cfg.Summarize.MinContent = DefaultMinContent
	}
	if cfg.Summarize.MaxContent <= 0 {
		cfg.Summarize.MaxContent = DefaultMaxContent
	}
	if cfg.Summarize.Pacing < 0 {
		cfg.Summarize.Pacing = DefaultPacing
	}
	if cfg.Summarize.Timeout <= 0 {
		cfg.Summarize.Timeout = DefaultRequestTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

func SaveConfig(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
