package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GregMSThompson/gift-budget/internal/syncq"
)

// LLM providers
const (
	ProviderRelay  = "relay"
	ProviderVertex = "vertex"
)

// Config is the API server configuration, read from the environment.
type Config struct {
	ProjectID string `envconfig:"PROJECTID"`
	Region    string `envconfig:"REGION" default:"us-central1"`
	LogLevel  string `envconfig:"LOGLEVEL" default:"info"`
	LogFormat string `envconfig:"LOGFORMAT" default:"json"`
	Port      int    `envconfig:"PORT" default:"8080"`

	// Suggestions
	LLMProvider      string        `envconfig:"LLMPROVIDER" default:"relay"`
	RelayURL         string        `envconfig:"RELAYURL" default:"http://localhost:3000"`
	RelayToken       string        `envconfig:"RELAYTOKEN"`
	RelayTokenSecret string        `envconfig:"RELAYTOKENSECRET"` // Secret Manager name, overrides RelayToken
	LLMModel         string        `envconfig:"LLMMODEL" default:"gpt-4"`
	VertexModel      string        `envconfig:"VERTEXMODEL" default:"gemini-2.0-flash"`
	LLMTemperature   float32       `envconfig:"LLMTEMPERATURE" default:"0.7"`
	LLMTimeout       time.Duration `envconfig:"LLMTIMEOUT" default:"30s"`
	ChatTTL          time.Duration `envconfig:"CHATTTL" default:"720h"`

	// Sessions and sync
	SessionIdle     time.Duration `envconfig:"SESSIONIDLE" default:"30m"`
	SweepInterval   time.Duration `envconfig:"SWEEPINTERVAL" default:"5m"`
	SyncMaxAttempts int           `envconfig:"SYNCMAXATTEMPTS" default:"5"`
	SyncInitialWait time.Duration `envconfig:"SYNCINITIALWAIT" default:"200ms"`
	SyncMaxWait     time.Duration `envconfig:"SYNCMAXWAIT" default:"5s"`
	SyncRetryAfter  time.Duration `envconfig:"SYNCRETRYAFTER" default:"30s"`
	SyncFlushWait   time.Duration `envconfig:"SYNCFLUSHTIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWNTIMEOUT" default:"10s"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderRelay:
		if c.RelayURL == "" {
			return fmt.Errorf("RELAYURL is required for the relay provider")
		}
	case ProviderVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECTID is required for the vertex provider")
		}
	default:
		return fmt.Errorf("unsupported LLMPROVIDER: %s", c.LLMProvider)
	}
	if c.SyncMaxAttempts < 1 {
		return fmt.Errorf("SYNCMAXATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) Sync() syncq.Config {
	return syncq.Config{
		MaxAttempts:     c.SyncMaxAttempts,
		InitialInterval: c.SyncInitialWait,
		MaxInterval:     c.SyncMaxWait,
		RetryAfter:      c.SyncRetryAfter,
		FlushTimeout:    c.SyncFlushWait,
	}
}

// RelayConfig configures cmd/relay.
type RelayConfig struct {
	ProjectID       string        `envconfig:"PROJECTID"`
	LogLevel        string        `envconfig:"LOGLEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOGFORMAT" default:"json"`
	Port            int           `envconfig:"PORT" default:"3000"`
	UpstreamURL     string        `envconfig:"UPSTREAMURL" default:"https://api.openai.com/v1/chat/completions"`
	APIKey          string        `envconfig:"OPENAIAPIKEY"`
	APIKeySecret    string        `envconfig:"OPENAIAPIKEYSECRET"` // Secret Manager name, overrides APIKey
	Timeout         time.Duration `envconfig:"UPSTREAMTIMEOUT" default:"60s"`
	ValidateTimeout time.Duration `envconfig:"VALIDATETIMEOUT" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWNTIMEOUT" default:"10s"`
}

func NewRelay() (*RelayConfig, error) {
	cfg := new(RelayConfig)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read relay config: %w", err)
	}
	if cfg.APIKeySecret != "" && cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECTID is required to read OPENAIAPIKEYSECRET")
	}
	return cfg, nil
}
