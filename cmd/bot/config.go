package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the name of the application.
	AppName = "broker"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvStoreBackend is the environment variable for the state store backend.
	EnvStoreBackend = `STORE_BACKEND`

	// EnvStateFile is the environment variable for the state file path.
	EnvStateFile = `STATE_FILE`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvRedisUrl is the environment variable for the Redis URL.
	EnvRedisUrl = `REDIS_URL`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvConfigPath is the environment variable for the YAML config file.
	EnvConfigPath = `CONFIG_PATH`
)

const (
	defaultPrefix         = "!"
	defaultStateFile      = "data.json"
	defaultMonitoringPort = "8080"
	defaultDMRate         = 4
)

var (
	// ErrMissingToken is returned when no bot token is configured.
	ErrMissingToken = errors.New("bot token is required")

	// ErrUnknownBackend is returned for an unsupported store backend.
	ErrUnknownBackend = errors.New("unknown store backend")

	// ErrUnknownVariant is returned for an unsupported bot variant.
	ErrUnknownVariant = errors.New("unknown variant")
)

// Config is the runtime configuration of the bot.
type Config struct {
	// BotToken authenticates the bot with Discord.
	BotToken string `yaml:"-"`

	// Backend is the state store backend.
	Backend string `yaml:"backend"`

	// StateFile is the JSON state file for the file backend.
	StateFile string `yaml:"state_file"`

	// MongoURI is the connection string for the mongo backend.
	MongoURI string `yaml:"-"`

	// RedisURL is the connection URL for the redis backend.
	RedisURL string `yaml:"-"`

	// RedisKey is the key the redis backend stores the document under.
	RedisKey string `yaml:"redis_key"`

	// MonitoringPort is the port of the metrics and health server.
	MonitoringPort string `yaml:"monitoring_port"`

	// ConfigPath is the YAML file the static settings were read from.
	ConfigPath string `yaml:"-"`

	Prefix  string           `yaml:"prefix"`
	OwnerID string           `yaml:"owner_id"`
	Variant commands.Variant `yaml:"variant"`

	// DMRate is the owner broadcast rate in messages per second.
	DMRate float64 `yaml:"dm_rate"`

	// Keys maps each redeemable key to its tier.
	Keys map[string]string `yaml:"keys"`
}

// ParseConfig builds the configuration from the YAML file, the environment
// and the command line, in increasing order of precedence.
func ParseConfig(args []string, getenv func(string) string) (*Config, error) {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to the YAML config file")
	statePath := fs.String("state", "", "path to the JSON state file")
	backend := fs.String("backend", "", "state store backend (file, mongo, redis)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := firstNonEmpty(*configPath, getenv(EnvConfigPath))

	cfg := new(Config)
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigPath = path
	}

	cfg.BotToken = getenv(EnvBotToken)
	cfg.MongoURI = getenv(EnvMongoUri)
	cfg.RedisURL = getenv(EnvRedisUrl)
	cfg.Backend = firstNonEmpty(*backend, getenv(EnvStoreBackend), cfg.Backend, dataaccess.BackendFile)
	cfg.StateFile = firstNonEmpty(*statePath, getenv(EnvStateFile), cfg.StateFile, defaultStateFile)
	cfg.MonitoringPort = firstNonEmpty(getenv(EnvMonitoringPort), cfg.MonitoringPort, defaultMonitoringPort)
	cfg.RedisKey = firstNonEmpty(cfg.RedisKey, dataaccess.DefaultRedisKey)
	cfg.Prefix = firstNonEmpty(cfg.Prefix, defaultPrefix)
	if cfg.Variant == "" {
		cfg.Variant = commands.VariantLite
	}
	if cfg.DMRate <= 0 {
		cfg.DMRate = defaultDMRate
	}
	if cfg.Keys == nil {
		cfg.Keys = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can start the bot.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}

	switch c.Backend {
	case dataaccess.BackendFile:
		if c.StateFile == "" {
			return fmt.Errorf("%s backend requires a state file", c.Backend)
		}
	case dataaccess.BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%s backend requires %s", c.Backend, EnvMongoUri)
		}
	case dataaccess.BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%s backend requires %s", c.Backend, EnvRedisUrl)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if !c.Variant.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, c.Variant)
	}

	if strings.TrimSpace(c.Prefix) == "" {
		return errors.New("prefix must not be blank")
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
