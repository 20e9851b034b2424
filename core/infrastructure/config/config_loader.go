package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
)

// Environment variables that fill empty global credentials.
const (
	EnvUsername       = "SWITCHKIT_USERNAME"
	EnvPassword       = "SWITCHKIT_PASSWORD"
	EnvEnablePassword = "SWITCHKIT_ENABLE_PASSWORD"
	EnvSNMPCommunity  = "SWITCHKIT_SNMP_COMMUNITY"
)

const (
	defaultTransport     = "telnet"
	defaultSNMPVersion   = "2c"
	defaultSNMPPort      = 161
	defaultSNMPTimeout   = 5 * time.Second
	defaultSNMPRetries   = 1
	defaultNetconfPort   = 830
	defaultListen        = ":9810"
	defaultProbeTimeout  = 60 * time.Second
	defaultRedisPrefix   = "switchkit:inventory:"
	defaultContentWorker = 4
)

// Config defines the global configuration
type Config struct {
	Platform       string                  `yaml:"platform"`
	Transport      string                  `yaml:"transport"`
	Username       string                  `yaml:"username"`
	Password       string                  `yaml:"password"`
	EnablePassword string                  `yaml:"enable_password"`
	SNMP           entities.SNMPConfig     `yaml:"snmp"`
	NetconfPort    int                     `yaml:"netconf_port"`
	MIB            map[string]string       `yaml:"mib"`
	Publish        PublishConfig           `yaml:"publish"`
	Serve          ServeConfig             `yaml:"serve"`
	Workers        int                     `yaml:"workers"`
	Switches       []entities.SwitchConfig `yaml:"switches"`
}

// PublishConfig selects where inventory reports are shipped.
type PublishConfig struct {
	AMQP  AMQPConfig  `yaml:"amqp"`
	Redis RedisConfig `yaml:"redis"`
}

type AMQPConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// ServeConfig configures the probe HTTP server.
type ServeConfig struct {
	Listen  string        `yaml:"listen"`
	Timeout time.Duration `yaml:"timeout"`
}

// Switch returns the configuration of target.
func (c *Config) Switch(target string) (entities.SwitchConfig, error) {
	for _, sw := range c.Switches {
		if sw.Target == target {
			return sw, nil
		}
	}
	return entities.SwitchConfig{}, fmt.Errorf("switch %s: %w", target, entities.ErrNotFound)
}

// MIBTable returns the default OID table with the configured overrides.
func (c *Config) MIBTable() (mib.Table, error) {
	return mib.New(c.MIB)
}

func validatePlatform(platform string) error {
	switch platform {
	case "mlx", "slxos", "auto":
		return nil
	default:
		return fmt.Errorf("platform %s is invalid, must be 'mlx', 'slxos', or 'auto'", platform)
	}
}

func validateTransport(transport string) error {
	switch transport {
	case "telnet", "ssh":
		return nil
	default:
		return fmt.Errorf("transport %s is invalid, must be 'telnet' or 'ssh'", transport)
	}
}

func validateSNMPVersion(version string) error {
	switch version {
	case "1", "2c":
		return nil
	default:
		return fmt.Errorf("snmp version %s is invalid, must be '1' or '2c'", version)
	}
}

// loadEnv reads an optional .env file next to the configuration file.
// Variables already set in the process environment win.
func loadEnv(yamlFile string) error {
	envFile := filepath.Join(filepath.Dir(yamlFile), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	return nil
}

func fromEnv(value *string, key string) {
	if *value == "" {
		*value = os.Getenv(key)
	}
}

// Load loads and validates configuration from a YAML file. Switch entries
// inherit every unset value from the global section. Sandbox is set on
// every switch unless write is true.
func Load(yamlFile, target string, write bool, verbosityLevel int, log *zap.Logger) (*Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", yamlFile, err)
	}
	if err := loadEnv(yamlFile); err != nil {
		return nil, err
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	if cfg.Platform == "" {
		cfg.Platform = "auto"
	}
	if err := validatePlatform(cfg.Platform); err != nil {
		return nil, err
	}

	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport == "" {
		cfg.Transport = defaultTransport
	}
	if err := validateTransport(cfg.Transport); err != nil {
		return nil, err
	}

	fromEnv(&cfg.Username, EnvUsername)
	fromEnv(&cfg.Password, EnvPassword)
	fromEnv(&cfg.EnablePassword, EnvEnablePassword)
	fromEnv(&cfg.SNMP.Community, EnvSNMPCommunity)

	if cfg.SNMP.Version == "" {
		cfg.SNMP.Version = defaultSNMPVersion
	}
	if err := validateSNMPVersion(cfg.SNMP.Version); err != nil {
		return nil, err
	}
	if cfg.SNMP.Port == 0 {
		cfg.SNMP.Port = defaultSNMPPort
	}
	if cfg.SNMP.Timeout == 0 {
		cfg.SNMP.Timeout = defaultSNMPTimeout
	}
	if cfg.SNMP.Retries == nil {
		retries := defaultSNMPRetries
		cfg.SNMP.Retries = &retries
	}
	if cfg.NetconfPort == 0 {
		cfg.NetconfPort = defaultNetconfPort
	}
	if cfg.Serve.Listen == "" {
		cfg.Serve.Listen = defaultListen
	}
	if cfg.Serve.Timeout == 0 {
		cfg.Serve.Timeout = defaultProbeTimeout
	}
	if cfg.Publish.Redis.KeyPrefix == "" {
		cfg.Publish.Redis.KeyPrefix = defaultRedisPrefix
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultContentWorker
	}
	if _, err := cfg.MIBTable(); err != nil {
		return nil, err
	}

	log.Debug("global values",
		zap.String("platform", cfg.Platform),
		zap.String("transport", cfg.Transport),
		zap.String("snmp_version", cfg.SNMP.Version),
		zap.Int("netconf_port", cfg.NetconfPort))

	if cfg.Username == "" {
		return nil, fmt.Errorf("global username is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("global password is required")
	}

	seen := make(map[string]bool, len(cfg.Switches))
	for i, sw := range cfg.Switches {
		if sw.Target == "" {
			return nil, fmt.Errorf("target is required for switch %d", i)
		}
		if seen[sw.Target] {
			return nil, fmt.Errorf("switch %s is defined more than once", sw.Target)
		}
		seen[sw.Target] = true

		switchLog := log
		if target != "" && sw.Target != target {
			switchLog = zap.NewNop()
		}
		switchLog = switchLog.With(zap.String("target", sw.Target))

		sw.Transport = strings.ToLower(strings.TrimSpace(sw.Transport))
		if sw.Transport == "" {
			sw.Transport = cfg.Transport
			switchLog.Debug("no transport defined, using global", zap.String("transport", cfg.Transport))
		}
		if err := validateTransport(sw.Transport); err != nil {
			return nil, fmt.Errorf("invalid transport for switch %s: %w", sw.Target, err)
		}

		sw.Platform = strings.ToLower(strings.TrimSpace(sw.Platform))
		if sw.Platform == "" {
			sw.Platform = cfg.Platform
			switchLog.Debug("no platform defined, using global", zap.String("platform", cfg.Platform))
		}
		if err := validatePlatform(sw.Platform); err != nil {
			return nil, fmt.Errorf("invalid platform for switch %s: %w", sw.Target, err)
		}

		if sw.Username == "" {
			sw.Username = cfg.Username
		}
		if sw.Password == "" {
			sw.Password = cfg.Password
		}
		if sw.EnablePassword == "" {
			sw.EnablePassword = cfg.EnablePassword
		}

		if sw.SNMP.Community == "" {
			sw.SNMP.Community = cfg.SNMP.Community
		}
		if sw.SNMP.Version == "" {
			sw.SNMP.Version = cfg.SNMP.Version
		}
		if err := validateSNMPVersion(sw.SNMP.Version); err != nil {
			return nil, fmt.Errorf("invalid snmp settings for switch %s: %w", sw.Target, err)
		}
		if sw.SNMP.Port == 0 {
			sw.SNMP.Port = cfg.SNMP.Port
		}
		if sw.SNMP.Timeout == 0 {
			sw.SNMP.Timeout = cfg.SNMP.Timeout
		}
		if sw.SNMP.Retries == nil {
			retries := *cfg.SNMP.Retries
			sw.SNMP.Retries = &retries
		}
		if sw.NetconfPort == 0 {
			sw.NetconfPort = cfg.NetconfPort
		}

		sw.Sandbox = !write
		sw.VerbosityLevel = verbosityLevel

		switchLog.Debug("final switch configuration",
			zap.String("platform", sw.Platform),
			zap.String("transport", sw.Transport),
			zap.String("snmp_version", sw.SNMP.Version),
			zap.Bool("sandbox", sw.Sandbox))

		cfg.Switches[i] = sw
	}

	if len(cfg.Switches) == 0 {
		return nil, fmt.Errorf("no switches defined in the YAML configuration")
	}
	if target != "" && !seen[target] {
		return nil, fmt.Errorf("target %s is not defined in the YAML configuration: %w", target, entities.ErrNotFound)
	}

	return &cfg, nil
}
