// Package config loads the server configuration from a YAML file with
// environment overrides.
package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendDynamo = "dynamo"
	BackendMongo  = "mongo"
)

// Config holds all camper configuration.
type Config struct {
	Listen         string `yaml:"listen"`
	SiteName       string `yaml:"site_name"`
	BaseURL        string `yaml:"base_url"`
	Environment    string `yaml:"environment"`
	Timezone       string `yaml:"timezone"`
	SeedDir        string `yaml:"seed_dir"`
	RequestTimeout string `yaml:"request_timeout"`

	Logging LoggingConfig `yaml:"logging"`
	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
	Mail    MailConfig    `yaml:"mail"`
	OIDC    OIDCConfig    `yaml:"oidc"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// SessionConfig holds the cookie keys, base64 encoded.
type SessionConfig struct {
	Name     string `yaml:"name"`
	HashKey  string `yaml:"hash_key"`
	BlockKey string `yaml:"block_key"`
}

type StoreConfig struct {
	Backend string       `yaml:"backend"`
	Dynamo  DynamoConfig `yaml:"dynamo"`
	Mongo   MongoConfig  `yaml:"mongo"`
}

type DynamoConfig struct {
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	Profile     string `yaml:"profile"`
	TablePrefix string `yaml:"table_prefix"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// MailConfig configures SMTP delivery. An empty host discards mail.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type OIDCConfig struct {
	Google GoogleConfig `yaml:"google"`
}

// GoogleConfig enables Google sign-in when ClientID is set.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

// DefaultConfig returns the development defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:         ":8080",
		SiteName:       "Free Code Camp",
		Environment:    "development",
		Timezone:       "UTC",
		SeedDir:        "seed",
		RequestTimeout: "5s",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{
			Name: "camper",
		},
		Store: StoreConfig{
			Backend: BackendDynamo,
			Dynamo: DynamoConfig{
				Region:   "us-west-2",
				Endpoint: "http://localhost:8000",
			},
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "camper",
			},
		},
		Mail: MailConfig{
			Port: 587,
			From: "Team@freecodecamp.com",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CAMPER_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CAMPER_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("CAMPER_SESSION_HASH_KEY"); v != "" {
		c.Session.HashKey = v
	}
	if v := os.Getenv("CAMPER_SESSION_BLOCK_KEY"); v != "" {
		c.Session.BlockKey = v
	}
	if v := os.Getenv("CAMPER_DYNAMO_ENDPOINT"); v != "" {
		c.Store.Dynamo.Endpoint = v
	}
	if v := os.Getenv("CAMPER_MONGO_URI"); v != "" {
		c.Store.Mongo.URI = v
	}
	if v := os.Getenv("CAMPER_SMTP_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv("CAMPER_GOOGLE_CLIENT_SECRET"); v != "" {
		c.OIDC.Google.ClientSecret = v
	}
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	switch c.Store.Backend {
	case BackendDynamo:
		if c.Store.Dynamo.Region == "" {
			return errors.New("store.dynamo.region is required")
		}
	case BackendMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" {
			return errors.New("store.mongo.uri and store.mongo.database are required")
		}
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return errors.Wrap(err, "invalid request_timeout")
	}
	if _, _, err := c.SessionKeys(); err != nil {
		return err
	}
	if c.OIDC.Google.ClientID != "" && c.OIDC.Google.RedirectURI == "" {
		return errors.New("oidc.google.redirect_uri is required with a client_id")
	}
	return nil
}

// Location is the timezone activity days are counted in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", c.Timezone)
	}
	return loc, nil
}

// GetRequestTimeout returns the per-request timeout, five seconds when unparsable.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// SessionKeys decodes the cookie keys. Empty keys decode to nil and are
// replaced by random keys at startup.
func (c *Config) SessionKeys() (hashKey, blockKey []byte, err error) {
	if c.Session.HashKey != "" {
		if hashKey, err = base64.StdEncoding.DecodeString(c.Session.HashKey); err != nil {
			return nil, nil, errors.Wrap(err, "invalid session.hash_key")
		}
	}
	if c.Session.BlockKey != "" {
		if blockKey, err = base64.StdEncoding.DecodeString(c.Session.BlockKey); err != nil {
			return nil, nil, errors.Wrap(err, "invalid session.block_key")
		}
		switch len(blockKey) {
		case 16, 24, 32:
		default:
			return nil, nil, errors.New("session.block_key must be 16, 24 or 32 bytes")
		}
	}
	return hashKey, blockKey, nil
}
