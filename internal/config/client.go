package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Client is the snippets CLI configuration.
type Client struct {
	ServerURL string        `mapstructure:"server_url"`
	StorePath string        `mapstructure:"store_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogLevel  string        `mapstructure:"log_level"`
}

// Client config keys, shared with the CLI flag bindings.
const (
	KeyServerURL = "server_url"
	KeyStorePath = "store_path"
	KeyTimeout   = "timeout"
	KeyLogLevel  = "log_level"
)

// EnvPrefix prefixes every client environment variable,
// e.g. SNIPPETS_SERVER_URL.
const EnvPrefix = "SNIPPETS"

// DefaultDir is where the CLI keeps config.yaml and its store.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "snippetbox")
	}
	return ".snippetbox"
}

// NewClientViper returns a viper instance with the client defaults and
// environment bindings set. cfgFile, when non-empty, names the config file
// to read. Otherwise config.yaml is searched for in searchDirs, or in
// DefaultDir and the working directory when none are given.
func NewClientViper(cfgFile string, searchDirs ...string) *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyServerURL, "http://localhost:4000")
	v.SetDefault(KeyStorePath, filepath.Join(DefaultDir(), "store.db"))
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyLogLevel, "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if len(searchDirs) == 0 {
			searchDirs = []string{DefaultDir(), "."}
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
	}
	return v
}

// LoadClient reads the config file (a missing one is fine unless it was
// named explicitly) and returns the merged settings.
func LoadClient(v *viper.Viper) (Client, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Client{}, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return Client{}, fmt.Errorf("config: decoding client config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the server URL and timeout.
func (c Client) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: server_url %q must be an http(s) URL", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.StorePath == "" {
		return errors.New("config: store_path must not be empty")
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
