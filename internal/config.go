package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is used when neither flags, env nor config file name a backend.
	DefaultAPIURL = "http://localhost:8080/api/v1"
	// DefaultTimeout bounds every REST call.
	DefaultTimeout = 15 * time.Second
	// DefaultPageSize is the number of catalog entries per page.
	DefaultPageSize = 8
)

// Config holds the resolved client configuration
type Config struct {
	APIURL    string        `yaml:"api_url"`
	SocketURL string        `yaml:"socket_url,omitempty"` // defaults to the API host root
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	PageSize  int           `yaml:"page_size,omitempty"`
	DataDir   string        `yaml:"-"`
}

// Overrides are values supplied on the command line; zero values are ignored.
type Overrides struct {
	APIURL    string
	SocketURL string
	Timeout   time.Duration
	PageSize  int
}

// LoadConfig resolves configuration from, lowest to highest priority:
// defaults, the YAML file, a .env file and the environment, then flag overrides.
func LoadConfig(paths DataPaths, flags Overrides) (*Config, error) {
	cfg := &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		PageSize: DefaultPageSize,
		DataDir:  paths.BaseDir,
	}

	if err := cfg.loadFile(paths.ConfigFile); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil {
		LogDebug("No .env file found")
	}
	cfg.applyEnv()
	cfg.applyOverrides(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.applyOverrides(Overrides{
		APIURL:    file.APIURL,
		SocketURL: file.SocketURL,
		Timeout:   file.Timeout,
		PageSize:  file.PageSize,
	})
	return nil
}

func (c *Config) applyEnv() {
	c.applyOverrides(Overrides{
		APIURL:    getEnv("POKETRAINER_API_URL", ""),
		SocketURL: getEnv("POKETRAINER_SOCKET_URL", ""),
	})
	if v := getEnv("POKETRAINER_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		} else {
			LogWarn("Ignoring invalid POKETRAINER_TIMEOUT %q: %v", v, err)
		}
	}
	if v := getEnv("POKETRAINER_PAGE_SIZE", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageSize = n
		} else {
			LogWarn("Ignoring invalid POKETRAINER_PAGE_SIZE %q", v)
		}
	}
}

func (c *Config) applyOverrides(o Overrides) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.SocketURL != "" {
		c.SocketURL = o.SocketURL
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.PageSize > 0 {
		c.PageSize = o.PageSize
	}
}

// Validate checks that the URLs are absolute http(s) URLs
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if err := checkURL(c.APIURL); err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if c.SocketURL != "" {
		if err := checkURL(c.SocketURL); err != nil {
			return fmt.Errorf("invalid socket url: %w", err)
		}
	}
	return nil
}

// RealtimeURL returns the Socket.IO root: the explicit socket URL, or the API host root.
func (c *Config) RealtimeURL() string {
	if c.SocketURL != "" {
		return c.SocketURL
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return c.APIURL
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}

// Save writes the configuration to path as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
