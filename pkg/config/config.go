package config

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/simple-api-demo/internal/apperror"
	"github.com/sirosfoundation/simple-api-demo/pkg/logging"
	"github.com/sirosfoundation/simple-api-demo/pkg/middleware"
)

// Environment variable names
const (
	EnvMainPort        = "PORT"
	EnvAppPort         = "PORT_APP"
	EnvBindAddress     = "BIND_ADDRESS"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvRateLimitRPS    = "RATE_LIMIT_RPS"
	EnvRateLimitBurst  = "RATE_LIMIT_BURST"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig contains the settings for both HTTP listeners
type ServerConfig struct {
	MainPort        int           `yaml:"main_port"`
	AppPort         int           `yaml:"app_port"`
	BindAddress     string        `yaml:"bind_address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RateLimit is applied per client IP on both servers; disabled by default
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit"`
}

// envSpec documents the recognised variables for Usage. It is not used for
// decoding: Load reads from an explicit Environment snapshot.
type envSpec struct {
	MainPort        uint16        `envconfig:"PORT" default:"8080" desc:"main server port (1-65535)"`
	AppPort         uint16        `envconfig:"PORT_APP" default:"4242" desc:"application server port (1-65535)"`
	BindAddress     string        `envconfig:"BIND_ADDRESS" default:"0.0.0.0" desc:"address both servers listen on"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" desc:"grace period for in-flight requests"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" default:"0" desc:"requests per second per client IP, 0 disables"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"10" desc:"rate limit burst size"`
	logging.Config
}

// Environment is a snapshot of process environment variables
type Environment map[string]string

// FromEnviron builds an Environment from KEY=value pairs as returned by os.Environ
func FromEnviron(environ []string) Environment {
	env := make(Environment, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

// Lookup returns the value of key and whether it was present
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Default returns a Config with the documented defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			MainPort:        8080,
			AppPort:         4242,
			BindAddress:     "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
			RateLimit: middleware.RateLimitConfig{
				Burst: 10,
			},
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// given environment snapshot, in increasing order of precedence.
func Load(configFile string, env Environment) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, apperror.Config("failed to read config file %s: %v", configFile, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperror.Config("failed to parse config file %s: %v", configFile, err)
		}
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(env Environment) error {
	var err error
	if c.Server.MainPort, err = parsePort(env, EnvMainPort, c.Server.MainPort); err != nil {
		return err
	}
	if c.Server.AppPort, err = parsePort(env, EnvAppPort, c.Server.AppPort); err != nil {
		return err
	}
	if v, ok := env.Lookup(EnvBindAddress); ok {
		c.Server.BindAddress = v
	}
	if v, ok := env.Lookup(EnvShutdownTimeout); ok {
		d, perr := time.ParseDuration(v)
		if perr != nil || d <= 0 {
			return apperror.Environment(EnvShutdownTimeout, "must be a positive duration such as 10s, got: %q", v)
		}
		c.Server.ShutdownTimeout = d
	}
	if v, ok := env.Lookup(EnvRateLimitRPS); ok {
		rps, perr := strconv.ParseFloat(v, 64)
		if perr != nil || rps < 0 {
			return apperror.Environment(EnvRateLimitRPS, "must be a non-negative number, got: %q", v)
		}
		c.Server.RateLimit.RequestsPerSecond = rps
	}
	if v, ok := env.Lookup(EnvRateLimitBurst); ok {
		burst, perr := strconv.Atoi(v)
		if perr != nil || burst < 1 {
			return apperror.Environment(EnvRateLimitBurst, "must be a positive integer, got: %q", v)
		}
		c.Server.RateLimit.Burst = burst
	}

	if v, ok := env.Lookup(EnvLogLevel); ok {
		level := strings.ToLower(v)
		if err := logging.ValidateLevel(level); err != nil {
			return apperror.Environment(EnvLogLevel, "%v", err)
		}
		c.Logging.Level = level
	}
	if v, ok := env.Lookup(EnvLogFormat); ok {
		format := strings.ToLower(v)
		if err := logging.ValidateFormat(format); err != nil {
			return apperror.Environment(EnvLogFormat, "%v", err)
		}
		c.Logging.Format = format
	}

	return nil
}

// parsePort reads name from env, falling back to def when absent
func parsePort(env Environment, name string, def int) (int, error) {
	v, ok := env.Lookup(name)
	if !ok {
		return def, nil
	}
	port, err := strconv.ParseUint(v, 10, 16)
	if err != nil || port == 0 {
		return 0, apperror.Environment(name, "must be a valid port number (1-65535), got: %q", v)
	}
	return int(port), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.MainPort < 1 || c.Server.MainPort > 65535 {
		return apperror.Config("invalid main port: %d (must be 1-65535)", c.Server.MainPort)
	}
	if c.Server.AppPort < 1 || c.Server.AppPort > 65535 {
		return apperror.Config("invalid app port: %d (must be 1-65535)", c.Server.AppPort)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return apperror.Config("invalid shutdown timeout: %s", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimit.RequestsPerSecond < 0 || c.Server.RateLimit.Burst < 1 {
		return apperror.Config("invalid rate limit: %+v", c.Server.RateLimit)
	}
	if err := c.Logging.Validate(); err != nil {
		return apperror.Config("invalid logging configuration: %v", err)
	}
	return nil
}

// MainAddress returns the main server address
func (c ServerConfig) MainAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.MainPort))
}

// AppAddress returns the application server address
func (c ServerConfig) AppAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.AppPort))
}

// String is used when logging the configuration at startup
func (c ServerConfig) String() string {
	return fmt.Sprintf("main=%s app=%s shutdown_timeout=%s", c.MainAddress(), c.AppAddress(), c.ShutdownTimeout)
}

// Usage writes a table of the recognised environment variables to w
func Usage(w io.Writer) error {
	tabs := tabwriter.NewWriter(w, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef("", &envSpec{}, tabs, envconfig.DefaultTableFormat); err != nil {
		return err
	}
	return tabs.Flush()
}
