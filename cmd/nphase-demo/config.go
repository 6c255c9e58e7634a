package main

import (
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is read from a YAML file.  NPHASE_* environment variables
// override the file.
type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	APIKeys []string `yaml:"api_keys"`
}

// DefaultConfig is used for anything the file and the environment
// leave out.
func DefaultConfig() Config {
	var cfg Config
	cfg.Server.Address = ":8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Logging.Level = "info"
	cfg.RateLimit.RPS = 5
	cfg.RateLimit.Burst = 10
	return cfg
}

// Lookup finds an environment variable.
type Lookup func(name string) (string, bool)

// Environment looks names up in the process environment first and then
// in the dotenv file, which may be missing.
func Environment(dotenv string) (Lookup, error) {
	file, err := godotenv.Read(dotenv)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "read %s", dotenv)
		}
		file = map[string]string{}
	}
	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := file[name]
		return v, ok
	}, nil
}

// LoadConfig reads path, if it is not empty, and applies overrides
// from env.
func LoadConfig(path string, env Lookup) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, errors.Wrapf(err, "read config %s", path)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}
	if env == nil {
		return cfg, cfg.validate()
	}
	if v, ok := env("NPHASE_ADDR"); ok && v != "" {
		cfg.Server.Address = v
	}
	if v, ok := env("NPHASE_LOG_LEVEL"); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := env("NPHASE_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, errors.Wrap(err, "NPHASE_SHUTDOWN_TIMEOUT")
		}
		cfg.Server.ShutdownTimeout = d
	}
	if v, ok := env("NPHASE_RATE_RPS"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.Wrap(err, "NPHASE_RATE_RPS")
		}
		cfg.RateLimit.RPS = rps
	}
	if v, ok := env("NPHASE_RATE_BURST"); ok && v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Wrap(err, "NPHASE_RATE_BURST")
		}
		cfg.RateLimit.Burst = burst
	}
	if v, ok := env("NPHASE_API_KEYS"); ok && v != "" {
		cfg.APIKeys = nil
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.APIKeys = append(cfg.APIKeys, key)
			}
		}
	}
	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must not be negative")
	}
	return nil
}
