package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Market struct {
	BaseURL              string `json:"base_url"`
	APIKey               string `json:"api_key"`
	UseSyntheticData     bool   `json:"use_synthetic_data"`
	MinRequestIntervalMS int    `json:"min_request_interval_ms"`
	RateLimitDelayMS     int    `json:"rate_limit_delay_ms"`
	MaxRetries           int    `json:"max_retries"`
	SearchCacheTTLSec    int    `json:"search_cache_ttl_sec"`
	RequestTimeoutSec    int    `json:"request_timeout_sec"`
}

type Config struct {
	Server Server `json:"server"`
	Market Market `json:"market"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15},
		Market: Market{
			BaseURL:              "https://finnhub.io/api/v1",
			UseSyntheticData:     true,
			MinRequestIntervalMS: 2000,
			RateLimitDelayMS:     2000,
			MaxRetries:           3,
			SearchCacheTTLSec:    300,
			RequestTimeoutSec:    10,
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. A .env file is loaded first if present, and
// environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("MARKET_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("USE_SYNTHETIC_DATA"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Market.UseSyntheticData = true
		case "0", "false", "no", "n":
			cfg.Market.UseSyntheticData = false
		}
	}
	if v := os.Getenv("MARKET_MIN_INTERVAL_MS"); v != "" {
		if x := atoi(v); x >= 0 {
			cfg.Market.MinRequestIntervalMS = x
		}
	}
	if v := os.Getenv("MARKET_RATE_LIMIT_DELAY_MS"); v != "" {
		if x := atoi(v); x >= 0 {
			cfg.Market.RateLimitDelayMS = x
		}
	}
	if v := os.Getenv("MARKET_MAX_RETRIES"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Market.MaxRetries = x
		}
	}
	if v := os.Getenv("MARKET_CACHE_TTL_SEC"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Market.SearchCacheTTLSec = x
		}
	}
	if v := os.Getenv("MARKET_TIMEOUT_SEC"); v != "" {
		if x := atoi(v); x > 0 {
			cfg.Market.RequestTimeoutSec = x
		}
	}
}

func atoi(s string) int {
	var x int
	fmt.Sscanf(s, "%d", &x)
	return x
}
