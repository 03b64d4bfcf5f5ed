package core

import (
	"time"
)

type Config struct {
	ACRCloud ACRCloudConfig
	Spotify  SpotifyConfig
	Store    StoreConfig
	Resolver ResolverConfig
	Server   ServerConfig
	Log      LogConfig
}

// ACRCloudConfig configures the outbound fingerprint service adapter.
// BaseURL or Token left empty is a configuration error surfaced as a
// structured failure result at call time, never a crash.
type ACRCloudConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RatePerSec float64
	Platforms  []string
}

// SpotifyConfig configures the optional metadata enricher. Both fields
// empty disables enrichment.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type StoreConfig struct {
	DBPath      string
	CacheSize   int
	BloomFPRate float64
}

// ResolverConfig holds the pipeline's scoring thresholds.
type ResolverConfig struct {
	StrongThreshold float64
	OKThreshold     float64
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		ACRCloud: ACRCloudConfig{
			BaseURL:    "https://eu-api-v2.acrcloud.com/api/external-metadata/tracks",
			Timeout:    10 * time.Second,
			RatePerSec: 2,
			Platforms:  []string{"spotify", "apple_music", "youtube", "amazon_music", "tidal"},
		},
		Store: StoreConfig{
			DBPath:      "./fanlink.db",
			CacheSize:   10000,
			BloomFPRate: 0.001,
		},
		Resolver: ResolverConfig{
			StrongThreshold: 0.8,
			OKThreshold:     0.65,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
