// Package main provides the fanlink resolver service entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"fanlink/internal/acrcloud"
	"fanlink/internal/core"
	httpserver "fanlink/internal/http"
	"fanlink/internal/resolver"
	"fanlink/internal/spotify"
	"fanlink/internal/store"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fanlinkd",
	Short: "fanlink - smart link track resolver",
	Long: `fanlinkd resolves heterogeneous track identifiers (audio references,
ISRCs, fingerprint IDs, platform URLs, free-text hints) into a canonical,
confidence-scored set of per-platform streaming links.`,
	RunE: runFanlink,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("acr-base-url", "", "fingerprint service base URL")
	rootCmd.PersistentFlags().String("acr-token", "", "fingerprint service bearer token")
	rootCmd.PersistentFlags().String("db-path", "./fanlink.db", "SQLite database path")
	rootCmd.PersistentFlags().Int("cache-size", 10000, "hot cache capacity")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID (enrichment, optional)")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret (enrichment, optional)")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("FANLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	if v := viper.GetString("acr-base-url"); v != "" {
		cfg.ACRCloud.BaseURL = v
	}
	cfg.ACRCloud.Token = viper.GetString("acr-token")

	cfg.Store.DBPath = viper.GetString("db-path")
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = "./fanlink.db"
	}
	if v := viper.GetInt("cache-size"); v > 0 {
		cfg.Store.CacheSize = v
	}

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if v := viper.GetInt("server-port"); v > 0 {
		cfg.Server.Port = v
	}

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runFanlink(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting fanlink resolver",
		zap.String("version", "1.0.0"),
		zap.Bool("fingerprint_configured", config.ACRCloud.Token != ""),
		zap.Bool("spotify_enrichment", config.Spotify.ClientID != ""))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	resolutionStore, err := store.Open(&config.Store, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open resolution store: %w", err)
	}
	defer func() {
		_ = resolutionStore.Close()
	}()

	fingerprintClient := acrcloud.NewClient(&config.ACRCloud, logger.Named("acrcloud"))

	var enricher core.MetadataEnricher
	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if spotifyClient.Enabled() {
		enricher = spotifyClient
	}

	metrics := httpserver.NewMetrics()

	pipeline := resolver.NewPipeline(
		&config.Resolver,
		fingerprintClient,
		resolutionStore,
		enricher,
		metrics,
		logger.Named("resolver"),
	)

	httpServer := httpserver.NewServer(&config.Server, pipeline, metrics, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				metrics.SetCachedIdentities(resolutionStore.CachedIdentities())
			}
		}
	})

	logger.Info("fanlink resolver started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("fanlink resolver stopped with error", zap.Error(err))
		return err
	}

	logger.Info("fanlink resolver stopped gracefully")
	return nil
}

func validateConfig() error {
	if config.Store.DBPath == "" {
		return fmt.Errorf("database path is required")
	}

	if config.ACRCloud.Token == "" {
		logger.Warn("Fingerprint token not configured, resolutions will rely on direct inputs only")
	}

	if (config.Spotify.ClientID == "") != (config.Spotify.ClientSecret == "") {
		return fmt.Errorf("spotify enrichment needs both client ID and secret")
	}

	return nil
}
