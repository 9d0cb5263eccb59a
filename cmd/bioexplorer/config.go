// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/fixtures"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/internal/secrets"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// setDefaults registers every configuration key with its default, so
// environment variables resolve even without a config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultExplorerConfig()
	v.SetDefault("http.base_url", d.HTTP.BaseURL)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.api_key", "")
	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.consecutive_failures", d.Breaker.ConsecutiveFailures)
	v.SetDefault("breaker.open_timeout", d.Breaker.OpenTimeout)
	v.SetDefault("mock.enabled", d.Mock.Enabled)
	v.SetDefault("mock.min_latency", d.Mock.MinLatency)
	v.SetDefault("mock.max_latency", d.Mock.MaxLatency)
	v.SetDefault("search.page_size", d.Search.PageSize)
	v.SetDefault("search.cache_capacity", d.Search.CacheCapacity)
	v.SetDefault("search.list_unfiltered", d.Search.ListUnfiltered)
	v.SetDefault("search.fallback_to_fixtures", d.Search.FallbackToFixtures)
	v.SetDefault("chat.top_k", d.Chat.TopK)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.sessions", d.Server.Sessions)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("archive.path", d.Archive.Path)
}

// explorerConfig reads the effective configuration from v. An API key in
// .secrets/ is used when none is configured.
func explorerConfig(v *viper.Viper) types.ExplorerConfig {
	cfg := types.ExplorerConfig{
		HTTP: types.HTTPConfig{
			BaseURL:   v.GetString("http.base_url"),
			Timeout:   v.GetDuration("http.timeout"),
			UserAgent: v.GetString("http.user_agent"),
			APIKey:    v.GetString("http.api_key"),
		},
		Breaker: types.BreakerConfig{
			Enabled:             v.GetBool("breaker.enabled"),
			ConsecutiveFailures: v.GetUint32("breaker.consecutive_failures"),
			OpenTimeout:         v.GetDuration("breaker.open_timeout"),
		},
		Mock: types.MockConfig{
			Enabled:    v.GetBool("mock.enabled"),
			MinLatency: v.GetDuration("mock.min_latency"),
			MaxLatency: v.GetDuration("mock.max_latency"),
		},
		Search: types.SearchConfig{
			PageSize:           v.GetInt("search.page_size"),
			CacheCapacity:      v.GetInt("search.cache_capacity"),
			ListUnfiltered:     v.GetBool("search.list_unfiltered"),
			FallbackToFixtures: v.GetBool("search.fallback_to_fixtures"),
		},
		Chat: types.ChatConfig{TopK: v.GetInt("chat.top_k")},
		Log:  types.LogConfig{Level: v.GetString("log.level"), Format: v.GetString("log.format")},
		Server: types.ServerConfig{
			Addr:           v.GetString("server.addr"),
			Sessions:       v.GetInt("server.sessions"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Archive: types.ArchiveConfig{Path: v.GetString("archive.path")},
	}
	if cfg.HTTP.APIKey == "" {
		cfg.HTTP.APIKey = loadedSecrets.Get(secrets.ExplorerAPIKey)
	}
	return cfg
}

// newBackend returns the fixture backend in mock mode, else the HTTP
// client for the configured base URL.
func newBackend(cfg types.ExplorerConfig) (oracle.Backend, error) {
	if cfg.Mock.Enabled {
		logger.Info("mock mode: serving embedded fixtures")
		return fixtures.NewBackend(cfg.Mock, logger)
	}
	opts := []oracle.Option{oracle.WithLogger(logger)}
	if cfg.Breaker.Enabled {
		opts = append(opts, oracle.WithBreaker(cfg.Breaker))
	}
	logger.Debug("using retrieval backend", zap.String("base_url", cfg.HTTP.BaseURL))
	return oracle.NewClient(cfg.HTTP, opts...), nil
}

// newService builds a search service over the configured backend.
func newService(cfg types.ExplorerConfig, rec *metrics.Recorder) (*search.Service, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	return search.New(backend, cfg.Search,
		search.WithLogger(logger),
		search.WithRecorder(rec),
	), nil
}
