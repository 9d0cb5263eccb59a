// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that call the
// retrieval backend.
type HTTPConfig struct {
	// BaseURL is the retrieval backend root (e.g. "http://localhost:8000").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is the per-request timeout. It must be finite.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// BreakerConfig holds circuit breaker settings for the oracle client.
type BreakerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ConsecutiveFailures trips the breaker (default 5).
	ConsecutiveFailures uint32 `json:"consecutive_failures" yaml:"consecutive_failures"`

	// OpenTimeout is how long the breaker stays open before probing (default 30s).
	OpenTimeout time.Duration `json:"open_timeout" yaml:"open_timeout"`
}

// MockConfig controls fixture substitution.
type MockConfig struct {
	// Enabled swaps the remote oracle for the embedded fixture corpus.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MinLatency and MaxLatency bound the simulated response delay.
	MinLatency time.Duration `json:"min_latency" yaml:"min_latency"`
	MaxLatency time.Duration `json:"max_latency" yaml:"max_latency"`
}

// SearchConfig holds dispatcher settings.
type SearchConfig struct {
	// PageSize is the default page size and semantic top_k (default 12).
	PageSize int `json:"page_size" yaml:"page_size"`

	// CacheCapacity bounds the study cache (default 500).
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity"`

	// ListUnfiltered makes an empty filter state issue an unconstrained
	// document listing instead of returning an empty page.
	ListUnfiltered bool `json:"list_unfiltered" yaml:"list_unfiltered"`

	// FallbackToFixtures lets detail lookups fall back to fixture data when
	// reconstruction fails (default true).
	FallbackToFixtures bool `json:"fallback_to_fixtures" yaml:"fallback_to_fixtures"`
}

// ChatConfig holds chat session settings.
type ChatConfig struct {
	// TopK is the number of citations requested per question (default 8).
	TopK int `json:"top_k" yaml:"top_k"`
}

// LogConfig selects logger level and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ServerConfig holds BFF listener settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`

	// Sessions bounds the number of live client sessions (default 1000).
	Sessions int `json:"sessions" yaml:"sessions"`

	// AllowedOrigins lists browser origins allowed by CORS. Empty allows
	// any origin.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// ArchiveConfig locates the local study archive.
type ArchiveConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ExplorerConfig groups all component configurations.
type ExplorerConfig struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Breaker BreakerConfig `json:"breaker" yaml:"breaker"`
	Mock    MockConfig    `json:"mock" yaml:"mock"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Chat    ChatConfig    `json:"chat" yaml:"chat"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}

// Default values applied by DefaultExplorerConfig.
const (
	DefaultBaseURL       = "http://localhost:8000"
	DefaultTimeout       = 20 * time.Second
	DefaultUserAgent     = "bioexplorer/0.1"
	DefaultPageSize      = 12
	DefaultChatTopK      = 8
	DefaultCacheCapacity = 500
	DefaultMinLatency    = 200 * time.Millisecond
	DefaultMaxLatency    = 500 * time.Millisecond
	DefaultSessions      = 1000
	DefaultArchivePath   = "data/archive.db"
)

// DefaultExplorerConfig returns a configuration with every default filled in.
func DefaultExplorerConfig() ExplorerConfig {
	return ExplorerConfig{
		HTTP: HTTPConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		Breaker: BreakerConfig{
			ConsecutiveFailures: 5,
			OpenTimeout:         30 * time.Second,
		},
		Mock: MockConfig{
			MinLatency: DefaultMinLatency,
			MaxLatency: DefaultMaxLatency,
		},
		Search: SearchConfig{
			PageSize:           DefaultPageSize,
			CacheCapacity:      DefaultCacheCapacity,
			FallbackToFixtures: true,
		},
		Chat:    ChatConfig{TopK: DefaultChatTopK},
		Log:     LogConfig{Level: "info", Format: "console"},
		Server:  ServerConfig{Addr: ":8080", Sessions: DefaultSessions},
		Archive: ArchiveConfig{Path: DefaultArchivePath},
	}
}
