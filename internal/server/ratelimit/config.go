package ratelimit

import "time"

// EndpointConfig is the limit for one route. A Path ending in "/" matches by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window; zero or less means unlimited
	Window time.Duration
	Burst  int // bucket capacity; defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Settings are the operator-facing knobs, as read by the config package.
type Settings struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	Whitelist     []string
	Blacklist     []string
}

// NewConfig builds a Config from settings and the default endpoint limits.
func NewConfig(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	cfg := DefaultConfig()
	if s.DefaultLimit > 0 {
		cfg.DefaultLimit = s.DefaultLimit
	}
	if s.DefaultWindow > 0 {
		cfg.DefaultWindow = s.DefaultWindow
	}
	cfg.Whitelist = toSet(s.Whitelist)
	cfg.Blacklist = toSet(s.Blacklist)
	return cfg
}

// DefaultConfig returns the built-in limits.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits. Provider-backed routes
// are the most expensive and get the tightest limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/generate", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/upload", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/export", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/metrics/", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = true
		}
	}
	return set
}
