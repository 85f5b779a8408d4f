// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Channel multiplicity policies, see epg.ChannelPolicy.
const (
	ChannelPolicyExpand    = "expand"
	ChannelPolicyOverwrite = "overwrite"
)

// FileConfig represents the YAML configuration structure
type FileConfig struct {
	Username     string   `yaml:"username,omitempty"`
	Password     string   `yaml:"password,omitempty"`
	PasswordHash string   `yaml:"passwordHash,omitempty"`
	BaseURL      string   `yaml:"baseUrl,omitempty"`
	UserAgent    string   `yaml:"userAgent,omitempty"`
	Lineups      []string `yaml:"lineups,omitempty"`
	Days         *int     `yaml:"days,omitempty"`

	DataDir       string `yaml:"dataDir,omitempty"`
	OutputPath    string `yaml:"outputPath,omitempty"`
	GeneratorName string `yaml:"generatorName,omitempty"`

	ChannelPolicy       string `yaml:"channelPolicy,omitempty"`
	IncludeDescriptions *bool  `yaml:"includeDescriptions,omitempty"`

	ScheduleChunkSize *int     `yaml:"scheduleChunkSize,omitempty"`
	ProgramChunkSize  *int     `yaml:"programChunkSize,omitempty"`
	RequestTimeout    string   `yaml:"requestTimeout,omitempty"` // e.g. "30s"
	RateLimit         *float64 `yaml:"rateLimit,omitempty"`      // requests per second

	Logos    LogosFileConfig    `yaml:"logos,omitempty"`
	Jellyfin JellyfinFileConfig `yaml:"jellyfin,omitempty"`

	LogLevel        string `yaml:"logLevel,omitempty"`
	MetricsTextfile string `yaml:"metricsTextfile,omitempty"`
}

// LogosFileConfig holds the logo cache settings as written in YAML.
type LogosFileConfig struct {
	Cache   *bool  `yaml:"cache,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// JellyfinFileConfig holds the refresh trigger settings as written in YAML.
type JellyfinFileConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	APIKey  string `yaml:"apiKey,omitempty"`
	TaskKey string `yaml:"taskKey,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// AppConfig is the resolved runtime configuration handed to jobs.Refresh.
type AppConfig struct {
	Version string

	// Schedules Direct account
	Username     string
	Password     string
	PasswordHash string
	BaseURL      string
	UserAgent    string
	// Lineups restricts the run to these lineup IDs; empty means all
	// lineups on the account.
	Lineups []string
	Days    int

	DataDir       string
	OutputPath    string
	GeneratorName string

	ChannelPolicy       string
	IncludeDescriptions bool

	ScheduleChunkSize int
	ProgramChunkSize  int
	RequestTimeout    time.Duration
	RateLimit         float64

	Logos    LogosConfig
	Jellyfin JellyfinConfig

	LogLevel        string
	MetricsTextfile string
}

// LogosConfig controls the local station logo cache.
type LogosConfig struct {
	// Cache downloads logos into Dir and references the local copy; when
	// false the channel icon points at the upstream URL.
	Cache   bool
	Dir     string
	Timeout time.Duration
}

// JellyfinConfig controls the optional post-write guide refresh trigger.
type JellyfinConfig struct {
	Enabled bool
	URL     string
	APIKey  string
	TaskKey string
	Timeout time.Duration
}
