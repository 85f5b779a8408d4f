// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults applied before the file and environment layers.
const (
	DefaultBaseURL           = "https://json.schedulesdirect.org/20141201"
	DefaultDays              = 7
	DefaultDataDir           = "/var/lib/sd2xmltv"
	DefaultGeneratorName     = "sd2xmltv"
	DefaultScheduleChunkSize = 500
	DefaultProgramChunkSize  = 5000
	DefaultRequestTimeout    = 30 * time.Second
	DefaultRateLimit         = 5.0
	DefaultLogoTimeout       = 15 * time.Second
	DefaultJellyfinTaskKey   = "RefreshGuide"
	DefaultJellyfinTimeout   = 10 * time.Second
)

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.BaseURL = DefaultBaseURL
	cfg.Days = DefaultDays
	cfg.DataDir = DefaultDataDir
	cfg.GeneratorName = DefaultGeneratorName
	cfg.ChannelPolicy = ChannelPolicyExpand
	cfg.IncludeDescriptions = true
	cfg.ScheduleChunkSize = DefaultScheduleChunkSize
	cfg.ProgramChunkSize = DefaultProgramChunkSize
	cfg.RequestTimeout = DefaultRequestTimeout
	cfg.RateLimit = DefaultRateLimit
	cfg.LogLevel = "info"

	cfg.Logos = LogosConfig{
		Cache:   true,
		Timeout: DefaultLogoTimeout,
	}
	cfg.Jellyfin = JellyfinConfig{
		TaskKey: DefaultJellyfinTaskKey,
		Timeout: DefaultJellyfinTimeout,
	}
}
