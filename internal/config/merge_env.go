// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "strings"

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// mergeEnvConfig applies SD2XMLTV_* overrides on top of file and defaults.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	// Account
	cfg.Username = l.envString(EnvPrefix+"USERNAME", cfg.Username)
	cfg.Password = l.envString(EnvPrefix+"PASSWORD", cfg.Password)
	cfg.PasswordHash = strings.ToLower(l.envString(EnvPrefix+"PASSWORD_HASH", cfg.PasswordHash))
	cfg.BaseURL = strings.TrimRight(l.envString(EnvPrefix+"BASE_URL", cfg.BaseURL), "/")
	cfg.UserAgent = l.envString(EnvPrefix+"USER_AGENT", cfg.UserAgent)
	cfg.Lineups = l.envList(EnvPrefix+"LINEUPS", cfg.Lineups)
	cfg.Days = l.envInt(EnvPrefix+"DAYS", cfg.Days)

	// Output
	cfg.DataDir = l.envString(EnvPrefix+"DATA_DIR", cfg.DataDir)
	cfg.OutputPath = l.envString(EnvPrefix+"OUTPUT_PATH", cfg.OutputPath)
	cfg.GeneratorName = l.envString(EnvPrefix+"GENERATOR_NAME", cfg.GeneratorName)
	cfg.ChannelPolicy = strings.ToLower(l.envString(EnvPrefix+"CHANNEL_POLICY", cfg.ChannelPolicy))
	cfg.IncludeDescriptions = l.envBool(EnvPrefix+"INCLUDE_DESCRIPTIONS", cfg.IncludeDescriptions)

	// Fetch tuning
	cfg.ScheduleChunkSize = l.envInt(EnvPrefix+"SCHEDULE_CHUNK_SIZE", cfg.ScheduleChunkSize)
	cfg.ProgramChunkSize = l.envInt(EnvPrefix+"PROGRAM_CHUNK_SIZE", cfg.ProgramChunkSize)
	cfg.RequestTimeout = l.envDuration(EnvPrefix+"REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RateLimit = l.envFloat(EnvPrefix+"RATE_LIMIT", cfg.RateLimit)

	// Logos
	cfg.Logos.Cache = l.envBool(EnvPrefix+"LOGOS_CACHE", cfg.Logos.Cache)
	cfg.Logos.Dir = l.envString(EnvPrefix+"LOGOS_DIR", cfg.Logos.Dir)
	cfg.Logos.Timeout = l.envDuration(EnvPrefix+"LOGOS_TIMEOUT", cfg.Logos.Timeout)

	// Jellyfin
	cfg.Jellyfin.Enabled = l.envBool(EnvPrefix+"JELLYFIN_ENABLED", cfg.Jellyfin.Enabled)
	cfg.Jellyfin.URL = strings.TrimRight(l.envString(EnvPrefix+"JELLYFIN_URL", cfg.Jellyfin.URL), "/")
	cfg.Jellyfin.APIKey = l.envString(EnvPrefix+"JELLYFIN_API_KEY", cfg.Jellyfin.APIKey)
	cfg.Jellyfin.TaskKey = l.envString(EnvPrefix+"JELLYFIN_TASK_KEY", cfg.Jellyfin.TaskKey)
	cfg.Jellyfin.Timeout = l.envDuration(EnvPrefix+"JELLYFIN_TIMEOUT", cfg.Jellyfin.Timeout)

	// Observability
	cfg.LogLevel = strings.ToLower(l.envString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel))
	cfg.MetricsTextfile = l.envString(EnvPrefix+"METRICS_TEXTFILE", cfg.MetricsTextfile)
}
