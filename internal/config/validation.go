// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"crypto/sha1"
	"fmt"
	"strings"

	"github.com/ManuGH/sd2xmltv/internal/validate"
)

// Validate checks a fully merged AppConfig. Directories are created as a side
// effect so the refresh job can write without further checks.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("username", cfg.Username)
	if strings.TrimSpace(cfg.Password) == "" && strings.TrimSpace(cfg.PasswordHash) == "" {
		v.AddError("password", "either password or passwordHash must be set", "")
	}
	if cfg.PasswordHash != "" {
		v.HexDigest("passwordHash", cfg.PasswordHash, sha1.Size)
	}

	v.HTTPURL("baseUrl", cfg.BaseURL)
	v.Range("days", cfg.Days, 1, 21)
	for i, id := range cfg.Lineups {
		v.NotEmpty(fmt.Sprintf("lineups[%d]", i), id)
	}

	v.OneOf("channelPolicy", cfg.ChannelPolicy, []string{ChannelPolicyExpand, ChannelPolicyOverwrite})
	v.Range("scheduleChunkSize", cfg.ScheduleChunkSize, 1, 5000)
	v.Range("programChunkSize", cfg.ProgramChunkSize, 1, 5000)
	v.PositiveDuration("requestTimeout", cfg.RequestTimeout)
	v.PositiveRate("rateLimit", cfg.RateLimit)

	v.NotEmpty("generatorName", cfg.GeneratorName)
	v.Directory("dataDir", cfg.DataDir)
	v.OutputFile("outputPath", cfg.OutputPath)
	if cfg.Logos.Cache {
		v.Directory("logos.dir", cfg.Logos.Dir)
		v.PositiveDuration("logos.timeout", cfg.Logos.Timeout)
	}

	if cfg.Jellyfin.Enabled {
		v.HTTPURL("jellyfin.url", cfg.Jellyfin.URL)
		v.NotEmpty("jellyfin.apiKey", cfg.Jellyfin.APIKey)
		v.NotEmpty("jellyfin.taskKey", cfg.Jellyfin.TaskKey)
		v.PositiveDuration("jellyfin.timeout", cfg.Jellyfin.Timeout)
	}

	v.LogLevel("logLevel", cfg.LogLevel)
	if cfg.MetricsTextfile != "" {
		v.OutputFile("metricsTextfile", cfg.MetricsTextfile)
	}

	return v.Err()
}
