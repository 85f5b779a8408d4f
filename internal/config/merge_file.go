// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"
	"time"
)

// mergeFileConfig merges file configuration into jobs config
func (l *Loader) mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	l.mergeFileAccount(dst, src)
	l.mergeFileOutput(dst, src)
	if err := l.mergeFileFetch(dst, src); err != nil {
		return err
	}
	if err := l.mergeFileLogos(dst, src); err != nil {
		return err
	}
	return l.mergeFileJellyfin(dst, src)
}

func (l *Loader) mergeFileAccount(dst *AppConfig, src *FileConfig) {
	if src.Username != "" {
		dst.Username = src.Username
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
	if src.PasswordHash != "" {
		dst.PasswordHash = strings.ToLower(src.PasswordHash)
	}
	if src.BaseURL != "" {
		dst.BaseURL = strings.TrimRight(src.BaseURL, "/")
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
	if len(src.Lineups) > 0 {
		dst.Lineups = append([]string(nil), src.Lineups...)
	}
	if src.Days != nil {
		dst.Days = *src.Days
	}
}

func (l *Loader) mergeFileOutput(dst *AppConfig, src *FileConfig) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.OutputPath != "" {
		dst.OutputPath = src.OutputPath
	}
	if src.GeneratorName != "" {
		dst.GeneratorName = src.GeneratorName
	}
	if src.ChannelPolicy != "" {
		dst.ChannelPolicy = strings.ToLower(src.ChannelPolicy)
	}
	if src.IncludeDescriptions != nil {
		dst.IncludeDescriptions = *src.IncludeDescriptions
	}
	if src.LogLevel != "" {
		dst.LogLevel = strings.ToLower(src.LogLevel)
	}
	if src.MetricsTextfile != "" {
		dst.MetricsTextfile = src.MetricsTextfile
	}
}

func (l *Loader) mergeFileFetch(dst *AppConfig, src *FileConfig) error {
	if src.ScheduleChunkSize != nil {
		dst.ScheduleChunkSize = *src.ScheduleChunkSize
	}
	if src.ProgramChunkSize != nil {
		dst.ProgramChunkSize = *src.ProgramChunkSize
	}
	if src.RateLimit != nil {
		dst.RateLimit = *src.RateLimit
	}
	if src.RequestTimeout != "" {
		d, err := parseFileDuration("requestTimeout", src.RequestTimeout)
		if err != nil {
			return err
		}
		dst.RequestTimeout = d
	}
	return nil
}

func (l *Loader) mergeFileLogos(dst *AppConfig, src *FileConfig) error {
	if src.Logos.Cache != nil {
		dst.Logos.Cache = *src.Logos.Cache
	}
	if src.Logos.Dir != "" {
		dst.Logos.Dir = src.Logos.Dir
	}
	if src.Logos.Timeout != "" {
		d, err := parseFileDuration("logos.timeout", src.Logos.Timeout)
		if err != nil {
			return err
		}
		dst.Logos.Timeout = d
	}
	return nil
}

func (l *Loader) mergeFileJellyfin(dst *AppConfig, src *FileConfig) error {
	if src.Jellyfin.Enabled != nil {
		dst.Jellyfin.Enabled = *src.Jellyfin.Enabled
	}
	if src.Jellyfin.URL != "" {
		dst.Jellyfin.URL = strings.TrimRight(src.Jellyfin.URL, "/")
	}
	if src.Jellyfin.APIKey != "" {
		dst.Jellyfin.APIKey = src.Jellyfin.APIKey
	}
	if src.Jellyfin.TaskKey != "" {
		dst.Jellyfin.TaskKey = src.Jellyfin.TaskKey
	}
	if src.Jellyfin.Timeout != "" {
		d, err := parseFileDuration("jellyfin.timeout", src.Jellyfin.Timeout)
		if err != nil {
			return err
		}
		dst.Jellyfin.Timeout = d
	}
	return nil
}

func parseFileDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidDuration, field, value, err)
	}
	return d, nil
}
