// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package jobs runs one guide refresh: authenticate, fetch, merge, write.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ManuGH/sd2xmltv/internal/config"
	"github.com/ManuGH/sd2xmltv/internal/epg"
	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/ManuGH/sd2xmltv/internal/logos"
	"github.com/ManuGH/sd2xmltv/internal/metrics"
	"github.com/ManuGH/sd2xmltv/internal/notify"
	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
	"github.com/google/uuid"
)

// ErrNoLineups is returned when the account has no usable lineup.
var ErrNoLineups = errors.New("no lineups selected")

// Failure stages reported to metrics.
const (
	stageConfig    = "config"
	stageAuth      = "auth"
	stageLineups   = "lineups"
	stageDirectory = "directory"
	stageSchedules = "schedules"
	stagePrograms  = "programs"
	stageAssemble  = "assemble"
	stageWrite     = "write"
)

// Refresh runs one refresh with collaborators built from cfg.
func Refresh(ctx context.Context, cfg config.AppConfig) (*Status, error) {
	deps, err := NewDeps(cfg)
	if err != nil {
		return nil, err
	}
	return Run(ctx, cfg, deps)
}

// NewDeps builds the production collaborators for cfg.
func NewDeps(cfg config.AppConfig) (Deps, error) {
	deps := Deps{
		Client: sd.New(sd.Options{
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RequestTimeout,
			RateLimit: cfg.RateLimit,
		}),
		Icons: epg.RemoteIcons{},
	}

	if cfg.Logos.Cache {
		cache, err := logos.New(logos.Config{Dir: cfg.Logos.Dir, Timeout: cfg.Logos.Timeout})
		if err != nil {
			return Deps{}, fmt.Errorf("logo cache: %w", err)
		}
		deps.Icons = cache
	}

	if cfg.Jellyfin.Enabled {
		n, err := notify.NewJellyfin(notify.Config{
			URL:     cfg.Jellyfin.URL,
			APIKey:  cfg.Jellyfin.APIKey,
			TaskKey: cfg.Jellyfin.TaskKey,
			Timeout: cfg.Jellyfin.Timeout,
		})
		if err != nil {
			return Deps{}, fmt.Errorf("jellyfin: %w", err)
		}
		deps.Notifier = n
	}
	return deps, nil
}

// Run performs the refresh phases in order. Any error leaves the previous
// guide file untouched.
func Run(ctx context.Context, cfg config.AppConfig, deps Deps) (*Status, error) {
	if deps.Client == nil {
		return nil, errors.New("jobs: nil client")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Icons == nil {
		deps.Icons = epg.RemoteIcons{}
	}

	jobID := uuid.NewString()
	ctx = xglog.ContextWithJobID(ctx, jobID)
	logger := xglog.WithComponentFromContext(ctx, "jobs")

	begin := time.Now()
	st := &Status{JobID: jobID, StartedAt: deps.Clock(), OutputPath: cfg.OutputPath}

	logger.Info().
		Str(xglog.FieldEvent, "refresh.start").
		Int("days", cfg.Days).
		Str("channel_policy", cfg.ChannelPolicy).
		Msg("starting refresh")

	stage, err := run(ctx, cfg, deps, st)
	st.Duration = time.Since(begin)
	metrics.RecordRefresh(err == nil, st.Duration)

	if err != nil {
		metrics.IncRefreshFailure(stage)
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "refresh.failed").
			Str(xglog.FieldPhase, stage).
			Dur("duration", st.Duration).
			Msg("refresh failed")
		exportMetrics(ctx, cfg.MetricsTextfile)
		return nil, err
	}

	logger.Info().
		Str(xglog.FieldEvent, "refresh.success").
		Int("channels", st.Channels).
		Int("programmes", st.Programmes).
		Int("chunks_failed", st.ChunksFailed).
		Dur("duration", st.Duration).
		Msg("refresh completed")
	exportMetrics(ctx, cfg.MetricsTextfile)
	return st, nil
}

func run(ctx context.Context, cfg config.AppConfig, deps Deps, st *Status) (stage string, err error) {
	logger := xglog.WithComponentFromContext(ctx, "jobs")
	client := deps.Client

	if err := config.Validate(cfg); err != nil {
		return stageConfig, fmt.Errorf("invalid configuration: %w", err)
	}
	policy, err := epg.ParseChannelPolicy(cfg.ChannelPolicy)
	if err != nil {
		return stageConfig, err
	}

	hash := cfg.PasswordHash
	if hash == "" {
		hash = sd.HashPassword(cfg.Password)
	}
	if err := client.Authenticate(ctx, cfg.Username, hash); err != nil {
		return stageAuth, fmt.Errorf("authenticate: %w", err)
	}
	logAccountStatus(ctx, client)

	inputs, err := fetchLineups(ctx, client, cfg.Lineups)
	if err != nil {
		return stageLineups, err
	}
	st.Lineups = len(inputs)

	dir, err := epg.BuildStationDirectory(ctx, inputs, policy, deps.Icons)
	if err != nil {
		return stageDirectory, fmt.Errorf("build station directory: %w", err)
	}
	st.Stations = dir.Len()
	logger.Info().
		Str(xglog.FieldEvent, "directory.built").
		Str("channel_policy", string(dir.Policy())).
		Int("stations", dir.Len()).
		Int("channels", dir.NumIdentities()).
		Msg("station directory built")

	dates := ScheduleDates(deps.Clock(), cfg.Days)
	blocks, failed, err := fetchSchedules(ctx, client, dir.StationIDs(), dates, cfg.ScheduleChunkSize)
	st.ChunksFailed += failed
	if err != nil {
		return stageSchedules, err
	}
	groups, skipped := epg.NormalizeSchedules(ctx, blocks)
	st.AiringsSkipped = skipped
	metrics.AddAiringsSkipped(skipped)

	programs, failed, err := fetchPrograms(ctx, client, epg.ProgramIDs(groups), cfg.ProgramChunkSize)
	st.ChunksFailed += failed
	if err != nil {
		return stagePrograms, err
	}
	catalog := epg.NewCatalog(programs)
	st.Programs = catalog.Len()

	tv, stats := epg.Assemble(ctx, dir, groups, catalog, epg.AssembleOptions{
		GeneratorName: cfg.GeneratorName,
		Classifier: epg.NewClassifier(epg.ClassifierOptions{
			Now:                 deps.Clock,
			IncludeDescriptions: cfg.IncludeDescriptions,
		}),
	})
	st.Channels = stats.Channels
	st.Programmes = stats.Programmes
	st.CatalogMisses = stats.CatalogMisses
	st.UnknownStations = stats.UnknownStations
	metrics.AddCatalogMisses(stats.CatalogMisses)

	if err := epg.Check(tv); err != nil {
		return stageAssemble, fmt.Errorf("guide failed consistency check: %w", err)
	}

	if err := writeXMLTV(ctx, cfg.OutputPath, tv); err != nil {
		return stageWrite, err
	}
	metrics.RecordXMLTV(stats.Channels, stats.Programmes)
	logger.Info().
		Str(xglog.FieldEvent, "xmltv.written").
		Str(xglog.FieldPath, cfg.OutputPath).
		Int("channels", stats.Channels).
		Int("programmes", stats.Programmes).
		Int("catalog_misses", stats.CatalogMisses).
		Msg("guide written")

	if deps.Notifier != nil {
		if err := deps.Notifier.Notify(ctx); err != nil {
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "notify.failed").
				Msg("media server refresh trigger failed")
		} else {
			st.Notified = true
		}
	}
	return "", nil
}

// logAccountStatus logs the account expiry. Failures are informational only.
func logAccountStatus(ctx context.Context, client Client) {
	logger := xglog.WithComponentFromContext(ctx, "jobs")
	status, err := client.Status(ctx)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "status.failed").
			Msg("account status unavailable")
		return
	}
	logger.Info().
		Str(xglog.FieldEvent, "status.fetched").
		Str("expires", status.Account.Expires).
		Int("max_lineups", status.Account.MaxLineups).
		Msg("account status")
}

// fetchLineups resolves the lineups to merge and fetches their details.
// wanted restricts the account lineups; empty selects all of them.
func fetchLineups(ctx context.Context, client Client, wanted []string) ([]epg.LineupInput, error) {
	logger := xglog.WithComponentFromContext(ctx, "jobs")

	list, err := client.Lineups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lineups: %w", err)
	}

	ids := SelectLineups(list, wanted)
	for _, id := range wanted {
		if !slices.Contains(ids, id) {
			logger.Warn().
				Str(xglog.FieldEvent, "lineup.not_on_account").
				Str(xglog.FieldLineupID, id).
				Msg("configured lineup is not on the account")
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoLineups
	}

	inputs := make([]epg.LineupInput, 0, len(ids))
	for _, id := range ids {
		detail, err := client.LineupDetail(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lineup %s: %w", id, err)
		}
		logger.Info().
			Str(xglog.FieldEvent, "lineup.fetched").
			Str(xglog.FieldLineupID, id).
			Int("stations", len(detail.Stations)).
			Int("map_entries", len(detail.Map)).
			Msg("lineup fetched")
		inputs = append(inputs, epg.LineupInput{ID: id, Map: detail.Map, Stations: detail.Stations})
	}
	return inputs, nil
}

// SelectLineups returns the account lineup IDs to merge, in account order.
// Deleted lineups are never selected.
func SelectLineups(account []sd.Lineup, wanted []string) []string {
	var out []string
	for _, l := range account {
		if l.IsDeleted || l.Lineup == "" || slices.Contains(out, l.Lineup) {
			continue
		}
		if len(wanted) > 0 && !slices.Contains(wanted, l.Lineup) {
			continue
		}
		out = append(out, l.Lineup)
	}
	return out
}

// ScheduleDates returns days consecutive local dates starting at now.
func ScheduleDates(now time.Time, days int) []string {
	out := make([]string, 0, max(days, 0))
	for i := range days {
		out = append(out, now.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return out
}

func exportMetrics(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger := xglog.WithComponentFromContext(ctx, "jobs")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "metrics.write_failed").
			Str(xglog.FieldPath, path).
			Msg("metrics textfile not written")
	}
}
