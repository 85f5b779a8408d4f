// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"time"

	"github.com/ManuGH/sd2xmltv/internal/epg"
	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
)

// Client is the Schedules Direct surface a refresh needs.
type Client interface {
	Authenticate(ctx context.Context, username, passwordHash string) error
	Status(ctx context.Context) (*sd.Status, error)
	Lineups(ctx context.Context) ([]sd.Lineup, error)
	LineupDetail(ctx context.Context, lineupID string) (*sd.LineupDetail, error)
	Schedules(ctx context.Context, reqs []sd.ScheduleRequest) ([]sd.StationSchedule, error)
	Programs(ctx context.Context, ids []string) ([]sd.Program, error)
}

// Notifier tells a media server that a new guide is available.
type Notifier interface {
	Notify(ctx context.Context) error
}

// Deps holds the collaborators of a refresh. Nil Icons means upstream logo
// URLs are referenced directly, nil Notifier skips notification and nil
// Clock uses time.Now.
type Deps struct {
	Client   Client
	Icons    epg.IconResolver
	Notifier Notifier
	Clock    func() time.Time
}

// Status summarises one refresh run.
type Status struct {
	JobID      string        `json:"job_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	OutputPath string        `json:"output_path"`

	Lineups    int `json:"lineups"`
	Stations   int `json:"stations"`
	Channels   int `json:"channels"`
	Programmes int `json:"programmes"`
	Programs   int `json:"programs"`

	AiringsSkipped  int `json:"airings_skipped"`
	CatalogMisses   int `json:"catalog_misses"`
	UnknownStations int `json:"unknown_stations"`
	ChunksFailed    int `json:"chunks_failed"`

	Notified bool `json:"notified"`
}
