// SPDX-License-Identifier: MIT

package epg

import (
	"context"
	"fmt"
	"strings"
	"time"

	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
)

// AirDateTimeLayout is the upstream airing timestamp format. time.Parse also
// accepts a fractional second after the seconds field.
const AirDateTimeLayout = "2006-01-02T15:04:05Z"

// MaxAiringDuration bounds a single airing. Longer durations are treated as
// corrupt upstream data.
const MaxAiringDuration = 7 * 24 * time.Hour

// Airing is one normalized broadcast of a program on a station.
type Airing struct {
	StationID     string
	ProgramID     string
	Start         time.Time
	Stop          time.Time
	New           bool
	LiveTapeDelay string
}

// StationAirings holds the airings of one station in upstream order.
type StationAirings struct {
	StationID string
	Airings   []Airing
}

// ParseAirDateTime parses an upstream airing timestamp into a UTC instant.
func ParseAirDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(AirDateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse airDateTime %q: %w", s, err)
	}
	return t.UTC(), nil
}

// AiringDuration converts an upstream duration in seconds. Negative values
// clamp to zero; values above MaxAiringDuration are rejected.
func AiringDuration(seconds int) (time.Duration, error) {
	if seconds <= 0 {
		return 0, nil
	}
	if int64(seconds) > int64(MaxAiringDuration/time.Second) {
		return 0, fmt.Errorf("duration %ds exceeds %s", seconds, MaxAiringDuration)
	}
	return time.Duration(seconds) * time.Second, nil
}

// NormalizeSchedules groups schedule blocks by station in first-seen order
// and converts their airings. Airings with an unparseable start or an
// implausible duration are skipped and counted; nothing is sorted or
// deduplicated.
func NormalizeSchedules(ctx context.Context, blocks []sd.StationSchedule) (groups []StationAirings, skipped int) {
	logger := xglog.WithComponentFromContext(ctx, "epg")
	index := make(map[string]int)

	for _, b := range blocks {
		if b.StationID == "" {
			continue
		}
		gi, ok := index[b.StationID]
		if !ok {
			gi = len(groups)
			index[b.StationID] = gi
			groups = append(groups, StationAirings{StationID: b.StationID})
		}

		for _, raw := range b.Programs {
			start, err := ParseAirDateTime(raw.AirDateTime)
			if err != nil {
				skipped++
				logger.Warn().
					Err(err).
					Str(xglog.FieldEvent, "airing.skipped").
					Str(xglog.FieldStationID, b.StationID).
					Str(xglog.FieldProgramID, raw.ProgramID).
					Msg("skipping airing with unparseable start")
				continue
			}
			dur, err := AiringDuration(raw.Duration)
			if err != nil {
				skipped++
				logger.Warn().
					Err(err).
					Str(xglog.FieldEvent, "airing.skipped").
					Str(xglog.FieldStationID, b.StationID).
					Str(xglog.FieldProgramID, raw.ProgramID).
					Msg("skipping airing with implausible duration")
				continue
			}
			groups[gi].Airings = append(groups[gi].Airings, Airing{
				StationID:     b.StationID,
				ProgramID:     raw.ProgramID,
				Start:         start,
				Stop:          start.Add(dur),
				New:           raw.New,
				LiveTapeDelay: raw.LiveTapeDelay,
			})
		}
	}
	return groups, skipped
}

// ProgramIDs returns the distinct program IDs referenced by groups, in
// first-seen order.
func ProgramIDs(groups []StationAirings) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, a := range g.Airings {
			if a.ProgramID == "" {
				continue
			}
			if _, ok := seen[a.ProgramID]; ok {
				continue
			}
			seen[a.ProgramID] = struct{}{}
			out = append(out, a.ProgramID)
		}
	}
	return out
}
