// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
)

// ErrEmptyDirectory is returned when no lineup contributed a station.
var ErrEmptyDirectory = errors.New("station directory is empty")

// ChannelPolicy decides how a station mapped to several channel numbers
// across lineups becomes output channels.
type ChannelPolicy string

const (
	// PolicyExpand emits one channel per distinct (station, number) pair,
	// with ID "I{number}.{stationID}". Pairs keep first-seen order.
	PolicyExpand ChannelPolicy = "expand"
	// PolicyOverwrite emits one channel per station with ID "{stationID}";
	// the last-seen number and station record win.
	PolicyOverwrite ChannelPolicy = "overwrite"
)

// ParseChannelPolicy maps a config value to a policy.
func ParseChannelPolicy(s string) (ChannelPolicy, error) {
	switch p := ChannelPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyExpand, PolicyOverwrite:
		return p, nil
	case "":
		return PolicyExpand, nil
	default:
		return "", fmt.Errorf("unknown channel policy %q", s)
	}
}

// LineupInput is one fetched lineup detail.
type LineupInput struct {
	ID       string
	Map      []sd.ChannelMap
	Stations []sd.Station
}

// ChannelIdentity is one output <channel> of a station.
type ChannelIdentity struct {
	ID     string
	Number string
}

// StationEntry is a station together with its resolved output identities.
type StationEntry struct {
	Station    sd.Station
	Identities []ChannelIdentity
	// Icon is the icon src for the channel, empty when no logo resolved.
	Icon string
}

// Callsign returns the call sign, falling back to the station ID.
func (e *StationEntry) Callsign() string {
	if cs := strings.TrimSpace(e.Station.Callsign); cs != "" {
		return cs
	}
	return e.Station.StationID
}

// IconResolver turns a station logo URL into the icon src written to the
// guide. An empty result omits the icon.
type IconResolver interface {
	IconFor(ctx context.Context, stationID, logoURL string) string
}

// RemoteIcons references logos by their upstream URL.
type RemoteIcons struct{}

// IconFor returns logoURL unchanged.
func (RemoteIcons) IconFor(_ context.Context, _ string, logoURL string) string {
	return logoURL
}

// StationDirectory is the read-only set of stations of one run, in
// first-seen order across lineups.
type StationDirectory struct {
	policy  ChannelPolicy
	order   []string
	entries map[string]*StationEntry
}

// Policy returns the multiplicity policy the directory was built with.
func (d *StationDirectory) Policy() ChannelPolicy { return d.policy }

// Len returns the number of stations.
func (d *StationDirectory) Len() int { return len(d.order) }

// Stations returns the entries in directory order.
func (d *StationDirectory) Stations() []*StationEntry {
	out := make([]*StationEntry, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.entries[id])
	}
	return out
}

// StationIDs returns the station IDs in directory order.
func (d *StationDirectory) StationIDs() []string {
	return append([]string(nil), d.order...)
}

// Lookup returns the entry for a station ID.
func (d *StationDirectory) Lookup(stationID string) (*StationEntry, bool) {
	e, ok := d.entries[stationID]
	return e, ok
}

// Identities returns the output channel identities of a station.
func (d *StationDirectory) Identities(stationID string) []ChannelIdentity {
	if e, ok := d.entries[stationID]; ok {
		return e.Identities
	}
	return nil
}

// NumIdentities returns the total number of output channels.
func (d *StationDirectory) NumIdentities() int {
	n := 0
	for _, e := range d.entries {
		n += len(e.Identities)
	}
	return n
}

// BuildStationDirectory merges lineups into a directory. Map entries for
// stations that no lineup lists are ignored. Stations without any resolved
// number fall back to their normalized raw channel field, then to the
// station ID; the fallback number forms the channel ID like any other.
// icons may be nil, in which case no channel carries an icon.
func BuildStationDirectory(ctx context.Context, lineups []LineupInput, policy ChannelPolicy, icons IconResolver) (*StationDirectory, error) {
	if policy == "" {
		policy = PolicyExpand
	}
	if policy != PolicyExpand && policy != PolicyOverwrite {
		return nil, fmt.Errorf("unknown channel policy %q", policy)
	}
	logger := xglog.WithComponentFromContext(ctx, "epg")

	d := &StationDirectory{
		policy:  policy,
		entries: make(map[string]*StationEntry),
	}

	for _, lu := range lineups {
		for _, st := range lu.Stations {
			if st.StationID == "" {
				continue
			}
			if e, ok := d.entries[st.StationID]; ok {
				if policy == PolicyOverwrite {
					e.Station = st
				}
				continue
			}
			d.order = append(d.order, st.StationID)
			d.entries[st.StationID] = &StationEntry{Station: st}
		}

		for _, m := range lu.Map {
			e, ok := d.entries[m.StationID]
			if !ok {
				logger.Debug().
					Str(xglog.FieldEvent, "map.unknown_station").
					Str(xglog.FieldLineupID, lu.ID).
					Str(xglog.FieldStationID, m.StationID).
					Msg("ignoring map entry for unknown station")
				continue
			}
			number := DisplayNumber(m)
			if number == "" {
				continue
			}
			d.addNumber(e, number)
		}
	}

	if len(d.order) == 0 {
		return nil, ErrEmptyDirectory
	}

	for _, id := range d.order {
		e := d.entries[id]
		if len(e.Identities) == 0 {
			number := NormalizeChannelNumber(e.Station.Channel)
			if number == "" {
				number = id
			}
			d.addNumber(e, number)
		}
		if icons == nil {
			continue
		}
		if logoURL := e.Station.LogoURL(); logoURL != "" {
			e.Icon = icons.IconFor(ctx, id, logoURL)
		}
	}

	return d, nil
}

func (d *StationDirectory) addNumber(e *StationEntry, number string) {
	id := e.Station.StationID
	switch d.policy {
	case PolicyOverwrite:
		e.Identities = []ChannelIdentity{{ID: id, Number: number}}
	default:
		for _, ci := range e.Identities {
			if ci.Number == number {
				return
			}
		}
		e.Identities = append(e.Identities, ChannelIdentity{
			ID:     "I" + number + "." + id,
			Number: number,
		})
	}
}

var channelDelims = regexp.MustCompile(`[_\-.:\s]+`)

// DisplayNumber resolves the human channel number of a map entry:
// "{major}.{minor}" for ATSC entries, else the channel string with each
// delimiter run collapsed to a dot. Empty when neither is present.
func DisplayNumber(m sd.ChannelMap) string {
	if m.ATSCMajor != nil && m.ATSCMinor != nil {
		return fmt.Sprintf("%d.%d", *m.ATSCMajor, *m.ATSCMinor)
	}
	return NormalizeChannelNumber(m.Channel)
}

// NormalizeChannelNumber collapses delimiter runs (_ - . : whitespace) into
// single dots and trims leading and trailing dots.
func NormalizeChannelNumber(s string) string {
	s = channelDelims.ReplaceAllString(strings.TrimSpace(s), ".")
	return strings.Trim(s, ".")
}
