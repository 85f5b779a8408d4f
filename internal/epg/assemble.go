// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"context"

	xglog "github.com/ManuGH/sd2xmltv/internal/log"
)

// DefaultGeneratorName is written to generator-info-name when none is set.
const DefaultGeneratorName = "sd2xmltv"

// AssembleOptions configures Assemble.
type AssembleOptions struct {
	GeneratorName string
	Classifier    *Classifier
}

// AssembleStats summarizes one assembly.
type AssembleStats struct {
	Channels        int
	Programmes      int
	CatalogMisses   int
	UnknownStations int
}

// Assemble builds the guide document. Channels follow directory order;
// programmes are station-major in directory order, each airing emitted once
// per channel identity of its station. Schedules of stations outside the
// directory are skipped.
func Assemble(ctx context.Context, dir *StationDirectory, schedules []StationAirings, catalog *Catalog, opts AssembleOptions) (*TV, AssembleStats) {
	logger := xglog.WithComponentFromContext(ctx, "epg")
	var stats AssembleStats

	gen := opts.GeneratorName
	if gen == "" {
		gen = DefaultGeneratorName
	}
	cls := opts.Classifier
	if cls == nil {
		cls = NewClassifier(ClassifierOptions{})
	}

	tv := &TV{
		Generator:  gen,
		Channels:   make([]Channel, 0, dir.NumIdentities()),
		Programmes: []Programme{},
	}

	for _, e := range dir.Stations() {
		for _, ci := range e.Identities {
			tv.Channels = append(tv.Channels, buildChannel(e, ci))
		}
	}
	stats.Channels = len(tv.Channels)

	byStation := make(map[string][]Airing, len(schedules))
	for _, g := range schedules {
		if _, ok := dir.Lookup(g.StationID); !ok {
			stats.UnknownStations++
			logger.Warn().
				Str(xglog.FieldEvent, "schedule.unknown_station").
				Str(xglog.FieldStationID, g.StationID).
				Int("airings", len(g.Airings)).
				Msg("skipping schedule for station outside the directory")
			continue
		}
		byStation[g.StationID] = append(byStation[g.StationID], g.Airings...)
	}

	for _, e := range dir.Stations() {
		for _, a := range byStation[e.Station.StationID] {
			p, found := catalog.Lookup(a.ProgramID)
			if !found {
				stats.CatalogMisses++
				logger.Debug().
					Str(xglog.FieldEvent, "catalog.miss").
					Str(xglog.FieldProgramID, a.ProgramID).
					Msg("no metadata for program, using placeholder")
			}
			c := cls.Classify(a, p)
			for _, ci := range e.Identities {
				tv.Programmes = append(tv.Programmes, buildProgramme(a, ci.ID, c))
			}
		}
	}
	stats.Programmes = len(tv.Programmes)

	return tv, stats
}

func buildChannel(e *StationEntry, ci ChannelIdentity) Channel {
	callsign := e.Callsign()
	var names []string
	add := func(s string) {
		for _, n := range names {
			if n == s {
				return
			}
		}
		names = append(names, s)
	}
	if ci.Number != "" {
		add(ci.Number)
		add(ci.Number + " " + callsign)
	}
	add(callsign)

	ch := Channel{ID: ci.ID, DisplayName: names}
	if e.Icon != "" {
		ch.Icon = &Icon{Src: e.Icon}
	}
	return ch
}

func buildProgramme(a Airing, channelID string, c Classification) Programme {
	p := Programme{
		Start:    FormatTime(a.Start),
		Stop:     FormatTime(a.Stop),
		Channel:  channelID,
		Title:    Text{Value: c.Title},
		SeriesID: &SeriesID{System: SystemGracenote, Value: c.SeriesID},
	}
	if c.New {
		p.New = &Marker{}
	} else {
		p.PreviouslyShown = &PreviouslyShown{Start: c.PreviouslyShown}
	}
	if c.SubTitle != "" {
		p.SubTitle = &Text{Value: c.SubTitle}
	}
	if c.Desc != "" {
		p.Desc = &Text{Value: c.Desc}
	}

	p.EpisodeNums = append(p.EpisodeNums, EpisodeNum{System: SystemDDProgID, Value: c.ProgramID})
	if c.Numbering.XMLTVNS != "" {
		p.EpisodeNums = append(p.EpisodeNums, EpisodeNum{System: SystemXMLTVNS, Value: c.Numbering.XMLTVNS})
	}
	if c.Numbering.Onscreen != "" {
		p.EpisodeNums = append(p.EpisodeNums, EpisodeNum{System: SystemOnscreen, Value: c.Numbering.Onscreen})
	}
	if len(c.Categories) > 0 {
		p.Categories = append([]string(nil), c.Categories...)
	}
	return p
}
