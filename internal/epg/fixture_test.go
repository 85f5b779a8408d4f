// SPDX-License-Identifier: MIT

package epg

import (
	"context"
	"time"

	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
)

func intPtr(i int) *int { return &i }

// fixedClock returns a clock pinned to 2026-10-17 09:00 local time.
func fixedClock() func() time.Time {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)
	return func() time.Time { return now }
}

func fixtureLineups() []LineupInput {
	return []LineupInput{{
		ID: "USA-OTA-10001",
		Map: []sd.ChannelMap{
			{StationID: "20001", ATSCMajor: intPtr(4), ATSCMinor: intPtr(1)},
			{StationID: "20002", Channel: "11-2"},
		},
		Stations: []sd.Station{
			{StationID: "20001", Callsign: "WNBC", Logo: &sd.Logo{URL: "https://logos.example/wnbc_h3.png"}},
			{StationID: "20002"},
		},
	}}
}

func fixtureSchedules() []sd.StationSchedule {
	return []sd.StationSchedule{
		{StationID: "20001", Programs: []sd.Airing{
			{ProgramID: "EP000200050001", AirDateTime: "2026-10-16T18:00:00Z", Duration: 1800, New: true},
		}},
		{StationID: "20002", Programs: []sd.Airing{
			{ProgramID: "MV001122330000", AirDateTime: "2026-10-16T20:00:00.000Z", Duration: 7200},
			{ProgramID: "SH009988770000", AirDateTime: "2026-10-16T22:00:00Z", Duration: 1800},
		}},
	}
}

func fixturePrograms() []sd.Program {
	return []sd.Program{
		{
			ProgramID:       "EP000200050001",
			Titles:          []sd.Title{{Title120: "Evening Show"}},
			EpisodeTitle150: "Pilot",
			Descriptions: sd.Descriptions{
				Description1000: []sd.Description{{Description: "A & B meet."}},
			},
			OriginalAirDate: "2026-10-16",
			Genres:          []string{"Comedy", "Comedy"},
		},
		{
			ProgramID:       "MV001122330000",
			Titles:          []sd.Title{{Title120: "Big Movie"}},
			OriginalAirDate: "1999-05-01",
			Genres:          []string{"Movie", "Drama"},
		},
	}
}

// buildFixtureGuide runs the whole merge over the fixture snapshot.
func buildFixtureGuide() (*TV, AssembleStats, error) {
	ctx := context.Background()
	dir, err := BuildStationDirectory(ctx, fixtureLineups(), PolicyExpand, RemoteIcons{})
	if err != nil {
		return nil, AssembleStats{}, err
	}
	groups, _ := NormalizeSchedules(ctx, fixtureSchedules())
	catalog := NewCatalog(fixturePrograms())
	tv, stats := Assemble(ctx, dir, groups, catalog, AssembleOptions{
		Classifier: NewClassifier(ClassifierOptions{Now: fixedClock(), IncludeDescriptions: true}),
	})
	return tv, stats, nil
}
