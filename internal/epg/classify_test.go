// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"fmt"
	"testing"
	"time"

	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func airingAt(programID string, start time.Time) Airing {
	return Airing{StationID: "1", ProgramID: programID, Start: start, Stop: start.Add(time.Hour)}
}

func TestProgramIDTier_Property(t *testing.T) {
	for season := 1; season <= 40; season += 3 {
		for episode := 1; episode <= 300; episode += 37 {
			id := fmt.Sprintf("EP%04d%04d", season, episode)
			n, ok := ProgramIDTier(airingAt(id, time.Now()), sd.Program{})
			require.True(t, ok, id)
			assert.Equal(t, fmt.Sprintf("%d.%d.0", season-1, episode-1), n.XMLTVNS)
			assert.Equal(t, fmt.Sprintf("S%02dE%02d", season, episode), n.Onscreen)
		}
	}
}

func TestProgramIDTier_Rejects(t *testing.T) {
	for _, id := range []string{"SH000200050001", "EP0002", "EPabcd00050001", "EP000000050001", "EP000200000001"} {
		_, ok := ProgramIDTier(airingAt(id, time.Now()), sd.Program{})
		assert.False(t, ok, id)
	}
}

func TestMetadataTier(t *testing.T) {
	p := sd.Program{Metadata: []map[string]sd.EpisodeMetadata{
		{"Gracenote": {Season: 0, Episode: 3}},
		{"TheTVDB": {Season: 12, Episode: 101}},
	}}
	n, ok := MetadataTier(Airing{}, p)
	require.True(t, ok)
	assert.Equal(t, Numbering{XMLTVNS: "11.100.0", Onscreen: "S12E101"}, n)

	_, ok = MetadataTier(Airing{}, sd.Program{})
	assert.False(t, ok)
}

func TestShowPlaceholderTier(t *testing.T) {
	n, ok := ShowPlaceholderTier(Airing{ProgramID: "SH012345670000"}, sd.Program{})
	require.True(t, ok)
	assert.Equal(t, Numbering{XMLTVNS: ". ."}, n)

	_, ok = ShowPlaceholderTier(Airing{ProgramID: "MV012345670000"}, sd.Program{})
	assert.False(t, ok)
}

func TestAirDateTier_PureFunctionOfDate(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	ids := []string{"MV000000010000", "SP000000020000", "XX"}
	for h := 0; h < 24; h += 5 {
		for _, id := range ids {
			n, ok := AirDateTier(airingAt(id, day.Add(time.Duration(h)*time.Hour)), sd.Program{})
			require.True(t, ok)
			assert.Equal(t, Numbering{XMLTVNS: "2025.104.0", Onscreen: "S2026E0105"}, n)
		}
	}

	n, _ := AirDateTier(airingAt("MV1", time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)), sd.Program{})
	assert.Equal(t, "2025.1230.0", n.XMLTVNS)
}

func TestClassifier_TierChainOrder(t *testing.T) {
	c := NewClassifier(ClassifierOptions{Now: fixedClock()})
	start := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	// metadata beats the digits embedded in the ID
	p := sd.Program{Metadata: []map[string]sd.EpisodeMetadata{{"Gracenote": {Season: 9, Episode: 9}}}}
	got := c.Classify(airingAt("EP000100020001", start), p)
	assert.Equal(t, "S09E09", got.Numbering.Onscreen)

	got = c.Classify(airingAt("EP000100020001", start), sd.Program{})
	assert.Equal(t, "S01E02", got.Numbering.Onscreen)

	got = c.Classify(airingAt("SH000100020001", start), sd.Program{})
	assert.Equal(t, ". .", got.Numbering.XMLTVNS)
	assert.Empty(t, got.Numbering.Onscreen)

	got = c.Classify(airingAt("MV000100020001", start), sd.Program{})
	assert.Equal(t, "2025.1015.0", got.Numbering.XMLTVNS)
}

func TestClassifier_CustomTiers(t *testing.T) {
	fixed := func(Airing, sd.Program) (Numbering, bool) { return Numbering{XMLTVNS: "0.0.0"}, true }
	c := NewClassifier(ClassifierOptions{Tiers: []NumberingTier{fixed}})
	got := c.Classify(airingAt("EP000100020001", time.Now()), sd.Program{})
	assert.Equal(t, Numbering{XMLTVNS: "0.0.0"}, got.Numbering)
}

func TestClassifier_NewOrRepeat(t *testing.T) {
	c := NewClassifier(ClassifierOptions{Now: fixedClock()})
	start := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		airing Airing
		oad    string
		isNew  bool
		prev   string
	}{
		{"flag", Airing{ProgramID: "EP1", Start: start, New: true}, "2001-01-01", true, ""},
		{"live", Airing{ProgramID: "EP1", Start: start, LiveTapeDelay: "Live"}, "", true, ""},
		{"tape delay", Airing{ProgramID: "EP1", Start: start, LiveTapeDelay: "Tape"}, "2001-02-03", false, "20010203"},
		{"aired today", Airing{ProgramID: "EP1", Start: start}, "2026-10-17", true, ""},
		{"aired yesterday", Airing{ProgramID: "EP1", Start: start}, "2026-10-16", false, "20261016"},
		{"unknown date", Airing{ProgramID: "EP1", Start: start}, "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.airing, sd.Program{OriginalAirDate: tt.oad})
			assert.Equal(t, tt.isNew, got.New)
			assert.Equal(t, tt.prev, got.PreviouslyShown)
		})
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Drama", "Crime", "Series"},
		Categories("EP1", "Cops", []string{"Drama", "Crime", "Drama"}))
	assert.Equal(t, []string{"Series"}, Categories("SH1", "Weather", nil))
	assert.Equal(t, []string{"Series", "News"}, Categories("SH1", "Evening News", []string{"Series"}))
	assert.Equal(t, []string{"News"}, Categories("MV1", "The News Movie", []string{"News"}))
	assert.Empty(t, Categories("MV1", "Film", nil))
	assert.Equal(t, []string{"Series"}, Categories("EP1", "local news", nil), "News match is case-sensitive")
}

func TestTitleDescriptionAndSeriesKey(t *testing.T) {
	assert.Equal(t, PlaceholderTitle, Title(sd.Program{}))
	assert.Equal(t, PlaceholderTitle, Title(sd.Program{Titles: []sd.Title{{Title120: "  "}}}))
	assert.Equal(t, "Second", Title(sd.Program{Titles: []sd.Title{{}, {Title120: "Second"}}}))

	// decomposed "é" becomes the composed form
	assert.Equal(t, "Caf\u00e9", Title(sd.Program{Titles: []sd.Title{{Title120: " Cafe\u0301 "}}}))

	assert.Equal(t, "short", Description(sd.Program{Descriptions: sd.Descriptions{
		Description100: []sd.Description{{Description: "short"}},
	}}))
	assert.Equal(t, "long", Description(sd.Program{Descriptions: sd.Descriptions{
		Description1000: []sd.Description{{Description: "long"}},
		Description100:  []sd.Description{{Description: "short"}},
	}}))
	assert.Empty(t, Description(sd.Program{}))

	assert.Equal(t, "EP01234567", SeriesKey("EP012345670001"))
	assert.Equal(t, "SH1", SeriesKey("SH1"))
}

func TestClassifier_DescriptionToggle(t *testing.T) {
	p := sd.Program{Descriptions: sd.Descriptions{Description100: []sd.Description{{Description: "d"}}}}
	on := NewClassifier(ClassifierOptions{IncludeDescriptions: true}).Classify(Airing{ProgramID: "EP1"}, p)
	off := NewClassifier(ClassifierOptions{}).Classify(Airing{ProgramID: "EP1"}, p)
	assert.Equal(t, "d", on.Desc)
	assert.Empty(t, off.Desc)
}
