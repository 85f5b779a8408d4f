// SPDX-License-Identifier: MIT

package epg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// normalizeXML removes extra whitespace and normalizes formatting for comparison
func normalizeXML(xml string) string {
	lines := strings.Split(xml, "\n")
	var normalized []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}

	return strings.Join(normalized, "\n")
}

func encodeString(t *testing.T, tv *TV) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tv))
	return buf.String()
}

func TestAssemble_Golden(t *testing.T) {
	tv, stats, err := buildFixtureGuide()
	require.NoError(t, err)
	require.NoError(t, Check(tv))

	assert.Equal(t, AssembleStats{Channels: 2, Programmes: 3, CatalogMisses: 1}, stats)

	expected, err := os.ReadFile(filepath.Join("testdata", "guide.golden.xml"))
	require.NoError(t, err)

	if diff := cmp.Diff(normalizeXML(string(expected)), normalizeXML(encodeString(t, tv))); diff != "" {
		t.Errorf("generated XMLTV mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	first, _, err := buildFixtureGuide()
	require.NoError(t, err)
	second, _, err := buildFixtureGuide()
	require.NoError(t, err)

	assert.Equal(t, encodeString(t, first), encodeString(t, second))
}

func assembleOne(t *testing.T, lineups []LineupInput, blocks []sd.StationSchedule, programs []sd.Program) *TV {
	t.Helper()
	ctx := context.Background()
	dir, err := BuildStationDirectory(ctx, lineups, PolicyExpand, nil)
	require.NoError(t, err)
	groups, skipped := NormalizeSchedules(ctx, blocks)
	require.Zero(t, skipped)
	tv, _ := Assemble(ctx, dir, groups, NewCatalog(programs), AssembleOptions{
		Classifier: NewClassifier(ClassifierOptions{Now: fixedClock()}),
	})
	require.NoError(t, Check(tv))
	return tv
}

func episodeNum(p Programme, system string) string {
	for _, en := range p.EpisodeNums {
		if en.System == system {
			return en.Value
		}
	}
	return ""
}

func TestScenarioA_MetadataNumbering(t *testing.T) {
	lineups := []LineupInput{{
		ID:       "USA-OTA-1",
		Map:      []sd.ChannelMap{{StationID: "30001", ATSCMajor: intPtr(7), ATSCMinor: intPtr(1)}},
		Stations: []sd.Station{{StationID: "30001", Callsign: "WABC"}},
	}}
	blocks := []sd.StationSchedule{{StationID: "30001", Programs: []sd.Airing{
		{ProgramID: "EP012345670042", AirDateTime: "2026-10-16T01:00:00Z", Duration: 3600},
	}}}
	programs := []sd.Program{{
		ProgramID: "EP012345670042",
		Titles:    []sd.Title{{Title120: "Drama Hour"}},
		Metadata:  []map[string]sd.EpisodeMetadata{{"Gracenote": {Season: 2, Episode: 5}}},
	}}

	tv := assembleOne(t, lineups, blocks, programs)
	require.Len(t, tv.Channels, 1)
	assert.Equal(t, "7.1", tv.Channels[0].DisplayName[0])
	require.Len(t, tv.Programmes, 1)
	p := tv.Programmes[0]
	assert.Equal(t, "1.4.0", episodeNum(p, SystemXMLTVNS))
	assert.Equal(t, "S02E05", episodeNum(p, SystemOnscreen))
	assert.Equal(t, "EP012345670042", episodeNum(p, SystemDDProgID))
}

func TestScenarioB_OriginalAirDateToday(t *testing.T) {
	today := fixedClock()().Format("2006-01-02")
	lineups := []LineupInput{{Stations: []sd.Station{{StationID: "1", Callsign: "A"}}}}
	blocks := []sd.StationSchedule{{StationID: "1", Programs: []sd.Airing{
		{ProgramID: "EP000100010001", AirDateTime: "2026-10-17T12:00:00Z", Duration: 1800, New: false},
	}}}
	programs := []sd.Program{{
		ProgramID:       "EP000100010001",
		Titles:          []sd.Title{{Title120: "Talk"}},
		OriginalAirDate: today,
	}}

	tv := assembleOne(t, lineups, blocks, programs)
	require.Len(t, tv.Programmes, 1)
	assert.NotNil(t, tv.Programmes[0].New)
	assert.Nil(t, tv.Programmes[0].PreviouslyShown)
}

func TestScenarioC_SynthesizedSeriesCategory(t *testing.T) {
	lineups := []LineupInput{{Stations: []sd.Station{{StationID: "1", Callsign: "A"}}}}
	blocks := []sd.StationSchedule{{StationID: "1", Programs: []sd.Airing{
		{ProgramID: "SP000111220000", AirDateTime: "2026-10-17T12:00:00Z", Duration: 1800},
	}}}
	programs := []sd.Program{{
		ProgramID: "SP000111220000",
		Titles:    []sd.Title{{Title120: "Football"}},
	}}

	tv := assembleOne(t, lineups, blocks, programs)
	require.Len(t, tv.Programmes, 1)
	assert.Equal(t, []string{"Series"}, tv.Programmes[0].Categories)
}

func TestAssemble_MissingMetadata(t *testing.T) {
	lineups := []LineupInput{{Stations: []sd.Station{{StationID: "1"}}}}
	blocks := []sd.StationSchedule{{StationID: "1", Programs: []sd.Airing{
		{ProgramID: "MV999999990000", AirDateTime: "2026-10-17T12:00:00Z", Duration: 5400},
	}}}

	tv := assembleOne(t, lineups, blocks, nil)
	require.Len(t, tv.Programmes, 1)
	p := tv.Programmes[0]
	assert.Equal(t, PlaceholderTitle, p.Title.Value)
	assert.Nil(t, p.SubTitle)
	assert.Nil(t, p.Desc)
	assert.Empty(t, p.Categories, "movies get no synthesized Series tag")
	assert.Equal(t, "2025.1016.0", episodeNum(p, SystemXMLTVNS))
}

func TestAssemble_ExpandFansOutAirings(t *testing.T) {
	ctx := context.Background()
	lineups := []LineupInput{
		{ID: "L1", Map: []sd.ChannelMap{{StationID: "1", Channel: "5"}}, Stations: []sd.Station{{StationID: "1", Callsign: "A"}}},
		{ID: "L2", Map: []sd.ChannelMap{{StationID: "1", Channel: "105"}}, Stations: []sd.Station{{StationID: "1", Callsign: "A"}}},
	}
	blocks := []sd.StationSchedule{{StationID: "1", Programs: []sd.Airing{
		{ProgramID: "SH000000010000", AirDateTime: "2026-10-17T12:00:00Z", Duration: 60},
	}}}

	for _, tc := range []struct {
		policy   ChannelPolicy
		channels []string
	}{
		{PolicyExpand, []string{"I5.1", "I105.1"}},
		{PolicyOverwrite, []string{"1"}},
	} {
		t.Run(string(tc.policy), func(t *testing.T) {
			dir, err := BuildStationDirectory(ctx, lineups, tc.policy, nil)
			require.NoError(t, err)
			groups, _ := NormalizeSchedules(ctx, blocks)
			tv, stats := Assemble(ctx, dir, groups, NewCatalog(), AssembleOptions{})
			require.NoError(t, Check(tv))

			var got []string
			for _, ch := range tv.Channels {
				got = append(got, ch.ID)
			}
			assert.Equal(t, tc.channels, got)
			assert.Equal(t, len(tc.channels), stats.Programmes)
			for i, p := range tv.Programmes {
				assert.Equal(t, tc.channels[i], p.Channel)
			}
		})
	}
}

func TestAssemble_SkipsUnknownStations(t *testing.T) {
	ctx := context.Background()
	dir, err := BuildStationDirectory(ctx, []LineupInput{{Stations: []sd.Station{{StationID: "1"}}}}, PolicyExpand, nil)
	require.NoError(t, err)

	groups := []StationAirings{{StationID: "999", Airings: []Airing{{
		StationID: "999", ProgramID: "SH1", Start: time.Unix(0, 0), Stop: time.Unix(60, 0),
	}}}}
	tv, stats := Assemble(ctx, dir, groups, nil, AssembleOptions{GeneratorName: "custom"})
	assert.Equal(t, "custom", tv.Generator)
	assert.Empty(t, tv.Programmes)
	assert.Equal(t, 1, stats.UnknownStations)
}

func TestAssemble_DescriptionsToggle(t *testing.T) {
	ctx := context.Background()
	dir, err := BuildStationDirectory(ctx, fixtureLineups(), PolicyExpand, nil)
	require.NoError(t, err)
	groups, _ := NormalizeSchedules(ctx, fixtureSchedules())
	tv, _ := Assemble(ctx, dir, groups, NewCatalog(fixturePrograms()), AssembleOptions{
		Classifier: NewClassifier(ClassifierOptions{Now: fixedClock(), IncludeDescriptions: false}),
	})
	for _, p := range tv.Programmes {
		assert.Nil(t, p.Desc)
	}
	assert.Nil(t, tv.Channels[0].Icon, "nil resolver emits no icons")
}
