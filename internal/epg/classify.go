// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
	unorm "golang.org/x/text/unicode/norm"
)

// PlaceholderTitle is used when a program has no title or no metadata.
const PlaceholderTitle = "To Be Announced"

// Program ID type prefixes.
const (
	PrefixMovie   = "MV"
	PrefixEpisode = "EP"
	PrefixShow    = "SH"
)

// Category tags added on top of upstream genres.
const (
	CategorySeries = "Series"
	CategoryNews   = "News"
)

const seriesIDLen = 10

// Numbering is the season/episode output of a tier. Onscreen may be empty.
type Numbering struct {
	XMLTVNS  string
	Onscreen string
}

// NumberingTier derives numbering for an airing. ok=false passes the
// decision to the next tier.
type NumberingTier func(a Airing, p sd.Program) (n Numbering, ok bool)

// DefaultTiers is the production numbering chain.
func DefaultTiers() []NumberingTier {
	return []NumberingTier{MetadataTier, ProgramIDTier, ShowPlaceholderTier, AirDateTier}
}

func seasonEpisode(season, episode int) Numbering {
	return Numbering{
		XMLTVNS:  fmt.Sprintf("%d.%d.0", season-1, episode-1),
		Onscreen: fmt.Sprintf("S%02dE%02d", season, episode),
	}
}

// MetadataTier uses the first metadata block carrying season and episode
// numbers above zero. Sources inside one block are tried in name order.
func MetadataTier(_ Airing, p sd.Program) (Numbering, bool) {
	for _, block := range p.Metadata {
		for _, source := range slices.Sorted(maps.Keys(block)) {
			md := block[source]
			if md.Season > 0 && md.Episode > 0 {
				return seasonEpisode(md.Season, md.Episode), true
			}
		}
	}
	return Numbering{}, false
}

// ProgramIDTier reads the season from characters 2-5 and the episode from
// characters 6-9 of an EP program ID.
func ProgramIDTier(a Airing, _ sd.Program) (Numbering, bool) {
	id := a.ProgramID
	if !strings.HasPrefix(id, PrefixEpisode) || len(id) < 10 {
		return Numbering{}, false
	}
	season, err := strconv.Atoi(id[2:6])
	if err != nil || season <= 0 {
		return Numbering{}, false
	}
	episode, err := strconv.Atoi(id[6:10])
	if err != nil || episode <= 0 {
		return Numbering{}, false
	}
	return seasonEpisode(season, episode), true
}

// ShowPlaceholderTier marks SH programs as series content without a
// meaningful season or episode.
func ShowPlaceholderTier(a Airing, _ sd.Program) (Numbering, bool) {
	if strings.HasPrefix(a.ProgramID, PrefixShow) {
		return Numbering{XMLTVNS: ". ."}, true
	}
	return Numbering{}, false
}

// AirDateTier is a synthetic identity, not a real episode number: the UTC
// calendar date of the airing becomes season year-1 and episode
// month*100+day-1, so every airing on the same date numbers the same.
func AirDateTier(a Airing, _ sd.Program) (Numbering, bool) {
	return airDateNumbering(a.Start.UTC()), true
}

func airDateNumbering(d time.Time) Numbering {
	year, month, day := d.Date()
	mmdd := int(month)*100 + day
	return Numbering{
		XMLTVNS:  fmt.Sprintf("%d.%d.0", year-1, mmdd-1),
		Onscreen: fmt.Sprintf("S%dE%04d", year, mmdd),
	}
}

// Classification is the output-ready view of one airing.
type Classification struct {
	Title     string
	SubTitle  string
	Desc      string
	SeriesID  string
	ProgramID string
	Numbering Numbering
	// New is true for a first run; otherwise PreviouslyShown holds the
	// original air date as YYYYMMDD, or "" when unknown.
	New             bool
	PreviouslyShown string
	Categories      []string
}

// ClassifierOptions configures a Classifier. Zero values use defaults.
type ClassifierOptions struct {
	// Now supplies the current local time for the original-air-date check.
	Now                 func() time.Time
	IncludeDescriptions bool
	Tiers               []NumberingTier
}

// Classifier resolves titles, numbering, new/repeat state and categories.
type Classifier struct {
	now          func() time.Time
	descriptions bool
	tiers        []NumberingTier
}

// NewClassifier creates a classifier.
func NewClassifier(opts ClassifierOptions) *Classifier {
	c := &Classifier{
		now:          opts.Now,
		descriptions: opts.IncludeDescriptions,
		tiers:        opts.Tiers,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if len(c.tiers) == 0 {
		c.tiers = DefaultTiers()
	}
	return c
}

// Classify resolves one airing against its program. A zero Program (catalog
// miss) yields the placeholder title and ID-derived numbering.
func (c *Classifier) Classify(a Airing, p sd.Program) Classification {
	title := Title(p)
	out := Classification{
		Title:     title,
		SubTitle:  normText(p.EpisodeTitle150),
		SeriesID:  SeriesKey(a.ProgramID),
		ProgramID: a.ProgramID,
		Numbering: c.numbering(a, p),
	}
	if c.descriptions {
		out.Desc = Description(p)
	}

	if c.isNew(a, p) {
		out.New = true
	} else {
		out.PreviouslyShown = strings.ReplaceAll(strings.TrimSpace(p.OriginalAirDate), "-", "")
	}
	out.Categories = Categories(a.ProgramID, title, p.Genres)
	return out
}

func (c *Classifier) numbering(a Airing, p sd.Program) Numbering {
	for _, tier := range c.tiers {
		if n, ok := tier(a, p); ok {
			return n
		}
	}
	return Numbering{}
}

func (c *Classifier) isNew(a Airing, p sd.Program) bool {
	if a.New || a.LiveTapeDelay == "Live" {
		return true
	}
	oad := strings.TrimSpace(p.OriginalAirDate)
	return oad != "" && oad == c.now().Format("2006-01-02")
}

// Title returns the first non-empty title120, else PlaceholderTitle.
func Title(p sd.Program) string {
	for _, t := range p.Titles {
		if s := normText(t.Title120); s != "" {
			return s
		}
	}
	return PlaceholderTitle
}

// Description returns description1000, falling back to description100.
func Description(p sd.Program) string {
	for _, set := range [][]sd.Description{p.Descriptions.Description1000, p.Descriptions.Description100} {
		for _, d := range set {
			if s := normText(d.Description); s != "" {
				return s
			}
		}
	}
	return ""
}

// SeriesKey is the type+series prefix of a program ID (first 10 characters).
func SeriesKey(programID string) string {
	if len(programID) <= seriesIDLen {
		return programID
	}
	return programID[:seriesIDLen]
}

// Categories returns genres in source order without duplicates, adding
// "Series" for non-movie programs and "News" for titles containing "News".
// The News check is a case-sensitive substring match.
func Categories(programID, title string, genres []string) []string {
	out := make([]string, 0, len(genres)+2)
	seen := make(map[string]struct{}, len(genres)+2)
	add := func(g string) {
		g = normText(g)
		if g == "" {
			return
		}
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	for _, g := range genres {
		add(g)
	}
	if !strings.HasPrefix(programID, PrefixMovie) {
		add(CategorySeries)
	}
	if strings.Contains(title, CategoryNews) {
		add(CategoryNews)
	}
	return out
}

func normText(s string) string {
	return unorm.NFC.String(strings.TrimSpace(s))
}
