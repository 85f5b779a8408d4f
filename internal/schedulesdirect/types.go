// SPDX-License-Identifier: MIT

package schedulesdirect

import "encoding/json"

// TokenResponse is the body of POST /token.
type TokenResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message,omitempty"`
	ServerID string `json:"serverID,omitempty"`
	Datetime string `json:"datetime,omitempty"`
	Token    string `json:"token"`
}

// Status is the body of GET /status, reduced to what we log.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Account struct {
		Expires    string `json:"expires"`
		MaxLineups int    `json:"maxLineups"`
	} `json:"account"`
	SystemStatus []struct {
		Date    string `json:"date"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"systemStatus"`
}

// Lineup is one entry of GET /lineups.
type Lineup struct {
	Lineup    string `json:"lineup"`
	Name      string `json:"name,omitempty"`
	Transport string `json:"transport,omitempty"`
	Location  string `json:"location,omitempty"`
	URI       string `json:"uri,omitempty"`
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

type lineupsResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message,omitempty"`
	Lineups []Lineup `json:"lineups"`
}

// ChannelMap ties a station to a channel number within one lineup.
// ATSC entries carry major/minor, cable and satellite entries a channel string.
type ChannelMap struct {
	StationID string `json:"stationID"`
	Channel   string `json:"channel,omitempty"`
	ATSCMajor *int   `json:"atscMajor,omitempty"`
	ATSCMinor *int   `json:"atscMinor,omitempty"`
	UHFVHF    *int   `json:"uhfVhf,omitempty"`
}

// Logo is a station logo reference.
type Logo struct {
	URL    string `json:"URL"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
	MD5    string `json:"md5,omitempty"`
	Source string `json:"source,omitempty"`
}

// Station is one broadcast station of a lineup.
type Station struct {
	StationID string `json:"stationID"`
	Callsign  string `json:"callsign,omitempty"`
	Name      string `json:"name,omitempty"`
	Affiliate string `json:"affiliate,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Logo      *Logo  `json:"logo,omitempty"`
	// StationLogo is the newer multi-variant logo list.
	StationLogo []Logo `json:"stationLogo,omitempty"`

	// Raw holds the untouched upstream object.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps a copy of the raw object next to the decoded fields.
func (s *Station) UnmarshalJSON(data []byte) error {
	type plain Station
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Station(p)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// LogoURL returns logo.URL, falling back to the first stationLogo entry.
func (s Station) LogoURL() string {
	if s.Logo != nil && s.Logo.URL != "" {
		return s.Logo.URL
	}
	for _, l := range s.StationLogo {
		if l.URL != "" {
			return l.URL
		}
	}
	return ""
}

// LineupDetail is the body of GET /lineups/{id}.
type LineupDetail struct {
	Map      []ChannelMap `json:"map"`
	Stations []Station    `json:"stations"`
}

// ScheduleRequest asks for the airings of one station on the given dates
// (YYYY-MM-DD).
type ScheduleRequest struct {
	StationID string   `json:"stationID"`
	Date      []string `json:"date"`
}

// Airing is one scheduled broadcast as returned by POST /schedules.
type Airing struct {
	ProgramID     string `json:"programID"`
	AirDateTime   string `json:"airDateTime"`
	Duration      int    `json:"duration"`
	MD5           string `json:"md5,omitempty"`
	New           bool   `json:"new,omitempty"`
	LiveTapeDelay string `json:"liveTapeDelay,omitempty"`
}

// StationSchedule is one schedule block. Upstream returns one block per
// station per requested date.
type StationSchedule struct {
	StationID string   `json:"stationID"`
	Programs  []Airing `json:"programs"`
	Metadata  struct {
		StartDate string `json:"startDate,omitempty"`
		MD5       string `json:"md5,omitempty"`
	} `json:"metadata"`
	Code     int    `json:"code,omitempty"`
	Response string `json:"response,omitempty"`
}

// Title is one entry of Program.Titles.
type Title struct {
	Title120 string `json:"title120"`
}

// Description is one localized description text.
type Description struct {
	DescriptionLanguage string `json:"descriptionLanguage,omitempty"`
	Description         string `json:"description"`
}

// Descriptions groups the long and short description variants.
type Descriptions struct {
	Description1000 []Description `json:"description1000,omitempty"`
	Description100  []Description `json:"description100,omitempty"`
}

// EpisodeMetadata is the season/episode pair published by one metadata source.
type EpisodeMetadata struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
}

// Program is one entry of POST /programs.
type Program struct {
	ProgramID       string       `json:"programID"`
	Titles          []Title      `json:"titles,omitempty"`
	EpisodeTitle150 string       `json:"episodeTitle150,omitempty"`
	Descriptions    Descriptions `json:"descriptions,omitempty"`
	OriginalAirDate string       `json:"originalAirDate,omitempty"`
	Genres          []string     `json:"genres,omitempty"`
	// Metadata is a list of single-key objects keyed by source, e.g.
	// [{"Gracenote":{"season":2,"episode":5}}].
	Metadata   []map[string]EpisodeMetadata `json:"metadata,omitempty"`
	EntityType string                       `json:"entityType,omitempty"`
	ShowType   string                       `json:"showType,omitempty"`
	MD5        string                       `json:"md5,omitempty"`

	// Code is non-zero when upstream could not serve the program (e.g. queued).
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type apiErrorBody struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Response string `json:"response"`
}
