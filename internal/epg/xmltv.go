// SPDX-License-Identifier: MIT

// Package epg merges Schedules Direct snapshots into an XMLTV guide.
package epg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// XMLTVTimeLayout is the wire format of programme start/stop attributes.
const XMLTVTimeLayout = "20060102150405 -0700"

// Episode numbering systems.
const (
	SystemXMLTVNS   = "xmltv_ns"
	SystemOnscreen  = "onscreen"
	SystemDDProgID  = "dd_progid"
	SystemGracenote = "gracenote"
)

// maxXMLSize bounds ReadXMLTV input. A 21 day guide for a few hundred
// stations stays well below this.
const maxXMLSize = 200 * 1024 * 1024

// TV is the XMLTV document root.
type TV struct {
	XMLName    xml.Name    `xml:"tv"`
	Generator  string      `xml:"generator-info-name,attr,omitempty"`
	Channels   []Channel   `xml:"channel"`
	Programmes []Programme `xml:"programme"`
}

// Channel is one output channel identity.
type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
	Icon        *Icon    `xml:"icon,omitempty"`
}

// Icon references a channel logo by path or URL.
type Icon struct {
	Src string `xml:"src,attr"`
}

// Marker is an empty flag element such as <new/>.
type Marker struct{}

// PreviouslyShown marks a repeat, optionally with the original air date.
type PreviouslyShown struct {
	Start string `xml:"start,attr,omitempty"`
}

// Text is a character data element with an optional language.
type Text struct {
	// Lang contains the language code (optional).
	Lang string `xml:"lang,attr,omitempty"`
	// Value is the character data of the element.
	Value string `xml:",chardata"`
}

// SeriesID groups episodes of one series.
type SeriesID struct {
	System string `xml:"system,attr"`
	Value  string `xml:",chardata"`
}

// EpisodeNum is one <episode-num> element.
type EpisodeNum struct {
	System string `xml:"system,attr"`
	Value  string `xml:",chardata"`
}

// Programme is one airing on one channel identity. Field order is the
// element order on the wire.
type Programme struct {
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Channel string `xml:"channel,attr"`

	New             *Marker          `xml:"new,omitempty"`
	PreviouslyShown *PreviouslyShown `xml:"previously-shown,omitempty"`
	Title           Text             `xml:"title"`
	SubTitle        *Text            `xml:"sub-title,omitempty"`
	Desc            *Text            `xml:"desc,omitempty"`
	SeriesID        *SeriesID        `xml:"series-id,omitempty"`
	EpisodeNums     []EpisodeNum     `xml:"episode-num"`
	Categories      []string         `xml:"category"`
}

// FormatTime renders t in the XMLTV wire format, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(XMLTVTimeLayout)
}

// Encode writes the XML declaration and the indented document to w.
func Encode(w io.Writer, tv *TV) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(tv); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}

// ReadXMLTV parses an XMLTV file with strict settings.
func ReadXMLTV(path string) (*TV, error) {
	path = filepath.Clean(path)
	// path originates from the operator (CLI argument or config)
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeXMLTV(f)
}

// DecodeXMLTV parses an XMLTV document from r. Entity expansion is
// disabled and input is capped at 200 MB.
func DecodeXMLTV(r io.Reader) (*TV, error) {
	var doc TV
	dec := xml.NewDecoder(io.LimitReader(r, maxXMLSize))
	dec.Strict = true

	// Disable entity expansion to prevent XXE attacks
	dec.Entity = make(map[string]string)

	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode xmltv: empty document")
		}
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}
	return &doc, nil
}
