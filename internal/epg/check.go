// SPDX-License-Identifier: MIT

package epg

import (
	"errors"
	"fmt"
	"time"
)

// maxCheckErrors caps how many problems Check reports.
const maxCheckErrors = 20

// Check verifies the document invariants every consumer relies on:
// unique non-empty channel IDs, programme channel references that resolve,
// well-formed start/stop with stop >= start, and exactly one of
// new/previously-shown per programme.
func Check(tv *TV) error {
	if tv == nil {
		return errors.New("nil document")
	}
	var errs []error
	add := func(err error) {
		if len(errs) < maxCheckErrors {
			errs = append(errs, err)
		}
	}

	ids := make(map[string]struct{}, len(tv.Channels))
	for i, ch := range tv.Channels {
		if ch.ID == "" {
			add(fmt.Errorf("channel[%d]: empty id", i))
			continue
		}
		if _, dup := ids[ch.ID]; dup {
			add(fmt.Errorf("channel[%d]: duplicate id %q", i, ch.ID))
		}
		ids[ch.ID] = struct{}{}
		if len(ch.DisplayName) == 0 {
			add(fmt.Errorf("channel %q: no display-name", ch.ID))
		}
	}

	for i, p := range tv.Programmes {
		if _, ok := ids[p.Channel]; !ok {
			add(fmt.Errorf("programme[%d]: unknown channel %q", i, p.Channel))
		}
		start, err := time.Parse(XMLTVTimeLayout, p.Start)
		if err != nil {
			add(fmt.Errorf("programme[%d]: bad start %q: %w", i, p.Start, err))
			continue
		}
		stop, err := time.Parse(XMLTVTimeLayout, p.Stop)
		if err != nil {
			add(fmt.Errorf("programme[%d]: bad stop %q: %w", i, p.Stop, err))
			continue
		}
		if stop.Before(start) {
			add(fmt.Errorf("programme[%d]: stop %s before start %s", i, p.Stop, p.Start))
		}
		if (p.New == nil) == (p.PreviouslyShown == nil) {
			add(fmt.Errorf("programme[%d]: needs exactly one of new/previously-shown", i))
		}
		if p.Title.Value == "" {
			add(fmt.Errorf("programme[%d]: empty title", i))
		}
	}

	return errors.Join(errs...)
}
