// SPDX-License-Identifier: MIT

package epg

import sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"

// Catalog maps program IDs to metadata. Later records replace earlier ones.
type Catalog struct {
	programs map[string]sd.Program
}

// NewCatalog builds a catalog from any number of fetched batches.
func NewCatalog(batches ...[]sd.Program) *Catalog {
	c := &Catalog{programs: make(map[string]sd.Program)}
	for _, b := range batches {
		c.Add(b...)
	}
	return c
}

// Add inserts programs, overwriting existing IDs.
func (c *Catalog) Add(programs ...sd.Program) {
	for _, p := range programs {
		if p.ProgramID == "" {
			continue
		}
		c.programs[p.ProgramID] = p
	}
}

// Lookup returns the program for id. A miss returns the zero Program and false.
func (c *Catalog) Lookup(id string) (sd.Program, bool) {
	if c == nil {
		return sd.Program{}, false
	}
	p, ok := c.programs[id]
	return p, ok
}

// Len returns the number of distinct programs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.programs)
}
