package modes

import (
	"fmt"
	"strconv"

	"github.com/matykiewicz/seqtext/notename"
)

// ValidLengths mirrors the original's ValidLengths: the set of
// quant-denominated note lengths the catalog's default Length column
// offers, also used to clamp a computed in-mode duration.
var ValidLengths = []int{1, 2, 3, 4, 6, 8, 12, 16, 24, 32}

// Scales supplements data model with the note/scale columns
// recovered from original_source/midi_seq_txt/functionalities.py's
// create_notes: the Note column is constrained by a Scale selector
// instead of exposing every chromatic note flatly.
var Scales = map[string][]int{
	"Chromatic": {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"Major":     {0, 2, 4, 5, 7, 9, 11},
	"Minor":     {0, 2, 3, 5, 7, 8, 10},
}

// Catalog holds every registered out/in mode template. Templates are
// always locked; callers obtain mutable instances via Clone(false) /
// NewIn.
type Catalog struct {
	outModes map[string]*OutMode
	inModes  map[string]*InMode
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		outModes: make(map[string]*OutMode),
		inModes:  make(map[string]*InMode),
	}
}

// RegisterOut adds a locked Out Mode template to the catalog.
func (c *Catalog) RegisterOut(m *OutMode) {
	c.outModes[m.Name] = m
}

// RegisterIn adds a locked In Mode template to the catalog.
func (c *Catalog) RegisterIn(m *InMode) {
	c.inModes[m.Name] = m
}

// LookupOut finds a registered Out Mode template by name.
func (c *Catalog) LookupOut(name string) (*OutMode, bool) {
	m, ok := c.outModes[name]
	return m, ok
}

// LookupIn finds a registered In Mode template by name.
func (c *Catalog) LookupIn(name string) (*InMode, bool) {
	m, ok := c.inModes[name]
	return m, ok
}

// OutNames returns every registered Out Mode name.
func (c *Catalog) OutNames() []string {
	names := make([]string, 0, len(c.outModes))
	for name := range c.outModes {
		names = append(names, name)
	}
	return names
}

// InNames returns every registered In Mode name.
func (c *Catalog) InNames() []string {
	names := make([]string, 0, len(c.inModes))
	for name := range c.inModes {
		names = append(names, name)
	}
	return names
}

// OutModesForInstrument returns every Out Mode template advertising
// the given instrument tag, the authority consulted by the Mapping
// Registry's ToOutDict.
func (c *Catalog) OutModesForInstrument(instrument string) []*OutMode {
	var out []*OutMode
	for _, m := range c.outModes {
		for _, tag := range m.Instruments {
			if tag == instrument {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// lengthDomain renders ValidLengths as the string domain of a Length column.
func lengthDomain() []string {
	d := make([]string, len(ValidLengths))
	for i, v := range ValidLengths {
		d[i] = strconv.Itoa(v)
	}
	return d
}

// noteDomainForScale renders every note name in octaves 0-8 that
// belongs to the given scale's semitone set, plus a leading "NA"
// sentinel (offset 0, per reserved-NA-row convention).
func noteDomainForScale(scale string) []string {
	semitones := Scales[scale]
	inScale := make(map[int]bool, len(semitones))
	for _, s := range semitones {
		inScale[s] = true
	}

	domain := []string{"NA"}
	for note := uint8(12); note < 120; note++ { // C0 (12) through B8 (119)
		if inScale[int(note)%12] {
			domain = append(domain, notename.FromMIDI(note))
		}
	}
	return domain
}

// DefaultOutMode builds the default note on/off out mode: Code, Key,
// Velocity, Length columns plus Note/Scale paging columns. name
// becomes the catalog key; instruments gates which mapping slots may
// emit it.
func DefaultOutMode(name, scale string, instruments []string) *OutMode {
	codeDomain := []string{"128", "144"} // note-off, note-on
	byteDomain := func() []string {
		d := make([]string, 128)
		for i := range d {
			d[i] = strconv.Itoa(i)
		}
		return d
	}()

	labels := []string{"Code", "Key", "Velocity", "Length", "Note", "Scale"}
	data := [][]string{
		codeDomain,
		byteDomain,
		byteDomain,
		lengthDomain(),
		noteDomainForScale(scale),
		{scale},
	}

	indexes := Indexes{
		{1, 60, 100, indexOf(lengthDomain(), "4"), 0, 0}, // note-on
		{0, 60, 0, 0, 0, 0},                              // note-off
	}

	return NewOutMode(name, labels, data, indexes, [2]int{1, 0}, [2]int{1, 0}, instruments)
}

// DefaultInMode builds the default note-on/note-off listener that
// feeds DefaultOutMode through ConvertWithOutModesAndTempo.
func DefaultInMode(name, targetOutMode string, instruments []string) *InMode {
	return NewInModeTemplate(
		name,
		[][]Predicate{
			{Equal(0x90), Wildcard{}, Wildcard{}},
			{Equal(0x80), MatchPrevious{}, Wildcard{}},
		},
		[]OutRule{
			{OutModeName: targetOutMode, MidiID: -1, Channel: -1},
			{OutModeName: "", MidiID: -1, Channel: -1},
		},
		instruments,
	)
}

func indexOf(domain []string, value string) int {
	for i, v := range domain {
		if v == value {
			return i
		}
	}
	return 0
}

// DefaultCatalog seeds a catalog with one GeVo1Out/GeVo1In pair
// (main.go's writeDefaultPresets looks both up by name),
// tagged with the "Generic" instrument so a freshly-generated default
// mapping can drive them immediately.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.RegisterOut(DefaultOutMode("GeVo1Out", "Chromatic", []string{"Generic"}))
	c.RegisterIn(DefaultInMode("GeVo1In", "GeVo1Out", []string{"Generic"}))
	return c
}

// Error helper used by callers that need a descriptive "no such mode" error.
func errUnknownOutMode(name string) error {
	return fmt.Errorf("%w: out mode %q", ErrLabelNotFound, name)
}
