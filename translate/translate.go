// Package translate implements the Input Translator: the per-input-port
// rule engine that normalizes raw MIDI bytes and evaluates active In
// Modes against them.
package translate

import (
	"time"

	"github.com/matykiewicz/seqtext/modes"
)

// RawMessage is one raw channel message as reported by the I/O
// driver, plus its arrival timing.
type RawMessage struct {
	Status, Data1, Data2 byte
	TNow                 time.Time
	TDelta               time.Duration // driver-reported delta since the previous message; 0 for the first of a batch
}

// Normalize rewrites a raw 3-byte message into the translator's
// internal 5-element shape:
// [status & 0xF0, d1, d2, 0, (status & 0x0F) + 1].
func Normalize(raw RawMessage) [5]int {
	return [5]int{
		int(raw.Status & 0xF0),
		int(raw.Data1),
		int(raw.Data2),
		0,
		int(raw.Status&0x0F) + 1,
	}
}

// Yield is one synthesized (midi_id, channel, OutMode) triple produced
// when an in-mode finishes its rule list.
type Yield struct {
	MidiID  int
	Channel int
	Out     *modes.OutMode
}

// Translator holds one input port's active in-mode instances.
type Translator struct {
	midiID       int
	activeIn     []*modes.InMode
	allowedNames map[string]bool // nil means unfiltered

	catalog       *modes.Catalog
	quantInterval func() time.Duration
	maxLength     int

	editCursorMidi    func() int
	editCursorChannel func() int
}

// NewTranslator creates a Translator bound to one logical input port.
// quantInterval is read lazily (via a closure onto clock.Clock) so a
// live tempo change is reflected in the next duration computation.
// editCursorMidi/editCursorChannel resolve sentinel -1 midi_id/channel
// out rules to the engine's current edit cursor.
func NewTranslator(midiID int, catalog *modes.Catalog, quantInterval func() time.Duration, maxLength int, editCursorMidi, editCursorChannel func() int) *Translator {
	return &Translator{
		midiID:            midiID,
		catalog:           catalog,
		quantInterval:     quantInterval,
		maxLength:         maxLength,
		editCursorMidi:    editCursorMidi,
		editCursorChannel: editCursorChannel,
	}
}

// MidiID returns the logical input port this translator serves.
func (t *Translator) MidiID() int { return t.midiID }

// SetAllowedInModes installs the allowed-modes filter, mirroring the
// Output Dispatcher's own filter.
func (t *Translator) SetAllowedInModes(names []string) {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	t.allowedNames = m
}

// Attach instantiates a mutable clone of a catalog In Mode template
// and adds it to the active set, honoring the allowed-modes filter.
func (t *Translator) Attach(template *modes.InMode) {
	if t.allowedNames != nil && !t.allowedNames[template.Name] {
		return
	}
	t.activeIn = append(t.activeIn, template.NewIn())
}

// Active returns the current active in-mode instances (for inspection/testing).
func (t *Translator) Active() []*modes.InMode { return t.activeIn }

// TranslateInsToOut is one reactive pass over a batch of raw messages:
// every active in-mode sees every message, and any in-mode that
// completes its rule list yields a synthesized OutMode, is converted,
// and is replaced with a fresh clone of its own template so the same
// rule set can fire again.
func (t *Translator) TranslateInsToOut(raws []RawMessage) []Yield {
	var yields []Yield

	for _, raw := range raws {
		normalized := Normalize(raw)

		for i, in := range t.activeIn {
			result := in.SetWithMessageAndTime(normalized, raw.TNow, raw.TDelta)
			if result == 0 {
				continue
			}
			if in.HasNext() {
				continue
			}

			converted, err := in.ConvertWithOutModesAndTempo(t.catalog.LookupOut, t.quantInterval(), t.maxLength)
			if err != nil {
				continue
			}
			midiID, channel := converted.MidiID, converted.Channel
			if midiID < 0 {
				midiID = t.editCursorMidi()
			}
			if channel < 0 {
				channel = t.editCursorChannel()
			}
			yields = append(yields, Yield{MidiID: midiID, Channel: channel, Out: converted.Out})

			if template, ok := t.catalog.LookupIn(in.Name); ok {
				t.activeIn[i] = template.NewIn()
			}
		}
	}

	return yields
}
