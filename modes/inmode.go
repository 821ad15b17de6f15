package modes

import (
	"fmt"
	"math"
	"time"
)

// OutRule is one entry of an In Mode's out_rules: the target Out Mode
// name plus the midi_id/channel to synthesize on. Sentinel -1 values
// for MidiID/Channel mean "resolve to the current edit cursor"
//.
type OutRule struct {
	OutModeName string
	MidiID      int
	Channel     int
}

// InMode is a template for accepting incoming MIDI. Like OutMode,
// catalog templates are locked; NewIn produces the single mutable
// instance that accumulates matched messages.
type InMode struct {
	Name        string
	InRules     [][]Predicate
	OutRules    []OutRule
	Instruments []string

	data []([5]int) // rolling buffer of accepted, normalized messages
	t1   time.Time  // arrival of the first matched message
	t2   time.Time  // arrival of the last matched message
	exe  int        // progress counter into InRules

	locked bool
}

// NewInModeTemplate constructs a locked catalog template.
func NewInModeTemplate(name string, inRules [][]Predicate, outRules []OutRule, instruments []string) *InMode {
	return &InMode{
		Name:        name,
		InRules:     inRules,
		OutRules:    outRules,
		Instruments: instruments,
		locked:      true,
	}
}

// NewIn resets progress and the data buffer, and captures the current
// wall clock as t1. This is the only mutable instance, mirroring
// OutMode's Clone(false).
func (m *InMode) NewIn() *InMode {
	clone := &InMode{
		Name:        m.Name,
		InRules:     m.InRules,
		OutRules:    append([]OutRule(nil), m.OutRules...),
		Instruments: append([]string(nil), m.Instruments...),
		locked:      false,
	}
	clone.t1 = time.Now()
	return clone
}

// HasNext reports whether rule rows remain to be matched; it returns
// false once the in-mode has completed its rule list.
func (m *InMode) HasNext() bool {
	return m.exe < len(m.InRules)
}

// SetWithMessageAndTime evaluates the current InRules row against a
// normalized 5-byte message and timing info.
// tNow is the message's arrival wall clock; tDelta is the driver-
// reported delta since the previous message (0 for the first of a
// batch). It returns the row's combined result (-1 finalize, 1
// continue, 0 no match).
func (m *InMode) SetWithMessageAndTime(message [5]int, tNow time.Time, tDelta time.Duration) int {
	if m.exe == 0 {
		m.t1 = tNow
	} else if tDelta > 0 {
		m.t2 = m.t1.Add(tDelta)
	} else {
		m.t2 = tNow
	}

	var prev [5]int
	if len(m.data) > 0 {
		prev = m.data[len(m.data)-1]
	}

	result := EvaluateRow(m.InRules[m.exe], message, prev)
	if result == 0 {
		return 0
	}

	m.data = append(m.data, message)
	m.exe++

	if result == -1 {
		// Rotate the head of OutRules to the tail.
		if len(m.OutRules) > 1 {
			head := m.OutRules[0]
			m.OutRules = append(m.OutRules[1:], head)
		}
	}
	return result
}

// Duration returns the elapsed time between the first and last
// matched message.
func (m *InMode) Duration() time.Duration {
	if m.t1.IsZero() || m.t2.IsZero() {
		return 0
	}
	return m.t2.Sub(m.t1)
}

// lengthFromDuration converts an elapsed duration into a quant-count
// Length, clamped to the largest defined valid length.
func lengthFromDuration(d time.Duration, quantInterval time.Duration, maxLength int) int {
	if quantInterval <= 0 {
		return 1
	}
	length := int(math.Ceil(float64(d) / float64(quantInterval)))
	if length < 1 {
		length = 1
	}
	if length > maxLength {
		length = maxLength
	}
	return length
}

// ConvertResult is the (midi_id, channel, OutMode) triple yielded by
// ConvertWithOutModesAndTempo.
type ConvertResult struct {
	MidiID  int
	Channel int
	Out     *OutMode
}

// ConvertWithOutModesAndTempo builds the target OutMode once an
// in-mode has completed its rule list: clone the named catalog
// template, copy each accumulated message row exe onto the out mode's
// row exe (every integer-domain column except the non-musical Note,
// Scale and Button ones), then override row 0's Length
// column with the quant-rounded duration. Missing midi_id/channel
// (sentinel -1) are resolved by the caller against the current edit
// cursor.
func (m *InMode) ConvertWithOutModesAndTempo(lookup func(name string) (*OutMode, bool), quantInterval time.Duration, maxLength int) (*ConvertResult, error) {
	if len(m.OutRules) == 0 {
		return nil, fmt.Errorf("modes: in-mode %q has no out rules", m.Name)
	}
	rule := m.OutRules[0]
	template, ok := lookup(rule.OutModeName)
	if !ok {
		return nil, fmt.Errorf("modes: unknown out mode %q referenced by in-mode %q", rule.OutModeName, m.Name)
	}

	out := template.Clone(false)
	if len(out.Indexes) == 0 {
		return nil, fmt.Errorf("modes: out mode %q has no rows", template.Name)
	}

	for exe, row := range m.data {
		if exe >= len(out.Indexes) {
			break
		}
		for li, label := range out.Labels {
			if nonMusicalLabel(label) {
				continue
			}
			if li >= len(row) || !hasIntegerDomain(out.Data[li]) {
				continue
			}
			out.Indexes[exe][li] = nearestIndexForValue(out.Data[li], row[li])
		}
	}

	if lengthIdx, err := out.labelIndex("Length"); err == nil {
		length := lengthFromDuration(m.Duration(), quantInterval, maxLength)
		out.Indexes[0][lengthIdx] = nearestIndexForValue(out.Data[lengthIdx], length)
	}

	return &ConvertResult{MidiID: rule.MidiID, Channel: rule.Channel, Out: out}, nil
}
