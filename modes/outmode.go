// Package modes implements the Mode Catalog: the
// library of output/input "modes", event templates carrying value
// domains, default rows, and (for input modes) rule sets.
package modes

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/matykiewicz/seqtext/notename"
)

// Sentinel errors for the Mode Catalog.
var (
	ErrModeLocked     = errors.New("modes: mode is locked")
	ErrLabelNotFound  = errors.New("modes: label not found")
	ErrOffsetNotFound = errors.New("modes: offset not found")
)

// Indexes is an ordered sequence of integer rows, one per phase of a
// step's execution (e.g. row 0 = note-on, row 1 = note-off). Each row
// is an ordered sequence of per-label indices into the mode's value
// domains.
type Indexes [][]int

// Clone returns a deep copy of Indexes.
func (ix Indexes) Clone() Indexes {
	out := make(Indexes, len(ix))
	for i, row := range ix {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// nonMusicalLabel names columns excluded from the emitted byte
// message and from duration-computation copying.
func nonMusicalLabel(label string) bool {
	return label == "Note" || label == "Scale" || label == "Button"
}

// OutMode is a template for emitting MIDI events. Catalog templates
// are always locked; a mutable instance is produced by Clone(false)
// and travels through the Command Channel and Output Dispatcher
// schedules.
type OutMode struct {
	Name        string
	Labels      []string
	Data        [][]string // per-label value domain, parallel to Labels
	Offsets     []int      // per-label UI scroll offset
	Indexes     Indexes    // prototype/current rows
	VisInd      [2]int     // column selected by the on-screen waveform
	ButInd      [2]int     // column controlled by the keypad
	Instruments []string

	locked bool
	exe    int // row that will be emitted next
}

// NewOutMode constructs a locked catalog template.
func NewOutMode(name string, labels []string, data [][]string, indexes Indexes, visInd, butInd [2]int, instruments []string) *OutMode {
	offsets := make([]int, len(labels))
	for i := range offsets {
		offsets[i] = 1
	}
	return &OutMode{
		Name:        name,
		Labels:      labels,
		Data:        data,
		Offsets:     offsets,
		Indexes:     indexes,
		VisInd:      visInd,
		ButInd:      butInd,
		Instruments: instruments,
		locked:      true,
	}
}

// Clone deep-copies the mode. lock=false is how a mutable instance is
// produced from a catalog template.
func (m *OutMode) Clone(lock bool) *OutMode {
	data := make([][]string, len(m.Data))
	for i, col := range m.Data {
		data[i] = append([]string(nil), col...)
	}
	return &OutMode{
		Name:        m.Name,
		Labels:      append([]string(nil), m.Labels...),
		Data:        data,
		Offsets:     append([]int(nil), m.Offsets...),
		Indexes:     m.Indexes.Clone(),
		VisInd:      m.VisInd,
		ButInd:      m.ButInd,
		Instruments: append([]string(nil), m.Instruments...),
		locked:      lock,
		exe:         m.exe,
	}
}

// CloneWithIndexes clones the mode (unlocked) and overrides its rows
// wholesale, resetting exe to 0. This is how the Engine Loop
// reconstructs an OutMode instance from a Pattern Store slot.
func (m *OutMode) CloneWithIndexes(indexes Indexes) *OutMode {
	clone := m.Clone(false)
	clone.Indexes = indexes.Clone()
	clone.exe = 0
	return clone
}

// CloneWithLab clones the mode (unlocked), optionally repositions exe,
// then sets a single field's index on the resulting exe row.
func (m *OutMode) CloneWithLab(label string, subInd int, exe *int) (*OutMode, error) {
	idx, err := m.labelIndex(label)
	if err != nil {
		return nil, err
	}
	clone := m.Clone(false)
	if exe != nil {
		clone.exe = *exe
	}
	if clone.exe < 0 || clone.exe >= len(clone.Indexes) {
		return nil, fmt.Errorf("modes: exe %d out of range for %q", clone.exe, m.Name)
	}
	clone.Indexes[clone.exe][idx] = subInd
	return clone, nil
}

// nearestIndexForValue returns the index of domain's integer-valued
// entry closest to value, used wherever a raw byte/quant-count must be
// snapped onto a mode's (non-identity-indexed) value domain.
func nearestIndexForValue(domain []string, value int) int {
	best, bestDiff, found := 0, 0, false
	for i, s := range domain {
		v, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		diff := v - value
		if diff < 0 {
			diff = -diff
		}
		if !found || diff < bestDiff {
			best, bestDiff, found = i, diff, true
		}
	}
	return best
}

func (m *OutMode) labelIndex(label string) (int, error) {
	for i, l := range m.Labels {
		if l == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in mode %q", ErrLabelNotFound, label, m.Name)
}

// GetIndexes returns the current Indexes
// (CloneWithIndexes(I).GetIndexes() == I).
func (m *OutMode) GetIndexes() Indexes { return m.Indexes }

// Exe returns the row that will be emitted next.
func (m *OutMode) Exe() int { return m.exe }

// Locked reports whether this instance rejects mutation.
func (m *OutMode) Locked() bool { return m.locked }

// SetIndexesWithLabAndVal snaps an integer-valued column to its
// nearest domain entry for the current (or given) exe row.
func (m *OutMode) SetIndexesWithLabAndVal(label string, value int, exe *int) error {
	if m.locked {
		return fmt.Errorf("%w: %q", ErrModeLocked, m.Name)
	}
	idx, err := m.labelIndex(label)
	if err != nil {
		return err
	}
	row := m.exe
	if exe != nil {
		row = *exe
	}
	if row < 0 || row >= len(m.Indexes) {
		return fmt.Errorf("modes: exe %d out of range for %q", row, m.Name)
	}

	if !hasIntegerDomain(m.Data[idx]) {
		return fmt.Errorf("modes: label %q of mode %q has no integer domain", label, m.Name)
	}
	m.Indexes[row][idx] = nearestIndexForValue(m.Data[idx], value)
	return nil
}

func hasIntegerDomain(domain []string) bool {
	for _, s := range domain {
		if _, err := strconv.Atoi(s); err == nil {
			return true
		}
	}
	return false
}

// HasNext reports whether GetAsMessage has another row to emit.
func (m *OutMode) HasNext() bool {
	return m.exe < len(m.Indexes)
}

// GetAsMessage materializes the next row into a byte array and
// advances exe by exactly one. Before
// emission, if a "Note" column carries a note name, its MIDI number is
// snapped into the parallel "Key" column. Non-musical columns (Note,
// Scale, Button) are excluded from the emitted message.
func (m *OutMode) GetAsMessage() ([]int, error) {
	if !m.HasNext() {
		return nil, fmt.Errorf("modes: %q has no more rows", m.Name)
	}
	row := m.Indexes[m.exe]

	if noteIdx, err := m.labelIndex("Note"); err == nil {
		noteName := m.Data[noteIdx][row[noteIdx]]
		if midiNote, convErr := notename.ToMIDI(noteName); convErr == nil {
			if keyIdx, keyErr := m.labelIndex("Key"); keyErr == nil {
				_ = m.snapKeyColumn(keyIdx, row, int(midiNote))
			}
		}
	}

	message := make([]int, 0, len(m.Labels))
	for li, label := range m.Labels {
		if nonMusicalLabel(label) {
			continue
		}
		v, convErr := strconv.Atoi(m.Data[li][row[li]])
		if convErr != nil {
			return nil, fmt.Errorf("modes: label %q value %q is not numeric: %w", label, m.Data[li][row[li]], convErr)
		}
		message = append(message, v)
	}

	m.exe++
	return message, nil
}

func (m *OutMode) snapKeyColumn(keyIdx int, row []int, midiNote int) error {
	if !hasIntegerDomain(m.Data[keyIdx]) {
		return fmt.Errorf("modes: Key column of %q has no integer domain", m.Name)
	}
	row[keyIdx] = nearestIndexForValue(m.Data[keyIdx], midiNote)
	return nil
}

// ResetOffsets sets every label's scroll offset to off.
func (m *OutMode) ResetOffsets(off int) {
	for i := range m.Offsets {
		m.Offsets[i] = off
	}
}

// UpdateOffsetsWithLab pages a label's offset by `by`, wrapping to 1
// on overflow or underflow; 0 is reserved for the sentinel NA row.
func (m *OutMode) UpdateOffsetsWithLab(label string, by int) error {
	idx, err := m.labelIndex(label)
	if err != nil {
		return err
	}
	domainLen := len(m.Data[idx])
	next := m.Offsets[idx] + by
	if next < 1 || next >= domainLen {
		next = 1
	}
	m.Offsets[idx] = next
	return nil
}

// GetVisInd returns the column selected by the on-screen waveform.
func (m *OutMode) GetVisInd() [2]int { return m.VisInd }

// GetButLabel returns the keypad-controlled column's label and its
// current value string for the next-to-emit row.
func (m *OutMode) GetButLabel() (string, string, error) {
	idx := m.ButInd[0]
	if idx < 0 || idx >= len(m.Labels) {
		return "", "", fmt.Errorf("%w: button index %d", ErrOffsetNotFound, idx)
	}
	if m.exe >= len(m.Indexes) {
		return m.Labels[idx], "", nil
	}
	row := m.Indexes[m.exe]
	return m.Labels[idx], m.Data[idx][row[idx]], nil
}

// IsNA reports whether the next-to-emit row's button column currently
// reads the sentinel "NA" value; the Output Dispatcher drops such
// rows silently during scheduling.
func (m *OutMode) IsNA() bool {
	label, value, err := m.GetButLabel()
	if err != nil || label == "" {
		return false
	}
	return value == "NA"
}
