// Package settings implements the Settings State: the
// cursor and toggle map that the engine loop and Pattern Store
// consult to know where edits/views currently point.
package settings

import "fmt"

// Key enumerates the closed set of setting keys.
type Key string

const (
	EMidiO   Key = "E_MIDI_O"
	EChannel Key = "E_CHANNEL"
	EPart    Key = "E_PART"
	EStep    Key = "E_STEP"
	EOMode   Key = "E_O_MODE"

	VMidiO   Key = "V_MIDI_O"
	VChannel Key = "V_CHANNEL"
	VPart    Key = "V_PART"
	VStep    Key = "V_STEP"
	VOMode   Key = "V_O_MODE"

	Record   Key = "RECORD"
	Copy     Key = "COPY"
	ViewShow Key = "VIEW_SHOW"
	PlayShow Key = "PLAY_SHOW"

	ViewFunction Key = "VIEW_FUNCTION"
	PlayFunction Key = "PLAY_FUNCTION"
	Presets      Key = "PRESETS"

	Tempo Key = "TEMPO"
)

// On/Off are the two values of a boolean toggle setting.
const (
	Off = 0
	On  = 1
)

// ViewFunction enumerated values.
const (
	ViewOnly = iota
	ViewRec
	ViewPlay
)

// PlayFunction enumerated values.
const (
	PlayNA = iota
	PlayPart
	PlayParts
	PlayAll
)

// Setting is a single cursor/toggle record: a name, the index of the
// currently selected value, and the enumeration of values it can take.
type Setting struct {
	Name   Key
	Ind    int
	Values []string
}

// Value returns the currently selected value string.
func (s Setting) Value() string {
	if s.Ind < 0 || s.Ind >= len(s.Values) {
		return ""
	}
	return s.Values[s.Ind]
}

// State holds every Setting keyed by its name, plus the two position
// cursors it's built from.
type State struct {
	settings map[Key]*Setting
}

func intRange(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%d", i+1)
	}
	return out
}

func toggleValues() []string { return []string{"OFF", "ON"} }

// Init seeds the Settings State from the number of physical MIDI in
// and out ports actually found (the original's init_settings(n_midis)
// rather than a fixed constant), plus fixed-size channel/part/step/mode axes.
func Init(nMidiIns, nMidiOuts, nChannels, nParts, nSteps int, outModeNames, inModeNames []string) *State {
	nMidi := nMidiIns
	if nMidiOuts > nMidi {
		nMidi = nMidiOuts
	}
	if nMidi < 1 {
		nMidi = 1
	}

	st := &State{settings: make(map[Key]*Setting)}

	for _, prefix := range []struct {
		midi, channel, part, step, mode Key
	}{{EMidiO, EChannel, EPart, EStep, EOMode}, {VMidiO, VChannel, VPart, VStep, VOMode}} {
		st.settings[prefix.midi] = &Setting{Name: prefix.midi, Values: intRange(nMidi)}
		st.settings[prefix.channel] = &Setting{Name: prefix.channel, Values: intRange(nChannels)}
		st.settings[prefix.part] = &Setting{Name: prefix.part, Values: intRange(nParts)}
		st.settings[prefix.step] = &Setting{Name: prefix.step, Values: intRange(nSteps)}
		st.settings[prefix.mode] = &Setting{Name: prefix.mode, Values: outModeNames}
	}

	st.settings[Record] = &Setting{Name: Record, Values: toggleValues()}
	st.settings[Copy] = &Setting{Name: Copy, Values: toggleValues()}
	st.settings[ViewShow] = &Setting{Name: ViewShow, Values: toggleValues()}
	st.settings[PlayShow] = &Setting{Name: PlayShow, Values: toggleValues()}
	st.settings[ViewFunction] = &Setting{Name: ViewFunction, Values: []string{"Only", "Rec", "Play"}}
	st.settings[PlayFunction] = &Setting{Name: PlayFunction, Values: []string{"NA", "Part", "Parts", "All"}}
	st.settings[Presets] = &Setting{Name: Presets, Values: []string{"off", "on", "load", "save", "edit"}}
	st.settings[Tempo] = &Setting{Name: Tempo, Values: []string{"120"}}

	_ = inModeNames // reserved for a future input-mode cursor axis
	return st
}

// Get returns the Setting for key.
func (s *State) Get(key Key) (*Setting, bool) {
	st, ok := s.settings[key]
	return st, ok
}

// SetInd applies a new index for key, validating bounds.
func (s *State) SetInd(key Key, ind int) error {
	st, ok := s.settings[key]
	if !ok {
		return fmt.Errorf("settings: unknown key %q", key)
	}
	if ind < 0 || ind >= len(st.Values) {
		return fmt.Errorf("settings: index %d out of range for %q", ind, key)
	}
	st.Ind = ind
	return nil
}

// IndexValue returns the value string at an arbitrary index of key's
// domain, independent of the setting's current cursor position.
func (s *State) IndexValue(key Key, ind int) (string, error) {
	st, ok := s.settings[key]
	if !ok {
		return "", fmt.Errorf("settings: unknown key %q", key)
	}
	if ind < 0 || ind >= len(st.Values) {
		return "", fmt.Errorf("settings: index %d out of range for %q", ind, key)
	}
	return st.Values[ind], nil
}

// ToggleOn reports whether a toggle setting currently reads ON.
func (s *State) ToggleOn(key Key) bool {
	st, ok := s.settings[key]
	return ok && st.Ind == On
}

// Cursor is a (midi, channel, part, step, mode) 0-based position: the
// shape of both the edit cursor (driving writes to the Pattern Store)
// and the view cursor.
type Cursor struct {
	Midi, Channel, Part, Step, Mode int
}

// EditCursor returns the current edit-cursor position.
func (s *State) EditCursor() Cursor {
	return Cursor{
		Midi:    s.settings[EMidiO].Ind,
		Channel: s.settings[EChannel].Ind,
		Part:    s.settings[EPart].Ind,
		Step:    s.settings[EStep].Ind,
		Mode:    s.settings[EOMode].Ind,
	}
}

// ViewCursor returns the current view-cursor position.
func (s *State) ViewCursor() Cursor {
	return Cursor{
		Midi:    s.settings[VMidiO].Ind,
		Channel: s.settings[VChannel].Ind,
		Part:    s.settings[VPart].Ind,
		Step:    s.settings[VStep].Ind,
		Mode:    s.settings[VOMode].Ind,
	}
}

// AdvanceEditStep moves E_STEP forward by one, wrapping to 0. Called
// by the Engine Loop after a Pattern Store Put while RECORD is on.
func (s *State) AdvanceEditStep() {
	st := s.settings[EStep]
	st.Ind = (st.Ind + 1) % len(st.Values)
}

// AdvanceViewStepIfFollowing moves V_STEP forward by one, wrapping to
// 0. It advances unconditionally: no view-follow-record setting is
// consulted.
func (s *State) AdvanceViewStepIfFollowing() {
	st := s.settings[VStep]
	st.Ind = (st.Ind + 1) % len(st.Values)
}
