// Package notename converts between MIDI note numbers and note names
// such as "C4" or "Bb3", shared across the Mode Catalog and the
// command-line REPL.
package notename

import (
	"fmt"
)

var names = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var byName = map[string]int{
	"C": 0, "C#": 1, "Db": 1,
	"D": 2, "D#": 3, "Eb": 3,
	"E": 4,
	"F": 5, "F#": 6, "Gb": 6,
	"G": 7, "G#": 8, "Ab": 8,
	"A": 9, "A#": 10, "Bb": 10,
	"B": 11,
}

// FromMIDI converts a MIDI note number (0-127) to a name like "C4".
func FromMIDI(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", names[note%12], octave)
}

// ToMIDI converts a note name like "C4", "D#5", or "Bb3" to a MIDI
// note number. Returns an error if name does not parse as a note, so
// callers can use it to detect whether a Data column entry is a note
// name versus a plain numeric string.
func ToMIDI(name string) (uint8, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("notename: invalid note name %q", name)
	}

	var notePart string
	var octave int

	switch {
	case len(name) == 2:
		notePart = name[0:1]
		if _, err := fmt.Sscanf(name[1:2], "%d", &octave); err != nil {
			return 0, fmt.Errorf("notename: invalid note name %q", name)
		}
	case len(name) == 3:
		notePart = name[0:2]
		if _, err := fmt.Sscanf(name[2:3], "%d", &octave); err != nil {
			return 0, fmt.Errorf("notename: invalid note name %q", name)
		}
	default:
		return 0, fmt.Errorf("notename: invalid note name %q", name)
	}

	noteValue, ok := byName[notePart]
	if !ok {
		return 0, fmt.Errorf("notename: invalid note name %q", name)
	}

	midiNote := (octave+1)*12 + noteValue
	if midiNote < 0 || midiNote > 127 {
		return 0, fmt.Errorf("notename: note out of range %q", name)
	}
	return uint8(midiNote), nil
}
