package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matykiewicz/seqtext/settings"
)

// handleToggle implements on/off settings (RECORD, COPY, VIEW_SHOW,
// PLAY_SHOW). With no argument it flips the current value.
func (h *Handler) handleToggle(key settings.Key, parts []string) error {
	if len(parts) == 0 {
		next := settings.On
		if h.state.ToggleOn(key) {
			next = settings.Off
		}
		if err := h.sendSettingInd(key, next); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", key, onOffString(next))
		return nil
	}
	if len(parts) != 1 {
		return fmt.Errorf("usage: %s [on|off]", strings.ToLower(string(key)))
	}
	var next int
	switch strings.ToLower(parts[0]) {
	case "on":
		next = settings.On
	case "off":
		next = settings.Off
	default:
		return fmt.Errorf("usage: %s [on|off]", strings.ToLower(string(key)))
	}
	if err := h.sendSettingInd(key, next); err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", key, onOffString(next))
	return nil
}

func onOffString(ind int) string {
	if ind == settings.On {
		return "ON"
	}
	return "OFF"
}

func findValueIndex(values []string, want string) (int, bool) {
	for i, v := range values {
		if strings.EqualFold(v, want) {
			return i, true
		}
	}
	return 0, false
}

// handlePlayFunction: playfunction NA|Part|Parts|All -- selects which
// parts of the edit cursor's output port are scheduled, driving
// engine.Loop.SetPlayingParts.
func (h *Handler) handlePlayFunction(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: playfunction NA|Part|Parts|All")
	}
	st, _ := h.state.Get(settings.PlayFunction)
	idx, ok := findValueIndex(st.Values, parts[0])
	if !ok {
		return fmt.Errorf("usage: playfunction NA|Part|Parts|All")
	}
	if err := h.sendSettingInd(settings.PlayFunction, idx); err != nil {
		return err
	}

	cursor := h.state.EditCursor()
	switch strings.ToLower(parts[0]) {
	case "na":
		h.loop.SetPlayingParts(cursor.Midi, nil)
	case "part":
		h.loop.SetPlayingParts(cursor.Midi, []int{cursor.Part})
	case "parts":
		played := make([]int, cursor.Part+1)
		for i := range played {
			played[i] = i
		}
		h.loop.SetPlayingParts(cursor.Midi, played)
	case "all":
		played := make([]int, h.nParts)
		for i := range played {
			played[i] = i
		}
		h.loop.SetPlayingParts(cursor.Midi, played)
	}
	fmt.Printf("PLAY_FUNCTION -> %s\n", st.Values[idx])
	return nil
}

// handleViewFunction: viewfunction Only|Rec|Play -- UI-facing only, no
// engine-side effect.
func (h *Handler) handleViewFunction(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: viewfunction Only|Rec|Play")
	}
	st, _ := h.state.Get(settings.ViewFunction)
	idx, ok := findValueIndex(st.Values, parts[0])
	if !ok {
		return fmt.Errorf("usage: viewfunction Only|Rec|Play")
	}
	if err := h.sendSettingInd(settings.ViewFunction, idx); err != nil {
		return err
	}
	fmt.Printf("VIEW_FUNCTION -> %s\n", st.Values[idx])
	return nil
}

// handleTempo: tempo <bpm> -- the Tempo Clock is shared state, not
// Command Channel state, so this calls it directly (// Tempo Clock has no envelope of its own).
func (h *Handler) handleTempo(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: tempo <bpm>")
	}
	bpm, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid BPM: %s", parts[0])
	}
	h.clk.SetTempo(bpm)
	fmt.Printf("Tempo -> %d BPM\n", bpm)
	return nil
}

// handleCopyPart: copypart <midi> <channel> <from> <to> [reverse] --
// a bulk structural edit on the Pattern Store, applied directly rather
// than through the per-step Command Channel since it isn't a single
// out-mode edit.
func (h *Handler) handleCopyPart(parts []string) error {
	if len(parts) != 4 && len(parts) != 5 {
		return fmt.Errorf("usage: copypart <midi> <channel> <from> <to> [reverse]")
	}
	midi, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid midi id: %s", parts[0])
	}
	channel, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid channel: %s", parts[1])
	}
	from, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("invalid source part: %s", parts[2])
	}
	to, err := strconv.Atoi(parts[3])
	if err != nil {
		return fmt.Errorf("invalid destination part: %s", parts[3])
	}
	reverse := len(parts) == 5 && strings.EqualFold(parts[4], "reverse")

	if err := h.store.CopyPart(midi-1, channel, from-1, to-1, h.nSteps, reverse); err != nil {
		return err
	}
	fmt.Printf("Copied part %d to part %d (midi %d, channel %d, reverse=%v)\n", from, to, midi, channel, reverse)
	return nil
}
