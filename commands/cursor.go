package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matykiewicz/seqtext/command"
	"github.com/matykiewicz/seqtext/settings"
)

// sendSettingInd queues a SettingEnvelope for a 0-based index,
// validating it against the setting's own domain length.
func (h *Handler) sendSettingInd(key settings.Key, ind int) error {
	st, ok := h.state.Get(key)
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if ind < 0 || ind >= len(st.Values) {
		return fmt.Errorf("%s index out of range: %d (valid 0-%d)", key, ind, len(st.Values)-1)
	}
	h.cmd.Send(command.Envelope{Setting: &command.SettingEnvelope{Name: key, Ind: ind, Values: st.Values}})
	return nil
}

// sendSettingUser is sendSettingInd for the 1-based numbers every
// cursor command takes from the user.
func (h *Handler) sendSettingUser(key settings.Key, userVal int) error {
	return h.sendSettingInd(key, userVal-1)
}

func (h *Handler) modeIndex(name string) (int, error) {
	st, _ := h.state.Get(settings.EOMode)
	for i, v := range st.Values {
		if v == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown out mode %q", name)
}

func (h *Handler) moveCursor(midiKey, channelKey, partKey, stepKey, modeKey settings.Key, parts []string) error {
	if len(parts) != 4 && len(parts) != 5 {
		return fmt.Errorf("usage: <midi> <channel> <part> <step> [mode]")
	}
	nums := make([]int, 4)
	for i, p := range parts[:4] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid number %q", p)
		}
		nums[i] = n
	}
	if err := h.sendSettingUser(midiKey, nums[0]); err != nil {
		return err
	}
	if err := h.sendSettingUser(channelKey, nums[1]); err != nil {
		return err
	}
	if err := h.sendSettingUser(partKey, nums[2]); err != nil {
		return err
	}
	if err := h.sendSettingUser(stepKey, nums[3]); err != nil {
		return err
	}
	if len(parts) == 5 {
		idx, err := h.modeIndex(parts[4])
		if err != nil {
			return err
		}
		if err := h.sendSettingInd(modeKey, idx); err != nil {
			return err
		}
	}
	return nil
}

// handleGoto: goto <midi> <channel> <part> <step> [mode]
func (h *Handler) handleGoto(parts []string) error {
	return h.moveCursor(settings.EMidiO, settings.EChannel, settings.EPart, settings.EStep, settings.EOMode, parts)
}

// handleView: view <midi> <channel> <part> <step> [mode]
func (h *Handler) handleView(parts []string) error {
	return h.moveCursor(settings.VMidiO, settings.VChannel, settings.VPart, settings.VStep, settings.VOMode, parts)
}

// handleMode: mode <name> -- a shorthand for moving only E_O_MODE.
func (h *Handler) handleMode(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: mode <name>")
	}
	idx, err := h.modeIndex(parts[0])
	if err != nil {
		return err
	}
	return h.sendSettingInd(settings.EOMode, idx)
}

// channelNumber resolves the physical MIDI channel number at a 0-based
// E_CHANNEL/V_CHANNEL index, falling back to ind+1 if the setting
// somehow holds a non-numeric value.
func (h *Handler) channelNumber(ind int) int {
	v, err := h.state.IndexValue(settings.EChannel, ind)
	if err != nil {
		return ind + 1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return ind + 1
	}
	return n
}

// handleShow displays the edit cursor's current Pattern Store slot.
func (h *Handler) handleShow(parts []string) error {
	if len(parts) != 0 {
		return fmt.Errorf("usage: show")
	}
	cursor := h.state.EditCursor()
	modeName, err := h.state.IndexValue(settings.EOMode, cursor.Mode)
	if err != nil {
		return err
	}
	channel := h.channelNumber(cursor.Channel)

	fmt.Printf("midi=%d channel=%d part=%d step=%d mode=%s\n",
		cursor.Midi+1, channel, cursor.Part+1, cursor.Step+1, modeName)

	ix, ok := h.store.Get(cursor.Midi, channel, cursor.Part, cursor.Step, modeName)
	if !ok {
		fmt.Println("(empty slot)")
		return nil
	}
	desc, err := h.describeIndexes(modeName, ix)
	if err != nil {
		return err
	}
	fmt.Print(desc)
	return nil
}

// describeIndexes renders an Out Mode's rows as label=value pairs.
func (h *Handler) describeIndexes(modeName string, ix [][]int) (string, error) {
	template, ok := h.catalog.LookupOut(modeName)
	if !ok {
		return "", fmt.Errorf("unknown out mode %q", modeName)
	}
	var b strings.Builder
	for ri, row := range ix {
		fmt.Fprintf(&b, "row %d:", ri)
		for li, label := range template.Labels {
			if li >= len(row) {
				continue
			}
			fmt.Fprintf(&b, " %s=%s", label, template.Data[li][row[li]])
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
