package commands

import (
	"fmt"
	"strconv"

	"github.com/matykiewicz/seqtext/command"
	"github.com/matykiewicz/seqtext/modes"
	"github.com/matykiewicz/seqtext/settings"
)

// setColumn mutates one column of instance's next-to-emit row, either
// snapping a numeric value onto its nearest domain entry or matching a
// string value (note names, scale names) exactly.
func setColumn(instance *modes.OutMode, label, value string) error {
	idx := -1
	for i, l := range instance.Labels {
		if l == label {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("unknown column %q", label)
	}
	if n, err := strconv.Atoi(value); err == nil {
		return instance.SetIndexesWithLabAndVal(label, n, nil)
	}
	for vi, v := range instance.Data[idx] {
		if v == value {
			instance.Indexes[instance.Exe()][idx] = vi
			return nil
		}
	}
	return fmt.Errorf("value %q not found in column %q", value, label)
}

// handleSet: set <label> <value> -- edits one column of the edit
// cursor's out mode and queues the result on the Command Channel
//.
func (h *Handler) handleSet(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: set <label> <value> (e.g. 'set Note C4')")
	}
	label, value := parts[0], parts[1]

	cursor := h.state.EditCursor()
	modeName, err := h.state.IndexValue(settings.EOMode, cursor.Mode)
	if err != nil {
		return err
	}
	template, ok := h.catalog.LookupOut(modeName)
	if !ok {
		return fmt.Errorf("unknown out mode %q", modeName)
	}
	channel := h.channelNumber(cursor.Channel)

	instance := template.Clone(false)
	if current, ok := h.store.Get(cursor.Midi, channel, cursor.Part, cursor.Step, modeName); ok {
		instance.Indexes = current.Clone()
	}

	if err := setColumn(instance, label, value); err != nil {
		return err
	}

	h.cmd.Send(command.Envelope{Mode: &command.ModeEnvelope{
		Name:    modeName,
		Indexes: instance.Indexes.Clone(),
	}})
	fmt.Printf("Set %s to %s at (midi=%d channel=%d part=%d step=%d)\n",
		label, value, cursor.Midi+1, channel, cursor.Part+1, cursor.Step+1)
	return nil
}
