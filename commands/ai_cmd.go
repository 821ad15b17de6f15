package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/matykiewicz/seqtext/settings"
)

// describeState renders a short textual summary of the edit cursor
// and its current slot for the AI's state context, keeping ai.Client
// free of any dependency on settings/engine/modes types.
func (h *Handler) describeState() string {
	cursor := h.state.EditCursor()
	modeName, err := h.state.IndexValue(settings.EOMode, cursor.Mode)
	if err != nil {
		modeName = "?"
	}
	channel := h.channelNumber(cursor.Channel)

	var b strings.Builder
	fmt.Fprintf(&b, "Edit cursor: midi=%d channel=%d part=%d step=%d mode=%s\n",
		cursor.Midi+1, channel, cursor.Part+1, cursor.Step+1, modeName)

	ix, ok := h.store.Get(cursor.Midi, channel, cursor.Part, cursor.Step, modeName)
	if !ok {
		b.WriteString("(current slot is empty)\n")
		return b.String()
	}
	desc, err := h.describeIndexes(modeName, ix)
	if err == nil {
		b.WriteString(desc)
	}
	return b.String()
}

// handleAI: ai <question or request> -- routes to the Claude-backed
// assistant. With no configured client it
// reports that the feature is unavailable rather than failing the
// whole REPL.
func (h *Handler) handleAI(parts []string) error {
	if h.ai == nil {
		return fmt.Errorf("ai: no ANTHROPIC_API_KEY configured")
	}
	if len(parts) == 0 {
		return fmt.Errorf("usage: ai <question or request>")
	}
	input := strings.Join(parts, " ")

	resp, err := h.ai.Session(context.Background(), input, h.describeState())
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	for _, cmd := range resp.Commands {
		fmt.Printf("> %s\n", cmd)
		if err := h.ProcessCommand(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
	return nil
}
