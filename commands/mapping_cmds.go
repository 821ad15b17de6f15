package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// handleMap: map <conn> <field> <value...> -- edits one field of a
// Mapping Registry connection slot.
func (h *Handler) handleMap(parts []string) error {
	if len(parts) < 3 {
		return fmt.Errorf("usage: map <conn> <field> <value> (field: midi_id|port_name|channel|is_out|instruments)")
	}
	connID, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid connection id: %s", parts[0])
	}
	field := strings.ToLower(parts[1])
	rest := parts[2:]

	var value any
	switch field {
	case "midi_id", "channel":
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid %s value: %s", field, rest[0])
		}
		value = n
	case "port_name":
		value = strings.Join(rest, " ")
	case "is_out":
		b, err := strconv.ParseBool(rest[0])
		if err != nil {
			return fmt.Errorf("invalid is_out value: %s (want true|false)", rest[0])
		}
		value = b
	case "instruments":
		value = rest
	default:
		return fmt.Errorf("unknown field %q (want midi_id|port_name|channel|is_out|instruments)", field)
	}

	if err := h.registry.EditSlot(connID, field, value); err != nil {
		return err
	}
	fmt.Printf("Connection %d: %s -> %v\n", connID, field, value)
	return nil
}

// handleMapShow: mapshow -- lists every Mapping Registry connection.
func (h *Handler) handleMapShow(parts []string) error {
	if len(parts) != 0 {
		return fmt.Errorf("usage: mapshow")
	}
	conns := h.registry.Conns()
	fmt.Println("  MidiID  Channel  Out  Port               Instruments")
	for _, c := range conns {
		fmt.Printf("  %6d  %7d  %3v  %-18s %v\n", c.MidiID, c.Channel, c.IsOut, c.PortName, c.Instruments)
	}
	return nil
}
