package mapping

import "errors"

// ErrSlotMissing is returned by EditSlot for a connection id outside
// the registry's slots; non-fatal.
var ErrSlotMissing = errors.New("mapping: connection slot does not exist")

// ErrUnknownField is returned by EditSlot for an unrecognized field name.
var ErrUnknownField = errors.New("mapping: unknown connection field")
