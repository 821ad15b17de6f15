// Package command implements the Command Channel:
// the queue carrying edit envelopes from the UI/REPL to the engine
// loop.
package command

import (
	"github.com/matykiewicz/seqtext/modes"
	"github.com/matykiewicz/seqtext/settings"
)

// ModeEnvelope carries a full Out Mode instance edited by the UI,
// destined for a Pattern Store slot.
type ModeEnvelope struct {
	Name        string
	Indexes     modes.Indexes
	Labels      []string
	Offsets     []int
	Data        [][]string
	VisInd      [2]int
	ButInd      [2]int
	Instruments []string
	Comment     string
}

// SettingEnvelope carries a single settings.Setting update.
type SettingEnvelope struct {
	Name   settings.Key
	Ind    int
	Values []string
}

// Envelope is one of the two command shapes, discriminated by which
// field is non-nil.
type Envelope struct {
	Mode    *ModeEnvelope
	Setting *SettingEnvelope
}

// Channel is a multi-producer/single-consumer queue of Envelope,
// buffered so the UI/REPL goroutine's Send never blocks on the engine
// loop, and the engine loop's Poll never blocks waiting on the UI
//.
type Channel struct {
	ch chan Envelope
}

// NewChannel creates a buffered Command Channel. depth bounds how far
// the UI can run ahead of the engine loop before Send blocks.
func NewChannel(depth int) *Channel {
	return &Channel{ch: make(chan Envelope, depth)}
}

// Send enqueues an envelope, blocking only if the channel is full,
// the UI side's one allowed suspension point.
func (c *Channel) Send(e Envelope) {
	c.ch <- e
}

// Poll performs the engine's non-blocking peek: it drains at most one
// envelope without blocking, reporting ok=false if none was queued
//.
func (c *Channel) Poll() (Envelope, bool) {
	select {
	case e := <-c.ch:
		return e, true
	default:
		return Envelope{}, false
	}
}
