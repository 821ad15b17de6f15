// Package midi is the I/O Driver: it enumerates
// physical MIDI ports, opens them, and adapts gomidi's port handles to
// the dispatch.Sender and engine.RawSource interfaces the rest of the
// module is built against.
package midi

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // auto-register RtMIDI driver

	"github.com/matykiewicz/seqtext/mapping"
	"github.com/matykiewicz/seqtext/translate"
)

// ListOutPorts enumerates physical MIDI output ports as mapping.PhysicalEndpoint
// values, ready for Registry.InitMIDIOuts.
func ListOutPorts() []mapping.PhysicalEndpoint {
	ports := midi.GetOutPorts()
	out := make([]mapping.PhysicalEndpoint, len(ports))
	for i, port := range ports {
		out[i] = mapping.PhysicalEndpoint{PortID: int(port.Number()), PortName: port.String(), IsOut: true}
	}
	return out
}

// ListInPorts enumerates physical MIDI input ports as mapping.PhysicalEndpoint
// values, ready for Registry.InitMIDIIns.
func ListInPorts() []mapping.PhysicalEndpoint {
	ports := midi.GetInPorts()
	out := make([]mapping.PhysicalEndpoint, len(ports))
	for i, port := range ports {
		out[i] = mapping.PhysicalEndpoint{PortID: int(port.Number()), PortName: port.String(), IsOut: false}
	}
	return out
}

// OutPort wraps one opened MIDI output port. It implements
// dispatch.Sender directly, so a *dispatch.Dispatcher can write
// through it without further adaptation.
type OutPort struct {
	port drivers.Out
	send func(midi.Message) error
}

// OpenOut opens a physical output port by its driver-assigned number.
func OpenOut(portID int) (*OutPort, error) {
	port, err := midi.OutPort(portID)
	if err != nil {
		return nil, fmt.Errorf("midi: open out port %d: %w", portID, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("midi: send to out port %d: %w", portID, err)
	}
	return &OutPort{port: port, send: send}, nil
}

// Send implements dispatch.Sender, forwarding the already wire-formatted
// 3-byte channel message verbatim.
func (o *OutPort) Send(status, d1, d2 byte) error {
	return o.send(midi.Message{status, d1, d2})
}

// Close releases the underlying port.
func (o *OutPort) Close() error {
	return o.port.Close()
}

// InPort wraps one opened MIDI input port, buffering gomidi's
// callback-driven messages into a queue that implements
// engine.RawSource/translate's expected RawMessage shape, drained
// non-blockingly by the Engine Loop.
type InPort struct {
	mu     sync.Mutex
	buf    []translate.RawMessage
	stop   func()
	opened time.Time
	last   time.Time
}

// OpenIn opens a physical input port by its driver-assigned number and
// starts listening for channel messages.
func OpenIn(portID int) (*InPort, error) {
	port, err := midi.InPort(portID)
	if err != nil {
		return nil, fmt.Errorf("midi: open in port %d: %w", portID, err)
	}
	p := &InPort{opened: time.Now()}
	p.last = p.opened

	stop, err := midi.ListenTo(port, p.onMessage)
	if err != nil {
		return nil, fmt.Errorf("midi: listen on in port %d: %w", portID, err)
	}
	p.stop = stop
	return p, nil
}

func (p *InPort) onMessage(msg midi.Message, timestampms int32) {
	var status, d1, d2 byte
	if len(msg) > 0 {
		status = msg[0]
	}
	if len(msg) > 1 {
		d1 = msg[1]
	}
	if len(msg) > 2 {
		d2 = msg[2]
	}
	// Channel messages only: ignore system/realtime bytes.
	if status < 0x80 || status >= 0xF0 {
		return
	}

	now := p.opened.Add(time.Duration(timestampms) * time.Millisecond)

	p.mu.Lock()
	delta := now.Sub(p.last)
	if len(p.buf) == 0 {
		delta = 0 // first message of a batch
	}
	p.last = now
	p.buf = append(p.buf, translate.RawMessage{Status: status, Data1: d1, Data2: d2, TNow: now, TDelta: delta})
	p.mu.Unlock()
}

// Drain implements engine.RawSource: it returns every message buffered
// since the last call and clears the queue.
func (p *InPort) Drain() []translate.RawMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.buf
	p.buf = nil
	return out
}

// Close stops listening and releases the underlying port.
func (p *InPort) Close() error {
	if p.stop != nil {
		p.stop()
	}
	return nil
}
