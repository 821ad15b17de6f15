// Package dispatch implements the Output Dispatcher: the per-output-port
// scheduler that expands active parts into timestamped messages and
// emits them in tick order.
package dispatch

import (
	"sort"
	"sync"
	"time"

	"github.com/matykiewicz/seqtext/clock"
	"github.com/matykiewicz/seqtext/modes"
)

// Sender transmits one raw channel message. Implementations wrap a
// physical or virtual MIDI output port (the `midi` package's OutPort
// forwards the three bytes verbatim as a gitlab.com/gomidi/midi/v2
// midi.Message).
type Sender interface {
	Send(status, d1, d2 byte) error
}

// StepRow is a single OutMode populated at a Pattern Store slot,
// already resolved by the engine loop against the current part/step
// and handed to the dispatcher for scheduling.
type StepRow struct {
	Channel int
	Mode    *modes.OutMode
}

type unscheduledEntry struct {
	channel int
	mode    *modes.OutMode
}

// Dispatcher holds one output port's scheduling state.
type Dispatcher struct {
	mu sync.Mutex

	midiID int
	clk    *clock.Clock
	sender Sender

	allowed map[string]bool // nil means unfiltered (no mapping attached yet)

	scheduledSteps  map[time.Duration]map[int][]*modes.OutMode
	unscheduledStep []unscheduledEntry
	maxPartTick     time.Duration
}

// NewDispatcher creates a Dispatcher bound to one logical midi_id.
func NewDispatcher(midiID int, clk *clock.Clock, sender Sender) *Dispatcher {
	return &Dispatcher{
		midiID:         midiID,
		clk:            clk,
		sender:         sender,
		scheduledSteps: make(map[time.Duration]map[int][]*modes.OutMode),
	}
}

// MidiID returns the logical port this dispatcher serves.
func (d *Dispatcher) MidiID() int { return d.midiID }

// SetAllowedOutModes installs the allowed-modes filter computed from
// the Mapping Registry at attach time. Only modes named here may
// emit; all others are dropped silently during scheduling and when
// the live-echo queue is drained.
func (d *Dispatcher) SetAllowedOutModes(names []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	d.allowed = m
}

func (d *Dispatcher) allowedLocked(name string) bool {
	if d.allowed == nil {
		return true
	}
	return d.allowed[name]
}

// Drained reports whether scheduled_steps is currently empty.
func (d *Dispatcher) Drained() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.scheduledSteps) == 0
}

// MaxPartTick returns the end-of-pattern sentinel.
func (d *Dispatcher) MaxPartTick() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxPartTick
}

// NextScheduledTick returns the smallest pending tick in
// scheduledSteps -- the dispatcher's current playhead -- and false if
// nothing is scheduled.
func (d *Dispatcher) NextScheduledTick() (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return smallestKey(d.scheduledSteps)
}

// SchedulePart expands one (midi_id, channel, part) triple's rows into
// scheduled steps, gated on the dispatcher being drained and the wall
// clock having passed max_part_tick. rows maps step (1-based) to the
// StepRows populated at that step. It reports whether scheduling
// actually occurred.
func (d *Dispatcher) SchedulePart(part int, rows map[int][]StepRow, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.scheduledSteps) != 0 {
		return false
	}
	if now.Before(d.clk.WallTime(d.maxPartTick)) {
		return false
	}

	partTick := d.clk.PartTick(part)
	stepInterval := d.clk.StepInterval()

	for step, stepRows := range rows {
		tick := partTick + time.Duration(step-1)*stepInterval
		for _, r := range stepRows {
			if !d.allowedLocked(r.Mode.Name) {
				continue
			}
			if r.Mode.IsNA() {
				continue
			}
			if d.scheduledSteps[tick] == nil {
				d.scheduledSteps[tick] = make(map[int][]*modes.OutMode)
			}
			d.scheduledSteps[tick][r.Channel] = append(d.scheduledSteps[tick][r.Channel], r.Mode)
		}
	}

	candidate := d.clk.PartInterval() * time.Duration(part)
	if candidate > d.maxPartTick {
		d.maxPartTick = candidate
	}
	return true
}

// QueueUnscheduled appends a recorded (channel, OutMode) pair to the
// live-echo queue, drained before tick-ordered emission on the next
// Tick call.
func (d *Dispatcher) QueueUnscheduled(channel int, mode *modes.OutMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unscheduledStep = append(d.unscheduledStep, unscheduledEntry{channel, mode})
}

// Tick runs one engine-loop iteration's worth of emission work:
// drains the live-echo queue, then processes the single smallest
// scheduled tick that has come due.
func (d *Dispatcher) Tick(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.unscheduledStep) > 0 {
		d.playNowAndScheduleLocked(now)
	}

	if len(d.scheduledSteps) == 0 {
		return
	}

	smallest, found := smallestKey(d.scheduledSteps)
	if !found {
		return
	}
	if now.Before(d.clk.WallTime(smallest)) {
		return
	}

	channelModes := d.scheduledSteps[smallest]
	newSchedule := make(map[time.Duration]map[int][]*modes.OutMode)

	for _, ch := range sortedChannels(channelModes) {
		for _, mode := range channelModes[ch] {
			msg, err := mode.GetAsMessage()
			if err != nil {
				continue
			}
			d.transmit(msg, ch)
			if len(msg) > 3 && mode.HasNext() {
				nextTick := smallest + time.Duration(msg[3])*d.clk.QuantInterval()
				if newSchedule[nextTick] == nil {
					newSchedule[nextTick] = make(map[int][]*modes.OutMode)
				}
				newSchedule[nextTick][ch] = append(newSchedule[nextTick][ch], mode)
			}
		}
	}

	delete(d.scheduledSteps, smallest)
	for tick, chans := range newSchedule {
		if d.scheduledSteps[tick] == nil {
			d.scheduledSteps[tick] = make(map[int][]*modes.OutMode)
		}
		for ch, ms := range chans {
			d.scheduledSteps[tick][ch] = append(d.scheduledSteps[tick][ch], ms...)
		}
	}
}

func (d *Dispatcher) playNowAndScheduleLocked(now time.Time) {
	queue := d.unscheduledStep
	d.unscheduledStep = nil

	for _, e := range queue {
		if !d.allowedLocked(e.mode.Name) {
			continue
		}
		msg, err := e.mode.GetAsMessage()
		if err != nil {
			continue
		}
		d.transmit(msg, e.channel)
		if len(msg) > 3 && e.mode.HasNext() {
			nowTick := now.Sub(d.clk.ClockSync())
			nextTick := nowTick + time.Duration(msg[3])*d.clk.QuantInterval()
			if d.scheduledSteps[nextTick] == nil {
				d.scheduledSteps[nextTick] = make(map[int][]*modes.OutMode)
			}
			d.scheduledSteps[nextTick][e.channel] = append(d.scheduledSteps[nextTick][e.channel], e.mode)
		}
	}
}

// transmit implements the channel_message wire transform: status
// nibble combined with the channel, data bytes masked to 7
// bits. Messages shorter than 3 bytes or carrying a negative byte
// among their first three are dropped silently.
func (d *Dispatcher) transmit(msg []int, channel int) {
	if len(msg) < 3 {
		return
	}
	for _, b := range msg[:3] {
		if b < 0 {
			return
		}
	}
	if d.sender == nil {
		return
	}
	status := byte(msg[0]&0xF0) | byte((channel-1)&0x0F)
	d1 := byte(msg[1] & 0x7F)
	d2 := byte(msg[2] & 0x7F)
	_ = d.sender.Send(status, d1, d2)
}

func smallestKey(m map[time.Duration]map[int][]*modes.OutMode) (time.Duration, bool) {
	var smallest time.Duration
	found := false
	for k := range m {
		if !found || k < smallest {
			smallest, found = k, true
		}
	}
	return smallest, found
}

func sortedChannels(m map[int][]*modes.OutMode) []int {
	out := make([]int, 0, len(m))
	for ch := range m {
		out = append(out, ch)
	}
	sort.Ints(out)
	return out
}
