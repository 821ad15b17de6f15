package engine

import (
	"strconv"
	"sync"
	"time"

	"github.com/matykiewicz/seqtext/clock"
	"github.com/matykiewicz/seqtext/command"
	"github.com/matykiewicz/seqtext/dispatch"
	"github.com/matykiewicz/seqtext/mapping"
	"github.com/matykiewicz/seqtext/modes"
	"github.com/matykiewicz/seqtext/settings"
	"github.com/matykiewicz/seqtext/translate"
)

// RawSource supplies one input port's buffered raw messages since the
// last poll.
// The `midi` package's driver wrapper implements this non-blockingly.
type RawSource interface {
	Drain() []translate.RawMessage
}

// Loop is the Engine Loop: the single-threaded
// orchestrator that drains the Command Channel, pumps input
// translators, and drives output dispatchers.
//
// Which (midi_id, channel, part) triples are "currently playing" is
// driven by PLAY_FUNCTION. This is exposed as an explicit
// SetPlayingParts call, driven by the commands/REPL layer interpreting
// that setting, rather than re-derived implicitly inside Iterate.
type Loop struct {
	mu sync.Mutex

	store    *Store
	state    *settings.State
	registry *mapping.Registry
	catalog  *modes.Catalog
	clk      *clock.Clock
	cmd      *command.Channel

	dispatchers     map[int]*dispatch.Dispatcher
	translators     map[int]RawSource
	translatorImpls map[int]*translate.Translator

	playingParts map[int][]int // midi_id -> active part indices (0-based)

	progress chan int // one-slot progress channel

	nParts, nSteps int
	sleepInterval  time.Duration

	stop chan struct{}
}

// NewLoop wires every already-constructed component together.
func NewLoop(store *Store, state *settings.State, registry *mapping.Registry, catalog *modes.Catalog, clk *clock.Clock, cmd *command.Channel, nParts, nSteps int, sleepInterval time.Duration) *Loop {
	return &Loop{
		store:           store,
		state:           state,
		registry:        registry,
		catalog:         catalog,
		clk:             clk,
		cmd:             cmd,
		dispatchers:     make(map[int]*dispatch.Dispatcher),
		translators:     make(map[int]RawSource),
		translatorImpls: make(map[int]*translate.Translator),
		playingParts:    make(map[int][]int),
		progress:        make(chan int, 1),
		nParts:          nParts,
		nSteps:          nSteps,
		sleepInterval:   sleepInterval,
		stop:            make(chan struct{}),
	}
}

// AttachDispatcher registers an output port's dispatcher, refreshing
// its allowed-modes filter from the current Mapping Registry/catalog.
func (l *Loop) AttachDispatcher(midiID int, d *dispatch.Dispatcher) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatchers[midiID] = d
	l.refreshAllowedOutModesLocked(midiID, d)
}

// AttachTranslator registers an input port's translator and its raw
// message source.
func (l *Loop) AttachTranslator(midiID int, tr *translate.Translator, source RawSource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.translatorImpls[midiID] = tr
	l.translators[midiID] = source
}

func (l *Loop) refreshAllowedOutModesLocked(midiID int, d *dispatch.Dispatcher) {
	outDict := l.registry.ToOutDict(l.catalog)
	var allowed []string
	seen := make(map[string]bool)
	for _, names := range outDict[midiID] {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				allowed = append(allowed, n)
			}
		}
	}
	d.SetAllowedOutModes(allowed)
}

// SetPlayingParts records which parts of a given output port are
// currently eligible for scheduling (driven by PLAY_FUNCTION).
// parts are 0-based Pattern Store part indices, matching the edit/view
// cursor convention; Iterate converts to the Tempo Clock's 1-based
// part numbering when it calls into the dispatcher.
func (l *Loop) SetPlayingParts(midiID int, parts []int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playingParts[midiID] = append([]int(nil), parts...)
}

// Progress returns the one-slot progress channel UI code reads from.
func (l *Loop) Progress() <-chan int { return l.progress }

// Stop signals a running Start goroutine to exit after its current iteration.
func (l *Loop) Stop() { close(l.stop) }

// Start runs the engine loop until Stop is called, sleeping
// sleepInterval between iterations. The debug argument is not used.
func (l *Loop) Start(debug bool) {
	for {
		select {
		case <-l.stop:
			return
		default:
		}
		l.Iterate(time.Now())
		time.Sleep(l.sleepInterval)
	}
}

// Iterate runs exactly one pass of the engine's per-tick sequence,
// and is the unit exercised directly by tests.
func (l *Loop) Iterate(now time.Time) {
	l.clk.ResetIntervals() // tempo changes affect only not-yet-scheduled ticks

	cursor := l.state.EditCursor()

	if e, ok := l.cmd.Poll(); ok {
		if e.Mode != nil {
			l.applyModeEnvelope(e.Mode, cursor)
		}
		if e.Setting != nil {
			_ = l.state.SetInd(e.Setting.Name, e.Setting.Ind)
		}
	}

	l.pollTranslators(cursor)
	l.publishProgress()

	for midiID, d := range l.dispatchers {
		for _, partIdx := range l.playingParts[midiID] {
			rows := l.buildStepRows(midiID, partIdx)
			if len(rows) > 0 {
				d.SchedulePart(partIdx+1, rows, now)
			}
		}
		d.Tick(now)
	}
}

func (l *Loop) channelNumberAt(ind int) int {
	v, err := l.state.IndexValue(settings.EChannel, ind)
	if err != nil {
		return ind + 1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return ind + 1
	}
	return n
}

func (l *Loop) applyModeEnvelope(e *command.ModeEnvelope, cursor settings.Cursor) {
	channel := l.channelNumberAt(cursor.Channel)
	l.store.Put(cursor.Midi, channel, cursor.Part, cursor.Step, e.Name, e.Indexes)

	if l.state.ToggleOn(settings.Record) {
		l.state.AdvanceEditStep()
	}

	template, ok := l.catalog.LookupOut(e.Name)
	if !ok {
		return
	}
	instance := template.CloneWithIndexes(e.Indexes)
	if d, ok := l.dispatchers[cursor.Midi]; ok {
		d.QueueUnscheduled(channel, instance)
	}
}

func (l *Loop) pollTranslators(cursor settings.Cursor) {
	for midiID, source := range l.translators {
		tr, ok := l.translatorImpls[midiID]
		if !ok {
			continue
		}
		raws := source.Drain()
		if len(raws) == 0 {
			continue
		}
		for _, y := range tr.TranslateInsToOut(raws) {
			if l.state.ToggleOn(settings.Record) {
				l.store.Put(y.MidiID, y.Channel, cursor.Part, cursor.Step, y.Out.Name, y.Out.GetIndexes())
				l.state.AdvanceEditStep()
			}
			if d, ok := l.dispatchers[y.MidiID]; ok {
				d.QueueUnscheduled(y.Channel, y.Out)
			}
		}
	}
}

// buildStepRows scans the Pattern Store for every populated slot at
// (midiID, part) -- part a 0-based Pattern Store index -- grouped by
// step, for handoff to the dispatcher.
func (l *Loop) buildStepRows(midiID, part int) map[int][]dispatch.StepRow {
	rows := make(map[int][]dispatch.StepRow)
	for key, ix := range l.store.Dump() {
		if key.Midi != midiID || key.Part != part {
			continue
		}
		template, ok := l.catalog.LookupOut(key.Mode)
		if !ok {
			continue
		}
		instance := template.CloneWithIndexes(ix)
		rows[key.Step+1] = append(rows[key.Step+1], dispatch.StepRow{Channel: key.Channel, Mode: instance})
	}
	return rows
}

func (l *Loop) publishProgress() {
	var minTick time.Duration
	found := false
	for _, d := range l.dispatchers {
		t, ok := d.NextScheduledTick()
		if !ok {
			continue
		}
		if !found || t < minTick {
			minTick, found = t, true
		}
	}
	if !found {
		return
	}
	stepInterval := l.clk.StepInterval()
	if stepInterval <= 0 {
		return
	}
	minStep := int(minTick / stepInterval)
	select {
	case l.progress <- minStep:
	default:
		select {
		case <-l.progress:
		default:
		}
		select {
		case l.progress <- minStep:
		default:
		}
	}
}
