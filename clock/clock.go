// Package clock maintains the tempo-driven tick timeline: the scalar
// intervals derived from BPM and the wall-clock origin that anchors
// every scheduled step tick during a playback session.
package clock

import (
	"sync"
	"time"
)

// Clock derives quant/step/part intervals from a tempo and publishes
// the wall-clock origin ("sync") that playback offsets are measured
// against. A zero Clock is not ready for use; construct with New.
type Clock struct {
	mu sync.RWMutex

	tempo    int // BPM
	nQuants  int // subdivisions per step
	nSteps   int // steps per part
	nParts   int // parts per pattern
	initTime time.Duration

	quantInterval time.Duration
	stepInterval  time.Duration
	partInterval  time.Duration

	playing   bool
	clockSync time.Time // zero value means idle
}

// New creates a Clock for the given tempo and grid. initTime is a
// startup latency cushion: 0 in production, >0 in tests so the first
// scheduled tick is guaranteed to land in the future relative to the
// test's own wall clock.
func New(tempo, nQuants, nSteps, nParts int, initTime time.Duration) *Clock {
	c := &Clock{
		tempo:    tempo,
		nQuants:  nQuants,
		nSteps:   nSteps,
		nParts:   nParts,
		initTime: initTime,
	}
	c.ResetIntervals()
	return c
}

// ResetIntervals recomputes quant/step/part intervals from the current
// tempo. Called at the top of every engine loop iteration so a
// mid-part tempo change only affects ticks that have not yet been
// scheduled.
func (c *Clock) ResetIntervals() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetIntervalsLocked()
}

func (c *Clock) resetIntervalsLocked() {
	quantSeconds := (60.0 / float64(c.tempo)) / float64(c.nQuants)
	c.quantInterval = time.Duration(quantSeconds * float64(time.Second))
	c.stepInterval = c.quantInterval * time.Duration(c.nQuants)
	c.partInterval = c.stepInterval * time.Duration(c.nSteps)
}

// SetTempo changes the BPM. Takes effect on the next ResetIntervals
// call, never retroactively moving ticks already in a dispatcher's
// scheduled_steps map (those carry absolute offsets captured at
// schedule time).
func (c *Clock) SetTempo(bpm int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempo = bpm
}

// Tempo returns the current BPM.
func (c *Clock) Tempo() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tempo
}

// QuantInterval returns the current quant duration.
func (c *Clock) QuantInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quantInterval
}

// StepInterval returns the current step duration.
func (c *Clock) StepInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stepInterval
}

// PartInterval returns the current part duration.
func (c *Clock) PartInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.partInterval
}

// Sync captures clockSync (now plus initTime) when playback transitions
// from off to on while no sync origin is set. Playing=false clears the
// sync origin unconditionally; Sync does not check whether any
// dispatcher has drained.
func (c *Clock) Sync(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if playing && !c.playing && c.clockSync.IsZero() {
		c.clockSync = time.Now().Add(c.initTime)
	}
	if !playing {
		c.clockSync = time.Time{}
	}
	c.playing = playing
}

// ClockSync returns the current wall-clock origin, or the zero Time
// if playback is idle.
func (c *Clock) ClockSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clockSync
}

// IsSynced reports whether a clock origin is currently set.
func (c *Clock) IsSynced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.clockSync.IsZero()
}

// PartTick returns the absolute tick offset (relative to ClockSync)
// at which the given 1-based part begins.
func (c *Clock) PartTick(part int) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(part-1) * c.partInterval
}

// StepTick returns the absolute tick offset at which the given
// 1-based step of the given 1-based part begins.
func (c *Clock) StepTick(part, step int) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(part-1)*c.partInterval + time.Duration(step-1)*c.stepInterval
}

// WallTime converts an absolute tick offset into the wall-clock
// instant it fires at, given the current ClockSync.
func (c *Clock) WallTime(tick time.Duration) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clockSync.Add(tick)
}
