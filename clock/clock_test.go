package clock

import (
	"testing"
	"time"
)

func TestResetIntervals(t *testing.T) {
	tests := []struct {
		name         string
		tempo        int
		nQuants      int
		nSteps       int
		wantQuant    time.Duration
		wantStep     time.Duration
		wantPart     time.Duration
	}{
		{"60bpm 4quants 16steps", 60, 4, 16, 250 * time.Millisecond, time.Second, 16 * time.Second},
		{"120bpm 4quants 16steps", 120, 4, 16, 125 * time.Millisecond, 500 * time.Millisecond, 8 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.tempo, tt.nQuants, tt.nSteps, 4, 0)
			if got := c.QuantInterval(); got != tt.wantQuant {
				t.Errorf("QuantInterval() = %v, want %v", got, tt.wantQuant)
			}
			if got := c.StepInterval(); got != tt.wantStep {
				t.Errorf("StepInterval() = %v, want %v", got, tt.wantStep)
			}
			if got := c.PartInterval(); got != tt.wantPart {
				t.Errorf("PartInterval() = %v, want %v", got, tt.wantPart)
			}
		})
	}
}

// TestPartIntervalIdentity checks that
// part_interval = n_steps * step_interval = n_steps * n_quants * quant_interval.
func TestPartIntervalIdentity(t *testing.T) {
	c := New(95, 3, 16, 8, 0)
	if got, want := c.PartInterval(), c.StepInterval()*16; got != want {
		t.Errorf("PartInterval() = %v, want n_steps*StepInterval() = %v", got, want)
	}
	if got, want := c.StepInterval(), c.QuantInterval()*3; got != want {
		t.Errorf("StepInterval() = %v, want n_quants*QuantInterval() = %v", got, want)
	}
}

func TestSyncOnlyOnOffToOnTransition(t *testing.T) {
	c := New(60, 4, 16, 4, 0)

	if c.IsSynced() {
		t.Fatal("new clock should not be synced")
	}

	c.Sync(true)
	first := c.ClockSync()
	if first.IsZero() {
		t.Fatal("Sync(true) should set a clock origin")
	}

	// Calling Sync(true) again while already playing must not move the origin.
	c.Sync(true)
	if second := c.ClockSync(); !second.Equal(first) {
		t.Errorf("Sync(true) while already playing moved clockSync: %v -> %v", first, second)
	}

	// Turning playback off clears clockSync; the caller is assumed to
	// only do this once all dispatchers are drained.
	c.Sync(false)
	if c.IsSynced() {
		t.Error("Sync(false) should clear the clock origin")
	}
}

func TestMidPartTempoChangeIsNotRetroactive(t *testing.T) {
	// Scenario S5: scheduled ticks carry absolute offsets computed at
	// schedule time; changing tempo only affects subsequently computed ticks.
	c := New(60, 4, 16, 4, 0)
	scheduledThreeSeconds := c.StepTick(1, 4) // 3 steps in at 1s each (4 quants of 250ms) = 3s
	if scheduledThreeSeconds != 3*time.Second {
		t.Fatalf("precondition failed: StepTick(1,4) = %v, want 3s", scheduledThreeSeconds)
	}

	c.SetTempo(120)
	c.ResetIntervals()

	// The already-computed absolute tick value is a plain time.Duration and
	// is immutable; only newly computed ticks see the new interval.
	if scheduledThreeSeconds != 3*time.Second {
		t.Error("previously computed tick value must not change")
	}
	if got, want := c.QuantInterval(), 125*time.Millisecond; got != want {
		t.Errorf("QuantInterval() after tempo change = %v, want %v", got, want)
	}
}
