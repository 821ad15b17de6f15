package engine

import (
	"testing"

	"github.com/matykiewicz/seqtext/modes"
)

func newTestStore() *Store {
	s := NewStore()
	s.data[StoreKey{0, 0, 0, 0, "A"}] = modes.Indexes{{1, 2}}
	s.data[StoreKey{0, 0, 0, 3, "A"}] = modes.Indexes{{3, 4}}
	s.data[StoreKey{0, 0, 1, 0, "A"}] = modes.Indexes{{5, 6}}
	return s
}

func TestGetReturnsOkFalseForMissingSlot(t *testing.T) {
	s := newTestStore()
	if _, ok := s.Get(9, 9, 9, 9, "A"); ok {
		t.Error("Get on an unpopulated coordinate should report ok=false")
	}
}

func TestPutIsNoOpOnMissingSlot(t *testing.T) {
	s := newTestStore()
	s.Put(9, 9, 9, 9, "A", modes.Indexes{{7}})
	if _, ok := s.Get(9, 9, 9, 9, "A"); ok {
		t.Error("Put on a missing slot must not create one")
	}
}

func TestPutOverwritesExistingSlot(t *testing.T) {
	s := newTestStore()
	s.Put(0, 0, 0, 0, "A", modes.Indexes{{9, 9}})
	got, ok := s.Get(0, 0, 0, 0, "A")
	if !ok || got[0][0] != 9 {
		t.Fatalf("Get after Put = %v, ok=%v, want [[9 9]] true", got, ok)
	}
}

// TestNextSlotRotatesThroughPopulatedStepsOnly reproduces the round-
// trip property R3 : advancing the step axis visits only
// populated slots and wraps back to the start.
func TestNextSlotRotatesThroughPopulatedStepsOnly(t *testing.T) {
	s := newTestStore()
	pos := Position{Midi: 0, Channel: 0, Part: 0, Step: 0, ModeIdx: 0}
	modeNames := []string{"A"}

	next, ok := s.NextSlot(pos, AxisStep, 16, modeNames)
	if !ok || next != 3 {
		t.Fatalf("NextSlot from step 0 = (%d, %v), want (3, true)", next, ok)
	}

	pos.Step = next
	next, ok = s.NextSlot(pos, AxisStep, 16, modeNames)
	if !ok || next != 0 {
		t.Fatalf("NextSlot from step 3 should wrap to step 0, got (%d, %v)", next, ok)
	}
}

func TestNextSlotReportsNotFoundWhenAxisEmpty(t *testing.T) {
	s := NewStore()
	_, ok := s.NextSlot(Position{}, AxisStep, 16, []string{"A"})
	if ok {
		t.Error("NextSlot on an empty store should report ok=false")
	}
}

func TestDumpAndLoadRoundTrip(t *testing.T) {
	s := newTestStore()
	dumped := s.Dump()

	fresh := NewStore()
	fresh.Load(dumped)

	got, ok := fresh.Get(0, 0, 1, 0, "A")
	if !ok || got[0][0] != 5 {
		t.Fatalf("Load(Dump()) lost slot (0,0,1,0,A): got %v ok=%v", got, ok)
	}
}

func TestDumpIsADeepCopy(t *testing.T) {
	s := newTestStore()
	dumped := s.Dump()
	dumped[StoreKey{0, 0, 0, 0, "A"}][0][0] = 999

	got, _ := s.Get(0, 0, 0, 0, "A")
	if got[0][0] == 999 {
		t.Error("mutating a Dump() result must not affect the live store")
	}
}

// TestCopyPartReverse checks that copying a part in reverse mirrors
// the step order.
func TestCopyPartReverse(t *testing.T) {
	s := NewStore()
	s.data[StoreKey{0, 0, 0, 0, "A"}] = modes.Indexes{{1}}
	s.data[StoreKey{0, 0, 0, 1, "A"}] = modes.Indexes{{2}}
	// Destination part must already have slots (Put never resizes the store).
	s.data[StoreKey{0, 0, 1, 0, "A"}] = modes.Indexes{{0}}
	s.data[StoreKey{0, 0, 1, 1, "A"}] = modes.Indexes{{0}}

	if err := s.CopyPart(0, 0, 0, 1, 2, true); err != nil {
		t.Fatalf("CopyPart: %v", err)
	}

	got0, _ := s.Get(0, 0, 1, 0, "A")
	got1, _ := s.Get(0, 0, 1, 1, "A")
	if got0[0][0] != 2 || got1[0][0] != 1 {
		t.Errorf("CopyPart(reverse) part1 = [step0=%v step1=%v], want [2 1]", got0, got1)
	}
}

func TestCopyPartErrorsWhenSourceEmpty(t *testing.T) {
	s := NewStore()
	if err := s.CopyPart(0, 0, 0, 1, 16, false); err == nil {
		t.Error("CopyPart from an unpopulated part should error")
	}
}
