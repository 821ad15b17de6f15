package settings

import "testing"

func newTestState() *State {
	return Init(2, 2, 4, 4, 16, []string{"GeVo1Out"}, []string{"GeVo1In"})
}

func TestEditCursorDefaultsToZero(t *testing.T) {
	st := newTestState()
	cursor := st.EditCursor()
	if cursor != (Cursor{}) {
		t.Errorf("fresh state edit cursor = %+v, want zero value", cursor)
	}
}

func TestAdvanceEditStepWraps(t *testing.T) {
	st := newTestState()
	stepSetting, _ := st.Get(EStep)
	n := len(stepSetting.Values)

	for i := 0; i < n-1; i++ {
		st.AdvanceEditStep()
	}
	if got := st.EditCursor().Step; got != n-1 {
		t.Fatalf("step after %d advances = %d, want %d", n-1, got, n-1)
	}

	st.AdvanceEditStep()
	if got := st.EditCursor().Step; got != 0 {
		t.Errorf("step should wrap to 0, got %d", got)
	}
}

func TestRecordAndCopyTogglesReportIndependently(t *testing.T) {
	// Nothing enforces mutual exclusion of RECORD=ON and COPY=ON (not
	// this package, not the engine loop), but both toggles must
	// independently report their state correctly.
	st := newTestState()
	if err := st.SetInd(Record, On); err != nil {
		t.Fatalf("SetInd(Record, On): %v", err)
	}
	if !st.ToggleOn(Record) {
		t.Error("Record should read ON")
	}
	if st.ToggleOn(Copy) {
		t.Error("Copy should still read OFF")
	}
}

func TestIndexValueIsIndependentOfCursor(t *testing.T) {
	st := newTestState()
	if err := st.SetInd(EChannel, 0); err != nil {
		t.Fatalf("SetInd: %v", err)
	}
	v, err := st.IndexValue(EChannel, 2)
	if err != nil {
		t.Fatalf("IndexValue: %v", err)
	}
	if v != "3" {
		t.Errorf("IndexValue(EChannel, 2) = %q, want %q", v, "3")
	}
	if got := st.EditCursor().Channel; got != 0 {
		t.Errorf("IndexValue must not move the cursor, channel ind = %d, want 0", got)
	}
}

func TestSetIndRejectsOutOfRange(t *testing.T) {
	st := newTestState()
	if err := st.SetInd(EStep, 999); err == nil {
		t.Error("SetInd with out-of-range index should error")
	}
}
