package modes

import (
	"errors"
	"testing"
)

// newTestGeVoOut builds a minimal note-on/note-off out mode: Code,
// Key, Velocity, Length columns, with a Note paging column layered
// on top.
func newTestGeVoOut() *OutMode {
	labels := []string{"Code", "Key", "Velocity", "Length", "Note"}
	data := [][]string{
		{"128", "144"},                 // Code: note-off, note-on
		{"58", "60", "62"},              // Key
		{"0", "100", "127"},             // Velocity
		{"0", "1", "2", "3", "4"},        // Length (in quants)
		{"C4", "D4"},                    // Note names paging column
	}
	indexes := Indexes{
		{1, 1, 1, 4, 0}, // note-on row: code=144, key=60, vel=100, len=4, note=C4
		{0, 1, 0, 0, 0}, // note-off row
	}
	return NewOutMode("GeVo1Out", labels, data, indexes, [2]int{1, 0}, [2]int{1, 0}, []string{"Generic"})
}

func TestGetAsMessageSequencesRowsAndAdvancesExe(t *testing.T) {
	m := newTestGeVoOut().Clone(false)

	if !m.HasNext() {
		t.Fatal("fresh instance should have a next row")
	}

	msg, err := m.GetAsMessage()
	if err != nil {
		t.Fatalf("GetAsMessage() error: %v", err)
	}
	if m.Exe() != 1 {
		t.Errorf("Exe() after first GetAsMessage = %d, want 1", m.Exe())
	}
	// Code, Key, Velocity, Length -- Note is excluded (non-musical column).
	want := []int{144, 60, 100, 4}
	if !intsEqual(msg, want) {
		t.Errorf("row 0 message = %v, want %v", msg, want)
	}

	msg, err = m.GetAsMessage()
	if err != nil {
		t.Fatalf("GetAsMessage() error: %v", err)
	}
	if m.Exe() != 2 {
		t.Errorf("Exe() after second GetAsMessage = %d, want 2", m.Exe())
	}
	want = []int{128, 60, 0, 0}
	if !intsEqual(msg, want) {
		t.Errorf("row 1 message = %v, want %v", msg, want)
	}

	if m.HasNext() {
		t.Error("should have no more rows after draining both")
	}
	if _, err := m.GetAsMessage(); err == nil {
		t.Error("GetAsMessage() past the end should error")
	}
}

func TestLockedModeRejectsMutation(t *testing.T) {
	template := newTestGeVoOut() // locked by construction

	if !template.Locked() {
		t.Fatal("catalog template must be locked")
	}

	err := template.SetIndexesWithLabAndVal("Velocity", 110, nil)
	if !errors.Is(err, ErrModeLocked) {
		t.Errorf("mutating a locked template: got %v, want ErrModeLocked", err)
	}

	unlocked := template.Clone(false)
	if unlocked.Locked() {
		t.Fatal("Clone(false) must produce an unlocked instance")
	}
	if err := unlocked.SetIndexesWithLabAndVal("Velocity", 110, nil); err != nil {
		t.Errorf("mutating unlocked clone: unexpected error %v", err)
	}
}

// TestIndexesRoundTrip checks that GetIndexes/Clone preserve a mode's
// column values unchanged.
func TestIndexesRoundTrip(t *testing.T) {
	template := newTestGeVoOut()
	custom := Indexes{{0, 2, 2, 1, 1}, {1, 0, 0, 0, 0}}

	clone := template.CloneWithIndexes(custom)
	got := clone.GetIndexes()

	if len(got) != len(custom) {
		t.Fatalf("GetIndexes() length = %d, want %d", len(got), len(custom))
	}
	for r := range custom {
		if !intsEqual(got[r], custom[r]) {
			t.Errorf("row %d = %v, want %v", r, got[r], custom[r])
		}
	}
}

func TestUpdateOffsetsWithLabWrapsToOne(t *testing.T) {
	m := newTestGeVoOut().Clone(false)
	m.ResetOffsets(1)

	if err := m.UpdateOffsetsWithLab("Velocity", 10); err != nil {
		t.Fatalf("UpdateOffsetsWithLab() error: %v", err)
	}
	idx, _ := m.labelIndex("Velocity")
	if off := m.Offsets[idx]; off != 1 {
		t.Errorf("offset after overflow = %d, want wrap to 1", off)
	}
}

func TestUnknownLabelReturnsErrLabelNotFound(t *testing.T) {
	m := newTestGeVoOut().Clone(false)
	if err := m.UpdateOffsetsWithLab("Nonexistent", 1); !errors.Is(err, ErrLabelNotFound) {
		t.Errorf("got %v, want ErrLabelNotFound", err)
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
