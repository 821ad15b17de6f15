package translate

import (
	"testing"
	"time"

	"github.com/matykiewicz/seqtext/modes"
)

func TestNormalizeRewritesToFiveElements(t *testing.T) {
	got := Normalize(RawMessage{Status: 0x91, Data1: 60, Data2: 100})
	want := [5]int{0x90, 60, 100, 0, 2}
	if got != want {
		t.Errorf("Normalize(0x91,60,100) = %v, want %v", got, want)
	}
}

// TestTranslateDurationScenario checks that a note-on followed by a
// note-off on the same key produces a duration-bearing out mode.
func TestTranslateDurationScenario(t *testing.T) {
	catalog := modes.NewCatalog()
	catalog.RegisterOut(modes.DefaultOutMode("GeVo1Out", "Chromatic", []string{"Generic"}))
	catalog.RegisterIn(modes.DefaultInMode("GeVo1In", "GeVo1Out", []string{"Generic"}))

	template, _ := catalog.LookupIn("GeVo1In")
	tr := NewTranslator(0, catalog, func() time.Duration { return 250 * time.Millisecond }, 32,
		func() int { return 0 }, func() int { return 1 })
	tr.Attach(template)

	t1 := time.Now()
	yields := tr.TranslateInsToOut([]RawMessage{
		{Status: 0x90, Data1: 60, Data2: 100, TNow: t1, TDelta: 0},
		{Status: 0x80, Data1: 60, Data2: 0, TNow: t1.Add(500 * time.Millisecond), TDelta: 500 * time.Millisecond},
	})

	if len(yields) != 1 {
		t.Fatalf("expected exactly one yield, got %d", len(yields))
	}
	y := yields[0]
	if y.Out.Name != "GeVo1Out" {
		t.Errorf("yielded out mode name = %q, want GeVo1Out", y.Out.Name)
	}

	keyIdx, velIdx, lenIdx := -1, -1, -1
	for i, l := range y.Out.Labels {
		switch l {
		case "Key":
			keyIdx = i
		case "Velocity":
			velIdx = i
		case "Length":
			lenIdx = i
		}
	}
	row := y.Out.Indexes[0]
	keyVal := y.Out.Data[keyIdx][row[keyIdx]]
	velVal := y.Out.Data[velIdx][row[velIdx]]
	lenVal := y.Out.Data[lenIdx][row[lenIdx]]
	if keyVal != "60" || velVal != "100" || lenVal != "2" {
		t.Errorf("yielded row = Key=%s Velocity=%s Length=%s, want Key=60 Velocity=100 Length=2", keyVal, velVal, lenVal)
	}
}

func TestAllowedInModesFilterBlocksAttach(t *testing.T) {
	catalog := modes.NewCatalog()
	catalog.RegisterIn(modes.DefaultInMode("GeVo1In", "GeVo1Out", []string{"Generic"}))
	template, _ := catalog.LookupIn("GeVo1In")

	tr := NewTranslator(0, catalog, func() time.Duration { return time.Second }, 32, func() int { return 0 }, func() int { return 1 })
	tr.SetAllowedInModes([]string{"SomeOtherMode"})
	tr.Attach(template)

	if len(tr.Active()) != 0 {
		t.Error("Attach should be blocked by the allowed-in-modes filter")
	}
}
