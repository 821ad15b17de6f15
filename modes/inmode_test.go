package modes

import (
	"testing"
	"time"
)

// newTestGeVoOutIdentity builds an out mode whose Key/Velocity/Length
// columns are identity-indexed (domain[i] == i), matching how
// scenarios express rows as raw byte values.
func newTestGeVoOutIdentity() *OutMode {
	labels := []string{"Code", "Key", "Velocity", "Length"}
	mkDomain := func(n int) []string {
		d := make([]string, n)
		for i := range d {
			d[i] = itoa(i)
		}
		return d
	}
	data := [][]string{mkDomain(256), mkDomain(128), mkDomain(128), mkDomain(128)}
	indexes := Indexes{{144, 0, 0, 0}}
	return NewOutMode("GeVo1Out", labels, data, indexes, [2]int{1, 0}, [2]int{1, 0}, []string{"Generic"})
}

func itoa(i int) string {
	// tiny local helper to avoid importing strconv just for this.
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// TestInModeDurationScenario checks that a note-on followed by a
// note-off 0.5s later at 60 BPM / n_quants=4 yields Length=2
// (ceil(0.5/0.25)).
func TestInModeDurationScenario(t *testing.T) {
	template := NewInModeTemplate(
		"GeVo1In",
		[][]Predicate{
			{Equal(0x90), Wildcard{}, Wildcard{}},
			{Equal(0x80), MatchPrevious{}, Wildcard{}},
		},
		[]OutRule{{OutModeName: "GeVo1Out", MidiID: -1, Channel: -1}, {OutModeName: "", MidiID: -1, Channel: -1}},
		[]string{"Generic"},
	)

	in := template.NewIn()

	t1 := time.Now()
	if result := in.SetWithMessageAndTime([5]int{0x90, 60, 100, 0, 1}, t1, 0); result != 1 {
		t.Fatalf("first message result = %d, want 1 (accept-and-continue)", result)
	}

	// Neither predicate in this rule row is AtLeastOrRotate, so the
	// combined result stays +1 -- rule-list completion is detected via
	// HasNext(), not via the accept-and-rotate sign flip.
	t2 := t1.Add(500 * time.Millisecond)
	if result := in.SetWithMessageAndTime([5]int{0x80, 60, 0, 0, 1}, t2, 500*time.Millisecond); result != 1 {
		t.Fatalf("second message result = %d, want 1 (accept-and-continue)", result)
	}

	if in.HasNext() {
		t.Fatal("in-mode should have completed its rule list")
	}

	catalog := map[string]*OutMode{"GeVo1Out": newTestGeVoOutIdentity()}
	lookup := func(name string) (*OutMode, bool) { m, ok := catalog[name]; return m, ok }

	quantInterval := 250 * time.Millisecond
	result, err := in.ConvertWithOutModesAndTempo(lookup, quantInterval, 32)
	if err != nil {
		t.Fatalf("ConvertWithOutModesAndTempo() error: %v", err)
	}

	lengthIdx, _ := result.Out.labelIndex("Length")
	gotLength := result.Out.Indexes[0][lengthIdx]
	if gotLength != 2 {
		t.Errorf("computed Length = %d, want 2", gotLength)
	}

	keyIdx, _ := result.Out.labelIndex("Key")
	if got := result.Out.Indexes[0][keyIdx]; got != 60 {
		t.Errorf("Key = %d, want 60", got)
	}
	velIdx, _ := result.Out.labelIndex("Velocity")
	if got := result.Out.Indexes[0][velIdx]; got != 100 {
		t.Errorf("Velocity = %d, want 100", got)
	}
}

func TestRuleDSLAcceptAndRotateSignFlip(t *testing.T) {
	row := []Predicate{AtLeastOrRotate(0x80)}
	if got := EvaluateRow(row, [5]int{0x90, 0, 0, 0, 0}, [5]int{}); got != -1 {
		t.Errorf("AtLeastOrRotate match = %d, want -1", got)
	}
	if got := EvaluateRow(row, [5]int{0x10, 0, 0, 0, 0}, [5]int{}); got != 0 {
		t.Errorf("AtLeastOrRotate below threshold = %d, want 0", got)
	}
}

func TestOutRulesRotateOnFinalize(t *testing.T) {
	template := NewInModeTemplate(
		"Rotator",
		[][]Predicate{{AtLeastOrRotate(1)}},
		[]OutRule{{OutModeName: "A"}, {OutModeName: "B"}},
		nil,
	)
	in := template.NewIn()
	result := in.SetWithMessageAndTime([5]int{1, 0, 0, 0, 0}, time.Now(), 0)
	if result != -1 {
		t.Fatalf("AtLeastOrRotate single-row match = %d, want -1 (finalize)", result)
	}
	if in.OutRules[0].OutModeName != "B" {
		t.Errorf("OutRules head after rotation = %q, want %q", in.OutRules[0].OutModeName, "B")
	}
}
