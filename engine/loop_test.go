package engine

import (
	"testing"
	"time"

	"github.com/matykiewicz/seqtext/clock"
	"github.com/matykiewicz/seqtext/command"
	"github.com/matykiewicz/seqtext/dispatch"
	"github.com/matykiewicz/seqtext/mapping"
	"github.com/matykiewicz/seqtext/modes"
	"github.com/matykiewicz/seqtext/settings"
	"github.com/matykiewicz/seqtext/translate"
)

type capturedSend struct{ status, d1, d2 byte }

type fakeSender struct{ sent []capturedSend }

func (f *fakeSender) Send(status, d1, d2 byte) error {
	f.sent = append(f.sent, capturedSend{status, d1, d2})
	return nil
}

func newTestLoop(t *testing.T) (*Loop, *mapping.Registry, *modes.Catalog, *clock.Clock, *fakeSender) {
	t.Helper()
	catalog := modes.NewCatalog()
	catalog.RegisterOut(modes.DefaultOutMode("GeVo1Out", "Chromatic", []string{"Generic"}))
	catalog.RegisterIn(modes.DefaultInMode("GeVo1In", "GeVo1Out", []string{"Generic"}))

	registry := mapping.New(2)
	registry.Load([]mapping.Conn{{MidiID: 0, PortName: "synth", Channel: 1, IsOut: true, Instruments: []string{"Generic"}}})

	state := settings.Init(1, 1, 1, 4, 16, catalog.OutNames(), catalog.InNames())

	store := NewStore()
	outDict := registry.ToOutDict(catalog)
	store.InitFromMapping(outDict, catalog, 4, 16)

	clk := clock.New(60, 4, 16, 4, 0)
	clk.Sync(true)

	cmd := command.NewChannel(4)
	loop := NewLoop(store, state, registry, catalog, clk, cmd, 4, 16, time.Millisecond)

	sender := &fakeSender{}
	d := dispatch.NewDispatcher(0, clk, sender)
	loop.AttachDispatcher(0, d)

	return loop, registry, catalog, clk, sender
}

func TestApplyModeEnvelopeWritesAtEditCursorAndAdvancesOnRecord(t *testing.T) {
	loop, _, catalog, _, _ := newTestLoop(t)

	template, _ := catalog.LookupOut("GeVo1Out")
	if err := loop.state.SetInd(settings.Record, settings.On); err != nil {
		t.Fatalf("SetInd(Record, On): %v", err)
	}

	loop.cmd.Send(command.Envelope{Mode: &command.ModeEnvelope{
		Name:    "GeVo1Out",
		Indexes: template.GetIndexes().Clone(),
	}})

	loop.Iterate(time.Now())

	got, ok := loop.store.Get(0, 1, 0, 0, "GeVo1Out")
	if !ok {
		t.Fatal("expected the Pattern Store slot (0,1,0,0,GeVo1Out) to be populated after the envelope was drained")
	}
	if got[0][1] != template.GetIndexes()[0][1] {
		t.Errorf("stored indexes = %v, want a copy of the template's", got)
	}
	if loop.state.EditCursor().Step != 1 {
		t.Errorf("edit step after a RECORD=ON write = %d, want 1 (advanced)", loop.state.EditCursor().Step)
	}
}

// TestIterateSchedulesAndEmitsPlayingPart checks that a recorded note
// at (midi=0, ch=1, part=0, step=0) is picked up by SetPlayingParts
// and emitted.
func TestIterateSchedulesAndEmitsPlayingPart(t *testing.T) {
	loop, _, catalog, clk, sender := newTestLoop(t)

	template, _ := catalog.LookupOut("GeVo1Out")
	loop.store.Put(0, 1, 0, 0, "GeVo1Out", template.GetIndexes().Clone())
	loop.SetPlayingParts(0, []int{0})

	loop.Iterate(clk.ClockSync())

	if len(sender.sent) != 1 {
		t.Fatalf("expected one emitted message, got %d", len(sender.sent))
	}
	if sender.sent[0].status&0xF0 != 0x90 {
		t.Errorf("emitted status = %#x, want a note-on", sender.sent[0].status)
	}
}

type fakeRawSource struct{ messages []translate.RawMessage }

func (f *fakeRawSource) Drain() []translate.RawMessage {
	out := f.messages
	f.messages = nil
	return out
}

func TestPollTranslatorsOnlyRecordsWhenRecordIsOn(t *testing.T) {
	loop, _, catalog, _, _ := newTestLoop(t)

	inTemplate, _ := catalog.LookupIn("GeVo1In")
	tr := translate.NewTranslator(0, catalog, func() time.Duration { return 250 * time.Millisecond }, 32,
		func() int { return 0 }, func() int { return 1 })
	tr.Attach(inTemplate)

	source := &fakeRawSource{}
	loop.AttachTranslator(0, tr, source)

	t1 := time.Now()
	source.messages = []translate.RawMessage{
		{Status: 0x90, Data1: 60, Data2: 100, TNow: t1},
		{Status: 0x80, Data1: 60, Data2: 0, TNow: t1.Add(500 * time.Millisecond), TDelta: 500 * time.Millisecond},
	}

	loop.Iterate(time.Now())

	// InitFromMapping pre-creates the slot with the template's indexes,
	// so a recorded yield would show up as changed contents, not as a new slot.
	outTemplate, _ := catalog.LookupOut("GeVo1Out")
	want := outTemplate.GetIndexes()
	got, ok := loop.store.Get(0, 1, 0, 0, "GeVo1Out")
	if !ok {
		t.Fatal("expected the pre-initialized slot (0,1,0,0,GeVo1Out) to exist")
	}
	for r := range want {
		for c := range want[r] {
			if got[r][c] != want[r][c] {
				t.Fatalf("translator yield should not be recorded to the store while RECORD=OFF: slot = %v, want template %v", got, want)
			}
		}
	}
}
