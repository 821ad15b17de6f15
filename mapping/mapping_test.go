package mapping

import (
	"testing"

	"github.com/matykiewicz/seqtext/modes"
)

func TestBindPortsFirstUnboundSlotWins(t *testing.T) {
	r := New(4)
	r.Load([]Conn{
		{MidiID: 0, PortName: "synth", Channel: 1, IsOut: true, Instruments: []string{"Generic"}},
		{MidiID: 1, PortName: "synth", Channel: 2, IsOut: true, Instruments: []string{"Generic"}},
	})

	ports := []PhysicalEndpoint{{PortID: 5, PortName: "synth", IsOut: true}}
	bound := r.InitMIDIOuts(ports)

	if got, ok := bound[0]; !ok || got.PortID != 5 {
		t.Fatalf("first slot (midi=0) should bind to the single matching port, got %+v ok=%v", got, ok)
	}
	if _, ok := bound[1]; ok {
		t.Error("second slot (midi=1) should remain unbound, only one physical port was available")
	}
}

func TestInitMIDIOutsDropsUnmatchedPort(t *testing.T) {
	r := New(2)
	r.Load([]Conn{{MidiID: 0, PortName: "synth", Channel: 1, IsOut: true}})

	ports := []PhysicalEndpoint{{PortID: 0, PortName: "other-device", IsOut: true}}
	bound := r.InitMIDIOuts(ports)

	if len(bound) != 0 {
		t.Errorf("unmatched port should be dropped, got %v", bound)
	}
}

func TestToOutDictInvertsRegistryThroughCatalog(t *testing.T) {
	r := New(2)
	r.Load([]Conn{
		{MidiID: 2, PortName: "bass", Channel: 1, IsOut: true, Instruments: []string{"VolcaBass"}},
	})

	catalog := modes.NewCatalog()
	catalog.RegisterOut(modes.DefaultOutMode("VolcaOut", "Chromatic", []string{"VolcaBass"}))
	catalog.RegisterOut(modes.DefaultOutMode("GenericOut", "Chromatic", []string{"Generic"}))

	dict := r.ToOutDict(catalog)

	modesForChan1, ok := dict[2][1]
	if !ok {
		t.Fatal("expected an entry for midi=2, channel=1")
	}
	if len(modesForChan1) != 1 || modesForChan1[0] != "VolcaOut" {
		t.Errorf("ToOutDict()[2][1] = %v, want [VolcaOut]", modesForChan1)
	}
}

// TestMappingFilterScenario checks that a mode tagged only
// "VolcaBass" recorded into midi=2, but whose mapping slot for
// midi=2 lists only "Generic", is not surfaced by ToOutDict for
// (2, channel).
func TestMappingFilterScenario(t *testing.T) {
	r := New(1)
	r.Load([]Conn{{MidiID: 2, PortName: "synth", Channel: 1, IsOut: true, Instruments: []string{"Generic"}}})

	catalog := modes.NewCatalog()
	catalog.RegisterOut(modes.DefaultOutMode("VolcaOut", "Chromatic", []string{"VolcaBass"}))

	dict := r.ToOutDict(catalog)
	if modesForChan1 := dict[2][1]; len(modesForChan1) != 0 {
		t.Errorf("expected no allowed modes for midi=2, got %v", modesForChan1)
	}
}
