package preset

import (
	"github.com/matykiewicz/seqtext/engine"
	"github.com/matykiewicz/seqtext/mapping"
	"github.com/matykiewicz/seqtext/modes"
)

// ToMappingsDoc converts live Mapping Registry connections into their
// document shape.
func ToMappingsDoc(name string, conns []mapping.Conn) MMappings {
	doc := MMappings{Name: name, Conns: make([]ConnDoc, len(conns))}
	for i, c := range conns {
		doc.Conns[i] = ConnDoc{
			MidiID:      c.MidiID,
			PortName:    c.PortName,
			Channel:     c.Channel,
			IsOut:       c.IsOut,
			Instruments: append([]string(nil), c.Instruments...),
		}
	}
	return doc
}

// FromMappingsDoc converts a loaded document into registry connections.
func FromMappingsDoc(doc MMappings) []mapping.Conn {
	conns := make([]mapping.Conn, len(doc.Conns))
	for i, c := range doc.Conns {
		conns[i] = mapping.Conn{
			MidiID:      c.MidiID,
			PortName:    c.PortName,
			Channel:     c.Channel,
			IsOut:       c.IsOut,
			Instruments: append([]string(nil), c.Instruments...),
		}
	}
	return conns
}

// ToOutFunctionalityDoc strips an OutMode's internal exe/locked state
// and serializes its remaining fields -- here structural, since the
// document type simply has no field to carry them.
func ToOutFunctionalityDoc(m *modes.OutMode) MOutFunctionality {
	data := make([][]string, len(m.Data))
	for i, col := range m.Data {
		data[i] = append([]string(nil), col...)
	}
	return MOutFunctionality{
		Name:        m.Name,
		Labels:      append([]string(nil), m.Labels...),
		Data:        data,
		Offsets:     append([]int(nil), m.Offsets...),
		Indexes:     [][]int(m.GetIndexes().Clone()),
		VisInd:      m.VisInd,
		ButInd:      m.ButInd,
		Instruments: append([]string(nil), m.Instruments...),
	}
}

// FromOutFunctionalityDoc reconstructs a locked catalog template.
func FromOutFunctionalityDoc(d MOutFunctionality) *modes.OutMode {
	return modes.NewOutMode(d.Name, d.Labels, d.Data, modes.Indexes(d.Indexes), d.VisInd, d.ButInd, d.Instruments)
}

// ToInFunctionalityDoc serializes an InMode template, encoding its
// Predicate matrix into tokens (modes.EncodePredicate).
func ToInFunctionalityDoc(m *modes.InMode) MInFunctionality {
	inRules := make([][]string, len(m.InRules))
	for i, row := range m.InRules {
		tokens := make([]string, len(row))
		for j, p := range row {
			tokens[j] = modes.EncodePredicate(p)
		}
		inRules[i] = tokens
	}
	outRules := make([]OutRuleDoc, len(m.OutRules))
	for i, r := range m.OutRules {
		outRules[i] = OutRuleDoc{OutModeName: r.OutModeName, MidiID: r.MidiID, Channel: r.Channel}
	}
	return MInFunctionality{
		Name:        m.Name,
		InRules:     inRules,
		OutRules:    outRules,
		Instruments: append([]string(nil), m.Instruments...),
	}
}

// FromInFunctionalityDoc reconstructs a locked In Mode catalog template.
func FromInFunctionalityDoc(d MInFunctionality) (*modes.InMode, error) {
	inRules := make([][]modes.Predicate, len(d.InRules))
	for i, row := range d.InRules {
		predicates := make([]modes.Predicate, len(row))
		for j, token := range row {
			p, err := modes.DecodePredicate(token)
			if err != nil {
				return nil, err
			}
			predicates[j] = p
		}
		inRules[i] = predicates
	}
	outRules := make([]modes.OutRule, len(d.OutRules))
	for i, r := range d.OutRules {
		outRules[i] = modes.OutRule{OutModeName: r.OutModeName, MidiID: r.MidiID, Channel: r.Channel}
	}
	return modes.NewInModeTemplate(d.Name, inRules, outRules, d.Instruments), nil
}

// ToMusicDoc serializes a Pattern Store dump.
func ToMusicDoc(name string, dump map[engine.StoreKey]modes.Indexes) MMusic {
	doc := MMusic{Name: name, Slots: make([]MusicSlot, 0, len(dump))}
	for key, ix := range dump {
		doc.Slots = append(doc.Slots, MusicSlot{
			Midi: key.Midi, Channel: key.Channel, Part: key.Part, Step: key.Step, Mode: key.Mode,
			Indexes: [][]int(ix.Clone()),
		})
	}
	return doc
}

// FromMusicDoc reconstructs a Pattern Store load map.
func FromMusicDoc(doc MMusic) map[engine.StoreKey]modes.Indexes {
	out := make(map[engine.StoreKey]modes.Indexes, len(doc.Slots))
	for _, slot := range doc.Slots {
		key := engine.StoreKey{Midi: slot.Midi, Channel: slot.Channel, Part: slot.Part, Step: slot.Step, Mode: slot.Mode}
		out[key] = modes.Indexes(slot.Indexes)
	}
	return out
}
