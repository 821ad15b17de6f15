// Package preset implements Preset I/O: loading
// and saving the four self-describing document shapes a sequencer
// session is built from.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPresetTypeMismatch is returned when a document on disk does not
// structurally match the shape its type tag promises.
var ErrPresetTypeMismatch = errors.New("preset: document shape does not match its type")

// ErrNotFound is returned when a named preset does not exist.
var ErrNotFound = errors.New("preset: not found")

const (
	mappingsDir         = "MMappings"
	outFunctionalityDir = "MOutFunctionality"
	inFunctionalityDir  = "MInFunctionality"
	musicDir            = "MMusic"
)

// ConnDoc is one Mapping Registry connection slot, as serialized.
type ConnDoc struct {
	MidiID      int      `yaml:"midi_id"`
	PortName    string   `yaml:"port_name"`
	Channel     int      `yaml:"channel"`
	IsOut       bool     `yaml:"is_out"`
	Instruments []string `yaml:"instruments"`
}

// MMappings is the Mapping Registry document shape.
type MMappings struct {
	Name  string    `yaml:"name"`
	Conns []ConnDoc `yaml:"conns"`
}

// MOutFunctionality is a single Out Mode catalog entry, as serialized.
type MOutFunctionality struct {
	Name        string     `yaml:"name"`
	Labels      []string   `yaml:"labels"`
	Data        [][]string `yaml:"data"`
	Offsets     []int      `yaml:"offsets"`
	Indexes     [][]int    `yaml:"indexes"`
	VisInd      [2]int     `yaml:"vis_ind"`
	ButInd      [2]int     `yaml:"but_ind"`
	Instruments []string   `yaml:"instruments"`
}

// OutRuleDoc is one In Mode out-rule entry, as serialized.
type OutRuleDoc struct {
	OutModeName string `yaml:"out_mode_name"`
	MidiID      int    `yaml:"midi_id"`
	Channel     int    `yaml:"channel"`
}

// MInFunctionality is a single In Mode catalog entry, as serialized.
// InRules is a matrix of predicate tokens (see EncodePredicate /
// DecodePredicate in rules.go) rather than the live Predicate
// interface, since YAML has no notion of a Go interface value.
type MInFunctionality struct {
	Name        string       `yaml:"name"`
	InRules     [][]string   `yaml:"in_rules"`
	OutRules    []OutRuleDoc `yaml:"out_rules"`
	Instruments []string     `yaml:"instruments"`
}

// MusicSlot is one populated Pattern Store slot, as serialized.
type MusicSlot struct {
	Midi    int     `yaml:"midi"`
	Channel int     `yaml:"channel"`
	Part    int     `yaml:"part"`
	Step    int     `yaml:"step"`
	Mode    string  `yaml:"mode"`
	Indexes [][]int `yaml:"indexes"`
}

// MMusic is the Pattern Store document shape.
type MMusic struct {
	Name  string      `yaml:"name"`
	Slots []MusicSlot `yaml:"slots"`
}

// Store is the directory root presets are read from and written to,
// one subdirectory per document shape.
type Store struct {
	baseDir string
}

// NewStore roots a Store at dir.
func NewStore(dir string) *Store {
	return &Store{baseDir: dir}
}

func (s *Store) dirFor(kind string) string {
	return filepath.Join(s.baseDir, kind)
}

func sanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "unnamed"
	}
	return sb.String()
}

func (s *Store) pathFor(kind, name string) string {
	return filepath.Join(s.dirFor(kind), sanitizeFilename(name)+".yaml")
}

func saveDoc(path string, dir string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("preset: create directory %q: %w", dir, err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("preset: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("preset: write %q: %w", path, err)
	}
	return nil
}

func loadDoc(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("preset: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("preset: parse %q: %w", path, err)
	}
	return nil
}

func listDoc(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("preset: read directory %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	return names, nil
}

func deleteDoc(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("preset: delete %q: %w", path, err)
	}
	return nil
}

// SaveMappings writes a mappings document, overwriting any existing
// file with the same name.
func (s *Store) SaveMappings(doc MMappings) error {
	return saveDoc(s.pathFor(mappingsDir, doc.Name), s.dirFor(mappingsDir), doc)
}

// LoadMappings reads a mappings document by name, failing with
// ErrPresetTypeMismatch if the document has no name (the minimal
// structural check available for a document this permissive; the
// connection slots are not checked).
func (s *Store) LoadMappings(name string) (MMappings, error) {
	var doc MMappings
	if err := loadDoc(s.pathFor(mappingsDir, name), &doc); err != nil {
		return MMappings{}, err
	}
	if doc.Name == "" {
		return MMappings{}, fmt.Errorf("%w: %q has no name field", ErrPresetTypeMismatch, name)
	}
	return doc, nil
}

// ListMappings lists every saved mappings document name.
func (s *Store) ListMappings() ([]string, error) { return listDoc(s.dirFor(mappingsDir)) }

// DeleteMappings deletes a saved mappings document.
func (s *Store) DeleteMappings(name string) error { return deleteDoc(s.pathFor(mappingsDir, name)) }

// SaveOutFunctionality writes an out-mode document.
func (s *Store) SaveOutFunctionality(doc MOutFunctionality) error {
	return saveDoc(s.pathFor(outFunctionalityDir, doc.Name), s.dirFor(outFunctionalityDir), doc)
}

// LoadOutFunctionality reads an out-mode document by name.
func (s *Store) LoadOutFunctionality(name string) (MOutFunctionality, error) {
	var doc MOutFunctionality
	if err := loadDoc(s.pathFor(outFunctionalityDir, name), &doc); err != nil {
		return MOutFunctionality{}, err
	}
	if len(doc.Labels) == 0 || len(doc.Data) != len(doc.Labels) {
		return MOutFunctionality{}, fmt.Errorf("%w: %q", ErrPresetTypeMismatch, name)
	}
	return doc, nil
}

// ListOutFunctionality lists every saved out-mode document name.
func (s *Store) ListOutFunctionality() ([]string, error) {
	return listDoc(s.dirFor(outFunctionalityDir))
}

// DeleteOutFunctionality deletes a saved out-mode document.
func (s *Store) DeleteOutFunctionality(name string) error {
	return deleteDoc(s.pathFor(outFunctionalityDir, name))
}

// SaveInFunctionality writes an in-mode document.
func (s *Store) SaveInFunctionality(doc MInFunctionality) error {
	return saveDoc(s.pathFor(inFunctionalityDir, doc.Name), s.dirFor(inFunctionalityDir), doc)
}

// LoadInFunctionality reads an in-mode document by name.
func (s *Store) LoadInFunctionality(name string) (MInFunctionality, error) {
	var doc MInFunctionality
	if err := loadDoc(s.pathFor(inFunctionalityDir, name), &doc); err != nil {
		return MInFunctionality{}, err
	}
	if len(doc.InRules) == 0 || len(doc.OutRules) == 0 {
		return MInFunctionality{}, fmt.Errorf("%w: %q", ErrPresetTypeMismatch, name)
	}
	return doc, nil
}

// ListInFunctionality lists every saved in-mode document name.
func (s *Store) ListInFunctionality() ([]string, error) {
	return listDoc(s.dirFor(inFunctionalityDir))
}

// DeleteInFunctionality deletes a saved in-mode document.
func (s *Store) DeleteInFunctionality(name string) error {
	return deleteDoc(s.pathFor(inFunctionalityDir, name))
}

// SaveMusic writes a Pattern Store snapshot. The engine never calls
// this during playback: writes occur only from
// explicit save commands.
func (s *Store) SaveMusic(doc MMusic) error {
	return saveDoc(s.pathFor(musicDir, doc.Name), s.dirFor(musicDir), doc)
}

// LoadMusic reads a Pattern Store snapshot by name.
func (s *Store) LoadMusic(name string) (MMusic, error) {
	var doc MMusic
	if err := loadDoc(s.pathFor(musicDir, name), &doc); err != nil {
		return MMusic{}, err
	}
	return doc, nil
}

// ListMusic lists every saved music document name.
func (s *Store) ListMusic() ([]string, error) { return listDoc(s.dirFor(musicDir)) }

// DeleteMusic deletes a saved music document.
func (s *Store) DeleteMusic(name string) error { return deleteDoc(s.pathFor(musicDir, name)) }
