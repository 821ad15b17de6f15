package commands

import (
	"fmt"
	"strings"

	"github.com/matykiewicz/seqtext/preset"
	"github.com/matykiewicz/seqtext/settings"
)

// handleSave: save <kind> <name> -- writes a preset document of one
// of the four shapes.
func (h *Handler) handleSave(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: save <kind> <name> (kind: mapping|outmode|inmode|music)")
	}
	kind, name := strings.ToLower(parts[0]), parts[1]
	switch kind {
	case "mapping":
		doc := preset.ToMappingsDoc(name, h.registry.Conns())
		if err := h.presets.SaveMappings(doc); err != nil {
			return err
		}
	case "outmode":
		cursor := h.state.EditCursor()
		modeName, err := h.state.IndexValue(settings.EOMode, cursor.Mode)
		if err != nil {
			return err
		}
		template, ok := h.catalog.LookupOut(modeName)
		if !ok {
			return fmt.Errorf("unknown out mode %q", modeName)
		}
		if err := h.presets.SaveOutFunctionality(preset.ToOutFunctionalityDoc(template)); err != nil {
			return err
		}
	case "inmode":
		template, ok := h.catalog.LookupIn(name)
		if !ok {
			return fmt.Errorf("unknown in mode %q", name)
		}
		if err := h.presets.SaveInFunctionality(preset.ToInFunctionalityDoc(template)); err != nil {
			return err
		}
	case "music":
		doc := preset.ToMusicDoc(name, h.store.Dump())
		if err := h.presets.SaveMusic(doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kind %q (want mapping|outmode|inmode|music)", kind)
	}
	fmt.Printf("Saved %s %q\n", kind, name)
	return nil
}

// handleLoad: load <kind> <name>.
func (h *Handler) handleLoad(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: load <kind> <name> (kind: mapping|outmode|inmode|music)")
	}
	kind, name := strings.ToLower(parts[0]), parts[1]
	switch kind {
	case "mapping":
		doc, err := h.presets.LoadMappings(name)
		if err != nil {
			return err
		}
		h.registry.Load(preset.FromMappingsDoc(doc))
	case "outmode":
		doc, err := h.presets.LoadOutFunctionality(name)
		if err != nil {
			return err
		}
		h.catalog.RegisterOut(preset.FromOutFunctionalityDoc(doc))
	case "inmode":
		doc, err := h.presets.LoadInFunctionality(name)
		if err != nil {
			return err
		}
		m, err := preset.FromInFunctionalityDoc(doc)
		if err != nil {
			return err
		}
		h.catalog.RegisterIn(m)
	case "music":
		doc, err := h.presets.LoadMusic(name)
		if err != nil {
			return err
		}
		h.store.Load(preset.FromMusicDoc(doc))
	default:
		return fmt.Errorf("unknown kind %q (want mapping|outmode|inmode|music)", kind)
	}
	fmt.Printf("Loaded %s %q\n", kind, name)
	return nil
}

// handleList: list <kind>.
func (h *Handler) handleList(parts []string) error {
	if len(parts) != 1 {
		return fmt.Errorf("usage: list <kind> (kind: mapping|outmode|inmode|music)")
	}
	kind := strings.ToLower(parts[0])
	var names []string
	var err error
	switch kind {
	case "mapping":
		names, err = h.presets.ListMappings()
	case "outmode":
		names, err = h.presets.ListOutFunctionality()
	case "inmode":
		names, err = h.presets.ListInFunctionality()
	case "music":
		names, err = h.presets.ListMusic()
	default:
		return fmt.Errorf("unknown kind %q (want mapping|outmode|inmode|music)", kind)
	}
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("(no saved %s presets)\n", kind)
		return nil
	}
	for _, n := range names {
		fmt.Println(" ", n)
	}
	return nil
}

// handleDelete: delete <kind> <name>.
func (h *Handler) handleDelete(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: delete <kind> <name> (kind: mapping|outmode|inmode|music)")
	}
	kind, name := strings.ToLower(parts[0]), parts[1]
	var err error
	switch kind {
	case "mapping":
		err = h.presets.DeleteMappings(name)
	case "outmode":
		err = h.presets.DeleteOutFunctionality(name)
	case "inmode":
		err = h.presets.DeleteInFunctionality(name)
	case "music":
		err = h.presets.DeleteMusic(name)
	default:
		return fmt.Errorf("unknown kind %q (want mapping|outmode|inmode|music)", kind)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %s %q\n", kind, name)
	return nil
}
