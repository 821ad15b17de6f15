// Package commands is the REPL/UI layer: it parses user command
// lines, drives the Settings State's cursors, and writes edits onto
// the Command Channel for the Engine Loop to apply.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matykiewicz/seqtext/ai"
	"github.com/matykiewicz/seqtext/clock"
	"github.com/matykiewicz/seqtext/command"
	"github.com/matykiewicz/seqtext/engine"
	"github.com/matykiewicz/seqtext/mapping"
	"github.com/matykiewicz/seqtext/modes"
	"github.com/matykiewicz/seqtext/preset"
	"github.com/matykiewicz/seqtext/settings"
)

// Handler parses command lines and drives the Settings State/Command
// Channel boundary. Per-step edits travel through cmd and are written
// by the Engine Loop; copypart (Store.CopyPart) and "load music"
// (Store.Load) write to the Pattern Store directly.
type Handler struct {
	state    *settings.State
	cmd      *command.Channel
	catalog  *modes.Catalog
	store    *engine.Store // "show" reads it; copypart and "load music" write it
	registry *mapping.Registry
	presets  *preset.Store
	clk      *clock.Clock
	loop     *engine.Loop
	ai       *ai.Client // nil when no API key is configured
	nParts   int
	nSteps   int
}

// New wires a Handler over the already-constructed components.
func New(state *settings.State, cmd *command.Channel, catalog *modes.Catalog, store *engine.Store, registry *mapping.Registry, presets *preset.Store, clk *clock.Clock, loop *engine.Loop, aiClient *ai.Client, nParts, nSteps int) *Handler {
	return &Handler{
		state:    state,
		cmd:      cmd,
		catalog:  catalog,
		store:    store,
		registry: registry,
		presets:  presets,
		clk:      clk,
		loop:     loop,
		ai:       aiClient,
		nParts:   nParts,
		nSteps:   nSteps,
	}
}

// ProcessCommand parses and executes a single command line.
func (h *Handler) ProcessCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		return h.handleShow(nil)
	}

	parts := strings.Fields(cmdLine)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "goto":
		return h.handleGoto(parts[1:])
	case "view":
		return h.handleView(parts[1:])
	case "set":
		return h.handleSet(parts[1:])
	case "mode":
		return h.handleMode(parts[1:])
	case "record":
		return h.handleToggle(settings.Record, parts[1:])
	case "copy":
		return h.handleToggle(settings.Copy, parts[1:])
	case "viewshow":
		return h.handleToggle(settings.ViewShow, parts[1:])
	case "playshow":
		return h.handleToggle(settings.PlayShow, parts[1:])
	case "playfunction":
		return h.handlePlayFunction(parts[1:])
	case "viewfunction":
		return h.handleViewFunction(parts[1:])
	case "tempo":
		return h.handleTempo(parts[1:])
	case "copypart":
		return h.handleCopyPart(parts[1:])
	case "map":
		return h.handleMap(parts[1:])
	case "mapshow":
		return h.handleMapShow(parts[1:])
	case "save":
		return h.handleSave(parts[1:])
	case "load":
		return h.handleLoad(parts[1:])
	case "list":
		return h.handleList(parts[1:])
	case "delete":
		return h.handleDelete(parts[1:])
	case "ai":
		return h.handleAI(parts[1:])
	case "show":
		return h.handleShow(parts[1:])
	case "help":
		return h.handleHelp(parts[1:])
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (h *Handler) handleHelp(parts []string) error {
	helpText := `Available commands:
  goto <midi> <channel> <part> <step> [mode]  Move the edit cursor (1-based)
  view <midi> <channel> <part> <step> [mode]  Move the view cursor (1-based)
  set <label> <value>                         Edit a column at the edit cursor (e.g. 'set Note C4')
  mode <name>                                 Select the edit cursor's out mode
  record on|off                                Toggle RECORD
  copy on|off                                  Toggle COPY
  viewshow on|off                              Toggle VIEW_SHOW
  playshow on|off                              Toggle PLAY_SHOW
  playfunction NA|Part|Parts|All               Set which parts are playing
  viewfunction Only|Rec|Play                   Set the view function
  tempo <bpm>                                  Change tempo
  copypart <midi> <channel> <from> <to> [reverse]  Copy one part onto another
  map <conn> <field> <value>                   Edit a Mapping Registry slot
  mapshow                                      List mapping connections
  save <kind> <name>                           Save a preset (kind: mapping|outmode|inmode|music)
  load <kind> <name>                           Load a preset
  list <kind>                                  List saved presets of a kind
  delete <kind> <name>                         Delete a saved preset
  ai <question or request>                     Ask the AI assistant
  show                                         Display the edit cursor's current slot
  help                                         Show this help message
  quit                                         Exit the program
  <enter>                                      Same as 'show'`
	fmt.Println(helpText)
	return nil
}

// ReadLoop reads commands from reader until "quit" or EOF.
func (h *Handler) ReadLoop(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)

	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(strings.ToLower(line)) == "quit" {
			return nil
		}

		if err := h.ProcessCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}
