package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"github.com/matykiewicz/seqtext/ai"
	"github.com/matykiewicz/seqtext/clock"
	"github.com/matykiewicz/seqtext/command"
	"github.com/matykiewicz/seqtext/commands"
	"github.com/matykiewicz/seqtext/dispatch"
	"github.com/matykiewicz/seqtext/engine"
	"github.com/matykiewicz/seqtext/mapping"
	"github.com/matykiewicz/seqtext/midi"
	"github.com/matykiewicz/seqtext/modes"
	"github.com/matykiewicz/seqtext/preset"
	"github.com/matykiewicz/seqtext/settings"
	"github.com/matykiewicz/seqtext/translate"
)

const (
	nChannels = 16
	nParts    = 4
	nSteps    = 16
	nQuants   = 4
	tempoBPM  = 120
	maxConns  = 8
)

// isTerminal returns true if stdin is a terminal (TTY).
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func main() {
	mode := flag.String("mode", "headless", "app|presets|headless")
	dir := flag.String("dir", "./presets", "preset root directory")
	scriptFile := flag.String("script", "", "execute commands from file")
	debug := flag.Bool("debug", false, "passed to the engine loop's Start, which does not use it")
	flag.Parse()

	switch *mode {
	case "presets":
		if err := writeDefaultPresets(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing default presets: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default presets under %s\n", *dir)
		os.Exit(0)
	case "app", "headless":
		// fall through to normal startup
	default:
		fmt.Fprintf(os.Stderr, "Unknown -mode %q (want app|presets|headless)\n", *mode)
		os.Exit(1)
	}

	catalog := modes.DefaultCatalog()
	registry := mapping.New(maxConns)
	presets := preset.NewStore(*dir)

	outPorts := midi.ListOutPorts()
	inPorts := midi.ListInPorts()

	if doc, err := presets.LoadMappings("default"); err == nil {
		registry.Load(preset.FromMappingsDoc(doc))
	} else {
		registry.Load(defaultConns(outPorts, inPorts))
	}

	boundOuts := registry.InitMIDIOuts(outPorts)
	boundIns := registry.InitMIDIIns(inPorts)

	nMidiIns, nMidiOuts := len(inPorts), len(outPorts)
	if nMidiIns == 0 {
		nMidiIns = 1
	}
	if nMidiOuts == 0 {
		nMidiOuts = 1
	}

	state := settings.Init(nMidiIns, nMidiOuts, nChannels, nParts, nSteps, catalog.OutNames(), catalog.InNames())
	clk := clock.New(tempoBPM, nQuants, nSteps, nParts, 0)
	clk.Sync(true)

	store := engine.NewStore()
	store.InitFromMapping(registry.ToOutDict(catalog), catalog, nParts, nSteps)

	cmd := command.NewChannel(16)
	loop := engine.NewLoop(store, state, registry, catalog, clk, cmd, nParts, nSteps, 2*time.Millisecond)

	var outHandles []*midi.OutPort
	for midiID, port := range boundOuts {
		out, err := midi.OpenOut(port.PortID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening MIDI out port %q: %v\n", port.PortName, err)
			continue
		}
		outHandles = append(outHandles, out)
		loop.AttachDispatcher(midiID, dispatch.NewDispatcher(midiID, clk, out))
	}

	var inHandles []*midi.InPort
	for midiID, port := range boundIns {
		in, err := midi.OpenIn(port.PortID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening MIDI in port %q: %v\n", port.PortName, err)
			continue
		}
		inHandles = append(inHandles, in)
		tr := newTranslator(midiID, catalog, clk, state)
		loop.AttachTranslator(midiID, tr, in)
	}

	var aiClient *ai.Client
	if c, err := ai.NewFromEnv(); err == nil {
		aiClient = c
	}

	handler := commands.New(state, cmd, catalog, store, registry, presets, clk, loop, aiClient, nParts, nSteps)

	cleanup := func() {
		loop.Stop()
		for _, o := range outHandles {
			o.Close()
		}
		for _, i := range inHandles {
			i.Close()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cleanup()
		os.Exit(0)
	}()

	go loop.Start(*debug)
	defer cleanup()

	fmt.Println("Engine started. Type 'help' for commands, 'quit' to exit.")

	if *scriptFile != "" {
		f, err := os.Open(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script file: %v\n", err)
			os.Exit(2)
		}
		if err := handler.ReadLoop(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing script: %v\n", err)
		}
		f.Close()
		if isTerminal() {
			if err := readlineLoop(handler); err != nil {
				fmt.Fprintf(os.Stderr, "Error reading commands: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if isTerminal() {
		if err := readlineLoop(handler); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading commands: %v\n", err)
			os.Exit(1)
		}
	} else if err := handler.ReadLoop(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading commands: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Goodbye!")
}

// readlineLoop drives the REPL with line editing and history for
// interactive terminals.
func readlineLoop(handler *commands.Handler) error {
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		if strings.TrimSpace(strings.ToLower(line)) == "quit" {
			return nil
		}
		if err := handler.ProcessCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// newTranslator wires a per-input-port Input Translator, attaching
// every registered In Mode template. There's no per-connection
// instrument-tag filter on the input side the way ToOutDict provides
// for outputs, so every translator accepts every catalog In Mode.
func newTranslator(midiID int, catalog *modes.Catalog, clk *clock.Clock, state *settings.State) *translate.Translator {
	tr := translate.NewTranslator(midiID, catalog, clk.QuantInterval, modes.ValidLengths[len(modes.ValidLengths)-1],
		func() int { return state.EditCursor().Midi },
		func() int { return state.EditCursor().Channel + 1 }, // E_CHANNEL index -> 1-based channel number
	)
	tr.SetAllowedInModes(catalog.InNames())
	for _, name := range catalog.InNames() {
		if template, ok := catalog.LookupIn(name); ok {
			tr.Attach(template)
		}
	}
	return tr
}

// defaultConns seeds the registry with one slot per discovered
// physical port when no saved mapping preset exists yet.
func defaultConns(outPorts, inPorts []mapping.PhysicalEndpoint) []mapping.Conn {
	var conns []mapping.Conn
	midiID := 0
	for range outPorts {
		conns = append(conns, mapping.Conn{MidiID: midiID, Channel: 1, IsOut: true, Instruments: []string{"Generic"}})
		midiID++
	}
	midiID = 0
	for range inPorts {
		conns = append(conns, mapping.Conn{MidiID: midiID, Channel: 1, IsOut: false, Instruments: []string{"Generic"}})
		midiID++
	}
	if len(conns) == 0 {
		conns = append(conns, mapping.Conn{MidiID: 0, Channel: 1, IsOut: true, Instruments: []string{"Generic"}})
	}
	return conns
}

// writeDefaultPresets implements `-mode presets`: one default mapping,
// one default out-mode catalog entry, one default in-mode catalog
// entry, and one empty music pattern, all written under dir.
func writeDefaultPresets(dir string) error {
	store := preset.NewStore(dir)
	catalog := modes.DefaultCatalog()

	mappingDoc := preset.ToMappingsDoc("default", mapping.New(maxConns).Conns())
	if err := store.SaveMappings(mappingDoc); err != nil {
		return err
	}

	outTemplate, _ := catalog.LookupOut("GeVo1Out")
	if err := store.SaveOutFunctionality(preset.ToOutFunctionalityDoc(outTemplate)); err != nil {
		return err
	}

	inTemplate, _ := catalog.LookupIn("GeVo1In")
	if err := store.SaveInFunctionality(preset.ToInFunctionalityDoc(inTemplate)); err != nil {
		return err
	}

	emptyMusic := preset.ToMusicDoc("default", map[engine.StoreKey]modes.Indexes{})
	return store.SaveMusic(emptyMusic)
}
