package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"massivectl/gen"
	"massivectl/macro"
	"massivectl/midicc"
	"massivectl/patch"
	"massivectl/store"
)

const defaultMacroMap = "configs/macro_map.yaml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "schema":
		runSchema()
	case "send":
		runSend(os.Args[2:])
	case "ports":
		runPorts()
	case "mcp":
		runMCP(os.Args[2:])
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: massivectl <command> [flags]

commands:
  generate  build a batch of patches from a recipe YAML
  validate  check a patch JSON file against the schema
  schema    print the patch JSON Schema
  send      map a patch to 8 macros and send them as MIDI CC
  ports     list available MIDI output ports
  mcp       run the MCP server over stdio`)
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	recipe := fs.String("recipe", "", "Path to the generator recipe YAML.")
	outDir := fs.String("out", "presets/exported", "Output directory.")
	prefix := fs.String("prefix", "patch", "Filename prefix for unnamed patches.")
	overwrite := fs.Bool("overwrite", false, "Overwrite existing files instead of uniquifying.")
	fs.Parse(args)

	if *recipe == "" {
		log.Fatal("generate: -recipe is required")
	}
	patches, err := gen.FromRecipe(*recipe)
	if err != nil {
		log.Fatalf("failed to generate patches: %v", err)
	}
	written, err := store.SaveBatch(patches, *outDir, *prefix, true, *overwrite)
	if err != nil {
		log.Fatalf("failed to save batch: %v", err)
	}
	fmt.Printf("Generated %d patches into %s\n", len(written), *outDir)
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("validate: exactly one patch file expected")
	}
	file := fs.Arg(0)

	doc, err := store.LoadPatch(file)
	if err != nil {
		log.Fatalf("failed to load patch: %v", err)
	}
	p, err := patch.FromMap(doc)
	if err != nil {
		log.Fatalf("failed to parse patch: %v", err)
	}
	if err := p.Validate(); err != nil {
		log.Fatalf("%s is invalid: %v", file, err)
	}
	fmt.Printf("%s is valid\n", file)
}

func runSchema() {
	data, err := patch.Schema()
	if err != nil {
		log.Fatalf("failed to build schema: %v", err)
	}
	fmt.Println(string(data))
}

func runSend(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	patchFile := fs.String("patch", "", "Patch JSON file to map and send.")
	port := fs.String("port", "", "MIDI output port name or fragment; guessed when empty.")
	mapFile := fs.String("map", defaultMacroMap, "Macro map YAML.")
	channel := fs.Int("channel", 0, "MIDI channel (0-15).")
	delayMS := fs.Int("delay", 2, "Inter-message delay in milliseconds.")
	audition := fs.Bool("audition", false, "Play a short arpeggio after sending.")
	fs.Parse(args)

	if *patchFile == "" {
		log.Fatal("send: -patch is required")
	}
	doc, err := store.LoadPatch(*patchFile)
	if err != nil {
		log.Fatalf("failed to load patch: %v", err)
	}

	cfg := macro.LoadMacroMap(*mapFile)
	values := macro.MapToMacros(doc, cfg)
	ccMap := midicc.LoadCCAssignments(*mapFile)

	portIdx, err := resolvePort(*port)
	if err != nil {
		log.Fatalf("could not resolve MIDI output: %v", err)
	}
	d, closer, err := midicc.Open(portIdx)
	if err != nil {
		log.Fatalf("failed to open MIDI output: %v", err)
	}
	defer closer()

	delay := time.Duration(*delayMS) * time.Millisecond
	if err := d.SendMacros(values, uint8(*channel), ccMap, delay); err != nil {
		log.Fatalf("failed to send macros: %v", err)
	}
	fmt.Printf("Sent macros %v\n", values)

	if *audition {
		if err := midicc.Audition(d, uint8(*channel)); err != nil {
			log.Fatalf("audition failed: %v", err)
		}
	}
}

func runPorts() {
	names := midicc.OutPortNames()
	if len(names) == 0 {
		fmt.Println("No MIDI outputs available.")
		return
	}
	for i, name := range names {
		fmt.Printf("%d: %s\n", i, name)
	}
}

func resolvePort(query string) (int, error) {
	if query == "" {
		return midicc.GuessOutPort()
	}
	return midicc.FindOutPort(query)
}
