package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"massivectl/gen"
	"massivectl/macro"
	"massivectl/midicc"
	"massivectl/patch"
	"massivectl/store"
)

// runMCP exposes the generator, validator and macro dispatch as MCP tools
// over stdio.
func runMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	mapFile := fs.String("map", defaultMacroMap, "Macro map YAML used by the macro tools.")
	fs.Parse(args)

	s := server.NewMCPServer(
		"Massive Automator MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	schemaTool := mcp.NewTool("massive_patch-schema",
		mcp.WithDescription("Returns the JSON Schema describing a patch document."),
	)
	s.AddTool(schemaTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := patch.Schema()
		if err != nil {
			return nil, fmt.Errorf("failed to build schema: %v", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	generateTool := mcp.NewTool("massive_generate",
		mcp.WithDescription("Generates a batch of patches from a recipe YAML and saves them as JSON files."),
		mcp.WithString("recipe-yaml", mcp.Required(), mcp.Description("The recipe YAML text (a list of generator entries or {generators: [...]}).")),
		mcp.WithString("out-dir", mcp.Required(), mcp.Description("Directory to write the patch JSON files into.")),
	)
	s.AddTool(generateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling generate request.")

		recipeYAML, err := request.RequireString("recipe-yaml")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		outDir, err := request.RequireString("out-dir")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		patches, err := gen.FromRecipeBytes([]byte(recipeYAML))
		if err != nil {
			return nil, fmt.Errorf("failed to generate patches: %v", err)
		}
		written, err := store.SaveBatch(patches, outDir, "patch", true, false)
		if err != nil {
			return nil, fmt.Errorf("failed to save batch: %v", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Generated %d patches into %s.", len(written), outDir)), nil
	})

	validateTool := mcp.NewTool("massive_validate-patch",
		mcp.WithDescription("Validates a patch document against the schema bounds."),
		mcp.WithString("patch-json", mcp.Required(), mcp.Description("The patch data in JSON format.")),
	)
	s.AddTool(validateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		patchJSON, err := request.RequireString("patch-json")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var p patch.Patch
		if err := json.Unmarshal([]byte(patchJSON), &p); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to unmarshal patch JSON: %v", err)), nil
		}
		if err := p.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("patch is invalid: %v", err)), nil
		}
		return mcp.NewToolResultText("Patch is valid."), nil
	})

	mapTool := mcp.NewTool("massive_map-macros",
		mcp.WithDescription("Maps a patch document to its 8 macro values using the configured macro map."),
		mcp.WithString("patch-json", mcp.Required(), mcp.Description("The patch data in JSON format.")),
	)
	s.AddTool(mapTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling map macros request.")

		doc, errResult := patchDocFromRequest(request)
		if errResult != nil {
			return errResult, nil
		}
		values := macro.MapToMacros(doc, macro.LoadMacroMap(*mapFile))
		out, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal macro values: %v", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	})

	sendTool := mcp.NewTool("massive_send-macros",
		mcp.WithDescription("Maps a patch to 8 macros and sends them as MIDI CC messages."),
		mcp.WithString("patch-json", mcp.Required(), mcp.Description("The patch data in JSON format.")),
		mcp.WithString("port", mcp.Required(), mcp.Description("MIDI output port name or name fragment.")),
		mcp.WithNumber("channel", mcp.Description("MIDI channel (0-15, default 0).")),
	)
	s.AddTool(sendTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling send macros request.")

		doc, errResult := patchDocFromRequest(request)
		if errResult != nil {
			return errResult, nil
		}
		port, err := request.RequireString("port")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		channel := request.GetInt("channel", 0)
		if channel < 0 || channel > 15 {
			return mcp.NewToolResultError(fmt.Sprintf("channel %d out of range 0-15", channel)), nil
		}

		values := macro.MapToMacros(doc, macro.LoadMacroMap(*mapFile))
		ccMap := midicc.LoadCCAssignments(*mapFile)

		portIdx, err := midicc.FindOutPort(port)
		if err != nil {
			return nil, fmt.Errorf("could not resolve MIDI output: %v", err)
		}
		d, closer, err := midicc.Open(portIdx)
		if err != nil {
			return nil, fmt.Errorf("failed to open MIDI output: %v", err)
		}
		defer closer()

		if err := d.SendMacros(values, uint8(channel), ccMap, 2*time.Millisecond); err != nil {
			return nil, fmt.Errorf("failed to send macros: %v", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Sent macros %v.", values)), nil
	})

	log.Println("Starting Massive Automator MCP server...")
	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}
}

func patchDocFromRequest(request mcp.CallToolRequest) (map[string]any, *mcp.CallToolResult) {
	patchJSON, err := request.RequireString("patch-json")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(patchJSON), &doc); err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to unmarshal patch JSON: %v", err))
	}
	return doc, nil
}
