package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Alia5/vulkangen/internal/registry"
)

// Dump parses the headers and prints the semantic model for debugging.
type Dump struct {
	Input   string `help:"Directory containing the Vulkan headers and side tables" default:"." env:"VULKANGEN_INPUT" type:"existingdir"`
	Section string `help:"Model section to print" enum:"all,versions,definitions,handles,enums,bitfields,structs,functions,extensions" default:"all"`
}

// Run is called by kong when the dump command is executed.
func (d *Dump) Run(logger *slog.Logger) error {
	src, err := registry.ReadSource(d.Input)
	if err != nil {
		return err
	}
	extensionsData, err := src.ExtensionsData()
	if err != nil {
		return err
	}
	api, err := registry.ParseAPI(src.Header, extensionsData)
	if err != nil {
		return fmt.Errorf("parse registry: %w", err)
	}

	var v any
	switch d.Section {
	case "versions":
		v = api.Versions
	case "definitions":
		v = api.Definitions
	case "handles":
		v = api.Handles
	case "enums":
		v = api.Enums
	case "bitfields":
		v = api.Bitfields
	case "structs":
		v = api.CompositeTypes
	case "functions":
		v = api.Functions
	case "extensions":
		v = api.Extensions
	default:
		v = api
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
