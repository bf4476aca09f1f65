package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Alia5/vulkangen/internal/generator"
	"github.com/Alia5/vulkangen/internal/registry"
)

// Generate runs the full header-to-inl pipeline.
type Generate struct {
	Input  string   `help:"Directory containing the Vulkan headers and side tables" default:"." env:"VULKANGEN_INPUT" type:"existingdir"`
	Output string   `help:"Directory the generated files are written to" default:"." env:"VULKANGEN_OUTPUT"`
	Only   []string `help:"Generate only the named artifacts" env:"VULKANGEN_ONLY"`
}

// Run is called by kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	start := time.Now()

	src, err := registry.ReadSource(g.Input)
	if err != nil {
		return err
	}
	logger.Info("Read registry sources", "dir", g.Input, "bytes", len(src.Header))

	extensionsData, err := src.ExtensionsData()
	if err != nil {
		return err
	}
	api, err := registry.ParseAPI(src.Header, extensionsData)
	if err != nil {
		return fmt.Errorf("parse registry: %w", err)
	}
	logger.Info("Parsed registry",
		"versions", len(api.Versions),
		"handles", len(api.Handles),
		"structs", len(api.CompositeTypes),
		"functions", len(api.Functions),
		"extensions", len(api.Extensions)-1)

	sink := generator.NewDirSink(g.Output, logger)
	gen := generator.New(api, src, sink, logger)
	if err := gen.Generate(g.Only); err != nil {
		return err
	}

	count := len(generator.Artifacts())
	if len(g.Only) > 0 {
		count = len(g.Only)
	}
	logger.Info("Generation finished", "artifacts", count, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Help lists the artifact names accepted by --only.
func (g *Generate) Help() string {
	return "Artifacts:\n  " + strings.Join(generator.Artifacts(), "\n  ")
}
