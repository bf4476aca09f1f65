// Package generator turns a parsed registry into the framework's .inl
// artifacts. Every pass is a read-only traversal of the registry model;
// output goes through an injected ArtifactSink so runs are repeatable
// and testable without touching disk.
package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/vulkangen/internal/registry"
	"github.com/Alia5/vulkangen/internal/scanner"
)

// Generator drives the artifact passes over one parsed API.
type Generator struct {
	api    *registry.API
	src    *registry.Sources
	sink   ArtifactSink
	logger *slog.Logger

	featureDefs  []structDef
	propertyDefs []structDef
}

func New(api *registry.API, src *registry.Sources, sink ArtifactSink, logger *slog.Logger) *Generator {
	return &Generator{api: api, src: src, sink: sink, logger: logger}
}

type pass struct {
	artifact string
	gen      func(g *Generator) ([]string, error)
}

// passes lists every artifact in emission order. The names double as
// selection keys for partial runs.
var passes = []pass{
	{"vkDeviceFeatures.inl", (*Generator).genDeviceFeatures},
	{"vkDeviceFeaturesForDefaultDeviceDefs.inl", (*Generator).genDeviceFeaturesDefaultDeviceDefs},
	{"vkDeviceFeaturesForContextDecl.inl", (*Generator).genDeviceFeaturesContextDecl},
	{"vkDeviceFeaturesForContextDefs.inl", (*Generator).genDeviceFeaturesContextDefs},
	{"vkDeviceProperties.inl", (*Generator).genDeviceProperties},
	{"vkDevicePropertiesForDefaultDeviceDefs.inl", (*Generator).genDevicePropertiesDefaultDeviceDefs},
	{"vkDevicePropertiesForContextDecl.inl", (*Generator).genDevicePropertiesContextDecl},
	{"vkDevicePropertiesForContextDefs.inl", (*Generator).genDevicePropertiesContextDefs},
	{"vkHandleType.inl", (*Generator).genHandleType},
	{"vkBasicTypes.inl", (*Generator).genBasicTypes},
	{"vkStructTypes.inl", (*Generator).genStructTypes},
	{"vkVirtualPlatformInterface.inl", genInterfaceDecl(scanner.FunctionPlatform, false)},
	{"vkVirtualInstanceInterface.inl", genInterfaceDecl(scanner.FunctionInstance, false)},
	{"vkVirtualDeviceInterface.inl", genInterfaceDecl(scanner.FunctionDevice, false)},
	{"vkConcretePlatformInterface.inl", genInterfaceDecl(scanner.FunctionPlatform, true)},
	{"vkConcreteInstanceInterface.inl", genInterfaceDecl(scanner.FunctionInstance, true)},
	{"vkConcreteDeviceInterface.inl", genInterfaceDecl(scanner.FunctionDevice, true)},
	{"vkFunctionPointerTypes.inl", (*Generator).genFunctionPtrTypes},
	{"vkPlatformFunctionPointers.inl", genFunctionPointers(scanner.FunctionPlatform)},
	{"vkInstanceFunctionPointers.inl", genFunctionPointers(scanner.FunctionInstance)},
	{"vkDeviceFunctionPointers.inl", genFunctionPointers(scanner.FunctionDevice)},
	{"vkInitPlatformFunctionPointers.inl", genInitFunctionPointers(scanner.FunctionPlatform,
		func(f *scanner.Function) bool { return f.Name != "vkGetInstanceProcAddr" })},
	{"vkInitInstanceFunctionPointers.inl", genInitFunctionPointers(scanner.FunctionInstance, nil)},
	{"vkInitDeviceFunctionPointers.inl", genInitFunctionPointers(scanner.FunctionDevice, nil)},
	{"vkPlatformDriverImpl.inl", genDriverImpl(scanner.FunctionPlatform, "PlatformDriver")},
	{"vkInstanceDriverImpl.inl", genDriverImpl(scanner.FunctionInstance, "InstanceDriver")},
	{"vkDeviceDriverImpl.inl", genDriverImpl(scanner.FunctionDevice, "DeviceDriver")},
	{"vkStrUtil.inl", (*Generator).genStrUtilProto},
	{"vkStrUtilImpl.inl", (*Generator).genStrUtilImpl},
	{"vkRefUtil.inl", (*Generator).genRefUtilProto},
	{"vkRefUtilImpl.inl", (*Generator).genRefUtilImpl},
	{"vkGetStructureTypeImpl.inl", (*Generator).genStructTraits},
	{"vkNullDriverImpl.inl", (*Generator).genNullDriverImpl},
	{"vkTypeUtil.inl", (*Generator).genTypeUtil},
	{"vkSupportedExtensions.inl", (*Generator).genSupportedExtensions},
	{"vkCoreFunctionalities.inl", (*Generator).genCoreFunctionalities},
	{"vkExtensionFunctions.inl", (*Generator).genExtensionFunctions},
	{"vkDeviceFeatures2.inl", (*Generator).genDeviceFeatures2},
	{"vkMandatoryFeatures.inl", (*Generator).genMandatoryFeatures},
	{"vkInstanceExtensions.inl", genExtensionList("INSTANCE")},
	{"vkDeviceExtensions.inl", genExtensionList("DEVICE")},
	{"vkKnownDriverIds.inl", (*Generator).genKnownDriverIds},
	{"vkObjTypeImpl.inl", (*Generator).genObjTypeImpl},
}

// Artifacts lists every artifact name in emission order.
func Artifacts() []string {
	names := make([]string, 0, len(passes))
	for _, p := range passes {
		names = append(names, p.artifact)
	}
	return names
}

// GenAll runs every pass.
func (g *Generator) GenAll() error {
	return g.Generate(nil)
}

// Generate runs the passes for the named artifacts, or all of them when
// only is empty.
func (g *Generator) Generate(only []string) error {
	selected := make(map[string]bool, len(only))
	for _, name := range only {
		selected[name] = true
	}
	known := make(map[string]bool, len(passes))
	for _, p := range passes {
		known[p.artifact] = true
	}
	for name := range selected {
		if !known[name] {
			return fmt.Errorf("unknown artifact %q (see the artifact list in help output)", name)
		}
	}

	for _, p := range passes {
		if len(selected) > 0 && !selected[p.artifact] {
			continue
		}
		g.logger.Debug("Running pass", "artifact", p.artifact)
		lines, err := p.gen(g)
		if err != nil {
			return fmt.Errorf("generate %s: %w", p.artifact, err)
		}
		if err := g.sink.Write(p.artifact, lines); err != nil {
			return err
		}
	}
	return nil
}

func argListToStr(args []*scanner.Variable) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.Decl(" "))
	}
	return strings.Join(parts, ", ")
}

func argNames(args []*scanner.Variable) string {
	names := make([]string, 0, len(args))
	for _, a := range args {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// handleAliasPair couples the postfixed extension variant with the
// canonical handle whose ordinal it shares.
type handleAliasPair struct {
	variant   *scanner.Handle
	canonical *scanner.Handle
}

// splitUniqueAndDuplicatedHandles separates canonical handles (first
// seen order) from extension variants that alias them.
func splitUniqueAndDuplicatedHandles(handles []*scanner.Handle) ([]*scanner.Handle, []handleAliasPair) {
	var unique []*scanner.Handle
	var duplicated []handleAliasPair
	for _, h := range handles {
		if h.Alias != nil {
			duplicated = append(duplicated, handleAliasPair{variant: h.Alias, canonical: h})
		}
		if !h.IsAlias {
			unique = append(unique, h)
		}
	}
	return unique, duplicated
}

func functionsOfType(functions []*scanner.Function, t scanner.FunctionType) []*scanner.Function {
	var out []*scanner.Function
	for _, f := range functions {
		if f.Type() == t {
			out = append(out, f)
		}
	}
	return out
}
