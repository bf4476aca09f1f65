// Package registry builds the semantic model of the Vulkan API from
// header text: entity collections, per-version stamping, extension
// partitioning, alias links and the irregularity patch table. The
// finished API value is handed read-only to every generator pass.
package registry

import (
	"fmt"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// definitionTypes lists the #define constants the framework re-emits,
// with the C type each one is cast to.
var definitionTypes = []struct{ name, ctype string }{
	{"VK_MAX_PHYSICAL_DEVICE_NAME_SIZE", "size_t"},
	{"VK_MAX_EXTENSION_NAME_SIZE", "size_t"},
	{"VK_MAX_DRIVER_NAME_SIZE", "size_t"},
	{"VK_MAX_DRIVER_INFO_SIZE", "size_t"},
	{"VK_UUID_SIZE", "size_t"},
	{"VK_LUID_SIZE", "size_t"},
	{"VK_MAX_MEMORY_TYPES", "size_t"},
	{"VK_MAX_MEMORY_HEAPS", "size_t"},
	{"VK_MAX_DESCRIPTION_SIZE", "size_t"},
	{"VK_MAX_DEVICE_GROUP_SIZE", "size_t"},
	{"VK_ATTACHMENT_UNUSED", "deUint32"},
	{"VK_SUBPASS_EXTERNAL", "deUint32"},
	{"VK_QUEUE_FAMILY_IGNORED", "deUint32"},
	{"VK_QUEUE_FAMILY_EXTERNAL", "deUint32"},
	{"VK_REMAINING_MIP_LEVELS", "deUint32"},
	{"VK_REMAINING_ARRAY_LAYERS", "deUint32"},
	{"VK_WHOLE_SIZE", "vk::VkDeviceSize"},
	{"VK_TRUE", "vk::VkBool32"},
	{"VK_FALSE", "vk::VkBool32"},
}

// API is the root aggregate of one registry parse. Collections keep
// first-seen source order; Functions contains extension entry points as
// well as core ones.
type API struct {
	Versions       []scanner.Version
	Definitions    []*scanner.Definition
	Handles        []*scanner.Handle
	Enums          []*scanner.Enum
	Bitfields      []*scanner.Bitfield
	CompositeTypes []*scanner.CompositeType
	Functions      []*scanner.Function
	Extensions     []*Extension
}

// ParseAPI builds the semantic model from the concatenated header text.
// extensionsData is the side table classifying extensions as
// instance/device scoped with their core promotion version.
func ParseAPI(src, extensionsData string) (*API, error) {
	markers := scanner.ParseVersions(src)
	versions := make([]scanner.Version, 0, len(markers))
	for _, m := range markers {
		versions = append(versions, m.Version())
	}

	definitions, err := parseCoreDefinitions(src, versions)
	if err != nil {
		return nil, err
	}

	handles := scanner.ParseHandles(src)
	rawEnums := scanner.ParseEnums(src)
	bitfieldNames := scanner.ParseBitfieldNames(src)

	enums, bitfields, err := classifyEnums(rawEnums, bitfieldNames)
	if err != nil {
		return nil, err
	}

	compositeTypes, err := parseCompositeTypesByVersion(src, markers)
	if err != nil {
		return nil, err
	}
	functions := parseFunctionsByVersion(src, markers)

	api := &API{
		Versions:       versions,
		Definitions:    definitions,
		Handles:        handles,
		Enums:          enums,
		Bitfields:      bitfields,
		CompositeTypes: compositeTypes,
		Functions:      functions,
	}

	if err := parseExtensions(api, src, extensionsData); err != nil {
		return nil, err
	}

	api.CompositeTypes = populateTypedefAliases(api.CompositeTypes, src,
		func(t *scanner.CompositeType) string { return t.Name },
		func(t *scanner.CompositeType, name string) *scanner.CompositeType { c := t.Clone(); c.Name = name; return c },
		func(canon, alias *scanner.CompositeType) { canon.Alias = alias; alias.IsAlias = true })
	api.Enums = populateTypedefAliases(api.Enums, src,
		func(e *scanner.Enum) string { return e.Name },
		func(e *scanner.Enum, name string) *scanner.Enum { c := e.Clone(); c.Name = name; return c },
		func(canon, alias *scanner.Enum) { canon.Alias = alias; alias.IsAlias = true })
	api.Bitfields = populateTypedefAliases(api.Bitfields, src,
		func(b *scanner.Bitfield) string { return b.Name },
		func(b *scanner.Bitfield, name string) *scanner.Bitfield { c := b.Clone(); c.Name = name; return c },
		func(canon, alias *scanner.Bitfield) { canon.Alias = alias; alias.IsAlias = true })
	api.Handles = populateTypedefAliases(api.Handles, src,
		func(h *scanner.Handle) string { return h.Name },
		func(h *scanner.Handle, name string) *scanner.Handle { c := h.Clone(); c.Name = name; return c },
		func(canon, alias *scanner.Handle) { canon.Alias = alias; alias.IsAlias = true })

	for _, enum := range api.Enums {
		removeAliasedValues(enum)
	}

	if err := applyPatches(api); err != nil {
		return nil, err
	}
	return api, nil
}

func parseCoreDefinitions(src string, versions []scanner.Version) ([]*scanner.Definition, error) {
	var definitions []*scanner.Definition
	for _, v := range versions {
		value, ok := scanner.PreprocDefinedValue(src, v.InHex())
		if !ok {
			return nil, fmt.Errorf("no such definition: %s", v.InHex())
		}
		definitions = append(definitions, scanner.NewDefinition("deUint32", v.InHex(), value))
	}
	for _, d := range definitionTypes {
		value, ok := scanner.PreprocDefinedValue(src, d.name)
		if !ok {
			return nil, fmt.Errorf("no such definition: %s", d.name)
		}
		definitions = append(definitions, scanner.NewDefinition(d.ctype, d.name, value))
	}
	return definitions, nil
}

// classifyEnums partitions raw enums into bitfield-backing and plain
// ones. Carriers whose backing enum is absent become empty bitfields so
// the typedef is still emitted downstream.
func classifyEnums(rawEnums []*scanner.Enum, bitfieldNames []string) ([]*scanner.Enum, []*scanner.Bitfield, error) {
	enumsByName := make(map[string]bool, len(rawEnums))
	for _, e := range rawEnums {
		enumsByName[e.Name] = true
	}

	bitfieldEnums := make(map[string]bool)
	for _, name := range bitfieldNames {
		bitEnumName, err := scanner.BitEnumNameForBitfield(name)
		if err != nil {
			return nil, nil, err
		}
		if enumsByName[bitEnumName] {
			bitfieldEnums[bitEnumName] = true
		}
	}

	var enums []*scanner.Enum
	var bitfields []*scanner.Bitfield
	for _, e := range rawEnums {
		if bitfieldEnums[e.Name] {
			carrierName, err := scanner.BitfieldNameForBitEnum(e.Name)
			if err != nil {
				return nil, nil, err
			}
			bitfields = append(bitfields, scanner.NewBitfield(carrierName, e.Values))
		} else {
			enums = append(enums, e)
		}
	}

	haveBitfield := make(map[string]bool, len(bitfields))
	for _, b := range bitfields {
		haveBitfield[b.Name] = true
	}
	for _, name := range bitfieldNames {
		if !haveBitfield[name] {
			bitfields = append(bitfields, scanner.NewBitfield(name, nil))
		}
	}
	return enums, bitfields, nil
}

// parseCompositeTypesByVersion extracts structs/unions per version
// span. Spans are clipped at the first extension-name define so
// extension structs are not stamped with a core version.
func parseCompositeTypesByVersion(src string, markers []scanner.VersionMarker) ([]*scanner.CompositeType, error) {
	extStart := len(src)
	if loc := extensionNameDefineStart(src); loc >= 0 {
		extStart = loc
	}

	type span struct {
		version *scanner.Version
		lo, hi  int
	}
	var spans []span
	for i, m := range markers {
		hi := extStart
		if i+1 < len(markers) {
			hi = markers[i+1].Offset
		}
		v := m.Version()
		spans = append(spans, span{version: &v, lo: m.Offset, hi: hi})
	}
	// extension territory carries no core version
	spans = append(spans, span{version: nil, lo: extStart, hi: len(src)})

	var types []*scanner.CompositeType
	for _, s := range spans {
		if s.lo > s.hi {
			return nil, fmt.Errorf("version span [%d,%d) is inverted", s.lo, s.hi)
		}
		for _, t := range scanner.ParseCompositeTypes(src[s.lo:s.hi]) {
			t.APIVersion = s.version
			types = append(types, t)
		}
	}
	return types, nil
}

// parseFunctionsByVersion extracts entry points per version span,
// stamping each with the guard token of the span that declared it.
func parseFunctionsByVersion(src string, markers []scanner.VersionMarker) []*scanner.Function {
	var functions []*scanner.Function
	for i, m := range markers {
		hi := len(src)
		if i+1 < len(markers) {
			hi = markers[i+1].Offset
		}
		for _, f := range scanner.ParseFunctions(src[m.Offset:hi]) {
			f.APIVersion = m.Token
			functions = append(functions, f)
		}
	}
	return functions
}
