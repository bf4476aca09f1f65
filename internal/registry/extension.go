package registry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// CoreVersion records when and how an extension was folded into the
// core API.
type CoreVersion struct {
	Kind    string // INSTANCE or DEVICE
	Version scanner.Version
}

// Extension scopes the entities a named extension introduces. The
// entity slices reference the canonical objects from the API
// collections; an extension never owns private copies. The first
// partition of a parse has an empty Name and holds the core span.
type Extension struct {
	Name                  string
	Handles               []*scanner.Handle
	Enums                 []*scanner.Enum
	Bitfields             []*scanner.Bitfield
	CompositeTypes        []*scanner.CompositeType
	Functions             []*scanner.Function
	Definitions           []*scanner.Definition
	AdditionalDefinitions []*scanner.Definition
	Typedefs              []*scanner.Definition
	VersionInCore         *CoreVersion
}

var extensionNameDefinePattern = regexp.MustCompile(`#define\s+[A-Z0-9_]+_EXTENSION_NAME\s+"([^"]+)"`)

func extensionNameDefineStart(src string) int {
	loc := extensionNameDefinePattern.FindStringIndex(src)
	if loc == nil {
		return -1
	}
	return loc[0]
}

type extensionPart struct {
	name string // empty for the core part
	body string
}

// splitByExtension slices the source at every `#define <name> 1` guard
// whose name matches an extension-name string literal. The first part
// is the core span.
func splitByExtension(src string) []extensionPart {
	names := scanner.ParseExtensionNames(src)
	if len(names) == 0 {
		return []extensionPart{{name: "", body: src}}
	}
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, regexp.QuoteMeta(n))
	}
	guard := regexp.MustCompile(`#define\s+(` + strings.Join(quoted, "|") + `)\s+1`)

	idx := guard.FindAllStringSubmatchIndex(src, -1)
	parts := []extensionPart{{name: "", body: src[:idx[0][0]]}}
	for i, m := range idx {
		hi := len(src)
		if i+1 < len(idx) {
			hi = idx[i+1][0]
		}
		parts = append(parts, extensionPart{name: src[m[2]:m[3]], body: src[m[1]:hi]})
	}
	return parts
}

// coreVersionFor matches the extension name against the side table,
// case-insensitively. Absence means the extension was never promoted.
// A row that matches but cannot be parsed is an error: the side table
// is a first-party curated input.
func coreVersionFor(extensionName, extensionsData string) (*CoreVersion, error) {
	if extensionName == "" {
		return nil, nil
	}
	ptrn := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(extensionName) + `\s+(DEVICE|INSTANCE)\s+([0-9_]+)`)
	m := ptrn.FindStringSubmatch(extensionsData)
	if m == nil {
		return nil, nil
	}
	parts := strings.Split(m[2], "_")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("extension %s: malformed core version %q in side table", extensionName, m[2])
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("extension %s: malformed core version %q in side table", extensionName, m[2])
		}
		nums[i] = n
	}
	return &CoreVersion{
		Kind:    strings.ToUpper(m[1]),
		Version: scanner.Version{Major: nums[0], Minor: nums[1], Patch: nums[2]},
	}, nil
}

// parseExtensions partitions the source at extension boundaries,
// re-runs the scoped extractors per part, resolves every scoped name
// against the canonical collections, and for promoted extensions links
// alias pairs immediately.
func parseExtensions(api *API, src, extensionsData string) error {
	functionsByName := make(map[string]*scanner.Function, len(api.Functions))
	for _, f := range api.Functions {
		functionsByName[f.Name] = f
	}
	compositeTypesByName := make(map[string]*scanner.CompositeType, len(api.CompositeTypes))
	for _, t := range api.CompositeTypes {
		compositeTypesByName[t.Name] = t
	}
	enumsByName := make(map[string]*scanner.Enum, len(api.Enums))
	for _, e := range api.Enums {
		enumsByName[e.Name] = e
	}
	bitfieldsByName := make(map[string]*scanner.Bitfield, len(api.Bitfields))
	for _, b := range api.Bitfields {
		bitfieldsByName[b.Name] = b
	}
	handlesByName := make(map[string]*scanner.Handle, len(api.Handles))
	for _, h := range api.Handles {
		handlesByName[h.Name] = h
	}
	definitionsByName := make(map[string]*scanner.Definition, len(api.Definitions))
	for _, d := range api.Definitions {
		definitionsByName[d.Name] = d
	}

	for _, part := range splitByExtension(src) {
		var definitions []*scanner.Definition
		for _, v := range api.Versions {
			if value, ok := scanner.PreprocDefinedValue(part.body, v.InHex()); ok {
				definitions = append(definitions, scanner.NewDefinition("deUint32", v.InHex(), value))
			}
		}
		for _, d := range definitionTypes {
			if value, ok := scanner.PreprocDefinedValue(part.body, d.name); ok {
				definitions = append(definitions, scanner.NewDefinition(d.ctype, d.name, value))
			}
		}

		rawEnums := scanner.ParseEnums(part.body)
		bitfieldNames := scanner.ParseBitfieldNames(part.body)
		bitEnumNames := make(map[string]bool, len(bitfieldNames))
		for _, name := range bitfieldNames {
			bitEnumName, err := scanner.BitEnumNameForBitfield(name)
			if err != nil {
				return fmt.Errorf("extension %s: %w", part.name, err)
			}
			bitEnumNames[bitEnumName] = true
		}

		ext := &Extension{
			Name:                  part.name,
			AdditionalDefinitions: scanner.ParseDefines(part.name, part.body),
			Typedefs:              scanner.ParseTypedefs(part.body),
		}

		lookupErr := func(kind, name string) error {
			return fmt.Errorf("extension %q references unknown %s %s", part.name, kind, name)
		}
		for _, h := range scanner.ParseHandles(part.body) {
			canon, ok := handlesByName[h.Name]
			if !ok {
				return lookupErr("handle", h.Name)
			}
			ext.Handles = append(ext.Handles, canon)
		}
		for _, f := range scanner.ParseFunctions(part.body) {
			canon, ok := functionsByName[f.Name]
			if !ok {
				return lookupErr("function", f.Name)
			}
			ext.Functions = append(ext.Functions, canon)
		}
		for _, t := range scanner.ParseCompositeTypes(part.body) {
			canon, ok := compositeTypesByName[t.Name]
			if !ok {
				return lookupErr("composite type", t.Name)
			}
			ext.CompositeTypes = append(ext.CompositeTypes, canon)
		}
		for _, e := range rawEnums {
			if bitEnumNames[e.Name] {
				continue
			}
			canon, ok := enumsByName[e.Name]
			if !ok {
				return lookupErr("enum", e.Name)
			}
			ext.Enums = append(ext.Enums, canon)
		}
		for _, name := range bitfieldNames {
			canon, ok := bitfieldsByName[name]
			if !ok {
				return lookupErr("bitfield", name)
			}
			ext.Bitfields = append(ext.Bitfields, canon)
		}
		for _, d := range definitions {
			canon, ok := definitionsByName[d.Name]
			if !ok {
				return lookupErr("definition", d.Name)
			}
			ext.Definitions = append(ext.Definitions, canon)
		}

		coreVersion, err := coreVersionFor(part.name, extensionsData)
		if err != nil {
			return err
		}
		ext.VersionInCore = coreVersion

		if coreVersion != nil {
			err := populateExtensionAliases(ext, functionsByName, handlesByName,
				enumsByName, bitfieldsByName, compositeTypesByName)
			if err != nil {
				return fmt.Errorf("extension %s: %w", part.name, err)
			}
		}
		api.Extensions = append(api.Extensions, ext)
	}
	return nil
}
