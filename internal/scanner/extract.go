package scanner

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	identPtrn = `[a-zA-Z_][a-zA-Z0-9_]*`
	typePtrn  = `[a-zA-Z_][a-zA-Z0-9_ \t*&]*`
)

var (
	versionPattern       = regexp.MustCompile(`VK_VERSION_([1-9])_([0-9]) 1`)
	handlePattern        = regexp.MustCompile(`VK_DEFINE(_NON_DISPATCHABLE|)_HANDLE\((` + identPtrn + `)\)[ \t]*[\n\r]`)
	enumPattern          = regexp.MustCompile(`typedef enum(\s*` + identPtrn + `)?\s*{([^}]*)}\s*(` + identPtrn + `)\s*;`)
	enumValuePattern     = regexp.MustCompile(`(` + identPtrn + `)\s*=\s*([^\s,\n}]+)\s*[,\n}]`)
	compositePattern     = regexp.MustCompile(`typedef (struct|union)(\s*` + identPtrn + `)?\s*{([^}]*)}\s*(` + identPtrn + `)\s*;`)
	memberPattern        = regexp.MustCompile(`(` + typePtrn + `)(\s+` + identPtrn + `)((\[[^\]]+\]|:[0-9]+)*)\s*;`)
	functionPattern      = regexp.MustCompile(`VKAPI_ATTR\s+(` + typePtrn + `)\s+VKAPI_CALL\s+(` + identPtrn + `)\s*\(([^)]*)\)\s*;`)
	argumentPattern      = regexp.MustCompile(`(` + typePtrn + `)(\s+` + identPtrn + `)((\[[^\]]+\])*)\s*`)
	bitfieldNamePattern  = regexp.MustCompile(`typedef\s+VkFlags\s(` + identPtrn + `)\s*;`)
	definePattern        = regexp.MustCompile(`#define\s+(\S+)\s+([^\r\n]+)`)
	typedefPattern       = regexp.MustCompile(`typedef\s+(\S+)\s+([^\r\n]+);`)
	extensionNamePattern = regexp.MustCompile(`#define\s+[A-Z0-9_]+_EXTENSION_NAME\s+"([^"]+)"`)
)

// Extractor is one matcher of the battery: a text span in, raw matches
// out. Absence of the construct yields an empty slice, never an error;
// a stricter parser can replace any matcher without touching the
// semantic layer.
type Extractor[T any] func(src string) []T

var (
	Versions      Extractor[VersionMarker]  = ParseVersions
	Handles       Extractor[*Handle]        = ParseHandles
	Enums         Extractor[*Enum]          = ParseEnums
	Composites    Extractor[*CompositeType] = ParseCompositeTypes
	Functions     Extractor[*Function]      = ParseFunctions
	BitfieldNames Extractor[string]         = ParseBitfieldNames
	Typedefs      Extractor[*Definition]    = ParseTypedefs
)

// ParseVersions finds every VK_VERSION_x_y guard occurrence with the
// byte offset of its section start.
func ParseVersions(src string) []VersionMarker {
	idx := versionPattern.FindAllStringSubmatchIndex(src, -1)
	markers := make([]VersionMarker, 0, len(idx))
	for _, m := range idx {
		token := src[m[0] : m[1]-2]
		major, _ := strconv.Atoi(src[m[2]:m[3]])
		minor, _ := strconv.Atoi(src[m[4]:m[5]])
		markers = append(markers, VersionMarker{Token: token, Offset: m[0], Major: major, Minor: minor})
	}
	return markers
}

// ParseHandles finds VK_DEFINE_HANDLE / VK_DEFINE_NON_DISPATCHABLE_HANDLE
// declarations.
func ParseHandles(src string) []*Handle {
	matches := handlePattern.FindAllStringSubmatch(src, -1)
	handles := make([]*Handle, 0, len(matches))
	for _, m := range matches {
		kind := HandleDisp
		if m[1] == "_NON_DISPATCHABLE" {
			kind = HandleNonDisp
		}
		handles = append(handles, NewHandle(kind, m[2]))
	}
	return handles
}

// ParseEnums finds typedef'd enum blocks. Some of the results back
// bitfields; that reclassification happens in the registry.
func ParseEnums(src string) []*Enum {
	matches := enumPattern.FindAllStringSubmatch(src, -1)
	enums := make([]*Enum, 0, len(matches))
	for _, m := range matches {
		enums = append(enums, parseEnumBody(m[3], m[2]))
	}
	return enums
}

func parseEnumBody(name, body string) *Enum {
	matches := enumValuePattern.FindAllStringSubmatch(body, -1)
	values := make([]EnumValue, 0, len(matches))
	for _, m := range matches {
		values = append(values, EnumValue{Name: m[1], Value: m[2]})
	}
	return NewEnum(name, values)
}

// ParseBitfieldNames finds typedef VkFlags carrier names.
func ParseBitfieldNames(src string) []string {
	matches := bitfieldNamePattern.FindAllStringSubmatch(src, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// ParseCompositeTypes finds typedef'd struct and union blocks with
// their member declarations.
func ParseCompositeTypes(src string) []*CompositeType {
	matches := compositePattern.FindAllStringSubmatch(src, -1)
	types := make([]*CompositeType, 0, len(matches))
	for _, m := range matches {
		class := ClassStruct
		if m[1] == "union" {
			class = ClassUnion
		}
		types = append(types, NewCompositeType(class, m[4], parseMembers(m[3])))
	}
	return types
}

func parseMembers(body string) []*Variable {
	matches := memberPattern.FindAllStringSubmatch(body, -1)
	members := make([]*Variable, 0, len(matches))
	for _, m := range matches {
		members = append(members, NewVariable(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3])))
	}
	return members
}

// ParseFunctions finds VKAPI_ATTR entry point prototypes.
func ParseFunctions(src string) []*Function {
	matches := functionPattern.FindAllStringSubmatch(src, -1)
	functions := make([]*Function, 0, len(matches))
	for _, m := range matches {
		functions = append(functions, NewFunction(strings.TrimSpace(m[2]), strings.TrimSpace(m[1]), ParseArgList(m[3])))
	}
	return functions
}

// ParseArgList splits a prototype argument list on commas and parses
// each declaration. Pieces the variable pattern cannot recognize are
// skipped.
func ParseArgList(src string) []*Variable {
	var args []*Variable
	for _, rawArg := range strings.Split(src, ",") {
		m := argumentPattern.FindStringSubmatch(rawArg)
		if m == nil {
			continue
		}
		args = append(args, NewVariable(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), m[3]))
	}
	return args
}

// ParseTypedefs finds plain typedef lines as name pairs.
func ParseTypedefs(src string) []*Definition {
	matches := typedefPattern.FindAllStringSubmatch(src, -1)
	defs := make([]*Definition, 0, len(matches))
	for _, m := range matches {
		defs = append(defs, NewDefinition("", m[1], m[2]))
	}
	return defs
}

// ParseExtensionNames lists every *_EXTENSION_NAME string literal in
// source order.
func ParseExtensionNames(src string) []string {
	matches := extensionNamePattern.FindAllStringSubmatch(src, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// PreprocDefinedValue looks up the value of a single #define. The
// second result is false when the define is absent.
func PreprocDefinedValue(src, name string) (string, bool) {
	ptrn := regexp.MustCompile(`#\s*define\s+` + regexp.QuoteMeta(name) + `\s+([^\n]+)\n`)
	m := ptrn.FindStringSubmatch(src)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	if value == "UINT32_MAX" {
		value = "(~0u)"
	}
	return value, true
}

// ParseDefines keeps #define lines relevant to the named extension:
// its SPEC_VERSION style numeric defines, skipping the upper-cased
// name expansions and unrelated numeric defines. The replacement rows
// cover historical extension names whose digits the upper-casing does
// not place where the defines do.
func ParseDefines(extensionName, src string) []*Definition {
	nameFixups := [][2]string{
		{"VK_INTEL_SHADER_INTEGER_FUNCTIONS2", "VK_INTEL_SHADER_INTEGER_FUNCTIONS_2"},
		{"VK_EXT_ROBUSTNESS2", "VK_EXT_ROBUSTNESS_2"},
		{"VK_EXT_FRAGMENT_DENSITY_MAP2", "VK_EXT_FRAGMENT_DENSITY_MAP_2"},
		{"VK_AMD_SHADER_CORE_PROPERTIES2", "VK_AMD_SHADER_CORE_PROPERTIES_2"},
	}

	skip := func(name, value string) bool {
		if extensionName == "" {
			return true
		}
		upper := strings.ToUpper(extensionName)
		for _, f := range nameFixups {
			upper = strings.ReplaceAll(upper, f[0], f[1])
		}
		isNumeric := true
		for _, r := range value {
			if r < '0' || r > '9' {
				isNumeric = false
				break
			}
		}
		if strings.HasPrefix(name, upper) && isNumeric {
			return false
		}
		if strings.HasPrefix(name, upper) {
			return true
		}
		return isNumeric
	}

	matches := definePattern.FindAllStringSubmatch(src, -1)
	var defs []*Definition
	for _, m := range matches {
		if skip(m[1], m[2]) {
			continue
		}
		defs = append(defs, NewDefinition("", m[1], m[2]))
	}
	return defs
}
