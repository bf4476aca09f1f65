package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

func (g *Generator) genHandleType() ([]string, error) {
	unique, duplicated := splitUniqueAndDuplicatedHandles(g.api.Handles)
	if len(unique) == 0 {
		return nil, fmt.Errorf("no handles in registry")
	}

	var entries []string
	entries = append(entries, fmt.Sprintf("\t%s\t= 0,", unique[0].HandleType()))
	for _, h := range unique[1:] {
		entries = append(entries, fmt.Sprintf("\t%s,", h.HandleType()))
	}
	for _, pair := range duplicated {
		entries = append(entries, fmt.Sprintf("\t%s\t= %s,", pair.variant.HandleType(), pair.canonical.HandleType()))
	}
	entries = append(entries, fmt.Sprintf("\tHANDLE_TYPE_LAST\t= %s + 1", unique[len(unique)-1].HandleType()))

	lines := []string{"enum HandleType", "{"}
	lines = append(lines, indentLines(entries)...)
	lines = append(lines, "};", "")
	return lines, nil
}

// enumValuePrefix derives the SHOUTY_SNAKE prefix shared by an enum's
// values from its type name.
func enumValuePrefix(enum *scanner.Enum) string {
	var b strings.Builder
	name := enum.Name
	b.WriteByte(name[0])
	for i := 1; i < len(name); i++ {
		if name[i] >= 'A' && name[i] <= 'Z' && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
			b.WriteByte('_')
		}
		b.WriteString(strings.ToUpper(name[i : i+1]))
	}
	return b.String()
}

func parseIntValue(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") {
		return strconv.ParseInt(value[2:], 16, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

const maxEnumSentinel = 0x7FFFFFFF

// enumValuesLinear reports whether the non-symbolic values count
// 0,1,2,... so a synthetic _LAST entry is valid. A *_MAX_ENUM sentinel
// does not break linearity.
func enumValuesLinear(enum *scanner.Enum) bool {
	next := int64(0)
	for _, v := range enum.Values {
		if strings.HasPrefix(v.Value, "VK") {
			continue
		}
		n, err := parseIntValue(v.Value)
		if err != nil {
			return false
		}
		if n != next {
			return n == maxEnumSentinel
		}
		next++
	}
	return true
}

func genEnumSrc(enum *scanner.Enum) []string {
	entries := make([]string, 0, len(enum.Values)+1)
	for _, v := range enum.Values {
		entries = append(entries, fmt.Sprintf("\t%s\t= %s,", v.Name, v.Value))
	}
	if enumValuesLinear(enum) {
		lastEntry := fmt.Sprintf("\t%s_LAST,", enumValuePrefix(enum))
		// a *_MAX_ENUM sentinel has to stay last or _LAST gets its value
		if n, err := parseIntValue(enum.Values[len(enum.Values)-1].Value); err == nil && n == maxEnumSentinel {
			sentinel := entries[len(entries)-1]
			entries = append(entries[:len(entries)-1], lastEntry, sentinel)
		} else {
			entries = append(entries, lastEntry)
		}
	}

	lines := []string{fmt.Sprintf("enum %s", enum.Name), "{"}
	lines = append(lines, indentLines(entries)...)
	return append(lines, "};")
}

func genBitfieldSrc(bitfield *scanner.Bitfield) ([]string, error) {
	var lines []string
	if len(bitfield.Values) > 0 {
		bitEnumName, err := scanner.BitEnumNameForBitfield(bitfield.Name)
		if err != nil {
			return nil, err
		}
		entries := make([]string, 0, len(bitfield.Values))
		for _, v := range bitfield.Values {
			entries = append(entries, fmt.Sprintf("\t%s\t= %s,", v.Name, v.Value))
		}
		lines = append(lines, fmt.Sprintf("enum %s", bitEnumName), "{")
		lines = append(lines, indentLines(entries)...)
		lines = append(lines, "};")
	}
	return append(lines, fmt.Sprintf("typedef deUint32 %s;", bitfield.Name)), nil
}

func genHandlesSrc(handles []*scanner.Handle) []string {
	unique, duplicated := splitUniqueAndDuplicatedHandles(handles)

	macro := func(h *scanner.Handle) string {
		if h.Kind == scanner.HandleNonDisp {
			return "VK_DEFINE_NON_DISPATCHABLE_HANDLE"
		}
		return "VK_DEFINE_HANDLE"
	}

	var entries []string
	for _, h := range unique {
		entries = append(entries, fmt.Sprintf("%s\t(%s,\t%s);", macro(h), h.Name, h.HandleType()))
	}
	for _, pair := range duplicated {
		entries = append(entries, fmt.Sprintf("%s\t(%s,\t%s);", macro(pair.variant), pair.variant.Name, pair.canonical.HandleType()))
	}
	return indentLines(entries)
}

func stripTrailingComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		return s[:i]
	}
	return s
}

func genDefinitionsSrc(definitions []*scanner.Definition) []string {
	lines := make([]string, 0, len(definitions))
	for _, d := range definitions {
		lines = append(lines, fmt.Sprintf("#define %s\t(static_cast<%s>\t(%s))", d.Name, d.Type, stripTrailingComment(d.Value)))
	}
	return lines
}

var apiVersionDefinePattern = regexp.MustCompile(`^VK_API_VERSION_(\d+)_(\d+)`)

func genMaxFrameworkVersion(definitions []*scanner.Definition) string {
	maxMajor, maxMinor := 1, 0
	for _, d := range definitions {
		m := apiVersionDefinePattern.FindStringSubmatch(d.Name)
		if m == nil {
			continue
		}
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		if major > maxMajor || (major == maxMajor && minor > maxMinor) {
			maxMajor, maxMinor = major, minor
		}
	}
	return fmt.Sprintf("#define VK_API_MAX_FRAMEWORK_VERSION\tVK_API_VERSION_%d_%d", maxMajor, maxMinor)
}

func (g *Generator) genBasicTypes() ([]string, error) {
	var lines []string

	defs := genDefinitionsSrc(g.api.Definitions)
	defs = append(defs, genMaxFrameworkVersion(g.api.Definitions))
	lines = append(lines, indentLines(defs)...)
	lines = append(lines, "")

	lines = append(lines, genHandlesSrc(g.api.Handles)...)
	lines = append(lines, "")

	for _, enum := range g.api.Enums {
		if !enum.IsAlias {
			lines = append(lines, genEnumSrc(enum)...)
		} else {
			for _, canon := range g.api.Enums {
				if canon.Alias == enum {
					lines = append(lines, fmt.Sprintf("typedef %s %s;", canon.Name, enum.Name))
				}
			}
		}
		lines = append(lines, "")
	}

	for _, bitfield := range g.api.Bitfields {
		if !bitfield.IsAlias {
			src, err := genBitfieldSrc(bitfield)
			if err != nil {
				return nil, err
			}
			lines = append(lines, src...)
		} else {
			for _, canon := range g.api.Bitfields {
				if canon.Alias == bitfield {
					lines = append(lines, fmt.Sprintf("typedef %s %s;", canon.Name, bitfield.Name))
				}
			}
		}
		lines = append(lines, "")
	}

	var platformDecls []string
	for _, pt := range scanner.PlatformTypeDecls() {
		platformDecls = append(platformDecls, fmt.Sprintf("VK_DEFINE_PLATFORM_TYPE(%s,\t%s);", pt.Name, pt.Compat))
	}
	lines = append(lines, indentLines(platformDecls)...)

	for _, ext := range g.api.Extensions {
		for _, d := range ext.AdditionalDefinitions {
			lines = append(lines, "#define "+d.Name+" "+d.Value)
		}
	}
	return lines, nil
}

func (g *Generator) genObjTypeImpl() ([]string, error) {
	lines := []string{
		"namespace vk",
		"{",
		"template<typename T> VkObjectType getObjectType	(void);",
	}

	var entries []string
	for _, h := range g.api.Handles {
		if h.IsAlias {
			continue
		}
		entries = append(entries, fmt.Sprintf("template<> inline VkObjectType\tgetObjectType<%s>\t(void) { return %s;\t}",
			h.Name, scanner.PrefixName("VK_OBJECT_TYPE_", h.Name)))
	}
	lines = append(lines, indentLines(entries)...)
	return append(lines, "}"), nil
}
