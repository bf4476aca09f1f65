package generator

import (
	"fmt"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// aliasedBitfieldKeptInStrUtil names the one aliased bitfield that
// still gets its own formatter: existing test code formats it through
// the NV spelling.
const aliasedBitfieldKeptInStrUtil = "VkBuildAccelerationStructureFlagsNV"

func (g *Generator) genStrUtilProto() ([]string, error) {
	var lines []string

	var nameProtos []string
	for _, e := range g.api.Enums {
		if e.IsAlias {
			continue
		}
		nameProtos = append(nameProtos, fmt.Sprintf("const char*\tget%sName\t(%s value);", e.Name[2:], e.Name))
	}
	lines = append(lines, indentLines(nameProtos)...)
	lines = append(lines, "")

	var strProtos []string
	for _, e := range g.api.Enums {
		if e.IsAlias {
			continue
		}
		strProtos = append(strProtos, fmt.Sprintf("inline tcu::Format::Enum<%s>\tget%sStr\t(%s value)\t{ return tcu::Format::Enum<%s>(get%sName, value);\t}",
			e.Name, e.Name[2:], e.Name, e.Name, e.Name[2:]))
	}
	lines = append(lines, indentLines(strProtos)...)
	lines = append(lines, "")

	var streamProtos []string
	for _, e := range g.api.Enums {
		if e.IsAlias {
			continue
		}
		streamProtos = append(streamProtos, fmt.Sprintf("inline std::ostream&\toperator<<\t(std::ostream& s, %s value)\t{ return s << get%sStr(value);\t}",
			e.Name, e.Name[2:]))
	}
	lines = append(lines, indentLines(streamProtos)...)
	lines = append(lines, "")

	var bitfieldProtos []string
	for _, b := range g.api.Bitfields {
		if b.IsAlias && b.Name != aliasedBitfieldKeptInStrUtil {
			continue
		}
		bitfieldProtos = append(bitfieldProtos, fmt.Sprintf("tcu::Format::Bitfield<32>\tget%sStr\t(%s value);", b.Name[2:], b.Name))
	}
	lines = append(lines, indentLines(bitfieldProtos)...)
	lines = append(lines, "")

	var structProtos []string
	for _, t := range g.api.CompositeTypes {
		if t.IsAlias {
			continue
		}
		structProtos = append(structProtos, fmt.Sprintf("std::ostream&\toperator<<\t(std::ostream& s, const %s& value);", t.Name))
	}
	lines = append(lines, indentLines(structProtos)...)
	return lines, nil
}

// structMemberFormat picks the expression that formats one struct
// member for the stream operator, and whether the value goes on its own
// line.
func structMemberFormat(m *scanner.Variable, bitfieldNames map[string]bool) (valFmt string, newLine bool) {
	memberType := m.TypeString()
	switch {
	case bitfieldNames[memberType]:
		return fmt.Sprintf("get%sStr(value.%s)", memberType[2:], m.Name), false
	case memberType == "const char*" || memberType == "char*":
		return fmt.Sprintf("getCharPtrStr(value.%s)", m.Name), false
	case memberType == scanner.PlatformTypeNamespace()+"::Win32LPCWSTR":
		return fmt.Sprintf("getWStr(value.%s)", m.Name), false
	case m.ArraySize != "":
		switch {
		case m.Name == "extensionName" || m.Name == "deviceName" || m.Name == "layerName" || m.Name == "description":
			return fmt.Sprintf("(const char*)value.%s", m.Name), false
		case memberType == "char" || memberType == "deUint8":
			return fmt.Sprintf("tcu::formatArray(tcu::Format::HexIterator<%s>(DE_ARRAY_BEGIN(value.%s)), tcu::Format::HexIterator<%s>(DE_ARRAY_END(value.%s)))",
				memberType, m.Name, memberType, m.Name), true
		default:
			endIter := fmt.Sprintf("DE_ARRAY_END(value.%s)", m.Name)
			if m.Name == "memoryTypes" || m.Name == "memoryHeaps" {
				endIter = fmt.Sprintf("DE_ARRAY_BEGIN(value.%s) + value.%sCount", m.Name, m.Name[:len(m.Name)-1])
			}
			return fmt.Sprintf("tcu::formatArray(DE_ARRAY_BEGIN(value.%s), %s)", m.Name, endIter), true
		}
	default:
		return fmt.Sprintf("value.%s", m.Name), false
	}
}

func (g *Generator) genStrUtilImpl() ([]string, error) {
	var lines []string

	var typeNames []string
	for _, h := range g.api.Handles {
		if h.IsAlias {
			continue
		}
		typeNames = append(typeNames, fmt.Sprintf("template<> const char*\tgetTypeName<%s>\t(void) { return \"%s\";\t}", h.Name, h.Name))
	}
	lines = append(lines, indentLines(typeNames)...)

	lines = append(lines, "", fmt.Sprintf("namespace %s", scanner.PlatformTypeNamespace()), "{")
	var platformFmts []string
	for _, pt := range scanner.PlatformTypeDecls() {
		platformFmts = append(platformFmts, fmt.Sprintf("std::ostream& operator<< (std::ostream& s, %s\tv) { return s << tcu::toHex(v.internal); }", pt.Name))
	}
	lines = append(lines, indentLines(platformFmts)...)
	lines = append(lines, "}")

	for _, e := range g.api.Enums {
		if e.IsAlias {
			continue
		}
		lines = append(lines,
			"",
			fmt.Sprintf("const char* get%sName (%s value)", e.Name[2:], e.Name),
			"{",
			"\tswitch (value)",
			"\t{")
		var cases []string
		for _, v := range e.Values {
			if strings.HasPrefix(v.Value, "VK") {
				continue
			}
			cases = append(cases, fmt.Sprintf("\t\tcase %s:\treturn \"%s\";", v.Name, v.Name))
		}
		cases = append(cases, "\t\tdefault:\treturn DE_NULL;")
		lines = append(lines, indentLines(cases)...)
		lines = append(lines, "\t}", "}")
	}

	for _, b := range g.api.Bitfields {
		if b.IsAlias && b.Name != aliasedBitfieldKeptInStrUtil {
			continue
		}
		lines = append(lines,
			"",
			fmt.Sprintf("tcu::Format::Bitfield<32> get%sStr (%s value)", b.Name[2:], b.Name),
			"{")
		if len(b.Values) > 0 {
			lines = append(lines,
				"\tstatic const tcu::Format::BitDesc s_desc[] =",
				"\t{")
			var descs []string
			for _, v := range b.Values {
				descs = append(descs, fmt.Sprintf("\t\ttcu::Format::BitDesc(%s,\t\"%s\"),", v.Name, v.Name))
			}
			lines = append(lines, indentLines(descs)...)
			lines = append(lines,
				"\t};",
				"\treturn tcu::Format::Bitfield<32>(value, DE_ARRAY_BEGIN(s_desc), DE_ARRAY_END(s_desc));")
		} else {
			lines = append(lines, "\treturn tcu::Format::Bitfield<32>(value, DE_NULL, DE_NULL);")
		}
		lines = append(lines, "}")
	}

	bitfieldNames := make(map[string]bool, len(g.api.Bitfields))
	for _, b := range g.api.Bitfields {
		bitfieldNames[b.Name] = true
	}

	for _, t := range g.api.CompositeTypes {
		if t.IsAlias {
			continue
		}
		lines = append(lines,
			"",
			fmt.Sprintf("std::ostream& operator<< (std::ostream& s, const %s& value)", t.Name),
			"{",
			fmt.Sprintf("\ts << \"%s = {\\n\";", t.Name))
		for _, m := range t.Members {
			valFmt, ownLine := structMemberFormat(m, bitfieldNames)
			newLine := ""
			if ownLine {
				newLine = "'\\n' << "
			}
			lines = append(lines, fmt.Sprintf("\ts << \"\\t%s = \" << %s%s << '\\n';", m.Name, newLine, valFmt))
		}
		lines = append(lines, "\ts << '}';", "\treturn s;", "}")
	}
	return lines, nil
}
