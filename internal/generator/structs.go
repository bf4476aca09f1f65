package generator

import (
	"fmt"

	"github.com/Alia5/vulkangen/internal/scanner"
)

func genCompositeTypeSrc(t *scanner.CompositeType) []string {
	members := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, "\t"+m.Decl("\t")+";")
	}

	lines := []string{fmt.Sprintf("%s %s", t.Class, t.Name), "{"}
	lines = append(lines, indentLines(members)...)
	return append(lines, "};")
}

func (g *Generator) genStructTypes() ([]string, error) {
	var lines []string
	for _, t := range g.api.CompositeTypes {
		if err := t.CheckAliasValidity(); err != nil {
			return nil, err
		}
		if !t.IsAlias {
			lines = append(lines, genCompositeTypeSrc(t)...)
		} else {
			for _, canon := range g.api.CompositeTypes {
				if canon.Alias == t {
					lines = append(lines, fmt.Sprintf("typedef %s %s;", canon.Name, t.Name))
				}
			}
		}
		lines = append(lines, "")
	}
	return lines, nil
}

func (g *Generator) genStructTraits() ([]string, error) {
	var lines []string
	for _, t := range g.api.CompositeTypes {
		if t.Class != scanner.ClassStruct || t.IsAlias || len(t.Members) == 0 || t.Members[0].Name != "sType" {
			continue
		}
		if t.Name == "VkBaseOutStructure" || t.Name == "VkBaseInStructure" {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("template<> VkStructureType getStructureType<%s> (void)", t.Name),
			"{",
			fmt.Sprintf("\treturn %s;", scanner.PrefixName("VK_STRUCTURE_TYPE_", t.Name)),
			"}",
			"")
	}
	return lines, nil
}

// queryResultTypes are structs filled by API queries; test code has no
// use for make helpers over them.
var queryResultTypes = map[string]bool{
	"VkPhysicalDeviceFeatures":         true,
	"VkPhysicalDeviceLimits":           true,
	"VkFormatProperties":               true,
	"VkImageFormatProperties":          true,
	"VkPhysicalDeviceSparseProperties": true,
	"VkQueueFamilyProperties":          true,
	"VkMemoryType":                     true,
	"VkMemoryHeap":                     true,
}

func (g *Generator) genTypeUtil() ([]string, error) {
	compositeNames := make(map[string]bool, len(g.api.CompositeTypes))
	for _, t := range g.api.CompositeTypes {
		if !t.IsAlias {
			compositeNames[t.Name] = true
		}
	}

	isSimpleStruct := func(t *scanner.CompositeType) bool {
		if t.Class != scanner.ClassStruct || queryResultTypes[t.Name] {
			return false
		}
		if len(t.Members) > 0 && t.Members[0].TypeString() == "VkStructureType" {
			return false
		}
		for _, m := range t.Members {
			if m.ArraySize != "" || compositeNames[m.TypeString()] {
				return false
			}
		}
		return true
	}

	var lines []string
	for _, t := range g.api.CompositeTypes {
		if t.IsAlias || !isSimpleStruct(t) {
			continue
		}
		lines = append(lines,
			"",
			fmt.Sprintf("inline %s make%s (%s)", t.Name, t.Name[2:], argListToStr(t.Members)),
			"{",
			fmt.Sprintf("\t%s res;", t.Name))
		assignments := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			assignments = append(assignments, fmt.Sprintf("\tres.%s\t= %s;", m.Name, m.Name))
		}
		lines = append(lines, indentLines(assignments)...)
		lines = append(lines, "\treturn res;", "}")
	}
	return lines, nil
}
