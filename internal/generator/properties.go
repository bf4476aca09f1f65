package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// propertyDefsMemo scrapes the property structure roster from the raw
// header text, sorted by sType stem.
func (g *Generator) propertyDefsMemo() []structDef {
	if g.propertyDefs != nil {
		return g.propertyDefs
	}
	src := g.src.Header

	matches := propertySTypePattern.FindAllStringSubmatch(src, -1)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i][1] < matches[j][1] })

	var defs []structDef
	for _, m := range matches {
		sType, sSuffix := m[1], m[2]
		switch sType {
		case "VULKAN_1_1", "VULKAN_1_2", "GROUP", "MEMORY_BUDGET", "MEMORY", "TOOL":
			continue
		}
		// suffixes like _2_AMD carry a version part before the vendor
		// tag; the struct name wants both, the defines want them split
		verSuffix, extSuffix := "", sSuffix
		if i := strings.LastIndex(sSuffix, "_"); i > 0 {
			verSuffix, extSuffix = sSuffix[:i], sSuffix[i:]
		}
		structName := camelizeSType(sType)
		if sType == "ID" {
			structName = sType
		}
		structPtrn := regexp.MustCompile(`(?m)\s*typedef\s+struct\s+(VkPhysicalDevice` + structName + `Properties` + strings.ReplaceAll(sSuffix, "_", "") + `)`)
		structMatch := structPtrn.FindStringSubmatch(src)
		if structMatch == nil {
			continue
		}
		// sType stems that do not match the extension define spelling
		extType := sType
		switch extType {
		case "MAINTENANCE_3":
			extType = "MAINTENANCE3"
		case "DISCARD_RECTANGLE":
			extType = "DISCARD_RECTANGLES"
		case "DRIVER":
			extType = "DRIVER_PROPERTIES"
		case "POINT_CLIPPING":
			extType = "MAINTENANCE2"
		case "SHADER_CORE":
			extType = "SHADER_CORE_PROPERTIES"
		}
		extLine, extName := findDefineLine(src, `\w+`+extSuffix+`_`+extType+verSuffix+`[_0-9]*_EXTENSION_NAME`)
		_, specName := findDefineLine(src, `\w+`+extSuffix+`_`+extType+verSuffix+`[_0-9]*_SPEC_VERSION`)
		if specName == "" {
			specName = "0"
		}
		defs = append(defs, structDef{
			SType:       sType,
			VerSuffix:   verSuffix,
			ExtSuffix:   extSuffix,
			StructName:  structMatch[1],
			ExtLine:     extLine,
			ExtName:     extName,
			SpecVersion: specName,
		})
	}
	g.propertyDefs = defs
	return defs
}

var (
	propertyBlobPattern   = regexp.MustCompile(`^VkPhysicalDeviceVulkan([1-9][0-9])Properties[0-9]*$`)
	allPropertiesPattern  = regexp.MustCompile(`^VkPhysicalDevice\w+Properties[1-9]*`)
	nonExtPropertyPattern = regexp.MustCompile(`^VkPhysicalDevice\w+Properties[1-9]*$`)
)

func (g *Generator) genDeviceProperties() ([]string, error) {
	dpDefs := g.propertyDefsMemo()

	var initFromBlob, emptyInit []string
	blobs := collectBlobs(g.api.CompositeTypes, propertyBlobPattern, allPropertiesPattern, nonExtPropertyPattern,
		func(blobVersion string, t *scanner.CompositeType) {
			if blobVersion == "" {
				// explicit empty specializations keep weaker linkers happy
				emptyInit = append(emptyInit, fmt.Sprintf("template<> void initPropertyFromBlob<%s>(%s&, const AllPropertiesBlobs&) {}", t.Name, t.Name))
				return
			}
			var copying strings.Builder
			for _, m := range t.Members[2:] {
				switch {
				case m.ArraySize != "":
					fmt.Fprintf(&copying, "\tmemcpy(propertyType.%s, allPropertiesBlobs.vk%s.%s, sizeof(%s) * %s);\n",
						m.Name, blobVersion, m.Name, m.Type[0], strings.Trim(m.ArraySize, "[]"))
				case t.Name == "VkPhysicalDeviceSubgroupProperties" && !strings.Contains(m.Name, "subgroup"):
					// the 1.1 blob prefixes these members
					blobMember := "subgroup" + strings.ToUpper(m.Name[:1]) + m.Name[1:]
					fmt.Fprintf(&copying, "\tpropertyType.%s = allPropertiesBlobs.vk%s.%s;\n", m.Name, blobVersion, blobMember)
				default:
					fmt.Fprintf(&copying, "\tpropertyType.%s = allPropertiesBlobs.vk%s.%s;\n", m.Name, blobVersion, m.Name)
				}
			}
			initFromBlob = append(initFromBlob, fmt.Sprintf(
				"template<> void initPropertyFromBlob<%s>(%s& propertyType, const AllPropertiesBlobs& allPropertiesBlobs)\n{\n%s}",
				t.Name, t.Name, copying.String()))
		})

	var extensionDefines, makeDescDefs, structWrappers []string
	for idx, def := range dpDefs {
		extensionNameDefinition := def.ExtName
		if extensionNameDefinition == "" {
			extensionNameDefinition = fmt.Sprintf("DECL%s_%s_EXTENSION_NAME", def.ExtSuffix, def.SType)
		}
		if def.ExtLine != "" {
			extensionDefines = append(extensionDefines, def.ExtLine)
		} else {
			extensionDefines = append(extensionDefines, fmt.Sprintf("#define %s \"core_property\"", extensionNameDefinition))
		}
		sTypeName := fmt.Sprintf("VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_%s_PROPERTIES%s", def.SType, def.VerSuffix+def.ExtSuffix)
		makeDescDefs = append(makeDescDefs, fmt.Sprintf(
			"template<> PropertyDesc makePropertyDesc<%s>(void) { return PropertyDesc{%s, %s, %s, %d}; }",
			def.StructName, sTypeName, extensionNameDefinition, def.SpecVersion, len(dpDefs)-idx))
		structWrappers = append(structWrappers, fmt.Sprintf(
			"\t{ createPropertyStructWrapper<%s>, %s, %s },", def.StructName, extensionNameDefinition, def.SpecVersion))
	}

	blobChecker := []string{
		"bool isPartOfBlobProperties (VkStructureType sType)\n{\n\tconst std::vector<VkStructureType> sTypeVect =\t{",
	}
	for _, version := range blobs.versions {
		blobChecker = append(blobChecker, fmt.Sprintf("\t\t// Vulkan%s", version))
		for _, t := range blobs.structs[version] {
			def, ok := findStructDef(dpDefs, t.Name)
			if !ok {
				return nil, fmt.Errorf("blob member %s has no property definition", t.Name)
			}
			sTypeName := fmt.Sprintf("VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_%s_PROPERTIES%s", def.SType, def.VerSuffix+def.ExtSuffix)
			blobChecker = append(blobChecker, fmt.Sprintf("\t\t%s,", sTypeName))
		}
	}
	blobChecker = append(blobChecker, "\t};\n\treturn de::contains(sTypeVect.begin(), sTypeVect.end(), sType);\n}\n")

	lines := []string{"#include \"vkDeviceProperties.hpp\"\n", "namespace vk\n{"}
	lines = append(lines, extensionDefines...)
	lines = append(lines, "\n")
	lines = append(lines, initFromBlob...)
	lines = append(lines, "\n// generic template is not enough for some compilers")
	lines = append(lines, emptyInit...)
	lines = append(lines, "\n")
	lines = append(lines, makeDescDefs...)
	lines = append(lines, "\n")
	lines = append(lines, "static const PropertyStructCreationData propertyStructCreationArray[] =\n{")
	lines = append(lines, structWrappers...)
	lines = append(lines, "};\n")
	lines = append(lines, blobChecker...)
	lines = append(lines, "} // vk\n")
	return lines, nil
}

func (g *Generator) genDevicePropertiesDefaultDeviceDefs() ([]string, error) {
	return genPatternLines(g.propertyDefsMemo(),
		"const {0}&\tget{1}\t(void) const { return m_deviceProperties.getPropertyType<{0}>();\t}"), nil
}

func (g *Generator) genDevicePropertiesContextDecl() ([]string, error) {
	return genPatternLines(g.propertyDefsMemo(),
		"const vk::{0}&\tget{1}\t(void) const;"), nil
}

func (g *Generator) genDevicePropertiesContextDefs() ([]string, error) {
	return genPatternLines(g.propertyDefsMemo(),
		"const vk::{0}&\tContext::get{1}\t(void) const { return m_device->get{1}();\t}"), nil
}
