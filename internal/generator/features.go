package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// structDef is one physical-device feature or property structure
// scraped from the sType enum, with the extension define lines that
// belong to it.
type structDef struct {
	SType       string
	VerSuffix   string
	ExtSuffix   string
	StructName  string
	ExtLine     string // full #define line, empty when the extension has none
	ExtName     string // define name, empty when the extension has none
	SpecVersion string // "0" when absent
}

var (
	featureSTypePattern  = regexp.MustCompile(`(?m)VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_(\w+)_FEATURES(\w*)\s*=`)
	propertySTypePattern = regexp.MustCompile(`(?m)VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_(\w+)_PROPERTIES(\w*)\s*=`)
	snakeCamelPattern    = regexp.MustCompile(`[_0-9][a-z]`)
)

// camelizeSType turns SHADER_FLOAT16_INT8 into ShaderFloat16Int8.
func camelizeSType(sType string) string {
	name := strings.ToUpper(sType[:1]) + strings.ToLower(sType[1:])
	name = snakeCamelPattern.ReplaceAllStringFunc(name, strings.ToUpper)
	return strings.ReplaceAll(name, "_", "")
}

func findDefineLine(src, pattern string) (line, name string) {
	ptrn := regexp.MustCompile(`(?m)^\s*#define\s+(` + pattern + `).+$`)
	m := ptrn.FindStringSubmatch(src)
	if m == nil {
		return "", ""
	}
	return m[0], m[1]
}

// featureDefs scrapes the feature structure roster from the raw header
// text, sorted by sType stem.
func (g *Generator) featureDefsMemo() []structDef {
	if g.featureDefs != nil {
		return g.featureDefs
	}
	src := g.src.Header

	matches := featureSTypePattern.FindAllStringSubmatch(src, -1)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i][1] < matches[j][1] })

	var defs []structDef
	for _, m := range matches {
		sType, sSuffix := m[1], m[2]
		structName := camelizeSType(sType)
		structPtrn := regexp.MustCompile(`(?i)\s*typedef\s+struct\s+(VkPhysicalDevice` + structName + `Features` + strings.ReplaceAll(sSuffix, "_", "") + `)`)
		structMatch := structPtrn.FindStringSubmatch(src)
		if structMatch == nil {
			continue
		}
		// sType stems that do not match the extension define spelling
		switch sType {
		case "EXCLUSIVE_SCISSOR":
			sType = "SCISSOR_EXCLUSIVE"
		case "ASTC_DECODE":
			sType = "ASTC_DECODE_MODE"
		}
		if sType == "VULKAN_1_1" || sType == "VULKAN_1_2" {
			continue
		}
		extLine, extName := findDefineLine(src, `\w+`+sSuffix+`_`+sType+`_EXTENSION_NAME`)
		_, specName := findDefineLine(src, `\w+`+sSuffix+`_`+sType+`_SPEC_VERSION`)
		if specName == "" {
			specName = "0"
		}
		defs = append(defs, structDef{
			SType:       sType,
			VerSuffix:   "",
			ExtSuffix:   sSuffix,
			StructName:  structMatch[1],
			ExtLine:     extLine,
			ExtName:     extName,
			SpecVersion: specName,
		})
	}
	g.featureDefs = defs
	return defs
}

// undoFeatureSTypeFixup maps the define-side stem back to the sType
// enum spelling.
func undoFeatureSTypeFixup(sType string) string {
	switch sType {
	case "SCISSOR_EXCLUSIVE":
		return "EXCLUSIVE_SCISSOR"
	case "ASTC_DECODE_MODE":
		return "ASTC_DECODE"
	}
	return sType
}

type blobSet struct {
	versions []string            // sorted "11", "12", ...
	members  map[string][]string // version -> member names past sType/pNext
	structs  map[string][]*scanner.CompositeType
}

// collectBlobs finds the VkPhysicalDeviceVulkanXYFeatures/Properties
// aggregate structures and assigns each per-feature structure to the
// blob that contains its first member.
func collectBlobs(types []*scanner.CompositeType, blobPattern, allPattern, nonExtPattern *regexp.Regexp,
	onMember func(blobVersion string, t *scanner.CompositeType)) *blobSet {

	blobs := &blobSet{
		members: make(map[string][]string),
		structs: make(map[string][]*scanner.CompositeType),
	}
	for _, t := range types {
		m := blobPattern.FindStringSubmatch(t.Name)
		if m == nil {
			continue
		}
		var names []string
		for _, member := range t.Members[2:] {
			names = append(names, member.Name)
		}
		blobs.versions = append(blobs.versions, m[1])
		blobs.members[m[1]] = names
	}
	sort.Strings(blobs.versions)

	for _, t := range types {
		if !allPattern.MatchString(t.Name) || blobPattern.MatchString(t.Name) || t.IsAlias {
			continue
		}
		partOfBlob := false
		if nonExtPattern.MatchString(t.Name) && len(t.Members) > 2 {
			first := t.Members[2].Name
			for _, version := range blobs.versions {
				contained := false
				for _, name := range blobs.members[version] {
					if name == first {
						contained = true
						break
					}
				}
				if !contained {
					continue
				}
				blobs.structs[version] = append(blobs.structs[version], t)
				onMember(version, t)
				partOfBlob = true
				break
			}
		}
		if !partOfBlob {
			onMember("", t)
		}
	}
	for _, version := range blobs.versions {
		sort.Slice(blobs.structs[version], func(i, j int) bool {
			return blobs.structs[version][i].Name < blobs.structs[version][j].Name
		})
	}
	return blobs
}

var (
	featureBlobPattern   = regexp.MustCompile(`^VkPhysicalDeviceVulkan([1-9][0-9])Features[0-9]*$`)
	allFeaturesPattern   = regexp.MustCompile(`^VkPhysicalDevice\w+Features[1-9]*`)
	nonExtFeaturePattern = regexp.MustCompile(`^VkPhysicalDevice\w+Features[1-9]*$`)
)

func (g *Generator) genDeviceFeatures() ([]string, error) {
	dfDefs := g.featureDefsMemo()

	var initFromBlob, emptyInit []string
	blobs := collectBlobs(g.api.CompositeTypes, featureBlobPattern, allFeaturesPattern, nonExtFeaturePattern,
		func(blobVersion string, t *scanner.CompositeType) {
			if blobVersion == "" {
				// explicit empty specializations keep weaker linkers happy
				emptyInit = append(emptyInit, fmt.Sprintf("template<> void initFeatureFromBlob<%s>(%s&, const AllFeaturesBlobs&) {}", t.Name, t.Name))
				return
			}
			var copying strings.Builder
			for _, m := range t.Members[2:] {
				fmt.Fprintf(&copying, "\tfeatureType.%s = allFeaturesBlobs.vk%s.%s;\n", m.Name, blobVersion, m.Name)
			}
			initFromBlob = append(initFromBlob, fmt.Sprintf(
				"template<> void initFeatureFromBlob<%s>(%s& featureType, const AllFeaturesBlobs& allFeaturesBlobs)\n{\n%s}",
				t.Name, t.Name, copying.String()))
		})

	var extensionDefines, makeDescDefs, structWrappers []string
	for idx, def := range dfDefs {
		extensionNameDefinition := def.ExtName
		if extensionNameDefinition == "" {
			extensionNameDefinition = fmt.Sprintf("DECL%s_%s_EXTENSION_NAME", def.ExtSuffix, def.SType)
		}
		if def.ExtLine != "" {
			extensionDefines = append(extensionDefines, def.ExtLine)
		} else {
			extensionDefines = append(extensionDefines, fmt.Sprintf("#define %s \"not_existent_feature\"", extensionNameDefinition))
		}
		sTypeName := fmt.Sprintf("VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_%s_FEATURES%s", undoFeatureSTypeFixup(def.SType), def.VerSuffix+def.ExtSuffix)
		makeDescDefs = append(makeDescDefs, fmt.Sprintf(
			"template<> FeatureDesc makeFeatureDesc<%s>(void) { return FeatureDesc{%s, %s, %s, %d}; }",
			def.StructName, sTypeName, extensionNameDefinition, def.SpecVersion, len(dfDefs)-idx))
		structWrappers = append(structWrappers, fmt.Sprintf(
			"\t{ createFeatureStructWrapper<%s>, %s, %s },", def.StructName, extensionNameDefinition, def.SpecVersion))
	}

	blobChecker := []string{
		"bool isPartOfBlobFeatures (VkStructureType sType)\n{\n\tconst std::vector<VkStructureType> sTypeVect =\t{",
	}
	for _, version := range blobs.versions {
		blobChecker = append(blobChecker, fmt.Sprintf("\t\t// Vulkan%s", version))
		for _, t := range blobs.structs[version] {
			structName := t.Name
			// naming slipped between header revisions
			if structName == "VkPhysicalDeviceShaderDrawParameterFeatures" {
				structName = "VkPhysicalDeviceShaderDrawParametersFeatures"
			}
			def, ok := findStructDef(dfDefs, structName)
			if !ok {
				return nil, fmt.Errorf("blob member %s has no feature definition", structName)
			}
			sTypeName := fmt.Sprintf("VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_%s_FEATURES%s", undoFeatureSTypeFixup(def.SType), def.VerSuffix+def.ExtSuffix)
			blobChecker = append(blobChecker, fmt.Sprintf("\t\t%s,", sTypeName))
		}
	}
	blobChecker = append(blobChecker, "\t};\n\treturn de::contains(sTypeVect.begin(), sTypeVect.end(), sType);\n}\n")

	lines := []string{"#include \"vkDeviceFeatures.hpp\"\n", "namespace vk\n{"}
	lines = append(lines, extensionDefines...)
	lines = append(lines, "\n")
	lines = append(lines, initFromBlob...)
	lines = append(lines, "\n// generic template is not enough for some compilers")
	lines = append(lines, emptyInit...)
	lines = append(lines, "\n")
	lines = append(lines, makeDescDefs...)
	lines = append(lines, "\n")
	lines = append(lines, "static const FeatureStructCreationData featureStructCreationArray[] =\n{")
	lines = append(lines, structWrappers...)
	lines = append(lines, "};\n")
	lines = append(lines, blobChecker...)
	lines = append(lines, "} // vk\n")
	return lines, nil
}

func findStructDef(defs []structDef, structName string) (structDef, bool) {
	for _, d := range defs {
		if d.StructName == structName {
			return d, true
		}
	}
	return structDef{}, false
}

// accessorName strips the vendor noise from a struct name for the
// getter pattern writers.
func accessorName(structName string) string {
	name := strings.ReplaceAll(structName, "VkPhysicalDevice", "")
	name = strings.ReplaceAll(name, "KHR", "")
	name = strings.ReplaceAll(name, "NV", "")
	// the NV ray tracing struct keeps its vendor tag so it cannot
	// collide with the KHR one
	if structName == "VkPhysicalDeviceRayTracingPropertiesNV" {
		name += "NV"
	}
	return name
}

func genPatternLines(defs []structDef, pattern string) []string {
	var lines []string
	for _, def := range defs {
		name := accessorName(def.StructName)
		lines = append(lines, strings.ReplaceAll(strings.ReplaceAll(pattern, "{0}", def.StructName), "{1}", name))
	}
	return indentLines(lines)
}

func (g *Generator) genDeviceFeaturesDefaultDeviceDefs() ([]string, error) {
	return genPatternLines(g.featureDefsMemo(),
		"const {0}&\tget{1}\t(void) const { return m_deviceFeatures.getFeatureType<{0}>();\t}"), nil
}

func (g *Generator) genDeviceFeaturesContextDecl() ([]string, error) {
	return genPatternLines(g.featureDefsMemo(),
		"const vk::{0}&\tget{1}\t(void) const;"), nil
}

func (g *Generator) genDeviceFeaturesContextDefs() ([]string, error) {
	return genPatternLines(g.featureDefsMemo(),
		"const vk::{0}&\tContext::get{1}\t(void) const { return m_device->get{1}();\t}"), nil
}
