package generator

import (
	"fmt"
	"regexp"
	"strings"
)

// testedFeatureStructures are the structures exercised through
// getPhysicalDeviceFeatures2. The header text does not say which
// structures the test wants, so new ones have to be added here by
// hand.
var testedFeatureStructures = []string{
	"VkPhysicalDeviceConditionalRenderingFeaturesEXT",
	"VkPhysicalDeviceScalarBlockLayoutFeatures",
	"VkPhysicalDevicePerformanceQueryFeaturesKHR",
	"VkPhysicalDevice16BitStorageFeatures",
	"VkPhysicalDeviceMultiviewFeatures",
	"VkPhysicalDeviceProtectedMemoryFeatures",
	"VkPhysicalDeviceSamplerYcbcrConversionFeatures",
	"VkPhysicalDeviceVariablePointersFeatures",
	"VkPhysicalDevice8BitStorageFeatures",
	"VkPhysicalDeviceShaderAtomicInt64Features",
	"VkPhysicalDeviceShaderFloat16Int8Features",
	"VkPhysicalDeviceBufferDeviceAddressFeaturesEXT",
	"VkPhysicalDeviceBufferDeviceAddressFeatures",
	"VkPhysicalDeviceDescriptorIndexingFeatures",
	"VkPhysicalDeviceTimelineSemaphoreFeatures",
	"VkPhysicalDeviceFragmentDensityMapFeaturesEXT",
	"VkPhysicalDeviceFragmentDensityMap2FeaturesEXT",
}

var featureStemPattern = regexp.MustCompile(`(.*)Features(.*)`)

// splitCamelWords breaks ShaderFloat16Int8 into Shader, Float16 and
// Int8. A word is a run of capitals and digits followed by an
// optional run of lowercase letters and digits.
func splitCamelWords(s string) []string {
	isUpper := func(c byte) bool { return c >= 'A' && c <= 'Z' || c >= '1' && c <= '9' }
	isLower := func(c byte) bool { return c >= 'a' && c <= 'z' || c >= '1' && c <= '9' }
	var words []string
	for i := 0; i < len(s); {
		if !isUpper(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isUpper(s[j]) {
			j++
		}
		for j < len(s) && isLower(s[j]) {
			j++
		}
		words = append(words, s[i:j])
		i = j
	}
	return words
}

type structureDetail struct {
	name         string
	sType        string
	instanceName string
	flagName     string
	extension    string
	major, minor int
	hasVersion   bool
	members      []string
}

func newStructureDetail(name string) structureDetail {
	stem := name[len("VkPhysicalDevice"):]
	m := featureStemPattern.FindStringSubmatch(stem)
	var words []string
	// digits are sometimes separated with '_' in the sType spelling
	// (FRAGMENT_DENSITY_MAP_2) and sometimes not (SHADER_FLOAT16_INT8)
	if m[1] == "FragmentDensityMap2" {
		words = []string{"FRAGMENT", "DENSITY", "MAP", "2", "FEATURES"}
	} else {
		for _, w := range splitCamelWords(m[1]) {
			words = append(words, strings.ToUpper(w))
		}
		words = append(words, "FEATURES")
	}
	if m[2] != "" {
		words = append(words, m[2])
	}
	return structureDetail{
		name:         name,
		sType:        "VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_" + strings.Join(words, "_"),
		instanceName: "d" + name[11:],
		flagName:     "is" + name[16:],
	}
}

func (g *Generator) genDeviceFeatures2() ([]string, error) {
	details := make([]structureDetail, len(testedFeatureStructures))
	for i, name := range testedFeatureStructures {
		details[i] = newStructureDetail(name)
	}

	// find the extension that introduces each structure; promoted
	// extensions declare a typedef instead of the struct itself
	for i := range details {
		d := &details[i]
	extSearch:
		for _, ext := range g.api.Extensions[1:] {
			for _, t := range ext.CompositeTypes {
				if t.Name == d.name {
					d.extension = ext.Name
					if ext.VersionInCore != nil {
						d.major = ext.VersionInCore.Version.Major
						d.minor = ext.VersionInCore.Version.Minor
						d.hasVersion = true
					}
					break extSearch
				}
			}
			for _, td := range ext.Typedefs {
				if td.Name == d.name {
					d.extension = ext.Name
					if ext.VersionInCore != nil {
						d.major = ext.VersionInCore.Version.Major
						d.minor = ext.VersionInCore.Version.Minor
						d.hasVersion = true
					}
					break extSearch
				}
			}
		}
	}
	for i := range details {
		d := &details[i]
		for _, t := range g.api.CompositeTypes {
			if t.Name != d.name {
				continue
			}
			for _, m := range t.Members[2:] {
				d.members = append(d.members, m.Name)
			}
			if d.hasVersion {
				break
			}
			// not enabled by an extension, maybe added directly with
			// a vulkan version
			if t.APIVersion == nil {
				continue
			}
			d.major = t.APIVersion.Major
			d.minor = t.APIVersion.Minor
			d.hasVersion = true
			break
		}
	}

	var structureDefinitions, featureEnabledFlags, clearStructures []string
	var structureChain, logStructures, verifyStructures []string
	for index, d := range details {
		nameSpacing := strings.Repeat("\t", (55-len(d.name))/4)
		structureDefinitions = append(structureDefinitions, d.name+nameSpacing+d.instanceName+"[count];")

		condition := ""
		if d.extension != "" {
			condition = " checkExtension(properties, \"" + d.extension + "\")"
		}
		if d.hasVersion {
			if condition != "" {
				condition += strings.Repeat("\t", (39-len(d.extension))/4) + "|| "
			} else {
				condition += strings.Repeat("\t", 17) + "   "
			}
			condition += fmt.Sprintf("context.contextSupports(vk::ApiVersion(%d, %d, 0))", d.major, d.minor)
		}
		condition += ";"
		nameSpacing = strings.Repeat("\t", (40-len(d.flagName))/4)
		featureEnabledFlags = append(featureEnabledFlags, "const bool "+d.flagName+nameSpacing+"="+condition)

		nameSpacing = strings.Repeat("\t", (43-len(d.instanceName))/4)
		clearStructures = append(clearStructures,
			"\tdeMemset(&"+d.instanceName+"[ndx],"+nameSpacing+"0xFF * ndx, sizeof("+d.name+"));")

		nextInstanceName := "DE_NULL"
		if index < len(details)-1 {
			nextInstanceName = "&" + details[index+1].instanceName + "[ndx]"
		}
		structureChain = append(structureChain,
			"\t"+d.instanceName+"[ndx].sType = "+d.sType+";",
			"\t"+d.instanceName+"[ndx].pNext = "+nextInstanceName+";\n")

		logStructures = append(logStructures,
			"if ("+d.flagName+")",
			"\tlog << TestLog::Message << "+d.instanceName+"[0] << TestLog::EndMessage;")

		verifyStructures = append(verifyStructures, "if ("+d.flagName+" &&")
		for mi, m := range d.members {
			prefix, postfix := "\t ", " ||"
			if mi == 0 {
				prefix = "\t("
			}
			if mi == len(d.members)-1 {
				postfix = "))"
			}
			verifyStructures = append(verifyStructures,
				prefix+d.instanceName+"[0]."+m+" != "+d.instanceName+"[1]."+m+postfix)
		}
		verifyStructures = append(verifyStructures, "{\n\t\tTCU_FAIL(\"Mismatch between "+d.name+"\");\n}")
	}

	var lines []string
	lines = append(lines, structureDefinitions...)
	lines = append(lines, "")
	lines = append(lines, featureEnabledFlags...)
	lines = append(lines, "\nfor (int ndx = 0; ndx < count; ++ndx)\n{")
	lines = append(lines, clearStructures...)
	lines = append(lines, "")
	lines = append(lines, structureChain...)
	lines = append(lines,
		"\tdeMemset(&extFeatures.features, 0xcd, sizeof(extFeatures.features));\n"+
			"\textFeatures.sType = VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_FEATURES_2;\n"+
			"\textFeatures.pNext = &"+details[0].instanceName+"[ndx];\n"+
			"\tvki.getPhysicalDeviceFeatures2(physicalDevice, &extFeatures);\n}\n")
	lines = append(lines, logStructures...)
	lines = append(lines, "")
	lines = append(lines, verifyStructures...)
	return lines, nil
}
