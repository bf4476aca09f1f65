package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	camelBoundaryPattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	digitBoundaryPattern = regexp.MustCompile(`([a-zA-Z])([0-9])`)
)

// prefixNameFixups repair SHOUTY_SNAKE conversions where the API's own
// enumerator names disagree with the mechanical split, in order.
var prefixNameFixups = []struct{ from, to string }{
	{"YCB_CR_", "YCBCR_"},
	{"WIN_32_", "WIN32_"},
	{"8_BIT_", "8BIT_"},
	{"16_BIT_", "16BIT_"},
	{"INT_64_", "INT64_"},
	{"D_3_D_12_", "D3D12_"},
	{"IOSSURFACE_", "IOS_SURFACE_"},
	{"MAC_OS", "MACOS_"},
	{"TEXTURE_LOD", "TEXTURE_LOD_"},
	{"VIEWPORT_W", "VIEWPORT_W_"},
	{"_IDPROPERTIES", "_ID_PROPERTIES"},
	{"PHYSICAL_DEVICE_SHADER_FLOAT_16_INT_8_FEATURES", "PHYSICAL_DEVICE_SHADER_FLOAT16_INT8_FEATURES"},
	{"_PCIBUS_", "_PCI_BUS_"},
	{"ASTCD", "ASTC_D"},
	{"AABBNV", "AABB_NV"},
	{"IMAGE_PIPE", "IMAGEPIPE"},
	{"SMBUILTINS", "SM_BUILTINS"},
	{"ASTCHDRFEATURES", "ASTC_HDR_FEATURES"},
	{"UINT_8", "UINT8"},
	{"VULKAN_11_FEATURES", "VULKAN_1_1_FEATURES"},
	{"VULKAN_11_PROPERTIES", "VULKAN_1_1_PROPERTIES"},
	{"VULKAN_12_FEATURES", "VULKAN_1_2_FEATURES"},
	{"VULKAN_12_PROPERTIES", "VULKAN_1_2_PROPERTIES"},
	{"INT_8_", "INT8_"},
}

// PrefixName converts a Vk-prefixed camel case name to the matching
// SHOUTY_SNAKE enumerator name under the given prefix
// ("VK_OBJECT_TYPE_", "VkSamplerYcbcrConversion" ->
// "VK_OBJECT_TYPE_SAMPLER_YCBCR_CONVERSION").
func PrefixName(prefix, name string) string {
	s := camelBoundaryPattern.ReplaceAllString(name[2:], "${1}_${2}")
	s = digitBoundaryPattern.ReplaceAllString(s, "${1}_${2}")
	s = strings.ToUpper(s)
	for _, f := range prefixNameFixups {
		s = strings.ReplaceAll(s, f.from, f.to)
	}
	return prefix + s
}

// SplitNameExtPostfix splits a trailing vendor postfix off a type name.
// Returns the bare name and an empty postfix when none matches.
func SplitNameExtPostfix(name string) (base, postfix string) {
	for _, p := range extensionPostfixes {
		if strings.HasSuffix(name, p) {
			return name[:len(name)-len(p)], p
		}
	}
	return name, ""
}

// RemoveStandardPostfix strips a KHR/EXT postfix. The second result is
// false when the name carries no standard postfix.
func RemoveStandardPostfix(name string) (string, bool) {
	for _, p := range extensionPostfixesStandard {
		if strings.HasSuffix(name, p) {
			return name[:len(name)-len(p)], true
		}
	}
	return "", false
}

// BitEnumNameForBitfield derives the backing *FlagBits enum name from a
// VkFlags carrier name ("VkAccessFlagsKHR" -> "VkAccessFlagBitsKHR").
func BitEnumNameForBitfield(bitfieldName string) (string, error) {
	base, postfix := SplitNameExtPostfix(bitfieldName)
	if !strings.HasSuffix(base, "s") {
		return "", fmt.Errorf("bitfield name %s does not end in s", bitfieldName)
	}
	return base[:len(base)-1] + "Bits" + postfix, nil
}

// BitfieldNameForBitEnum is the inverse of BitEnumNameForBitfield.
func BitfieldNameForBitEnum(bitEnumName string) (string, error) {
	base, postfix := SplitNameExtPostfix(bitEnumName)
	if !strings.HasSuffix(base, "Bits") {
		return "", fmt.Errorf("bit enum name %s does not end in Bits", bitEnumName)
	}
	return base[:len(base)-4] + "s" + postfix, nil
}
