package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		in       string
		expected string
	}{
		{"simple", "HANDLE_TYPE_", "VkInstance", "HANDLE_TYPE_INSTANCE"},
		{"two words", "HANDLE_TYPE_", "VkCommandBuffer", "HANDLE_TYPE_COMMAND_BUFFER"},
		{"digits", "VK_STRUCTURE_TYPE_", "VkPhysicalDevice8BitStorageFeatures", "VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_8BIT_STORAGE_FEATURES"},
		{"ycbcr", "VK_OBJECT_TYPE_", "VkSamplerYcbcrConversion", "VK_OBJECT_TYPE_SAMPLER_YCBCR_CONVERSION"},
		{"win32", "VK_STRUCTURE_TYPE_", "VkImportMemoryWin32HandleInfoKHR", "VK_STRUCTURE_TYPE_IMPORT_MEMORY_WIN32_HANDLE_INFO_KHR"},
		{"vulkan blob", "VK_STRUCTURE_TYPE_", "VkPhysicalDeviceVulkan11Features", "VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_1_FEATURES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrefixName(tt.prefix, tt.in))
		})
	}
}

func TestSplitNameExtPostfix(t *testing.T) {
	base, postfix := SplitNameExtPostfix("VkAccessFlagsKHR")
	assert.Equal(t, "VkAccessFlags", base)
	assert.Equal(t, "KHR", postfix)

	base, postfix = SplitNameExtPostfix("VkAccessFlags")
	assert.Equal(t, "VkAccessFlags", base)
	assert.Equal(t, "", postfix)

	base, postfix = SplitNameExtPostfix("VkImportMemoryZirconHandleInfoFUCHSIA")
	assert.Equal(t, "VkImportMemoryZirconHandleInfo", base)
	assert.Equal(t, "FUCHSIA", postfix)
}

func TestBitEnumNameForBitfield(t *testing.T) {
	name, err := BitEnumNameForBitfield("VkAccessFlags")
	require.NoError(t, err)
	assert.Equal(t, "VkAccessFlagBits", name)

	name, err = BitEnumNameForBitfield("VkPeerMemoryFeatureFlagsKHR")
	require.NoError(t, err)
	assert.Equal(t, "VkPeerMemoryFeatureFlagBitsKHR", name)

	_, err = BitEnumNameForBitfield("VkBogus")
	assert.Error(t, err)
}

func TestBitfieldNameForBitEnum(t *testing.T) {
	name, err := BitfieldNameForBitEnum("VkAccessFlagBits")
	require.NoError(t, err)
	assert.Equal(t, "VkAccessFlags", name)

	name, err = BitfieldNameForBitEnum("VkPeerMemoryFeatureFlagBitsKHR")
	require.NoError(t, err)
	assert.Equal(t, "VkPeerMemoryFeatureFlagsKHR", name)

	_, err = BitfieldNameForBitEnum("VkAccessFlags")
	assert.Error(t, err)
}

func TestRemoveStandardPostfix(t *testing.T) {
	base, ok := RemoveStandardPostfix("VkRenderPassCreateInfo2KHR")
	assert.True(t, ok)
	assert.Equal(t, "VkRenderPassCreateInfo2", base)

	_, ok = RemoveStandardPostfix("VkRenderPassCreateInfo2")
	assert.False(t, ok)

	// NV is not a standard postfix for alias resolution.
	_, ok = RemoveStandardPostfix("VkAccelerationStructureNV")
	assert.False(t, ok)
}
