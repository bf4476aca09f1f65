package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = `
#define VK_VERSION_1_0 1
#define VK_API_VERSION_1_0 VK_MAKE_VERSION(1, 0, 0)

VK_DEFINE_HANDLE(VkInstance)
VK_DEFINE_NON_DISPATCHABLE_HANDLE(VkSemaphore)

typedef enum VkResult {
    VK_SUCCESS = 0,
    VK_NOT_READY = 1,
    VK_RESULT_MAX_ENUM = 0x7FFFFFFF
} VkResult;

typedef VkFlags VkQueueFlags;

typedef struct VkExtent3D {
    uint32_t    width;
    uint32_t    height;
    uint32_t    depth;
} VkExtent3D;

typedef union VkClearColorValue {
    float       float32[4];
    int32_t     int32[4];
    uint32_t    uint32[4];
} VkClearColorValue;

VKAPI_ATTR VkResult VKAPI_CALL vkCreateInstance(
    const VkInstanceCreateInfo*                 pCreateInfo,
    const VkAllocationCallbacks*                pAllocator,
    VkInstance*                                 pInstance);

VKAPI_ATTR void VKAPI_CALL vkDestroyInstance(
    VkInstance                                  instance,
    const VkAllocationCallbacks*                pAllocator);
`

func TestParseVersions(t *testing.T) {
	markers := ParseVersions(sampleHeader)
	require.Len(t, markers, 1)
	assert.Equal(t, "VK_VERSION_1_0", markers[0].Token)
	assert.Equal(t, 1, markers[0].Major)
	assert.Equal(t, 0, markers[0].Minor)
	assert.Equal(t, Version{Major: 1, Minor: 0}, markers[0].Version())
}

func TestParseHandles(t *testing.T) {
	handles := ParseHandles(sampleHeader)
	require.Len(t, handles, 2)
	assert.Equal(t, "VkInstance", handles[0].Name)
	assert.Equal(t, HandleDisp, handles[0].Kind)
	assert.Equal(t, "VkSemaphore", handles[1].Name)
	assert.Equal(t, HandleNonDisp, handles[1].Kind)
}

func TestParseEnums(t *testing.T) {
	enums := ParseEnums(sampleHeader)
	require.Len(t, enums, 1)
	assert.Equal(t, "VkResult", enums[0].Name)
	require.Len(t, enums[0].Values, 3)
	assert.Equal(t, EnumValue{Name: "VK_SUCCESS", Value: "0"}, enums[0].Values[0])
	assert.Equal(t, EnumValue{Name: "VK_RESULT_MAX_ENUM", Value: "0x7FFFFFFF"}, enums[0].Values[2])
}

func TestParseBitfieldNames(t *testing.T) {
	names := ParseBitfieldNames(sampleHeader)
	assert.Equal(t, []string{"VkQueueFlags"}, names)
}

func TestParseCompositeTypes(t *testing.T) {
	types := ParseCompositeTypes(sampleHeader)
	require.Len(t, types, 2)

	extent := types[0]
	assert.Equal(t, "VkExtent3D", extent.Name)
	assert.Equal(t, ClassStruct, extent.Class)
	require.Len(t, extent.Members, 3)
	assert.Equal(t, "deUint32", extent.Members[0].TypeString())
	assert.Equal(t, "width", extent.Members[0].Name)

	clear := types[1]
	assert.Equal(t, "VkClearColorValue", clear.Name)
	assert.Equal(t, ClassUnion, clear.Class)
	require.Len(t, clear.Members, 3)
	assert.Equal(t, "[4]", clear.Members[0].ArraySize)
}

func TestParseFunctions(t *testing.T) {
	functions := ParseFunctions(sampleHeader)
	require.Len(t, functions, 2)

	create := functions[0]
	assert.Equal(t, "vkCreateInstance", create.Name)
	assert.Equal(t, "VkResult", create.ReturnType)
	require.Len(t, create.Arguments, 3)
	assert.Equal(t, "const VkInstanceCreateInfo*", create.Arguments[0].TypeString())
	assert.Equal(t, "pCreateInfo", create.Arguments[0].Name)
	assert.Equal(t, FunctionPlatform, create.Type())

	destroy := functions[1]
	assert.Equal(t, FunctionInstance, destroy.Type())
	assert.Equal(t, "destroyInstance", destroy.InterfaceName())
	assert.Equal(t, "DestroyInstanceFunc", destroy.TypeName())
}

func TestFunctionTypeSpecialCases(t *testing.T) {
	procAddr := NewFunction("vkGetInstanceProcAddr", "PFN_vkVoidFunction", []*Variable{
		NewVariable("VkInstance", "instance", ""),
		NewVariable("const char*", "pName", ""),
	})
	assert.Equal(t, FunctionPlatform, procAddr.Type())

	queue := NewFunction("vkQueueSubmit", "VkResult", []*Variable{
		NewVariable("VkQueue", "queue", ""),
	})
	assert.Equal(t, FunctionDevice, queue.Type())
}

func TestVariableTypeSubstitution(t *testing.T) {
	tests := []struct {
		name     string
		ctype    string
		expected string
	}{
		{"fixed width", "uint32_t", "deUint32"},
		{"size_t", "size_t", "deUintptr"},
		{"pointer kept", "const char*", "const char*"},
		{"platform window", "HWND", "pt::Win32WindowHandle"},
		{"platform token seq", "struct wl_display*", "pt::WaylandDisplayPtr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVariable(tt.ctype, "x", "")
			assert.Equal(t, tt.expected, v.TypeString())
		})
	}
}

func TestVariableEqualIgnoresStandardPostfix(t *testing.T) {
	a := NewVariable("VkSemaphoreImportFlags", "flags", "")
	b := NewVariable("VkSemaphoreImportFlagsKHR", "flags", "")
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	c := NewVariable("VkSemaphoreImportFlags", "flags", "[2]")
	assert.False(t, a.Equal(c))

	d := NewVariable("const VkSemaphoreImportFlags*", "flags", "")
	assert.False(t, a.Equal(d))
}

func TestParseTypedefs(t *testing.T) {
	src := "typedef VkRenderPassCreateInfo2 VkRenderPassCreateInfo2KHR;\n"
	defs := ParseTypedefs(src)
	require.Len(t, defs, 1)
	assert.Equal(t, "VkRenderPassCreateInfo2", defs[0].Name)
	assert.Equal(t, "VkRenderPassCreateInfo2KHR", defs[0].Value)
}

func TestParseExtensionNames(t *testing.T) {
	src := `
#define VK_KHR_SURFACE_EXTENSION_NAME "VK_KHR_surface"
#define VK_KHR_SWAPCHAIN_EXTENSION_NAME "VK_KHR_swapchain"
`
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_swapchain"}, ParseExtensionNames(src))
}

func TestPreprocDefinedValue(t *testing.T) {
	src := "#define VK_UUID_SIZE 16\n#define VK_QUEUE_FAMILY_IGNORED UINT32_MAX\n"

	v, ok := PreprocDefinedValue(src, "VK_UUID_SIZE")
	assert.True(t, ok)
	assert.Equal(t, "16", v)

	v, ok = PreprocDefinedValue(src, "VK_QUEUE_FAMILY_IGNORED")
	assert.True(t, ok)
	assert.Equal(t, "(~0u)", v)

	_, ok = PreprocDefinedValue(src, "VK_NOT_THERE")
	assert.False(t, ok)
}

func TestParseDefinesKeepsSpecVersion(t *testing.T) {
	src := `
#define VK_KHR_SURFACE_SPEC_VERSION 25
#define VK_KHR_SURFACE_EXTENSION_NAME "VK_KHR_surface"
#define VK_UNRELATED_COUNT 7
`
	defs := ParseDefines("VK_KHR_surface", src)
	require.Len(t, defs, 1)
	assert.Equal(t, "VK_KHR_SURFACE_SPEC_VERSION", defs[0].Name)
	assert.Equal(t, "25", defs[0].Value)
}
