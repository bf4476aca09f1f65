package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// coreDefines carries every definition the core parse requires.
const coreDefines = `
#define VK_API_VERSION_1_0 VK_MAKE_VERSION(1, 0, 0)
#define VK_API_VERSION_1_1 VK_MAKE_VERSION(1, 1, 0)
#define VK_MAX_PHYSICAL_DEVICE_NAME_SIZE 256
#define VK_MAX_EXTENSION_NAME_SIZE 256
#define VK_MAX_DRIVER_NAME_SIZE 256
#define VK_MAX_DRIVER_INFO_SIZE 256
#define VK_UUID_SIZE 16
#define VK_LUID_SIZE 8
#define VK_MAX_MEMORY_TYPES 32
#define VK_MAX_MEMORY_HEAPS 16
#define VK_MAX_DESCRIPTION_SIZE 256
#define VK_MAX_DEVICE_GROUP_SIZE 32
#define VK_ATTACHMENT_UNUSED UINT32_MAX
#define VK_SUBPASS_EXTERNAL UINT32_MAX
#define VK_QUEUE_FAMILY_IGNORED UINT32_MAX
#define VK_QUEUE_FAMILY_EXTERNAL (~0U-1)
#define VK_REMAINING_MIP_LEVELS UINT32_MAX
#define VK_REMAINING_ARRAY_LAYERS UINT32_MAX
#define VK_WHOLE_SIZE UINT64_MAX
#define VK_TRUE 1
#define VK_FALSE 0
`

const fixtureHeader = `#define VK_VERSION_1_0 1
` + coreDefines + `
VK_DEFINE_HANDLE(VkInstance)
VK_DEFINE_HANDLE(VkFoo)
VK_DEFINE_NON_DISPATCHABLE_HANDLE(VkFence)

typedef enum VkFooEnum {
    VK_FOO_A = 0,
    VK_FOO_B = 1
} VkFooEnum;

typedef enum VkQueueFlagBits {
    VK_QUEUE_GRAPHICS_BIT = 0x00000001,
    VK_QUEUE_COMPUTE_BIT = 0x00000002
} VkQueueFlagBits;
typedef VkFlags VkQueueFlags;
typedef VkFlags VkReservedFlags;

VKAPI_ATTR void VKAPI_CALL vkDestroyFence(
    VkInstance                                  instance,
    VkFence                                     fence);

#define VK_VERSION_1_1 1

typedef struct VkBarInfo {
    uint32_t    count;
    float       weights[2];
} VkBarInfo;

VKAPI_ATTR void VKAPI_CALL vkBarUnite(
    VkInstance                                  instance,
    const VkBarInfo*                            pInfo);

#define VK_EXT_bar 1
#define VK_EXT_BAR_SPEC_VERSION 3
#define VK_EXT_BAR_EXTENSION_NAME "VK_EXT_bar"

typedef VkBarInfo VkBarInfoEXT;

VKAPI_ATTR void VKAPI_CALL vkBarUniteEXT(
    VkInstance                                  instance,
    const VkBarInfoEXT*                         pInfo);

typedef struct VkBarStateEXT {
    uint32_t    state;
} VkBarStateEXT;
`

const fixtureExtensionsData = `
VK_EXT_bar DEVICE 1_1
VK_KHR_unrelated INSTANCE 1_0
`

func parseFixture(t *testing.T) *API {
	t.Helper()
	api, err := ParseAPI(fixtureHeader, fixtureExtensionsData)
	require.NoError(t, err)
	return api
}

func TestParseAPICoreEntities(t *testing.T) {
	api := parseFixture(t)

	require.Len(t, api.Versions, 2)
	assert.Equal(t, scanner.Version{Major: 1, Minor: 0}, api.Versions[0])
	assert.Equal(t, scanner.Version{Major: 1, Minor: 1}, api.Versions[1])

	require.True(t, len(api.Handles) >= 3)
	assert.Equal(t, "VkInstance", api.Handles[0].Name)
	assert.Equal(t, scanner.HandleDisp, api.Handles[0].Kind)
	assert.Equal(t, "VkFence", api.Handles[2].Name)
	assert.Equal(t, scanner.HandleNonDisp, api.Handles[2].Kind)

	require.Len(t, api.Enums, 1)
	foo := api.Enums[0]
	assert.Equal(t, "VkFooEnum", foo.Name)
	assert.Equal(t, []scanner.EnumValue{
		{Name: "VK_FOO_A", Value: "0"},
		{Name: "VK_FOO_B", Value: "1"},
	}, foo.Values)
}

func TestParseAPIDefinitions(t *testing.T) {
	api := parseFixture(t)

	byName := map[string]*scanner.Definition{}
	for _, d := range api.Definitions {
		byName[d.Name] = d
	}
	require.Contains(t, byName, "VK_API_VERSION_1_0")
	assert.Equal(t, "deUint32", byName["VK_API_VERSION_1_0"].Type)
	require.Contains(t, byName, "VK_UUID_SIZE")
	assert.Equal(t, "16", byName["VK_UUID_SIZE"].Value)
	assert.Equal(t, "size_t", byName["VK_UUID_SIZE"].Type)
	// UINT32_MAX folds into the framework spelling.
	assert.Equal(t, "(~0u)", byName["VK_ATTACHMENT_UNUSED"].Value)
}

func TestBitfieldClassification(t *testing.T) {
	api := parseFixture(t)

	require.Len(t, api.Bitfields, 2)
	queue := api.Bitfields[0]
	assert.Equal(t, "VkQueueFlags", queue.Name)
	require.Len(t, queue.Values, 2)
	assert.Equal(t, "VK_QUEUE_GRAPHICS_BIT", queue.Values[0].Name)

	// carrier without a backing bits enum is kept, empty
	reserved := api.Bitfields[1]
	assert.Equal(t, "VkReservedFlags", reserved.Name)
	assert.Empty(t, reserved.Values)

	// the backing enum is no longer listed as a plain enum
	for _, e := range api.Enums {
		assert.NotEqual(t, "VkQueueFlagBits", e.Name)
	}
}

func TestVersionStamping(t *testing.T) {
	api := parseFixture(t)

	byName := map[string]*scanner.CompositeType{}
	for _, t := range api.CompositeTypes {
		byName[t.Name] = t
	}
	require.Contains(t, byName, "VkBarInfo")
	require.NotNil(t, byName["VkBarInfo"].APIVersion)
	assert.Equal(t, scanner.Version{Major: 1, Minor: 1}, *byName["VkBarInfo"].APIVersion)

	// extension-territory structs carry no core version
	require.Contains(t, byName, "VkBarStateEXT")
	assert.Nil(t, byName["VkBarStateEXT"].APIVersion)

	fns := map[string]*scanner.Function{}
	for _, f := range api.Functions {
		fns[f.Name] = f
	}
	assert.Equal(t, "VK_VERSION_1_0", fns["vkDestroyFence"].APIVersion)
	assert.Equal(t, "VK_VERSION_1_1", fns["vkBarUnite"].APIVersion)
}

func TestExtensionPartition(t *testing.T) {
	api := parseFixture(t)

	require.Len(t, api.Extensions, 2)
	core := api.Extensions[0]
	assert.Equal(t, "", core.Name)
	assert.Nil(t, core.VersionInCore)

	ext := api.Extensions[1]
	assert.Equal(t, "VK_EXT_bar", ext.Name)
	require.NotNil(t, ext.VersionInCore)
	assert.Equal(t, "DEVICE", ext.VersionInCore.Kind)
	assert.Equal(t, scanner.Version{Major: 1, Minor: 1}, ext.VersionInCore.Version)

	require.Len(t, ext.Functions, 1)
	assert.Equal(t, "vkBarUniteEXT", ext.Functions[0].Name)
	require.Len(t, ext.AdditionalDefinitions, 1)
	assert.Equal(t, "VK_EXT_BAR_SPEC_VERSION", ext.AdditionalDefinitions[0].Name)
}

func TestAliasResolution(t *testing.T) {
	api := parseFixture(t)

	fns := map[string]*scanner.Function{}
	for _, f := range api.Functions {
		fns[f.Name] = f
	}
	canon := fns["vkBarUnite"]
	aliased := fns["vkBarUniteEXT"]
	require.NotNil(t, canon.Alias)
	assert.Same(t, aliased, canon.Alias)
	assert.True(t, aliased.IsAlias)
	assert.False(t, canon.IsAlias)

	// typedef pass created a composite alias under the typedef name
	var barInfo, barInfoExt *scanner.CompositeType
	for _, ct := range api.CompositeTypes {
		switch ct.Name {
		case "VkBarInfo":
			barInfo = ct
		case "VkBarInfoEXT":
			barInfoExt = ct
		}
	}
	require.NotNil(t, barInfo)
	require.NotNil(t, barInfoExt)
	assert.Same(t, barInfoExt, barInfo.Alias)
	assert.True(t, barInfoExt.IsAlias)
	assert.Len(t, barInfoExt.Members, len(barInfo.Members))
}

func TestAliasStructuralMismatchFails(t *testing.T) {
	header := `#define VK_VERSION_1_0 1
` + coreDefines + `
VK_DEFINE_HANDLE(VkInstance)

VKAPI_ATTR void VKAPI_CALL vkBazQuery(
    VkInstance                                  instance,
    uint32_t*                                   pValue);

#define VK_KHR_BAZ_EXTENSION_NAME "VK_KHR_baz"
#define VK_KHR_baz 1

VKAPI_ATTR void VKAPI_CALL vkBazQueryKHR(
    VkInstance                                  instance);
`
	_, err := ParseAPI(header, "VK_KHR_baz DEVICE 1_0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vkBazQuery")
}

func TestRemoveAliasedValues(t *testing.T) {
	enum := scanner.NewEnum("VkThing", []scanner.EnumValue{
		{Name: "VK_THING_A", Value: "0"},
		{Name: "VK_THING_A_KHR", Value: "0"},
		{Name: "VK_THING_B_KHR", Value: "1"},
	})
	removeAliasedValues(enum)
	assert.Equal(t, []scanner.EnumValue{
		{Name: "VK_THING_A", Value: "0"},
		{Name: "VK_THING_B_KHR", Value: "1"},
	}, enum.Values)
}

func TestSplitByExtension(t *testing.T) {
	parts := splitByExtension(fixtureHeader)
	require.Len(t, parts, 2)
	assert.Equal(t, "", parts[0].name)
	assert.Contains(t, parts[0].body, "vkDestroyFence")
	assert.Equal(t, "VK_EXT_bar", parts[1].name)
	assert.Contains(t, parts[1].body, "vkBarUniteEXT")
	assert.NotContains(t, parts[1].body, "vkBarUnite(")
}

func TestCoreVersionFor(t *testing.T) {
	cv, err := coreVersionFor("VK_EXT_bar", fixtureExtensionsData)
	require.NoError(t, err)
	require.NotNil(t, cv)
	assert.Equal(t, "DEVICE", cv.Kind)
	assert.Equal(t, scanner.Version{Major: 1, Minor: 1}, cv.Version)

	// case-insensitive name match
	cv, err = coreVersionFor("vk_ext_BAR", fixtureExtensionsData)
	require.NoError(t, err)
	require.NotNil(t, cv)

	cv, err = coreVersionFor("VK_EXT_absent", fixtureExtensionsData)
	require.NoError(t, err)
	assert.Nil(t, cv)

	_, err = coreVersionFor("VK_EXT_bad", "VK_EXT_bad DEVICE 1\n")
	assert.Error(t, err)
}

func TestAccelerationStructurePatches(t *testing.T) {
	header := `#define VK_VERSION_1_0 1
` + coreDefines + `
VK_DEFINE_HANDLE(VkInstance)
VK_DEFINE_NON_DISPATCHABLE_HANDLE(VkAccelerationStructureKHR)

#define VK_NV_RAY_TRACING_EXTENSION_NAME "VK_NV_ray_tracing"
#define VK_NV_ray_tracing 1

typedef VkAccelerationStructureKHR VkAccelerationStructureNV;

VKAPI_ATTR void VKAPI_CALL vkDestroyAccelerationStructureNV(
    VkInstance                                  instance,
    VkAccelerationStructureKHR                  accelerationStructure);
`
	api, err := ParseAPI(header, "")
	require.NoError(t, err)

	for _, f := range api.Functions {
		if f.Name == "vkDestroyAccelerationStructureNV" {
			assert.Equal(t, "VkAccelerationStructureNV", f.Arguments[1].Type[0])
		}
	}
	for _, h := range api.Handles {
		switch h.Name {
		case "VkAccelerationStructureKHR":
			assert.Nil(t, h.Alias)
		case "VkAccelerationStructureNV":
			assert.False(t, h.IsAlias)
		}
	}
}
