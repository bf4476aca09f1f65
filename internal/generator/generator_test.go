package generator

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vulkangen/internal/registry"
)

const testCoreDefines = `
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

// testHeader is a miniature registry exercising one entity of every
// kind the passes consume.
const testHeader = `#define VK_VERSION_1_0 1
` + testCoreDefines + `
VK_DEFINE_HANDLE(VkInstance)
VK_DEFINE_HANDLE(VkPhysicalDevice)
VK_DEFINE_HANDLE(VkDevice)
VK_DEFINE_NON_DISPATCHABLE_HANDLE(VkFence)

typedef enum VkResult {
    VK_SUCCESS = 0,
    VK_NOT_READY = 1
} VkResult;

typedef enum VkStructureType {
    VK_STRUCTURE_TYPE_FENCE_CREATE_INFO = 8,
    VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_16BIT_STORAGE_FEATURES = 1000083000,
    VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_SUBGROUP_PROPERTIES = 1000094000,
    VK_STRUCTURE_TYPE_MAX_ENUM = 0x7FFFFFFF
} VkStructureType;

typedef enum VkDriverId {
    VK_DRIVER_ID_AMD_PROPRIETARY = 1,
    VK_DRIVER_ID_MESA_RADV = 3,
    VK_DRIVER_ID_AMD_PROPRIETARY_KHR = VK_DRIVER_ID_AMD_PROPRIETARY,
    VK_DRIVER_ID_MAX_ENUM = 0x7FFFFFFF
} VkDriverId;

typedef enum VkFenceCreateFlagBits {
    VK_FENCE_CREATE_SIGNALED_BIT = 0x00000001
} VkFenceCreateFlagBits;
typedef VkFlags VkFenceCreateFlags;

typedef struct VkExtent3D {
    uint32_t    width;
    uint32_t    height;
    uint32_t    depth;
} VkExtent3D;

typedef struct VkFenceCreateInfo {
    VkStructureType       sType;
    const void*           pNext;
    VkFenceCreateFlags    flags;
} VkFenceCreateInfo;

VKAPI_ATTR VkResult VKAPI_CALL vkCreateInstance(
    const VkInstanceCreateInfo*                 pCreateInfo,
    const VkAllocationCallbacks*                pAllocator,
    VkInstance*                                 pInstance);

VKAPI_ATTR void VKAPI_CALL vkDestroyInstance(
    VkInstance                                  instance,
    const VkAllocationCallbacks*                pAllocator);

VKAPI_ATTR PFN_vkVoidFunction VKAPI_CALL vkGetInstanceProcAddr(
    VkInstance                                  instance,
    const char*                                 pName);

VKAPI_ATTR PFN_vkVoidFunction VKAPI_CALL vkGetDeviceProcAddr(
    VkDevice                                    device,
    const char*                                 pName);

VKAPI_ATTR VkResult VKAPI_CALL vkCreateDevice(
    VkPhysicalDevice                            physicalDevice,
    const VkDeviceCreateInfo*                   pCreateInfo,
    const VkAllocationCallbacks*                pAllocator,
    VkDevice*                                   pDevice);

VKAPI_ATTR VkResult VKAPI_CALL vkCreateFence(
    VkDevice                                    device,
    const VkFenceCreateInfo*                    pCreateInfo,
    const VkAllocationCallbacks*                pAllocator,
    VkFence*                                    pFence);

VKAPI_ATTR void VKAPI_CALL vkDestroyFence(
    VkDevice                                    device,
    VkFence                                     fence,
    const VkAllocationCallbacks*                pAllocator);

VKAPI_ATTR VkResult VKAPI_CALL vkGetFenceStatus(
    VkDevice                                    device,
    VkFence                                     fence);

#define VK_VERSION_1_1 1

VKAPI_ATTR VkResult VKAPI_CALL vkEnumerateInstanceVersion(
    uint32_t*                                   pApiVersion);

typedef struct VkPhysicalDevice16BitStorageFeatures {
    VkStructureType    sType;
    void*              pNext;
    VkBool32           storageBuffer16BitAccess;
    VkBool32           uniformAndStorageBuffer16BitAccess;
} VkPhysicalDevice16BitStorageFeatures;

typedef struct VkPhysicalDeviceSubgroupProperties {
    VkStructureType    sType;
    void*              pNext;
    uint32_t           subgroupSize;
    VkBool32           quadOperationsInAllStages;
} VkPhysicalDeviceSubgroupProperties;

#define VK_KHR_16bit_storage 1
#define VK_KHR_16BIT_STORAGE_SPEC_VERSION 1
#define VK_KHR_16BIT_STORAGE_EXTENSION_NAME "VK_KHR_16bit_storage"

typedef VkPhysicalDevice16BitStorageFeatures VkPhysicalDevice16BitStorageFeaturesKHR;
`

const testExtensionsData = `
VK_KHR_16bit_storage DEVICE 1_1
VK_EXT_other INSTANCE
`

const testMandatoryFeatures = `
VkPhysicalDeviceFeatures FEATURES ( robustBufferAccess ) REQUIREMENTS ( )
VkPhysicalDevice16BitStorageFeatures FEATURES ( storageBuffer16BitAccess ) REQUIREMENTS ( "VK_KHR_16bit_storage" )
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(t *testing.T) (*Generator, *MemSink) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extensions_data.txt"), []byte(testExtensionsData), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mandatory_features.txt"), []byte(testMandatoryFeatures), 0o644))

	api, err := registry.ParseAPI(testHeader, testExtensionsData)
	require.NoError(t, err)

	src := &registry.Sources{Dir: dir, Header: testHeader, Core: testHeader}
	sink := NewMemSink()
	return New(api, src, sink, testLogger()), sink
}

func artifact(t *testing.T, sink *MemSink, name string) string {
	t.Helper()
	lines, ok := sink.Artifacts[name]
	require.True(t, ok, "artifact %s was not generated", name)
	return strings.Join(lines, "\n")
}

func TestGenerateAllArtifacts(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.GenAll())

	for _, name := range Artifacts() {
		assert.Contains(t, sink.Artifacts, name)
	}
	assert.Len(t, sink.Artifacts, len(Artifacts()))
}

func TestGenerateIsDeterministic(t *testing.T) {
	g1, sink1 := newTestGenerator(t)
	require.NoError(t, g1.GenAll())

	g2, sink2 := newTestGenerator(t)
	require.NoError(t, g2.GenAll())

	assert.Equal(t, sink1.Artifacts, sink2.Artifacts)
}

func TestGenerateSelectsArtifacts(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkHandleType.inl"}))

	assert.Len(t, sink.Artifacts, 1)
	assert.Contains(t, sink.Artifacts, "vkHandleType.inl")
}

func TestGenerateRejectsUnknownArtifact(t *testing.T) {
	g, _ := newTestGenerator(t)
	err := g.Generate([]string{"vkNoSuchThing.inl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vkNoSuchThing.inl")
}

func TestHandleTypeOrdinals(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkHandleType.inl"}))

	out := artifact(t, sink, "vkHandleType.inl")
	assert.Contains(t, out, "HANDLE_TYPE_INSTANCE")
	assert.Contains(t, out, "= 0,")
	assert.Contains(t, out, "HANDLE_TYPE_LAST")
}

func TestBasicTypesEnumLast(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkBasicTypes.inl"}))

	out := artifact(t, sink, "vkBasicTypes.inl")
	// linear enum gets a synthetic terminator
	assert.Contains(t, out, "VK_RESULT_LAST")
	// the sentinel keeps its spot after the terminator
	last := strings.Index(out, "VK_STRUCTURE_TYPE_MAX_ENUM")
	assert.True(t, last > strings.Index(out, "VK_STRUCTURE_TYPE_FENCE_CREATE_INFO"))
	assert.Contains(t, out, "#define VK_API_MAX_FRAMEWORK_VERSION")
	assert.Contains(t, out, "VK_API_VERSION_1_1")
	assert.Contains(t, out, "enum VkFenceCreateFlagBits")
	assert.Contains(t, out, "typedef deUint32 VkFenceCreateFlags;")
}

func TestStructTraits(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkGetStructureTypeImpl.inl"}))

	out := artifact(t, sink, "vkGetStructureTypeImpl.inl")
	assert.Contains(t, out, "getStructureType<VkFenceCreateInfo>")
	assert.Contains(t, out, "VK_STRUCTURE_TYPE_FENCE_CREATE_INFO")
	// no sType member, no trait
	assert.NotContains(t, out, "VkExtent3D")
}

func TestTypeUtilSimpleStructs(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkTypeUtil.inl"}))

	out := artifact(t, sink, "vkTypeUtil.inl")
	assert.Contains(t, out, "makeExtent3D")
	// sType-carrying structures are not constructible helpers
	assert.NotContains(t, out, "makeFenceCreateInfo")
}

func TestInterfaceDeclarations(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkVirtualDeviceInterface.inl", "vkConcreteDeviceInterface.inl"}))

	virtual := artifact(t, sink, "vkVirtualDeviceInterface.inl")
	assert.Contains(t, virtual, "createFence")
	assert.Contains(t, virtual, "= 0;")

	concrete := artifact(t, sink, "vkConcreteDeviceInterface.inl")
	assert.Contains(t, concrete, "createFence")
	assert.NotContains(t, concrete, "= 0;")
}

func TestDriverImplEnumerateInstanceVersionFallback(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkPlatformDriverImpl.inl"}))

	out := artifact(t, sink, "vkPlatformDriverImpl.inl")
	assert.Contains(t, out, "enumerateInstanceVersion")
	assert.Contains(t, out, "VK_API_VERSION_1_0")
}

func TestRefUtilConstructors(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkRefUtil.inl", "vkRefUtilImpl.inl"}))

	proto := artifact(t, sink, "vkRefUtil.inl")
	assert.Contains(t, proto, "Move<VkFence>")
	assert.Contains(t, proto, "createFence")

	impl := artifact(t, sink, "vkRefUtilImpl.inl")
	assert.Contains(t, impl, "Deleter<VkFence>")
	assert.Contains(t, impl, "VK_CHECK")
}

func TestNullDriverBuckets(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkNullDriverImpl.inl"}))

	out := artifact(t, sink, "vkNullDriverImpl.inl")
	assert.Contains(t, out, "createFence")
	assert.Contains(t, out, "destroyFence")
	// query with no side effects returns success
	assert.Contains(t, out, "getFenceStatus")
	assert.Contains(t, out, "return VK_SUCCESS;")
	assert.Contains(t, out, "s_deviceFunctions")
}

func TestSupportedExtensions(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkSupportedExtensions.inl"}))

	out := artifact(t, sink, "vkSupportedExtensions.inl")
	assert.Contains(t, out, "getCoreDeviceExtensionsImpl")
	assert.Contains(t, out, "getCoreInstanceExtensionsImpl")
	assert.Contains(t, out, "VK_KHR_16bit_storage")
}

func TestExtensionLists(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkInstanceExtensions.inl", "vkDeviceExtensions.inl"}))

	instance := artifact(t, sink, "vkInstanceExtensions.inl")
	assert.Contains(t, instance, "s_allowedInstanceKhrExtensions")
	assert.Contains(t, instance, "VK_EXT_other")
	assert.NotContains(t, instance, "VK_KHR_16bit_storage")

	device := artifact(t, sink, "vkDeviceExtensions.inl")
	assert.Contains(t, device, "s_allowedDeviceKhrExtensions")
	assert.Contains(t, device, "VK_KHR_16bit_storage")
}

func TestKnownDriverIds(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkKnownDriverIds.inl"}))

	out := artifact(t, sink, "vkKnownDriverIds.inl")
	assert.Contains(t, out, `{"VK_DRIVER_ID_MESA_RADV", 3}`)
	// the alias repeats the value of the entry it names
	assert.Contains(t, out, `{"VK_DRIVER_ID_AMD_PROPRIETARY_KHR", 1}`)
	assert.Contains(t, out, "// VK_DRIVER_ID_AMD_PROPRIETARY")
}

func TestDeviceFeaturesRoster(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkDeviceFeatures.inl"}))

	out := artifact(t, sink, "vkDeviceFeatures.inl")
	assert.Contains(t, out, "VK_KHR_16BIT_STORAGE_EXTENSION_NAME")
	assert.Contains(t, out, "makeFeatureDesc<VkPhysicalDevice16BitStorageFeatures>")
	assert.Contains(t, out, "VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_16BIT_STORAGE_FEATURES")
	assert.Contains(t, out, "isPartOfBlobFeatures")
}

func TestDevicePropertiesRoster(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkDeviceProperties.inl"}))

	out := artifact(t, sink, "vkDeviceProperties.inl")
	assert.Contains(t, out, "makePropertyDesc<VkPhysicalDeviceSubgroupProperties>")
	// core-only structures get a placeholder extension name
	assert.Contains(t, out, `"core_property"`)
	assert.Contains(t, out, "isPartOfBlobProperties")
}

func TestFeatureAccessorWriters(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkDeviceFeaturesForContextDecl.inl", "vkDevicePropertiesForContextDefs.inl"}))

	decl := artifact(t, sink, "vkDeviceFeaturesForContextDecl.inl")
	assert.Contains(t, decl, "const vk::VkPhysicalDevice16BitStorageFeatures&")
	assert.Contains(t, decl, "get16BitStorageFeatures")

	defs := artifact(t, sink, "vkDevicePropertiesForContextDefs.inl")
	assert.Contains(t, defs, "Context::getSubgroupProperties")
	assert.Contains(t, defs, "m_device->getSubgroupProperties()")
}

func TestDeviceFeatures2Conditions(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkDeviceFeatures2.inl"}))

	out := artifact(t, sink, "vkDeviceFeatures2.inl")
	assert.Contains(t, out, "device16BitStorageFeatures[count];")
	assert.Contains(t, out, `checkExtension(properties, "VK_KHR_16bit_storage")`)
	assert.Contains(t, out, "context.contextSupports(vk::ApiVersion(1, 1, 0))")
	assert.Contains(t, out, "VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_16BIT_STORAGE_FEATURES")
	assert.Contains(t, out, "vki.getPhysicalDeviceFeatures2(physicalDevice, &extFeatures);")
}

func TestMandatoryFeaturesChecks(t *testing.T) {
	g, sink := newTestGenerator(t)
	require.NoError(t, g.Generate([]string{"vkMandatoryFeatures.inl"}))

	out := artifact(t, sink, "vkMandatoryFeatures.inl")
	assert.Contains(t, out, "bool checkMandatoryFeatures(const vkt::Context& context)")
	assert.Contains(t, out, "physicalDevice16BitStorageFeatures.sType = getStructureType<VkPhysicalDevice16BitStorageFeatures>();")
	assert.Contains(t, out, `isExtensionSupported(deviceExtensions, RequiredExtension("VK_KHR_16bit_storage"))`)
	assert.Contains(t, out, "if ( coreFeatures.features.robustBufferAccess == VK_FALSE )")
	assert.Contains(t, out, "Mandatory feature storageBuffer16BitAccess not supported")
}

func TestGenAllLeavesUpToDateFilesAlone(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "extensions_data.txt"), []byte(testExtensionsData), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "mandatory_features.txt"), []byte(testMandatoryFeatures), 0o644))

	api, err := registry.ParseAPI(testHeader, testExtensionsData)
	require.NoError(t, err)
	src := &registry.Sources{Dir: srcDir, Header: testHeader, Core: testHeader}

	outDir := t.TempDir()
	g := New(api, src, NewDirSink(outDir, testLogger()), testLogger())
	require.NoError(t, g.GenAll())

	past := time.Now().Add(-time.Hour)
	stamps := make(map[string]time.Time, len(Artifacts()))
	for _, name := range Artifacts() {
		path := filepath.Join(outDir, name)
		require.NoError(t, os.Chtimes(path, past, past))
		info, err := os.Stat(path)
		require.NoError(t, err)
		stamps[name] = info.ModTime()
	}

	g = New(api, src, NewDirSink(outDir, testLogger()), testLogger())
	require.NoError(t, g.GenAll())

	for _, name := range Artifacts() {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(stamps[name]), "artifact %s was rewritten", name)
	}
}

func TestDirSinkWriteIfChanged(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirSink(dir, testLogger())

	require.NoError(t, sink.Write("out.inl", []string{"line one", "line two"}))
	content, err := os.ReadFile(filepath.Join(dir, "out.inl"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), inlBanner))
	assert.True(t, strings.HasSuffix(string(content), "line one\nline two\n"))

	// unchanged content is not rewritten
	require.NoError(t, sink.Write("out.inl", []string{"line one", "line two"}))
	again, err := os.ReadFile(filepath.Join(dir, "out.inl"))
	require.NoError(t, err)
	assert.Equal(t, content, again)

	require.NoError(t, sink.Write("out.inl", []string{"changed"}))
	changed, err := os.ReadFile(filepath.Join(dir, "out.inl"))
	require.NoError(t, err)
	assert.Contains(t, string(changed), "changed")
}
