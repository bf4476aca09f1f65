package scanner

const platformTypeNamespace = "pt"

// platformType maps an ordered token sequence from a header declaration
// to the framework wrapper type, with the compatible C type the wrapper
// is defined over.
type platformType struct {
	from   []string
	to     []string
	compat string
}

var platformTypes = []platformType{
	// VK_KHR_xlib_surface
	{[]string{"Display", "*"}, []string{"XlibDisplayPtr"}, "void*"},
	{[]string{"Window"}, []string{"XlibWindow"}, "deUintptr"},
	{[]string{"VisualID"}, []string{"XlibVisualID"}, "deUint32"},

	// VK_KHR_xcb_surface
	{[]string{"xcb_connection_t", "*"}, []string{"XcbConnectionPtr"}, "void*"},
	{[]string{"xcb_window_t"}, []string{"XcbWindow"}, "deUintptr"},
	{[]string{"xcb_visualid_t"}, []string{"XcbVisualid"}, "deUint32"},

	// VK_KHR_wayland_surface
	{[]string{"struct", "wl_display", "*"}, []string{"WaylandDisplayPtr"}, "void*"},
	{[]string{"struct", "wl_surface", "*"}, []string{"WaylandSurfacePtr"}, "void*"},

	// VK_KHR_mir_surface
	{[]string{"MirConnection", "*"}, []string{"MirConnectionPtr"}, "void*"},
	{[]string{"MirSurface", "*"}, []string{"MirSurfacePtr"}, "void*"},

	// VK_KHR_android_surface
	{[]string{"ANativeWindow", "*"}, []string{"AndroidNativeWindowPtr"}, "void*"},

	// VK_KHR_win32_surface
	{[]string{"HINSTANCE"}, []string{"Win32InstanceHandle"}, "void*"},
	{[]string{"HWND"}, []string{"Win32WindowHandle"}, "void*"},
	{[]string{"HANDLE"}, []string{"Win32Handle"}, "void*"},
	{[]string{"const", "SECURITY_ATTRIBUTES", "*"}, []string{"Win32SecurityAttributesPtr"}, "const void*"},
	{[]string{"AHardwareBuffer", "*"}, []string{"AndroidHardwareBufferPtr"}, "void*"},
	{[]string{"HMONITOR"}, []string{"Win32MonitorHandle"}, "void*"},
	{[]string{"LPCWSTR"}, []string{"Win32LPCWSTR"}, "const void*"},

	// VK_EXT_acquire_xlib_display
	{[]string{"RROutput"}, []string{"RROutput"}, "void*"},

	{[]string{"zx_handle_t"}, []string{"zx_handle_t"}, "deInt32"},
	{[]string{"GgpFrameToken"}, []string{"GgpFrameToken"}, "deInt32"},
	{[]string{"GgpStreamDescriptor"}, []string{"GgpStreamDescriptor"}, "deInt32"},
	{[]string{"CAMetalLayer"}, []string{"CAMetalLayer"}, "void*"},
}

// typeSubstitutions are plain string replacements applied to declared
// types before tokenizing, in order.
var typeSubstitutions = []struct{ from, to string }{
	{"uint8_t", "deUint8"},
	{"uint16_t", "deUint16"},
	{"uint32_t", "deUint32"},
	{"uint64_t", "deUint64"},
	{"int8_t", "deInt8"},
	{"int16_t", "deInt16"},
	{"int32_t", "deInt32"},
	{"int64_t", "deInt64"},
	{"bool32_t", "deUint32"},
	{"size_t", "deUintptr"},

	// Platform-specific
	{"DWORD", "deUint32"},
	{"HANDLE*", platformTypeNamespace + "::" + "Win32Handle*"},
}

var (
	extensionPostfixes         = []string{"KHR", "EXT", "NV", "NVX", "KHX", "NN", "MVK", "FUCHSIA", "GGP", "AMD"}
	extensionPostfixesStandard = []string{"KHR", "EXT"}
)

// ExtensionPostfixes lists every known vendor postfix, longest-standing
// vendors first.
func ExtensionPostfixes() []string { return extensionPostfixes }

// PlatformTypeDecl is one row of the platform type table as generated
// output needs it: the wrapper type name and the C type it wraps.
type PlatformTypeDecl struct {
	Name   string
	Compat string
}

// PlatformTypeDecls lists the platform wrapper types in table order for
// emission.
func PlatformTypeDecls() []PlatformTypeDecl {
	decls := make([]PlatformTypeDecl, 0, len(platformTypes))
	for _, pt := range platformTypes {
		decls = append(decls, PlatformTypeDecl{Name: pt.to[0], Compat: pt.compat})
	}
	return decls
}

// PlatformTypeNamespace is the C++ namespace generated platform types
// live in.
func PlatformTypeNamespace() string { return platformTypeNamespace }
