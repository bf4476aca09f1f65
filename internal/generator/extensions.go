package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Alia5/vulkangen/internal/registry"
	"github.com/Alia5/vulkangen/internal/scanner"
)

// addVersionDefines emits #define lines for non-standard versions so
// generated code can refer to them symbolically.
func addVersionDefines(versions []scanner.Version) []string {
	var out []string
	for _, v := range versions {
		if !v.IsStandardVersion() {
			out = append(out, "#define "+v.DefineName()+" "+v.InHex())
		}
	}
	return out
}

func removeVersionDefines(versions []scanner.Version) []string {
	var out []string
	for _, v := range versions {
		if !v.IsStandardVersion() {
			out = append(out, "#undef "+v.DefineName())
		}
	}
	return out
}

func (g *Generator) genSupportedExtensions() ([]string, error) {
	type versionedExts struct {
		version    scanner.Version
		extensions []*registry.Extension
	}

	var instance, device []versionedExts
	var versionSet []scanner.Version

	add := func(list []versionedExts, ext *registry.Extension) []versionedExts {
		v := ext.VersionInCore.Version
		for i := range list {
			if list[i].version == v {
				list[i].extensions = append(list[i].extensions, ext)
				return list
			}
		}
		return append(list, versionedExts{version: v, extensions: []*registry.Extension{ext}})
	}

	for _, ext := range g.api.Extensions {
		if ext.VersionInCore == nil {
			continue
		}
		if ext.VersionInCore.Kind == "INSTANCE" {
			instance = add(instance, ext)
		} else {
			device = add(device, ext)
		}
		seen := false
		for _, v := range versionSet {
			if v == ext.VersionInCore.Version {
				seen = true
				break
			}
		}
		if !seen {
			versionSet = append(versionSet, ext.VersionInCore.Version)
		}
	}
	sort.Slice(versionSet, func(i, j int) bool { return versionSet[i].Hash() < versionSet[j].Hash() })

	body := func(list []versionedExts) []string {
		var out []string
		for _, ve := range list {
			out = append(out, "\tif (coreVersion >= "+ve.version.BestRepresentation()+")", "\t{")
			for _, ext := range ve.extensions {
				out = append(out, "\t\tdst.push_back(\""+ext.Name+"\");")
			}
			out = append(out, "\t}")
		}
		return out
	}
	dstParam := func(list []versionedExts) string {
		if len(list) == 0 {
			return ""
		}
		return " dst"
	}

	lines := addVersionDefines(versionSet)
	lines = append(lines,
		"",
		fmt.Sprintf("void getCoreDeviceExtensionsImpl (deUint32 coreVersion, ::std::vector<const char*>&%s)", dstParam(device)),
		"{")
	lines = append(lines, body(device)...)
	lines = append(lines,
		"}",
		"",
		fmt.Sprintf("void getCoreInstanceExtensionsImpl (deUint32 coreVersion, ::std::vector<const char*>&%s)", dstParam(instance)),
		"{")
	lines = append(lines, body(instance)...)
	lines = append(lines, "}", "")
	lines = append(lines, removeVersionDefines(versionSet)...)
	return lines, nil
}

var functionOriginValues = [...]string{"FUNCTIONORIGIN_PLATFORM", "FUNCTIONORIGIN_INSTANCE", "FUNCTIONORIGIN_DEVICE"}

func (g *Generator) genCoreFunctionalities() ([]string, error) {
	if len(g.api.Extensions) == 0 {
		return nil, fmt.Errorf("registry has no core partition")
	}

	lines := addVersionDefines(g.api.Versions)
	lines = append(lines, "", "enum FunctionOrigin", "{")
	lines = append(lines, indentLines([]string{
		"\t" + functionOriginValues[0] + "\t= 0,",
		"\t" + functionOriginValues[1] + ",",
		"\t" + functionOriginValues[2],
	})...)
	lines = append(lines,
		"};",
		"",
		"typedef ::std::pair<const char*, FunctionOrigin> FunctionInfo;",
		"typedef ::std::vector<FunctionInfo> FunctionInfosList;",
		"typedef ::std::map<deUint32, FunctionInfosList> ApisMap;",
		"",
		"void initApisMap (ApisMap& apis)",
		"{",
		"	apis.clear();")
	for _, v := range g.api.Versions {
		lines = append(lines, "	apis.insert(::std::pair<deUint32, FunctionInfosList>("+v.BestRepresentation()+", FunctionInfosList()));")
	}
	lines = append(lines, "")

	// every version gets the entry points of all versions up to it;
	// the core partition is the pre-extension span of the headers
	coreFunctions := g.api.Extensions[0].Functions
	var versionTokens []string
	for _, v := range g.api.Versions {
		versionTokens = append(versionTokens, fmt.Sprintf("VK_VERSION_%d_%d", v.Major, v.Minor))
		var funcs []string
		for _, f := range coreFunctions {
			inSpectrum := false
			for _, token := range versionTokens {
				if f.APIVersion == token {
					inSpectrum = true
					break
				}
			}
			if inSpectrum {
				funcs = append(funcs, fmt.Sprintf("	apis[%s].push_back(FunctionInfo(\"%s\",\t%s));",
					v.BestRepresentation(), f.Name, functionOriginValues[f.Type()]))
			}
		}
		lines = append(lines, indentLines(funcs)...)
		lines = append(lines, "")
	}

	lines = append(lines, "}", "")
	lines = append(lines, removeVersionDefines(g.api.Versions)...)
	return lines, nil
}

func (g *Generator) genExtensionFunctions() ([]string, error) {
	extensionKind := func(ext *registry.Extension) (scanner.FunctionType, bool) {
		if ext.Name == "" || len(ext.Functions) == 0 {
			return 0, false
		}
		return ext.Functions[0].Type(), true
	}

	perType := func(functionType scanner.FunctionType) []string {
		var lines []string
		// device-group queries lived in VK_KHR_device_group until 1.1
		// moved them into VK_KHR_swapchain
		var dgList []string
		switch functionType {
		case scanner.FunctionInstance:
			lines = append(lines, "void getInstanceExtensionFunctions (deUint32 apiVersion, ::std::string extName, ::std::vector<const char*>& functions)\n{")
			dgList = []string{"vkGetPhysicalDevicePresentRectanglesKHR"}
		case scanner.FunctionDevice:
			lines = append(lines, "void getDeviceExtensionFunctions (deUint32 apiVersion, ::std::string extName, ::std::vector<const char*>& functions)\n{")
			dgList = []string{"vkGetDeviceGroupPresentCapabilitiesKHR", "vkGetDeviceGroupSurfacePresentModesKHR", "vkAcquireNextImage2KHR"}
		}
		inDgList := func(name string) bool {
			for _, dg := range dgList {
				if dg == name {
					return true
				}
			}
			return false
		}

		for _, ext := range g.api.Extensions {
			if ext.Name == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("\tif (extName == \"%s\")", ext.Name), "\t{")
			for _, f := range ext.Functions {
				if f.Type() != functionType {
					continue
				}
				if inDgList(f.Name) {
					lines = append(lines, fmt.Sprintf("\t\tif(apiVersion >= VK_API_VERSION_1_1) functions.push_back(\"%s\");", f.Name))
				} else {
					lines = append(lines, fmt.Sprintf("\t\tfunctions.push_back(\"%s\");", f.Name))
				}
			}
			if ext.Name == "VK_KHR_device_group" {
				for _, name := range dgList {
					lines = append(lines, fmt.Sprintf("\t\tif(apiVersion < VK_API_VERSION_1_1) functions.push_back(\"%s\");", name))
				}
			}
			lines = append(lines, "\t\treturn;", "\t}")
		}
		lines = append(lines, "\tDE_FATAL(\"Extension name not found\");", "}")
		return lines
	}

	nameArray := func(varName string, functionType scanner.FunctionType) []string {
		var names []string
		for _, ext := range g.api.Extensions {
			if kind, ok := extensionKind(ext); ok && kind == functionType {
				names = append(names, ext.Name)
			}
		}
		lines := []string{fmt.Sprintf("::std::string %s[] =\n{", varName)}
		for i, name := range names {
			if i == len(names)-1 {
				lines = append(lines, fmt.Sprintf("\t\"%s\"", name))
			} else {
				lines = append(lines, fmt.Sprintf("\t\"%s\",", name))
			}
		}
		return append(lines, "};")
	}

	lines := []string{""}
	lines = append(lines, perType(scanner.FunctionInstance)...)
	lines = append(lines, "")
	lines = append(lines, perType(scanner.FunctionDevice)...)
	lines = append(lines, "")
	instanceArr := nameArray("instanceExtensionNames", scanner.FunctionInstance)
	instanceArr[len(instanceArr)-1] += "\n"
	lines = append(lines, instanceArr...)
	lines = append(lines, nameArray("deviceExtensionNames", scanner.FunctionDevice)...)
	return lines, nil
}

func genExtensionList(kind string) func(*Generator) ([]string, error) {
	return func(g *Generator) ([]string, error) {
		data, err := g.src.ExtensionsData()
		if err != nil {
			return nil, err
		}
		title := strings.ToUpper(kind[:1]) + strings.ToLower(kind[1:])
		lines := []string{fmt.Sprintf("static const char* s_allowed%sKhrExtensions[] =\n{", title)}
		ptrn := regexp.MustCompile(`\s*([^\s]+)\s+` + kind + `\s*[0-9_]*`)
		for _, m := range ptrn.FindAllStringSubmatch(data, -1) {
			lines = append(lines, "\t\""+m[1]+"\",")
		}
		return append(lines, "};\n"), nil
	}
}

var driverIDEnumPattern = regexp.MustCompile(`(?s)typedef\s+enum\s+VkDriverId\s*\{(.*?)\}\s*VkDriverId\s*;`)

// genKnownDriverIds scrapes the VkDriverId enum straight from the core
// header; alias entries resolve to the value of the entry they repeat.
func (g *Generator) genKnownDriverIds() ([]string, error) {
	m := driverIDEnumPattern.FindStringSubmatch(g.src.Core)
	if m == nil {
		return nil, fmt.Errorf("VkDriverId enum not found in %s", "vulkan_core.h")
	}

	lines := []string{
		"static const struct\n{\n\tstd::string driver;\n\tdeUint32 id;\n} driverIds [] =\n{",
	}

	items := strings.Split(m[1], ",")
	values := make(map[string]string)
	for i, item := range items {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		valueStr := strings.TrimSpace(parts[1])
		value, known := values[valueStr]
		comment := ""
		if known {
			comment = "\t// " + valueStr
		} else {
			value = valueStr
		}
		values[key] = value

		entry := "\t{\"" + key + "\", " + value + "}"
		if i != len(items)-1 {
			entry += ","
		}
		lines = append(lines, entry+comment)
	}

	return append(lines, "};"), nil
}
