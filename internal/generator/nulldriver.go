package generator

import (
	"fmt"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// nullDriverSpecialFuncs are entry points with hand-written bodies in
// the null driver; the generated file only routes them.
var nullDriverSpecialFuncs = map[string]bool{
	"vkCreateGraphicsPipelines":                      true,
	"vkCreateComputePipelines":                       true,
	"vkCreateRayTracingPipelinesNV":                  true,
	"vkCreateRayTracingPipelinesKHR":                 true,
	"vkGetInstanceProcAddr":                          true,
	"vkGetDeviceProcAddr":                            true,
	"vkEnumeratePhysicalDevices":                     true,
	"vkEnumerateInstanceExtensionProperties":         true,
	"vkEnumerateDeviceExtensionProperties":           true,
	"vkGetPhysicalDeviceFeatures":                    true,
	"vkGetPhysicalDeviceFeatures2KHR":                true,
	"vkGetPhysicalDeviceProperties":                  true,
	"vkGetPhysicalDeviceProperties2KHR":              true,
	"vkGetPhysicalDeviceQueueFamilyProperties":       true,
	"vkGetPhysicalDeviceMemoryProperties":            true,
	"vkGetPhysicalDeviceFormatProperties":            true,
	"vkGetPhysicalDeviceImageFormatProperties":       true,
	"vkGetDeviceQueue":                               true,
	"vkGetBufferMemoryRequirements":                  true,
	"vkGetBufferMemoryRequirements2KHR":              true,
	"vkGetImageMemoryRequirements":                   true,
	"vkGetImageMemoryRequirements2KHR":               true,
	"vkAllocateMemory":                               true,
	"vkMapMemory":                                    true,
	"vkUnmapMemory":                                  true,
	"vkAllocateDescriptorSets":                       true,
	"vkFreeDescriptorSets":                           true,
	"vkResetDescriptorPool":                          true,
	"vkAllocateCommandBuffers":                       true,
	"vkFreeCommandBuffers":                           true,
	"vkCreateDisplayModeKHR":                         true,
	"vkCreateSharedSwapchainsKHR":                    true,
	"vkGetPhysicalDeviceExternalBufferPropertiesKHR": true,
	"vkGetPhysicalDeviceImageFormatProperties2KHR":   true,
	"vkGetMemoryAndroidHardwareBufferANDROID":        true,
}

func (g *Generator) genNullDriverImpl() ([]string, error) {
	handlesByName := make(map[string]*scanner.Handle, len(g.api.Handles))
	for _, h := range g.api.Handles {
		handlesByName[h.Name] = h
	}
	lookupHandle := func(name string) (*scanner.Handle, error) {
		h, ok := handlesByName[name]
		if !ok {
			return nil, fmt.Errorf("no such handle: %s", name)
		}
		return h, nil
	}

	var create, destroy, dummy []*scanner.Function
	for _, f := range g.api.Functions {
		if f.IsAlias || nullDriverSpecialFuncs[f.Name] {
			continue
		}
		switch {
		case strings.HasPrefix(f.Name, "vkCreate") || f.Name == "vkAllocateMemory":
			create = append(create, f)
		case strings.HasPrefix(f.Name, "vkDestroy") || f.Name == "vkFreeMemory":
			destroy = append(destroy, f)
		default:
			dummy = append(dummy, f)
		}
	}

	var lines []string

	for _, f := range create {
		out := f.Arguments[len(f.Arguments)-1]
		objectType := out.Type[0]
		handle, err := lookupHandle(objectType)
		if err != nil {
			return nil, err
		}
		allocFn := "allocateHandle"
		if handle.Kind == scanner.HandleNonDisp {
			allocFn = "allocateNonDispHandle"
		}
		inArgs := make([]string, 0, len(f.Arguments)-1)
		for _, a := range f.Arguments[:len(f.Arguments)-1] {
			inArgs = append(inArgs, a.Name)
		}

		lines = append(lines,
			fmt.Sprintf("VKAPI_ATTR %s VKAPI_CALL %s (%s)", f.ReturnType, f.InterfaceName(), argListToStr(f.Arguments)),
			"{",
			fmt.Sprintf("\tDE_UNREF(%s);", f.Arguments[len(f.Arguments)-2].Name),
			fmt.Sprintf("\tVK_NULL_RETURN((*%s = %s<%s, %s>(%s)));", out.Name, allocFn, objectType[2:], objectType, strings.Join(inArgs, ", ")),
			"}",
			"")
	}

	for _, f := range destroy {
		objectArg := f.Arguments[len(f.Arguments)-2]
		handle, err := lookupHandle(objectArg.Type[0])
		if err != nil {
			return nil, err
		}
		freeFn := "freeHandle"
		if handle.Kind == scanner.HandleNonDisp {
			freeFn = "freeNonDispHandle"
		}

		lines = append(lines,
			fmt.Sprintf("VKAPI_ATTR %s VKAPI_CALL %s (%s)", f.ReturnType, f.InterfaceName(), argListToStr(f.Arguments)),
			"{")
		for _, a := range f.Arguments[:len(f.Arguments)-2] {
			lines = append(lines, fmt.Sprintf("\tDE_UNREF(%s);", a.Name))
		}
		lines = append(lines,
			fmt.Sprintf("\t%s<%s, %s>(%s, %s);", freeFn, objectArg.TypeString()[2:], objectArg.TypeString(), objectArg.Name, f.Arguments[len(f.Arguments)-1].Name),
			"}",
			"")
	}

	for _, f := range dummy {
		lines = append(lines,
			fmt.Sprintf("VKAPI_ATTR %s VKAPI_CALL %s (%s)", f.ReturnType, f.InterfaceName(), argListToStr(f.Arguments)),
			"{")
		for _, a := range f.Arguments {
			lines = append(lines, fmt.Sprintf("\tDE_UNREF(%s);", a.Name))
		}
		if f.ReturnType != "void" {
			lines = append(lines, "\treturn VK_SUCCESS;")
		}
		lines = append(lines, "}", "")
	}

	// alias entries in the tables resolve back to the implementation of
	// the canonical spelling
	refFuncs := make(map[*scanner.Function]*scanner.Function)
	for _, f := range g.api.Functions {
		if f.Alias != nil {
			refFuncs[f.Alias] = f
		}
	}

	entryTable := func(functionType scanner.FunctionType, name string) []string {
		var entries []string
		for _, f := range functionsOfType(g.api.Functions, functionType) {
			impl := f
			if f.IsAlias {
				impl = refFuncs[f]
			}
			entries = append(entries, fmt.Sprintf("\tVK_NULL_FUNC_ENTRY(%s,\t%s),", f.Name, impl.InterfaceName()))
		}
		table := []string{fmt.Sprintf("static const tcu::StaticFunctionLibrary::Entry %s[] =", name), "{"}
		table = append(table, indentLines(entries)...)
		return append(table, "};", "")
	}

	lines = append(lines, entryTable(scanner.FunctionPlatform, "s_platformFunctions")...)
	lines = append(lines, entryTable(scanner.FunctionInstance, "s_instanceFunctions")...)
	lines = append(lines, entryTable(scanner.FunctionDevice, "s_deviceFunctions")...)
	return lines, nil
}
