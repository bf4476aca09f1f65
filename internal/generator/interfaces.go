package generator

import (
	"fmt"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

func genInterfaceDecl(functionType scanner.FunctionType, concrete bool) func(*Generator) ([]string, error) {
	return func(g *Generator) ([]string, error) {
		postfix := " = 0"
		if concrete {
			postfix = ""
		}
		var protos []string
		for _, f := range functionsOfType(g.api.Functions, functionType) {
			if f.IsAlias {
				continue
			}
			protos = append(protos, fmt.Sprintf("virtual %s\t%s\t(%s) const%s;",
				f.ReturnType, f.InterfaceName(), argListToStr(f.Arguments), postfix))
		}
		return indentLines(protos), nil
	}
}

func (g *Generator) genFunctionPtrTypes() ([]string, error) {
	var types []string
	for _, f := range g.api.Functions {
		types = append(types, fmt.Sprintf("typedef VKAPI_ATTR %s\t(VKAPI_CALL* %s)\t(%s);",
			f.ReturnType, f.TypeName(), argListToStr(f.Arguments)))
	}
	return indentLines(types), nil
}

// promotedInstanceAlias reports whether an alias entry point still
// needs its own member: physical-device queries keep both spellings so
// drivers predating promotion stay callable.
func promotedInstanceAlias(f *scanner.Function) bool {
	return f.Type() == scanner.FunctionInstance &&
		len(f.Arguments) > 0 && f.Arguments[0].TypeString() == "VkPhysicalDevice"
}

func genFunctionPointers(functionType scanner.FunctionType) func(*Generator) ([]string, error) {
	return func(g *Generator) ([]string, error) {
		var members []string
		for _, f := range functionsOfType(g.api.Functions, functionType) {
			if f.IsAlias && !promotedInstanceAlias(f) {
				continue
			}
			members = append(members, fmt.Sprintf("%s\t%s;", f.TypeName(), f.InterfaceName()))
		}
		return indentLines(members), nil
	}
}

func genInitFunctionPointers(functionType scanner.FunctionType, cond func(*scanner.Function) bool) func(*Generator) ([]string, error) {
	return func(g *Generator) ([]string, error) {
		var inits []string
		for _, f := range functionsOfType(g.api.Functions, functionType) {
			if cond != nil && !cond(f) {
				continue
			}
			if f.IsAlias {
				if promotedInstanceAlias(f) {
					inits = append(inits, fmt.Sprintf("m_vk.%s\t= (%s)\tGET_PROC_ADDR(\"%s\");",
						f.InterfaceName(), f.TypeName(), f.Name))
				}
				continue
			}
			inits = append(inits, fmt.Sprintf("m_vk.%s\t= (%s)\tGET_PROC_ADDR(\"%s\");",
				f.InterfaceName(), f.TypeName(), f.Name))
			if f.Alias != nil {
				inits = append(inits, fmt.Sprintf("if (!m_vk.%s)", f.InterfaceName()))
				inits = append(inits, fmt.Sprintf("    m_vk.%s\t= (%s)\tGET_PROC_ADDR(\"%s\");",
					f.InterfaceName(), f.TypeName(), f.Alias.Name))
			}
		}
		lines := indentLines(inits)
		for i, line := range lines {
			lines[i] = strings.ReplaceAll(line, "    ", "\t")
		}
		return lines, nil
	}
}

func genDriverImpl(functionType scanner.FunctionType, className string) func(*Generator) ([]string, error) {
	return func(g *Generator) ([]string, error) {
		var lines []string
		for _, f := range functionsOfType(g.api.Functions, functionType) {
			if f.IsAlias {
				continue
			}
			ret := "return "
			if f.ReturnType == "void" {
				ret = ""
			}
			lines = append(lines,
				"",
				fmt.Sprintf("%s %s::%s (%s) const", f.ReturnType, className, f.InterfaceName(), argListToStr(f.Arguments)),
				"{")
			switch {
			case f.Name == "vkEnumerateInstanceVersion":
				lines = append(lines,
					"\tif (m_vk.enumerateInstanceVersion)",
					"\t\treturn m_vk.enumerateInstanceVersion(pApiVersion);",
					"",
					"\t*pApiVersion = VK_API_VERSION_1_0;",
					"\treturn VK_SUCCESS;")
			case promotedInstanceAlias(f) && f.Alias != nil:
				// drivers may only expose the pre-promotion spelling;
				// dispatch by the device's reported version
				lines = append(lines,
					"\tvk::VkPhysicalDeviceProperties props;",
					"\tm_vk.getPhysicalDeviceProperties(physicalDevice, &props);",
					"\tif (props.apiVersion >= VK_API_VERSION_1_1)",
					fmt.Sprintf("\t\t%sm_vk.%s(%s);", ret, f.InterfaceName(), argNames(f.Arguments)),
					"\telse",
					fmt.Sprintf("\t\t%sm_vk.%s(%s);", ret, f.Alias.InterfaceName(), argNames(f.Arguments)))
			default:
				lines = append(lines, fmt.Sprintf("\t%sm_vk.%s(%s);", ret, f.InterfaceName(), argNames(f.Arguments)))
			}
			lines = append(lines, "}")
		}
		return lines, nil
	}
}
