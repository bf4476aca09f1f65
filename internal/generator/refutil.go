package generator

import (
	"fmt"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// constructorFunction is one vkCreate*/vkAllocateMemory entry point
// reshaped into a Move<> returning wrapper.
type constructorFunction struct {
	functionType scanner.FunctionType
	name         string
	objectType   string
	ifaceArgs    []*scanner.Variable
	arguments    []*scanner.Variable
}

func constructorFunctions(api []*scanner.Function) ([]constructorFunction, error) {
	ifaceArgsFor := func(t scanner.FunctionType) []*scanner.Variable {
		switch t {
		case scanner.FunctionPlatform:
			return []*scanner.Variable{scanner.NewVariable("const PlatformInterface&", "vk", "")}
		case scanner.FunctionInstance:
			return []*scanner.Variable{scanner.NewVariable("const InstanceInterface&", "vk", "")}
		default:
			return []*scanner.Variable{scanner.NewVariable("const DeviceInterface&", "vk", "")}
		}
	}

	var funcs []constructorFunction
	for _, f := range api {
		if f.IsAlias {
			continue
		}
		if !strings.HasPrefix(f.Name, "vkCreate") && f.Name != "vkAllocateMemory" {
			continue
		}
		// batch constructors need per-element deleters, not a Move<>
		batch := false
		for _, a := range f.Arguments {
			if a.Name == "createInfoCount" {
				batch = true
				break
			}
		}
		if batch {
			continue
		}
		// display modes cannot be destroyed, so no wrapper
		if f.Name == "vkCreateDisplayModeKHR" {
			continue
		}

		ifaceArgs := ifaceArgsFor(f.Type())
		if f.Name == "vkCreateDevice" {
			ifaceArgs = append([]*scanner.Variable{
				scanner.NewVariable("const PlatformInterface&", "vkp", ""),
				scanner.NewVariable("VkInstance", "instance", ""),
			}, ifaceArgs...)
		}

		if len(f.Arguments) < 2 {
			return nil, fmt.Errorf("%s: too few arguments for a constructor", f.Name)
		}
		allocator := f.Arguments[len(f.Arguments)-2]
		if allocator.TypeString() != "const VkAllocationCallbacks*" {
			return nil, fmt.Errorf("%s: expected allocator argument, got %q", f.Name, allocator.Decl(" "))
		}

		funcs = append(funcs, constructorFunction{
			functionType: f.Type(),
			name:         f.InterfaceName(),
			objectType:   f.Arguments[len(f.Arguments)-1].Type[0],
			ifaceArgs:    ifaceArgs,
			arguments:    f.Arguments[:len(f.Arguments)-1],
		})
	}
	return funcs, nil
}

func (g *Generator) genRefUtilProto() ([]string, error) {
	funcs, err := constructorFunctions(g.api.Functions)
	if err != nil {
		return nil, err
	}

	var protos []string
	for _, f := range funcs {
		args := append(append([]*scanner.Variable{}, f.ifaceArgs...), f.arguments...)
		protos = append(protos, fmt.Sprintf("Move<%s>\t%s\t(%s = DE_NULL);", f.objectType, f.name, argListToStr(args)))
	}
	return indentLines(protos), nil
}

func (g *Generator) genRefUtilImpl() ([]string, error) {
	funcs, err := constructorFunctions(g.api.Functions)
	if err != nil {
		return nil, err
	}

	lines := []string{"namespace refdetails", "{", ""}

	for _, f := range g.api.Functions {
		if f.Type() != scanner.FunctionDevice || f.IsAlias {
			continue
		}
		if !strings.HasPrefix(f.Name, "vkDestroy") && f.Name != "vkFreeMemory" {
			continue
		}
		if f.Name == "vkDestroyDevice" {
			continue
		}
		objectType := f.Arguments[len(f.Arguments)-2].TypeString()
		lines = append(lines,
			"template<>",
			fmt.Sprintf("void Deleter<%s>::operator() (%s obj) const", objectType, objectType),
			"{",
			fmt.Sprintf("\tm_deviceIface->%s(m_device, obj, m_allocator);", f.InterfaceName()),
			"}",
			"")
	}

	lines = append(lines, "} // refdetails", "")

	dtorOwner := map[scanner.FunctionType]string{
		scanner.FunctionPlatform: "object",
		scanner.FunctionInstance: "instance",
		scanner.FunctionDevice:   "device",
	}

	for _, f := range funcs {
		deleterArgs := fmt.Sprintf("vk, %s, %s", dtorOwner[f.functionType], f.arguments[len(f.arguments)-1].Name)
		if f.name == "createDevice" {
			// the VkDevice deleter recreates a DeviceDriver, which
			// needs the platform interface and owning instance
			deleterArgs = "vkp, instance, object, " + f.arguments[len(f.arguments)-1].Name
		}

		args := append(append([]*scanner.Variable{}, f.ifaceArgs...), f.arguments...)
		callArgs := append(strings.Split(argNames(f.arguments), ", "), "&object")
		lines = append(lines,
			fmt.Sprintf("Move<%s> %s (%s)", f.objectType, f.name, argListToStr(args)),
			"{",
			fmt.Sprintf("\t%s object = 0;", f.objectType),
			fmt.Sprintf("\tVK_CHECK(vk.%s(%s));", f.name, strings.Join(callArgs, ", ")),
			fmt.Sprintf("\treturn Move<%s>(check<%s>(object), Deleter<%s>(%s));", f.objectType, f.objectType, f.objectType, deleterArgs),
			"}",
			"")
	}
	return lines, nil
}
