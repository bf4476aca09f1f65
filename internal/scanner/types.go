// Package scanner extracts raw Vulkan API constructs from C header text.
//
// The matchers are a tolerant regex battery: text that no pattern
// recognizes is skipped, a recognized construct that cannot be parsed is
// an error. Semantic work (version stamping, extension partitioning,
// alias links) happens in the registry package on top of these results.
package scanner

import (
	"fmt"
	"strings"
)

// Version is a Vulkan core version (VK_VERSION_x_y).
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// Hash packs the version into the VK_MAKE_VERSION bit layout.
func (v Version) Hash() uint32 {
	return uint32(v.Major)<<22 | uint32(v.Minor)<<12 | uint32(v.Patch)
}

// InHex returns the version as the API define when patch is zero, or as
// a hex literal otherwise.
func (v Version) InHex() string {
	if v.Patch == 0 {
		return fmt.Sprintf("VK_API_VERSION_%d_%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("0x%Xu", v.Hash())
}

func (v Version) IsStandardVersion() bool {
	return v.Patch == 0 && v.Major == 1
}

func (v Version) DefineName() string {
	return fmt.Sprintf("VERSION_%d_%d_%d", v.Major, v.Minor, v.Patch)
}

// BestRepresentation picks the form generated code refers to the
// version by.
func (v Version) BestRepresentation() string {
	if v.IsStandardVersion() {
		return v.InHex()
	}
	return v.DefineName()
}

func (v Version) String() string { return v.BestRepresentation() }

// VersionMarker is one VK_VERSION_x_y guard occurrence in the source,
// with the byte offset where its section starts.
type VersionMarker struct {
	Token  string `json:"token"`
	Offset int    `json:"offset"`
	Major  int    `json:"major"`
	Minor  int    `json:"minor"`
}

func (m VersionMarker) Version() Version {
	return Version{Major: m.Major, Minor: m.Minor}
}

// HandleKind distinguishes dispatchable from non-dispatchable handles.
type HandleKind int

const (
	HandleDisp HandleKind = iota
	HandleNonDisp
)

// Handle is a VK_DEFINE_HANDLE / VK_DEFINE_NON_DISPATCHABLE_HANDLE
// object type.
type Handle struct {
	Kind    HandleKind `json:"kind"`
	Name    string     `json:"name"`
	Alias   *Handle    `json:"alias,omitempty"`
	IsAlias bool       `json:"isAlias,omitempty"`
}

func NewHandle(kind HandleKind, name string) *Handle {
	return &Handle{Kind: kind, Name: name}
}

// HandleType returns the HANDLE_TYPE_* enumerator name for the handle.
func (h *Handle) HandleType() string {
	return PrefixName("HANDLE_TYPE_", h.Name)
}

func (h *Handle) CheckAliasValidity() error { return nil }

// Definition is a #define constant with the C type the framework
// declares it as.
type Definition struct {
	Type  string `json:"type,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func NewDefinition(ctype, name, value string) *Definition {
	return &Definition{Type: ctype, Name: name, Value: value}
}

// EnumValue is a single name = value entry of an enum or bitfield.
type EnumValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Enum is a typedef'd C enum.
type Enum struct {
	Name    string      `json:"name"`
	Values  []EnumValue `json:"values"`
	Alias   *Enum       `json:"alias,omitempty"`
	IsAlias bool        `json:"isAlias,omitempty"`
}

func NewEnum(name string, values []EnumValue) *Enum {
	return &Enum{Name: name, Values: values}
}

func (e *Enum) CheckAliasValidity() error {
	if e.Alias == nil {
		return nil
	}
	if len(e.Values) != len(e.Alias.Values) {
		return fmt.Errorf("%s has different number of flags than its alias %s", e.Name, e.Alias.Name)
	}
	for i, value := range e.Values {
		aliasVal := e.Alias.Values[i]
		if value.Value != aliasVal.Value || !(strings.HasPrefix(value.Name, aliasVal.Name) || strings.HasPrefix(aliasVal.Name, value.Name)) {
			return fmt.Errorf("flag %s of %s has different value than %s of %s", aliasVal.Name, e.Alias.Name, value.Name, e.Name)
		}
	}
	return nil
}

// Bitfield is a typedef VkFlags carrier together with the values of its
// backing *FlagBits enum (empty when the header declares no bits yet).
type Bitfield struct {
	Name    string      `json:"name"`
	Values  []EnumValue `json:"values"`
	Alias   *Bitfield   `json:"alias,omitempty"`
	IsAlias bool        `json:"isAlias,omitempty"`
}

func NewBitfield(name string, values []EnumValue) *Bitfield {
	return &Bitfield{Name: name, Values: values}
}

func (b *Bitfield) CheckAliasValidity() error {
	if b.Alias == nil {
		return nil
	}
	if len(b.Values) != len(b.Alias.Values) {
		return fmt.Errorf("%s has different number of flags than its alias %s", b.Name, b.Alias.Name)
	}
	for i, value := range b.Values {
		aliasVal := b.Alias.Values[i]
		if value.Value != aliasVal.Value || !(strings.HasPrefix(value.Name, aliasVal.Name) || strings.HasPrefix(aliasVal.Name, value.Name)) {
			return fmt.Errorf("flag %s of %s has different value than %s of %s", aliasVal.Name, b.Alias.Name, value.Name, b.Name)
		}
	}
	return nil
}

// Variable is a declared member or argument. The type is kept as an
// ordered token list after substitution so platform types and pointers
// survive re-emission.
type Variable struct {
	Type       []string `json:"type"`
	Name       string   `json:"name"`
	ArraySize  string   `json:"arraySize,omitempty"`
	FieldWidth string   `json:"fieldWidth,omitempty"`
}

// NewVariable builds a Variable from raw declaration pieces, applying
// the fixed type substitutions and the platform type table.
func NewVariable(ctype, name, arraySizeOrFieldWidth string) *Variable {
	t := strings.ReplaceAll(ctype, "*", " *")
	t = strings.ReplaceAll(t, "&", " &")
	for _, sub := range typeSubstitutions {
		t = strings.ReplaceAll(t, sub.from, sub.to)
	}
	tokens := strings.Fields(t)
	for _, pt := range platformTypes {
		lo, hi, ok := containsSeq(tokens, pt.from)
		if !ok {
			continue
		}
		out := make([]string, 0, len(tokens))
		out = append(out, tokens[:lo]...)
		out = append(out, platformTypeNamespace+"::"+pt.to[0])
		out = append(out, pt.to[1:]...)
		out = append(out, tokens[hi:]...)
		tokens = out
		break
	}
	v := &Variable{Type: tokens, Name: name}
	if strings.HasPrefix(arraySizeOrFieldWidth, ":") {
		v.FieldWidth = arraySizeOrFieldWidth
	} else {
		v.ArraySize = arraySizeOrFieldWidth
	}
	return v
}

func containsSeq(big, small []string) (int, int, bool) {
	for i := 0; i+len(small) <= len(big); i++ {
		match := true
		for j := range small {
			if big[i+j] != small[j] {
				match = false
				break
			}
		}
		if match {
			return i, i + len(small), true
		}
	}
	return 0, 0, false
}

// TypeString renders the declared type with pointers and references
// re-attached.
func (v *Variable) TypeString() string {
	s := strings.Join(v.Type, " ")
	s = strings.ReplaceAll(s, " *", "*")
	return strings.ReplaceAll(s, " &", "&")
}

// Decl renders the full declaration with the given separator between
// type and name.
func (v *Variable) Decl(separator string) string {
	return v.TypeString() + separator + v.Name + v.ArraySize + v.FieldWidth
}

// Equal reports declaration compatibility: token-wise equality where
// bare type tokens may differ by a standard extension postfix.
func (v *Variable) Equal(other *Variable) bool {
	if len(v.Type) != len(other.Type) {
		return false
	}
	for i, tok := range v.Type {
		otherTok := other.Type[i]
		if tok == "*" || tok == "&" || tok == "const" || tok == "volatile" {
			if tok != otherTok {
				return false
			}
			continue
		}
		if tok == otherTok {
			continue
		}
		compatible := false
		for _, postfix := range extensionPostfixesStandard {
			if tok == otherTok+postfix || otherTok == tok+postfix {
				compatible = true
				break
			}
		}
		if !compatible {
			return false
		}
	}
	return v.ArraySize == other.ArraySize
}

// CompositeClass distinguishes structs from unions.
type CompositeClass int

const (
	ClassStruct CompositeClass = iota
	ClassUnion
)

func (c CompositeClass) String() string {
	if c == ClassUnion {
		return "union"
	}
	return "struct"
}

// CompositeType is a typedef'd struct or union. APIVersion is the core
// version whose section declared it, nil for extension territory.
type CompositeType struct {
	Class      CompositeClass `json:"class"`
	Name       string         `json:"name"`
	Members    []*Variable    `json:"members"`
	APIVersion *Version       `json:"apiVersion,omitempty"`
	Alias      *CompositeType `json:"alias,omitempty"`
	IsAlias    bool           `json:"isAlias,omitempty"`
}

func NewCompositeType(class CompositeClass, name string, members []*Variable) *CompositeType {
	return &CompositeType{Class: class, Name: name, Members: members}
}

func (c *CompositeType) CheckAliasValidity() error {
	if c.Alias == nil {
		return nil
	}
	if len(c.Members) != len(c.Alias.Members) {
		return fmt.Errorf("%s has different number of members than its alias %s", c.Name, c.Alias.Name)
	}
	return nil
}

// FunctionType classifies entry points by what they are bound to.
type FunctionType int

const (
	FunctionPlatform FunctionType = iota // not bound to anything
	FunctionInstance                     // bound to VkInstance
	FunctionDevice                       // bound to VkDevice
)

// Function is a VKAPI_ATTR entry point. APIVersion holds the version
// guard token of the section that declared it ("VK_VERSION_1_1"), empty
// for 1.0 era declarations.
type Function struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"returnType"`
	Arguments  []*Variable `json:"arguments"`
	APIVersion string      `json:"apiVersion,omitempty"`
	Alias      *Function   `json:"alias,omitempty"`
	IsAlias    bool        `json:"isAlias,omitempty"`
}

func NewFunction(name, returnType string, arguments []*Variable) *Function {
	return &Function{Name: name, ReturnType: returnType, Arguments: arguments}
}

// Type derives the function class from the first argument.
func (f *Function) Type() FunctionType {
	if f.Name == "vkGetInstanceProcAddr" {
		return FunctionPlatform
	}
	if len(f.Arguments) == 0 {
		return FunctionPlatform
	}
	switch f.Arguments[0].TypeString() {
	case "VkInstance", "VkPhysicalDevice":
		return FunctionInstance
	case "VkDevice", "VkCommandBuffer", "VkQueue":
		return FunctionDevice
	default:
		return FunctionPlatform
	}
}

// InterfaceName is the entry point name without the vk prefix,
// lower-cased ("vkCreateDevice" -> "createDevice").
func (f *Function) InterfaceName() string {
	return strings.ToLower(f.Name[2:3]) + f.Name[3:]
}

// TypeName is the generated function pointer type name
// ("vkCreateDevice" -> "CreateDeviceFunc").
func (f *Function) TypeName() string {
	return f.Name[2:] + "Func"
}

func (f *Function) CheckAliasValidity() error {
	if f.Alias == nil {
		return nil
	}
	if len(f.Arguments) != len(f.Alias.Arguments) {
		return fmt.Errorf("%s has different number of arguments than its alias %s", f.Name, f.Alias.Name)
	}
	if f.ReturnType != f.Alias.ReturnType {
		return fmt.Errorf("%s has different return value's type than its alias %s", f.Name, f.Alias.Name)
	}
	for i, argument := range f.Arguments {
		if !argument.Equal(f.Alias.Arguments[i]) {
			return fmt.Errorf("argument %d: %q of %s is different than %q of %s",
				i, f.Alias.Arguments[i].Decl(" "), f.Alias.Name, argument.Decl(" "), f.Name)
		}
	}
	return nil
}
