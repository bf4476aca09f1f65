package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Alia5/vulkangen/internal/scanner"
)

// linkAliases links extension-scoped objects to their canonical
// counterparts by stripping a standard postfix from the name. Each link
// is validated immediately; at most one alias per canonical entity is
// assumed by everything downstream.
func linkAliases[T comparable](byName map[string]T, extObjs []T,
	getName func(T) string,
	getAlias func(T) T,
	setAlias func(canon, alias T),
	check func(T) error,
) error {
	var zero T
	for _, obj := range extObjs {
		base, ok := scanner.RemoveStandardPostfix(getName(obj))
		if !ok {
			continue
		}
		canon, found := byName[base]
		if !found {
			continue
		}
		if getAlias(canon) != zero {
			return fmt.Errorf("%s already has alias %s, cannot alias %s",
				base, getName(getAlias(canon)), getName(obj))
		}
		setAlias(canon, obj)
		if err := check(canon); err != nil {
			return err
		}
	}
	for _, obj := range extObjs {
		if err := check(obj); err != nil {
			return err
		}
	}
	return nil
}

// populateExtensionAliases runs the suffix-stripping alias pass over
// every entity kind a promoted extension owns.
func populateExtensionAliases(ext *Extension,
	functionsByName map[string]*scanner.Function,
	handlesByName map[string]*scanner.Handle,
	enumsByName map[string]*scanner.Enum,
	bitfieldsByName map[string]*scanner.Bitfield,
	compositeTypesByName map[string]*scanner.CompositeType,
) error {
	if err := linkAliases(functionsByName, ext.Functions,
		func(f *scanner.Function) string { return f.Name },
		func(f *scanner.Function) *scanner.Function { return f.Alias },
		func(canon, alias *scanner.Function) { canon.Alias = alias; alias.IsAlias = true },
		func(f *scanner.Function) error { return f.CheckAliasValidity() }); err != nil {
		return err
	}
	if err := linkAliases(handlesByName, ext.Handles,
		func(h *scanner.Handle) string { return h.Name },
		func(h *scanner.Handle) *scanner.Handle { return h.Alias },
		func(canon, alias *scanner.Handle) { canon.Alias = alias; alias.IsAlias = true },
		func(h *scanner.Handle) error { return h.CheckAliasValidity() }); err != nil {
		return err
	}
	if err := linkAliases(enumsByName, ext.Enums,
		func(e *scanner.Enum) string { return e.Name },
		func(e *scanner.Enum) *scanner.Enum { return e.Alias },
		func(canon, alias *scanner.Enum) { canon.Alias = alias; alias.IsAlias = true },
		func(e *scanner.Enum) error { return e.CheckAliasValidity() }); err != nil {
		return err
	}
	if err := linkAliases(bitfieldsByName, ext.Bitfields,
		func(b *scanner.Bitfield) string { return b.Name },
		func(b *scanner.Bitfield) *scanner.Bitfield { return b.Alias },
		func(canon, alias *scanner.Bitfield) { canon.Alias = alias; alias.IsAlias = true },
		func(b *scanner.Bitfield) error { return b.CheckAliasValidity() }); err != nil {
		return err
	}
	return linkAliases(compositeTypesByName, ext.CompositeTypes,
		func(t *scanner.CompositeType) string { return t.Name },
		func(t *scanner.CompositeType) *scanner.CompositeType { return t.Alias },
		func(canon, alias *scanner.CompositeType) { canon.Alias = alias; alias.IsAlias = true },
		func(t *scanner.CompositeType) error { return t.CheckAliasValidity() })
}

// populateTypedefAliases catches alias pairs declared as plain
// `typedef <Canonical> <Alias>;` lines, which the suffix-stripping pass
// cannot see. The alias is a detached copy appended to the collection.
func populateTypedefAliases[T any](objects []T, src string,
	getName func(T) string,
	cloneAs func(T, string) T,
	link func(canon, alias T),
) []T {
	out := objects
	for _, obj := range objects {
		ptrn := regexp.MustCompile(`[ \t]*typedef\s+` + regexp.QuoteMeta(getName(obj)) + `\s+([^;]+)`)
		stash := ptrn.FindAllStringSubmatch(src, -1)
		if len(stash) != 1 {
			continue
		}
		alias := cloneAs(obj, strings.TrimSpace(stash[0][1]))
		link(obj, alias)
		out = append(out, alias)
	}
	return out
}

// removeAliasedValues drops enum values that are postfix-stripped twins
// of other values with the same literal; the promoted name wins.
func removeAliasedValues(enum *scanner.Enum) {
	valueByName := make(map[string]string, len(enum.Values))
	for _, v := range enum.Values {
		valueByName[v.Name] = v.Value
	}

	removePostfix := func(name string) (string, bool) {
		for _, p := range scanner.ExtensionPostfixes() {
			if strings.HasSuffix(name, "_"+p) {
				return name[:len(name)-len(p)-1], true
			}
		}
		return "", false
	}

	kept := enum.Values[:0]
	for _, v := range enum.Values {
		if base, ok := removePostfix(v.Name); ok {
			if canonValue, found := valueByName[base]; found && canonValue == v.Value {
				continue
			}
		}
		kept = append(kept, v)
	}
	enum.Values = kept
}
