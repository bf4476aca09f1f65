package scanner

// Clone helpers produce detached copies for typedef alias creation. The
// copy starts with no alias link of its own.

func (h *Handle) Clone() *Handle {
	c := *h
	c.Alias = nil
	c.IsAlias = false
	return &c
}

func (e *Enum) Clone() *Enum {
	c := *e
	c.Values = append([]EnumValue(nil), e.Values...)
	c.Alias = nil
	c.IsAlias = false
	return &c
}

func (b *Bitfield) Clone() *Bitfield {
	c := *b
	c.Values = append([]EnumValue(nil), b.Values...)
	c.Alias = nil
	c.IsAlias = false
	return &c
}

func (v *Variable) Clone() *Variable {
	c := *v
	c.Type = append([]string(nil), v.Type...)
	return &c
}

func (t *CompositeType) Clone() *CompositeType {
	c := *t
	c.Members = make([]*Variable, len(t.Members))
	for i, m := range t.Members {
		c.Members[i] = m.Clone()
	}
	c.Alias = nil
	c.IsAlias = false
	return &c
}

func (f *Function) Clone() *Function {
	c := *f
	c.Arguments = make([]*Variable, len(f.Arguments))
	for i, a := range f.Arguments {
		c.Arguments[i] = a.Clone()
	}
	c.Alias = nil
	c.IsAlias = false
	return &c
}
