package concept

// Lookup resolves a deferred reference to its FQN.
type Lookup func(ref *Ref) (FQN, bool)

// Resolvable is implemented by concepts declared outside this package that
// carry deferred references.
type Resolvable interface {
	Concept
	ResolveRefs(lookup Lookup) Concept
}

// Resolve rebuilds every concept of m that carries a deferred reference. A
// reference the lookup can resolve is replaced by the resolved FQN; all other
// references are kept for a later pass. The input map is not modified.
func Resolve(m Map, lookup Lookup) Map {
	r := resolver{lookup: lookup}
	out := make(Map, len(m))
	for prop, inner := range m {
		dst := make(map[ID][]Concept, len(inner))
		for id, list := range inner {
			rewritten := make([]Concept, len(list))
			for i, c := range list {
				rewritten[i] = r.concept(c)
			}
			dst[id] = rewritten
		}
		out[prop] = dst
	}
	return out
}

// ResolveConcept rewrites a single concept the same way Resolve does.
func ResolveConcept(c Concept, lookup Lookup) Concept {
	r := resolver{lookup: lookup}
	return r.concept(c)
}

// ResolveType rewrites a single type the same way Resolve does.
func ResolveType(t Type, lookup Lookup) Type {
	r := resolver{lookup: lookup}
	return r.typ(t)
}

// ResolveValue rewrites a single value the same way Resolve does.
func ResolveValue(v Value, lookup Lookup) Value {
	r := resolver{lookup: lookup}
	return r.value(v)
}

type resolver struct {
	lookup Lookup
}

func (r resolver) concept(c Concept) Concept {
	switch c := c.(type) {
	case Type:
		return r.typ(c)
	case Value:
		return r.value(c)
	case Dependency:
		return r.dependency(c)
	case ClassDeclaration:
		return r.class(c)
	case InterfaceDeclaration:
		return r.iface(c)
	case FunctionDeclaration:
		c.Parameters = r.params(c.Parameters)
		c.ReturnType = r.typ(c.ReturnType)
		c.TypeParameters = r.typeParams(c.TypeParameters)
		return c
	case VariableDeclaration:
		c.Type = r.typ(c.Type)
		c.InitValue = r.value(c.InitValue)
		return c
	case EnumDeclaration:
		members := make([]EnumMember, len(c.Members))
		for i, m := range c.Members {
			members[i] = r.enumMember(m)
		}
		c.Members = members
		return c
	case EnumMember:
		return r.enumMember(c)
	case TypeAliasDeclaration:
		c.Type = r.typ(c.Type)
		c.TypeParameters = r.typeParams(c.TypeParameters)
		return c
	case MethodDeclaration:
		return r.method(c)
	case ConstructorDeclaration:
		return r.constructor(c)
	case ParameterDeclaration:
		return r.param(c)
	case ParameterPropertyDeclaration:
		return r.paramProperty(c)
	case PropertyDeclaration:
		return r.property(c)
	case AccessorProperty:
		return r.accessor(c)
	case TypeParameterDeclaration:
		c.Constraint = r.typ(c.Constraint)
		return c
	case Decorator:
		return r.decorator(c)
	case ValueObjectProperty:
		c.Value = r.value(c.Value)
		return c
	case TypeObjectMember:
		c.Type = r.typ(c.Type)
		return c
	case TypeFunctionParameter:
		c.Type = r.typ(c.Type)
		return c
	case Resolvable:
		return c.ResolveRefs(r.lookup)
	}
	return c
}

func (r resolver) dependency(d Dependency) Dependency {
	if d.Ref == nil {
		return d
	}
	if fqn, ok := r.lookup(d.Ref); ok {
		d.Target = fqn.Global
		d.Ref = nil
	}
	return d
}

func (r resolver) typ(t Type) Type {
	switch t := t.(type) {
	case nil:
		return nil
	case TypeDeclared:
		if t.Ref != nil {
			if fqn, ok := r.lookup(t.Ref); ok {
				t.FQN = fqn
				t.Ref = nil
			}
		}
		t.TypeArguments = r.types(t.TypeArguments)
		return t
	case TypeUnion:
		t.Types = r.types(t.Types)
		return t
	case TypeIntersection:
		t.Types = r.types(t.Types)
		return t
	case TypeTuple:
		t.Types = r.types(t.Types)
		return t
	case TypeObject:
		members := make([]TypeObjectMember, len(t.Members))
		for i, m := range t.Members {
			m.Type = r.typ(m.Type)
			members[i] = m
		}
		t.Members = members
		return t
	case TypeFunction:
		return r.function(t)
	}
	return t
}

func (r resolver) function(t TypeFunction) TypeFunction {
	t.ReturnType = r.typ(t.ReturnType)
	params := make([]TypeFunctionParameter, len(t.Parameters))
	for i, p := range t.Parameters {
		p.Type = r.typ(p.Type)
		params[i] = p
	}
	t.Parameters = params
	t.TypeParameters = r.typeParams(t.TypeParameters)
	return t
}

func (r resolver) types(ts []Type) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = r.typ(t)
	}
	return out
}

func (r resolver) value(v Value) Value {
	switch v := v.(type) {
	case nil:
		return nil
	case ValueNull:
		v.Type = r.typ(v.Type)
		return v
	case ValueLiteral:
		v.Type = r.typ(v.Type)
		return v
	case ValueDeclared:
		if v.Ref != nil {
			if fqn, ok := r.lookup(v.Ref); ok {
				v.FQN = fqn
				v.Ref = nil
			}
		}
		v.Type = r.typ(v.Type)
		return v
	case ValueMember:
		v.Parent = r.value(v.Parent)
		v.Member = r.value(v.Member)
		v.Type = r.typ(v.Type)
		return v
	case ValueObject:
		members := make(map[string]Value, len(v.Members))
		for k, m := range v.Members {
			members[k] = r.value(m)
		}
		v.Members = members
		v.Type = r.typ(v.Type)
		return v
	case ValueArray:
		items := make([]Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = r.value(item)
		}
		v.Items = items
		v.Type = r.typ(v.Type)
		return v
	case ValueCall:
		v.Callee = r.value(v.Callee)
		args := make([]Value, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = r.value(a)
		}
		v.Arguments = args
		v.TypeArguments = r.types(v.TypeArguments)
		v.Type = r.typ(v.Type)
		return v
	case ValueFunction:
		v.Type = r.typ(v.Type)
		return v
	case ValueClass:
		return v
	case ValueComplex:
		return v
	}
	return v
}

func (r resolver) class(c ClassDeclaration) ClassDeclaration {
	c.TypeParameters = r.typeParams(c.TypeParameters)
	if c.ExtendsClass != nil {
		ext := r.typ(*c.ExtendsClass).(TypeDeclared)
		c.ExtendsClass = &ext
	}
	c.Implements = r.declaredList(c.Implements)
	if c.Constructor != nil {
		ctor := r.constructor(*c.Constructor)
		c.Constructor = &ctor
	}
	c.Properties = r.properties(c.Properties)
	c.Methods = r.methods(c.Methods)
	c.AccessorProperties = r.accessors(c.AccessorProperties)
	c.Decorators = r.decorators(c.Decorators)
	return c
}

func (r resolver) iface(c InterfaceDeclaration) InterfaceDeclaration {
	c.TypeParameters = r.typeParams(c.TypeParameters)
	c.Extends = r.declaredList(c.Extends)
	c.Properties = r.properties(c.Properties)
	c.Methods = r.methods(c.Methods)
	c.AccessorProperties = r.accessors(c.AccessorProperties)
	return c
}

func (r resolver) declaredList(ts []TypeDeclared) []TypeDeclared {
	if ts == nil {
		return nil
	}
	out := make([]TypeDeclared, len(ts))
	for i, t := range ts {
		out[i] = r.typ(t).(TypeDeclared)
	}
	return out
}

func (r resolver) enumMember(m EnumMember) EnumMember {
	m.Init = r.value(m.Init)
	return m
}

func (r resolver) method(m MethodDeclaration) MethodDeclaration {
	m.Parameters = r.params(m.Parameters)
	m.ReturnType = r.typ(m.ReturnType)
	m.TypeParameters = r.typeParams(m.TypeParameters)
	m.Decorators = r.decorators(m.Decorators)
	return m
}

func (r resolver) methods(ms []MethodDeclaration) []MethodDeclaration {
	if ms == nil {
		return nil
	}
	out := make([]MethodDeclaration, len(ms))
	for i, m := range ms {
		out[i] = r.method(m)
	}
	return out
}

func (r resolver) constructor(c ConstructorDeclaration) ConstructorDeclaration {
	c.Parameters = r.params(c.Parameters)
	if c.ParameterProperties != nil {
		props := make([]ParameterPropertyDeclaration, len(c.ParameterProperties))
		for i, p := range c.ParameterProperties {
			props[i] = r.paramProperty(p)
		}
		c.ParameterProperties = props
	}
	return c
}

func (r resolver) param(p ParameterDeclaration) ParameterDeclaration {
	p.Type = r.typ(p.Type)
	p.Decorators = r.decorators(p.Decorators)
	return p
}

func (r resolver) params(ps []ParameterDeclaration) []ParameterDeclaration {
	if ps == nil {
		return nil
	}
	out := make([]ParameterDeclaration, len(ps))
	for i, p := range ps {
		out[i] = r.param(p)
	}
	return out
}

func (r resolver) paramProperty(p ParameterPropertyDeclaration) ParameterPropertyDeclaration {
	p.Type = r.typ(p.Type)
	p.Decorators = r.decorators(p.Decorators)
	return p
}

func (r resolver) property(p PropertyDeclaration) PropertyDeclaration {
	p.Type = r.typ(p.Type)
	p.Decorators = r.decorators(p.Decorators)
	return p
}

func (r resolver) properties(ps []PropertyDeclaration) []PropertyDeclaration {
	if ps == nil {
		return nil
	}
	out := make([]PropertyDeclaration, len(ps))
	for i, p := range ps {
		out[i] = r.property(p)
	}
	return out
}

func (r resolver) accessor(a AccessorProperty) AccessorProperty {
	if a.Getter != nil {
		g := *a.Getter
		g.ReturnType = r.typ(g.ReturnType)
		g.Decorators = r.decorators(g.Decorators)
		a.Getter = &g
	}
	if a.Setter != nil {
		s := *a.Setter
		s.Parameters = r.params(s.Parameters)
		s.Decorators = r.decorators(s.Decorators)
		a.Setter = &s
	}
	if a.AutoAccessor != nil {
		aa := *a.AutoAccessor
		aa.Type = r.typ(aa.Type)
		aa.Decorators = r.decorators(aa.Decorators)
		a.AutoAccessor = &aa
	}
	return a
}

func (r resolver) accessors(as []AccessorProperty) []AccessorProperty {
	if as == nil {
		return nil
	}
	out := make([]AccessorProperty, len(as))
	for i, a := range as {
		out[i] = r.accessor(a)
	}
	return out
}

func (r resolver) decorator(d Decorator) Decorator {
	d.Value = r.value(d.Value)
	return d
}

func (r resolver) decorators(ds []Decorator) []Decorator {
	if ds == nil {
		return nil
	}
	out := make([]Decorator, len(ds))
	for i, d := range ds {
		out[i] = r.decorator(d)
	}
	return out
}

func (r resolver) typeParams(ps []TypeParameterDeclaration) []TypeParameterDeclaration {
	if ps == nil {
		return nil
	}
	out := make([]TypeParameterDeclaration, len(ps))
	for i, p := range ps {
		p.Constraint = r.typ(p.Constraint)
		out[i] = p
	}
	return out
}
