package concept

import "sort"

// Map groups concepts by the structural property they were produced under and
// then by concept ID. Processors return concepts under the empty property;
// the traverser relabels them with the property name of the child they came
// from.
type Map map[string]map[ID][]Concept

// Of creates a map holding the given concepts under the empty property.
func Of(concepts ...Concept) Map {
	m := Map{}
	for _, c := range concepts {
		m.Add("", c)
	}
	return m
}

// Add appends c under prop.
func (m Map) Add(prop string, c Concept) {
	if c == nil {
		return
	}
	inner, ok := m[prop]
	if !ok {
		inner = map[ID][]Concept{}
		m[prop] = inner
	}
	inner[c.ConceptID()] = append(inner[c.ConceptID()], c)
}

// Merge appends every concept of others into m.
func (m Map) Merge(others ...Map) {
	for _, other := range others {
		for prop, inner := range other {
			for id, list := range inner {
				if len(list) == 0 {
					continue
				}
				dst, ok := m[prop]
				if !ok {
					dst = map[ID][]Concept{}
					m[prop] = dst
				}
				dst[id] = append(dst[id], list...)
			}
		}
	}
}

// Merge creates a new map holding the concepts of all maps in order.
func Merge(maps ...Map) Map {
	out := Map{}
	out.Merge(maps...)
	return out
}

// Unify returns a copy of m with every concept moved under prop.
func (m Map) Unify(prop string) Map {
	out := Map{}
	props := make([]string, 0, len(m))
	for p := range m {
		props = append(props, p)
	}
	sort.Strings(props)
	for _, p := range props {
		for id, list := range m[p] {
			if len(list) == 0 {
				continue
			}
			inner, ok := out[prop]
			if !ok {
				inner = map[ID][]Concept{}
				out[prop] = inner
			}
			inner[id] = append(inner[id], list...)
		}
	}
	return out
}

// Has reports whether any concept is stored under prop.
func (m Map) Has(prop string) bool {
	for _, list := range m[prop] {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

// IsEmpty reports whether m holds no concepts at all.
func (m Map) IsEmpty() bool {
	for p := range m {
		if m.Has(p) {
			return false
		}
	}
	return true
}

// GetAndDelete removes and returns the concepts with the given ID under prop.
func (m Map) GetAndDelete(prop string, id ID) []Concept {
	inner, ok := m[prop]
	if !ok {
		return nil
	}
	list := inner[id]
	delete(inner, id)
	if len(inner) == 0 {
		delete(m, prop)
	}
	return list
}

// Take removes and returns the concepts with the given ID under prop,
// typed as T. Concepts of another Go type are dropped.
func Take[T Concept](m Map, prop string, id ID) []T {
	list := m.GetAndDelete(prop, id)
	out := make([]T, 0, len(list))
	for _, c := range list {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// TakeOne removes the concepts with the given ID under prop and returns the
// first one.
func TakeOne[T Concept](m Map, prop string, id ID) (T, bool) {
	list := Take[T](m, prop, id)
	if len(list) == 0 {
		var zero T
		return zero, false
	}
	return list[0], true
}

// TakeValues removes and returns every value concept under prop, in ID order.
func (m Map) TakeValues(prop string) []Value {
	inner, ok := m[prop]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(inner))
	for id := range inner {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	var out []Value
	for _, id := range ids {
		list := inner[ID(id)]
		keep := list[:0:0]
		for _, c := range list {
			if v, ok := c.(Value); ok {
				out = append(out, v)
			} else {
				keep = append(keep, c)
			}
		}
		if len(keep) == 0 {
			delete(inner, ID(id))
		} else {
			inner[ID(id)] = keep
		}
	}
	if len(inner) == 0 {
		delete(m, prop)
	}
	return out
}

// TakeAll removes and returns the concepts with the given ID under every prop.
func (m Map) TakeAll(id ID) []Concept {
	var out []Concept
	for _, p := range m.sortedProps() {
		out = append(out, m.GetAndDelete(p, id)...)
	}
	return out
}

// All returns the concepts with the given ID under every prop without
// removing them.
func (m Map) All(id ID) []Concept {
	var out []Concept
	for _, p := range m.sortedProps() {
		out = append(out, m[p][id]...)
	}
	return out
}

// AllOf returns the concepts with the given ID under every prop, typed as T.
func AllOf[T Concept](m Map, id ID) []T {
	var out []T
	for _, c := range m.All(id) {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Flatten drops the property level and groups all concepts by ID.
func (m Map) Flatten() map[ID][]Concept {
	out := map[ID][]Concept{}
	for _, p := range m.sortedProps() {
		for id, list := range m[p] {
			out[id] = append(out[id], list...)
		}
	}
	return out
}

func (m Map) sortedProps() []string {
	props := make([]string, 0, len(m))
	for p := range m {
		props = append(props, p)
	}
	sort.Strings(props)
	return props
}
