package concept

import (
	"encoding/json"
	"strconv"
)

// tagged encodes v and injects the concept discriminator as first field.
func tagged(id ID, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return body, nil
	}
	prefix := `{"conceptId":` + strconv.Quote(string(id))
	if len(body) == 2 {
		return []byte(prefix + "}"), nil
	}
	out := make([]byte, 0, len(prefix)+len(body))
	out = append(out, prefix...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}

func (t TypePrimitive) MarshalJSON() ([]byte, error) {
	type plain TypePrimitive
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeDeclared) MarshalJSON() ([]byte, error) {
	type plain TypeDeclared
	if t.TypeArguments == nil {
		t.TypeArguments = []Type{}
	}
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeUnion) MarshalJSON() ([]byte, error) {
	type plain TypeUnion
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeIntersection) MarshalJSON() ([]byte, error) {
	type plain TypeIntersection
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeObject) MarshalJSON() ([]byte, error) {
	type plain TypeObject
	if t.Members == nil {
		t.Members = []TypeObjectMember{}
	}
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeFunction) MarshalJSON() ([]byte, error) {
	type plain TypeFunction
	if t.Parameters == nil {
		t.Parameters = []TypeFunctionParameter{}
	}
	if t.TypeParameters == nil {
		t.TypeParameters = []TypeParameterDeclaration{}
	}
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeParameterReference) MarshalJSON() ([]byte, error) {
	type plain TypeParameterReference
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeLiteral) MarshalJSON() ([]byte, error) {
	type plain TypeLiteral
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeTuple) MarshalJSON() ([]byte, error) {
	type plain TypeTuple
	return tagged(t.ConceptID(), plain(t))
}

func (t TypeNotIdentified) MarshalJSON() ([]byte, error) {
	type plain TypeNotIdentified
	return tagged(t.ConceptID(), plain(t))
}

func (v ValueNull) MarshalJSON() ([]byte, error) {
	type plain ValueNull
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueLiteral) MarshalJSON() ([]byte, error) {
	type plain ValueLiteral
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueDeclared) MarshalJSON() ([]byte, error) {
	type plain ValueDeclared
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueMember) MarshalJSON() ([]byte, error) {
	type plain ValueMember
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueObject) MarshalJSON() ([]byte, error) {
	type plain ValueObject
	if v.Members == nil {
		v.Members = map[string]Value{}
	}
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueArray) MarshalJSON() ([]byte, error) {
	type plain ValueArray
	if v.Items == nil {
		v.Items = []Value{}
	}
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueCall) MarshalJSON() ([]byte, error) {
	type plain ValueCall
	if v.Arguments == nil {
		v.Arguments = []Value{}
	}
	if v.TypeArguments == nil {
		v.TypeArguments = []Type{}
	}
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueFunction) MarshalJSON() ([]byte, error) {
	type plain ValueFunction
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueClass) MarshalJSON() ([]byte, error) {
	type plain ValueClass
	return tagged(v.ConceptID(), plain(v))
}

func (v ValueComplex) MarshalJSON() ([]byte, error) {
	type plain ValueComplex
	return tagged(v.ConceptID(), plain(v))
}

// Document is the serialized form of a project's concepts: every concept ID
// maps to the list of its instances. encoding/json writes the keys sorted.
type Document map[ID][]Concept

// NewDocument flattens m into a document, dropping empty groups.
func NewDocument(m Map) Document {
	doc := Document{}
	for id, list := range m.Flatten() {
		if len(list) > 0 {
			doc[id] = list
		}
	}
	return doc
}
