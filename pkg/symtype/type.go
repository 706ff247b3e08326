// Package symtype implements the symbolic type algebra (C1): value objects
// for primitive, object, array, and compound-union types, immutable and
// value-semantic throughout.
package symtype

import "sort"

// Kind tags the variant of a Type.
type Kind int

const (
	Mixed Kind = iota
	Boolean
	Integer
	Float
	String
	Array
	Object
	Self
	Static
	This
	Compound
)

// Type is a symbolic type value. Zero value is Mixed.
type Type struct {
	kind     Kind
	fqsen    string // Object: class FQN, empty if anonymous
	value    *Type  // Array: element type, nil if unknown
	key      *Type  // Array: key type, nil if unknown
	compound []Type // Compound: flattened, deduplicated, len >= 2
}

// MixedType is the unknown type, returned whenever nothing stronger can be
// proven.
var MixedType = Type{kind: Mixed}

var (
	BooleanType = Type{kind: Boolean}
	IntegerType = Type{kind: Integer}
	FloatType   = Type{kind: Float}
	StringType  = Type{kind: String}
	SelfType    = Type{kind: Self}
	StaticType  = Type{kind: Static}
	ThisType    = Type{kind: This}
)

// NewArray builds an Array(value, key) type. Either side may be nil to mean
// "unknown".
func NewArray(value, key *Type) Type {
	t := Type{kind: Array}
	if value != nil {
		v := *value
		t.value = &v
	}
	if key != nil {
		k := *key
		t.key = &k
	}
	return t
}

// NewObject builds an Object type. An empty fqsen means an anonymous class
// instance.
func NewObject(fqsen string) Type {
	return Type{kind: Object, fqsen: fqsen}
}

// NewCompound deduplicates and flattens ts. If exactly one unique type
// remains it is returned directly, never wrapped in a Compound.
func NewCompound(ts ...Type) Type {
	flat := make([]Type, 0, len(ts))
	for _, t := range ts {
		if t.kind == Compound {
			flat = append(flat, t.compound...)
		} else {
			flat = append(flat, t)
		}
	}

	unique := make([]Type, 0, len(flat))
	for _, t := range flat {
		dup := false
		for _, u := range unique {
			if u.Equal(t) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, t)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}
	if len(unique) == 0 {
		return MixedType
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i].sortKey() < unique[j].sortKey() })
	return Type{kind: Compound, compound: unique}
}

// Kind reports the variant tag of t.
func (t Type) Kind() Kind { return t.kind }

// FQSEN returns the class FQN for an Object type and whether one is present.
func (t Type) FQSEN() (string, bool) {
	if t.kind != Object || t.fqsen == "" {
		return "", false
	}
	return t.fqsen, true
}

// ElementType returns the value type of an Array, if known.
func (t Type) ElementType() (Type, bool) {
	if t.kind != Array || t.value == nil {
		return Type{}, false
	}
	return *t.value, true
}

// KeyType returns the key type of an Array, if known.
func (t Type) KeyType() (Type, bool) {
	if t.kind != Array || t.key == nil {
		return Type{}, false
	}
	return *t.key, true
}

// Components returns the member types of a Compound, or a single-element
// slice of t itself otherwise.
func (t Type) Components() []Type {
	if t.kind != Compound {
		return []Type{t}
	}
	out := make([]Type, len(t.compound))
	copy(out, t.compound)
	return out
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case Object:
		return t.fqsen == o.fqsen
	case Array:
		return ptrEqual(t.value, o.value) && ptrEqual(t.key, o.key)
	case Compound:
		if len(t.compound) != len(o.compound) {
			return false
		}
		for i := range t.compound {
			if !t.compound[i].Equal(o.compound[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func ptrEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (t Type) sortKey() string {
	return t.String()
}

// String renders a human-readable form, primarily for tests and logging.
func (t Type) String() string {
	switch t.kind {
	case Mixed:
		return "mixed"
	case Boolean:
		return "bool"
	case Integer:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Self:
		return "self"
	case Static:
		return "static"
	case This:
		return "this"
	case Object:
		if t.fqsen == "" {
			return "object"
		}
		return "object<" + t.fqsen + ">"
	case Array:
		return "array"
	case Compound:
		s := ""
		for i, c := range t.compound {
			if i > 0 {
				s += "|"
			}
			s += c.String()
		}
		return s
	default:
		return "mixed"
	}
}

// FQNFromFQSEN converts the parser's FQSEN convention (FQN prefixed with a
// leading backslash) to a bare FQN by stripping that one leading backslash.
func FQNFromFQSEN(fqsen string) string {
	if len(fqsen) > 0 && fqsen[0] == '\\' {
		return fqsen[1:]
	}
	return fqsen
}

// FQNsFromType returns the object FQNs mentioned by t, recursing into
// compound members. Anonymous objects (empty FQSEN) are omitted.
func FQNsFromType(t Type) []string {
	var out []string
	for _, c := range t.Components() {
		if c.kind == Object && c.fqsen != "" {
			out = append(out, c.fqsen)
		}
	}
	return out
}
