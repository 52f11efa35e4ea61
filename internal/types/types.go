// Package types describes the static types of Wend values. Types are
// structural: two descriptors are the same type when they have the same
// shape, regardless of identity.
package types

import "fmt"

type Kind uint8

const (
	KindInvalid Kind = iota
	KindNum
	KindString
	KindBoolean
	KindList
	KindSet
	KindDict
	// KindVoid is the result of calling a function declared without a
	// return type. It cannot be written in source.
	KindVoid
	// KindUnknown is the element type of an empty collection literal.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "num"
	case KindString:
		return "string"
	case KindBoolean:
		return "bool"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindDict:
		return "dict"
	case KindVoid:
		return "void"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type Type interface {
	Kind() Kind
	String() string
	typ()
}

type basic struct {
	kind Kind
}

func (b *basic) Kind() Kind {
	return b.kind
}

func (b *basic) String() string {
	return b.kind.String()
}

func (*basic) typ() {}

var (
	Num     Type = &basic{kind: KindNum}
	String  Type = &basic{kind: KindString}
	Boolean Type = &basic{kind: KindBoolean}
	Void    Type = &basic{kind: KindVoid}
	Unknown Type = &basic{kind: KindUnknown}
)

type List struct {
	Elem Type
}

func NewList(elem Type) *List {
	return &List{Elem: elem}
}

func (*List) Kind() Kind {
	return KindList
}

func (l *List) String() string {
	return fmt.Sprintf("list<%s>", l.Elem)
}

func (*List) typ() {}

type Set struct {
	Elem Type
}

func NewSet(elem Type) *Set {
	return &Set{Elem: elem}
}

func (*Set) Kind() Kind {
	return KindSet
}

func (s *Set) String() string {
	return fmt.Sprintf("set<%s>", s.Elem)
}

func (*Set) typ() {}

type Dict struct {
	Key   Type
	Value Type
}

func NewDict(key Type, value Type) *Dict {
	return &Dict{Key: key, Value: value}
}

func (*Dict) Kind() Kind {
	return KindDict
}

func (d *Dict) String() string {
	return fmt.Sprintf("dict<%s, %s>", d.Key, d.Value)
}

func (*Dict) typ() {}

// Identical reports whether a and b have the same shape. A nil type is only
// identical to another nil type.
func Identical(a Type, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case *List:
		return Identical(at.Elem, b.(*List).Elem)
	case *Set:
		return Identical(at.Elem, b.(*Set).Elem)
	case *Dict:
		bt := b.(*Dict)
		return Identical(at.Key, bt.Key) && Identical(at.Value, bt.Value)
	default:
		return true
	}
}

// AssignableTo reports whether a value of type value may be stored where
// target is expected. It is Identical except that Unknown on the value side
// matches any type, which lets empty literals initialise typed collections.
func AssignableTo(value Type, target Type) bool {
	if value == nil || target == nil {
		return false
	}
	if value.Kind() == KindUnknown {
		return true
	}
	if value.Kind() != target.Kind() {
		return false
	}
	switch vt := value.(type) {
	case *List:
		return AssignableTo(vt.Elem, target.(*List).Elem)
	case *Set:
		return AssignableTo(vt.Elem, target.(*Set).Elem)
	case *Dict:
		tt := target.(*Dict)
		return AssignableTo(vt.Key, tt.Key) && AssignableTo(vt.Value, tt.Value)
	default:
		return true
	}
}

// Unify returns the more specific of two types that are assignable to each
// other, and false when neither is assignable to the other. It is used to
// find the element type of collection literals.
func Unify(a Type, b Type) (Type, bool) {
	switch {
	case AssignableTo(a, b) && !containsUnknown(b):
		return b, true
	case AssignableTo(b, a):
		return a, true
	case AssignableTo(a, b):
		return b, true
	default:
		return nil, false
	}
}

func containsUnknown(t Type) bool {
	switch tt := t.(type) {
	case *List:
		return containsUnknown(tt.Elem)
	case *Set:
		return containsUnknown(tt.Elem)
	case *Dict:
		return containsUnknown(tt.Key) || containsUnknown(tt.Value)
	default:
		return t != nil && t.Kind() == KindUnknown
	}
}

// IsCollection reports whether t is a list, set, or dict.
func IsCollection(t Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case KindList, KindSet, KindDict:
		return true
	default:
		return false
	}
}
