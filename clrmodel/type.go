package clrmodel

import (
	"strconv"

	"github.com/MaximumOverflow/clrmeta/metadata"
	"github.com/MaximumOverflow/clrmeta/methodbody"
	"github.com/MaximumOverflow/clrmeta/sig"
)

// Primitive enumerates the built-in element types a signature can name
// directly, without a TypeDefOrRefOrSpec token (ECMA-335 §II.23.1.16).
type Primitive int

const (
	PrimitiveVoid Primitive = iota
	PrimitiveBool
	PrimitiveChar
	PrimitiveInt8
	PrimitiveUInt8
	PrimitiveInt16
	PrimitiveUInt16
	PrimitiveInt32
	PrimitiveUInt32
	PrimitiveInt64
	PrimitiveUInt64
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitiveString
	PrimitiveIntPtr
	PrimitiveUIntPtr
	PrimitiveObject
	PrimitiveTypedByRef
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveVoid:
		return "void"
	case PrimitiveBool:
		return "bool"
	case PrimitiveChar:
		return "char"
	case PrimitiveInt8:
		return "sbyte"
	case PrimitiveUInt8:
		return "byte"
	case PrimitiveInt16:
		return "short"
	case PrimitiveUInt16:
		return "ushort"
	case PrimitiveInt32:
		return "int"
	case PrimitiveUInt32:
		return "uint"
	case PrimitiveInt64:
		return "long"
	case PrimitiveUInt64:
		return "ulong"
	case PrimitiveFloat32:
		return "float"
	case PrimitiveFloat64:
		return "double"
	case PrimitiveString:
		return "string"
	case PrimitiveIntPtr:
		return "System.IntPtr"
	case PrimitiveUIntPtr:
		return "System.UIntPtr"
	case PrimitiveObject:
		return "object"
	case PrimitiveTypedByRef:
		return "System.TypedReference"
	default:
		return "<unknown primitive>"
	}
}

// TypeKind discriminates the variants of Type (spec.md §9: "a tagged sum
// type with variants {Primitive, Class, Interface, Pointer, ByRef, Array,
// GenericInst, GenericParam}").
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindClass
	KindInterface
	KindPointer
	KindByRef
	KindArray
	KindGenericInst
	KindGenericParam
)

func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindClass:
		return "Class"
	case KindInterface:
		return "Interface"
	case KindPointer:
		return "Pointer"
	case KindByRef:
		return "ByRef"
	case KindArray:
		return "Array"
	case KindGenericInst:
		return "GenericInst"
	case KindGenericParam:
		return "GenericParam"
	default:
		return "<unknown kind>"
	}
}

// ArrayType is the payload of a KindArray Type: an element type plus the
// rectangular-array shape decoded by the sig package.
type ArrayType struct {
	Elem  *Type
	Shape sig.ArrayShape
}

// GenericInst is the payload of a KindGenericInst Type: a generic type
// definition closed over a fixed list of type arguments.
type GenericInst struct {
	Generic     *Type
	Args        []*Type
	IsValueType bool
}

// GenericParam is the payload of a KindGenericParam Type: a reference to
// the Nth generic parameter of the enclosing type or method.
type GenericParam struct {
	Number        uint32
	IsMethodParam bool
}

// Type is one node of the structured type graph: a tagged union over the
// variants named by Kind. Composite variants (Pointer, ByRef, Array,
// GenericInst) are interned per Assembly so that two occurrences of the
// same shape compare pointer-equal (spec.md §4.8, "Composite types ... are
// interned in per-Context hash tables keyed by their components").
type Type struct {
	Kind TypeKind

	Primitive Primitive
	Class     *Class
	Interface *Interface

	Elem *Type // Pointer, ByRef

	Array *ArrayType
	Inst  *GenericInst
	Param *GenericParam

	// Token identifies the TypeDef/TypeRef/TypeSpec this node was decoded
	// from, when one is known; zero for pure composites built only from a
	// signature shape (e.g. a GenericParam).
	Token metadata.Token
}

func (t *Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.String()
	case KindClass:
		return t.Class.String()
	case KindInterface:
		return t.Interface.String()
	case KindPointer:
		return t.Elem.String() + "*"
	case KindByRef:
		return t.Elem.String() + "&"
	case KindArray:
		return t.Array.Elem.String() + "[]"
	case KindGenericInst:
		return t.Inst.Generic.String() + "<...>"
	case KindGenericParam:
		if t.Param.IsMethodParam {
			return "!!" + strconv.FormatUint(uint64(t.Param.Number), 10)
		}
		return "!" + strconv.FormatUint(uint64(t.Param.Number), 10)
	default:
		return "<unknown type>"
	}
}

// Class is a reference type definition: a name, namespace, field list, and
// method list. Allocated as an empty shell during pass 1 of population and
// filled in during pass 2 (spec.md §4.8, §9).
type Class struct {
	Name      string
	Namespace string
	Flags     uint32
	Token     metadata.Token
	Fields    []Field
	Methods   []Method
}

func (c *Class) String() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// Interface is a TypeDef whose flags carry the Interface bit; same shape
// as Class, kept distinct so callers can branch on Type.Kind without
// inspecting flags.
type Interface struct {
	Name      string
	Namespace string
	Flags     uint32
	Token     metadata.Token
	Fields    []Field
	Methods   []Method
}

func (i *Interface) String() string {
	if i.Namespace == "" {
		return i.Name
	}
	return i.Namespace + "." + i.Name
}

// TypeAttributes bits relevant to classifying a TypeDef row (ECMA-335
// §II.23.1.15); this module does not decode the full visibility/layout
// bitfield, only the bit needed to tell Class from Interface apart.
const typeAttributeInterface = 0x00000020

// Constant is a decoded Constant table row (ECMA-335 §II.22.9): the literal
// default value attached to a Field, Param, or Property via the HasConstant
// coded index. ElementType is the ECMA-335 ELEMENT_TYPE tag identifying how
// Value is encoded (e.g. ELEMENT_TYPE_STRING, ELEMENT_TYPE_I4); Value is
// that blob's raw bytes, left undecoded since its shape depends entirely on
// ElementType and callers rarely need more than one or two kinds.
type Constant struct {
	ElementType uint8
	Value       []byte
}

// Field is a decoded Field row attached to its owning Class/Interface.
type Field struct {
	Name    string
	Flags   uint16
	Type    *Type
	Token   metadata.Token
	Default *Constant // nil unless a Constant row targets this field
}

// Method is a decoded MethodDef row: its signature, and its body when the
// row carries a nonzero RVA (abstract/extern methods have none).
type Method struct {
	Name       string
	Flags      uint16
	ImplFlags  uint16
	Token      metadata.Token
	Signature  sig.MethodSignature
	Body       *methodbody.Body
}
