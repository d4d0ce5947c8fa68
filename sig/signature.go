// Package sig decodes ECMA-335 metadata signature blobs: type signatures
// (§II.23.2.1-23.2.16) and method signatures (§II.23.2.1). Signature blobs
// use their own compressed token encoding for type references, distinct
// from the table heap's coded indices.
package sig

import (
	"errors"

	"github.com/MaximumOverflow/clrmeta/metadata"
)

// TypeTag identifies the shape of one node in a type signature tree
// (ECMA-335 §II.23.1.16, ELEMENT_TYPE_*).
type TypeTag byte

const (
	TagEnd                 TypeTag = 0x00
	TagVoid                TypeTag = 0x01
	TagBool                TypeTag = 0x02
	TagChar                TypeTag = 0x03
	TagInt1                TypeTag = 0x04
	TagUInt1                TypeTag = 0x05
	TagInt2                TypeTag = 0x06
	TagUInt2                TypeTag = 0x07
	TagInt4                TypeTag = 0x08
	TagUInt4                TypeTag = 0x09
	TagInt8                TypeTag = 0x0A
	TagUInt8                TypeTag = 0x0B
	TagFloat32              TypeTag = 0x0C
	TagFloat64              TypeTag = 0x0D
	TagString              TypeTag = 0x0E
	TagPointer              TypeTag = 0x0F // followed by type
	TagByRef                TypeTag = 0x10 // followed by type
	TagValueType            TypeTag = 0x11 // followed by TypeDefOrRefOrSpec
	TagClass                TypeTag = 0x12 // followed by TypeDefOrRefOrSpec
	TagGenericParam         TypeTag = 0x13 // followed by compressed uint
	TagArray                TypeTag = 0x14 // followed by type, rank, sizes, lower bounds
	TagGenericInst          TypeTag = 0x15 // followed by (Class|ValueType), count, N types
	TagTypedByRef           TypeTag = 0x16
	TagIntPtr               TypeTag = 0x18
	TagUIntPtr               TypeTag = 0x19
	TagFnPointer            TypeTag = 0x1B // followed by a method signature
	TagObject               TypeTag = 0x1C
	TagSzArray              TypeTag = 0x1D // followed by type
	TagMethodGenericParam   TypeTag = 0x1E // followed by compressed uint
	TagCModReq              TypeTag = 0x1F // followed by TypeDefOrRefOrSpec, then the modified type
	TagCModOpt              TypeTag = 0x20 // followed by TypeDefOrRefOrSpec, then the modified type
	TagInternal             TypeTag = 0x21
	TagModifier             TypeTag = 0x40 // OR'd with a following element type; not itself decoded here
	TagSentinel             TypeTag = 0x41 // marks the start of the vararg tail in a method signature
	TagPinned               TypeTag = 0x45 // followed by type
	TagCAttrType            TypeTag = 0x50 // custom-attribute-only: an argument of type System.Type
	TagCAttrBoxed           TypeTag = 0x51 // custom-attribute-only: a boxed object
	TagCAttrField           TypeTag = 0x53 // custom-attribute-only: a FIELD
	TagCAttrProperty        TypeTag = 0x54 // custom-attribute-only: a PROPERTY
	TagCAttrEnum            TypeTag = 0x55 // custom-attribute-only: an enum, followed by its type name
)

var ErrUnknownTag = errors.New("sig: unknown type signature tag")

// ArrayShape is the ELEMENT_TYPE_ARRAY tail: a rank plus optional per-
// dimension sizes and lower bounds (ECMA-335 §II.23.2.13).
type ArrayShape struct {
	Rank        uint32
	Sizes       []uint32
	LowerBounds []int32
}

// Type is one decoded node of a type signature tree. Only the fields
// relevant to Tag are populated.
type Type struct {
	Tag TypeTag

	Elem   *Type // Pointer, ByRef, SzArray, Pinned, CModOpt/CModReq's modified type
	Token  metadata.Token // ValueType, Class, CModOpt/CModReq's modifier, CAttrEnum's enum type
	Number uint32         // GenericParam, MethodGenericParam

	Array ArrayShape // Array

	GenericArgs []Type // GenericInst's type arguments
	IsValueType bool    // GenericInst: whether the instantiated type is a value type

	Method *MethodSignature // FnPointer
}

// decodeTypeDefOrRefOrSpec reads a signature blob's compressed encoding of a
// TypeDef/TypeRef/TypeSpec token (ECMA-335 §II.23.2.8): a compressed uint
// whose low 2 bits are a table tag and remaining bits a 1-based row index.
func decodeTypeDefOrRefOrSpec(c *metadata.Cursor) (metadata.Token, error) {
	raw, err := c.CompressedUint()
	if err != nil {
		return 0, err
	}
	tag := raw & 0x3
	rid := raw >> 2
	var kind metadata.TableKind
	switch tag {
	case 0:
		kind = metadata.TypeDef
	case 1:
		kind = metadata.TypeRef
	case 2:
		kind = metadata.TypeSpec
	default:
		return 0, ErrUnknownTag
	}
	return metadata.NewToken(kind, rid), nil
}

// ReadType decodes one type signature node from c.
func ReadType(c *metadata.Cursor) (Type, error) {
	b, err := c.U8()
	if err != nil {
		return Type{}, err
	}
	tag := TypeTag(b)

	switch tag {
	case TagEnd, TagVoid, TagBool, TagChar, TagInt1, TagUInt1, TagInt2, TagUInt2,
		TagInt4, TagUInt4, TagInt8, TagUInt8, TagFloat32, TagFloat64, TagString,
		TagTypedByRef, TagIntPtr, TagUIntPtr, TagObject, TagInternal, TagSentinel,
		TagCAttrType, TagCAttrBoxed, TagCAttrField, TagCAttrProperty:
		return Type{Tag: tag}, nil

	case TagPointer, TagByRef, TagSzArray, TagPinned:
		elem, err := ReadType(c)
		if err != nil {
			return Type{}, err
		}
		return Type{Tag: tag, Elem: &elem}, nil

	case TagValueType, TagClass:
		tok, err := decodeTypeDefOrRefOrSpec(c)
		if err != nil {
			return Type{}, err
		}
		return Type{Tag: tag, Token: tok}, nil

	case TagGenericParam, TagMethodGenericParam:
		n, err := c.CompressedUint()
		if err != nil {
			return Type{}, err
		}
		return Type{Tag: tag, Number: n}, nil

	case TagCModReq, TagCModOpt:
		tok, err := decodeTypeDefOrRefOrSpec(c)
		if err != nil {
			return Type{}, err
		}
		modified, err := ReadType(c)
		if err != nil {
			return Type{}, err
		}
		return Type{Tag: tag, Token: tok, Elem: &modified}, nil

	case TagCAttrEnum:
		tok, err := decodeTypeDefOrRefOrSpec(c)
		if err != nil {
			return Type{}, err
		}
		return Type{Tag: tag, Token: tok}, nil

	case TagArray:
		elem, err := ReadType(c)
		if err != nil {
			return Type{}, err
		}
		rank, err := c.CompressedUint()
		if err != nil {
			return Type{}, err
		}
		numSizes, err := c.CompressedUint()
		if err != nil {
			return Type{}, err
		}
		sizes := make([]uint32, numSizes)
		for i := range sizes {
			if sizes[i], err = c.CompressedUint(); err != nil {
				return Type{}, err
			}
		}
		numBounds, err := c.CompressedUint()
		if err != nil {
			return Type{}, err
		}
		bounds := make([]int32, numBounds)
		for i := range bounds {
			if bounds[i], err = c.CompressedInt(); err != nil {
				return Type{}, err
			}
		}
		return Type{Tag: tag, Elem: &elem, Array: ArrayShape{Rank: rank, Sizes: sizes, LowerBounds: bounds}}, nil

	case TagGenericInst:
		base, err := c.U8()
		if err != nil {
			return Type{}, err
		}
		if TypeTag(base) != TagValueType && TypeTag(base) != TagClass {
			return Type{}, ErrUnknownTag
		}
		tok, err := decodeTypeDefOrRefOrSpec(c)
		if err != nil {
			return Type{}, err
		}
		count, err := c.CompressedUint()
		if err != nil {
			return Type{}, err
		}
		args := make([]Type, count)
		for i := range args {
			if args[i], err = ReadType(c); err != nil {
				return Type{}, err
			}
		}
		return Type{Tag: tag, Token: tok, IsValueType: TypeTag(base) == TagValueType, GenericArgs: args}, nil

	case TagFnPointer:
		ms, err := ReadMethodSignature(c)
		if err != nil {
			return Type{}, err
		}
		return Type{Tag: tag, Method: &ms}, nil

	default:
		return Type{}, ErrUnknownTag
	}
}
