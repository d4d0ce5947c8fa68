package sig

import "github.com/MaximumOverflow/clrmeta/metadata"

// CallingConvention is a method or field signature's leading byte
// (ECMA-335 §II.23.2.1-23.2.3). The low nibble selects the base calling
// convention (or FIELD/LOCAL_SIG/PROPERTY/GENERICINST for non-method
// signature kinds); the high nibble carries GENERIC/HASTHIS/EXPLICITTHIS.
type CallingConvention byte

const (
	ConvDefault    CallingConvention = 0x0
	ConvC          CallingConvention = 0x1
	ConvStdCall    CallingConvention = 0x2
	ConvThisCall   CallingConvention = 0x3
	ConvFastCall   CallingConvention = 0x4
	ConvVarArg     CallingConvention = 0x5
	ConvField      CallingConvention = 0x6
	ConvLocalSig   CallingConvention = 0x7
	ConvProperty   CallingConvention = 0x8
	ConvUnmanaged  CallingConvention = 0x9
	ConvGenericInst CallingConvention = 0xA

	FlagGeneric      CallingConvention = 0x10
	FlagHasThis      CallingConvention = 0x20
	FlagExplicitThis CallingConvention = 0x40
)

const baseConventionMask = 0x0F

// Base returns the calling convention with the GENERIC/HASTHIS/EXPLICITTHIS
// flag bits masked off.
func (c CallingConvention) Base() CallingConvention { return c & baseConventionMask }

// HasThis reports whether the signature carries an implicit 'this' parameter.
func (c CallingConvention) HasThis() bool { return c&FlagHasThis != 0 }

// ExplicitThis reports whether 'this' is the first explicit parameter type.
func (c CallingConvention) ExplicitThis() bool { return c&FlagExplicitThis != 0 }

// IsGeneric reports whether the signature declares generic parameters.
func (c CallingConvention) IsGeneric() bool { return c&FlagGeneric != 0 }

// MethodSignature is a decoded method (or method reference) signature
// (ECMA-335 §II.23.2.1): a calling convention, an optional generic arity,
// a return type, and a sequence of parameter types.
type MethodSignature struct {
	Convention     CallingConvention
	GenericArity   uint32
	ReturnType     Type
	ParameterTypes []Type
	// SentinelIndex is the index within ParameterTypes where a vararg call
	// site's fixed arguments end, or -1 if the signature carries no
	// TagSentinel marker.
	SentinelIndex int
}

// ReadMethodSignature decodes a full method signature blob.
func ReadMethodSignature(c *metadata.Cursor) (MethodSignature, error) {
	b, err := c.U8()
	if err != nil {
		return MethodSignature{}, err
	}
	conv := CallingConvention(b)

	var arity uint32
	if conv.IsGeneric() {
		if arity, err = c.CompressedUint(); err != nil {
			return MethodSignature{}, err
		}
	}

	paramCount, err := c.CompressedUint()
	if err != nil {
		return MethodSignature{}, err
	}

	returnType, err := ReadType(c)
	if err != nil {
		return MethodSignature{}, err
	}

	params := make([]Type, 0, paramCount)
	sentinel := -1
	// The sentinel marker is not counted in paramCount, so loop on the
	// number of types actually read.
	for uint32(len(params)) < paramCount {
		start := c.Pos()
		b, err := c.U8()
		if err != nil {
			return MethodSignature{}, err
		}
		if TypeTag(b) == TagSentinel {
			sentinel = len(params)
			continue
		}
		if err := c.Seek(start); err != nil {
			return MethodSignature{}, err
		}
		pt, err := ReadType(c)
		if err != nil {
			return MethodSignature{}, err
		}
		params = append(params, pt)
	}

	return MethodSignature{
		Convention:     conv,
		GenericArity:   arity,
		ReturnType:     returnType,
		ParameterTypes: params,
		SentinelIndex:  sentinel,
	}, nil
}

// FieldSignature is a decoded field signature (ECMA-335 §II.23.2.4): a
// fixed FIELD calling-convention byte followed by a single type.
type FieldSignature struct {
	Type Type
}

// ReadFieldSignature decodes a field signature blob.
func ReadFieldSignature(c *metadata.Cursor) (FieldSignature, error) {
	b, err := c.U8()
	if err != nil {
		return FieldSignature{}, err
	}
	if CallingConvention(b).Base() != ConvField {
		return FieldSignature{}, ErrUnknownTag
	}
	t, err := ReadType(c)
	if err != nil {
		return FieldSignature{}, err
	}
	return FieldSignature{Type: t}, nil
}

// LocalVarSignature is a decoded local-variable signature blob
// (ECMA-335 §II.23.2.6), referenced from a StandAloneSig row and consumed
// by a fat method body header.
type LocalVarSignature struct {
	Locals []Type
}

const localSigMarker = 0x07

// ReadLocalVarSignature decodes a local-variable signature blob.
func ReadLocalVarSignature(c *metadata.Cursor) (LocalVarSignature, error) {
	b, err := c.U8()
	if err != nil {
		return LocalVarSignature{}, err
	}
	if b != localSigMarker {
		return LocalVarSignature{}, ErrUnknownTag
	}
	count, err := c.CompressedUint()
	if err != nil {
		return LocalVarSignature{}, err
	}
	locals := make([]Type, count)
	for i := range locals {
		if locals[i], err = ReadType(c); err != nil {
			return LocalVarSignature{}, err
		}
	}
	return LocalVarSignature{Locals: locals}, nil
}
