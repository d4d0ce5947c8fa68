package cil

import (
	"errors"
	"math"

	"github.com/MaximumOverflow/clrmeta/metadata"
)

// OperandKind identifies the shape of operand data following an opcode byte.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInt8             // short branch displacement or ldc.i4.s immediate
	OperandUint8            // short-form arg/local index
	OperandUint16           // compound-form arg/local index
	OperandInt32            // long branch displacement or ldc.i4 immediate
	OperandInt64            // ldc.i8 immediate
	OperandFloat32          // ldc.r4 immediate
	OperandFloat64          // ldc.r8 immediate
	OperandToken            // a 4-byte metadata token (method/field/type/string/signature)
	OperandSwitch           // jump table: a count followed by that many int32 offsets
	OperandSkipFaultCheck   // no. instruction's single flag byte
)

// SkipFaultCheckFlags are the bits carried by the compound "no." instruction,
// identifying which runtime checks the following instruction may skip
// (ECMA-335 §III.2.3).
type SkipFaultCheckFlags uint8

const (
	SkipTypeCheck  SkipFaultCheckFlags = 0x1
	SkipRangeCheck SkipFaultCheckFlags = 0x2
	SkipNullCheck  SkipFaultCheckFlags = 0x4
)

// operandKinds maps every opcode to the shape of its trailing operand.
var operandKinds = map[Code]OperandKind{
	LdargS: OperandUint8, LdargaS: OperandUint8, StargS: OperandUint8,
	LdlocS: OperandUint8, LdlocaS: OperandUint8, StlocS: OperandUint8,
	LdcI4S: OperandInt8,
	LdcI4:  OperandInt32, LdcI8: OperandInt64, LdcR4: OperandFloat32, LdcR8: OperandFloat64,

	Jmp: OperandToken, Call: OperandToken, Calli: OperandToken,

	BrS: OperandInt8, BrfalseS: OperandInt8, BrtrueS: OperandInt8,
	BeqS: OperandInt8, BgeS: OperandInt8, BgtS: OperandInt8, BleS: OperandInt8, BltS: OperandInt8,
	BneUnS: OperandInt8, BgeUnS: OperandInt8, BgtUnS: OperandInt8, BleUnS: OperandInt8, BltUnS: OperandInt8,

	Br: OperandInt32, Brfalse: OperandInt32, Brtrue: OperandInt32,
	Beq: OperandInt32, Bge: OperandInt32, Bgt: OperandInt32, Ble: OperandInt32, Blt: OperandInt32,
	BneUn: OperandInt32, BgeUn: OperandInt32, BgtUn: OperandInt32, BleUn: OperandInt32, BltUn: OperandInt32,

	Switch: OperandSwitch,

	Callvirt: OperandToken, Cpobj: OperandToken, Ldobj: OperandToken, Ldstr: OperandToken,
	Newobj: OperandToken, Castclass: OperandToken, Isinst: OperandToken,
	Unbox: OperandToken, Ldfld: OperandToken, Ldflda: OperandToken, Stfld: OperandToken,
	Ldsfld: OperandToken, Ldsflda: OperandToken, Stsfld: OperandToken, Stobj: OperandToken,
	Box: OperandToken, Newarr: OperandToken, Ldelema: OperandToken,
	Ldelem: OperandToken, Stelem: OperandToken, UnboxAny: OperandToken,
	Refanyval: OperandToken, Mkrefany: OperandToken, Ldtoken: OperandToken,

	Leave: OperandInt32, LeaveS: OperandInt8,

	Ldftn: OperandToken, Ldvirtftn: OperandToken,
	LdargCompound: OperandUint16, LdargaCompound: OperandUint16, StargCompound: OperandUint16,
	LdlocCompound: OperandUint16, LdlocaCompound: OperandUint16, StlocCompound: OperandUint16,
	Initobj: OperandToken, Constrained: OperandToken, NoChk: OperandSkipFaultCheck, Sizeof: OperandToken,
}

// OperandKindOf returns the operand shape for code; OperandNone for opcodes
// that carry no trailing operand bytes.
func OperandKindOf(code Code) OperandKind {
	if kind, ok := operandKinds[code]; ok {
		return kind
	}
	return OperandNone
}

// Instruction is one decoded CIL instruction: its byte offset within the
// method body, its opcode, and whichever operand field OperandKindOf(Code)
// says is populated.
type Instruction struct {
	Offset  uint32
	Code    Code
	Int8    int8
	Uint8   uint8
	Uint16  uint16
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	Token   metadata.Token
	Switch  []int32
	Skip    SkipFaultCheckFlags
}

// ErrUnknownOpcode is returned when a one-byte or compound discriminant does
// not correspond to any defined opcode.
var ErrUnknownOpcode = errors.New("cil: unknown opcode")

// Decode reads one instruction from c, advancing it past the opcode byte(s)
// and operand.
func Decode(c *metadata.Cursor) (Instruction, error) {
	offset := c.Pos()
	b0, err := c.U8()
	if err != nil {
		return Instruction{}, err
	}

	code := Code(b0)
	if code == Prefix {
		b1, err := c.U8()
		if err != nil {
			return Instruction{}, err
		}
		code = Code(compoundBase) + Code(b1)
	}
	if _, known := codeNames[code]; !known {
		return Instruction{}, ErrUnknownOpcode
	}

	inst := Instruction{Offset: offset, Code: code}
	switch OperandKindOf(code) {
	case OperandNone:
	case OperandInt8:
		v, err := c.I8()
		if err != nil {
			return Instruction{}, err
		}
		inst.Int8 = v
	case OperandUint8:
		v, err := c.U8()
		if err != nil {
			return Instruction{}, err
		}
		inst.Uint8 = v
	case OperandUint16:
		v, err := c.U16()
		if err != nil {
			return Instruction{}, err
		}
		inst.Uint16 = v
	case OperandInt32:
		v, err := c.I32()
		if err != nil {
			return Instruction{}, err
		}
		inst.Int32 = v
	case OperandInt64:
		v, err := c.I64()
		if err != nil {
			return Instruction{}, err
		}
		inst.Int64 = v
	case OperandFloat32:
		v, err := c.U32()
		if err != nil {
			return Instruction{}, err
		}
		inst.Float32 = math.Float32frombits(v)
	case OperandFloat64:
		v, err := c.U64()
		if err != nil {
			return Instruction{}, err
		}
		inst.Float64 = math.Float64frombits(v)
	case OperandToken:
		v, err := c.U32()
		if err != nil {
			return Instruction{}, err
		}
		inst.Token = metadata.Token(v)
	case OperandSwitch:
		count, err := c.U32()
		if err != nil {
			return Instruction{}, err
		}
		targets := make([]int32, count)
		for i := range targets {
			v, err := c.I32()
			if err != nil {
				return Instruction{}, err
			}
			targets[i] = v
		}
		inst.Switch = targets
	case OperandSkipFaultCheck:
		v, err := c.U8()
		if err != nil {
			return Instruction{}, err
		}
		inst.Skip = SkipFaultCheckFlags(v)
	}

	return inst, nil
}

// DecodeAll decodes every instruction in a method body's code bytes in
// sequence, returning them in offset order.
func DecodeAll(code []byte) ([]Instruction, error) {
	c := metadata.NewCursor(code)
	var out []Instruction
	for c.Remaining() > 0 {
		inst, err := Decode(c)
		if err != nil {
			return out, err
		}
		out = append(out, inst)
	}
	return out, nil
}
