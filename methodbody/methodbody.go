// Package methodbody decodes the method body header format that precedes a
// method's CIL byte stream (ECMA-335 §II.25.4): the Tiny and Fat header
// shapes, and resolution of a fat body's local variable signature.
package methodbody

import (
	"errors"

	"github.com/MaximumOverflow/clrmeta/metadata"
	"github.com/MaximumOverflow/clrmeta/sig"
)

// Fat header flag bits (ECMA-335 §II.25.4.3).
const (
	FlagMoreSects   = 0x08
	FlagInitLocals  = 0x10
)

var (
	// ErrInvalidHeader is returned when a method body's header byte carries
	// neither the Tiny nor the Fat format discriminant in its low 2 bits.
	ErrInvalidHeader = errors.New("methodbody: invalid header format")
	// ErrNotLocalVarSig is returned when a StandAloneSig row's blob does not
	// begin with the local-variable signature marker (0x07).
	ErrNotLocalVarSig = errors.New("methodbody: blob is not a local variable signature")
)

// Body is a decoded method body: its header-derived metadata plus the raw
// CIL byte stream (decode with cil.DecodeAll).
type Body struct {
	MaxStack   uint16
	InitLocals bool
	MoreSects  bool
	LocalVarSigToken metadata.Token
	Locals     []sig.Type
	Code       []byte
}

// Read decodes a method body starting at the current position of c. th
// supplies the StandAloneSig table and #Blob heap used to decode a fat
// body's local variable signature. th may be nil for tiny bodies and for fat
// bodies whose local signature token is zero; a fat body with a nonzero
// token and a nil th is an error.
func Read(c *metadata.Cursor, th *metadata.TableHeap) (Body, error) {
	start := c.Pos()
	header, err := c.U8()
	if err != nil {
		return Body{}, err
	}

	switch header & 0x3 {
	case 0x2:
		codeSize := uint32(header >> 2)
		code, err := c.Bytes(codeSize)
		if err != nil {
			return Body{}, err
		}
		return Body{MaxStack: 8, Code: code}, nil

	case 0x3:
		if err := c.Seek(start); err != nil {
			return Body{}, err
		}
		flags, err := c.U16()
		if err != nil {
			return Body{}, err
		}
		maxStack, err := c.U16()
		if err != nil {
			return Body{}, err
		}
		codeSize, err := c.U32()
		if err != nil {
			return Body{}, err
		}
		localVarRaw, err := c.U32()
		if err != nil {
			return Body{}, err
		}

		body := Body{
			MaxStack:   maxStack,
			InitLocals: flags&FlagInitLocals != 0,
			MoreSects:  flags&FlagMoreSects != 0,
		}

		if localVarRaw != 0 {
			tok := metadata.Token(localVarRaw)
			body.LocalVarSigToken = tok
			if tok.Kind() != metadata.StandAloneSig {
				return Body{}, errors.New("methodbody: local var signature token is not a StandAloneSig")
			}
			if th == nil {
				return Body{}, errors.New("methodbody: local variable signature present but no table heap provided")
			}
			row, err := th.StandAloneSigRow(tok.RID())
			if err != nil {
				return Body{}, err
			}
			blob, err := th.ResolveBlob(row.Signature)
			if err != nil {
				return Body{}, err
			}
			blobCursor := metadata.NewCursor(blob)
			lvs, err := sig.ReadLocalVarSignature(blobCursor)
			if err != nil {
				return Body{}, err
			}
			body.Locals = lvs.Locals
		}

		code, err := c.Bytes(codeSize)
		if err != nil {
			return Body{}, err
		}
		body.Code = code

		// Extra data sections (exception handler clauses) follow when
		// FlagMoreSects is set; they are not decoded, and only MoreSects
		// records their presence.
		return body, nil

	default:
		return Body{}, ErrInvalidHeader
	}
}
