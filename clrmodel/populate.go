package clrmodel

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/lo"

	"github.com/MaximumOverflow/clrmeta/cil"
	"github.com/MaximumOverflow/clrmeta/metadata"
	"github.com/MaximumOverflow/clrmeta/methodbody"
	"github.com/MaximumOverflow/clrmeta/sig"
)

// RVAResolver is the PE/COFF collaborator this package needs to decode
// method bodies: resolve a relative virtual address to the section bytes
// that contain it and the byte offset of that address within those bytes.
// *peaccess.File satisfies this interface structurally; clrmodel never
// imports peaccess so that table-only callers (resolver name probing) can
// populate an Assembly without linking the PE layer at all.
type RVAResolver interface {
	ResolveRVA(rva uint32) (section []byte, offset uint32, err error)
}

// ErrMissingAssemblyRow is returned when a table heap carries no Assembly
// table row to read a self-identity from.
var ErrMissingAssemblyRow = errors.New("clrmodel: table heap has no Assembly row")

// ReadAssemblyName extracts the defining AssemblyName from table heap th's
// Assembly table (row 1, ECMA-335 §II.22.2) without populating any types.
// This is the cheap probe the resolver uses to index and compare candidate
// files by identity.
func ReadAssemblyName(th *metadata.TableHeap) (AssemblyName, error) {
	if th.RowCount(metadata.Assembly) == 0 {
		return AssemblyName{}, ErrMissingAssemblyRow
	}
	row, err := th.AssemblyRow(1)
	if err != nil {
		return AssemblyName{}, err
	}
	name, culture, publicKey, err := resolveNameParts(th, row.Name, row.Culture, row.PublicKey)
	if err != nil {
		return AssemblyName{}, err
	}
	return AssemblyName{
		Version: AssemblyVersion{
			Major: row.MajorVersion, Minor: row.MinorVersion,
			Build: row.BuildNumber, Revision: row.RevisionNumber,
		},
		Flags:     AssemblyFlags(row.Flags),
		PublicKey: publicKey,
		Name:      name,
		Culture:   culture,
	}, nil
}

func resolveNameParts(th *metadata.TableHeap, nameOff, cultureOff, keyOff uint32) (name, culture string, key []byte, err error) {
	if name, err = th.ResolveString(nameOff); err != nil {
		return
	}
	if culture, err = th.ResolveString(cultureOff); err != nil {
		return
	}
	key, err = th.ResolveBlob(keyOff)
	return
}

// RefNames extracts the AssemblyName of every AssemblyRef row, in table
// order, without resolving any of them. A Context resolves each entry and
// assigns the resulting Assembly.Refs slice in the same order.
func RefNames(th *metadata.TableHeap) ([]AssemblyName, error) {
	count := th.RowCount(metadata.AssemblyRef)
	names := make([]AssemblyName, 0, count)
	for rid := uint32(1); rid <= count; rid++ {
		row, err := th.AssemblyRefRow(rid)
		if err != nil {
			return nil, err
		}
		name, culture, key, err := resolveNameParts(th, row.Name, row.Culture, row.PublicKeyOrToken)
		if err != nil {
			return nil, err
		}
		names = append(names, AssemblyName{
			Version: AssemblyVersion{
				Major: row.MajorVersion, Minor: row.MinorVersion,
				Build: row.BuildNumber, Revision: row.RevisionNumber,
			},
			Flags:     AssemblyFlags(row.Flags),
			PublicKey: key,
			Name:      name,
			Culture:   culture,
		})
	}
	return names, nil
}

// internCache deduplicates composite Type nodes (pointer/byref/array/
// generic instantiation) within one population so that two occurrences of
// the same shape yield the same *Type (spec.md §4.8, testable property 5).
// Keys are xxhash64 digests of a small descriptor built from the node's
// kind, token, and component identities.
type internCache struct {
	byHash map[uint64]*Type
}

func newInternCache() *internCache { return &internCache{byHash: map[uint64]*Type{}} }

func (c *internCache) intern(key []byte, build func() *Type) *Type {
	h := xxhash.Sum64(key)
	if t, ok := c.byHash[h]; ok {
		return t
	}
	t := build()
	c.byHash[h] = t
	return t
}

// PopulateShell decodes table heap th into an Assembly: its own identity,
// its TypeDef-derived types (with fields and methods attached), but with
// Refs left nil. A Context fills Refs in once it has resolved every
// AssemblyRef row, which is what lets the in-progress Assembly be
// registered in the loaded-set before recursing (spec.md §4.9 "Loading").
// acc may be nil; method bodies are then left undecoded (Method.Body nil).
// Each decoded body's code is walked once with cil.DecodeAll, and a body
// whose code does not decode fails population. When th has no Assembly row,
// Name is the zero AssemblyName.
func PopulateShell(th *metadata.TableHeap, acc RVAResolver) (*Assembly, error) {
	name, err := ReadAssemblyName(th)
	if err != nil && !errors.Is(err, ErrMissingAssemblyRow) {
		return nil, err
	}

	types, classes, err := loadTypeShells(th)
	if err != nil {
		return nil, err
	}

	cache := newInternCache()
	if err := attachFields(th, cache, classes); err != nil {
		return nil, err
	}
	if err := attachMethods(th, acc, classes); err != nil {
		return nil, err
	}

	return &Assembly{Name: &name, Types: types}, nil
}

// typeShell pairs a Type node with the TypeDef row it was built from, so
// the later field/method attachment passes can look up each row's
// FieldList/MethodList column without re-decoding the TypeDef table.
type typeShell struct {
	typ *Type
	row metadata.TypeDefRow
}

func loadTypeShells(th *metadata.TableHeap) ([]*Type, []typeShell, error) {
	count := th.RowCount(metadata.TypeDef)
	types := make([]*Type, 0, count)
	shells := make([]typeShell, 0, count)

	for rid := uint32(1); rid <= count; rid++ {
		row, err := th.TypeDefRow(rid)
		if err != nil {
			return nil, nil, err
		}
		name, err := th.ResolveString(row.TypeName)
		if err != nil {
			return nil, nil, err
		}
		namespace, err := th.ResolveString(row.TypeNamespace)
		if err != nil {
			return nil, nil, err
		}
		token := metadata.NewToken(metadata.TypeDef, rid)

		var t *Type
		if row.Flags&typeAttributeInterface != 0 {
			t = &Type{Kind: KindInterface, Token: token, Interface: &Interface{
				Name: name, Namespace: namespace, Flags: row.Flags, Token: token,
			}}
		} else {
			t = &Type{Kind: KindClass, Token: token, Class: &Class{
				Name: name, Namespace: namespace, Flags: row.Flags, Token: token,
			}}
		}
		types = append(types, t)
		shells = append(shells, typeShell{typ: t, row: row})
	}
	return types, shells, nil
}

// fieldRange returns [start,end) index range into the Field table (0-based,
// RID = index+1) owned by the type at shells[i], per spec.md §4.8 step 2:
// each TypeDef's field_list column is the 1-based start of its range, and
// the range ends at the next TypeDef's field_list (or the table's end).
func fieldRange(shells []typeShell, i int, total uint32) (start, end uint32) {
	start = shells[i].row.FieldList.RID()
	if start > 0 {
		start--
	}
	if i+1 < len(shells) {
		end = shells[i+1].row.FieldList.RID()
		if end > 0 {
			end--
		}
		return
	}
	return start, total
}

func methodRange(shells []typeShell, i int, total uint32) (start, end uint32) {
	start = shells[i].row.MethodList.RID()
	if start > 0 {
		start--
	}
	if i+1 < len(shells) {
		end = shells[i+1].row.MethodList.RID()
		if end > 0 {
			end--
		}
		return
	}
	return start, total
}

func attachFields(th *metadata.TableHeap, cache *internCache, shells []typeShell) error {
	constants, err := loadFieldConstants(th)
	if err != nil {
		return err
	}

	total := th.RowCount(metadata.Field)
	for i := range shells {
		start, end := fieldRange(shells, i, total)
		fields := make([]Field, 0, end-start)
		for idx := start; idx < end; idx++ {
			rid := idx + 1
			row, err := th.FieldRow(rid)
			if err != nil {
				return fmt.Errorf("clrmodel: field %d: %w", rid, err)
			}
			name, err := th.ResolveString(row.Name)
			if err != nil {
				return err
			}
			sigBlob, err := th.ResolveBlob(row.Signature)
			if err != nil {
				return err
			}
			fieldType := &Type{Kind: KindPrimitive, Primitive: PrimitiveVoid}
			if len(sigBlob) > 0 {
				fs, err := sig.ReadFieldSignature(metadata.NewCursor(sigBlob))
				if err != nil {
					return fmt.Errorf("clrmodel: field %d signature: %w", rid, err)
				}
				fieldType = resolveSignatureType(cache, fs.Type)
			}
			token := metadata.NewToken(metadata.Field, rid)
			fields = append(fields, Field{
				Name: name, Flags: row.Flags, Type: fieldType,
				Token: token, Default: constants[token],
			})
		}
		setFields(shells[i].typ, fields)
	}
	return nil
}

// loadFieldConstants scans the Constant table once and returns the default
// value attached to each Field row it targets, keyed by the field's token.
// The HasConstant coded index can also target Param and Property rows; those
// are skipped since this model does not carry either.
func loadFieldConstants(th *metadata.TableHeap) (map[metadata.Token]*Constant, error) {
	out := map[metadata.Token]*Constant{}
	count := th.RowCount(metadata.Constant)
	for rid := uint32(1); rid <= count; rid++ {
		row, err := th.ConstantRow(rid)
		if err != nil {
			return nil, fmt.Errorf("clrmodel: constant %d: %w", rid, err)
		}
		if row.Parent.Kind() != metadata.Field {
			continue
		}
		value, err := th.ResolveBlob(row.Value)
		if err != nil {
			return nil, fmt.Errorf("clrmodel: constant %d value: %w", rid, err)
		}
		out[row.Parent] = &Constant{ElementType: row.Type, Value: value}
	}
	return out, nil
}

func setFields(t *Type, fields []Field) {
	switch t.Kind {
	case KindClass:
		t.Class.Fields = fields
	case KindInterface:
		t.Interface.Fields = fields
	}
}

func setMethods(t *Type, methods []Method) {
	switch t.Kind {
	case KindClass:
		t.Class.Methods = methods
	case KindInterface:
		t.Interface.Methods = methods
	}
}

func attachMethods(th *metadata.TableHeap, acc RVAResolver, shells []typeShell) error {
	total := th.RowCount(metadata.MethodDef)
	for i := range shells {
		start, end := methodRange(shells, i, total)
		methods := make([]Method, 0, end-start)
		for idx := start; idx < end; idx++ {
			rid := idx + 1
			row, err := th.MethodDefRow(rid)
			if err != nil {
				return fmt.Errorf("clrmodel: method %d: %w", rid, err)
			}
			name, err := th.ResolveString(row.Name)
			if err != nil {
				return err
			}
			sigBlob, err := th.ResolveBlob(row.Signature)
			if err != nil {
				return err
			}
			var ms sig.MethodSignature
			if len(sigBlob) > 0 {
				if ms, err = sig.ReadMethodSignature(metadata.NewCursor(sigBlob)); err != nil {
					return fmt.Errorf("clrmodel: method %d signature: %w", rid, err)
				}
			}

			m := Method{
				Name: name, Flags: row.Flags, ImplFlags: row.ImplFlags,
				Token: metadata.NewToken(metadata.MethodDef, rid), Signature: ms,
			}

			if row.RVA != 0 && acc != nil {
				section, offset, err := acc.ResolveRVA(row.RVA)
				if err != nil {
					return fmt.Errorf("clrmodel: method %d body: %w", rid, err)
				}
				c := metadata.NewCursor(section)
				if err := c.Seek(offset); err != nil {
					return fmt.Errorf("clrmodel: method %d body: %w", rid, err)
				}
				body, err := methodbody.Read(c, th)
				if err != nil {
					return fmt.Errorf("clrmodel: method %d body: %w", rid, err)
				}
				if _, err := cil.DecodeAll(body.Code); err != nil {
					return fmt.Errorf("clrmodel: method %d code: %w", rid, err)
				}
				m.Body = &body
			}

			methods = append(methods, m)
		}
		setMethods(shells[i].typ, methods)
	}
	return nil
}

// primitiveTypes holds one canonical *Type per Primitive value, built once
// at package init, so that every occurrence of e.g. "int" in a signature
// resolves to the same pointer — composites built on top of a primitive
// element (T* , T[]) then intern correctly keyed on that stable address.
var primitiveTypes = func() [PrimitiveTypedByRef + 1]*Type {
	var arr [PrimitiveTypedByRef + 1]*Type
	for p := range arr {
		arr[p] = &Type{Kind: KindPrimitive, Primitive: Primitive(p)}
	}
	return arr
}()

// resolveSignatureType converts one sig.Type node (the blob-level
// signature tree) into the structured Type graph, interning composite
// shapes. Class/Interface-valued nodes (ValueType/Class tags) are left as
// a bare token reference: binding them to an actual *Class requires
// cross-assembly resolution, performed by a Context once every referenced
// assembly is loaded (spec.md §4.8 step 4) — this module only builds the
// local shape.
func resolveSignatureType(cache *internCache, t sig.Type) *Type {
	switch t.Tag {
	case sig.TagVoid:
		return primitiveTypes[PrimitiveVoid]
	case sig.TagBool:
		return primitiveTypes[PrimitiveBool]
	case sig.TagChar:
		return primitiveTypes[PrimitiveChar]
	case sig.TagInt1:
		return primitiveTypes[PrimitiveInt8]
	case sig.TagUInt1:
		return primitiveTypes[PrimitiveUInt8]
	case sig.TagInt2:
		return primitiveTypes[PrimitiveInt16]
	case sig.TagUInt2:
		return primitiveTypes[PrimitiveUInt16]
	case sig.TagInt4:
		return primitiveTypes[PrimitiveInt32]
	case sig.TagUInt4:
		return primitiveTypes[PrimitiveUInt32]
	case sig.TagInt8:
		return primitiveTypes[PrimitiveInt64]
	case sig.TagUInt8:
		return primitiveTypes[PrimitiveUInt64]
	case sig.TagFloat32:
		return primitiveTypes[PrimitiveFloat32]
	case sig.TagFloat64:
		return primitiveTypes[PrimitiveFloat64]
	case sig.TagString:
		return primitiveTypes[PrimitiveString]
	case sig.TagIntPtr:
		return primitiveTypes[PrimitiveIntPtr]
	case sig.TagUIntPtr:
		return primitiveTypes[PrimitiveUIntPtr]
	case sig.TagObject:
		return primitiveTypes[PrimitiveObject]
	case sig.TagTypedByRef:
		return primitiveTypes[PrimitiveTypedByRef]

	case sig.TagValueType, sig.TagClass:
		key := []byte(fmt.Sprintf("classref:%v", t.Token))
		return cache.intern(key, func() *Type { return &Type{Kind: KindClass, Token: t.Token} })

	case sig.TagPointer:
		elem := resolveSignatureType(cache, *t.Elem)
		key := []byte(fmt.Sprintf("ptr:%p", elem))
		return cache.intern(key, func() *Type { return &Type{Kind: KindPointer, Elem: elem} })

	case sig.TagByRef:
		elem := resolveSignatureType(cache, *t.Elem)
		key := []byte(fmt.Sprintf("byref:%p", elem))
		return cache.intern(key, func() *Type { return &Type{Kind: KindByRef, Elem: elem} })

	case sig.TagSzArray:
		elem := resolveSignatureType(cache, *t.Elem)
		key := []byte(fmt.Sprintf("szarray:%p", elem))
		return cache.intern(key, func() *Type {
			return &Type{Kind: KindArray, Array: &ArrayType{Elem: elem, Shape: sig.ArrayShape{Rank: 1}}}
		})

	case sig.TagArray:
		elem := resolveSignatureType(cache, *t.Elem)
		key := []byte(fmt.Sprintf("array:%p:%d:%v:%v", elem, t.Array.Rank, t.Array.Sizes, t.Array.LowerBounds))
		return cache.intern(key, func() *Type {
			return &Type{Kind: KindArray, Array: &ArrayType{Elem: elem, Shape: t.Array}}
		})

	case sig.TagGenericParam:
		return &Type{Kind: KindGenericParam, Param: &GenericParam{Number: t.Number}}
	case sig.TagMethodGenericParam:
		return &Type{Kind: KindGenericParam, Param: &GenericParam{Number: t.Number, IsMethodParam: true}}

	case sig.TagGenericInst:
		args := lo.Map(t.GenericArgs, func(a sig.Type, _ int) *Type { return resolveSignatureType(cache, a) })
		generic := cache.intern([]byte(fmt.Sprintf("classref:%v", t.Token)), func() *Type {
			return &Type{Kind: KindClass, Token: t.Token}
		})
		key := []byte(fmt.Sprintf("inst:%v:%v", t.Token, args))
		return cache.intern(key, func() *Type {
			return &Type{Kind: KindGenericInst, Inst: &GenericInst{Generic: generic, Args: args, IsValueType: t.IsValueType}}
		})

	case sig.TagCModOpt, sig.TagCModReq:
		// A custom modifier wraps the modified type without changing its
		// observable shape for this model; the modifier token itself is
		// discarded (spec.md §4.7 treats CModReq identically to CModOpt).
		return resolveSignatureType(cache, *t.Elem)

	case sig.TagPinned:
		return resolveSignatureType(cache, *t.Elem)

	default:
		return &Type{Kind: KindPrimitive, Primitive: PrimitiveObject}
	}
}
