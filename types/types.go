// Package types implements fylang's tagged type system (spec.md §4.2): a
// closed set of Type variants with structural equality, a canonical
// printable form (used both for diagnostics and for method-name mangling),
// and a deterministic mapping onto the backend's type universe.
package types

import (
	"strconv"
	"strings"

	lltypes "github.com/llir/llvm/ir/types"
)

// Type is the tagged variant described by spec.md §3. Every concrete Type
// is comparable only structurally — Struct names are excluded from that
// comparison (spec.md's invariant: "structural equality ignores
// Struct.name").
type Type interface {
	// Equal reports whether two types are structurally identical.
	Equal(Type) bool
	// String renders the canonical, stable printable form.
	String() string
	// Backend maps this type onto the IR backend's type universe.
	Backend() lltypes.Type
}

// -----------------------------------------------------------------------------

// Number is an integer or floating-point type of a given bit width and
// signedness. Number(1, false, false) is fylang's boolean type.
type Number struct {
	Bits     int
	Floating bool
	Signed   bool
}

func (n *Number) Equal(other Type) bool {
	o, ok := other.(*Number)
	return ok && n.Bits == o.Bits && n.Floating == o.Floating && n.Signed == o.Signed
}

func (n *Number) String() string {
	switch {
	case n.Bits == 1:
		return "bool"
	case n.Floating:
		return "f" + strconv.Itoa(n.Bits)
	case n.Signed:
		return "i" + strconv.Itoa(n.Bits)
	default:
		return "u" + strconv.Itoa(n.Bits)
	}
}

func (n *Number) Backend() lltypes.Type {
	if n.Floating {
		switch n.Bits {
		case 32:
			return lltypes.Float
		case 64:
			return lltypes.Double
		}
	}
	switch n.Bits {
	case 1:
		return lltypes.I1
	case 8:
		return lltypes.I8
	case 16:
		return lltypes.I16
	case 32:
		return lltypes.I32
	case 64:
		return lltypes.I64
	}
	return lltypes.NewInt(uint64(n.Bits))
}

// IsBool reports whether n is fylang's Number(1, false, false) boolean type.
func (n *Number) IsBool() bool { return n.Bits == 1 && !n.Floating && !n.Signed }

// Well-known numeric types, matching spec.md §4.4's suffix table.
var (
	Bool = &Number{Bits: 1, Floating: false, Signed: false}
	I8   = &Number{Bits: 8, Floating: false, Signed: true}
	I16  = &Number{Bits: 16, Floating: false, Signed: true}
	I32  = &Number{Bits: 32, Floating: false, Signed: true}
	I64  = &Number{Bits: 64, Floating: false, Signed: true}
	U8   = &Number{Bits: 8, Floating: false, Signed: false}
	U16  = &Number{Bits: 16, Floating: false, Signed: false}
	U32  = &Number{Bits: 32, Floating: false, Signed: false}
	U64  = &Number{Bits: 64, Floating: false, Signed: false}
	F32  = &Number{Bits: 32, Floating: true, Signed: true}
	F64  = &Number{Bits: 64, Floating: true, Signed: true}
)

// -----------------------------------------------------------------------------

// Pointer is a typed pointer to PointsTo.
type Pointer struct {
	PointsTo Type
}

func (p *Pointer) Equal(other Type) bool {
	o, ok := other.(*Pointer)
	return ok && p.PointsTo.Equal(o.PointsTo)
}

func (p *Pointer) String() string { return "*" + p.PointsTo.String() }

func (p *Pointer) Backend() lltypes.Type {
	return lltypes.NewPointer(p.PointsTo.Backend())
}

// -----------------------------------------------------------------------------

// Tuple is a fixed-size, possibly heterogeneous aggregate.
type Tuple struct {
	Elems []Type
}

func (t Tuple) Equal(other Type) bool {
	o, ok := other.(Tuple)
	if !ok || len(t.Elems) != len(o.Elems) {
		return false
	}
	for i, e := range t.Elems {
		if !e.Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range t.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (t Tuple) Backend() lltypes.Type {
	fields := make([]lltypes.Type, len(t.Elems))
	for i, e := range t.Elems {
		fields[i] = e.Backend()
	}
	return lltypes.NewStruct(fields...)
}

// -----------------------------------------------------------------------------

// Array is a fixed-size homogeneous aggregate.
type Array struct {
	Elem  Type
	Count uint32
}

func (a *Array) Equal(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Count == o.Count && a.Elem.Equal(o.Elem)
}

func (a *Array) String() string {
	return a.Elem.String() + "[" + strconv.FormatUint(uint64(a.Count), 10) + "]"
}

func (a *Array) Backend() lltypes.Type {
	return lltypes.NewArray(uint64(a.Count), a.Elem.Backend())
}

// -----------------------------------------------------------------------------

// Field is a single named field of a Struct, in declaration order.
type Field struct {
	Name string
	Type Type
}

// Struct is a named record type. Per spec.md's invariant, Name is excluded
// from structural equality — only the ordered field list matters.
type Struct struct {
	Name   string
	Fields []Field
}

func (s *Struct) Equal(other Type) bool {
	o, ok := other.(*Struct)
	if !ok || len(s.Fields) != len(o.Fields) {
		return false
	}
	for i, f := range s.Fields {
		of := o.Fields[i]
		if f.Name != of.Name || !f.Type.Equal(of.Type) {
			return false
		}
	}
	return true
}

func (s *Struct) String() string { return s.Name }

func (s *Struct) Backend() lltypes.Type {
	fields := make([]lltypes.Type, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.Type.Backend()
	}
	return lltypes.NewStruct(fields...)
}

// FieldIndex finds name by linear search over Fields, per spec.md §4.2. The
// second return is false if no such field exists.
func (s *Struct) FieldIndex(name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------

// Function is a callable signature.
type Function struct {
	Return  Type
	Params  []Type
	Vararg  bool
}

func (f *Function) Equal(other Type) bool {
	o, ok := other.(*Function)
	if !ok || f.Vararg != o.Vararg || len(f.Params) != len(o.Params) {
		return false
	}
	if !f.Return.Equal(o.Return) {
		return false
	}
	for i, p := range f.Params {
		if !p.Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	if f.Vararg {
		sb.WriteString(", ...")
	}
	sb.WriteString(") -> ")
	sb.WriteString(f.Return.String())
	return sb.String()
}

func (f *Function) Backend() lltypes.Type {
	params := make([]lltypes.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Backend()
	}
	return lltypes.NewFunc(f.Return.Backend(), params...)
}

// -----------------------------------------------------------------------------

// Null is the bottom type: castable to any pointer or numeric type.
type Null struct{}

func (Null) Equal(other Type) bool { _, ok := other.(Null); return ok }
func (Null) String() string        { return "null" }
func (Null) Backend() lltypes.Type { return lltypes.Void }
