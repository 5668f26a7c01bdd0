// Package ast implements the typed AST named in spec.md §4.4: one Go type
// per expression variant, each constructor performing the type check and
// caching result_type, each Emit lowering the subtree at the compiler's
// current insertion point. Dynamic dispatch is done with Go's ordinary
// interface satisfaction rather than the reference's virtual methods — a
// tagged sum dispatched through a single Emit method per spec.md §9's first
// design note, just expressed as N concrete Go types instead of one
// switch-on-tag type, since that's the idiom Go interfaces already give us.
//
// Every constructor here that can reject its input returns an error instead
// of calling report.Fatalf directly (spec.md §7 explicitly allows "upgrading" the
// error model to one that returns instead of aborts) so that malformed
// programs are testable without killing the test binary; a driver wiring
// the parser to this package is expected to call report.Fatalf on the first
// non-nil error, which reproduces spec.md's fatal-error behavior exactly.
package ast

import (
	"strconv"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/tbhmens/fylang/compiler"
	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/token"
	"github.com/tbhmens/fylang/types"
	"github.com/tbhmens/fylang/value"
)

// Node is the contract every AST expression satisfies: a cached type query
// and a side-effecting lowering step.
type Node interface {
	// Type is this node's result type, computed and cached at construction.
	Type() types.Type

	// Emit lowers this subtree at c's current insertion point and returns
	// the resulting Value. The caller must have c positioned inside a
	// well-formed basic block (top-level-only nodes are the exception; see
	// def.go).
	Emit(c *compiler.Compiler) value.Value
}

// LValue is additionally implemented by nodes that can serve as an
// assignment target or have their address taken directly: Variable, Index,
// and PropAccess. UnaryOp (including `*p`) has no EmitAddress, so a `*p`
// expression can't be assigned to or have its address taken.
type LValue interface {
	Node
	EmitAddress(c *compiler.Compiler) llvalue.Value
}

// -----------------------------------------------------------------------------

// numberSuffixType maps a NUMBER token's (suffix, has-dot) pair to a
// concrete type, per spec.md §4.4's literal table.
func numberSuffixType(suffix byte, hasDot bool) (*types.Number, error) {
	forbidDot := func(name string) error {
		if hasDot {
			return report.Errorf("'%c' (%s) type can't have a '.'", suffix, name)
		}
		return nil
	}

	switch suffix {
	case 'd':
		return types.F64, nil
	case 'f':
		return types.F32, nil
	case 'i':
		return types.I32, forbidDot("int32")
	case 'u':
		return types.U32, forbidDot("uint32")
	case 'l':
		return types.I64, forbidDot("int64")
	case 'b':
		return types.U8, forbidDot("byte")
	default:
		return nil, report.Errorf("invalid number type suffix '%c'", suffix)
	}
}

// NumberLit is a numeric literal (spec.md §4.4 *Number*).
type NumberLit struct {
	text string
	base int
	ty   *types.Number
}

// NewNumberLit type-checks a NUMBER token's payload and builds the literal.
func NewNumberLit(lit token.NumberLit) (*NumberLit, error) {
	ty, err := numberSuffixType(lit.Suffix, lit.HasDot)
	if err != nil {
		return nil, err
	}
	if ty.Floating && lit.Base != 10 {
		return nil, report.Errorf("floating-point numbers with a base that isn't decimal aren't supported")
	}
	return &NumberLit{text: lit.Text, base: lit.Base, ty: ty}, nil
}

func (n *NumberLit) Type() types.Type { return n.ty }

// constInt evaluates an integer literal at construction time, for the few
// call sites (tuple indexing) that require a compile-time-constant index
// rather than an emitted value (spec.md §9).
func (n *NumberLit) constInt() (int64, error) {
	if n.ty.Floating {
		return 0, report.Errorf("expected an integer constant, got a floating-point literal")
	}
	x, err := strconv.ParseInt(n.text, n.base, 64)
	if err != nil {
		return 0, report.Errorf("invalid constant index '%s'", n.text)
	}
	return x, nil
}

func (n *NumberLit) Emit(c *compiler.Compiler) value.Value {
	if n.ty.Floating {
		f, _ := strconv.ParseFloat(n.text, 64)
		return &value.Immediate{Ty: n.ty, V: constant.NewFloat(n.ty.Backend().(*lltypes.FloatType), f)}
	}

	bits := n.ty.Backend().(*lltypes.IntType)
	if n.ty.Signed {
		x, _ := strconv.ParseInt(n.text, n.base, 64)
		return &value.Immediate{Ty: n.ty, V: constant.NewInt(bits, x)}
	}
	x, _ := strconv.ParseUint(n.text, n.base, 64)
	return &value.Immediate{Ty: n.ty, V: constant.NewInt(bits, int64(x))}
}

// -----------------------------------------------------------------------------

// BoolLit is a boolean literal (spec.md §4.4 *Bool*).
type BoolLit struct{ val bool }

func NewBoolLit(val bool) *BoolLit { return &BoolLit{val: val} }

func (b *BoolLit) Type() types.Type { return types.Bool }

func (b *BoolLit) Emit(c *compiler.Compiler) value.Value {
	return &value.Immediate{Ty: types.Bool, V: constant.NewBool(b.val)}
}

// -----------------------------------------------------------------------------

// CharLit is a single-byte char literal (spec.md §4.4 *Char*).
type CharLit struct{ val byte }

func NewCharLit(val byte) *CharLit { return &CharLit{val: val} }

func (c *CharLit) Type() types.Type { return types.U8 }

func (c *CharLit) Emit(*compiler.Compiler) value.Value {
	return &value.Immediate{Ty: types.U8, V: constant.NewInt(lltypes.I8, int64(c.val))}
}

// -----------------------------------------------------------------------------

// StringLit is a string literal; its flavor dictates both its result type
// and how it is emitted (spec.md §4.4 *String*).
type StringLit struct {
	bytes  []byte
	flavor token.StringFlavor
	ty     types.Type
}

// NewStringLit builds a string literal from a STRING token's payload.
// C-style strings must carry a trailing NUL, which the lexer already
// appends (spec.md §4.1).
func NewStringLit(lit token.StringLit) (*StringLit, error) {
	var ty types.Type
	if lit.Flavor == token.CharArray {
		elems := make([]types.Type, len(lit.Bytes))
		for i := range elems {
			elems[i] = types.U8
		}
		ty = types.Tuple{Elems: elems}
	} else {
		if len(lit.Bytes) == 0 || lit.Bytes[len(lit.Bytes)-1] != 0 {
			return nil, report.Errorf("C-style strings must include a trailing NUL byte")
		}
		ty = &types.Pointer{PointsTo: types.U8}
	}
	return &StringLit{bytes: lit.Bytes, flavor: lit.Flavor, ty: ty}, nil
}

func (s *StringLit) Type() types.Type { return s.ty }

func (s *StringLit) Emit(c *compiler.Compiler) value.Value {
	if s.flavor == token.CharArray {
		structTy := s.ty.Backend().(*lltypes.StructType)
		fields := make([]constant.Constant, len(s.bytes))
		for i, b := range s.bytes {
			fields[i] = constant.NewInt(lltypes.I8, int64(b))
		}
		return &value.Immediate{Ty: s.ty, V: constant.NewStruct(structTy, fields...)}
	}

	arr := constant.NewCharArrayFromString(string(s.bytes))
	glob := c.Module.NewGlobalDef(c.NextStringName(), arr)
	glob.Immutable = true

	gep := constant.NewGetElementPtr(arr.Typ, glob, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, 0))
	return &value.Immediate{Ty: s.ty, V: gep}
}

// -----------------------------------------------------------------------------

// Variable references a previously-declared name (spec.md §4.4 *Variable*).
type Variable struct {
	name string
	ty   types.Type
}

// NewVariable resolves name against c's named_value_types table at
// construction time; an unresolved name is a fatal name error (spec.md §5:
// a reference is resolvable only if its declaration has already been
// constructed).
func NewVariable(c *compiler.Compiler, name string) (*Variable, error) {
	ty, ok := c.ValueTypes.Lookup(name)
	if !ok {
		return nil, report.Errorf("variable '%s' doesn't exist", name)
	}
	return &Variable{name: name, ty: ty}, nil
}

func (v *Variable) Type() types.Type { return v.ty }

func (v *Variable) Emit(c *compiler.Compiler) value.Value {
	val, ok := c.Values.Lookup(v.name)
	if !ok {
		report.Fatalf("variable '%s' has no binding at emission time", v.name)
	}
	return val
}

func (v *Variable) EmitAddress(c *compiler.Compiler) llvalue.Value {
	val, ok := c.Values.Lookup(v.name)
	if !ok {
		report.Fatalf("variable '%s' has no binding at emission time", v.name)
	}
	if !val.HasAddress() {
		report.Fatalf("variable '%s' has no address", v.name)
	}
	return val.Address(c.Block)
}
