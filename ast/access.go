package ast

import (
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/tbhmens/fylang/compiler"
	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/types"
	"github.com/tbhmens/fylang/value"
)

// Call applies a callee of Function type (or a pointer to one) to a list of
// arguments (spec.md §4.4 *Call*).
type Call struct {
	callee Node
	fnT    *types.Function
	args   []Node
	ty     types.Type
}

// NewCall type-checks callee against args, per original_source/src/asts.cpp's
// CallExprAST: the callee's type must be a Function, or a Pointer to one;
// arg count must match arity (at least arity for vararg).
func NewCall(callee Node, args []Node) (*Call, error) {
	fnT, ok := callee.Type().(*types.Function)
	if !ok {
		if p, isPtr := callee.Type().(*types.Pointer); isPtr {
			fnT, ok = p.PointsTo.(*types.Function)
		}
		if !ok {
			return nil, report.Errorf("'%s' isn't callable", callee.Type())
		}
	}

	if fnT.Vararg {
		if len(args) < len(fnT.Params) {
			return nil, report.Errorf("incorrect number of arguments; expected at least %d, got %d", len(fnT.Params), len(args))
		}
	} else if len(args) != len(fnT.Params) {
		return nil, report.Errorf("incorrect number of arguments; expected %d, got %d", len(fnT.Params), len(args))
	}

	return &Call{callee: callee, fnT: fnT, args: args, ty: fnT.Return}, nil
}

func (c *Call) Type() types.Type { return c.ty }

func (c *Call) Emit(comp *compiler.Compiler) value.Value {
	fn := c.callee.Emit(comp).Load(comp.Block)
	argVs := make([]llvalue.Value, len(c.args))
	for i, arg := range c.args {
		av := arg.Emit(comp)
		if i < len(c.fnT.Params) {
			av = value.CastTo(av, c.fnT.Params[i])
		}
		argVs[i] = av.Load(comp.Block)
	}
	call := comp.Block.NewCall(fn, argVs...)
	return &value.Immediate{Ty: c.ty, V: call}
}

// -----------------------------------------------------------------------------

// Index is `a[i]` over a pointer or a tuple (spec.md §4.4 *Index*).
type Index struct {
	base  Node
	index Node
	ty    types.Type
}

// NewIndex type-checks base[index]. Tuple indexing additionally requires
// index to be a constant NumberLit, since a tuple's elements may differ in
// type and thus size — the "apparent bug" flagged by spec.md §9 is exactly
// this case left unchecked.
func NewIndex(base, index Node) (*Index, error) {
	switch bt := base.Type().(type) {
	case *types.Pointer:
		return &Index{base: base, index: index, ty: bt.PointsTo}, nil
	case types.Tuple:
		lit, ok := index.(*NumberLit)
		if !ok {
			return nil, report.Errorf("tuple index must be a compile-time constant")
		}
		i, err := lit.constInt()
		if err != nil {
			return nil, err
		}
		if i < 0 || int(i) >= len(bt.Elems) {
			return nil, report.Errorf("tuple index %d out of range for %s", i, bt)
		}
		return &Index{base: base, index: index, ty: bt.Elems[i]}, nil
	default:
		return nil, report.Errorf("can't index into non-pointer, non-tuple type %s", base.Type())
	}
}

func (ix *Index) Type() types.Type { return ix.ty }

func (ix *Index) EmitAddress(c *compiler.Compiler) llvalue.Value {
	switch bt := ix.base.Type().(type) {
	case *types.Pointer:
		basePtr := ix.base.Emit(c).Load(c.Block)
		idx := ix.index.Emit(c).Load(c.Block)
		return c.Block.NewGetElementPtr(bt.PointsTo.Backend(), basePtr, idx)
	case types.Tuple:
		lv, ok := ix.base.(LValue)
		if !ok {
			report.Fatalf("tuple %s has no address to index into", bt)
		}
		basePtr := lv.EmitAddress(c)
		i, _ := ix.index.(*NumberLit).constInt()
		return c.Block.NewGetElementPtr(bt.Backend(), basePtr, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, i))
	}
	report.Fatalf("unreachable index emission")
	return nil
}

func (ix *Index) Emit(c *compiler.Compiler) value.Value {
	if _, ok := ix.base.Type().(*types.Pointer); ok {
		addr := ix.EmitAddress(c)
		return &value.Loaded{Ty: ix.ty, Ptr: addr}
	}
	// Tuple: if the base has an address, index via GEP; otherwise (a bare
	// immediate tuple constant) extract the element directly.
	if _, ok := ix.base.(LValue); ok {
		addr := ix.EmitAddress(c)
		return &value.Loaded{Ty: ix.ty, Ptr: addr}
	}
	i, _ := ix.index.(*NumberLit).constInt()
	tupVal := ix.base.Emit(c).Load(c.Block)
	elem := c.Block.NewExtractValue(tupVal, uint64(i))
	return &value.Immediate{Ty: ix.ty, V: elem}
}

// -----------------------------------------------------------------------------

// PropAccess is `s.field` where s is a pointer to a struct (spec.md §4.4
// *PropAccess*).
type PropAccess struct {
	source Node
	srcT   *types.Struct
	index  int
	ty     types.Type
}

// NewPropAccess resolves field against the pointed-to struct's field list.
func NewPropAccess(source Node, field string) (*PropAccess, error) {
	p, ok := source.Type().(*types.Pointer)
	if !ok {
		return nil, report.Errorf("can't access a property of non-pointer type %s", source.Type())
	}
	st, ok := p.PointsTo.(*types.Struct)
	if !ok {
		return nil, report.Errorf("can't access a property of non-struct type %s", p.PointsTo)
	}
	idx, ok := st.FieldIndex(field)
	if !ok {
		return nil, report.Errorf("struct %s has no field '%s'", st, field)
	}
	return &PropAccess{source: source, srcT: st, index: idx, ty: st.Fields[idx].Type}, nil
}

func (p *PropAccess) Type() types.Type { return p.ty }

func (p *PropAccess) EmitAddress(c *compiler.Compiler) llvalue.Value {
	srcPtr := p.source.Emit(c).Load(c.Block)
	return c.Block.NewGetElementPtr(p.srcT.Backend(), srcPtr, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, int64(p.index)))
}

func (p *PropAccess) Emit(c *compiler.Compiler) value.Value {
	return &value.Loaded{Ty: p.ty, Ptr: p.EmitAddress(c)}
}

// -----------------------------------------------------------------------------

// completeExtensionName builds the mangled method name "(<type>)::<name>",
// per original_source/src/asts.cpp's get_complete_extension_name.
func completeExtensionName(recvType types.Type, name string) string {
	return "(" + recvType.String() + ")::" + name
}

// NewMethodCall desugars recv.name(args) into a Call against the free
// identifier completeExtensionName(recv.Type(), name), with recv appended
// as the trailing argument (spec.md §4.4 *MethodCall*).
func NewMethodCall(c *compiler.Compiler, recv Node, name string, args []Node) (*Call, error) {
	mangled := completeExtensionName(recv.Type(), name)
	calleeVar, err := NewVariable(c, mangled)
	if err != nil {
		return nil, err
	}
	return NewCall(calleeVar, append(args, recv))
}

// -----------------------------------------------------------------------------

// StructLiteral is `new T { k = v, ... }` (spec.md §4.4 *StructLiteral*).
type StructLiteral struct {
	structT *types.Struct
	indices []int
	values  []Node
	ty      types.Type
}

// NewStructLiteral resolves each provided key against structT, erroring on
// unknown or duplicate keys (original_source/src/asts.cpp's NewExprAST).
func NewStructLiteral(structT *types.Struct, keys []string, values []Node) (*StructLiteral, error) {
	if len(keys) != len(values) {
		return nil, report.Errorf("mismatched key/value counts in struct literal")
	}
	seen := make(map[string]bool, len(keys))
	indices := make([]int, len(keys))
	for i, k := range keys {
		if seen[k] {
			return nil, report.Errorf("duplicate field '%s' in struct literal", k)
		}
		seen[k] = true
		idx, ok := structT.FieldIndex(k)
		if !ok {
			return nil, report.Errorf("struct %s has no field '%s'", structT, k)
		}
		indices[i] = idx
	}
	return &StructLiteral{structT: structT, indices: indices, values: values, ty: &types.Pointer{PointsTo: structT}}, nil
}

func (s *StructLiteral) Type() types.Type { return s.ty }

func (s *StructLiteral) Emit(c *compiler.Compiler) value.Value {
	backend := s.structT.Backend()
	slot := c.Block.NewAlloca(backend)
	for i, idx := range s.indices {
		fieldT := s.structT.Fields[idx].Type
		val := value.CastTo(s.values[i].Emit(c), fieldT)
		gep := c.Block.NewGetElementPtr(backend, slot, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, int64(idx)))
		c.Block.NewStore(val.Load(c.Block), gep)
	}
	return &value.Immediate{Ty: s.ty, V: slot}
}
