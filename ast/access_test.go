package ast

import (
	"testing"

	"github.com/tbhmens/fylang/token"
	"github.com/tbhmens/fylang/types"
)

func TestCallRejectsWrongArgCount(t *testing.T) {
	fnT := &types.Function{Return: types.I32, Params: []types.Type{types.I32}}
	fnVar := &Variable{name: "f", ty: fnT}
	one, _ := NewNumberLit(token.NumberLit{Text: "1", Base: 10, Suffix: 'i'})

	if _, err := NewCall(fnVar, nil); err == nil {
		t.Error("calling a 1-arg function with 0 args must fail to construct")
	}
	if _, err := NewCall(fnVar, []Node{one, one}); err == nil {
		t.Error("calling a 1-arg function with 2 args must fail to construct")
	}
	if _, err := NewCall(fnVar, []Node{one}); err != nil {
		t.Errorf("calling a 1-arg function with 1 arg should succeed, got %v", err)
	}
}

func TestCallThroughFunctionPointerIsCallable(t *testing.T) {
	fnT := &types.Function{Return: types.I32}
	ptrVar := &Variable{name: "f", ty: &types.Pointer{PointsTo: fnT}}

	call, err := NewCall(ptrVar, nil)
	if err != nil {
		t.Fatalf("a pointer-to-function callee should be callable, got error: %v", err)
	}
	if !call.Type().Equal(types.I32) {
		t.Errorf("call result_type() = %s, want i32", call.Type())
	}
}

func TestCallVarargAcceptsExtraArgs(t *testing.T) {
	fnT := &types.Function{Return: types.I32, Params: []types.Type{types.I32}, Vararg: true}
	fnVar := &Variable{name: "printf", ty: fnT}
	one, _ := NewNumberLit(token.NumberLit{Text: "1", Base: 10, Suffix: 'i'})
	two, _ := NewNumberLit(token.NumberLit{Text: "2", Base: 10, Suffix: 'i'})

	if _, err := NewCall(fnVar, []Node{one, two, two}); err != nil {
		t.Errorf("vararg function should accept more args than its fixed arity, got error: %v", err)
	}
}

func TestIndexIntoPointer(t *testing.T) {
	ptrVar := &Variable{name: "p", ty: &types.Pointer{PointsTo: types.I32}}
	zero, _ := NewNumberLit(token.NumberLit{Text: "0", Base: 10, Suffix: 'i'})

	ix, err := NewIndex(ptrVar, zero)
	if err != nil {
		t.Fatal(err)
	}
	if !ix.Type().Equal(types.I32) {
		t.Errorf("p[0] result_type() = %s, want i32", ix.Type())
	}
}

// Tuple indexing requires a compile-time constant index (spec.md §9: this is
// one of the apparent bugs fixed relative to the reference, which left this
// unchecked).
func TestIndexIntoTupleRequiresConstantIndex(t *testing.T) {
	tupVar := &Variable{name: "t", ty: types.Tuple{Elems: []types.Type{types.I32, types.F64}}}
	notConst := &BoolLit{val: true}

	if _, err := NewIndex(tupVar, notConst); err == nil {
		t.Error("tuple indexing with a non-constant index must fail to construct")
	}

	one, _ := NewNumberLit(token.NumberLit{Text: "1", Base: 10, Suffix: 'i'})
	ix, err := NewIndex(tupVar, one)
	if err != nil {
		t.Fatal(err)
	}
	if !ix.Type().Equal(types.F64) {
		t.Errorf("t[1] result_type() = %s, want f64", ix.Type())
	}
}

func TestIndexIntoTupleRejectsOutOfRangeConstant(t *testing.T) {
	tupVar := &Variable{name: "t", ty: types.Tuple{Elems: []types.Type{types.I32}}}
	five, _ := NewNumberLit(token.NumberLit{Text: "5", Base: 10, Suffix: 'i'})

	if _, err := NewIndex(tupVar, five); err == nil {
		t.Error("an out-of-range tuple index must fail to construct")
	}
}

func TestPropAccessResolvesField(t *testing.T) {
	st := &types.Struct{Name: "Point", Fields: []types.Field{{Name: "x", Type: types.I32}, {Name: "y", Type: types.I32}}}
	srcVar := &Variable{name: "p", ty: &types.Pointer{PointsTo: st}}

	pa, err := NewPropAccess(srcVar, "y")
	if err != nil {
		t.Fatal(err)
	}
	if !pa.Type().Equal(types.I32) {
		t.Errorf("p.y result_type() = %s, want i32", pa.Type())
	}

	if _, err := NewPropAccess(srcVar, "z"); err == nil {
		t.Error("accessing an unknown field must fail to construct")
	}
}

func TestMethodCallMangling(t *testing.T) {
	st := &types.Struct{Name: "Point", Fields: nil}
	ptrT := &types.Pointer{PointsTo: st}
	if got := completeExtensionName(ptrT, "len"); got != "(*Point)::len" {
		t.Errorf("completeExtensionName = %q, want %q", got, "(*Point)::len")
	}
}

func TestStructLiteralRejectsDuplicateAndUnknownKeys(t *testing.T) {
	st := &types.Struct{Name: "Point", Fields: []types.Field{{Name: "x", Type: types.I32}, {Name: "y", Type: types.I32}}}
	one, _ := NewNumberLit(token.NumberLit{Text: "1", Base: 10, Suffix: 'i'})

	if _, err := NewStructLiteral(st, []string{"x", "x"}, []Node{one, one}); err == nil {
		t.Error("duplicate field keys in a struct literal must fail to construct")
	}
	if _, err := NewStructLiteral(st, []string{"z"}, []Node{one}); err == nil {
		t.Error("an unknown field key in a struct literal must fail to construct")
	}

	lit, err := NewStructLiteral(st, []string{"x", "y"}, []Node{one, one})
	if err != nil {
		t.Fatal(err)
	}
	want := &types.Pointer{PointsTo: st}
	if !lit.Type().Equal(want) {
		t.Errorf("struct literal result_type() = %s, want %s", lit.Type(), want)
	}
}
