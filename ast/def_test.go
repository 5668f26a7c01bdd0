package ast

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/tbhmens/fylang/compiler"
	"github.com/tbhmens/fylang/token"
	"github.com/tbhmens/fylang/types"
)

func TestLetInfersTypeFromInit(t *testing.T) {
	c := compiler.New("test")
	lit, _ := NewNumberLit(token.NumberLit{Text: "1", Base: 10, Suffix: 'i'})

	let, err := NewLocalLet(c, "x", nil, lit, false)
	if err != nil {
		t.Fatal(err)
	}
	if !let.Type().Equal(types.I32) {
		t.Errorf("let x = 1 result_type() = %s, want i32", let.Type())
	}
	if ty, ok := c.ValueTypes.Lookup("x"); !ok || !ty.Equal(types.I32) {
		t.Error("NewLocalLet must install the name into the value-type scope immediately")
	}
}

func TestLetWithoutTypeOrInitFails(t *testing.T) {
	c := compiler.New("test")
	if _, err := NewLocalLet(c, "x", nil, nil, false); err == nil {
		t.Error("a let with neither a declared type nor an initializer must fail to construct")
	}
}

func TestLocalLetEmitAllocatesAndStores(t *testing.T) {
	c := newTestCompiler(t)
	lit, _ := NewNumberLit(token.NumberLit{Text: "7", Base: 10, Suffix: 'i'})

	let, err := NewLocalLet(c, "x", nil, lit, false)
	if err != nil {
		t.Fatal(err)
	}
	bound := let.Emit(c)
	if !bound.HasAddress() {
		t.Error("a mutable local let should bind a value with an address")
	}
}

func TestConstantLetBindsValueDirectly(t *testing.T) {
	c := newTestCompiler(t)
	lit, _ := NewNumberLit(token.NumberLit{Text: "7", Base: 10, Suffix: 'i'})

	let, err := NewLocalLet(c, "x", nil, lit, true)
	if err != nil {
		t.Fatal(err)
	}
	bound := let.Emit(c)
	if bound.HasAddress() {
		t.Error("a constant local let should bind a value with no address")
	}
}

func TestGlobalLetDefaultsToZeroInitializer(t *testing.T) {
	c := compiler.New("test")
	g, err := NewGlobalLet(c, "counter", types.I32, nil)
	if err != nil {
		t.Fatal(err)
	}
	g.EmitTopLevel(c)

	if _, ok := c.Values.Lookup("counter"); !ok {
		t.Error("EmitTopLevel must bind the global's name into the value scope")
	}
	if len(c.Module.Globals) != 1 {
		t.Fatalf("EmitTopLevel should add exactly one global, got %d", len(c.Module.Globals))
	}
	if n, ok := c.Module.Globals[0].Init.(*constant.Int); !ok || n.X.Sign() != 0 {
		t.Errorf("a global let without an initializer should get a zero initializer, got %v", c.Module.Globals[0].Init)
	}
}

func TestStructDefAndTypeDefRegister(t *testing.T) {
	c := compiler.New("test")
	fields := []types.Field{{Name: "x", Type: types.I32}}
	NewStructDef("Point", fields).EmitTopLevel(c)

	registered, ok := c.Types["Point"]
	if !ok {
		t.Fatal("StructDef.EmitTopLevel must register the struct by name")
	}
	want := &types.Struct{Name: "Point", Fields: fields}
	if !registered.Equal(want) {
		t.Errorf("registered type = %s, want %s", registered, want)
	}

	NewTypeDef("IntAlias", types.I32).EmitTopLevel(c)
	if alias, ok := c.Types["IntAlias"]; !ok || !alias.Equal(types.I32) {
		t.Error("TypeDef.EmitTopLevel must register the alias by name")
	}
}

// A full prototype+body round trip: fn double(x: i32) -> i32 { x + x }
func TestFuncBodyEmitsDefinedFunction(t *testing.T) {
	c := compiler.New("test")

	proto, err := NewFuncProto(c, "double", []string{"x"}, []types.Type{types.I32}, types.I32, false)
	if err != nil {
		t.Fatal(err)
	}

	xVar, err := NewVariable(c, "x")
	if err != nil {
		t.Fatal(err)
	}
	body, err := NewBinaryOp(token.Kind('+'), xVar, xVar)
	if err != nil {
		t.Fatal(err)
	}

	fb := NewFuncBody(proto, body)
	fb.EmitTopLevel(c)

	fn := proto.declareFunc(c)
	if len(fn.Blocks) == 0 {
		t.Error("FuncBody.EmitTopLevel should have populated the function with at least an entry block")
	}
	if len(fn.Params) != 1 {
		t.Errorf("double(x) should have 1 parameter, got %d", len(fn.Params))
	}
}

// A call against a function defined by FuncBody must resolve at emission
// time rather than aborting in report.Fatalf; declareFunc must bind the
// function's own name into c.Values, not just its type into c.ValueTypes.
func TestCallAgainstDefinedFunctionEmitsWithoutAbort(t *testing.T) {
	c := compiler.New("test")

	proto, err := NewFuncProto(c, "add", []string{"a", "b"}, []types.Type{types.I32, types.I32}, types.I32, false)
	if err != nil {
		t.Fatal(err)
	}
	aVar, err := NewVariable(c, "a")
	if err != nil {
		t.Fatal(err)
	}
	bVar, err := NewVariable(c, "b")
	if err != nil {
		t.Fatal(err)
	}
	body, err := NewBinaryOp(token.Kind('+'), aVar, bVar)
	if err != nil {
		t.Fatal(err)
	}
	NewFuncBody(proto, body).EmitTopLevel(c)

	callerFn := c.Module.NewFunc("caller", lltypes.Void)
	c.Func = callerFn
	c.Block = callerFn.NewBlock("")

	callee, err := NewVariable(c, "add")
	if err != nil {
		t.Fatal(err)
	}
	one, _ := NewNumberLit(token.NumberLit{Text: "1", Base: 10, Suffix: 'i'})
	two, _ := NewNumberLit(token.NumberLit{Text: "2", Base: 10, Suffix: 'i'})
	call, err := NewCall(callee, []Node{one, two})
	if err != nil {
		t.Fatal(err)
	}

	got := call.Emit(c)
	if !got.Type().Equal(types.I32) {
		t.Errorf("add(1, 2) emitted value type = %s, want i32", got.Type())
	}
	if _, ok := c.Block.Insts[len(c.Block.Insts)-1].(*ir.InstCall); !ok {
		t.Errorf("Call.Emit should append an InstCall, got %T", c.Block.Insts[len(c.Block.Insts)-1])
	}
}

// declareFunc must find the same *ir.Func across repeated lookups rather
// than creating a duplicate, since redefinition detection in
// FuncBody.EmitTopLevel depends on that (it checks len(fn.Blocks) != 0 on
// whatever declareFunc returns).
func TestDeclareFuncIsIdempotent(t *testing.T) {
	c := compiler.New("test")
	proto, err := NewFuncProto(c, "noop", nil, nil, types.I32, false)
	if err != nil {
		t.Fatal(err)
	}

	first := proto.declareFunc(c)
	second := proto.declareFunc(c)
	if first != second {
		t.Error("declareFunc should return the same *ir.Func for the same prototype name")
	}
}
