package value

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/tbhmens/fylang/types"
)

func newTestBlock() *ir.Block {
	mod := ir.NewModule()
	fn := mod.NewFunc("test", lltypes.Void)
	return fn.NewBlock("")
}

func TestCastToEqualTypeIsNoOp(t *testing.T) {
	v := &Immediate{Ty: types.I32, V: constant.NewInt(lltypes.I32, 7)}
	if CastTo(v, types.I32) != v {
		t.Error("CastTo with an equal target type must return the source value unchanged")
	}
}

// Scenario 3 (spec.md §8): binary op widening casts the narrower operand up.
func TestCastWidensIntToWider(t *testing.T) {
	block := newTestBlock()
	src := &Immediate{Ty: types.I32, V: constant.NewInt(lltypes.I32, 3)}
	cast := CastTo(src, types.I64)

	got := cast.Load(block)
	ext, ok := got.(*ir.InstSExt)
	if !ok {
		t.Fatalf("widening a signed i32 to i64 should emit sext, got %T", got)
	}
	if ext.To != lltypes.I64 {
		t.Errorf("sext target type = %v, want i64", ext.To)
	}
}

func TestCastUnsignedIntWidensWithZExt(t *testing.T) {
	block := newTestBlock()
	src := &Immediate{Ty: types.U8, V: constant.NewInt(lltypes.I8, 5)}
	cast := CastTo(src, types.U32)

	got := cast.Load(block)
	if _, ok := got.(*ir.InstZExt); !ok {
		t.Fatalf("widening an unsigned i8 to u32 should emit zext, got %T", got)
	}
}

func TestCastNumberToBoolComparesAgainstZero(t *testing.T) {
	block := newTestBlock()
	src := &Immediate{Ty: types.I32, V: constant.NewInt(lltypes.I32, 0)}
	cast := CastTo(src, types.Bool)

	got := cast.Load(block)
	icmp, ok := got.(*ir.InstICmp)
	if !ok {
		t.Fatalf("int-to-bool cast should emit icmp, got %T", got)
	}
	if icmp.Pred != enum.IPredNE {
		t.Errorf("int-to-bool cast predicate = %v, want ne", icmp.Pred)
	}
}

func TestCastFloatToBoolUsesUnorderedPredicate(t *testing.T) {
	block := newTestBlock()
	src := &Immediate{Ty: types.F64, V: constant.NewFloat(lltypes.Double, 0)}
	cast := CastTo(src, types.Bool)

	got := cast.Load(block)
	fcmp, ok := got.(*ir.InstFCmp)
	if !ok {
		t.Fatalf("float-to-bool cast should emit fcmp, got %T", got)
	}
	if fcmp.Pred != enum.FPredUNE {
		t.Errorf("float-to-bool predicate = %v, want une (matching the original's Unordered family)", fcmp.Pred)
	}
}

func TestCastIntToFloatPicksSignedness(t *testing.T) {
	block := newTestBlock()

	signed := &Immediate{Ty: types.I32, V: constant.NewInt(lltypes.I32, -1)}
	if _, ok := CastTo(signed, types.F64).Load(block).(*ir.InstSIToFP); !ok {
		t.Error("signed int to float should emit sitofp")
	}

	unsigned := &Immediate{Ty: types.U32, V: constant.NewInt(lltypes.I32, 1)}
	if _, ok := CastTo(unsigned, types.F64).Load(block).(*ir.InstUIToFP); !ok {
		t.Error("unsigned int to float should emit uitofp")
	}
}

func TestCastArrayWithAddressDecaysToPointer(t *testing.T) {
	block := newTestBlock()
	arrT := &types.Array{Elem: types.U8, Count: 3}
	slot := block.NewAlloca(arrT.Backend())
	addressable := &Loaded{Ty: arrT, Ptr: slot}

	cast := CastTo(addressable, &types.Pointer{PointsTo: types.U8})
	if _, ok := cast.Load(block).(*ir.InstGetElementPtr); !ok {
		t.Errorf("array-to-pointer decay should emit a getelementptr, got %T", cast.Load(block))
	}
}

func TestNullConstantPicksBackendKind(t *testing.T) {
	if n, ok := NullConstant(types.I32).(*constant.Int); !ok || n.X.Sign() != 0 {
		t.Error("NullConstant(I32) should be a zero-valued int constant")
	}
	if _, ok := NullConstant(&types.Pointer{PointsTo: types.U8}).(*constant.Null); !ok {
		t.Error("NullConstant(*Pointer) should be a typed null pointer constant")
	}
}
