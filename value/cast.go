package value

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/types"
)

// fatalNoAddress reports the spec.md §4.3 "address-of is an error" case for
// addressless values.
func fatalNoAddress(t types.Type) {
	report.Fatalf("value of type %s has no address", t)
}

// cast implements spec.md §4.6's full coercion rule set. It is the single
// entry point Cast.Load funnels through, and it is what assignment, let
// initialization, call-argument passing, struct-literal fields, return, and
// binary-op widening reach (via CastTo) rather than re-deriving these rules.
func cast(block *ir.Block, src Value, to types.Type) llvalue.Value {
	from := src.Type()
	if from.Equal(to) {
		return src.Load(block)
	}

	switch f := from.(type) {
	case *types.Number:
		return castNumber(block, src.Load(block), f, to)
	case *types.Pointer:
		return castPointer(block, src.Load(block), f, to)
	case *types.Array:
		return castArray(block, src, f, to)
	case types.Tuple:
		return castTuple(block, src, f, to)
	case types.Null:
		return castNull(to)
	}

	report.Fatalf("invalid cast from %s to %s", from, to)
	return nil
}

// castNumber implements the Number(a) -> * rules.
func castNumber(block *ir.Block, v llvalue.Value, from *types.Number, to types.Type) llvalue.Value {
	num, ok := to.(*types.Number)
	if !ok {
		if _, ok := to.(*types.Pointer); ok {
			return block.NewIntToPtr(v, to.Backend())
		}
		report.Fatalf("can't cast %s to %s", from, to)
		return nil
	}

	if num.IsBool() {
		if from.Floating {
			zero := constant.NewFloat(from.Backend().(*lltypes.FloatType), 0)
			return block.NewFCmp(enum.FPredUNE, v, zero)
		}
		zero := constant.NewInt(from.Backend().(*lltypes.IntType), 0)
		return block.NewICmp(enum.IPredNE, v, zero)
	}

	switch {
	case !from.Floating && num.Floating:
		if from.Signed {
			return block.NewSIToFP(v, num.Backend())
		}
		return block.NewUIToFP(v, num.Backend())
	case from.Floating && !num.Floating:
		if from.Signed {
			return block.NewFPToSI(v, num.Backend())
		}
		return block.NewFPToUI(v, num.Backend())
	case from.Floating && num.Floating:
		switch {
		case num.Bits > from.Bits:
			return block.NewFPExt(v, num.Backend())
		case num.Bits < from.Bits:
			return block.NewFPTrunc(v, num.Backend())
		default:
			return v
		}
	default: // int -> int
		switch {
		case num.Bits > from.Bits:
			if from.Signed {
				return block.NewSExt(v, num.Backend())
			}
			return block.NewZExt(v, num.Backend())
		case num.Bits < from.Bits:
			return block.NewTrunc(v, num.Backend())
		default:
			return v
		}
	}
}

// castPointer implements the Pointer(a) -> * rules.
func castPointer(block *ir.Block, v llvalue.Value, from *types.Pointer, to types.Type) llvalue.Value {
	switch to.(type) {
	case *types.Pointer:
		return block.NewBitCast(v, to.Backend())
	case *types.Number:
		return block.NewPtrToInt(v, to.Backend())
	}
	report.Fatalf("can't cast %s to %s", from, to)
	return nil
}

// zeroIndex is the i32 zero used for GEP-zero decays, matching the index
// type the teacher uses for struct/array GEPs throughout generate/gen_*.go.
func zeroIndex() *constant.Int { return constant.NewInt(lltypes.I32, 0) }

// castArray implements Array(T, N) -> Pointer(U), valid only when T == U and
// the array value has an address (spec.md §4.6; addressless arrays cannot
// decay).
func castArray(block *ir.Block, src Value, from *types.Array, to types.Type) llvalue.Value {
	ptr, ok := to.(*types.Pointer)
	if !ok || !from.Elem.Equal(ptr.PointsTo) {
		report.Fatalf("array %s can't be cast to %s", from, to)
		return nil
	}
	if !src.HasAddress() {
		report.Fatalf("addressless array %s can't decay to a pointer", from)
		return nil
	}
	return block.NewGetElementPtr(from.Backend(), src.Address(block), zeroIndex(), zeroIndex())
}

// castTuple implements Tuple(T1..Tn) -> Array(U, N), valid only when N
// matches and every Ti == U (spec.md §4.6).
func castTuple(block *ir.Block, src Value, from types.Tuple, to types.Type) llvalue.Value {
	arr, ok := to.(*types.Array)
	if !ok {
		report.Fatalf("tuple %s can't be cast to %s", from, to)
		return nil
	}
	if int(arr.Count) != len(from.Elems) {
		report.Fatalf("tuple %s can't be cast to array of a different size, got %s", from, to)
		return nil
	}
	for _, elem := range from.Elems {
		if !elem.Equal(arr.Elem) {
			report.Fatalf("tuple %s can't be cast to array with a different element type, got %s", from, to)
			return nil
		}
	}

	if src.HasAddress() {
		bc := block.NewBitCast(src.Address(block), lltypes.NewPointer(arr.Backend()))
		return block.NewLoad(arr.Backend(), bc)
	}

	// No address: build the array via insertvalue/extractvalue instead of a
	// bitcast-and-load, since there's no memory to alias.
	tupVal := src.Load(block)
	var arrVal llvalue.Value = constant.NewUndef(arr.Backend())
	for i := range from.Elems {
		elem := block.NewExtractValue(tupVal, uint64(i))
		arrVal = block.NewInsertValue(arrVal, elem, uint64(i))
	}
	return arrVal
}

// NullConstant returns the typed null/zero constant of t, for the implicit
// null literal that fills in a missing if/while else arm (spec.md §4.4
// *If/Else*).
func NullConstant(t types.Type) llvalue.Value { return castNull(t) }

// castNull implements Null -> any: a typed null/zero constant of the target.
func castNull(to types.Type) llvalue.Value {
	switch t := to.Backend().(type) {
	case *lltypes.PointerType:
		return constant.NewNull(t)
	case *lltypes.IntType:
		return constant.NewInt(t, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(t, 0)
	default:
		report.Fatalf("null has no representation for type %s", to)
		return nil
	}
}
