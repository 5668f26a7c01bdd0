package ast

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/tbhmens/fylang/compiler"
	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/token"
	"github.com/tbhmens/fylang/types"
	"github.com/tbhmens/fylang/value"
)

// isComparisonOp reports whether op is one of <, >, <=, >=, ==, !=.
func isComparisonOp(op token.Kind) bool {
	switch op {
	case token.Kind('<'), token.Kind('>'), token.LEQ, token.GEQ, token.EQEQ, token.NEQ:
		return true
	}
	return false
}

// isNumArithOp reports whether op is an arithmetic or bitwise/logical
// operator valid between two numbers.
func isNumArithOp(op token.Kind) bool {
	switch op {
	case token.Kind('+'), token.Kind('-'), token.Kind('*'), token.Kind('/'), token.Kind('%'),
		token.Kind('&'), token.Kind('|'), token.LAND, token.LOR:
		return true
	}
	return false
}

// BinaryOp is a binary operator application (spec.md §4.4 *Binary op*).
type BinaryOp struct {
	op       token.Kind
	lhs, rhs Node
	ty       types.Type
}

// NewBinaryOp type-checks op applied to lhs and rhs and computes the
// result type, per spec.md §4.4's binary-op rules.
func NewBinaryOp(op token.Kind, lhs, rhs Node) (*BinaryOp, error) {
	if op == token.Kind('=') {
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, ty: rhs.Type()}, nil
	}

	lhsT, rhsT := lhs.Type(), rhs.Type()

	if lhsN, ok := lhsT.(*types.Number); ok {
		if rhsN, ok := rhsT.(*types.Number); ok {
			if lhsN.Floating != rhsN.Floating {
				return nil, report.Errorf("can't apply '%s' to mixed floating/integer operands %s and %s", op, lhsT, rhsT)
			}

			switch {
			case isComparisonOp(op):
				return &BinaryOp{op: op, lhs: lhs, rhs: rhs, ty: types.Bool}, nil
			case isNumArithOp(op):
				return &BinaryOp{op: op, lhs: lhs, rhs: rhs, ty: widerNumber(lhsN, rhsN)}, nil
			default:
				return nil, report.Errorf("unknown binary operator '%s'", op)
			}
		}
	}

	if lhsP, ok := lhsT.(*types.Pointer); ok {
		if _, ok := rhsT.(*types.Number); ok {
			if op != token.Kind('+') && op != token.Kind('-') {
				return nil, report.Errorf("'%s' isn't valid between a pointer and a number", op)
			}
			return &BinaryOp{op: op, lhs: lhs, rhs: rhs, ty: lhsP}, nil
		}
	}

	if rhsP, ok := rhsT.(*types.Pointer); ok {
		if _, ok := lhsT.(*types.Number); ok {
			if op != token.Kind('+') {
				return nil, report.Errorf("'%s' isn't valid between a number and a pointer", op)
			}
			return &BinaryOp{op: op, lhs: lhs, rhs: rhs, ty: rhsP}, nil
		}
	}

	return nil, report.Errorf("invalid operand types for '%s': %s and %s", op, lhsT, rhsT)
}

func widerNumber(a, b *types.Number) *types.Number {
	if a.Bits >= b.Bits {
		return a
	}
	return b
}

func (b *BinaryOp) Type() types.Type { return b.ty }

func (b *BinaryOp) Emit(c *compiler.Compiler) value.Value {
	if b.op == token.Kind('=') {
		return b.emitAssign(c)
	}

	lhsT, rhsT := b.lhs.Type(), b.rhs.Type()

	if lhsN, ok := lhsT.(*types.Number); ok {
		if rhsN, ok := rhsT.(*types.Number); ok {
			return b.emitNumNum(c, lhsN, rhsN)
		}
	}

	if lhsP, ok := lhsT.(*types.Pointer); ok {
		ptrVal := b.lhs.Emit(c).Load(c.Block)
		numVal := b.rhs.Emit(c).Load(c.Block)
		return b.emitPtrArith(c, lhsP, ptrVal, numVal)
	}

	rhsP := rhsT.(*types.Pointer)
	ptrVal := b.rhs.Emit(c).Load(c.Block)
	numVal := b.lhs.Emit(c).Load(c.Block)
	return b.emitPtrArith(c, rhsP, ptrVal, numVal)
}

// emitAssign fetches the LHS address, evaluates and casts the RHS, stores
// it, and yields the LHS as a Loaded value (spec.md §4.4 *Binary op*
// Assignment).
func (b *BinaryOp) emitAssign(c *compiler.Compiler) value.Value {
	lv, ok := b.lhs.(LValue)
	if !ok {
		report.Fatalf("left-hand side of '=' isn't assignable")
	}

	addr := lv.EmitAddress(c)
	rhsVal := b.rhs.Emit(c)
	casted := value.CastTo(rhsVal, b.lhs.Type())
	c.Block.NewStore(casted.Load(c.Block), addr)
	return &value.Loaded{Ty: b.ty, Ptr: addr}
}

// emitNumNum widens the narrower operand's value to the wider operand's
// *type* before the operation, while deriving floatness/signedness from the
// original (pre-widen) operand types — matching
// original_source/src/asts.cpp's gen_num_num_binop exactly.
func (b *BinaryOp) emitNumNum(c *compiler.Compiler, lhsN, rhsN *types.Number) value.Value {
	lVal := b.lhs.Emit(c)
	rVal := b.rhs.Emit(c)

	wider := widerNumber(lhsN, rhsN)
	L := value.CastTo(lVal, wider).Load(c.Block)
	R := value.CastTo(rVal, wider).Load(c.Block)

	floating := lhsN.Floating && rhsN.Floating
	signed := lhsN.Signed && rhsN.Signed

	var result llvalue.Value
	if floating {
		result = floatBinOp(c.Block, b.op, L, R)
	} else {
		result = intBinOp(c.Block, b.op, L, R, signed)
	}
	return &value.Immediate{Ty: b.ty, V: result}
}

func floatBinOp(block *ir.Block, op token.Kind, L, R llvalue.Value) llvalue.Value {
	switch op {
	case token.Kind('+'):
		return block.NewFAdd(L, R)
	case token.Kind('-'):
		return block.NewFSub(L, R)
	case token.Kind('*'):
		return block.NewFMul(L, R)
	case token.Kind('/'):
		return block.NewFDiv(L, R)
	case token.Kind('%'):
		return block.NewFRem(L, R)
	case token.Kind('&'), token.LAND:
		return block.NewAnd(L, R)
	case token.Kind('|'), token.LOR:
		return block.NewOr(L, R)
	case token.Kind('<'):
		return block.NewFCmp(enum.FPredULT, L, R)
	case token.Kind('>'):
		return block.NewFCmp(enum.FPredUGT, L, R)
	case token.LEQ:
		return block.NewFCmp(enum.FPredULE, L, R)
	case token.GEQ:
		return block.NewFCmp(enum.FPredUGE, L, R)
	case token.EQEQ:
		return block.NewFCmp(enum.FPredUEQ, L, R)
	case token.NEQ:
		return block.NewFCmp(enum.FPredUNE, L, R)
	}
	report.Fatalf("invalid float-float binary operator '%s'", op)
	return nil
}

func intBinOp(block *ir.Block, op token.Kind, L, R llvalue.Value, signed bool) llvalue.Value {
	switch op {
	case token.Kind('+'):
		return block.NewAdd(L, R)
	case token.Kind('-'):
		return block.NewSub(L, R)
	case token.Kind('*'):
		return block.NewMul(L, R)
	case token.Kind('/'):
		if signed {
			return block.NewSDiv(L, R)
		}
		return block.NewUDiv(L, R)
	case token.Kind('%'):
		if signed {
			return block.NewSRem(L, R)
		}
		return block.NewURem(L, R)
	case token.Kind('&'), token.LAND:
		return block.NewAnd(L, R)
	case token.Kind('|'), token.LOR:
		return block.NewOr(L, R)
	case token.Kind('<'):
		if signed {
			return block.NewICmp(enum.IPredSLT, L, R)
		}
		return block.NewICmp(enum.IPredULT, L, R)
	case token.Kind('>'):
		if signed {
			return block.NewICmp(enum.IPredSGT, L, R)
		}
		return block.NewICmp(enum.IPredUGT, L, R)
	case token.LEQ:
		if signed {
			return block.NewICmp(enum.IPredSLE, L, R)
		}
		return block.NewICmp(enum.IPredULE, L, R)
	case token.GEQ:
		if signed {
			return block.NewICmp(enum.IPredSGE, L, R)
		}
		return block.NewICmp(enum.IPredUGE, L, R)
	case token.EQEQ:
		return block.NewICmp(enum.IPredEQ, L, R)
	case token.NEQ:
		return block.NewICmp(enum.IPredNE, L, R)
	}
	report.Fatalf("invalid int-int binary operator '%s'", op)
	return nil
}

// emitPtrArith implements `ptr +/- num` via GEP over the pointee type,
// negating the index for subtraction (spec.md §4.4 *Binary op*).
func (b *BinaryOp) emitPtrArith(c *compiler.Compiler, ptrT *types.Pointer, ptrVal, numVal llvalue.Value) value.Value {
	if b.op == token.Kind('-') {
		zero := constant.NewInt(numVal.Type().(*lltypes.IntType), 0)
		numVal = c.Block.NewSub(zero, numVal)
	}
	gep := c.Block.NewGetElementPtr(ptrT.PointsTo.Backend(), ptrVal, numVal)
	return &value.Immediate{Ty: ptrT, V: gep}
}

// -----------------------------------------------------------------------------

// UnaryOp is a prefix unary operator application (spec.md §4.4 *Unary op*).
type UnaryOp struct {
	op      token.Kind
	operand Node
	ty      types.Type
}

// NewUnaryOp type-checks op applied to operand.
func NewUnaryOp(op token.Kind, operand Node) (*UnaryOp, error) {
	switch op {
	case token.Kind('*'):
		p, ok := operand.Type().(*types.Pointer)
		if !ok {
			return nil, report.Errorf("'*' can't be used on non-pointer type %s", operand.Type())
		}
		return &UnaryOp{op: op, operand: operand, ty: p.PointsTo}, nil
	case token.Kind('&'):
		if _, ok := operand.(LValue); !ok {
			return nil, report.Errorf("can't take the address of a non-addressable expression")
		}
		return &UnaryOp{op: op, operand: operand, ty: &types.Pointer{PointsTo: operand.Type()}}, nil
	case token.Kind('-'), token.Kind('!'):
		if _, ok := operand.Type().(*types.Number); !ok {
			return nil, report.Errorf("'%s' can't be used on non-numeric type %s", op, operand.Type())
		}
		// Result type equals the operand's own type, matching
		// original_source/src/asts.cpp's UnaryExprAST exactly (not
		// Number(1,...) even for `!`).
		return &UnaryOp{op: op, operand: operand, ty: operand.Type()}, nil
	default:
		return nil, report.Errorf("unknown unary operator '%s'", op)
	}
}

func (u *UnaryOp) Type() types.Type { return u.ty }

func (u *UnaryOp) Emit(c *compiler.Compiler) value.Value {
	switch u.op {
	case token.Kind('*'):
		ptrVal := u.operand.Emit(c).Load(c.Block)
		return &value.Loaded{Ty: u.ty, Ptr: ptrVal}
	case token.Kind('&'):
		addr := u.operand.(LValue).EmitAddress(c)
		return &value.Immediate{Ty: u.ty, V: addr}
	case token.Kind('-'):
		operandVal := u.operand.Emit(c).Load(c.Block)
		n := u.ty.(*types.Number)
		if n.Floating {
			zero := constant.NewFloat(n.Backend().(*lltypes.FloatType), 0)
			return &value.Immediate{Ty: u.ty, V: c.Block.NewFSub(zero, operandVal)}
		}
		zero := constant.NewInt(n.Backend().(*lltypes.IntType), 0)
		return &value.Immediate{Ty: u.ty, V: c.Block.NewSub(zero, operandVal)}
	case token.Kind('!'):
		// The ICmp result is backend-i1 regardless of n; u.ty (the operand's
		// own numeric type, set in NewUnaryOp) is only correct here when it
		// already denotes a single-bit bool. value.CastTo on the caller's side
		// is what actually reconciles the two when they differ.
		operandVal := u.operand.Emit(c).Load(c.Block)
		n := u.ty.(*types.Number)
		if n.Floating {
			zero := constant.NewFloat(n.Backend().(*lltypes.FloatType), 0)
			return &value.Immediate{Ty: u.ty, V: c.Block.NewFCmp(enum.FPredUEQ, operandVal, zero)}
		}
		zero := constant.NewInt(n.Backend().(*lltypes.IntType), 0)
		return &value.Immediate{Ty: u.ty, V: c.Block.NewICmp(enum.IPredEQ, operandVal, zero)}
	}

	report.Fatalf("unknown unary operator '%s'", u.op)
	return nil
}
