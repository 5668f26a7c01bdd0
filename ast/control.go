package ast

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/tbhmens/fylang/compiler"
	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/types"
	"github.com/tbhmens/fylang/value"
)

// NullLit is the implicit else arm synthesized when an if/while omits one
// (spec.md §4.4 *If/Else*).
type NullLit struct{ ty types.Type }

func (n *NullLit) Type() types.Type { return n.ty }

func (n *NullLit) Emit(*compiler.Compiler) value.Value {
	return &value.Immediate{Ty: n.ty, V: value.NullConstant(n.ty)}
}

// -----------------------------------------------------------------------------

// Block is a sequence of expressions evaluated for effect, yielding the
// last one's value (spec.md §4.4 *Block*).
type Block struct {
	exprs []Node
	ty    types.Type
}

// NewBlock requires at least one expression.
func NewBlock(exprs []Node) (*Block, error) {
	if len(exprs) == 0 {
		return nil, report.Errorf("block can't be empty")
	}
	return &Block{exprs: exprs, ty: exprs[len(exprs)-1].Type()}, nil
}

func (b *Block) Type() types.Type { return b.ty }

func (b *Block) Emit(c *compiler.Compiler) value.Value {
	for _, e := range b.exprs[:len(b.exprs)-1] {
		e.Emit(c)
	}
	return b.exprs[len(b.exprs)-1].Emit(c)
}

// -----------------------------------------------------------------------------

// toBoolCond normalizes cond to an i1 branch condition, per spec.md §4.4
// *If/Else*: used directly when already I1, compared against a
// correctly-typed zero otherwise.
func toBoolCond(c *compiler.Compiler, cond Node) llvalue.Value {
	v := cond.Emit(c).Load(c.Block)
	n, ok := cond.Type().(*types.Number)
	if !ok {
		report.Fatalf("condition must be numeric, got %s", cond.Type())
	}
	if n.Bits == 1 && !n.Floating {
		return v
	}
	if n.Floating {
		zero := constant.NewFloat(n.Backend().(*lltypes.FloatType), 0)
		return c.Block.NewFCmp(enum.FPredUNE, v, zero)
	}
	zero := constant.NewInt(n.Backend().(*lltypes.IntType), 0)
	return c.Block.NewICmp(enum.IPredNE, v, zero)
}

// If is the if/else expression (spec.md §4.4 *If/Else*).
type If struct {
	cond, then, els Node
	ty              types.Type
}

// NewIf defaults a missing els to a Null of then's type, then requires
// then and els to agree structurally.
func NewIf(cond, then, els Node) (*If, error) {
	thenT := then.Type()
	if els == nil {
		els = &NullLit{ty: thenT}
	}
	if !thenT.Equal(els.Type()) {
		return nil, report.Errorf("if's then and else branches have different types: %s and %s", thenT, els.Type())
	}
	return &If{cond: cond, then: then, els: els, ty: thenT}, nil
}

func (i *If) Type() types.Type { return i.ty }

// Emit follows spec.md §4.4's three-block shape, reading the phi's
// incoming blocks off the builder's position *after* each arm runs (an arm
// may itself branch internally and leave the builder somewhere other than
// where it started).
func (i *If) Emit(c *compiler.Compiler) value.Value {
	condV := toBoolCond(c, i.cond)

	thenBlock := c.Func.NewBlock("")
	elseBlock := c.Func.NewBlock("")
	mergeBlock := c.Func.NewBlock("")
	c.Block.NewCondBr(condV, thenBlock, elseBlock)

	c.Block = thenBlock
	thenVal := i.then.Emit(c).Load(c.Block)
	thenPred := c.Block
	c.Block.NewBr(mergeBlock)

	c.Block = elseBlock
	elseVal := i.els.Emit(c).Load(c.Block)
	elsePred := c.Block
	c.Block.NewBr(mergeBlock)

	c.Block = mergeBlock
	phi := c.Block.NewPhi(ir.NewIncoming(thenVal, thenPred), ir.NewIncoming(elseVal, elsePred))
	return &value.Immediate{Ty: i.ty, V: phi}
}

// -----------------------------------------------------------------------------

// While is the while/else expression (spec.md §4.4 *While*). It structurally
// mirrors If but re-evaluates cond at the body's tail rather than reusing
// the pre-loop value — spec.md §9 flags reusing the stale value as a bug in
// the reference.
type While struct {
	cond, body, els Node
	ty              types.Type
}

func NewWhile(cond, body, els Node) (*While, error) {
	bodyT := body.Type()
	if els == nil {
		els = &NullLit{ty: bodyT}
	}
	if !bodyT.Equal(els.Type()) {
		return nil, report.Errorf("while's body and else branches have different types: %s and %s", bodyT, els.Type())
	}
	return &While{cond: cond, body: body, els: els, ty: bodyT}, nil
}

func (w *While) Type() types.Type { return w.ty }

func (w *While) Emit(c *compiler.Compiler) value.Value {
	bodyBlock := c.Func.NewBlock("")
	elseBlock := c.Func.NewBlock("")
	mergeBlock := c.Func.NewBlock("")

	entryCond := toBoolCond(c, w.cond)
	c.Block.NewCondBr(entryCond, bodyBlock, elseBlock)

	c.Block = bodyBlock
	bodyVal := w.body.Emit(c).Load(c.Block)
	backCond := toBoolCond(c, w.cond) // recomputed, not the entry value
	bodyPred := c.Block
	c.Block.NewCondBr(backCond, bodyBlock, mergeBlock)

	c.Block = elseBlock
	elseVal := w.els.Emit(c).Load(c.Block)
	elsePred := c.Block
	c.Block.NewBr(mergeBlock)

	c.Block = mergeBlock
	phi := c.Block.NewPhi(ir.NewIncoming(bodyVal, bodyPred), ir.NewIncoming(elseVal, elsePred))
	return &value.Immediate{Ty: w.ty, V: phi}
}
