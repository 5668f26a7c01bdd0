package ast

import (
	"testing"

	"github.com/llir/llvm/ir"

	"github.com/tbhmens/fylang/token"
	"github.com/tbhmens/fylang/types"
)

func TestUnaryNegAcceptsNumberOperand(t *testing.T) {
	b := NewBoolLit(true)
	if _, err := NewUnaryOp(token.Kind('-'), b); err != nil {
		t.Fatalf("'-' on a Number(bool) operand should type-check: %v", err)
	}
}

func TestUnaryNegEmitsSubFromZero(t *testing.T) {
	c := newTestCompiler(t)

	lit, err := NewNumberLit(token.NumberLit{Text: "5", Base: 10, Suffix: 'i'})
	if err != nil {
		t.Fatal(err)
	}
	neg, err := NewUnaryOp(token.Kind('-'), lit)
	if err != nil {
		t.Fatal(err)
	}
	if !neg.Type().Equal(lit.Type()) {
		t.Errorf("UnaryOp('-').Type() = %s, want operand type %s", neg.Type(), lit.Type())
	}

	got := neg.Emit(c)
	if _, ok := c.Block.Insts[len(c.Block.Insts)-1].(*ir.InstSub); !ok {
		t.Errorf("'-' on an integer operand should emit InstSub, got %T", c.Block.Insts[len(c.Block.Insts)-1])
	}
	if !got.Type().Equal(neg.Type()) {
		t.Errorf("emitted value type %s != UnaryOp.Type() %s", got.Type(), neg.Type())
	}
}

func TestUnaryNegOnFloatEmitsFSub(t *testing.T) {
	c := newTestCompiler(t)

	lit, err := NewNumberLit(token.NumberLit{Text: "1.5", Base: 10, HasDot: true, Suffix: 'd'})
	if err != nil {
		t.Fatal(err)
	}
	neg, err := NewUnaryOp(token.Kind('-'), lit)
	if err != nil {
		t.Fatal(err)
	}
	neg.Emit(c)
	if _, ok := c.Block.Insts[len(c.Block.Insts)-1].(*ir.InstFSub); !ok {
		t.Errorf("'-' on a float operand should emit InstFSub, got %T", c.Block.Insts[len(c.Block.Insts)-1])
	}
}

// '!' on a non-bool Number reproduces a known mismatch (also called out at
// NewUnaryOp's definition and in UnaryOp.Emit's '!' case): the emitted ICmp is
// backend-i1, but UnaryOp.Type() reports the operand's own Number type, not
// types.Bool. A caller that casts the result with value.CastTo gets a correct
// bool regardless, since CastTo compares against the *declared* target type;
// this test only pins down that UnaryOp.Type() itself does not normalize to
// Bool, so a future change to that behavior is a deliberate one.
func TestUnaryNotResultTypeIsOperandTypeNotBool(t *testing.T) {
	lit, err := NewNumberLit(token.NumberLit{Text: "3", Base: 10, Suffix: 'i'})
	if err != nil {
		t.Fatal(err)
	}
	not, err := NewUnaryOp(token.Kind('!'), lit)
	if err != nil {
		t.Fatal(err)
	}

	if not.Type().Equal(types.Bool) {
		t.Fatal("this test's premise (operand type i32 != Bool) no longer holds; reconsider the mismatch note on UnaryOp")
	}
	if !not.Type().Equal(lit.Type()) {
		t.Errorf("UnaryOp('!').Type() = %s, want operand type %s (matching original_source's UnaryExprAST)", not.Type(), lit.Type())
	}
}

func TestUnaryNotEmitsICmpEqZero(t *testing.T) {
	c := newTestCompiler(t)

	lit, err := NewNumberLit(token.NumberLit{Text: "3", Base: 10, Suffix: 'i'})
	if err != nil {
		t.Fatal(err)
	}
	not, err := NewUnaryOp(token.Kind('!'), lit)
	if err != nil {
		t.Fatal(err)
	}

	got := not.Emit(c)
	if _, ok := c.Block.Insts[len(c.Block.Insts)-1].(*ir.InstICmp); !ok {
		t.Errorf("'!' on an integer operand should emit InstICmp, got %T", c.Block.Insts[len(c.Block.Insts)-1])
	}
	// got.Type() reflects UnaryOp.Type(), which is the operand's Number type
	// rather than Bool — see TestUnaryNotResultTypeIsOperandTypeNotBool.
	if !got.Type().Equal(not.Type()) {
		t.Errorf("emitted value type %s != UnaryOp.Type() %s", got.Type(), not.Type())
	}
}

func TestUnaryNotOnFloatEmitsFCmp(t *testing.T) {
	c := newTestCompiler(t)

	lit, err := NewNumberLit(token.NumberLit{Text: "0.0", Base: 10, HasDot: true, Suffix: 'd'})
	if err != nil {
		t.Fatal(err)
	}
	not, err := NewUnaryOp(token.Kind('!'), lit)
	if err != nil {
		t.Fatal(err)
	}
	not.Emit(c)
	if _, ok := c.Block.Insts[len(c.Block.Insts)-1].(*ir.InstFCmp); !ok {
		t.Errorf("'!' on a float operand should emit InstFCmp, got %T", c.Block.Insts[len(c.Block.Insts)-1])
	}
}

func TestUnaryDerefRequiresPointerOperand(t *testing.T) {
	lit, err := NewNumberLit(token.NumberLit{Text: "3", Base: 10, Suffix: 'i'})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewUnaryOp(token.Kind('*'), lit); err == nil {
		t.Error("'*' on a non-pointer operand should be rejected")
	}
}
