// Package value implements fylang's unified handle over an IR SSA value
// (spec.md §4.3): a Value answers what IR value it is, whether it has a
// backing memory address, and what its fylang type is. It also hosts the
// cast engine (spec.md §4.6), since the Cast variant and the coercion rules
// it materializes are two halves of the same mechanism (grounded on
// original_source/src/values.cpp, where the Value hierarchy and the free
// cast()/gen_num_cast()/gen_ptr_cast()/gen_arr_cast()/gen_tuple_cast()
// functions sit side by side).
package value

import (
	"github.com/llir/llvm/ir"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/tbhmens/fylang/types"
)

// Value is the abstraction every AST node's Emit returns. Callers ask for
// either the loaded scalar (Load) or the backing pointer (Address);
// addressless values are fatal on Address.
type Value interface {
	// Type is this value's fylang type.
	Type() types.Type

	// Load synthesizes (at block's current insertion point, if needed) and
	// returns the underlying IR scalar value.
	Load(block *ir.Block) llvalue.Value

	// HasAddress reports whether Address is valid for this value.
	HasAddress() bool

	// Address returns the pointer this value is backed by. Fatal if
	// HasAddress is false.
	Address(block *ir.Block) llvalue.Value
}

// CastTo wraps v in a lazy Cast targeting to. Per spec.md §4.3/§9, this never
// fails at construction — failures surface only when the cast is
// materialized by Load, so that assignment targets and l-value chains never
// pay for an unused cast.
func CastTo(v Value, to types.Type) Value {
	if v.Type().Equal(to) {
		return v
	}
	return &Cast{Source: v, Target: to}
}

// -----------------------------------------------------------------------------

// Immediate is an IR value with no backing memory. Address is an error.
type Immediate struct {
	Ty types.Type
	V  llvalue.Value
}

func (im *Immediate) Type() types.Type { return im.Ty }

func (im *Immediate) Load(*ir.Block) llvalue.Value { return im.V }

func (im *Immediate) HasAddress() bool { return false }

func (im *Immediate) Address(*ir.Block) llvalue.Value {
	fatalNoAddress(im.Ty)
	return nil
}

// -----------------------------------------------------------------------------

// Loaded is a pointer into memory plus the element type. Load synthesizes a
// load at the current builder position; Address returns the pointer as-is.
type Loaded struct {
	Ty  types.Type
	Ptr llvalue.Value
}

func (l *Loaded) Type() types.Type { return l.Ty }

func (l *Loaded) Load(block *ir.Block) llvalue.Value {
	return block.NewLoad(l.Ty.Backend(), l.Ptr)
}

func (l *Loaded) HasAddress() bool { return true }

func (l *Loaded) Address(*ir.Block) llvalue.Value { return l.Ptr }

// -----------------------------------------------------------------------------

// Cast lazily wraps Source, deferring coercion to Target until Load. It has
// no address of its own, even when Source does: once a cast is spliced in,
// the result is a fresh value, not an alias of Source's slot.
type Cast struct {
	Source Value
	Target types.Type
}

func (c *Cast) Type() types.Type { return c.Target }

func (c *Cast) Load(block *ir.Block) llvalue.Value {
	return cast(block, c.Source, c.Target)
}

func (c *Cast) HasAddress() bool { return false }

func (c *Cast) Address(*ir.Block) llvalue.Value {
	fatalNoAddress(c.Target)
	return nil
}
