// Package compiler holds the lowering glue named in spec.md §4.5 and §9:
// the three symbol tables of §3, the current IR module, and the builder's
// insertion point, all folded into one explicit context value threaded
// through AST construction and emission — the design note's fix for the
// reference's global mutable tables. It generalizes the teacher's
// hand-rolled Generator.pushScope/popScope/lookup trio
// (_teacher_generate/generator.go) into a single reusable generic Scope
// type, used for both the value-type table and the value table.
package compiler

import (
	"strconv"

	"github.com/llir/llvm/ir"

	"github.com/tbhmens/fylang/types"
	"github.com/tbhmens/fylang/value"
)

// Scope is a stack of flat frames keyed by identifier, implementing
// block-local shadowing: a lookup searches frames innermost-first. spec.md's
// core data model treats named_values/named_value_types as flat,
// process-wide maps and leaves block-scoped shadowing to the parser; here it
// is made explicit so the parser (or any caller) can Push/Pop at block
// boundaries instead of snapshotting/restoring raw maps.
type Scope[T any] struct {
	frames []map[string]T
}

// NewScope returns a Scope with a single (global) frame already pushed.
func NewScope[T any]() *Scope[T] {
	s := &Scope[T]{}
	s.Push()
	return s
}

// Push opens a new, innermost frame.
func (s *Scope[T]) Push() {
	s.frames = append(s.frames, make(map[string]T))
}

// Pop discards the innermost frame.
func (s *Scope[T]) Pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Define binds name in the innermost frame.
func (s *Scope[T]) Define(name string, v T) {
	s.frames[len(s.frames)-1][name] = v
}

// Lookup searches frames from innermost to outermost.
func (s *Scope[T]) Lookup(name string) (T, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// -----------------------------------------------------------------------------

// Compiler is the explicit context threaded through every AST constructor
// and Emit call. It owns the module under construction, the current
// insertion point, and the three symbol tables from spec.md §3.
type Compiler struct {
	// Module is the single IR module definitions are registered into.
	Module *ir.Module

	// Func is the function currently being emitted into, or nil at the top
	// level.
	Func *ir.Func

	// Block is the builder's current insertion point.
	Block *ir.Block

	// Values is named_values: identifier -> Value (bindings in scope).
	Values *Scope[value.Value]

	// ValueTypes is named_value_types: identifier -> Type, consulted during
	// type-checking so a reference resolves as soon as its declaration has
	// been constructed (spec.md §5).
	ValueTypes *Scope[types.Type]

	// Types is named_types: type alias / struct name -> Type. Struct and
	// type definitions are whole-module declarations in fylang, so this
	// table is flat rather than scoped, unlike Values/ValueTypes.
	Types map[string]types.Type

	// stringCounter numbers anonymous globals created for string literals,
	// mirroring the teacher's Generator.globalCounter.
	stringCounter int
}

// New creates an empty Compiler with a fresh module, ready to compile a
// single translation unit end to end. Per spec.md §6's symbol-table
// lifecycle, the tables start empty and are populated by top-level
// declarations in the order they're constructed; there is no teardown
// within a single compilation.
func New(moduleName string) *Compiler {
	mod := ir.NewModule()
	mod.SourceFilename = moduleName
	return &Compiler{
		Module:     mod,
		Values:     NewScope[value.Value](),
		ValueTypes: NewScope[types.Type](),
		Types:      make(map[string]types.Type),
	}
}

// AppendBlock adds a new, unpositioned basic block to fn. It does not move
// the current insertion point — callers reposition c.Block explicitly,
// generalizing the teacher's Generator.appendBlock.
func (c *Compiler) AppendBlock(fn *ir.Func, name string) *ir.Block {
	return fn.NewBlock(name)
}

// NextStringName returns a fresh, unique name for a module-level string
// constant, e.g. for the global aggregate backing a C-style string literal.
func (c *Compiler) NextStringName() string {
	c.stringCounter++
	return ".str." + strconv.Itoa(c.stringCounter)
}
