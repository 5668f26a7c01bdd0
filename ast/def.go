package ast

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"github.com/tbhmens/fylang/compiler"
	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/types"
	"github.com/tbhmens/fylang/value"
)

// TopLevel is satisfied by declarations that live outside any function body
// and register into the module/symbol tables directly, rather than
// producing a Value at some insertion point (spec.md §4.4: Let in global
// mode, function bodies, Declare, Struct, TypeDef). A bare function
// prototype is emitted through Declare; FuncProto itself is not a TopLevel.
type TopLevel interface {
	EmitTopLevel(c *compiler.Compiler)
}

// -----------------------------------------------------------------------------

// Let is a local variable binding, constant or mutable (spec.md §4.4
// *Let*). Global `let`s are a separate type, GlobalLet, since their
// emission has nothing in common with a block-local binding.
type Let struct {
	name     string
	ty       types.Type
	init     Node
	constant bool
}

// NewLocalLet computes ty from declaredType if given, else from init's
// type, and registers name in c's value-type scope immediately (spec.md
// §4.4: "construction installs name -> type").
func NewLocalLet(c *compiler.Compiler, name string, declaredType types.Type, init Node, constant bool) (*Let, error) {
	ty, err := letType(name, declaredType, init)
	if err != nil {
		return nil, err
	}
	c.ValueTypes.Define(name, ty)
	return &Let{name: name, ty: ty, init: init, constant: constant}, nil
}

func letType(name string, declaredType types.Type, init Node) (types.Type, error) {
	if declaredType != nil {
		return declaredType, nil
	}
	if init != nil {
		return init.Type(), nil
	}
	return nil, report.Errorf("untyped valueless variable '%s'", name)
}

func (l *Let) Type() types.Type { return l.ty }

// Emit implements the constant-local and mutable-local modes of spec.md
// §4.4 *Let*.
func (l *Let) Emit(c *compiler.Compiler) value.Value {
	if l.constant {
		if l.init == nil {
			report.Fatalf("constant variable '%s' needs an initialization value", l.name)
		}
		val := l.init.Emit(c)
		c.Values.Define(l.name, val)
		return val
	}

	slot := c.Block.NewAlloca(l.ty.Backend())
	bound := &value.Loaded{Ty: l.ty, Ptr: slot}
	c.Values.Define(l.name, bound)
	if l.init != nil {
		casted := value.CastTo(l.init.Emit(c), l.ty)
		c.Block.NewStore(casted.Load(c.Block), slot)
	}
	return bound
}

// -----------------------------------------------------------------------------

// GlobalLet is a module-level variable (spec.md §4.4 *Let*, global mode).
type GlobalLet struct {
	name string
	ty   types.Type
	init Node
}

func NewGlobalLet(c *compiler.Compiler, name string, declaredType types.Type, init Node) (*GlobalLet, error) {
	ty, err := letType(name, declaredType, init)
	if err != nil {
		return nil, err
	}
	c.ValueTypes.Define(name, ty)
	return &GlobalLet{name: name, ty: ty, init: init}, nil
}

func (g *GlobalLet) Type() types.Type { return g.ty }

// EmitTopLevel allocates a module-level slot; a present init must emit a
// compile-time constant, which becomes the initializer.
func (g *GlobalLet) EmitTopLevel(c *compiler.Compiler) {
	backend := g.ty.Backend()
	glob := c.Module.NewGlobal(g.name, backend)
	glob.Init = value.NullConstant(g.ty).(constant.Constant)

	if g.init != nil {
		val := g.init.Emit(c)
		cv, ok := val.Load(c.Block).(constant.Constant)
		if !ok {
			report.Fatalf("global variable '%s' needs a constant initializer", g.name)
		}
		glob.Init = cv
	}
	c.Values.Define(g.name, &value.Loaded{Ty: g.ty, Ptr: glob})
}

// emitDeclare registers the global without an initializer, for `declare`.
func (g *GlobalLet) emitDeclare(c *compiler.Compiler) {
	glob := c.Module.NewGlobal(g.name, g.ty.Backend())
	c.Values.Define(g.name, &value.Loaded{Ty: g.ty, Ptr: glob})
}

// -----------------------------------------------------------------------------

// Cast is an explicit cast expression (spec.md §4.4 *Cast*).
type Cast struct {
	expr   Node
	target types.Type
}

func NewCast(expr Node, target types.Type) *Cast { return &Cast{expr: expr, target: target} }

func (c *Cast) Type() types.Type { return c.target }

func (ca *Cast) Emit(c *compiler.Compiler) value.Value {
	return value.CastTo(ca.expr.Emit(c), ca.target)
}

// -----------------------------------------------------------------------------

// FuncProto is a function signature, possibly desugared from a method
// (spec.md §4.4 *Function prototype*).
type FuncProto struct {
	name     string
	argNames []string
	argTypes []types.Type
	fnType   *types.Function
}

// NewFuncProto installs each argument name and the prototype's own name in
// c's value-type scope, per spec.md §4.4. returnType may be nil, meaning
// "unresolved"; NewFuncBody fills it in from the body's type.
func NewFuncProto(c *compiler.Compiler, name string, argNames []string, argTypes []types.Type, returnType types.Type, vararg bool) (*FuncProto, error) {
	if len(argNames) != len(argTypes) {
		return nil, report.Errorf("mismatched argument name/type counts for '%s'", name)
	}
	for i, n := range argNames {
		c.ValueTypes.Define(n, argTypes[i])
	}
	fnType := &types.Function{Return: returnType, Params: argTypes, Vararg: vararg}
	c.ValueTypes.Define(name, fnType)
	return &FuncProto{name: name, argNames: argNames, argTypes: argTypes, fnType: fnType}, nil
}

// NewMethodProto desugars a `this`-receiver prototype into a free function
// named "(<this_type>)::<name>" with an appended trailing "this" parameter,
// matching original_source/src/asts.cpp's two-constructor PrototypeAST.
func NewMethodProto(c *compiler.Compiler, thisType types.Type, name string, argNames []string, argTypes []types.Type, returnType types.Type, vararg bool) (*FuncProto, error) {
	mangled := completeExtensionName(thisType, name)
	allNames := append(append([]string{}, argNames...), "this")
	allTypes := append(append([]types.Type{}, argTypes...), thisType)
	return NewFuncProto(c, mangled, allNames, allTypes, returnType, vararg)
}

func (p *FuncProto) Type() types.Type { return p.fnType }

// declareFunc locates an existing IR function of this name (from a prior
// `declare` or definition), or creates one, binding the function's own name
// to it in c.Values so calls against it resolve at emission time — matching
// original_source/src/asts.cpp's PrototypeAST::codegen(), which installs
// curr_named_variables[name] right after creating the LLVM function.
func (p *FuncProto) declareFunc(c *compiler.Compiler) *ir.Func {
	for _, f := range c.Module.Funcs {
		if f.Name() == p.name {
			return f
		}
	}

	params := make([]*ir.Param, len(p.argTypes))
	for i, t := range p.argTypes {
		params[i] = ir.NewParam(p.argNames[i], t.Backend())
	}
	fn := c.Module.NewFunc(p.name, p.fnType.Return.Backend(), params...)
	fn.Sig.Variadic = p.fnType.Vararg
	c.Values.Define(p.name, &value.Immediate{Ty: p.fnType, V: fn})
	return fn
}

// -----------------------------------------------------------------------------

// FuncBody is a function definition: a prototype plus its body expression
// (spec.md §4.4 *Function body*).
type FuncBody struct {
	proto *FuncProto
	body  Node
}

// NewFuncBody resolves proto's return type from body's type if it was left
// unresolved, per spec.md §4.4.
func NewFuncBody(proto *FuncProto, body Node) *FuncBody {
	if proto.fnType.Return == nil {
		proto.fnType.Return = body.Type()
	}
	return &FuncBody{proto: proto, body: body}
}

// EmitTopLevel finds or creates the IR function, rejects redefinition,
// binds parameters, emits the body, and returns its value cast to the
// declared return type.
func (fb *FuncBody) EmitTopLevel(c *compiler.Compiler) {
	fn := fb.proto.declareFunc(c)
	if len(fn.Blocks) != 0 {
		report.Fatalf("function '%s' cannot be redefined", fb.proto.name)
	}

	entry := fn.NewBlock("")
	c.Func = fn
	c.Block = entry

	c.Values.Push()
	c.ValueTypes.Push()
	defer c.Values.Pop()
	defer c.ValueTypes.Pop()

	for i, name := range fb.proto.argNames {
		argT := fb.proto.argTypes[i]
		c.Values.Define(name, &value.Immediate{Ty: argT, V: fn.Params[i]})
		c.ValueTypes.Define(name, argT)
	}

	result := fb.body.Emit(c)
	casted := value.CastTo(result, fb.proto.fnType.Return)
	c.Block.NewRet(casted.Load(c.Block))
}

// -----------------------------------------------------------------------------

// Declare is a forward declaration of either a global Let or a function
// prototype (spec.md §4.4 *Declare*).
type Declare struct {
	let   *GlobalLet
	proto *FuncProto
}

func NewDeclareLet(g *GlobalLet) *Declare   { return &Declare{let: g} }
func NewDeclareProto(p *FuncProto) *Declare { return &Declare{proto: p} }

func (d *Declare) EmitTopLevel(c *compiler.Compiler) {
	if d.let != nil {
		d.let.emitDeclare(c)
		return
	}
	d.proto.declareFunc(c)
}

// -----------------------------------------------------------------------------

// StructDef registers a named struct type (spec.md §4.4 *Struct*).
type StructDef struct {
	name   string
	fields []types.Field
}

func NewStructDef(name string, fields []types.Field) *StructDef {
	return &StructDef{name: name, fields: fields}
}

func (s *StructDef) EmitTopLevel(c *compiler.Compiler) {
	c.Types[s.name] = &types.Struct{Name: s.name, Fields: s.fields}
}

// TypeDef registers a type alias (spec.md §4.4 *TypeDef*).
type TypeDef struct {
	name string
	ty   types.Type
}

func NewTypeDef(name string, ty types.Type) *TypeDef { return &TypeDef{name: name, ty: ty} }

func (t *TypeDef) EmitTopLevel(c *compiler.Compiler) {
	c.Types[t.name] = t.ty
}
