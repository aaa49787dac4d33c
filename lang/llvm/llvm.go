package llvm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// ErrUnsupported reports a construct that has no IR lowering.
var ErrUnsupported = lang.NewError("unsupported by IR generation")

// Option configures [Generate].
type Option func(*generator)

// WithLogger sets the logger used to trace generation.
func WithLogger(logger log.Logger) Option {
	return func(g *generator) { g.logger = logger }
}

// variable is the storage of one declared name. The declared flag tracks at
// run time whether the declaration has executed.
type variable struct {
	typ      lang.Type
	slot     *ir.InstAlloca
	declared *ir.InstAlloca
}

type generator struct {
	logger log.Logger

	mod   *ir.Module
	fn    *ir.Func
	entry *ir.Block
	block *ir.Block
	vars  map[string]*variable
	text  map[string]constant.Constant
	seq   int

	printf, scanf *ir.Func
	fail          *ir.Func
}

// Generate lowers prog into a module whose main function runs it.
//
// Number variables are i64 and Boolean variables are i1. The program is
// checked before any IR is emitted: every referenced name must be declared
// somewhere, each name has a single type, and every operator gets operands
// of the types it accepts. Errors that depend on control flow, such as using
// a variable before its declaration has executed, are checked at run time
// and abort the program with the same message the interpreter reports.
func Generate(ctx context.Context, prog *lang.Program, opts ...Option) (*ir.Module, error) {
	g := &generator{
		logger: log.Discard(),
		mod:    ir.NewModule(),
		vars:   make(map[string]*variable),
		text:   make(map[string]constant.Constant),
	}

	for _, opt := range opts {
		opt(g)
	}

	if err := g.declareAll(prog.Stmts); err != nil {
		return nil, err
	}

	for _, stmt := range prog.Stmts {
		if err := g.check(stmt); err != nil {
			return nil, err
		}
	}

	g.runtime()

	g.fn = g.mod.NewFunc("main", types.I32)
	g.entry = g.fn.NewBlock("entry")

	for _, name := range sortedNames(g.vars) {
		v := g.vars[name]

		v.slot = g.entry.NewAlloca(irType(v.typ))
		v.slot.SetName("var." + name)
		v.declared = g.entry.NewAlloca(types.I1)
		v.declared.SetName("var." + name + ".declared")
		g.entry.NewStore(constant.False, v.declared)
	}

	g.block = g.fn.NewBlock("body")
	g.entry.NewBr(g.block)

	for _, stmt := range prog.Stmts {
		g.stmt(stmt)
	}

	g.block.NewRet(constant.NewInt(types.I32, 0))

	g.logger.TraceContext(ctx, "ir generate complete",
		slog.Int("statement_count", len(prog.Stmts)),
		slog.Int("variable_count", len(g.vars)),
		slog.Int("block_count", len(g.fn.Blocks)))

	return g.mod, nil
}

// Write generates the module for prog and writes its textual IR to w.
func Write(ctx context.Context, w io.Writer, prog *lang.Program, opts ...Option) error {
	mod, err := Generate(ctx, prog, opts...)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, mod.String()); err != nil {
		return lang.ErrWriteOutput.Wrap(err)
	}

	return nil
}

func irType(t lang.Type) types.Type {
	if t == lang.TypeBoolean {
		return types.I1
	}

	return types.I64
}

// runtime declares the C library functions used by generated code and
// defines the failure routine.
func (g *generator) runtime() {
	g.printf = g.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	g.printf.Sig.Variadic = true

	g.scanf = g.mod.NewFunc("scanf", types.I32, ir.NewParam("format", types.I8Ptr))
	g.scanf.Sig.Variadic = true

	dprintf := g.mod.NewFunc("dprintf", types.I32,
		ir.NewParam("fd", types.I32),
		ir.NewParam("format", types.I8Ptr))
	dprintf.Sig.Variadic = true

	exit := g.mod.NewFunc("exit", types.Void, ir.NewParam("status", types.I32))

	msg := ir.NewParam("msg", types.I8Ptr)
	g.fail = g.mod.NewFunc("lusa.fail", types.Void, msg)
	g.fail.Linkage = enum.LinkageInternal

	b := g.fail.NewBlock("entry")
	b.NewCall(dprintf, constant.NewInt(types.I32, 2), g.str("%s\n"), msg)
	b.NewCall(exit, constant.NewInt(types.I32, 1))
	b.NewUnreachable()
}

// str returns a pointer to a NUL-terminated constant holding s.
func (g *generator) str(s string) constant.Constant {
	if ptr, ok := g.text[s]; ok {
		return ptr
	}

	data := constant.NewCharArrayFromString(s + "\x00")

	glob := g.mod.NewGlobalDef(fmt.Sprintf(".str.%d", len(g.text)), data)
	glob.Immutable = true
	glob.Linkage = enum.LinkagePrivate

	zero := constant.NewInt(types.I64, 0)
	ptr := constant.NewGetElementPtr(data.Typ, glob, zero, zero)

	g.text[s] = ptr

	return ptr
}

// newBlock appends a basic block labeled with prefix and a sequence number.
func (g *generator) newBlock(prefix string) *ir.Block {
	g.seq++

	return g.fn.NewBlock(fmt.Sprintf("%s.%d", prefix, g.seq))
}

// guard continues in a new block when ok holds and otherwise aborts with
// the message of err.
func (g *generator) guard(ok value.Value, err error) {
	pass, abort := g.newBlock("ok"), g.newBlock("fail")

	g.block.NewCondBr(ok, pass, abort)

	abort.NewCall(g.fail, g.str(err.Error()))
	abort.NewUnreachable()

	g.block = pass
}

// requireDeclared aborts unless the declaration of name has executed.
func (g *generator) requireDeclared(name string, pos lang.Position) *variable {
	v := g.vars[name]

	flag := g.block.NewLoad(types.I1, v.declared)
	g.guard(flag, lang.ErrUndeclaredVariable.At(pos).
		Wrap(fmt.Errorf("%q is not declared", name)))

	return v
}
