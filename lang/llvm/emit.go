package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ardnew/lusa/lang"
)

// stmt emits stmt into the current block. Statements were checked before
// emission, so every type assertion below holds.
func (g *generator) stmt(stmt lang.Stmt) {
	switch n := stmt.(type) {
	case *lang.Block:
		for _, s := range n.Stmts {
			g.stmt(s)
		}

	case *lang.VarDecl:
		v := g.vars[n.Name]

		flag := g.block.NewLoad(types.I1, v.declared)
		fresh := g.block.NewXor(flag, constant.True)
		g.guard(fresh, lang.ErrRedeclaredVariable.At(n.Pos).
			Wrap(fmt.Errorf("%q is already declared", n.Name)))

		g.block.NewStore(g.expr(n.Init), v.slot)
		g.block.NewStore(constant.True, v.declared)

	case *lang.Assign:
		v := g.requireDeclared(n.Name, n.Pos)

		g.block.NewStore(g.expr(n.Value), v.slot)

	case *lang.If:
		g.when(n)

	case *lang.While:
		g.loop(n)

	case *lang.Show:
		g.output(n.Value)

	case *lang.Speak:
		g.output(n.Value)

	case *lang.Ask:
		v := g.requireDeclared(n.Name, n.Pos)

		read := g.block.NewCall(g.scanf, g.str(" %lld"), v.slot)
		ok := g.block.NewICmp(enum.IPredEQ, read, constant.NewInt(types.I32, 1))
		g.guard(ok, lang.ErrInvalidInput.At(n.Pos).
			Wrap(fmt.Errorf("input is not a %s", lang.TypeNumber)))
	}
}

func (g *generator) when(n *lang.If) {
	cond := g.expr(n.Cond)

	then, done := g.newBlock("then"), g.newBlock("endif")
	otherwise := done

	if n.Else != nil {
		otherwise = g.newBlock("else")
	}

	g.block.NewCondBr(cond, then, otherwise)

	g.block = then
	g.stmt(n.Then)
	g.block.NewBr(done)

	if n.Else != nil {
		g.block = otherwise
		g.stmt(n.Else)
		g.block.NewBr(done)
	}

	g.block = done
}

func (g *generator) loop(n *lang.While) {
	head, body, done := g.newBlock("while"), g.newBlock("do"), g.newBlock("endwhile")

	g.block.NewBr(head)

	g.block = head
	g.block.NewCondBr(g.expr(n.Cond), body, done)

	g.block = body
	g.stmt(n.Body)
	g.block.NewBr(head)

	g.block = done
}

// output prints e followed by a newline the way EXIBIR renders it.
func (g *generator) output(e lang.Expr) {
	if lit, ok := e.(*lang.Literal); ok && lit.Value.Type() == lang.TypeText {
		text, _ := lit.Value.AsText()
		g.block.NewCall(g.printf, g.str("%s\n"), g.str(text))

		return
	}

	t, _ := g.typeOf(e)
	v := g.expr(e)

	if t == lang.TypeBoolean {
		word := g.block.NewSelect(v, g.str("true"), g.str("false"))
		g.block.NewCall(g.printf, g.str("%s\n"), word)

		return
	}

	g.block.NewCall(g.printf, g.str("%lld\n"), v)
}

// expr emits e and returns its value.
func (g *generator) expr(e lang.Expr) value.Value {
	switch n := e.(type) {
	case *lang.Literal:
		if b, ok := n.Value.AsBoolean(); ok {
			return constant.NewBool(b)
		}

		x, _ := n.Value.AsNumber()

		return constant.NewInt(types.I64, x)

	case *lang.Ident:
		v := g.requireDeclared(n.Name, n.Pos)

		return g.block.NewLoad(irType(v.typ), v.slot)

	case *lang.Unary:
		x := g.expr(n.Operand)
		if n.Op == lang.KindNot {
			return g.block.NewXor(x, constant.True)
		}

		return g.block.NewSub(constant.NewInt(types.I64, 0), x)

	case *lang.Binary:
		switch n.Op {
		case lang.KindAnd, lang.KindOr:
			return g.logical(n)
		case lang.KindDivide:
			return g.divide(n)
		}

		x, y := g.expr(n.Left), g.expr(n.Right)

		switch n.Op {
		case lang.KindAdd:
			return g.block.NewAdd(x, y)
		case lang.KindSubtract:
			return g.block.NewSub(x, y)
		case lang.KindMultiply:
			return g.block.NewMul(x, y)
		case lang.KindGreater:
			return g.block.NewICmp(enum.IPredSGT, x, y)
		case lang.KindLess:
			return g.block.NewICmp(enum.IPredSLT, x, y)
		default:
			return g.block.NewICmp(enum.IPredEQ, x, y)
		}
	}

	panic(fmt.Sprintf("llvm: unchecked expression %T", e))
}

// logical emits E and OU. The right operand runs only when the left one
// does not decide the result.
func (g *generator) logical(n *lang.Binary) value.Value {
	left := g.expr(n.Left)
	from := g.block

	rhs, done := g.newBlock("rhs"), g.newBlock("logic")

	if n.Op == lang.KindAnd {
		g.block.NewCondBr(left, rhs, done)
	} else {
		g.block.NewCondBr(left, done, rhs)
	}

	g.block = rhs
	right := g.expr(n.Right)
	end := g.block
	g.block.NewBr(done)

	g.block = done

	return done.NewPhi(ir.NewIncoming(left, from), ir.NewIncoming(right, end))
}

// divide emits a truncating division that aborts on a zero divisor. The
// quotient of the smallest Number by -1 wraps instead of trapping.
func (g *generator) divide(n *lang.Binary) value.Value {
	x, y := g.expr(n.Left), g.expr(n.Right)

	nonzero := g.block.NewICmp(enum.IPredNE, y, constant.NewInt(types.I64, 0))
	g.guard(nonzero, lang.ErrDivisionByZero.At(n.Pos))

	minusOne := constant.NewInt(types.I64, -1)
	isMinusOne := g.block.NewICmp(enum.IPredEQ, y, minusOne)

	divisor := g.block.NewSelect(isMinusOne, constant.NewInt(types.I64, 1), y)
	quotient := g.block.NewSDiv(x, divisor)
	negated := g.block.NewSub(constant.NewInt(types.I64, 0), x)

	return g.block.NewSelect(isMinusOne, negated, quotient)
}
