package llvm

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/lusa/lang"
)

// declareAll records the type of every declaration in stmts, including those
// nested in blocks.
func (g *generator) declareAll(stmts []lang.Stmt) error {
	for _, stmt := range stmts {
		var err error

		switch n := stmt.(type) {
		case *lang.VarDecl:
			err = g.declare(n)
		case *lang.Block:
			err = g.declareAll(n.Stmts)
		case *lang.If:
			err = g.declareAll(n.Then.Stmts)
			if err == nil && n.Else != nil {
				err = g.declareAll(n.Else.Stmts)
			}
		case *lang.While:
			err = g.declareAll(n.Body.Stmts)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (g *generator) declare(n *lang.VarDecl) error {
	if n.Type == lang.TypeText {
		return ErrUnsupported.At(n.Pos).
			Wrap(fmt.Errorf("%s variable %q", lang.TypeText, n.Name))
	}

	if v, ok := g.vars[n.Name]; ok && v.typ != n.Type {
		return ErrUnsupported.At(n.Pos).
			Wrap(fmt.Errorf("%q declared as both %s and %s", n.Name, v.typ, n.Type)).
			With(slog.String("name", n.Name))
	}

	g.vars[n.Name] = &variable{typ: n.Type}

	return nil
}

func sortedNames(vars map[string]*variable) []string {
	return slices.Sorted(maps.Keys(vars))
}

// check verifies the statement types of stmt.
func (g *generator) check(stmt lang.Stmt) error {
	switch n := stmt.(type) {
	case *lang.Block:
		return g.checkAll(n.Stmts)

	case *lang.VarDecl:
		return g.expect(n.Init, n.Type)

	case *lang.Assign:
		v, ok := g.vars[n.Name]
		if !ok {
			return lang.ErrUndeclaredVariable.At(n.Pos).
				Wrap(fmt.Errorf("%q is not declared", n.Name))
		}

		return g.expect(n.Value, v.typ)

	case *lang.If:
		if err := g.expect(n.Cond, lang.TypeBoolean); err != nil {
			return err
		}

		if err := g.checkAll(n.Then.Stmts); err != nil {
			return err
		}

		if n.Else != nil {
			return g.checkAll(n.Else.Stmts)
		}

		return nil

	case *lang.While:
		if err := g.expect(n.Cond, lang.TypeBoolean); err != nil {
			return err
		}

		return g.checkAll(n.Body.Stmts)

	case *lang.Show:
		return g.checkOutput(n.Value)

	case *lang.Speak:
		return g.checkOutput(n.Value)

	case *lang.Ask:
		v, ok := g.vars[n.Name]
		if !ok {
			return lang.ErrUndeclaredVariable.At(n.Pos).
				Wrap(fmt.Errorf("%q is not declared", n.Name))
		}

		if v.typ != lang.TypeNumber {
			return ErrUnsupported.At(n.Pos).
				Wrap(fmt.Errorf("PERGUNTAR into %s", v.typ))
		}

		return nil

	default:
		return ErrUnsupported.At(stmt.Position()).
			Wrap(fmt.Errorf("statement %T", stmt))
	}
}

func (g *generator) checkAll(stmts []lang.Stmt) error {
	for _, stmt := range stmts {
		if err := g.check(stmt); err != nil {
			return err
		}
	}

	return nil
}

// checkOutput accepts a text literal or any Number or Boolean expression.
func (g *generator) checkOutput(e lang.Expr) error {
	if isTextLiteral(e) {
		return nil
	}

	_, err := g.typeOf(e)

	return err
}

func isTextLiteral(e lang.Expr) bool {
	lit, ok := e.(*lang.Literal)

	return ok && lit.Value.Type() == lang.TypeText
}

// expect checks that e has type want.
func (g *generator) expect(e lang.Expr, want lang.Type) error {
	got, err := g.typeOf(e)
	if err != nil {
		return err
	}

	if got != want {
		return lang.ErrTypeMismatch.At(e.Position()).
			Wrap(fmt.Errorf("expected %s, found %s", want, got))
	}

	return nil
}

// typeOf returns the static type of e.
func (g *generator) typeOf(e lang.Expr) (lang.Type, error) {
	switch n := e.(type) {
	case *lang.Literal:
		if t := n.Value.Type(); t != lang.TypeText {
			return t, nil
		}

		return lang.TypeInvalid, ErrUnsupported.At(n.Pos).
			Wrap(fmt.Errorf("%s value in expression", lang.TypeText))

	case *lang.Ident:
		v, ok := g.vars[n.Name]
		if !ok {
			return lang.TypeInvalid, lang.ErrUndeclaredVariable.At(n.Pos).
				Wrap(fmt.Errorf("%q is not declared", n.Name))
		}

		return v.typ, nil

	case *lang.Unary:
		want := lang.TypeNumber
		if n.Op == lang.KindNot {
			want = lang.TypeBoolean
		}

		if err := g.operand(n.Op, n.Operand, want); err != nil {
			return lang.TypeInvalid, err
		}

		return want, nil

	case *lang.Binary:
		return g.binaryType(n)

	default:
		return lang.TypeInvalid, ErrUnsupported.At(e.Position()).
			Wrap(fmt.Errorf("expression %T", e))
	}
}

func (g *generator) binaryType(n *lang.Binary) (lang.Type, error) {
	switch n.Op {
	case lang.KindConcat:
		return lang.TypeInvalid, ErrUnsupported.At(n.Pos).
			Wrap(fmt.Errorf("%s", n.Op))

	case lang.KindAdd, lang.KindSubtract, lang.KindMultiply, lang.KindDivide:
		if err := g.operands(n, lang.TypeNumber); err != nil {
			return lang.TypeInvalid, err
		}

		return lang.TypeNumber, nil

	case lang.KindAnd, lang.KindOr:
		if err := g.operands(n, lang.TypeBoolean); err != nil {
			return lang.TypeInvalid, err
		}

		return lang.TypeBoolean, nil

	case lang.KindGreater, lang.KindLess:
		if err := g.operands(n, lang.TypeNumber); err != nil {
			return lang.TypeInvalid, err
		}

		return lang.TypeBoolean, nil

	case lang.KindEquals:
		left, err := g.typeOf(n.Left)
		if err != nil {
			return lang.TypeInvalid, err
		}

		right, err := g.typeOf(n.Right)
		if err != nil {
			return lang.TypeInvalid, err
		}

		if left != right {
			return lang.TypeInvalid, lang.ErrTypeMismatch.At(n.Pos).
				Wrap(fmt.Errorf("%s operands differ: %s and %s", n.Op, left, right))
		}

		return lang.TypeBoolean, nil

	default:
		return lang.TypeInvalid, lang.ErrUnsupportedOperator.At(n.Pos).
			Wrap(fmt.Errorf("%s", n.Op))
	}
}

func (g *generator) operands(n *lang.Binary, want lang.Type) error {
	if err := g.operand(n.Op, n.Left, want); err != nil {
		return err
	}

	return g.operand(n.Op, n.Right, want)
}

func (g *generator) operand(op lang.Kind, e lang.Expr, want lang.Type) error {
	got, err := g.typeOf(e)
	if err != nil {
		return err
	}

	if got != want {
		return lang.ErrTypeMismatch.At(e.Position()).
			Wrap(fmt.Errorf("%s requires %s, found %s", op, want, got))
	}

	return nil
}
