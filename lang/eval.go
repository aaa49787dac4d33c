package lang

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/lusa/log"
)

// Interpreter executes programs against an [Environment].
//
// Statements run strictly in order on the calling goroutine. The only point
// where an Interpreter blocks is PERGUNTAR, which waits for one line of input.
type Interpreter struct {
	env    *Environment
	in     *bufio.Reader
	out    io.Writer
	logger log.Logger
}

// NewInterpreter returns an Interpreter configured by opts.
// Without [WithEnvironment] it starts with an empty environment.
func NewInterpreter(opts ...Option) *Interpreter {
	o := applyOptions(opts...)

	return &Interpreter{
		env:    o.env,
		in:     bufio.NewReader(o.input),
		out:    o.output,
		logger: o.logger,
	}
}

// Environment returns the environment the interpreter executes against.
func (in *Interpreter) Environment() *Environment { return in.env }

// Reset discards every declared variable.
func (in *Interpreter) Reset() { in.env = NewEnvironment() }

// Run executes each statement of prog in order and stops at the first error.
// Output written by statements before the failure is kept.
func (in *Interpreter) Run(ctx context.Context, prog *Program) error {
	for _, stmt := range prog.Stmts {
		if err := in.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	in.logger.TraceContext(ctx, "run complete",
		slog.Int("statement_count", len(prog.Stmts)),
		slog.Int("variable_count", in.env.Len()))

	return nil
}

// Exec executes a single statement.
//
// If ctx is done before the statement starts, Exec returns the cause of
// the cancellation without executing anything.
func (in *Interpreter) Exec(ctx context.Context, stmt Stmt) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}

	in.logger.TraceContext(ctx, "exec statement",
		slog.String("type", nodeType(stmt)),
		slog.String("pos", stmt.Position().String()))

	switch n := stmt.(type) {
	case *Block:
		return in.execBlock(ctx, n)

	case *VarDecl:
		return in.execDeclare(ctx, n)

	case *Assign:
		v, err := in.Eval(ctx, n.Value)
		if err != nil {
			return err
		}

		in.logger.TraceContext(ctx, "assign",
			slog.String("name", n.Name),
			slog.Any("value", v.Native()))

		return at(in.env.Assign(n.Name, v), n.Pos)

	case *If:
		ok, err := in.condition(ctx, n.Cond)
		if err != nil {
			return err
		}

		switch {
		case ok:
			return in.execBlock(ctx, n.Then)
		case n.Else != nil:
			return in.execBlock(ctx, n.Else)
		default:
			return nil
		}

	case *While:
		for {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}

			ok, err := in.condition(ctx, n.Cond)
			if err != nil || !ok {
				return err
			}

			if err := in.execBlock(ctx, n.Body); err != nil {
				return err
			}
		}

	case *Show:
		return in.write(ctx, n.Value, n.Pos)

	case *Speak:
		return in.write(ctx, n.Value, n.Pos)

	case *Ask:
		return in.execAsk(ctx, n)

	default:
		return ErrUnsupportedOperator.At(stmt.Position()).
			Wrap(fmt.Errorf("cannot execute %s", nodeType(stmt)))
	}
}

func (in *Interpreter) execBlock(ctx context.Context, block *Block) error {
	for _, stmt := range block.Stmts {
		if err := in.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// execDeclare rejects a redeclaration before the initializer is evaluated so
// that its side effects are not observed.
func (in *Interpreter) execDeclare(ctx context.Context, n *VarDecl) error {
	if _, ok := in.env.Lookup(n.Name); ok {
		return at(in.env.Declare(n.Name, n.Type, Value{}), n.Pos)
	}

	v, err := in.Eval(ctx, n.Init)
	if err != nil {
		return err
	}

	in.logger.TraceContext(ctx, "declare",
		slog.String("name", n.Name),
		slog.String("type", n.Type.String()),
		slog.Any("value", v.Native()))

	return at(in.env.Declare(n.Name, n.Type, v), n.Pos)
}

func (in *Interpreter) execAsk(ctx context.Context, n *Ask) error {
	b, ok := in.env.Lookup(n.Name)
	if !ok {
		return at(undeclared(n.Name), n.Pos)
	}

	line, err := in.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return ErrReadInput.At(n.Pos).Wrap(err)
		}

		if line == "" {
			return ErrInvalidInput.At(n.Pos).
				Wrap(errors.New("end of input")).
				With(slog.String("name", n.Name))
		}
	}

	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

	v, err := convertInput(line, b.Type)
	if err != nil {
		return ErrInvalidInput.At(n.Pos).Wrap(err).
			With(
				slog.String("name", n.Name),
				slog.String("type", b.Type.String()),
			)
	}

	in.logger.TraceContext(ctx, "ask",
		slog.String("name", n.Name),
		slog.Any("value", v.Native()))

	return at(in.env.Assign(n.Name, v), n.Pos)
}

// convertInput converts one line of input to a value of type t.
func convertInput(line string, t Type) (Value, error) {
	switch t {
	case TypeNumber:
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a %s", line, t)
		}

		return Number(n), nil

	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "verdadeiro", "true", "sim", "1":
			return Boolean(true), nil
		case "falso", "false", "nao", "não", "0":
			return Boolean(false), nil
		default:
			return Value{}, fmt.Errorf("%q is not a %s", line, t)
		}

	case TypeText:
		return Text(line), nil

	default:
		return Value{}, fmt.Errorf("cannot convert input to %s", t)
	}
}

func (in *Interpreter) write(ctx context.Context, expr Expr, pos Position) error {
	v, err := in.Eval(ctx, expr)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(in.out, v.String()); err != nil {
		return ErrWriteOutput.At(pos).Wrap(err)
	}

	return nil
}

// condition evaluates the condition of QUANDO or ENQUANTO.
func (in *Interpreter) condition(ctx context.Context, expr Expr) (bool, error) {
	v, err := in.Eval(ctx, expr)
	if err != nil {
		return false, err
	}

	ok, isBool := v.AsBoolean()
	if !isBool {
		return false, ErrTypeMismatch.At(expr.Position()).
			Wrap(fmt.Errorf("condition must be %s, found %s", TypeBoolean, v.Type()))
	}

	return ok, nil
}

// Eval evaluates an expression against the current environment.
func (in *Interpreter) Eval(ctx context.Context, expr Expr) (Value, error) {
	switch n := expr.(type) {
	case *Literal:
		return n.Value, nil

	case *Ident:
		v, err := in.env.Get(n.Name)

		return v, at(err, n.Pos)

	case *Unary:
		return in.evalUnary(ctx, n)

	case *Binary:
		if n.Op == KindAnd || n.Op == KindOr {
			return in.evalLogical(ctx, n)
		}

		return in.evalBinary(ctx, n)

	default:
		return Value{}, ErrUnsupportedOperator.At(expr.Position()).
			Wrap(fmt.Errorf("cannot evaluate %s", nodeType(expr)))
	}
}

func (in *Interpreter) evalUnary(ctx context.Context, n *Unary) (Value, error) {
	v, err := in.Eval(ctx, n.Operand)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case KindSubtract:
		x, ok := v.AsNumber()
		if !ok {
			return Value{}, operandMismatch(n.Op, n.Pos, TypeNumber, v)
		}

		return Number(-x), nil

	case KindNot:
		b, ok := v.AsBoolean()
		if !ok {
			return Value{}, operandMismatch(n.Op, n.Pos, TypeBoolean, v)
		}

		return Boolean(!b), nil

	default:
		return Value{}, unsupported(n.Op, n.Pos, v.Type())
	}
}

// evalLogical evaluates E and OU. The right operand is evaluated only when
// the left one does not decide the result.
func (in *Interpreter) evalLogical(ctx context.Context, n *Binary) (Value, error) {
	left, err := in.Eval(ctx, n.Left)
	if err != nil {
		return Value{}, err
	}

	l, ok := left.AsBoolean()
	if !ok {
		return Value{}, operandMismatch(n.Op, n.Pos, TypeBoolean, left)
	}

	if (n.Op == KindAnd && !l) || (n.Op == KindOr && l) {
		return left, nil
	}

	right, err := in.Eval(ctx, n.Right)
	if err != nil {
		return Value{}, err
	}

	if _, ok := right.AsBoolean(); !ok {
		return Value{}, operandMismatch(n.Op, n.Pos, TypeBoolean, right)
	}

	return right, nil
}

func (in *Interpreter) evalBinary(ctx context.Context, n *Binary) (Value, error) {
	left, err := in.Eval(ctx, n.Left)
	if err != nil {
		return Value{}, err
	}

	right, err := in.Eval(ctx, n.Right)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case KindConcat:
		return Text(left.String() + right.String()), nil

	case KindAdd, KindSubtract, KindMultiply, KindDivide:
		return arithmetic(n, left, right)

	case KindEquals, KindGreater, KindLess:
		return compare(n, left, right)

	default:
		return Value{}, unsupported(n.Op, n.Pos, left.Type())
	}
}

// arithmetic applies a Number operator. Results wrap on overflow and
// division truncates toward zero.
func arithmetic(n *Binary, left, right Value) (Value, error) {
	x, ok := left.AsNumber()
	if !ok {
		return Value{}, operandMismatch(n.Op, n.Pos, TypeNumber, left)
	}

	y, ok := right.AsNumber()
	if !ok {
		return Value{}, operandMismatch(n.Op, n.Pos, TypeNumber, right)
	}

	switch n.Op {
	case KindAdd:
		return Number(x + y), nil
	case KindSubtract:
		return Number(x - y), nil
	case KindMultiply:
		return Number(x * y), nil
	default:
		if y == 0 {
			return Value{}, ErrDivisionByZero.At(n.Pos).
				With(slog.Int64("dividend", x))
		}

		return Number(x / y), nil
	}
}

func compare(n *Binary, left, right Value) (Value, error) {
	if left.Type() != right.Type() {
		return Value{}, ErrTypeMismatch.At(n.Pos).
			Wrap(fmt.Errorf("%s operands differ: %s and %s",
				n.Op, left.Type(), right.Type()))
	}

	if n.Op == KindEquals {
		return Boolean(left.Equal(right)), nil
	}

	x, ok := left.AsNumber()
	if !ok {
		return Value{}, unsupported(n.Op, n.Pos, left.Type())
	}

	y, _ := right.AsNumber()

	if n.Op == KindGreater {
		return Boolean(x > y), nil
	}

	return Boolean(x < y), nil
}

func operandMismatch(op Kind, pos Position, want Type, v Value) *Error {
	return ErrTypeMismatch.At(pos).
		Wrap(fmt.Errorf("%s requires %s, found %s", op, want, v.Type())).
		With(
			slog.String("operator", op.String()),
			slog.String("actual", v.Type().String()),
		)
}

func unsupported(op Kind, pos Position, t Type) *Error {
	return ErrUnsupportedOperator.At(pos).
		Wrap(fmt.Errorf("%s is not defined for %s", op, t)).
		With(slog.String("operator", op.String()))
}

// at ties a position-less *Error to pos. Any other error is returned as is.
func at(err error, pos Position) error {
	var e *Error
	if errors.As(err, &e) && !e.pos.IsValid() {
		return e.At(pos)
	}

	return err
}
