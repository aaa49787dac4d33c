package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program as canonical source to the writer.
//
// Keywords are always spelled out and parentheses appear only where the
// operator precedence requires them. With indent > 0 each statement is on
// its own line and block bodies are indented by indent spaces per level.
// With indent == 0 the whole program is written on one line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	f := &formatter{indent: indent}

	for i, stmt := range p.Stmts {
		if i > 0 {
			f.line(0)
		}

		f.stmt(stmt, 0)
	}

	f.WriteByte('\n')

	_, err := io.WriteString(w, f.String())

	return err
}

// String returns the canonical source of p indented by two spaces.
func (p *Program) String() string {
	var buf strings.Builder

	_ = p.Format(context.Background(), &buf, 2)

	return buf.String()
}

// FormatExpr returns the canonical source of an expression.
func FormatExpr(e Expr) string {
	var f formatter

	f.expr(e)

	return f.String()
}

// FormatJSON writes the syntax tree as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the syntax tree as YAML to the writer.
// With flow set, or with indent == 0, collections use flow style.
func (p *Program) FormatYAML(
	ctx context.Context,
	w io.Writer,
	indent int,
	flow bool,
) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	}

	if flow || indent <= 0 {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(yamlData)

	return err
}

type formatter struct {
	strings.Builder
	indent int
}

// line ends the current line and indents the next one to depth.
// In compact mode statements are separated by a single space.
func (f *formatter) line(depth int) {
	if f.indent <= 0 {
		f.WriteByte(' ')

		return
	}

	f.WriteByte('\n')
	f.WriteString(strings.Repeat(" ", depth*f.indent))
}

func (f *formatter) stmt(s Stmt, depth int) {
	switch n := s.(type) {
	case *Block:
		f.block(n, depth)

	case *VarDecl:
		f.WriteString("GUARDAR ")
		f.expr(n.Init)
		f.WriteString(" COMO " + n.Name + " COM " + n.Type.String() + ";")

	case *Assign:
		f.WriteString(n.Name + " RECEBE ")
		f.expr(n.Value)
		f.WriteByte(';')

	case *If:
		f.when(n, depth)

	case *While:
		f.WriteString("ENQUANTO ")
		f.expr(n.Cond)
		f.WriteByte(' ')
		f.block(n.Body, depth)

	case *Show:
		f.WriteString("EXIBIR ")
		f.expr(n.Value)
		f.WriteByte(';')

	case *Speak:
		f.WriteString("FALAR ")
		f.expr(n.Value)
		f.WriteByte(';')

	case *Ask:
		f.WriteString("PERGUNTAR " + n.Name + ";")
	}
}

// when writes an If statement. An else block holding nothing but another If
// is written as a SENAO QUANDO chain.
func (f *formatter) when(n *If, depth int) {
	f.WriteString("QUANDO ")
	f.expr(n.Cond)
	f.WriteByte(' ')
	f.block(n.Then, depth)

	if n.Else == nil {
		return
	}

	f.WriteString(" SENAO ")

	if len(n.Else.Stmts) == 1 {
		if nested, ok := n.Else.Stmts[0].(*If); ok {
			f.when(nested, depth)

			return
		}
	}

	f.block(n.Else, depth)
}

func (f *formatter) block(b *Block, depth int) {
	f.WriteString("INICIO")

	for _, stmt := range b.Stmts {
		f.line(depth + 1)
		f.stmt(stmt, depth+1)
	}

	f.line(depth)
	f.WriteString("FIM")
}

func (f *formatter) expr(e Expr) {
	switch n := e.(type) {
	case *Literal:
		f.literal(n.Value)

	case *Ident:
		f.WriteString(n.Name)

	case *Unary:
		prec := precedence(n)

		f.WriteString(n.Op.String() + " ")
		f.operand(n.Operand, precedence(n.Operand) < prec)

	case *Binary:
		prec := precedence(n)

		// Left operands of the same tier need no parentheses since the tiers
		// fold to the left. Relations do not chain, so they always do.
		left := precedence(n.Left) < prec ||
			(prec == precRelation && precedence(n.Left) == prec)

		f.operand(n.Left, left)
		f.WriteString(" " + n.Op.String() + " ")
		f.operand(n.Right, precedence(n.Right) <= prec)
	}
}

func (f *formatter) operand(e Expr, paren bool) {
	if !paren {
		f.expr(e)

		return
	}

	f.WriteByte('(')
	f.expr(e)
	f.WriteByte(')')
}

func (f *formatter) literal(v Value) {
	switch v.Type() {
	case TypeText:
		f.WriteString(`"` + v.text + `"`)

	case TypeBoolean:
		if v.flag {
			f.WriteString(lexemeTrue)
		} else {
			f.WriteString(lexemeFalse)
		}

	default:
		f.WriteString(v.String())
	}
}

// precedence returns the binding strength of an expression node.
func precedence(e Expr) int {
	switch n := e.(type) {
	case *Binary:
		return binaryPrecedence(n.Op)

	case *Unary:
		if n.Op == KindNot {
			return precNot
		}

		return precNegate

	default:
		return precPrimary
	}
}

// Print writes an indented dump of the syntax tree with source positions.
func (p *Program) Print(w io.Writer) {
	put := writer(w)

	put("\n", "Program")

	for _, stmt := range p.Stmts {
		printNode(w, stmt, 1)
	}
}

func printNode(w io.Writer, n Node, depth int) {
	prefix := strings.Repeat("  ", depth)
	put := writer(w)
	head := prefix + nodeType(n) + ": "
	pos := " @" + n.Position().String()

	switch n := n.(type) {
	case *Block:
		put("\n", prefix+nodeType(n)+pos)

		for _, stmt := range n.Stmts {
			printNode(w, stmt, depth+1)
		}

	case *VarDecl:
		put("\n", head+n.Name+" "+n.Type.String()+pos)
		printNode(w, n.Init, depth+1)

	case *Assign:
		put("\n", head+n.Name+pos)
		printNode(w, n.Value, depth+1)

	case *If:
		put("\n", prefix+nodeType(n)+pos)
		printNode(w, n.Cond, depth+1)
		printNode(w, n.Then, depth+1)

		if n.Else != nil {
			printNode(w, n.Else, depth+1)
		}

	case *While:
		put("\n", prefix+nodeType(n)+pos)
		printNode(w, n.Cond, depth+1)
		printNode(w, n.Body, depth+1)

	case *Show:
		put("\n", prefix+nodeType(n)+pos)
		printNode(w, n.Value, depth+1)

	case *Speak:
		put("\n", prefix+nodeType(n)+pos)
		printNode(w, n.Value, depth+1)

	case *Ask:
		put("\n", head+n.Name+pos)

	case *Binary:
		put("\n", head+n.Op.String()+pos)
		printNode(w, n.Left, depth+1)
		printNode(w, n.Right, depth+1)

	case *Unary:
		put("\n", head+n.Op.String()+pos)
		printNode(w, n.Operand, depth+1)

	case *Literal:
		put("\n", head+n.Value.Type().String()+" "+strconv.Quote(n.Value.String())+pos)

	case *Ident:
		put("\n", head+n.Name+pos)
	}
}

// writer returns a function that writes its arguments followed by end.
// Write errors are ignored.
func writer(w io.Writer) func(end string, args ...any) {
	return func(end string, args ...any) {
		_, _ = fmt.Fprint(w, args...)
		_, _ = fmt.Fprint(w, end)
	}
}
