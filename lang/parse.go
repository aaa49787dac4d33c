package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/lusa/log"
)

// ParseReader parses a [Program] from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Parse parses a [Program] from source text.
//
// If src contains lexical errors, all of them are returned in a
// [*ParseError] and no parsing is attempted. Otherwise parsing stops at the
// first syntax error.
func Parse(ctx context.Context, src string, opts ...Option) (*Program, error) {
	o := applyOptions(opts...)

	o.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(src)))

	p := &parser{logger: o.logger}

	var lexical []*Error

	for tok := range Tokens(src) {
		if tok.Kind == KindInvalid {
			reason := tok.Err
			if !errors.Is(reason, errUnterminated) {
				reason = fmt.Errorf("%w %q", tok.Err, tok.Lexeme)
			}

			lexical = append(lexical, ErrLexical.At(tok.Pos).Wrap(reason))

			continue
		}

		p.tokens = append(p.tokens, tok)
	}

	o.logger.TraceContext(ctx, "lex complete",
		slog.Int("token_count", len(p.tokens)),
		slog.Int("error_count", len(lexical)))

	if len(lexical) > 0 {
		return nil, &ParseError{Diagnostics: lexical, Source: src}
	}

	prog, err := p.parseProgram()
	if err != nil {
		return nil, &ParseError{Diagnostics: []*Error{WrapError(err)}, Source: src}
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(prog.Stmts)))

	return prog, nil
}

// parser holds the parser state: a cursor over the materialized tokens of
// one source text. The token slice always ends with [KindEOF].
type parser struct {
	tokens []Token
	pos    int
	logger log.Logger
}

// parseProgram parses: { statement } EOF.
func (p *parser) parseProgram() (*Program, error) {
	prog := new(Program)

	for {
		p.skipTerminators()

		if p.at(KindEOF) {
			return prog, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		prog.Stmts = append(prog.Stmts, stmt)
	}
}

// parseBlock parses: Begin { statement } End.
func (p *parser) parseBlock() (*Block, error) {
	open, err := p.expect(KindBegin, "INICIO")
	if err != nil {
		return nil, err
	}

	block := &Block{Pos: open.Pos}

	for {
		p.skipTerminators()

		if p.accept(KindEnd) {
			return block, nil
		}

		if p.at(KindEOF) {
			return nil, p.unexpected("FIM")
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		block.Stmts = append(block.Stmts, stmt)
	}
}

func (p *parser) parseStatement() (Stmt, error) {
	switch tok := p.peek(); tok.Kind {
	case KindBegin:
		return p.parseBlock()

	case KindSave:
		return p.parseDeclaration()

	case KindIdent:
		return p.parseAssignment()

	case KindShow, KindSpeak:
		p.next()

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := p.terminator(); err != nil {
			return nil, err
		}

		if tok.Kind == KindSpeak {
			return &Speak{Value: value, Pos: tok.Pos}, nil
		}

		return &Show{Value: value, Pos: tok.Pos}, nil

	case KindAsk:
		p.next()

		name, err := p.expect(KindIdent, "identifier")
		if err != nil {
			return nil, err
		}

		if err := p.terminator(); err != nil {
			return nil, err
		}

		return &Ask{Name: name.Lexeme, Pos: tok.Pos}, nil

	case KindWhen:
		return p.parseWhen()

	case KindWhile:
		p.next()

		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		return &While{Cond: cond, Body: body, Pos: tok.Pos}, nil

	default:
		return nil, p.unexpected("statement")
	}
}

// parseDeclaration parses: GUARDAR expr COMO ident COM type ";".
func (p *parser) parseDeclaration() (Stmt, error) {
	save := p.next()

	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindAs, "COMO"); err != nil {
		return nil, err
	}

	name, err := p.expect(KindIdent, "identifier")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindWith, "COM"); err != nil {
		return nil, err
	}

	typ := p.peek().Kind.Type()
	if typ == TypeInvalid {
		return nil, p.unexpected("NUMERO, BOOLEANO or TEXTO")
	}

	p.next()

	if err := p.terminator(); err != nil {
		return nil, err
	}

	return &VarDecl{Name: name.Lexeme, Type: typ, Init: init, Pos: save.Pos}, nil
}

// parseAssignment parses: ident RECEBE expr ";".
func (p *parser) parseAssignment() (Stmt, error) {
	name := p.next()

	if _, err := p.expect(KindAssign, "RECEBE"); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.terminator(); err != nil {
		return nil, err
	}

	return &Assign{Name: name.Lexeme, Value: value, Pos: name.Pos}, nil
}

// parseWhen parses: QUANDO expr block [ SENAO ( block | when ) ].
func (p *parser) parseWhen() (Stmt, error) {
	when := p.next()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &If{Cond: cond, Then: then, Pos: when.Pos}

	if !p.at(KindElse) {
		return stmt, nil
	}

	p.next()

	if p.at(KindWhen) {
		pos := p.peek().Pos

		nested, err := p.parseWhen()
		if err != nil {
			return nil, err
		}

		stmt.Else = &Block{Stmts: []Stmt{nested}, Pos: pos}

		return stmt, nil
	}

	stmt.Else, err = p.parseBlock()
	if err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

// parseOr parses: and { OU and }.
func (p *parser) parseOr() (Expr, error) {
	return p.parseLeftAssoc(p.parseAnd, KindOr)
}

// parseAnd parses: not { E not }.
func (p *parser) parseAnd() (Expr, error) {
	return p.parseLeftAssoc(p.parseNot, KindAnd)
}

// parseNot parses: NAO not | relation.
func (p *parser) parseNot() (Expr, error) {
	if !p.at(KindNot) {
		return p.parseRelation()
	}

	op := p.next()

	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	return &Unary{Op: KindNot, Operand: operand, Pos: op.Pos}, nil
}

// parseRelation parses: additive [ ( IGUAL | MAIOR | MENOR ) additive ].
// A second relational operator is rejected.
func (p *parser) parseRelation() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if binaryPrecedence(p.peek().Kind) != precRelation {
		return left, nil
	}

	op := p.next()

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if binaryPrecedence(p.peek().Kind) == precRelation {
		return nil, p.fail(p.peek(), "relational operators do not chain",
			slog.String("expected", "end of relation"))
	}

	return &Binary{Op: op.Kind, Left: left, Right: right, Pos: op.Pos}, nil
}

// parseAdditive parses: term { ( MAIS | MENOS | CONCATENA ) term }.
func (p *parser) parseAdditive() (Expr, error) {
	return p.parseLeftAssoc(p.parseTerm, KindAdd, KindSubtract, KindConcat)
}

// parseTerm parses: unary { ( VEZES | DIVIDIDO ) unary }.
func (p *parser) parseTerm() (Expr, error) {
	return p.parseLeftAssoc(p.parseUnary, KindMultiply, KindDivide)
}

// parseUnary parses: MENOS unary | primary.
func (p *parser) parseUnary() (Expr, error) {
	if !p.at(KindSubtract) {
		return p.parsePrimary()
	}

	op := p.next()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &Unary{Op: KindSubtract, Operand: operand, Pos: op.Pos}, nil
}

// parsePrimary parses: number | text | boolean | ident | "(" expr ")".
func (p *parser) parsePrimary() (Expr, error) {
	switch tok := p.peek(); tok.Kind {
	case KindNumber, KindText, KindBoolean:
		p.next()

		return &Literal{Value: tok.Literal, Pos: tok.Pos}, nil

	case KindIdent:
		p.next()

		return &Ident{Name: tok.Lexeme, Pos: tok.Pos}, nil

	case KindLeftParen:
		p.next()

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(KindRightParen, ")"); err != nil {
			return nil, err
		}

		return inner, nil

	default:
		return nil, p.unexpected("expression")
	}
}

// parseLeftAssoc parses: operand { op operand } for any op in ops, folding
// to the left.
func (p *parser) parseLeftAssoc(
	operand func() (Expr, error),
	ops ...Kind,
) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for p.atAny(ops...) {
		op := p.next()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: op.Kind, Left: left, Right: right, Pos: op.Pos}
	}

	return left, nil
}

// Helper methods

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]

	if tok.Kind != KindEOF {
		p.pos++
	}

	return tok
}

func (p *parser) at(kind Kind) bool {
	return p.peek().Kind == kind
}

func (p *parser) atAny(kinds ...Kind) bool {
	for _, kind := range kinds {
		if p.at(kind) {
			return true
		}
	}

	return false
}

func (p *parser) accept(kind Kind) bool {
	if p.at(kind) {
		p.next()

		return true
	}

	return false
}

func (p *parser) expect(kind Kind, what string) (Token, error) {
	if !p.at(kind) {
		return Token{}, p.unexpected(what)
	}

	return p.next(), nil
}

func (p *parser) terminator() error {
	_, err := p.expect(KindTerminator, `";"`)

	return err
}

func (p *parser) skipTerminators() {
	for p.accept(KindTerminator) {
	}
}

// unexpected reports the current token as not matching the expected construct.
func (p *parser) unexpected(expected string) *Error {
	tok := p.peek()

	return p.fail(tok,
		fmt.Sprintf("expected %s, found %s", expected, tok.describe()),
		slog.String("expected", expected))
}

func (p *parser) fail(tok Token, reason string, attrs ...slog.Attr) *Error {
	return ErrSyntax.At(tok.Pos).
		Wrap(errors.New(reason)).
		With(append(attrs, slog.String("found", tok.Lexeme))...)
}
