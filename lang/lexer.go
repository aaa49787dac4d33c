package lang

import (
	"errors"
	"iter"
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Reasons attached to [KindInvalid] tokens.
var (
	errUnexpectedChar  = errors.New("unexpected character")
	errMalformedNumber = errors.New("malformed number")
	errNumberRange     = errors.New("number out of range")
	errUnterminated    = errors.New("unterminated text literal")
)

// Tokens returns the token sequence of src.
//
// The sequence always ends with a single [KindEOF] token. Characters that
// match no rule produce [KindInvalid] tokens and scanning continues after
// them. Each range over the sequence scans src from the beginning.
func Tokens(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		lx := lexer{src: src, line: 1, col: 1}

		for {
			tok := lx.next()
			if !yield(tok) || tok.Kind == KindEOF {
				return
			}
		}
	}
}

// IsIdentifier reports whether s is spelled as a single identifier that is
// not a reserved word.
func IsIdentifier(s string) bool {
	n := 0

	for tok := range Tokens(s) {
		switch {
		case tok.Kind == KindEOF:
			return n == 1
		case tok.Kind != KindIdent || n > 0:
			return false
		}

		n++
	}

	return false
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func (lx *lexer) next() Token {
	lx.skipWhitespaceAndComments()

	pos := lx.position()

	if lx.eof() {
		return Token{Kind: KindEOF, Pos: pos}
	}

	switch r := lx.peek(); {
	case isDigit(r):
		return lx.number(pos)
	case isIdentifierStart(r):
		return lx.word(pos)
	case r == '"':
		return lx.text(pos)
	default:
		return lx.symbol(pos)
	}
}

func (lx *lexer) number(pos Position) Token {
	for !lx.eof() && isDigit(lx.peek()) {
		lx.advance()
	}

	if !lx.eof() && isIdentifierContinue(lx.peek()) {
		for !lx.eof() && isIdentifierContinue(lx.peek()) {
			lx.advance()
		}

		return lx.invalid(pos, errMalformedNumber)
	}

	lexeme := lx.src[pos.Offset:lx.pos]

	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return lx.invalid(pos, errNumberRange)
	}

	return Token{Kind: KindNumber, Lexeme: lexeme, Literal: Number(n), Pos: pos}
}

func (lx *lexer) word(pos Position) Token {
	for !lx.eof() && isIdentifierContinue(lx.peek()) {
		lx.advance()
	}

	lexeme := lx.src[pos.Offset:lx.pos]
	tok := Token{Kind: KindIdent, Lexeme: lexeme, Pos: pos}

	switch key := keywordKey(lexeme); key {
	case lexemeTrue:
		tok.Kind, tok.Literal = KindBoolean, Boolean(true)
	case lexemeFalse:
		tok.Kind, tok.Literal = KindBoolean, Boolean(false)
	default:
		if kind, ok := keywords[key]; ok {
			tok.Kind = kind
		}
	}

	return tok
}

func (lx *lexer) text(pos Position) Token {
	lx.advance() // opening quote

	start := lx.pos

	for !lx.eof() {
		if lx.peek() == '"' {
			body := lx.src[start:lx.pos]

			lx.advance()

			return Token{
				Kind:    KindText,
				Lexeme:  lx.src[pos.Offset:lx.pos],
				Literal: Text(body),
				Pos:     pos,
			}
		}

		lx.advance()
	}

	return lx.invalid(pos, errUnterminated)
}

func (lx *lexer) symbol(pos Position) Token {
	if lx.pos+2 <= len(lx.src) {
		if kind, ok := symbols[lx.src[lx.pos:lx.pos+2]]; ok {
			lx.advance()
			lx.advance()

			return Token{Kind: kind, Lexeme: lx.src[pos.Offset:lx.pos], Pos: pos}
		}
	}

	lx.advance()

	lexeme := lx.src[pos.Offset:lx.pos]
	if kind, ok := symbols[lexeme]; ok {
		return Token{Kind: kind, Lexeme: lexeme, Pos: pos}
	}

	return lx.invalid(pos, errUnexpectedChar)
}

func (lx *lexer) invalid(pos Position, reason error) Token {
	return Token{
		Kind:   KindInvalid,
		Lexeme: lx.src[pos.Offset:lx.pos],
		Pos:    pos,
		Err:    reason,
	}
}

func (lx *lexer) peek() rune {
	if lx.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])

	return r
}

func (lx *lexer) advance() {
	if lx.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])

	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
}

func (lx *lexer) eof() bool {
	return lx.pos >= len(lx.src)
}

func (lx *lexer) position() Position {
	return Position{Offset: lx.pos, Line: lx.line, Column: lx.col}
}

func (lx *lexer) skipWhitespaceAndComments() {
	for !lx.eof() {
		switch r := lx.peek(); {
		case unicode.IsSpace(r):
			lx.advance()

		case r == '/' && len(lx.src) > lx.pos+1 && lx.src[lx.pos+1] == '/':
			for !lx.eof() && lx.peek() != '\n' {
				lx.advance()
			}

		default:
			return
		}
	}
}

// keywordKey returns the spelling of word used for keyword lookup.
// Diacritics are removed so that NÃO and NAO name the same keyword.
func keywordKey(word string) string {
	if isASCII(word) {
		return word
	}

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	key, _, err := transform.String(fold, word)
	if err != nil {
		return word
	}

	return key
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
	) || r == '_'
}
