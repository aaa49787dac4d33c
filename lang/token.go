package lang

import (
	"strconv"
)

// Kind identifies the lexical class of a [Token].
type Kind uint8

const (
	KindInvalid Kind = iota // invalid
	KindEOF                 // end of input
	KindIdent               // identifier
	KindNumber              // number
	KindText                // text
	KindBoolean             // boolean

	KindBegin // INICIO
	KindEnd   // FIM
	KindSave  // GUARDAR
	KindAs    // COMO
	KindWith  // COM
	KindShow  // EXIBIR
	KindAsk   // PERGUNTAR
	KindSpeak // FALAR
	KindWhen  // QUANDO
	KindElse  // SENAO
	KindWhile // ENQUANTO

	KindAdd      // MAIS
	KindSubtract // MENOS
	KindConcat   // CONCATENA
	KindMultiply // VEZES
	KindDivide   // DIVIDIDO
	KindNot      // NAO
	KindAssign   // RECEBE
	KindEquals   // IGUAL
	KindGreater  // MAIOR
	KindLess     // MENOR
	KindOr       // OU
	KindAnd      // E

	KindNumberType  // NUMERO
	KindBooleanType // BOOLEANO
	KindTextType    // TEXTO

	KindLeftParen  // (
	KindRightParen // )
	KindTerminator // ;

	kindCount
)

var kindName = [kindCount]string{
	KindInvalid:     "invalid",
	KindEOF:         "end of input",
	KindIdent:       "identifier",
	KindNumber:      "number",
	KindText:        "text",
	KindBoolean:     "boolean",
	KindBegin:       "INICIO",
	KindEnd:         "FIM",
	KindSave:        "GUARDAR",
	KindAs:          "COMO",
	KindWith:        "COM",
	KindShow:        "EXIBIR",
	KindAsk:         "PERGUNTAR",
	KindSpeak:       "FALAR",
	KindWhen:        "QUANDO",
	KindElse:        "SENAO",
	KindWhile:       "ENQUANTO",
	KindAdd:         "MAIS",
	KindSubtract:    "MENOS",
	KindConcat:      "CONCATENA",
	KindMultiply:    "VEZES",
	KindDivide:      "DIVIDIDO",
	KindNot:         "NAO",
	KindAssign:      "RECEBE",
	KindEquals:      "IGUAL",
	KindGreater:     "MAIOR",
	KindLess:        "MENOR",
	KindOr:          "OU",
	KindAnd:         "E",
	KindNumberType:  "NUMERO",
	KindBooleanType: "BOOLEANO",
	KindTextType:    "TEXTO",
	KindLeftParen:   "(",
	KindRightParen:  ")",
	KindTerminator:  ";",
}

// String returns the canonical lexeme of keyword and punctuation kinds, or a
// short description of the other kinds.
func (k Kind) String() string {
	if k < kindCount {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsKeyword reports whether k is spelled by a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KindBegin && k <= KindTextType
}

// Type returns the value type named by a type keyword.
func (k Kind) Type() Type {
	switch k {
	case KindNumberType:
		return TypeNumber
	case KindBooleanType:
		return TypeBoolean
	case KindTextType:
		return TypeText
	default:
		return TypeInvalid
	}
}

// keywords maps each reserved word to its kind. Boolean literals are handled
// separately by the lexer since they carry a value.
var keywords = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)

	for k := KindBegin; k <= KindTextType; k++ {
		m[kindName[k]] = k
	}

	return m
}()

// symbols maps the punctuation and operator aliases to their kinds.
// Two-rune symbols are matched before single runes.
var symbols = map[string]Kind{
	"{":  KindBegin,
	"}":  KindEnd,
	"+":  KindAdd,
	"-":  KindSubtract,
	"++": KindConcat,
	"*":  KindMultiply,
	"/":  KindDivide,
	"!":  KindNot,
	"==": KindEquals,
	">":  KindGreater,
	"<":  KindLess,
	"||": KindOr,
	"&&": KindAnd,
	"(":  KindLeftParen,
	")":  KindRightParen,
	";":  KindTerminator,
}

const (
	lexemeTrue  = "VERDADEIRO"
	lexemeFalse = "FALSO"
)

// Keywords returns every reserved word, including the boolean literals.
func Keywords() []string {
	words := make([]string, 0, len(keywords)+2)

	for k := KindBegin; k <= KindTextType; k++ {
		words = append(words, kindName[k])
	}

	return append(words, lexemeTrue, lexemeFalse)
}

// Position is a location in source text.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether p refers to a location in source.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a lexical unit of source text.
type Token struct {
	Kind   Kind
	Lexeme string
	// Literal holds the decoded value of number, text and boolean tokens.
	Literal Value
	Pos     Position
	// Err describes why a KindInvalid token was rejected.
	Err error
}

func (t Token) describe() string {
	switch t.Kind {
	case KindEOF:
		return t.Kind.String()
	case KindText:
		return t.Kind.String() + " " + t.Lexeme
	case KindIdent, KindNumber, KindBoolean:
		return t.Kind.String() + " " + strconv.Quote(t.Lexeme)
	default:
		return strconv.Quote(t.Lexeme)
	}
}
