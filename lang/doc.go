// Package lang implements lusa, a small scripting language whose keywords
// are Portuguese words.
//
// A source text goes through three stages:
//
//   - [Tokens] scans it into a restartable token sequence.
//   - [Parse] builds a [Program] with a hand-written recursive descent
//     parser.
//   - [Interpreter] walks the program, reading and writing a flat
//     [Environment] of typed variables.
//
// [Run] chains the three.
//
// # Grammar
//
// Informal EBNF:
//
//	program    → statement* EOF
//	block      → INICIO statement* FIM
//	statement  → block
//	           | GUARDAR expr COMO ident COM type ';'
//	           | ident RECEBE expr ';'
//	           | EXIBIR expr ';' | FALAR expr ';'
//	           | PERGUNTAR ident ';'
//	           | QUANDO expr block (SENAO (block | QUANDO ...))?
//	           | ENQUANTO expr block
//	           | ';'
//	type       → NUMERO | BOOLEANO | TEXTO
//	expr       → and (OU and)*
//	and        → not (E not)*
//	not        → NAO not | relation
//	relation   → additive ((IGUAL | MAIOR | MENOR) additive)?
//	additive   → term ((MAIS | MENOS | CONCATENA) term)*
//	term       → unary ((VEZES | DIVIDIDO) unary)*
//	unary      → MENOS unary | primary
//	primary    → number | text | VERDADEIRO | FALSO | ident | '(' expr ')'
//
// Keywords are upper case and may carry diacritics (NÃO, SENÃO, INÍCIO,
// NÚMERO). Most operators also have a symbol spelling: { } + - ++ * / ! ==
// > < || && stand for INICIO FIM MAIS MENOS CONCATENA VEZES DIVIDIDO NAO
// IGUAL MAIOR MENOR OU E. A // starts a comment that runs to the end of the
// line.
//
// # Example
//
//	GUARDAR 3 COMO n COM NUMERO;
//	ENQUANTO n MAIOR 0 INICIO
//	  EXIBIR "faltam " CONCATENA n;
//	  n RECEBE n MENOS 1;
//	FIM
//
//	QUANDO n IGUAL 0 INICIO
//	  FALAR "pronto";
//	FIM SENAO INICIO
//	  FALAR "erro";
//	FIM
//
// # Types
//
// There are three value types: NUMERO (int64), BOOLEANO and TEXTO. Every
// variable is declared with a type that later assignments must match.
// CONCATENA accepts operands of any type and joins their renderings.
//
// # Errors
//
// [Parse] returns a [*ParseError] holding every lexical error or the first
// syntax error. Runtime errors are [*Error] values derived from the
// package sentinels, so errors.Is(err, ErrTypeMismatch) and the like hold.
package lang
