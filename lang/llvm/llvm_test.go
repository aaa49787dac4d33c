package llvm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lusa/lang"
)

func generate(t *testing.T, src string) (string, error) {
	t.Helper()

	prog, err := lang.Parse(t.Context(), src)
	require.NoError(t, err)

	var buf bytes.Buffer

	err = Write(t.Context(), &buf, prog)

	return buf.String(), err
}

func TestGenerate_Main(t *testing.T) {
	src := `
GUARDAR 10 COMO n COM NUMERO;
GUARDAR VERDADEIRO COMO ok COM BOOLEANO;
ENQUANTO (n MAIOR 0) INICIO
	QUANDO (ok E (n DIVIDIDO 2 VEZES 2 IGUAL n)) INICIO
		EXIBIR n;
	FIM SENAO INICIO
		FALAR "impar";
	FIM
	n RECEBE n MENOS 1;
FIM
EXIBIR NAO ok;
`

	out, err := generate(t, src)
	require.NoError(t, err)

	for _, want := range []string{
		"define i32 @main()",
		"declare i32 @printf(",
		"declare i32 @scanf(",
		"%var.n = alloca i64",
		"%var.ok = alloca i1",
		"sdiv i64",
		"icmp sgt i64",
		"phi i1",
		"ret i32 0",
		`c"impar\00"`,
		`c"%lld\0A\00"`,
		`c"true\00"`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestGenerate_TextInterned(t *testing.T) {
	out, err := generate(t, `EXIBIR "ola"; FALAR "ola";`)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, `c"ola\00"`))
}

func TestGenerate_RuntimeChecks(t *testing.T) {
	out, err := generate(t, `
GUARDAR 0 COMO n COM NUMERO;
PERGUNTAR n;
EXIBIR 10 DIVIDIDO n;
`)
	require.NoError(t, err)

	assert.Contains(t, out, "@scanf(i8* getelementptr")
	assert.Contains(t, out, "division by zero")
	assert.Contains(t, out, "invalid input conversion")
	assert.Contains(t, out, `already declared`)
	assert.Contains(t, out, "@exit(i32 1)")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"text_variable", `GUARDAR "a" COMO s COM TEXTO;`, ErrUnsupported},
		{"concat", `EXIBIR 1 CONCATENA 2;`, ErrUnsupported},
		{"text_operand", `EXIBIR "a" IGUAL "a";`, ErrUnsupported},
		{"ask_boolean", `GUARDAR FALSO COMO b COM BOOLEANO; PERGUNTAR b;`, ErrUnsupported},
		{"conflicting_types", `QUANDO (VERDADEIRO) INICIO GUARDAR 1 COMO x COM NUMERO; FIM SENAO INICIO GUARDAR FALSO COMO x COM BOOLEANO; FIM`, ErrUnsupported},
		{"undeclared", `EXIBIR y;`, lang.ErrUndeclaredVariable},
		{"undeclared_assign", `y RECEBE 1;`, lang.ErrUndeclaredVariable},
		{"declare_mismatch", `GUARDAR VERDADEIRO COMO n COM NUMERO;`, lang.ErrTypeMismatch},
		{"assign_mismatch", `GUARDAR 1 COMO n COM NUMERO; n RECEBE FALSO;`, lang.ErrTypeMismatch},
		{"condition", `QUANDO (1) INICIO EXIBIR 1; FIM`, lang.ErrTypeMismatch},
		{"arithmetic", `EXIBIR 1 MAIS VERDADEIRO;`, lang.ErrTypeMismatch},
		{"equals", `EXIBIR 1 IGUAL FALSO;`, lang.ErrTypeMismatch},
		{"not", `EXIBIR NAO 1;`, lang.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := generate(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, out)
		})
	}
}

func TestGenerate_SameTypeRedeclaration(t *testing.T) {
	src := `
QUANDO (VERDADEIRO) INICIO GUARDAR 1 COMO x COM NUMERO; FIM
SENAO INICIO GUARDAR 2 COMO x COM NUMERO; FIM
EXIBIR x;
`

	mod, err := Generate(t.Context(), mustParse(t, src))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(mod.String(), "%var.x = alloca i64"))
}

func TestGenerate_Empty(t *testing.T) {
	mod, err := Generate(t.Context(), &lang.Program{})
	require.NoError(t, err)

	main := mod.Funcs[len(mod.Funcs)-1]
	assert.Equal(t, "main", main.Name())
	assert.Len(t, main.Blocks, 2)
}

func mustParse(t *testing.T, src string) *lang.Program {
	t.Helper()

	prog, err := lang.Parse(t.Context(), src)
	require.NoError(t, err)

	return prog
}
