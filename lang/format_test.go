package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

const sampleProgram = `// contagem regressiva
GUARDAR 3 COMO n COM NÚMERO;
GUARDAR "" COMO msg COM TEXTO;
ENQUANTO n > 0 {
  msg RECEBE msg ++ n;
  n RECEBE n - 1;
}
QUANDO NÃO (n == 0) { EXIBIR "erro"; }
SENÃO QUANDO msg IGUAL "321" { FALAR msg; }
SENÃO { PERGUNTAR msg; }
`

func format(t *testing.T, src string, indent int) string {
	t.Helper()

	prog, err := Parse(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}

	var buf bytes.Buffer
	if err := prog.Format(t.Context(), &buf, indent); err != nil {
		t.Fatalf("format error: %v", err)
	}

	return buf.String()
}

func TestFormat_Canonical(t *testing.T) {
	want := `GUARDAR 3 COMO n COM NUMERO;
GUARDAR "" COMO msg COM TEXTO;
ENQUANTO n MAIOR 0 INICIO
    msg RECEBE msg CONCATENA n;
    n RECEBE n MENOS 1;
FIM
QUANDO NAO n IGUAL 0 INICIO
    EXIBIR "erro";
FIM SENAO QUANDO msg IGUAL "321" INICIO
    FALAR msg;
FIM SENAO INICIO
    PERGUNTAR msg;
FIM
`

	if got := format(t, sampleProgram, 4); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestFormat_Compact(t *testing.T) {
	want := "GUARDAR 1 COMO x COM NUMERO; QUANDO x IGUAL 1 INICIO EXIBIR x; FIM SENAO INICIO FIM\n"

	got := format(t, "GUARDAR 1 COMO x COM NUMERO;\nQUANDO x == 1 { EXIBIR x; } SENAO { }", 0)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		sampleProgram,
		"",
		"EXIBIR MENOS (MENOS 1);",
		"EXIBIR (1 MENOR 2) IGUAL (3 MAIOR 4);",
		"EXIBIR NAO NAO (VERDADEIRO OU FALSO) E NAO FALSO;",
		"EXIBIR 1 MENOS (2 MENOS (3 MENOS 4));",
		"EXIBIR 8 DIVIDIDO (4 DIVIDIDO 2) VEZES 3;",
		"INICIO INICIO FIM FIM",
		"QUANDO a { } SENAO { QUANDO b { } EXIBIR 1; }",
		"QUANDO a { } SENAO { QUANDO b { } }",
		"EXIBIR \"várias\nlinhas\";",
	}

	for _, indent := range []int{0, 2} {
		for _, src := range inputs {
			once := format(t, src, indent)
			twice := format(t, once, indent)

			if once != twice {
				t.Errorf("not idempotent (indent %d)\nfirst:\n%s\nsecond:\n%s", indent, once, twice)
			}
		}
	}
}

func TestFormat_PreservesTree(t *testing.T) {
	prog, err := Parse(t.Context(), sampleProgram)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	again, err := Parse(t.Context(), prog.String())
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}

	if !sameTree(prog.ToMap(), again.ToMap()) {
		t.Errorf("trees differ:\n%s\n%s", prog, again)
	}
}

// sameTree compares two trees from ToMap ignoring positions.
func sameTree(a, b any) bool {
	switch a := a.(type) {
	case map[string]any:
		bm, ok := b.(map[string]any)
		if !ok || len(a) != len(bm) {
			return false
		}

		for k, v := range a {
			if k == "pos" {
				continue
			}

			if !sameTree(v, bm[k]) {
				return false
			}
		}

		return true

	case []any:
		bs, ok := b.([]any)
		if !ok || len(a) != len(bs) {
			return false
		}

		for i := range a {
			if !sameTree(a[i], bs[i]) {
				return false
			}
		}

		return true

	default:
		return a == b
	}
}

func TestFormatExpr(t *testing.T) {
	prog, err := Parse(t.Context(), `EXIBIR ("a" ++ x) == "ab" && !ok;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	got := FormatExpr(prog.Stmts[0].(*Show).Value)
	want := `"a" CONCATENA x IGUAL "ab" E NAO ok`

	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatJSON(t *testing.T) {
	prog, err := Parse(t.Context(), "GUARDAR 1 MAIS 2 COMO x COM NUMERO;")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var doc struct {
		Type       string `json:"type"`
		Statements []struct {
			Type     string `json:"type"`
			Name     string `json:"name"`
			Declared string `json:"declared"`
			Pos      string `json:"pos"`
			Init     struct {
				Op   string `json:"op"`
				Left struct {
					Value int64 `json:"value"`
				} `json:"left"`
			} `json:"init"`
		} `json:"statements"`
	}

	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if doc.Type != "Program" || len(doc.Statements) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	stmt := doc.Statements[0]
	if stmt.Type != "VarDecl" || stmt.Name != "x" || stmt.Declared != "NUMERO" ||
		stmt.Pos != "1:1" || stmt.Init.Op != "MAIS" || stmt.Init.Left.Value != 1 {
		t.Errorf("unexpected statement: %+v", stmt)
	}
}

func TestFormatYAML(t *testing.T) {
	prog, err := Parse(t.Context(), `EXIBIR "oi";`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, 2, false); err != nil {
		t.Fatalf("format error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"type: Program", "type: Show", "value: oi", "valueType: TEXTO"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected YAML to contain %q:\n%s", want, out)
		}
	}

	buf.Reset()

	if err := prog.FormatYAML(t.Context(), &buf, 2, true); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected flow style, got:\n%s", buf.String())
	}
}

func TestProgram_Print(t *testing.T) {
	prog, err := Parse(t.Context(), "GUARDAR 1 COMO x COM NUMERO;\nQUANDO x MAIOR 0 { EXIBIR x; }")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	prog.Print(&buf)

	output := buf.String()
	for _, want := range []string{
		"Program\n",
		"  VarDecl: x NUMERO @1:1\n",
		"    Literal: NUMERO \"1\" @1:9\n",
		"  If @2:1\n",
		"    Binary: MAIOR @2:10\n",
		"      Show @2:20\n",
		"        Ident: x @2:27\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output doesn't contain %q:\n%s", want, output)
		}
	}
}
