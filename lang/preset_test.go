package lang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset(" n = 2*21 ")
	require.NoError(t, err)
	assert.Equal(t, Preset{Name: "n", Source: "2*21"}, p)
	assert.Equal(t, "n=2*21", p.String())

	for _, bad := range []string{"n", "=1", "GUARDAR=1", "1x=1", "n="} {
		_, err := ParsePreset(bad)
		assert.ErrorIs(t, err, ErrInvalidPreset, "preset %q", bad)
	}

	var q Preset
	require.NoError(t, q.UnmarshalText([]byte(`saudacao="olá"`)))
	assert.Equal(t, "saudacao", q.Name)
}

func TestPresetEval(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("base", TypeNumber, Number(40)))

	cases := []struct {
		source string
		expect Value
	}{
		{"2*21", Number(42)},
		{"base + 2", Number(42)},
		{`"a" + "b"`, Text("ab")},
		{"1 < 2", Boolean(true)},
		{"VERDADEIRO && !FALSO", Boolean(true)},
		{"len('abc')", Number(3)},
	}

	for _, c := range cases {
		v, err := Preset{Name: "p", Source: c.source}.Eval(env)
		require.NoError(t, err, "source %q", c.source)
		assert.Equal(t, c.expect, v, "source %q", c.source)
	}

	for _, bad := range []string{"1.5", "[1, 2]", "nada + 1", "1 +"} {
		_, err := Preset{Name: "p", Source: bad}.Eval(env)
		assert.ErrorIs(t, err, ErrInvalidPreset, "source %q", bad)
	}
}

func TestDeclarePresets(t *testing.T) {
	env := NewEnvironment()

	presets := []Preset{
		{Name: "b", Source: "a * 2"},
		{Name: "a", Source: "21"},
		{Name: "c", Source: `"b=" + string(b)`},
	}

	require.NoError(t, DeclarePresets(t.Context(), env, presets))

	assert.Equal(t, []string{"a", "b", "c"}, env.Names())

	b, ok := env.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, Binding{Type: TypeNumber, Value: Number(42)}, b)

	c, _ := env.Get("c")
	assert.Equal(t, Text("b=42"), c)

	err := DeclarePresets(t.Context(), env, []Preset{{Name: "a", Source: "1"}})
	assert.True(t, errors.Is(err, ErrRedeclaredVariable))
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(7)
	require.NoError(t, err)
	assert.Equal(t, Number(7), v)

	v, err = ValueOf(int64(-7))
	require.NoError(t, err)
	assert.Equal(t, Number(-7), v)

	v, err = ValueOf(true)
	require.NoError(t, err)
	assert.Equal(t, Boolean(true), v)

	v, err = ValueOf("x")
	require.NoError(t, err)
	assert.Equal(t, Text("x"), v)

	_, err = ValueOf(1.5)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
