package lang

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"
)

// Preset is a variable declared from an expression before a program runs.
//
// Source is compiled and run by expr-lang. The variables already declared
// in the target environment are visible to it by name, and the boolean
// literals VERDADEIRO and FALSO may be used in place of true and false.
type Preset struct {
	Name   string
	Source string
}

// ParsePreset parses a preset of the form "name=expression".
func ParsePreset(s string) (Preset, error) {
	name, source, ok := strings.Cut(s, "=")
	if !ok {
		return Preset{}, ErrInvalidPreset.
			Wrap(fmt.Errorf("%q: missing '='", s))
	}

	p := Preset{
		Name:   strings.TrimSpace(name),
		Source: strings.TrimSpace(source),
	}

	if !IsIdentifier(p.Name) {
		return Preset{}, ErrInvalidPreset.
			Wrap(fmt.Errorf("%q is not an identifier", p.Name))
	}

	if p.Source == "" {
		return Preset{}, ErrInvalidPreset.
			Wrap(fmt.Errorf("%q: empty expression", p.Name))
	}

	return p, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Preset) UnmarshalText(text []byte) error {
	parsed, err := ParsePreset(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// String returns p in the form accepted by [ParsePreset].
func (p Preset) String() string { return p.Name + "=" + p.Source }

// Eval compiles and runs the preset expression against the bindings of env.
func (p Preset) Eval(env *Environment) (Value, error) {
	vars := make(map[string]any, env.Len())
	for name, b := range env.All() {
		vars[name] = b.Value.Native()
	}

	program, err := expr.Compile(p.Source,
		expr.Env(vars),
		expr.Patch(literalPatcher{}),
	)
	if err != nil {
		return Value{}, ErrInvalidPreset.Wrap(err).
			With(slog.String("preset", p.String()))
	}

	result, err := vm.Run(program, vars)
	if err != nil {
		return Value{}, ErrInvalidPreset.Wrap(err).
			With(slog.String("preset", p.String()))
	}

	v, err := ValueOf(result)
	if err != nil {
		return Value{}, ErrInvalidPreset.Wrap(err).
			With(slog.String("preset", p.String()))
	}

	return v, nil
}

// DeclarePresets declares every preset in env in name order, so that each
// preset can refer to the ones whose names sort before it.
func DeclarePresets(
	ctx context.Context,
	env *Environment,
	presets []Preset,
	opts ...Option,
) error {
	o := applyOptions(opts...)

	sorted := slices.Clone(presets)
	slices.SortStableFunc(sorted, func(a, b Preset) int {
		return strings.Compare(a.Name, b.Name)
	})

	for _, p := range sorted {
		v, err := p.Eval(env)
		if err != nil {
			return err
		}

		if err := env.Declare(p.Name, v.Type(), v); err != nil {
			return err
		}

		o.logger.DebugContext(ctx, "preset",
			slog.String("name", p.Name),
			slog.String("type", v.Type().String()),
			slog.Any("value", v.Native()))
	}

	return nil
}

// ValueOf converts a Go value to a [Value].
// Integers become Number, bool becomes Boolean and string becomes Text.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case int:
		return Number(int64(x)), nil
	case int8:
		return Number(int64(x)), nil
	case int16:
		return Number(int64(x)), nil
	case int32:
		return Number(int64(x)), nil
	case int64:
		return Number(x), nil
	case bool:
		return Boolean(x), nil
	case string:
		return Text(x), nil
	case Value:
		return x, nil
	default:
		return Value{}, fmt.Errorf("%w: cannot convert %T", ErrTypeMismatch, x)
	}
}

// literalPatcher rewrites the identifiers VERDADEIRO and FALSO to boolean
// constants.
type literalPatcher struct{}

// Visit implements ast.Visitor for literalPatcher.
func (literalPatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	switch keywordKey(ident.Value) {
	case lexemeTrue:
		ast.Patch(node, &ast.BoolNode{Value: true})
	case lexemeFalse:
		ast.Patch(node, &ast.BoolNode{Value: false})
	}
}
