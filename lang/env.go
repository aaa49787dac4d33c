package lang

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
)

// Binding is the declared type and current value of a variable.
type Binding struct {
	Type  Type
	Value Value
}

// Environment maps variable names to their bindings.
//
// It is a single flat table: a name is declared once for the lifetime of the
// environment, whatever block the declaration appears in. An Environment is
// owned by one [Interpreter] and is not safe for concurrent use.
type Environment struct {
	store map[string]Binding
}

// NewEnvironment returns an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Binding)}
}

// Declare binds name to v with the declared type t.
// It fails if name is already declared or if v is not of type t; the
// environment is left unchanged on failure.
func (e *Environment) Declare(name string, t Type, v Value) error {
	if _, ok := e.store[name]; ok {
		return ErrRedeclaredVariable.
			Wrap(fmt.Errorf("%q is already declared", name)).
			With(slog.String("name", name))
	}

	if v.Type() != t {
		return mismatch(name, t, v)
	}

	e.store[name] = Binding{Type: t, Value: v}

	return nil
}

// Assign replaces the value bound to name, keeping its declared type.
func (e *Environment) Assign(name string, v Value) error {
	b, ok := e.store[name]
	if !ok {
		return undeclared(name)
	}

	if v.Type() != b.Type {
		return mismatch(name, b.Type, v)
	}

	b.Value = v
	e.store[name] = b

	return nil
}

// Get returns the value bound to name.
func (e *Environment) Get(name string) (Value, error) {
	b, ok := e.store[name]
	if !ok {
		return Value{}, undeclared(name)
	}

	return b.Value, nil
}

// Lookup returns the binding of name and whether it exists.
func (e *Environment) Lookup(name string) (Binding, bool) {
	b, ok := e.store[name]

	return b, ok
}

// Len returns the number of declared variables.
func (e *Environment) Len() int { return len(e.store) }

// Names returns the declared variable names in sorted order.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.store))
}

// All returns an iterator over all bindings in name order.
func (e *Environment) All() iter.Seq2[string, Binding] {
	return func(yield func(string, Binding) bool) {
		for _, name := range e.Names() {
			if !yield(name, e.store[name]) {
				return
			}
		}
	}
}

func undeclared(name string) *Error {
	return ErrUndeclaredVariable.
		Wrap(fmt.Errorf("%q is not declared", name)).
		With(slog.String("name", name))
}

func mismatch(name string, want Type, v Value) *Error {
	return ErrTypeMismatch.
		Wrap(fmt.Errorf("%q is %s, value is %s", name, want, v.Type())).
		With(
			slog.String("name", name),
			slog.String("declared", want.String()),
			slog.String("actual", v.Type().String()),
		)
}
