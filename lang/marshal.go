package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the syntax tree to nested maps and slices of native Go
// values. Every node becomes a map with a "type" key naming its variant and
// a "pos" key holding its line:column.
func (p *Program) ToMap() map[string]any {
	return map[string]any{
		"type":       nodeType(p),
		"statements": stmtsToNative(p.Stmts),
	}
}

func stmtsToNative(stmts []Stmt) []any {
	out := make([]any, len(stmts))
	for i, stmt := range stmts {
		out[i] = nodeToMap(stmt)
	}

	return out
}

// nodeToMap converts a single node and its children.
func nodeToMap(n Node) map[string]any {
	m := map[string]any{
		"type": nodeType(n),
		"pos":  n.Position().String(),
	}

	switch n := n.(type) {
	case *Block:
		m["statements"] = stmtsToNative(n.Stmts)

	case *VarDecl:
		m["name"] = n.Name
		m["declared"] = n.Type.String()
		m["init"] = nodeToMap(n.Init)

	case *Assign:
		m["name"] = n.Name
		m["value"] = nodeToMap(n.Value)

	case *If:
		m["condition"] = nodeToMap(n.Cond)
		m["then"] = nodeToMap(n.Then)

		if n.Else != nil {
			m["else"] = nodeToMap(n.Else)
		}

	case *While:
		m["condition"] = nodeToMap(n.Cond)
		m["body"] = nodeToMap(n.Body)

	case *Show:
		m["value"] = nodeToMap(n.Value)

	case *Speak:
		m["value"] = nodeToMap(n.Value)

	case *Ask:
		m["name"] = n.Name

	case *Binary:
		m["op"] = n.Op.String()
		m["left"] = nodeToMap(n.Left)
		m["right"] = nodeToMap(n.Right)

	case *Unary:
		m["op"] = n.Op.String()
		m["operand"] = nodeToMap(n.Operand)

	case *Literal:
		m["valueType"] = n.Value.Type().String()
		m["value"] = n.Value.Native()

	case *Ident:
		m["name"] = n.Name
	}

	return m
}
