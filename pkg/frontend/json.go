package frontend

import "encoding/json"

// JSON encoding tags every node with its kind under "type", so a display
// layer can walk the tree without knowing the Go types.

func (p *Program) MarshalJSON() ([]byte, error) {
	body := p.Body
	if body == nil {
		body = []Stmt{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Body []Stmt `json:"body"`
	}{"Program", body})
}

func (d *VarDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Const bool   `json:"const,omitempty"`
		Value Expr   `json:"value"`
	}{"VarDecl", d.Name, d.Const, d.Init})
}

func (b *BinaryExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Left     Expr   `json:"left"`
		Right    Expr   `json:"right"`
		Operator string `json:"operator"`
	}{"BinaryExpr", b.Left, b.Right, b.Op.String()})
}

func (c *CallExpr) MarshalJSON() ([]byte, error) {
	args := c.Args
	if args == nil {
		args = []Expr{}
	}
	return json.Marshal(struct {
		Type   string `json:"type"`
		Callee string `json:"callee"`
		Args   []Expr `json:"args"`
	}{"CallExpr", c.Callee, args})
}

func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value int64  `json:"value"`
	}{"Literal", l.Value})
}

func (i *Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{"Identifier", i.Name})
}
