package ir

import "fmt"

type SymbolKind int

const (
	KindVar SymbolKind = iota
	KindConst
	KindTemp
)

func (k SymbolKind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindConst:
		return "const"
	case KindTemp:
		return "temp"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

func (k SymbolKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SymbolInfo describes one named value. Used is a view attribute filled in
// by MarkUsed; no pipeline phase reads it.
type SymbolInfo struct {
	Name string     `json:"name"`
	Type string     `json:"type"`
	Kind SymbolKind `json:"kind"`
	Used bool       `json:"used"`
}

// SymbolTable lists symbols in registration order.
type SymbolTable []SymbolInfo

func (t SymbolTable) Lookup(name string) (SymbolInfo, bool) {
	for _, s := range t {
		if s.Name == name {
			return s, true
		}
	}
	return SymbolInfo{}, false
}

// Vars counts declared names (var and const kinds).
func (t SymbolTable) Vars() int {
	n := 0
	for _, s := range t {
		if s.Kind == KindVar || s.Kind == KindConst {
			n++
		}
	}
	return n
}

func (t SymbolTable) Temps() int {
	n := 0
	for _, s := range t {
		if s.Kind == KindTemp {
			n++
		}
	}
	return n
}

// MarkUsed returns a copy of t with Used set for every symbol that appears
// as an argument somewhere in insts.
func MarkUsed(t SymbolTable, insts []Instruction) SymbolTable {
	used := UsedNames(insts)
	out := make(SymbolTable, len(t))
	for i, s := range t {
		s.Used = used[s.Name]
		out[i] = s
	}
	return out
}

// UsedNames collects every name read by some instruction.
func UsedNames(insts []Instruction) map[string]bool {
	used := make(map[string]bool)
	for _, in := range insts {
		for _, arg := range in.Args {
			used[arg] = true
		}
	}
	return used
}
