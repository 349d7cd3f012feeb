package ir

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonInstruction is the wire shape: {"op","dest","args","value","type"}.
// value is present only for const.
type jsonInstruction struct {
	Op    Opcode   `json:"op"`
	Dest  string   `json:"dest,omitempty"`
	Args  []string `json:"args,omitempty"`
	Value *int64   `json:"value,omitempty"`
	Type  string   `json:"type,omitempty"`
}

func (in Instruction) MarshalJSON() ([]byte, error) {
	j := jsonInstruction{
		Op:   in.Op,
		Dest: in.Dest,
		Args: in.Args,
		Type: in.Type,
	}
	if in.Op == OpConst {
		v := in.Value
		j.Value = &v
	}
	return json.Marshal(j)
}

func (in *Instruction) UnmarshalJSON(data []byte) error {
	var j jsonInstruction
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Op == OpConst && j.Value == nil {
		return fmt.Errorf("const instruction %q has no value", j.Dest)
	}
	if j.Op != OpConst && j.Value != nil {
		return fmt.Errorf("%s instruction %q has a value", j.Op, j.Dest)
	}
	*in = Instruction{
		Op:   j.Op,
		Dest: j.Dest,
		Args: j.Args,
		Type: j.Type,
	}
	if j.Value != nil {
		in.Value = *j.Value
	}
	return nil
}

// Encode writes insts as an indented JSON array.
func Encode(w io.Writer, insts []Instruction) error {
	if insts == nil {
		insts = []Instruction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(insts)
}

// Decode reads a JSON array of instructions and validates it.
func Decode(r io.Reader) ([]Instruction, error) {
	var insts []Instruction
	dec := json.NewDecoder(r)
	if err := dec.Decode(&insts); err != nil {
		return nil, fmt.Errorf("decode ir: %w", err)
	}
	if err := Validate(insts); err != nil {
		return nil, fmt.Errorf("decode ir: %w", err)
	}
	return insts, nil
}
