package knowledge

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Kind tags the shape of a configuration value.
type Kind int

const (
	// Null is an absent or explicit null value.
	Null Kind = iota
	// Scalar is a string scalar.
	Scalar
	// Literal is a non-string scalar: number, bool, timestamp.
	Literal
	// Sequence is an ordered list of values.
	Sequence
	// Keyed is a mapping from string keys to values, in document order.
	Keyed
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Scalar:
		return "scalar"
	case Literal:
		return "literal"
	case Sequence:
		return "sequence"
	case Keyed:
		return "keyed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded configuration value. Exactly one of Text, Items or
// Keys/Fields is meaningful, as selected by Kind.
type Value struct {
	Kind   Kind
	Text   string
	Items  []Value
	Keys   []string
	Fields map[string]Value
}

// Decode parses a YAML document into a Value. An empty document is Null.
func Decode(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, err
	}
	return fromNode(&doc), nil
}

func fromNode(n *yaml.Node) Value {
	if n == nil {
		return Value{}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Value{}
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Value{}
		case "!!str":
			return Value{Kind: Scalar, Text: n.Value}
		default:
			return Value{Kind: Literal, Text: n.Value}
		}
	case yaml.SequenceNode:
		v := Value{Kind: Sequence, Items: make([]Value, 0, len(n.Content))}
		for _, c := range n.Content {
			v.Items = append(v.Items, fromNode(c))
		}
		return v
	case yaml.MappingNode:
		v := Value{Kind: Keyed, Fields: make(map[string]Value, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if _, dup := v.Fields[key]; !dup {
				v.Keys = append(v.Keys, key)
			}
			v.Fields[key] = fromNode(n.Content[i+1])
		}
		return v
	}
	return Value{}
}

// Field returns the value stored under key, or Null when v is not Keyed
// or the key is absent.
func (v Value) Field(key string) Value {
	if v.Kind != Keyed {
		return Value{}
	}
	return v.Fields[key]
}

// Has reports whether v is Keyed and declares key (even with a null value).
func (v Value) Has(key string) bool {
	if v.Kind != Keyed {
		return false
	}
	_, ok := v.Fields[key]
	return ok
}

// String returns the scalar text of v, or "" for non-scalar kinds.
func (v Value) String() string {
	if v.Kind == Scalar || v.Kind == Literal {
		return v.Text
	}
	return ""
}
