package console

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

var (
	ErrMalformedLiteral = errors.New("malformed dictionary literal")
	ErrNotMapping       = errors.New("literal is not a dictionary")
)

// DecodeLiteral parses a dictionary literal such as
//
//	{"name": "Bob", 'age': 5, "ratio": 0.5, "ok": True, "none": None, "tags": ["a"]}
//
// into a map whose values keep their literal types: quoted text is a string, integers
// are int, decimals are float64, True/False are bool and None/null is nil.
// The literal is read as a YAML flow mapping.
func DecodeLiteral(text string) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNotMapping
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	v, err := literalValue(root)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func literalValue(n *yaml.Node) (any, error) {
	// Anchors and aliases have no literal equivalent and can expand without bound.
	if n.Anchor != "" {
		return nil, fmt.Errorf("%w: anchors are not allowed", ErrMalformedLiteral)
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarValue(n)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode || key.Anchor != "" {
				return nil, fmt.Errorf("%w: keys must be scalars", ErrMalformedLiteral)
			}
			if !quoted(key) && key.Tag != "!!int" && key.Tag != "!!float" {
				return nil, fmt.Errorf("%w: unquoted key %q", ErrMalformedLiteral, key.Value)
			}
			val, err := literalValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := literalValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case yaml.AliasNode:
		return nil, fmt.Errorf("%w: aliases are not allowed", ErrMalformedLiteral)
	}
	return nil, fmt.Errorf("%w: unsupported node", ErrMalformedLiteral)
}

func quoted(n *yaml.Node) bool {
	return n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0
}

// scalarValue accepts quoted strings, finite numbers and the keyword constants.
// Other plain scalars (bare words, ~, .inf) are rejected.
func scalarValue(n *yaml.Node) (any, error) {
	if quoted(n) {
		return n.Value, nil
	}
	if n.Style&yaml.TaggedStyle != 0 {
		return nil, fmt.Errorf("%w: tags are not allowed", ErrMalformedLiteral)
	}
	switch n.Value {
	case "None", "null":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}

	switch n.Tag {
	case "!!int":
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
		}
		return v, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: non-finite number %q", ErrMalformedLiteral, n.Value)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: unquoted value %q", ErrMalformedLiteral, n.Value)
}
