// Package pluck projects decoded API responses through the comma and dot
// selector language of the -o flag: comma-separated selectors pick attributes,
// dots descend into nested mappings, and a lone integer indexes a sequence.
package pluck

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyNotFoundError reports a selector segment naming a key that is missing
// from the mapping it was applied to, along with the chain segments already
// descended before it.
type KeyNotFoundError struct {
	Key      string
	Consumed []string
}

func (e *KeyNotFoundError) Error() string {
	if len(e.Consumed) == 0 {
		return fmt.Sprintf("key '%s' not found", e.Key)
	}
	return fmt.Sprintf("key '%s' not found after '%s'", e.Key, strings.Join(e.Consumed, "."))
}

// IndexOutOfRangeError reports a numeric selector outside the bounds of the
// sequence it indexes. Index is the selector as given, before negative
// values are normalized from the end.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range (length %d)", e.Index, e.Length)
}

// InvalidProjectionError reports selectors applied to a value with no
// addressable parts, such as a scalar or an empty body.
type InvalidProjectionError struct {
	Selector string
	Kind     string
}

func (e *InvalidProjectionError) Error() string {
	return fmt.Sprintf("cannot project '%s' into %s value", e.Selector, e.Kind)
}

// ParseSpec splits a raw -o specification into selectors: comma-separated,
// whitespace-trimmed. Empty selectors are kept; the projection rules decide
// what they mean in each position.
func ParseSpec(spec string) []string {
	parts := strings.Split(spec, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// Project applies selectors to a decoded document and returns the selected
// subtree. An empty selector list returns the document unchanged.
//
// Sequences: a single integer selector indexes the sequence (negative counts
// from the end); any other selector list is broadcast across the elements.
// Mappings: a single selector descends a dot-separated key chain; multiple
// selectors build a new mapping in selector order, keyed by the trimmed
// selector text, skipping selectors that trim to nothing, with later
// duplicates overwriting earlier ones.
// Scalars admit no selectors at all.
//
// The input is never mutated. The result may share subtrees with the input.
func Project(n *yaml.Node, selectors []string) (*yaml.Node, error) {
	if len(selectors) == 0 {
		return n, nil
	}
	n = resolve(n)

	switch kind(n) {
	case yaml.SequenceNode:
		if len(selectors) == 1 {
			if idx, ok := indexSelector(selectors[0]); ok {
				return elementAt(n, idx)
			}
		}
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range n.Content {
			p, err := Project(el, selectors)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, p)
		}
		return out, nil

	case yaml.MappingNode:
		if len(selectors) == 1 {
			return descend(n, selectors[0])
		}
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, sel := range selectors {
			key := strings.TrimSpace(sel)
			if key == "" {
				continue
			}
			v, err := Project(n, []string{sel})
			if err != nil {
				return nil, err
			}
			setEntry(out, key, v)
		}
		return out, nil

	default:
		return nil, &InvalidProjectionError{
			Selector: strings.Join(selectors, ","),
			Kind:     kindName(n),
		}
	}
}

// Encode renders a node as block-style YAML with two-space indentation and no
// trailing newline. A nil node renders as the empty string.
func Encode(n *yaml.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(blockNode(n, 0)); err != nil {
		return "", fmt.Errorf("encode projection: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode projection: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

const maxRenderDepth = 100

// blockNode deep-copies a node with source styles, anchors, and aliases
// stripped, so output renders as plain block YAML no matter how the document
// arrived on the wire (JSON bodies decode with flow styles and quoting).
func blockNode(n *yaml.Node, depth int) *yaml.Node {
	n = resolve(n)
	if n == nil || depth > maxRenderDepth {
		return n
	}
	out := &yaml.Node{
		Kind:  n.Kind,
		Tag:   n.Tag,
		Value: n.Value,
	}
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = blockNode(c, depth+1)
		}
	}
	return out
}

// indexSelector reports whether a selector is a plain base-10 integer, with
// an optional leading minus and nothing else.
func indexSelector(sel string) (int, bool) {
	if sel == "" || sel[0] == '+' {
		return 0, false
	}
	idx, err := strconv.Atoi(sel)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// elementAt returns the sequence element at idx, counting from the end for
// negative values.
func elementAt(seq *yaml.Node, idx int) (*yaml.Node, error) {
	i := idx
	if i < 0 {
		i += len(seq.Content)
	}
	if i < 0 || i >= len(seq.Content) {
		return nil, &IndexOutOfRangeError{Index: idx, Length: len(seq.Content)}
	}
	return seq.Content[i], nil
}

// descend walks a dot-separated key chain down through nested mappings. Each
// segment is trimmed before lookup.
func descend(m *yaml.Node, selector string) (*yaml.Node, error) {
	cur := m
	segs := strings.Split(selector, ".")
	consumed := make([]string, 0, len(segs))
	for _, seg := range segs {
		key := strings.TrimSpace(seg)
		cur = resolve(cur)
		if kind(cur) != yaml.MappingNode {
			return nil, &InvalidProjectionError{Selector: key, Kind: kindName(cur)}
		}
		v, ok := lookup(cur, key)
		if !ok {
			return nil, &KeyNotFoundError{Key: key, Consumed: consumed}
		}
		consumed = append(consumed, key)
		cur = v
	}
	return cur, nil
}

// lookup finds the value for a scalar key in a mapping node.
func lookup(m *yaml.Node, key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return m.Content[i+1], true
		}
	}
	return nil, false
}

// setEntry sets key to value in a mapping node, replacing the value of an
// existing key in place so duplicate selectors keep their first position.
func setEntry(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Kind == yaml.ScalarNode && m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// resolve follows alias nodes and unwraps document nodes to the underlying
// value node.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		default:
			return n
		}
	}
	return n
}

func kind(n *yaml.Node) yaml.Kind {
	if n == nil {
		return 0
	}
	return n.Kind
}

// kindName names a node's shape for error messages.
func kindName(n *yaml.Node) string {
	switch kind(n) {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "null"
		}
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.DocumentNode:
		return "document"
	case yaml.AliasNode:
		return "alias"
	default:
		return "empty"
	}
}
