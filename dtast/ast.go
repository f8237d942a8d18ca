// Package dtast defines the Devicetree Abstract Syntax Tree produced by
// the recursive-descent Parser: nodes with properties, children,
// trivia (comments), and preprocessor conditionals, plus the
// tagged-variant Value type used for property and cell-list contents.
package dtast

import "fmt"

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindString holds a quoted-string literal.
	KindString ValueKind = iota
	// KindInteger holds a decimal or hex integer literal.
	KindInteger
	// KindArray holds a cell-list (`<...>`); its Elements may themselves
	// be KindArray values (parenthesized expressions, phandle+arg groups).
	KindArray
	// KindReference holds an unresolved `&name` referent.
	KindReference
	// KindBoolean holds a bare property with no value (`foo;`).
	KindBoolean
	// KindBytes holds a `[ab cd ef]` byte-list.
	KindBytes
)

// Value is the tagged variant for property values and cell-list
// elements: String | Integer | Array | Reference | Boolean | Bytes.
type Value struct {
	Kind     ValueKind
	Str      string // KindString, KindReference (referent name verbatim)
	Int      int64  // KindInteger
	Bool     bool   // KindBoolean
	Bytes    []byte // KindBytes
	Elements []Value // KindArray
}

// String renders a Value for diagnostics; it is not the DTS emitter.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindReference:
		return "&" + v.Str
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case KindBytes:
		return fmt.Sprintf("[% x]", v.Bytes)
	case KindArray:
		return "<array>"
	default:
		return "<unknown>"
	}
}

// Comment is a single DT comment. IsBlock is true iff the raw text
// matched `/\*(.|\n)*?\*/` under DOTALL when scanned — single-line
// `//` comments and preprocessor `#...` lines are always false.
type Comment struct {
	Text    string
	IsBlock bool
}

// Conditional captures a preprocessor line (`define`, `ifdef`, `else`,
// `endif`, `include`, ...) attached to the node it was encountered
// under. Conditions are never evaluated.
type Conditional struct {
	Directive string
	Condition string
}

// Property is a single `name = value;` or boolean `name;` statement.
// Value is nil for boolean-true properties.
type Property struct {
	Name           string
	Value          *Value
	CommentsBefore []Comment
	CommentsInline []Comment
}

// IsBoolean reports whether this property encodes a bare boolean-true
// (`foo;`, no `=`).
func (p *Property) IsBoolean() bool { return p.Value == nil }

// Node is a Devicetree node: `[label:] name[@unit] { ...body... };`.
// Properties and Children preserve source insertion order; Parent is a
// non-owning back-reference, read for diagnostics and by the
// extractor's ancestor checks, never traversed for ownership or
// dropped with the node (Go's GC does not care about the cycle this
// creates).
type Node struct {
	Name        string
	UnitAddress string
	Label       string

	// Line/Column locate the node's name token, for diagnostics only.
	Line   int
	Column int

	// Offset/EndOffset are 0-based byte offsets into the parsed source
	// spanning this node's entire textual form, from its first token
	// (label, '/', or '&' reference) through the ';' that terminates it.
	// They let a caller slice the node's verbatim text back out of the
	// original buffer for passthrough purposes. For a node whose closing
	// ';' the parser never found, EndOffset is the end of whatever token
	// stood in its place.
	Offset    int
	EndOffset int

	Properties []*Property
	Children   []*Node

	Comments     []Comment
	Conditionals []Conditional
	References   []string

	Parent *Node
}

// Key is the node's composite map key (`name` or `name@unitAddress`),
// used by the parent to detect and resolve duplicate children.
func (n *Node) Key() string {
	if n.UnitAddress != "" {
		return n.Name + "@" + n.UnitAddress
	}
	return n.Name
}

// Property looks up a property by name; it returns the last one
// inserted under that name (AddProperty already resolves duplicates).
func (n *Node) Property(name string) *Property {
	for _, p := range n.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PropertyString returns a property's single string/reference value,
// or "" if absent or not a scalar string-shaped value.
func (n *Node) PropertyString(name string) string {
	p := n.Property(name)
	if p == nil || p.Value == nil {
		return ""
	}
	switch p.Value.Kind {
	case KindString, KindReference:
		return p.Value.Str
	}
	return ""
}

// Compatible is shorthand for PropertyString("compatible").
func (n *Node) Compatible() string { return n.PropertyString("compatible") }

// Child looks up a direct child by its composite Key().
func (n *Node) Child(key string) *Node {
	for _, c := range n.Children {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// AddProperty appends a property, replacing any existing property with
// the same name in place (last-property-wins, matching a single `;`
// terminated statement rewriting an earlier one in the same node body).
func (n *Node) AddProperty(p *Property) {
	for i, existing := range n.Properties {
		if existing.Name == p.Name {
			n.Properties[i] = p
			return
		}
	}
	n.Properties = append(n.Properties, p)
}

// AddChild inserts a child node, applying Devicetree merge-adjacent
// semantics for same-key duplicates: a duplicate with no unit address
// replaces the earlier child in place and the caller should emit a
// warning (see Parser.addChild); a duplicate with a distinct unit
// address always coexists since its Key() differs.
func (n *Node) AddChild(child *Node) (replaced bool) {
	child.Parent = n
	key := child.Key()
	for i, existing := range n.Children {
		if existing.Key() == key {
			n.Children[i] = child
			return true
		}
	}
	n.Children = append(n.Children, child)
	return false
}

// Severity classifies a ParseError as a hard error or a recoverable
// warning; the parser never aborts on either.
type Severity int

const (
	// SeverityError is an unexpected-token / unterminated-construct finding.
	SeverityError Severity = iota
	// SeverityWarning is an informational finding (e.g. a merged duplicate child).
	SeverityWarning
)

// ParseError is a single accumulated parser diagnostic.
type ParseError struct {
	Message  string
	Line     int
	Column   int
	Severity Severity
}

// Error implements the error interface so ParseError composes with
// github.com/hashicorp/go-multierror.
func (e *ParseError) Error() string {
	kind := "error"
	if e.Severity == SeverityWarning {
		kind = "warning"
	}
	return fmt.Sprintf("%s:%d:%d: %s", kind, e.Line, e.Column, e.Message)
}
