package emit

import (
	"strings"

	"github.com/zmk-layout/layout/layout"
)

// FormatBinding renders a layout.Binding back to its serialized form:
//
//	format(binding)  = binding.behavior + (params empty ? "" : " " + format_params(params))
//	format_params(p) = terminal ? p.value : p.value + "(" + join(format_params(children), ",") + ")"
//
// Formatting never recurses in Go: a malicious or pathological nesting
// depth in the model must not blow the call stack, so every parameter
// is rendered with an explicit work stack instead.
func FormatBinding(b layout.Binding) string {
	if len(b.Params) == 0 {
		return b.Behavior
	}
	parts := make([]string, len(b.Params))
	for i, p := range b.Params {
		parts[i] = formatParam(p)
	}
	return b.Behavior + " " + strings.Join(parts, " ")
}

// formatFrame is one parameter's in-progress rendering: its own value,
// its children, and the already-rendered text of the children visited
// so far.
type formatFrame struct {
	value    string
	children []layout.Param
	rendered []string
	next     int
}

// formatParam renders one top-level parameter (and, transitively, its
// nested call arguments) with an explicit stack instead of language
// recursion.
func formatParam(p layout.Param) string {
	stack := []*formatFrame{{value: p.Value, children: p.Params}}
	var result string

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next >= len(f.children) {
			text := f.value
			if len(f.rendered) > 0 {
				text = f.value + "(" + strings.Join(f.rendered, ",") + ")"
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				result = text
				break
			}
			parent := stack[len(stack)-1]
			parent.rendered = append(parent.rendered, text)
			continue
		}

		child := f.children[f.next]
		f.next++
		if child.IsTerminal() {
			f.rendered = append(f.rendered, child.Value)
			continue
		}
		stack = append(stack, &formatFrame{value: child.Value, children: child.Params})
	}
	return result
}
