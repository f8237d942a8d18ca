package extract

import (
	"strconv"

	"github.com/zmk-layout/layout/dtast"
	"github.com/zmk-layout/layout/layout"
)

// splitBindingsFromValue splits a flat cell-list value into individual
// bindings, one per REFERENCE token, with every
// following non-reference token up to the next reference (or the end
// of the list) becoming that binding's parameters.
func splitBindingsFromValue(v *dtast.Value, defines map[string]string) ([]layout.Binding, []Diagnostic) {
	if v == nil {
		return nil, nil
	}
	elems := v.Elements
	if v.Kind != dtast.KindArray {
		return nil, []Diagnostic{warnf("bindings property is not a cell-list")}
	}

	var diags []Diagnostic
	var bindings []layout.Binding

	i, n := 0, len(elems)
	for i < n && elems[i].Kind != dtast.KindReference {
		diags = append(diags, warnf("standalone parameter %q has no preceding behavior reference and was dropped", elems[i].String()))
		i++
	}
	for i < n {
		ref := elems[i]
		i++
		start := i
		for i < n && elems[i].Kind != dtast.KindReference {
			i++
		}
		params := buildParamSeq(elems[start:i], defines)
		bindings = append(bindings, layout.Binding{Behavior: "&" + ref.Str, Params: params})
	}
	return bindings, diags
}

// paramFrame is one level of an explicit work stack used by
// buildParamSeq in place of language recursion: deep parameter nesting
// must use an explicit stack, not recursion, so a pathological input
// cannot blow the call stack.
type paramFrame struct {
	elems []dtast.Value
	idx   int
	out   []layout.Param
	// attach tells the parent frame how to fold this frame's out back
	// in once it completes: "params" sets it as the Params of the
	// parent's most recently appended entry (the IDENT this paren
	// group followed); "flatten" appends it directly (an orphan paren
	// group with no preceding bare word, which the grammar permits but
	// real keymaps never produce).
	attach string
}

// buildParamSeq reconstructs IDENT(arglist) call trees from the flat,
// generically-parenthesized sequence the DT parser produces (a bare
// IDENT element followed immediately by a sibling Array element is
// the paren group that belongs to it — see dtast.Parser.parseCellList).
// It also resolves one pass of #define substitution against defines.
func buildParamSeq(topElems []dtast.Value, defines map[string]string) []layout.Param {
	stack := []*paramFrame{{elems: topElems}}
	var result []layout.Param

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.idx >= len(f.elems) {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				result = f.out
				break
			}
			parent := stack[len(stack)-1]
			switch f.attach {
			case "params":
				parent.out[len(parent.out)-1].Params = f.out
			case "flatten":
				parent.out = append(parent.out, f.out...)
			}
			continue
		}

		e := f.elems[f.idx]
		switch e.Kind {
		case dtast.KindString:
			val := e.Str
			if sub, ok := defines[val]; ok {
				val = sub
			}
			f.out = append(f.out, layout.Param{Value: val})
			f.idx++
			if f.idx < len(f.elems) && f.elems[f.idx].Kind == dtast.KindArray {
				child := &paramFrame{elems: f.elems[f.idx].Elements, attach: "params"}
				f.idx++
				stack = append(stack, child)
			}
		case dtast.KindInteger:
			f.out = append(f.out, layout.Param{Value: strconv.FormatInt(e.Int, 10)})
			f.idx++
		case dtast.KindReference:
			f.out = append(f.out, layout.Param{Value: "&" + e.Str})
			f.idx++
		case dtast.KindArray:
			child := &paramFrame{elems: e.Elements, attach: "flatten"}
			f.idx++
			stack = append(stack, child)
		default:
			f.idx++
		}
	}
	return result
}
