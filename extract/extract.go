// Package extract walks a parsed Devicetree AST (package dtast) and
// lifts its ZMK-specific constructs — the keymap's layers, hold-taps,
// combos, macros, tap-dances, input listener overrides — into a
// layout.Data. Anything else it doesn't recognize passes through
// verbatim into Data.CustomDevicetree rather than being dropped. It
// never mutates the AST and never aborts: every recognition failure
// downgrades to a Diagnostic plus a best-effort placeholder so
// downstream layer lengths and behavior lists stay structurally sound.
package extract

import (
	"fmt"
	"strings"

	"github.com/zmk-layout/layout/dtast"
	"github.com/zmk-layout/layout/layout"
)

// Diagnostic is a non-fatal extraction finding; extraction never
// produces a hard error.
type Diagnostic struct {
	Message  string
	Severity dtast.Severity
}

func (d Diagnostic) String() string { return d.Message }

func warnf(format string, args ...interface{}) Diagnostic {
	return Diagnostic{Message: fmt.Sprintf(format, args...), Severity: dtast.SeverityWarning}
}

// Extract lifts one or more parsed AST roots into a layout.Data. source
// is the exact text the roots were parsed from, used to slice verbatim
// spans for constructs that pass through untouched (unknown compatible
// nodes, input listener overrides) rather than being structurally
// lifted; pass nil to skip passthrough capture entirely. defines is the
// caller-harvested aggregation of #define directives (see
// HarvestDefines); pass nil to skip identifier substitution.
func Extract(roots []*dtast.Node, source []byte, defines map[string]string) (*layout.Data, []Diagnostic) {
	if defines == nil {
		defines = map[string]string{}
	}
	var diags []Diagnostic
	data := layout.New("", "")
	consumed := map[*dtast.Node]bool{}

	if km := findByCompatible(roots, "zmk,keymap"); km != nil {
		consumed[km] = true
		for _, child := range km.Children {
			layerDiags := extractLayer(data, child, defines)
			diags = append(diags, layerDiags...)
		}
	}

	for _, n := range findAllByCompatible(roots, "zmk,behavior-hold-tap") {
		consumed[n] = true
		ht, d := extractHoldTap(n, defines)
		diags = append(diags, d...)
		data.HoldTaps = append(data.HoldTaps, ht)
	}

	for _, n := range findAllByCompatible(roots, "zmk,behavior-tap-dance") {
		consumed[n] = true
		td, d := extractTapDance(n, defines)
		diags = append(diags, d...)
		data.TapDances = append(data.TapDances, td)
	}

	seenMacros := map[*dtast.Node]bool{}
	for _, container := range findByName(roots, "macros") {
		consumed[container] = true
		for _, child := range container.Children {
			seenMacros[child] = true
			consumed[child] = true
			mac, d := extractMacro(child, defines)
			diags = append(diags, d...)
			data.Macros = append(data.Macros, mac)
		}
	}
	for _, n := range findAllByCompatible(roots, "zmk,behavior-macro") {
		if seenMacros[n] {
			continue
		}
		consumed[n] = true
		mac, d := extractMacro(n, defines)
		diags = append(diags, d...)
		data.Macros = append(data.Macros, mac)
	}

	for _, container := range findByName(roots, "combos") {
		consumed[container] = true
		for _, child := range container.Children {
			consumed[child] = true
			c, d := extractCombo(child, defines)
			diags = append(diags, d...)
			data.Combos = append(data.Combos, c)
		}
	}

	capturePassthrough(data, roots, source, consumed)

	return data, diags
}

// HarvestDefines collects every `#define NAME rest` conditional found
// anywhere in roots into a flat NAME → rest map, for one-pass
// identifier substitution during binding tokenization (no recursive
// macro expansion).
func HarvestDefines(roots []*dtast.Node) map[string]string {
	defines := map[string]string{}
	walkAll(roots, func(n *dtast.Node) {
		for _, c := range n.Conditionals {
			if c.Directive != "define" {
				continue
			}
			fields := strings.Fields(c.Condition)
			if len(fields) == 0 {
				continue
			}
			name := fields[0]
			rest := strings.TrimSpace(strings.TrimPrefix(c.Condition, name))
			defines[name] = rest
		}
	})
	return defines
}

func walk(n *dtast.Node, fn func(*dtast.Node)) {
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}

func walkAll(roots []*dtast.Node, fn func(*dtast.Node)) {
	for _, r := range roots {
		walk(r, fn)
	}
}

func findByCompatible(roots []*dtast.Node, compat string) *dtast.Node {
	var found *dtast.Node
	walkAll(roots, func(n *dtast.Node) {
		if found == nil && n.Compatible() == compat {
			found = n
		}
	})
	return found
}

func findAllByCompatible(roots []*dtast.Node, compat string) []*dtast.Node {
	var out []*dtast.Node
	walkAll(roots, func(n *dtast.Node) {
		if n.Compatible() == compat {
			out = append(out, n)
		}
	})
	return out
}

func findByName(roots []*dtast.Node, name string) []*dtast.Node {
	var out []*dtast.Node
	walkAll(roots, func(n *dtast.Node) {
		if n.Name == name {
			out = append(out, n)
		}
	})
	return out
}

// referenceName is label-if-present else node name, the rule a
// hold-tap/macro/tap-dance is actually addressed by from a `&name`
// binding: label "hm" wins over node name "homerow_mods".
func referenceName(n *dtast.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.Name
}

// inputListenerCompatible is the synthetic compatible C3 assigns to an
// input listener override that never declares its own: ZMK recognizes
// these purely by reference name (`&foo_input_listener { ... };`), with
// no `compatible` property present in the override fragment itself.
const inputListenerCompatible = "zmk,input-listener"

const inputListenerSuffix = "_input_listener"

// isInputListener reports whether n is an input listener by C3's rule:
// its own or an ancestor's compatible is already zmk,input-listener, or
// its reference name (label if present, else bare name) ends in
// "_input_listener".
func isInputListener(n *dtast.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Compatible() == inputListenerCompatible {
			return true
		}
		if strings.HasSuffix(referenceName(cur), inputListenerSuffix) {
			return true
		}
	}
	return false
}

// passthroughContainers are node names whose children are walked
// individually for passthrough capture rather than captured as a
// single opaque blob, since a container may mix already-lifted
// children (layers, behaviors, macros, combos) with unrecognized ones.
var passthroughContainers = map[string]bool{
	"/":         true,
	"keymap":    true,
	"behaviors": true,
	"macros":    true,
	"combos":    true,
}

// sliceSource returns the verbatim text of n's span, or "" if source is
// unavailable or n's span is empty or falls outside source.
func sliceSource(source []byte, n *dtast.Node) string {
	if len(source) == 0 || n.Offset < 0 || n.EndOffset <= n.Offset || n.EndOffset > len(source) {
		return ""
	}
	return string(source[n.Offset:n.EndOffset])
}

// injectCompatible splices a synthetic `compatible = "...";` statement
// right after text's opening brace, for a node whose own source never
// declared one.
func injectCompatible(text, compatible string) string {
	idx := strings.IndexByte(text, '{')
	if idx < 0 {
		return text
	}
	return text[:idx+1] + "\n\tcompatible = \"" + compatible + "\";" + text[idx+1:]
}

// capturePassthrough walks roots for every node not already lifted
// into a structured Data field and appends its verbatim source text to
// Data.CustomDevicetree, recursing through known containers instead of
// capturing them whole. An unconsumed input listener override gets a
// synthetic compatible spliced in if it declares none of its own.
func capturePassthrough(data *layout.Data, roots []*dtast.Node, source []byte, consumed map[*dtast.Node]bool) {
	if len(source) == 0 {
		return
	}
	var captured []string
	var visit func(n *dtast.Node)
	visit = func(n *dtast.Node) {
		if consumed[n] {
			return
		}
		if passthroughContainers[n.Name] {
			for _, c := range n.Children {
				visit(c)
			}
			return
		}
		text := sliceSource(source, n)
		if text == "" {
			return
		}
		if isInputListener(n) && n.Compatible() == "" {
			text = injectCompatible(text, inputListenerCompatible)
		}
		captured = append(captured, text)
	}
	for _, r := range roots {
		visit(r)
	}
	if len(captured) == 0 {
		return
	}
	joined := strings.Join(captured, "\n\n")
	if data.CustomDevicetree == "" {
		data.CustomDevicetree = joined
	} else {
		data.CustomDevicetree = data.CustomDevicetree + "\n\n" + joined
	}
}

func extractLayer(data *layout.Data, node *dtast.Node, defines map[string]string) []Diagnostic {
	var diags []Diagnostic
	name := node.Name
	v := propValue(node, "bindings")
	var bindings []layout.Binding
	if v == nil {
		diags = append(diags, warnf("layer %q has no bindings property", name))
	} else {
		var d []Diagnostic
		bindings, d = splitBindingsFromValue(v, defines)
		diags = append(diags, d...)
	}
	layer := layout.Layer(bindings)
	data.LayerNames = append(data.LayerNames, name)
	data.Layers = append(data.Layers, layer)
	return diags
}

// propValue returns a node's named property value, or nil if the
// property is absent or boolean.
func propValue(n *dtast.Node, name string) *dtast.Value {
	p := n.Property(name)
	if p == nil {
		return nil
	}
	return p.Value
}

func intProp(n *dtast.Node, name string) *int {
	p := n.Property(name)
	if p == nil || p.Value == nil {
		return nil
	}
	v := p.Value
	if v.Kind == dtast.KindArray && len(v.Elements) == 1 {
		v = &v.Elements[0]
	}
	if v.Kind != dtast.KindInteger {
		return nil
	}
	i := int(v.Int)
	return &i
}

func intListProp(n *dtast.Node, name string) []int {
	p := n.Property(name)
	if p == nil || p.Value == nil {
		return nil
	}
	var out []int
	for _, e := range p.Value.Elements {
		if e.Kind == dtast.KindInteger {
			out = append(out, int(e.Int))
		}
	}
	return out
}

// extractReferenceList reads a bindings-shaped property that holds
// only behavior references (hold-tap's two-slot `<&kp>, <&kp>;` form,
// or a tap-dance's flat `<&kp A &kp B>;` form where only the leading
// reference of each run is kept) and returns each reference with its
// leading "&".
func extractReferenceList(v *dtast.Value) []string {
	if v == nil || v.Kind != dtast.KindArray {
		return nil
	}
	var out []string
	for _, e := range v.Elements {
		switch e.Kind {
		case dtast.KindReference:
			out = append(out, "&"+e.Str)
		case dtast.KindArray:
			for _, ee := range e.Elements {
				if ee.Kind == dtast.KindReference {
					out = append(out, "&"+ee.Str)
					break
				}
			}
		}
	}
	return out
}

func extractHoldTap(n *dtast.Node, defines map[string]string) (layout.HoldTap, []Diagnostic) {
	var diags []Diagnostic
	ht := layout.HoldTap{
		Name:          referenceName(n),
		Flavor:        n.PropertyString("flavor"),
		TappingTermMs: intProp(n, "tapping-term-ms"),
		QuickTapMs:    intProp(n, "quick-tap-ms"),
	}
	refs := extractReferenceList(propValue(n, "bindings"))
	if len(refs) != 2 {
		diags = append(diags, warnf("hold-tap %q expects exactly 2 bindings, found %d", ht.Name, len(refs)))
		for len(refs) < 2 {
			refs = append(refs, "&trans")
		}
	}
	ht.Bindings[0] = refs[0]
	ht.Bindings[1] = refs[1]
	return ht, diags
}

func extractTapDance(n *dtast.Node, defines map[string]string) (layout.TapDance, []Diagnostic) {
	var diags []Diagnostic
	td := layout.TapDance{
		Name:          referenceName(n),
		TappingTermMs: intProp(n, "tapping-term-ms"),
	}
	refs := extractReferenceList(propValue(n, "bindings"))
	if len(refs) < 2 {
		diags = append(diags, warnf("tap-dance %q expects at least 2 bindings, found %d", td.Name, len(refs)))
	}
	td.Bindings = refs
	return td, diags
}

func extractMacro(n *dtast.Node, defines map[string]string) (layout.Macro, []Diagnostic) {
	var diags []Diagnostic
	mac := layout.Macro{
		Name:   referenceName(n),
		WaitMs: intProp(n, "wait-ms"),
		TapMs:  intProp(n, "tap-ms"),
	}
	if v := propValue(n, "bindings"); v != nil {
		bindings, d := splitBindingsFromValue(v, defines)
		diags = append(diags, d...)
		mac.Bindings = bindings
	}
	return mac, diags
}

func extractCombo(n *dtast.Node, defines map[string]string) (layout.Combo, []Diagnostic) {
	var diags []Diagnostic
	c := layout.Combo{
		Name:               n.Name,
		KeyPositions:       intListProp(n, "key-positions"),
		TimeoutMs:          intProp(n, "timeout-ms"),
		Layers:             intListProp(n, "layers"),
		RequirePriorIdleMs: intProp(n, "require-prior-idle-ms"),
	}
	if v := propValue(n, "bindings"); v != nil {
		bindings, d := splitBindingsFromValue(v, defines)
		diags = append(diags, d...)
		if len(bindings) > 0 {
			c.Binding = bindings[0]
		} else {
			diags = append(diags, warnf("combo %q has a malformed bindings property", c.Name))
		}
	} else {
		diags = append(diags, warnf("combo %q has no bindings property", c.Name))
	}
	return c, diags
}
