// Package emit is the deterministic ZMK code generator: it turns
// a layout.Data back into DTS fragments and Kconfig lines. Given the
// same model and profile, Emit always produces byte-identical output.
package emit

import (
	"fmt"
	"strings"

	"github.com/yaoapp/kun/exception"

	"github.com/zmk-layout/layout/layout"
)

// throwContract raises an EmitContractViolation the way layout raises
// a ModelInvariantError: a panic via kun/exception, recovered at the
// export package's public boundary into a plain error. The emitter
// never fails on well-formed input; this only fires when the
// caller handed it a model that skipped validation.
func throwContract(format string, args ...interface{}) {
	exception.New(format, 500, args...).Throw()
}

// Profile is the emitter's resolved view of a ConfigurationProvider:
// formatting knobs, the include list, and the layer-define
// macro template. export.DefaultProvider builds one of these from its
// own fields; callers with a custom ConfigurationProvider do the same.
type Profile struct {
	KeyGap              int
	BaseIndent          string
	LayerDefineTemplate string // e.g. "%s_LAYER" — %s is the upper-cased layer name
	IncludeFiles        []string
}

// DefaultProfile matches the convention used across common ZMK
// keymaps: two-space indent, the "<NAME>_LAYER" macro template.
func DefaultProfile() Profile {
	return Profile{
		KeyGap:              1,
		BaseIndent:          "  ",
		LayerDefineTemplate: "%s_LAYER",
	}
}

// Fragments is the emitter's output, still split by concern so a
// caller (export.KeymapBuilder) can recombine, template, or omit
// pieces freely.
type Fragments struct {
	LayerDefines    string
	BehaviorsDtsi   string
	TapDancesDtsi   string
	CombosDtsi      string
	MacrosDtsi      string
	KeymapNode      string
	KconfigLines    string
	KconfigSettings map[string]string
}

// Emit turns a layout.Data into DTS/Kconfig fragments end to end. It
// never fails on a well-formed layout.Data; a structurally malformed model (hold-tap with fewer
// than two bindings, etc.) triggers an EmitContractViolation panic —
// the caller should have run package validate first.
func Emit(d *layout.Data, profile Profile) (frags Fragments, err error) {
	defer func() { err = exception.Catch(recover()) }()

	frags.LayerDefines = emitLayerDefines(d, profile)
	frags.BehaviorsDtsi = emitBehaviorsDtsi(d, profile)
	frags.TapDancesDtsi = emitTapDancesDtsi(d, profile)
	frags.CombosDtsi = emitCombosDtsi(d, profile)
	frags.MacrosDtsi = emitMacrosDtsi(d, profile)
	frags.KeymapNode = emitKeymapNode(d, profile)
	frags.KconfigLines, frags.KconfigSettings = EmitKconfig(d)
	return frags, nil
}

func emitLayerDefines(d *layout.Data, profile Profile) string {
	if len(d.LayerNames) == 0 {
		return ""
	}
	var b strings.Builder
	for i, name := range d.LayerNames {
		macro := fmt.Sprintf(profile.LayerDefineTemplate, strings.ToUpper(name))
		fmt.Fprintf(&b, "#define %s %d\n", macro, i)
	}
	return b.String()
}

func emitBehaviorsDtsi(d *layout.Data, profile Profile) string {
	if len(d.HoldTaps) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("/ {\n")
	b.WriteString(profile.BaseIndent + "behaviors {\n")
	for _, ht := range d.HoldTaps {
		if ht.Bindings[0] == "" || ht.Bindings[1] == "" {
			throwContract("hold-tap %q has fewer than two bindings", ht.Name)
		}
		emitHoldTap(&b, ht, profile, 2)
	}
	b.WriteString(profile.BaseIndent + "};\n")
	b.WriteString("};\n")
	return b.String()
}

func emitHoldTap(b *strings.Builder, ht layout.HoldTap, profile Profile, depth int) {
	indent := strings.Repeat(profile.BaseIndent, depth)
	inner := strings.Repeat(profile.BaseIndent, depth+1)
	fmt.Fprintf(b, "%s%s: %s {\n", indent, ht.Name, ht.Name)
	fmt.Fprintf(b, "%scompatible = \"zmk,behavior-hold-tap\";\n", inner)
	b.WriteString(inner + "#binding-cells = <0>;\n")
	if ht.Flavor != "" {
		fmt.Fprintf(b, "%sflavor = %q;\n", inner, ht.Flavor)
	}
	if ht.TappingTermMs != nil {
		fmt.Fprintf(b, "%stapping-term-ms = <%d>;\n", inner, *ht.TappingTermMs)
	}
	if ht.QuickTapMs != nil {
		fmt.Fprintf(b, "%squick-tap-ms = <%d>;\n", inner, *ht.QuickTapMs)
	}
	fmt.Fprintf(b, "%sbindings = <%s>, <%s>;\n", inner, ht.Bindings[0], ht.Bindings[1])
	fmt.Fprintf(b, "%s};\n", indent)
}

func emitTapDancesDtsi(d *layout.Data, profile Profile) string {
	if len(d.TapDances) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("/ {\n")
	indent := profile.BaseIndent
	inner := strings.Repeat(profile.BaseIndent, 2)
	for _, td := range d.TapDances {
		if len(td.Bindings) < 2 {
			throwContract("tap-dance %q has fewer than two bindings", td.Name)
		}
		fmt.Fprintf(&b, "%s%s: %s {\n", indent, td.Name, td.Name)
		fmt.Fprintf(&b, "%scompatible = \"zmk,behavior-tap-dance\";\n", inner)
		fmt.Fprintf(&b, "%s#binding-cells = <0>;\n", inner)
		if td.TappingTermMs != nil {
			fmt.Fprintf(&b, "%stapping-term-ms = <%d>;\n", inner, *td.TappingTermMs)
		}
		fmt.Fprintf(&b, "%sbindings = <%s>;\n", inner, strings.Join(td.Bindings, " "))
		fmt.Fprintf(&b, "%s};\n", indent)
	}
	b.WriteString("};\n")
	return b.String()
}

func emitCombosDtsi(d *layout.Data, profile Profile) string {
	if len(d.Combos) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("/ {\n")
	b.WriteString(profile.BaseIndent + "combos {\n")
	inner := strings.Repeat(profile.BaseIndent, 2)
	innerer := strings.Repeat(profile.BaseIndent, 3)
	fmt.Fprintf(&b, "%scompatible = \"zmk,combos\";\n", inner)
	for _, c := range d.Combos {
		if len(c.KeyPositions) < 2 {
			throwContract("combo %q has fewer than two key positions", c.Name)
		}
		fmt.Fprintf(&b, "%s%s {\n", inner, c.Name)
		if c.TimeoutMs != nil {
			fmt.Fprintf(&b, "%stimeout-ms = <%d>;\n", innerer, *c.TimeoutMs)
		}
		positions := make([]string, len(c.KeyPositions))
		for i, p := range c.KeyPositions {
			positions[i] = fmt.Sprintf("%d", p)
		}
		fmt.Fprintf(&b, "%skey-positions = <%s>;\n", innerer, strings.Join(positions, " "))
		if len(c.Layers) > 0 {
			layers := make([]string, len(c.Layers))
			for i, l := range c.Layers {
				layers[i] = fmt.Sprintf("%d", l)
			}
			fmt.Fprintf(&b, "%slayers = <%s>;\n", innerer, strings.Join(layers, " "))
		}
		if c.RequirePriorIdleMs != nil {
			fmt.Fprintf(&b, "%srequire-prior-idle-ms = <%d>;\n", innerer, *c.RequirePriorIdleMs)
		}
		fmt.Fprintf(&b, "%sbindings = <%s>;\n", innerer, FormatBinding(c.Binding))
		fmt.Fprintf(&b, "%s};\n", inner)
	}
	b.WriteString(profile.BaseIndent + "};\n")
	b.WriteString("};\n")
	return b.String()
}

func emitMacrosDtsi(d *layout.Data, profile Profile) string {
	if len(d.Macros) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("/ {\n")
	b.WriteString(profile.BaseIndent + "macros {\n")
	inner := strings.Repeat(profile.BaseIndent, 2)
	innerer := strings.Repeat(profile.BaseIndent, 3)
	for _, mac := range d.Macros {
		fmt.Fprintf(&b, "%s%s: %s {\n", inner, mac.Name, mac.Name)
		fmt.Fprintf(&b, "%scompatible = \"zmk,behavior-macro\";\n", innerer)
		fmt.Fprintf(&b, "%s#binding-cells = <0>;\n", innerer)
		if mac.WaitMs != nil {
			fmt.Fprintf(&b, "%swait-ms = <%d>;\n", innerer, *mac.WaitMs)
		}
		if mac.TapMs != nil {
			fmt.Fprintf(&b, "%stap-ms = <%d>;\n", innerer, *mac.TapMs)
		}
		parts := make([]string, len(mac.Bindings))
		for i, bd := range mac.Bindings {
			parts[i] = FormatBinding(bd)
		}
		fmt.Fprintf(&b, "%sbindings = <%s>;\n", innerer, strings.Join(parts, " "))
		fmt.Fprintf(&b, "%s};\n", inner)
	}
	b.WriteString(profile.BaseIndent + "};\n")
	b.WriteString("};\n")
	return b.String()
}

func emitKeymapNode(d *layout.Data, profile Profile) string {
	var b strings.Builder
	b.WriteString("/ {\n")
	b.WriteString(profile.BaseIndent + "keymap {\n")
	inner := strings.Repeat(profile.BaseIndent, 2)
	innerer := strings.Repeat(profile.BaseIndent, 3)
	fmt.Fprintf(&b, "%scompatible = \"zmk,keymap\";\n", inner)
	gap := strings.Repeat(" ", profile.KeyGap)
	for i, name := range d.LayerNames {
		fmt.Fprintf(&b, "%s%s {\n", inner, name)
		parts := make([]string, len(d.Layers[i]))
		for j, bd := range d.Layers[i] {
			parts[j] = FormatBinding(bd)
		}
		fmt.Fprintf(&b, "%sbindings = <%s>;\n", innerer, strings.Join(parts, gap))
		fmt.Fprintf(&b, "%s};\n", inner)
	}
	b.WriteString(profile.BaseIndent + "};\n")
	b.WriteString("};\n")
	return b.String()
}
