package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmk-layout/layout/dtast"
	"github.com/zmk-layout/layout/extract"
	"github.com/zmk-layout/layout/layout"
)

func tappingTerm(ms int) *int { return &ms }

func TestEmitDeterminism(t *testing.T) {
	d := layout.New("glove80", "test")
	d.LayerNames = []string{"default"}
	d.Layers = []layout.Layer{{
		{Behavior: "&kp", Params: []layout.Param{{Value: "A"}}},
		{Behavior: "&mo", Params: []layout.Param{{Value: "1"}}},
	}}

	f1, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	f2, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}

func TestEmitLayerDefines(t *testing.T) {
	d := layout.New("glove80", "test")
	d.LayerNames = []string{"default", "lower"}
	d.Layers = []layout.Layer{{}, {}}

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.LayerDefines, "#define DEFAULT_LAYER 0")
	assert.Contains(t, frags.LayerDefines, "#define LOWER_LAYER 1")
}

func TestEmitHoldTap(t *testing.T) {
	d := layout.New("glove80", "test")
	d.HoldTaps = []layout.HoldTap{{
		Name:          "hm",
		Bindings:      [2]string{"&kp", "&kp"},
		Flavor:        "tap-preferred",
		TappingTermMs: tappingTerm(200),
	}}

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.BehaviorsDtsi, "hm: hm {")
	assert.Contains(t, frags.BehaviorsDtsi, "compatible = \"zmk,behavior-hold-tap\";")
	assert.Contains(t, frags.BehaviorsDtsi, "flavor = \"tap-preferred\";")
	assert.Contains(t, frags.BehaviorsDtsi, "tapping-term-ms = <200>;")
}

func TestEmitHoldTapMissingBindingPanics(t *testing.T) {
	d := layout.New("glove80", "test")
	d.HoldTaps = []layout.HoldTap{{Name: "hm", Bindings: [2]string{"&kp", ""}}}

	_, err := Emit(d, DefaultProfile())
	require.Error(t, err)
}

func TestEmitCombo(t *testing.T) {
	d := layout.New("glove80", "test")
	d.Layers = []layout.Layer{{}}
	d.LayerNames = []string{"default"}
	timeout := 50
	d.Combos = []layout.Combo{{
		Name:         "esc_combo",
		KeyPositions: []int{0, 1},
		Binding:      layout.Binding{Behavior: "&kp", Params: []layout.Param{{Value: "ESC"}}},
		TimeoutMs:    &timeout,
	}}

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.CombosDtsi, "compatible = \"zmk,combos\";")
	assert.Contains(t, frags.CombosDtsi, "esc_combo {")
	assert.Contains(t, frags.CombosDtsi, "key-positions = <0 1>;")
	assert.Contains(t, frags.CombosDtsi, "timeout-ms = <50>;")
	assert.Contains(t, frags.CombosDtsi, "bindings = <&kp ESC>;")
}

func TestEmitComboTooFewPositionsPanics(t *testing.T) {
	d := layout.New("glove80", "test")
	d.Combos = []layout.Combo{{Name: "bad", KeyPositions: []int{0}, Binding: layout.Binding{Behavior: "&kp"}}}

	_, err := Emit(d, DefaultProfile())
	require.Error(t, err)
}

func TestEmitMacro(t *testing.T) {
	d := layout.New("glove80", "test")
	d.Macros = []layout.Macro{{
		Name: "my_macro",
		Bindings: []layout.Binding{
			{Behavior: "&kp", Params: []layout.Param{{Value: "A"}}},
			{Behavior: "&kp", Params: []layout.Param{{Value: "B"}}},
		},
	}}

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.MacrosDtsi, "my_macro: my_macro {")
	assert.Contains(t, frags.MacrosDtsi, "bindings = <&kp A &kp B>;")
}

func TestEmitKeymapNode(t *testing.T) {
	d := layout.New("glove80", "test")
	d.LayerNames = []string{"default"}
	d.Layers = []layout.Layer{{
		{Behavior: "&kp", Params: []layout.Param{{Value: "A"}}},
	}}

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.KeymapNode, "compatible = \"zmk,keymap\";")
	assert.Contains(t, frags.KeymapNode, "default {")
	assert.Contains(t, frags.KeymapNode, "bindings = <&kp A>;")
}

func TestEmitKconfig(t *testing.T) {
	d := layout.New("glove80", "test")
	d.ConfigParameters = map[string]interface{}{
		"ZMK_SLEEP":        true,
		"ZMK_IDLE_TIMEOUT": 30000,
		"ZMK_KEYBOARD_NAME": "glove80",
	}

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.KconfigLines, "CONFIG_ZMK_SLEEP=y\n")
	assert.Contains(t, frags.KconfigLines, "CONFIG_ZMK_IDLE_TIMEOUT=30000\n")
	assert.Contains(t, frags.KconfigLines, `CONFIG_ZMK_KEYBOARD_NAME="glove80"`)
	assert.Equal(t, "y", frags.KconfigSettings["ZMK_SLEEP"])
}

// TestEmitNestedParamRoundTrip drives S3: a nested call-tree binding
// parses, extracts, and re-emits to the same textual form it started
// from.
func TestEmitNestedParamRoundTrip(t *testing.T) {
	src := `/ { k { compatible = "zmk,keymap"; default { bindings = <&kp LC(LS(A))>; }; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	d, diags := extract.Extract(roots, []byte(src), nil)
	require.Empty(t, diags)

	frags, err := Emit(d, DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, frags.KeymapNode, "bindings = <&kp LC(LS(A))>;")
}
