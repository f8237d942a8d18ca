package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmk-layout/layout/dtast"
)

func TestExtractMinimalKeymap(t *testing.T) {
	src := `/ { keymap { compatible = "zmk,keymap";
  default_layer { bindings = <&kp Q &kp W &kp E>; };
}; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	assert.Equal(t, []string{"default_layer"}, data.LayerNames)
	require.Len(t, data.Layers, 1)
	require.Len(t, data.Layers[0], 3)
	assert.Equal(t, "&kp", data.Layers[0][0].Behavior)
	assert.Equal(t, "Q", data.Layers[0][0].Params[0].Value)
	assert.Equal(t, "W", data.Layers[0][1].Params[0].Value)
	assert.Equal(t, "E", data.Layers[0][2].Params[0].Value)
}

func TestExtractHoldTap(t *testing.T) {
	src := `/ { behaviors { hm: homerow_mods {
		compatible = "zmk,behavior-hold-tap";
		flavor = "tap-preferred";
		tapping-term-ms = <280>;
		bindings = <&kp>, <&kp>;
	}; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	require.Len(t, data.HoldTaps, 1)
	ht := data.HoldTaps[0]
	assert.Equal(t, "hm", ht.Name)
	assert.Equal(t, [2]string{"&kp", "&kp"}, ht.Bindings)
	require.NotNil(t, ht.TappingTermMs)
	assert.Equal(t, 280, *ht.TappingTermMs)
	assert.Equal(t, "tap-preferred", ht.Flavor)
}

func TestExtractNestedParamRoundTrip(t *testing.T) {
	src := `/ { a { bindings = <&kp LC(LS(A))>; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	// "a" is not a keymap node so nothing is lifted into layers; drive
	// the cell-list straight through the binding splitter instead.
	node := roots[0].Children[0]
	v := node.Property("bindings").Value
	bindings, d := splitBindingsFromValue(v, nil)
	require.Empty(t, d)
	require.Len(t, bindings, 1)
	b := bindings[0]
	assert.Equal(t, "&kp", b.Behavior)
	require.Len(t, b.Params, 1)
	lc := b.Params[0]
	assert.Equal(t, "LC", lc.Value)
	require.Len(t, lc.Params, 1)
	ls := lc.Params[0]
	assert.Equal(t, "LS", ls.Value)
	require.Len(t, ls.Params, 1)
	assert.Equal(t, "A", ls.Params[0].Value)
	_ = data
}

func TestExtractCombo(t *testing.T) {
	src := `/ { combos { compatible = "zmk,combos";
		esc_combo { timeout-ms = <50>; key-positions = <0 1>; bindings = <&kp ESC>; };
	}; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	require.Len(t, data.Combos, 1)
	c := data.Combos[0]
	assert.Equal(t, "esc_combo", c.Name)
	assert.Equal(t, []int{0, 1}, c.KeyPositions)
	require.NotNil(t, c.TimeoutMs)
	assert.Equal(t, 50, *c.TimeoutMs)
	assert.Equal(t, "&kp", c.Binding.Behavior)
	assert.Equal(t, "ESC", c.Binding.Params[0].Value)
}

func TestExtractErrorRecoveryStraySemicolon(t *testing.T) {
	src := `/ { keymap { compatible = "zmk,keymap";
		default { bindings = <&kp Q &kp ;>; };
		other { bindings = <&kp W>; };
	}; };`
	roots, parseErrs := dtast.Parse([]byte(src))
	require.Len(t, parseErrs, 1)

	data, _ := Extract(roots, []byte(src), nil)
	require.Len(t, data.LayerNames, 2)
	assert.Equal(t, []string{"default", "other"}, data.LayerNames)

	other := data.Layers[1]
	require.Len(t, other, 1)
	assert.Equal(t, "&kp", other[0].Behavior)
	assert.Equal(t, "W", other[0].Params[0].Value)
}

func TestExtractDefineSubstitution(t *testing.T) {
	src := "#define MY_LAYER 1\n/ { a { bindings = <&mo MY_LAYER>; }; };"
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	defines := HarvestDefines(roots)
	require.Equal(t, "1", defines["MY_LAYER"])

	v := roots[0].Children[0].Property("bindings").Value
	bindings, _ := splitBindingsFromValue(v, defines)
	require.Len(t, bindings, 1)
	assert.Equal(t, "1", bindings[0].Params[0].Value)
}

func TestExtractStandaloneParamWarning(t *testing.T) {
	src := `/ { a { bindings = <FOO &kp Q>; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	v := roots[0].Children[0].Property("bindings").Value
	bindings, diags := splitBindingsFromValue(v, nil)
	require.Len(t, diags, 1)
	require.Len(t, bindings, 1)
	assert.Equal(t, "&kp", bindings[0].Behavior)
}

func TestExtractMacroUnderMacrosParent(t *testing.T) {
	src := `/ { macros { my_macro: my_macro {
		compatible = "zmk,behavior-macro";
		bindings = <&macro_tap &kp A &kp B>;
	}; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	require.Len(t, data.Macros, 1)
	mac := data.Macros[0]
	assert.Equal(t, "my_macro", mac.Name)
	require.Len(t, mac.Bindings, 3)
	assert.Equal(t, "&macro_tap", mac.Bindings[0].Behavior)
	assert.Equal(t, "&kp", mac.Bindings[1].Behavior)
	assert.Equal(t, "A", mac.Bindings[1].Params[0].Value)
}

func TestExtractTapDance(t *testing.T) {
	src := `/ { behaviors { td0: tap_dance_0 {
		compatible = "zmk,behavior-tap-dance";
		tapping-term-ms = <200>;
		bindings = <&kp A &kp B>;
	}; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	require.Len(t, data.TapDances, 1)
	td := data.TapDances[0]
	assert.Equal(t, "td0", td.Name)
	assert.Equal(t, []string{"&kp", "&kp"}, td.Bindings)
}

func TestExtractInputListenerSyntheticCompatible(t *testing.T) {
	src := `&foo_input_listener {
		status = "okay";
	};`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	require.Contains(t, data.CustomDevicetree, "foo_input_listener")
	assert.Contains(t, data.CustomDevicetree, `compatible = "zmk,input-listener";`)
	assert.Contains(t, data.CustomDevicetree, `status = "okay";`)
}

func TestExtractUnknownCompatiblePassthrough(t *testing.T) {
	src := `/ { keymap { compatible = "zmk,keymap";
		default { bindings = <&kp A>; };
	}; soc { compatible = "vendor,custom-device"; reg = <0x1000>; }; };`
	roots, errs := dtast.Parse([]byte(src))
	require.Empty(t, errs)

	data, diags := Extract(roots, []byte(src), nil)
	require.Empty(t, diags)
	require.Len(t, data.LayerNames, 1)
	assert.Contains(t, data.CustomDevicetree, `compatible = "vendor,custom-device";`)
	assert.Contains(t, data.CustomDevicetree, "reg = <0x1000>;")
}
