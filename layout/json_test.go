package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONMinimal(t *testing.T) {
	raw := []byte(`{
		"keyboard": "glove80",
		"title": "My Layout",
		"layerNames": ["default", "fn"],
		"layers": [["&kp Q", "&kp W"], []]
	}`)
	d, err := LoadJSON(raw, false)
	require.NoError(t, err)
	assert.Equal(t, "glove80", d.Keyboard)
	assert.Equal(t, []string{"default", "fn"}, d.LayerNames)
	require.Len(t, d.Layers, 2)
	require.Len(t, d.Layers[0], 2)
	assert.Equal(t, "&kp", d.Layers[0][0].Behavior)
	assert.Equal(t, "Q", d.Layers[0][0].Params[0].Value)
}

func TestLoadJSONSnakeCaseAliases(t *testing.T) {
	raw := []byte(`{
		"keyboard": "glove80",
		"hold_taps": [{"name": "hm", "bindings": ["&kp", "&kp"], "tapping_term_ms": 200}],
		"layer_names": ["default"],
		"layers": [[]]
	}`)
	d, err := LoadJSON(raw, false)
	require.NoError(t, err)
	require.Len(t, d.HoldTaps, 1)
	assert.Equal(t, "hm", d.HoldTaps[0].Name)
	require.NotNil(t, d.HoldTaps[0].TappingTermMs)
	assert.Equal(t, 200, *d.HoldTaps[0].TappingTermMs)
}

func TestLoadJSONObjectBinding(t *testing.T) {
	raw := []byte(`{
		"layerNames": ["default"],
		"layers": [[{"value": "&kp", "params": [{"value": "LC", "params": [{"value": "A"}]}]}]]
	}`)
	d, err := LoadJSON(raw, false)
	require.NoError(t, err)
	b := d.Layers[0][0]
	assert.Equal(t, "&kp", b.Behavior)
	require.Len(t, b.Params, 1)
	assert.Equal(t, "LC", b.Params[0].Value)
	require.Len(t, b.Params[0].Params, 1)
	assert.Equal(t, "A", b.Params[0].Params[0].Value)
}

func TestVariableResolution(t *testing.T) {
	raw := []byte(`{
		"layerNames": ["default"],
		"layers": [[]],
		"variables": {"name": "Glove80 Default"},
		"notes": "{{name}} layout"
	}`)
	resolved, err := LoadJSON(raw, false)
	require.NoError(t, err)
	assert.Equal(t, "Glove80 Default layout", resolved.Metadata.Notes)

	verbatim, err := LoadJSON(raw, true)
	require.NoError(t, err)
	assert.Equal(t, "{{name}} layout", verbatim.Metadata.Notes)
}

func TestLoadJSONFillsUUIDAndVersionDefaults(t *testing.T) {
	raw := []byte(`{"layerNames": ["default"], "layers": [[]]}`)
	d, err := LoadJSON(raw, false)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Metadata.UUID)
	assert.Equal(t, defaultMetadataVersion, d.Metadata.Version)
}

func TestLoadJSONRejectsInvalidSemver(t *testing.T) {
	raw := []byte(`{"layerNames": ["default"], "layers": [[]], "version": "not-a-version"}`)
	_, err := LoadJSON(raw, false)
	require.Error(t, err)
}

func TestLoadJSONPreservesExplicitVersion(t *testing.T) {
	raw := []byte(`{"layerNames": ["default"], "layers": [[]], "version": "2.1.0", "uuid": "fixed-id"}`)
	d, err := LoadJSON(raw, false)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", d.Metadata.Version)
	assert.Equal(t, "fixed-id", d.Metadata.UUID)
}

func TestYAMLRoundTrip(t *testing.T) {
	d := New("glove80", "My Layout")
	d.LayerNames = []string{"default"}
	d.Layers = []Layer{{{Behavior: "&kp", Params: []Param{{Value: "Q"}}}}}

	raw, err := DumpYAML(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "keyboard: glove80")

	back, err := LoadYAML(raw, false)
	require.NoError(t, err)
	assert.Equal(t, d.Keyboard, back.Keyboard)
	assert.Equal(t, d.LayerNames, back.LayerNames)
	assert.Equal(t, "&kp", back.Layers[0][0].Behavior)
}

func TestDumpJSONRoundTrip(t *testing.T) {
	d := New("glove80", "My Layout")
	d.LayerNames = []string{"default"}
	d.Layers = []Layer{{
		{Behavior: "&kp", Params: []Param{{Value: "Q"}}},
	}}
	d.HoldTaps = []HoldTap{{Name: "hm", Bindings: [2]string{"&kp", "&kp"}}}

	raw, err := DumpJSON(d)
	require.NoError(t, err)

	back, err := LoadJSON(raw, false)
	require.NoError(t, err)
	assert.Equal(t, d.Keyboard, back.Keyboard)
	assert.Equal(t, d.LayerNames, back.LayerNames)
	require.Len(t, back.Layers, 1)
	assert.Equal(t, d.Layers[0][0].Behavior, back.Layers[0][0].Behavior)
	require.Len(t, back.HoldTaps, 1)
	assert.Equal(t, "hm", back.HoldTaps[0].Name)
}
