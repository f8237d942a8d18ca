package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmk-layout/layout/layout"
)

func threeLayerData() *layout.Data {
	d := layout.New("glove80", "test")
	d.LayerNames = []string{"default", "lower", "raise"}
	d.Layers = []layout.Layer{{}, {}, {}}
	return d
}

func TestValidateLayerReferencesOutOfRange(t *testing.T) {
	d := threeLayerData()
	d.Layers[0] = layout.Layer{{Behavior: "&mo", Params: []layout.Param{{Value: "5"}}}}

	summary := New(d).ValidateLayerReferences().Collect()
	require.False(t, summary.IsValid())
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "5")
	assert.Contains(t, summary.Errors[0], "max_layer = 2")
}

func TestValidateLayerReferencesValidIndex(t *testing.T) {
	d := threeLayerData()
	d.Layers[0] = layout.Layer{{Behavior: "&mo", Params: []layout.Param{{Value: "1"}}}}

	summary := New(d).ValidateLayerReferences().Collect()
	assert.True(t, summary.IsValid())
}

func TestValidateLayerReferencesByName(t *testing.T) {
	d := threeLayerData()
	d.Layers[0] = layout.Layer{{Behavior: "&sl", Params: []layout.Param{{Value: "raise"}}}}
	summary := New(d).ValidateLayerReferences().Collect()
	assert.True(t, summary.IsValid())
}

func TestValidateBindingsUnknownBehaviorWarns(t *testing.T) {
	d := threeLayerData()
	d.Layers[0] = layout.Layer{{Behavior: "&undefined_behavior"}}

	summary := New(d).ValidateBindings().Collect()
	assert.True(t, summary.IsValid())
	require.Len(t, summary.Warnings, 1)
}

func TestValidateKeyPositionsWarningAndError(t *testing.T) {
	d := threeLayerData()
	big := make(layout.Layer, 10)
	for i := range big {
		big[i] = layout.Binding{Behavior: "&trans"}
	}
	d.Layers[0] = big

	summary := New(d).ValidateKeyPositions(5).Collect()
	assert.True(t, summary.IsValid())
	require.Len(t, summary.Warnings, 1)

	huge := make(layout.Layer, 201)
	for i := range huge {
		huge[i] = layout.Binding{Behavior: "&trans"}
	}
	d.Layers[1] = huge
	summary2 := New(d).ValidateKeyPositions(5).Collect()
	assert.False(t, summary2.IsValid())
}

func TestValidateComboPositionsOutOfRangeAndDuplicate(t *testing.T) {
	d := threeLayerData()
	d.Layers[0] = make(layout.Layer, 3)
	d.Combos = []layout.Combo{
		{Name: "c1", KeyPositions: []int{0, 1}, Binding: layout.Binding{Behavior: "&kp"}},
		{Name: "c2", KeyPositions: []int{1, 5}, Binding: layout.Binding{Behavior: "&kp"}},
	}
	summary := New(d).ValidateComboPositions().Collect()
	assert.False(t, summary.IsValid())
	require.NotEmpty(t, summary.Errors)
	require.NotEmpty(t, summary.Warnings)
}

func TestPipelineImmutability(t *testing.T) {
	d := threeLayerData()
	d.Layers[0] = layout.Layer{{Behavior: "&mo", Params: []layout.Param{{Value: "9"}}}}

	before := len(d.Layers[0])
	p := New(d)
	_ = p.ValidateLayerReferences().Collect()
	assert.Equal(t, before, len(d.Layers[0]))
	assert.Equal(t, []string{"default", "lower", "raise"}, d.LayerNames)

	base := New(d)
	withErrors := base.ValidateLayerReferences()
	assert.Empty(t, base.Collect().Errors)
	assert.NotEmpty(t, withErrors.Collect().Errors)
}

func TestValidateAllRunsEveryCheck(t *testing.T) {
	d := threeLayerData()
	summary := New(d).All(80).Collect()
	assert.True(t, summary.IsValid())
}
