// Package zmklayout is the module's root fluent façade: Layout wraps
// a layout.Data with its managers and a terminal Export() into the
// export package's builders, and FromString auto-detects JSON vs
// Devicetree source.
package zmklayout

import (
	"strings"

	"github.com/zmk-layout/layout/dtast"
	"github.com/zmk-layout/layout/export"
	"github.com/zmk-layout/layout/extract"
	"github.com/zmk-layout/layout/layout"
	"github.com/zmk-layout/layout/validate"
)

// Layout is the single-owner façade over one layout.Data: its
// LayerManager and BehaviorManager borrow from the same Data, so
// mutating through Layers() is visible through Behaviors() and vice
// versa.
type Layout struct {
	data      *layout.Data
	layers    *layout.LayerManager
	behaviors *layout.BehaviorManager
}

// New starts an empty layout for the given keyboard.
func New(keyboard, title string) *Layout {
	return wrap(layout.New(keyboard, title))
}

func wrap(d *layout.Data) *Layout {
	return &Layout{
		data:      d,
		layers:    layout.NewLayerManager(d),
		behaviors: layout.NewBehaviorManager(d),
	}
}

// Data returns the underlying model for direct field access.
func (l *Layout) Data() *layout.Data { return l.data }

// Layers returns the fluent layer manager bound to this layout.
func (l *Layout) Layers() *layout.LayerManager { return l.layers }

// Behaviors returns the fluent behavior manager bound to this layout.
func (l *Layout) Behaviors() *layout.BehaviorManager { return l.behaviors }

// FromString auto-detects JSON vs Devicetree input: input starting
// with '{' after leading whitespace is parsed as the JSON layout
// document; anything else is parsed as Devicetree source and lifted
// via package extract. Parse/extraction diagnostics are returned as
// notes rather than failing the call — neither the parser nor the
// extractor ever aborts.
func FromString(content string, defines map[string]string) (*Layout, []string, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		d, err := layout.LoadJSON([]byte(content), false)
		if err != nil {
			return nil, nil, err
		}
		return wrap(d), nil, nil
	}

	roots, perrs := dtast.Parse([]byte(content))
	var notes []string
	for _, e := range perrs {
		notes = append(notes, e.Error())
	}

	defs := defines
	if defs == nil {
		defs = extract.HarvestDefines(roots)
	}
	d, diags := extract.Extract(roots, []byte(content), defs)
	for _, dg := range diags {
		notes = append(notes, dg.String())
	}
	return wrap(d), notes, nil
}

// ToJSON dumps the layout to its camelCase wire form.
func (l *Layout) ToJSON() ([]byte, error) { return layout.DumpJSON(l.data) }

// Validate runs the full validation pipeline and collects its
// findings.
func (l *Layout) Validate(maxKeys int) validate.Summary {
	return validate.New(l.data).All(maxKeys).Collect()
}

// Export starts a KeymapBuilder pre-seeded from this layout, matching
// the fluent demo's `layout.export.keymap(profile)` call shape.
// provider may be nil to use package emit's built-in defaults.
func (l *Layout) Export(provider export.ConfigurationProvider) *export.KeymapBuilder {
	return export.NewKeymapBuilder(l.data, provider)
}

// ExportConfig starts a ConfigBuilder pre-seeded from this layout.
func (l *Layout) ExportConfig(provider export.ConfigurationProvider) *export.ConfigBuilder {
	return export.NewConfigBuilder(l.data, provider)
}
