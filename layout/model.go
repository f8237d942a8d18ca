// Package layout holds the in-memory ZMK layout domain model (C4), its
// fluent layer/behavior managers (C5), and the JSON round-trip surface
// (C9). It has no dependency on the Devicetree AST package; extraction
// and emission sit on either side of it.
package layout

import (
	"fmt"
	"sort"
)

// Param is a single positional argument to a binding. It recurses to
// model nested behavior-call syntax such as `LC(LS(A))`: the outer
// Param has Value "LC" and one child Param "LS", which in turn has one
// child Param "A". A terminal Param (bare word or number) has no
// children. Depth is bounded only by the input; formatting code must
// use an explicit work stack rather than language recursion (see
// emit/binding_format.go) so a pathological input cannot blow the
// stack.
type Param struct {
	Value  string
	Params []Param
}

// IsTerminal reports whether this Param has no nested arguments.
func (p Param) IsTerminal() bool { return len(p.Params) == 0 }

// Binding is one key position's action: a behavior reference (always
// starting with "&") plus its positional parameters.
type Binding struct {
	Behavior string
	Params   []Param
}

// Layer is an ordered sequence of bindings; an empty layer is valid.
type Layer []Binding

// HoldTap models a `zmk,behavior-hold-tap` node.
type HoldTap struct {
	Name           string
	Description    string
	Bindings       [2]string // exactly two behavior references, e.g. "&kp", "&kp"
	TappingTermMs  *int
	QuickTapMs     *int
	Flavor         string
}

// Combo models a node under a `combos` parent.
type Combo struct {
	Name                string
	KeyPositions        []int
	Binding             Binding
	TimeoutMs           *int
	Layers              []int
	RequirePriorIdleMs  *int
}

// Macro models a `zmk,behavior-macro` node.
type Macro struct {
	Name     string
	Bindings []Binding
	WaitMs   *int
	TapMs    *int
}

// TapDance models a `zmk,behavior-tap-dance` node.
type TapDance struct {
	Name          string
	Bindings      []string // length >= 2
	TappingTermMs *int
}

// Metadata carries the free-form, non-structural fields of a layout
// document.
type Metadata struct {
	Creator string
	Date    string
	UUID    string
	Tags    []string
	Version string
	Notes   string
}

// Data is the top-level layout document.
type Data struct {
	Keyboard string
	Title    string

	LayerNames []string
	Layers     []Layer

	HoldTaps  []HoldTap
	Combos    []Combo
	Macros    []Macro
	TapDances []TapDance

	ConfigParameters map[string]interface{}
	configParamOrder []string

	CustomDefinedBehaviors string
	CustomDevicetree       string

	Variables map[string]interface{}

	Metadata Metadata
}

// New returns an empty, structurally valid Data for the given keyboard.
func New(keyboard, title string) *Data {
	return &Data{
		Keyboard:         keyboard,
		Title:            title,
		ConfigParameters: map[string]interface{}{},
		Variables:        map[string]interface{}{},
	}
}

// LayerIndex returns the index of a layer by name, or -1.
func (d *Data) LayerIndex(name string) int {
	for i, n := range d.LayerNames {
		if n == name {
			return i
		}
	}
	return -1
}

// HoldTapByName returns a pointer into d.HoldTaps for in-place mutation, or nil.
func (d *Data) HoldTapByName(name string) *HoldTap {
	for i := range d.HoldTaps {
		if d.HoldTaps[i].Name == name {
			return &d.HoldTaps[i]
		}
	}
	return nil
}

// MacroByName returns a pointer into d.Macros for in-place mutation, or nil.
func (d *Data) MacroByName(name string) *Macro {
	for i := range d.Macros {
		if d.Macros[i].Name == name {
			return &d.Macros[i]
		}
	}
	return nil
}

// TapDanceByName returns a pointer into d.TapDances for in-place mutation, or nil.
func (d *Data) TapDanceByName(name string) *TapDance {
	for i := range d.TapDances {
		if d.TapDances[i].Name == name {
			return &d.TapDances[i]
		}
	}
	return nil
}

// SetConfigParameter sets a configuration parameter, recording its
// name in configParamOrder the first time it is seen so Kconfig
// emission can reproduce declared order rather than an arbitrary map
// order.
func (d *Data) SetConfigParameter(name string, value interface{}) {
	if d.ConfigParameters == nil {
		d.ConfigParameters = map[string]interface{}{}
	}
	if _, exists := d.ConfigParameters[name]; !exists {
		d.configParamOrder = append(d.configParamOrder, name)
	}
	d.ConfigParameters[name] = value
}

// ConfigParameterOrder returns the names of ConfigParameters in
// declared order where known (set via SetConfigParameter), falling
// back to a sorted order for any entries that reached ConfigParameters
// another way (direct map assignment, or LoadJSON).
func (d *Data) ConfigParameterOrder() []string {
	seen := make(map[string]bool, len(d.configParamOrder))
	names := make([]string, 0, len(d.ConfigParameters))
	for _, name := range d.configParamOrder {
		if _, ok := d.ConfigParameters[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range d.ConfigParameters {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// ComboByName returns a pointer into d.Combos for in-place mutation, or nil.
func (d *Data) ComboByName(name string) *Combo {
	for i := range d.Combos {
		if d.Combos[i].Name == name {
			return &d.Combos[i]
		}
	}
	return nil
}

// CheckInvariants validates the structural invariants that must never
// be violated by direct construction (as opposed to the richer,
// accumulating checks in package validate): matching layer/name counts,
// unique layer and hold-tap names. LoadJSON calls it before returning
// a loaded document; the managers enforce their own per-operation
// checks and do not call it.
func (d *Data) CheckInvariants() error {
	if len(d.Layers) != len(d.LayerNames) {
		return fmt.Errorf("layout: %d layers but %d layer names", len(d.Layers), len(d.LayerNames))
	}
	seen := map[string]bool{}
	for _, n := range d.LayerNames {
		if seen[n] {
			return fmt.Errorf("layout: duplicate layer name %q", n)
		}
		seen[n] = true
	}
	seenHT := map[string]bool{}
	for _, ht := range d.HoldTaps {
		if seenHT[ht.Name] {
			return fmt.Errorf("layout: duplicate hold-tap name %q", ht.Name)
		}
		seenHT[ht.Name] = true
	}
	return nil
}
