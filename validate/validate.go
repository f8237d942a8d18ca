// Package validate implements the immutable, accumulating validation
// pipeline over a layout.Data (C6): each check is independently
// invocable, side-effect-free, and returns a new Pipeline value
// carrying the union of prior findings plus any it adds itself. The
// underlying layout.Data is never mutated by any check.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zmk-layout/layout/layout"
)

// Finding is a single validation error or warning.
type Finding struct {
	Message string
	IsError bool
}

// knownBehaviors is the glossary's "Known Behaviors" set: built-in ZMK
// behaviors that never need a user definition to be considered valid.
var knownBehaviors = map[string]bool{
	"&kp": true, "&mt": true, "&lt": true, "&mo": true, "&to": true,
	"&tog": true, "&sl": true, "&trans": true, "&none": true,
	"&bootloader": true, "&reset": true, "&key_repeat": true,
	"&caps_word": true, "&sk": true, "&gresc": true, "&rgb_ug": true,
	"&bt": true, "&ext_power": true, "&out": true,
}

// layerIndexBehaviors take a layer index as their first parameter.
var layerIndexBehaviors = map[string]bool{
	"&mo": true, "&lt": true, "&sl": true, "&to": true, "&tog": true,
}

// underscoreConventions names the behavior-name prefixes that, absent
// a matching user-defined behavior, earn a warning.
var underscoreConventions = []string{"&hm_", "&hrm_", "&ht_", "&sk_", "&sl_"}

// Pipeline is an immutable accumulator of validation findings over one
// layout.Data. Each With* method returns a new Pipeline; it never
// mutates the receiver or the underlying Data.
type Pipeline struct {
	data     *layout.Data
	findings []Finding
}

// New starts an empty pipeline bound to data.
func New(data *layout.Data) Pipeline {
	return Pipeline{data: data}
}

func (p Pipeline) with(found []Finding) Pipeline {
	next := Pipeline{data: p.data, findings: make([]Finding, 0, len(p.findings)+len(found))}
	next.findings = append(next.findings, p.findings...)
	next.findings = append(next.findings, found...)
	return next
}

func knownBehaviorName(d *layout.Data, behavior string) bool {
	if knownBehaviors[behavior] {
		return true
	}
	name := strings.TrimPrefix(behavior, "&")
	if d.HoldTapByName(name) != nil || d.MacroByName(name) != nil || d.TapDanceByName(name) != nil {
		return true
	}
	return false
}

func allBindings(d *layout.Data) []layout.Binding {
	var out []layout.Binding
	for _, layer := range d.Layers {
		out = append(out, layer...)
	}
	for _, combo := range d.Combos {
		out = append(out, combo.Binding)
	}
	for _, mac := range d.Macros {
		out = append(out, mac.Bindings...)
	}
	return out
}

// ValidateBindings is check 1: every binding value starts with "&";
// behaviors outside the known-good set or a user-defined name earn a
// warning, never an error.
func (p Pipeline) ValidateBindings() Pipeline {
	var found []Finding
	for _, b := range allBindings(p.data) {
		if !strings.HasPrefix(b.Behavior, "&") {
			found = append(found, Finding{Message: fmt.Sprintf("binding %q does not start with '&'", b.Behavior), IsError: true})
			continue
		}
		if !knownBehaviorName(p.data, b.Behavior) {
			found = append(found, Finding{Message: fmt.Sprintf("binding %q is not a known or user-defined behavior", b.Behavior)})
		}
	}
	return p.with(found)
}

// ValidateLayerReferences is check 2: &mo/&lt/&sl/&to/&tog's first
// parameter must resolve to a valid layer index or name.
func (p Pipeline) ValidateLayerReferences() Pipeline {
	var found []Finding
	maxLayer := len(p.data.LayerNames) - 1
	walkLayerRefBindings(p.data, func(b layout.Binding) {
		if len(b.Params) == 0 {
			found = append(found, Finding{Message: fmt.Sprintf("%s requires a layer parameter", b.Behavior), IsError: true})
			return
		}
		val := b.Params[0].Value
		if n, ok := asInt(val); ok {
			if n < 0 || n > maxLayer {
				found = append(found, Finding{
					Message: fmt.Sprintf("%s %d is out of range, max_layer = %d", b.Behavior, n, maxLayer),
					IsError: true,
				})
			}
			return
		}
		if p.data.LayerIndex(val) >= 0 {
			return
		}
		if looksUnresolved(val) {
			return
		}
		found = append(found, Finding{
			Message: fmt.Sprintf("%s references unknown layer %q", b.Behavior, val),
			IsError: true,
		})
	})
	return p.with(found)
}

func walkLayerRefBindings(d *layout.Data, fn func(layout.Binding)) {
	for _, b := range allBindings(d) {
		if layerIndexBehaviors[b.Behavior] {
			fn(b)
		}
	}
}

func asInt(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

func looksUnresolved(s string) bool {
	return strings.HasPrefix(s, "$") || (strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}"))
}

// ValidateKeyPositions is check 3: a layer over the configured max is
// a warning; over 200 bindings is an error (likely data corruption).
func (p Pipeline) ValidateKeyPositions(maxKeys int) Pipeline {
	var found []Finding
	for i, layer := range p.data.Layers {
		size := len(layer)
		name := p.data.LayerNames[i]
		switch {
		case size > 200:
			found = append(found, Finding{Message: fmt.Sprintf("layer %q has %d bindings, exceeding 200", name, size), IsError: true})
		case size > maxKeys:
			found = append(found, Finding{Message: fmt.Sprintf("layer %q has %d bindings, exceeding max_keys %d", name, size, maxKeys)})
		}
	}
	return p.with(found)
}

// ValidateBehaviorReferences is check 4: names matching a
// conventional user-behavior prefix without a matching user definition
// earn a warning.
func (p Pipeline) ValidateBehaviorReferences() Pipeline {
	offenders := map[string]bool{}
	for _, b := range allBindings(p.data) {
		for _, prefix := range underscoreConventions {
			if strings.HasPrefix(b.Behavior, prefix) && !knownBehaviorName(p.data, b.Behavior) {
				offenders[b.Behavior] = true
			}
		}
	}
	if len(offenders) == 0 {
		return p
	}
	names := make([]string, 0, len(offenders))
	for name := range offenders {
		names = append(names, name)
	}
	sort.Strings(names)
	return p.with([]Finding{{Message: fmt.Sprintf("undefined conventionally-named behaviors: %s", strings.Join(names, ", "))}})
}

// ValidateComboPositions is check 5: each combo key position must be
// below the layout's largest layer size; duplicate positions across
// combos earn a warning.
func (p Pipeline) ValidateComboPositions() Pipeline {
	var found []Finding
	maxPos := 0
	for _, layer := range p.data.Layers {
		if len(layer) > maxPos {
			maxPos = len(layer)
		}
	}
	seen := map[int][]string{}
	for _, c := range p.data.Combos {
		for _, pos := range c.KeyPositions {
			if pos >= maxPos {
				found = append(found, Finding{
					Message: fmt.Sprintf("combo %q key position %d exceeds max_key_position %d", c.Name, pos, maxPos),
					IsError: true,
				})
			}
			seen[pos] = append(seen[pos], c.Name)
		}
	}
	positions := make([]int, 0, len(seen))
	for pos := range seen {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	for _, pos := range positions {
		names := seen[pos]
		if len(names) > 1 {
			found = append(found, Finding{Message: fmt.Sprintf("key position %d is used by multiple combos: %s", pos, strings.Join(names, ", "))})
		}
	}
	return p.with(found)
}

// All runs every check with the given max_keys budget, in a fixed
// order.
func (p Pipeline) All(maxKeys int) Pipeline {
	return p.ValidateBindings().
		ValidateLayerReferences().
		ValidateKeyPositions(maxKeys).
		ValidateBehaviorReferences().
		ValidateComboPositions()
}

// Summary is the terminal ValidationSummary { errors, warnings, is_valid }.
type Summary struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether the summary carries no errors (warnings do
// not affect validity).
func (s Summary) IsValid() bool { return len(s.Errors) == 0 }

// Collect flattens the pipeline's accumulated findings into a Summary.
func (p Pipeline) Collect() Summary {
	var s Summary
	for _, f := range p.findings {
		if f.IsError {
			s.Errors = append(s.Errors, f.Message)
		} else {
			s.Warnings = append(s.Warnings, f.Message)
		}
	}
	return s
}
