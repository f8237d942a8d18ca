package layout

// BehaviorManager is a fluent façade over a Data's hold-taps, combos,
// macros and tap-dances. Like LayerManager it holds no state of its
// own beyond the *Data pointer.
type BehaviorManager struct {
	data *Data
}

// NewBehaviorManager builds a manager bound to data.
func NewBehaviorManager(data *Data) *BehaviorManager {
	return &BehaviorManager{data: data}
}

// AddHoldTap appends a hold-tap behavior. Panics if the name is
// already used by another hold-tap, or if ht.Bindings has an empty slot.
func (m *BehaviorManager) AddHoldTap(ht HoldTap) {
	if m.data.HoldTapByName(ht.Name) != nil {
		throwInvariant("layout: hold-tap %q already exists", ht.Name)
	}
	if ht.Bindings[0] == "" || ht.Bindings[1] == "" {
		throwInvariant("layout: hold-tap %q requires exactly two bindings", ht.Name)
	}
	m.data.HoldTaps = append(m.data.HoldTaps, ht)
}

// AddCombo appends a combo. Panics if the name is already used, or if
// fewer than two key positions are given.
func (m *BehaviorManager) AddCombo(c Combo) {
	if m.data.ComboByName(c.Name) != nil {
		throwInvariant("layout: combo %q already exists", c.Name)
	}
	if len(c.KeyPositions) < 2 {
		throwInvariant("layout: combo %q requires at least two key positions", c.Name)
	}
	m.data.Combos = append(m.data.Combos, c)
}

// AddMacro appends a macro. Panics if the name is already used.
func (m *BehaviorManager) AddMacro(mac Macro) {
	if m.data.MacroByName(mac.Name) != nil {
		throwInvariant("layout: macro %q already exists", mac.Name)
	}
	m.data.Macros = append(m.data.Macros, mac)
}

// AddTapDance appends a tap-dance. Panics if the name is already used,
// or if fewer than two bindings are given.
func (m *BehaviorManager) AddTapDance(td TapDance) {
	if m.data.TapDanceByName(td.Name) != nil {
		throwInvariant("layout: tap-dance %q already exists", td.Name)
	}
	if len(td.Bindings) < 2 {
		throwInvariant("layout: tap-dance %q requires at least two bindings", td.Name)
	}
	m.data.TapDances = append(m.data.TapDances, td)
}

// TotalCount returns the number of behaviors of every kind combined.
func (m *BehaviorManager) TotalCount() int {
	return len(m.data.HoldTaps) + len(m.data.Combos) + len(m.data.Macros) + len(m.data.TapDances)
}

// HoldTapCount, ComboCount, MacroCount, TapDanceCount report per-kind counts.
func (m *BehaviorManager) HoldTapCount() int  { return len(m.data.HoldTaps) }
func (m *BehaviorManager) ComboCount() int    { return len(m.data.Combos) }
func (m *BehaviorManager) MacroCount() int    { return len(m.data.Macros) }
func (m *BehaviorManager) TapDanceCount() int { return len(m.data.TapDances) }

// RemoveByName deletes a behavior of any kind by name; it is a no-op if
// no behavior with that name exists in any of the four kinds.
func (m *BehaviorManager) RemoveByName(name string) {
	for i := range m.data.HoldTaps {
		if m.data.HoldTaps[i].Name == name {
			m.data.HoldTaps = append(m.data.HoldTaps[:i], m.data.HoldTaps[i+1:]...)
			return
		}
	}
	for i := range m.data.Combos {
		if m.data.Combos[i].Name == name {
			m.data.Combos = append(m.data.Combos[:i], m.data.Combos[i+1:]...)
			return
		}
	}
	for i := range m.data.Macros {
		if m.data.Macros[i].Name == name {
			m.data.Macros = append(m.data.Macros[:i], m.data.Macros[i+1:]...)
			return
		}
	}
	for i := range m.data.TapDances {
		if m.data.TapDances[i].Name == name {
			m.data.TapDances = append(m.data.TapDances[:i], m.data.TapDances[i+1:]...)
			return
		}
	}
}

// Find returns the names of all behaviors (any kind) matching predicate.
func (m *BehaviorManager) Find(predicate func(name, kind string) bool) []string {
	var out []string
	for _, ht := range m.data.HoldTaps {
		if predicate(ht.Name, "hold-tap") {
			out = append(out, ht.Name)
		}
	}
	for _, c := range m.data.Combos {
		if predicate(c.Name, "combo") {
			out = append(out, c.Name)
		}
	}
	for _, mac := range m.data.Macros {
		if predicate(mac.Name, "macro") {
			out = append(out, mac.Name)
		}
	}
	for _, td := range m.data.TapDances {
		if predicate(td.Name, "tap-dance") {
			out = append(out, td.Name)
		}
	}
	return out
}
