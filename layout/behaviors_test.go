package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBehaviorManagerAddCounts(t *testing.T) {
	d := New("glove80", "test")
	m := NewBehaviorManager(d)

	m.AddHoldTap(HoldTap{Name: "hm", Bindings: [2]string{"&kp", "&kp"}})
	m.AddCombo(Combo{Name: "esc", KeyPositions: []int{0, 1}, Binding: Binding{Behavior: "&kp"}})
	m.AddMacro(Macro{Name: "boot"})
	m.AddTapDance(TapDance{Name: "td0", Bindings: []string{"&kp", "&kp"}})

	assert.Equal(t, 4, m.TotalCount())
	assert.Equal(t, 1, m.HoldTapCount())
	assert.Equal(t, 1, m.ComboCount())
	assert.Equal(t, 1, m.MacroCount())
	assert.Equal(t, 1, m.TapDanceCount())
}

func TestBehaviorManagerDuplicateNamePanics(t *testing.T) {
	d := New("glove80", "test")
	m := NewBehaviorManager(d)
	m.AddHoldTap(HoldTap{Name: "hm", Bindings: [2]string{"&kp", "&kp"}})
	assert.Panics(t, func() {
		m.AddHoldTap(HoldTap{Name: "hm", Bindings: [2]string{"&kp", "&kp"}})
	})
}

func TestBehaviorManagerComboArityPanics(t *testing.T) {
	d := New("glove80", "test")
	m := NewBehaviorManager(d)
	assert.Panics(t, func() {
		m.AddCombo(Combo{Name: "bad", KeyPositions: []int{0}})
	})
}

func TestBehaviorManagerRemoveByName(t *testing.T) {
	d := New("glove80", "test")
	m := NewBehaviorManager(d)
	m.AddHoldTap(HoldTap{Name: "hm", Bindings: [2]string{"&kp", "&kp"}})
	m.AddMacro(Macro{Name: "boot"})

	m.RemoveByName("hm")
	assert.Equal(t, 1, m.TotalCount())
	assert.Equal(t, 0, m.HoldTapCount())

	m.RemoveByName("does-not-exist")
	assert.Equal(t, 1, m.TotalCount())
}

func TestBehaviorManagerFind(t *testing.T) {
	d := New("glove80", "test")
	m := NewBehaviorManager(d)
	m.AddHoldTap(HoldTap{Name: "hm", Bindings: [2]string{"&kp", "&kp"}})
	m.AddMacro(Macro{Name: "boot"})

	found := m.Find(func(name, kind string) bool { return kind == "macro" })
	assert.Equal(t, []string{"boot"}, found)
}
