package layout

// LayerManager is a fluent mutation façade over a Data's layers. It
// never holds its own copy of layer state — every method reads and
// writes through the *Data it was built on, so managers and proxies
// created from the same Data observe each other's edits immediately
// (concurrent mutation through two managers over one Data is a
// single-owner-discipline violation and left undefined).
type LayerManager struct {
	data *Data
}

// NewLayerManager builds a manager bound to data.
func NewLayerManager(data *Data) *LayerManager {
	return &LayerManager{data: data}
}

// Names returns layer names in insertion order.
func (m *LayerManager) Names() []string {
	out := make([]string, len(m.data.LayerNames))
	copy(out, m.data.LayerNames)
	return out
}

// Count returns the number of layers.
func (m *LayerManager) Count() int { return len(m.data.LayerNames) }

// Has reports whether a layer with the given name exists.
func (m *LayerManager) Has(name string) bool { return m.data.LayerIndex(name) >= 0 }

// Add appends (or, with position, inserts) a new empty layer. It
// panics with a ModelInvariantError if the name already exists.
func (m *LayerManager) Add(name string, position ...int) *LayerProxy {
	if m.Has(name) {
		throwInvariant("layout: layer %q already exists", name)
	}
	if len(position) > 0 {
		pos := position[0]
		if pos < 0 || pos > len(m.data.LayerNames) {
			throwInvariant("layout: insert position %d out of range for %d layers", pos, len(m.data.LayerNames))
		}
		m.data.LayerNames = insertString(m.data.LayerNames, pos, name)
		m.data.Layers = insertLayer(m.data.Layers, pos, Layer{})
	} else {
		m.data.LayerNames = append(m.data.LayerNames, name)
		m.data.Layers = append(m.data.Layers, Layer{})
	}
	return &LayerProxy{data: m.data, name: name}
}

// Get returns a proxy bound to an existing layer by name. It panics if
// the name does not exist — callers that need a non-fatal lookup
// should check Has first.
func (m *LayerManager) Get(name string) *LayerProxy {
	if !m.Has(name) {
		throwInvariant("layout: layer %q does not exist", name)
	}
	return &LayerProxy{data: m.data, name: name}
}

// Remove deletes a layer by name. Panics if the name does not exist.
func (m *LayerManager) Remove(name string) {
	idx := m.data.LayerIndex(name)
	if idx < 0 {
		throwInvariant("layout: cannot remove unknown layer %q", name)
	}
	m.data.LayerNames = append(m.data.LayerNames[:idx], m.data.LayerNames[idx+1:]...)
	m.data.Layers = append(m.data.Layers[:idx], m.data.Layers[idx+1:]...)
}

// Move repositions an existing layer to a new index.
func (m *LayerManager) Move(name string, position int) {
	idx := m.data.LayerIndex(name)
	if idx < 0 {
		throwInvariant("layout: cannot move unknown layer %q", name)
	}
	if position < 0 || position >= len(m.data.LayerNames) {
		throwInvariant("layout: move position %d out of range for %d layers", position, len(m.data.LayerNames))
	}
	n := m.data.LayerNames[idx]
	l := m.data.Layers[idx]
	m.data.LayerNames = append(m.data.LayerNames[:idx], m.data.LayerNames[idx+1:]...)
	m.data.Layers = append(m.data.Layers[:idx], m.data.Layers[idx+1:]...)
	m.data.LayerNames = insertString(m.data.LayerNames, position, n)
	m.data.Layers = insertLayer(m.data.Layers, position, l)
}

// Rename changes a layer's name in place, preserving its position and
// bindings. Panics if old does not exist or new already does.
func (m *LayerManager) Rename(oldName, newName string) {
	idx := m.data.LayerIndex(oldName)
	if idx < 0 {
		throwInvariant("layout: cannot rename unknown layer %q", oldName)
	}
	if oldName != newName && m.Has(newName) {
		throwInvariant("layout: cannot rename %q to %q: name already exists", oldName, newName)
	}
	m.data.LayerNames[idx] = newName
}

// Copy duplicates src's bindings into a new layer dst, appended at the end.
func (m *LayerManager) Copy(src, dst string) *LayerProxy {
	idx := m.data.LayerIndex(src)
	if idx < 0 {
		throwInvariant("layout: cannot copy unknown layer %q", src)
	}
	if m.Has(dst) {
		throwInvariant("layout: layer %q already exists", dst)
	}
	cp := make(Layer, len(m.data.Layers[idx]))
	copy(cp, m.data.Layers[idx])
	m.data.LayerNames = append(m.data.LayerNames, dst)
	m.data.Layers = append(m.data.Layers, cp)
	return &LayerProxy{data: m.data, name: dst}
}

// Clear empties a layer's bindings without removing it.
func (m *LayerManager) Clear(name string) {
	m.Get(name).Clear()
}

// Reorder replaces the layer ordering wholesale. newOrder must be a
// permutation of the existing layer names; otherwise the model is left
// unchanged and the call panics.
func (m *LayerManager) Reorder(newOrder []string) {
	if len(newOrder) != len(m.data.LayerNames) {
		throwInvariant("layout: reorder expects %d names, got %d", len(m.data.LayerNames), len(newOrder))
	}
	seen := map[string]bool{}
	for _, n := range newOrder {
		if !m.Has(n) || seen[n] {
			throwInvariant("layout: reorder %q is not a permutation of the current layers", newOrder)
		}
		seen[n] = true
	}
	newLayers := make([]Layer, len(newOrder))
	for i, n := range newOrder {
		newLayers[i] = m.data.Layers[m.data.LayerIndex(n)]
	}
	m.data.LayerNames = append([]string(nil), newOrder...)
	m.data.Layers = newLayers
}

// Find returns the names of layers matching predicate, in insertion order.
func (m *LayerManager) Find(predicate func(name string, layer Layer) bool) []string {
	var out []string
	for i, n := range m.data.LayerNames {
		if predicate(n, m.data.Layers[i]) {
			out = append(out, n)
		}
	}
	return out
}

// AddMultiple adds several empty layers as a single all-or-nothing
// operation: if any name already exists, the model is left unchanged.
func (m *LayerManager) AddMultiple(names []string) {
	for _, n := range names {
		if m.Has(n) {
			throwInvariant("layout: cannot add multiple layers, %q already exists", n)
		}
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			throwInvariant("layout: cannot add multiple layers, duplicate name %q in request", n)
		}
		seen[n] = true
	}
	for _, n := range names {
		m.data.LayerNames = append(m.data.LayerNames, n)
		m.data.Layers = append(m.data.Layers, Layer{})
	}
}

// RemoveMultiple removes several layers as a single all-or-nothing
// operation: if any name is missing, the model is left unchanged.
func (m *LayerManager) RemoveMultiple(names []string) {
	seen := map[string]bool{}
	for _, n := range names {
		if !m.Has(n) {
			throwInvariant("layout: cannot remove multiple layers, %q does not exist", n)
		}
		if seen[n] {
			throwInvariant("layout: cannot remove multiple layers, duplicate name %q in request", n)
		}
		seen[n] = true
	}
	for _, n := range names {
		m.Remove(n)
	}
}

func insertString(s []string, pos int, v string) []string {
	s = append(s, "")
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

func insertLayer(s []Layer, pos int, v Layer) []Layer {
	s = append(s, nil)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

// LayerProxy is a positional-edit handle on one layer. It holds only a
// name and the owning *Data — never a copy of the bindings — so
// reading through a proxy whose layer was removed after the proxy was
// created raises LayerNotFoundError on the very next access (it is
// resolved by name on every call, never cached).
type LayerProxy struct {
	data *Data
	name string
}

func (p *LayerProxy) resolve() (int, error) {
	idx := p.data.LayerIndex(p.name)
	if idx < 0 {
		return -1, &LayerNotFoundError{Name: p.name}
	}
	return idx, nil
}

// Name returns the layer name this proxy resolves by.
func (p *LayerProxy) Name() string { return p.name }

// Size returns the layer's current binding count, or an error if the
// layer has been removed since the proxy was created.
func (p *LayerProxy) Size() (int, error) {
	idx, err := p.resolve()
	if err != nil {
		return 0, err
	}
	return len(p.data.Layers[idx]), nil
}

// Get returns the binding at position i.
func (p *LayerProxy) Get(i int) (Binding, error) {
	idx, err := p.resolve()
	if err != nil {
		return Binding{}, err
	}
	layer := p.data.Layers[idx]
	if i < 0 || i >= len(layer) {
		return Binding{}, &LayerNotFoundError{Name: p.name}
	}
	return layer[i], nil
}

// Set writes the binding at position i, auto-extending the layer with
// "&none" placeholders if i is past the current end.
func (p *LayerProxy) Set(i int, b Binding) (*LayerProxy, error) {
	idx, err := p.resolve()
	if err != nil {
		return p, err
	}
	layer := p.data.Layers[idx]
	for len(layer) <= i {
		layer = append(layer, Binding{Behavior: "&none"})
	}
	layer[i] = b
	p.data.Layers[idx] = layer
	return p, nil
}

// Append adds a binding at the end of the layer.
func (p *LayerProxy) Append(b Binding) (*LayerProxy, error) {
	idx, err := p.resolve()
	if err != nil {
		return p, err
	}
	p.data.Layers[idx] = append(p.data.Layers[idx], b)
	return p, nil
}

// SetRange overwrites bindings [start:end) with bindings, which must
// have exactly end-start elements.
func (p *LayerProxy) SetRange(start, end int, bindings []Binding) (*LayerProxy, error) {
	idx, err := p.resolve()
	if err != nil {
		return p, err
	}
	if end-start != len(bindings) {
		throwInvariant("layout: SetRange(%d,%d) needs %d bindings, got %d", start, end, end-start, len(bindings))
	}
	layer := p.data.Layers[idx]
	for len(layer) < end {
		layer = append(layer, Binding{Behavior: "&none"})
	}
	copy(layer[start:end], bindings)
	p.data.Layers[idx] = layer
	return p, nil
}

// Clear empties the layer.
func (p *LayerProxy) Clear() (*LayerProxy, error) {
	idx, err := p.resolve()
	if err != nil {
		return p, err
	}
	p.data.Layers[idx] = Layer{}
	return p, nil
}

// CopyFrom copies another layer's bindings into this one, replacing
// its current contents. The layer slice is new, but each Binding is
// copied by value, so its Params slice is shared with the source
// layer's binding; nested params are not duplicated.
func (p *LayerProxy) CopyFrom(name string) (*LayerProxy, error) {
	idx, err := p.resolve()
	if err != nil {
		return p, err
	}
	srcIdx := p.data.LayerIndex(name)
	if srcIdx < 0 {
		return p, &LayerNotFoundError{Name: name}
	}
	cp := make(Layer, len(p.data.Layers[srcIdx]))
	copy(cp, p.data.Layers[srcIdx])
	p.data.Layers[idx] = cp
	return p, nil
}
