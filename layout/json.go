package layout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blang/semver"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	yaml "gopkg.in/yaml.v3"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// docBinding is the wire shape of a Binding: either a bare string
// ("&kp A") or an object ({"value": "&kp", "params": [...]}). It
// mirrors the Python original's duck-typed accept-either behavior with
// an explicit tagged union instead.
type docBinding struct {
	raw string
	obj *docBindingObj
}

type docBindingObj struct {
	Value  string      `json:"value"`
	Params []docParam  `json:"params,omitempty"`
}

type docParam struct {
	Value  string     `json:"value"`
	Params []docParam `json:"params,omitempty"`
}

func (b *docBinding) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := jsonAPI.Unmarshal(data, &s); err != nil {
			return err
		}
		b.raw = s
		return nil
	}
	var obj docBindingObj
	if err := jsonAPI.Unmarshal(data, &obj); err != nil {
		return err
	}
	b.obj = &obj
	return nil
}

func (b docBinding) MarshalJSON() ([]byte, error) {
	if b.obj == nil || len(b.obj.Params) == 0 {
		s := b.raw
		if s == "" && b.obj != nil {
			s = b.obj.Value
		}
		return jsonAPI.Marshal(s)
	}
	return jsonAPI.Marshal(b.obj)
}

func paramFromDoc(p docParam) Param {
	out := Param{Value: p.Value}
	for _, c := range p.Params {
		out.Params = append(out.Params, paramFromDoc(c))
	}
	return out
}

func paramToDoc(p Param) docParam {
	out := docParam{Value: p.Value}
	for _, c := range p.Params {
		out.Params = append(out.Params, paramToDoc(c))
	}
	return out
}

// bindingFromDoc maps an object binding directly, or splits a raw
// string such as "&kp A" (the wire shorthand for a behavior with only
// bare-word/number params) into its behavior and flat params.
func bindingFromDoc(b docBinding) Binding {
	if b.obj != nil {
		out := Binding{Behavior: b.obj.Value}
		for _, p := range b.obj.Params {
			out.Params = append(out.Params, paramFromDoc(p))
		}
		return out
	}
	fields := strings.Fields(b.raw)
	if len(fields) == 0 {
		return Binding{}
	}
	out := Binding{Behavior: fields[0]}
	for _, f := range fields[1:] {
		out.Params = append(out.Params, Param{Value: f})
	}
	return out
}

func bindingToDoc(b Binding) docBinding {
	if len(b.Params) == 0 {
		return docBinding{raw: b.Behavior}
	}
	allBare := true
	for _, p := range b.Params {
		if !p.IsTerminal() {
			allBare = false
			break
		}
	}
	if allBare {
		parts := make([]string, 0, len(b.Params)+1)
		parts = append(parts, b.Behavior)
		for _, p := range b.Params {
			parts = append(parts, p.Value)
		}
		return docBinding{raw: strings.Join(parts, " ")}
	}
	obj := &docBindingObj{Value: b.Behavior}
	for _, p := range b.Params {
		obj.Params = append(obj.Params, paramToDoc(p))
	}
	return docBinding{obj: obj}
}

type docHoldTap struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Bindings      []string `json:"bindings"`
	TappingTermMs *int   `json:"tappingTermMs,omitempty"`
	QuickTapMs    *int   `json:"quickTapMs,omitempty"`
	Flavor        string `json:"flavor,omitempty"`
}

type docCombo struct {
	Name               string     `json:"name"`
	KeyPositions       []int      `json:"keyPositions"`
	Binding            docBinding `json:"binding"`
	TimeoutMs          *int       `json:"timeoutMs,omitempty"`
	Layers             []int      `json:"layers,omitempty"`
	RequirePriorIdleMs *int       `json:"requirePriorIdleMs,omitempty"`
}

type docMacro struct {
	Name     string       `json:"name"`
	Bindings []docBinding `json:"bindings,omitempty"`
	WaitMs   *int         `json:"waitMs,omitempty"`
	TapMs    *int         `json:"tapMs,omitempty"`
}

type docTapDance struct {
	Name          string   `json:"name"`
	Bindings      []string `json:"bindings"`
	TappingTermMs *int     `json:"tappingTermMs,omitempty"`
}

// document is the flat top-level wire object with camelCase-preferred
// field names. Alias resolution
// (holdTaps ↔ hold_taps, keyPositions ↔ key_positions, ...) happens in
// LoadJSON by pre-scanning the raw object for either spelling before
// jsoniter unmarshals into this struct.
type document struct {
	Keyboard         string                 `json:"keyboard,omitempty"`
	Title            string                 `json:"title,omitempty"`
	LayerNames       []string               `json:"layerNames,omitempty"`
	Layers           [][]docBinding         `json:"layers,omitempty"`
	HoldTaps         []docHoldTap           `json:"holdTaps,omitempty"`
	Combos           []docCombo             `json:"combos,omitempty"`
	Macros           []docMacro             `json:"macros,omitempty"`
	TapDances        []docTapDance          `json:"tapDances,omitempty"`
	ConfigParameters map[string]interface{} `json:"configParameters,omitempty"`
	CustomDefinedBehaviors string           `json:"customDefinedBehaviors,omitempty"`
	CustomDevicetree string                 `json:"customDevicetree,omitempty"`
	Variables        map[string]interface{} `json:"variables,omitempty"`
	Creator          string                 `json:"creator,omitempty"`
	Date             string                 `json:"date,omitempty"`
	UUID             string                 `json:"uuid,omitempty"`
	Tags             []string               `json:"tags,omitempty"`
	Version          string                 `json:"version,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
}

// aliasPairs maps every camelCase wire key that has a documented
// snake_case alias to that alias, so LoadJSON accepts either spelling
// interchangeably.
var aliasPairs = map[string]string{
	"layerNames":             "layer_names",
	"holdTaps":               "hold_taps",
	"tapDances":              "tap_dances",
	"keyPositions":           "key_positions",
	"configParameters":       "config_parameters",
	"customDefinedBehaviors": "custom_defined_behaviors",
	"customDevicetree":       "custom_devicetree",
	"tappingTermMs":          "tapping_term_ms",
	"quickTapMs":             "quick_tap_ms",
	"timeoutMs":              "timeout_ms",
	"waitMs":                 "wait_ms",
	"tapMs":                  "tap_ms",
	"requirePriorIdleMs":     "require_prior_idle_ms",
}

// normalizeAliases rewrites any top-level or nested snake_case key that
// has a camelCase counterpart in aliasPairs, so the rest of the load
// path only ever sees camelCase. It walks generic map/slice structure
// produced by a raw jsoniter decode.
func normalizeAliases(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, sub := range val {
			key := k
			for camel, snake := range aliasPairs {
				if k == snake {
					key = camel
					break
				}
			}
			out[key] = normalizeAliases(sub)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, sub := range val {
			out[i] = normalizeAliases(sub)
		}
		return out
	default:
		return v
	}
}

var templateVarRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// resolveVariables substitutes every "{{name}}" occurrence in s with
// the string form of vars[name], leaving unresolvable placeholders
// verbatim.
func resolveVariables(s string, vars map[string]interface{}) string {
	return templateVarRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := templateVarRe.FindStringSubmatch(m)
		name := sub[1]
		val, ok := vars[name]
		if !ok {
			return m
		}
		return fmt.Sprintf("%v", val)
	})
}

// LoadJSON parses a JSON layout document. When
// skipVariableResolution is false, any "{{name}}" placeholder found in
// string fields (keyboard, title, notes, custom_devicetree and
// custom_defined_behaviors) is substituted from the document's own
// variables map before the Data is returned; round-tripping code that
// wants to preserve placeholders verbatim should pass true.
func LoadJSON(raw []byte, skipVariableResolution bool) (*Data, error) {
	var generic interface{}
	if err := jsonAPI.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("layout: invalid JSON: %w", err)
	}
	normalized := normalizeAliases(generic)
	reencoded, err := jsonAPI.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("layout: alias normalization failed: %w", err)
	}

	var doc document
	if err := jsonAPI.Unmarshal(reencoded, &doc); err != nil {
		return nil, fmt.Errorf("layout: schema mismatch: %w", err)
	}

	d := New(doc.Keyboard, doc.Title)
	d.LayerNames = append([]string(nil), doc.LayerNames...)
	for _, layer := range doc.Layers {
		l := make(Layer, len(layer))
		for i, b := range layer {
			l[i] = bindingFromDoc(b)
		}
		d.Layers = append(d.Layers, l)
	}
	for _, ht := range doc.HoldTaps {
		out := HoldTap{Name: ht.Name, Description: ht.Description, Flavor: ht.Flavor, TappingTermMs: ht.TappingTermMs, QuickTapMs: ht.QuickTapMs}
		if len(ht.Bindings) > 0 {
			out.Bindings[0] = ht.Bindings[0]
		}
		if len(ht.Bindings) > 1 {
			out.Bindings[1] = ht.Bindings[1]
		}
		d.HoldTaps = append(d.HoldTaps, out)
	}
	for _, c := range doc.Combos {
		d.Combos = append(d.Combos, Combo{
			Name:               c.Name,
			KeyPositions:       append([]int(nil), c.KeyPositions...),
			Binding:            bindingFromDoc(c.Binding),
			TimeoutMs:          c.TimeoutMs,
			Layers:             append([]int(nil), c.Layers...),
			RequirePriorIdleMs: c.RequirePriorIdleMs,
		})
	}
	for _, mac := range doc.Macros {
		out := Macro{Name: mac.Name, WaitMs: mac.WaitMs, TapMs: mac.TapMs}
		for _, b := range mac.Bindings {
			out.Bindings = append(out.Bindings, bindingFromDoc(b))
		}
		d.Macros = append(d.Macros, out)
	}
	for _, td := range doc.TapDances {
		d.TapDances = append(d.TapDances, TapDance{
			Name:          td.Name,
			Bindings:      append([]string(nil), td.Bindings...),
			TappingTermMs: td.TappingTermMs,
		})
	}
	if doc.ConfigParameters != nil {
		// The generic alias-normalization pass above decodes through a
		// map[string]interface{}, which already discards whatever
		// declaration order the source JSON had; ConfigParameterOrder's
		// sorted fallback covers parameters loaded this way.
		d.ConfigParameters = doc.ConfigParameters
	}
	d.CustomDefinedBehaviors = doc.CustomDefinedBehaviors
	d.CustomDevicetree = doc.CustomDevicetree
	if doc.Variables != nil {
		d.Variables = doc.Variables
	}
	d.Metadata = Metadata{
		Creator: doc.Creator,
		Date:    doc.Date,
		UUID:    doc.UUID,
		Tags:    append([]string(nil), doc.Tags...),
		Version: doc.Version,
		Notes:   doc.Notes,
	}

	if !skipVariableResolution && len(d.Variables) > 0 {
		d.Keyboard = resolveVariables(d.Keyboard, d.Variables)
		d.Title = resolveVariables(d.Title, d.Variables)
		d.CustomDevicetree = resolveVariables(d.CustomDevicetree, d.Variables)
		d.CustomDefinedBehaviors = resolveVariables(d.CustomDefinedBehaviors, d.Variables)
		d.Metadata.Notes = resolveVariables(d.Metadata.Notes, d.Variables)
	}

	if err := validateVersion(d.Metadata.Version); err != nil {
		return nil, err
	}
	ensureDefaults(d)

	if err := d.CheckInvariants(); err != nil {
		return nil, err
	}
	return d, nil
}

// DumpJSON serializes Data back to the document wire shape,
// preferring camelCase keys and omitting unset optional fields.
func DumpJSON(d *Data) ([]byte, error) {
	doc := document{
		Keyboard:               d.Keyboard,
		Title:                   d.Title,
		LayerNames:              d.LayerNames,
		ConfigParameters:        d.ConfigParameters,
		CustomDefinedBehaviors:  d.CustomDefinedBehaviors,
		CustomDevicetree:        d.CustomDevicetree,
		Variables:               d.Variables,
		Creator:                 d.Metadata.Creator,
		Date:                    d.Metadata.Date,
		UUID:                    d.Metadata.UUID,
		Tags:                    d.Metadata.Tags,
		Version:                 d.Metadata.Version,
		Notes:                   d.Metadata.Notes,
	}
	for _, layer := range d.Layers {
		row := make([]docBinding, len(layer))
		for i, b := range layer {
			row[i] = bindingToDoc(b)
		}
		doc.Layers = append(doc.Layers, row)
	}
	for _, ht := range d.HoldTaps {
		doc.HoldTaps = append(doc.HoldTaps, docHoldTap{
			Name: ht.Name, Description: ht.Description, Flavor: ht.Flavor,
			Bindings:      []string{ht.Bindings[0], ht.Bindings[1]},
			TappingTermMs: ht.TappingTermMs, QuickTapMs: ht.QuickTapMs,
		})
	}
	for _, c := range d.Combos {
		doc.Combos = append(doc.Combos, docCombo{
			Name: c.Name, KeyPositions: c.KeyPositions, Binding: bindingToDoc(c.Binding),
			TimeoutMs: c.TimeoutMs, Layers: c.Layers, RequirePriorIdleMs: c.RequirePriorIdleMs,
		})
	}
	for _, mac := range d.Macros {
		dm := docMacro{Name: mac.Name, WaitMs: mac.WaitMs, TapMs: mac.TapMs}
		for _, b := range mac.Bindings {
			dm.Bindings = append(dm.Bindings, bindingToDoc(b))
		}
		doc.Macros = append(doc.Macros, dm)
	}
	for _, td := range d.TapDances {
		doc.TapDances = append(doc.TapDances, docTapDance{Name: td.Name, Bindings: td.Bindings, TappingTermMs: td.TappingTermMs})
	}
	return jsonAPI.MarshalIndent(doc, "", "  ")
}

// defaultMetadataVersion seeds Metadata.Version when LoadJSON reads a
// document that carries none.
const defaultMetadataVersion = "1.0.0"

// ensureDefaults fills Metadata.UUID and Metadata.Version when absent.
// LoadJSON calls it before handing a document back to the caller; New
// and the extractor leave both fields empty.
func ensureDefaults(d *Data) {
	if d.Metadata.UUID == "" {
		d.Metadata.UUID = uuid.NewString()
	}
	if d.Metadata.Version == "" {
		d.Metadata.Version = defaultMetadataVersion
	}
}

// validateVersion parses Metadata.Version as semver, the way the
// teacher's own version comparisons across config/ and the CLI rely on
// github.com/blang/semver rather than ad hoc string comparison. An
// unparsable version is a load error: a document claiming a version
// the toolkit cannot order against others is not safely round-trippable.
func validateVersion(v string) error {
	if v == "" {
		return nil
	}
	if _, err := semver.Parse(v); err != nil {
		return fmt.Errorf("layout: metadata.version %q is not valid semver: %w", v, err)
	}
	return nil
}

// LoadYAML is LoadJSON's YAML-flavored sibling: the same document
// schema, hand-authored as YAML instead of JSON. YAML is an additive
// convenience for hand-maintained layout documents, mirroring the
// JSON/YAML dual acceptance pattern used elsewhere in this codebase's
// lineage.
func LoadYAML(raw []byte, skipVariableResolution bool) (*Data, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("layout: invalid YAML: %w", err)
	}
	asJSON, err := jsonAPI.Marshal(convertYAMLMaps(generic))
	if err != nil {
		return nil, fmt.Errorf("layout: YAML re-encoding failed: %w", err)
	}
	return LoadJSON(asJSON, skipVariableResolution)
}

// DumpYAML serializes Data to the YAML-flavored wire shape.
func DumpYAML(d *Data) ([]byte, error) {
	raw, err := DumpJSON(d)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := jsonAPI.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

// convertYAMLMaps rewrites the map[string]interface{} (and nested
// map[interface{}]interface{}) shape yaml.v3 produces into plain
// map[string]interface{}/[]interface{}, which encoding/json (and thus
// jsonAPI.Marshal) can handle directly.
func convertYAMLMaps(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, sub := range val {
			out[k] = convertYAMLMaps(sub)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = convertYAMLMaps(sub)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, sub := range val {
			out[i] = convertYAMLMaps(sub)
		}
		return out
	default:
		return val
	}
}
