package export

import (
	"fmt"
	"strings"

	"github.com/yaoapp/kun/exception"

	"github.com/zmk-layout/layout/emit"
	"github.com/zmk-layout/layout/layout"
)

// defaultLicenseYear is fixed rather than wall-clock: Emit/KeymapBuilder must
// stay deterministic, and the caller that cares about a live
// year can override it via WithLicenseYear.
const defaultLicenseYear = "2024"

// KeymapBuilder assembles a layout.Data's emitted fragments into final
// `.keymap` text. Every With* method mutates and returns the
// receiver so calls chain; Generate is the only method that touches
// package emit.
type KeymapBuilder struct {
	data     *layout.Data
	provider ConfigurationProvider
	template TemplateProvider
	logger   Logger

	includeHeaders bool
	includeBehav   bool
	includeCombos  bool
	includeMacros  bool
	includeTapDan  bool

	templatePath string
	context      map[string]interface{}

	licenseYear string
}

// NewKeymapBuilder starts a builder with every optional section turned
// on: "permissive defaults, opt out not in" for generator entry points.
func NewKeymapBuilder(data *layout.Data, provider ConfigurationProvider) *KeymapBuilder {
	return &KeymapBuilder{
		data:           data,
		provider:       provider,
		includeHeaders: true,
		includeBehav:   true,
		includeCombos:  true,
		includeMacros:  true,
		includeTapDan:  true,
		context:        map[string]interface{}{},
		licenseYear:    defaultLicenseYear,
	}
}

func (b *KeymapBuilder) WithHeaders(on bool) *KeymapBuilder      { b.includeHeaders = on; return b }
func (b *KeymapBuilder) WithBehaviors(on bool) *KeymapBuilder    { b.includeBehav = on; return b }
func (b *KeymapBuilder) WithCombos(on bool) *KeymapBuilder       { b.includeCombos = on; return b }
func (b *KeymapBuilder) WithMacros(on bool) *KeymapBuilder       { b.includeMacros = on; return b }
func (b *KeymapBuilder) WithTapDances(on bool) *KeymapBuilder    { b.includeTapDan = on; return b }
func (b *KeymapBuilder) WithTemplate(path string) *KeymapBuilder { b.templatePath = path; return b }
func (b *KeymapBuilder) WithLicenseYear(y string) *KeymapBuilder { b.licenseYear = y; return b }

// WithLogger attaches a Logger used to report non-fatal build events;
// absent a logger, Generate is silent.
func (b *KeymapBuilder) WithLogger(l Logger) *KeymapBuilder { b.logger = l; return b }

// WithTemplateProvider attaches the TemplateProvider that renders the
// fragment dictionary when a template path is set.
func (b *KeymapBuilder) WithTemplateProvider(t TemplateProvider) *KeymapBuilder {
	b.template = t
	return b
}

// WithContext merges key/value pairs into the template render context.
func (b *KeymapBuilder) WithContext(kv map[string]interface{}) *KeymapBuilder {
	for k, v := range kv {
		b.context[k] = v
	}
	return b
}

func (b *KeymapBuilder) log(level string, msg string, args ...interface{}) {
	if b.logger == nil {
		return
	}
	switch level {
	case "warn":
		b.logger.Warn(msg, args...)
	default:
		b.logger.Info(msg, args...)
	}
}

// Generate runs Emit and assembles the final keymap text: fixed-order
// concatenation without a template, or a TemplateProvider render with
// one when WithTemplate has been called.
func (b *KeymapBuilder) Generate() (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = exception.Catch(r)
		}
	}()

	profile := emit.DefaultProfile()
	if b.provider != nil {
		profile = b.provider.GetFormattingConfig()
	}

	frags, ferr := emit.Emit(b.data, profile)
	if ferr != nil {
		return "", ferr
	}

	if !b.includeBehav {
		frags.BehaviorsDtsi = ""
	}
	if !b.includeCombos {
		frags.CombosDtsi = ""
	}
	if !b.includeMacros {
		frags.MacrosDtsi = ""
	}
	if !b.includeTapDan {
		frags.TapDancesDtsi = ""
	}

	dict := b.fragmentDict(frags)

	if b.templatePath != "" {
		if b.template == nil {
			throwContract("keymap builder: template %q requested but no TemplateProvider configured", b.templatePath)
		}
		rendered, terr := b.template.RenderString(b.templatePath, dict)
		if terr != nil {
			return "", terr
		}
		return rendered, nil
	}

	var parts []string
	if b.includeHeaders {
		parts = append(parts, b.licenseBanner())
		if includes := b.includeList(); includes != "" {
			parts = append(parts, includes)
		}
		if header := b.keyPositionHeader(); header != "" {
			parts = append(parts, header)
		}
	}
	appendNonEmpty(&parts, frags.LayerDefines)
	appendNonEmpty(&parts, b.data.CustomDefinedBehaviors)
	appendNonEmpty(&parts, frags.BehaviorsDtsi)
	appendNonEmpty(&parts, frags.TapDancesDtsi)
	appendNonEmpty(&parts, frags.CombosDtsi)
	appendNonEmpty(&parts, frags.MacrosDtsi)
	appendNonEmpty(&parts, b.systemBehaviorsDts())
	appendNonEmpty(&parts, b.data.CustomDevicetree)
	appendNonEmpty(&parts, frags.KeymapNode)

	b.log("info", "keymap generated for %s: %d fragments", b.data.Keyboard, len(parts))
	return strings.Join(parts, "\n"), nil
}

func appendNonEmpty(parts *[]string, s string) {
	if strings.TrimSpace(s) != "" {
		*parts = append(*parts, s)
	}
}

func (b *KeymapBuilder) licenseBanner() string {
	return fmt.Sprintf("/*\n * Copyright (c) %s The ZMK Contributors\n * SPDX-License-Identifier: MIT\n */", b.licenseYear)
}

func (b *KeymapBuilder) includeList() string {
	if b.provider == nil {
		return ""
	}
	files := b.provider.GetIncludeFiles()
	if len(files) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range files {
		fmt.Fprintf(&sb, "#include <%s>\n", f)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *KeymapBuilder) keyPositionHeader() string {
	if b.provider == nil {
		return ""
	}
	positions := b.provider.GetValidationRules().KeyPositions
	if len(positions) == 0 {
		return ""
	}
	names := make([]string, len(positions))
	for i, p := range positions {
		names[i] = fmt.Sprintf("#define POS_%d %d", i, p)
	}
	return strings.Join(names, "\n")
}

func (b *KeymapBuilder) systemBehaviorsDts() string {
	if b.provider == nil {
		return ""
	}
	ctx := b.provider.GetTemplateContext()
	if v, ok := ctx["system_behaviors_dts"].(string); ok {
		return v
	}
	return ""
}

func (b *KeymapBuilder) fragmentDict(f emit.Fragments) map[string]interface{} {
	dict := map[string]interface{}{
		"layer_defines":            f.LayerDefines,
		"behaviors_dtsi":           f.BehaviorsDtsi,
		"tap_dances_dtsi":          f.TapDancesDtsi,
		"combos_dtsi":              f.CombosDtsi,
		"macros_dtsi":              f.MacrosDtsi,
		"keymap_node":              f.KeymapNode,
		"custom_defined_behaviors": b.data.CustomDefinedBehaviors,
		"custom_devicetree":        b.data.CustomDevicetree,
		"license_banner":           b.licenseBanner(),
		"include_list":             b.includeList(),
		"key_position_header":      b.keyPositionHeader(),
	}
	for k, v := range b.context {
		dict[k] = v
	}
	if b.provider != nil {
		for k, v := range b.provider.GetTemplateContext() {
			if _, exists := dict[k]; !exists {
				dict[k] = v
			}
		}
	}
	return dict
}

func throwContract(format string, args ...interface{}) {
	exception.New(format, 500, args...).Throw()
}
