// Package export is the public façade (C8): ConfigurationProvider,
// TemplateProvider and Logger interfaces consumed by the core, a
// concrete DefaultProvider and KunLogger, and the fluent
// KeymapBuilder/ConfigBuilder that turn an emit.Fragments into final
// output text.
package export

import (
	"github.com/yaoapp/kun/log"

	"github.com/zmk-layout/layout/emit"
)

// SystemBehavior is a minimal behavior descriptor surfaced by
// ConfigurationProvider.GetBehaviorDefinitions, independent of any
// specific profile/configuration system.
type SystemBehavior struct {
	Name        string
	Description string
	Properties  map[string]interface{}
}

// ConfigurationProvider supplies keyboard-specific profile data.
// All methods are pure: no I/O, no mutation of the receiver's inputs.
type ConfigurationProvider interface {
	GetBehaviorDefinitions() []SystemBehavior
	GetIncludeFiles() []string
	GetValidationRules() ValidationRules
	GetFormattingConfig() emit.Profile
	GetKconfigOptions() map[string]interface{}
	GetTemplateContext() map[string]interface{}
}

// ValidationRules is the structured return of GetValidationRules.
type ValidationRules struct {
	MaxLayers          int
	KeyPositions       []int
	SupportedBehaviors []string
}

// TemplateProvider renders a final output string from a fragment
// dictionary. KeymapBuilder consults it only when WithTemplate has set
// a template path; with a path set and no TemplateProvider, Generate
// returns an error. ConfigBuilder never uses one.
type TemplateProvider interface {
	RenderString(template string, context map[string]interface{}) (string, error)
	HasTemplateSyntax(content string) bool
	EscapeContent(content string) string
}

// Logger is a pure sink from the core's perspective: structured
// info/warning/error/debug/exception events, never consulted for
// control flow.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// DefaultProvider is the module's one concrete ConfigurationProvider,
// built the way config.Load/LoadWithRoot cascades defaults: a base
// profile, overridden field by field via With* methods, never by
// mutating a shared global.
type DefaultProvider struct {
	behaviors   []SystemBehavior
	includes    []string
	rules       ValidationRules
	formatting  emit.Profile
	kconfig     map[string]interface{}
	templateCtx map[string]interface{}
}

// NewDefaultProvider returns a DefaultProvider seeded with nine core
// ZMK behaviors (a subset of the known behaviors package validate
// accepts), ZMK's standard includes, and
// emit.DefaultProfile's formatting defaults.
func NewDefaultProvider(keyboardName string) *DefaultProvider {
	return &DefaultProvider{
		behaviors: []SystemBehavior{
			{Name: "&kp", Description: "key press"},
			{Name: "&mt", Description: "mod-tap"},
			{Name: "&lt", Description: "layer-tap"},
			{Name: "&mo", Description: "momentary layer"},
			{Name: "&to", Description: "to layer"},
			{Name: "&tog", Description: "toggle layer"},
			{Name: "&sl", Description: "sticky layer"},
			{Name: "&trans", Description: "transparent"},
			{Name: "&none", Description: "no-op"},
		},
		includes: []string{
			"behaviors.dtsi",
			"dt-bindings/zmk/keys.h",
			"dt-bindings/zmk/bt.h",
		},
		rules: ValidationRules{
			MaxLayers:          10,
			SupportedBehaviors: []string{"&kp", "&mt", "&lt", "&mo", "&to", "&tog", "&sl", "&trans", "&none"},
		},
		formatting:  emit.DefaultProfile(),
		kconfig:     map[string]interface{}{},
		templateCtx: map[string]interface{}{"keyboard_name": keyboardName},
	}
}

// WithIncludeFiles replaces the include list and returns the receiver
// for chaining.
func (p *DefaultProvider) WithIncludeFiles(files []string) *DefaultProvider {
	p.includes = files
	return p
}

// WithMaxLayers overrides the validation rule's layer budget.
func (p *DefaultProvider) WithMaxLayers(n int) *DefaultProvider {
	p.rules.MaxLayers = n
	return p
}

// WithFormatting overrides the formatting profile passed to package emit.
func (p *DefaultProvider) WithFormatting(profile emit.Profile) *DefaultProvider {
	p.formatting = profile
	return p
}

// WithKconfigOption sets a single kconfig option override.
func (p *DefaultProvider) WithKconfigOption(name string, value interface{}) *DefaultProvider {
	p.kconfig[name] = value
	return p
}

// WithTemplateContextValue sets a single template-context entry.
func (p *DefaultProvider) WithTemplateContextValue(name string, value interface{}) *DefaultProvider {
	p.templateCtx[name] = value
	return p
}

func (p *DefaultProvider) GetBehaviorDefinitions() []SystemBehavior   { return p.behaviors }
func (p *DefaultProvider) GetIncludeFiles() []string                  { return p.includes }
func (p *DefaultProvider) GetValidationRules() ValidationRules        { return p.rules }
func (p *DefaultProvider) GetFormattingConfig() emit.Profile          { return p.formatting }
func (p *DefaultProvider) GetKconfigOptions() map[string]interface{}  { return p.kconfig }
func (p *DefaultProvider) GetTemplateContext() map[string]interface{} { return p.templateCtx }

// KunLogger adapts package Logger to the structured logger in
// github.com/yaoapp/kun/log, used the same way around a panic/recover
// boundary.
type KunLogger struct{}

func (KunLogger) Info(msg string, args ...interface{})  { log.Info(msg, args...) }
func (KunLogger) Warn(msg string, args ...interface{})  { log.Warn(msg, args...) }
func (KunLogger) Error(msg string, args ...interface{}) { log.Error(msg, args...) }
func (KunLogger) Debug(msg string, args ...interface{}) { log.Debug(msg, args...) }
