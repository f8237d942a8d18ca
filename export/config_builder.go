package export

import (
	"github.com/yaoapp/kun/exception"

	"github.com/zmk-layout/layout/emit"
	"github.com/zmk-layout/layout/layout"
)

// ConfigBuilder assembles a layout.Data's config_parameters into
// Kconfig output, analogous to KeymapBuilder. Unlike KeymapBuilder it
// has no sections to toggle: Kconfig has no equivalent of
// behaviors/combos/macros.
type ConfigBuilder struct {
	data     *layout.Data
	provider ConfigurationProvider
}

// NewConfigBuilder builds a ConfigBuilder over data; provider may be
// nil if no extra kconfig options need merging in.
func NewConfigBuilder(data *layout.Data, provider ConfigurationProvider) *ConfigBuilder {
	return &ConfigBuilder{data: data, provider: provider}
}

// Generate returns the rendered Kconfig text and a settings map
// mirroring the emitted key/value pairs, merging in any extra options
// the ConfigurationProvider supplies that aren't already present on
// the model.
func (b *ConfigBuilder) Generate() (content string, settings map[string]string, err error) {
	defer func() { err = exception.Catch(recover()) }()

	merged := b.data
	if b.provider != nil {
		if extra := b.provider.GetKconfigOptions(); len(extra) > 0 {
			clone := *b.data
			clone.ConfigParameters = mergeConfigParameters(b.data.ConfigParameters, extra)
			merged = &clone
		}
	}

	content, settings = emit.EmitKconfig(merged)
	return content, settings, nil
}

func mergeConfigParameters(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range base {
		out[k] = v
	}
	return out
}
