package emit

import (
	"fmt"
	"strings"

	"github.com/zmk-layout/layout/layout"
)

// EmitKconfig renders Kconfig output: one CONFIG_<NAME>=<VALUE> line
// per configuration parameter, in the model's declared (insertion)
// order. Strings are quoted, booleans become y/n, and everything else
// is rendered via fmt.Sprintf("%v"). A settings map mirroring the
// emitted pairs is returned for programmatic use.
func EmitKconfig(d *layout.Data) (string, map[string]string) {
	if len(d.ConfigParameters) == 0 {
		return "", map[string]string{}
	}
	order := d.ConfigParameterOrder()
	settings := make(map[string]string, len(order))
	var b strings.Builder
	for _, name := range order {
		val := d.ConfigParameters[name]
		rendered := renderKconfigValue(val)
		settings[name] = rendered
		fmt.Fprintf(&b, "CONFIG_%s=%s\n", name, rendered)
	}
	return b.String(), settings
}

func renderKconfigValue(v interface{}) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "y"
		}
		return "n"
	case string:
		return fmt.Sprintf("%q", val)
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
