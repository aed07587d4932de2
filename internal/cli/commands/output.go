package commands

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// render writes v in the configured format; table output is delegated to
// the caller's renderer
func (a *app) render(v any, table func()) error {
	switch a.cfg.Format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		fmt.Fprintln(a.out, string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		fmt.Fprint(a.out, string(data))
	default:
		table()
	}
	return nil
}
