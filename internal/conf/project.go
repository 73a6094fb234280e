package conf

import (
	"fmt"
	"os"
	"strconv"
)

// TelemetryOptOutEnv overrides the settings document when set to a boolean.
const TelemetryOptOutEnv = "AGENTSTACK_TELEMETRY_OPT_OUT"

// VerifyProject checks that ws looks like a generated project, i.e. that
// its settings document exists and parses.
func VerifyProject(ws *Workspace) error {
	ws = Resolve(ws)
	if _, err := OpenConfig(ws); err != nil {
		return fmt.Errorf("not an agentstack project: %w", err)
	}
	return nil
}

// Framework returns the framework named in the settings document.
func Framework(ws *Workspace) (string, error) {
	c, err := OpenConfig(ws)
	if err != nil {
		return "", err
	}
	return c.Framework, nil
}

// TelemetryOptOut reports whether telemetry is disabled. The environment
// wins over the settings document; a project without settings has not
// opted out.
func TelemetryOptOut(ws *Workspace) bool {
	if v, ok := os.LookupEnv(TelemetryOptOutEnv); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	c, err := OpenConfig(ws)
	if err != nil || c.TelemetryOptOut == nil {
		return false
	}
	return *c.TelemetryOptOut
}
