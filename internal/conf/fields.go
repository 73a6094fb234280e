package conf

import (
	"strconv"
	"strings"

	"github.com/agentic-research/agentstack/api"
	"github.com/agentic-research/agentstack/internal/writeback"
)

// Keys lists the settings keys in serialization order.
var Keys = []string{
	"framework",
	"tools",
	"telemetry_opt_out",
	"default_model",
	"agentstack_version",
	"template",
	"template_version",
}

// Get returns the text form of a settings key. Unset optionals read as "",
// tools as a comma-separated list.
func (c *ConfigFile) Get(key string) (string, error) {
	switch key {
	case "framework":
		return c.Framework, nil
	case "tools":
		return strings.Join(c.Tools, ","), nil
	case "telemetry_opt_out":
		if c.TelemetryOptOut == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.TelemetryOptOut), nil
	case "default_model":
		return api.StringValue(c.DefaultModel), nil
	case "agentstack_version":
		return c.AgentstackVersion, nil
	case "template":
		return api.StringValue(c.Template), nil
	case "template_version":
		return api.StringValue(c.TemplateVersion), nil
	}
	return "", &writeback.KeyError{Key: key}
}

// Set assigns a settings key from its text form. For optional keys the
// value "null" clears the field; tools takes a comma-separated list.
func (c *ConfigFile) Set(key, value string) error {
	switch key {
	case "framework":
		c.Framework = value
	case "tools":
		c.Tools = splitList(value)
	case "telemetry_opt_out":
		if value == "null" {
			c.TelemetryOptOut = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &writeback.ParseError{Path: key, Message: "not a boolean: " + value, Err: err}
		}
		c.TelemetryOptOut = &b
	case "default_model":
		c.DefaultModel = optional(value)
	case "agentstack_version":
		c.AgentstackVersion = value
	case "template":
		c.Template = optional(value)
	case "template_version":
		c.TemplateVersion = optional(value)
	default:
		return &writeback.KeyError{Key: key}
	}
	return nil
}

// AddTool appends name to Tools unless it is already there.
func (c *ConfigFile) AddTool(name string) bool {
	if c.HasTool(name) {
		return false
	}
	c.Tools = append(c.Tools, name)
	return true
}

func splitList(value string) []string {
	out := []string{}
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func optional(value string) *string {
	if value == "null" {
		return nil
	}
	return &value
}
