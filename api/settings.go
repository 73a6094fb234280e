package api

// DefaultFramework is used when a settings document names no framework.
const DefaultFramework = "crewai"

// Settings is the project settings document (agentstack.json).
// Field order here is the serialization order on disk.
type Settings struct {
	// Framework the project is generated for.
	Framework string `json:"framework"`
	// Tools installed into the project, in install order.
	Tools []string `json:"tools"`
	// TelemetryOptOut is nil when the user never answered.
	TelemetryOptOut *bool `json:"telemetry_opt_out"`
	// DefaultModel is the provider/model string new agents start with.
	DefaultModel *string `json:"default_model"`
	// AgentstackVersion is the tool version that last wrote the project.
	AgentstackVersion string `json:"agentstack_version"`
	// Template the project was created from, if any.
	Template *string `json:"template"`
	// TemplateVersion of Template.
	TemplateVersion *string `json:"template_version"`
}

// DefaultSettings returns the fallback values used for fields that are
// absent or null in a document.
func DefaultSettings(version string) Settings {
	return Settings{
		Framework:         DefaultFramework,
		Tools:             []string{},
		AgentstackVersion: version,
	}
}

// HasTool reports whether name is in Tools.
func (s *Settings) HasTool(name string) bool {
	for _, t := range s.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// String returns a pointer to v.
func String(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	c := s
	if s.Tools != nil {
		c.Tools = append([]string{}, s.Tools...)
	}
	c.TelemetryOptOut = clonePtr(s.TelemetryOptOut)
	c.DefaultModel = clonePtr(s.DefaultModel)
	c.Template = clonePtr(s.Template)
	c.TemplateVersion = clonePtr(s.TemplateVersion)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
