// Package model provides capability-based model selection for pipeline
// stages. Instead of hardcoding model names, stages specify capabilities
// (analysis, creative, fast) and the registry resolves them to available
// models with fallback chains.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilityAnalysis is for classification and structured extraction:
	// scene confirmation, feedback intent routing.
	CapabilityAnalysis Capability = "analysis"

	// CapabilityCreative is for generative stages: visual identity,
	// itinerary skeleton, per-day detail.
	CapabilityCreative Capability = "creative"

	// CapabilityFast is for quick conversational replies: questions,
	// chit-chat.
	CapabilityFast Capability = "fast"
)

// StageCapabilities maps pipeline stages to their default capability.
var StageCapabilities = map[string]Capability{
	"scene":    CapabilityAnalysis,
	"feedback": CapabilityAnalysis,
	"insight":  CapabilityAnalysis,
	"identity": CapabilityCreative,
	"skeleton": CapabilityCreative,
	"day":      CapabilityCreative,
	"answer":   CapabilityFast,
}

// CapabilityForStage returns the default capability for a pipeline stage.
// Unknown stages get CapabilityCreative.
func CapabilityForStage(stage string) Capability {
	if c, ok := StageCapabilities[stage]; ok {
		return c
	}
	return CapabilityCreative
}

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityAnalysis, CapabilityCreative, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
