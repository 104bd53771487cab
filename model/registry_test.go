package model

import (
	"testing"
	"time"
)

func TestCapabilityForStage(t *testing.T) {
	tests := []struct {
		stage string
		want  Capability
	}{
		{"scene", CapabilityAnalysis},
		{"feedback", CapabilityAnalysis},
		{"insight", CapabilityAnalysis},
		{"identity", CapabilityCreative},
		{"skeleton", CapabilityCreative},
		{"day", CapabilityCreative},
		{"answer", CapabilityFast},
		{"unknown-stage", CapabilityCreative},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			if got := CapabilityForStage(tt.stage); got != tt.want {
				t.Errorf("CapabilityForStage(%q) = %v, want %v", tt.stage, got, tt.want)
			}
		})
	}
}

func TestParseCapability(t *testing.T) {
	if got := ParseCapability("creative"); got != CapabilityCreative {
		t.Errorf("ParseCapability(creative) = %v", got)
	}
	if got := ParseCapability("nonsense"); got != "" {
		t.Errorf("ParseCapability(nonsense) = %v, want empty", got)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.Resolve(CapabilityCreative); got != "claude-sonnet" {
		t.Errorf("Resolve(creative) = %q, want claude-sonnet", got)
	}
	if got := r.Resolve(Capability("missing")); got != "qwen" {
		t.Errorf("Resolve(missing) = %q, want default qwen", got)
	}
}

func TestRegistry_GetFallbackChain(t *testing.T) {
	r := NewDefaultRegistry()

	chain := r.GetFallbackChain(CapabilityCreative)
	want := []string{"claude-sonnet", "claude-haiku", "qwen"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, chain[i], want[i])
		}
	}
}

func TestRegistry_Apply(t *testing.T) {
	r := NewDefaultRegistry()

	r.Apply(
		map[Capability]*CapabilityConfig{
			CapabilityFast: {Preferred: []string{"local"}},
		},
		map[string]*EndpointConfig{
			"local": {Provider: "ollama", URL: "http://localhost:11434/v1", Model: "llama3"},
		},
		"local",
	)

	if got := r.Resolve(CapabilityFast); got != "local" {
		t.Errorf("after Apply, Resolve(fast) = %q, want local", got)
	}
	if ep := r.GetEndpoint("local"); ep == nil || ep.Model != "llama3" {
		t.Errorf("after Apply, GetEndpoint(local) = %+v", ep)
	}
	// Claude endpoints were replaced wholesale.
	if ep := r.GetEndpoint("claude-sonnet"); ep != nil {
		t.Errorf("stale endpoint survived Apply: %+v", ep)
	}
}

func TestCircuitBreaker(t *testing.T) {
	r := NewDefaultRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 3, RecoveryTimeout: 10 * time.Millisecond})

	if !r.IsEndpointAvailable("qwen") {
		t.Fatal("fresh endpoint should be available")
	}

	r.MarkEndpointFailure("qwen")
	r.MarkEndpointFailure("qwen")
	if !r.IsEndpointAvailable("qwen") {
		t.Error("endpoint below threshold should stay available")
	}

	r.MarkEndpointFailure("qwen")
	if r.IsEndpointAvailable("qwen") {
		t.Error("endpoint at threshold should be unavailable")
	}

	// Half-open after the recovery timeout.
	time.Sleep(20 * time.Millisecond)
	if !r.IsEndpointAvailable("qwen") {
		t.Error("endpoint should be half-open after recovery timeout")
	}

	r.MarkEndpointSuccess("qwen")
	health := r.GetEndpointHealth("qwen")
	if health == nil || health.CircuitOpen || health.FailureCount != 0 {
		t.Errorf("health after success = %+v", health)
	}
}

func TestGetAvailableFallbackChain(t *testing.T) {
	r := NewDefaultRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour})

	r.MarkEndpointFailure("claude-sonnet")

	chain := r.GetAvailableFallbackChain(CapabilityCreative)
	for _, name := range chain {
		if name == "claude-sonnet" {
			t.Errorf("unavailable endpoint in chain: %v", chain)
		}
	}

	// With everything down the full chain comes back.
	r.MarkEndpointFailure("claude-haiku")
	r.MarkEndpointFailure("qwen")
	chain = r.GetAvailableFallbackChain(CapabilityCreative)
	if len(chain) != 3 {
		t.Errorf("all-down chain = %v, want the full chain", chain)
	}
}
