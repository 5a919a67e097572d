package ai

import (
	"testing"
	"time"

	"atscore/internal/config"

	"google.golang.org/genai"
)

func enabledBreakerConfig() *config.CircuitBreakerConfig {
	return &config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestCircuitBreakerCreation(t *testing.T) {
	cb := NewAICircuitBreaker(enabledBreakerConfig(), nil)
	if cb == nil {
		t.Fatal("circuit breaker should not be nil when enabled")
	}

	stats := cb.GetStats()

	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("circuit breaker name not found")
	}
	if name != "AI-ScoreResume" {
		t.Errorf("circuit breaker name = %q, want %q", name, "AI-ScoreResume")
	}

	state, ok := stats["state"].(string)
	if !ok {
		t.Fatal("circuit breaker state not found")
	}
	if state != "closed" {
		t.Errorf("initial state = %q, want %q", state, "closed")
	}

	if enabled, _ := stats["enabled"].(bool); !enabled {
		t.Error("circuit breaker should report enabled")
	}
	if !cb.IsHealthy() {
		t.Error("circuit breaker should be healthy initially")
	}
}

func TestModelCircuitBreakerCreation(t *testing.T) {
	mb := NewModelCircuitBreaker(enabledBreakerConfig(), nil)
	if mb == nil {
		t.Fatal("model circuit breaker should not be nil when enabled")
	}

	stats := mb.GetModelStats()
	if name, _ := stats["name"].(string); name != "AI-Model" {
		t.Errorf("model circuit breaker name = %q, want %q", name, "AI-Model")
	}
	if !mb.IsModelHealthy() {
		t.Error("model circuit breaker should be healthy initially")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabled := &config.CircuitBreakerConfig{Enabled: false}

	if cb := NewAICircuitBreaker(disabled, nil); cb != nil {
		t.Fatal("circuit breaker should be nil when disabled")
	}
	if mb := NewModelCircuitBreaker(disabled, nil); mb != nil {
		t.Fatal("model circuit breaker should be nil when disabled")
	}
}

func TestDisabledCircuitBreakerPassesThrough(t *testing.T) {
	var cb *AICircuitBreaker // nil breaker means disabled

	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !called {
		t.Error("disabled breaker should still invoke the function")
	}

	stats := cb.GetStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("nil breaker should report enabled=false")
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
}
