package ai

import (
	"log/slog"
	"testing"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	cfg := &config.AIConfig{
		Provider: "openai",
		Model:    "gpt-4",
	}

	_, err := NewService(cfg, testLogger)
	if err == nil {
		t.Fatal("expected an error for an unsupported provider")
	}
}

func TestServiceWiresCircuitBreakers(t *testing.T) {
	cfg := &config.AIConfig{
		Provider:    "gemini",
		Model:       "test-model",
		Timeout:     30 * time.Second,
		APIKey:      "test-key",
		MaxRetries:  1,
		Temperature: 0.5,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}

	service, err := NewService(cfg, testLogger)
	if err != nil {
		t.Skipf("could not create gemini provider in this environment: %v", err)
	}

	if service.config.CircuitBreaker.MaxRequests != 5 {
		t.Errorf("breaker max requests = %d, want 5", service.config.CircuitBreaker.MaxRequests)
	}

	geminiProvider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("service provider is not of type *GeminiProvider")
	}

	stats := geminiProvider.GetCircuitBreakerStats()

	aiOpsStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiOpsStats["name"].(string); name != "AI-ScoreResume" {
		t.Errorf("breaker name = %q, want %q", name, "AI-ScoreResume")
	}

	modelOpsStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("model operations stats should exist and be a map")
	}
	if name, _ := modelOpsStats["name"].(string); name != "AI-Model" {
		t.Errorf("model breaker name = %q, want %q", name, "AI-Model")
	}

	if overallHealthy, _ := stats["overall_healthy"].(bool); !overallHealthy {
		t.Error("circuit breakers should be healthy initially")
	}
}
