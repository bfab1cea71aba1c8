// ABOUTME: Tests for CRAFT_MODEL alias resolution and provider API key detection.

package main

import (
	"testing"

	"github.com/2389-research/bytecraft/llm"
)

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestResolveModelWithExplicitAlias(t *testing.T) {
	catalog := llm.DefaultCatalog()

	modelName, provider, err := resolveModel(catalog, "sonnet")
	if err != nil {
		t.Fatalf("resolveModel: %v", err)
	}
	if provider != "anthropic" {
		t.Fatalf("expected provider anthropic, got %q", provider)
	}
	if modelName == "" {
		t.Fatalf("expected a concrete model id, got empty string")
	}
}

func TestResolveModelWithUnknownAlias(t *testing.T) {
	catalog := llm.DefaultCatalog()

	if _, _, err := resolveModel(catalog, "not-a-real-alias"); err == nil {
		t.Fatalf("expected an error for an unknown alias")
	}
}

func TestResolveModelDefaultsToFirstAvailableProvider(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	catalog := llm.DefaultCatalog()
	_, provider, err := resolveModel(catalog, "")
	if err != nil {
		t.Fatalf("resolveModel: %v", err)
	}
	if provider != "openai" {
		t.Fatalf("expected provider openai (the only key set), got %q", provider)
	}
}

func TestResolveModelWithNoAliasAndNoKeysErrors(t *testing.T) {
	clearProviderKeys(t)

	catalog := llm.DefaultCatalog()
	if _, _, err := resolveModel(catalog, ""); err == nil {
		t.Fatalf("expected an error when no alias is given and no API key is set")
	}
}

func TestAPIKeyPresent(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "k")

	if !apiKeyPresent("anthropic") {
		t.Fatalf("expected anthropic key to be detected")
	}
	if apiKeyPresent("openai") {
		t.Fatalf("expected openai key to be absent")
	}
}
