package config

import "testing"

func TestLoadAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "  key-123  ")
	key, err := LoadAPIKey()
	if err != nil {
		t.Fatalf("LoadAPIKey: %v", err)
	}
	if key != "key-123" {
		t.Errorf("key = %q, want trimmed value", key)
	}
}

func TestLoadAPIKeyMissing(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	if _, err := LoadAPIKey(); err == nil {
		t.Fatal("expected error for empty key")
	}
}
