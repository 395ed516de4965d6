package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Strategy != StrategyLeastLoaded {
		t.Errorf("Strategy = %q, want %q", p.Strategy, StrategyLeastLoaded)
	}
	if !p.RespectCapacity {
		t.Error("RespectCapacity = false, want true")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := writePolicyFile(t, "strategy: first_available\nrespect_capacity: false\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Strategy != StrategyFirstAvailable {
		t.Errorf("Strategy = %q, want %q", p.Strategy, StrategyFirstAvailable)
	}
	if p.RespectCapacity {
		t.Error("RespectCapacity = true, want false")
	}
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writePolicyFile(t, "strategy: least_loaded\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.RespectCapacity {
		t.Error("RespectCapacity = false, want default true")
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writePolicyFile(t, "strategy: round_robin\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted unknown strategy")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load accepted missing file")
	}
}
