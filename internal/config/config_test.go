package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeDefaultsWithNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetInt("sync.max-retries"); got != 3 {
		t.Fatalf("sync.max-retries = %d, want 3", got)
	}
	if got := GetBool("no-watcher"); got != false {
		t.Fatalf("no-watcher = %v, want false", got)
	}
}

func TestInitializeReadsProjectLocalConfig(t *testing.T) {
	dir := t.TempDir()
	bruinDir := filepath.Join(dir, ".bruin")
	if err := os.MkdirAll(bruinDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bruinDir, "config.yaml"), []byte("vault: /custom/vault\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "sub", "deeper")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetString("vault"); got != "/custom/vault" {
		t.Fatalf("vault = %q, want /custom/vault", got)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	bruinDir := filepath.Join(dir, ".bruin")
	if err := os.MkdirAll(bruinDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bruinDir, "config.yaml"), []byte("vault: /from/file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("BRUIN_VAULT", "/from/env")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetString("vault"); got != "/from/env" {
		t.Fatalf("vault = %q, want /from/env (env should win)", got)
	}
}

func TestLoadWorkspaceOverridesMissingFileIsZeroValue(t *testing.T) {
	dir := t.TempDir()
	w, err := LoadWorkspaceOverrides(dir)
	if err != nil {
		t.Fatalf("LoadWorkspaceOverrides: %v", err)
	}
	if w != (WorkspaceOverrides{}) {
		t.Fatalf("expected zero value, got %+v", w)
	}
}

func TestLoadWorkspaceOverridesParsesTOML(t *testing.T) {
	dir := t.TempDir()
	content := "default_state = \"review\"\nwebhook_secret_path = \"/run/secrets/bruin-webhook\"\n"
	if err := os.WriteFile(filepath.Join(dir, "workspace.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWorkspaceOverrides(dir)
	if err != nil {
		t.Fatalf("LoadWorkspaceOverrides: %v", err)
	}
	if w.DefaultState != "review" {
		t.Fatalf("DefaultState = %q, want review", w.DefaultState)
	}
	if w.WebhookSecret != "/run/secrets/bruin-webhook" {
		t.Fatalf("WebhookSecret = %q", w.WebhookSecret)
	}
}
