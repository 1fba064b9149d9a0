package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_FieldAssignment(t *testing.T) {
	cfg := Config{
		TLSMode:            "required",
		ConnectTimeoutSecs: 10,
	}

	if cfg.TLSMode != "required" {
		t.Errorf("expected TLSMode 'required', got '%s'", cfg.TLSMode)
	}
	if cfg.ConnectTimeoutSecs != 10 {
		t.Errorf("expected ConnectTimeoutSecs 10, got %d", cfg.ConnectTimeoutSecs)
	}
}

func withTempCwd(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	return tmpDir
}

func TestLoadConfig_Success(t *testing.T) {
	tmpDir := withTempCwd(t)
	configPath := filepath.Join(tmpDir, "imapfetch.yaml")

	configContent := `tls_mode: required
connect_timeout_secs: 15
response_timeout_secs: 30
blob_store:
  enabled: true
  bucket: fetch-bodies
  region: us-east-1
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.TLSMode != "required" {
		t.Errorf("TLSMode = %q, want required", cfg.TLSMode)
	}
	if cfg.ConnectTimeoutSecs != 15 {
		t.Errorf("ConnectTimeoutSecs = %d, want 15", cfg.ConnectTimeoutSecs)
	}
	if !cfg.BlobStore.Enabled || cfg.BlobStore.Bucket != "fetch-bodies" {
		t.Errorf("BlobStore = %+v, want enabled with bucket fetch-bodies", cfg.BlobStore)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	withTempCwd(t)

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for missing config file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := withTempCwd(t)
	configPath := filepath.Join(tmpDir, "imapfetch.yaml")

	invalidYAML := `tls_mode: required
response_timeout_secs: [invalid
  missing closing bracket
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0o600); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	tmpDir := withTempCwd(t)
	configPath := filepath.Join(tmpDir, "imapfetch.yaml")

	if err := os.WriteFile(configPath, []byte(""), 0o600); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error for empty file, got: %v", err)
	}
	if cfg.TLSMode != "" {
		t.Errorf("expected empty TLSMode, got %q", cfg.TLSMode)
	}
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	tmpDir := withTempCwd(t)
	configPath := filepath.Join(tmpDir, "imapfetch.yaml")

	configContent := `tls_mode: none
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.TLSMode != "none" {
		t.Errorf("TLSMode = %q, want none", cfg.TLSMode)
	}
	if cfg.RespTimeoutSecs != 0 {
		t.Errorf("expected RespTimeoutSecs 0, got %d", cfg.RespTimeoutSecs)
	}
}

func TestLoadConfig_ConfigSubdirectory(t *testing.T) {
	tmpDir := withTempCwd(t)
	configDir := filepath.Join(tmpDir, "config")
	if err := os.Mkdir(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}

	configPath := filepath.Join(configDir, "imapfetch.yaml")
	configContent := `tls_mode: opportunistic
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.TLSMode != "opportunistic" {
		t.Errorf("TLSMode = %q, want opportunistic", cfg.TLSMode)
	}
}

func TestLoadConfig_CaseSensitiveKeys(t *testing.T) {
	tmpDir := withTempCwd(t)
	configPath := filepath.Join(tmpDir, "imapfetch.yaml")

	// Uppercase keys should not match the lowercase struct tags.
	configContent := `TLS_Mode: required
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.TLSMode != "" {
		t.Errorf("expected empty TLSMode (case mismatch), got %q", cfg.TLSMode)
	}
}
