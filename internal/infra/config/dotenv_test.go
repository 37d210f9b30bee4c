package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	return path
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestLoadDotEnv_SetsVariables(t *testing.T) {
	unsetAfter(t, "DOTENV_T_PLAIN", "DOTENV_T_QUOTED", "DOTENV_T_EXPORTED")
	path := writeDotEnv(t, `
# comment line
DOTENV_T_PLAIN=plain
DOTENV_T_QUOTED="quoted value"
export DOTENV_T_EXPORTED='single'
not-a-pair
=novalue
`)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error = %v", err)
	}

	cases := map[string]string{
		"DOTENV_T_PLAIN":    "plain",
		"DOTENV_T_QUOTED":   "quoted value",
		"DOTENV_T_EXPORTED": "single",
	}
	for k, want := range cases {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s = %q; want %q", k, got, want)
		}
	}
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	t.Setenv("DOTENV_T_EXISTING", "from-process")
	path := writeDotEnv(t, "DOTENV_T_EXISTING=from-file\n")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error = %v", err)
	}
	if got := os.Getenv("DOTENV_T_EXISTING"); got != "from-process" {
		t.Errorf("expected process value to win, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile_IsNotError(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
}

func TestParseDotEnvLine(t *testing.T) {
	tests := []struct {
		line      string
		key, val  string
		wantMatch bool
	}{
		{"A=1", "A", "1", true},
		{"  B = two  ", "B", "two", true},
		{`C="x=y"`, "C", "x=y", true},
		{"# D=1", "", "", false},
		{"", "", "", false},
		{"E", "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := parseDotEnvLine(tt.line)
		if ok != tt.wantMatch || k != tt.key || v != tt.val {
			t.Errorf("parseDotEnvLine(%q) = (%q, %q, %v); want (%q, %q, %v)", tt.line, k, v, ok, tt.key, tt.val, tt.wantMatch)
		}
	}
}
