package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hurttlocker/chatlens/internal/ingest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("Resolve with missing file: %v", err)
	}
	if cfg.DBPath.Source != SourceDefault {
		t.Errorf("DBPath source = %s, want default", cfg.DBPath.Source)
	}
	if cfg.RowCap != ingest.DefaultRowCap {
		t.Errorf("RowCap = %d", cfg.RowCap)
	}
	if cfg.Placeholder != ingest.DefaultPlaceholder {
		t.Errorf("Placeholder = %q", cfg.Placeholder)
	}
	if len(cfg.StopWords) == 0 || len(cfg.AttachmentPatterns) == 0 {
		t.Error("default vocabularies missing")
	}
}

func TestResolveFromFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/copied-chat.db
row_cap: 500
missing_text_placeholder: "[media]"
stop_words: [foo, bar]
attachment_patterns: [sticker]
`)
	cfg, err := Resolve(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.DBPath.Value != "/tmp/copied-chat.db" || cfg.DBPath.Source != SourceConfig {
		t.Errorf("DBPath = %+v", cfg.DBPath)
	}
	if cfg.RowCap != 500 {
		t.Errorf("RowCap = %d, want 500", cfg.RowCap)
	}
	if cfg.Placeholder != "[media]" {
		t.Errorf("Placeholder = %q", cfg.Placeholder)
	}
	if len(cfg.StopWords) != 2 || cfg.StopWords[0] != "foo" {
		t.Errorf("StopWords = %v", cfg.StopWords)
	}
	if len(cfg.AttachmentPatterns) != 1 || cfg.AttachmentPatterns[0] != "sticker" {
		t.Errorf("AttachmentPatterns = %v", cfg.AttachmentPatterns)
	}
}

func TestResolvePrecedence(t *testing.T) {
	path := writeConfig(t, "db_path: /from/config.db\n")

	t.Setenv("CHATLENS_DB", "/from/env.db")
	cfg, err := Resolve(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.DBPath.Value != "/from/env.db" || cfg.DBPath.Source != SourceEnv {
		t.Errorf("env should beat config: %+v", cfg.DBPath)
	}

	cfg, err = Resolve(ResolveOptions{ConfigPath: path, CLIDBPath: "/from/cli.db"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.DBPath.Value != "/from/cli.db" || cfg.DBPath.Source != SourceCLI {
		t.Errorf("cli should beat env: %+v", cfg.DBPath)
	}
}

func TestResolveExpandsUserPath(t *testing.T) {
	cfg, err := Resolve(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		CLIDBPath:  "~/messages/chat.db",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	home, _ := os.UserHomeDir()
	if cfg.DBPath.Value != filepath.Join(home, "messages", "chat.db") {
		t.Errorf("DBPath = %q, want expanded home path", cfg.DBPath.Value)
	}
}

func TestResolveBadYAML(t *testing.T) {
	path := writeConfig(t, "db_path: [unclosed\n")
	if _, err := Resolve(ResolveOptions{ConfigPath: path}); err == nil {
		t.Error("invalid YAML must error")
	}
}
