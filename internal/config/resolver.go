// Package config resolves chatlens configuration from its three
// sources: a YAML config file, environment variables, and CLI flags,
// in ascending precedence. Each resolved value remembers where it came
// from so `chatlens config` style debugging stays possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hurttlocker/chatlens/internal/analyze"
	"github.com/hurttlocker/chatlens/internal/ingest"
)

type ValueSource string

const (
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a config value plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI-level overrides into resolution.
type ResolveOptions struct {
	ConfigPath    string
	CLIDBPath     string
	CLIExportPath string
}

// Resolved is the effective configuration.
type Resolved struct {
	ConfigPath string `json:"config_path"`

	DBPath     ResolvedValue `json:"db_path"`
	ExportPath ResolvedValue `json:"export_path"`

	RowCap             int      `json:"row_cap"`
	Placeholder        string   `json:"missing_text_placeholder"`
	StopWords          []string `json:"stop_words"`
	AttachmentPatterns []string `json:"attachment_patterns"`
}

type fileConfig struct {
	DBPath             string   `yaml:"db_path"`
	ExportPath         string   `yaml:"export_path"`
	RowCap             int      `yaml:"row_cap"`
	Placeholder        string   `yaml:"missing_text_placeholder"`
	StopWords          []string `yaml:"stop_words"`
	AttachmentPatterns []string `yaml:"attachment_patterns"`
}

// DefaultConfigPath is ~/.chatlens/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chatlens", "config.yaml")
}

// DefaultDBPath is the standard macOS Messages store location.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Messages", "chat.db")
}

// Resolve loads the config file (if present) and layers env and CLI
// values over it. A missing config file is not an error.
func Resolve(opts ResolveOptions) (Resolved, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		if v := strings.TrimSpace(os.Getenv("CHATLENS_CONFIG")); v != "" {
			path = v
		} else {
			path = DefaultConfigPath()
		}
	}

	out := Resolved{
		ConfigPath:         path,
		DBPath:             ResolvedValue{Value: DefaultDBPath(), Source: SourceDefault, From: "built-in default"},
		ExportPath:         ResolvedValue{Value: "message_stats.json", Source: SourceDefault, From: "built-in default"},
		RowCap:             ingest.DefaultRowCap,
		Placeholder:        ingest.DefaultPlaceholder,
		StopWords:          analyze.DefaultStopWords(),
		AttachmentPatterns: analyze.DefaultAttachmentPatterns(),
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.ExportPath, cfg.ExportPath, SourceConfig, path)
		if cfg.RowCap > 0 {
			out.RowCap = cfg.RowCap
		}
		if strings.TrimSpace(cfg.Placeholder) != "" {
			out.Placeholder = cfg.Placeholder
		}
		if len(cfg.StopWords) > 0 {
			out.StopWords = cfg.StopWords
		}
		if len(cfg.AttachmentPatterns) > 0 {
			out.AttachmentPatterns = cfg.AttachmentPatterns
		}
	}

	applyEnv(&out.DBPath, "CHATLENS_DB")
	applyEnv(&out.ExportPath, "CHATLENS_EXPORT")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.ExportPath, opts.CLIExportPath, SourceCLI, "--out")

	out.DBPath.Value = expandUserPath(out.DBPath.Value)
	return out, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
