package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// fileSettings mirrors the flat configuration-file schema. Pointer fields
// distinguish "absent" from "set to zero value" so the merge only
// overrides what the file actually provides.
type fileSettings struct {
	AllowedDirs       []string `json:"allowed_dirs" yaml:"allowed_dirs" toml:"allowed_dirs"`
	SecurityLevel     *string  `json:"security_level" yaml:"security_level" toml:"security_level"`
	MaxFileSize       *string  `json:"max_file_size" yaml:"max_file_size" toml:"max_file_size"`
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions" toml:"allowed_extensions"`
	BlockedExtensions []string `json:"blocked_extensions" yaml:"blocked_extensions" toml:"blocked_extensions"`
	AllowedMIMETypes  []string `json:"allowed_mime_types" yaml:"allowed_mime_types" toml:"allowed_mime_types"`
	BlockedMIMETypes  []string `json:"blocked_mime_types" yaml:"blocked_mime_types" toml:"blocked_mime_types"`
	AllowedCategories []string `json:"allowed_categories" yaml:"allowed_categories" toml:"allowed_categories"`
	BlockedCategories []string `json:"blocked_categories" yaml:"blocked_categories" toml:"blocked_categories"`
	FollowSymlinks    *bool    `json:"follow_symlinks" yaml:"follow_symlinks" toml:"follow_symlinks"`
	AuditLog          *bool    `json:"audit_log" yaml:"audit_log" toml:"audit_log"`
	LogLevel          *string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogDestination    *string  `json:"log_destination" yaml:"log_destination" toml:"log_destination"`
	LogFile           *string  `json:"log_file" yaml:"log_file" toml:"log_file"`
}

// loadFile decodes a configuration file by extension: .json, .yaml/.yml,
// or .toml.
func loadFile(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	var settings fileSettings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = sonic.Unmarshal(data, &settings)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	case ".toml":
		err = toml.Unmarshal(data, &settings)
	default:
		return nil, fmt.Errorf("config file %s: unsupported format (want .json, .yaml, or .toml)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &settings, nil
}
