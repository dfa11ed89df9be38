package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for every environment variable the resolver
// reads, e.g. FSGATE_ALLOWED_DIRS.
const envPrefix = "fsgate"

// envSettings is the fixed environment variable set. List-valued variables
// are comma-separated.
type envSettings struct {
	AllowedDirs       []string `envconfig:"ALLOWED_DIRS"`
	SecurityLevel     string   `envconfig:"SECURITY_LEVEL"`
	MaxFileSize       string   `envconfig:"MAX_FILE_SIZE"`
	AllowedExtensions []string `envconfig:"ALLOWED_EXTENSIONS"`
	BlockedExtensions []string `envconfig:"BLOCKED_EXTENSIONS"`
	AllowedMIMETypes  []string `envconfig:"ALLOWED_MIME_TYPES"`
	BlockedMIMETypes  []string `envconfig:"BLOCKED_MIME_TYPES"`
	AllowedCategories []string `envconfig:"ALLOWED_CATEGORIES"`
	BlockedCategories []string `envconfig:"BLOCKED_CATEGORIES"`
	FollowSymlinks    bool     `envconfig:"FOLLOW_SYMLINKS"`
	AuditLog          bool     `envconfig:"AUDIT_LOG"`
	LogLevel          string   `envconfig:"LOG_LEVEL"`
	LogDestination    string   `envconfig:"LOG_DESTINATION"`
	LogFile           string   `envconfig:"LOG_FILE"`
}

// envVarNames maps field keys to their full environment variable names,
// for presence detection and diagnostics.
var envVarNames = map[string]string{
	KeyAllowedDirs:       "FSGATE_ALLOWED_DIRS",
	KeySecurityLevel:     "FSGATE_SECURITY_LEVEL",
	KeyMaxFileSize:       "FSGATE_MAX_FILE_SIZE",
	KeyAllowedExtensions: "FSGATE_ALLOWED_EXTENSIONS",
	KeyBlockedExtensions: "FSGATE_BLOCKED_EXTENSIONS",
	KeyAllowedMIMETypes:  "FSGATE_ALLOWED_MIME_TYPES",
	KeyBlockedMIMETypes:  "FSGATE_BLOCKED_MIME_TYPES",
	KeyAllowedCategories: "FSGATE_ALLOWED_CATEGORIES",
	KeyBlockedCategories: "FSGATE_BLOCKED_CATEGORIES",
	KeyFollowSymlinks:    "FSGATE_FOLLOW_SYMLINKS",
	KeyAuditLog:          "FSGATE_AUDIT_LOG",
	KeyLogLevel:          "FSGATE_LOG_LEVEL",
	KeyLogDestination:    "FSGATE_LOG_DESTINATION",
	KeyLogFile:           "FSGATE_LOG_FILE",
}

// loadEnv processes the environment layer. lookup abstracts os.LookupEnv
// for tests; envSet records which variables were actually present.
func loadEnv(lookup func(string) (string, bool)) (*envSettings, map[string]bool, error) {
	var settings envSettings
	if err := envconfig.Process(envPrefix, &settings); err != nil {
		return nil, nil, fmt.Errorf("environment: %w", err)
	}

	envSet := make(map[string]bool, len(envVarNames))
	for key, name := range envVarNames {
		if _, ok := lookup(name); ok {
			envSet[key] = true
		}
	}
	return &settings, envSet, nil
}
