package config

import (
	"flag"
	"strings"
)

// Flags carries the CLI layer: only flags the user actually passed
// participate in the merge.
type Flags struct {
	values map[string]string

	// ConfigPath is the --config flag, consumed by the resolver itself.
	ConfigPath string

	// Server flags, passed through outside the policy merge.
	Port string
	Host string
	Dev  bool
}

// NewFlags returns an empty CLI layer.
func NewFlags() *Flags {
	return &Flags{values: make(map[string]string)}
}

// Set records one field value from the command line.
func (f *Flags) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
}

// Lookup returns the raw flag value for a field, if one was passed.
func (f *Flags) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// ParseFlags parses command-line arguments into the CLI layer. Only flags
// present in args end up in the merge; defaults shown in usage text come
// from the resolver's default layer, not from here.
func ParseFlags(name string, args []string) (*Flags, error) {
	flags := NewFlags()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&flags.ConfigPath, "config", "", "Path to configuration file (.json, .yaml, or .toml)")
	fs.StringVar(&flags.Port, "port", "8090", "Server port")
	fs.StringVar(&flags.Host, "host", "0.0.0.0", "Server host")
	fs.BoolVar(&flags.Dev, "dev", false, "Development mode logging")

	policyFlags := map[string]*string{
		KeyAllowedDirs:       fs.String("allowed-dirs", "", "Comma-separated allowed directories"),
		KeySecurityLevel:     fs.String("security-level", "", "Security level: strict, moderate, or permissive"),
		KeyMaxFileSize:       fs.String("max-file-size", "", "Maximum file size, e.g. 10MB"),
		KeyAllowedExtensions: fs.String("allowed-extensions", "", "Comma-separated allowed extensions"),
		KeyBlockedExtensions: fs.String("blocked-extensions", "", "Comma-separated blocked extensions"),
		KeyAllowedMIMETypes:  fs.String("allowed-mime-types", "", "Comma-separated allowed MIME types"),
		KeyBlockedMIMETypes:  fs.String("blocked-mime-types", "", "Comma-separated blocked MIME types"),
		KeyAllowedCategories: fs.String("allowed-categories", "", "Comma-separated allowed categories"),
		KeyBlockedCategories: fs.String("blocked-categories", "", "Comma-separated blocked categories"),
		KeyFollowSymlinks:    fs.String("follow-symlinks", "", "Permit contained symlink targets (true/false)"),
		KeyAuditLog:          fs.String("audit-log", "", "Log security events (true/false)"),
		KeyLogLevel:          fs.String("log-level", "", "Log level: debug, info, warn, or error"),
		KeyLogDestination:    fs.String("log-destination", "", "Log destination: stdout, stderr, or file"),
		KeyLogFile:           fs.String("log-file", "", "Log file path (with -log-destination=file)"),
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	flagNames := map[string]string{
		KeyAllowedDirs:       "allowed-dirs",
		KeySecurityLevel:     "security-level",
		KeyMaxFileSize:       "max-file-size",
		KeyAllowedExtensions: "allowed-extensions",
		KeyBlockedExtensions: "blocked-extensions",
		KeyAllowedMIMETypes:  "allowed-mime-types",
		KeyBlockedMIMETypes:  "blocked-mime-types",
		KeyAllowedCategories: "allowed-categories",
		KeyBlockedCategories: "blocked-categories",
		KeyFollowSymlinks:    "follow-symlinks",
		KeyAuditLog:          "audit-log",
		KeyLogLevel:          "log-level",
		KeyLogDestination:    "log-destination",
		KeyLogFile:           "log-file",
	}
	for key, name := range flagNames {
		if set[name] {
			flags.Set(key, *policyFlags[key])
		}
	}
	return flags, nil
}

// splitList parses a comma-separated list value, trimming whitespace and
// dropping empty entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
