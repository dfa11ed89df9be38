package config

// Source identifies which configuration layer supplied a field's value.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Field keys used in the source map and in diagnostics. They match the
// flat configuration-file keys 1:1.
const (
	KeyAllowedDirs       = "allowed_dirs"
	KeySecurityLevel     = "security_level"
	KeyMaxFileSize       = "max_file_size"
	KeyAllowedExtensions = "allowed_extensions"
	KeyBlockedExtensions = "blocked_extensions"
	KeyAllowedMIMETypes  = "allowed_mime_types"
	KeyBlockedMIMETypes  = "blocked_mime_types"
	KeyAllowedCategories = "allowed_categories"
	KeyBlockedCategories = "blocked_categories"
	KeyFollowSymlinks    = "follow_symlinks"
	KeyAuditLog          = "audit_log"
	KeyLogLevel          = "log_level"
	KeyLogDestination    = "log_destination"
	KeyLogFile           = "log_file"
)

// Settings is the flat merged view of all layers, before conversion into a
// security.Policy. String-typed fields stay raw here; enum and size
// validation happens during conversion so bad values can fall back to
// defaults with a recorded error.
type Settings struct {
	AllowedDirs       []string
	SecurityLevel     string
	MaxFileSize       string
	AllowedExtensions []string
	BlockedExtensions []string
	AllowedMIMETypes  []string
	BlockedMIMETypes  []string
	AllowedCategories []string
	BlockedCategories []string
	FollowSymlinks    bool
	AuditLog          bool
	LogLevel          string
	LogDestination    string
	LogFile           string
}

// DefaultSettings returns the compiled defaults: moderate level, content
// capped at 10MB, every extension admitted except the common executable
// set, audit logging on.
func DefaultSettings() Settings {
	return Settings{
		AllowedDirs:       nil, // falls back to the home directory
		SecurityLevel:     "moderate",
		MaxFileSize:       "10MB",
		AllowedExtensions: []string{"*"},
		BlockedExtensions: []string{"exe", "dll", "bat", "cmd", "com", "scr"},
		FollowSymlinks:    false,
		AuditLog:          true,
		LogLevel:          "info",
		LogDestination:    "stdout",
	}
}

// LogSettings is the resolved logging surface handed to the logger.
type LogSettings struct {
	Level       string
	Destination string
	File        string
}

// ServerSettings is the resolved HTTP surface, flag-and-env only.
type ServerSettings struct {
	Port string
	Host string
}
