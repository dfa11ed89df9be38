package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsgate/fsgate/internal/security"
)

// Resolution is the outcome of one resolve pass: the constructed policy,
// the logging surface, startup diagnostics, and the per-field source map.
type Resolution struct {
	Policy   *security.Policy
	Logging  LogSettings
	Errors   []string
	Warnings []string
	Sources  map[string]Source
}

// Resolver merges the configuration layers. Resolution is idempotent: a
// Resolver can be re-invoked for a reload and produces the same result for
// the same file, environment, and flags.
type Resolver struct {
	// ConfigPath locates the optional configuration file.
	ConfigPath string

	// Flags is the CLI layer; nil means no flags were passed.
	Flags *Flags

	// Home anchors tilde expansion and relative directory entries. Empty
	// means the process owner's home directory.
	Home string

	// LookupEnv abstracts environment presence checks for tests.
	LookupEnv func(string) (string, bool)
}

// NewResolver creates a resolver over the given CLI layer.
func NewResolver(flags *Flags) *Resolver {
	r := &Resolver{Flags: flags, LookupEnv: os.LookupEnv}
	if flags != nil {
		r.ConfigPath = flags.ConfigPath
	}
	return r
}

// Resolve merges defaults, file, environment, and flags into a policy.
// It never fails outright: invalid fields fall back to defaults and are
// reported through Resolution.Errors.
func (r *Resolver) Resolve() *Resolution {
	res := &Resolution{Sources: make(map[string]Source)}
	settings := DefaultSettings()
	for _, key := range allFieldKeys {
		res.Sources[key] = SourceDefault
	}

	file := r.loadFileLayer(res)
	env, envSet := r.loadEnvLayer(res)
	flags := r.Flags
	if flags == nil {
		flags = NewFlags()
	}

	m := &merger{envSet: envSet, flags: flags, res: res}
	m.list(KeyAllowedDirs, &settings.AllowedDirs, file.listField(KeyAllowedDirs), env.AllowedDirs)
	m.str(KeySecurityLevel, &settings.SecurityLevel, file.SecurityLevel, env.SecurityLevel)
	m.str(KeyMaxFileSize, &settings.MaxFileSize, file.MaxFileSize, env.MaxFileSize)
	m.list(KeyAllowedExtensions, &settings.AllowedExtensions, file.listField(KeyAllowedExtensions), env.AllowedExtensions)
	m.list(KeyBlockedExtensions, &settings.BlockedExtensions, file.listField(KeyBlockedExtensions), env.BlockedExtensions)
	m.list(KeyAllowedMIMETypes, &settings.AllowedMIMETypes, file.listField(KeyAllowedMIMETypes), env.AllowedMIMETypes)
	m.list(KeyBlockedMIMETypes, &settings.BlockedMIMETypes, file.listField(KeyBlockedMIMETypes), env.BlockedMIMETypes)
	m.list(KeyAllowedCategories, &settings.AllowedCategories, file.listField(KeyAllowedCategories), env.AllowedCategories)
	m.list(KeyBlockedCategories, &settings.BlockedCategories, file.listField(KeyBlockedCategories), env.BlockedCategories)
	m.boolean(KeyFollowSymlinks, &settings.FollowSymlinks, file.FollowSymlinks, env.FollowSymlinks)
	m.boolean(KeyAuditLog, &settings.AuditLog, file.AuditLog, env.AuditLog)
	m.str(KeyLogLevel, &settings.LogLevel, file.LogLevel, env.LogLevel)
	m.str(KeyLogDestination, &settings.LogDestination, file.LogDestination, env.LogDestination)
	m.str(KeyLogFile, &settings.LogFile, file.LogFile, env.LogFile)

	res.Policy = r.buildPolicy(settings, res)
	res.Logging = r.buildLogging(settings, res)
	return res
}

// Reload re-resolves the configuration and atomically swaps the active
// policy. In-flight validations keep the snapshot they started with.
func (r *Resolver) Reload(store *security.Store) *Resolution {
	res := r.Resolve()
	store.Swap(res.Policy)
	return res
}

func (r *Resolver) loadFileLayer(res *Resolution) *fileSettings {
	if r.ConfigPath == "" {
		return &fileSettings{}
	}
	file, err := loadFile(r.ConfigPath)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return &fileSettings{}
	}
	return file
}

func (r *Resolver) loadEnvLayer(res *Resolution) (*envSettings, map[string]bool) {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env, envSet, err := loadEnv(lookup)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return &envSettings{}, nil
	}
	return env, envSet
}

func (r *Resolver) home() string {
	if r.Home != "" {
		return filepath.Clean(r.Home)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Clean(home)
	}
	return "/"
}

func (r *Resolver) buildPolicy(settings Settings, res *Resolution) *security.Policy {
	defaults := DefaultSettings()

	level, err := security.ParseLevel(settings.SecurityLevel)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		level, _ = security.ParseLevel(defaults.SecurityLevel)
	}

	maxSize, err := ParseSize(settings.MaxFileSize)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		maxSize, _ = ParseSize(defaults.MaxFileSize)
	}

	home := r.home()
	dirs := settings.AllowedDirs
	if len(dirs) == 0 {
		dirs = []string{home}
		res.Warnings = append(res.Warnings, "no allowed directories configured, defaulting to the home directory")
	}
	canonical := make([]string, 0, len(dirs))
	seen := make(map[string]struct{}, len(dirs))
	for _, entry := range dirs {
		dir := CanonicalDir(entry, home)
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		canonical = append(canonical, dir)
	}

	allowedExt := normalizeExtensions(settings.AllowedExtensions)
	blockedExt := normalizeExtensions(settings.BlockedExtensions)
	for ext := range blockedExt {
		if _, both := allowedExt[ext]; both {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("extension %q is both allowed and blocked; block wins", ext))
		}
	}

	return &security.Policy{
		Level:             level,
		AllowedDirs:       canonical,
		MaxFileSize:       maxSize,
		AllowedExtensions: allowedExt,
		BlockedExtensions: blockedExt,
		AllowedMIMETypes:  normalizeLower(settings.AllowedMIMETypes),
		BlockedMIMETypes:  normalizeLower(settings.BlockedMIMETypes),
		AllowedCategories: r.parseCategories(settings.AllowedCategories, KeyAllowedCategories, res),
		BlockedCategories: r.parseCategories(settings.BlockedCategories, KeyBlockedCategories, res),
		FollowSymlinks:    settings.FollowSymlinks,
		AuditLog:          settings.AuditLog,
	}
}

func (r *Resolver) buildLogging(settings Settings, res *Resolution) LogSettings {
	defaults := DefaultSettings()
	logging := LogSettings{
		Level:       settings.LogLevel,
		Destination: settings.LogDestination,
		File:        settings.LogFile,
	}

	if !validLogLevels[logging.Level] {
		res.Errors = append(res.Errors, fmt.Sprintf("unknown log level: %q", logging.Level))
		logging.Level = defaults.LogLevel
	}
	switch logging.Destination {
	case "stdout", "stderr":
	case "file":
		if logging.File == "" {
			res.Errors = append(res.Errors, `log destination "file" requires a log file path`)
			logging.Destination = defaults.LogDestination
		}
	default:
		res.Errors = append(res.Errors, fmt.Sprintf("unknown log destination: %q", logging.Destination))
		logging.Destination = defaults.LogDestination
	}
	return logging
}

func (r *Resolver) parseCategories(names []string, key string, res *Resolution) map[security.Category]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[security.Category]struct{}, len(names))
	for _, name := range names {
		category := security.Category(strings.ToLower(strings.TrimSpace(name)))
		if !knownCategories[category] {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown category %q", key, name))
			continue
		}
		set[category] = struct{}{}
	}
	return set
}

// CanonicalDir expands and normalizes one allowed-directory entry: tilde
// against the home directory, relative entries against the home directory,
// everything absolute-normalized.
func CanonicalDir(entry, home string) string {
	switch {
	case entry == "~":
		return home
	case strings.HasPrefix(entry, "~/"):
		return filepath.Join(home, entry[2:])
	case filepath.IsAbs(entry):
		return filepath.Clean(entry)
	default:
		return filepath.Join(home, entry)
	}
}

// merger applies one configuration field across the layers, recording the
// winning source.
type merger struct {
	envSet map[string]bool
	flags  *Flags
	res    *Resolution
}

func (m *merger) str(key string, dst *string, fileVal *string, envVal string) {
	if fileVal != nil {
		*dst = *fileVal
		m.res.Sources[key] = SourceFile
	}
	if m.envSet[key] {
		*dst = envVal
		m.res.Sources[key] = SourceEnv
	}
	if v, ok := m.flags.Lookup(key); ok {
		*dst = v
		m.res.Sources[key] = SourceFlag
	}
}

func (m *merger) list(key string, dst *[]string, fileVal []string, envVal []string) {
	if fileVal != nil {
		*dst = fileVal
		m.res.Sources[key] = SourceFile
	}
	if m.envSet[key] {
		*dst = envVal
		m.res.Sources[key] = SourceEnv
	}
	if v, ok := m.flags.Lookup(key); ok {
		*dst = splitList(v)
		m.res.Sources[key] = SourceFlag
	}
}

func (m *merger) boolean(key string, dst *bool, fileVal *bool, envVal bool) {
	if fileVal != nil {
		*dst = *fileVal
		m.res.Sources[key] = SourceFile
	}
	if m.envSet[key] {
		*dst = envVal
		m.res.Sources[key] = SourceEnv
	}
	if v, ok := m.flags.Lookup(key); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			m.res.Errors = append(m.res.Errors, fmt.Sprintf("%s: invalid boolean %q", key, v))
			return
		}
		*dst = parsed
		m.res.Sources[key] = SourceFlag
	}
}

// listField returns the file layer's value for a list key, nil when absent.
func (f *fileSettings) listField(key string) []string {
	switch key {
	case KeyAllowedDirs:
		return f.AllowedDirs
	case KeyAllowedExtensions:
		return f.AllowedExtensions
	case KeyBlockedExtensions:
		return f.BlockedExtensions
	case KeyAllowedMIMETypes:
		return f.AllowedMIMETypes
	case KeyBlockedMIMETypes:
		return f.BlockedMIMETypes
	case KeyAllowedCategories:
		return f.AllowedCategories
	case KeyBlockedCategories:
		return f.BlockedCategories
	default:
		return nil
	}
}

func normalizeExtensions(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(item), "."))
		if ext == "" {
			continue
		}
		set[ext] = struct{}{}
	}
	return set
}

func normalizeLower(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := strings.ToLower(strings.TrimSpace(item))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

var allFieldKeys = []string{
	KeyAllowedDirs, KeySecurityLevel, KeyMaxFileSize,
	KeyAllowedExtensions, KeyBlockedExtensions,
	KeyAllowedMIMETypes, KeyBlockedMIMETypes,
	KeyAllowedCategories, KeyBlockedCategories,
	KeyFollowSymlinks, KeyAuditLog,
	KeyLogLevel, KeyLogDestination, KeyLogFile,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var knownCategories = map[security.Category]bool{
	security.CategoryText: true, security.CategoryCode: true,
	security.CategoryImage: true, security.CategoryDocument: true,
	security.CategoryArchive: true, security.CategoryExecutable: true,
	security.CategoryMedia: true, security.CategoryUnknown: true,
}
