package security

import "strings"

// Category is a coarse file classification derived from MIME type and
// extension heuristics.
type Category string

const (
	CategoryText       Category = "text"
	CategoryCode       Category = "code"
	CategoryImage      Category = "image"
	CategoryDocument   Category = "document"
	CategoryArchive    Category = "archive"
	CategoryExecutable Category = "executable"
	CategoryMedia      Category = "media"
	CategoryUnknown    Category = "unknown"
)

// DefaultMIMEType is assumed when an extension has no table entry.
const DefaultMIMEType = "application/octet-stream"

// extensionMIMETypes maps lower-cased extensions (without the dot) to MIME
// types. Kept as data so the policy surface stays auditable.
var extensionMIMETypes = map[string]string{
	// text
	"txt":  "text/plain",
	"md":   "text/markdown",
	"log":  "text/plain",
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"rtf":  "application/rtf",
	"tex":  "application/x-tex",
	"rst":  "text/x-rst",
	"html": "text/html",
	"htm":  "text/html",
	"xml":  "application/xml",

	// code
	"go":    "text/x-go",
	"py":    "text/x-python",
	"js":    "text/javascript",
	"ts":    "text/typescript",
	"jsx":   "text/jsx",
	"tsx":   "text/tsx",
	"c":     "text/x-c",
	"h":     "text/x-c",
	"cpp":   "text/x-c++",
	"rs":    "text/x-rust",
	"java":  "text/x-java",
	"rb":    "text/x-ruby",
	"php":   "application/x-httpd-php",
	"sh":    "application/x-sh",
	"bash":  "application/x-sh",
	"css":   "text/css",
	"json":  "application/json",
	"yaml":  "application/yaml",
	"yml":   "application/yaml",
	"toml":  "application/toml",
	"sql":   "application/sql",
	"swift": "text/x-swift",
	"kt":    "text/x-kotlin",

	// images
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",
	"tiff": "image/tiff",
	"heic": "image/heic",

	// documents
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text",
	"ods":  "application/vnd.oasis.opendocument.spreadsheet",
	"epub": "application/epub+zip",

	// archives
	"zip": "application/zip",
	"tar": "application/x-tar",
	"gz":  "application/gzip",
	"tgz": "application/gzip",
	"bz2": "application/x-bzip2",
	"xz":  "application/x-xz",
	"7z":  "application/x-7z-compressed",
	"rar": "application/vnd.rar",

	// executables and installers
	"exe":   "application/x-msdownload",
	"dll":   "application/x-msdownload",
	"msi":   "application/x-msi",
	"bat":   "application/x-bat",
	"cmd":   "application/x-bat",
	"com":   "application/x-msdownload",
	"scr":   "application/x-msdownload",
	"so":    "application/x-sharedlib",
	"dylib": "application/x-mach-binary",
	"app":   "application/x-mach-binary",
	"deb":   "application/vnd.debian.binary-package",
	"rpm":   "application/x-rpm",
	"dmg":   "application/x-apple-diskimage",
	"jar":   "application/java-archive",
	"apk":   "application/vnd.android.package-archive",

	// media
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",
}

// extensionCategories resolves extensions whose MIME prefix alone is
// ambiguous (text/x-go is code, not prose; jar is executable, not archive).
var extensionCategories = map[string]Category{
	"go": CategoryCode, "py": CategoryCode, "js": CategoryCode,
	"ts": CategoryCode, "jsx": CategoryCode, "tsx": CategoryCode,
	"c": CategoryCode, "h": CategoryCode, "cpp": CategoryCode,
	"rs": CategoryCode, "java": CategoryCode, "rb": CategoryCode,
	"php": CategoryCode, "sh": CategoryCode, "bash": CategoryCode,
	"css": CategoryCode, "json": CategoryCode, "yaml": CategoryCode,
	"yml": CategoryCode, "toml": CategoryCode, "sql": CategoryCode,
	"swift": CategoryCode, "kt": CategoryCode, "html": CategoryCode,
	"htm": CategoryCode, "xml": CategoryCode,

	"pdf": CategoryDocument, "doc": CategoryDocument, "docx": CategoryDocument,
	"xls": CategoryDocument, "xlsx": CategoryDocument, "ppt": CategoryDocument,
	"pptx": CategoryDocument, "odt": CategoryDocument, "ods": CategoryDocument,
	"epub": CategoryDocument, "rtf": CategoryDocument,

	"zip": CategoryArchive, "tar": CategoryArchive, "gz": CategoryArchive,
	"tgz": CategoryArchive, "bz2": CategoryArchive, "xz": CategoryArchive,
	"7z": CategoryArchive, "rar": CategoryArchive,

	"exe": CategoryExecutable, "dll": CategoryExecutable, "msi": CategoryExecutable,
	"bat": CategoryExecutable, "cmd": CategoryExecutable, "com": CategoryExecutable,
	"scr": CategoryExecutable, "so": CategoryExecutable, "dylib": CategoryExecutable,
	"app": CategoryExecutable, "deb": CategoryExecutable, "rpm": CategoryExecutable,
	"dmg": CategoryExecutable, "jar": CategoryExecutable, "apk": CategoryExecutable,
}

// dangerousExtensions are rejected under strict level even when the
// allow-list nominally admits them.
var dangerousExtensions = map[string]struct{}{
	"exe": {}, "dll": {}, "msi": {}, "bat": {}, "cmd": {}, "com": {},
	"scr": {}, "pif": {}, "vbs": {}, "wsf": {}, "so": {}, "dylib": {},
	"jar": {}, "apk": {},
}

// MIMETypeForExtension returns the static MIME mapping for an extension.
func MIMETypeForExtension(ext string) string {
	if mimeType, ok := extensionMIMETypes[strings.ToLower(ext)]; ok {
		return mimeType
	}
	return DefaultMIMEType
}

// CategoryForFile derives the coarse category from the extension and the
// extension-derived MIME type. Extension overrides win over MIME prefixes.
func CategoryForFile(ext, mimeType string) Category {
	if category, ok := extensionCategories[strings.ToLower(ext)]; ok {
		return category
	}
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return CategoryText
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mimeType, "audio/"), strings.HasPrefix(mimeType, "video/"):
		return CategoryMedia
	default:
		return CategoryUnknown
	}
}

// IsDangerousExtension reports whether the extension is in the fixed
// dangerous set enforced under strict level.
func IsDangerousExtension(ext string) bool {
	_, ok := dangerousExtensions[strings.ToLower(ext)]
	return ok
}
