package workspace

import "strings"

var iconMap = map[string]string{
	"js":   "javascript",
	"ts":   "typescript",
	"json": "json",
	"md":   "markdown",
	"html": "html",
	"css":  "css",
	"png":  "image",
	"jpg":  "image",
	"jpeg": "image",
	"svg":  "image",
}

var languageMap = map[string]string{
	"js":   "javascript",
	"jsx":  "jsx",
	"ts":   "typescript",
	"tsx":  "tsx",
	"go":   "go",
	"py":   "python",
	"rb":   "ruby",
	"rs":   "rust",
	"java": "java",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"cs":   "csharp",
	"sh":   "bash",
	"json": "json",
	"html": "html",
	"css":  "css",
	"md":   "markdown",
	"yaml": "yaml",
	"yml":  "yaml",
}

// IconFor maps a file extension (without the dot) to an icon name.
// Unknown extensions get "file".
func IconFor(ext string) string {
	if icon, ok := iconMap[strings.ToLower(ext)]; ok {
		return icon
	}
	return "file"
}

// LanguageFor returns the code fence language for an extension, or "".
func LanguageFor(ext string) string {
	return languageMap[strings.ToLower(strings.TrimPrefix(ext, "."))]
}
