// Package workspace enumerates and reads the files a user can pick for analysis
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/codesail/codesail/pkg/errors"
)

// DefaultExclude lists directory names that are never walked.
// Hidden directories are skipped as well.
var DefaultExclude = []string{"node_modules", "dist", "build", ".git"}

// DefaultSearchLimit caps search and listing results
const DefaultSearchLimit = 15

// File is one workspace entry as shown in a file picker
type File struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Icon      string `json:"icon"`
}

// Lister walks a workspace root
type Lister struct {
	root    string
	exclude []string
}

// NewLister creates a lister for root. A nil exclude list uses DefaultExclude.
func NewLister(root string, exclude []string) *Lister {
	if root == "" {
		root = "."
	}
	if exclude == nil {
		exclude = DefaultExclude
	}
	return &Lister{root: root, exclude: exclude}
}

// List returns every regular file under the root, sorted by path.
// Paths are relative to the root and use forward slashes.
func (l *Lister) List(ctx context.Context) ([]File, error) {
	files := make([]File, 0)

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(l.root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if l.shouldExclude(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		files = append(files, NewFile(rel))
		return nil
	})
	if err != nil {
		return nil, errors.ConsumerError(fmt.Sprintf("Error listing files: %v", err), nil)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// shouldExclude checks if a directory should be skipped
func (l *Lister) shouldExclude(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range l.exclude {
		if name == pattern {
			return true
		}
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// NewFile describes a slash-separated relative path
func NewFile(path string) File {
	name := filepath.Base(filepath.FromSlash(path))
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return File{
		Path:      path,
		Name:      name,
		Extension: ext,
		Icon:      IconFor(ext),
	}
}

// Search filters files whose name contains term, case-insensitively.
// A blank term returns the first limit files. limit <= 0 uses DefaultSearchLimit.
func Search(files []File, term string, limit int) []File {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]File, 0, limit)
	for _, f := range files {
		if len(out) == limit {
			break
		}
		if term == "" || strings.Contains(strings.ToLower(f.Name), term) {
			out = append(out, f)
		}
	}
	return out
}

// ReadFile returns the UTF-8 content of path. Failures carry a message the
// host can show as-is.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.ConsumerError("Error while reading the file", err).WithContext("path", path)
	}
	if !utf8.Valid(data) {
		return "", errors.ConsumerError("Error while reading the file", fmt.Errorf("%s is not valid UTF-8 text", path)).
			WithContext("path", path)
	}
	return string(data), nil
}
