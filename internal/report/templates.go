package report

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/charmbracelet/log"
)

//go:embed builtin/*.template
var builtinFiles embed.FS

// TemplateSet holds the four fragments of a named template.
//
// Shell is the page skeleton, Stylesheet and Script are inlined into it,
// and Row is repeated once per game.
type TemplateSet struct {
	Name       string
	Shell      string
	Stylesheet string
	Script     string
	Row        string
	Missing    []string // resources that could not be read, in validation order
}

// fragment returns a pointer to the field backing resource.
func (s *TemplateSet) fragment(resource string) *string {
	switch resource {
	case shared.ResourceHTML:
		return &s.Shell
	case shared.ResourceCSS:
		return &s.Stylesheet
	case shared.ResourceJS:
		return &s.Script
	case shared.ResourceJQuery:
		return &s.Row
	}
	return nil
}

// LoadTemplateSet reads templates/<name>_<resource>.template for every resource under dir.
//
// Missing or unreadable fragments are logged as warnings and left empty; loading never fails.
func LoadTemplateSet(dir, name string, logger *log.Logger) *TemplateSet {
	set := &TemplateSet{Name: name}

	for _, resource := range shared.TemplateResources {
		file := shared.TemplateFile(dir, name, resource)
		data, err := os.ReadFile(file)
		if err != nil {
			set.Missing = append(set.Missing, resource)
			if logger != nil {
				logger.Warn("template fragment unavailable", "template", name, "resource", resource, "path", file, "error", err)
			}
			continue
		}
		*set.fragment(resource) = string(data)
	}

	return set
}

// CheckTemplateSet reports which resources of the named template are missing from dir.
func CheckTemplateSet(dir, name string) []string {
	var missing []string
	for _, resource := range shared.TemplateResources {
		info, err := os.Stat(shared.TemplateFile(dir, name, resource))
		if err != nil || info.IsDir() {
			missing = append(missing, resource)
		}
	}
	return missing
}

// Complete reports whether every fragment was loaded.
func (s *TemplateSet) Complete() bool {
	return len(s.Missing) == 0
}

// BuiltinTemplates lists the names of the embedded template sets.
func BuiltinTemplates() []string {
	entries, err := fs.ReadDir(builtinFiles, "builtin")
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var names []string
	for _, e := range entries {
		name, _, ok := strings.Cut(strings.TrimSuffix(e.Name(), ".template"), "_")
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinTemplateSet returns an embedded template set by name.
func BuiltinTemplateSet(name string) (*TemplateSet, error) {
	set := &TemplateSet{Name: name}
	for _, resource := range shared.TemplateResources {
		data, err := builtinFiles.ReadFile(path.Join("builtin", fmt.Sprintf("%s_%s.template", name, resource)))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", shared.ErrTemplateNotFound, name)
		}
		*set.fragment(resource) = string(data)
	}
	return set, nil
}

// WriteBuiltinTemplates copies the embedded template sets into dir.
//
// Existing files are left alone unless overwrite is set. Returns the paths that were written.
func WriteBuiltinTemplates(dir string, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create templates directory: %w", err)
	}

	entries, err := fs.ReadDir(builtinFiles, "builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to read builtin templates: %w", err)
	}

	var written []string
	for _, e := range entries {
		target := filepath.Join(dir, e.Name())
		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return written, fmt.Errorf("failed to stat %s: %w", target, err)
			}
		}

		data, err := builtinFiles.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return written, fmt.Errorf("failed to read builtin template %s: %w", e.Name(), err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return written, fmt.Errorf("failed to write template %s: %w", target, err)
		}
		written = append(written, target)
	}

	return written, nil
}
