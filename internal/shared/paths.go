package shared

import (
	"fmt"
	"path/filepath"
)

// Template resources, in the order they are validated.
const (
	ResourceHTML   = "html"
	ResourceCSS    = "css"
	ResourceJS     = "js"
	ResourceJQuery = "jquery"
)

// TemplateResources lists the four fragments that make up a template set.
var TemplateResources = []string{ResourceHTML, ResourceCSS, ResourceJS, ResourceJQuery}

// Layout derives every on-disk path used by a run from the configured output directory, user and state.
type Layout struct {
	Dir      string
	Username string
	State    string
}

// NewLayout builds the [Layout] for the given configuration.
func NewLayout(c *Config) Layout {
	dir := c.Settings.OutputDir
	if dir == "" {
		dir = "."
	}
	return Layout{Dir: dir, Username: c.User.Username, State: c.Settings.State}
}

// CollectionFile is where the raw collection XML is written: <state>_<username>_games_list.xml
func (l Layout) CollectionFile() string {
	return filepath.Join(l.Dir, fmt.Sprintf("%s_%s_games_list.xml", l.State, l.Username))
}

// GamesDir is the per-game cache directory: <state>_<username>_games
func (l Layout) GamesDir() string {
	return filepath.Join(l.Dir, fmt.Sprintf("%s_%s_games", l.State, l.Username))
}

// ReportFile is the rendered report for the given format (html, csv or markdown).
func (l Layout) ReportFile(format string) string {
	ext := "html"
	switch format {
	case "csv":
		ext = "csv"
	case "markdown":
		ext = "md"
	}
	return filepath.Join(l.Dir, fmt.Sprintf("%s_games_list.%s", l.Username, ext))
}

// TemplateFile returns templates/<name>_<resource>.template under dir.
func TemplateFile(dir, name, resource string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.template", name, resource))
}
