// package report renders extracted game details into HTML, CSV and Markdown reports
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
)

// Output formats accepted by [Write].
const (
	FormatHTML     = "html"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Report is the data substituted into a template set.
type Report struct {
	Username string
	State    string
	Games    []models.GameDetails
}

// Title is the page heading used by every format.
func (r Report) Title() string {
	return fmt.Sprintf("%s's board games (%s)", r.Username, r.State)
}

// Rows returns the games sorted by name.
func (r Report) Rows() []models.GameDetails {
	return models.SortByName(r.Games)
}

// rowReplacer maps row placeholders to escaped values of d.
func rowReplacer(d models.GameDetails) *strings.Replacer {
	e := html.EscapeString
	return strings.NewReplacer(
		"{{id}}", e(d.ID),
		"{{name}}", e(d.Name),
		"{{url}}", e(d.URL),
		"{{thumbnail}}", e(d.Thumbnail),
		"{{min_players}}", e(d.MinPlayers),
		"{{max_players}}", e(d.MaxPlayers),
		"{{ideal_players}}", e(d.IdealPlayers),
		"{{playing_time}}", e(d.PlayingTime),
		"{{weight}}", e(d.Weight),
		"{{min_age}}", e(d.MinAge),
		"{{year_published}}", e(d.YearPublished),
	)
}

// RenderRows substitutes each sorted game into the row fragment and concatenates the results.
func RenderRows(set *TemplateSet, r Report) string {
	var b strings.Builder
	for _, d := range r.Rows() {
		b.WriteString(rowReplacer(d).Replace(set.Row))
	}
	return b.String()
}

// RenderHTML builds the full page.
//
// Substitution is a single literal pass over the shell, so placeholders appearing
// inside game names or fragments are never expanded a second time.
func RenderHTML(set *TemplateSet, r Report) []byte {
	shell := strings.NewReplacer(
		"{{title}}", html.EscapeString(r.Title()),
		"{{username}}", html.EscapeString(r.Username),
		"{{state}}", html.EscapeString(r.State),
		"{{count}}", strconv.Itoa(len(r.Games)),
		"{{css}}", set.Stylesheet,
		"{{js}}", set.Script,
		"{{rows}}", RenderRows(set, r),
	)
	return []byte(shell.Replace(set.Shell))
}

var csvHeaders = []string{
	"ID", "Name", "URL", "Thumbnail", "Min Players", "Max Players", "Ideal Players",
	"Playing Time", "Weight", "Min Age", "Year Published",
}

// ExportCSV converts the sorted rows to CSV with one header line.
func ExportCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range r.Rows() {
		record := []string{
			d.ID, d.Name, d.URL, d.Thumbnail, d.MinPlayers, d.MaxPlayers, d.IdealPlayers,
			d.PlayingTime, d.Weight, d.MinAge, d.YearPublished,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportMarkdown converts the sorted rows to a Markdown table.
func ExportMarkdown(r Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Title())
	fmt.Fprintf(&buf, "**Games**: %d\n\n", len(r.Games))

	buf.WriteString("| Name | Players | Ideal | Time | Weight | Age | Year |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range r.Rows() {
		fmt.Fprintf(&buf, "| [%s](%s) | %s–%s | %s | %s | %s | %s | %s |\n",
			markdownCell(d.Name), d.URL, d.MinPlayers, d.MaxPlayers, d.IdealPlayers,
			d.PlayingTime, d.Weight, d.MinAge, d.YearPublished)
	}

	return buf.Bytes()
}

func markdownCell(s string) string {
	return strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`).Replace(s)
}

// Render produces the report body in the requested format. An empty format means HTML.
func Render(format string, set *TemplateSet, r Report) ([]byte, error) {
	switch format {
	case "", FormatHTML:
		return RenderHTML(set, r), nil
	case FormatCSV:
		return ExportCSV(r)
	case FormatMarkdown:
		return ExportMarkdown(r), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders the report and writes it to path, creating the parent directory.
func Write(path, format string, set *TemplateSet, r Report) error {
	data, err := Render(format, set, r)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
