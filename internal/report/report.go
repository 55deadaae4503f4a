package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// Format represents supported report formats.
//
//   - Text: one line per input, suited to a terminal
//   - Markdown: a table, suited to pasting into an issue or a modpack README
//   - JSON: machine readable, stable field names
type Format int

const (
	// FormatText renders one line per input (default).
	FormatText Format = iota

	// FormatMarkdown renders a Markdown table.
	FormatMarkdown

	// FormatJSON renders indented JSON.
	FormatJSON
)

// ParseFormat maps a format name to a Format. Matching is case-insensitive;
// "md" is accepted for markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown report format %q", name)
}

// String returns the canonical name of the format.
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Renderer turns results returned by the download manager into text.
//
// Example:
//
//	r := report.NewRenderer(report.FormatMarkdown, false)
//	fmt.Print(r.RenderOutcomes(results))
//
//	// Result:
//	// | # | Project | Result | File | Note |
//	// |---|---------|--------|------|------|
//	// | 1 | sodium | resolved | sodium-0.5.13.jar | rendering |
type Renderer struct {
	format Format
	styled bool // For text: color status marks with lipgloss
}

// NewRenderer creates a new Renderer.
//
// Parameters:
//   - format: The report format to generate
//   - styled: For text format, whether to color the output
//     (ignored for other formats)
func NewRenderer(format Format, styled bool) *Renderer {
	return &Renderer{format: format, styled: styled}
}

// RenderLinks renders the result of link mode.
func (r *Renderer) RenderLinks(links []model.LinkResult) string {
	switch r.format {
	case FormatMarkdown:
		return r.linksMarkdown(links)
	case FormatJSON:
		return r.json(links)
	default:
		return r.linksText(links)
	}
}

// RenderOutcomes renders one entry per resolved line, in input order.
func (r *Renderer) RenderOutcomes(results []model.LineResult) string {
	switch r.format {
	case FormatMarkdown:
		return r.outcomesMarkdown(results)
	case FormatJSON:
		return r.json(outcomeDocs(results))
	default:
		return r.outcomesText(results)
	}
}

// RenderBundle renders a bundle run: every line outcome, every file that
// could not be fetched, then a summary. path is where the archive was
// written and may be empty.
func (r *Renderer) RenderBundle(result *model.BundleResult, path string) string {
	switch r.format {
	case FormatMarkdown:
		return r.bundleMarkdown(result, path)
	case FormatJSON:
		return r.json(bundleDoc{
			RunID:    result.RunID,
			State:    result.State,
			FileName: result.FileName,
			Path:     path,
			Size:     result.Size(),
			Added:    result.Added,
			Failures: result.Failures,
			Lines:    outcomeDocs(result.Lines),
			Error:    errString(result.Err),
		})
	default:
		return r.bundleText(result, path)
	}
}

// linksText renders one link per line:
//
//	sodium — rendering → https://modrinth.com/mod/sodium?version=1.21.8&loader=fabric#download
//	✖ invalid input: not a url
func (r *Renderer) linksText(links []model.LinkResult) string {
	var sb strings.Builder
	for _, l := range links {
		if !l.Valid {
			sb.WriteString(r.fail(fmt.Sprintf("✖ invalid input: %s", l.Line.RawURL)) + "\n")
			continue
		}
		sb.WriteString(l.Identifier)
		if l.Line.Comment != "" {
			sb.WriteString(" — " + r.muted(l.Line.Comment))
		}
		sb.WriteString(" → " + l.URL + "\n")
	}
	return sb.String()
}

func (r *Renderer) linksMarkdown(links []model.LinkResult) string {
	var sb strings.Builder
	sb.WriteString("| # | Project | Download page | Note |\n")
	sb.WriteString("|---|---------|---------------|------|\n")
	for i, l := range links {
		if !l.Valid {
			sb.WriteString(fmt.Sprintf("| %d | %s | invalid input | |\n", i+1, escapeCell(l.Line.RawURL)))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | [%s](%s) | %s |\n",
			i+1, escapeCell(l.Identifier), escapeCell(l.Identifier), l.URL, escapeCell(l.Line.Comment)))
	}
	return sb.String()
}

// outcomesText renders one line per input:
//
//	✔ sodium → sodium-0.5.13.jar (0.5.13, 1.2 MB) — rendering
//	✖ iris: no matching version
func (r *Renderer) outcomesText(results []model.LineResult) string {
	var sb strings.Builder
	for _, res := range results {
		sb.WriteString(r.outcomeLine(res) + "\n")
	}
	return sb.String()
}

func (r *Renderer) outcomeLine(res model.LineResult) string {
	o := res.Outcome
	switch o.Kind {
	case model.OutcomeInvalid:
		return r.fail(fmt.Sprintf("✖ invalid input: %s", o.RawURL))
	case model.OutcomeResolved:
		line := r.ok("✔") + " " + o.Identifier + " → " + o.Entry.FileName
		if details := entryDetails(o.Entry); details != "" {
			line += " " + r.muted("("+details+")")
		}
		if o.Entry.Note != "" {
			line += " — " + r.muted(o.Entry.Note)
		}
		return line
	default:
		return r.fail(fmt.Sprintf("✖ %s: %s", o.Identifier, o.Message()))
	}
}

func (r *Renderer) outcomesMarkdown(results []model.LineResult) string {
	var sb strings.Builder
	sb.WriteString("| # | Project | Result | File | Note |\n")
	sb.WriteString("|---|---------|--------|------|------|\n")
	for i, res := range results {
		o := res.Outcome
		project := o.Identifier
		if o.Kind == model.OutcomeInvalid {
			project = o.RawURL
		}
		result := o.Kind.String()
		var file string
		if o.Kind == model.OutcomeResolved {
			file = o.Entry.FileName
		} else {
			result = o.Message()
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, escapeCell(project), escapeCell(result), escapeCell(file), escapeCell(res.Line.Comment)))
	}
	return sb.String()
}

func (r *Renderer) bundleText(result *model.BundleResult, path string) string {
	var sb strings.Builder
	sb.WriteString(r.outcomesText(result.Lines))

	for _, f := range result.Failures {
		sb.WriteString(r.fail(fmt.Sprintf("✖ failed for %s (%s)", f.FileName, f.Message)) + "\n")
	}

	if result.State == model.StateReady {
		name := result.FileName
		if path != "" {
			name = path
		}
		sb.WriteString(r.ok(fmt.Sprintf("Archive ready: %s (%d files, %s)",
			name, len(result.Added), humanize.Bytes(uint64(result.Size())))) + "\n")
	} else {
		sb.WriteString(r.fail(fmt.Sprintf("Failed: %s", errString(result.Err))) + "\n")
	}
	return sb.String()
}

func (r *Renderer) bundleMarkdown(result *model.BundleResult, path string) string {
	var sb strings.Builder
	sb.WriteString(r.outcomesMarkdown(result.Lines))

	if len(result.Failures) > 0 {
		sb.WriteString("\n### Failed downloads\n\n")
		for _, f := range result.Failures {
			sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", f.FileName, f.Identifier, f.Message))
		}
	}

	sb.WriteString("\n")
	if result.State == model.StateReady {
		name := result.FileName
		if path != "" {
			name = path
		}
		sb.WriteString(fmt.Sprintf("**Archive:** `%s`, %d files, %s\n",
			name, len(result.Added), humanize.Bytes(uint64(result.Size()))))
	} else {
		sb.WriteString(fmt.Sprintf("**Failed:** %s\n", errString(result.Err)))
	}
	return sb.String()
}

// outcomeDoc is the JSON shape of a LineResult. Errors are flattened to
// their message.
type outcomeDoc struct {
	URL        string               `json:"url"`
	Comment    string               `json:"comment,omitempty"`
	Kind       model.OutcomeKind    `json:"kind"`
	Identifier string               `json:"identifier,omitempty"`
	Entry      *model.ResolvedEntry `json:"entry,omitempty"`
	Error      string               `json:"error,omitempty"`
}

type bundleDoc struct {
	RunID    string              `json:"run_id"`
	State    model.BundleState   `json:"state"`
	FileName string              `json:"file_name,omitempty"`
	Path     string              `json:"path,omitempty"`
	Size     int64               `json:"size"`
	Added    []string            `json:"added"`
	Failures []model.FileFailure `json:"failures"`
	Lines    []outcomeDoc        `json:"lines"`
	Error    string              `json:"error,omitempty"`
}

func outcomeDocs(results []model.LineResult) []outcomeDoc {
	docs := make([]outcomeDoc, 0, len(results))
	for _, res := range results {
		docs = append(docs, outcomeDoc{
			URL:        res.Line.RawURL,
			Comment:    res.Line.Comment,
			Kind:       res.Outcome.Kind,
			Identifier: res.Outcome.Identifier,
			Entry:      res.Outcome.Entry,
			Error:      res.Outcome.Message(),
		})
	}
	return docs
}

func (r *Renderer) json(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return string(data) + "\n"
}

func entryDetails(e *model.ResolvedEntry) string {
	var parts []string
	if e.VersionNumber != "" {
		parts = append(parts, e.VersionNumber)
	}
	if e.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(e.Size)))
	}
	return strings.Join(parts, ", ")
}

func (r *Renderer) ok(s string) string {
	if !r.styled {
		return s
	}
	return okStyle.Render(s)
}

func (r *Renderer) fail(s string) string {
	if !r.styled {
		return s
	}
	return errStyle.Render(s)
}

func (r *Renderer) muted(s string) string {
	if !r.styled {
		return s
	}
	return mutedStyle.Render(s)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// escapeCell escapes characters that would break a Markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
