package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"

	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/query"
)

// Chroma styles per theme.
const (
	darkCodeStyle  = "monokai"
	lightCodeStyle = "github"
)

// UI renders command output. Colors are only emitted when out is a
// terminal; anything else (pipes, files, tests) gets plain text.
type UI struct {
	out   io.Writer
	dark  bool
	color bool

	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
	mark    lipgloss.Style
	box     lipgloss.Style
}

// NewUI builds the palette for the dark or light theme.
func NewUI(out io.Writer, dark bool) *UI {
	r := lipgloss.NewRenderer(out)

	accent, muted, green, yellow, red, markBg := "#1D4ED8", "#6B7280", "#15803D", "#A16207", "#B91C1C", "#FDE68A"
	if dark {
		accent, muted, green, yellow, red, markBg = "#93C5FD", "#9CA3AF", "#86EFAC", "#FDE047", "#FCA5A5", "#854D0E"
	}

	return &UI{
		out:     out,
		dark:    dark,
		color:   isTerminal(out),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		muted:   r.NewStyle().Foreground(lipgloss.Color(muted)),
		success: r.NewStyle().Foreground(lipgloss.Color(green)),
		warn:    r.NewStyle().Foreground(lipgloss.Color(yellow)),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color(red)),
		mark:    r.NewStyle().Background(lipgloss.Color(markBg)),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(muted)).
			Padding(0, 1),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Success, Warn and Error print one-line notifications.
func (u *UI) Success(format string, args ...any) {
	fmt.Fprintln(u.out, u.success.Render("✓ "+fmt.Sprintf(format, args...)))
}

func (u *UI) Warn(format string, args ...any) {
	fmt.Fprintln(u.out, u.warn.Render("! "+fmt.Sprintf(format, args...)))
}

func (u *UI) Error(msg string) {
	fmt.Fprintln(u.out, u.failure.Render("✗ "+msg))
}

func (u *UI) Println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

// Snippets prints a listing, or the empty state matching outcome.
func (u *UI) Snippets(snippets []model.Snippet, outcome query.Outcome, q query.Query) error {
	switch outcome {
	case query.OutcomeNoData:
		u.Println(u.muted.Render("No snippets yet. Create one with `snippets add`."))
		return nil
	case query.OutcomeNoMatches:
		u.Println(u.muted.Render("No snippets match your filters."))
		return nil
	case query.OutcomeEmptyTrash:
		u.Println(u.muted.Render("Trash is empty."))
		return nil
	}

	data := pterm.TableData{{"ID", "★", "Title", "Language", "Tags", dateHeader(q)}}
	for i := range snippets {
		s := &snippets[i]
		star := ""
		if s.IsFavorite {
			star = "★"
		}
		when := s.CreatedAt
		if q.View == query.Trash && s.DeletedAt != nil {
			when = *s.DeletedAt
		}
		data = append(data, []string{
			s.ID,
			star,
			u.highlightMatches(s.Title, q.Search),
			s.Language,
			strings.Join(s.Tags, ", "),
			formatTime(when),
		})
	}
	if err := u.table(data); err != nil {
		return err
	}
	footer := fmt.Sprintf("%d snippet(s)", len(snippets))
	if q.View == query.Active && q.Filtered() {
		footer += " matching filters"
	}
	u.Println(u.muted.Render(footer))
	return nil
}

func dateHeader(q query.Query) string {
	if q.View == query.Trash {
		return "Deleted"
	}
	return "Created"
}

// Snippet prints one snippet with its code highlighted for its language.
func (u *UI) Snippet(s *model.Snippet) error {
	var meta []string
	meta = append(meta, "language: "+s.Language)
	if len(s.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(s.Tags, ", "))
	}
	if s.IsFavorite {
		meta = append(meta, "★ favorite")
	}
	meta = append(meta, "created "+formatTime(s.CreatedAt))
	if !s.UpdatedAt.Equal(s.CreatedAt) {
		meta = append(meta, "updated "+formatTime(s.UpdatedAt))
	}
	if s.DeletedAt != nil {
		meta = append(meta, "in trash since "+formatTime(*s.DeletedAt))
	}
	if n := len(s.Versions); n > 0 {
		meta = append(meta, fmt.Sprintf("%d version(s)", n))
	}

	u.Println(u.title.Render(s.Title) + " " + u.muted.Render("("+s.ID+")"))
	u.Println(u.muted.Render(strings.Join(meta, " · ")))
	if s.Description != "" {
		u.Println(s.Description)
	}
	u.Println()
	return u.Code(s.Code, s.Language)
}

// Code writes source highlighted with chroma, or verbatim without color.
func (u *UI) Code(code, language string) error {
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if !u.color {
		_, err := io.WriteString(u.out, code)
		return err
	}
	style := lightCodeStyle
	if u.dark {
		style = darkCodeStyle
	}
	return quick.Highlight(u.out, code, language, "terminal256", style)
}

// Draft prints a pending draft in a box.
func (u *UI) Draft(session string, d *model.Draft) {
	lines := []string{
		u.title.Render("Unsaved draft") + " " + u.muted.Render("("+session+")"),
		"title:    " + d.Title,
		"language: " + d.Language,
		"tags:     " + strings.Join(d.Tags, ", "),
	}
	if d.Description != "" {
		lines = append(lines, "description: "+d.Description)
	}
	lines = append(lines, "", d.Code)
	u.Println(u.box.Render(strings.Join(lines, "\n")))
}

// History prints the version stack, most recent first.
func (u *UI) History(s *model.Snippet) error {
	if len(s.Versions) == 0 {
		u.Println(u.muted.Render("No earlier versions."))
		return nil
	}
	data := pterm.TableData{{"#", "Saved", "Title", "Language", "Tags", "Code"}}
	for i, v := range s.Versions {
		data = append(data, []string{
			fmt.Sprint(i),
			formatTime(v.SavedAt),
			v.Title,
			v.Language,
			strings.Join(v.Tags, ", "),
			firstLine(v.Code),
		})
	}
	return u.table(data)
}

// Diff prints a line diff from older to newer.
func (u *UI) Diff(older, newer string) {
	for _, line := range DiffLines(older, newer) {
		switch {
		case strings.HasPrefix(line, "+"):
			u.Println(u.success.Render(line))
		case strings.HasPrefix(line, "-"):
			u.Println(u.failure.UnsetBold().Render(line))
		default:
			u.Println(line)
		}
	}
}

// DiffLines returns a unified-style line diff: "+" added, "-" removed,
// " " unchanged.
func DiffLines(older, newer string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(older, newer)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}

// List prints one value per line, or empty when there are none.
func (u *UI) List(values []string, empty string) {
	if len(values) == 0 {
		u.Println(u.muted.Render(empty))
		return
	}
	for _, v := range values {
		u.Println(v)
	}
}

func (u *UI) table(data pterm.TableData) error {
	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !u.color {
		table = table.WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}
	s, err := table.Srender()
	if err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	fmt.Fprintln(u.out, s)
	return nil
}

func (u *UI) highlightMatches(text, search string) string {
	if search == "" || !u.color {
		return text
	}
	return query.Highlight(text, search, func(s string) string { return u.mark.Render(s) })
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func firstLine(code string) string {
	line, _, more := strings.Cut(strings.TrimSpace(code), "\n")
	if more {
		line += " …"
	}
	if len(line) > 48 {
		line = line[:47] + "…"
	}
	return line
}
