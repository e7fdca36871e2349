package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// Colours follow the Catppuccin palette.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
	colorMuted   = lipgloss.Color("#6C7086")
)

// styles renders output text. Plain writers get unstyled text.
type styles struct {
	color bool

	title   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	return styles{
		color:   isTerminal(w),
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		success: lipgloss.NewStyle().Foreground(colorSuccess),
		warning: lipgloss.NewStyle().Foreground(colorWarning),
		failure: lipgloss.NewStyle().Bold(true).Foreground(colorError),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

func (s styles) Title(text string) string   { return s.render(s.title, text) }
func (s styles) Success(text string) string { return s.render(s.success, text) }
func (s styles) Warning(text string) string { return s.render(s.warning, text) }
func (s styles) Failure(text string) string { return s.render(s.failure, text) }
func (s styles) Muted(text string) string   { return s.render(s.muted, text) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type count struct {
	label string
	value int
}

// renderReport prints a run report: counts first, then the details.
func renderReport(w io.Writer, st styles, report *domain.RunReport) {
	title := "Run " + report.ID
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, st.Title(title))
	fmt.Fprintln(w, st.Muted(fmt.Sprintf("  %s, took %s",
		report.StartedAt.Local().Format("2006-01-02 15:04:05"),
		report.EndedAt.Sub(report.StartedAt).Round(time.Millisecond))))

	sum := report.Summary()
	counts := []count{
		{"create", sum.Creates},
		{"update", sum.Updates},
		{"unchanged", sum.Unchanged},
		{"unmanaged", report.Unmanaged},
		{"warnings", sum.Warnings},
		{"orphans", sum.Orphans},
	}
	if !report.DryRun {
		counts = append(counts, count{"applied", sum.Applied}, count{"failed", sum.Failed})
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %-10s %d\n", c.label, c.value)
	}

	if report.Aborted() {
		fmt.Fprintf(w, "\n%s %s\n", st.Failure("Aborted:"), report.Error)
	}

	renderWarnings(w, st, report.Warnings)
	renderOrphans(w, st, report.Orphans)

	var failed []domain.ApplyResult
	for _, res := range report.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "\n%s\n", st.Failure(fmt.Sprintf("Failed (%d)", len(failed))))
		for _, res := range failed {
			fmt.Fprintf(w, "  %s %s (%s): %s\n", res.Action, res.Label, res.RecordID, res.Error)
		}
	}
}

func renderWarnings(w io.Writer, st styles, warnings []domain.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", st.Warning(fmt.Sprintf("Warnings (%d)", len(warnings))))
	for _, warning := range warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
}

func renderOrphans(w io.Writer, st styles, orphans []domain.Orphan) {
	if len(orphans) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", st.Warning(fmt.Sprintf("Orphans (%d), review manually", len(orphans))))
	for _, o := range orphans {
		fmt.Fprintf(w, "  %s stamped %s: %s\n", o.Entry.Ref, o.Entry.StampedID, o.Reason)
	}
}

// shortID trims a run ID for tables.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncate shortens text to n runes.
func truncate(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n-1]) + "…"
}
