package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/blockmd/internal/document"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// summary is what a finished conversion reports to the terminal.
type summary struct {
	Doc       *document.Document
	Format    string
	Path      string
	Bytes     int
	Unchanged bool
}

// formatSummary renders the conversion summary box.
func formatSummary(w io.Writer, s summary) {
	status := successStyle.Render("written")
	if s.Unchanged {
		status = dimStyle.Render("unchanged")
	}
	title := s.Doc.Title
	if title == "" {
		title = "(untitled)"
	}
	content := fmt.Sprintf("%s\n%s %s  %s %s\n%s %d rendered, %d visited, %d skipped",
		titleStyle.Render(title),
		dimStyle.Render("Format:"), s.Format,
		dimStyle.Render("Size:"), formatBytes(s.Bytes),
		dimStyle.Render("Blocks:"), s.Doc.Stats.Rendered, s.Doc.Stats.Visited, s.Doc.Stats.Skipped,
	)
	if s.Doc.Stats.Unknown > 0 || s.Doc.Stats.DepthCut > 0 {
		content += "\n" + warnStyle.Render(fmt.Sprintf("%d unsupported, %d cut at max depth", s.Doc.Stats.Unknown, s.Doc.Stats.DepthCut))
	}
	if s.Path != "" {
		content += fmt.Sprintf("\n%s %s %s", dimStyle.Render("Output:"), s.Path, status)
	}
	content += fmt.Sprintf("\n%s %s", dimStyle.Render("Took:"), s.Doc.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, boxStyle.Render(content))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
