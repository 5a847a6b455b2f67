package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for instruction banners. Chosen for dark terminal
// backgrounds.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

// ruleWidth is the width of the "=====" lines framing a banner.
const ruleWidth = 60

// styles groups the lipgloss styles used for instruction banners.
type styles struct {
	title   lipgloss.Style
	command lipgloss.Style
	warning lipgloss.Style
	rule    lipgloss.Style
}

// newStyles returns the banner styles. With noColor every style renders
// its text unchanged.
func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain, command: plain, warning: plain, rule: plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		command: lipgloss.NewStyle().Foreground(colorHighlight),
		warning: lipgloss.NewStyle().Foreground(colorWarning),
		rule:    lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// banner writes a framed block:
//
//	============================================================
//	<title>
//	  <line>
//	============================================================
//
// Lines are indented by two spaces. An empty line is written as-is.
func (s styles) banner(w io.Writer, title string, lines ...string) {
	rule := s.rule.Render(strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, s.title.Render(title))
	for _, line := range lines {
		if line == "" {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}
