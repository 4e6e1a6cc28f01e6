package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// styles renders status glyphs and emphasis on stderr. Stdout carries
// only paths so the shell wrapper can capture it.
type styles struct {
	ok       lipgloss.Style
	warn     lipgloss.Style
	fail     lipgloss.Style
	info     lipgloss.Style
	dim      lipgloss.Style
	bold     lipgloss.Style
	number   lipgloss.Style
	semantic lipgloss.Style
	branch   lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		r.SetColorProfile(termenv.Ascii)
	}

	return &styles{
		ok:       r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("1")),
		info:     r.NewStyle().Foreground(lipgloss.Color("6")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("8")),
		bold:     r.NewStyle().Bold(true),
		number:   r.NewStyle().Foreground(lipgloss.Color("5")),
		semantic: r.NewStyle().Foreground(lipgloss.Color("5")),
		branch:   r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (s *styles) okMark() string   { return s.ok.Render("✓") }
func (s *styles) warnMark() string { return s.warn.Render("⚠") }
func (s *styles) failMark() string { return s.fail.Render("✗") }
func (s *styles) busyMark() string { return s.info.Render("⏳") }
