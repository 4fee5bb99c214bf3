// Package watch follows session files as they are written and prints
// their lines, optionally coloured by severity.
package watch

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tungetti/sessionlog/internal/verbosity"
)

// Severity colours adapt to light and dark terminals.
var (
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#EAB308", Dark: "#FACC15"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// labelSep separates the severity label from the message in a rendered line.
const labelSep = "\t : "

// Styler colours the origin and severity label of rendered log lines.
type Styler struct {
	plain  bool
	origin lipgloss.Style
	labels map[string]lipgloss.Style
}

// NewStyler creates a styler for output written to w. With noColor set, or
// when w is not a colour terminal, lines pass through unchanged.
func NewStyler(w io.Writer, noColor bool) *Styler {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	labelStyle := func(c lipgloss.TerminalColor) lipgloss.Style {
		return r.NewStyle().Foreground(c).Bold(true)
	}

	return &Styler{
		plain:  noColor,
		origin: r.NewStyle().Foreground(ColorMuted),
		labels: map[string]lipgloss.Style{
			verbosity.Error.String():   labelStyle(ColorError),
			verbosity.Warning.String(): labelStyle(ColorWarning),
			verbosity.Info.String():    labelStyle(ColorInfo),
			verbosity.All.String():     r.NewStyle().Foreground(ColorMuted),
		},
	}
}

// Style returns line with its origin and label coloured. Lines that do
// not have the session line shape are returned as they are.
func (s *Styler) Style(line string) string {
	if s.plain {
		return line
	}
	origin, label, msg, ok := Split(line)
	if !ok {
		return line
	}
	style, known := s.labels[label]
	if !known {
		style = s.origin
	}
	return s.origin.Render(origin) + " , " + style.Render(label) + labelSep + msg
}

// Split breaks a rendered line "<file> [<line>] , <label>\t : <msg>" into
// its origin, label and message.
func Split(line string) (origin, label, msg string, ok bool) {
	sep := strings.Index(line, labelSep)
	if sep < 0 {
		return "", "", "", false
	}
	head := line[:sep]
	comma := strings.LastIndex(head, " , ")
	if comma < 0 {
		return "", "", "", false
	}
	return head[:comma], head[comma+3:], line[sep+len(labelSep):], true
}
