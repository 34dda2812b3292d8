package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1)

	styleFound = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleMiss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleKey = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(18)

	styleWarn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// kv renders aligned "key  value" rows.
func kv(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(styleKey.Render(pairs[i]))
		b.WriteString(pairs[i+1])
		b.WriteByte('\n')
	}
	return b.String()
}

func header(format string, args ...any) string {
	return styleHeader.Render(fmt.Sprintf(format, args...))
}

func warnings(ws []string) string {
	var b strings.Builder
	for _, w := range ws {
		b.WriteString(styleWarn.Render("warning: " + w))
		b.WriteByte('\n')
	}
	return b.String()
}
