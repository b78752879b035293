package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// truncate shortens a string to maxWidth terminal cells, ellipsis included.
// Wide runes (CJK, emoji) count by display width.
func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "…")
}

// pad fills a string with spaces on the right up to width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// fit truncates then pads so the result is exactly width cells.
func fit(s string, width int) string {
	return pad(truncate(s, width), width)
}

// row lays out left and right aligned content over exactly width cells.
func row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func separator(width int) string {
	return strings.Repeat("─", width)
}
