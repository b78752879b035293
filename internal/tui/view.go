package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

const (
	borderHeight   = 2
	panelOverhead  = borderHeight + 2 // border + header + separator
	playerBarLines = 3
	helpLines      = 1
)

func (m Model) listHeight() int {
	return m.height - playerBarLines - helpLines - panelOverhead
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	sections := []string{
		m.renderQueue(),
		m.renderPlayerBar(),
		m.renderHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderQueue() string {
	innerWidth := m.width - borderHeight
	listHeight := m.listHeight()

	header := m.renderQueueHeader(innerWidth)
	lines := []string{header, separator(innerWidth)}

	if len(m.tracks) == 0 {
		empty := dimmedStyle.Render(fit("Nothing queued. Open an album, playlist or track to start.", innerWidth))
		lines = append(lines, empty)
		for i := 1; i < listHeight; i++ {
			lines = append(lines, strings.Repeat(" ", innerWidth))
		}
	} else {
		end := min(m.offset+listHeight, len(m.tracks))
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.renderTrackLine(i, innerWidth))
		}
		for i := end - m.offset; i < listHeight; i++ {
			lines = append(lines, strings.Repeat(" ", innerWidth))
		}
	}

	return panelStyle.Width(innerWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderQueueHeader(innerWidth int) string {
	label := "Queue"
	if m.kind != queue.Unknown {
		label = m.kind.String()
	}
	left := fmt.Sprintf("%s (%d tracks)", label, len(m.tracks))

	right := ""
	if m.errMsg != "" {
		right = errorStyle.Render(truncate(m.errMsg, innerWidth/2))
	}
	return headerStyle.Render(row(left, right, innerWidth))
}

func (m Model) renderTrackLine(i, innerWidth int) string {
	t := m.tracks[i]

	marker := "  "
	if t.Status == queue.Playing {
		marker = playSymbol + " "
	}

	dur := formatDuration(t.Duration)
	numWidth := 4
	left := fmt.Sprintf("%s%*d  %s", marker, numWidth-2, t.Position, t.Title)
	line := row(truncate(left, innerWidth-len(dur)-2), dur, innerWidth)

	switch {
	case i == m.cursor:
		return cursorStyle.Render(line)
	case t.Status == queue.Playing:
		return playingStyle.Render(line)
	case t.Status == queue.Played || t.Status == queue.Unplayable:
		return dimmedStyle.Render(line)
	default:
		return trackStyle.Render(line)
	}
}

func (m Model) renderPlayerBar() string {
	innerWidth := m.width - 6

	if !m.hasTrack {
		return panelStyle.Padding(0, 2).Width(m.width - 2).
			Render(dimmedStyle.Render(fit("stopped", max(innerWidth, 0))))
	}

	status := playSymbol
	if m.status != player.Playing {
		status = pauseSymbol
	}
	if m.buffering {
		status = "⋯"
	}

	title := m.track.Title
	if title == "" {
		title = "Unknown Track"
	}

	var infoParts []string
	if m.track.Artist != "" {
		infoParts = append(infoParts, m.track.Artist)
	}
	if m.track.Album != "" {
		infoParts = append(infoParts, m.track.Album)
	}
	if m.quality != "" {
		infoParts = append(infoParts, m.quality)
	}
	info := strings.Join(infoParts, " · ")

	timeStr := fmt.Sprintf("%s / %s", formatDuration(m.position), formatDuration(m.duration))

	sep := "   "
	fixed := lipgloss.Width(status) + 2 + lipgloss.Width(timeStr) + lipgloss.Width(sep)*2
	minBar := 10
	available := innerWidth - fixed - minBar

	titleW := lipgloss.Width(title)
	infoW := lipgloss.Width(info)
	var content strings.Builder
	used := 0
	switch {
	case titleW+lipgloss.Width(sep)+infoW <= available:
		content.WriteString(titleStyle.Render(title))
		content.WriteString(sep)
		content.WriteString(artistStyle.Render(info))
		used = titleW + lipgloss.Width(sep) + infoW
	case titleW < available:
		content.WriteString(titleStyle.Render(title))
		used = titleW
	default:
		shortened := truncate(title, max(available, 10))
		content.WriteString(titleStyle.Render(shortened))
		used = lipgloss.Width(shortened)
	}

	barWidth := max(innerWidth-used-fixed, 5)
	var ratio float64
	if m.duration > 0 {
		ratio = float64(m.position) / float64(m.duration)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)

	content.WriteString(sep)
	content.WriteString(status)
	content.WriteString("  ")
	content.WriteString(progressFilledStyle.Render(strings.Repeat("━", filled)))
	content.WriteString(progressEmptyStyle.Render(strings.Repeat("─", barWidth-filled)))
	content.WriteString(sep)
	content.WriteString(metaStyle.Render(timeStr))

	return panelStyle.Padding(0, 2).Width(m.width - 2).Render(content.String())
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, 8)
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		parts = append(parts, metaStyle.Render(h.Key)+" "+dimmedStyle.Render(h.Desc))
	}
	return " " + strings.Join(parts, "  ")
}

// formatQuality renders the negotiated stream format. The catalog reports
// the sampling rate in kHz already.
func formatQuality(bitDepth int, samplingRate float64) string {
	if bitDepth == 0 || samplingRate == 0 {
		return ""
	}
	return fmt.Sprintf("%d-bit/%gkHz", bitDepth, samplingRate)
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
