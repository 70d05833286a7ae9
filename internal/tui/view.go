package tui

import (
	"fmt"
	"strings"
)

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎬 vidfetch"))
	b.WriteString("\n")

	if m.notice != nil {
		b.WriteString(m.viewNotice())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter/esc: dismiss • ctrl+c: quit"))
		return b.String()
	}

	b.WriteString(m.viewURL())
	b.WriteString("\n\n")
	b.WriteString(m.viewFormats())
	b.WriteString("\n")

	if m.state == StateDownloading || m.state == StateCompleted {
		b.WriteString(m.viewProgress())
		b.WriteString("\n")
	}

	b.WriteString(m.viewStatus())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewURL() string {
	label := labelStyle.Render("Video URL")
	if m.focus == focusURL {
		label = focusedLabelStyle.Render("Video URL")
	}
	return label + "\n" + m.textInput.View()
}

func (m Model) viewFormats() string {
	var b strings.Builder

	label := labelStyle.Render("Formats")
	if m.focus == focusFormats {
		label = focusedLabelStyle.Render("Formats")
	}
	b.WriteString(label)
	b.WriteString("\n")

	if len(m.formats) == 0 {
		b.WriteString(dimStyle.Render("  (press enter on the URL to load formats)"))
		b.WriteString("\n")
		return b.String()
	}

	start, end := formatWindow(m.selected, len(m.formats), visibleFormats)
	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		line := m.formats[i].Label()
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if end < len(m.formats) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.formats)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

// formatWindow returns the [start, end) slice of the list to show so that
// selected stays visible.
func formatWindow(selected, total, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := selected - size/2
	start = max(start, 0)
	start = min(start, total-size)
	return start, start + size
}

func (m Model) viewProgress() string {
	var b strings.Builder
	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%.1f%%", m.snapshot.Percent)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Speed: %s\n", m.snapshot.Speed))
	b.WriteString(fmt.Sprintf("ETA: %s\n", m.snapshot.ETA))
	b.WriteString(fmt.Sprintf("Size: %s / %s\n", m.snapshot.Downloaded, m.snapshot.Total))
	return b.String()
}

func (m Model) viewStatus() string {
	switch m.state {
	case StateFetchingFormats:
		return m.spinner.View() + " Fetching formats..."
	case StateDownloading:
		return m.spinner.View() + " Downloading..."
	case StateFormatsReady:
		return infoStyle.Render(fmt.Sprintf("%d formats available", len(m.formats)))
	case StateCompleted:
		return successStyle.Render("✓ Saved " + m.lastPath)
	case StateFailed:
		return errorStyle.Render("✗ Failed")
	}
	if m.outputDir != "" {
		return dimStyle.Render("Saving to " + m.outputDir)
	}
	return ""
}

func (m Model) viewNotice() string {
	style, title := noticeStyle, successStyle.Render(m.notice.title)
	if m.notice.isError {
		style, title = errorNoticeStyle, errorStyle.Render(m.notice.title)
	}
	return style.Render(title + "\n\n" + m.notice.body)
}

func (m Model) helpText() string {
	if m.busy() {
		return "ctrl+c: quit"
	}
	if m.focus == focusFormats {
		return "↑/↓: select • enter: download • tab: edit URL • esc: quit"
	}
	if len(m.formats) > 0 {
		return "enter: load formats • tab: formats • esc: quit"
	}
	return "enter: load formats • esc: quit"
}
