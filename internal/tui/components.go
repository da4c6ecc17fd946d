package tui

import "github.com/charmbracelet/lipgloss"

// renderHeader returns a styled header with an optional muted subtitle.
func (s *Styles) renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{s.Header.Render(title)}
	if subtitle != "" {
		rows = append(rows, s.MutedText.Render(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded border around an already rendered input.
func (s *Styles) renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := s.Muted
	if focused {
		borderColor = s.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 2).
		Render(inputView)
}

func (s *Styles) renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderSelector renders "Label: Value (key)".
func (s *Styles) renderSelector(label, value, key string) string {
	out := s.Label.Render(label+": ") + s.Value.Render(value)
	if key != "" {
		out += " " + s.Time.Render("("+key+")")
	}
	return out
}
