package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/headlines/internal/config"
)

const AppName = "headlines"

// Tagline is printed under the logo in the startup banner.
const Tagline = "Terminal News Reader"

// LogoLines is the canonical ASCII logo.
var LogoLines = []string{
	"█ █ █▀▀ ▄▀█ █▀▄ █   █ █▄ █ █▀▀ █▀",
	"█▀█ ██▄ █▀█ █▄▀ █▄▄ █ █ ▀█ ██▄ ▄█",
}

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
}

// Styles are the rendered look of one theme. They are rebuilt whenever the
// theme changes.
type Styles struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color

	Logo         lipgloss.Style
	Title        lipgloss.Style
	Header       lipgloss.Style
	Label        lipgloss.Style
	Value        lipgloss.Style
	StatusBar    lipgloss.Style
	Help         lipgloss.Style
	Time         lipgloss.Style
	Text         lipgloss.Style
	MutedText    lipgloss.Style
	ErrorMessage lipgloss.Style
	Separator    lipgloss.Style
	Link         lipgloss.Style
	Disabled     lipgloss.Style
	Panel        lipgloss.Style

	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarn    lipgloss.Style
	StatusError   lipgloss.Style
}

func NewStyles(c config.UIColors) *Styles {
	primary := lipgloss.Color(c.Primary)
	secondary := lipgloss.Color(c.Secondary)
	accent := lipgloss.Color(c.Accent)
	surface := lipgloss.Color(c.Surface)
	text := lipgloss.Color(c.Text)
	muted := lipgloss.Color(c.Muted)
	errColor := lipgloss.Color(c.Error)
	success := lipgloss.Color(c.Success)

	return &Styles{
		Primary: primary,
		Accent:  accent,
		Muted:   muted,

		Logo: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Title: lipgloss.NewStyle().
			Foreground(text).
			Background(surface).
			Bold(true).
			Padding(0, 2),
		Header: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(muted),
		Value: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		Time: lipgloss.NewStyle().
			Foreground(muted).
			Faint(true),
		Text: lipgloss.NewStyle().
			Foreground(text),
		MutedText: lipgloss.NewStyle().
			Foreground(muted),
		ErrorMessage: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		Separator: lipgloss.NewStyle().
			Foreground(muted),
		Link: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Disabled: lipgloss.NewStyle().
			Foreground(muted).
			Faint(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Padding(0, 1),

		StatusInfo: lipgloss.NewStyle().
			Foreground(muted),
		StatusSuccess: lipgloss.NewStyle().
			Foreground(success),
		StatusWarn: lipgloss.NewStyle().
			Foreground(accent),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
	}
}

// Banner renders the startup banner. An empty or "dev" version is omitted
// from the tagline.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	tagline := "  " + Tagline
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("  %s %s", Tagline, version)
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("#4ECDC4")).
		Padding(1, 3).
		MarginTop(1)

	output := borderStyle.Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#95E1D3")).
		Render("◆ ◇ ◆ ◇ ◆")

	center := lipgloss.NewStyle().Width(70).Align(lipgloss.Center)
	return lipgloss.JoinVertical(lipgloss.Left,
		center.Render(output),
		center.MarginBottom(1).Render(separator),
	)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
