package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// userPalette holds the colors cycled through for nicknames.
var userPalette = []lipgloss.Color{
	"39", "41", "43", "45", "69", "75", "99", "111",
	"141", "149", "168", "172", "178", "203", "207", "214",
}

// nicknameStyle picks a deterministic color for a nickname by summing its
// code points, the same hashing the web client uses for user colors.
func nicknameStyle(nickname string) lipgloss.Style {
	sum := 0
	for _, r := range nickname {
		sum += int(r)
	}
	color := userPalette[sum%len(userPalette)]
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
