package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for CLI output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the accent color for task identifiers.
	Primary string
	// Secondary is used for durations and other secondary figures.
	Secondary string
	// Success marks completed tasks.
	Success string
	// Warning marks timeouts and cancellations.
	Warning string
	// Error marks failed tasks.
	Error string
	// Info is used for banners.
	Info      string
	Bold      string
	Underline string
	Reset     string

	// Heading is the lipgloss color of section headings and the dashboard accent.
	Heading lipgloss.TerminalColor
	// Dashboard colors.
	Positive lipgloss.TerminalColor
	Negative lipgloss.TerminalColor
	Muted    lipgloss.TerminalColor
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Heading:   lipgloss.Color("#5FAFFF"),
		Positive:  lipgloss.Color("#5FFF5F"),
		Negative:  lipgloss.Color("#FF3030"),
		Muted:     lipgloss.Color("#8A8A8A"),
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Heading:   lipgloss.Color("#005FAF"),
		Positive:  lipgloss.Color("#008700"),
		Negative:  lipgloss.Color("#AF0000"),
		Muted:     lipgloss.Color("#585858"),
	}

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{
		Name:     "none",
		Heading:  lipgloss.NoColor{},
		Positive: lipgloss.NoColor{},
		Negative: lipgloss.NoColor{},
		Muted:    lipgloss.NoColor{},
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the currently active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name ("dark", "light" or "none").
// Unknown names select the dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme selects the theme from the --no-color flag and the NO_COLOR
// environment variable (https://no-color.org/). Either one disables colors.
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}

func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorGrey() string      { return GetCurrentTheme().Secondary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorReset() string     { return GetCurrentTheme().Reset }

// Heading renders a bold section heading in the theme's heading color.
// With colors disabled it returns the plain title.
func Heading(title string) string {
	t := GetCurrentTheme()
	if t.Name == NoColorTheme.Name {
		return title
	}
	return lipgloss.NewStyle().Bold(true).Foreground(t.Heading).Render(title)
}
