// Package ui holds the color themes of the command-line output.
//
// Themes are plain ANSI escape strings so they can be interleaved with
// tablewriter and spinner output; headings are rendered with lipgloss.
// Color output is disabled by --no-color or the NO_COLOR environment variable.
package ui
