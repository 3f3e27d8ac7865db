package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/geometry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))
)

// Minimap size in cells.
const (
	mapWidth  = 40
	mapHeight = 12
)

// View renders the UI (Bubbletea interface).
func (m Model) View() string {
	if m.quitting {
		return "Stopping scanner...\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteString("\n\n")

	b.WriteString(frameStyle.Render(renderMinimap(m.record, m.frame.Dx(), m.frame.Dy())))
	b.WriteString("\n\n")

	b.WriteString(m.renderDetection())

	if m.detail != "" {
		b.WriteString(m.detail)
	}

	if m.lastError != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Error: %v", m.lastError)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(hintStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render("\n[s start/stop, enter primary action, c copy, 1-9 pick action, q quit]"))
	return b.String()
}

// renderHeader renders the title line with state and source.
func (m Model) renderHeader() string {
	state := m.state.String()
	if m.state == scan.StateStarting || m.state == scan.StateStopping {
		state = m.spinner.View() + " " + state
	}
	header := fmt.Sprintf("qrscan | %s | detections: %d", state, m.detections)
	if m.opts.Source != "" {
		header += " | " + m.opts.Source
	}
	return titleStyle.Render(header)
}

// renderDetection renders the current record and its actions.
func (m Model) renderDetection() string {
	if m.record == nil {
		if m.state == scan.StateActive {
			return hintStyle.Render("Point the camera at a QR code") + "\n\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(typeStyle.Render(m.record.Type.String()))
	b.WriteString(" ")
	b.WriteString(m.record.Text)
	b.WriteString("\n\n")

	for i, action := range m.plan {
		b.WriteString(actionStyle.Render(fmt.Sprintf("[%d] %s", i+1, action.Label)))
		b.WriteString("  ")
	}
	b.WriteString("\n\n")
	return b.String()
}

// renderMinimap draws the frame area with the detection box outlined, scaled
// into a mapWidth x mapHeight grid. Without a detection the frame is blank.
func renderMinimap(record *scan.DecodedRecord, frameW, frameH int) string {
	grid := make([][]rune, mapHeight)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", mapWidth))
	}

	if record != nil {
		// Terminal cells are about twice as tall as wide, so fit the frame
		// into a grid of square cells and stretch x afterwards.
		overlay, ok := geometry.Fit(record.Box, frameW, frameH, mapWidth/2, mapHeight)
		if ok {
			fillRect(grid, overlay.Frame, '·')
			outlineRect(grid, overlay.Box, '█')
		}
	}

	lines := make([]string, mapHeight)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func fillRect(grid [][]rune, r geometry.BoundingBox, ch rune) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			set(grid, x, y, ch)
		}
	}
}

func outlineRect(grid [][]rune, r geometry.BoundingBox, ch rune) {
	w, h := max(r.Width, 1), max(r.Height, 1)
	for y := r.Y; y < r.Y+h; y++ {
		for x := r.X; x < r.X+w; x++ {
			if y == r.Y || y == r.Y+h-1 || x == r.X || x == r.X+w-1 {
				set(grid, x, y, ch)
			}
		}
	}
}

// set writes ch at (x, y) in square-cell coordinates, two runes wide.
// Points outside the grid are dropped.
func set(grid [][]rune, x, y int, ch rune) {
	if y < 0 || y >= len(grid) {
		return
	}
	for _, cx := range []int{2 * x, 2*x + 1} {
		if cx >= 0 && cx < len(grid[y]) {
			grid[y][cx] = ch
		}
	}
}
