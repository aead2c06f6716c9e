package cli

import (
	"strings"

	"trade-journal/internal/models"
)

// equityChart renders the cumulative P&L curve as a width x height block
// chart. Points are sampled evenly so the first and last are always plotted;
// a dotted row marks zero when it lies inside the range.
func equityChart(points []models.EquityPoint, width, height int, label func(float64) string) string {
	if len(points) == 0 {
		return "No data to display\n"
	}
	if width < 2 {
		width = 2
	}
	if height < 2 {
		height = 2
	}
	if len(points) < width {
		width = len(points)
	}

	// Find min/max cumulative P&L
	lo, hi := points[0].CumulativePnL, points[0].CumulativePnL
	for _, p := range points {
		lo = min(lo, p.CumulativePnL)
		hi = max(hi, p.CumulativePnL)
	}

	// Add padding
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.05
	hi += span * 0.05
	span = hi - lo

	row := func(v float64) int {
		y := int((v - lo) / span * float64(height-1))
		return height - 1 - min(max(y, 0), height-1)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if lo < 0 && hi > 0 {
		zero := row(0)
		for x := range grid[zero] {
			grid[zero][x] = '·'
		}
	}

	for x := 0; x < width; x++ {
		i := 0
		if width > 1 {
			i = x * (len(points) - 1) / (width - 1)
		}
		grid[row(points[i].CumulativePnL)][x] = '█'
	}

	var sb strings.Builder
	sb.WriteString("Equity Curve (" + label(lo) + " to " + label(hi) + ")\n")
	sb.WriteString("┌" + strings.Repeat("─", width) + "┐\n")
	for _, r := range grid {
		sb.WriteRune('│')
		sb.WriteString(string(r))
		sb.WriteString("│\n")
	}
	sb.WriteString("└" + strings.Repeat("─", width) + "┘\n")
	sb.WriteString(points[0].Date + strings.Repeat(" ", max(width+2-len(points[0].Date)-len(points[len(points)-1].Date), 1)) + points[len(points)-1].Date + "\n")

	return sb.String()
}
