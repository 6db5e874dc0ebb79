package cli

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	good = color.New(color.FgGreen).SprintFunc()
	fair = color.New(color.FgYellow).SprintFunc()
	poor = color.New(color.FgRed).SprintFunc()
)

// confidenceLabel formats an engine confidence (0-100), colored by how far
// the text can be trusted. Colors are dropped when stdout is not a terminal
// or NO_COLOR is set.
func confidenceLabel(c float64) string {
	s := fmt.Sprintf("%.2f", c)
	switch {
	case c >= 80:
		return good(s)
	case c >= 50:
		return fair(s)
	default:
		return poor(s)
	}
}
