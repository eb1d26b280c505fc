package console

import (
	"fmt"

	"github.com/fatih/color"
)

// Available ANSI colors
var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
	Faint  = color.New(color.Faint).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Axis renders a centred axis value, highlighting deflection beyond deadzone.
func Axis(v int8, deadzone int8) string {
	s := fmt.Sprintf("%4d", v)
	switch {
	case v > deadzone:
		return Green(s)
	case v < -deadzone:
		return Yellow(s)
	default:
		return Faint(s)
	}
}

// Button renders name when pressed and a placeholder of the same width otherwise.
func Button(name string, pressed bool) string {
	if pressed {
		return Bold(Cyan(name))
	}
	return Faint(fmt.Sprintf("%*s", len(name), "."))
}
