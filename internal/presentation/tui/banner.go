package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Accent is the colour used for help text and the banner.
const Accent = "#84FFA1"

// PrintBanner writes the HBNB banner and a one-line hint to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _   _ ____  _   _ ____ ", "#5eead4"},
		{"| | | | __ )| \\ | | __ )", "#6ee7b7"},
		{"| |_| |  _ \\|  \\| |  _ \\", Accent},
		{"|  _  | |_) | |\\  | |_) |", "#a3e635"},
		{"|_| |_|____/|_| \\_|____/", "#facc15"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, Colorize(w, "Type help to list commands, quit to exit."))
	fmt.Fprintln(w)
}

// Colorize paints text with the accent colour when w supports it.
func Colorize(w io.Writer, text string) string {
	out := termenv.NewOutput(w)
	return out.String(text).Foreground(out.Color(Accent)).String()
}
