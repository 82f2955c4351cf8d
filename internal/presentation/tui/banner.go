package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                    __ _         _`, "#34d399"},
	{` __ __ ____ _ _  _ / _(_)_ _  __| |___ _ _`, "#2dd4bf"},
	{` \ V  V / _' | || |  _| | ' \/ _' / -_) '_|`, "#22d3ee"},
	{`  \_/\_/\__,_|\_, |_| |_|_||_\__,_\___|_|`, "#38bdf8"},
	{`              |__/`, "#60a5fa"},
}

// PrintBanner writes the wayfinder banner followed by the flow being run.
// Colors degrade to the profile of the output terminal.
func PrintBanner(w io.Writer, flowName string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if flowName != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, out.String("  flow: "+flowName).Faint())
	}
	fmt.Fprintln(w)
}
