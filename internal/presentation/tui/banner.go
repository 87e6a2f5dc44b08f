package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the CLI banner with the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{`  ___  ___ _ __ ___  ___ _ __   __ _ _ __ __ _ _ __ | |__`, "#818cf8"},
		{` / __|/ __| '__/ _ \/ _ \ '_ \ / _' | '__/ _' | '_ \| '_ \`, "#a78bfa"},
		{` \__ \ (__| | |  __/  __/ | | | (_| | | | (_| | |_) | | | |`, "#c084fc"},
		{` |___/\___|_|  \___|\___|_| |_|\__, |_|  \__,_| .__/|_| |_|`, "#e879f9"},
		{`                               |___/          |_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
