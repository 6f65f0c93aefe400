package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Twentyfive banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` ___ ___   ___ ___  _ __ _ _ ___ _  _ ___ `, "#34d399"},
		{`|_  ) __| / __/ _ \| '_ \ '_/ _ \ || (_-< `, "#2dd4bf"},
		{` / /|__ \| (_| (_) | |_) | ||  __/\_, /__/ `, "#22d3ee"},
		{`/___|___/ \___\___/| .__/|_| \___||__/    `, "#38bdf8"},
		{`                   |_|   goals & tasks     `, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
