package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ListMarkdown renders a list as a numbered Markdown document.
func ListMarkdown(instanceID string, kind domain.Kind, resp domain.ListResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s · %s\n\n", instanceID, kind)
	if len(resp.Items) == 0 {
		fmt.Fprintf(&b, "_No %s yet._\n", kind)
	}
	for i, item := range resp.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	if resp.Remaining != nil {
		fmt.Fprintf(&b, "\n%d %s left to pick.\n", *resp.Remaining, kind)
	}
	return b.String()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// PrintList writes a list to w, styled when w is a terminal and as plain
// lines otherwise so the output stays pipeable.
func PrintList(w io.Writer, instanceID string, kind domain.Kind, resp domain.ListResponse) error {
	if !IsTerminal(w) {
		for _, item := range resp.Items {
			if _, err := fmt.Fprintln(w, item); err != nil {
				return err
			}
		}
		return nil
	}

	out, err := NewRenderer()(ListMarkdown(instanceID, kind, resp))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
