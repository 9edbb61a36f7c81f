// Package report renders the human-facing console output of a sync run.
// The engine itself only logs through slog; everything decorative lives
// here so the copy algorithm can be tested without parsing console text.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sjhan/stagesync/internal/sync"
)

// Printer writes the boxed header and summary to an injected writer.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Header prints the boxed run banner.
func (p *Printer) Header(title string) {
	fmt.Fprint(p.w, box(title))
}

// Summary prints the boxed totals followed by the final status line. The
// status line distinguishes "something was synced" from "nothing needed
// syncing"; it carries no control-flow meaning.
func (p *Printer) Summary(stats sync.Stats) {
	fmt.Fprint(p.w, box(
		fmt.Sprintf("files copied:  %d", stats.Copied),
		fmt.Sprintf("files skipped: %d", stats.Skipped),
	))

	if stats.Clean() {
		fmt.Fprintln(p.w, "root layout already up to date")
		return
	}
	fmt.Fprintf(p.w, "synced %d file(s) into the root layout\n", stats.Copied)
}

// box draws a simple unicode frame around the given lines.
func box(lines ...string) string {
	width := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
	}

	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", width+2) + "┐\n")
	for _, line := range lines {
		pad := width - utf8.RuneCountInString(line)
		b.WriteString("│ " + line + strings.Repeat(" ", pad) + " │\n")
	}
	b.WriteString("└" + strings.Repeat("─", width+2) + "┘\n")
	return b.String()
}
