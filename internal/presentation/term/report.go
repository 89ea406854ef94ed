package term

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/espalier/pkg/domain"
)

// ScriptMarkdown renders an edit script as a markdown report: one bullet per
// op in application order, followed by per-kind totals.
func ScriptMarkdown(script domain.Script) string {
	var b strings.Builder
	b.WriteString("# Edit script\n\n")

	if script.IsEmpty() {
		b.WriteString("Nothing to change, the collection already matches.\n")
		return b.String()
	}

	for i, op := range script {
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, op)
	}

	b.WriteString("\n## Totals\n\n")
	summary := script.Summary()
	for _, kind := range []domain.OpKind{
		domain.OpInsertSections, domain.OpRemoveSections, domain.OpReplaceSections,
		domain.OpInsertRows, domain.OpRemoveRows, domain.OpReplaceRows,
		domain.OpMoveRow, domain.OpReload,
	} {
		if n := summary[kind]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", kind, n)
		}
	}
	return b.String()
}

// RenderScript renders the script report for the current terminal. On a TTY
// the markdown goes through glamour; otherwise the raw markdown is returned
// so pipes and files stay clean.
func RenderScript(script domain.Script) (string, error) {
	markdown := ScriptMarkdown(script)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return markdown, nil
	}
	return RenderMarkdown(markdown)
}

// RenderMarkdown renders markdown with glamour, auto-detecting the
// terminal's background style.
func RenderMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return markdown, err
	}
	return r.Render(markdown)
}
