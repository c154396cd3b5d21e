// Package report renders probe outcomes as human-readable text blocks.
// The output is for eyeballs, not machines.
package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hamed0406/browseprobe/internal/probe"
)

// Write prints one probe block: the ID being probed, the status, and the
// body inspection verdicts. Transport failures and non-200 statuses get
// their own short forms; nothing here ever errors out.
func Write(w io.Writer, browseID string, out probe.Outcome) {
	fmt.Fprintf(w, "\n--- browse probe (id: %s) ---\n", browseID)
	if out.Err != "" {
		fmt.Fprintf(w, "error: %s\n", out.Err)
		return
	}
	fmt.Fprintf(w, "status: %d\n", out.StatusCode)
	if out.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "  body: %s\n", out.BodySnippet)
		return
	}
	if out.MarkerFound {
		fmt.Fprintf(w, "  marker %q: found\n", probe.DefaultMarker)
		return
	}
	if out.NotJSON {
		fmt.Fprintln(w, "  200, not JSON")
	} else {
		fmt.Fprintf(w, "  top-level keys: %s\n", strings.Join(out.TopKeys, ", "))
	}
	if out.AppPromptFound {
		fmt.Fprintln(w, "  open-in-app / mealbar prompt present")
	}
}

// RunSequence probes each browse ID in order, printing a block per probe.
// A failed probe never stops the sequence.
func RunSequence(ctx context.Context, w io.Writer, chk probe.Checker, browseIDs []string) {
	for _, id := range browseIDs {
		Write(w, id, chk.Check(ctx, id))
	}
}
