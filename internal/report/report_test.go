package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hamed0406/browseprobe/internal/probe"
)

type scriptedChecker struct {
	outs map[string]probe.Outcome
}

func (s *scriptedChecker) Check(_ context.Context, browseID string) probe.Outcome {
	return s.outs[browseID]
}

func TestWrite_MarkerFound(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "FEmusic_samples", probe.Outcome{StatusCode: 200, OK: true, MarkerFound: true})
	got := buf.String()
	if !strings.Contains(got, "FEmusic_samples") || !strings.Contains(got, "status: 200") {
		t.Fatalf("missing header lines: %q", got)
	}
	if !strings.Contains(got, probe.DefaultMarker) || !strings.Contains(got, "found") {
		t.Fatalf("missing marker verdict: %q", got)
	}
	if strings.Contains(got, "top-level keys") {
		t.Fatalf("key listing must not appear when marker found: %q", got)
	}
}

func TestWrite_TopKeysAndPrompt(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "FEmusic_home", probe.Outcome{
		StatusCode:     200,
		OK:             true,
		TopKeys:        []string{"responseContext", "contents"},
		AppPromptFound: true,
	})
	got := buf.String()
	if !strings.Contains(got, "top-level keys: responseContext, contents") {
		t.Fatalf("keys missing or out of order: %q", got)
	}
	if !strings.Contains(got, "prompt present") {
		t.Fatalf("app-prompt note missing: %q", got)
	}
}

func TestWrite_NotJSON(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "FEmusic_home", probe.Outcome{StatusCode: 200, OK: true, NotJSON: true})
	if !strings.Contains(buf.String(), "200, not JSON") {
		t.Fatalf("not-JSON verdict missing: %q", buf.String())
	}
}

func TestWrite_Non200(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "FEmusic_samples", probe.Outcome{StatusCode: 404, BodySnippet: "not found"})
	got := buf.String()
	if !strings.Contains(got, "status: 404") || !strings.Contains(got, "body: not found") {
		t.Fatalf("non-200 block wrong: %q", got)
	}
}

func TestWrite_TransportError(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "FEmusic_samples", probe.Outcome{Err: "context deadline exceeded"})
	got := buf.String()
	if !strings.Contains(got, "error: context deadline exceeded") {
		t.Fatalf("error line missing: %q", got)
	}
	if strings.Contains(got, "status:") {
		t.Fatalf("no status line expected on transport error: %q", got)
	}
}

func TestRunSequence_AlwaysTwoBlocksInOrder(t *testing.T) {
	chk := &scriptedChecker{outs: map[string]probe.Outcome{
		"FEmusic_samples": {Err: "dial tcp: i/o timeout"},
		"FEmusic_home":    {StatusCode: 200, OK: true, TopKeys: []string{"contents"}},
	}}
	var buf bytes.Buffer
	RunSequence(context.Background(), &buf, chk, []string{"FEmusic_samples", "FEmusic_home"})
	got := buf.String()

	if n := strings.Count(got, "--- browse probe"); n != 2 {
		t.Fatalf("want exactly 2 blocks, got %d:\n%s", n, got)
	}
	first := strings.Index(got, "FEmusic_samples")
	second := strings.Index(got, "FEmusic_home")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("blocks out of order:\n%s", got)
	}
	// the first probe's failure must not suppress the second block
	if !strings.Contains(got, "i/o timeout") || !strings.Contains(got, "top-level keys: contents") {
		t.Fatalf("both outcomes must be reported:\n%s", got)
	}
}
