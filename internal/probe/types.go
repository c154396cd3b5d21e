package probe

import "context"

// Outcome is the result of a single browse probe.
//
// StatusCode is 0 when the request never completed (transport error); Err
// then carries the failure description. The inspection fields (MarkerFound,
// TopKeys, NotJSON, AppPromptFound) are only meaningful on a 200.
type Outcome struct {
	StatusCode     int      `json:"status_code,omitempty"`
	OK             bool     `json:"ok"`
	MarkerFound    bool     `json:"marker_found"`
	TopKeys        []string `json:"top_keys,omitempty"`
	NotJSON        bool     `json:"not_json,omitempty"`
	AppPromptFound bool     `json:"app_prompt_found,omitempty"`
	BodySnippet    string   `json:"body_snippet,omitempty"`
	LatencyMS      float64  `json:"latency_ms"`
	Err            string   `json:"error,omitempty"`
}

// Success reports whether the probe completed and the endpoint answered 200.
func (o Outcome) Success() bool {
	return o.Err == "" && o.OK
}

// Reason collapses the outcome into a short diagnostic string for storage
// and alert messages.
func (o Outcome) Reason() string {
	switch {
	case o.Err != "":
		return o.Err
	case !o.OK:
		return "non-200"
	case o.MarkerFound:
		return "marker found"
	case o.NotJSON:
		return "200, not JSON"
	default:
		return "ok"
	}
}

// Checker performs a single probe for a given browse ID.
type Checker interface {
	Check(ctx context.Context, browseID string) Outcome
}
