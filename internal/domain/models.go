package domain

import "time"

type TargetID string

// Target is a browse ID registered for repeated probing.
type Target struct {
	ID        TargetID  `json:"id"`
	BrowseID  string    `json:"browse_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProbeResult is one probe against one target's browse ID.
type ProbeResult struct {
	TargetID       TargetID  `json:"target_id"`
	BrowseID       string    `json:"browse_id"`
	OK             bool      `json:"ok"`
	StatusCode     int       `json:"status_code,omitempty"`
	MarkerFound    bool      `json:"marker_found"`
	TopKeys        []string  `json:"top_keys,omitempty"`
	NotJSON        bool      `json:"not_json,omitempty"`
	AppPromptFound bool      `json:"app_prompt_found,omitempty"`
	LatencyMS      float64   `json:"latency_ms"`
	Reason         string    `json:"reason,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}
