package probe

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultMarker is the substring whose presence in a 200 body signals the
// sample-shelf rendering path was reached.
const DefaultMarker = "musicSamplesShelfRenderer"

// DefaultAppPromptMarkers signal an open-in-app / redirect interstitial
// instead of real browse content.
var DefaultAppPromptMarkers = []string{"Open the app", "mealbar"}

const snippetLen = 200

// Options configures a BrowseChecker. All credential and client-identity
// values are opaque and supplied by the caller; the checker never tries to
// refresh or validate them.
type Options struct {
	Endpoint      string
	APIKey        string
	VisitorData   string
	ClientName    string
	ClientVersion string
	ClientNameID  string // numeric value for the vendor client-name header
	UserAgent     string
	GL            string
	HL            string
	Timeout       time.Duration
	InsecureTLS   bool

	Marker           string
	AppPromptMarkers []string
}

// BrowseChecker POSTs a browse request for a single browse ID and inspects
// the response body. One request per Check call; nothing is retained across
// calls.
type BrowseChecker struct {
	opts   Options
	Client *http.Client
}

func NewBrowseChecker(opts Options) *BrowseChecker {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.AppPromptMarkers == nil {
		opts.AppPromptMarkers = DefaultAppPromptMarkers
	}
	client := &http.Client{Timeout: opts.Timeout}
	if opts.InsecureTLS {
		client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &BrowseChecker{opts: opts, Client: client}
}

type clientContext struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	GL            string `json:"gl"`
	HL            string `json:"hl"`
	VisitorData   string `json:"visitorData"`
}

type browseRequest struct {
	Context struct {
		Client clientContext `json:"client"`
	} `json:"context"`
	BrowseID string `json:"browseId"`
}

func (c *BrowseChecker) Check(ctx context.Context, browseID string) Outcome {
	start := time.Now()

	var payload browseRequest
	payload.Context.Client = clientContext{
		ClientName:    c.opts.ClientName,
		ClientVersion: c.opts.ClientVersion,
		GL:            c.opts.GL,
		HL:            c.opts.HL,
		VisitorData:   c.opts.VisitorData,
	}
	payload.BrowseID = browseID
	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Err: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.opts.Endpoint+"?key="+c.opts.APIKey, bytes.NewReader(body))
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-YouTube-Client-Name", c.opts.ClientNameID)
	req.Header.Set("X-YouTube-Client-Version", c.opts.ClientVersion)
	req.Header.Set("X-Goog-Visitor-Id", c.opts.VisitorData)

	resp, err := c.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000
	if err != nil {
		return Outcome{Err: err.Error(), LatencyMS: latency}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	latency = time.Since(start).Seconds() * 1000
	if err != nil {
		return Outcome{StatusCode: resp.StatusCode, Err: err.Error(), LatencyMS: latency}
	}

	out := Outcome{StatusCode: resp.StatusCode, LatencyMS: latency}
	text := string(raw)

	if resp.StatusCode != http.StatusOK {
		out.BodySnippet = truncate(text, snippetLen)
		return out
	}
	out.OK = true

	if strings.Contains(text, c.opts.Marker) {
		out.MarkerFound = true
		return out
	}

	if keys, ok := topLevelKeys(raw); ok {
		out.TopKeys = keys
	} else {
		out.NotJSON = true
	}
	for _, m := range c.opts.AppPromptMarkers {
		if strings.Contains(text, m) {
			out.AppPromptFound = true
			break
		}
	}
	return out
}

// topLevelKeys returns the key names of a JSON object in document order.
// It reports false when the body is not a single valid JSON object.
func topLevelKeys(body []byte) ([]string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false
	}
	keys := []string{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := kt.(string)
		if !ok {
			return nil, false
		}
		if err := skipValue(dec); err != nil {
			return nil, false
		}
		keys = append(keys, key)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, false
	}
	if dec.More() { // trailing garbage
		return nil, false
	}
	return keys, true
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			t, err := dec.Token()
			if err != nil {
				return err
			}
			if dd, ok := t.(json.Delim); ok {
				switch dd {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
