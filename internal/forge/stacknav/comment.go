package stacknav

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// CommentPayload is the machine-readable tail of a stack comment.
//
// It lets ryu find and replace its own comment on a later run without
// depending on the human-readable list above it staying byte-identical.
type CommentPayload struct {
	Version   int      `json:"version"`
	Bookmarks []string `json:"bookmarks"`
}

// markerPattern matches a ryu stack-comment marker of any version,
// e.g. "<!-- ryu-stack-v1 -->".
var markerPattern = regexp.MustCompile(`<!-- ryu-stack-v(\d+) -->`)

// marker builds the HTML-comment marker for the given schema version.
func marker(version int) string {
	return fmt.Sprintf("<!-- ryu-stack-v%d -->", version)
}

// Comment renders a full stack comment body: a human-readable Markdown
// list (via [Print]) followed by a marker and a fenced JSON block
// carrying payload.
//
// version is the schema version embedded in the marker; bump it only
// when the JSON payload shape changes incompatibly.
func Comment[N Node](nodes []N, currentIdx int, opts *PrintOptions, version int, payload CommentPayload) (string, error) {
	payload.Version = version

	var buf bytes.Buffer
	buf.WriteString("This change is part of the following stack:\n\n")
	Print(&buf, nodes, currentIdx, opts)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal stack comment payload: %w", err)
	}

	fmt.Fprintf(&buf, "\n%s\n```json\n%s\n```\n", marker(version), body)
	return buf.String(), nil
}

// HasMarker reports whether body contains a ryu stack-comment marker
// of any version.
func HasMarker(body string) bool {
	return markerPattern.MatchString(body)
}

// ExtractPayload parses the CommentPayload embedded in a comment body
// previously produced by [Comment]. ok is false if no marker/payload
// pair could be found.
func ExtractPayload(body string) (payload CommentPayload, ok bool) {
	loc := markerPattern.FindStringIndex(body)
	if loc == nil {
		return CommentPayload{}, false
	}

	rest := body[loc[1]:]
	start := bytes.IndexByte([]byte(rest), '{')
	if start < 0 {
		return CommentPayload{}, false
	}
	end := bytes.LastIndexByte([]byte(rest), '}')
	if end < 0 || end < start {
		return CommentPayload{}, false
	}

	if err := json.Unmarshal([]byte(rest[start:end+1]), &payload); err != nil {
		return CommentPayload{}, false
	}
	return payload, true
}
