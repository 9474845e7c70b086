package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// githubv3Client implements a minimal GitHub REST v3 client for the
// handful of operations (issue comments) the GraphQL API covers
// awkwardly. go-github's Client bundles every REST resource into one
// type; because ryu's CLI layer is reached through Kong via
// reflect.MethodByName, the linker cannot prove which of go-github's
// methods are dead, so depending on it would drag the whole thing into
// the binary. We implement only what we call instead.
type githubv3Client struct {
	client *http.Client
	apiURL *url.URL
}

func newGitHubv3Client(client *http.Client, apiURL *url.URL) *githubv3Client {
	return &githubv3Client{client: client, apiURL: apiURL}
}

// githubv3ResponseError is an error response from the GitHub REST API.
type githubv3ResponseError struct {
	StatusCode       int              `json:"-"`
	Message          string           `json:"message"`
	Errors           []*githubv3Error `json:"errors"`
	DocumentationURL string           `json:"documentation_url,omitempty"`
}

func (e *githubv3ResponseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "GitHub API error (status %d): %s", e.StatusCode, e.Message)
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  - %v", err)
	}
	return sb.String()
}

type githubv3Error struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (e *githubv3Error) UnmarshalJSON(data []byte) error {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		e.Message = msg
		return nil
	}
	type rawError githubv3Error
	return json.Unmarshal(data, (*rawError)(e))
}

func (e *githubv3Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Resource)
	if e.Field != "" {
		if sb.Len() > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(e.Field)
	}
	if sb.Len() > 0 {
		sb.WriteString(": ")
	}
	if e.Message != "" {
		sb.WriteString(e.Message)
	} else {
		sb.WriteString(e.Code)
	}
	return sb.String()
}

// Do performs a single HTTP round trip against the REST API, decoding
// a JSON error body into a githubv3ResponseError on non-2xx status.
func (c *githubv3Client) Do(ctx context.Context, method, path string, reqBody, resBody any) error {
	var body io.Reader
	if reqBody != nil {
		bs, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if resBody != nil {
		req.Header.Set("Accept", "application/vnd.github+json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		bs, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		ghErr := &githubv3ResponseError{StatusCode: res.StatusCode}
		if err := json.Unmarshal(bs, ghErr); err != nil {
			ghErr.Message = string(bs)
		}
		return ghErr
	}

	if resBody == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	bs, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(bs, resBody); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

type issueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

func (c *githubv3Client) listIssueComments(ctx context.Context, owner, repo string, number int) ([]issueComment, error) {
	var comments []issueComment
	path := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=100", owner, repo, number)
	if err := c.Do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *githubv3Client) createIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	path := fmt.Sprintf("repos/%s/%s/issues/%d/comments", owner, repo, number)
	return c.Do(ctx, http.MethodPost, path, map[string]string{"body": body}, nil)
}

func (c *githubv3Client) updateIssueComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	path := fmt.Sprintf("repos/%s/%s/issues/comments/%d", owner, repo, commentID)
	return c.Do(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}
