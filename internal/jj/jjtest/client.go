// Package jjtest provides an in-memory fake [jj.Client] for tests that
// need behavioral fidelity (branching, pushes) rather than just call
// recording.
package jjtest

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"go.ryu.dev/ryu/internal/jj"
)

// Rev is a revision to seed into a [Client].
type Rev struct {
	ChangeID    string
	CommitID    string
	Parents     []string
	Bookmarks   []string
	Description string
	Empty       bool
	Conflicted  bool
}

// Client is a fake [jj.Client] backed by an in-memory revision graph.
//
// It is safe to mutate the exported fields directly between calls to
// simulate the user editing their workspace, but it is not safe for
// concurrent use.
type Client struct {
	Trunk      string
	WorkingTip string // change id of @
	Revs_      []Rev
	Remotes    map[string]string // name -> URL

	// Tracked maps bookmark name to the commit id it points to on the
	// remote, simulating a prior successful push.
	Tracked map[string]string

	// Pushed records every successful Push call, in order.
	Pushed []jj.PushRequest

	// Config seeds the entries ConfigList reports, keyed by the full
	// dotted key (e.g. "ryu.remote").
	Config map[string]string
}

var _ jj.Client = (*Client)(nil)

// New builds an empty fake client. Use the exported fields to seed it.
func New() *Client {
	return &Client{
		Remotes: make(map[string]string),
		Tracked: make(map[string]string),
	}
}

func (c *Client) Root(context.Context) (string, error) { return "/fake/workspace", nil }

func (c *Client) TrunkName(context.Context) (string, error) {
	if c.Trunk == "" {
		return "", fmt.Errorf("no trunk configured")
	}
	return c.Trunk, nil
}

func (c *Client) WorkingCopyChangeID(context.Context) (string, error) {
	return c.WorkingTip, nil
}

func (c *Client) Revs(_ context.Context, revset string) ([]*jj.Rev, error) {
	// The fake ignores revset filtering and returns everything seeded;
	// callers in tests seed exactly the candidate set they want to
	// exercise rather than relying on revset semantics.
	_ = revset
	out := make([]*jj.Rev, 0, len(c.Revs_))
	for _, r := range c.Revs_ {
		out = append(out, &jj.Rev{
			ChangeID:    r.ChangeID,
			CommitID:    r.CommitID,
			Parents:     slices.Clone(r.Parents),
			Bookmarks:   slices.Clone(r.Bookmarks),
			Description: r.Description,
			Empty:       r.Empty,
			Conflicted:  r.Conflicted,
		})
	}
	return out, nil
}

func (c *Client) BookmarkList(context.Context, string) ([]jj.Bookmark, error) {
	var bookmarks []jj.Bookmark
	for _, r := range c.Revs_ {
		for _, name := range r.Bookmarks {
			bookmarks = append(bookmarks, jj.Bookmark{
				Name:           name,
				ChangeID:       r.ChangeID,
				CommitID:       r.CommitID,
				RemoteCommitID: c.Tracked[name],
			})
		}
	}
	return bookmarks, nil
}

func (c *Client) Push(_ context.Context, req jj.PushRequest) error {
	for _, r := range c.Revs_ {
		if slices.Contains(r.Bookmarks, req.Bookmark) {
			c.Tracked[req.Bookmark] = r.CommitID
			c.Pushed = append(c.Pushed, req)
			return nil
		}
	}
	return fmt.Errorf("bookmark %q not found", req.Bookmark)
}

func (c *Client) SetBookmark(_ context.Context, name, revision string) error {
	for i := range c.Revs_ {
		for j, bm := range c.Revs_[i].Bookmarks {
			if bm == name {
				c.Revs_[i].Bookmarks = slices.Delete(c.Revs_[i].Bookmarks, j, j+1)
			}
		}
	}
	for i := range c.Revs_ {
		if c.Revs_[i].ChangeID == revision || c.Revs_[i].CommitID == revision {
			c.Revs_[i].Bookmarks = append(c.Revs_[i].Bookmarks, name)
			return nil
		}
	}
	return fmt.Errorf("revision %q not found", revision)
}

func (c *Client) RemoteURL(_ context.Context, remote string) (string, error) {
	url, ok := c.Remotes[remote]
	if !ok {
		return "", fmt.Errorf("remote %q not found", remote)
	}
	return url, nil
}

func (c *Client) ConfigList(_ context.Context, prefix string) iter.Seq2[jj.ConfigEntry, error] {
	return func(yield func(jj.ConfigEntry, error) bool) {
		for key, value := range c.Config {
			if prefix != "" && key != prefix && !hasConfigPrefix(key, prefix) {
				continue
			}
			if !yield(jj.ConfigEntry{Key: key, Value: value}, nil) {
				return
			}
		}
	}
}

func hasConfigPrefix(key, prefix string) bool {
	return len(key) > len(prefix) && key[:len(prefix)] == prefix && key[len(prefix)] == '.'
}
