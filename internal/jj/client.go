// Package jj provides a client for interacting with a Jujutsu (jj)
// workspace by shelling out to the jj CLI.
package jj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"go.ryu.dev/ryu/internal/scanutil"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/xec"
)

// Bookmark is a single bookmark as reported by `jj bookmark list`.
type Bookmark struct {
	Name string

	// ChangeID is the change id of the commit the bookmark points at.
	ChangeID string

	// CommitID is the commit id of the commit the bookmark points at.
	CommitID string

	// RemoteCommitID is the commit id the bookmark points to on the
	// tracked remote, or "" if the bookmark has no remote tracking
	// state yet (never pushed).
	RemoteCommitID string
}

// Tracked reports whether the bookmark has ever been pushed to the
// remote this Bookmark was resolved against.
func (b Bookmark) Tracked() bool {
	return b.RemoteCommitID != ""
}

// AheadOfRemote reports whether the local bookmark points somewhere
// other than its remote-tracked commit.
func (b Bookmark) AheadOfRemote() bool {
	return b.Tracked() && b.CommitID != b.RemoteCommitID
}

// Rev holds detailed information about a single revision, as produced
// by [Client.Revs].
type Rev struct {
	ChangeID string
	CommitID string

	// Parents holds the change ids of this revision's parents.
	// len(Parents) > 1 means this revision is a merge commit.
	Parents []string

	// Bookmarks holds the local bookmark names pointing at this
	// revision.
	Bookmarks []string

	Description string
	Empty       bool
	Conflicted  bool
}

// IsMerge reports whether this revision has more than one parent.
func (r *Rev) IsMerge() bool {
	return len(r.Parents) > 1
}

// PushRequest describes a bookmark push to a remote.
type PushRequest struct {
	Bookmark string
	Remote   string

	// AllowNew permits creating the bookmark on the remote if it does
	// not already exist there.
	AllowNew bool

	// Force pushes even if the remote bookmark is not an ancestor of
	// the new position (used after a rebase moved the bookmark).
	Force bool
}

// Client is ryu's narrow view of a jj workspace: enough to build a
// change graph and push bookmarks, nothing that mutates history.
type Client interface {
	// Root returns the absolute path to the workspace root.
	Root(ctx context.Context) (string, error)

	// TrunkName resolves the `trunk()` revset alias to a bookmark name.
	TrunkName(ctx context.Context) (string, error)

	// WorkingCopyChangeID resolves `@` to a change id.
	WorkingCopyChangeID(ctx context.Context) (string, error)

	// Revs evaluates revset and returns one Rev per matching revision.
	Revs(ctx context.Context, revset string) ([]*Rev, error)

	// BookmarkList returns every local bookmark, with remote tracking
	// state resolved against remote.
	BookmarkList(ctx context.Context, remote string) ([]Bookmark, error)

	// Push pushes a single bookmark to a remote.
	Push(ctx context.Context, req PushRequest) error

	// SetBookmark moves a bookmark to point at revision.
	SetBookmark(ctx context.Context, name, revision string) error

	// RemoteURL returns the URL configured for a named remote.
	RemoteURL(ctx context.Context, remote string) (string, error)

	// ConfigList streams every jj configuration entry whose key starts
	// with prefix (e.g. "ryu" for the "ryu.*" namespace), in the order
	// jj reports them.
	ConfigList(ctx context.Context, prefix string) iter.Seq2[ConfigEntry, error]
}

// ConfigEntry is a single key-value pair from `jj config list`.
type ConfigEntry struct {
	Key   string
	Value string
}

type client struct {
	log       *silog.Logger
	workspace string // passed to every invocation as -R, may be ""
}

var _ Client = (*client)(nil)

// New builds a Client that operates against the jj workspace containing
// workspace (any path inside it; typically the current directory).
// log may be nil.
func New(log *silog.Logger, workspace string) Client {
	return &client{log: log, workspace: workspace}
}

func (c *client) run(ctx context.Context, args ...string) (string, error) {
	if c.workspace != "" {
		args = append([]string{"-R", c.workspace}, args...)
	}
	out, err := xec.Command(ctx, c.log, "jj", args...).OutputChomp()
	if err != nil {
		return "", fmt.Errorf("jj %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

func (c *client) Root(ctx context.Context) (string, error) {
	return c.run(ctx, "root")
}

func (c *client) TrunkName(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "log", "--no-graph", "-r", "trunk()", "-T", "bookmarks.join(\",\")")
	if err != nil {
		return "", fmt.Errorf("resolve trunk: %w", err)
	}
	names := splitNonEmpty(out, ",")
	if len(names) == 0 {
		return "", fmt.Errorf("trunk() has no bookmark")
	}
	return names[0], nil
}

func (c *client) WorkingCopyChangeID(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "log", "--no-graph", "-r", "@", "-T", "change_id.short()")
	if err != nil {
		return "", fmt.Errorf("resolve working copy: %w", err)
	}
	return out, nil
}

// revTemplateFields is the ordered set of fields rendered per revision
// by Revs. Each field is separated by a unit separator (0x1f) and each
// revision by a null byte, so commit descriptions containing arbitrary
// text never desynchronize the parser.
var revTemplateFields = []string{
	"change_id.short()",
	"commit_id.short()",
	`parents.map(|c| c.change_id().short()).join(",")`,
	`bookmarks().map(|b| b.name()).join(",")`,
	"empty",
	"conflict",
	"description.escape_json()",
}

const fieldSep = "\x1f"

func (c *client) Revs(ctx context.Context, revset string) ([]*Rev, error) {
	template := strings.Join(revTemplateFields, `++"`+fieldSep+`"++`) + `++"\0"`
	out, err := c.run(ctx, "log", "--no-graph", "-r", revset, "-T", template)
	if err != nil {
		return nil, fmt.Errorf("evaluate revset %q: %w", revset, err)
	}

	var revs []*Rev
	for record := range strings.SplitSeq(out, "\x00") {
		if record == "" {
			continue
		}
		parts := strings.Split(record, fieldSep)
		if len(parts) != len(revTemplateFields) {
			return nil, fmt.Errorf("unexpected jj log record shape (%d fields, wanted %d): %q",
				len(parts), len(revTemplateFields), record)
		}

		var description string
		if err := json.Unmarshal([]byte(parts[6]), &description); err != nil {
			return nil, fmt.Errorf("decode description: %w", err)
		}

		revs = append(revs, &Rev{
			ChangeID:    parts[0],
			CommitID:    parts[1],
			Parents:     splitNonEmpty(parts[2], ","),
			Bookmarks:   splitNonEmpty(parts[3], ","),
			Empty:       parts[4] == "true",
			Conflicted:  parts[5] == "true",
			Description: description,
		})
	}
	return revs, nil
}

func (c *client) BookmarkList(ctx context.Context, remote string) ([]Bookmark, error) {
	template := strings.Join([]string{
		"name",
		"normal_target.change_id().short()",
		"normal_target.commit_id().short()",
	}, `++"`+fieldSep+`"++`) + `++"\0"`
	out, err := c.run(ctx, "bookmark", "list", "--all-remotes", "-T", template)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	byName := make(map[string]*Bookmark)
	var order []string
	remoteSuffix := "@" + remote
	for record := range strings.SplitSeq(out, "\x00") {
		if record == "" {
			continue
		}
		parts := strings.Split(record, fieldSep)
		if len(parts) != 3 {
			continue
		}
		name, changeID, commitID := parts[0], parts[1], parts[2]

		if strings.HasSuffix(name, remoteSuffix) {
			local := strings.TrimSuffix(name, remoteSuffix)
			b, ok := byName[local]
			if !ok {
				b = &Bookmark{Name: local}
				byName[local] = b
				order = append(order, local)
			}
			b.RemoteCommitID = commitID
			continue
		}
		if strings.Contains(name, "@") {
			// Tracking state for a different remote; ignore.
			continue
		}

		b, ok := byName[name]
		if !ok {
			b = &Bookmark{Name: name}
			byName[name] = b
			order = append(order, name)
		}
		b.ChangeID = changeID
		b.CommitID = commitID
	}

	bookmarks := make([]Bookmark, 0, len(order))
	for _, name := range order {
		bookmarks = append(bookmarks, *byName[name])
	}
	return bookmarks, nil
}

func (c *client) Push(ctx context.Context, req PushRequest) error {
	args := []string{"git", "push", "--bookmark", req.Bookmark}
	if req.Remote != "" {
		args = append(args, "--remote", req.Remote)
	}
	if req.AllowNew {
		args = append(args, "--allow-new")
	}
	if req.Force {
		args = append(args, "--force")
	}
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("push bookmark %q: %w", req.Bookmark, err)
	}
	return nil
}

func (c *client) SetBookmark(ctx context.Context, name, revision string) error {
	if _, err := c.run(ctx, "bookmark", "set", name, "-r", revision, "--allow-backwards"); err != nil {
		return fmt.Errorf("set bookmark %q to %q: %w", name, revision, err)
	}
	return nil
}

func (c *client) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := c.run(ctx, "git", "remote", "list")
	if err != nil {
		return "", fmt.Errorf("list remotes: %w", err)
	}
	for line := range strings.SplitSeq(out, "\n") {
		name, url, ok := strings.Cut(strings.TrimSpace(line), " ")
		if ok && name == remote {
			return strings.TrimSpace(url), nil
		}
	}
	return "", fmt.Errorf("remote %q not found", remote)
}

// ConfigList lists jj configuration entries below prefix by rendering
// each as "name<unit-sep>value<null>", mirroring how Revs and
// BookmarkList guard against field values that contain arbitrary text:
// the null byte, not a line ending, is what separates records.
func (c *client) ConfigList(ctx context.Context, prefix string) iter.Seq2[ConfigEntry, error] {
	template := `name ++ "` + fieldSep + `" ++ value.as_string() ++ "\0"`
	args := []string{"config", "list", "--template", template}
	if prefix != "" {
		args = append(args, prefix)
	}
	if c.workspace != "" {
		args = append([]string{"-R", c.workspace}, args...)
	}

	cmd := xec.Command(ctx, c.log, "jj", args...)
	return func(yield func(ConfigEntry, error) bool) {
		for record, err := range cmd.Scan(scanutil.SplitNull) {
			if err != nil {
				yield(ConfigEntry{}, fmt.Errorf("list config %q: %w", prefix, err))
				return
			}
			if len(record) == 0 {
				continue
			}
			key, value, ok := bytes.Cut(record, []byte(fieldSep))
			if !ok {
				continue
			}
			if !yield(ConfigEntry{Key: string(key), Value: string(value)}, nil) {
				return
			}
		}
	}
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
