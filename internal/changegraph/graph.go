// Package changegraph builds a typed snapshot of the bookmark DAG
// between trunk and the working copy, resolving each bookmark's
// nearest bookmarked ancestor so downstream components never need to
// re-walk jj revisions.
package changegraph

import (
	"context"
	"fmt"

	"go.abhg.dev/container/ring"
	"go.ryu.dev/ryu/internal/graph"
	"go.ryu.dev/ryu/internal/jj"
)

// Bookmark is one bookmark in the change graph, with its position
// resolved relative to the rest of the stack.
type Bookmark struct {
	Name string

	ChangeID string
	CommitID string

	// RemoteCommitID is the commit id this bookmark points to on the
	// remote ryu is targeting, or "" if it has never been pushed there.
	RemoteCommitID string

	// Base is the name of the nearest ancestor bookmark, or the trunk
	// bookmark name if this bookmark sits directly above trunk.
	Base string
}

// Tracked reports whether the bookmark has a remote-tracked commit.
func (b Bookmark) Tracked() bool {
	return b.RemoteCommitID != ""
}

// NeedsPush reports whether the bookmark's local position differs
// from what the remote last saw.
func (b Bookmark) NeedsPush() bool {
	return !b.Tracked() || b.CommitID != b.RemoteCommitID
}

// Warning describes a condition the graph builder noticed but that
// does not prevent building a graph (e.g. a merge commit excluding
// part of the stack from consideration).
type Warning struct {
	Message string

	// ExcludedBookmarks lists bookmark names dropped from the graph
	// because of this warning.
	ExcludedBookmarks []string
}

// Graph is a snapshot of the bookmarks between trunk and the working
// copy, in submission order (bottom of the stack first).
type Graph struct {
	Trunk     string
	Bookmarks []Bookmark

	byName   map[string]int
	byBase   map[string][]int

	Warnings []Warning
}

// Lookup returns the bookmark with the given name, if present in the
// graph.
func (g *Graph) Lookup(name string) (Bookmark, bool) {
	idx, ok := g.byName[name]
	if !ok {
		return Bookmark{}, false
	}
	return g.Bookmarks[idx], true
}

// Aboves returns the names of bookmarks directly based on the given
// bookmark (or on trunk, if name == g.Trunk).
func (g *Graph) Aboves(name string) []string {
	idxs := g.byBase[name]
	if len(idxs) == 0 {
		return nil
	}
	names := make([]string, len(idxs))
	for i, idx := range idxs {
		names[i] = g.Bookmarks[idx].Name
	}
	return names
}

// Upstack returns name and every bookmark reachable by repeatedly
// following Aboves, in breadth-first (hence topologically consistent)
// order.
func (g *Graph) Upstack(name string) []string {
	var out []string
	var q ring.Q[string]
	q.Push(name)
	for !q.Empty() {
		cur := q.Pop()
		out = append(out, cur)
		for _, above := range g.Aboves(cur) {
			q.Push(above)
		}
	}
	return out
}

// Build walks the revisions between trunk and the working copy and
// resolves them into a Graph.
//
// remote selects which remote's tracking state populates
// Bookmark.RemoteCommitID.
func Build(ctx context.Context, client jj.Client, remote string) (*Graph, error) {
	trunk, err := client.TrunkName(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve trunk: %w", err)
	}

	revs, err := client.Revs(ctx, "trunk()..@ ~ ::trunk()")
	if err != nil {
		return nil, fmt.Errorf("evaluate trunk()..@: %w", err)
	}

	byChangeID := make(map[string]*jj.Rev, len(revs))
	for _, r := range revs {
		byChangeID[r.ChangeID] = r
	}

	bookmarks, err := client.BookmarkList(ctx, remote)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	remoteCommitByChangeID := make(map[string]string, len(bookmarks))
	for _, b := range bookmarks {
		remoteCommitByChangeID[b.ChangeID] = b.RemoteCommitID
	}

	excluded := make(map[string]struct{})
	var warnings []Warning
	for _, r := range revs {
		if !r.IsMerge() {
			continue
		}
		names := r.Bookmarks
		desc := make([]string, 0, len(names))
		var stack []string
		stack = append(stack, r.ChangeID)
		visited := make(map[string]struct{})
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}
			rv, ok := byChangeID[id]
			if !ok {
				continue
			}
			desc = append(desc, rv.Bookmarks...)
			for above := range byChangeID {
				for _, p := range byChangeID[above].Parents {
					if p == id {
						stack = append(stack, above)
					}
				}
			}
		}
		for _, name := range desc {
			excluded[name] = struct{}{}
		}
		if len(names) > 0 || len(desc) > 0 {
			warnings = append(warnings, Warning{
				Message:           fmt.Sprintf("revision %s is a merge commit; excluding descendants from submission", r.ChangeID),
				ExcludedBookmarks: desc,
			})
		}
	}

	// nearestBookmarkAncestor walks up Parents until it finds a
	// revision carrying a (non-excluded) bookmark, or falls off the
	// candidate set (meaning the bookmark sits directly on trunk).
	var nearestBookmarkAncestor func(changeID string, self string) string
	nearestBookmarkAncestor = func(changeID string, self string) string {
		rev, ok := byChangeID[changeID]
		if !ok {
			return trunk
		}
		for _, p := range rev.Parents {
			prev, ok := byChangeID[p]
			if !ok {
				return trunk
			}
			for _, name := range prev.Bookmarks {
				if name == self {
					continue
				}
				if _, isExcluded := excluded[name]; isExcluded {
					continue
				}
				return name
			}
			if r := nearestBookmarkAncestor(p, self); r != "" {
				return r
			}
		}
		return trunk
	}

	var names []string
	base := make(map[string]string)
	info := make(map[string]Bookmark)
	for _, r := range revs {
		if r.IsMerge() {
			continue
		}
		for _, name := range r.Bookmarks {
			if _, isExcluded := excluded[name]; isExcluded {
				continue
			}
			names = append(names, name)
			baseName := nearestBookmarkAncestor(r.ChangeID, name)
			base[name] = baseName
			info[name] = Bookmark{
				Name:           name,
				ChangeID:       r.ChangeID,
				CommitID:       r.CommitID,
				RemoteCommitID: remoteCommitByChangeID[r.ChangeID],
				Base:           baseName,
			}
		}
	}

	ordered := graph.Toposort(names, func(name string) (string, bool) {
		b := base[name]
		if b == trunk {
			return "", false
		}
		return b, true
	})

	g := &Graph{
		Trunk:    trunk,
		byName:   make(map[string]int, len(ordered)),
		byBase:   make(map[string][]int, len(ordered)),
		Warnings: warnings,
	}
	for _, name := range ordered {
		idx := len(g.Bookmarks)
		g.Bookmarks = append(g.Bookmarks, info[name])
		g.byName[name] = idx
		g.byBase[info[name].Base] = append(g.byBase[info[name].Base], idx)
	}
	return g, nil
}
