package track

import "go.ryu.dev/ryu/internal/changegraph"

// RenameEvent describes a tracked bookmark detected to have been
// renamed since the last run: the same change id now carries a
// different bookmark name.
type RenameEvent struct {
	OldName  string
	NewName  string
	ChangeID string
}

// Reconcile joins previously tracked records against the current graph
// by change id (stable across `jj bookmark rename`) rather than by
// bookmark name, and returns an updated record set with renamed
// bookmarks relabeled in place, plus the renames it detected.
//
// Records whose change id no longer appears anywhere in the graph are
// dropped: the bookmark was deleted, or its commit fell out of
// trunk()..@ entirely, either way there is nothing left to track.
func Reconcile(g *changegraph.Graph, records []Record) ([]Record, []RenameEvent) {
	byChangeID := make(map[string]changegraph.Bookmark, len(g.Bookmarks))
	currentNames := make(map[string]struct{}, len(g.Bookmarks))
	for _, b := range g.Bookmarks {
		byChangeID[b.ChangeID] = b
		currentNames[b.Name] = struct{}{}
	}

	var renames []RenameEvent
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, stillNamed := currentNames[r.Bookmark]; stillNamed {
			// Name unchanged; refresh the change id we'll reconcile
			// against next time in case it moved via the same name.
			if b, ok := g.Lookup(r.Bookmark); ok {
				r.ChangeID = b.ChangeID
			}
			out = append(out, r)
			continue
		}

		if r.ChangeID == "" {
			// No change id recorded (record predates this field, or
			// was created before the bookmark was ever seen in a
			// graph) and the name is gone: nothing to reconcile by,
			// so drop it. `ryu track` will pick it back up under its
			// new name if the user re-tracks it.
			continue
		}

		b, stillExists := byChangeID[r.ChangeID]
		if !stillExists {
			continue // bookmark (and its change) are gone
		}

		renames = append(renames, RenameEvent{
			OldName:  r.Bookmark,
			NewName:  b.Name,
			ChangeID: r.ChangeID,
		})
		r.Bookmark = b.Name
		out = append(out, r)
	}
	return out, renames
}
