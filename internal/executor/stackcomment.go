package executor

import (
	"context"
	"fmt"

	"go.ryu.dev/ryu/internal/analyze"
	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/forge/stacknav"
	"go.ryu.dev/ryu/internal/track"
)

// stackNode adapts one segment into a [stacknav.Node].
type stackNode struct {
	seg      analyze.Segment
	baseIdx  int
	pr       *forge.PullRequest
}

func (n stackNode) BaseIdx() int { return n.baseIdx }

func (n stackNode) Value() string {
	if n.pr == nil {
		return n.seg.Bookmark.Name
	}
	return fmt.Sprintf("#%d", n.pr.Number)
}

// postStackComments renders and upserts the stack-visualization
// comment on every PR in scope, once all steps have run and every
// bookmark's PR is known.
func (e *Executor) postStackComments(
	ctx context.Context,
	scope *analyze.Scope,
	resolved map[string]*forge.PullRequest,
	cache track.BookmarkToPrMap,
) error {
	segs := scope.Segments
	if len(segs) < 2 {
		// A single-PR "stack" has nothing to visualize relative to.
		return nil
	}

	indexByName := make(map[string]int, len(segs))
	for i, seg := range segs {
		indexByName[seg.Bookmark.Name] = i
	}

	nodes := make([]stackNode, len(segs))
	names := make([]string, len(segs))
	for i, seg := range segs {
		pr, err := e.resolvePR(ctx, seg.Bookmark.Name, cache, resolved)
		if err != nil {
			return fmt.Errorf("resolve PR for stack comment on %q: %w", seg.Bookmark.Name, err)
		}
		baseIdx := -1
		if idx, ok := indexByName[seg.Base]; ok {
			baseIdx = idx
		}
		nodes[i] = stackNode{seg: seg, baseIdx: baseIdx, pr: pr}
		names[i] = seg.Bookmark.Name
	}

	for i, n := range nodes {
		body, err := stacknav.Comment(nodes, i, nil, StackCommentVersion, stacknav.CommentPayload{
			Bookmarks: names,
		})
		if err != nil {
			return fmt.Errorf("render stack comment for %q: %w", n.seg.Bookmark.Name, err)
		}
		marker := fmt.Sprintf("ryu-stack-v%d", StackCommentVersion)
		if err := e.Forge.UpsertStackComment(ctx, n.pr.ID, marker, body); err != nil {
			return fmt.Errorf("upsert stack comment on %q: %w", n.seg.Bookmark.Name, err)
		}
	}
	return nil
}
