package main

import (
	"context"
	"fmt"
	"os"

	"go.ryu.dev/ryu/internal/changegraph"
	"go.ryu.dev/ryu/internal/forge/stacknav"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/text"
	"go.ryu.dev/ryu/internal/track"
)

// stacksCmd shows detected stacks and their submission state. It never
// touches the forge: everything it prints comes from the local change
// graph and ryu's own tracked.toml / pr_cache.toml.
type stacksCmd struct{}

func (*stacksCmd) Help() string {
	return text.Dedent(`
		Bookmarks between trunk and the working copy are listed in
		stack order, each annotated with whether ryu tracks it and,
		if known, the pull request last associated with it.
	`)
}

// stackNode adapts a bookmark to stacknav.Node for rendering.
type stackNode struct {
	bookmark changegraph.Bookmark
	baseIdx  int
	tracked  bool
	pr       int
}

func (n stackNode) BaseIdx() int { return n.baseIdx }

func (n stackNode) Value() string {
	state := "untracked"
	if n.tracked {
		state = "tracked"
	}
	if n.pr != 0 {
		state = fmt.Sprintf("%s, #%d", state, n.pr)
	}
	return fmt.Sprintf("%s (%s)", n.bookmark.Name, state)
}

func (cmd *stacksCmd) Run(ctx context.Context, cl jj.Client, store *track.Store, global *globalOptions) error {
	g, err := changegraph.Build(ctx, cl, global.Remote)
	if err != nil {
		return rerr.Wrap(rerr.Vcs, fmt.Errorf("build change graph: %w", err))
	}

	if len(g.Bookmarks) == 0 {
		fmt.Println("no bookmarks between trunk and the working copy")
		return nil
	}

	records, err := store.Load()
	if err != nil {
		return rerr.Wrap(rerr.Internal, err)
	}
	byName := make(map[string]track.Record, len(records))
	for _, r := range records {
		byName[r.Bookmark] = r
	}

	indexOf := make(map[string]int, len(g.Bookmarks))
	for i, b := range g.Bookmarks {
		indexOf[b.Name] = i
	}

	nodes := make([]stackNode, len(g.Bookmarks))
	currentIdx := -1
	for i, b := range g.Bookmarks {
		baseIdx := -1
		if idx, ok := indexOf[b.Base]; ok {
			baseIdx = idx
		}
		rec, tracked := byName[b.Name]
		n := stackNode{bookmark: b, baseIdx: baseIdx, tracked: tracked}
		if tracked {
			n.pr = rec.PRNumber
		}
		nodes[i] = n
	}

	for _, w := range g.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.Message)
	}

	stacknav.Print(os.Stdout, nodes, currentIdx, nil)
	return nil
}
