package main

import (
	"context"
	"fmt"

	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/text"
	"go.ryu.dev/ryu/internal/track"
)

// untrackCmd stops tracking bookmarks; it never touches the forge or
// the workspace, only ryu's own tracked.toml.
type untrackCmd struct {
	Names  []string `arg:"" optional:"" help:"Bookmarks to stop tracking."`
	Select bool     `help:"Interactively choose from the currently tracked bookmarks."`
}

func (*untrackCmd) Help() string {
	return text.Dedent(`
		Untracking a bookmark does not close or delete its pull
		request; it only stops "ryu submit" and "ryu sync" from
		acting on it. Re-running "ryu track" picks it back up.
	`)
}

func (cmd *untrackCmd) Run(_ context.Context, log *silog.Logger, store *track.Store) error {
	records, err := store.Load()
	if err != nil {
		return rerr.Wrap(rerr.Internal, err)
	}

	names := cmd.Names
	if cmd.Select {
		var candidates []string
		for _, r := range records {
			candidates = append(candidates, r.Bookmark)
		}
		chosen, err := promptSelect("untrack", candidates)
		if err != nil {
			return rerr.Wrap(rerr.UserInput, err)
		}
		names = append(names, chosen...)
	}

	if len(names) == 0 {
		return rerr.New(rerr.UserInput, "no bookmarks named; pass one or more names, or --select")
	}

	for _, name := range names {
		if err := store.Remove(name); err != nil {
			return rerr.Wrap(rerr.Internal, fmt.Errorf("untrack %q: %w", name, err))
		}
		log.Infof("untracked %s", name)
	}
	return nil
}
