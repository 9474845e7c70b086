package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.ryu.dev/ryu/internal/changegraph"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/text"
	"go.ryu.dev/ryu/internal/track"
)

// trackCmd starts tracking bookmarks for submission.
type trackCmd struct {
	Names  []string `arg:"" optional:"" help:"Bookmarks to track."`
	Select bool     `help:"Interactively choose from the untracked bookmarks in the current stack."`
}

func (*trackCmd) Help() string {
	return text.Dedent(`
		A tracked bookmark is one "ryu submit" and "ryu sync" are
		willing to act on. Tracking a bookmark does not submit it;
		it only records intent, keyed by the bookmark's change id so
		a later "jj bookmark rename" is followed rather than treated
		as an untrack-then-new-bookmark.
	`)
}

func (cmd *trackCmd) Run(ctx context.Context, log *silog.Logger, cl jj.Client, store *track.Store, global *globalOptions) error {
	g, err := changegraph.Build(ctx, cl, global.Remote)
	if err != nil {
		return rerr.Wrap(rerr.Vcs, fmt.Errorf("build change graph: %w", err))
	}

	names := cmd.Names
	if cmd.Select {
		records, err := store.Load()
		if err != nil {
			return rerr.Wrap(rerr.Internal, err)
		}
		tracked := make(map[string]struct{}, len(records))
		for _, r := range records {
			tracked[r.Bookmark] = struct{}{}
		}
		var candidates []string
		for _, b := range g.Bookmarks {
			if _, ok := tracked[b.Name]; !ok {
				candidates = append(candidates, b.Name)
			}
		}
		chosen, err := promptSelect("track", candidates)
		if err != nil {
			return rerr.Wrap(rerr.UserInput, err)
		}
		names = append(names, chosen...)
	}

	if len(names) == 0 {
		return rerr.New(rerr.UserInput, "no bookmarks named; pass one or more names, or --select")
	}

	for _, name := range names {
		b, ok := g.Lookup(name)
		if !ok {
			return rerr.New(rerr.UserInput, "bookmark %q is not between trunk and the working copy", name)
		}
		if err := store.Add(track.Record{Bookmark: b.Name, ChangeID: b.ChangeID}); err != nil {
			return rerr.Wrap(rerr.Internal, fmt.Errorf("track %q: %w", name, err))
		}
		log.Infof("tracking %s", b.Name)
	}
	return nil
}

// promptSelect prints candidates and reads a space-separated subset
// from stdin, one round only, with no fuzzy-matching UI.
func promptSelect(verb string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		fmt.Printf("nothing to %s\n", verb)
		return nil, nil
	}

	fmt.Printf("bookmarks available to %s:\n", verb)
	for i, name := range candidates {
		fmt.Printf("  %2d. %s\n", i+1, name)
	}
	fmt.Printf("select by number (space-separated), or blank for none: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, nil
	}
	fields := strings.Fields(scanner.Text())

	var chosen []string
	for _, f := range fields {
		idx := 0
		if _, err := fmt.Sscanf(f, "%d", &idx); err != nil || idx < 1 || idx > len(candidates) {
			return nil, fmt.Errorf("invalid selection %q", f)
		}
		chosen = append(chosen, candidates[idx-1])
	}
	return chosen, nil
}
