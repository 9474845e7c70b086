// Package analyze selects which bookmarks in a [changegraph.Graph] a
// submission run should act on, and orders them bottom-of-stack first.
package analyze

import (
	"context"
	"fmt"

	"go.ryu.dev/ryu/internal/changegraph"
	"go.ryu.dev/ryu/internal/track"
)

// Segment is a single bookmark selected for submission, enriched with
// its tracking state.
type Segment struct {
	Bookmark changegraph.Bookmark

	// Base is the bookmark (or trunk) this segment's PR should target.
	Base string

	// Tracked reports whether the bookmark was already tracked by ryu
	// before this run (seen in tracked.toml).
	Tracked bool

	// ExistingPR is the PR number previously recorded for this
	// bookmark, or 0 if none is known yet.
	ExistingPR int
}

// Scope is the ordered set of segments a run will act on, plus any
// non-fatal warnings surfaced while selecting them.
type Scope struct {
	Segments []Segment
	Warnings []string
}

// Mode selects which bookmarks within the graph are in scope.
type Mode int

const (
	// ModeStack selects the full stack containing the target bookmark:
	// every bookmark between trunk and the target's topmost descendant.
	ModeStack Mode = iota

	// ModeUpto selects the target bookmark and everything below it,
	// down to trunk.
	ModeUpto

	// ModeOnly selects exactly the target bookmark.
	ModeOnly

	// ModeUpdateOnly selects every already-tracked bookmark in the
	// graph. It does not look at PR state: a tracked bookmark that has
	// never been submitted is selected too.
	ModeUpdateOnly
)

// Options configures Select.
type Options struct {
	Mode Mode

	// Target is the bookmark to center the selection on. Required
	// for all modes except when Select is scanning the whole
	// repository (Target == "").
	Target string

	// IncludeUntracked disables the default restriction to tracked
	// bookmarks (selection policy step 1), letting ModeStack/ModeUpto/
	// ModeOnly pick up bookmarks ryu has never tracked. Set by --all
	// and --include-untracked, which are otherwise synonyms.
	IncludeUntracked bool

	// Select, if non-nil, is invoked with the candidate bookmark names
	// (in stack order) for the caller to narrow interactively. It
	// returns the subset of names to keep.
	Select func(candidates []string) ([]string, error)
}

// Select builds the Scope for a submission run from a change graph and
// the bookmarks ryu is already tracking.
func Select(_ context.Context, g *changegraph.Graph, records []track.Record, opts Options) (*Scope, error) {
	trackedByName := make(map[string]track.Record, len(records))
	for _, r := range records {
		trackedByName[r.Bookmark] = r
	}

	// Selection policy step 1: once anything is tracked, a bare submit
	// touches only what ryu already knows about, unless the caller asks
	// to look wider (--all/--include-untracked) or is picking
	// interactively (--select, which sees the untracked candidates too
	// so it can offer them).
	restrictToTracked := len(trackedByName) > 0 && !opts.IncludeUntracked && opts.Select == nil

	if restrictToTracked && opts.Mode == ModeOnly && opts.Target != "" {
		if _, ok := trackedByName[opts.Target]; !ok {
			return nil, fmt.Errorf("analyze: bookmark %q is not tracked; pass --all to submit it anyway", opts.Target)
		}
	}

	var candidateNames []string
	switch opts.Mode {
	case ModeOnly:
		if opts.Target == "" {
			return nil, fmt.Errorf("analyze: --only requires a target bookmark")
		}
		if _, ok := g.Lookup(opts.Target); !ok {
			return nil, fmt.Errorf("analyze: bookmark %q is not between trunk and the working copy", opts.Target)
		}
		candidateNames = []string{opts.Target}

	case ModeUpto:
		if opts.Target == "" {
			return nil, fmt.Errorf("analyze: --upto requires a target bookmark")
		}
		candidateNames = downstackInclusive(g, opts.Target)

	case ModeUpdateOnly:
		for _, b := range g.Bookmarks {
			if _, ok := trackedByName[b.Name]; ok {
				candidateNames = append(candidateNames, b.Name)
			}
		}

	default: // ModeStack
		target := opts.Target
		if target == "" {
			// No explicit target: the whole graph is the stack.
			for _, b := range g.Bookmarks {
				candidateNames = append(candidateNames, b.Name)
			}
			break
		}
		if _, ok := g.Lookup(target); !ok {
			return nil, fmt.Errorf("analyze: bookmark %q is not between trunk and the working copy", target)
		}
		seen := make(map[string]struct{})
		for _, name := range downstackInclusive(g, target) {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				candidateNames = append(candidateNames, name)
			}
		}
		for _, name := range g.Upstack(target) {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				candidateNames = append(candidateNames, name)
			}
		}
	}

	if restrictToTracked && opts.Mode != ModeUpdateOnly {
		kept := candidateNames[:0]
		for _, name := range candidateNames {
			if _, ok := trackedByName[name]; ok {
				kept = append(kept, name)
			}
		}
		candidateNames = kept
	}

	if opts.Select != nil {
		selected, err := opts.Select(candidateNames)
		if err != nil {
			return nil, fmt.Errorf("analyze: interactive selection: %w", err)
		}
		candidateNames = selected
	}

	// Restore stack order (bottom-of-stack first) regardless of what
	// order the candidates arrived in, since ModeUpdateOnly and the
	// interactive selector don't preserve it.
	order := make(map[string]int, len(g.Bookmarks))
	for i, b := range g.Bookmarks {
		order[b.Name] = i
	}
	selectedSet := make(map[string]struct{}, len(candidateNames))
	for _, name := range candidateNames {
		selectedSet[name] = struct{}{}
	}

	var scope Scope
	for _, b := range g.Bookmarks {
		if _, ok := selectedSet[b.Name]; !ok {
			continue
		}
		rec, tracked := trackedByName[b.Name]

		base := b.Base
		if base == g.Trunk {
			// Keep trunk references literal; Segment.Base always
			// names a real submission target (a bookmark or trunk).
			base = g.Trunk
		}

		seg := Segment{
			Bookmark: b,
			Base:     base,
			Tracked:  tracked,
		}
		if tracked {
			seg.ExistingPR = rec.PRNumber
		}
		scope.Segments = append(scope.Segments, seg)
	}

	if opts.Mode == ModeUpdateOnly && len(scope.Segments) == 0 {
		scope.Warnings = append(scope.Warnings, "no tracked bookmarks found in the current stack; nothing to update")
	}
	for _, w := range g.Warnings {
		scope.Warnings = append(scope.Warnings, w.Message)
	}

	return &scope, nil
}

// downstackInclusive returns target and every bookmark below it, down
// to (but not including) trunk, ordered bottom-of-stack first.
func downstackInclusive(g *changegraph.Graph, target string) []string {
	var names []string
	for cur := target; cur != "" && cur != g.Trunk; {
		b, ok := g.Lookup(cur)
		if !ok {
			break
		}
		names = append(names, cur)
		cur = b.Base
	}
	// Reverse so trunk-adjacent comes first.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}
