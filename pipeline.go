package main

import (
	"context"
	"fmt"

	"go.ryu.dev/ryu/internal/analyze"
	"go.ryu.dev/ryu/internal/changegraph"
	"go.ryu.dev/ryu/internal/executor"
	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/plan"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/track"
)

// submissionOptions configures runSubmission, shared by every command
// that turns a selection of bookmarks into pushed, PR'd stack state.
type submissionOptions struct {
	Mode             analyze.Mode
	Target           string
	Remote           string
	IncludeUntracked bool
	Draft            bool
	Publish          bool
	Body             string
	DryRun           bool
}

// runSubmission runs the analysis, planning, and (unless DryRun)
// execution phases against the workspace cl is rooted in. It is the
// single place `ryu submit` and `ryu sync` funnel through, so the two
// commands can never drift on what "submit" actually does.
func runSubmission(
	ctx context.Context,
	log *silog.Logger,
	cl jj.Client,
	store *track.Store,
	stash secret.Stash,
	opts submissionOptions,
) error {
	g, err := changegraph.Build(ctx, cl, opts.Remote)
	if err != nil {
		return rerr.Wrap(rerr.Vcs, fmt.Errorf("build change graph: %w", err))
	}

	records, err := store.Load()
	if err != nil {
		return rerr.Wrap(rerr.Internal, fmt.Errorf("load tracked bookmarks: %w", err))
	}

	reconciled, renames := track.Reconcile(g, records)
	for _, r := range renames {
		log.Infof("tracking %s as %s (renamed)", r.OldName, r.NewName)
	}
	if len(renames) > 0 {
		if err := store.Save(reconciled); err != nil {
			return rerr.Wrap(rerr.Internal, fmt.Errorf("save reconciled bookmarks: %w", err))
		}
	}

	scope, err := analyze.Select(ctx, g, reconciled, analyze.Options{
		Mode:             opts.Mode,
		Target:           opts.Target,
		IncludeUntracked: opts.IncludeUntracked,
	})
	if err != nil {
		return rerr.Wrap(rerr.UserInput, err)
	}
	for _, w := range scope.Warnings {
		log.Warn(w)
	}
	if len(scope.Segments) == 0 {
		log.Info("nothing to submit")
		return nil
	}

	cache, err := store.LoadCache()
	if err != nil {
		return rerr.Wrap(rerr.Internal, fmt.Errorf("load PR cache: %w", err))
	}

	svc, err := openForgeService(ctx, log, stash, cl, opts.Remote)
	if err != nil {
		return err
	}

	// Discover remote state: the cache is a hint, never a source of
	// truth, so every segment is confirmed against the forge by head
	// branch before planning decides whether a PR already exists. This
	// is what keeps CreatePr idempotent under re-submission even after
	// pr_cache.toml has been deleted.
	discovered, err := discoverPRs(ctx, svc, scope, cache)
	if err != nil {
		return rerr.Wrap(rerr.Forge, fmt.Errorf("discover remote PR state: %w", err))
	}

	// Update-only runs never open a PR: drop every segment the forge
	// has no PR for.
	if opts.Mode == analyze.ModeUpdateOnly {
		kept := scope.Segments[:0]
		for _, seg := range scope.Segments {
			if _, ok := discovered[seg.Bookmark.Name]; ok {
				kept = append(kept, seg)
				continue
			}
			log.Warnf("skipping %s: it has no pull request to update", seg.Bookmark.Name)
		}
		scope.Segments = kept
	}

	titles := make(map[string]string, len(scope.Segments))
	for _, seg := range scope.Segments {
		titles[seg.Bookmark.Name] = deriveTitle(ctx, cl, seg.Bookmark)
	}

	p, err := plan.Build(scope, discovered, plan.Options{
		Remote:      opts.Remote,
		Draft:       opts.Draft,
		Publish:     opts.Publish,
		DefaultBody: opts.Body,
		Titles:      titles,
	})
	if err != nil {
		return rerr.Wrap(rerr.Planning, err)
	}

	if opts.DryRun {
		printPlan(p)
		return nil
	}

	if len(p.Steps) == 0 {
		log.Info("nothing to do; everything is already up to date")
		return nil
	}

	ex := &executor.Executor{
		JJ:     cl,
		Forge:  svc,
		Store:  store,
		Sink:   executor.LogSink{Log: log},
		Log:    log,
		Remote: opts.Remote,
	}

	report, err := ex.Execute(ctx, p, scope, discovered)
	if err != nil {
		if report.Failed != nil {
			return rerr.Wrap(rerr.Forge, err)
		}
		return rerr.Wrap(rerr.Internal, err)
	}

	log.Infof("%d step(s) completed", len(report.Completed))
	return nil
}

// discoverPRs builds the authoritative bookmark-to-PR map planning
// needs: cache is the starting hint, but every segment's head branch
// is probed against the forge so a deleted, stale, or never-populated
// cache never causes the planner to open a duplicate PR for a branch
// that already has one (spec's "PR cache + authoritative lookup"
// discovery step).
func discoverPRs(ctx context.Context, svc forge.Service, scope *analyze.Scope, cache track.BookmarkToPrMap) (track.BookmarkToPrMap, error) {
	discovered := make(track.BookmarkToPrMap, len(cache))
	for k, v := range cache {
		discovered[k] = v
	}

	for _, seg := range scope.Segments {
		name := seg.Bookmark.Name
		pr, err := svc.FindPRByHead(ctx, name, forge.FindPRByHeadOptions{})
		if err != nil {
			return nil, fmt.Errorf("find PR for %q: %w", name, err)
		}
		if pr == nil {
			// The forge has no PR for this head; whatever the cache
			// claimed is stale.
			delete(discovered, name)
			continue
		}
		entry := discovered[name]
		entry.Bookmark = name
		entry.Number = pr.Number
		entry.URL = pr.URL
		entry.Base = pr.Base
		entry.Draft = pr.Draft
		discovered[name] = entry
	}

	return discovered, nil
}

// deriveTitle derives a PR title from the first line of b's commit
// description, falling back to the bookmark name when the commit is
// empty or has no description (e.g. a bookmark planted on trunk).
func deriveTitle(ctx context.Context, cl jj.Client, b changegraph.Bookmark) string {
	revs, err := cl.Revs(ctx, b.ChangeID)
	if err != nil || len(revs) == 0 {
		return b.Name
	}
	return firstLine(revs[0].Description, b.Name)
}

func firstLine(s, fallback string) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	if s == "" {
		return fallback
	}
	return s
}

// printPlan renders a plan's steps for --dry-run, one line per step, in
// scheduled order.
func printPlan(p *plan.Plan) {
	if len(p.Steps) == 0 {
		fmt.Println("(no steps; everything is already up to date)")
		return
	}
	for i, step := range p.Steps {
		switch s := step.(type) {
		case *plan.PushStep:
			fmt.Printf("%2d. push        %-20s -> %s\n", i+1, s.BookmarkName, s.Remote)
		case *plan.UpdateBaseStep:
			fmt.Printf("%2d. update-base %-20s -> base %s\n", i+1, s.BookmarkName, s.NewBase)
		case *plan.CreatePrStep:
			draft := ""
			if s.Draft {
				draft = " (draft)"
			}
			fmt.Printf("%2d. create-pr   %-20s base %s: %q%s\n", i+1, s.BookmarkName, s.Base, s.Title, draft)
		case *plan.PublishPrStep:
			fmt.Printf("%2d. publish-pr  %-20s\n", i+1, s.BookmarkName)
		default:
			fmt.Printf("%2d. %s %s\n", i+1, step.Kind(), step.Bookmark())
		}
	}
}
