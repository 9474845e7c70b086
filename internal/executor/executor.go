// Package executor runs a [plan.Plan] against a jj workspace and a
// forge, in the order the planner produced, and keeps ryu's tracking
// state and stack-visualization comments up to date as it goes.
package executor

import (
	"context"
	"fmt"

	"go.ryu.dev/ryu/internal/analyze"
	"go.ryu.dev/ryu/internal/cmputil"
	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/plan"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/track"
)

// StackCommentVersion is the schema version embedded in the
// ryu-stack-v<N> marker. Bump only when CommentPayload's shape changes
// incompatibly.
const StackCommentVersion = 1

// Executor runs a plan to completion (or first failure).
type Executor struct {
	JJ    jj.Client
	Forge forge.Service
	Store *track.Store
	Sink  Sink
	Log   *silog.Logger

	Remote string
}

// CompletedStep is one step the executor ran successfully.
type CompletedStep struct {
	Step   plan.Step
	Result Result
}

// FailedStep is the step the executor stopped on, if any.
type FailedStep struct {
	Step plan.Step
	Err  error
}

// Report summarizes a completed (or aborted) execution run.
type Report struct {
	Completed []CompletedStep
	Failed    *FailedStep
}

func (e *Executor) sink() Sink {
	if e.Sink != nil {
		return e.Sink
	}
	return NopSink{}
}

// Execute runs every step in p in order, stopping at the first failure.
//
// scope is the same scope the plan was built from; it supplies the
// bookmark-to-base mapping the executor needs to render stack comments
// once all steps have run.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, scope *analyze.Scope, cache track.BookmarkToPrMap) (*Report, error) {
	if cache == nil {
		cache = make(track.BookmarkToPrMap)
	}

	resolved := make(map[string]*forge.PullRequest)
	report := &Report{}

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("execute: %w", err)
		}

		e.sink().StepStarted(step)
		res, err := e.runStep(ctx, step, cache, resolved)
		if err != nil {
			e.sink().StepFailed(step, err)
			report.Failed = &FailedStep{Step: step, Err: err}
			return report, fmt.Errorf("step %s %s: %w", step.Kind(), step.Bookmark(), err)
		}
		e.sink().StepCompleted(step, res)
		report.Completed = append(report.Completed, CompletedStep{Step: step, Result: res})
	}

	if err := e.postStackComments(ctx, scope, resolved, cache); err != nil {
		return report, fmt.Errorf("update stack comments: %w", err)
	}

	if err := e.Store.SaveCache(cache); err != nil {
		return report, fmt.Errorf("save PR cache: %w", err)
	}

	return report, nil
}

func (e *Executor) runStep(
	ctx context.Context,
	step plan.Step,
	cache track.BookmarkToPrMap,
	resolved map[string]*forge.PullRequest,
) (Result, error) {
	switch s := step.(type) {
	case *plan.PushStep:
		if err := e.JJ.Push(ctx, jj.PushRequest{
			Bookmark: s.BookmarkName,
			Remote:   s.Remote,
			AllowNew: s.AllowNew,
		}); err != nil {
			return Result{}, err
		}
		return Result{}, nil

	case *plan.CreatePrStep:
		pr, err := e.Forge.CreatePR(ctx, forge.CreatePRRequest{
			Head:  s.BookmarkName,
			Base:  s.Base,
			Title: s.Title,
			Body:  s.Body,
			Draft: s.Draft,
		})
		if err != nil {
			return Result{}, err
		}
		resolved[s.BookmarkName] = pr
		cache[s.BookmarkName] = track.PRCacheEntry{
			Bookmark: s.BookmarkName,
			Number:   pr.Number,
			URL:      pr.URL,
			Base:     s.Base,
			Draft:    pr.Draft,
		}
		if err := e.Store.Add(track.Record{
			Bookmark: s.BookmarkName,
			PRNumber: pr.Number,
		}); err != nil {
			return Result{}, fmt.Errorf("persist tracked bookmark: %w", err)
		}
		return Result{PRNumber: pr.Number, PRURL: pr.URL}, nil

	case *plan.UpdateBaseStep:
		pr, err := e.resolvePR(ctx, s.BookmarkName, cache, resolved)
		if err != nil {
			return Result{}, err
		}
		if err := e.Forge.UpdatePRBase(ctx, pr.ID, s.NewBase); err != nil {
			return Result{}, err
		}
		entry := cache[s.BookmarkName]
		entry.Base = s.NewBase
		cache[s.BookmarkName] = entry
		return Result{PRNumber: pr.Number, PRURL: pr.URL}, nil

	case *plan.PublishPrStep:
		pr, err := e.resolvePR(ctx, s.BookmarkName, cache, resolved)
		if err != nil {
			return Result{}, err
		}
		if err := e.Forge.PublishPR(ctx, pr.ID); err != nil {
			return Result{}, err
		}
		entry := cache[s.BookmarkName]
		entry.Draft = false
		cache[s.BookmarkName] = entry
		return Result{PRNumber: pr.Number, PRURL: pr.URL}, nil

	default:
		return Result{}, fmt.Errorf("unknown step type %T", step)
	}
}

// resolvePR finds the PullRequest a step needs to act on, preferring a
// PR this run already created or fetched, falling back to the cached
// PR number, and finally to a live FindPRByHead lookup.
func (e *Executor) resolvePR(
	ctx context.Context,
	bookmark string,
	cache track.BookmarkToPrMap,
	resolved map[string]*forge.PullRequest,
) (*forge.PullRequest, error) {
	if pr, ok := resolved[bookmark]; ok {
		return pr, nil
	}

	if entry, ok := cache[bookmark]; ok && !cmputil.Zero(entry.Number) {
		id := e.Forge.PRIDFromNumber(entry.Number)
		pr, err := e.Forge.GetPR(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch cached PR #%d for %q: %w", entry.Number, bookmark, err)
		}
		resolved[bookmark] = pr
		return pr, nil
	}

	pr, err := e.Forge.FindPRByHead(ctx, bookmark, forge.FindPRByHeadOptions{})
	if err != nil {
		return nil, fmt.Errorf("find PR for %q: %w", bookmark, err)
	}
	if pr == nil {
		return nil, fmt.Errorf("no PR found for bookmark %q", bookmark)
	}
	resolved[bookmark] = pr
	return pr, nil
}
