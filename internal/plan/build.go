package plan

import (
	"fmt"

	"go.ryu.dev/ryu/internal/analyze"
	"go.ryu.dev/ryu/internal/cmputil"
	"go.ryu.dev/ryu/internal/track"
)

// Options configures Build.
type Options struct {
	Remote string // required

	// Draft marks newly created PRs as drafts.
	Draft bool

	// Publish requests that existing draft PRs be published by the
	// end of this run. PRs created as drafts in this run stay drafts.
	Publish bool

	// DefaultBody is the body of every PR created in this run.
	DefaultBody string

	// Titles supplies a new PR's title, keyed by bookmark name
	// (typically the first line of the bookmark's commit description).
	// A bookmark missing from the map falls back to its own name, so a
	// PR is never created with an empty title.
	Titles map[string]string
}

// Plan is a deterministically ordered, dependency-resolved sequence of
// steps ready for the executor to run.
type Plan struct {
	Steps []Step
}

// Build constructs a Plan for scope's segments.
//
// cache supplies what ryu most recently knew about each bookmark's PR
// (if any), used to detect base changes that require an UpdateBaseStep
// and to decide which swap constraint applies.
func Build(scope *analyze.Scope, cache track.BookmarkToPrMap, opts Options) (*Plan, error) {
	if opts.Remote == "" {
		return nil, fmt.Errorf("plan: remote is required")
	}

	nodes := make([]node, 0, len(scope.Segments)*2)
	var constraints []Constraint

	// previousBookmark with a push/create this run, to chain PushOrder
	// / CreateOrder between consecutive segments.
	var prevPush *PushRef
	var prevCreate *CreateRef

	for i, seg := range scope.Segments {
		name := seg.Bookmark.Name
		cached, hadCache := cache[name]
		hasPR := !cmputil.Zero(seg.ExistingPR) || hadCache

		var pushRef *PushRef
		if seg.Bookmark.NeedsPush() {
			r := NewPushRef(name)
			pushRef = &r
			nodes = append(nodes, node{step: &PushStep{
				BookmarkName: name,
				Position:     i,
				Remote:       opts.Remote,
				AllowNew:     !seg.Bookmark.Tracked(),
			}})
			if prevPush != nil {
				constraints = append(constraints, PushOrder{Before: *prevPush, After: r})
			}
			prevPush = &r
		}

		var updateRef *UpdateRef
		var createRef *CreateRef
		switch {
		case hasPR && hadCache && cached.Base != seg.Base:
			r := NewUpdateRef(name)
			updateRef = &r
			nodes = append(nodes, node{step: &UpdateBaseStep{
				BookmarkName: name,
				Position:     i,
				NewBase:      seg.Base,
			}})

			// The PR is being retargeted onto seg.Base; the forge must
			// see that branch before it accepts it as a base, so if
			// seg.Base's own segment needs a push this run, that push
			// must land first.
			if baseRef, ok := basePushRef(scope, seg.Base); ok {
				constraints = append(constraints, PushBeforeRetarget{Push: baseRef, Update: r})
			}

			// Swap detection: the *old* base is itself a segment in
			// this scope that is now based on us and is being pushed
			// this run. That's the textbook two-element swap; reverse
			// the default push/retarget order for it so the PR's diff
			// never transiently includes the old base's soon-to-be-
			// rewritten history.
			if swapPush, isSwap := detectSwap(scope, name, cached.Base); isSwap {
				constraints = append(constraints, RetargetBeforePush{Update: r, Push: swapPush})
			}

		case !hasPR:
			r := NewCreateRef(name)
			createRef = &r
			title := opts.Titles[name]
			if title == "" {
				title = name
			}
			nodes = append(nodes, node{step: &CreatePrStep{
				BookmarkName: name,
				Position:     i,
				Base:         seg.Base,
				Draft:        opts.Draft,
				Title:        title,
				Body:         opts.DefaultBody,
			}})

			if pushRef != nil {
				constraints = append(constraints, PushBeforeCreate{Push: *pushRef, Create: r})
			}
			if prevCreate != nil {
				constraints = append(constraints, CreateOrder{Before: *prevCreate, After: r})
			}
			prevCreate = &r
		}

		if opts.Publish && hasPR && hadCache && cached.Draft {
			pr := NewPublishRef(name)
			nodes = append(nodes, node{step: &PublishPrStep{
				BookmarkName: name,
				Position:     i,
			}})
			if createRef != nil {
				constraints = append(constraints, CreateBeforePublish{Create: *createRef, Publish: pr})
			}
			if updateRef != nil {
				constraints = append(constraints, UpdateBeforePublish{Update: *updateRef, Publish: pr})
			}
		}
	}

	steps, err := schedule(nodes, constraints)
	if err != nil {
		return nil, err
	}
	return &Plan{Steps: steps}, nil
}

// basePushRef reports the PushRef for base's own segment, if base has
// one in this scope and it needs a push this run.
func basePushRef(scope *analyze.Scope, base string) (PushRef, bool) {
	for _, seg := range scope.Segments {
		if seg.Bookmark.Name == base && seg.Bookmark.NeedsPush() {
			return NewPushRef(base), true
		}
	}
	return PushRef{}, false
}

// detectSwap reports whether bookmark's base change is the "swap" half
// of a two-bookmark reorder: oldBase is itself a segment in this scope
// that is now based on bookmark (the two traded places) and is being
// pushed this run.
func detectSwap(scope *analyze.Scope, bookmark, oldBase string) (push PushRef, ok bool) {
	for _, seg := range scope.Segments {
		if seg.Bookmark.Name != oldBase {
			continue
		}
		if seg.Base == bookmark && seg.Bookmark.NeedsPush() {
			return NewPushRef(oldBase), true
		}
	}
	return PushRef{}, false
}

type node struct {
	step Step
}
