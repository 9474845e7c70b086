package main

import (
	"context"

	"go.ryu.dev/ryu/internal/analyze"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/text"
	"go.ryu.dev/ryu/internal/track"
)

// submitCmd submits a bookmark, and its stack, as pull requests.
type submitCmd struct {
	Bookmark string `arg:"" optional:"" help:"Bookmark to submit. Defaults to the whole stack containing the working copy."`

	Stack      bool `xor:"mode" help:"Submit the whole stack containing the bookmark (default)."`
	Upto       bool `xor:"mode" help:"Submit the bookmark and everything below it."`
	Only       bool `xor:"mode" help:"Submit only the named bookmark."`
	UpdateOnly bool `xor:"mode" help:"Only update bookmarks that already have a pull request."`

	All              bool `help:"Submit untracked bookmarks too, not just ones ryu already tracks."`
	IncludeUntracked bool `help:"Synonym for --all."`

	Draft   bool `negatable:"" config:"draft" help:"Open new pull requests as drafts."`
	Publish bool `negatable:"" default:"true" config:"publish" help:"Publish draft pull requests that were previously left as drafts."`

	Body string `help:"Body to use for newly created pull requests." placeholder:"TEXT"`
	Edit bool   `short:"e" help:"Open $EDITOR to write the body for newly created pull requests."`

	DryRun bool `short:"n" help:"Print what would be submitted without submitting it."`
}

func (*submitCmd) Help() string {
	return text.Dedent(`
		A pull request is opened for every bookmark in scope that
		doesn't already have one, and the branch for each bookmark
		already submitted is pushed if it has moved.

		Use --dry-run to print the steps ryu would take without
		taking them.
	`)
}

func (cmd *submitCmd) Run(ctx context.Context, log *silog.Logger, cl jj.Client, store *track.Store, stash secret.Stash, global *globalOptions) error {
	mode := analyze.ModeStack
	switch {
	case cmd.Upto:
		mode = analyze.ModeUpto
	case cmd.Only:
		mode = analyze.ModeOnly
	case cmd.UpdateOnly:
		mode = analyze.ModeUpdateOnly
	}

	body := cmd.Body
	if cmd.Edit {
		edited, err := editText(body)
		if err != nil {
			return err
		}
		body = edited
	}

	return runSubmission(ctx, log, cl, store, stash, submissionOptions{
		Mode:             mode,
		Target:           cmd.Bookmark,
		Remote:           global.Remote,
		IncludeUntracked: cmd.All || cmd.IncludeUntracked,
		Draft:            cmd.Draft,
		Publish:          cmd.Publish,
		Body:             body,
		DryRun:           cmd.DryRun,
	})
}
