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

// syncCmd brings every already-tracked bookmark up to date: it pushes
// bookmarks that moved and retargets pull requests whose base changed,
// without picking a target bookmark and without creating any new pull
// requests.
type syncCmd struct {
	Publish bool `negatable:"" default:"true" config:"publish" help:"Publish draft pull requests that were previously left as drafts."`
	DryRun  bool `short:"n" help:"Print what would be synced without syncing it."`
}

func (*syncCmd) Help() string {
	return text.Dedent(`
		Every bookmark ryu is already tracking is brought up to date:
		moved bookmarks are pushed, and pull requests whose base
		bookmark changed are retargeted. Unlike "ryu submit", this
		never opens a pull request for a bookmark that doesn't
		already have one.
	`)
}

func (cmd *syncCmd) Run(ctx context.Context, log *silog.Logger, cl jj.Client, store *track.Store, stash secret.Stash, global *globalOptions) error {
	return runSubmission(ctx, log, cl, store, stash, submissionOptions{
		Mode:    analyze.ModeUpdateOnly,
		Remote:  global.Remote,
		Publish: cmd.Publish,
		DryRun:  cmd.DryRun,
	})
}
