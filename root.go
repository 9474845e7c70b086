package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
	"go.ryu.dev/ryu/internal/track"
)

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	Remote string `name:"remote" default:"origin" config:"remote" help:"Remote to submit against."`
}

// rootCmd is ryu's top-level command grammar.
type rootCmd struct {
	globalOptions

	Verbose bool `short:"v" help:"Enable verbose (debug) logging."`
	JSON    bool `help:"Accepted for compatibility; has no effect, output is always human-readable text."`

	Submit  submitCmd  `cmd:"" help:"Submit a bookmark, and its stack, as pull requests."`
	Sync    syncCmd    `cmd:"" help:"Bring every tracked pull request up to date."`
	Track   trackCmd   `cmd:"" help:"Start tracking bookmarks for submission."`
	Untrack untrackCmd `cmd:"" help:"Stop tracking bookmarks."`
	Stacks  stacksCmd  `cmd:"" help:"Show detected stacks and their submission state."`
	Auth    authCmd    `cmd:"" help:"Manage forge authentication."`

	Version kong.VersionFlag `help:"Print version information and quit."`
}

// AfterApply wires together the dependencies every subcommand needs,
// once, after flags are parsed but before any command Run executes.
func (cmd *rootCmd) AfterApply(ctx context.Context, kctx *kong.Context, log *silog.Logger) error {
	if cmd.Verbose {
		log.SetLevel(silog.LevelDebug)
	}

	wd, err := os.Getwd()
	if err != nil {
		return rerr.Wrap(rerr.Internal, fmt.Errorf("get working directory: %w", err))
	}

	cl := jj.New(log, wd)
	root, err := cl.Root(ctx)
	if err != nil {
		return rerr.Wrap(rerr.Vcs, fmt.Errorf("not inside a jj workspace: %w", err))
	}

	dataDir := filepath.Join(root, ".jj", "repo", "ryu")
	store := track.Open(dataDir)

	stash := &secret.FallbackStash{
		Primary: &secret.Keyring{},
		Secondary: &secret.InsecureStash{
			Path: filepath.Join(dataDir, "secrets.json"),
			Log:  log,
		},
	}

	kctx.BindTo(cl, (*jj.Client)(nil))
	kctx.Bind(store)
	kctx.BindTo(stash, (*secret.Stash)(nil))
	kctx.Bind(&cmd.globalOptions)
	return nil
}
