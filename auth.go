package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/rerr"
)

// authCmd manages forge authentication.
type authCmd struct {
	Login  authLoginCmd  `cmd:"" help:"Log in to a forge."`
	Status authStatusCmd `cmd:"" help:"Show current login status."`
	Logout authLogoutCmd `cmd:"" help:"Log out of a forge."`

	Forge string `help:"Forge to authenticate against." placeholder:"github|gitlab"`
}

// AfterApply resolves the target forge factory once, from either the
// explicit --forge flag or the current remote's URL, and makes it
// available to every auth subcommand.
func (c *authCmd) AfterApply(ctx context.Context, kctx *kong.Context, cl jj.Client, global *globalOptions) error {
	f, err := resolveForgeFactory(ctx, cl, global.Remote, c.Forge)
	if err != nil {
		return err
	}
	kctx.BindTo(f, (*forge.Factory)(nil))
	return nil
}

// resolveForgeFactory resolves a forge factory by explicit id, falling
// back to matching the named remote's URL when id is empty.
func resolveForgeFactory(ctx context.Context, cl jj.Client, remote, id string) (forge.Factory, error) {
	if id != "" {
		f, ok := forge.Lookup(id)
		if !ok {
			return nil, rerr.New(rerr.UserInput, "unknown forge %q; supported: %v", id, forge.IDs())
		}
		return f, nil
	}

	remoteURL, err := cl.RemoteURL(ctx, remote)
	if err != nil {
		return nil, rerr.Wrap(rerr.Vcs, fmt.Errorf("resolve remote %q: %w", remote, err))
	}
	f, ok := forge.MatchURL(remoteURL)
	if !ok {
		return nil, rerr.New(rerr.UserInput, "no forge registered for remote %q (%s); pass --forge explicitly", remote, remoteURL)
	}
	return f, nil
}
