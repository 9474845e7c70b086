package main

import (
	"context"

	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
)

// authLoginCmd logs in to a forge and persists the resulting token.
type authLoginCmd struct {
	Refresh bool `help:"Force a refresh of the stored authentication token."`
}

func (cmd *authLoginCmd) Run(ctx context.Context, log *silog.Logger, stash secret.Stash, f forge.Factory) error {
	if _, err := f.LoadAuthenticationToken(stash); err == nil && !cmd.Refresh {
		return rerr.New(rerr.UserInput, "%s: already logged in; pass --refresh to force a new login", f.ID())
	}

	tok, err := f.AuthenticationFlow(ctx)
	if err != nil {
		return rerr.Wrap(rerr.Forge, err)
	}
	if err := f.SaveAuthenticationToken(stash, tok); err != nil {
		return rerr.Wrap(rerr.Internal, err)
	}

	log.Infof("%s: successfully logged in", f.ID())
	return nil
}
