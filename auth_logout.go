package main

import (
	"context"

	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
)

// authLogoutCmd removes a forge's stored authentication token.
type authLogoutCmd struct{}

func (*authLogoutCmd) Run(_ context.Context, log *silog.Logger, stash secret.Stash, f forge.Factory) error {
	if err := f.ClearAuthenticationToken(stash); err != nil {
		return rerr.Wrap(rerr.Internal, err)
	}
	log.Infof("%s: logged out", f.ID())
	return nil
}
