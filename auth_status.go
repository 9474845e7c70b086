package main

import (
	"context"
	"errors"

	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
)

// authStatusCmd reports whether the resolved forge is currently
// authenticated. Exits non-zero if it is not.
type authStatusCmd struct{}

func (*authStatusCmd) Help() string {
	return "Exits with a non-zero status if not logged in."
}

func (*authStatusCmd) Run(_ context.Context, log *silog.Logger, stash secret.Stash, f forge.Factory) error {
	if _, err := f.LoadAuthenticationToken(stash); err != nil {
		if errors.Is(err, secret.ErrNotFound) {
			return rerr.New(rerr.UserInput, "%s: not logged in", f.ID())
		}
		return rerr.Wrap(rerr.Internal, err)
	}

	log.Infof("%s: currently logged in", f.ID())
	return nil
}
