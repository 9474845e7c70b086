package main

import (
	"context"
	"fmt"

	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/silog"
)

// openForgeService resolves remote's URL against the registered forge
// factories, loads the saved authentication token, and opens a
// [forge.Service] bound to that repository.
func openForgeService(
	ctx context.Context,
	log *silog.Logger,
	stash secret.Stash,
	cl jj.Client,
	remote string,
) (forge.Service, error) {
	remoteURL, err := cl.RemoteURL(ctx, remote)
	if err != nil {
		return nil, rerr.Wrap(rerr.Vcs, fmt.Errorf("resolve remote %q: %w", remote, err))
	}

	factory, ok := forge.MatchURL(remoteURL)
	if !ok {
		return nil, rerr.New(rerr.UserInput, "no forge registered for remote %q (%s); supported: %v", remote, remoteURL, forge.IDs())
	}

	tok, err := factory.LoadAuthenticationToken(stash)
	if err != nil {
		return nil, rerr.New(rerr.UserInput, "%s: not logged in (%v); run `ryu auth login --forge %s`", factory.ID(), err, factory.ID())
	}

	svc, err := factory.Open(ctx, tok, remoteURL)
	if err != nil {
		return nil, rerr.Wrap(rerr.Forge, fmt.Errorf("open %s: %w", factory.ID(), err))
	}

	log.Debug("resolved forge", "forge", factory.ID(), "remote", remote)
	return svc, nil
}
