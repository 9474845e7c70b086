package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/secret"
	"go.ryu.dev/ryu/internal/xec"
)

// AuthenticationToken is the credential [Factory] persists to the
// secret stash after a successful login.
type AuthenticationToken struct {
	forge.AuthenticationToken

	// GitLabCLI is true if AccessToken was obtained from `glab auth
	// token` rather than a fixed personal access token.
	GitLabCLI bool `json:"gitlab_cli,omitempty"`

	AccessToken string `json:"access_token,omitempty"`
}

var _ forge.AuthenticationToken = (*AuthenticationToken)(nil)

// AuthenticationFlow resolves a GitLab credential without prompting:
// GITLAB_TOKEN if set, otherwise the GitLab CLI's cached token.
func (f *Factory) AuthenticationFlow(ctx context.Context) (forge.AuthenticationToken, error) {
	if tok := os.Getenv("GITLAB_TOKEN"); tok != "" {
		return &AuthenticationToken{AccessToken: tok}, nil
	}

	tok, err := glabAuthToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("no GITLAB_TOKEN set and `glab auth token` failed: %w", err)
	}
	return &AuthenticationToken{GitLabCLI: true, AccessToken: tok}, nil
}

func glabAuthToken(ctx context.Context) (string, error) {
	out, err := xec.Command(ctx, nil, "glab", "auth", "token").OutputChomp()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (f *Factory) SaveAuthenticationToken(stash secret.Stash, t forge.AuthenticationToken) error {
	glt, ok := t.(*AuthenticationToken)
	if !ok {
		return fmt.Errorf("gitlab: unexpected token type %T", t)
	}
	bs, err := json.Marshal(glt)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return stash.SaveSecret(f.url(), "token", string(bs))
}

func (f *Factory) LoadAuthenticationToken(stash secret.Stash) (forge.AuthenticationToken, error) {
	data, err := stash.LoadSecret(f.url(), "token")
	if err != nil {
		if errors.Is(err, secret.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load token: %w", err)
	}
	var glt AuthenticationToken
	if err := json.Unmarshal([]byte(data), &glt); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &glt, nil
}

func (f *Factory) ClearAuthenticationToken(stash secret.Stash) error {
	return stash.DeleteSecret(f.url(), "token")
}
