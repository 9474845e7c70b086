package github

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
	"golang.org/x/oauth2"
)

// AuthenticationToken is the credential [Factory] persists to the
// secret stash after a successful login.
type AuthenticationToken struct {
	forge.AuthenticationToken

	// GitHubCLI is true if API requests should be authenticated by
	// shelling out to `gh auth token` on every call, rather than a
	// fixed AccessToken.
	GitHubCLI bool `json:"github_cli,omitempty"`

	AccessToken string `json:"access_token,omitempty"`
}

var _ forge.AuthenticationToken = (*AuthenticationToken)(nil)

func (t *AuthenticationToken) tokenSource() oauth2.TokenSource {
	if t.GitHubCLI {
		return &CLITokenSource{}
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: t.AccessToken})
}

// CLITokenSource is an oauth2 token source that shells out to the
// GitHub CLI for a token on every request, instead of caching one.
type CLITokenSource struct {
	execer xec.Execer
}

func (ts *CLITokenSource) Token() (*oauth2.Token, error) {
	ctx := context.Background()
	cmd := xec.Command(ctx, nil, "gh", "auth", "token").WithExecer(ts.execer)
	bs, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("get token from gh CLI: %w", err)
	}
	return &oauth2.Token{AccessToken: strings.TrimSpace(string(bs))}, nil
}

// AuthenticationFlow resolves a GitHub credential without prompting:
// GITHUB_TOKEN if set, otherwise the GitHub CLI's cached token.
//
// ryu has no interactive OAuth flow; it relies on tokens the user has
// already obtained through the environment or `gh auth login`.
func (f *Factory) AuthenticationFlow(ctx context.Context) (forge.AuthenticationToken, error) {
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return &AuthenticationToken{AccessToken: tok}, nil
	}

	ts := &CLITokenSource{}
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("no GITHUB_TOKEN set and `gh auth token` failed: %w", err)
	}
	return &AuthenticationToken{GitHubCLI: true}, nil
}

func (f *Factory) SaveAuthenticationToken(stash secret.Stash, t forge.AuthenticationToken) error {
	ght, ok := t.(*AuthenticationToken)
	if !ok {
		return fmt.Errorf("github: unexpected token type %T", t)
	}
	// For a gh CLI token only the GitHubCLI flag is stored;
	// the gh CLI owns the credential itself.
	bs, err := json.Marshal(ght)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return stash.SaveSecret(f.stashKey(), "token", string(bs))
}

func (f *Factory) LoadAuthenticationToken(stash secret.Stash) (forge.AuthenticationToken, error) {
	data, err := stash.LoadSecret(f.stashKey(), "token")
	if err != nil {
		if errors.Is(err, secret.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load token: %w", err)
	}
	var ght AuthenticationToken
	if err := json.Unmarshal([]byte(data), &ght); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &ght, nil
}

func (f *Factory) ClearAuthenticationToken(stash secret.Stash) error {
	return stash.DeleteSecret(f.stashKey(), "token")
}

func (f *Factory) stashKey() string {
	if f.URL != "" {
		return f.URL
	}
	return DefaultBaseURL
}
