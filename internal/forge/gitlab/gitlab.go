// Package gitlab implements [forge.Factory] and [forge.Service] for
// repositories hosted on gitlab.com or a self-managed GitLab instance.
package gitlab

import (
	"cmp"
	"context"
	"fmt"
	"net/url"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/forge/forgeurl"
	"go.ryu.dev/ryu/internal/silog"
)

// DefaultURL is the default base URL for GitLab.
const DefaultURL = "https://gitlab.com"

// Factory builds [Service]s for gitlab.com or a self-managed GitLab
// instance, all sharing one base URL.
type Factory struct {
	// URL is the base URL for GitLab. Defaults to [DefaultURL].
	URL string

	Log *silog.Logger
}

var _ forge.Factory = (*Factory)(nil)

func (f *Factory) url() string { return cmp.Or(f.URL, DefaultURL) }

func (f *Factory) ID() string { return "gitlab" }

// CLIPlugin returns nil: GitLab's base URL comes from Factory.URL and
// its token from GITLAB_TOKEN or `glab auth token`, not CLI flags.
func (f *Factory) CLIPlugin() any { return nil }

func (f *Factory) MatchURL(remoteURL string) bool {
	_, _, ok := f.repoInfo(remoteURL)
	return ok
}

func (f *Factory) repoInfo(remoteURL string) (owner, repo string, ok bool) {
	baseURL, err := url.Parse(f.url())
	if err != nil {
		return "", "", false
	}
	u, err := forgeurl.Parse(remoteURL)
	if err != nil {
		return "", "", false
	}
	forgeurl.StripDefaultPort(baseURL, u)
	if !forgeurl.MatchesHost(baseURL, u) {
		return "", "", false
	}
	owner, repo, ok = forgeurl.ExtractPath(u.Path)
	return owner, repo, ok
}

func (f *Factory) logger() *silog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return silog.Nop()
}

// Open builds a [Service] bound to the project at remoteURL.
func (f *Factory) Open(ctx context.Context, tok forge.AuthenticationToken, remoteURL string) (forge.Service, error) {
	owner, repo, ok := f.repoInfo(remoteURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a GitLab URL", forge.ErrUnsupportedURL, remoteURL)
	}

	glt, ok := tok.(*AuthenticationToken)
	if !ok {
		return nil, fmt.Errorf("gitlab: unexpected authentication token type %T", tok)
	}

	client, err := gitlab.NewClient(glt.AccessToken, gitlab.WithBaseURL(f.url()))
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return newService(ctx, owner, repo, f.logger(), client)
}

// Service implements [forge.Service] for a single GitLab project.
type Service struct {
	client *gitlab.Client
	log    *silog.Logger

	owner, repo string
	projectID   int
}

var _ forge.Service = (*Service)(nil)

func newService(ctx context.Context, owner, repo string, log *silog.Logger, client *gitlab.Client) (*Service, error) {
	project, _, err := client.Projects.GetProject(owner+"/"+repo, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &Service{
		client:    client,
		log:       log,
		owner:     owner,
		repo:      repo,
		projectID: project.ID,
	}, nil
}

// Capabilities reports that draft/publish is supported: GitLab has
// tracked merge request draft status natively (not just by title
// prefix) since 14.0, which is old enough that ryu does not attempt
// to probe for it.
func (s *Service) Capabilities(context.Context) (forge.Capabilities, error) {
	return forge.Capabilities{Draft: true}, nil
}

func (s *Service) PRIDFromNumber(number int) forge.PRID {
	return MRID(number)
}
