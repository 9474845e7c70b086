// Package github implements [forge.Factory] and [forge.Service] for
// repositories hosted on github.com or GitHub Enterprise.
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shurcooL/githubv4"
	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/forge/forgeurl"
	"go.ryu.dev/ryu/internal/graphqlutil"
	"go.ryu.dev/ryu/internal/silog"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the default URL for GitHub.
	DefaultBaseURL = "https://github.com"

	// DefaultAPIURL is the default GraphQL API endpoint for GitHub.
	DefaultAPIURL = "https://api.github.com/graphql"
)

// Factory builds [Service]s for github.com or a GitHub Enterprise
// instance, all sharing one base URL.
type Factory struct {
	// URL is the web URL for GitHub. Defaults to [DefaultBaseURL].
	URL string

	// APIURL is the GraphQL API endpoint. Defaults to [DefaultAPIURL].
	APIURL string

	Log *silog.Logger
}

var _ forge.Factory = (*Factory)(nil)

func (f *Factory) ID() string { return "github" }

// CLIPlugin returns nil: ryu authenticates GitHub via GITHUB_TOKEN or
// `gh auth token`, with no forge-specific flags of its own.
func (f *Factory) CLIPlugin() any { return nil }

func (f *Factory) MatchURL(remoteURL string) bool {
	base := f.URL
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return false
	}
	u, err := forgeurl.Parse(remoteURL)
	if err != nil {
		return false
	}
	forgeurl.StripDefaultPort(baseURL, u)
	return forgeurl.MatchesHost(baseURL, u)
}

func (f *Factory) logger() *silog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return silog.Nop()
}

// Open builds a [Service] bound to the repository at remoteURL.
func (f *Factory) Open(ctx context.Context, tok forge.AuthenticationToken, remoteURL string) (forge.Service, error) {
	u, err := forgeurl.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", forge.ErrUnsupportedURL, err)
	}
	owner, repo, ok := forgeurl.ExtractPath(u.Path)
	if !ok {
		return nil, fmt.Errorf("%w: path %q does not name a GitHub repo", forge.ErrUnsupportedURL, u.Path)
	}

	ght, ok := tok.(*AuthenticationToken)
	if !ok {
		return nil, fmt.Errorf("github: unexpected authentication token type %T", tok)
	}

	apiURL := f.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	httpClient := oauth2.NewClient(ctx, ght.tokenSource())
	httpClient.Transport = graphqlutil.WrapTransport(httpClient.Transport)

	v4 := githubv4.NewEnterpriseClient(apiURL, httpClient)
	v3APIURL, err := restAPIURLFromGraphQL(apiURL)
	if err != nil {
		return nil, fmt.Errorf("derive REST API URL: %w", err)
	}

	return newService(ctx, owner, repo, f.logger(), v4, newGitHubv3Client(httpClient, v3APIURL))
}

// restAPIURLFromGraphQL derives the REST v3 API base from the GraphQL
// endpoint (".../graphql" -> "..."), matching GitHub's and GitHub
// Enterprise's convention of hosting both under the same API host.
func restAPIURLFromGraphQL(graphqlURL string) (*url.URL, error) {
	u, err := url.Parse(graphqlURL)
	if err != nil {
		return nil, err
	}
	u.Path = u.Path[:len(u.Path)-len("/graphql")]
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// Service implements [forge.Service] for a single GitHub repository.
type Service struct {
	owner, repo string
	repoID      githubv4.ID
	log         *silog.Logger
	gh4         *githubv4.Client
	gh3         *githubv3Client
}

var _ forge.Service = (*Service)(nil)

func newService(
	ctx context.Context,
	owner, repo string,
	log *silog.Logger,
	gh4 *githubv4.Client,
	gh3 *githubv3Client,
) (*Service, error) {
	var q struct {
		Repository struct {
			ID githubv4.ID `graphql:"id"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}
	if err := gh4.Query(ctx, &q, map[string]any{
		"owner": githubv4.String(owner),
		"repo":  githubv4.String(repo),
	}); err != nil {
		return nil, fmt.Errorf("get repository ID: %w", err)
	}

	return &Service{
		owner:  owner,
		repo:   repo,
		log:    log,
		gh4:    gh4,
		gh3:    gh3,
		repoID: q.Repository.ID,
	}, nil
}

func (s *Service) Capabilities(context.Context) (forge.Capabilities, error) {
	return forge.Capabilities{Draft: true}, nil
}

func (s *Service) PRIDFromNumber(number int) forge.PRID {
	return &PRID{Number: number}
}
