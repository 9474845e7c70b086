package github

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
	"go.ryu.dev/ryu/internal/forge"
)

type prFragment struct {
	ID      githubv4.ID
	Number  githubv4.Int
	URL     githubv4.URI
	Title   githubv4.String
	Body    githubv4.String
	IsDraft githubv4.Boolean
	State   githubv4.PullRequestState
	BaseRefName githubv4.String `graphql:"baseRefName"`
	HeadRefName githubv4.String `graphql:"headRefName"`
}

func (f prFragment) toPullRequest(owner, repo string) *forge.PullRequest {
	return &forge.PullRequest{
		ID:     &PRID{Number: int(f.Number), GQLID: f.ID},
		Number: int(f.Number),
		URL:    f.URL.String(),
		Head:   string(f.HeadRefName),
		Base:   string(f.BaseRefName),
		Title:  string(f.Title),
		Body:   string(f.Body),
		State:  toForgeState(f.State),
		Draft:  bool(f.IsDraft),
	}
}

func toForgeState(s githubv4.PullRequestState) forge.State {
	switch s {
	case githubv4.PullRequestStateOpen:
		return forge.StateOpen
	case githubv4.PullRequestStateMerged:
		return forge.StateMerged
	case githubv4.PullRequestStateClosed:
		return forge.StateClosed
	default:
		return 0
	}
}

// GetPR fetches a single PR by number, and records its GraphQL node
// ID in id as a side effect.
func (s *Service) GetPR(ctx context.Context, id forge.PRID) (*forge.PullRequest, error) {
	pid, ok := id.(*PRID)
	if !ok {
		return nil, fmt.Errorf("github: unexpected PR id type %T", id)
	}

	var q struct {
		Repository struct {
			PullRequest prFragment `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}
	if err := s.gh4.Query(ctx, &q, map[string]any{
		"owner":  githubv4.String(s.owner),
		"repo":   githubv4.String(s.repo),
		"number": githubv4.Int(pid.Number),
	}); err != nil {
		return nil, fmt.Errorf("get pull request #%d: %w", pid.Number, err)
	}

	pid.GQLID = q.Repository.PullRequest.ID
	return q.Repository.PullRequest.toPullRequest(s.owner, s.repo), nil
}

// FindPRByHead finds the (at most one) PR whose head branch matches
// head, restricted to opts.State if set.
func (s *Service) FindPRByHead(ctx context.Context, head string, opts forge.FindPRByHeadOptions) (*forge.PullRequest, error) {
	var states []githubv4.PullRequestState
	if opts.State != 0 {
		states = []githubv4.PullRequestState{fromForgeState(opts.State)}
	} else {
		states = []githubv4.PullRequestState{
			githubv4.PullRequestStateOpen,
			githubv4.PullRequestStateMerged,
			githubv4.PullRequestStateClosed,
		}
	}

	var q struct {
		Repository struct {
			PullRequests struct {
				Nodes []prFragment
			} `graphql:"pullRequests(headRefName: $head, states: $states, first: 1)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}
	if err := s.gh4.Query(ctx, &q, map[string]any{
		"owner":  githubv4.String(s.owner),
		"repo":   githubv4.String(s.repo),
		"head":   githubv4.String(head),
		"states": states,
	}); err != nil {
		return nil, fmt.Errorf("find pull request for head %q: %w", head, err)
	}

	nodes := q.Repository.PullRequests.Nodes
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0].toPullRequest(s.owner, s.repo), nil
}

func fromForgeState(st forge.State) githubv4.PullRequestState {
	switch st {
	case forge.StateMerged:
		return githubv4.PullRequestStateMerged
	case forge.StateClosed:
		return githubv4.PullRequestStateClosed
	default:
		return githubv4.PullRequestStateOpen
	}
}

// resolveGQLID ensures id.GQLID is populated, fetching the PR by
// number if it was built from a cached PR number rather than a
// query/mutation response.
func (s *Service) resolveGQLID(ctx context.Context, id *PRID) (githubv4.ID, error) {
	if id.GQLID != nil {
		return id.GQLID, nil
	}
	if _, err := s.GetPR(ctx, id); err != nil {
		return nil, err
	}
	return id.GQLID, nil
}
