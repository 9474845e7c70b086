package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/shurcooL/githubv4"
	"go.ryu.dev/ryu/internal/forge"
	"go.ryu.dev/ryu/internal/graphqlutil"
)

// CreatePR opens a new pull request. req.Head must already be pushed.
func (s *Service) CreatePR(ctx context.Context, req forge.CreatePRRequest) (*forge.PullRequest, error) {
	var m struct {
		CreatePullRequest struct {
			PullRequest prFragment `graphql:"pullRequest"`
		} `graphql:"createPullRequest(input: $input)"`
	}

	input := githubv4.CreatePullRequestInput{
		RepositoryID: s.repoID,
		Title:        githubv4.String(req.Title),
		BaseRefName:  githubv4.String(req.Base),
		HeadRefName:  githubv4.String(req.Head),
	}
	if req.Body != "" {
		body := githubv4.String(req.Body)
		input.Body = &body
	}
	if req.Draft {
		input.Draft = githubv4.NewBoolean(true)
	}

	if err := s.gh4.Mutate(ctx, &m, input, nil); err != nil {
		if errors.Is(err, graphqlutil.ErrUnprocessable) {
			return nil, fmt.Errorf("create pull request: base %q may not be pushed yet: %w", req.Base, err)
		}
		return nil, fmt.Errorf("create pull request: %w", err)
	}

	s.log.Debug("Created pull request",
		"pr", int(m.CreatePullRequest.PullRequest.Number),
		"url", m.CreatePullRequest.PullRequest.URL.String())

	return m.CreatePullRequest.PullRequest.toPullRequest(s.owner, s.repo), nil
}

// UpdatePRBase retargets an existing PR's base branch.
func (s *Service) UpdatePRBase(ctx context.Context, id forge.PRID, base string) error {
	pid, ok := id.(*PRID)
	if !ok {
		return fmt.Errorf("github: unexpected PR id type %T", id)
	}
	gqlID, err := s.resolveGQLID(ctx, pid)
	if err != nil {
		return fmt.Errorf("resolve pull request id: %w", err)
	}

	var m struct {
		UpdatePullRequest struct {
			PullRequest struct {
				ID githubv4.ID
			}
		} `graphql:"updatePullRequest(input: $input)"`
	}
	input := githubv4.UpdatePullRequestInput{
		PullRequestID: gqlID,
		BaseRefName:   githubv4.NewString(githubv4.String(base)),
	}
	if err := s.gh4.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("update pull request #%d base to %q: %w", pid.Number, base, err)
	}
	return nil
}

// PublishPR marks a draft PR as ready for review.
func (s *Service) PublishPR(ctx context.Context, id forge.PRID) error {
	pid, ok := id.(*PRID)
	if !ok {
		return fmt.Errorf("github: unexpected PR id type %T", id)
	}
	gqlID, err := s.resolveGQLID(ctx, pid)
	if err != nil {
		return fmt.Errorf("resolve pull request id: %w", err)
	}

	var m struct {
		MarkPullRequestReadyForReview struct {
			PullRequest struct {
				ID githubv4.ID
			}
		} `graphql:"markPullRequestReadyForReview(input: $input)"`
	}
	input := githubv4.MarkPullRequestReadyForReviewInput{
		PullRequestID: gqlID,
	}
	if err := s.gh4.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("publish pull request #%d: %w", pid.Number, err)
	}
	return nil
}
