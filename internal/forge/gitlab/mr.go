package gitlab

import (
	"context"
	"fmt"
	"regexp"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.ryu.dev/ryu/internal/forge"
)

// GitLab tracks draft status as a prefix on the merge request's title.
// https://docs.gitlab.com/ee/user/project/merge_requests/drafts.html#mark-merge-requests-as-drafts
var _draftRegex = regexp.MustCompile(`(?i)^\s*(\[Draft]|Draft:|\(Draft\))\s*`)

const _draftPrefix = "Draft:"

func withDraftPrefix(title string) string {
	if _draftRegex.MatchString(title) {
		return title
	}
	return _draftPrefix + " " + title
}

func withoutDraftPrefix(title string) string {
	return _draftRegex.ReplaceAllString(title, "")
}

func toPullRequest(mr *gitlab.BasicMergeRequest) *forge.PullRequest {
	return &forge.PullRequest{
		ID:     MRID(mr.IID),
		Number: mr.IID,
		URL:    mr.WebURL,
		Head:   mr.SourceBranch,
		Base:   mr.TargetBranch,
		Title:  withoutDraftPrefix(mr.Title),
		Body:   mr.Description,
		State:  toForgeState(mr.State),
		Draft:  mr.Draft || _draftRegex.MatchString(mr.Title),
	}
}

func toPullRequestFromFull(mr *gitlab.MergeRequest) *forge.PullRequest {
	return toPullRequest(&mr.BasicMergeRequest)
}

func toForgeState(s string) forge.State {
	switch s {
	case "opened":
		return forge.StateOpen
	case "merged":
		return forge.StateMerged
	case "closed", "locked":
		return forge.StateClosed
	default:
		return 0
	}
}

func fromForgeState(s forge.State) string {
	switch s {
	case forge.StateMerged:
		return "merged"
	case forge.StateClosed:
		return "closed"
	default:
		return "opened"
	}
}

// GetPR fetches a single MR by IID.
func (s *Service) GetPR(ctx context.Context, id forge.PRID) (*forge.PullRequest, error) {
	mrID, ok := id.(MRID)
	if !ok {
		return nil, fmt.Errorf("gitlab: unexpected PR id type %T", id)
	}
	mr, _, err := s.client.MergeRequests.GetMergeRequest(s.projectID, int(mrID), nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get merge request !%d: %w", int(mrID), err)
	}
	return toPullRequestFromFull(mr), nil
}

// FindPRByHead finds the (at most one) merge request whose source
// branch matches head.
func (s *Service) FindPRByHead(ctx context.Context, head string, opts forge.FindPRByHeadOptions) (*forge.PullRequest, error) {
	listOpts := &gitlab.ListProjectMergeRequestsOptions{
		SourceBranch: gitlab.Ptr(head),
	}
	if opts.State != 0 {
		listOpts.State = gitlab.Ptr(fromForgeState(opts.State))
	}

	mrs, _, err := s.client.MergeRequests.ListProjectMergeRequests(s.projectID, listOpts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("find merge request for head %q: %w", head, err)
	}
	if len(mrs) == 0 {
		return nil, nil
	}
	return toPullRequest(mrs[0]), nil
}

// CreatePR opens a new merge request. req.Head must already be pushed.
func (s *Service) CreatePR(ctx context.Context, req forge.CreatePRRequest) (*forge.PullRequest, error) {
	title := req.Title
	if req.Draft {
		title = withDraftPrefix(title)
	}

	createOpts := &gitlab.CreateMergeRequestOptions{
		Title:        &title,
		TargetBranch: &req.Base,
		SourceBranch: &req.Head,
	}
	if req.Body != "" {
		createOpts.Description = &req.Body
	}

	mr, _, err := s.client.MergeRequests.CreateMergeRequest(s.projectID, createOpts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create merge request: %w", err)
	}

	s.log.Debug("Created merge request", "mr", mr.IID, "url", mr.WebURL)
	return toPullRequestFromFull(mr), nil
}

// UpdatePRBase retargets an existing MR's target branch.
func (s *Service) UpdatePRBase(ctx context.Context, id forge.PRID, base string) error {
	mrID, ok := id.(MRID)
	if !ok {
		return fmt.Errorf("gitlab: unexpected PR id type %T", id)
	}
	_, _, err := s.client.MergeRequests.UpdateMergeRequest(s.projectID, int(mrID),
		&gitlab.UpdateMergeRequestOptions{TargetBranch: &base},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("update merge request !%d target branch to %q: %w", int(mrID), base, err)
	}
	return nil
}

// PublishPR removes the draft prefix from the MR's title.
func (s *Service) PublishPR(ctx context.Context, id forge.PRID) error {
	mrID, ok := id.(MRID)
	if !ok {
		return fmt.Errorf("gitlab: unexpected PR id type %T", id)
	}

	mr, _, err := s.client.MergeRequests.GetMergeRequest(s.projectID, int(mrID), nil, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("get merge request !%d for publish: %w", int(mrID), err)
	}
	if !mr.Draft && !_draftRegex.MatchString(mr.Title) {
		return nil
	}

	title := withoutDraftPrefix(mr.Title)
	_, _, err = s.client.MergeRequests.UpdateMergeRequest(s.projectID, int(mrID),
		&gitlab.UpdateMergeRequestOptions{Title: &title},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("publish merge request !%d: %w", int(mrID), err)
	}
	return nil
}
