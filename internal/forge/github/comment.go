package github

import (
	"context"
	"fmt"
	"strings"

	"go.ryu.dev/ryu/internal/forge"
)

// UpsertStackComment creates or updates the stack-visualization
// comment on the PR's issue thread, found across runs by the marker
// embedded in body.
func (s *Service) UpsertStackComment(ctx context.Context, id forge.PRID, marker, body string) error {
	pid, ok := id.(*PRID)
	if !ok {
		return fmt.Errorf("github: unexpected PR id type %T", id)
	}

	comments, err := s.gh3.listIssueComments(ctx, s.owner, s.repo, pid.Number)
	if err != nil {
		return fmt.Errorf("list comments on #%d: %w", pid.Number, err)
	}

	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			if c.Body == body {
				return nil
			}
			if err := s.gh3.updateIssueComment(ctx, s.owner, s.repo, c.ID, body); err != nil {
				return fmt.Errorf("update stack comment on #%d: %w", pid.Number, err)
			}
			return nil
		}
	}

	if err := s.gh3.createIssueComment(ctx, s.owner, s.repo, pid.Number, body); err != nil {
		return fmt.Errorf("create stack comment on #%d: %w", pid.Number, err)
	}
	return nil
}
