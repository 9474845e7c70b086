package gitlab

import (
	"context"
	"fmt"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.ryu.dev/ryu/internal/forge"
)

// _listNotesPageSize limits how many notes are scanned per page when
// searching for the marker comment. GitLab has no server-side filter
// on note contents, and the stack comment is almost always among the
// first few notes on a recently-touched MR.
const _listNotesPageSize = 20

// UpsertStackComment creates or updates the stack-visualization note
// on the MR's discussion thread, found across runs by marker.
func (s *Service) UpsertStackComment(ctx context.Context, id forge.PRID, marker, body string) error {
	mrID, ok := id.(MRID)
	if !ok {
		return fmt.Errorf("gitlab: unexpected PR id type %T", id)
	}

	listOpts := &gitlab.ListMergeRequestNotesOptions{
		Sort:        gitlab.Ptr("asc"),
		ListOptions: gitlab.ListOptions{PerPage: _listNotesPageSize},
	}
	for page := 1; ; page++ {
		listOpts.Page = page
		notes, resp, err := s.client.Notes.ListMergeRequestNotes(s.projectID, int(mrID), listOpts, gitlab.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("list notes on !%d: %w", int(mrID), err)
		}

		for _, note := range notes {
			if !strings.Contains(note.Body, marker) {
				continue
			}
			if note.Body == body {
				return nil
			}
			_, _, err := s.client.Notes.UpdateMergeRequestNote(s.projectID, int(mrID), note.ID,
				&gitlab.UpdateMergeRequestNoteOptions{Body: &body},
				gitlab.WithContext(ctx),
			)
			if err != nil {
				return fmt.Errorf("update stack comment on !%d: %w", int(mrID), err)
			}
			return nil
		}

		if page >= resp.TotalPages {
			break
		}
	}

	_, _, err := s.client.Notes.CreateMergeRequestNote(s.projectID, int(mrID),
		&gitlab.CreateMergeRequestNoteOptions{Body: &body},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create stack comment on !%d: %w", int(mrID), err)
	}
	return nil
}
