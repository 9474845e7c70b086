// Package forgetest provides an in-memory fake [forge.Service] for
// tests that need behavioral fidelity (PR numbering, base retargeting,
// comment upsert-by-marker) rather than just call recording.
package forgetest

import (
	"context"
	"fmt"
	"strings"

	"go.ryu.dev/ryu/internal/forge"
)

type prID int

func (id prID) String() string { return fmt.Sprintf("%d", int(id)) }

// Service is a fake forge.Service backed by an in-memory PR set.
//
// It is not safe for concurrent use.
type Service struct {
	SupportsDraft bool

	prs    map[prID]*forge.PullRequest
	byHead map[string]prID
	nextID int

	// Comments records the last comment body upserted per PR, keyed
	// by marker.
	Comments map[prID]map[string]string
}

var _ forge.Service = (*Service)(nil)

// New builds an empty fake forge.
func New() *Service {
	return &Service{
		SupportsDraft: true,
		prs:           make(map[prID]*forge.PullRequest),
		byHead:        make(map[string]prID),
		Comments:      make(map[prID]map[string]string),
	}
}

// Seed registers an existing PR, as if it had been created on a prior
// run, and returns its ID for use in test setup.
func (s *Service) Seed(pr forge.PullRequest) forge.PRID {
	s.nextID++
	id := prID(s.nextID)
	pr.ID = id
	pr.Number = int(id)
	s.prs[id] = &pr
	s.byHead[pr.Head] = id
	return id
}

func (s *Service) FindPRByHead(_ context.Context, head string, opts forge.FindPRByHeadOptions) (*forge.PullRequest, error) {
	id, ok := s.byHead[head]
	if !ok {
		return nil, nil
	}
	pr := s.prs[id]
	if opts.State != 0 && pr.State != opts.State {
		return nil, nil
	}
	cp := *pr
	return &cp, nil
}

func (s *Service) GetPR(_ context.Context, id forge.PRID) (*forge.PullRequest, error) {
	pr, ok := s.prs[id.(prID)]
	if !ok {
		return nil, fmt.Errorf("forgetest: no PR %v", id)
	}
	cp := *pr
	return &cp, nil
}

func (s *Service) CreatePR(_ context.Context, req forge.CreatePRRequest) (*forge.PullRequest, error) {
	if _, exists := s.byHead[req.Head]; exists {
		return nil, fmt.Errorf("forgetest: PR for head %q already exists", req.Head)
	}
	s.nextID++
	id := prID(s.nextID)
	pr := &forge.PullRequest{
		ID:     id,
		Number: int(id),
		URL:    fmt.Sprintf("https://forge.test/pr/%d", int(id)),
		Head:   req.Head,
		Base:   req.Base,
		Title:  req.Title,
		Body:   req.Body,
		State:  forge.StateOpen,
		Draft:  req.Draft,
	}
	s.prs[id] = pr
	s.byHead[req.Head] = id
	cp := *pr
	return &cp, nil
}

func (s *Service) UpdatePRBase(_ context.Context, id forge.PRID, base string) error {
	pr, ok := s.prs[id.(prID)]
	if !ok {
		return fmt.Errorf("forgetest: no PR %v", id)
	}
	pr.Base = base
	return nil
}

func (s *Service) PublishPR(_ context.Context, id forge.PRID) error {
	if !s.SupportsDraft {
		return forge.ErrCapabilityUnsupported
	}
	pr, ok := s.prs[id.(prID)]
	if !ok {
		return fmt.Errorf("forgetest: no PR %v", id)
	}
	pr.Draft = false
	return nil
}

func (s *Service) UpsertStackComment(_ context.Context, id forge.PRID, marker, body string) error {
	pid := id.(prID)
	if _, ok := s.prs[pid]; !ok {
		return fmt.Errorf("forgetest: no PR %v", id)
	}
	if s.Comments[pid] == nil {
		s.Comments[pid] = make(map[string]string)
	}
	if !strings.Contains(body, marker) {
		return fmt.Errorf("forgetest: comment body missing marker %q", marker)
	}
	s.Comments[pid][marker] = body
	return nil
}

func (s *Service) Capabilities(context.Context) (forge.Capabilities, error) {
	return forge.Capabilities{Draft: s.SupportsDraft}, nil
}

func (s *Service) PRIDFromNumber(number int) forge.PRID {
	return prID(number)
}
