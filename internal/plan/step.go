// Package plan turns a selected [analyze.Scope] into an ordered,
// dependency-resolved sequence of execution steps: the Execution Step
// Model. Building a plan never talks to jj or the forge; it is a pure
// function of its inputs, which is what makes plans deterministic and
// property-testable.
package plan

import "fmt"

// Kind identifies what a Step does. Its numeric value doubles as the
// deterministic tie-break priority among simultaneously ready steps
// during scheduling: lower Kind values are scheduled first when two
// steps have no ordering constraint between them.
type Kind int

const (
	// KindUpdateBase retargets an existing PR's base branch.
	KindUpdateBase Kind = iota
	// KindPush pushes a bookmark to the remote.
	KindPush
	// KindCreatePr opens a new PR for a bookmark already on the remote.
	KindCreatePr
	// KindPublishPr takes a draft PR out of draft state.
	KindPublishPr
)

func (k Kind) String() string {
	switch k {
	case KindUpdateBase:
		return "update-base"
	case KindPush:
		return "push"
	case KindCreatePr:
		return "create-pr"
	case KindPublishPr:
		return "publish-pr"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Step is one unit of work in a submission plan.
type Step interface {
	Kind() Kind

	// Bookmark is the bookmark this step acts on. Used as the final
	// tie-break key during scheduling.
	Bookmark() string

	// StackPosition is this bookmark's index in the stack, bottom of
	// stack first. Used as the middle tie-break key during scheduling.
	StackPosition() int
}

// PushStep pushes Bookmark to Remote.
type PushStep struct {
	BookmarkName string
	Position     int

	Remote string

	// AllowNew permits the remote to create the bookmark if absent.
	AllowNew bool
}

func (s *PushStep) Kind() Kind            { return KindPush }
func (s *PushStep) Bookmark() string      { return s.BookmarkName }
func (s *PushStep) StackPosition() int    { return s.Position }

// UpdateBaseStep retargets Bookmark's existing PR onto NewBase.
type UpdateBaseStep struct {
	BookmarkName string
	Position     int

	NewBase string
}

func (s *UpdateBaseStep) Kind() Kind         { return KindUpdateBase }
func (s *UpdateBaseStep) Bookmark() string   { return s.BookmarkName }
func (s *UpdateBaseStep) StackPosition() int { return s.Position }

// CreatePrStep opens a new PR for Bookmark against Base.
type CreatePrStep struct {
	BookmarkName string
	Position     int

	Base  string
	Draft bool
	Title string
	Body  string
}

func (s *CreatePrStep) Kind() Kind         { return KindCreatePr }
func (s *CreatePrStep) Bookmark() string   { return s.BookmarkName }
func (s *CreatePrStep) StackPosition() int { return s.Position }

// PublishPrStep takes Bookmark's PR out of draft state.
type PublishPrStep struct {
	BookmarkName string
	Position     int
}

func (s *PublishPrStep) Kind() Kind         { return KindPublishPr }
func (s *PublishPrStep) Bookmark() string   { return s.BookmarkName }
func (s *PublishPrStep) StackPosition() int { return s.Position }
