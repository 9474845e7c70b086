package plan

// Constraint orders two steps relative to each other. Constraint is a
// closed sum type: the only implementations are the types in this
// file, enforced by the unexported marker method.
type Constraint interface {
	constraint()
}

// PushOrder requires Before's push to land before After's push.
// Emitted between consecutive bookmarks in the same stack so pushes
// happen bottom-to-top, matching the order a reviewer would expect to
// see them land.
type PushOrder struct {
	Before, After PushRef
}

func (PushOrder) constraint() {}

// PushBeforeRetarget requires Push to complete before Update runs.
//
// This is the common case: Update is retargeting a PR's base onto a
// bookmark that Push is putting on the remote for the first time (or
// moving) in this same run, and the forge must see the base branch
// before it will accept it as a PR's base.
type PushBeforeRetarget struct {
	Push   PushRef
	Update UpdateRef
}

func (PushBeforeRetarget) constraint() {}

// RetargetBeforePush is PushBeforeRetarget's inverse, used only for
// the stack-reordering ("swap") case: Update is retargeting a PR away
// from a bookmark whose commits Push is about to rewrite on the
// remote. Running Update first keeps the PR's diff correct at every
// intermediate state instead of briefly showing the old base's
// soon-to-be-rewritten commits as part of the PR.
type RetargetBeforePush struct {
	Update UpdateRef
	Push   PushRef
}

func (RetargetBeforePush) constraint() {}

// PushBeforeCreate requires Push to complete before Create runs: a PR
// cannot be opened against a head branch that doesn't exist on the
// remote yet.
type PushBeforeCreate struct {
	Push   PushRef
	Create CreateRef
}

func (PushBeforeCreate) constraint() {}

// CreateOrder requires Before's PR to be created before After's PR.
// Emitted between consecutive new PRs in the same stack so that a
// freshly created PR always has its base PR already open, and so PR
// numbers are assigned in stack order.
type CreateOrder struct {
	Before, After CreateRef
}

func (CreateOrder) constraint() {}

// CreateBeforePublish requires Create to complete before Publish runs:
// a PR must exist before it can be taken out of draft.
type CreateBeforePublish struct {
	Create  CreateRef
	Publish PublishRef
}

func (CreateBeforePublish) constraint() {}

// UpdateBeforePublish requires Update to complete before Publish runs,
// for the case where a PR's base is changing on the same run it is
// being published.
type UpdateBeforePublish struct {
	Update  UpdateRef
	Publish PublishRef
}

func (UpdateBeforePublish) constraint() {}
