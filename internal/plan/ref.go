package plan

// PushRef identifies a PushStep by the bookmark it pushes.
//
// Refs are distinct wrapper types per step kind, not bare strings, so
// the compiler rejects `PushBeforeRetarget{Push: someUpdateRef}` —
// a constraint built from the wrong kind of reference fails to build,
// it doesn't fail at resolution time.
type PushRef struct{ bookmark string }

// NewPushRef builds a reference to bookmark's push step.
func NewPushRef(bookmark string) PushRef { return PushRef{bookmark} }

// Bookmark returns the referenced bookmark's name.
func (r PushRef) Bookmark() string { return r.bookmark }

// UpdateRef identifies an UpdateBaseStep by the bookmark it retargets.
type UpdateRef struct{ bookmark string }

// NewUpdateRef builds a reference to bookmark's update-base step.
func NewUpdateRef(bookmark string) UpdateRef { return UpdateRef{bookmark} }

// Bookmark returns the referenced bookmark's name.
func (r UpdateRef) Bookmark() string { return r.bookmark }

// CreateRef identifies a CreatePrStep by the bookmark it creates a PR for.
type CreateRef struct{ bookmark string }

// NewCreateRef builds a reference to bookmark's create-PR step.
func NewCreateRef(bookmark string) CreateRef { return CreateRef{bookmark} }

// Bookmark returns the referenced bookmark's name.
func (r CreateRef) Bookmark() string { return r.bookmark }

// PublishRef identifies a PublishPrStep by the bookmark whose PR it publishes.
type PublishRef struct{ bookmark string }

// NewPublishRef builds a reference to bookmark's publish-PR step.
func NewPublishRef(bookmark string) PublishRef { return PublishRef{bookmark} }

// Bookmark returns the referenced bookmark's name.
func (r PublishRef) Bookmark() string { return r.bookmark }
