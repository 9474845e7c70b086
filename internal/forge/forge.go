// Package forge provides an abstraction layer between ryu
// and the underlying code forge (GitHub, GitLab, ...).
package forge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.ryu.dev/ryu/internal/secret"
)

var _forgeRegistry sync.Map

// Factory builds a [Service] bound to one remote repository.
//
// A Factory is registered once per forge kind (e.g. "github", "gitlab")
// and is asked to produce a Service for each remote URL ryu needs to
// talk to.
type Factory interface {
	// ID reports a unique identifier for the forge, e.g. "github".
	ID() string

	// CLIPlugin returns a Kong plugin for this forge's flags.
	// Return nil if the forge does not require any extra CLI flags.
	CLIPlugin() any

	// MatchURL reports whether the given remote URL is hosted on this forge.
	MatchURL(remoteURL string) bool

	// Open builds a Service for the repository at remoteURL.
	//
	// This will only be called if MatchURL reports true.
	Open(ctx context.Context, tok AuthenticationToken, remoteURL string) (Service, error)

	// AuthenticationFlow runs the authentication flow for the forge.
	// This may prompt the user, perform network requests, etc.
	AuthenticationFlow(ctx context.Context) (AuthenticationToken, error)

	// SaveAuthenticationToken saves the given authentication token
	// to the secret stash.
	SaveAuthenticationToken(secret.Stash, AuthenticationToken) error

	// LoadAuthenticationToken loads the authentication token
	// from the secret stash.
	LoadAuthenticationToken(secret.Stash) (AuthenticationToken, error)

	// ClearAuthenticationToken removes the authentication token
	// from the secret stash.
	ClearAuthenticationToken(secret.Stash) error
}

// All is an iterator that yields all registered forge factories.
func All(yield func(Factory) bool) {
	_forgeRegistry.Range(func(_, value any) bool {
		return yield(value.(Factory))
	})
}

// IDs returns a sorted list of all registered forge IDs.
func IDs() []string {
	var names []string
	All(func(f Factory) bool {
		names = append(names, f.ID())
		return true
	})
	sort.Strings(names)
	return names
}

// Register registers a forge factory under its ID.
// Returns a function to unregister it.
func Register(f Factory) (unregister func()) {
	id := f.ID()
	_forgeRegistry.Store(id, f)
	return func() {
		_forgeRegistry.Delete(id)
	}
}

// Lookup looks up a registered forge factory by its ID.
func Lookup(id string) (Factory, bool) {
	f, ok := _forgeRegistry.Load(id)
	if !ok {
		return nil, false
	}
	return f.(Factory), true
}

// MatchURL attempts to match the given remote URL against a registered forge.
func MatchURL(remoteURL string) (f Factory, ok bool) {
	_forgeRegistry.Range(func(_, value any) (keepGoing bool) {
		candidate := value.(Factory)
		if candidate.MatchURL(remoteURL) {
			f = candidate
			ok = true
			return false
		}
		return true
	})
	return f, ok
}

// ErrUnsupportedURL indicates that the given remote URL
// does not match any registered forge.
var ErrUnsupportedURL = errors.New("unsupported forge URL")

// AuthenticationToken is a secret that results from a successful login.
// It will be persisted in a safe place and re-used for future requests.
//
// Implementations must embed this interface.
type AuthenticationToken interface {
	secret() // marker method
}

// PRID is a forge-specific identifier for a pull (merge) request.
//
// Each forge defines its own concrete PRID type; a Service type-asserts
// the PRID it receives back to that type, so a GitHub PRID accidentally
// passed to a GitLab Service fails fast instead of silently misbehaving.
type PRID interface {
	String() string
}

// PullRequest is a pull (or merge) request as reported by a forge.
type PullRequest struct {
	ID PRID

	// Number is the forge-native display number (e.g. "#42").
	Number int

	URL string

	// Head is the bookmark/branch name the PR is proposed from.
	Head string

	// Base is the bookmark/branch name the PR is proposed against.
	Base string

	Title string
	Body  string

	State State
	Draft bool
}

// State is the current state of a pull request.
type State int

const (
	// StateOpen means the PR is open and awaiting review/merge.
	StateOpen State = iota + 1
	// StateMerged means the PR has been merged.
	StateMerged
	// StateClosed means the PR was closed without merging.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateMerged:
		return "merged"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CreatePRRequest describes a new pull request to open.
//
// The Head branch must already have been pushed to the remote.
type CreatePRRequest struct {
	Head  string // required
	Base  string // required
	Title string // required
	Body  string
	Draft bool
}

// FindPRByHeadOptions filters the search performed by FindPRByHead.
type FindPRByHeadOptions struct {
	// State restricts the search to PRs in this state.
	// Zero value searches all states.
	State State
}

// Service is the narrow contract ryu needs from a forge to submit a
// stack of changes. It is implemented once per forge kind, bound to a
// single remote repository.
type Service interface {
	// FindPRByHead finds the (at most one) PR whose head branch
	// matches head, restricted to opts.State if set (in any state
	// otherwise). Returns nil, nil if none exists.
	FindPRByHead(ctx context.Context, head string, opts FindPRByHeadOptions) (*PullRequest, error)

	// GetPR fetches a single PR by ID.
	GetPR(ctx context.Context, id PRID) (*PullRequest, error)

	// PRIDFromNumber builds a PRID from a forge-native PR number,
	// without a network round trip. Used to resolve a PRID cached
	// from a previous run (pr_cache.toml only persists the number).
	PRIDFromNumber(number int) PRID

	// CreatePR opens a new PR. The head branch must already be pushed.
	CreatePR(ctx context.Context, req CreatePRRequest) (*PullRequest, error)

	// UpdatePRBase retargets an existing PR onto a new base branch.
	UpdatePRBase(ctx context.Context, id PRID, base string) error

	// PublishPR takes a draft PR out of draft state.
	//
	// Implementations may return ErrCapabilityUnsupported if the forge
	// instance does not support draft PRs.
	PublishPR(ctx context.Context, id PRID) error

	// UpsertStackComment creates or updates the stack-visualization
	// comment on the PR, identified across runs by marker.
	//
	// body is the full desired comment body, including the marker.
	UpsertStackComment(ctx context.Context, id PRID, marker, body string) error

	// Capabilities reports what this forge instance supports.
	// Neither the planner nor the executor calls it.
	Capabilities(ctx context.Context) (Capabilities, error)
}

// Capabilities describes what optional operations a Service supports.
//
// Not every forge (or self-managed instance of a forge) supports every
// operation the Execution Step Model can produce. The planner does not
// consult this: draft CreatePr and PublishPr steps are planned
// regardless, and an unsupported one fails when its Service call
// returns an error.
type Capabilities struct {
	// Draft reports whether CreatePR(Draft: true) and PublishPR are
	// both honored by this forge instance.
	Draft bool
}

// ErrCapabilityUnsupported is returned by Service methods that require
// a capability the forge instance does not have.
var ErrCapabilityUnsupported = errors.New("forge does not support this operation")
