package github

import (
	"fmt"

	"github.com/shurcooL/githubv4"
)

// PRID identifies a GitHub pull request.
//
// GQLID is populated lazily: PRIDFromNumber leaves it empty, and the
// mutation helpers fill it in via a GetPR round trip the first time
// they need the GraphQL node ID for a PR built from a cached number.
type PRID struct {
	Number int
	GQLID  githubv4.ID
}

func (id *PRID) String() string { return fmt.Sprintf("#%d", id.Number) }
