package gitlab

import "fmt"

// MRID identifies a GitLab merge request by its project-scoped IID
// (the number shown in the UI, e.g. "!42").
type MRID int

func (id MRID) String() string { return fmt.Sprintf("!%d", int(id)) }
