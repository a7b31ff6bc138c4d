package models

// Mapping pairs a commit with the changelist it will be shelved to.
// Changelist 0 means "no changelist resolved". Explicit marks mappings
// supplied by the caller as ref=CL tokens, as opposed to ones inferred
// by description matching. A mapping never outlives one invocation.
type Mapping struct {
	Commit     Commit `json:"commit"`
	Changelist int    `json:"changelist,omitempty"`
	Explicit   bool   `json:"explicit,omitempty"`
}

// HasChangelist reports whether a changelist is associated with the commit.
func (m Mapping) HasChangelist() bool {
	return m.Changelist > 0
}
