package models

// ChangelistStatus defines the Perforce changelist states this tool cares about.
type ChangelistStatus string

const (
	ChangePending   ChangelistStatus = "pending"
	ChangeSubmitted ChangelistStatus = "submitted"
	ChangeShelved   ChangelistStatus = "shelved"
)

// Changelist represents one Perforce changelist as reported by the
// pending-changes listing. Summary is the truncated one-line description
// from the listing; the full description is fetched separately on demand.
type Changelist struct {
	Number  int              `json:"number"`
	Summary string           `json:"summary,omitempty"`
	Status  ChangelistStatus `json:"status,omitempty"`
}
