package models

// Commit identifies a single git commit together with the message text
// used for changelist matching.
type Commit struct {
	SHA     string `json:"sha"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// Short returns the abbreviated commit id used in line output.
func (c Commit) Short() string {
	if len(c.SHA) > 12 {
		return c.SHA[:12]
	}
	return c.SHA
}
