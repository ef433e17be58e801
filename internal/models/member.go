package models

// Member is one participant in a group's roster.
type Member struct {
	// ID is the unique identifier for the member (UUID format), unique
	// within its group.
	ID string `json:"id"`

	// Name is the member's display name. Never empty after trimming.
	Name string `json:"name"`

	// Phone is optional contact info, kept only for export and sharing.
	Phone string `json:"phone,omitempty"`
}
