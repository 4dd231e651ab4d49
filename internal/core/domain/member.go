package domain

// Member is a read-only reference to a group participant.
// Identity is owned by the member directory; this core only consumes it
// for display purposes, never for balance math.
type Member struct {
	MemberID    string `json:"memberID"`    // Primary Key (e.g., UUID)
	GroupID     string `json:"groupID"`     // Group membership reference
	DisplayName string `json:"displayName"` // Shown in balance/settlement views
	AvatarRef   string `json:"avatarRef"`   // Opaque reference, may be empty
}
