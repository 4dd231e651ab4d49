package models

// Member mirrors the group_members table (read-only directory data).
type Member struct {
	MemberID    string `db:"member_id"`
	GroupID     string `db:"group_id"`
	DisplayName string `db:"display_name"`
	AvatarRef   string `db:"avatar_ref"`
}
