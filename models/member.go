package models

// Member is provisioned outside this service; check-ins only read it.
type Member struct {
	MemberID string  `gorm:"primaryKey;size:64" json:"member_id"`
	Name     *string `gorm:"size:128" json:"name"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (Member) TableName() string {
	return "members"
}

// DisplayName returns the member's name or an empty string when none is stored.
func (m Member) DisplayName() string {
	if m.Name == nil {
		return ""
	}
	return *m.Name
}
