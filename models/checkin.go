package models

import "time"

// Checkin is one immutable attendance record. Rows are only ever inserted.
type Checkin struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MemberID    string    `gorm:"size:64;not null;index:idx_checkins_member_time" json:"member_id"`
	CheckedInAt time.Time `gorm:"not null;index;index:idx_checkins_member_time" json:"checked_in_at"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (Checkin) TableName() string {
	return "checkins"
}

// RecentCheckin is a check-in joined with the member's display name when available.
type RecentCheckin struct {
	MemberID    string    `json:"memberId"`
	MemberName  *string   `json:"memberName"`
	CheckedInAt time.Time `json:"checkedInAt"`
}
