package models

import "time"

// GroupMembership is the many-to-many join of groups and students.
// The composite unique index rejects duplicate membership rows.
type GroupMembership struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_group_student" json:"group_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_group_student" json:"student_id"`

	// Relationships
	Group   Group   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
