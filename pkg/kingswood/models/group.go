package models

import "time"

// Group is a teacher-owned set of students that can be booked as a unit
type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	Name      string    `gorm:"not null" json:"name"`

	// Relationships
	Teacher Teacher           `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Members []GroupMembership `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}
