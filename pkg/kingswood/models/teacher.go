package models

import "time"

// Teacher represents a teacher who owns groups and places group bookings
type Teacher struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"not null" json:"name"`
	Surname      string    `gorm:"not null" json:"surname"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`

	// Relationships
	Groups []Group `gorm:"foreignKey:TeacherID" json:"groups,omitempty"`
}
