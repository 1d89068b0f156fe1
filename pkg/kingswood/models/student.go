package models

import "time"

// Student represents a student who can place individual meal bookings.
// Students are created singly or via bulk import; import matches on email
// and overwrites in place.
type Student struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Name            string    `gorm:"not null" json:"name"`
	Surname         string    `gorm:"not null" json:"surname"`
	GenderID        uint      `gorm:"not null" json:"gender_id"`
	Grade           int       `gorm:"not null" json:"grade"`
	Boarder         bool      `gorm:"not null" json:"boarder"`
	DietaryOptionID uint      `gorm:"not null" json:"dietary_option_id"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash    string    `json:"-"`

	// Relationships
	Gender        Gender        `gorm:"foreignKey:GenderID" json:"gender,omitempty"`
	DietaryOption DietaryOption `gorm:"foreignKey:DietaryOptionID" json:"dietary_option,omitempty"`
}
