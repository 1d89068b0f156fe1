package models

import "time"

// Order is a meal booking. Exactly one of TeacherID/StudentID is set:
// StudentID for an individual booking, TeacherID for a group booking.
// The CHECK constraint enforces this at the storage layer, and the
// (student_id, meal_id, meal_date) unique index makes duplicate individual
// bookings impossible even if two writers race past the application check.
type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	MealID    uint      `gorm:"not null;index;uniqueIndex:idx_student_meal_date;check:chk_order_owner,(teacher_id IS NULL) <> (student_id IS NULL)" json:"meal_id"`
	TeacherID *uint     `gorm:"index" json:"teacher_id,omitempty"`
	StudentID *uint     `gorm:"index;uniqueIndex:idx_student_meal_date" json:"student_id,omitempty"`
	MealDate  time.Time `gorm:"not null;index;uniqueIndex:idx_student_meal_date" json:"meal_date"`
	Notes     string    `json:"notes,omitempty"`

	// Relationships
	Meal    Meal     `gorm:"foreignKey:MealID" json:"meal,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
