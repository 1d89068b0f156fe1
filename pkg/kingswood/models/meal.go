package models

// Meal is a bookable menu item, managed by staff
type Meal struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
