package models

// DietaryOption is a dietary requirement students can be assigned to
type DietaryOption struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
