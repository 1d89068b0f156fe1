package models

// Gender is seeded reference data, read-only through the API
type Gender struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
