package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: reference tables come first so FK-bearing tables migrate after them
func AllModels() []interface{} {
	return []interface{}{
		&Gender{},
		&DietaryOption{},
		&Meal{},
		&StaffUser{},
		&Teacher{},
		&Student{},
		&Group{},
		&GroupMembership{},
		&Order{},
		&OrderGroupLink{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
