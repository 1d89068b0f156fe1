package models

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedOrderRefs(t *testing.T, db *gorm.DB) (mealID, teacherID, studentID uint) {
	gender := Gender{Name: "Male"}
	db.Create(&gender)
	dietary := DietaryOption{Name: "None"}
	db.Create(&dietary)

	meal := Meal{Name: "Pizza"}
	db.Create(&meal)
	teacher := Teacher{Name: "Tina", Surname: "Marsh", Email: "tina@school.test", PasswordHash: "x"}
	db.Create(&teacher)
	student := Student{
		Name: "Sam", Surname: "Abbott", GenderID: gender.ID, Grade: 8,
		DietaryOptionID: dietary.ID, Email: "sam@school.test", PasswordHash: "x",
	}
	db.Create(&student)
	return meal.ID, teacher.ID, student.ID
}

func TestOrderOwnerIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	mealID, teacherID, studentID := seedOrderRefs(t, db)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Both owner references set: the CHECK constraint must refuse the row
	both := Order{MealID: mealID, TeacherID: &teacherID, StudentID: &studentID, MealDate: date}
	if err := db.Create(&both).Error; err == nil {
		t.Error("Expected an order with both owners to be rejected")
	}

	// Neither set
	neither := Order{MealID: mealID, MealDate: date}
	if err := db.Create(&neither).Error; err == nil {
		t.Error("Expected an ownerless order to be rejected")
	}

	// Exactly one owner is fine, either way round
	individual := Order{MealID: mealID, StudentID: &studentID, MealDate: date}
	if err := db.Create(&individual).Error; err != nil {
		t.Errorf("Expected an individual order to be accepted: %v", err)
	}
	grouped := Order{MealID: mealID, TeacherID: &teacherID, MealDate: date}
	if err := db.Create(&grouped).Error; err != nil {
		t.Errorf("Expected a teacher order to be accepted: %v", err)
	}
}

func TestDuplicateIndividualOrderRejectedByIndex(t *testing.T) {
	db := setupTestDB(t)
	mealID, _, studentID := seedOrderRefs(t, db)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	first := Order{MealID: mealID, StudentID: &studentID, MealDate: date}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create first order: %v", err)
	}

	dup := Order{MealID: mealID, StudentID: &studentID, MealDate: date}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected the unique index to reject a duplicate individual order")
	}

	// A different date is a different booking
	other := Order{MealID: mealID, StudentID: &studentID, MealDate: date.AddDate(0, 0, 1)}
	if err := db.Create(&other).Error; err != nil {
		t.Errorf("Expected an order on another date to be accepted: %v", err)
	}
}

func TestOrderGroupLinkTargetIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	mealID, teacherID, studentID := seedOrderRefs(t, db)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	group := Group{Name: "Chess Club", TeacherID: teacherID}
	db.Create(&group)
	order := Order{MealID: mealID, TeacherID: &teacherID, MealDate: date}
	db.Create(&order)

	both := OrderGroupLink{OrderID: order.ID, GroupID: &group.ID, StudentID: &studentID}
	if err := db.Create(&both).Error; err == nil {
		t.Error("Expected a link with both targets to be rejected")
	}

	link := OrderGroupLink{OrderID: order.ID, GroupID: &group.ID}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("Expected a group link to be accepted: %v", err)
	}

	// One link per order
	second := OrderGroupLink{OrderID: order.ID, StudentID: &studentID}
	if err := db.Create(&second).Error; err == nil {
		t.Error("Expected a second link for the same order to be rejected")
	}
}

func TestGroupMembershipIsUniquePerStudent(t *testing.T) {
	db := setupTestDB(t)
	_, teacherID, studentID := seedOrderRefs(t, db)

	group := Group{Name: "Chess Club", TeacherID: teacherID}
	db.Create(&group)

	first := GroupMembership{GroupID: group.ID, StudentID: studentID}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create membership: %v", err)
	}

	dup := GroupMembership{GroupID: group.ID, StudentID: studentID}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected a duplicate membership to be rejected")
	}
}
