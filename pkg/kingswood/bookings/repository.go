package bookings

import (
	"time"

	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// Repository executes the conflict scans and the two-row order writes.
// Every method runs against the transaction handle it is given so the
// caller controls the atomicity boundary.
type Repository struct{}

// NewRepository creates a new order repository
func NewRepository() *Repository {
	return &Repository{}
}

// HasConflict reports whether the student already holds an order for the
// meal and date, either directly or inherited through any group they belong
// to. Both paths are existence checks, so an order reachable through more
// than one path still counts as a single conflict.
func (r *Repository) HasConflict(tx *gorm.DB, mealID uint, mealDate time.Time, studentID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Order{}).
		Where("meal_id = ? AND meal_date = ? AND student_id = ?", mealID, mealDate, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = tx.Model(&models.Order{}).
		Joins("JOIN order_group_links ON order_group_links.order_id = orders.id").
		Joins("JOIN group_memberships ON group_memberships.group_id = order_group_links.group_id").
		Where("orders.meal_id = ? AND orders.meal_date = ? AND group_memberships.student_id = ?", mealID, mealDate, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ConflictingStudents returns the distinct subset of studentIDs that already
// hold an order for the meal and date, via either path. Used by the teacher
// booking flow to fan the conflict check out over a whole group.
func (r *Repository) ConflictingStudents(tx *gorm.DB, mealID uint, mealDate time.Time, studentIDs []uint) ([]uint, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	var direct []uint
	err := tx.Model(&models.Order{}).
		Where("meal_id = ? AND meal_date = ? AND student_id IN ?", mealID, mealDate, studentIDs).
		Pluck("student_id", &direct).Error
	if err != nil {
		return nil, err
	}

	var inherited []uint
	err = tx.Model(&models.GroupMembership{}).
		Distinct("group_memberships.student_id").
		Joins("JOIN order_group_links ON order_group_links.group_id = group_memberships.group_id").
		Joins("JOIN orders ON orders.id = order_group_links.order_id").
		Where("orders.meal_id = ? AND orders.meal_date = ? AND group_memberships.student_id IN ?", mealID, mealDate, studentIDs).
		Pluck("group_memberships.student_id", &inherited).Error
	if err != nil {
		return nil, err
	}

	// Deduplicate, preserving the caller's ordering
	hit := make(map[uint]bool, len(direct)+len(inherited))
	for _, id := range direct {
		hit[id] = true
	}
	for _, id := range inherited {
		hit[id] = true
	}

	var conflicting []uint
	for _, id := range studentIDs {
		if hit[id] {
			conflicting = append(conflicting, id)
		}
	}
	return conflicting, nil
}

// CreateIndividualOrder writes an order placed by a student for themselves:
// an order row with the student reference set, plus its link row. The link
// carries the id returned by the insert, never a re-derived maximum.
func (r *Repository) CreateIndividualOrder(tx *gorm.DB, mealID uint, mealDate time.Time, studentID uint, notes string) (*models.Order, error) {
	order := models.Order{
		MealID:    mealID,
		MealDate:  mealDate,
		StudentID: &studentID,
		Notes:     notes,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	link := models.OrderGroupLink{
		OrderID:   order.ID,
		StudentID: &studentID,
	}
	if err := tx.Create(&link).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateGroupOrder writes an order placed by a teacher for a whole group:
// an order row with the teacher reference set, plus a link row targeting
// the group.
func (r *Repository) CreateGroupOrder(tx *gorm.DB, mealID uint, mealDate time.Time, teacherID, groupID uint, notes string) (*models.Order, error) {
	order := models.Order{
		MealID:    mealID,
		MealDate:  mealDate,
		TeacherID: &teacherID,
		Notes:     notes,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	link := models.OrderGroupLink{
		OrderID: order.ID,
		GroupID: &groupID,
	}
	if err := tx.Create(&link).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
