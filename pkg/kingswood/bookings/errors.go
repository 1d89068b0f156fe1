package bookings

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrReferenceNotFound means a meal or group referenced by the booking
	// does not exist (or the group is not owned by the acting teacher)
	ErrReferenceNotFound = errors.New("referenced record not found")
	// ErrGroupRequired means a teacher booking was submitted without a group
	ErrGroupRequired = errors.New("group is required for teacher bookings")
	// ErrInvalidDate means the meal date is missing or not a concrete date
	ErrInvalidDate = errors.New("meal date must be a concrete calendar date")
)

// ConflictingStudent identifies a student who already holds a booking
// for the requested meal and date
type ConflictingStudent struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// ConflictError reports a uniqueness-of-booking violation. It names every
// student that already has the meal booked for the date, whether directly
// or through a group.
type ConflictError struct {
	MealName string
	MealDate time.Time
	Students []ConflictingStudent
}

func (e *ConflictError) Error() string {
	names := make([]string, len(e.Students))
	for i, s := range e.Students {
		names[i] = s.Name + " " + s.Surname
	}
	return fmt.Sprintf("booking conflict: %s already booked %q for %s",
		strings.Join(names, ", "), e.MealName, e.MealDate.Format("2006-01-02"))
}

// isUniqueViolation reports whether err is a storage-level unique index
// violation. The (student_id, meal_id, meal_date) index backstops the
// application-level conflict check, so a violation here is a conflict
// detected by the database instead of by us.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
