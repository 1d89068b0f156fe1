package bookings

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// Service orchestrates the conflict check and the two-row order write as a
// single logical operation for both the student and the teacher paths.
type Service struct {
	db   *gorm.DB
	repo *Repository
}

// NewService creates a new booking service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, repo: NewRepository()}
}

// BookingRequest carries everything needed to place a booking
type BookingRequest struct {
	ActorRole string
	ActorID   uint
	MealID    uint
	MealDate  time.Time
	GroupID   uint // required when ActorRole is teacher
	Notes     string
}

// PlaceBooking enforces the uniqueness-of-booking invariant and, if it
// holds, writes exactly one order and one link row. The check and both
// writes share one transaction, so concurrent operators cannot interleave
// between check and write, and any failure leaves zero new rows.
func (s *Service) PlaceBooking(req BookingRequest) (*models.Order, error) {
	if req.MealDate.IsZero() {
		return nil, ErrInvalidDate
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := tx.First(&meal, req.MealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReferenceNotFound
			}
			return err
		}

		switch req.ActorRole {
		case auth.RoleStudent:
			conflict, err := s.repo.HasConflict(tx, req.MealID, req.MealDate, req.ActorID)
			if err != nil {
				return err
			}
			if conflict {
				return s.conflictError(tx, meal, req.MealDate, []uint{req.ActorID})
			}
			order, err = s.repo.CreateIndividualOrder(tx, req.MealID, req.MealDate, req.ActorID, req.Notes)
			return err

		case auth.RoleTeacher:
			if req.GroupID == 0 {
				return ErrGroupRequired
			}
			var group models.Group
			if err := tx.Where("id = ? AND teacher_id = ?", req.GroupID, req.ActorID).First(&group).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrReferenceNotFound
				}
				return err
			}

			var memberIDs []uint
			if err := tx.Model(&models.GroupMembership{}).
				Where("group_id = ?", req.GroupID).
				Pluck("student_id", &memberIDs).Error; err != nil {
				return err
			}

			conflicting, err := s.repo.ConflictingStudents(tx, req.MealID, req.MealDate, memberIDs)
			if err != nil {
				return err
			}
			if len(conflicting) > 0 {
				return s.conflictError(tx, meal, req.MealDate, conflicting)
			}

			order, err = s.repo.CreateGroupOrder(tx, req.MealID, req.MealDate, req.ActorID, req.GroupID, req.Notes)
			return err

		default:
			return fmt.Errorf("role %q cannot place bookings", req.ActorRole)
		}
	})

	if err != nil {
		// A racing writer can slip past the application check and trip the
		// unique index at commit instead; surface that as the same conflict.
		if isUniqueViolation(err) && req.ActorRole == auth.RoleStudent {
			var meal models.Meal
			s.db.First(&meal, req.MealID)
			return nil, s.conflictError(s.db, meal, req.MealDate, []uint{req.ActorID})
		}
		return nil, err
	}
	return order, nil
}

// conflictError builds a ConflictError naming the given students, ordered
// the way rosters are listed
func (s *Service) conflictError(tx *gorm.DB, meal models.Meal, mealDate time.Time, studentIDs []uint) error {
	conflict := &ConflictError{MealName: meal.Name, MealDate: mealDate}

	var students []models.Student
	if err := tx.Where("id IN ?", studentIDs).
		Order("grade ASC, surname ASC").
		Find(&students).Error; err == nil {
		for _, st := range students {
			conflict.Students = append(conflict.Students, ConflictingStudent{
				ID:      st.ID,
				Name:    st.Name,
				Surname: st.Surname,
			})
		}
	}
	return conflict
}
