package bookings

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// mealDateLayout is the wire format for meal dates
const mealDateLayout = "2006-01-02"

// Handler handles booking requests
type Handler struct {
	db      *gorm.DB
	service *Service
}

// NewHandler creates a new bookings handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, service: NewService(db)}
}

// CreateBookingRequest represents a student's individual booking
type CreateBookingRequest struct {
	MealID   uint   `json:"meal_id" binding:"required"`
	MealDate string `json:"meal_date" binding:"required"`
	Notes    string `json:"notes"`
}

// CreateGroupBookingRequest represents a teacher's group booking
type CreateGroupBookingRequest struct {
	MealID   uint   `json:"meal_id" binding:"required"`
	MealDate string `json:"meal_date" binding:"required"`
	GroupID  uint   `json:"group_id" binding:"required"`
	Notes    string `json:"notes"`
}

// BookingResponse represents a created booking
type BookingResponse struct {
	ID       uint   `json:"id"`
	MealID   uint   `json:"meal_id"`
	MealDate string `json:"meal_date"`
	GroupID  uint   `json:"group_id,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// UpcomingBooking represents one row of the upcoming-bookings listing
type UpcomingBooking struct {
	OrderID  uint   `json:"order_id"`
	Meal     string `json:"meal"`
	MealDate string `json:"meal_date"`
	BookedBy string `json:"booked_by"`
	Group    string `json:"group,omitempty"`
}

// ParseMealDate parses a wire-format meal date, normalized to midnight UTC
// so stored dates compare exactly
func ParseMealDate(s string) (time.Time, error) {
	t, err := time.Parse(mealDateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Create places an individual booking for the acting student
// @Summary Place an individual booking
// @Description Book a meal for the authenticated student on a given date
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "Booking details"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Booking conflict"
// @Security BearerAuth
// @Router /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	actorID, _ := auth.GetActorID(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mealDate, err := ParseMealDate(req.MealDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal date, expected YYYY-MM-DD"})
		return
	}

	order, err := h.service.PlaceBooking(BookingRequest{
		ActorRole: auth.RoleStudent,
		ActorID:   actorID,
		MealID:    req.MealID,
		MealDate:  mealDate,
		Notes:     req.Notes,
	})
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BookingResponse{
		ID:       order.ID,
		MealID:   order.MealID,
		MealDate: order.MealDate.Format(mealDateLayout),
		Notes:    order.Notes,
	})
}

// CreateGroup places a group booking for a group owned by the acting teacher
// @Summary Place a group booking
// @Description Book a meal for every member of one of the teacher's groups
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateGroupBookingRequest true "Booking details"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Group or meal not found"
// @Failure 409 {object} map[string]string "Booking conflict"
// @Security BearerAuth
// @Router /bookings/group [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	actorID, _ := auth.GetActorID(c)

	var req CreateGroupBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mealDate, err := ParseMealDate(req.MealDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal date, expected YYYY-MM-DD"})
		return
	}

	order, err := h.service.PlaceBooking(BookingRequest{
		ActorRole: auth.RoleTeacher,
		ActorID:   actorID,
		MealID:    req.MealID,
		MealDate:  mealDate,
		GroupID:   req.GroupID,
		Notes:     req.Notes,
	})
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BookingResponse{
		ID:       order.ID,
		MealID:   order.MealID,
		MealDate: order.MealDate.Format(mealDateLayout),
		GroupID:  req.GroupID,
		Notes:    order.Notes,
	})
}

// renderBookingError maps service errors onto the HTTP surface
func (h *Handler) renderBookingError(c *gin.Context, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflict.Error(),
			"meal":      conflict.MealName,
			"meal_date": conflict.MealDate.Format(mealDateLayout),
			"conflicts": conflict.Students,
		})
	case errors.Is(err, ErrReferenceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal or group not found"})
	case errors.Is(err, ErrGroupRequired), errors.Is(err, ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place booking"})
	}
}

// Upcoming lists bookings with a meal date of today or later, ascending.
// Students see their individual bookings plus those inherited through group
// membership; teachers see the bookings of groups they own.
// @Summary List upcoming bookings
// @Description Upcoming bookings for the authenticated student or teacher
// @Tags bookings
// @Produce json
// @Success 200 {array} UpcomingBooking
// @Security BearerAuth
// @Router /bookings/upcoming [get]
func (h *Handler) Upcoming(c *gin.Context) {
	actorID, _ := auth.GetActorID(c)
	role, _ := auth.GetRole(c)

	today, _ := ParseMealDate(time.Now().UTC().Format(mealDateLayout))

	var rows []UpcomingBooking
	var err error
	switch role {
	case auth.RoleStudent:
		rows, err = h.upcomingForStudent(actorID, today)
	case auth.RoleTeacher:
		rows, err = h.upcomingForTeacher(actorID, today)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	if rows == nil {
		rows = []UpcomingBooking{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) upcomingForStudent(studentID uint, today time.Time) ([]UpcomingBooking, error) {
	var direct []models.Order
	if err := h.db.Preload("Meal").Preload("Student").
		Where("student_id = ? AND meal_date >= ?", studentID, today).
		Find(&direct).Error; err != nil {
		return nil, err
	}

	var inherited []models.Order
	if err := h.db.Preload("Meal").Preload("Teacher").
		Joins("JOIN order_group_links ON order_group_links.order_id = orders.id").
		Joins("JOIN group_memberships ON group_memberships.group_id = order_group_links.group_id").
		Where("group_memberships.student_id = ? AND orders.meal_date >= ?", studentID, today).
		Find(&inherited).Error; err != nil {
		return nil, err
	}

	// A student in two groups that share an order sees it once
	seen := make(map[uint]bool)
	var rows []UpcomingBooking
	for _, o := range direct {
		seen[o.ID] = true
		bookedBy := ""
		if o.Student != nil {
			bookedBy = o.Student.Name + " " + o.Student.Surname
		}
		rows = append(rows, UpcomingBooking{
			OrderID:  o.ID,
			Meal:     o.Meal.Name,
			MealDate: o.MealDate.Format(mealDateLayout),
			BookedBy: bookedBy,
		})
	}
	for _, o := range inherited {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		bookedBy := ""
		if o.Teacher != nil {
			bookedBy = o.Teacher.Name + " " + o.Teacher.Surname
		}
		rows = append(rows, UpcomingBooking{
			OrderID:  o.ID,
			Meal:     o.Meal.Name,
			MealDate: o.MealDate.Format(mealDateLayout),
			BookedBy: bookedBy,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].MealDate < rows[j].MealDate })
	return rows, nil
}

func (h *Handler) upcomingForTeacher(teacherID uint, today time.Time) ([]UpcomingBooking, error) {
	var links []models.OrderGroupLink
	if err := h.db.Preload("Order").Preload("Order.Meal").Preload("Order.Teacher").Preload("Group").
		Joins("JOIN orders ON orders.id = order_group_links.order_id").
		Where("orders.teacher_id = ? AND orders.meal_date >= ?", teacherID, today).
		Order("orders.meal_date ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}

	var rows []UpcomingBooking
	for _, l := range links {
		row := UpcomingBooking{
			OrderID:  l.Order.ID,
			Meal:     l.Order.Meal.Name,
			MealDate: l.Order.MealDate.Format(mealDateLayout),
		}
		if l.Order.Teacher != nil {
			row.BookedBy = l.Order.Teacher.Name + " " + l.Order.Teacher.Surname
		}
		if l.Group != nil {
			row.Group = l.Group.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RegisterRoutes registers booking routes. The group expects AuthMiddleware
// to already be applied.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", auth.RequireRole(auth.RoleStudent), h.Create)
	rg.POST("/group", auth.RequireRole(auth.RoleTeacher), h.CreateGroup)
	rg.GET("/upcoming", auth.RequireRole(auth.RoleStudent, auth.RoleTeacher), h.Upcoming)
}
