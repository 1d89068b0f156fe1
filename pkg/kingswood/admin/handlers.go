package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/bookings"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// Handler handles staff-wide administrative requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// BookingRow represents one row of the system-wide booking roll-up
type BookingRow struct {
	OrderID  uint   `json:"order_id"`
	Meal     string `json:"meal"`
	MealDate string `json:"meal_date"`
	BookedBy string `json:"booked_by"`
	Role     string `json:"role"`
	Group    string `json:"group,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalStudents  int64 `json:"total_students"`
	TotalTeachers  int64 `json:"total_teachers"`
	TotalGroups    int64 `json:"total_groups"`
	TotalMeals     int64 `json:"total_meals"`
	TotalOrders    int64 `json:"total_orders"`
	UpcomingOrders int64 `json:"upcoming_orders"`
}

// ListBookings returns every booking in the system, meal date ascending,
// optionally filtered with ?from=YYYY-MM-DD
// @Summary List all bookings
// @Description System-wide booking roll-up for staff
// @Tags admin
// @Produce json
// @Param from query string false "Only bookings on or after this date"
// @Success 200 {array} BookingRow
// @Security BearerAuth
// @Router /admin/bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	query := h.db.Preload("Meal").Preload("Teacher").Preload("Student").
		Order("meal_date ASC")

	if from := c.Query("from"); from != "" {
		fromDate, err := bookings.ParseMealDate(from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return
		}
		query = query.Where("meal_date >= ?", fromDate)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	rows := make([]BookingRow, len(orders))
	for i, o := range orders {
		row := BookingRow{
			OrderID:  o.ID,
			Meal:     o.Meal.Name,
			MealDate: o.MealDate.Format("2006-01-02"),
			Notes:    o.Notes,
		}
		switch {
		case o.TeacherID != nil && o.Teacher != nil:
			row.BookedBy = o.Teacher.Name + " " + o.Teacher.Surname
			row.Role = "teacher"
		case o.StudentID != nil && o.Student != nil:
			row.BookedBy = o.Student.Name + " " + o.Student.Surname
			row.Role = "student"
		}

		var link models.OrderGroupLink
		if err := h.db.Preload("Group").Where("order_id = ?", o.ID).First(&link).Error; err == nil {
			if link.Group != nil {
				row.Group = link.Group.Name
			}
		}
		rows[i] = row
	}

	c.JSON(http.StatusOK, rows)
}

// Stats returns system-wide totals
// @Summary System statistics
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	var stats StatsResponse
	h.db.Model(&models.Student{}).Count(&stats.TotalStudents)
	h.db.Model(&models.Teacher{}).Count(&stats.TotalTeachers)
	h.db.Model(&models.Group{}).Count(&stats.TotalGroups)
	h.db.Model(&models.Meal{}).Count(&stats.TotalMeals)
	h.db.Model(&models.Order{}).Count(&stats.TotalOrders)

	today, _ := bookings.ParseMealDate(time.Now().UTC().Format("2006-01-02"))
	h.db.Model(&models.Order{}).Where("meal_date >= ?", today).Count(&stats.UpcomingOrders)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes. The group is expected to be
// staff-gated.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/stats", h.Stats)
}
