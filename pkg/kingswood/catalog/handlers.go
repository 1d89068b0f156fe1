package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// Handler handles reference-data requests (meals, dietary options, genders)
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new catalog handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// NameRequest is the body for creating or renaming a reference entry
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListMeals returns all meals
// @Summary List meals
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Meal
// @Security BearerAuth
// @Router /meals [get]
func (h *Handler) ListMeals(c *gin.Context) {
	var meals []models.Meal
	if err := h.db.Order("name ASC").Find(&meals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meals"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

// CreateMeal adds a new meal (staff only)
// @Summary Add a meal
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body NameRequest true "Meal name"
// @Success 201 {object} models.Meal
// @Failure 409 {object} map[string]string "Name already exists"
// @Security BearerAuth
// @Router /meals [post]
func (h *Handler) CreateMeal(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := models.Meal{Name: strings.TrimSpace(req.Name)}
	if err := h.db.Create(&meal).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Meal already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add meal"})
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// UpdateMeal renames a meal (staff only)
// @Summary Rename a meal
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Meal ID"
// @Param request body NameRequest true "New name"
// @Success 200 {object} models.Meal
// @Failure 404 {object} map[string]string "Meal not found"
// @Security BearerAuth
// @Router /meals/{id} [put]
func (h *Handler) UpdateMeal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}

	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var meal models.Meal
	if err := h.db.First(&meal, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}

	meal.Name = strings.TrimSpace(req.Name)
	if err := h.db.Save(&meal).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Meal already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
		return
	}
	c.JSON(http.StatusOK, meal)
}

// ListDietaryOptions returns all dietary options
// @Summary List dietary options
// @Tags catalog
// @Produce json
// @Success 200 {array} models.DietaryOption
// @Security BearerAuth
// @Router /dietary-options [get]
func (h *Handler) ListDietaryOptions(c *gin.Context) {
	var options []models.DietaryOption
	if err := h.db.Order("name ASC").Find(&options).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dietary options"})
		return
	}
	c.JSON(http.StatusOK, options)
}

// CreateDietaryOption adds a new dietary option (staff only)
// @Summary Add a dietary option
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body NameRequest true "Option name"
// @Success 201 {object} models.DietaryOption
// @Failure 409 {object} map[string]string "Name already exists"
// @Security BearerAuth
// @Router /dietary-options [post]
func (h *Handler) CreateDietaryOption(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	option := models.DietaryOption{Name: strings.TrimSpace(req.Name)}
	if err := h.db.Create(&option).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Dietary option already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add dietary option"})
		return
	}
	c.JSON(http.StatusCreated, option)
}

// UpdateDietaryOption renames a dietary option (staff only)
// @Summary Rename a dietary option
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Dietary option ID"
// @Param request body NameRequest true "New name"
// @Success 200 {object} models.DietaryOption
// @Failure 404 {object} map[string]string "Option not found"
// @Security BearerAuth
// @Router /dietary-options/{id} [put]
func (h *Handler) UpdateDietaryOption(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dietary option ID"})
		return
	}

	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var option models.DietaryOption
	if err := h.db.First(&option, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dietary option not found"})
		return
	}

	option.Name = strings.TrimSpace(req.Name)
	if err := h.db.Save(&option).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Dietary option already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dietary option"})
		return
	}
	c.JSON(http.StatusOK, option)
}

// ListGenders returns the seeded gender reference rows
// @Summary List genders
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Gender
// @Security BearerAuth
// @Router /genders [get]
func (h *Handler) ListGenders(c *gin.Context) {
	var genders []models.Gender
	if err := h.db.Order("id ASC").Find(&genders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch genders"})
		return
	}
	c.JSON(http.StatusOK, genders)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// RegisterRoutes registers the read-only reference routes; booking forms
// need these for every role
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/meals", h.ListMeals)
	rg.GET("/dietary-options", h.ListDietaryOptions)
	rg.GET("/genders", h.ListGenders)
}

// RegisterStaffRoutes registers the mutating reference routes. The group
// is expected to be staff-gated.
func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.POST("/meals", h.CreateMeal)
	rg.PUT("/meals/:id", h.UpdateMeal)
	rg.POST("/dietary-options", h.CreateDietaryOption)
	rg.PUT("/dietary-options/:id", h.UpdateDietaryOption)
}
