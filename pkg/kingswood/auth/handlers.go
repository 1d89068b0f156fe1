package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// Handler handles authentication requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string        `json:"token"`
	User  ActorResponse `json:"user"`
}

// ActorResponse represents the authenticated actor in responses
type ActorResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// authenticate walks the three identity tables in staff -> teacher -> student
// order; the first row matching both email and password wins. An email that
// exists in more than one table is shadowed by the earlier table.
func (h *Handler) authenticate(email, password string) (*ActorResponse, bool) {
	var staff models.StaffUser
	if err := h.db.Where("email = ?", email).First(&staff).Error; err == nil {
		if CheckPassword(password, staff.PasswordHash) {
			return &ActorResponse{ID: staff.ID, Name: staff.Name, Surname: staff.Surname, Email: staff.Email, Role: RoleStaff}, true
		}
	}

	var teacher models.Teacher
	if err := h.db.Where("email = ?", email).First(&teacher).Error; err == nil {
		if CheckPassword(password, teacher.PasswordHash) {
			return &ActorResponse{ID: teacher.ID, Name: teacher.Name, Surname: teacher.Surname, Email: teacher.Email, Role: RoleTeacher}, true
		}
	}

	var student models.Student
	if err := h.db.Where("email = ?", email).First(&student).Error; err == nil {
		if CheckPassword(password, student.PasswordHash) {
			return &ActorResponse{ID: student.ID, Name: student.Name, Surname: student.Surname, Email: student.Email, Role: RoleStudent}, true
		}
	}

	return nil, false
}

// Login handles login for all three roles
// @Summary Login
// @Description Authenticate with email and password to receive a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, ok := h.authenticate(req.Email, req.Password)
	if !ok {
		// Generic rejection, no hint about which field was wrong
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := GenerateToken(actor.ID, actor.Email, actor.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: *actor})
}

// Me returns the current authenticated actor
// @Summary Get current actor
// @Description Get the authenticated actor's profile
// @Tags auth
// @Produce json
// @Success 200 {object} ActorResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	actorID, exists := GetActorID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	role, _ := GetRole(c)

	var resp ActorResponse
	switch role {
	case RoleStaff:
		var staff models.StaffUser
		if err := h.db.First(&staff, actorID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		resp = ActorResponse{ID: staff.ID, Name: staff.Name, Surname: staff.Surname, Email: staff.Email, Role: role}
	case RoleTeacher:
		var teacher models.Teacher
		if err := h.db.First(&teacher, actorID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		resp = ActorResponse{ID: teacher.ID, Name: teacher.Name, Surname: teacher.Surname, Email: teacher.Email, Role: role}
	case RoleStudent:
		var student models.Student
		if err := h.db.First(&student, actorID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		resp = ActorResponse{ID: student.ID, Name: student.Name, Surname: student.Surname, Email: student.Email, Role: role}
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout handles logout (client-side token invalidation)
// @Summary Logout
// @Description Logout the current actor (client-side token invalidation)
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out successfully"
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", AuthMiddleware(), h.Me)
}
