package groups

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// deleteConfirmTTL is how long a deletion confirmation token stays valid
const deleteConfirmTTL = 2 * time.Minute

// Handler handles group-related requests
type Handler struct {
	db       *gorm.DB
	confirms *confirmer
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, confirms: newConfirmer(deleteConfirmTTL)}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Teacher     string `json:"teacher,omitempty"`
	MemberCount int    `json:"member_count"`
}

// List returns the acting teacher's groups, or the groups the acting
// student belongs to
// @Summary List groups
// @Description Groups owned by the teacher, or joined by the student
// @Tags groups
// @Produce json
// @Success 200 {array} GroupResponse
// @Security BearerAuth
// @Router /groups [get]
func (h *Handler) List(c *gin.Context) {
	actorID, _ := auth.GetActorID(c)
	role, _ := auth.GetRole(c)

	switch role {
	case auth.RoleTeacher:
		var groups []models.Group
		if err := h.db.Where("teacher_id = ?", actorID).Find(&groups).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
			return
		}

		resp := make([]GroupResponse, len(groups))
		for i, g := range groups {
			var memberCount int64
			h.db.Model(&models.GroupMembership{}).Where("group_id = ?", g.ID).Count(&memberCount)
			resp[i] = GroupResponse{ID: g.ID, Name: g.Name, MemberCount: int(memberCount)}
		}
		c.JSON(http.StatusOK, resp)

	case auth.RoleStudent:
		var memberships []models.GroupMembership
		if err := h.db.Preload("Group").Preload("Group.Teacher").
			Where("student_id = ?", actorID).Find(&memberships).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
			return
		}

		resp := make([]GroupResponse, len(memberships))
		for i, m := range memberships {
			var memberCount int64
			h.db.Model(&models.GroupMembership{}).Where("group_id = ?", m.GroupID).Count(&memberCount)
			resp[i] = GroupResponse{
				ID:          m.Group.ID,
				Name:        m.Group.Name,
				Teacher:     m.Group.Teacher.Name + " " + m.Group.Teacher.Surname,
				MemberCount: int(memberCount),
			}
		}
		c.JSON(http.StatusOK, resp)

	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

// Create creates a new group owned by the acting teacher
// @Summary Create a group
// @Description Create a new group owned by the authenticated teacher
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /groups [post]
func (h *Handler) Create(c *gin.Context) {
	actorID, _ := auth.GetActorID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.Group{TeacherID: actorID, Name: req.Name}
	if err := h.db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, GroupResponse{ID: group.ID, Name: group.Name, MemberCount: 0})
}

// ownedGroup loads the group and verifies the acting teacher owns it
func (h *Handler) ownedGroup(c *gin.Context) (*models.Group, bool) {
	actorID, _ := auth.GetActorID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return nil, false
	}

	var group models.Group
	if err := h.db.Where("id = ? AND teacher_id = ?", groupID, actorID).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, false
	}
	return &group, true
}

// Delete removes a group via a two-step confirmation protocol. The first
// call issues a short-lived token; repeating the call with ?confirm_token=
// performs the deletion. Deletion is refused while any order still
// references the group.
// @Summary Delete a group
// @Description Two-step deletion: first call returns a confirmation token, second call with confirm_token deletes
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Param confirm_token query string false "Confirmation token from the first call"
// @Success 200 {object} map[string]string "Group deleted"
// @Success 202 {object} map[string]string "Confirmation required"
// @Failure 409 {object} map[string]string "Group has bookings"
// @Failure 410 {object} map[string]string "Token expired or unknown"
// @Security BearerAuth
// @Router /groups/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actorID, _ := auth.GetActorID(c)
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	// Orders keep their audience resolvable: a group with bookings cannot
	// be deleted, it has to be rebooked or left in place.
	var orderRefs int64
	if err := h.db.Model(&models.OrderGroupLink{}).Where("group_id = ?", group.ID).Count(&orderRefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check group bookings"})
		return
	}
	if orderRefs > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Group has bookings and cannot be deleted"})
		return
	}

	token := c.Query("confirm_token")
	if token == "" {
		issued, err := h.confirms.issue(group.ID, actorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue confirmation token"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message":       "Confirmation required",
			"confirm_token": issued,
			"expires_in":    deleteConfirmTTL.String(),
		})
		return
	}

	if !h.confirms.redeem(token, group.ID, actorID) {
		c.JSON(http.StatusGone, gin.H{"error": "Confirmation token expired or unknown"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, group.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// RegisterRoutes registers group routes. The group expects AuthMiddleware
// to already be applied.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", auth.RequireRole(auth.RoleTeacher, auth.RoleStudent), h.List)
	rg.POST("", auth.RequireRole(auth.RoleTeacher), h.Create)
	rg.DELETE("/:id", auth.RequireRole(auth.RoleTeacher), h.Delete)
}
