package groups

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// MemberResponse represents a roster entry
type MemberResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Grade   int    `json:"grade"`
	Gender  string `json:"gender"`
}

// AddMembersRequest represents a request to add students to a group
type AddMembersRequest struct {
	StudentIDs []uint `json:"student_ids" binding:"required,min=1"`
}

// rosterOrder is the listing contract for members and available students
const rosterOrder = "students.grade ASC, students.surname ASC"

// ListMembers returns the group roster ordered by grade then surname
// @Summary List group members
// @Description Roster of the group, ordered by grade ascending then surname ascending
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} MemberResponse
// @Security BearerAuth
// @Router /groups/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var students []models.Student
	if err := h.db.Preload("Gender").
		Joins("JOIN group_memberships ON group_memberships.student_id = students.id").
		Where("group_memberships.group_id = ?", group.ID).
		Order(rosterOrder).
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	members := make([]MemberResponse, len(students))
	for i, s := range students {
		members[i] = MemberResponse{
			ID:      s.ID,
			Name:    s.Name,
			Surname: s.Surname,
			Grade:   s.Grade,
			Gender:  s.Gender.Name,
		}
	}
	c.JSON(http.StatusOK, members)
}

// AvailableStudents returns students not yet in the group, in roster order
// @Summary List students available to add
// @Description Students not yet in the group, ordered by grade then surname
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} MemberResponse
// @Security BearerAuth
// @Router /groups/{id}/available-students [get]
func (h *Handler) AvailableStudents(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var students []models.Student
	if err := h.db.Preload("Gender").
		Where("id NOT IN (?)", h.db.Model(&models.GroupMembership{}).
			Select("student_id").Where("group_id = ?", group.ID)).
		Order(rosterOrder).
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	available := make([]MemberResponse, len(students))
	for i, s := range students {
		available[i] = MemberResponse{
			ID:      s.ID,
			Name:    s.Name,
			Surname: s.Surname,
			Grade:   s.Grade,
			Gender:  s.Gender.Name,
		}
	}
	c.JSON(http.StatusOK, available)
}

// AddMembers adds students to the group
// @Summary Add students to a group
// @Description Add one or more students to a group owned by the teacher
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body AddMembersRequest true "Student IDs"
// @Success 201 {object} map[string]int "Number added"
// @Failure 404 {object} map[string]string "Unknown student"
// @Failure 409 {object} map[string]string "Already a member"
// @Security BearerAuth
// @Router /groups/{id}/members [post]
func (h *Handler) AddMembers(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var req AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var known int64
	if err := h.db.Model(&models.Student{}).Where("id IN ?", req.StudentIDs).Count(&known).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify students"})
		return
	}
	if int(known) != len(req.StudentIDs) {
		c.JSON(http.StatusNotFound, gin.H{"error": "One or more students do not exist"})
		return
	}

	var existing int64
	if err := h.db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND student_id IN ?", group.ID, req.StudentIDs).
		Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify membership"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "One or more students are already members"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, studentID := range req.StudentIDs {
			membership := models.GroupMembership{GroupID: group.ID, StudentID: studentID}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add members"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added": len(req.StudentIDs)})
}

// RemoveMember removes one student from the group
// @Summary Remove a student from a group
// @Description Remove a single student from a group owned by the teacher
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} map[string]string "Member removed"
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /groups/{id}/members/{studentId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	studentID, err := strconv.ParseUint(c.Param("studentId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	result := h.db.Where("group_id = ? AND student_id = ?", group.ID, studentID).
		Delete(&models.GroupMembership{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// RegisterMemberRoutes registers member management routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/members", auth.RequireRole(auth.RoleTeacher), h.ListMembers)
	rg.GET("/:id/available-students", auth.RequireRole(auth.RoleTeacher), h.AvailableStudents)
	rg.POST("/:id/members", auth.RequireRole(auth.RoleTeacher), h.AddMembers)
	rg.DELETE("/:id/members/:studentId", auth.RequireRole(auth.RoleTeacher), h.RemoveMember)
}
