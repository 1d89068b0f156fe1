package importexport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// Handler handles bulk student import and roster export
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// requiredColumns is the import header contract. "Border" is the source
// system's name for the boarding flag and is kept for file compatibility.
var requiredColumns = []string{"Name", "Surname", "Gender", "Grade", "Border", "Dietary", "Email", "Password"}

// ImportResult represents the outcome of a student import
type ImportResult struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// importReader returns the CSV source: an uploaded "file" form field when
// the request is multipart, otherwise the raw request body
func importReader(c *gin.Context) (io.ReadCloser, error) {
	file, err := c.FormFile("file")
	if err == nil {
		return file.Open()
	}
	if c.Request.Body == nil {
		return nil, errors.New("no file provided")
	}
	return c.Request.Body, nil
}

// parseBoarder accepts the boolean spellings that show up in roster sheets
func parseBoarder(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// ImportStudents imports students from a CSV file. A missing required
// column rejects the whole batch before any row is processed; a row whose
// Gender or Dietary value has no matching reference row is skipped and the
// batch continues. Existing emails are updated in place.
// @Summary Import students
// @Description Bulk-import students from CSV; columns Name, Surname, Gender, Grade, Border, Dietary, Email, Password
// @Tags import
// @Accept mpfd
// @Produce json
// @Success 200 {object} ImportResult
// @Failure 400 {object} map[string]string "Missing required column"
// @Security BearerAuth
// @Router /import/students [post]
func (h *Handler) ImportStudents(c *gin.Context) {
	src, err := importReader(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read CSV header"})
		return
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required column(s): " + strings.Join(missing, ", "),
		})
		return
	}

	result := ImportResult{Errors: []string{}}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			result.Skipped++
			continue
		}

		field := func(name string) string { return strings.TrimSpace(record[col[name]]) }

		var gender models.Gender
		if err := h.db.Where("name = ?", field("Gender")).First(&gender).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: gender %q does not exist", rowNum, field("Gender")))
			result.Skipped++
			continue
		}

		var dietary models.DietaryOption
		if err := h.db.Where("name = ?", field("Dietary")).First(&dietary).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: dietary option %q does not exist", rowNum, field("Dietary")))
			result.Skipped++
			continue
		}

		grade, err := strconv.Atoi(field("Grade"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid grade %q", rowNum, field("Grade")))
			result.Skipped++
			continue
		}

		boarder, err := parseBoarder(field("Border"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid boarding flag %q", rowNum, field("Border")))
			result.Skipped++
			continue
		}

		hash, err := auth.HashPassword(field("Password"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: failed to hash password", rowNum))
			result.Skipped++
			continue
		}

		// Import overwrites: an existing email updates the student in place
		var existing models.Student
		if err := h.db.Where("email = ?", field("Email")).First(&existing).Error; err == nil {
			existing.Name = field("Name")
			existing.Surname = field("Surname")
			existing.GenderID = gender.ID
			existing.Grade = grade
			existing.Boarder = boarder
			existing.DietaryOptionID = dietary.ID
			existing.PasswordHash = hash
			if err := h.db.Save(&existing).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
				result.Skipped++
				continue
			}
			result.Updated++
			continue
		}

		student := models.Student{
			Name:            field("Name"),
			Surname:         field("Surname"),
			GenderID:        gender.ID,
			Grade:           grade,
			Boarder:         boarder,
			DietaryOptionID: dietary.ID,
			Email:           field("Email"),
			PasswordHash:    hash,
		}
		if err := h.db.Create(&student).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			result.Skipped++
			continue
		}
		result.Imported++
	}

	c.JSON(http.StatusOK, result)
}

// ExportStudents writes the current roster as CSV, ordered by grade then
// surname. Passwords are never exported.
// @Summary Export students
// @Description Download the roster as CSV ordered by grade ascending then surname ascending
// @Tags import
// @Produce text/csv
// @Success 200 {string} string "CSV data"
// @Security BearerAuth
// @Router /export/students [get]
func (h *Handler) ExportStudents(c *gin.Context) {
	var students []models.Student
	if err := h.db.Preload("Gender").Preload("DietaryOption").
		Order("grade ASC, surname ASC").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"Name", "Surname", "Gender", "Grade", "Border", "Dietary", "Email"})
	for _, s := range students {
		boarder := "No"
		if s.Boarder {
			boarder = "Yes"
		}
		w.Write([]string{
			s.Name,
			s.Surname,
			s.Gender.Name,
			strconv.Itoa(s.Grade),
			boarder,
			s.DietaryOption.Name,
			s.Email,
		})
	}
	w.Flush()
}

// RegisterRoutes registers import/export routes. The group is expected to
// be staff-gated.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import/students", h.ImportStudents)
	rg.GET("/export/students", h.ExportStudents)
}
