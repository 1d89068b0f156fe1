package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	staff := r.Group("/admin")
	staff.Use(auth.AuthMiddleware(), auth.RequireRole(auth.RoleStaff))
	handler.RegisterRoutes(staff)

	return r
}

func staffGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	token, _ := auth.GenerateToken(1, "ada@school.test", auth.RoleStaff)
	req, _ := http.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func mustDate(t *testing.T, value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Bad test date %q: %v", value, err)
	}
	return parsed.UTC()
}

// seedBookings creates one individual and one group booking with their
// link rows, plus the reference rows they depend on.
func seedBookings(t *testing.T, db *gorm.DB) {
	gender := models.Gender{Name: "Male"}
	db.Create(&gender)
	dietary := models.DietaryOption{Name: "None"}
	db.Create(&dietary)

	student := models.Student{
		Name: "Sam", Surname: "Abbott", GenderID: gender.ID, Grade: 8,
		DietaryOptionID: dietary.ID, Email: "sam@school.test", PasswordHash: "x",
	}
	db.Create(&student)
	teacher := models.Teacher{Name: "Tina", Surname: "Marsh", Email: "tina@school.test", PasswordHash: "x"}
	db.Create(&teacher)
	meal := models.Meal{Name: "Pizza"}
	db.Create(&meal)
	group := models.Group{Name: "Chess Club", TeacherID: teacher.ID}
	db.Create(&group)

	individual := models.Order{MealID: meal.ID, StudentID: &student.ID, MealDate: mustDate(t, "2026-09-01")}
	if err := db.Create(&individual).Error; err != nil {
		t.Fatalf("Failed to seed individual order: %v", err)
	}
	db.Create(&models.OrderGroupLink{OrderID: individual.ID, StudentID: &student.ID})

	grouped := models.Order{MealID: meal.ID, TeacherID: &teacher.ID, MealDate: mustDate(t, "2026-09-03"), Notes: "after practice"}
	if err := db.Create(&grouped).Error; err != nil {
		t.Fatalf("Failed to seed group order: %v", err)
	}
	db.Create(&models.OrderGroupLink{OrderID: grouped.ID, GroupID: &group.ID})
}

func TestListBookingsRollUp(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	seedBookings(t, db)

	resp := staffGet(router, "/admin/bookings")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var rows []BookingRow
	json.Unmarshal(resp.Body.Bytes(), &rows)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	// Meal date ascending: the individual booking comes first
	if rows[0].Role != "student" || rows[0].BookedBy != "Sam Abbott" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[0].Group != "" {
		t.Errorf("Individual booking must not carry a group name, got %q", rows[0].Group)
	}
	if rows[1].Role != "teacher" || rows[1].Group != "Chess Club" {
		t.Errorf("Expected group booking with group name, got %+v", rows[1])
	}
	if rows[1].Notes != "after practice" {
		t.Errorf("Expected notes on group booking, got %q", rows[1].Notes)
	}
}

func TestListBookingsFromFilter(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	seedBookings(t, db)

	resp := staffGet(router, "/admin/bookings?from=2026-09-02")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var rows []BookingRow
	json.Unmarshal(resp.Body.Bytes(), &rows)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row after filter, got %d", len(rows))
	}
	if rows[0].MealDate != "2026-09-03" {
		t.Errorf("Expected the later booking only, got %+v", rows[0])
	}
}

func TestListBookingsRejectsBadFromDate(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := staffGet(router, "/admin/bookings?from=tomorrow")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.Code)
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	seedBookings(t, db)

	resp := staffGet(router, "/admin/stats")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var stats StatsResponse
	json.Unmarshal(resp.Body.Bytes(), &stats)
	if stats.TotalStudents != 1 || stats.TotalTeachers != 1 || stats.TotalGroups != 1 {
		t.Errorf("Unexpected actor counts: %+v", stats)
	}
	if stats.TotalMeals != 1 || stats.TotalOrders != 2 {
		t.Errorf("Unexpected catalog/order counts: %+v", stats)
	}
}

func TestAdminRoutesAreStaffOnly(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	token, _ := auth.GenerateToken(1, "tina@school.test", auth.RoleTeacher)
	req, _ := http.NewRequest("GET", "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403 for teacher, got %d", resp.Code)
	}
}
