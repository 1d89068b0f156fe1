package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

	authed := r.Group("")
	authed.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(authed)
	handler.RegisterStaffRoutes(authed.Group("", auth.RequireRole(auth.RoleStaff)))

	return r
}

func staffHeader() string {
	token, _ := auth.GenerateToken(1, "ada@school.test", auth.RoleStaff)
	return "Bearer " + token
}

func studentHeader() string {
	token, _ := auth.GenerateToken(2, "sam@school.test", auth.RoleStudent)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, authHeader string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateAndListMeals(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "POST", "/meals", staffHeader(), NameRequest{Name: "Pizza"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "GET", "/meals", studentHeader(), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var meals []models.Meal
	json.Unmarshal(resp.Body.Bytes(), &meals)
	if len(meals) != 1 || meals[0].Name != "Pizza" {
		t.Errorf("Expected [Pizza], got %+v", meals)
	}
}

func TestDuplicateMealRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	doJSON(router, "POST", "/meals", staffHeader(), NameRequest{Name: "Pizza"})
	resp := doJSON(router, "POST", "/meals", staffHeader(), NameRequest{Name: "Pizza"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", resp.Code)
	}
}

func TestRenameMeal(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	doJSON(router, "POST", "/meals", staffHeader(), NameRequest{Name: "Pizza"})
	resp := doJSON(router, "PUT", "/meals/1", staffHeader(), NameRequest{Name: "Margherita"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var meal models.Meal
	db.First(&meal, 1)
	if meal.Name != "Margherita" {
		t.Errorf("Expected renamed meal, got %q", meal.Name)
	}
}

func TestRenameUnknownMeal(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "PUT", "/meals/99", staffHeader(), NameRequest{Name: "Ghost"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.Code)
	}
}

func TestMealWritesAreStaffOnly(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "POST", "/meals", studentHeader(), NameRequest{Name: "Pizza"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403 for student, got %d", resp.Code)
	}
}

func TestDietaryOptionCRUD(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "POST", "/dietary-options", staffHeader(), NameRequest{Name: "Vegetarian"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "PUT", "/dietary-options/1", staffHeader(), NameRequest{Name: "Vegan"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	resp = doJSON(router, "GET", "/dietary-options", studentHeader(), nil)
	var options []models.DietaryOption
	json.Unmarshal(resp.Body.Bytes(), &options)
	if len(options) != 1 || options[0].Name != "Vegan" {
		t.Errorf("Expected [Vegan], got %+v", options)
	}
}

func TestListGenders(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	db.Create(&models.Gender{Name: "Male"})
	db.Create(&models.Gender{Name: "Female"})

	resp := doJSON(router, "GET", "/genders", studentHeader(), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var genders []models.Gender
	json.Unmarshal(resp.Body.Bytes(), &genders)
	if len(genders) != 2 {
		t.Errorf("Expected 2 genders, got %d", len(genders))
	}
}
