package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/admin"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/auth"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/bookings"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/catalog"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/database"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/groups"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/importexport"
	"github.com/Ignus70/KingswoodOrders/pkg/kingswood/models"
)

// @title KingswoodOrders API
// @version 1.0
// @description School meal-ordering backend: students book individual meals, teachers book meals for their groups, staff manage reference data and imports.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("KINGSWOOD_DB_PATH")
	if dbPath == "" {
		dbPath = "ordering.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Seed reference rows the import flow depends on
	if err := seedReferenceData(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	// Create a staff account if none exists
	if err := ensureStaffExists(database.GetDB()); err != nil {
		log.Fatalf("Failed to ensure staff account exists: %v", err)
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "kingswood-orders",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Everything else requires a valid token
		authed := api.Group("", auth.AuthMiddleware())

		// Reference data: reads for every role, writes for staff
		catalogHandler := catalog.NewHandler(database.GetDB())
		catalogHandler.RegisterRoutes(authed)
		catalogHandler.RegisterStaffRoutes(authed.Group("", auth.RequireRole(auth.RoleStaff)))

		// Groups (teacher-managed, students can list their own)
		groupsHandler := groups.NewHandler(database.GetDB())
		groupsGroup := authed.Group("/groups")
		groupsHandler.RegisterRoutes(groupsGroup)
		groupsHandler.RegisterMemberRoutes(groupsGroup)

		// Bookings (students and teachers)
		bookingsHandler := bookings.NewHandler(database.GetDB())
		bookingsHandler.RegisterRoutes(authed.Group("/bookings"))

		// Staff-only surfaces
		staff := authed.Group("", auth.RequireRole(auth.RoleStaff))

		importExportHandler := importexport.NewHandler(database.GetDB())
		importExportHandler.RegisterRoutes(staff)

		adminHandler := admin.NewHandler(database.GetDB())
		adminHandler.RegisterRoutes(staff.Group("/admin"))
	}

	// Start server
	port := os.Getenv("KINGSWOOD_PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting kingswood-orders server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// seedReferenceData inserts the gender rows and a default dietary option
// when the tables are empty
func seedReferenceData(db *gorm.DB) error {
	var genderCount int64
	if err := db.Model(&models.Gender{}).Count(&genderCount).Error; err != nil {
		return err
	}
	if genderCount == 0 {
		for _, name := range []string{"Male", "Female"} {
			if err := db.Create(&models.Gender{Name: name}).Error; err != nil {
				return err
			}
		}
		log.Println("Seeded gender reference rows")
	}

	var dietaryCount int64
	if err := db.Model(&models.DietaryOption{}).Count(&dietaryCount).Error; err != nil {
		return err
	}
	if dietaryCount == 0 {
		if err := db.Create(&models.DietaryOption{Name: "None"}).Error; err != nil {
			return err
		}
		log.Println("Seeded default dietary option")
	}

	return nil
}

// ensureStaffExists creates a bootstrap staff account if the staff table is
// empty. Credentials come from the environment, with development defaults.
func ensureStaffExists(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.StaffUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("KINGSWOOD_ADMIN_EMAIL")
	if email == "" {
		email = "admin@kingswood.local"
	}
	password := os.Getenv("KINGSWOOD_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Printf("WARNING: using default staff password - set KINGSWOOD_ADMIN_PASSWORD in production")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	staff := models.StaffUser{
		Name:         "System",
		Surname:      "Administrator",
		Email:        email,
		PasswordHash: hash,
	}
	if err := db.Create(&staff).Error; err != nil {
		return err
	}
	log.Printf("Created bootstrap staff account %s", email)
	return nil
}
