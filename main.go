package main

import (
	"log"
	"telecom-backend/config"
	"telecom-backend/internal/api"
	"telecom-backend/internal/database"
	"telecom-backend/internal/models"
	"telecom-backend/pkg/logger"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// @title telecom-backend API
// @version 1.0
// @description REST API for managing telecommunications invoices.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(&models.User{}, &models.Invoice{})
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if cfg.SeedDemoData {
		seedDemoData()
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// seedDemoData creates a demo account with a few invoices across statuses
// so a fresh install has something to show.
func seedDemoData() {
	demoUsername := "demo"
	demoPassword := "demo123"

	var demoUser models.User
	result := database.DB.Where("username = ?", demoUsername).First(&demoUser)
	if result.Error == nil {
		log.Println("Demo user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash demo password: %v", err)
	}

	demoUser = models.User{
		Username:     demoUsername,
		PasswordHash: string(hashedPassword),
		Email:        "demo@example.com",
		FullName:     "Demo User",
	}

	if err := database.DB.Create(&demoUser).Error; err != nil {
		log.Fatalf("failed to create demo user: %v", err)
	}

	now := time.Now()
	invoices := []models.Invoice{
		{UserID: demoUser.ID, Amount: 49.99, IssueDate: now.AddDate(0, -1, 0), DueDate: datePtr(now.AddDate(0, 0, 15)), Status: models.InvoiceStatusPending, Description: "Monthly internet plan", InvoiceNumber: strPtr("FAC-DEMO0001")},
		{UserID: demoUser.ID, Amount: 25.50, IssueDate: now.AddDate(0, -2, 0), DueDate: datePtr(now.AddDate(0, -1, 0)), Status: models.InvoiceStatusPaid, Description: "Mobile data add-on", InvoiceNumber: strPtr("FAC-DEMO0002")},
		{UserID: demoUser.ID, Amount: 99.00, IssueDate: now.AddDate(0, -3, 0), DueDate: datePtr(now.AddDate(0, -2, 0)), Status: models.InvoiceStatusExpired, Description: "Landline bundle", InvoiceNumber: strPtr("FAC-DEMO0003")},
	}
	for i := range invoices {
		if err := database.DB.Create(&invoices[i]).Error; err != nil {
			log.Fatalf("failed to create demo invoice: %v", err)
		}
	}

	log.Println("Demo data created successfully!")
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}
