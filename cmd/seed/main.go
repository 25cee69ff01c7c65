package main

import (
	"log"
	"os"
	"time"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the assistant account every room needs. Idempotent.
func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding assistant user...")

	var existing model.User
	err = db.Where("username = ?", constant.AssistantUsername).First(&existing).Error
	if err == nil {
		log.Printf("Assistant user '%s' already exists, skipping...", constant.AssistantUsername)
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("Error: Failed to query users: %v", err)
	}

	// The assistant never logs in; the password is a random throwaway.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}
	hashStr := string(hash)

	assistant := model.User{
		Id:           uuid.New(),
		Email:        constant.AssistantEmail,
		Username:     constant.AssistantUsername,
		PasswordHash: &hashStr,
		CreatedAt:    time.Now(),
	}

	if err := db.Create(&assistant).Error; err != nil {
		log.Fatalf("Error: Failed to create assistant user: %v", err)
	}

	log.Printf("✅ Created assistant user '%s' (%s)", assistant.Username, assistant.Id)
}
