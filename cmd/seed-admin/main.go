// Seed script to create the default admin user
package main

import (
	"flag"
	"log"

	"uni-application-api/config"
	"uni-application-api/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	name := flag.String("name", "System Administrator", "admin full name")
	password := flag.String("password", "admin123", "initial password")
	flag.Parse()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	config.InitDB(cfg)

	var existing models.User
	if err := config.DB.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Printf("Admin user already exists: %s (%s)", existing.Email, existing.FullName)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := models.User{
		FullName:       *name,
		Email:          *email,
		HashedPassword: string(hashed),
		RoleID:         models.RoleAdmin,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("Admin user created: %s", admin.Email)
	log.Println("Change the default password after first login")
}
