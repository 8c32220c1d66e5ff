// Database setup: runs migrations and seeds reference data
package main

import (
	"log"

	"uni-application-api/config"
	"uni-application-api/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	config.InitDB(cfg)

	log.Println("Running migrations...")
	if err := config.DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Student{},
		&models.Program{},
		&models.ProgramRequiredDocument{},
		&models.DocumentType{},
		&models.Application{},
		&models.ApplicationDocument{},
		&models.StageDocument{},
		&models.ApplicationStatusHistory{},
	); err != nil {
		log.Fatal("Migration failed:", err)
	}

	seedRoles()
	seedDocumentTypes()
	seedPrograms()

	log.Println("Database setup completed")
}

func seedRoles() {
	roles := []models.Role{
		{RoleID: models.RoleStudent, Role: "student"},
		{RoleID: models.RoleAdmin, Role: "admin"},
	}
	for _, role := range roles {
		var existing models.Role
		if err := config.DB.Where("role_id = ?", role.RoleID).First(&existing).Error; err == nil {
			continue
		}
		if err := config.DB.Create(&role).Error; err != nil {
			log.Printf("Failed to seed role %s: %v", role.Role, err)
		}
	}
	log.Println("Roles seeded")
}

func seedDocumentTypes() {
	str := func(s string) *string { return &s }

	defaults := []models.DocumentType{
		{Name: "Academic Transcript", Description: str("Official academic transcript from your previous institution"), Category: "academic", IsCommon: true},
		{Name: "Personal Statement", Description: str("A personal statement explaining your motivation and goals"), Category: "academic", IsCommon: true},
		{Name: "English Language Certificate", Description: str("IELTS, TOEFL, or PTE certificate proving English proficiency"), Category: "academic", IsCommon: true},
		{Name: "Passport Copy", Description: str("Clear copy of your passport bio page"), Category: "identity", IsCommon: true},
		{Name: "Letter of Recommendation", Description: str("Academic or professional reference letter"), Category: "academic", IsCommon: true},
		{Name: "CV/Resume", Description: str("Current curriculum vitae or resume"), Category: "academic", IsCommon: true},
		{Name: "Financial Statement", Description: str("Bank statements or financial guarantee letter"), Category: "financial", IsCommon: true},
		{Name: "Degree Certificate", Description: str("Copy of your degree certificate (if graduated)"), Category: "academic", IsCommon: false},
		{Name: "Portfolio", Description: str("Portfolio of work (for creative programs)"), Category: "academic", IsCommon: false},
		{Name: "Research Proposal", Description: str("Detailed research proposal (for research programs)"), Category: "academic", IsCommon: false},
		{Name: "Work Experience Letter", Description: str("Letter from employer detailing work experience"), Category: "professional", IsCommon: false},
		{Name: "TB Test Certificate", Description: str("Tuberculosis test certificate for visa application"), Category: "visa", IsCommon: false},
		{Name: "CAS Statement", Description: str("Confirmation of Acceptance for Studies issued by the university"), Category: "visa", IsCommon: false},
	}

	created := 0
	for _, docType := range defaults {
		var existing models.DocumentType
		if err := config.DB.Where("name = ?", docType.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := config.DB.Create(&docType).Error; err != nil {
			log.Printf("Failed to seed document type %s: %v", docType.Name, err)
			continue
		}
		created++
	}
	log.Printf("Document types seeded (%d created)", created)
}

func seedPrograms() {
	fee := func(f float64) *float64 { return &f }
	months := func(m int) *int { return &m }

	programs := []models.Program{
		{UniversityName: "University of Oxford", ProgramName: "MSc Computer Science", ProgramLevel: "postgraduate", City: "Oxford", FieldOfStudy: "Computer Science", TuitionFeeGBP: fee(29700), DurationMonths: months(12), IsActive: true},
		{UniversityName: "University of Cambridge", ProgramName: "MPhil Management", ProgramLevel: "postgraduate", City: "Cambridge", FieldOfStudy: "Business Management", TuitionFeeGBP: fee(31500), DurationMonths: months(12), IsActive: true},
		{UniversityName: "Imperial College London", ProgramName: "MSc Data Science", ProgramLevel: "postgraduate", City: "London", FieldOfStudy: "Data Science", TuitionFeeGBP: fee(35900), DurationMonths: months(12), IsActive: true},
		{UniversityName: "London School of Economics", ProgramName: "MSc Economics", ProgramLevel: "postgraduate", City: "London", FieldOfStudy: "Economics", TuitionFeeGBP: fee(32208), DurationMonths: months(12), IsActive: true},
		{UniversityName: "University College London", ProgramName: "MSc Engineering", ProgramLevel: "postgraduate", City: "London", FieldOfStudy: "Engineering", TuitionFeeGBP: fee(31200), DurationMonths: months(12), IsActive: true},
		{UniversityName: "University of Edinburgh", ProgramName: "MSc Artificial Intelligence", ProgramLevel: "postgraduate", City: "Edinburgh", FieldOfStudy: "Artificial Intelligence", TuitionFeeGBP: fee(28800), DurationMonths: months(12), IsActive: true},
	}

	created := 0
	for _, program := range programs {
		var existing models.Program
		err := config.DB.Where("university_name = ? AND program_name = ?", program.UniversityName, program.ProgramName).
			First(&existing).Error
		if err == nil {
			continue
		}

		if err := config.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&program).Error; err != nil {
				return err
			}
			checklist := requiredDocuments(program.ProgramID)
			return tx.Create(&checklist).Error
		}); err != nil {
			log.Printf("Failed to seed program %s: %v", program.ProgramName, err)
			continue
		}
		created++
	}
	log.Printf("Programs seeded (%d created)", created)
}

// requiredDocuments is the default pre-submission checklist for a program.
func requiredDocuments(programID int) []models.ProgramRequiredDocument {
	return []models.ProgramRequiredDocument{
		{ProgramID: programID, DocumentType: "transcript", DocumentName: "Academic Transcript", IsRequired: true},
		{ProgramID: programID, DocumentType: "english_certificate", DocumentName: "English Language Certificate", IsRequired: true},
		{ProgramID: programID, DocumentType: "passport", DocumentName: "Passport Copy", IsRequired: true},
		{ProgramID: programID, DocumentType: "cv", DocumentName: "CV/Resume", IsRequired: false},
	}
}
