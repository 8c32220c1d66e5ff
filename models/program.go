package models

import "time"

// Program represents a UK university program students apply to.
type Program struct {
	ProgramID      int        `gorm:"primaryKey;column:program_id" json:"program_id"`
	UniversityName string     `gorm:"column:university_name" json:"university_name"`
	ProgramName    string     `gorm:"column:program_name" json:"program_name"`
	ProgramLevel   string     `gorm:"column:program_level" json:"program_level"`
	City           string     `gorm:"column:city" json:"city"`
	FieldOfStudy   string     `gorm:"column:field_of_study" json:"field_of_study"`
	TuitionFeeGBP  *float64   `gorm:"column:tuition_fee_gbp" json:"tuition_fee_gbp,omitempty"`
	DurationMonths *int       `gorm:"column:duration_months" json:"duration_months,omitempty"`
	IsActive       bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	RequiredDocuments []ProgramRequiredDocument `gorm:"foreignKey:ProgramID" json:"required_documents,omitempty"`
}

// ProgramRequiredDocument lists documents a student must upload before the
// initial application submission for a given program.
type ProgramRequiredDocument struct {
	RequiredDocumentID int       `gorm:"primaryKey;column:required_document_id" json:"required_document_id"`
	ProgramID          int       `gorm:"column:program_id" json:"program_id"`
	DocumentType       string    `gorm:"column:document_type" json:"document_type"`
	DocumentName       string    `gorm:"column:document_name" json:"document_name"`
	Description        *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	IsRequired         bool      `gorm:"column:is_required;default:true" json:"is_required"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (Program) TableName() string {
	return "uk_programs"
}

func (ProgramRequiredDocument) TableName() string {
	return "program_required_documents"
}
