package models

import "time"

// ApplicationDocument represents a file uploaded for an application.
type ApplicationDocument struct {
	DocumentID       int       `gorm:"primaryKey;column:document_id" json:"document_id"`
	ApplicationID    int       `gorm:"column:application_id" json:"application_id"`
	DocumentType     string    `gorm:"column:document_type" json:"document_type"`
	Filename         string    `gorm:"column:filename" json:"filename"`
	OriginalFilename string    `gorm:"column:original_filename" json:"original_filename"`
	FilePath         string    `gorm:"column:file_path" json:"-"`
	FileSize         int64     `gorm:"column:file_size" json:"file_size"`
	ContentType      string    `gorm:"column:content_type" json:"content_type"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// Stage names for StageDocument rows.
const (
	StageInterview = "interview"
	StageCAS       = "cas"
	StageVisa      = "visa"
)

// ValidStages returns the stages that carry a document requirement set.
func ValidStages() []string {
	return []string{StageInterview, StageCAS, StageVisa}
}

// IsStageValid checks if the given stage name is known.
func IsStageValid(stage string) bool {
	for _, s := range ValidStages() {
		if stage == s {
			return true
		}
	}
	return false
}

// StageDocument links an application to a document type the admin configured
// as required for one stage (interview/cas/visa). Rows are never deleted on
// reconfiguration; unselected types are kept with is_active=false so upload
// history survives.
type StageDocument struct {
	StageDocumentID    int       `gorm:"primaryKey;column:stage_document_id" json:"stage_document_id"`
	ApplicationID      int       `gorm:"column:application_id" json:"application_id"`
	Stage              string    `gorm:"column:stage" json:"stage"`
	DocumentTypeID     int       `gorm:"column:document_type_id" json:"document_type_id"`
	DocumentName       string    `gorm:"column:document_name" json:"document_name"`
	Description        *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	IsRequired         bool      `gorm:"column:is_required;default:true" json:"is_required"`
	IsUploaded         bool      `gorm:"column:is_uploaded;default:false" json:"is_uploaded"`
	IsActive           bool      `gorm:"column:is_active;default:true" json:"is_active"`
	UploadedDocumentID *int      `gorm:"column:uploaded_document_id" json:"uploaded_document_id,omitempty"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	DocumentType     DocumentType         `gorm:"foreignKey:DocumentTypeID" json:"document_type,omitempty"`
	UploadedDocument *ApplicationDocument `gorm:"foreignKey:UploadedDocumentID" json:"uploaded_document,omitempty"`
}

// TableName overrides
func (ApplicationDocument) TableName() string {
	return "application_documents"
}

func (StageDocument) TableName() string {
	return "application_stage_documents"
}

// Helper methods for file validation
func (d *ApplicationDocument) IsValidUploadType() bool {
	validTypes := []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"image/jpeg",
		"image/png",
	}
	for _, validType := range validTypes {
		if d.ContentType == validType {
			return true
		}
	}
	return false
}

func (d *ApplicationDocument) GetFileSizeInMB() float64 {
	return float64(d.FileSize) / (1024 * 1024)
}
