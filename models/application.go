package models

import (
	"time"
)

// Application represents one student's application to a program. The status
// column holds the workflow state (see services.Status for the enumeration).
type Application struct {
	ApplicationID int    `gorm:"primaryKey;column:application_id" json:"application_id"`
	StudentID     int    `gorm:"column:student_id" json:"student_id"`
	ProgramID     int    `gorm:"column:program_id" json:"program_id"`
	Status        string `gorm:"column:status;default:draft" json:"status"`

	PersonalStatement *string `gorm:"column:personal_statement;type:text" json:"personal_statement,omitempty"`
	AdditionalNotes   *string `gorm:"column:additional_notes;type:text" json:"additional_notes,omitempty"`

	// Admin notes and decisions
	AdminNotes     *string    `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	DecisionDate   *time.Time `gorm:"column:decision_date" json:"decision_date,omitempty"`
	DecisionReason *string    `gorm:"column:decision_reason;type:text" json:"decision_reason,omitempty"`

	// Offer letter
	OfferLetterRequestedAt *time.Time `gorm:"column:offer_letter_requested_at" json:"offer_letter_requested_at,omitempty"`
	OfferLetterReceivedAt  *time.Time `gorm:"column:offer_letter_received_at" json:"offer_letter_received_at,omitempty"`
	OfferLetterFile        StoredFile `gorm:"embedded;embeddedPrefix:offer_letter_" json:"offer_letter_file"`

	// Interview
	InterviewDocumentsConfiguredAt *time.Time `gorm:"column:interview_documents_configured_at" json:"interview_documents_configured_at,omitempty"`
	InterviewRequestedAt           *time.Time `gorm:"column:interview_requested_at" json:"interview_requested_at,omitempty"`
	InterviewScheduledAt           *time.Time `gorm:"column:interview_scheduled_at" json:"interview_scheduled_at,omitempty"`
	InterviewDate                  *time.Time `gorm:"column:interview_date" json:"interview_date,omitempty"`
	InterviewLocation              *string    `gorm:"column:interview_location" json:"interview_location,omitempty"`
	InterviewMeetingLink           *string    `gorm:"column:interview_meeting_link" json:"interview_meeting_link,omitempty"`
	InterviewNotes                 *string    `gorm:"column:interview_notes;type:text" json:"interview_notes,omitempty"`
	InterviewResult                *string    `gorm:"column:interview_result" json:"interview_result,omitempty"`
	InterviewResultNotes           *string    `gorm:"column:interview_result_notes;type:text" json:"interview_result_notes,omitempty"`
	InterviewResultDate            *time.Time `gorm:"column:interview_result_date" json:"interview_result_date,omitempty"`

	// CAS
	CASDocumentsConfiguredAt *time.Time `gorm:"column:cas_documents_configured_at" json:"cas_documents_configured_at,omitempty"`
	CASDocumentsSubmittedAt  *time.Time `gorm:"column:cas_documents_submitted_at" json:"cas_documents_submitted_at,omitempty"`
	CASReceivedAt            *time.Time `gorm:"column:cas_received_at" json:"cas_received_at,omitempty"`
	CASNotes                 *string    `gorm:"column:cas_notes;type:text" json:"cas_notes,omitempty"`
	CASFile                  StoredFile `gorm:"embedded;embeddedPrefix:cas_" json:"cas_file"`

	// Visa
	VisaEnabledAt             *time.Time `gorm:"column:visa_enabled_at" json:"visa_enabled_at,omitempty"`
	VisaDocumentsConfiguredAt *time.Time `gorm:"column:visa_documents_configured_at" json:"visa_documents_configured_at,omitempty"`
	VisaDocumentsSubmittedAt  *time.Time `gorm:"column:visa_documents_submitted_at" json:"visa_documents_submitted_at,omitempty"`
	VisaAppliedAt             *time.Time `gorm:"column:visa_applied_at" json:"visa_applied_at,omitempty"`
	VisaReceivedAt            *time.Time `gorm:"column:visa_received_at" json:"visa_received_at,omitempty"`
	VisaNotes                 *string    `gorm:"column:visa_notes;type:text" json:"visa_notes,omitempty"`
	VisaFile                  StoredFile `gorm:"embedded;embeddedPrefix:visa_" json:"visa_file"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Student        Student               `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Program        Program               `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Documents      []ApplicationDocument `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`
	StageDocuments []StageDocument       `gorm:"foreignKey:ApplicationID" json:"stage_documents,omitempty"`
}

// StoredFile groups the columns describing one uploaded file reference.
type StoredFile struct {
	Filename         *string `gorm:"column:filename" json:"filename,omitempty"`
	OriginalFilename *string `gorm:"column:original_filename" json:"original_filename,omitempty"`
	Path             *string `gorm:"column:path" json:"-"`
	Size             *int64  `gorm:"column:size" json:"size,omitempty"`
}

// IsSet reports whether a file reference has been recorded.
func (f StoredFile) IsSet() bool {
	return f.Path != nil && *f.Path != "" && f.Filename != nil && *f.Filename != ""
}

// TableName overrides the table name
func (Application) TableName() string {
	return "applications"
}
