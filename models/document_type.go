package models

import "time"

// DocumentType is a shared catalog entry admins pick from when configuring a
// stage's document requirements.
type DocumentType struct {
	DocumentTypeID int        `gorm:"primaryKey;column:document_type_id" json:"document_type_id"`
	Name           string     `gorm:"column:name;unique" json:"name"`
	Description    *string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Category       string     `gorm:"column:category" json:"category"`
	IsCommon       bool       `gorm:"column:is_common;default:true" json:"is_common"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName overrides the table name
func (DocumentType) TableName() string {
	return "document_types"
}

// CreateDocumentTypeRequest represents the request for creating a catalog entry
type CreateDocumentTypeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	IsCommon    bool    `json:"is_common"`
}

// UpdateDocumentTypeRequest represents the request for updating a catalog entry
type UpdateDocumentTypeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsCommon    *bool   `json:"is_common,omitempty"`
}
