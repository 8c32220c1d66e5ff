package models

import (
	"time"
)

type Student struct {
	StudentID       int        `gorm:"primaryKey;column:student_id" json:"student_id"`
	FullName        string     `gorm:"column:full_name" json:"full_name"`
	Email           string     `gorm:"column:email;unique" json:"email"`
	HashedPassword  string     `gorm:"column:hashed_password" json:"-"`
	IsActive        bool       `gorm:"column:is_active;default:true" json:"is_active"`
	PhoneNumber     *string    `gorm:"column:phone_number" json:"phone_number,omitempty"`
	CountryOfOrigin *string    `gorm:"column:country_of_origin" json:"country_of_origin,omitempty"`
	AcademicLevel   *string    `gorm:"column:academic_level" json:"academic_level,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt       *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Applications []Application `gorm:"foreignKey:StudentID" json:"applications,omitempty"`
}

// TableName overrides
func (Student) TableName() string {
	return "students"
}
