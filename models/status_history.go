package models

import "time"

// ApplicationStatusHistory tracks historical status changes for applications.
type ApplicationStatusHistory struct {
	HistoryID     int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	ApplicationID int       `gorm:"column:application_id" json:"application_id"`
	OldStatus     *string   `gorm:"column:old_status" json:"old_status"`
	NewStatus     string    `gorm:"column:new_status" json:"new_status"`
	ChangedBy     int       `gorm:"column:changed_by" json:"changed_by"`
	ChangedByRole string    `gorm:"column:changed_by_role" json:"changed_by_role"`
	Reason        *string   `gorm:"column:reason" json:"reason"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for ApplicationStatusHistory.
func (ApplicationStatusHistory) TableName() string {
	return "application_status_history"
}
