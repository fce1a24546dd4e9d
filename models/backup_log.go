package models

import "time"

// BackupLog is the append-only audit trail for backup and restore
// operations. Rows are never updated or deleted.
type BackupLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FileName   string `gorm:"size:255" json:"file_name"`
	FileSize   string `gorm:"size:32" json:"file_size"` // human readable, e.g. "1.2 MB"
	BackupType string `gorm:"size:32" json:"backup_type"`
	Action     string `gorm:"size:32" json:"action"` // backup | restore
	Status     string `gorm:"size:32" json:"status"` // success | failed

	CreatedBy uint      `gorm:"column:created_by" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
