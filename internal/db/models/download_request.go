package models

import "time"

// DownloadRequest records an accepted document request and whether the
// notification endpoint was reached.
type DownloadRequest struct {
	ID uint64 `gorm:"primaryKey"`
	// Reference is the code shown to the requester.
	Reference     string `gorm:"size:20;not null;uniqueIndex"`
	Kind          string `gorm:"size:20;not null;index"`
	ResourceID    string `gorm:"size:255;not null"`
	ResourceTitle string `gorm:"size:255"`
	CompanyName   string `gorm:"size:255;not null"`
	ContactPerson string `gorm:"size:255;not null"`
	Email         string `gorm:"size:254;not null"`
	Phone         string `gorm:"size:50;not null"`
	Address       string `gorm:"size:500;not null"`
	// Notification is "delivered" or "failed".
	Notification string `gorm:"size:20;not null"`
	// NotifyStatusCode is the endpoint's HTTP status, zero when it was not reached.
	NotifyStatusCode int
	CreatedAt        time.Time `gorm:"index"`
}

// TableName overrides GORM's default table naming.
func (DownloadRequest) TableName() string {
	return "download_requests"
}
