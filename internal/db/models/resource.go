package models

import "time"

// Resource is a tender or contract document of the public catalogs.
type Resource struct {
	ID uint `gorm:"primaryKey"`
	// Kind is "tender" or "contract".
	Kind string `gorm:"size:20;not null;uniqueIndex:idx_kind_identifier"`
	// Identifier is the tender id or the contract title, unique per kind.
	Identifier    string   `gorm:"size:255;not null;uniqueIndex:idx_kind_identifier"`
	Title         string   `gorm:"size:255;not null"`
	Category      string   `gorm:"size:100"`
	Status        string   `gorm:"size:20;not null;index"`
	PublishedDate string   `gorm:"size:10;not null"`
	ClosingDate   string   `gorm:"size:10"`
	Location      string   `gorm:"size:255"`
	FileSize      string   `gorm:"size:20"`
	DocumentURL   string   `gorm:"size:500;not null"`
	Description   string   `gorm:"type:text"`
	Requirements  []string `gorm:"serializer:json"`
	// Position keeps the catalog order stable.
	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default table naming.
func (Resource) TableName() string {
	return "resources"
}
