// Package resource loads the tender and contract catalogs with gorm.
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/catalog"
	"github.com/corpsite/corpsite/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Store implements catalog.Store on the resources table.
type Store struct {
	db *gorm.DB
}

var _ catalog.Store = (*Store)(nil)

// New returns a Store using db.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Store{db: db}, nil
}

// Resources returns the catalog of kind in display order.
func (s *Store) Resources(ctx context.Context, kind catalog.Kind) ([]catalog.Resource, error) {
	var rows []models.Resource

	err := s.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Order("position, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s catalog: %w", kind, err)
	}

	out := make([]catalog.Resource, 0, len(rows))
	for i := range rows {
		out = append(out, toResource(&rows[i]))
	}

	return out, nil
}

// Resource returns one entry or catalog.ErrResourceNotFound.
func (s *Store) Resource(ctx context.Context, kind catalog.Kind, identifier string) (catalog.Resource, error) {
	var row models.Resource

	err := s.db.WithContext(ctx).
		Where("kind = ? AND identifier = ?", string(kind), identifier).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Resource{}, catalog.ErrResourceNotFound
	}

	if err != nil {
		return catalog.Resource{}, fmt.Errorf("failed to load %s %q: %w", kind, identifier, err)
	}

	return toResource(&row), nil
}

// Seed inserts resources when the table is empty and reports how many were added.
func Seed(ctx context.Context, db *gorm.DB, resources []catalog.Resource) (int, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Resource{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}

	if count > 0 || len(resources) == 0 {
		return 0, nil
	}

	rows := make([]models.Resource, 0, len(resources))
	for i, r := range resources {
		rows = append(rows, fromResource(r, i))
	}

	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("failed to seed resources: %w", err)
	}

	log.Info().Int("count", len(rows)).Msg("seeded catalog resources")

	return len(rows), nil
}

func fromResource(r catalog.Resource, position int) models.Resource {
	return models.Resource{
		Kind:          string(r.Kind),
		Identifier:    r.Identifier,
		Title:         r.Title,
		Category:      r.Category,
		Status:        string(r.Status),
		PublishedDate: r.PublishedDate,
		ClosingDate:   r.ClosingDate,
		Location:      r.Location,
		FileSize:      r.FileSize,
		DocumentURL:   r.DocumentURL,
		Description:   r.Description,
		Requirements:  r.Requirements,
		Position:      position,
	}
}

func toResource(row *models.Resource) catalog.Resource {
	return catalog.Resource{
		Kind:          catalog.Kind(row.Kind),
		Identifier:    row.Identifier,
		Title:         row.Title,
		Category:      row.Category,
		Status:        catalog.Status(row.Status),
		PublishedDate: row.PublishedDate,
		ClosingDate:   row.ClosingDate,
		Location:      row.Location,
		FileSize:      row.FileSize,
		DocumentURL:   row.DocumentURL,
		Description:   row.Description,
		Requirements:  row.Requirements,
	}
}
