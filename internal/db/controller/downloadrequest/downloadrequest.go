// Package downloadrequest stores the audit trail of accepted document requests.
package downloadrequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/corpsite/corpsite/internal/db/models"
)

// DefaultRecentLimit is how many requests the dashboard lists.
const DefaultRecentLimit = 10

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrReferenceEmpty is returned when a request has no reference code.
	ErrReferenceEmpty = errors.New("download request reference cannot be empty")
	// ErrNotFound is returned when no request has the reference.
	ErrNotFound = errors.New("download request not found")
)

// Stats summarizes stored requests.
type Stats struct {
	Total     int64
	Delivered int64
	Failed    int64
	Last24h   int64
}

// Create stores an accepted request.
func Create(ctx context.Context, db *gorm.DB, req *models.DownloadRequest) error {
	if db == nil {
		return ErrDBNil
	}

	if req.Reference == "" {
		return ErrReferenceEmpty
	}

	if err := db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to store download request %s: %w", req.Reference, err)
	}

	return nil
}

// GetByReference returns the request with the reference code.
func GetByReference(ctx context.Context, db *gorm.DB, reference string) (*models.DownloadRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if reference == "" {
		return nil, ErrReferenceEmpty
	}

	var req models.DownloadRequest

	err := db.WithContext(ctx).Where("reference = ?", reference).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load download request %s: %w", reference, err)
	}

	return &req, nil
}

// Recent returns the newest requests first. A limit below one uses DefaultRecentLimit.
func Recent(ctx context.Context, db *gorm.DB, limit int) ([]models.DownloadRequest, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if limit < 1 {
		limit = DefaultRecentLimit
	}

	var out []models.DownloadRequest

	err := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list download requests: %w", err)
	}

	return out, nil
}

// Summary counts requests by notification outcome relative to now.
func Summary(ctx context.Context, db *gorm.DB, now time.Time) (Stats, error) {
	if db == nil {
		return Stats{}, ErrDBNil
	}

	var (
		stats Stats
		rows  []struct {
			Notification string
			Total        int64
		}
	)

	q := db.WithContext(ctx).Model(&models.DownloadRequest{})

	if err := q.Select("notification, count(*) as total").Group("notification").Scan(&rows).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count download requests: %w", err)
	}

	for _, row := range rows {
		stats.Total += row.Total

		switch row.Notification {
		case "delivered":
			stats.Delivered = row.Total
		case "failed":
			stats.Failed = row.Total
		}
	}

	err := db.WithContext(ctx).Model(&models.DownloadRequest{}).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Count(&stats.Last24h).Error
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count recent download requests: %w", err)
	}

	return stats, nil
}
