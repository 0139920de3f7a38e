package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/auth-service/internal/auditlog"
	auditlogDatamodel "github.com/frahmantamala/auth-service/internal/core/datamodel/auditlog"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auditlog.Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, entry *auditlog.Entry) error {
	record := auditlogDatamodel.AuditLog{
		EventName:    entry.EventName,
		EventDetails: entry.EventDetails,
		Username:     entry.Username,
		UserRole:     entry.UserRole,
		EmployeeID:   entry.EmployeeID,
		Timestamp:    entry.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	entry.ID = record.ID
	return nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*auditlog.Entry, error) {
	var records []auditlogDatamodel.AuditLog
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*auditlog.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, &auditlog.Entry{
			ID:           record.ID,
			EventName:    record.EventName,
			EventDetails: record.EventDetails,
			Username:     record.Username,
			UserRole:     record.UserRole,
			EmployeeID:   record.EmployeeID,
			Timestamp:    record.Timestamp,
		})
	}
	return entries, nil
}
