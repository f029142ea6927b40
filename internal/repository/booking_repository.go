package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DisplayID           string     `gorm:"uniqueIndex;not null;size:8"`
	ClientID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProviderID          *uuid.UUID `gorm:"type:uuid;index"`
	Category            string     `gorm:"not null;size:64"`
	Status              string     `gorm:"not null;size:30;index"`
	AddressText         string     `gorm:"not null;size:500"`
	Notes               string     `gorm:"size:2000"`
	IsFirstBooking      bool       `gorm:"not null;default:false"`
	ScheduledAt         time.Time  `gorm:"not null;index"`
	EstimatedHours      float64    `gorm:"type:decimal(5,2);not null"`
	EstimatedPriceCents int64      `gorm:"not null"`
	Currency            string     `gorm:"not null;size:3"`
	AcceptedAt          *time.Time `gorm:""`
	CompletedAt         *time.Time `gorm:""`
	CancelledAt         *time.Time `gorm:""`
	Version             int64      `gorm:"not null;default:1"`
	CreatedAt           time.Time  `gorm:"not null"`
	UpdatedAt           time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByDisplayID retrieves a booking by its display ID.
func (r *GormBookingRepository) FindByDisplayID(ctx context.Context, displayID string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("display_id = ?", displayID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", displayID)
		}
		return nil, fmt.Errorf("failed to find booking by display ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByClientID retrieves bookings for a specific client with pagination.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Where("client_id = ?", clientID), page, limit)
}

// FindByProviderID retrieves bookings for a specific provider with pagination.
func (r *GormBookingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Where("provider_id = ?", providerID), page, limit)
}

// List retrieves bookings matching the filter (admin).
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProviderID != nil {
		q = q.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		q = q.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("scheduled_at < ?", *filter.To)
	}
	return r.paginate(ctx, q, filter.Page, filter.Limit)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HighestDisplayID returns the greatest display ID in byte order, or "" for an empty table.
func (r *GormBookingRepository) HighestDisplayID(ctx context.Context) (string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Order("display_id COLLATE \"C\" DESC").
		Limit(1).
		Pluck("display_id", &ids).Error; err != nil {
		return "", fmt.Errorf("failed to read highest display ID: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// DisplayIDExists reports whether a booking already uses displayID.
func (r *GormBookingRepository) DisplayIDExists(ctx context.Context, displayID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("display_id = ?", displayID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to probe display ID: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("display ID %s is already taken", bk.DisplayID()))
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus writes the booking's status fields only if the row still holds expected.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, expected bookingDomain.BookingStatus) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", bk.ID(), string(expected)).
		Updates(map[string]interface{}{
			"status":       string(bk.Status()),
			"accepted_at":  bk.AcceptedAt(),
			"completed_at": bk.CompletedAt(),
			"cancelled_at": bk.CancelledAt(),
			"version":      gorm.Expr("version + 1"),
			"updated_at":   bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError(fmt.Sprintf("booking %s is no longer %s", bk.DisplayID(), expected))
	}

	return nil
}

func (r *GormBookingRepository) paginate(ctx context.Context, q *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	page, limit = normalizePage(page, limit)

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// normalizePage clamps paging input to page >= 1 and 1 <= limit <= 100.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                  bk.ID(),
		DisplayID:           bk.DisplayID(),
		ClientID:            bk.ClientID(),
		ProviderID:          bk.ProviderID(),
		Category:            bk.Category(),
		Status:              string(bk.Status()),
		AddressText:         bk.AddressText(),
		Notes:               bk.Notes(),
		IsFirstBooking:      bk.IsFirstBooking(),
		ScheduledAt:         bk.ScheduledAt(),
		EstimatedHours:      bk.EstimatedHours(),
		EstimatedPriceCents: bk.EstimatedPriceCents(),
		Currency:            bk.Currency(),
		AcceptedAt:          bk.AcceptedAt(),
		CompletedAt:         bk.CompletedAt(),
		CancelledAt:         bk.CancelledAt(),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.DisplayID,
		m.ClientID,
		m.ProviderID,
		m.Category,
		status,
		m.AddressText,
		m.Notes,
		m.IsFirstBooking,
		m.ScheduledAt,
		m.EstimatedHours,
		m.EstimatedPriceCents,
		m.Currency,
		m.AcceptedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
