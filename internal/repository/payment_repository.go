package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRecordModel is the GORM model for the payment_records table.
type PaymentRecordModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Provider    string     `gorm:"type:varchar(30);not null"`
	ExternalRef string     `gorm:"type:varchar(255)"`
	AmountCents int64      `gorm:"not null"`
	Currency    string     `gorm:"type:varchar(3);not null"`
	Status      string     `gorm:"type:varchar(20);not null"`
	CapturedAt  *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName overrides the default table name.
func (PaymentRecordModel) TableName() string { return "payment_records" }

// GormPaymentRecordRepository implements payment.RecordStore using GORM.
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository.
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByBookingID returns (nil, nil) when the booking has no payment.
func (r *GormPaymentRecordRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	var m PaymentRecordModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment record: %w", err)
	}
	return &paymentDomain.Payment{
		ID:          m.ID,
		BookingID:   m.BookingID,
		Provider:    m.Provider,
		ExternalRef: m.ExternalRef,
		AmountCents: m.AmountCents,
		Currency:    m.Currency,
		Status:      paymentDomain.Status(m.Status),
		CapturedAt:  m.CapturedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// Upsert stores the payment, replacing any earlier record for the same booking. A captured or
// refunded record is left untouched so a replayed authorization cannot downgrade it.
func (r *GormPaymentRecordRepository) Upsert(ctx context.Context, p *paymentDomain.Payment) error {
	now := time.Now().UTC()
	created := p.CreatedAt
	if created.IsZero() {
		created = now
	}
	model := &PaymentRecordModel{
		ID:          p.ID,
		BookingID:   p.BookingID,
		Provider:    p.Provider,
		ExternalRef: p.ExternalRef,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      string(p.Status),
		CapturedAt:  p.CapturedAt,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "provider", "external_ref", "amount_cents", "currency", "status", "captured_at", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL:  "payment_records.status NOT IN (?, ?)",
					Vars: []interface{}{string(paymentDomain.StatusCaptured), string(paymentDomain.StatusRefunded)},
				},
			}},
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert payment record: %w", err)
	}
	return nil
}

// MarkCaptured sets the payment to CAPTURED at capturedAt.
func (r *GormPaymentRecordRepository) MarkCaptured(ctx context.Context, id uuid.UUID, capturedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&PaymentRecordModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      string(paymentDomain.StatusCaptured),
			"captured_at": capturedAt.UTC(),
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark payment captured: %w", err)
	}
	return nil
}
