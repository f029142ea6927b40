package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/servicehub/service-booking/internal/domain/actor"
	auditDomain "github.com/servicehub/service-booking/internal/domain/audit"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/domain/notification"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"go.uber.org/zap"
)

// maxCreateAttempts bounds retries when a concurrent create takes the generated display ID.
const maxCreateAttempts = 3

// auditResourceBooking is the audit resource type for booking records.
const auditResourceBooking = "booking"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ProviderID     uuid.UUID `json:"provider_id" binding:"required" validate:"required"`
	Category       string    `json:"category" binding:"required" validate:"required,max=64"`
	ScheduledAt    time.Time `json:"scheduled_at" binding:"required" validate:"required"`
	EstimatedHours float64   `json:"estimated_hours" binding:"required" validate:"required,gt=0,lte=24"`
	AddressText    string    `json:"address_text" binding:"required" validate:"required,max=500"`
	Notes          string    `json:"notes" validate:"max=2000"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                  uuid.UUID  `json:"id"`
	DisplayID           string     `json:"display_id"`
	ClientID            uuid.UUID  `json:"client_id"`
	ProviderID          *uuid.UUID `json:"provider_id,omitempty"`
	Category            string     `json:"category"`
	Status              string     `json:"status"`
	ScheduledAt         time.Time  `json:"scheduled_at"`
	EstimatedHours      float64    `json:"estimated_hours"`
	EstimatedPriceCents int64      `json:"estimated_price_cents"`
	Currency            string     `json:"currency"`
	AddressText         string     `json:"address_text"`
	Notes               string     `json:"notes,omitempty"`
	IsFirstBooking      bool       `json:"is_first_booking"`
	AcceptedAt          *time.Time `json:"accepted_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// BookingConfig holds business settings for the orchestrator.
type BookingConfig struct {
	// RequireUpfrontPayment keeps new bookings in PENDING_PAYMENT until the payment service
	// confirms the hold. When false, bookings are confirmed right after creation.
	RequireUpfrontPayment bool
	// BusinessLocation is the timezone scheduling rules are evaluated in.
	BusinessLocation *time.Location
	DefaultCurrency  string
}

// BookingServiceDeps wires the orchestrator's collaborators.
type BookingServiceDeps struct {
	Repo      bookingDomain.BookingRepository
	Providers providerDomain.Directory
	Clients   ClientProfiles
	Guard     *AuthorizationGuard
	IDs       *DisplayIDGenerator
	Pricing   bookingDomain.PricingStrategy
	Capture   *PaymentCaptureCoordinator
	Notifier  LifecycleNotifier
	Audit     auditDomain.Sink
	Publisher EventPublisher
	Effects   *SideEffectRunner
	Clock     Clock
	Config    BookingConfig
	Logger    *zap.Logger
}

// BookingService is the booking lifecycle orchestrator. Every transition validates and
// authorizes before touching the store; side effects after the status commit never fail
// the operation.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	providers providerDomain.Directory
	clients   ClientProfiles
	guard     *AuthorizationGuard
	ids       *DisplayIDGenerator
	pricing   bookingDomain.PricingStrategy
	capture   *PaymentCaptureCoordinator
	notifier  LifecycleNotifier
	audit     auditDomain.Sink
	publisher EventPublisher
	effects   *SideEffectRunner
	clock     Clock
	cfg       BookingConfig
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(deps BookingServiceDeps) *BookingService {
	cfg := deps.Config
	if cfg.BusinessLocation == nil {
		cfg.BusinessLocation = time.UTC
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &BookingService{
		repo:      deps.Repo,
		providers: deps.Providers,
		clients:   deps.Clients,
		guard:     deps.Guard,
		ids:       deps.IDs,
		pricing:   deps.Pricing,
		capture:   deps.Capture,
		notifier:  deps.Notifier,
		audit:     deps.Audit,
		publisher: deps.Publisher,
		effects:   deps.Effects,
		clock:     clock,
		cfg:       cfg,
		logger:    deps.Logger,
	}
}

// CreateBooking creates a new booking for the calling client.
func (s *BookingService) CreateBooking(ctx context.Context, a actor.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	if err := s.guard.CheckCreate(a); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	now := s.clock()
	if err := validateSchedule(req.ScheduledAt, now, s.cfg.BusinessLocation); err != nil {
		return nil, err
	}

	provider, err := s.providers.FindByID(ctx, req.ProviderID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError("provider not found")
		}
		return nil, fmt.Errorf("failed to look up provider: %w", err)
	}
	if provider.IsSuspended() {
		return nil, domain.NewValidationError("provider is suspended and cannot take bookings")
	}

	if err := s.clients.EnsureExists(ctx, a.ID); err != nil {
		return nil, err
	}

	_, prior, err := s.repo.FindByClientID(ctx, a.ID, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to count client bookings: %w", err)
	}

	priceCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
		HourlyRateCents: provider.HourlyRateCents,
		EstimatedHours:  req.EstimatedHours,
	})
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	currency := provider.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	var bk *bookingDomain.Booking
	for attempt := 1; ; attempt++ {
		displayID, err := s.ids.Next(ctx)
		if err != nil {
			return nil, err
		}

		bk, err = bookingDomain.NewBooking(bookingDomain.NewBookingParams{
			DisplayID:           displayID,
			ClientID:            a.ID,
			ProviderID:          provider.ID,
			Category:            req.Category,
			ScheduledAt:         req.ScheduledAt,
			EstimatedHours:      req.EstimatedHours,
			AddressText:         req.AddressText,
			Notes:               req.Notes,
			EstimatedPriceCents: priceCents,
			Currency:            currency,
			IsFirstBooking:      prior == 0,
		}, now)
		if err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, bk)
		if err == nil {
			break
		}
		if !domain.IsConflict(err) || attempt == maxCreateAttempts {
			return nil, fmt.Errorf("failed to save booking: %w", err)
		}
		s.logger.Debug("display id taken concurrently, regenerating", zap.String("display_id", displayID))
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("display_id", bk.DisplayID()),
		zap.String("client_id", a.ID.String()),
	)

	s.publishCreated(ctx, bk)
	s.notify(ctx, notification.EventBookingCreated, bk)

	if !s.cfg.RequireUpfrontPayment {
		confirmed, _, err := s.transition(ctx, actor.System(), ActionConfirmPayment, bk.ID(), bookingDomain.StatusPending, "")
		if err != nil {
			s.logger.Error("failed to auto-confirm booking without upfront payment",
				append(bookingFields(bk), zap.String("step", "confirm_payment"), zap.Error(err))...,
			)
		} else {
			bk = confirmed
		}
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmPayment moves a booking out of PENDING_PAYMENT once its payment hold succeeded.
func (s *BookingService) ConfirmPayment(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, _, err := s.transition(ctx, a, ActionConfirmPayment, bookingID, bookingDomain.StatusPending, "")
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptBooking is the assigned provider taking the job.
func (s *BookingService) AcceptBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transitionAndNotify(ctx, a, ActionAccept, bookingID, bookingDomain.StatusAccepted, notification.EventBookingAccepted)
}

// RejectBooking is the assigned provider declining the job.
func (s *BookingService) RejectBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transitionAndNotify(ctx, a, ActionReject, bookingID, bookingDomain.StatusRejected, notification.EventBookingRejected)
}

// DepartBooking marks the provider as on their way.
func (s *BookingService) DepartBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transitionAndNotify(ctx, a, ActionDepart, bookingID, bookingDomain.StatusOnMyWay, notification.EventBookingOnMyWay)
}

// ArriveBooking marks the provider as arrived at the address.
func (s *BookingService) ArriveBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transitionAndNotify(ctx, a, ActionArrive, bookingID, bookingDomain.StatusArrived, notification.EventBookingArrived)
}

// CancelBooking cancels a booking that has not started. No notification is sent.
func (s *BookingService) CancelBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, _, err := s.transition(ctx, a, ActionCancel, bookingID, bookingDomain.StatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking commits COMPLETED, then settles the payment and notifies the client.
// Settlement and notification failures are logged and do not affect the result.
func (s *BookingService) CompleteBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, _, err := s.transition(ctx, a, ActionComplete, bookingID, bookingDomain.StatusCompleted, "")
	if err != nil {
		return nil, err
	}

	s.effects.Run(ctx, "complete", bookingFields(bk), func(ctx context.Context) {
		s.capture.Settle(ctx, bk)
		s.notifier.Notify(ctx, notification.EventBookingCompleted, bk)
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// OverrideStatus sets any status on a booking, bypassing the state machine. The change is
// audited before it is applied.
func (s *BookingService) OverrideStatus(ctx context.Context, a actor.Actor, bookingID uuid.UUID, target bookingDomain.BookingStatus, reason string) (*BookingDTO, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, a, ActionOverride, bk); err != nil {
		return nil, err
	}

	previous := bk.Status()
	now := s.clock()
	evt := auditDomain.Event{
		ID:           uuid.New(),
		EventType:    auditDomain.EventStatusOverride,
		ActorID:      a.ID,
		ActorRole:    string(a.Role),
		ResourceType: auditResourceBooking,
		ResourceID:   bk.ID(),
		Metadata: map[string]any{
			"action":          string(ActionOverride),
			"booking_id":      bk.ID().String(),
			"previous_status": string(previous),
			"new_status":      string(target),
			"reason":          reason,
		},
		OccurredAt: now.UTC(),
	}
	if err := s.audit.Record(ctx, evt); err != nil {
		return nil, fmt.Errorf("failed to audit status override: %w", err)
	}

	if err := bk.ForceStatus(target, now); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, bk, previous); err != nil {
		return nil, err
	}

	s.logger.Warn("booking status overridden",
		zap.String("booking_id", bk.ID().String()),
		zap.String("display_id", bk.DisplayID()),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor_id", a.ID.String()),
	)
	s.publishStatusChanged(ctx, bookingDomain.EventStatusOverridden, bk, previous, a, reason)

	result := toBookingDTO(bk)
	return &result, nil
}

// ReconcilePayment re-runs settlement for a completed booking, for bookings whose
// capture failed after completion.
func (s *BookingService) ReconcilePayment(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (CaptureOutcome, error) {
	if !a.IsAdmin() {
		return "", domain.NewUnauthorizedError("reconcile_payment", "only admins can reconcile payments")
	}
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if bk.Status() != bookingDomain.StatusCompleted {
		return "", domain.NewValidationError(fmt.Sprintf("booking %s is %s, only completed bookings can be reconciled", bk.DisplayID(), bk.Status()))
	}
	return s.capture.Settle(ctx, bk), nil
}

// AuditEntryDTO is the response representation of an audit event.
type AuditEntryDTO struct {
	ID         uuid.UUID      `json:"id"`
	EventType  string         `json:"event_type"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ActorRole  string         `json:"actor_role"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// GetAuditTrail lists the audit events recorded against a booking (admin).
func (s *BookingService) GetAuditTrail(ctx context.Context, a actor.Actor, bookingID uuid.UUID) ([]AuditEntryDTO, error) {
	if !a.IsAdmin() {
		return nil, domain.NewUnauthorizedError("view_audit", "only admins can view audit trails")
	}
	if _, err := s.repo.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	events, err := s.audit.ListByResource(ctx, auditResourceBooking, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	entries := make([]AuditEntryDTO, len(events))
	for i, e := range events {
		entries[i] = AuditEntryDTO{
			ID:         e.ID,
			EventType:  e.EventType,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Metadata:   e.Metadata,
			OccurredAt: e.OccurredAt,
		}
	}
	return entries, nil
}

// GetBooking retrieves a single booking visible to the actor.
func (s *BookingService) GetBooking(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, a, ActionView, bk); err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByDisplayID retrieves a booking by its human-readable identifier.
func (s *BookingService) GetBookingByDisplayID(ctx context.Context, a actor.Actor, displayID string) (*BookingDTO, error) {
	bk, err := s.repo.FindByDisplayID(ctx, strings.ToUpper(strings.TrimSpace(displayID)))
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, a, ActionView, bk); err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetClientBookings retrieves paginated bookings for a specific client.
func (s *BookingService) GetClientBookings(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetProviderBookings retrieves paginated bookings assigned to the calling provider.
func (s *BookingService) GetProviderBookings(ctx context.Context, providerUserID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	profile, err := s.providers.FindByUserID(ctx, providerUserID)
	if err != nil {
		return nil, err
	}
	bookings, total, err := s.repo.FindByProviderID(ctx, profile.ID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a filtered, paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, filter bookingDomain.ListFilter) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// transition runs the shared lifecycle shape: load, validate, authorize, persist, publish.
func (s *BookingService) transition(
	ctx context.Context,
	a actor.Actor,
	action Action,
	bookingID uuid.UUID,
	target bookingDomain.BookingStatus,
	reason string,
) (*bookingDomain.Booking, bookingDomain.BookingStatus, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	previous := bk.Status()
	if err := bookingDomain.ValidateTransition(previous, target); err != nil {
		return nil, "", err
	}
	if err := s.guard.Check(ctx, a, action, bk); err != nil {
		return nil, "", err
	}

	if err := bk.TransitionTo(target, s.clock()); err != nil {
		return nil, "", err
	}
	if err := s.repo.UpdateStatus(ctx, bk, previous); err != nil {
		return nil, "", err
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("display_id", bk.DisplayID()),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor_role", string(a.Role)),
	)

	if eventType, ok := bookingDomain.EventForStatus(target); ok {
		s.publishStatusChanged(ctx, eventType, bk, previous, a, reason)
	}
	return bk, previous, nil
}

func (s *BookingService) transitionAndNotify(
	ctx context.Context,
	a actor.Actor,
	action Action,
	bookingID uuid.UUID,
	target bookingDomain.BookingStatus,
	event string,
) (*BookingDTO, error) {
	bk, _, err := s.transition(ctx, a, action, bookingID, target, "")
	if err != nil {
		return nil, err
	}
	s.notify(ctx, event, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

func (s *BookingService) notify(ctx context.Context, event string, bk *bookingDomain.Booking) {
	s.effects.Run(ctx, "notification", bookingFields(bk), func(ctx context.Context) {
		s.notifier.Notify(ctx, event, bk)
	})
}

func (s *BookingService) publishCreated(ctx context.Context, bk *bookingDomain.Booking) {
	var providerID uuid.UUID
	if bk.ProviderID() != nil {
		providerID = *bk.ProviderID()
	}
	evt := bookingDomain.CreatedEvent{
		BookingID:           bk.ID(),
		DisplayID:           bk.DisplayID(),
		ClientID:            bk.ClientID(),
		ProviderID:          providerID,
		Category:            bk.Category(),
		ScheduledAt:         bk.ScheduledAt(),
		EstimatedHours:      bk.EstimatedHours(),
		EstimatedPriceCents: bk.EstimatedPriceCents(),
		Currency:            bk.Currency(),
		IsFirstBooking:      bk.IsFirstBooking(),
		OccurredAt:          s.clock().UTC(),
	}
	s.publishEvent(ctx, bookingDomain.EventCreated, bk, evt)
}

func (s *BookingService) publishStatusChanged(
	ctx context.Context,
	eventType string,
	bk *bookingDomain.Booking,
	previous bookingDomain.BookingStatus,
	a actor.Actor,
	reason string,
) {
	evt := bookingDomain.StatusChangedEvent{
		BookingID:      bk.ID(),
		DisplayID:      bk.DisplayID(),
		ClientID:       bk.ClientID(),
		ProviderID:     bk.ProviderID(),
		PreviousStatus: string(previous),
		Status:         string(bk.Status()),
		ActorID:        a.ID,
		ActorRole:      string(a.Role),
		Reason:         reason,
		OccurredAt:     s.clock().UTC(),
	}
	s.publishEvent(ctx, eventType, bk, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, data interface{}) {
	if err := s.publisher.Publish(ctx, bookingDomain.TopicBookingEvents, eventType, bk.ID().String(), data); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", bookingDomain.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
}

// validateSchedule enforces that a booking starts on the hour or half hour, on a date that
// is not in the past, and strictly after now when it is today.
func validateSchedule(scheduledAt, now time.Time, loc *time.Location) error {
	local := scheduledAt.In(loc)
	today := now.In(loc)

	if local.Minute() != 0 && local.Minute() != 30 {
		return domain.NewValidationError("bookings must start on the hour or half-hour")
	}

	y1, m1, d1 := local.Date()
	y2, m2, d2 := today.Date()
	scheduledDay := time.Date(y1, m1, d1, 0, 0, 0, 0, loc)
	currentDay := time.Date(y2, m2, d2, 0, 0, 0, 0, loc)

	switch {
	case scheduledDay.Before(currentDay):
		return domain.NewValidationError("scheduled date is in the past")
	case scheduledDay.Equal(currentDay) && !local.After(today):
		return domain.NewValidationError("scheduled time must be later than now")
	}
	return nil
}

func bookingFields(bk *bookingDomain.Booking) []zap.Field {
	return []zap.Field{
		zap.String("booking_id", bk.ID().String()),
		zap.String("display_id", bk.DisplayID()),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                  bk.ID(),
		DisplayID:           bk.DisplayID(),
		ClientID:            bk.ClientID(),
		ProviderID:          bk.ProviderID(),
		Category:            bk.Category(),
		Status:              string(bk.Status()),
		ScheduledAt:         bk.ScheduledAt(),
		EstimatedHours:      bk.EstimatedHours(),
		EstimatedPriceCents: bk.EstimatedPriceCents(),
		Currency:            bk.Currency(),
		AddressText:         bk.AddressText(),
		Notes:               bk.Notes(),
		IsFirstBooking:      bk.IsFirstBooking(),
		AcceptedAt:          bk.AcceptedAt(),
		CompletedAt:         bk.CompletedAt(),
		CancelledAt:         bk.CancelledAt(),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
}
