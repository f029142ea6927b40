package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditDomain "github.com/servicehub/service-booking/internal/domain/audit"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	clientDomain "github.com/servicehub/service-booking/internal/domain/client"
	deviceDomain "github.com/servicehub/service-booking/internal/domain/device"
	earningsDomain "github.com/servicehub/service-booking/internal/domain/earnings"
	"github.com/servicehub/service-booking/internal/domain/notification"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	"github.com/servicehub/service-booking/internal/platform/domain"
)

// --- bookings ---

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	// extraIDs are display ids that exist without a booking row, to force collisions.
	extraIDs  map[string]bool
	saveErrs  []error
	highest   *string
	updateErr error
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		extraIDs: make(map[string]bool),
	}
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.DisplayID(), b.ClientID(), b.ProviderID(), b.Category(), b.Status(),
		b.AddressText(), b.Notes(), b.IsFirstBooking(), b.ScheduledAt(), b.EstimatedHours(),
		b.EstimatedPriceCents(), b.Currency(), b.AcceptedAt(), b.CompletedAt(), b.CancelledAt(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *memBookingRepo) FindByDisplayID(_ context.Context, displayID string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.DisplayID() == displayID {
			return cloneBooking(b), nil
		}
	}
	return nil, domain.NewNotFoundError("booking", displayID)
}

func (r *memBookingRepo) filter(match func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out
}

func (r *memBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	out := r.filter(func(b *bookingDomain.Booking) bool { return b.ClientID() == clientID })
	return out, int64(len(out)), nil
}

func (r *memBookingRepo) FindByProviderID(_ context.Context, providerID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	out := r.filter(func(b *bookingDomain.Booking) bool { return b.IsAssignedTo(providerID) })
	return out, int64(len(out)), nil
}

func (r *memBookingRepo) List(_ context.Context, f bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	out := r.filter(func(b *bookingDomain.Booking) bool {
		return f.Status == nil || b.Status() == *f.Status
	})
	return out, int64(len(out)), nil
}

func (r *memBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *memBookingRepo) HighestDisplayID(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.highest != nil {
		return *r.highest, nil
	}
	highest := ""
	for _, b := range r.bookings {
		if b.DisplayID() > highest {
			highest = b.DisplayID()
		}
	}
	return highest, nil
}

func (r *memBookingRepo) DisplayIDExists(_ context.Context, displayID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.extraIDs[displayID] {
		return true, nil
	}
	for _, b := range r.bookings {
		if b.DisplayID() == displayID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saveErrs) > 0 {
		err := r.saveErrs[0]
		r.saveErrs = r.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, b := range r.bookings {
		if b.DisplayID() == bk.DisplayID() {
			return domain.NewConflictError("display id taken")
		}
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *memBookingRepo) UpdateStatus(_ context.Context, bk *bookingDomain.Booking, expected bookingDomain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	if stored.Status() != expected {
		return domain.NewConflictError("booking status changed concurrently")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *memBookingRepo) put(bk *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = cloneBooking(bk)
}

// --- providers ---

type memProviderDirectory struct {
	byID map[uuid.UUID]*providerDomain.Profile
}

func newMemProviderDirectory(profiles ...*providerDomain.Profile) *memProviderDirectory {
	d := &memProviderDirectory{byID: make(map[uuid.UUID]*providerDomain.Profile)}
	for _, p := range profiles {
		d.byID[p.ID] = p
	}
	return d
}

func (d *memProviderDirectory) FindByID(_ context.Context, id uuid.UUID) (*providerDomain.Profile, error) {
	if p, ok := d.byID[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFoundError("provider", id.String())
}

func (d *memProviderDirectory) FindByUserID(_ context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	for _, p := range d.byID {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("provider", userID.String())
}

// --- client profiles ---

type memClientRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*clientDomain.Profile
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{profiles: make(map[uuid.UUID]*clientDomain.Profile)}
}

func (r *memClientRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*clientDomain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	return nil, domain.NewNotFoundError("client_profile", userID.String())
}

func (r *memClientRepo) Save(_ context.Context, p *clientDomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UserID()]; !ok {
		r.profiles[p.UserID()] = p
	}
	return nil
}

func (r *memClientRepo) Update(_ context.Context, p *clientDomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID()] = p
	return nil
}

// --- devices ---

type memDeviceRepo struct {
	mu     sync.Mutex
	tokens []*deviceDomain.Token
}

func (r *memDeviceRepo) Upsert(_ context.Context, t *deviceDomain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.tokens {
		if existing.Value() == t.Value() {
			r.tokens[i] = deviceDomain.Reconstruct(existing.ID(), t.UserID(), t.Platform(), t.Value(), true, t.LastSeenAt(), existing.CreatedAt())
			return nil
		}
	}
	r.tokens = append(r.tokens, t)
	return nil
}

func (r *memDeviceRepo) setActive(match func(*deviceDomain.Token) bool) {
	for i, t := range r.tokens {
		if match(t) {
			r.tokens[i] = deviceDomain.Reconstruct(t.ID(), t.UserID(), t.Platform(), t.Value(), false, t.LastSeenAt(), t.CreatedAt())
		}
	}
}

func (r *memDeviceRepo) Deactivate(_ context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setActive(func(t *deviceDomain.Token) bool { return t.UserID() == userID && t.Value() == token })
	return nil
}

func (r *memDeviceRepo) DeactivateTokens(_ context.Context, tokens []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		drop[t] = true
	}
	r.setActive(func(t *deviceDomain.Token) bool { return drop[t.Value()] })
	return nil
}

func (r *memDeviceRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*deviceDomain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*deviceDomain.Token
	for _, t := range r.tokens {
		if t.UserID() == userID && t.Active() {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- payments ---

type memPaymentStore struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*paymentDomain.Payment
	findErr  error
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{payments: make(map[uuid.UUID]*paymentDomain.Payment)}
}

func (s *memPaymentStore) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.payments[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memPaymentStore) Upsert(_ context.Context, p *paymentDomain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.payments[p.BookingID]; ok && existing.Status.IsSettled() {
		return nil
	}
	cp := *p
	s.payments[p.BookingID] = &cp
	return nil
}

func (s *memPaymentStore) MarkCaptured(_ context.Context, id uuid.UUID, capturedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.ID == id {
			p.Status = paymentDomain.StatusCaptured
			p.CapturedAt = &capturedAt
			return nil
		}
	}
	return domain.NewNotFoundError("payment", id.String())
}

type stubGateway struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CapturePayment(_ context.Context, _ *paymentDomain.Payment) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.err
}

func (g *stubGateway) captureCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type stubGatewayFactory struct {
	gateway *stubGateway
}

func (f stubGatewayFactory) ForProvider(string) (paymentDomain.Gateway, error) {
	return f.gateway, nil
}

// --- earnings ---

type memEarningsRepo struct {
	mu       sync.Mutex
	earnings map[uuid.UUID]*earningsDomain.Earning
}

func newMemEarningsRepo() *memEarningsRepo {
	return &memEarningsRepo{earnings: make(map[uuid.UUID]*earningsDomain.Earning)}
}

func (r *memEarningsRepo) InsertIfAbsent(_ context.Context, e *earningsDomain.Earning) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.earnings[e.BookingID]; ok {
		return false, nil
	}
	cp := *e
	r.earnings[e.BookingID] = &cp
	return true, nil
}

func (r *memEarningsRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*earningsDomain.Earning, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.earnings[bookingID]
	if !ok {
		return nil, domain.NewNotFoundError("earning", bookingID.String())
	}
	cp := *e
	return &cp, nil
}

func (r *memEarningsRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.earnings)
}

// --- audit ---

type memAuditSink struct {
	mu     sync.Mutex
	events []auditDomain.Event
	err    error
}

func (s *memAuditSink) Record(_ context.Context, e auditDomain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *memAuditSink) ListByResource(_ context.Context, resourceType string, resourceID uuid.UUID) ([]auditDomain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []auditDomain.Event
	for _, e := range s.events {
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memAuditSink) byType(eventType string) []auditDomain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []auditDomain.Event
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// --- events ---

type publishedEvent struct {
	Topic     string
	EventType string
	Key       string
	Data      interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, eventType, key string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, EventType: eventType, Key: key, Data: data})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

// --- notifications ---

type memDeliveryStore struct {
	mu        sync.Mutex
	byKey     map[string]*notification.Delivery
	order     []string
	createErr error
	markErr   error
}

func newMemDeliveryStore() *memDeliveryStore {
	return &memDeliveryStore{byKey: make(map[string]*notification.Delivery)}
}

func (s *memDeliveryStore) copyOf(d *notification.Delivery) *notification.Delivery {
	cp := *d
	return &cp
}

func (s *memDeliveryStore) FindByKey(_ context.Context, key string) (*notification.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	return s.copyOf(d), nil
}

func (s *memDeliveryStore) CreateQueued(_ context.Context, d *notification.Delivery) (*notification.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if existing, ok := s.byKey[d.IdempotencyKey]; ok {
		return s.copyOf(existing), nil
	}
	s.byKey[d.IdempotencyKey] = s.copyOf(d)
	s.order = append(s.order, d.IdempotencyKey)
	return s.copyOf(d), nil
}

func (s *memDeliveryStore) find(id uuid.UUID) *notification.Delivery {
	for _, d := range s.byKey {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *memDeliveryStore) IncrementAttempt(_ context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.find(id)
	if d == nil {
		return 0, domain.NewNotFoundError("delivery", id.String())
	}
	d.AttemptCount++
	return d.AttemptCount, nil
}

func (s *memDeliveryStore) MarkSent(_ context.Context, id uuid.UUID, receipt notification.Receipt, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	d := s.find(id)
	if d == nil {
		return domain.NewNotFoundError("delivery", id.String())
	}
	d.Status = notification.StatusSent
	d.Provider = receipt.Provider
	d.ProviderMessageID = receipt.ProviderMessageID
	d.SentAt = &sentAt
	d.LastError = ""
	return nil
}

func (s *memDeliveryStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.find(id)
	if d == nil {
		return domain.NewNotFoundError("delivery", id.String())
	}
	if d.Status == notification.StatusSent {
		return nil
	}
	d.Status = notification.StatusFailed
	d.LastError = reason
	return nil
}

func (s *memDeliveryStore) list(limit int, match func(*notification.Delivery) bool) []*notification.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*notification.Delivery
	for _, key := range s.order {
		d := s.byKey[key]
		if match(d) {
			out = append(out, s.copyOf(d))
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func (s *memDeliveryStore) ListQueued(_ context.Context, limit int) ([]*notification.Delivery, error) {
	return s.list(limit, func(d *notification.Delivery) bool { return d.Status == notification.StatusQueued }), nil
}

func (s *memDeliveryStore) ListFailed(_ context.Context, limit, maxAttempts int) ([]*notification.Delivery, error) {
	return s.list(limit, func(d *notification.Delivery) bool {
		return d.Status == notification.StatusFailed && d.AttemptCount < maxAttempts
	}), nil
}

func (s *memDeliveryStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, d := range s.byKey {
		counts[string(d.Status)]++
	}
	return counts, nil
}

func (s *memDeliveryStore) all() []*notification.Delivery {
	return s.list(-1, func(*notification.Delivery) bool { return true })
}

type stubProvider struct {
	channel notification.Channel
	mu      sync.Mutex
	sent    []notification.Message
	err     error
	// failFor fails only messages to these recipients.
	failFor map[string]bool
	panics  bool
}

func (p *stubProvider) Channel() notification.Channel { return p.channel }

func (p *stubProvider) Send(_ context.Context, msg notification.Message) (notification.Receipt, error) {
	if p.panics {
		panic("provider exploded")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return notification.Receipt{}, p.err
	}
	if p.failFor[msg.RecipientRef] {
		return notification.Receipt{}, errors.New("recipient unreachable")
	}
	p.sent = append(p.sent, msg)
	return notification.Receipt{Provider: "stub", ProviderMessageID: uuid.NewString()}, nil
}

func (p *stubProvider) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func (p *stubProvider) sentTemplates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, m := range p.sent {
		out[i] = m.TemplateID
	}
	return out
}

// fixedClock returns a Clock pinned to t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var nopLogger = zap.NewNop()
