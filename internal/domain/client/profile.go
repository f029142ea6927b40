package client

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// ContactChannel is the client's preferred secondary contact channel.
type ContactChannel string

const (
	ContactEmail    ContactChannel = "email"
	ContactWhatsApp ContactChannel = "whatsapp"
)

// IsValid returns true if the channel is recognized.
func (c ContactChannel) IsValid() bool {
	return c == ContactEmail || c == ContactWhatsApp
}

// DefaultTimezone is used when a client has not chosen one.
const DefaultTimezone = "UTC"

// Profile is the aggregate root for a client's contact profile.
type Profile struct {
	id               uuid.UUID
	userID           uuid.UUID
	fullName         string
	email            string
	phone            string
	preferredContact ContactChannel
	timezone         string
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewProfile creates a profile for userID with email as the preferred contact.
func NewProfile(userID uuid.UUID, fullName, email, phone string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID is required")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid email address: %s", email)
		}
	}

	now := time.Now().UTC()
	return &Profile{
		id:               uuid.New(),
		userID:           userID,
		fullName:         fullName,
		email:            email,
		phone:            phone,
		preferredContact: ContactEmail,
		timezone:         DefaultTimezone,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Profile from persistence data (no validation).
func Reconstruct(
	id, userID uuid.UUID,
	fullName, email, phone string,
	preferredContact ContactChannel,
	timezone string,
	version int64,
	createdAt, updatedAt time.Time,
) *Profile {
	return &Profile{
		id:               id,
		userID:           userID,
		fullName:         fullName,
		email:            email,
		phone:            phone,
		preferredContact: preferredContact,
		timezone:         timezone,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the profile id.
func (p *Profile) ID() uuid.UUID { return p.id }

// UserID returns the owning user id.
func (p *Profile) UserID() uuid.UUID { return p.userID }

// FullName returns the display name.
func (p *Profile) FullName() string { return p.fullName }

// Email returns the email address.
func (p *Profile) Email() string { return p.email }

// Phone returns the phone number in E.164 form.
func (p *Profile) Phone() string { return p.phone }

// PreferredContact returns the channel the client prefers.
func (p *Profile) PreferredContact() ContactChannel { return p.preferredContact }

// Timezone returns the IANA timezone name.
func (p *Profile) Timezone() string { return p.timezone }

// Version returns the optimistic-lock version.
func (p *Profile) Version() int64 { return p.version }

// CreatedAt returns the creation timestamp.
func (p *Profile) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// Location resolves the profile timezone, falling back to UTC when it cannot be loaded.
func (p *Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// --- Behavior ---

// ContactUpdate carries optional contact changes. Nil fields are left untouched.
type ContactUpdate struct {
	FullName         *string
	Email            *string
	Phone            *string
	PreferredContact *ContactChannel
	Timezone         *string
}

// UpdateContact applies a partial update to the profile.
func (p *Profile) UpdateContact(u ContactUpdate) error {
	if u.Email != nil && *u.Email != "" {
		if _, err := mail.ParseAddress(*u.Email); err != nil {
			return fmt.Errorf("invalid email address: %s", *u.Email)
		}
	}
	if u.PreferredContact != nil && !u.PreferredContact.IsValid() {
		return fmt.Errorf("invalid preferred contact: %s", *u.PreferredContact)
	}
	if u.Timezone != nil {
		if _, err := time.LoadLocation(*u.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %s", *u.Timezone)
		}
	}
	if u.PreferredContact != nil && *u.PreferredContact == ContactWhatsApp {
		phone := p.phone
		if u.Phone != nil {
			phone = *u.Phone
		}
		if phone == "" {
			return fmt.Errorf("a phone number is required to prefer whatsapp")
		}
	}

	if u.FullName != nil {
		p.fullName = *u.FullName
	}
	if u.Email != nil {
		p.email = *u.Email
	}
	if u.Phone != nil {
		p.phone = *u.Phone
	}
	if u.PreferredContact != nil {
		p.preferredContact = *u.PreferredContact
	}
	if u.Timezone != nil {
		p.timezone = *u.Timezone
	}
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}
