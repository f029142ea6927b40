package device

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Platform is the push platform a token was issued for.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// IsValid returns true if the platform is recognized.
func (p Platform) IsValid() bool {
	return p == PlatformAndroid || p == PlatformIOS || p == PlatformWeb
}

// Token is a push registration for one of a user's devices.
type Token struct {
	id         uuid.UUID
	userID     uuid.UUID
	platform   Platform
	token      string
	active     bool
	lastSeenAt time.Time
	createdAt  time.Time
}

// NewToken creates an active push token registration.
func NewToken(userID uuid.UUID, platform Platform, token string) (*Token, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID is required")
	}
	if !platform.IsValid() {
		return nil, fmt.Errorf("invalid platform: %s", platform)
	}
	if token == "" {
		return nil, fmt.Errorf("device token is required")
	}

	now := time.Now().UTC()
	return &Token{
		id:         uuid.New(),
		userID:     userID,
		platform:   platform,
		token:      token,
		active:     true,
		lastSeenAt: now,
		createdAt:  now,
	}, nil
}

// Reconstruct rebuilds a Token from persistence.
func Reconstruct(id, userID uuid.UUID, platform Platform, token string, active bool, lastSeenAt, createdAt time.Time) *Token {
	return &Token{
		id:         id,
		userID:     userID,
		platform:   platform,
		token:      token,
		active:     active,
		lastSeenAt: lastSeenAt,
		createdAt:  createdAt,
	}
}

// ID returns the token id.
func (t *Token) ID() uuid.UUID { return t.id }

// UserID returns the owning user id.
func (t *Token) UserID() uuid.UUID { return t.userID }

// Platform returns the device platform.
func (t *Token) Platform() Platform { return t.platform }

// Value returns the raw push token.
func (t *Token) Value() string { return t.token }

// Active reports whether the token still receives pushes.
func (t *Token) Active() bool { return t.active }

// LastSeenAt returns when the device last registered.
func (t *Token) LastSeenAt() time.Time { return t.lastSeenAt }

// CreatedAt returns the creation timestamp.
func (t *Token) CreatedAt() time.Time { return t.createdAt }
