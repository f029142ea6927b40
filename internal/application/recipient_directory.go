package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	clientDomain "github.com/servicehub/service-booking/internal/domain/client"
	deviceDomain "github.com/servicehub/service-booking/internal/domain/device"
	"github.com/servicehub/service-booking/internal/domain/notification"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	"github.com/servicehub/service-booking/internal/platform/domain"
)

// RecipientDirectory resolves a recipient reference (a user id) to channel endpoints.
type RecipientDirectory struct {
	clients   clientDomain.ProfileRepository
	providers providerDomain.Directory
	devices   deviceDomain.TokenRepository
}

// NewRecipientDirectory creates a new RecipientDirectory.
func NewRecipientDirectory(
	clients clientDomain.ProfileRepository,
	providers providerDomain.Directory,
	devices deviceDomain.TokenRepository,
) *RecipientDirectory {
	return &RecipientDirectory{clients: clients, providers: providers, devices: devices}
}

// EmailAddress returns the recipient's email address.
func (d *RecipientDirectory) EmailAddress(ctx context.Context, recipientRef string) (string, error) {
	userID, err := parseRecipient(recipientRef)
	if err != nil {
		return "", err
	}
	profile, err := d.clients.FindByUserID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", notification.NewNoActiveRecipientEndpointsError(recipientRef, notification.ChannelEmail)
		}
		return "", err
	}
	if profile.Email() == "" {
		return "", notification.NewNoActiveRecipientEndpointsError(recipientRef, notification.ChannelEmail)
	}
	return profile.Email(), nil
}

// PhoneNumber returns the recipient's phone number, from the client profile or else the provider profile.
func (d *RecipientDirectory) PhoneNumber(ctx context.Context, recipientRef string) (string, error) {
	userID, err := parseRecipient(recipientRef)
	if err != nil {
		return "", err
	}

	profile, err := d.clients.FindByUserID(ctx, userID)
	switch {
	case err == nil && profile.Phone() != "":
		return profile.Phone(), nil
	case err != nil && !domain.IsNotFound(err):
		return "", err
	}

	provider, err := d.providers.FindByUserID(ctx, userID)
	switch {
	case err == nil && provider.Phone != "":
		return provider.Phone, nil
	case err != nil && !domain.IsNotFound(err):
		return "", err
	}
	return "", notification.NewNoActiveRecipientEndpointsError(recipientRef, notification.ChannelWhatsApp)
}

// PushTokens returns the recipient's active device tokens.
func (d *RecipientDirectory) PushTokens(ctx context.Context, recipientRef string) ([]string, error) {
	userID, err := parseRecipient(recipientRef)
	if err != nil {
		return nil, err
	}
	tokens, err := d.devices.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, notification.NewNoActiveRecipientEndpointsError(recipientRef, notification.ChannelPush)
	}

	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Value()
	}
	return values, nil
}

// DeactivatePushTokens drops tokens the push gateway reported as unregistered.
func (d *RecipientDirectory) DeactivatePushTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return d.devices.DeactivateTokens(ctx, tokens)
}

func parseRecipient(recipientRef string) (uuid.UUID, error) {
	id, err := uuid.Parse(recipientRef)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid recipient reference %q: %w", recipientRef, err)
	}
	return id, nil
}
