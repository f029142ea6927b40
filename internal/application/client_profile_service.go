package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	clientDomain "github.com/servicehub/service-booking/internal/domain/client"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"go.uber.org/zap"
)

// UpdateClientProfileRequest is the request DTO for updating the caller's contact profile.
type UpdateClientProfileRequest struct {
	FullName         *string `json:"full_name" validate:"omitempty,max=120"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,e164"`
	PreferredContact *string `json:"preferred_contact" validate:"omitempty,oneof=email whatsapp"`
	Timezone         *string `json:"timezone" validate:"omitempty,timezone"`
}

// ClientProfileDTO is the API response representation of a client profile.
type ClientProfileDTO struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	FullName         string    `json:"full_name,omitempty"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	PreferredContact string    `json:"preferred_contact"`
	Timezone         string    `json:"timezone"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ClientProfileService implements use cases for client contact profiles.
type ClientProfileService struct {
	repo   clientDomain.ProfileRepository
	logger *zap.Logger
}

// NewClientProfileService creates a new ClientProfileService.
func NewClientProfileService(repo clientDomain.ProfileRepository, logger *zap.Logger) *ClientProfileService {
	return &ClientProfileService{repo: repo, logger: logger}
}

// EnsureExists creates an empty profile for userID if it has none.
func (s *ClientProfileService) EnsureExists(ctx context.Context, userID uuid.UUID) error {
	_, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}

	profile, err := clientDomain.NewProfile(userID, "", "", "")
	if err != nil {
		return domain.NewValidationError(err.Error())
	}
	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("failed to create client profile: %w", err)
	}
	s.logger.Info("client profile created", zap.String("user_id", userID.String()))
	return nil
}

// FindProfile returns the domain profile for userID.
func (s *ClientProfileService) FindProfile(ctx context.Context, userID uuid.UUID) (*clientDomain.Profile, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// GetMyProfile returns the caller's profile, creating it on first access.
func (s *ClientProfileService) GetMyProfile(ctx context.Context, userID uuid.UUID) (*ClientProfileDTO, error) {
	if err := s.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toClientProfileDTO(profile)
	return &dto, nil
}

// UpdateMyProfile applies a partial contact update to the caller's profile.
func (s *ClientProfileService) UpdateMyProfile(ctx context.Context, userID uuid.UUID, req UpdateClientProfileRequest) (*ClientProfileDTO, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := clientDomain.ContactUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Timezone: req.Timezone,
	}
	if req.PreferredContact != nil {
		c := clientDomain.ContactChannel(*req.PreferredContact)
		update.PreferredContact = &c
	}
	if err := profile.UpdateContact(update); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update client profile: %w", err)
	}

	dto := toClientProfileDTO(profile)
	return &dto, nil
}

func toClientProfileDTO(p *clientDomain.Profile) ClientProfileDTO {
	return ClientProfileDTO{
		ID:               p.ID(),
		UserID:           p.UserID(),
		FullName:         p.FullName(),
		Email:            p.Email(),
		Phone:            p.Phone(),
		PreferredContact: string(p.PreferredContact()),
		Timezone:         p.Timezone(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}
