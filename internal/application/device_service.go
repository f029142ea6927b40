package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	deviceDomain "github.com/servicehub/service-booking/internal/domain/device"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"go.uber.org/zap"
)

// RegisterDeviceRequest holds the data to register a push token.
type RegisterDeviceRequest struct {
	Platform string `json:"platform" binding:"required" validate:"required,oneof=android ios web"`
	Token    string `json:"token" binding:"required" validate:"required,max=4096"`
}

// DeviceDTO is the API response representation of a registered device.
type DeviceDTO struct {
	ID         uuid.UUID `json:"id"`
	Platform   string    `json:"platform"`
	Token      string    `json:"token"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeviceService handles push token registration.
type DeviceService struct {
	repo   deviceDomain.TokenRepository
	logger *zap.Logger
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(repo deviceDomain.TokenRepository, logger *zap.Logger) *DeviceService {
	return &DeviceService{repo: repo, logger: logger}
}

// RegisterDevice registers (or reactivates) a push token for the user.
func (s *DeviceService) RegisterDevice(ctx context.Context, userID uuid.UUID, req RegisterDeviceRequest) (*DeviceDTO, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	token, err := deviceDomain.NewToken(userID, deviceDomain.Platform(req.Platform), req.Token)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Upsert(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	s.logger.Info("device registered",
		zap.String("user_id", userID.String()),
		zap.String("platform", req.Platform),
	)

	return toDeviceDTO(token), nil
}

// UnregisterDevice deactivates a push token owned by the user.
func (s *DeviceService) UnregisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	if token == "" {
		return domain.NewValidationError("device token is required")
	}
	return s.repo.Deactivate(ctx, userID, token)
}

// ListDevices returns the user's active push registrations.
func (s *DeviceService) ListDevices(ctx context.Context, userID uuid.UUID) ([]*DeviceDTO, error) {
	tokens, err := s.repo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*DeviceDTO, len(tokens))
	for i, t := range tokens {
		dtos[i] = toDeviceDTO(t)
	}
	return dtos, nil
}

func toDeviceDTO(t *deviceDomain.Token) *DeviceDTO {
	return &DeviceDTO{
		ID:         t.ID(),
		Platform:   string(t.Platform()),
		Token:      t.Value(),
		LastSeenAt: t.LastSeenAt(),
		CreatedAt:  t.CreatedAt(),
	}
}
