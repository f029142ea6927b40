package application

import (
	"context"
	"fmt"

	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"go.uber.org/zap"
)

// maxDisplayIDAttempts bounds collision probing for a single generation.
const maxDisplayIDAttempts = 100

// DisplayIDStore is the read side of the booking store used for identifier generation.
type DisplayIDStore interface {
	HighestDisplayID(ctx context.Context) (string, error)
	DisplayIDExists(ctx context.Context, displayID string) (bool, error)
}

// DisplayIDGenerator hands out monotonic, collision-checked booking display IDs.
type DisplayIDGenerator struct {
	store  DisplayIDStore
	logger *zap.Logger
}

// NewDisplayIDGenerator creates a new DisplayIDGenerator.
func NewDisplayIDGenerator(store DisplayIDStore, logger *zap.Logger) *DisplayIDGenerator {
	return &DisplayIDGenerator{store: store, logger: logger}
}

// Next returns the display ID following the highest one in the store.
func (g *DisplayIDGenerator) Next(ctx context.Context) (string, error) {
	highest, err := g.store.HighestDisplayID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read highest display id: %w", err)
	}

	seq := 0
	if highest != "" {
		n, ok := bookingDomain.DecodeDisplayID(highest)
		if ok {
			seq = n
		} else {
			// Restarting hides corrupt data; collision probing keeps the result unique.
			g.logger.Warn("highest display id is not decodable, restarting sequence",
				zap.String("display_id", highest),
			)
		}
	}

	for attempt := 1; attempt <= maxDisplayIDAttempts; attempt++ {
		seq++
		if seq > bookingDomain.MaxDisplaySequence {
			break
		}

		candidate, err := bookingDomain.EncodeDisplayID(seq)
		if err != nil {
			return "", err
		}

		exists, err := g.store.DisplayIDExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe display id %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}

		g.logger.Debug("display id collision, probing next",
			zap.String("display_id", candidate),
			zap.Int("attempt", attempt),
		)
	}

	g.logger.Error("booking display id generation exhausted",
		zap.Bool("alert", true),
		zap.String("highest", highest),
		zap.Int("attempts", maxDisplayIDAttempts),
	)
	return "", domain.NewExhaustedError("booking display id", maxDisplayIDAttempts)
}
