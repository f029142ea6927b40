package booking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicehub/service-booking/internal/platform/domain"
)

func TestValidateTransition_Matrix(t *testing.T) {
	allowed := map[[2]BookingStatus]bool{
		{StatusPendingPayment, StatusPending}:   true,
		{StatusPendingPayment, StatusCancelled}: true,
		{StatusPending, StatusAccepted}:         true,
		{StatusPending, StatusRejected}:         true,
		{StatusPending, StatusCancelled}:        true,
		{StatusAccepted, StatusOnMyWay}:         true,
		{StatusAccepted, StatusCancelled}:       true,
		{StatusOnMyWay, StatusArrived}:          true,
		{StatusOnMyWay, StatusCancelled}:        true,
		{StatusArrived, StatusCompleted}:        true,
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				err := ValidateTransition(from, to)
				if allowed[[2]BookingStatus{from, to}] {
					assert.NoError(t, err)
					assert.True(t, from.CanTransitionTo(to))
					return
				}
				require.Error(t, err)
				assert.True(t, domain.IsInvalidState(err))
				assert.False(t, from.CanTransitionTo(to))
			})
		}
	}
}

func TestValidTransitions_CoversEveryStatus(t *testing.T) {
	assert.Len(t, validTransitions, len(AllStatuses()))
	for _, s := range AllStatuses() {
		_, ok := validTransitions[s]
		assert.True(t, ok, "status %s missing from transition table", s)
	}
}

func TestValidateTransition_UnknownStatusHasNoEdges(t *testing.T) {
	unknown := BookingStatus("LOST")
	assert.False(t, unknown.IsValid())
	assert.True(t, unknown.IsTerminal())
	assert.Error(t, ValidateTransition(unknown, StatusPending))
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	terminal := map[BookingStatus]bool{
		StatusCompleted: true,
		StatusRejected:  true,
		StatusCancelled: true,
	}
	for _, s := range AllStatuses() {
		assert.Equal(t, terminal[s], s.IsTerminal(), s)
	}
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("ON_MY_WAY")
	require.NoError(t, err)
	assert.Equal(t, StatusOnMyWay, s)

	_, err = ParseBookingStatus("on_my_way")
	assert.Error(t, err)
}

func TestInvalidStateError_CarriesBothStatuses(t *testing.T) {
	err := ValidateTransition(StatusCompleted, StatusCancelled)
	var ise *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "COMPLETED", ise.Current)
	assert.Equal(t, "CANCELLED", ise.Attempted)
}
