package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextDealStatus_Lifecycle(t *testing.T) {
	next, ok := NextDealStatus(DealStatusOpen, EventRequest, RoleOutsider)
	assert.True(t, ok)
	assert.Equal(t, DealStatusPendingApproval, next)

	next, ok = NextDealStatus(DealStatusPendingApproval, EventAccept, RoleGiver)
	assert.True(t, ok)
	assert.Equal(t, DealStatusAccepted, next)

	next, ok = NextDealStatus(DealStatusAccepted, EventConfirm, RoleGiver)
	assert.True(t, ok)
	assert.Equal(t, DealStatusGiverConfirmed, next)

	next, ok = NextDealStatus(DealStatusGiverConfirmed, EventConfirm, RoleReceiver)
	assert.True(t, ok)
	assert.Equal(t, DealStatusCompleted, next)
}

func TestNextDealStatus_ConfirmEitherOrder(t *testing.T) {
	next, ok := NextDealStatus(DealStatusAccepted, EventConfirm, RoleReceiver)
	assert.True(t, ok)
	assert.Equal(t, DealStatusReceiverConfirmed, next)

	next, ok = NextDealStatus(DealStatusReceiverConfirmed, EventConfirm, RoleGiver)
	assert.True(t, ok)
	assert.Equal(t, DealStatusCompleted, next)
}

func TestNextDealStatus_DeclineReopens(t *testing.T) {
	next, ok := NextDealStatus(DealStatusPendingApproval, EventDecline, RoleGiver)
	assert.True(t, ok)
	assert.Equal(t, DealStatusOpen, next)
}

func TestNextDealStatus_CancelFromEveryLiveState(t *testing.T) {
	for _, status := range NonTerminalDealStatuses {
		role := RoleGiver
		next, ok := NextDealStatus(status, EventCancel, role)
		assert.True(t, ok, "cancel by giver from %s", status)
		assert.Equal(t, DealStatusCancelled, next)
	}
}

func TestNextDealStatus_RejectsIllegalMoves(t *testing.T) {
	cases := []struct {
		status string
		event  DealEvent
		role   DealRole
	}{
		{DealStatusOpen, EventRequest, RoleGiver},       // giver cannot request own offer
		{DealStatusOpen, EventConfirm, RoleGiver},       // nothing to confirm yet
		{DealStatusOpen, EventAccept, RoleGiver},        // no pending receiver
		{DealStatusPendingApproval, EventAccept, RoleReceiver},
		{DealStatusPendingApproval, EventRequest, RoleOutsider}, // slot taken
		{DealStatusAccepted, EventConfirm, RoleOutsider},
		{DealStatusGiverConfirmed, EventConfirm, RoleGiver}, // no double confirm
		{DealStatusReceiverConfirmed, EventConfirm, RoleReceiver},
		{DealStatusCompleted, EventCancel, RoleGiver},
		{DealStatusCompleted, EventConfirm, RoleGiver},
		{DealStatusCancelled, EventRequest, RoleOutsider},
		{DealStatusCancelled, EventCancel, RoleReceiver},
	}
	for _, c := range cases {
		_, ok := NextDealStatus(c.status, c.event, c.role)
		assert.False(t, ok, "%s/%s/%s should be rejected", c.status, c.event, c.role)
	}
}

func TestNextDealStatus_OutsiderNeverCancels(t *testing.T) {
	for _, status := range NonTerminalDealStatuses {
		_, ok := NextDealStatus(status, EventCancel, RoleOutsider)
		assert.False(t, ok, "outsider cancel from %s", status)
	}
}

func TestIsTerminalDealStatus(t *testing.T) {
	assert.True(t, IsTerminalDealStatus(DealStatusCompleted))
	assert.True(t, IsTerminalDealStatus(DealStatusCancelled))
	for _, status := range NonTerminalDealStatuses {
		assert.False(t, IsTerminalDealStatus(status), status)
	}
}
