package domain

// DealEvent is a user action against a handshake deal.
type DealEvent string

const (
	EventRequest DealEvent = "request"
	EventAccept  DealEvent = "accept"
	EventDecline DealEvent = "decline"
	EventConfirm DealEvent = "confirm"
	EventCancel  DealEvent = "cancel"
)

// DealRole is the actor's relationship to a deal.
type DealRole string

const (
	RoleGiver    DealRole = "giver"
	RoleReceiver DealRole = "receiver"
	RoleOutsider DealRole = "outsider"
)

type transitionKey struct {
	status string
	event  DealEvent
	role   DealRole
}

// dealTransitions is the exhaustive table of legal moves. Anything not in the
// table is rejected before any write happens.
var dealTransitions = map[transitionKey]string{
	{DealStatusOpen, EventRequest, RoleOutsider}: DealStatusPendingApproval,

	{DealStatusPendingApproval, EventAccept, RoleGiver}:  DealStatusAccepted,
	{DealStatusPendingApproval, EventDecline, RoleGiver}: DealStatusOpen,

	{DealStatusAccepted, EventConfirm, RoleGiver}:    DealStatusGiverConfirmed,
	{DealStatusAccepted, EventConfirm, RoleReceiver}: DealStatusReceiverConfirmed,

	{DealStatusGiverConfirmed, EventConfirm, RoleReceiver}: DealStatusCompleted,
	{DealStatusReceiverConfirmed, EventConfirm, RoleGiver}: DealStatusCompleted,

	{DealStatusOpen, EventCancel, RoleGiver}:                 DealStatusCancelled,
	{DealStatusPendingApproval, EventCancel, RoleGiver}:      DealStatusCancelled,
	{DealStatusPendingApproval, EventCancel, RoleReceiver}:   DealStatusCancelled,
	{DealStatusAccepted, EventCancel, RoleGiver}:             DealStatusCancelled,
	{DealStatusAccepted, EventCancel, RoleReceiver}:          DealStatusCancelled,
	{DealStatusGiverConfirmed, EventCancel, RoleGiver}:       DealStatusCancelled,
	{DealStatusGiverConfirmed, EventCancel, RoleReceiver}:    DealStatusCancelled,
	{DealStatusReceiverConfirmed, EventCancel, RoleGiver}:    DealStatusCancelled,
	{DealStatusReceiverConfirmed, EventCancel, RoleReceiver}: DealStatusCancelled,
}

// NextDealStatus returns the status a deal moves to when role performs event
// while the deal is in current. ok is false for illegal moves.
func NextDealStatus(current string, event DealEvent, role DealRole) (next string, ok bool) {
	next, ok = dealTransitions[transitionKey{current, event, role}]
	return next, ok
}
