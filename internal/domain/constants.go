package domain

import "errors"

// Handshake deal lifecycle. A deal is terminal once completed or cancelled;
// every transition is a conditional update keyed on the current status.
const (
	DealStatusOpen              = "open"
	DealStatusPendingApproval   = "pending_approval"
	DealStatusAccepted          = "accepted"
	DealStatusGiverConfirmed    = "giver_confirmed"
	DealStatusReceiverConfirmed = "receiver_confirmed"
	DealStatusCompleted         = "completed"
	DealStatusCancelled         = "cancelled"
)

// NonTerminalDealStatuses lists every status a live deal can be in.
var NonTerminalDealStatuses = []string{
	DealStatusOpen,
	DealStatusPendingApproval,
	DealStatusAccepted,
	DealStatusGiverConfirmed,
	DealStatusReceiverConfirmed,
}

// IsTerminalDealStatus reports whether no further transitions are possible.
func IsTerminalDealStatus(status string) bool {
	return status == DealStatusCompleted || status == DealStatusCancelled
}

// Credit transaction kinds.
const (
	TxWelcomeBonus      = "welcome_bonus"
	TxParkingUsed       = "parking_used"
	TxSpotReported      = "spot_reported"
	TxHandshakeGiver    = "handshake_giver"
	TxHandshakeReceiver = "handshake_receiver"
	TxPurchase          = "purchase"
	TxMembershipBonus   = "membership_bonus"
)

// Credit policy.
const (
	WelcomeBonusCredits     = 20
	ParkingReleaseCost      = 2
	SpotReportReward        = 4
	HandshakeGiverReward    = 20
	HandshakeReceiverReward = 10
	HandoverSessionMinutes  = 60 // receiver's implicit parking session after settlement
)

// Sweeper thresholds. Peak hours are judged in Europe/Berlin local time.
const (
	PeakHourStart        = 8
	PeakHourEnd          = 20
	PeakExpiryMinutes    = 30
	OffPeakExpiryMinutes = 90
	SweeperTimezone      = "Europe/Berlin"
)

// Concurrency and participation failures surfaced to callers. Handlers map
// these onto HTTP statuses; they are never swallowed.
var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyClaimed      = errors.New("spot already claimed")
	ErrStaleDeal           = errors.New("deal state changed, refetch and retry")
	ErrNotParticipant      = errors.New("not a participant in this deal")
	ErrNotGiver            = errors.New("only the giver may do this")
	ErrActiveDealExists    = errors.New("already participating in an active deal")
	ErrNoActiveSession     = errors.New("no active parking session")
	ErrSessionExists       = errors.New("an active parking session already exists")
)
