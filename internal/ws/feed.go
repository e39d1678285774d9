package ws

import "time"

// Table/event names mirror the row-change feed the map and account screens
// subscribe to.
const (
	TableSpots    = "parking_spots"
	TableDeals    = "handshake_deals"
	TableCredits  = "credit_accounts"
	TableSessions = "parking_sessions"

	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// ChangeEvent is one row-level change pushed to subscribers.
type ChangeEvent struct {
	Type  string      `json:"type"` // always "change"
	Table string      `json:"table"`
	Event string      `json:"event"`
	Row   interface{} `json:"row"`
	At    int64       `json:"at"`
}

// presenceEvent announces the live connection count.
type presenceEvent struct {
	Type  string `json:"type"` // always "presence"
	Count int    `json:"count"`
}

// FeedHub fans row-change events out to every connected client and keeps the
// presence counter up to date. The core publishes and moves on; it never
// waits on subscribers.
type FeedHub struct {
	*Hub
}

func NewFeedHub() *FeedHub {
	f := &FeedHub{Hub: NewHub()}
	f.onCountChange = func(n int) {
		f.BroadcastAll(presenceEvent{Type: "presence", Count: n})
	}
	return f
}

// Publish broadcasts a row-level change on the given table.
func (f *FeedHub) Publish(table, event string, row interface{}) {
	f.BroadcastAll(ChangeEvent{
		Type:  "change",
		Table: table,
		Event: event,
		Row:   row,
		At:    time.Now().Unix(),
	})
}

// PublishToUser sends a row-level change only to one user's connections
// (balance updates, deal notifications for participants).
func (f *FeedHub) PublishToUser(userID uint, table, event string, row interface{}) {
	f.BroadcastToUser(userID, ChangeEvent{
		Type:  "change",
		Table: table,
		Event: event,
		Row:   row,
		At:    time.Now().Unix(),
	})
}
