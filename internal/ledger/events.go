package ledger

import (
	"sync"
	"time"

	"github.com/alienworld1/data-dex/internal/models"
)

// EventType identifies the kind of ledger event.
type EventType string

const (
	EventDatasetListed     EventType = "dataset_listed"
	EventDatasetPurchased  EventType = "dataset_purchased"
	EventRewardPaid        EventType = "reward_paid"
	EventMilestoneAchieved EventType = "milestone_achieved"
	EventPoolReplenished   EventType = "pool_replenished"
)

// Event is one entry in the append-only ledger event log. Payload is one of
// the *Event structs below, carrying the entity's post-mutation fields.
type Event struct {
	Seq       uint64      `json:"seq"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DatasetListedEvent is emitted after a dataset is created.
type DatasetListedEvent struct {
	DatasetID  uint64         `json:"dataset_id"`
	Owner      models.Address `json:"owner"`
	ContentRef string         `json:"content_ref"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Price      int64          `json:"price"`
}

// DatasetPurchasedEvent is emitted after a completed purchase.
type DatasetPurchasedEvent struct {
	DatasetID      uint64         `json:"dataset_id"`
	Buyer          models.Address `json:"buyer"`
	Seller         models.Address `json:"seller"`
	Price          int64          `json:"price"`
	Fee            int64          `json:"fee"`
	SellerAmount   int64          `json:"seller_amount"`
	TotalPurchases int64          `json:"total_purchases"`
}

// RewardPaidEvent is emitted after a bonus or milestone reward payout.
type RewardPaidEvent struct {
	Recipient   models.Address `json:"recipient"`
	Amount      int64          `json:"amount"`
	Reason      string         `json:"reason"`
	MilestoneID uint64         `json:"milestone_id,omitempty"`
	PoolBalance int64          `json:"pool_balance"`
}

// MilestoneAchievedEvent is emitted when evaluation marks a milestone achieved.
// The pool is debited at this point; funds move on a later admin transfer.
type MilestoneAchievedEvent struct {
	User        models.Address `json:"user"`
	MilestoneID uint64         `json:"milestone_id"`
	Requirement int64          `json:"requirement"`
	Reward      int64          `json:"reward"`
	PoolBalance int64          `json:"pool_balance"`
}

// PoolReplenishedEvent is emitted after the admin tops up the reward pool.
type PoolReplenishedEvent struct {
	Admin       models.Address `json:"admin"`
	Amount      int64          `json:"amount"`
	PoolBalance int64          `json:"pool_balance"`
}

// Sink receives every event appended to the log. Sinks must not block; slow
// consumers should buffer internally.
type Sink interface {
	HandleEvent(evt Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(evt Event)

// HandleEvent calls f.
func (f SinkFunc) HandleEvent(evt Event) { f(evt) }

// EventLog is an ordered append-only log with fan-out to registered sinks.
// Per-entity ordering follows append order.
type EventLog struct {
	mu      sync.RWMutex
	entries []Event
	sinks   []Sink
	nextSeq uint64
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{nextSeq: 1}
}

// Subscribe registers a sink for all future events.
func (l *EventLog) Subscribe(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

// Append adds an event to the log and fans it out to sinks.
func (l *EventLog) Append(evtType EventType, ts time.Time, payload interface{}) Event {
	l.mu.Lock()
	evt := Event{
		Seq:       l.nextSeq,
		Type:      evtType,
		Timestamp: ts,
		Payload:   payload,
	}
	l.nextSeq++
	l.entries = append(l.entries, evt)
	sinks := make([]Sink, len(l.sinks))
	copy(sinks, l.sinks)
	l.mu.Unlock()

	for _, s := range sinks {
		s.HandleEvent(evt)
	}
	return evt
}

// Events returns a snapshot of the log, oldest first, starting at seq afterSeq+1
// and capped at limit entries (0 means no cap).
func (l *EventLog) Events(afterSeq uint64, limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.entries {
		if e.Seq <= afterSeq {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len returns the number of events appended so far.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
