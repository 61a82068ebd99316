// Package events persists the ledger's event stream. The in-memory log stays
// authoritative; the journal is a write-behind audit trail.
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alienworld1/data-dex/internal/ledger"
	"github.com/alienworld1/data-dex/internal/storage"
	"github.com/sirupsen/logrus"
)

// Journal writes ledger events to the ledger_events table. HandleEvent never
// blocks the ledger: events are queued and flushed by a background writer.
type Journal struct {
	db     *storage.DB
	logger *logrus.Logger
	mu     sync.Mutex
	closed bool
	queue  chan ledger.Event
	done   chan struct{}
}

// NewJournal creates a journal and starts its writer.
func NewJournal(db *storage.DB, logger *logrus.Logger) *Journal {
	j := &Journal{
		db:     db,
		logger: logger,
		queue:  make(chan ledger.Event, 1024),
		done:   make(chan struct{}),
	}
	go j.run()
	return j
}

// HandleEvent implements ledger.Sink. Events are dropped with a warning if
// the queue is full rather than stalling the ledger; events arriving after
// Close are dropped the same way instead of panicking on the closed queue.
func (j *Journal) HandleEvent(evt ledger.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		j.logger.WithField("seq", evt.Seq).Warn("event journal closed, dropping event")
		return
	}
	select {
	case j.queue <- evt:
	default:
		j.logger.WithField("seq", evt.Seq).Warn("event journal queue full, dropping event")
	}
}

// Close flushes pending events and stops the writer. Safe to call more than
// once and concurrently with HandleEvent.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()
	<-j.done
}

func (j *Journal) run() {
	defer close(j.done)
	for evt := range j.queue {
		j.write(evt)
	}
}

func (j *Journal) write(evt ledger.Event) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		j.logger.WithError(err).WithField("seq", evt.Seq).Error("failed to encode event payload")
		return
	}

	_, err = j.db.Pool.Exec(context.Background(),
		`INSERT INTO ledger_events (seq, event_type, occurred_at, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (seq) DO NOTHING`,
		evt.Seq, string(evt.Type), evt.Timestamp, payload)
	if err != nil {
		j.logger.WithError(err).WithField("seq", evt.Seq).Error("failed to journal event")
	}
}
