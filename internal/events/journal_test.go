package events

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/alienworld1/data-dex/internal/ledger"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestJournal_HandleEventAfterClose(t *testing.T) {
	j := NewJournal(nil, quietLogger())
	j.Close()

	evt := ledger.Event{Seq: 1, Type: ledger.EventDatasetListed, Timestamp: time.Now()}
	assert.NotPanics(t, func() { j.HandleEvent(evt) },
		"a late event is dropped, not sent on the closed queue")
}

func TestJournal_CloseIdempotent(t *testing.T) {
	j := NewJournal(nil, quietLogger())
	assert.NotPanics(t, func() {
		j.Close()
		j.Close()
	})
}

func TestJournal_ConcurrentCloseRace(t *testing.T) {
	j := NewJournal(nil, quietLogger())
	j.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(seq uint64) {
			defer wg.Done()
			assert.NotPanics(t, func() {
				j.HandleEvent(ledger.Event{Seq: seq, Type: ledger.EventDatasetListed})
			})
		}(uint64(i + 1))
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotPanics(t, func() { j.Close() })
		}()
	}
	wg.Wait()
}
