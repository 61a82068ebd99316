package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/alienworld1/data-dex/internal/models"
	"github.com/sirupsen/logrus"
)

// Transferor moves funds between addresses. Calls are fallible black boxes
// with no partial effect; a shortfall is reported as models.ErrInsufficientFunds.
type Transferor interface {
	Transfer(from, to models.Address, amount int64) error
	Balance(addr models.Address) int64
}

// PoolAddress is the escrow address holding the reward pool's funds.
const PoolAddress models.Address = "pool:rewards"

type purchaseKey struct {
	buyer     models.Address
	datasetID uint64
}

// Ledger is the marketplace system of record: dataset registry, purchase
// ledger, per-user stats, and the reward pool. All mutable state lives behind
// a single lock, so every operation is serializable. A Ledger is constructed
// once and passed by reference; there is no package-level instance.
type Ledger struct {
	mu sync.Mutex

	transfer   Transferor
	platform   models.Address
	feePercent int64

	nextDatasetID uint64
	datasets      map[uint64]*models.Dataset
	ownerIndex    map[models.Address][]uint64

	purchases  map[purchaseKey]*models.Purchase
	byDataset  map[uint64][]*models.Purchase
	stats      map[models.Address]*models.UserStats
	pool       *models.RewardPool
	achieved   map[models.Address]*models.UserAchievements
	nextMileID uint64

	events *EventLog
	logger *logrus.Logger
	now    func() time.Time
}

// Option customizes Ledger construction.
type Option func(*Ledger)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a Ledger. platform receives the fee cut of every purchase;
// feePercent must be in [0,MaxFeePercent].
func New(transfer Transferor, platform models.Address, feePercent int64, opts ...Option) (*Ledger, error) {
	if transfer == nil {
		return nil, fmt.Errorf("%w: transferor is required", models.ErrInvalidInput)
	}
	if platform == "" {
		return nil, fmt.Errorf("%w: platform address is required", models.ErrInvalidInput)
	}
	if feePercent < 0 || feePercent > MaxFeePercent {
		return nil, fmt.Errorf("%w: fee percent must be in [0,%d], got %d", models.ErrInvalidInput, MaxFeePercent, feePercent)
	}

	l := &Ledger{
		transfer:      transfer,
		platform:      platform,
		feePercent:    feePercent,
		nextDatasetID: 1,
		datasets:      make(map[uint64]*models.Dataset),
		ownerIndex:    make(map[models.Address][]uint64),
		purchases:     make(map[purchaseKey]*models.Purchase),
		byDataset:     make(map[uint64][]*models.Purchase),
		stats:         make(map[models.Address]*models.UserStats),
		achieved:      make(map[models.Address]*models.UserAchievements),
		nextMileID:    1,
		events:        NewEventLog(),
		logger:        logrus.New(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Events exposes the ledger's event log for subscriptions and reads.
func (l *Ledger) Events() *EventLog {
	return l.events
}

// FeePercent returns the configured platform fee percentage.
func (l *Ledger) FeePercent() int64 {
	return l.feePercent
}

// upsertStats returns the stats record for addr, creating it on first touch.
// Caller must hold l.mu.
func (l *Ledger) upsertStats(addr models.Address) *models.UserStats {
	s, ok := l.stats[addr]
	if !ok {
		s = &models.UserStats{Address: addr}
		l.stats[addr] = s
	}
	return s
}

// GetStats returns a copy of the stats for addr, or nil if the address has
// never uploaded or purchased.
func (l *Ledger) GetStats(addr models.Address) *models.UserStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stats[addr]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}
