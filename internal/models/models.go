package models

import (
	"time"

	"github.com/google/uuid"
)

// Address identifies a marketplace participant. Addresses are opaque strings;
// the gateway issues hex addresses, external callers may bring their own.
type Address = string

// Dataset represents a priced listing referencing off-ledger content.
// Owner is immutable after creation; the id is assigned once and never reused.
type Dataset struct {
	ID             uint64    `json:"id"`
	ContentRef     string    `json:"content_ref"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Price          int64     `json:"price"`
	Owner          Address   `json:"owner"`
	CreatedAt      time.Time `json:"created_at"`
	TotalPurchases int64     `json:"total_purchases"`
	IsActive       bool      `json:"is_active"`
}

// Purchase is an immutable record of one completed transaction.
// No two purchases share the same (buyer, dataset id).
type Purchase struct {
	DatasetID   uint64    `json:"dataset_id"`
	Buyer       Address   `json:"buyer"`
	Seller      Address   `json:"seller"`
	Price       int64     `json:"price"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// UserStats holds per-address lifetime counters, created on first touch.
type UserStats struct {
	Address   Address `json:"address"`
	Uploaded  int64   `json:"uploaded"`
	Purchased int64   `json:"purchased"`
	Earned    int64   `json:"earned"`
	Spent     int64   `json:"spent"`
}

// Milestone gates a one-time bonus on a user's cumulative upload count.
type Milestone struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Requirement  int64  `json:"requirement"`
	RewardAmount int64  `json:"reward_amount"`
	IsActive     bool   `json:"is_active"`
}

// UserAchievements tracks which milestones a user has hit. Achieved is
// append-only; Rewarded is set separately when the admin actually moves funds.
type UserAchievements struct {
	Address            Address   `json:"address"`
	Achieved           []uint64  `json:"achieved"`
	Rewarded           []uint64  `json:"rewarded"`
	TotalBonusReceived int64     `json:"total_bonus_received"`
	LastEvaluatedAt    time.Time `json:"last_evaluated_at"`
}

// BonusPayout records one discretionary bonus paid from the reward pool.
type BonusPayout struct {
	Recipient Address   `json:"recipient"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	PaidAt    time.Time `json:"paid_at"`
}

// RewardPool is the admin-funded balance bonuses and milestone rewards are
// drawn from. Balance never goes negative.
type RewardPool struct {
	Admin      Address       `json:"admin"`
	Balance    int64         `json:"balance"`
	TotalPaid  int64         `json:"total_paid"`
	Milestones []*Milestone  `json:"milestones"`
	History    []BonusPayout `json:"history"`
	CreatedAt  time.Time     `json:"created_at"`
}

// User is a gateway account mapped onto a ledger address.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Address      Address   `db:"address" json:"address"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
