// Package funds provides the funds-transfer capability the ledger draws on.
// The ledger never books account balances itself; it only calls Transfer and
// Balance on whatever implementation it is handed.
package funds

import (
	"fmt"
	"sync"

	"github.com/alienworld1/data-dex/internal/models"
)

// Bank is an in-memory account book. It backs local deployments and tests;
// production deployments swap in an implementation bound to real custody.
type Bank struct {
	mu       sync.Mutex
	balances map[models.Address]int64
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[models.Address]int64)}
}

// Transfer moves amount from one account to another. It either applies both
// legs or neither: a shortfall on the source account fails with
// InsufficientFunds and no balance changes.
func (b *Bank) Transfer(from, to models.Address, amount int64) error {
	if from == "" || to == "" {
		return fmt.Errorf("%w: from and to addresses are required", models.ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidInput, amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from] < amount {
		return fmt.Errorf("%w: account %s holds %d, needs %d", models.ErrInsufficientFunds, from, b.balances[from], amount)
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

// Balance returns the current balance of addr; unknown accounts hold zero.
func (b *Bank) Balance(addr models.Address) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[addr]
}

// Deposit credits addr out of thin air. Local/dev convenience mirroring a
// fiat on-ramp; real deployments have no mint.
func (b *Bank) Deposit(addr models.Address, amount int64) error {
	if addr == "" {
		return fmt.Errorf("%w: address is required", models.ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidInput, amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr] += amount
	return nil
}
