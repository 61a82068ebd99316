package funds

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienworld1/data-dex/internal/models"
)

func TestBank_DepositAndTransfer(t *testing.T) {
	b := NewBank()

	require.NoError(t, b.Deposit("alice", 1000))
	assert.Equal(t, int64(1000), b.Balance("alice"))
	assert.Equal(t, int64(0), b.Balance("bob"))

	require.NoError(t, b.Transfer("alice", "bob", 400))
	assert.Equal(t, int64(600), b.Balance("alice"))
	assert.Equal(t, int64(400), b.Balance("bob"))
}

func TestBank_TransferInsufficientFunds(t *testing.T) {
	b := NewBank()
	require.NoError(t, b.Deposit("alice", 100))

	err := b.Transfer("alice", "bob", 101)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientFunds))

	// Neither leg applied.
	assert.Equal(t, int64(100), b.Balance("alice"))
	assert.Equal(t, int64(0), b.Balance("bob"))
}

func TestBank_Validation(t *testing.T) {
	b := NewBank()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"transfer empty from", func() error { return b.Transfer("", "bob", 1) }},
		{"transfer empty to", func() error { return b.Transfer("alice", "", 1) }},
		{"transfer zero amount", func() error { return b.Transfer("alice", "bob", 0) }},
		{"transfer negative amount", func() error { return b.Transfer("alice", "bob", -5) }},
		{"deposit empty address", func() error { return b.Deposit("", 1) }},
		{"deposit zero amount", func() error { return b.Deposit("alice", 0) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidInput))
		})
	}
}

func TestBank_ConcurrentTransfers(t *testing.T) {
	b := NewBank()
	require.NoError(t, b.Deposit("hub", 10_000))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Transfer("hub", "spoke", 100)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), b.Balance("hub"))
	assert.Equal(t, int64(10_000), b.Balance("spoke"))
}
