package ledger

import (
	"testing"

	"github.com/alienworld1/data-dex/internal/funds"
	"github.com/alienworld1/data-dex/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "platform:admin"

func newPoolLedger(t *testing.T, balance int64) (*Ledger, *funds.Bank) {
	t.Helper()
	l, bank := newTestLedger(t, 5)
	require.NoError(t, bank.Deposit(admin, balance))
	require.NoError(t, l.InitializePool(admin, balance))
	return l, bank
}

func TestInitializePool(t *testing.T) {
	l, bank := newTestLedger(t, 5)
	bank.Deposit(admin, 100_000_000)

	require.NoError(t, l.InitializePool(admin, 100_000_000))
	pool := l.GetPool()
	require.NotNil(t, pool)
	assert.Equal(t, int64(100_000_000), pool.Balance)
	assert.Equal(t, models.Address(admin), pool.Admin)
	assert.Zero(t, bank.Balance(admin), "the initial balance moved into escrow")
	assert.Equal(t, int64(100_000_000), bank.Balance(PoolAddress))

	assert.ErrorIs(t, l.InitializePool(admin, 1), models.ErrAlreadyInitialized)
}

func TestInitializePool_Validation(t *testing.T) {
	l, bank := newTestLedger(t, 5)

	assert.ErrorIs(t, l.InitializePool("", 100), models.ErrInvalidInput)
	assert.ErrorIs(t, l.InitializePool(admin, -1), models.ErrInvalidInput)

	// Underfunded admin cannot create the pool.
	assert.ErrorIs(t, l.InitializePool(admin, 100), models.ErrInsufficientFunds)
	assert.Nil(t, l.GetPool())

	bank.Deposit(admin, 100)
	require.NoError(t, l.InitializePool(admin, 100))
}

func TestAddMilestone(t *testing.T) {
	l, _ := newPoolLedger(t, 1_000_000)

	id, err := l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1000})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	id2, err := l.AddMilestone(admin, MilestoneSpec{Name: "Ten Uploads", Requirement: 10, RewardAmount: 5000})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2, "milestone ids are sequential")

	pool := l.GetPool()
	require.Len(t, pool.Milestones, 2)
	assert.True(t, pool.Milestones[0].IsActive)
}

func TestAddMilestone_Validation(t *testing.T) {
	l, _ := newPoolLedger(t, 1_000_000)

	_, err := l.AddMilestone(bob, MilestoneSpec{Name: "x", Requirement: 1, RewardAmount: 1})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = l.AddMilestone(admin, MilestoneSpec{Name: "", Requirement: 1, RewardAmount: 1})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = l.AddMilestone(admin, MilestoneSpec{Name: "x", Requirement: 0, RewardAmount: 1})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = l.AddMilestone(admin, MilestoneSpec{Name: "x", Requirement: 1, RewardAmount: 0})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPayBonus(t *testing.T) {
	l, bank := newPoolLedger(t, 100_000_000)

	require.NoError(t, l.PayBonus(admin, bob, 1_000_000, "community contribution"))
	assert.Equal(t, int64(1_000_000), bank.Balance(bob))

	pool := l.GetPool()
	assert.Equal(t, int64(99_000_000), pool.Balance)
	assert.Equal(t, int64(1_000_000), pool.TotalPaid)
	require.Len(t, pool.History, 1)
	assert.Equal(t, "community contribution", pool.History[0].Reason)

	ach := l.GetAchievements(bob)
	require.NotNil(t, ach)
	assert.Equal(t, int64(1_000_000), ach.TotalBonusReceived)
}

func TestPayBonus_OverdrawFails(t *testing.T) {
	l, bank := newPoolLedger(t, 100_000_000)

	err := l.PayBonus(admin, bob, 150_000_000, "too much")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	assert.Equal(t, int64(100_000_000), l.GetPool().Balance, "balance unchanged")
	assert.Zero(t, bank.Balance(bob))
	assert.Empty(t, l.GetPool().History)
}

func TestPayBonus_Validation(t *testing.T) {
	l, _ := newPoolLedger(t, 1000)

	assert.ErrorIs(t, l.PayBonus(bob, carol, 10, ""), models.ErrUnauthorized)
	assert.ErrorIs(t, l.PayBonus(admin, "", 10, ""), models.ErrInvalidInput)
	assert.ErrorIs(t, l.PayBonus(admin, bob, 0, ""), models.ErrInvalidInput)
	assert.ErrorIs(t, l.PayBonus(admin, bob, -5, ""), models.ErrInvalidInput)
}

func TestEvaluateMilestones(t *testing.T) {
	l, _ := newPoolLedger(t, 100_000_000)
	mID, err := l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1_000_000})
	require.NoError(t, err)

	newly, err := l.EvaluateMilestones(bob, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{mID}, newly)

	ach := l.GetAchievements(bob)
	require.NotNil(t, ach)
	assert.Equal(t, []uint64{mID}, ach.Achieved)
	assert.Empty(t, ach.Rewarded, "achievement does not move funds")
	assert.Equal(t, int64(99_000_000), l.GetPool().Balance, "pool accounting is debited at evaluation")
}

func TestEvaluateMilestones_Idempotent(t *testing.T) {
	l, _ := newPoolLedger(t, 100_000_000)
	l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1_000_000})

	first, err := l.EvaluateMilestones(bob, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	balance := l.GetPool().Balance

	second, err := l.EvaluateMilestones(bob, 1)
	require.NoError(t, err)
	assert.Empty(t, second, "re-evaluation achieves nothing new")
	assert.Equal(t, balance, l.GetPool().Balance, "pool debited at most once per milestone")
	assert.Equal(t, []uint64{1}, l.GetAchievements(bob).Achieved)
}

func TestEvaluateMilestones_BelowRequirement(t *testing.T) {
	l, _ := newPoolLedger(t, 100_000_000)
	l.AddMilestone(admin, MilestoneSpec{Name: "Ten Uploads", Requirement: 10, RewardAmount: 1_000_000})

	newly, err := l.EvaluateMilestones(bob, 9)
	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Nil(t, l.GetAchievements(bob).Achieved)
}

func TestEvaluateMilestones_PoolTooLow(t *testing.T) {
	l, _ := newPoolLedger(t, 500)
	l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1000})

	newly, err := l.EvaluateMilestones(bob, 5)
	require.NoError(t, err)
	assert.Empty(t, newly, "a milestone the pool cannot cover stays unachieved")
	assert.Equal(t, int64(500), l.GetPool().Balance)
}

func TestEvaluateMilestones_InactiveSkipped(t *testing.T) {
	l, _ := newPoolLedger(t, 100_000_000)
	mID, _ := l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1000})

	_, err := l.EvaluateMilestones(bob, 1)
	require.NoError(t, err)
	require.NoError(t, l.DeactivateMilestone(admin, mID))

	newly, err := l.EvaluateMilestones(carol, 1)
	require.NoError(t, err)
	assert.Empty(t, newly, "inactive milestones are skipped for new users")
	assert.Equal(t, []uint64{mID}, l.GetAchievements(bob).Achieved,
		"already-achieved status is untouched by deactivation")
}

func TestEvaluateMilestones_NoPool(t *testing.T) {
	l, _ := newTestLedger(t, 5)
	newly, err := l.EvaluateMilestones(bob, 100)
	assert.NoError(t, err)
	assert.Empty(t, newly)
}

func TestTransferMilestoneReward(t *testing.T) {
	l, bank := newPoolLedger(t, 100_000_000)
	mID, _ := l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1_000_000})

	_, err := l.EvaluateMilestones(bob, 1)
	require.NoError(t, err)
	assert.Zero(t, bank.Balance(bob), "evaluation alone moves no funds")

	require.NoError(t, l.TransferMilestoneReward(admin, bob, mID))
	assert.Equal(t, int64(1_000_000), bank.Balance(bob))

	ach := l.GetAchievements(bob)
	assert.Equal(t, []uint64{mID}, ach.Rewarded)
	assert.Equal(t, int64(1_000_000), ach.TotalBonusReceived)

	// The two-phase flow debits the pool at evaluation and again at
	// transfer; the 100M pool is down 2M after one full cycle.
	assert.Equal(t, int64(98_000_000), l.GetPool().Balance)
	assert.Equal(t, int64(1_000_000), l.GetPool().TotalPaid)
}

func TestTransferMilestoneReward_NeverTwice(t *testing.T) {
	l, bank := newPoolLedger(t, 100_000_000)
	mID, _ := l.AddMilestone(admin, MilestoneSpec{Name: "First Upload", Requirement: 1, RewardAmount: 1_000_000})
	l.EvaluateMilestones(bob, 1)

	require.NoError(t, l.TransferMilestoneReward(admin, bob, mID))
	err := l.TransferMilestoneReward(admin, bob, mID)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, int64(1_000_000), bank.Balance(bob), "paid exactly once")
}

func TestTransferMilestoneReward_Validation(t *testing.T) {
	l, _ := newPoolLedger(t, 10)
	mID, _ := l.AddMilestone(admin, MilestoneSpec{Name: "x", Requirement: 1, RewardAmount: 100})

	assert.ErrorIs(t, l.TransferMilestoneReward(bob, carol, mID), models.ErrUnauthorized)
	assert.ErrorIs(t, l.TransferMilestoneReward(admin, "", mID), models.ErrInvalidInput)
	assert.ErrorIs(t, l.TransferMilestoneReward(admin, bob, 0), models.ErrInvalidInput)
	assert.ErrorIs(t, l.TransferMilestoneReward(admin, bob, 42), models.ErrNotFound)
	assert.ErrorIs(t, l.TransferMilestoneReward(admin, bob, mID), models.ErrInsufficientFunds)
}

func TestReplenishPool(t *testing.T) {
	l, bank := newPoolLedger(t, 1000)
	bank.Deposit(admin, 500)

	require.NoError(t, l.ReplenishPool(admin, 500))
	assert.Equal(t, int64(1500), l.GetPool().Balance)
	assert.Equal(t, int64(1500), bank.Balance(PoolAddress))

	assert.ErrorIs(t, l.ReplenishPool(bob, 10), models.ErrUnauthorized)
	assert.ErrorIs(t, l.ReplenishPool(admin, 0), models.ErrInvalidInput)
	assert.ErrorIs(t, l.ReplenishPool(admin, 10), models.ErrInsufficientFunds,
		"admin account is empty again")
}

func TestDeactivateMilestone_Validation(t *testing.T) {
	l, _ := newPoolLedger(t, 1000)
	mID, _ := l.AddMilestone(admin, MilestoneSpec{Name: "x", Requirement: 1, RewardAmount: 10})

	assert.ErrorIs(t, l.DeactivateMilestone(bob, mID), models.ErrUnauthorized)
	assert.ErrorIs(t, l.DeactivateMilestone(admin, 42), models.ErrNotFound)
	require.NoError(t, l.DeactivateMilestone(admin, mID))
	assert.False(t, l.GetPool().Milestones[0].IsActive)
}

func TestPoolOperations_BeforeInit(t *testing.T) {
	l, _ := newTestLedger(t, 5)

	_, err := l.AddMilestone(admin, MilestoneSpec{Name: "x", Requirement: 1, RewardAmount: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, l.PayBonus(admin, bob, 1, ""), models.ErrNotFound)
	assert.ErrorIs(t, l.TransferMilestoneReward(admin, bob, 1), models.ErrNotFound)
	assert.ErrorIs(t, l.ReplenishPool(admin, 1), models.ErrNotFound)
	assert.ErrorIs(t, l.DeactivateMilestone(admin, 1), models.ErrNotFound)
}
