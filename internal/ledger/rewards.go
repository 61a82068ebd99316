package ledger

import (
	"fmt"
	"strings"

	"github.com/alienworld1/data-dex/internal/models"
	"github.com/sirupsen/logrus"
)

// MilestoneSpec describes a milestone to add to the pool.
type MilestoneSpec struct {
	Name         string
	Description  string
	Requirement  int64
	RewardAmount int64
}

// InitializePool creates the reward pool for this ledger, funded by the admin.
// The initial balance is moved from the admin's account into the pool escrow,
// so an underfunded admin fails with InsufficientFunds and no pool is created.
func (l *Ledger) InitializePool(admin models.Address, initialBalance int64) error {
	if admin == "" {
		return fmt.Errorf("%w: admin address is required", models.ErrInvalidInput)
	}
	if initialBalance < 0 {
		return fmt.Errorf("%w: initial balance cannot be negative", models.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		return fmt.Errorf("%w: reward pool", models.ErrAlreadyInitialized)
	}
	if initialBalance > 0 {
		if err := l.transfer.Transfer(admin, PoolAddress, initialBalance); err != nil {
			return fmt.Errorf("funding pool: %w", err)
		}
	}

	l.pool = &models.RewardPool{
		Admin:     admin,
		Balance:   initialBalance,
		CreatedAt: l.now(),
	}
	l.logger.WithFields(logrus.Fields{
		"admin":   admin,
		"balance": initialBalance,
	}).Info("reward pool initialized")
	return nil
}

// AddMilestone appends a milestone with a fresh sequential id. Admin only.
func (l *Ledger) AddMilestone(caller models.Address, spec MilestoneSpec) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return 0, fmt.Errorf("%w: reward pool not initialized", models.ErrNotFound)
	}
	if caller != l.pool.Admin {
		return 0, fmt.Errorf("%w: only the pool admin may add milestones", models.ErrUnauthorized)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return 0, fmt.Errorf("%w: milestone name is required", models.ErrInvalidInput)
	}
	if spec.Requirement <= 0 {
		return 0, fmt.Errorf("%w: requirement must be positive, got %d", models.ErrInvalidInput, spec.Requirement)
	}
	if spec.RewardAmount <= 0 {
		return 0, fmt.Errorf("%w: reward amount must be positive, got %d", models.ErrInvalidInput, spec.RewardAmount)
	}

	m := &models.Milestone{
		ID:           l.nextMileID,
		Name:         spec.Name,
		Description:  spec.Description,
		Requirement:  spec.Requirement,
		RewardAmount: spec.RewardAmount,
		IsActive:     true,
	}
	l.nextMileID++
	l.pool.Milestones = append(l.pool.Milestones, m)

	l.logger.WithFields(logrus.Fields{
		"milestone_id": m.ID,
		"requirement":  m.Requirement,
		"reward":       m.RewardAmount,
	}).Info("milestone added")
	return m.ID, nil
}

// DeactivateMilestone marks a milestone inactive. Future evaluations skip it;
// already-achieved entries are untouched.
func (l *Ledger) DeactivateMilestone(caller models.Address, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return fmt.Errorf("%w: reward pool not initialized", models.ErrNotFound)
	}
	if caller != l.pool.Admin {
		return fmt.Errorf("%w: only the pool admin may deactivate milestones", models.ErrUnauthorized)
	}
	m := l.findMilestone(id)
	if m == nil {
		return fmt.Errorf("%w: milestone %d", models.ErrNotFound, id)
	}
	m.IsActive = false
	l.logger.WithField("milestone_id", id).Info("milestone deactivated")
	return nil
}

// PayBonus pays a discretionary bonus from the pool to recipient. Admin only.
func (l *Ledger) PayBonus(caller, recipient models.Address, amount int64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return fmt.Errorf("%w: reward pool not initialized", models.ErrNotFound)
	}
	if caller != l.pool.Admin {
		return fmt.Errorf("%w: only the pool admin may pay bonuses", models.ErrUnauthorized)
	}
	if recipient == "" {
		return fmt.Errorf("%w: recipient address is required", models.ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidInput, amount)
	}
	if l.pool.Balance < amount {
		return fmt.Errorf("%w: pool balance %d below bonus %d", models.ErrInsufficientFunds, l.pool.Balance, amount)
	}
	if err := l.transfer.Transfer(PoolAddress, recipient, amount); err != nil {
		return fmt.Errorf("bonus payout: %w", err)
	}

	l.pool.Balance -= amount
	l.pool.TotalPaid += amount
	l.pool.History = append(l.pool.History, models.BonusPayout{
		Recipient: recipient,
		Amount:    amount,
		Reason:    reason,
		PaidAt:    l.now(),
	})
	ach := l.upsertAchievements(recipient)
	ach.TotalBonusReceived += amount

	l.events.Append(EventRewardPaid, l.now(), RewardPaidEvent{
		Recipient:   recipient,
		Amount:      amount,
		Reason:      reason,
		PoolBalance: l.pool.Balance,
	})
	l.logger.WithFields(logrus.Fields{
		"recipient": recipient,
		"amount":    amount,
		"reason":    reason,
	}).Info("bonus paid")
	return nil
}

// TransferMilestoneReward moves the reward for an achieved milestone to the
// recipient. This is the second half of the two-phase milestone flow: Evaluate
// marks achievement and debits the pool's accounting, while the funds only
// move here, on an explicit admin call. Rewarded status is tracked separately
// from Achieved and a milestone is never paid to the same recipient twice.
func (l *Ledger) TransferMilestoneReward(caller, recipient models.Address, milestoneID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return fmt.Errorf("%w: reward pool not initialized", models.ErrNotFound)
	}
	if caller != l.pool.Admin {
		return fmt.Errorf("%w: only the pool admin may transfer rewards", models.ErrUnauthorized)
	}
	if recipient == "" {
		return fmt.Errorf("%w: recipient address is required", models.ErrInvalidInput)
	}
	if milestoneID == 0 {
		return fmt.Errorf("%w: milestone id is required", models.ErrInvalidInput)
	}
	m := l.findMilestone(milestoneID)
	if m == nil {
		return fmt.Errorf("%w: milestone %d", models.ErrNotFound, milestoneID)
	}

	ach := l.upsertAchievements(recipient)
	if containsID(ach.Rewarded, milestoneID) {
		return fmt.Errorf("%w: milestone %d already rewarded", models.ErrInvalidInput, milestoneID)
	}
	if l.pool.Balance < m.RewardAmount {
		return fmt.Errorf("%w: pool balance %d below reward %d", models.ErrInsufficientFunds, l.pool.Balance, m.RewardAmount)
	}
	if err := l.transfer.Transfer(PoolAddress, recipient, m.RewardAmount); err != nil {
		return fmt.Errorf("milestone payout: %w", err)
	}

	l.pool.Balance -= m.RewardAmount
	l.pool.TotalPaid += m.RewardAmount
	ach.Rewarded = append(ach.Rewarded, milestoneID)
	ach.TotalBonusReceived += m.RewardAmount

	l.events.Append(EventRewardPaid, l.now(), RewardPaidEvent{
		Recipient:   recipient,
		Amount:      m.RewardAmount,
		Reason:      fmt.Sprintf("milestone: %s", m.Name),
		MilestoneID: milestoneID,
		PoolBalance: l.pool.Balance,
	})
	l.logger.WithFields(logrus.Fields{
		"recipient":    recipient,
		"milestone_id": milestoneID,
		"amount":       m.RewardAmount,
	}).Info("milestone reward transferred")
	return nil
}

// EvaluateMilestones checks uploadedCount against every active milestone the
// user has not yet achieved. Each newly met milestone is added to the user's
// achieved set and its reward is debited from the pool's accounting; the
// actual funds stay in escrow until TransferMilestoneReward. Evaluation is
// idempotent: re-running with the same count changes nothing. With no pool
// configured there is nothing to evaluate and the call is a no-op.
func (l *Ledger) EvaluateMilestones(user models.Address, uploadedCount int64) ([]uint64, error) {
	if user == "" {
		return nil, fmt.Errorf("%w: user address is required", models.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return nil, nil
	}

	ach := l.upsertAchievements(user)
	ach.LastEvaluatedAt = l.now()

	var newly []uint64
	for _, m := range l.pool.Milestones {
		if !m.IsActive || containsID(ach.Achieved, m.ID) {
			continue
		}
		if uploadedCount < m.Requirement || l.pool.Balance < m.RewardAmount {
			continue
		}

		ach.Achieved = append(ach.Achieved, m.ID)
		l.pool.Balance -= m.RewardAmount
		newly = append(newly, m.ID)

		l.events.Append(EventMilestoneAchieved, l.now(), MilestoneAchievedEvent{
			User:        user,
			MilestoneID: m.ID,
			Requirement: m.Requirement,
			Reward:      m.RewardAmount,
			PoolBalance: l.pool.Balance,
		})
		l.logger.WithFields(logrus.Fields{
			"user":         user,
			"milestone_id": m.ID,
			"uploaded":     uploadedCount,
		}).Info("milestone achieved")
	}
	return newly, nil
}

// ReplenishPool tops up the pool from the admin's account. Admin only.
func (l *Ledger) ReplenishPool(caller models.Address, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return fmt.Errorf("%w: reward pool not initialized", models.ErrNotFound)
	}
	if caller != l.pool.Admin {
		return fmt.Errorf("%w: only the pool admin may replenish", models.ErrUnauthorized)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidInput, amount)
	}
	if err := l.transfer.Transfer(caller, PoolAddress, amount); err != nil {
		return fmt.Errorf("replenishing pool: %w", err)
	}

	l.pool.Balance += amount
	l.events.Append(EventPoolReplenished, l.now(), PoolReplenishedEvent{
		Admin:       caller,
		Amount:      amount,
		PoolBalance: l.pool.Balance,
	})
	l.logger.WithFields(logrus.Fields{
		"amount":  amount,
		"balance": l.pool.Balance,
	}).Info("reward pool replenished")
	return nil
}

// GetPool returns a snapshot of the reward pool, or nil before initialization.
func (l *Ledger) GetPool() *models.RewardPool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool == nil {
		return nil
	}
	cp := *l.pool
	cp.Milestones = make([]*models.Milestone, len(l.pool.Milestones))
	for i, m := range l.pool.Milestones {
		mc := *m
		cp.Milestones[i] = &mc
	}
	cp.History = append([]models.BonusPayout(nil), l.pool.History...)
	return &cp
}

// GetAchievements returns a snapshot of the user's achievements, or nil if
// the user has never been evaluated or rewarded.
func (l *Ledger) GetAchievements(user models.Address) *models.UserAchievements {
	l.mu.Lock()
	defer l.mu.Unlock()

	ach, ok := l.achieved[user]
	if !ok {
		return nil
	}
	cp := *ach
	cp.Achieved = append([]uint64(nil), ach.Achieved...)
	cp.Rewarded = append([]uint64(nil), ach.Rewarded...)
	return &cp
}

// upsertAchievements returns the achievements record for user, creating it on
// first touch. Caller must hold l.mu.
func (l *Ledger) upsertAchievements(user models.Address) *models.UserAchievements {
	ach, ok := l.achieved[user]
	if !ok {
		ach = &models.UserAchievements{Address: user}
		l.achieved[user] = ach
	}
	return ach
}

// findMilestone returns the milestone with the given id. Caller must hold l.mu.
func (l *Ledger) findMilestone(id uint64) *models.Milestone {
	for _, m := range l.pool.Milestones {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
