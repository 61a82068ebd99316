package ledger

import (
	"fmt"

	"github.com/alienworld1/data-dex/internal/models"
)

// MaxFeePercent is the upper bound on the platform fee.
const MaxFeePercent = 20

// Split computes the platform-fee / seller-proceeds split for a purchase.
// The fee rounds down, so rounding always favors the seller and
// fee + sellerAmount == price holds exactly.
func Split(price, feePercent int64) (fee, sellerAmount int64, err error) {
	if price <= 0 {
		return 0, 0, fmt.Errorf("%w: price must be positive, got %d", models.ErrInvalidInput, price)
	}
	if feePercent < 0 || feePercent > MaxFeePercent {
		return 0, 0, fmt.Errorf("%w: fee percent must be in [0,%d], got %d", models.ErrInvalidInput, MaxFeePercent, feePercent)
	}

	fee = price * feePercent / 100
	return fee, price - fee, nil
}
