package ledger

import (
	"fmt"

	"github.com/alienworld1/data-dex/internal/models"
	"github.com/sirupsen/logrus"
)

// ExecutePurchase completes a purchase of datasetID by buyer: it splits the
// price into platform fee and seller proceeds, performs both transfers as one
// all-or-nothing unit, records the purchase and updates both parties' stats.
// On any failure the ledger is left exactly as it was.
//
// The seller's earned counter is only bumped when a stats record already
// exists for the seller; a seller with no stats record is skipped silently
// rather than getting one created mid-sale.
func (l *Ledger) ExecutePurchase(buyer models.Address, datasetID uint64) (*models.Purchase, error) {
	if buyer == "" {
		return nil, fmt.Errorf("%w: buyer address is required", models.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ds, ok := l.datasets[datasetID]
	if !ok || !ds.IsActive {
		return nil, fmt.Errorf("%w: dataset %d is missing or inactive", models.ErrNotFound, datasetID)
	}
	if ds.Owner == buyer {
		return nil, fmt.Errorf("%w: cannot purchase your own dataset", models.ErrUnauthorized)
	}
	key := purchaseKey{buyer: buyer, datasetID: datasetID}
	if _, dup := l.purchases[key]; dup {
		return nil, fmt.Errorf("%w: dataset %d", models.ErrAlreadyPurchased, datasetID)
	}
	if l.transfer.Balance(buyer) < ds.Price {
		return nil, fmt.Errorf("%w: balance below price %d", models.ErrInsufficientFunds, ds.Price)
	}

	fee, sellerAmount, err := Split(ds.Price, l.feePercent)
	if err != nil {
		return nil, err
	}

	// Both legs run before any ledger state is touched; a failure aborts the
	// whole operation with no partial state change.
	if fee > 0 {
		if err := l.transfer.Transfer(buyer, l.platform, fee); err != nil {
			return nil, fmt.Errorf("fee transfer failed: %w", err)
		}
	}
	if err := l.transfer.Transfer(buyer, ds.Owner, sellerAmount); err != nil {
		return nil, fmt.Errorf("seller transfer failed: %w", err)
	}

	p := &models.Purchase{
		DatasetID:   datasetID,
		Buyer:       buyer,
		Seller:      ds.Owner,
		Price:       ds.Price,
		PurchasedAt: l.now(),
	}
	l.purchases[key] = p
	l.byDataset[datasetID] = append(l.byDataset[datasetID], p)
	ds.TotalPurchases++

	buyerStats := l.upsertStats(buyer)
	buyerStats.Purchased++
	buyerStats.Spent += ds.Price
	if sellerStats, exists := l.stats[ds.Owner]; exists {
		sellerStats.Earned += sellerAmount
	}

	l.events.Append(EventDatasetPurchased, p.PurchasedAt, DatasetPurchasedEvent{
		DatasetID:      datasetID,
		Buyer:          buyer,
		Seller:         ds.Owner,
		Price:          ds.Price,
		Fee:            fee,
		SellerAmount:   sellerAmount,
		TotalPurchases: ds.TotalPurchases,
	})
	l.logger.WithFields(logrus.Fields{
		"dataset_id":    datasetID,
		"buyer":         buyer,
		"seller":        ds.Owner,
		"price":         ds.Price,
		"fee":           fee,
		"seller_amount": sellerAmount,
	}).Info("dataset purchased")

	cp := *p
	return &cp, nil
}

// GetPurchase returns a copy of the purchase record for (buyer, datasetID),
// or nil if the buyer never bought that dataset.
func (l *Ledger) GetPurchase(buyer models.Address, datasetID uint64) *models.Purchase {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.purchases[purchaseKey{buyer: buyer, datasetID: datasetID}]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPurchasesByDataset returns all purchases of a dataset in purchase order.
func (l *Ledger) ListPurchasesByDataset(datasetID uint64) []models.Purchase {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.byDataset[datasetID]
	out := make([]models.Purchase, 0, len(records))
	for _, p := range records {
		out = append(out, *p)
	}
	return out
}

// HasPurchased reports whether buyer already holds a purchase of datasetID.
func (l *Ledger) HasPurchased(buyer models.Address, datasetID uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.purchases[purchaseKey{buyer: buyer, datasetID: datasetID}]
	return ok
}
