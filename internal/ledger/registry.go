package ledger

import (
	"fmt"
	"strings"

	"github.com/alienworld1/data-dex/internal/models"
	"github.com/sirupsen/logrus"
)

// CreateDataset lists a new dataset and returns its id. Ids are sequential
// and never reused. The owner's uploaded counter is bumped, creating the
// stats record if this is the owner's first touch.
func (l *Ledger) CreateDataset(owner models.Address, contentRef, title, description, category string, price int64) (uint64, error) {
	if owner == "" || strings.TrimSpace(contentRef) == "" || strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("%w: owner, content_ref and title are required", models.ErrInvalidInput)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: price must be positive, got %d", models.ErrInvalidInput, price)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ds := &models.Dataset{
		ID:          l.nextDatasetID,
		ContentRef:  contentRef,
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		Owner:       owner,
		CreatedAt:   l.now(),
		IsActive:    true,
	}
	l.nextDatasetID++
	l.datasets[ds.ID] = ds
	l.ownerIndex[owner] = append(l.ownerIndex[owner], ds.ID)
	l.upsertStats(owner).Uploaded++

	l.events.Append(EventDatasetListed, ds.CreatedAt, DatasetListedEvent{
		DatasetID:  ds.ID,
		Owner:      ds.Owner,
		ContentRef: ds.ContentRef,
		Title:      ds.Title,
		Category:   ds.Category,
		Price:      ds.Price,
	})
	l.logger.WithFields(logrus.Fields{
		"dataset_id": ds.ID,
		"owner":      ds.Owner,
		"price":      ds.Price,
	}).Info("dataset listed")

	return ds.ID, nil
}

// GetDataset returns a copy of the dataset, or nil if no such id exists.
// Missing entities are not an error on the read path.
func (l *Ledger) GetDataset(id uint64) *models.Dataset {
	l.mu.Lock()
	defer l.mu.Unlock()

	ds, ok := l.datasets[id]
	if !ok {
		return nil
	}
	cp := *ds
	return &cp
}

// ListActive returns all active datasets in id order.
func (l *Ledger) ListActive() []models.Dataset {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Dataset, 0, len(l.datasets))
	for id := uint64(1); id < l.nextDatasetID; id++ {
		if ds, ok := l.datasets[id]; ok && ds.IsActive {
			out = append(out, *ds)
		}
	}
	return out
}

// ListByOwner returns the owner's datasets in listing order, active or not.
func (l *Ledger) ListByOwner(owner models.Address) []models.Dataset {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.ownerIndex[owner]
	out := make([]models.Dataset, 0, len(ids))
	for _, id := range ids {
		if ds, ok := l.datasets[id]; ok {
			out = append(out, *ds)
		}
	}
	return out
}

// SetPrice changes a dataset's price. Only the owner may reprice.
func (l *Ledger) SetPrice(caller models.Address, id uint64, newPrice int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ds, ok := l.datasets[id]
	if !ok {
		return fmt.Errorf("%w: dataset %d", models.ErrNotFound, id)
	}
	if ds.Owner != caller {
		return fmt.Errorf("%w: only the owner may set the price", models.ErrUnauthorized)
	}
	if newPrice <= 0 {
		return fmt.Errorf("%w: price must be positive, got %d", models.ErrInvalidInput, newPrice)
	}

	ds.Price = newPrice
	l.logger.WithFields(logrus.Fields{
		"dataset_id": id,
		"price":      newPrice,
	}).Info("dataset repriced")
	return nil
}

// Deactivate soft-deletes a dataset. The record is kept so purchase history
// stays resolvable; only the owner may deactivate.
func (l *Ledger) Deactivate(caller models.Address, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ds, ok := l.datasets[id]
	if !ok {
		return fmt.Errorf("%w: dataset %d", models.ErrNotFound, id)
	}
	if ds.Owner != caller {
		return fmt.Errorf("%w: only the owner may deactivate", models.ErrUnauthorized)
	}

	ds.IsActive = false
	l.logger.WithField("dataset_id", id).Info("dataset deactivated")
	return nil
}
