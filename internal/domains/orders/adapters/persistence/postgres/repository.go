package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders, lines and invoices in PostgreSQL using GORM.
// Schema is owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts the order and its lines in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toOrderRecord(order)
	record.ID = 0
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Invoice").Create(&record).Error
	}); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetOrder fetches an order with its lines in insertion order.
func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).Preload("Lines", orderedLines).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrOrderNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListOrders returns orders matching the filter ordered by id.
func (r *Repository) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Preload("Lines", orderedLines).Order("id")
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id = ANY(?)", pq.Int64Array(filter.IDs))
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// UpdateOrder locks the order row, applies mutate and stores the new status.
func (r *Repository) UpdateOrder(ctx context.Context, id int64, mutate ports.MutateFunc) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		if err := updateStatus(tx, id, order.Status); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOrder removes the order and its lines unless an invoice references it.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOrder(tx, id); err != nil {
			return err
		}
		var invoices int64
		if err := tx.Model(&invoiceRecord{}).Where("order_id = ?", id).Count(&invoices).Error; err != nil {
			return err
		}
		if invoices > 0 {
			return ports.ErrOrderProtected
		}
		if err := tx.Where("order_id = ?", id).Delete(&orderLineRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&orderRecord{}, id).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ports.ErrOrderProtected
	}
	return err
}

// IssueInvoice stores the invoice and the order's new status in one transaction.
// The order row lock serializes concurrent issuers; the unique order_id index backs it up.
func (r *Repository) IssueInvoice(ctx context.Context, orderID int64, issue ports.IssueFunc) (*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var issued *domain.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&invoiceRecord{}).Where("order_id = ?", orderID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ports.ErrInvoiceExists
		}
		invoice, err := issue(order)
		if err != nil {
			return err
		}
		invoice.OrderID = orderID
		record := toInvoiceRecord(invoice)
		record.ID = 0
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrInvoiceExists
			}
			return err
		}
		if err := updateStatus(tx, orderID, order.Status); err != nil {
			return err
		}
		issued = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// GetInvoice fetches an invoice by identifier.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record invoiceRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrInvoiceNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListInvoices returns invoices matching the filter ordered by id.
func (r *Repository) ListInvoices(ctx context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("id")
	if len(filter.OrderIDs) > 0 {
		query = query.Where("order_id = ANY(?)", pq.Int64Array(filter.OrderIDs))
	}
	var records []invoiceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	invoices := make([]*domain.Invoice, 0, len(records))
	for i := range records {
		invoices = append(invoices, records[i].toDomain())
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice; the referenced order is kept.
func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&invoiceRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrInvoiceNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func lockOrder(tx *gorm.DB, id int64) (*domain.Order, error) {
	var record orderRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrOrderNotFound
		}
		return nil, err
	}
	if err := orderedLines(tx).Where("order_id = ?", id).Find(&record.Lines).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func updateStatus(tx *gorm.DB, id int64, status domain.Status) error {
	return tx.Model(&orderRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}).Error
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
