package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order/invoice persistence adapter. One mutex
// serializes writers, which makes every method atomic.
type Repository struct {
	mu             sync.RWMutex
	orders         map[int64]*domain.Order
	invoices       map[int64]*domain.Invoice
	invoiceByOrder map[int64]int64
	nextOrderID    int64
	nextInvoiceID  int64
}

func NewRepository() *Repository {
	return &Repository{
		orders:         map[int64]*domain.Order{},
		invoices:       map[int64]*domain.Invoice{},
		invoiceByOrder: map[int64]int64{},
	}
}

func (r *Repository) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextOrderID++
	clone.ID = r.nextOrderID
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrOrderNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) ListOrders(_ context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, order.ID) {
			continue
		}
		list = append(list, order.Clone())
	}
	slices.SortFunc(list, func(a, b *domain.Order) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

func (r *Repository) UpdateOrder(_ context.Context, id int64, mutate ports.MutateFunc) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrOrderNotFound
	}
	working := stored.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	// Only the status may change after creation.
	updated := stored.Clone()
	updated.Status = working.Status
	r.orders[id] = updated
	return updated.Clone(), nil
}

func (r *Repository) DeleteOrder(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrOrderNotFound
	}
	if _, invoiced := r.invoiceByOrder[id]; invoiced {
		return ports.ErrOrderProtected
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) IssueInvoice(_ context.Context, orderID int64, issue ports.IssueFunc) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[orderID]
	if !ok {
		return nil, ports.ErrOrderNotFound
	}
	if _, invoiced := r.invoiceByOrder[orderID]; invoiced {
		return nil, ports.ErrInvoiceExists
	}
	working := stored.Clone()
	invoice, err := issue(working)
	if err != nil {
		return nil, err
	}
	r.nextInvoiceID++
	saved := *invoice
	saved.ID = r.nextInvoiceID
	saved.OrderID = orderID
	r.invoices[saved.ID] = &saved
	r.invoiceByOrder[orderID] = saved.ID

	updated := stored.Clone()
	updated.Status = working.Status
	r.orders[orderID] = updated

	result := saved
	return &result, nil
}

func (r *Repository) GetInvoice(_ context.Context, id int64) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, ports.ErrInvoiceNotFound
	}
	clone := *invoice
	return &clone, nil
}

func (r *Repository) ListInvoices(_ context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Invoice, 0, len(r.invoices))
	for _, invoice := range r.invoices {
		if len(filter.OrderIDs) > 0 && !slices.Contains(filter.OrderIDs, invoice.OrderID) {
			continue
		}
		clone := *invoice
		list = append(list, &clone)
	}
	slices.SortFunc(list, func(a, b *domain.Invoice) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

func (r *Repository) DeleteInvoice(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return ports.ErrInvoiceNotFound
	}
	delete(r.invoiceByOrder, invoice.OrderID)
	delete(r.invoices, id)
	return nil
}
