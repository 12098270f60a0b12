package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
	"github.com/Apurer/wms-orders/internal/shared/auth"
)

const defaultResolveConcurrency = 4

// Service orchestrates the order-to-invoice workflow.
type Service struct {
	repo           ports.Repository
	resolver       ports.ProductResolver
	idempotency    ports.IdempotencyStore
	creatorRole    string
	strictInvoices bool
	concurrency    int
	now            func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key replay for order creation.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithCreatorRole overrides the role required to create orders.
func WithCreatorRole(role string) Option {
	return func(s *Service) {
		if strings.TrimSpace(role) != "" {
			s.creatorRole = strings.TrimSpace(role)
		}
	}
}

// WithStrictInvoicing controls whether only verified orders may be invoiced.
// Disabling it restores the legacy behavior of invoicing any order without an invoice.
func WithStrictInvoicing(strict bool) Option {
	return func(s *Service) {
		s.strictInvoices = strict
	}
}

// WithResolveConcurrency bounds parallel product lookups per order.
func WithResolveConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the service with its dependencies.
func NewService(repo ports.Repository, resolver ports.ProductResolver, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		resolver:       resolver,
		creatorRole:    auth.RoleWarehouseManager,
		strictInvoices: true,
		concurrency:    defaultResolveConcurrency,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder snapshots every requested product and persists a verified order.
// Nothing is written unless every product resolves.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	if !input.Principal.HasRole(s.creatorRole) {
		return nil, fmt.Errorf("%w: role %q required to create orders", ErrForbidden, s.creatorRole)
	}
	if err := domain.ValidateRequests(input.Lines); err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintCreateOrder(input)
		if err != nil {
			return nil, err
		}
		fingerprint = hash
		replayed, err := s.replayOrder(ctx, key, fingerprint)
		if err != nil {
			return nil, mapError(err)
		}
		if replayed != nil {
			return &ports.CreateOrderResult{Order: replayed, Replayed: true}, nil
		}
	}

	if s.resolver == nil {
		return nil, mapError(fmt.Errorf("%w: no product resolver configured", ports.ErrInventoryUnavailable))
	}
	snapshots, err := resolveSnapshots(ctx, s.resolver, input.Lines, s.concurrency)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := domain.NewOrder(input.Lines, snapshots, input.VIP, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}

	if fingerprint != "" {
		record, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, OrderID: saved.ID})
		if err != nil {
			if rbErr := s.rollbackOrder(ctx, saved.ID); rbErr != nil {
				return nil, mapError(errors.Join(err, rbErr))
			}
			if errors.Is(err, ports.ErrIdempotencyConflict) && record != nil && record.RequestHash == fingerprint {
				// A concurrent retry with the same payload won; hand back its order.
				winner, getErr := s.repo.GetOrder(ctx, record.OrderID)
				if getErr != nil {
					return nil, mapError(getErr)
				}
				return &ports.CreateOrderResult{Order: winner, Replayed: true}, nil
			}
			return nil, mapError(err)
		}
	}
	return &ports.CreateOrderResult{Order: saved}, nil
}

// rollbackOrder removes an order created by an aborted CreateOrder.
func (s *Service) rollbackOrder(ctx context.Context, id int64) error {
	if err := s.repo.DeleteOrder(ctx, id); err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
		return fmt.Errorf("roll back order %d: %w", id, err)
	}
	return nil
}

func (s *Service) replayOrder(ctx context.Context, key, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.repo.GetOrder(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads a single order with its lines.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListOrders returns orders matching filter, ordered by id.
func (s *Service) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// MarkDispatched moves a packed order to Dispatched.
func (s *Service) MarkDispatched(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.repo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		return o.MarkDispatched()
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// DeleteOrder removes an order that has no invoice.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return mapError(s.repo.DeleteOrder(ctx, id))
}

// GenerateInvoice computes the order total and stores the invoice together with
// the order's move to PackedForDispatch.
func (s *Service) GenerateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: order id must be greater than zero", ErrInvalidInput)
	}
	issuedAt := s.now()
	invoice, err := s.repo.IssueInvoice(ctx, orderID, func(order *domain.Order) (*domain.Invoice, error) {
		return domain.IssueInvoice(order, s.strictInvoices, issuedAt)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return invoice, nil
}

// GetInvoice loads a single invoice.
func (s *Service) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return invoice, nil
}

// ListPendingInvoices returns every stored invoice. No status filter is applied;
// the name is inherited from the warehouse portal.
func (s *Service) ListPendingInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx, ports.InvoiceFilter{})
	if err != nil {
		return nil, mapError(err)
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice, leaving its order untouched.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return mapError(s.repo.DeleteInvoice(ctx, id))
}

var _ ports.Service = (*Service)(nil)
