package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	inventoryclient "github.com/Apurer/wms-orders/internal/clients/http/inventory"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

var _ ports.ProductResolver = (*Resolver)(nil)

// ProductFetcher is the slice of the inventory client the resolver needs.
type ProductFetcher interface {
	GetProduct(ctx context.Context, code int64) (*inventoryclient.Product, error)
}

// Resolver implements the product snapshot port on top of the inventory HTTP API.
type Resolver struct {
	client ProductFetcher
}

// NewResolver wires an inventory client into a resolver.
func NewResolver(client ProductFetcher) *Resolver {
	return &Resolver{client: client}
}

// Resolve captures the current name and price of a product.
func (r *Resolver) Resolve(ctx context.Context, code int64) (domain.ProductSnapshot, error) {
	if r == nil || r.client == nil {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: inventory resolver not configured", ports.ErrInventoryUnavailable)
	}
	product, err := r.client.GetProduct(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, inventoryclient.ErrProductNotFound):
			return domain.ProductSnapshot{}, fmt.Errorf("%w: code %d", ports.ErrProductNotFound, code)
		case errors.Is(err, inventoryclient.ErrUnavailable),
			errors.Is(err, context.DeadlineExceeded):
			return domain.ProductSnapshot{}, fmt.Errorf("%w: %w", ports.ErrInventoryUnavailable, err)
		}
		return domain.ProductSnapshot{}, err
	}
	if product == nil {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: code %d", ports.ErrProductNotFound, code)
	}
	return ToSnapshot(*product), nil
}

// ToSnapshot converts the inventory payload into the snapshot stored on order lines.
func ToSnapshot(product inventoryclient.Product) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		Code:      product.Codigo,
		Name:      strings.TrimSpace(product.Nombre),
		UnitPrice: product.Precio,
	}
}

// StaticResolver serves snapshots from a fixed catalog, for tests and contract verification.
type StaticResolver struct {
	products map[int64]domain.ProductSnapshot
}

// NewStaticResolver builds a resolver over the given snapshots.
func NewStaticResolver(products ...domain.ProductSnapshot) *StaticResolver {
	catalog := make(map[int64]domain.ProductSnapshot, len(products))
	for _, p := range products {
		catalog[p.Code] = p
	}
	return &StaticResolver{products: catalog}
}

// Resolve returns the stored snapshot or ErrProductNotFound.
func (s *StaticResolver) Resolve(_ context.Context, code int64) (domain.ProductSnapshot, error) {
	snap, ok := s.products[code]
	if !ok {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: code %d", ports.ErrProductNotFound, code)
	}
	return snap, nil
}
