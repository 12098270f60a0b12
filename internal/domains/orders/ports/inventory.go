package ports

import (
	"context"
	"errors"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
)

var (
	ErrProductNotFound      = errors.New("product not found in inventory")
	ErrInventoryUnavailable = errors.New("inventory service unavailable")
)

// ProductResolver looks up the current name and price of a product in the inventory service.
type ProductResolver interface {
	Resolve(ctx context.Context, code int64) (domain.ProductSnapshot, error)
}
