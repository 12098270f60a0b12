package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	inventoryclient "github.com/Apurer/wms-orders/internal/clients/http/inventory"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

type fakeFetcher struct {
	product *inventoryclient.Product
	err     error
}

func (f fakeFetcher) GetProduct(context.Context, int64) (*inventoryclient.Product, error) {
	return f.product, f.err
}

func TestResolve_MapsProduct(t *testing.T) {
	r := NewResolver(fakeFetcher{product: &inventoryclient.Product{
		Codigo: 50123,
		Nombre: " Camiseta Deportiva ",
		Precio: decimal.RequireFromString("25500.0"),
	}})

	snap, err := r.Resolve(context.Background(), 50123)
	require.NoError(t, err)
	require.Equal(t, int64(50123), snap.Code)
	require.Equal(t, "Camiseta Deportiva", snap.Name)
	require.True(t, snap.UnitPrice.Equal(decimal.NewFromInt(25500)))
}

func TestResolve_MapsErrors(t *testing.T) {
	_, err := NewResolver(fakeFetcher{err: inventoryclient.ErrProductNotFound}).Resolve(context.Background(), 1)
	require.ErrorIs(t, err, ports.ErrProductNotFound)

	_, err = NewResolver(fakeFetcher{err: inventoryclient.ErrUnavailable}).Resolve(context.Background(), 1)
	require.ErrorIs(t, err, ports.ErrInventoryUnavailable)

	boom := errors.New("boom")
	_, err = NewResolver(fakeFetcher{err: boom}).Resolve(context.Background(), 1)
	require.ErrorIs(t, err, boom)

	_, err = NewResolver(nil).Resolve(context.Background(), 1)
	require.ErrorIs(t, err, ports.ErrInventoryUnavailable)
}

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver()
	_, err := r.Resolve(context.Background(), 9)
	require.ErrorIs(t, err, ports.ErrProductNotFound)
}
