//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "wms-orders-api"
	ConsumerName = "warehouse-portal"

	// The orders service is itself a consumer of the inventory service.
	InventoryProviderName = "inventarios"
	InventoryConsumerName = "wms-orders"

	StateOrdersBaseline = "orders baseline"
	StateCatalogSeeded  = "product 50123 is in the catalogue"
	StateVerifiedOrder  = "verified order 1 exists"
	StateInvoicedOrder  = "order 1 has been invoiced"

	StateProductExists  = "product 50123 exists"
	StateProductMissing = "no product with code 404"
)

const (
	ExistingOrderID int64 = 1
	MissingOrderID  int64 = 404

	ExistingProductCode int64 = 50123
	MissingProductCode  int64 = 404

	WarehouseRole = "Gerencia WMS"
)

const (
	exampleProductName  = "Camiseta Deportiva"
	exampleProductPrice = "25500.00"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the warehouse portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductName is the catalogue name used across interactions.
func ExampleProductName() string { return exampleProductName }

// ExampleProductPrice is the catalogue price used across interactions.
func ExampleProductPrice() string { return exampleProductPrice }

// ExampleInventoryProduct provides stable inventory data for the resolver contract.
func ExampleInventoryProduct() map[string]any {
	return map[string]any{
		"codigo":      ExistingProductCode,
		"nombre":      exampleProductName,
		"color":       "Azul",
		"talla":       "M",
		"descripcion": "Camiseta de entrenamiento",
		"precio":      25500.0,
	}
}

// ExampleCreateOrderPayload is the body the portal posts to /crear-pedido.
func ExampleCreateOrderPayload() map[string]any {
	return map[string]any{
		"productos_cantidades": []map[string]any{{"codigo": ExistingProductCode, "unidades": 2}},
		"vip":                  false,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
