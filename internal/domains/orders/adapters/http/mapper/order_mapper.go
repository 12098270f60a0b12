package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
)

const dateLayout = "2006-01-02"

// LineRequest is one {codigo, unidades} entry of a create-order request.
type LineRequest struct {
	Codigo   int64 `json:"codigo"`
	Unidades int32 `json:"unidades"`
}

// CreateOrderRequest is the body of POST /crear-pedido.
type CreateOrderRequest struct {
	ProductosCantidades []LineRequest `json:"productos_cantidades"`
	VIP                 bool          `json:"vip"`
}

// OrderReference is the body of the invoice and dispatch operations.
type OrderReference struct {
	PedidoID *int64 `json:"pedido_id"`
}

// Line is the transport shape of an order line.
type Line struct {
	ProductoID     int64           `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Unidades       int32           `json:"unidades"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Order is the transport shape of an order.
type Order struct {
	PedidoID int64  `json:"pedido_id"`
	Estado   string `json:"estado"`
	VIP      bool   `json:"vip"`
	Fecha    string `json:"fecha"`
	Items    []Line `json:"items"`
}

// CreatedInvoice is the response of POST /crear-factura.
type CreatedInvoice struct {
	FacturaID int64           `json:"factura_id"`
	Total     decimal.Decimal `json:"total"`
	PedidoID  int64           `json:"pedido_id"`
}

// PendingInvoice is one entry of GET /facturas-pendientes.
type PendingInvoice struct {
	ID         int64           `json:"id"`
	RubroTotal decimal.Decimal `json:"rubro_total"`
	PedidoID   int64           `json:"pedido_id"`
}

// Invoice is the full transport shape of an invoice.
type Invoice struct {
	ID              int64           `json:"id"`
	RubroTotal      decimal.Decimal `json:"rubro_total"`
	OrdenProduccion bool            `json:"orden_produccion"`
	PedidoID        int64           `json:"pedido_id"`
	Fecha           string          `json:"fecha"`
}

// ToLineRequests converts transport lines into domain requests, keeping their order.
func ToLineRequests(lines []LineRequest) []domain.LineRequest {
	result := make([]domain.LineRequest, 0, len(lines))
	for _, line := range lines {
		result = append(result, domain.LineRequest{ProductCode: line.Codigo, Quantity: line.Unidades})
	}
	return result
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]Line, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, Line{
			ProductoID:     line.ProductCode,
			NombreProducto: line.Name,
			PrecioUnitario: line.UnitPrice,
			Unidades:       line.Quantity,
			Subtotal:       line.Subtotal(),
		})
	}
	return Order{
		PedidoID: order.ID,
		Estado:   string(order.Status),
		VIP:      order.VIP,
		Fecha:    order.CreatedOn.Format(dateLayout),
		Items:    items,
	}
}

// FromDomainOrders converts a list of orders.
func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

// FromCreatedInvoice builds the create-invoice response.
func FromCreatedInvoice(invoice *domain.Invoice) CreatedInvoice {
	return CreatedInvoice{FacturaID: invoice.ID, Total: invoice.Total, PedidoID: invoice.OrderID}
}

// FromPendingInvoices builds the pending-invoices listing.
func FromPendingInvoices(invoices []*domain.Invoice) []PendingInvoice {
	result := make([]PendingInvoice, 0, len(invoices))
	for _, invoice := range invoices {
		result = append(result, PendingInvoice{ID: invoice.ID, RubroTotal: invoice.Total, PedidoID: invoice.OrderID})
	}
	return result
}

// FromDomainInvoice converts a domain invoice to its full transport shape.
func FromDomainInvoice(invoice *domain.Invoice) Invoice {
	return Invoice{
		ID:              invoice.ID,
		RubroTotal:      invoice.Total,
		OrdenProduccion: invoice.ProductionOrder,
		PedidoID:        invoice.OrderID,
		Fecha:           invoice.IssuedAt.Format(dateLayout),
	}
}
